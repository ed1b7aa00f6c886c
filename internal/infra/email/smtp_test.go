package email

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Deaglesso/Second/internal/infra/config"
)

func TestSendHonorsConfiguredTimeout(t *testing.T) {
	// A listener that accepts and never speaks SMTP, so the client blocks
	// waiting for the greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	sender := NewSMTPSender(config.EmailSettings{
		FromAddress: "no-reply@second.local",
		FromName:    "Second",
		SMTPHost:    host,
		SMTPPort:    port,
		Timeout:     100 * time.Millisecond,
	}, zaptest.NewLogger(t))

	start := time.Now()
	err = sender.Send(context.Background(), "user@example.com", "Hello", "body")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("send did not respect the configured timeout, took %v", elapsed)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("Second", "no-reply@second.local", "user@example.com", "Verify your email", "hello"))

	for _, want := range []string{
		"From: Second <no-reply@second.local>\r\n",
		"To: user@example.com\r\n",
		"Subject: Verify your email\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected header %q in message %q", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "\r\nhello") {
		t.Fatalf("expected body after blank line, got %q", msg)
	}
}
