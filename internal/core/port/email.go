package port

import "context"

// EmailSender delivers outbound plain-text mail. Delivery failure is
// best-effort from the caller's point of view: the stored verification or
// reset token remains valid even when the message bounces.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
