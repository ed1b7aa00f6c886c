package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

// fakeUserRepository is an in-memory port.UserRepository keyed by user ID.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]domain.User)}
}

func (f *fakeUserRepository) Create(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.Deletion.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string, includeDeleted bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email != email {
			continue
		}
		if user.Deletion.IsDeleted() && !includeDeleted {
			continue
		}
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) GetByTokenHash(_ context.Context, slot port.TokenSlotKind, hash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Deletion.IsDeleted() {
			continue
		}
		var stored *string
		switch slot {
		case port.SlotEmailVerification:
			stored = user.EmailVerification.Hash
		case port.SlotPasswordReset:
			stored = user.PasswordReset.Hash
		case port.SlotRefresh:
			stored = user.Refresh.Hash
		}
		if stored != nil && *stored == hash {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) Update(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.Deletion.IsDeleted() {
		return repository.ErrNotFound
	}
	user.Deletion = domain.DeletedAt(time.Now().UTC())
	f.users[id] = user
	return nil
}

var _ port.UserRepository = (*fakeUserRepository)(nil)

// fakeRevocationStore is an in-memory port.RevocationStore.
type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: make(map[string]time.Time)}
}

func (f *fakeRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

var _ port.RevocationStore = (*fakeRevocationStore)(nil)

// fakeEmailSender records every message instead of delivering it.
type fakeEmailSender struct {
	mu       sync.Mutex
	messages []fakeEmail
	err      error
}

type fakeEmail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeEmailSender) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, fakeEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeEmailSender) sent() []fakeEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeEmail, len(f.messages))
	copy(out, f.messages)
	return out
}

var _ port.EmailSender = (*fakeEmailSender)(nil)

// fakeEventPublisher counts published events by type.
type fakeEventPublisher struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeEventPublisher() *fakeEventPublisher {
	return &fakeEventPublisher{counts: make(map[string]int)}
}

func (f *fakeEventPublisher) record(eventType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[eventType]++
}

func (f *fakeEventPublisher) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[eventType]
}

func (f *fakeEventPublisher) PublishUserRegistered(context.Context, domain.UserRegisteredEvent) error {
	f.record("user.registered")
	return nil
}

func (f *fakeEventPublisher) PublishUserBecameSeller(context.Context, domain.UserBecameSellerEvent) error {
	f.record("user.became_seller")
	return nil
}

func (f *fakeEventPublisher) PublishSessionRevoked(context.Context, domain.SessionRevokedEvent) error {
	f.record("session.revoked")
	return nil
}

func (f *fakeEventPublisher) PublishProductListed(context.Context, domain.ProductListedEvent) error {
	f.record("product.listed")
	return nil
}

func (f *fakeEventPublisher) PublishReportFiled(context.Context, domain.ReportFiledEvent) error {
	f.record("report.filed")
	return nil
}

var _ port.EventPublisher = (*fakeEventPublisher)(nil)

// fakeProductRepository is an in-memory port.ProductRepository.
type fakeProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	images   map[string]domain.ProductImage
}

func newFakeProductRepository() *fakeProductRepository {
	return &fakeProductRepository{
		products: make(map[string]domain.Product),
		images:   make(map[string]domain.ProductImage),
	}
}

func (f *fakeProductRepository) Create(_ context.Context, product domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok || product.Deletion.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (f *fakeProductRepository) ListActive(_ context.Context, filter domain.ProductFilter, _ port.Page) ([]domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0)
	for _, product := range f.products {
		if product.Deletion.IsDeleted() || product.Status != domain.ProductActive {
			continue
		}
		if filter.MinPrice != nil && product.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, product)
	}
	return out, len(out), nil
}

func (f *fakeProductRepository) ListBySeller(_ context.Context, sellerUserID string, _ port.Page) ([]domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0)
	for _, product := range f.products {
		if product.SellerUserID == sellerUserID && !product.Deletion.IsDeleted() {
			out = append(out, product)
		}
	}
	return out, len(out), nil
}

func (f *fakeProductRepository) CountActiveBySeller(_ context.Context, sellerUserID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, product := range f.products {
		if product.SellerUserID == sellerUserID && product.Status == domain.ProductActive && !product.Deletion.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (f *fakeProductRepository) Update(_ context.Context, product domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepository) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok || product.Deletion.IsDeleted() {
		return repository.ErrNotFound
	}
	product.Deletion = domain.DeletedAt(time.Now().UTC())
	f.products[id] = product
	return nil
}

func (f *fakeProductRepository) AddImage(_ context.Context, image domain.ProductImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[image.ID] = image
	return nil
}

func (f *fakeProductRepository) GetImageByID(_ context.Context, imageID string) (*domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	image, ok := f.images[imageID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := image
	return &copied, nil
}

func (f *fakeProductRepository) RemoveImage(_ context.Context, imageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.images[imageID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.images, imageID)
	return nil
}

var _ port.ProductRepository = (*fakeProductRepository)(nil)

// fakeChatRoomRepository is an in-memory port.ChatRoomRepository.
type fakeChatRoomRepository struct {
	mu    sync.Mutex
	rooms map[string]domain.ChatRoom
}

func newFakeChatRoomRepository() *fakeChatRoomRepository {
	return &fakeChatRoomRepository{rooms: make(map[string]domain.ChatRoom)}
}

func (f *fakeChatRoomRepository) Create(_ context.Context, room domain.ChatRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeChatRoomRepository) GetByID(_ context.Context, id string) (*domain.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := room
	return &copied, nil
}

func (f *fakeChatRoomRepository) GetByProductAndBuyer(_ context.Context, productID, buyerID string) (*domain.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.ProductID == productID && room.BuyerID == buyerID {
			copied := room
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeChatRoomRepository) ListByUser(_ context.Context, userID string, _ port.Page) ([]domain.ChatRoom, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ChatRoom, 0)
	for _, room := range f.rooms {
		if room.IsParticipant(userID) {
			out = append(out, room)
		}
	}
	return out, len(out), nil
}

var _ port.ChatRoomRepository = (*fakeChatRoomRepository)(nil)

// fakeMessageRepository is an in-memory port.MessageRepository.
type fakeMessageRepository struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (f *fakeMessageRepository) Create(_ context.Context, message domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageRepository) ListByChatRoom(_ context.Context, chatRoomID string, _ port.Page) ([]domain.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Message, 0)
	for _, message := range f.messages {
		if message.ChatRoomID == chatRoomID {
			out = append(out, message)
		}
	}
	return out, len(out), nil
}

var _ port.MessageRepository = (*fakeMessageRepository)(nil)

// fakeReportRepository is an in-memory port.ReportRepository.
type fakeReportRepository struct {
	mu      sync.Mutex
	reports []domain.Report
}

func (f *fakeReportRepository) Create(_ context.Context, report domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeReportRepository) ListByTarget(_ context.Context, targetType domain.ReportTargetType, targetID string, _ port.Page) ([]domain.Report, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Report, 0)
	for _, report := range f.reports {
		if report.TargetType == targetType && report.TargetID == targetID {
			out = append(out, report)
		}
	}
	return out, len(out), nil
}

func (f *fakeReportRepository) ListByReporter(_ context.Context, reporterID string, _ port.Page) ([]domain.Report, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Report, 0)
	for _, report := range f.reports {
		if report.ReporterID == reporterID {
			out = append(out, report)
		}
	}
	return out, len(out), nil
}

var _ port.ReportRepository = (*fakeReportRepository)(nil)
