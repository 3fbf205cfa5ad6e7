package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"legal_connect/internal/config"
	"legal_connect/internal/domain"
	"legal_connect/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.New("error")
}

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{QueryTimeout: time.Second}
}

func testAuditService(repo *fakeAuditRepo) AuditService {
	return NewAuditService(repo, testLogger())
}

// fakeMessageRepo - append-only хранилище в памяти с монотонным id
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
	nextID   int64

	failCreates int   // сколько первых Create должны упасть
	createErr   error // постоянная ошибка: возвращается на каждый Create
	createCalls int
	failAll     bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

var errStoreDown = errors.New("connection refused")

func (f *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.failAll {
		return errStoreDown
	}
	if f.failCreates > 0 {
		f.failCreates--
		return errStoreDown
	}

	message.ID = f.nextID
	f.nextID++
	message.CreatedAt = time.Now()
	message.IsRead = false

	stored := *message
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepo) History(ctx context.Context, userA, userB uuid.UUID) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Message
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			copied := *m
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeMessageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Message
	for _, m := range f.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			copied := *m
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return 0, errStoreDown
	}

	var count int64
	for _, m := range f.messages {
		if m.SenderID == senderID && m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) CountUnread(ctx context.Context, readerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, m := range f.messages {
		if m.ReceiverID == readerID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) CountUnreadBySender(ctx context.Context, readerID uuid.UUID) ([]*domain.SenderUnread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bySender := make(map[uuid.UUID]int64)
	for _, m := range f.messages {
		if m.ReceiverID == readerID && !m.IsRead {
			bySender[m.SenderID]++
		}
	}

	var result []*domain.SenderUnread
	for senderID, count := range bySender {
		result = append(result, &domain.SenderUnread{SenderID: senderID, Count: count})
	}
	return result, nil
}

// fakeUserRepo хранит пользователей в памяти
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	online map[uuid.UUID]bool
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		users:  make(map[uuid.UUID]*domain.User),
		online: make(map[uuid.UUID]bool),
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return errors.New("user with this email or username already exists")
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			copied := *user
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[id] = online
	if user, ok := f.users[id]; ok {
		user.IsOnline = online
	}
	return nil
}

func (f *fakeUserRepo) isOnline(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[id]
}

func (f *fakeUserRepo) CreateSession(ctx context.Context, session *domain.UserSession) error {
	return nil
}

func (f *fakeUserRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error) {
	return nil, errors.New("session not found")
}

func (f *fakeUserRepo) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	return nil
}

// fakePresenceRepo - зеркало присутствия в памяти
type fakePresenceRepo struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{online: make(map[uuid.UUID]bool)}
}

func (f *fakePresenceRepo) SetOnline(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
	return nil
}

func (f *fakePresenceRepo) Refresh(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (f *fakePresenceRepo) SetOffline(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.online, userID)
	return nil
}

func (f *fakePresenceRepo) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID], nil
}

// fakeAuditRepo собирает записи аудита
type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (f *fakeAuditRepo) CreateLog(ctx context.Context, auditLog *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, auditLog)
	return nil
}

func (f *fakeAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

// fakeConn реализует Conn и запоминает записанные события
type fakeConn struct {
	mu       sync.Mutex
	written  []interface{}
	closed   bool
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interface{}(nil), c.written...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
