package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"legal_connect/internal/domain"
	"legal_connect/internal/repository"
	"legal_connect/pkg/logger"
)

// Conn - транспортное соединение получателя. Интерфейс вместо *websocket.Conn,
// чтобы реестр тестировался с фейковыми соединениями.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// PresenceRegistry - таблица живых соединений процесса. Она авторитетна для
// решения о доставке; флаг users.is_online и ключ в Redis - best-effort зеркала.
type PresenceRegistry interface {
	Connect(ctx context.Context, userID uuid.UUID, conn Conn)
	Disconnect(ctx context.Context, userID uuid.UUID, conn Conn)
	Push(receiverID uuid.UUID, event *domain.MessageEvent)
	Touch(ctx context.Context, userID uuid.UUID)
	IsConnected(userID uuid.UUID) bool
	Shutdown()
}

type connEntry struct {
	conn Conn
	mu   sync.Mutex // сериализует записи в одно соединение
}

type presenceRegistry struct {
	mu           sync.RWMutex
	conns        map[uuid.UUID]*connEntry
	userRepo     repository.UserRepository
	presenceRepo repository.PresenceRepository
	log          logger.Logger
}

func NewPresenceRegistry(userRepo repository.UserRepository, presenceRepo repository.PresenceRepository, log logger.Logger) PresenceRegistry {
	return &presenceRegistry{
		conns:        make(map[uuid.UUID]*connEntry),
		userRepo:     userRepo,
		presenceRepo: presenceRepo,
		log:          log,
	}
}

// Connect регистрирует соединение. Повторное подключение того же пользователя
// перезаписывает прежний handle (last-connection-wins), старое закрывается.
func (p *presenceRegistry) Connect(ctx context.Context, userID uuid.UUID, conn Conn) {
	p.mu.Lock()
	old := p.conns[userID]
	p.conns[userID] = &connEntry{conn: conn}
	p.mu.Unlock()

	if old != nil {
		if err := old.conn.Close(); err != nil {
			p.log.Debug("Failed to close replaced connection", "user_id", userID, "error", err)
		}
	}

	p.mirrorOnline(ctx, userID, true)
	p.log.Info("User connected", "user_id", userID)
}

// Disconnect удаляет handle только если он все еще текущий: отключение
// устаревшего соединения не должно сбрасывать новое.
func (p *presenceRegistry) Disconnect(ctx context.Context, userID uuid.UUID, conn Conn) {
	p.mu.Lock()
	entry, ok := p.conns[userID]
	if !ok || entry.conn != conn {
		p.mu.Unlock()
		return
	}
	delete(p.conns, userID)
	p.mu.Unlock()

	p.mirrorOnline(ctx, userID, false)
	p.log.Info("User disconnected", "user_id", userID)
}

// Push - best-effort: отсутствие соединения не ошибка, сообщение уже в
// хранилище и получатель заберет его при следующем подключении.
func (p *presenceRegistry) Push(receiverID uuid.UUID, event *domain.MessageEvent) {
	p.mu.RLock()
	entry, ok := p.conns[receiverID]
	p.mu.RUnlock()

	if !ok {
		p.log.Debug("Recipient offline, push skipped", "receiver_id", receiverID)
		return
	}

	entry.mu.Lock()
	err := entry.conn.WriteJSON(event)
	entry.mu.Unlock()

	if err != nil {
		p.log.Warn("Failed to push event, dropping connection", "receiver_id", receiverID, "error", err)
		p.Disconnect(context.Background(), receiverID, entry.conn)
		_ = entry.conn.Close()
	}
}

// Touch продлевает TTL зеркала присутствия (вызывается на ping от клиента)
func (p *presenceRegistry) Touch(ctx context.Context, userID uuid.UUID) {
	if err := p.presenceRepo.Refresh(ctx, userID); err != nil {
		p.log.Debug("Failed to refresh presence mirror", "user_id", userID, "error", err)
	}
}

func (p *presenceRegistry) IsConnected(userID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.conns[userID]
	return ok
}

// Shutdown закрывает все соединения при остановке процесса
func (p *presenceRegistry) Shutdown() {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[uuid.UUID]*connEntry)
	p.mu.Unlock()

	for userID, entry := range conns {
		if err := entry.conn.Close(); err != nil {
			p.log.Debug("Failed to close connection on shutdown", "user_id", userID, "error", err)
		}
	}
}

// mirrorOnline обновляет зеркала, ошибки не поднимаются выше реестра
func (p *presenceRegistry) mirrorOnline(ctx context.Context, userID uuid.UUID, online bool) {
	if err := p.userRepo.SetOnline(ctx, userID, online); err != nil {
		p.log.Warn("Failed to mirror online flag", "user_id", userID, "error", err)
	}

	var err error
	if online {
		err = p.presenceRepo.SetOnline(ctx, userID)
	} else {
		err = p.presenceRepo.SetOffline(ctx, userID)
	}
	if err != nil {
		p.log.Warn("Failed to mirror presence key", "user_id", userID, "error", err)
	}
}
