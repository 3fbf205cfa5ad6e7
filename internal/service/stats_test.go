package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"legal_connect/internal/domain"
)

func TestUnreadStats_CountsPerSender(t *testing.T) {
	repo := newFakeMessageRepo()
	messageSvc := NewMessageService(repo, testAuditService(newFakeAuditRepo()), testDBConfig(), testLogger())
	statsSvc := NewStatsService(repo, testLogger())

	reader := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := messageSvc.Send(context.Background(), alice, reader, "msg", domain.MessageTypeText)
		require.NoError(t, err)
	}
	_, err := messageSvc.Send(context.Background(), bob, reader, "msg", domain.MessageTypeText)
	require.NoError(t, err)

	stats, err := statsSvc.UnreadStats(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.BySender[alice.String()])
	assert.Equal(t, int64(1), stats.BySender[bob.String()])

	// После прочтения сообщений alice остается только bob
	_, err = messageSvc.MarkRead(context.Background(), reader, alice)
	require.NoError(t, err)

	stats, err = statsSvc.UnreadStats(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.NotContains(t, stats.BySender, alice.String())
}

// Push оффлайн-получателю не должен ни падать, ни дублировать сообщение в хранилище
func TestSendThenPushOffline_NoDuplicateInStore(t *testing.T) {
	repo := newFakeMessageRepo()
	messageSvc := NewMessageService(repo, testAuditService(newFakeAuditRepo()), testDBConfig(), testLogger())
	registry := NewPresenceRegistry(newFakeUserRepo(), newFakePresenceRepo(), testLogger())
	defer registry.Shutdown()

	sender := uuid.New()
	receiver := uuid.New()

	message, err := messageSvc.Send(context.Background(), sender, receiver, "offline delivery", domain.MessageTypeText)
	require.NoError(t, err)

	registry.Push(receiver, domain.NewMessageEvent(message))

	history, err := messageSvc.History(context.Background(), sender, receiver)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
