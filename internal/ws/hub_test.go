package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

func receive(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data, ok := <-s.send:
		require.True(t, ok, "send channel closed")
		return data
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func assertSilent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case data := <-s.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_PublishScopedToOwner(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Start(context.Background())
	defer hub.Stop()

	alice1 := NewSession("alice", nil)
	alice2 := NewSession("alice", nil)
	bob := NewSession("bob", nil)
	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)

	hub.Publish("alice", model.Event{Name: model.EventTaskCreated, Payload: map[string]string{"id": "t1"}})

	// Обе сессии владельца получают событие
	for _, s := range []*Session{alice1, alice2} {
		var event struct {
			Name    string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(receive(t, s), &event))
		assert.Equal(t, model.EventTaskCreated, event.Name)
	}

	// Чужой пользователь не видит ничего
	assertSilent(t, bob)
}

func TestHub_PublishToUnknownOwner(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Start(context.Background())
	defer hub.Stop()

	// Ни одной сессии - событие просто пропадает, без паники и блокировки
	hub.Publish("nobody", model.Event{Name: model.EventTaskDeleted, Payload: "t1"})
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Start(context.Background())
	defer hub.Stop()

	s := NewSession("alice", nil)
	hub.Register(s)
	hub.Unregister(s)

	select {
	case _, ok := <-s.send:
		assert.False(t, ok, "expected closed send channel")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// После снятия с учета событий больше нет
	hub.Publish("alice", model.Event{Name: model.EventTaskCreated, Payload: nil})
}

func TestHub_StopClosesSessions(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Start(context.Background())

	s := NewSession("alice", nil)
	hub.Register(s)

	// Даем циклу обработать регистрацию до остановки
	hub.Publish("alice", model.Event{Name: model.EventTaskCreated, Payload: nil})
	receive(t, s)

	hub.Stop()

	_, ok := <-s.send
	assert.False(t, ok, "expected closed send channel after stop")
}
