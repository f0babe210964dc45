package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id, userID string) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() string {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", "auth0|u1")
	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount("auth0|u1"))

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount("auth0|u1"))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_ReachesAllSessionsOfUser(t *testing.T) {
	hub := NewHub()

	tab := newMockClient("tab", "auth0|u1")
	phone := newMockClient("phone", "auth0|u1")
	other := newMockClient("other", "auth0|u2")
	hub.Register(tab)
	hub.Register(phone)
	hub.Register(other)

	hub.Broadcast("auth0|u1", CartUpdated(map[string]interface{}{"itemCount": 2}))

	// Allow async sends to complete
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, tab.GetMessages(), 1)
	assert.Len(t, phone.GetMessages(), 1)
	assert.Len(t, other.GetMessages(), 0)
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	// Should not panic with no registered clients
	assert.NotPanics(t, func() {
		hub.Broadcast("auth0|nobody", CartCleared(nil))
	})
}

func TestHub_Broadcast_SkipsClosedClient(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", "auth0|u1")
	hub.Register(client)
	require.NoError(t, client.Close())

	hub.Broadcast("auth0|u1", CartUpdated(nil))
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 0)
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			client := newMockClient(string(rune('a'+n)), "auth0|u1")
			hub.Register(client)
		}(i)
		go func() {
			defer wg.Done()
			hub.Broadcast("auth0|u1", CartUpdated(nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, hub.ClientCount("auth0|u1"))
}
