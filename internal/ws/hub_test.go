package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub) *Client {
	return &Client{hub: h, send: make(chan []byte, 8)}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	a := newTestClient(h)
	b := newTestClient(h)
	h.Register(a)
	h.Register(b)

	h.Broadcast([]byte("hello"))

	require.Len(t, drain(a), 1)
	require.Len(t, drain(b), 1)
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	c := newTestClient(h)
	h.Register(c)
	h.Unregister(c)

	h.Broadcast([]byte("hello"))
	assert.Empty(t, drain(c))

	// Double unregister must not panic on the closed channel.
	h.Unregister(c)
}

func TestHubReplaysLastResultsToNewClients(t *testing.T) {
	h := NewHub()
	h.BroadcastResults([]byte(`{"type":"results:update"}`))

	late := newTestClient(h)
	h.Register(late)

	msgs := drain(late)
	require.Len(t, msgs, 1)
	assert.Equal(t, `{"type":"results:update"}`, string(msgs[0]))
}

func TestHubDropsWhenClientBufferFull(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two")) // buffer full, dropped

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, "one", string(msgs[0]))
}
