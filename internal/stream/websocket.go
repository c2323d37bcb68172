package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport reads text frames from a WebSocket endpoint.
type WebSocketTransport struct {
	Dialer *websocket.Dialer
}

// NewWebSocketTransport creates a transport using websocket.DefaultDialer when d is nil.
func NewWebSocketTransport(d *websocket.Dialer) *WebSocketTransport {
	if d == nil {
		d = websocket.DefaultDialer
	}
	return &WebSocketTransport{Dialer: d}
}

// Open dials the endpoint and starts the read loop.
func (t *WebSocketTransport) Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error) {
	conn, resp, err := t.Dialer.DialContext(ctx, rawURL, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}

	var closing atomic.Bool
	var once sync.Once
	closeConn := func() error {
		var err error
		once.Do(func() {
			closing.Store(true)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			err = conn.Close()
		})
		return err
	}

	go func() {
		<-ctx.Done()
		_ = closeConn()
	}()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if closing.Load() {
					return
				}
				if h.OnError != nil {
					h.OnError(err)
				}
				return
			}
			if h.OnMessage != nil {
				h.OnMessage(data)
			}
		}
	}()

	return closerFunc(closeConn), nil
}
