package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrStreamClosed is reported when the server ends the stream.
var ErrStreamClosed = errors.New("stream closed by server")

// SSETransport subscribes to a Server-Sent Events endpoint over HTTP.
type SSETransport struct {
	Client *http.Client
}

// NewSSETransport creates an SSE transport. A nil client uses a client
// without a timeout, since the response body stays open for the stream's lifetime.
func NewSSETransport(client *http.Client) *SSETransport {
	if client == nil {
		client = &http.Client{}
	}
	return &SSETransport{Client: client}
}

// Open issues the GET and starts reading events in the background.
func (t *SSETransport) Open(ctx context.Context, rawURL string, h Handlers) (io.Closer, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.Client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	go func() {
		defer resp.Body.Close()
		err := readEvents(resp.Body, h.OnMessage)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = ErrStreamClosed
		}
		if h.OnError != nil {
			h.OnError(err)
		}
	}()

	return closerFunc(func() error {
		cancel()
		return nil
	}), nil
}

// readEvents parses an event stream and passes each event's data to onData.
// Multi-line data fields are joined with "\n". It returns nil on clean EOF.
func readEvents(r io.Reader, onData func([]byte)) error {
	reader := bufio.NewReader(r)
	var data []string

	dispatch := func() {
		if len(data) == 0 {
			return
		}
		payload := strings.Join(data, "\n")
		data = data[:0]
		if onData != nil {
			onData([]byte(payload))
		}
	}

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			switch {
			case line == "":
				dispatch()
			case strings.HasPrefix(line, ":"):
				// comment / keep-alive
			default:
				field, value, _ := strings.Cut(line, ":")
				value = strings.TrimPrefix(value, " ")
				if field == "data" {
					data = append(data, value)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				dispatch()
				return nil
			}
			return err
		}
	}
}
