package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/worker-fleet/internal/adapters/proxy"
	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/gorilla/websocket"
)

const DefaultURL = "wss://apitn.openledger.xyz/ws/v1/orch"

const (
	defaultHandshakeTimeout = 30 * time.Second
	writeTimeout            = 10 * time.Second
	eventBuffer             = 16
)

// Dialer opens gateway channels over websocket. The token travels in the
// authToken query parameter.
type Dialer struct {
	URL              string
	Origin           string
	UserAgent        string
	HandshakeTimeout time.Duration
}

var _ ports.ChannelDialer = Dialer{}

func (d Dialer) Dial(ctx context.Context, token domain.SessionToken, endpoint domain.ProxyEndpoint) (ports.Channel, error) {
	target, err := d.channelURL(token)
	if err != nil {
		return nil, err
	}

	route, err := proxy.Resolve(endpoint)
	if err != nil {
		return nil, err
	}

	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	if route.ProxyURL != nil {
		dialer.Proxy = http.ProxyURL(route.ProxyURL)
	}
	if route.DialContext != nil {
		dialer.NetDialContext = route.DialContext
	}

	header := http.Header{}
	if d.Origin != "" {
		header.Set("Origin", d.Origin)
	}
	if d.UserAgent != "" {
		header.Set("User-Agent", d.UserAgent)
	}

	conn, resp, err := dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial channel: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial channel: %w", err)
	}

	channel := newChannel(conn)
	go channel.readLoop()
	return channel, nil
}

func (d Dialer) channelURL(token domain.SessionToken) (string, error) {
	raw := d.URL
	if raw == "" {
		raw = DefaultURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse channel url: %w", err)
	}
	query := parsed.Query()
	query.Set("authToken", string(token))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type channel struct {
	conn   *websocket.Conn
	events chan ports.ChannelEvent

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

func newChannel(conn *websocket.Conn) *channel {
	c := &channel{
		conn:   conn,
		events: make(chan ports.ChannelEvent, eventBuffer),
	}
	c.events <- ports.ChannelEvent{Kind: ports.ChannelOpen}
	return c
}

func (c *channel) Events() <-chan ports.ChannelEvent {
	return c.events
}

func (c *channel) Send(payload []byte) error {
	if c.closed.Load() {
		return domain.ErrChannelNotOpen
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close sends a close frame and tears the socket down. The read loop then
// emits the close event.
func (c *channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.writeMu.Lock()
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeTimeout))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *channel) readLoop() {
	defer close(c.events)
	defer func() {
		c.closed.Store(true)
		_ = c.conn.Close()
		c.events <- ports.ChannelEvent{Kind: ports.ChannelClose}
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() && !isNormalClose(err) {
				c.events <- ports.ChannelEvent{Kind: ports.ChannelError, Err: err}
			}
			return
		}
		c.events <- ports.ChannelEvent{Kind: ports.ChannelMessage, Payload: payload}
	}
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
