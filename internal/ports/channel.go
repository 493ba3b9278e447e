package ports

import (
	"context"

	"github.com/bnema/worker-fleet/internal/domain"
)

type ChannelEventKind int

const (
	ChannelOpen ChannelEventKind = iota
	ChannelMessage
	ChannelError
	ChannelClose
)

func (k ChannelEventKind) String() string {
	switch k {
	case ChannelOpen:
		return "open"
	case ChannelMessage:
		return "message"
	case ChannelError:
		return "error"
	case ChannelClose:
		return "close"
	default:
		return "unknown"
	}
}

type ChannelEvent struct {
	Kind    ChannelEventKind
	Payload []byte
	Err     error
}

// Channel is one persistent connection. Events delivers open first and
// close last; an error event is always followed by close. The events
// channel is closed after the close event.
type Channel interface {
	Events() <-chan ChannelEvent
	// Send returns domain.ErrChannelNotOpen once the channel has closed.
	Send(payload []byte) error
	Close() error
}

type ChannelDialer interface {
	Dial(ctx context.Context, token domain.SessionToken, proxy domain.ProxyEndpoint) (Channel, error)
}
