package application

import (
	"encoding/json"

	"github.com/bnema/worker-fleet/internal/domain"
)

// Observer receives local bookkeeping events from sessions. Calls happen on
// the session goroutine and must not block.
type Observer interface {
	StateChanged(assignment domain.Assignment, from, to domain.ConnectionState)
	ResponseReceived(assignment domain.Assignment, payload json.RawMessage)
}

type nopObserver struct{}

func (nopObserver) StateChanged(domain.Assignment, domain.ConnectionState, domain.ConnectionState) {}

func (nopObserver) ResponseReceived(domain.Assignment, json.RawMessage) {}
