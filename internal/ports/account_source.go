package ports

import (
	"context"

	"github.com/bnema/worker-fleet/internal/domain"
)

// Roster is the fleet input: accounts plus the proxy list they rotate over.
type Roster struct {
	Accounts []domain.AccountIdentity
	Proxies  []domain.ProxyEndpoint
}

type RosterSource interface {
	Load(ctx context.Context) (Roster, error)
}

type RosterRepository interface {
	RosterSource
	Save(ctx context.Context, roster Roster) error
}
