package application

import (
	"github.com/bnema/worker-fleet/internal/domain"
)

type ImportCommand struct {
	Accounts []domain.AccountIdentity
	Proxies  []domain.ProxyEndpoint
}

type ImportResult struct {
	AddedAccounts int
	AddedProxies  int
	// Skipped counts entries that were already in the roster.
	Skipped int
}
