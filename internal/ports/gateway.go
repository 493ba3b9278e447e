package ports

import (
	"context"

	"github.com/bnema/worker-fleet/internal/domain"
)

// Gateway is the request/response side of the remote service. Every call
// is routed through the given proxy; the zero ProxyEndpoint dials directly.
type Gateway interface {
	// GenerateToken returns domain.ErrTokenUnavailable when the gateway
	// answers without a usable token.
	GenerateToken(ctx context.Context, account domain.AccountIdentity, proxy domain.ProxyEndpoint) (domain.SessionToken, error)
	// RewardRealtime returns domain.ErrUnauthorized on a 401.
	RewardRealtime(ctx context.Context, token domain.SessionToken, proxy domain.ProxyEndpoint) (domain.RewardRealtime, error)
	ClaimDetails(ctx context.Context, token domain.SessionToken, proxy domain.ProxyEndpoint) (domain.ClaimDetails, error)
	ClaimReward(ctx context.Context, token domain.SessionToken, proxy domain.ProxyEndpoint) (domain.ClaimReceipt, error)
}
