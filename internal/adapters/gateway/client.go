package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/worker-fleet/internal/adapters/proxy"
	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 1 << 20

const (
	DefaultAuthURL    = "https://apitn.openledger.xyz/api/v1"
	DefaultRewardsURL = "https://rewardstn.openledger.xyz/api/v1"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

type Config struct {
	AuthURL    string
	RewardsURL string
	Origin     string
	UserAgent  string
	// Retries is the number of extra attempts after a transport error, a 429
	// or a 5xx. Attempt n waits n*RetryDelay.
	Retries    int
	RetryDelay time.Duration
}

// Client is the HTTP implementation of ports.Gateway. One http.Client is
// kept per proxy endpoint.
type Client struct {
	config Config
	clock  ports.Clock
	log    logrus.FieldLogger

	// newTransport is swapped in tests.
	newTransport func(domain.ProxyEndpoint) (http.RoundTripper, error)

	mu      sync.Mutex
	clients map[domain.ProxyEndpoint]*http.Client
}

var _ ports.Gateway = (*Client)(nil)

func New(config Config, clock ports.Clock, log logrus.FieldLogger) *Client {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.Origin == "" {
		config.Origin = domain.WorkerHost
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	return &Client{
		config:       config,
		clock:        clock,
		log:          log,
		newTransport: proxyTransport,
		clients:      map[domain.ProxyEndpoint]*http.Client{},
	}
}

func proxyTransport(endpoint domain.ProxyEndpoint) (http.RoundTripper, error) {
	route, err := proxy.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	return route.Transport(), nil
}

func (c *Client) GenerateToken(ctx context.Context, account domain.AccountIdentity, endpoint domain.ProxyEndpoint) (domain.SessionToken, error) {
	body, err := json.Marshal(map[string]string{"address": string(account)})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	var payload struct {
		Data *struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	call := request{method: http.MethodPost, url: c.config.AuthURL, path: "/auth/generate_token", body: body}
	if err := c.do(ctx, endpoint, call, &payload); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if payload.Data == nil || strings.TrimSpace(payload.Data.Token) == "" {
		return "", domain.ErrTokenUnavailable
	}
	return domain.SessionToken(payload.Data.Token), nil
}

func (c *Client) RewardRealtime(ctx context.Context, token domain.SessionToken, endpoint domain.ProxyEndpoint) (domain.RewardRealtime, error) {
	var payload struct {
		Data []struct {
			TotalHeartbeats flexNumber `json:"total_heartbeats"`
		} `json:"data"`
	}
	call := request{method: http.MethodGet, url: c.config.RewardsURL, path: "/reward_realtime", token: token}
	if err := c.do(ctx, endpoint, call, &payload); err != nil {
		return domain.RewardRealtime{}, fmt.Errorf("reward realtime: %w", err)
	}
	if len(payload.Data) == 0 {
		return domain.RewardRealtime{}, nil
	}
	return domain.RewardRealtime{TotalHeartbeats: int64(payload.Data[0].TotalHeartbeats)}, nil
}

func (c *Client) ClaimDetails(ctx context.Context, token domain.SessionToken, endpoint domain.ProxyEndpoint) (domain.ClaimDetails, error) {
	var payload struct {
		Data struct {
			Tier       flexString `json:"tier"`
			DailyPoint flexNumber `json:"dailyPoint"`
			Claimed    bool       `json:"claimed"`
			NextClaim  flexString `json:"nextClaim"`
		} `json:"data"`
	}
	call := request{method: http.MethodGet, url: c.config.RewardsURL, path: "/claim_details", token: token}
	if err := c.do(ctx, endpoint, call, &payload); err != nil {
		return domain.ClaimDetails{}, fmt.Errorf("claim details: %w", err)
	}
	return domain.ClaimDetails{
		Tier:       string(payload.Data.Tier),
		DailyPoint: float64(payload.Data.DailyPoint),
		Claimed:    payload.Data.Claimed,
		NextClaim:  string(payload.Data.NextClaim),
	}, nil
}

func (c *Client) ClaimReward(ctx context.Context, token domain.SessionToken, endpoint domain.ProxyEndpoint) (domain.ClaimReceipt, error) {
	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	call := request{method: http.MethodGet, url: c.config.RewardsURL, path: "/claim_reward", token: token}
	if err := c.do(ctx, endpoint, call, &payload); err != nil {
		return domain.ClaimReceipt{}, fmt.Errorf("claim reward: %w", err)
	}
	return domain.ClaimReceipt{Raw: payload.Data}, nil
}

type request struct {
	method string
	url    string
	path   string
	token  domain.SessionToken
	body   []byte
}

func (r request) endpoint() string {
	return strings.TrimRight(r.url, "/") + r.path
}

// do sends r, retrying transient failures, and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, endpoint domain.ProxyEndpoint, r request, out any) error {
	client, err := c.httpClient(endpoint)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		status, body, err := c.once(ctx, client, r)
		if err == nil && !retryableStatus(status) {
			return decodeResponse(status, body, out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= c.config.Retries {
			if err != nil {
				return err
			}
			return decodeResponse(status, body, out)
		}

		delay := time.Duration(attempt+1) * c.config.RetryDelay
		entry := c.log.WithFields(logrus.Fields{"path": r.path, "attempt": attempt + 1, "delay": delay})
		if err != nil {
			entry = entry.WithError(err)
		} else {
			entry = entry.WithField("status", status)
		}
		entry.Debug("retrying gateway request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(delay):
		}
	}
}

func (c *Client) once(ctx context.Context, client *http.Client, r request) (int, []byte, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.endpoint(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Origin", c.config.Origin)
	req.Header.Set("User-Agent", c.config.UserAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+string(r.token))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func decodeResponse(status int, body []byte, out any) error {
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnauthorized, status, strings.TrimSpace(string(body)))
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func (c *Client) httpClient(endpoint domain.ProxyEndpoint) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[endpoint]; ok {
		return client, nil
	}
	transport, err := c.newTransport(endpoint)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Transport: transport}
	c.clients[endpoint] = client
	return client, nil
}
