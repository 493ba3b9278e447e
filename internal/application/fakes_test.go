package application

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	testBackoff   = 3 * time.Second
	testReconnect = 5 * time.Second
	testHeartbeat = 30 * time.Second
	testStatus    = 9 * time.Minute
	testClaim     = 60 * time.Minute
)

func testSettings() SessionSettings {
	return SessionSettings{
		TokenRetryBackoff: testBackoff,
		ReconnectDelay:    testReconnect,
		HeartbeatInterval: testHeartbeat,
		StatusInterval:    testStatus,
		ClaimInterval:     testClaim,
		RequestTimeout:    time.Second,
	}
}

// fakeClock fires After immediately and records the requested delay.
// Tickers only fire when the test calls fire.
type fakeClock struct {
	mu      sync.Mutex
	waits   []time.Duration
	tickers []*fakeTicker
}

func (c *fakeClock) Now() time.Time {
	return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func (c *fakeClock) NewTicker(d time.Duration) ports.Ticker {
	ticker := &fakeTicker{interval: d, ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, ticker)
	c.mu.Unlock()
	return ticker
}

func (c *fakeClock) waitCount(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, wait := range c.waits {
		if wait == d {
			count++
		}
	}
	return count
}

func (c *fakeClock) tickersFor(d time.Duration) []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matched []*fakeTicker
	for _, ticker := range c.tickers {
		if ticker.interval == d {
			matched = append(matched, ticker)
		}
	}
	return matched
}

func (c *fakeClock) activeTickers(d time.Duration) int {
	active := 0
	for _, ticker := range c.tickersFor(d) {
		if !ticker.stopped.Load() {
			active++
		}
	}
	return active
}

// fire ticks every running ticker with the given interval.
func (c *fakeClock) fire(d time.Duration) {
	for _, ticker := range c.tickersFor(d) {
		ticker.fire()
	}
}

type fakeTicker struct {
	interval time.Duration
	ch       chan time.Time
	stopped  atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	t.stopped.Store(true)
}

func (t *fakeTicker) fire() {
	if t.stopped.Load() {
		return
	}
	select {
	case t.ch <- time.Now():
	default:
	}
}

type fakeChannel struct {
	token  domain.SessionToken
	proxy  domain.ProxyEndpoint
	events chan ports.ChannelEvent

	mu        sync.Mutex
	sent      [][]byte
	closed    bool
	closeOnce sync.Once
}

func newFakeChannel(token domain.SessionToken, proxy domain.ProxyEndpoint) *fakeChannel {
	return &fakeChannel{token: token, proxy: proxy, events: make(chan ports.ChannelEvent, 64)}
}

func (c *fakeChannel) Events() <-chan ports.ChannelEvent {
	return c.events
}

func (c *fakeChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrChannelNotOpen
	}
	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

func (c *fakeChannel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.events <- ports.ChannelEvent{Kind: ports.ChannelClose}
		close(c.events)
	})
	return nil
}

func (c *fakeChannel) open() {
	c.events <- ports.ChannelEvent{Kind: ports.ChannelOpen}
}

func (c *fakeChannel) message(payload string) {
	c.events <- ports.ChannelEvent{Kind: ports.ChannelMessage, Payload: []byte(payload)}
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type sentMessage struct {
	MsgType string          `json:"msgType"`
	Message json.RawMessage `json:"message"`
	Raw     []byte          `json:"-"`
}

func (c *fakeChannel) messages(t *testing.T) []sentMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]sentMessage, 0, len(c.sent))
	for _, payload := range c.sent {
		var message sentMessage
		require.NoError(t, json.Unmarshal(payload, &message))
		message.Raw = payload
		messages = append(messages, message)
	}
	return messages
}

func (c *fakeChannel) countOf(t *testing.T, msgType string) int {
	count := 0
	for _, message := range c.messages(t) {
		if message.MsgType == msgType {
			count++
		}
	}
	return count
}

type fakeDialer struct {
	dials chan *fakeChannel
	err   error
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{dials: make(chan *fakeChannel, 16)}
}

func (d *fakeDialer) Dial(_ context.Context, token domain.SessionToken, proxy domain.ProxyEndpoint) (ports.Channel, error) {
	if d.err != nil {
		return nil, d.err
	}
	channel := newFakeChannel(token, proxy)
	d.dials <- channel
	return channel, nil
}

func (d *fakeDialer) next(t *testing.T) *fakeChannel {
	t.Helper()
	select {
	case channel := <-d.dials:
		return channel
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a channel dial")
		return nil
	}
}

// fakeGateway counts calls and delegates answers to optional hooks.
type fakeGateway struct {
	tokenCalls    atomic.Int32
	realtimeCalls atomic.Int32
	detailsCalls  atomic.Int32
	claimCalls    atomic.Int32

	mu          sync.Mutex
	accounts    []domain.AccountIdentity
	proxies     []domain.ProxyEndpoint
	onToken     func(call int32, account domain.AccountIdentity) (domain.SessionToken, error)
	onRealtime  func(call int32) (domain.RewardRealtime, error)
	claimedFlag bool
}

func (g *fakeGateway) GenerateToken(_ context.Context, account domain.AccountIdentity, proxy domain.ProxyEndpoint) (domain.SessionToken, error) {
	call := g.tokenCalls.Add(1)
	g.mu.Lock()
	g.accounts = append(g.accounts, account)
	g.proxies = append(g.proxies, proxy)
	onToken := g.onToken
	g.mu.Unlock()

	if onToken != nil {
		return onToken(call, account)
	}
	return domain.SessionToken("T-" + string(account)), nil
}

func (g *fakeGateway) RewardRealtime(context.Context, domain.SessionToken, domain.ProxyEndpoint) (domain.RewardRealtime, error) {
	call := g.realtimeCalls.Add(1)
	g.mu.Lock()
	onRealtime := g.onRealtime
	g.mu.Unlock()

	if onRealtime != nil {
		return onRealtime(call)
	}
	return domain.RewardRealtime{TotalHeartbeats: 3}, nil
}

func (g *fakeGateway) ClaimDetails(context.Context, domain.SessionToken, domain.ProxyEndpoint) (domain.ClaimDetails, error) {
	g.detailsCalls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.ClaimDetails{Tier: "bronze", DailyPoint: 10, Claimed: g.claimedFlag}, nil
}

func (g *fakeGateway) ClaimReward(context.Context, domain.SessionToken, domain.ProxyEndpoint) (domain.ClaimReceipt, error) {
	g.claimCalls.Add(1)
	g.mu.Lock()
	g.claimedFlag = true
	g.mu.Unlock()
	return domain.ClaimReceipt{Raw: []byte(`{"ok":true}`)}, nil
}

func (g *fakeGateway) setRealtime(fn func(call int32) (domain.RewardRealtime, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onRealtime = fn
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions []domain.ConnectionState
	responses   []json.RawMessage
}

func (o *recordingObserver) StateChanged(_ domain.Assignment, _ domain.ConnectionState, to domain.ConnectionState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, to)
}

func (o *recordingObserver) ResponseReceived(_ domain.Assignment, payload json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses = append(o.responses, payload)
}

func (o *recordingObserver) states() []domain.ConnectionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.ConnectionState(nil), o.transitions...)
}

func (o *recordingObserver) responseCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.responses)
}

type sessionHarness struct {
	session  *Session
	gateway  *fakeGateway
	dialer   *fakeDialer
	clock    *fakeClock
	observer *recordingObserver
	done     chan error
	cancel   context.CancelFunc
}

func newTestDeps(gateway ports.Gateway, dialer ports.ChannelDialer, clock ports.Clock, observer Observer) SessionDeps {
	logger, _ := logtest.NewNullLogger()
	return SessionDeps{
		Gateway:          gateway,
		Dialer:           dialer,
		Clock:            clock,
		Logger:           logger,
		Observer:         observer,
		Rand:             rand.New(rand.NewPCG(42, 42)),
		NewCorrelationID: func() string { return "corr-1" },
	}
}

func startSession(t *testing.T, account domain.AccountIdentity, gateway *fakeGateway) *sessionHarness {
	t.Helper()

	h := &sessionHarness{
		gateway:  gateway,
		dialer:   newFakeDialer(),
		clock:    &fakeClock{},
		observer: &recordingObserver{},
		done:     make(chan error, 1),
	}
	assignment := domain.Assignment{Index: 0, Account: account}
	h.session = NewSession(assignment, newTestDeps(h.gateway, h.dialer, h.clock, h.observer), testSettings())

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.done <- h.session.Run(ctx)
	}()
	t.Cleanup(func() {
		h.session.Stop()
		cancel()
	})
	return h
}

func (h *sessionHarness) waitState(t *testing.T, state domain.ConnectionState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.session.State() == state
	}, 2*time.Second, 5*time.Millisecond, "session never reached %s", state)
}

func (h *sessionHarness) waitDone(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}
