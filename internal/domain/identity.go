package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AccountIdentity is the wallet address a worker runs on behalf of.
type AccountIdentity string

// ProxyEndpoint is a scheme://host:port proxy URL. The zero value means a
// direct connection.
type ProxyEndpoint string

// WorkerIdentity is the stable key sent in REGISTER and HEARTBEAT messages.
type WorkerIdentity string

// SessionToken is the bearer credential issued by the gateway.
type SessionToken string

func NewWorkerIdentity(account AccountIdentity) WorkerIdentity {
	return WorkerIdentity(base64.StdEncoding.EncodeToString([]byte(account)))
}

// Account decodes the identity back into the address it was derived from.
func (w WorkerIdentity) Account() (AccountIdentity, error) {
	raw, err := base64.StdEncoding.DecodeString(string(w))
	if err != nil {
		return "", fmt.Errorf("decode worker identity: %w", err)
	}
	return AccountIdentity(raw), nil
}

func (p ProxyEndpoint) IsDirect() bool {
	return strings.TrimSpace(string(p)) == ""
}

// Label is the human readable form used in logs.
func (p ProxyEndpoint) Label() string {
	if p.IsDirect() {
		return "No proxy"
	}
	return string(p)
}

// Masked keeps enough of the token to correlate log lines without leaking it.
func (t SessionToken) Masked() string {
	const head, tail = 36, 24
	if len(t) <= head+tail {
		return string(t)
	}
	return string(t[:head]) + "-" + string(t[len(t)-tail:])
}

// Assignment binds one account to its position in the fleet and its proxy.
type Assignment struct {
	Index   int
	Account AccountIdentity
	Proxy   ProxyEndpoint
}

// Number is the 1-based position used in operator-facing output.
func (a Assignment) Number() int {
	return a.Index + 1
}

// AssignProxies pairs every account with proxies[i mod len(proxies)], or no
// proxy when the list is empty.
func AssignProxies(accounts []AccountIdentity, proxies []ProxyEndpoint) []Assignment {
	assignments := make([]Assignment, 0, len(accounts))
	for i, account := range accounts {
		assignment := Assignment{Index: i, Account: account}
		if len(proxies) > 0 {
			assignment.Proxy = proxies[i%len(proxies)]
		}
		assignments = append(assignments, assignment)
	}
	return assignments
}
