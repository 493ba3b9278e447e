package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/worker-fleet/internal/domain"
	xproxy "golang.org/x/net/proxy"
	"h12.io/socks"
)

// DialContextFunc matches net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Route describes how outbound connections reach the gateway. A zero Route
// dials directly.
type Route struct {
	// ProxyURL is set for HTTP CONNECT proxies.
	ProxyURL *url.URL
	// DialContext tunnels through SOCKS proxies.
	DialContext DialContextFunc
}

func (r Route) IsDirect() bool {
	return r.ProxyURL == nil && r.DialContext == nil
}

// Resolve maps an endpoint to a Route. Supported schemes are http, https,
// socks4, socks4a, socks5 and socks5h.
func Resolve(endpoint domain.ProxyEndpoint) (Route, error) {
	if endpoint.IsDirect() {
		return Route{}, nil
	}

	raw := strings.TrimSpace(string(endpoint))
	parsed, err := url.Parse(raw)
	if err != nil {
		return Route{}, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	if parsed.Host == "" {
		return Route{}, fmt.Errorf("%w: %q has no host", domain.ErrUnsupportedProxy, raw)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return Route{ProxyURL: parsed}, nil
	case "socks5", "socks5h":
		dialer, err := xproxy.FromURL(parsed, xproxy.Direct)
		if err != nil {
			return Route{}, fmt.Errorf("socks5 proxy %q: %w", parsed.Redacted(), err)
		}
		return Route{DialContext: contextDialer(dialer)}, nil
	case "socks4", "socks4a":
		return Route{DialContext: withContext(socks.Dial(raw))}, nil
	default:
		return Route{}, fmt.Errorf("%w: scheme %q", domain.ErrUnsupportedProxy, parsed.Scheme)
	}
}

// Transport clones the default transport and routes it through r.
func (r Route) Transport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if r.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(r.ProxyURL)
	} else {
		transport.Proxy = nil
	}
	if r.DialContext != nil {
		transport.DialContext = r.DialContext
	}
	return transport
}

func contextDialer(dialer xproxy.Dialer) DialContextFunc {
	if cd, ok := dialer.(xproxy.ContextDialer); ok {
		return cd.DialContext
	}
	return withContext(dialer.Dial)
}

// withContext adapts a blocking dial so ctx cancellation abandons it. A
// connection that completes after cancellation is closed.
func withContext(dial func(network, addr string) (net.Conn, error)) DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialed struct {
			conn net.Conn
			err  error
		}
		result := make(chan dialed, 1)
		go func() {
			conn, err := dial(network, addr)
			result <- dialed{conn: conn, err: err}
		}()

		select {
		case <-ctx.Done():
			go func() {
				if r := <-result; r.conn != nil {
					_ = r.conn.Close()
				}
			}()
			return nil, ctx.Err()
		case r := <-result:
			return r.conn, r.err
		}
	}
}
