package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ProxyProvider provides the outbound proxy URL.
type ProxyProvider interface {
	GetProxyURL(ctx context.Context) string
}

// IPStackProvider selects the address family used for outbound dials:
// "default", "ipv4" or "ipv6".
type IPStackProvider interface {
	GetIPStack(ctx context.Context) string
}

// StaticProvider serves fixed proxy and IP stack settings from configuration.
type StaticProvider struct {
	ProxyURL string
	IPStack  string
}

func (p StaticProvider) GetProxyURL(context.Context) string { return p.ProxyURL }

func (p StaticProvider) GetIPStack(context.Context) string {
	if p.IPStack == "" {
		return "default"
	}
	return p.IPStack
}

type noopProvider struct{}

func (p *noopProvider) GetProxyURL(context.Context) string { return "" }

func (p *noopProvider) GetIPStack(context.Context) string { return "default" }

// ClientFactory creates HTTP clients for outbound collaborator calls.
type ClientFactory struct {
	proxyProvider   ProxyProvider
	ipStackProvider IPStackProvider
	testHTTPClient  *http.Client
}

// NewClientFactory creates a new client factory.
func NewClientFactory(proxyProvider ProxyProvider, ipStackProvider IPStackProvider) *ClientFactory {
	if proxyProvider == nil {
		proxyProvider = &noopProvider{}
	}
	if ipStackProvider == nil {
		ipStackProvider = &noopProvider{}
	}
	return &ClientFactory{proxyProvider: proxyProvider, ipStackProvider: ipStackProvider}
}

// NewClientFactoryForTest creates a factory that always hands out client.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	p := &noopProvider{}
	return &ClientFactory{proxyProvider: p, ipStackProvider: p, testHTTPClient: client}
}

// NewHTTPClient creates an http.Client honoring the proxy and IP stack settings.
func (f *ClientFactory) NewHTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: f.NewHTTPTransport(ctx),
	}
}

// NewHTTPTransport creates an http.Transport with proxy and dial configuration.
func (f *ClientFactory) NewHTTPTransport(ctx context.Context) *http.Transport {
	ipStack := f.ipStackProvider.GetIPStack(ctx)
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialWithIPStack(ctx, network, addr, ipStack)
		},
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyURL := f.proxyProvider.GetProxyURL(ctx); proxyURL != "" {
		// Only HTTP proxies are supported by the transport.
		if parsed, err := url.Parse(proxyURL); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}
	return transport
}

// GetProxyURL returns the current proxy URL.
func (f *ClientFactory) GetProxyURL(ctx context.Context) string {
	return f.proxyProvider.GetProxyURL(ctx)
}

// TestProxy checks that testURL is reachable through the configured client.
func (f *ClientFactory) TestProxy(ctx context.Context, testURL string) error {
	client := f.NewHTTPClient(ctx, 10*time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("proxy test: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func dialWithIPStack(ctx context.Context, network, addr, ipStack string) (net.Conn, error) {
	switch ipStack {
	case "ipv4":
		return dialWithPreference(ctx, addr, "tcp4", "tcp6")
	case "ipv6":
		return dialWithPreference(ctx, addr, "tcp6", "tcp4")
	default:
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
}

// dialWithPreference dials primary first and then fallback, if set.
func dialWithPreference(ctx context.Context, addr, primary, fallback string) (net.Conn, error) {
	d := net.Dialer{Timeout: 10 * time.Second}
	conn, err := d.DialContext(ctx, primary, addr)
	if err == nil {
		return conn, nil
	}
	if fallback == "" {
		return nil, err
	}
	conn, fallbackErr := d.DialContext(ctx, fallback, addr)
	if fallbackErr != nil {
		return nil, errors.Join(err, fallbackErr)
	}
	return conn, nil
}
