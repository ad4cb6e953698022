package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"persona/backend/internal/model"
	"persona/backend/pkg/logger"
	"persona/backend/pkg/network"
)

const (
	geoTimeout    = 3 * time.Second
	geoCacheTTL   = 6 * time.Hour
	maxGeoBody    = 64 << 10
	ipPlaceholder = "{ip}"
)

type geoLocation struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Lookup derives DeviceInfo from the user agent and, when a geo endpoint is
// configured, from an address lookup. Failures produce empty fields.
type Lookup struct {
	geoURL        string
	clientFactory *network.ClientFactory
	cache         *cache.Cache
	group         singleflight.Group
}

// NewLookup creates a lookup. geoURL may contain "{ip}"; otherwise the address
// is appended as a path segment. An empty geoURL disables geo lookups.
func NewLookup(geoURL string, clientFactory *network.ClientFactory) *Lookup {
	return &Lookup{
		geoURL:        strings.TrimSpace(geoURL),
		clientFactory: clientFactory,
		cache:         cache.New(geoCacheTTL, 30*time.Minute),
	}
}

// Lookup never fails; unknown parts stay empty.
func (l *Lookup) Lookup(ctx context.Context, addr, userAgent string) model.DeviceInfo {
	info := ParseUserAgent(userAgent)
	loc := l.locate(ctx, addr)
	info.Country = loc.Country
	info.City = loc.City
	return info
}

// ParseUserAgent extracts browser name, browser version and OS.
func ParseUserAgent(userAgent string) model.DeviceInfo {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return model.DeviceInfo{}
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		return model.DeviceInfo{Browser: name}
	}
	name, version := ua.Browser()
	return model.DeviceInfo{
		Browser:        name,
		BrowserVersion: majorVersion(version),
		OS:             ua.OS(),
	}
}

// majorVersion keeps the device description coarse so minor browser updates
// do not change the fingerprint.
func majorVersion(version string) string {
	if i := strings.IndexByte(version, '.'); i > 0 {
		return version[:i]
	}
	return version
}

func (l *Lookup) locate(ctx context.Context, addr string) geoLocation {
	if l.geoURL == "" || l.clientFactory == nil || !publicAddr(addr) {
		return geoLocation{}
	}
	if cached, ok := l.cache.Get(addr); ok {
		return cached.(geoLocation)
	}

	// The fetch is shared by every waiter on addr, so it must outlive the
	// caller that happened to start it. fetch bounds it with geoTimeout.
	shared := context.WithoutCancel(ctx)
	v, _, _ := l.group.Do(addr, func() (interface{}, error) {
		loc, err := l.fetch(shared, addr)
		if err != nil {
			logger.Debug("geo lookup failed", "addr", addr, "error", err)
			// Cache the miss briefly so a broken endpoint is not hammered.
			l.cache.Set(addr, geoLocation{}, time.Minute)
			return geoLocation{}, nil
		}
		l.cache.SetDefault(addr, loc)
		return loc, nil
	})
	return v.(geoLocation)
}

func (l *Lookup) fetch(ctx context.Context, addr string) (geoLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint(addr), nil)
	if err != nil {
		return geoLocation{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.clientFactory.NewHTTPClient(ctx, geoTimeout).Do(req)
	if err != nil {
		return geoLocation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geoLocation{}, fmt.Errorf("geo lookup: status %d", resp.StatusCode)
	}
	var loc geoLocation
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGeoBody)).Decode(&loc); err != nil {
		return geoLocation{}, fmt.Errorf("geo lookup: decode: %w", err)
	}
	loc.Country = strings.TrimSpace(loc.Country)
	loc.City = strings.TrimSpace(loc.City)
	return loc, nil
}

func (l *Lookup) endpoint(addr string) string {
	escaped := url.PathEscape(addr)
	if strings.Contains(l.geoURL, ipPlaceholder) {
		return strings.ReplaceAll(l.geoURL, ipPlaceholder, escaped)
	}
	return strings.TrimRight(l.geoURL, "/") + "/" + escaped
}

// publicAddr reports whether addr is a routable address worth looking up.
func publicAddr(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() && !ip.IsLinkLocalUnicast()
}
