package http

import (
	"fmt"
	"net"
	"strings"

	"github.com/labstack/echo/v4"
)

// NewIPExtractor decides which address becomes the caller's network
// identifier. Without trusted proxies only the socket peer counts, since any
// client can write X-Forwarded-For. With proxies, the header is honored only
// for hops inside the listed ranges.
func NewIPExtractor(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, entry := range trusted {
		ipRange, err := parseTrustedRange(entry)
		if err != nil {
			return nil, err
		}
		options = append(options, echo.TrustIPRange(ipRange))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

func parseTrustedRange(entry string) (*net.IPNet, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, ipRange, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		return ipRange, nil
	}
	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, fmt.Errorf("trusted proxy %q: not an address or CIDR", entry)
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}
