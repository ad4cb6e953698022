// Package identity derives the rate-limit identifiers of a request.
package identity

import (
	"strings"

	"persona/backend/internal/hashutil"
	"persona/backend/internal/model"
)

// UnknownNetwork stands in for a request whose network address is missing.
const UnknownNetwork = "unknown"

const maxTokenLength = 128

// RequestContext is what the routing layer knows about a caller.
type RequestContext struct {
	Addr   string
	Token  string
	Device model.DeviceInfo
}

// Fingerprint hashes the coarse device fields in a fixed order. Missing fields
// keep their slot. It reports false when every field is empty.
func Fingerprint(d model.DeviceInfo) (string, bool) {
	if d.Empty() {
		return "", false
	}
	return hashutil.SHA256HexParts("|", d.Browser, d.BrowserVersion, d.OS, d.Country, d.City), true
}

// ValidToken reports whether token is a well-formed client token.
func ValidToken(token string) bool {
	if token == "" || len(token) > maxTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// Resolve returns the identifiers of rc: the network address always, then the
// token and the device fingerprint when present. Malformed tokens are dropped.
// Duplicates are removed while keeping insertion order.
func Resolve(rc RequestContext) []model.Identifier {
	addr := strings.TrimSpace(rc.Addr)
	if addr == "" {
		addr = UnknownNetwork
	}

	ids := make([]model.Identifier, 0, 3)
	seen := make(map[string]struct{}, 3)
	add := func(id model.Identifier) {
		if _, ok := seen[id.Key()]; ok {
			return
		}
		seen[id.Key()] = struct{}{}
		ids = append(ids, id)
	}

	add(model.Identifier{Kind: model.KindNetwork, Value: addr})
	if token := strings.TrimSpace(rc.Token); ValidToken(token) {
		add(model.Identifier{Kind: model.KindToken, Value: token})
	}
	if fp, ok := Fingerprint(rc.Device); ok {
		add(model.Identifier{Kind: model.KindFingerprint, Value: fp})
	}
	return ids
}
