// Package token extracts claims from the storefront bearer credential.
//
// Two shapes are accepted: the usual three-part signed token, whose middle
// segment is the payload, and a simplified two-part token whose first segment
// is the payload. Signatures are never checked here; the backend is the only
// party that trusts a credential.
package token

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim is the decoded payload of a credential.
type Claim struct {
	Email     string           `json:"email"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the claim carried by credential, or false when the credential
// has the wrong shape or its payload is not a JSON object.
func Decode(credential string) (*Claim, bool) {
	parts := strings.Split(credential, ".")

	var payload string
	switch len(parts) {
	case 3:
		payload = parts[1]
	case 2:
		payload = parts[0]
	default:
		return nil, false
	}

	raw, err := parser.DecodeSegment(toURLAlphabet(payload))
	if err != nil {
		return nil, false
	}

	var claim Claim
	if err := json.Unmarshal(raw, &claim); err != nil {
		return nil, false
	}
	return &claim, true
}

// IsExpired reports whether claim can no longer back a session. A claim
// without an expiry counts as expired.
func IsExpired(claim *Claim, now time.Time) bool {
	if claim == nil || claim.ExpiresAt == nil {
		return true
	}
	return claim.ExpiresAt.Unix() < now.Unix()
}

// older two-part credentials were encoded with the standard alphabet
func toURLAlphabet(seg string) string {
	return strings.NewReplacer("+", "-", "/", "_").Replace(seg)
}
