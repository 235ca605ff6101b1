// Package gateway implements the Glueco gateway pairing protocol: parsing
// pairing strings, negotiating a capability grant through a browser
// redirect, and issuing proof-of-possession signed requests against the
// resulting session.
package gateway

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
)

const pairingPrefix = "pair"

// PairingDescriptor is the decoded form of a pairing string. The token is
// one-time use; the gateway invalidates it after the first pair request.
type PairingDescriptor struct {
	ProxyURL string
	Token    string
}

// ParsePairingString decodes a pairing string of the form
// pair::<proxy-url>::<token>.
func ParsePairingString(s string) (*PairingDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 {
		return nil, apperrors.MalformedPairingString("expected pair::<proxy-url>::<token>")
	}
	if parts[0] != pairingPrefix {
		return nil, apperrors.MalformedPairingString(fmt.Sprintf("unknown scheme %q", parts[0]))
	}

	proxyURL := strings.TrimRight(parts[1], "/")
	u, err := url.Parse(proxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.MalformedPairingString("proxy URL is not valid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.MalformedPairingString(fmt.Sprintf("proxy URL scheme %q is not supported", u.Scheme))
	}

	if parts[2] == "" {
		return nil, apperrors.MalformedPairingString("pairing token is empty")
	}

	return &PairingDescriptor{
		ProxyURL: proxyURL,
		Token:    parts[2],
	}, nil
}

// FormatPairingString is the inverse of ParsePairingString.
func FormatPairingString(d *PairingDescriptor) string {
	return fmt.Sprintf("%s::%s::%s", pairingPrefix, d.ProxyURL, d.Token)
}
