// Package profile renders Apple configuration profiles (.mobileconfig) that
// point a device at the mesh node for encrypted DNS or as an HTTP proxy.
package profile

import (
	"fmt"
	"strings"
)

// Kind selects the profile document to render.
type Kind int

// Supported profile kinds.
const (
	DNSOverTLS Kind = iota + 1
	DNSOverHTTPS
	HTTPProxy
)

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{DNSOverTLS, DNSOverHTTPS, HTTPProxy}
}

// String returns the short name used in routes, metrics and logs.
func (k Kind) String() string {
	switch k {
	case DNSOverTLS:
		return "dot"
	case DNSOverHTTPS:
		return "doh"
	case HTTPProxy:
		return "proxy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Slots is the number of identifiers the kind's document needs: one UUID and
// one identifier suffix per payload for DNS profiles, one UUID per payload for
// the proxy profile. Zero for unknown kinds.
func (k Kind) Slots() int {
	switch k {
	case DNSOverTLS, DNSOverHTTPS:
		return 4
	case HTTPProxy:
		return 2
	default:
		return 0
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
