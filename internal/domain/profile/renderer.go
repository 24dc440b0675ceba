package profile

import (
	"fmt"

	"github.com/google/uuid"
	"howett.net/plist"

	"github.com/okian/dorsum/internal/domain/mesh"
)

// ContentType is the media type iOS and macOS install profiles from.
const ContentType = "application/x-apple-aspen-config"

// ProxyPort is the port the mesh node's HTTP proxy listens on.
const ProxyPort = 8080

// DoHPath is appended to the node address to form the DoH endpoint.
const DoHPath = "/query"

const (
	dnsSettingsPayloadType = "com.apple.dnsSettings.managed"
	proxyPayloadType       = "com.apple.proxy.http.global"
	configurationType      = "Configuration"
)

// Payload is a rendered profile.
type Payload struct {
	Kind        Kind
	UUIDs       []string
	Body        []byte
	ContentType string
}

// FileName is the download name offered for the payload.
func (p Payload) FileName() string {
	return FileName(p.Kind)
}

// FileName returns the download name for kind.
func FileName(kind Kind) string {
	return "tailscale-" + kind.String() + ".mobileconfig"
}

// Renderer builds profile documents for a snapshot. It holds no mutable state
// and is safe for concurrent use.
type Renderer struct {
	newID        func() (uuid.UUID, error)
	organization string
	prefix       string
}

// NewRenderer returns a Renderer with random v4 identifiers.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		newID:        uuid.NewRandom,
		organization: "dorsum",
		prefix:       "sh.dorsum",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the kind's document for the snapshot's primary address.
// Every call draws fresh identifiers.
func (r *Renderer) Render(kind Kind, snap mesh.NetworkSnapshot) (Payload, error) {
	n := kind.Slots()
	if n == 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	addr, ok := snap.PrimaryAddress()
	if !ok || addr == "" {
		return Payload{}, fmt.Errorf("render %s: %w", kind, ErrMissingAddress)
	}

	ids, err := r.identifiers(n)
	if err != nil {
		return Payload{}, err
	}

	var doc configuration
	if kind == HTTPProxy {
		doc = r.proxyDocument(addr, ids)
	} else {
		doc = r.dnsDocument(kind, addr, ids)
	}

	body, err := plist.MarshalIndent(doc, plist.XMLFormat, "\t")
	if err != nil {
		return Payload{}, fmt.Errorf("encode %s profile: %w", kind, err)
	}

	return Payload{
		Kind:        kind,
		UUIDs:       ids,
		Body:        body,
		ContentType: ContentType,
	}, nil
}

func (r *Renderer) identifiers(n int) ([]string, error) {
	ids := make([]string, 0, n)
	seen := make(map[uuid.UUID]struct{}, n)
	for len(ids) < n {
		id, err := r.newID()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIdentifier, err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrIdentifier, id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id.String())
	}
	return ids, nil
}

// ids: inner identifier suffix, inner UUID, outer identifier suffix, outer UUID.
func (r *Renderer) dnsDocument(kind Kind, addr string, ids []string) configuration {
	var settings any = dotSettings{DNSProtocol: "TLS", ServerAddresses: []string{}, ServerName: addr}
	label := "TLS"
	if kind == DNSOverHTTPS {
		label = "HTTPS"
		settings = dohSettings{DNSProtocol: "HTTPS", ServerAddresses: []string{}, ServerURL: addr + DoHPath}
	}

	inner := dnsSettingsPayload{
		DNSSettings:         settings,
		OnDemandRules:       defaultOnDemandRules(),
		PayloadDescription:  fmt.Sprintf("Configures device to use %s Encrypted DNS over %s", r.organization, label),
		PayloadDisplayName:  fmt.Sprintf("%s DNS over %s", r.organization, label),
		PayloadIdentifier:   dnsSettingsPayloadType + "." + ids[0],
		PayloadType:         dnsSettingsPayloadType,
		PayloadUUID:         ids[1],
		PayloadVersion:      1,
		ProhibitDisablement: false,
	}

	removalDisallowed := false
	return configuration{
		PayloadContent:           []any{inner},
		PayloadDescription:       "Adds different encrypted DNS configurations to Big Sur (or newer) and iOS 14 (or newer) based systems",
		PayloadDisplayName:       "Encrypted DNS (DoH, DoT)",
		PayloadIdentifier:        r.prefix + ".apple-dns." + ids[2],
		PayloadRemovalDisallowed: &removalDisallowed,
		PayloadType:              configurationType,
		PayloadUUID:              ids[3],
		PayloadVersion:           1,
	}
}

// ids: inner UUID, outer UUID.
func (r *Renderer) proxyDocument(addr string, ids []string) configuration {
	inner := httpProxyPayload{
		ProxyCaptiveLoginAllowed: true,
		ProxyServer:              addr,
		ProxyServerPort:          ProxyPort,
		PayloadIdentifier:        r.prefix + ".proxy",
		PayloadType:              proxyPayloadType,
		PayloadUUID:              ids[0],
		PayloadVersion:           1,
	}

	return configuration{
		PayloadContent:     []any{inner},
		PayloadDisplayName: r.organization + " Global HTTP Proxy",
		PayloadIdentifier:  r.prefix + ".proxy-profile",
		PayloadType:        configurationType,
		PayloadUUID:        ids[1],
		PayloadVersion:     1,
	}
}
