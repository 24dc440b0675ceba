package profile

// Property list shapes of the rendered documents. Field names are the keys
// Apple's device management expects; the plist encoder handles escaping.

type configuration struct {
	PayloadContent           []any  `plist:"PayloadContent"`
	PayloadDescription       string `plist:"PayloadDescription,omitempty"`
	PayloadDisplayName       string `plist:"PayloadDisplayName"`
	PayloadIdentifier        string `plist:"PayloadIdentifier"`
	PayloadRemovalDisallowed *bool  `plist:"PayloadRemovalDisallowed,omitempty"`
	PayloadType              string `plist:"PayloadType"`
	PayloadUUID              string `plist:"PayloadUUID"`
	PayloadVersion           int    `plist:"PayloadVersion"`
}

type dnsSettingsPayload struct {
	DNSSettings         any            `plist:"DNSSettings"`
	OnDemandRules       []onDemandRule `plist:"OnDemandRules"`
	PayloadDescription  string         `plist:"PayloadDescription"`
	PayloadDisplayName  string         `plist:"PayloadDisplayName"`
	PayloadIdentifier   string         `plist:"PayloadIdentifier"`
	PayloadType         string         `plist:"PayloadType"`
	PayloadUUID         string         `plist:"PayloadUUID"`
	PayloadVersion      int            `plist:"PayloadVersion"`
	ProhibitDisablement bool           `plist:"ProhibitDisablement"`
}

type dotSettings struct {
	DNSProtocol     string   `plist:"DNSProtocol"`
	ServerAddresses []string `plist:"ServerAddresses"`
	ServerName      string   `plist:"ServerName"`
}

type dohSettings struct {
	DNSProtocol     string   `plist:"DNSProtocol"`
	ServerAddresses []string `plist:"ServerAddresses"`
	ServerURL       string   `plist:"ServerURL"`
}

type onDemandRule struct {
	Action             string `plist:"Action"`
	InterfaceTypeMatch string `plist:"InterfaceTypeMatch,omitempty"`
}

type httpProxyPayload struct {
	ProxyCaptiveLoginAllowed bool   `plist:"ProxyCaptiveLoginAllowed"`
	ProxyServer              string `plist:"ProxyServer"`
	ProxyServerPort          int    `plist:"ProxyServerPort"`
	PayloadIdentifier        string `plist:"PayloadIdentifier"`
	PayloadType              string `plist:"PayloadType"`
	PayloadUUID              string `plist:"PayloadUUID"`
	PayloadVersion           int    `plist:"PayloadVersion"`
}

// Connect on Wi-Fi and cellular, disconnect on anything else.
func defaultOnDemandRules() []onDemandRule {
	return []onDemandRule{
		{Action: "Connect", InterfaceTypeMatch: "WiFi"},
		{Action: "Connect", InterfaceTypeMatch: "Cellular"},
		{Action: "Disconnect"},
	}
}
