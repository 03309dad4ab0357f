package reputation

import "context"

// Verdict is the merged reputation result for one IP. The zero value is
// the permissive "unknown" verdict handed back when every source failed.
type Verdict struct {
	IsVPN     bool   `json:"is_vpn"`
	IsProxy   bool   `json:"is_proxy"`
	IsMetered bool   `json:"is_metered"`
	Provider  string `json:"provider"`
	// ConnectionType carries the matched mobile/cellular label when
	// IsMetered is set; the binder records it on the binding.
	ConnectionType string `json:"connection_type,omitempty"`
	Country        string `json:"country"`
	Region         string `json:"region"`
	City           string `json:"city"`
}

// Unknown returns the all-false verdict used when nothing could be resolved.
func Unknown() Verdict { return Verdict{} }

// Report is the untrusted answer from a single external source.
type Report struct {
	// Orgs lists every organization/provider string the source returned
	// (org, ISP, AS description), scanned against the keyword lists.
	Orgs []string
	// ConnectionType is the source's connection label ("mobile",
	// "hotspot", ...), scanned like an org string.
	ConnectionType string
	// VPN and Proxy carry the source's explicit flags when it has them.
	VPN   *bool
	Proxy *bool

	Country string
	Region  string
	City    string
}

// Source looks up one external IP intelligence service.
type Source interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Report, error)
}
