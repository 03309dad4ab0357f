package reputation

import "strings"

// vpnKeywords flag hosting/VPN organizations, including the named
// providers seen in the wild.
var vpnKeywords = []string{
	"vpn",
	"proxy",
	"hosting",
	"datacenter",
	"data center",
	"nordvpn",
	"protonvpn",
	"expressvpn",
	"cyberghost",
	"ipvanish",
	"surfshark",
	"mullvad",
	"windscribe",
	"tunnelbear",
	"private internet access",
}

// proxyKeywords flag open proxies and anonymizers.
var proxyKeywords = []string{
	"proxy",
	"tor",
	"anonymizer",
}

// meteredKeywords flag mobile/cellular carriers and hotspots.
var meteredKeywords = []string{
	"mobile",
	"cellular",
	"lte",
	"4g",
	"5g",
	"hotspot",
}

// matchKeyword returns the first keyword contained in value,
// case-insensitively, or "" when none match.
func matchKeyword(value string, keywords []string) string {
	lowered := strings.ToLower(value)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return keyword
		}
	}
	return ""
}
