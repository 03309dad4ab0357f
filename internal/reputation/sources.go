package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/settings"
)

// NewSources builds source clients from the config, preserving config
// order as the geo priority order. Unknown source types are skipped.
func NewSources(cfg config.ReputationConfig) []Source {
	client := &http.Client{Timeout: settings.ReputationSourceTimeout}
	sources := make([]Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		base := strings.TrimRight(strings.TrimSpace(sc.URL), "/")
		if base == "" {
			continue
		}
		name := strings.TrimSpace(sc.Name)
		switch strings.ToLower(strings.TrimSpace(sc.Type)) {
		case "ip-api":
			if name == "" {
				name = "ip-api"
			}
			sources = append(sources, &ipAPISource{name: name, baseURL: base, client: client})
		case "ipwhois":
			if name == "" {
				name = "ipwhois"
			}
			sources = append(sources, &ipWhoisSource{name: name, baseURL: base, client: client})
		}
	}
	return sources
}

// ipAPISource queries an ip-api.com style endpoint. The proxy/hosting/
// mobile booleans are only present with the extended fields parameter.
type ipAPISource struct {
	name    string
	baseURL string
	client  *http.Client
}

func (s *ipAPISource) Name() string { return s.name }

// Lookup fetches GET <base>/<ip>?fields=... and maps the response.
func (s *ipAPISource) Lookup(ctx context.Context, ip string) (Report, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status,message,country,regionName,city,isp,org,as,mobile,proxy,hosting", s.baseURL, url.PathEscape(ip))
	var payload struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
		ISP        string `json:"isp"`
		Org        string `json:"org"`
		AS         string `json:"as"`
		Mobile     bool   `json:"mobile"`
		Proxy      bool   `json:"proxy"`
		Hosting    bool   `json:"hosting"`
	}
	if err := s.fetch(ctx, endpoint, &payload); err != nil {
		return Report{}, err
	}
	if payload.Status != "success" {
		return Report{}, fmt.Errorf("reputation: %s: %s", s.name, payload.Message)
	}

	report := Report{
		Orgs:    nonEmpty(payload.Org, payload.ISP, payload.AS),
		Country: payload.Country,
		Region:  payload.RegionName,
		City:    payload.City,
	}
	// ip-api's hosting flag marks datacenter space, which this project
	// treats as a VPN signal; proxy covers proxies and tor exits.
	vpn := payload.Hosting
	proxy := payload.Proxy
	report.VPN = &vpn
	report.Proxy = &proxy
	if payload.Mobile {
		report.ConnectionType = "mobile"
	}
	return report, nil
}

func (s *ipAPISource) fetch(ctx context.Context, endpoint string, out any) error {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if errReq != nil {
		return errReq
	}
	resp, errDo := s.client.Do(req)
	if errDo != nil {
		return errDo
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reputation: %s: status %d", s.name, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ipWhoisSource queries an ipwho.is style endpoint, which exposes
// organization strings and a connection type but no explicit abuse flags.
type ipWhoisSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func (s *ipWhoisSource) Name() string { return s.name }

// Lookup fetches GET <base>/<ip> and maps the response.
func (s *ipWhoisSource) Lookup(ctx context.Context, ip string) (Report, error) {
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(ip))
	var payload struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		Country    string `json:"country"`
		Region     string `json:"region"`
		City       string `json:"city"`
		Connection struct {
			ISP    string `json:"isp"`
			Org    string `json:"org"`
			Domain string `json:"domain"`
			Type   string `json:"type"`
		} `json:"connection"`
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if errReq != nil {
		return Report{}, errReq
	}
	resp, errDo := s.client.Do(req)
	if errDo != nil {
		return Report{}, errDo
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("reputation: %s: status %d", s.name, resp.StatusCode)
	}
	if errDecode := json.NewDecoder(resp.Body).Decode(&payload); errDecode != nil {
		return Report{}, errDecode
	}
	if !payload.Success {
		return Report{}, fmt.Errorf("reputation: %s: %s", s.name, payload.Message)
	}

	return Report{
		Orgs:           nonEmpty(payload.Connection.Org, payload.Connection.ISP),
		ConnectionType: payload.Connection.Type,
		Country:        payload.Country,
		Region:         payload.Region,
		City:           payload.City,
	}, nil
}

// nonEmpty filters out blank strings, keeping order.
func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
