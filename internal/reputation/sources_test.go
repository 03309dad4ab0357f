package reputation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
)

func TestIPAPISource_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/203.0.113.7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"country": "Germany",
			"regionName": "Hesse",
			"city": "Frankfurt",
			"isp": "Example Hosting GmbH",
			"org": "Example Org",
			"as": "AS64500 Example",
			"mobile": false,
			"proxy": true,
			"hosting": true
		}`))
	}))
	defer server.Close()

	source := &ipAPISource{name: "ip-api", baseURL: server.URL, client: server.Client()}
	report, err := source.Lookup(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if report.VPN == nil || !*report.VPN {
		t.Fatalf("expected hosting mapped to vpn flag, got %+v", report)
	}
	if report.Proxy == nil || !*report.Proxy {
		t.Fatalf("expected proxy flag, got %+v", report)
	}
	if len(report.Orgs) != 3 {
		t.Fatalf("expected org, isp and as strings, got %v", report.Orgs)
	}
	if report.Country != "Germany" || report.Region != "Hesse" || report.City != "Frankfurt" {
		t.Fatalf("unexpected geo: %+v", report)
	}
}

func TestIPAPISource_FailStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	}))
	defer server.Close()

	source := &ipAPISource{name: "ip-api", baseURL: server.URL, client: server.Client()}
	if _, err := source.Lookup(context.Background(), "192.168.0.1"); err == nil {
		t.Fatalf("expected error for fail status")
	}
}

func TestIPAPISource_MobileConnectionType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "isp": "Carrier", "mobile": true}`))
	}))
	defer server.Close()

	source := &ipAPISource{name: "ip-api", baseURL: server.URL, client: server.Client()}
	report, err := source.Lookup(context.Background(), "198.51.100.1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if report.ConnectionType != "mobile" {
		t.Fatalf("expected mobile connection type, got %q", report.ConnectionType)
	}
}

func TestIPWhoisSource_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/203.0.113.7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"country": "Latvia",
			"region": "Riga",
			"city": "Riga",
			"connection": {"isp": "LMT", "org": "Latvijas Mobilais Telefons", "type": "cellular"}
		}`))
	}))
	defer server.Close()

	source := &ipWhoisSource{name: "ipwhois", baseURL: server.URL, client: server.Client()}
	report, err := source.Lookup(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if report.ConnectionType != "cellular" {
		t.Fatalf("expected connection type from payload, got %q", report.ConnectionType)
	}
	if len(report.Orgs) != 2 || report.Orgs[0] != "Latvijas Mobilais Telefons" {
		t.Fatalf("expected org before isp, got %v", report.Orgs)
	}
	if report.Country != "Latvia" {
		t.Fatalf("unexpected geo: %+v", report)
	}
}

func TestIPWhoisSource_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "reserved range"}`))
	}))
	defer server.Close()

	source := &ipWhoisSource{name: "ipwhois", baseURL: server.URL, client: server.Client()}
	if _, err := source.Lookup(context.Background(), "10.0.0.1"); err == nil {
		t.Fatalf("expected error when the source reports failure")
	}
}

func TestNewSources_ConfigOrderAndSkips(t *testing.T) {
	cfg := config.ReputationConfig{Sources: []config.ReputationSource{
		{Type: "ip-api", URL: "http://ip-api.example/json"},
		{Type: "unknown-kind", URL: "http://nope.example"},
		{Type: "ipwhois", Name: "who", URL: "http://ipwhois.example/"},
		{Type: "ipwhois", URL: "   "},
	}}
	sources := NewSources(cfg)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name() != "ip-api" || sources[1].Name() != "who" {
		t.Fatalf("unexpected source order: %s, %s", sources[0].Name(), sources[1].Name())
	}
}
