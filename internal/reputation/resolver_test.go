package reputation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeSource struct {
	name   string
	report Report
	err    error
	calls  int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(_ context.Context, _ string) (Report, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return Report{}, f.err
	}
	return f.report, nil
}

func (f *fakeSource) callCount() int32 { return atomic.LoadInt32(&f.calls) }

func newTestCache(t *testing.T) *GormCache {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.IPReputationRecord{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewGormCache(conn)
}

func boolPtr(v bool) *bool { return &v }

func TestMerge_VPNKeyword(t *testing.T) {
	verdict, any := merge([]*Report{{Orgs: []string{"NordVPN S.A."}}})
	if !any {
		t.Fatalf("expected a merged report")
	}
	if !verdict.IsVPN {
		t.Fatalf("expected vpn keyword match, got %+v", verdict)
	}
	if verdict.Provider != "NordVPN S.A." {
		t.Fatalf("expected matched string as provider, got %q", verdict.Provider)
	}
}

func TestMerge_ExplicitFlags(t *testing.T) {
	verdict, _ := merge([]*Report{{
		Orgs:  []string{"Plain Broadband Co"},
		VPN:   boolPtr(true),
		Proxy: boolPtr(true),
	}})
	if !verdict.IsVPN || !verdict.IsProxy {
		t.Fatalf("expected explicit flags honored, got %+v", verdict)
	}
}

func TestMerge_ProxyKeyword(t *testing.T) {
	verdict, _ := merge([]*Report{{Orgs: []string{"Tor Exit Node Operators"}}})
	if !verdict.IsProxy {
		t.Fatalf("expected proxy verdict for tor org, got %+v", verdict)
	}
}

func TestMerge_MeteredKeywordAndConnectionType(t *testing.T) {
	verdict, _ := merge([]*Report{{
		Orgs:           []string{"T-Mobile USA, Inc."},
		ConnectionType: "cellular",
	}})
	if !verdict.IsMetered {
		t.Fatalf("expected metered verdict, got %+v", verdict)
	}
	if verdict.ConnectionType == "" {
		t.Fatalf("expected connection type label, got %+v", verdict)
	}
}

func TestMerge_CleanResidentialIP(t *testing.T) {
	verdict, _ := merge([]*Report{{
		Orgs:    []string{"Comcast Cable Communications"},
		Country: "United States",
	}})
	if verdict.IsVPN || verdict.IsProxy || verdict.IsMetered {
		t.Fatalf("expected clean verdict, got %+v", verdict)
	}
	if verdict.Provider != "Comcast Cable Communications" {
		t.Fatalf("expected first org as provider fallback, got %q", verdict.Provider)
	}
}

func TestMerge_GeoPriorityOrder(t *testing.T) {
	verdict, _ := merge([]*Report{
		{Orgs: []string{"First ISP"}, Country: "Latvia"},
		{Orgs: []string{"Second ISP"}, Country: "Estonia", City: "Tallinn"},
	})
	if verdict.Country != "Latvia" {
		t.Fatalf("expected first source's country to win, got %q", verdict.Country)
	}
	if verdict.City != "Tallinn" {
		t.Fatalf("expected later source to fill missing city, got %q", verdict.City)
	}
}

func TestResolve_CacheHitSkipsSources(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{name: "a", report: Report{Orgs: []string{"Hosting Provider X"}}}
	resolver := NewResolver(newTestCache(t), nil, []Source{source}, func() time.Time { return now })

	first := resolver.Resolve(context.Background(), "1.2.3.4")
	if !first.IsVPN {
		t.Fatalf("expected hosting keyword to flag vpn, got %+v", first)
	}

	second := resolver.Resolve(context.Background(), "1.2.3.4")
	if source.callCount() != 1 {
		t.Fatalf("expected a single external lookup, got %d", source.callCount())
	}
	if second.IsVPN != first.IsVPN || second.Provider != first.Provider {
		t.Fatalf("expected cached verdict to match, got %+v vs %+v", second, first)
	}
	// Geo survives the cache, hits and misses answer alike.
	if second.Country != first.Country {
		t.Fatalf("expected cached geo, got %+v", second)
	}
}

func TestResolve_ExpiredCacheTriggersNewLookup(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{name: "a", report: Report{Orgs: []string{"Plain ISP"}}}
	resolver := NewResolver(newTestCache(t), nil, []Source{source}, func() time.Time { return now })

	resolver.Resolve(context.Background(), "5.6.7.8")
	if source.callCount() != 1 {
		t.Fatalf("expected one lookup, got %d", source.callCount())
	}

	now = now.Add(25 * time.Hour)
	resolver.Resolve(context.Background(), "5.6.7.8")
	if source.callCount() != 2 {
		t.Fatalf("expected re-lookup after expiry, got %d", source.callCount())
	}
}

func TestResolve_AllSourcesFailedReturnsUnknown(t *testing.T) {
	source := &fakeSource{name: "a", err: fmt.Errorf("boom")}
	resolver := NewResolver(newTestCache(t), nil, []Source{source}, nil)

	verdict := resolver.Resolve(context.Background(), "9.9.9.9")
	if verdict != Unknown() {
		t.Fatalf("expected unknown verdict, got %+v", verdict)
	}

	// Nothing learned, nothing cached: the next call asks again.
	resolver.Resolve(context.Background(), "9.9.9.9")
	if source.callCount() != 2 {
		t.Fatalf("expected no caching of failures, got %d calls", source.callCount())
	}
}

func TestResolve_OneFailedSourceIsAbsorbed(t *testing.T) {
	broken := &fakeSource{name: "broken", err: fmt.Errorf("timeout")}
	working := &fakeSource{name: "working", report: Report{Orgs: []string{"Mobile Carrier"}, Country: "Germany"}}
	resolver := NewResolver(newTestCache(t), nil, []Source{broken, working}, nil)

	verdict := resolver.Resolve(context.Background(), "8.8.4.4")
	if !verdict.IsMetered {
		t.Fatalf("expected metered from the surviving source, got %+v", verdict)
	}
	if verdict.Country != "Germany" {
		t.Fatalf("expected geo from the surviving source, got %+v", verdict)
	}
}
