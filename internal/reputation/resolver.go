// Package reputation classifies IPs as VPN, proxy, and/or metered using
// cached verdicts and external intelligence services. Resolution never
// fails outward; when nothing can be learned the permissive unknown
// verdict is returned.
package reputation

import (
	"context"
	"sync"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Resolver merges cached and freshly queried reputation data per IP.
type Resolver struct {
	cache   Cache
	redis   *RedisCache
	sources []Source
	ttl     time.Duration
	timeout time.Duration
	nowFn   func() time.Time
}

// NewResolver constructs a Resolver with default dependencies when nil.
// redisCache may be nil to disable the look-aside layer.
func NewResolver(cache Cache, redisCache *RedisCache, sources []Source, nowFn func() time.Time) *Resolver {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Resolver{
		cache:   cache,
		redis:   redisCache,
		sources: sources,
		ttl:     settings.ReputationCacheTTL,
		timeout: settings.ReputationSourceTimeout,
		nowFn:   nowFn,
	}
}

// Resolve returns the reputation verdict for ip. Cache hits are served
// without touching any source; on a miss every source is queried
// concurrently and the answers merged. Internal errors are absorbed.
func (r *Resolver) Resolve(ctx context.Context, ip string) Verdict {
	if r == nil || ip == "" {
		return Unknown()
	}
	now := r.nowFn()

	if verdict, ok := r.redis.Get(ctx, ip, now); ok {
		return verdict
	}
	if r.cache != nil {
		verdict, ok, errGet := r.cache.Get(ctx, ip, now)
		if errGet != nil {
			log.WithError(errGet).WithField("ip", ip).Warn("reputation: cache read failed")
		} else if ok {
			r.redis.Put(ctx, ip, verdict, now, r.ttl)
			return verdict
		}
	}

	reports := r.lookupAll(ctx, ip)
	verdict, any := merge(reports)
	if !any {
		log.WithField("ip", ip).Warn("reputation: all sources failed, returning unknown verdict")
		return Unknown()
	}

	if r.cache != nil {
		if errPut := r.cache.Put(ctx, ip, verdict, now, r.ttl); errPut != nil {
			log.WithError(errPut).WithField("ip", ip).Warn("reputation: cache write failed")
		}
	}
	r.redis.Put(ctx, ip, verdict, now, r.ttl)
	return verdict
}

// lookupAll queries every source concurrently with a bounded timeout
// each. Failed sources contribute a nil slot, preserving source order
// for the geo priority rule.
func (r *Resolver) lookupAll(ctx context.Context, ip string) []*Report {
	reports := make([]*Report, len(r.sources))
	var wg sync.WaitGroup
	for i, source := range r.sources {
		wg.Add(1)
		go func(idx int, src Source) {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			report, errLookup := src.Lookup(lookupCtx, ip)
			if errLookup != nil {
				log.WithError(errLookup).WithFields(log.Fields{"ip": ip, "source": src.Name()}).
					Debug("reputation: source lookup failed")
				return
			}
			reports[idx] = &report
		}(i, source)
	}
	wg.Wait()
	return reports
}

// merge folds the source reports into a single verdict using the fixed
// priority rules. The second return reports whether any source answered.
func merge(reports []*Report) (Verdict, bool) {
	var (
		verdict       Verdict
		any           bool
		firstProvider string
	)
	for _, report := range reports {
		if report == nil {
			continue
		}
		any = true

		scannable := report.Orgs
		if report.ConnectionType != "" {
			scannable = append(append([]string{}, report.Orgs...), report.ConnectionType)
		}
		for _, value := range scannable {
			if firstProvider == "" {
				firstProvider = value
			}
			if !verdict.IsVPN && matchKeyword(value, vpnKeywords) != "" {
				verdict.IsVPN = true
				if verdict.Provider == "" {
					verdict.Provider = value
				}
			}
			if !verdict.IsProxy && matchKeyword(value, proxyKeywords) != "" {
				verdict.IsProxy = true
				if verdict.Provider == "" {
					verdict.Provider = value
				}
			}
			if !verdict.IsMetered {
				if keyword := matchKeyword(value, meteredKeywords); keyword != "" {
					verdict.IsMetered = true
					verdict.ConnectionType = keyword
					if verdict.Provider == "" {
						verdict.Provider = value
					}
				}
			}
		}

		if report.VPN != nil && *report.VPN {
			verdict.IsVPN = true
		}
		if report.Proxy != nil && *report.Proxy {
			verdict.IsProxy = true
		}

		if verdict.Country == "" {
			verdict.Country = report.Country
		}
		if verdict.Region == "" {
			verdict.Region = report.Region
		}
		if verdict.City == "" {
			verdict.City = report.City
		}
	}
	if verdict.Provider == "" {
		verdict.Provider = firstProvider
	}
	return verdict, any
}
