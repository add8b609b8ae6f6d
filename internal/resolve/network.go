package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miekg/dns"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/cachefs/nameres/internal/log"
)

// ErrInvalidTimeout is returned when a resolver is constructed with a
// non-positive per-query timeout.
var ErrInvalidTimeout = errors.New("query timeout must be positive")

// resolvConfPath is the system resolver configuration consulted by
// SetSystemResolvers and SetSystemSearchDomains. Overridden in tests.
var resolvConfPath = "/etc/resolv.conf"

// Exchanger is the wire-level surface the network resolver needs from a DNS
// client. *dns.Client satisfies it; tests substitute a mock.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (r *dns.Msg, rtt time.Duration, err error)
}

// NetworkResolver resolves names by issuing parallel A and AAAA queries
// against configured recursive name servers. A single ResolveMany call runs
// all of its queries concurrently and returns once every index has settled;
// the resolver itself is used by one caller at a time.
type NetworkResolver struct {
	Resolver

	client Exchanger
}

var _ backend = (*NetworkResolver)(nil)

// NewNetwork creates a network resolver and loads name servers and search
// domains from the system configuration. A missing or unparseable
// resolv.conf leaves both lists empty, in which case every lookup reports
// StatusInvalidResolvers until SetResolvers is called.
func NewNetwork(ipv4Only bool, retries uint, timeout time.Duration) (*NetworkResolver, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	r := &NetworkResolver{
		client: &dns.Client{Timeout: timeout},
	}
	r.ipv4Only = ipv4Only
	r.retries = retries
	r.timeout = timeout
	r.hook = r

	if err := r.SetSystemResolvers(); err != nil {
		log.Warnf("resolve: no system name servers: %v", err)
	}
	if err := r.SetSystemSearchDomains(); err != nil {
		log.Debugf("resolve: no system search domains: %v", err)
	}
	return r, nil
}

// SetResolvers replaces the name-server endpoints. Entries are "ip" or
// "ip:port"; a bare ip gets the default DNS port appended. Returns false
// without touching the configuration if any entry is not an IP address.
func (r *NetworkResolver) SetResolvers(servers []string) bool {
	endpoints := make([]string, 0, len(servers))
	for _, s := range servers {
		host, port, err := net.SplitHostPort(s)
		if err != nil {
			host, port = s, "53"
		}
		if net.ParseIP(stripBrackets(host)) == nil {
			return false
		}
		endpoints = append(endpoints, net.JoinHostPort(stripBrackets(host), port))
	}
	r.servers = endpoints
	return true
}

// SetSystemResolvers reads the nameserver entries from resolv.conf and
// installs them, each with the configured port appended.
func (r *NetworkResolver) SetSystemResolvers() error {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", resolvConfPath, err)
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	r.servers = servers
	return nil
}

// SetSystemSearchDomains reads the search entries from resolv.conf and
// installs them.
func (r *NetworkResolver) SetSystemSearchDomains() error {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", resolvConfPath, err)
	}
	r.domains = append([]string(nil), conf.Search...)
	return nil
}

// queryResult is the settled outcome of one (name, qtype) query group.
type queryResult struct {
	addrs  []string
	ttl    uint32
	hasTTL bool
	status Status
}

// resolve implements the backend hook. For every non-skipped index it runs
// the A query and, unless ipv4-only, the AAAA query concurrently, then
// combines the two family results into one per-index outcome.
func (r *NetworkResolver) resolve(names []string, skip []bool, ipv4, ipv6 [][]string, failures []Status, ttls []uint32) {
	servers := r.servers
	if len(servers) == 0 {
		for i := range names {
			if !skip[i] {
				failures[i] = StatusInvalidResolvers
			}
		}
		return
	}

	blog := log.WithBatch(uuid.NewString())

	n := len(names)
	results := make([][2]queryResult, n)
	var (
		grp errgroup.Group
		mu  sync.Mutex
		agg error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		agg = multierr.Append(agg, err)
		mu.Unlock()
	}

	for i := range names {
		if skip[i] {
			continue
		}
		i := i
		grp.Go(func() error {
			res, err := r.query(names[i], dns.TypeA, servers)
			results[i][0] = res
			collect(err)
			return nil
		})
		if r.ipv4Only {
			continue
		}
		grp.Go(func() error {
			res, err := r.query(names[i], dns.TypeAAAA, servers)
			results[i][1] = res
			collect(err)
			return nil
		})
	}
	_ = grp.Wait()

	if agg != nil {
		blog.Debugw("query errors", "errors", agg)
	}

	for i := range names {
		if skip[i] {
			continue
		}
		if r.ipv4Only {
			a := results[i][0]
			failures[i] = a.status
			ipv4[i] = a.addrs
			ttls[i] = a.effectiveTTL()
			continue
		}
		failures[i], ipv4[i], ipv6[i], ttls[i] = combine(results[i][0], results[i][1])
	}
}

// query issues one question, retrying up to retries additional times and
// rotating through the server list across attempts. Each attempt has its
// own timeout.
func (r *NetworkResolver) query(name string, qtype uint16, servers []string) (queryResult, error) {
	var (
		last    = StatusTimeout
		lastErr error
	)
	for attempt := uint(0); attempt <= r.retries; attempt++ {
		server := servers[int(attempt)%len(servers)]

		// Fresh request each attempt: ExchangeContext mutates *dns.Msg.
		req := new(dns.Msg)
		req.SetQuestion(dns.Fqdn(name), qtype)

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		resp, _, err := r.client.ExchangeContext(ctx, req, server)
		cancel()

		if err != nil {
			lastErr = err
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				last = StatusTimeout
			} else {
				last = StatusInvalidResolvers
			}
			continue
		}
		if resp == nil {
			last = StatusOther
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			addrs, minTTL, ok := answersOf(resp, qtype)
			if !ok {
				// NoData: the zone exists but has no records of this type.
				return queryResult{status: StatusUnknownHost}, nil
			}
			return queryResult{status: StatusOK, addrs: addrs, ttl: minTTL, hasTTL: true}, nil
		case dns.RcodeNameError:
			return queryResult{status: StatusUnknownHost}, nil
		case dns.RcodeRefused:
			last = StatusInvalidResolvers
		default:
			last = StatusOther
		}
	}
	return queryResult{status: last}, lastErr
}

// answersOf extracts the address strings of the requested type from a
// response, along with the minimum TTL seen across them.
func answersOf(resp *dns.Msg, qtype uint16) (addrs []string, minTTL uint32, ok bool) {
	for _, rr := range resp.Answer {
		var (
			addr string
			ttl  uint32
		)
		switch record := rr.(type) {
		case *dns.A:
			if qtype != dns.TypeA {
				continue
			}
			addr, ttl = record.A.String(), record.Hdr.Ttl
		case *dns.AAAA:
			if qtype != dns.TypeAAAA {
				continue
			}
			addr, ttl = record.AAAA.String(), record.Hdr.Ttl
		default:
			continue
		}
		if !ok || ttl < minTTL {
			minTTL = ttl
		}
		addrs = append(addrs, addr)
		ok = true
	}
	return addrs, minTTL, ok
}

// combine merges the A and AAAA outcomes for one index. Either family
// succeeding makes the index succeed; among pure failures a definitive
// UnknownHost outranks configuration trouble, which outranks a plain
// timeout.
func combine(a, aaaa queryResult) (Status, []string, []string, uint32) {
	if a.status == StatusOK || aaaa.status == StatusOK {
		ttl := minTTLOf(a, aaaa)
		return StatusOK, a.addrs, aaaa.addrs, ttl
	}
	for _, s := range []Status{StatusUnknownHost, StatusInvalidResolvers, StatusTimeout, StatusOther} {
		if a.status == s || aaaa.status == s {
			return s, nil, nil, 0
		}
	}
	return StatusOther, nil, nil, 0
}

func (q queryResult) effectiveTTL() uint32 {
	if q.hasTTL {
		return q.ttl
	}
	return uint32(MinTTL / time.Second)
}

func minTTLOf(a, aaaa queryResult) uint32 {
	switch {
	case a.hasTTL && aaaa.hasTTL:
		if a.ttl < aaaa.ttl {
			return a.ttl
		}
		return aaaa.ttl
	case a.hasTTL:
		return a.ttl
	case aaaa.hasTTL:
		return aaaa.ttl
	}
	return uint32(MinTTL / time.Second)
}

// stripBrackets removes surrounding square brackets from an IPv6 endpoint
// host so it can be re-validated and re-joined uniformly.
func stripBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}
