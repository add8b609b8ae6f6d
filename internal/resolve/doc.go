// Package resolve turns host names into sets of reachable IP addresses with
// freshness deadlines. It abstracts two concrete backends, recursive DNS
// against configurable name servers and a hosts-format text file, behind one
// resolver surface, and feeds a request-routing layer that refreshes
// endpoint addresses and pins requests to resolved IPs.
//
// # Resolution model
//
// Every lookup produces a Host: an immutable snapshot carrying the input
// name, the IPv4 and IPv6 address sets, a Status tag, a deadline, and a
// process-wide unique id. Failures are part of the snapshot rather than Go
// errors, so an outer cache can store negative results with a short TTL the
// same way it stores positive ones.
//
// The shared Resolver base handles everything common to the backends:
//
//   - batching: ResolveMany resolves a whole slice in one backend pass and
//     returns index-aligned results
//   - literal short-circuit: dotted-quad IPv4 and bracketed IPv6 inputs
//     never reach a backend
//   - search-domain expansion for bare names that come back unknown
//   - address validation and TTL clamping into [MinTTL, MaxTTL]
//
// # Backends
//
// NetworkResolver issues parallel A and AAAA queries through
// github.com/miekg/dns with per-attempt timeouts, retries, and round-robin
// rotation across the configured servers. Name servers and search domains
// load from resolv.conf at construction and can be replaced later.
//
// HostfileResolver reads a hosts-format file, reparsing whenever the file's
// mtime or size changes. Every answer reports MinTTL so stale file contents
// age out quickly.
//
// # Basic usage
//
//	r, err := resolve.NewNetwork(false, 1, 2*time.Second)
//	if err != nil {
//		log.Fatalf("resolver: %v", err)
//	}
//	host := r.Resolve("mirror.example.org")
//	if host.IsValid() {
//		for _, addr := range host.IPv4Addresses() {
//			// dial addr until host.Deadline()
//		}
//	}
//
// A resolver instance is configured once and then used by one caller at a
// time; callers that share one wrap it in their own locking.
package resolve
