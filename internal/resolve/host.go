package resolve

import (
	"sort"
	"time"

	"go.uber.org/atomic"
)

// hostID hands out process-wide unique Host ids. Ids only ever grow, so an
// outer cache can tell a re-resolved record from the one it already holds.
var hostID atomic.Int64

// Host is an immutable snapshot of a name-to-addresses mapping. Resolvers
// produce Hosts; after construction nothing mutates one. The address sets
// are shared between copies, which is safe for the same reason.
type Host struct {
	name     string
	id       int64
	status   Status
	ipv4     map[string]struct{}
	ipv6     map[string]struct{}
	deadline time.Time
}

// NewHost returns an unresolved Host with a fresh id. Copies of the returned
// value keep the id; only NewHost and ExtendDeadline mint new ones.
func NewHost() Host {
	return Host{
		id:   hostID.Inc(),
		ipv4: make(map[string]struct{}),
		ipv6: make(map[string]struct{}),
	}
}

// Name returns the input string the Host was resolved from, exactly as
// given. Bracketed IPv6 literals keep their brackets.
func (h Host) Name() string { return h.name }

// ID returns the process-wide unique id assigned at construction.
func (h Host) ID() int64 { return h.id }

// Status returns the failure tag for this resolution.
func (h Host) Status() Status { return h.status }

// Deadline returns the wall-clock instant at which the record expires.
func (h Host) Deadline() time.Time { return h.deadline }

// IPv4Addresses returns the resolved IPv4 addresses in sorted order.
func (h Host) IPv4Addresses() []string { return sortedKeys(h.ipv4) }

// IPv6Addresses returns the resolved IPv6 addresses in sorted order.
// Entries are always bracketed, e.g. "[::1]".
func (h Host) IPv6Addresses() []string { return sortedKeys(h.ipv6) }

// HasIPv6 reports whether at least one IPv6 address was resolved.
func (h Host) HasIPv6() bool { return len(h.ipv6) > 0 }

// IsValid reports whether the Host resolved successfully, carries at least
// one address, and has not yet expired.
func (h Host) IsValid() bool {
	return h.status == StatusOK &&
		len(h.ipv4)+len(h.ipv6) > 0 &&
		h.deadline.After(time.Now())
}

// IsExpired reports whether the deadline has passed. A zero deadline counts
// as expired.
func (h Host) IsExpired() bool {
	return !h.deadline.After(time.Now())
}

// IsEquivalent reports whether two successfully resolved Hosts describe the
// same result: same name, same status, same address sets. Deadline and id
// do not participate, so a refreshed record still compares equal to the one
// it replaces when the upstream answer has not changed. Hosts that did not
// resolve are never equivalent to anything, their own copies included.
func (h Host) IsEquivalent(other Host) bool {
	return h.status == StatusOK &&
		other.status == StatusOK &&
		h.name == other.name &&
		setsEqual(h.ipv4, other.ipv4) &&
		setsEqual(h.ipv6, other.ipv6)
}

// ExtendDeadline derives a new Host from h with the deadline pushed out to
// now+ttl and a fresh id. Addresses and status are carried over unchanged;
// this only tells an outer cache to hold the existing record longer.
func ExtendDeadline(h Host, ttl time.Duration) Host {
	out := h
	out.id = hostID.Inc()
	out.deadline = time.Now().Add(ttl)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
