package resolve

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cachefs/nameres/internal/filesys"
	"github.com/cachefs/nameres/internal/log"
)

// defaultHostsPath is used when neither an explicit path nor the
// HOST_ALIASES environment variable names a hosts file.
const defaultHostsPath = "/etc/hosts"

// hostAliasesEnv overrides the default hosts-file path when the caller
// passes an empty explicit path. It is read once at construction.
const hostAliasesEnv = "HOST_ALIASES"

// hostEntry collects every address a hosts file binds to one name, across
// all of its lines.
type hostEntry struct {
	ipv4 []string
	ipv6 []string
}

// HostfileResolver resolves names from a hosts-format text file. The file
// is consulted on every call: a change in its modification time or size
// triggers a reparse, otherwise the cached table is used. All lookups
// report MinTTL so the outer cache re-checks the file frequently.
type HostfileResolver struct {
	Resolver

	fs   filesys.ReadFS
	path string

	table map[string]*hostEntry
	mtime time.Time
	size  int64
}

var _ backend = (*HostfileResolver)(nil)

// NewHostfile creates a hostfile resolver backed by the local filesystem.
// Path selection: the explicit path if non-empty, else $HOST_ALIASES, else
// /etc/hosts. An explicit path that cannot be opened fails construction; a
// missing default file does not, it just resolves nothing.
func NewHostfile(path string, ipv4Only bool) (*HostfileResolver, error) {
	return NewHostfileFS(filesys.OS(), path, ipv4Only)
}

// NewHostfileFS is NewHostfile with an injected filesystem.
func NewHostfileFS(fsys filesys.ReadFS, path string, ipv4Only bool) (*HostfileResolver, error) {
	if path != "" {
		f, err := fsys.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening hosts file: %w", err)
		}
		f.Close()
	} else if env := os.Getenv(hostAliasesEnv); env != "" {
		path = env
	} else {
		path = defaultHostsPath
	}

	r := &HostfileResolver{
		fs:   fsys,
		path: path,
	}
	r.ipv4Only = ipv4Only
	r.hook = r
	return r, nil
}

// SetResolvers is rejected: a hostfile resolver has no name servers.
func (r *HostfileResolver) SetResolvers([]string) bool { return false }

// resolve implements the backend hook against the parsed hosts table. A
// trailing dot on a query is stripped before lookup, matching the RFC 1035
// absolute form against the file's unqualified names.
func (r *HostfileResolver) resolve(names []string, skip []bool, ipv4, ipv6 [][]string, failures []Status, ttls []uint32) {
	r.refresh()

	for i, name := range names {
		if skip[i] {
			continue
		}
		entry, ok := r.table[strings.TrimSuffix(name, ".")]
		if !ok {
			failures[i] = StatusUnknownHost
			continue
		}
		ipv4[i] = entry.ipv4
		if !r.ipv4Only {
			ipv6[i] = entry.ipv6
		}
		failures[i] = StatusOK
		ttls[i] = uint32(MinTTL / time.Second)
	}
}

// refresh stats the hosts file and reparses it when its mtime or size no
// longer matches the cached parse. A file that cannot be read clears the
// table, so every lookup reports unknown-host.
func (r *HostfileResolver) refresh() {
	fi, err := r.fs.Stat(r.path)
	if err != nil {
		r.table = nil
		r.mtime = time.Time{}
		r.size = -1
		return
	}
	if r.table != nil && fi.ModTime().Equal(r.mtime) && fi.Size() == r.size {
		return
	}

	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		log.Debugf("resolve: reading hosts file %s: %v", r.path, err)
		r.table = nil
		return
	}
	r.table = parseHostfile(data)
	r.mtime = fi.ModTime()
	r.size = fi.Size()
}

// parseHostfile builds the name table from hosts-format text. Lines are
// split on LF; a '#' comments out the rest of its line but the fragment
// before it still counts; fields are separated by runs of spaces or tabs.
// Each line binds every name after the address to that address, and names
// repeated across lines accumulate addresses.
func parseHostfile(data []byte) map[string]*hostEntry {
	table := make(map[string]*hostEntry)
	for _, line := range strings.Split(string(data), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		addr := fields[0]
		var v4 bool
		switch {
		case isIPv4(addr):
			v4 = true
		case isIPv6(addr):
			v4 = false
		default:
			continue
		}

		for _, name := range fields[1:] {
			entry, ok := table[name]
			if !ok {
				entry = &hostEntry{}
				table[name] = entry
			}
			if v4 {
				entry.ipv4 = append(entry.ipv4, addr)
			} else {
				entry.ipv6 = append(entry.ipv6, addr)
			}
		}
	}
	return table
}
