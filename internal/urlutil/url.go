// Package urlutil provides the small URL surgery the request router needs:
// pulling the host out of a URL, swapping it for a resolved address, and
// unbracketing IPv6 literals. The functions are pure and deterministic; any
// malformed input falls through unchanged (or to the empty string) rather
// than producing an error.
package urlutil

import "strings"

// ExtractHost returns the host portion of url, or "" on any malformed
// input. The URL must start with "scheme://" for a non-empty scheme. A host
// opening with '[' runs up to and including the matching ']' (brackets are
// kept); otherwise the host runs up to the first ':' or '/' or the end of
// the string. The degenerate "[]" host is returned as-is.
func ExtractHost(url string) string {
	rest, ok := afterScheme(url)
	if !ok || rest == "" {
		return ""
	}

	if rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return ""
		}
		return rest[:end+1]
	}

	host := rest
	if cut := strings.IndexAny(rest, ":/"); cut >= 0 {
		host = rest[:cut]
	}
	return host
}

// RewriteHost returns url with its host replaced by newHost, keeping
// scheme, port, and path. URLs ExtractHost cannot parse, including file://
// URLs, pass through unchanged.
func RewriteHost(url, newHost string) string {
	if strings.HasPrefix(url, "file://") {
		return url
	}
	host := ExtractHost(url)
	if host == "" {
		return url
	}
	rest, _ := afterScheme(url)
	prefix := url[:len(url)-len(rest)]
	return prefix + newHost + rest[len(host):]
}

// StripBrackets returns s without its surrounding square brackets iff both
// are present in that order; any other input comes back unchanged.
func StripBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

// afterScheme splits off a leading "scheme://" and returns what follows.
func afterScheme(url string) (string, bool) {
	sep := strings.Index(url, "://")
	if sep <= 0 {
		return "", false
	}
	return url[sep+3:], true
}
