// Package routing decides, per page navigation, whether a path may be viewed
// without a session. Classification depends on the normalized path only.
package routing

import (
	"net/url"
	"path"
	"strings"
	"unicode"
)

// RootPath is the fallback for empty or unparsable input
const RootPath = "/"

// LoginPath is where unauthenticated navigations are sent
const LoginPath = "/login"

// RedirectQueryKey is the login page parameter carrying the original target
const RedirectQueryKey = "redirect"

// PublicRoutes are reachable without a session, including anything nested
// below them. The root is matched exactly.
var PublicRoutes = []string{
	"/login",
	"/signup",
	"/forgot-password",
	"/reset-password",
	"/products",
	"/community",
	"/about",
	"/contact",
}

// SystemPrefixes are framework, asset and API paths that are never guarded
// as pages. API endpoints enforce their own authentication.
var SystemPrefixes = []string{
	"/_next",
	"/static",
	"/assets",
	"/api",
	"/favicon.ico",
	"/robots.txt",
	"/health",
	"/metrics",
}

var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {}, ".png": {}, ".jpg": {}, ".jpeg": {},
	".svg": {}, ".ico": {}, ".webp": {}, ".woff": {}, ".woff2": {}, ".txt": {},
}

// NormalizePath strips the query string and fragment, decodes percent
// escapes, guarantees a leading slash and cleans the result: repeated
// slashes collapse, dot segments resolve and the trailing slash goes. Empty
// input yields the root path. NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(p string) string {
	p = cutQuery(p)
	// decoding may surface a '?' or '#' that was escaped
	p = cutQuery(unescapeAll(p))
	if strings.TrimSpace(p) == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// IsRoutePublic reports whether the normalized path equals or is nested
// under a public route, or falls under a reserved system prefix.
func IsRoutePublic(p string) bool {
	p = NormalizePath(p)
	if p == RootPath {
		return true
	}
	for _, route := range PublicRoutes {
		if matchesSegment(p, route) {
			return true
		}
	}
	for _, prefix := range SystemPrefixes {
		if matchesSegment(p, prefix) {
			return true
		}
	}
	return isStaticAsset(p)
}

// ShouldProtectRoute is the negation of IsRoutePublic
func ShouldProtectRoute(p string) bool {
	return !IsRoutePublic(p)
}

// BuildRedirectParam returns the normalized path with the original query
// string re-appended when one was supplied.
func BuildRedirectParam(p, search string) string {
	target := NormalizePath(p)
	search = strings.TrimPrefix(strings.TrimSpace(search), "?")
	if search == "" {
		return target
	}
	return target + "?" + search
}

// LoginRedirectURL builds the login URL that returns the user to p afterwards
func LoginRedirectURL(p, search string) string {
	q := url.Values{}
	q.Set(RedirectQueryKey, BuildRedirectParam(p, search))
	return LoginPath + "?" + q.Encode()
}

// SafeRedirectTarget validates a redirect parameter received after login.
// Only same-origin absolute paths are honoured; anything else, including
// targets carrying control characters or backslashes, maps to root.
func SafeRedirectTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || !plainText(raw) {
		return RootPath
	}
	p, search, _ := strings.Cut(raw, "?")
	target := BuildRedirectParam(p, search)
	if strings.HasPrefix(target, "//") || !plainText(target) {
		return RootPath
	}
	return target
}

// plainText rejects control characters and backslashes, which browsers may
// drop or treat as slashes when resolving a Location header
func plainText(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		return r == '\\' || unicode.IsControl(r)
	})
}

func cutQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}

// unescapeAll decodes valid %XX escapes until none remain. Malformed
// escapes are kept as literal text.
func unescapeAll(p string) string {
	for strings.Contains(p, "%") {
		decoded := unescapeOnce(p)
		if decoded == p {
			break
		}
		p = decoded
	}
	return p
}

func unescapeOnce(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '%' && i+2 < len(p) && isHex(p[i+1]) && isHex(p[i+2]) {
			b.WriteByte(unhex(p[i+1])<<4 | unhex(p[i+2]))
			i += 2
			continue
		}
		b.WriteByte(p[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func matchesSegment(p, route string) bool {
	if p == route {
		return true
	}
	return strings.HasPrefix(p, route+"/")
}

func isStaticAsset(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	_, ok := staticExtensions[ext]
	return ok
}
