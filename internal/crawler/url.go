package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/publicsuffix"
)

// normalizeFlags are the purell normalizations applied to every URL
// before identity comparison: lowercase scheme and host, drop default
// ports, fragments and duplicate slashes, sort query parameters, and
// resolve dot segments.
const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// skipExtensions are path suffixes that never lead to an HTML page
// worth auditing. Binary assets and style/script resources only waste
// fetch budget.
var skipExtensions = map[string]bool{
	".pdf": true, ".zip": true, ".gz": true, ".tar": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true,
	".css": true, ".js": true, ".json": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
}

// NormalizeURL canonicalizes a URL for identity comparison. Beyond the
// purell normalizations, a trailing slash on a non-root path is
// trimmed so /about and /about/ count as one page.
func NormalizeURL(rawURL string) (string, error) {
	normalized, err := purell.NormalizeURLString(rawURL, normalizeFlags)
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", rawURL, err)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("parse normalized %q: %w", normalized, err)
	}
	switch {
	case u.Path == "":
		u.Path = "/"
	case len(u.Path) > 1 && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// BaseURL turns a user-supplied target (bare domain or full URL) into
// the normalized audit root, e.g. "example.com" -> "https://example.com".
func BaseURL(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("empty target")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in target %q", u.Scheme, target)
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in target %q", target)
	}

	u.Fragment = ""
	u.RawQuery = ""
	u.Path = ""

	return NormalizeURL(u.String())
}

// RegistrableDomain returns the effective TLD plus one for a host,
// e.g. "blog.example.co.uk" -> "example.co.uk". Hosts the public
// suffix list cannot resolve (localhost, IPs, test servers) fall back
// to the host itself so local audits still work.
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// SameSite reports whether a URL belongs to the audited site: same
// registrable domain, so www and bare-domain variants both count.
func SameSite(domain, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return RegistrableDomain(u.Host) == domain
}

// Crawlable reports whether a URL is worth fetching as a page:
// http(s) scheme and not a known binary or asset extension.
func Crawlable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !skipExtensions[strings.ToLower(path.Ext(u.Path))]
}

// PathBucket returns the first path segment of a URL, used to spread
// page sampling across site sections ("/blog/a" -> "blog", "/" -> "").
func PathBucket(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return ""
	}
	segment, _, _ := strings.Cut(trimmed, "/")
	return segment
}
