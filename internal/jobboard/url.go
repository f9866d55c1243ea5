package jobboard

import (
	"fmt"
	"net/url"
	"strings"
)

// feedSuffixes are the feed-format suffixes a company listing URL may carry.
var feedSuffixes = []string{"/feed.atom", "/feed.json"}

// CanonicalListingURL derives the crawl base from a raw company listing URL
// by stripping known feed-format suffixes and any trailing slash left
// behind. A URL without a feed suffix passes through unchanged.
func CanonicalListingURL(raw string) string {
	listing := strings.TrimSpace(raw)
	for _, suffix := range feedSuffixes {
		if strings.HasSuffix(listing, suffix) {
			listing = strings.TrimSuffix(listing, suffix)
			break
		}
	}
	return listing
}

// SiteBase returns the scheme://host origin of a listing URL. Relative
// hrefs from listing anchors are appended to this base.
func SiteBase(raw string) (string, error) {
	parsed, err := url.Parse(CanonicalListingURL(raw))
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("listing url %q has no scheme or host", raw)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
