// Package crawl implements bounded link discovery and batched crawling of
// detail pages found on a listing page.
package crawl

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/publicsuffix"
)

// detailLinkMatcher selects anchors that look like item detail links, by
// path hint or by card class. Precompiled once.
var detailLinkMatcher = cascadia.MustCompile(
	"a[href*='/product/'], a[href*='/products/'], a[href*='/strain/'], " +
		"a[href*='/strains/'], a[href*='/item/'], a[href*='/menu/'], " +
		"a[class*='product'], a[class*='ProductCard'], " +
		".product-card a[href], .product-item a[href], .product-tile a[href], " +
		"[class*='product-card'] a[href], li.product a[href]",
)

// skipExtensions are asset URLs that can never be detail pages.
var skipExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".ico",
	".css", ".js", ".pdf", ".zip", ".xml", ".json",
}

// skipPathParts are site-chrome destinations excluded from discovery.
var skipPathParts = []string{
	"/cart", "/checkout", "/login", "/signin", "/signup",
	"/account", "/search", "/category", "/tag/",
}

// DiscoverLinks returns candidate detail-page URLs from a rendered listing
// document, resolved against the base URL, deduplicated, in document order.
func DiscoverLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	links := []string{}
	seen := map[string]struct{}{}

	doc.FindMatcher(detailLinkMatcher).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""

		if !crawlablePath(resolved.Path) {
			return
		}

		abs := resolved.String()
		if abs == baseURL {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

func crawlablePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	for _, part := range skipPathParts {
		if strings.Contains(lower, part) {
			return false
		}
	}
	return true
}

// sameDomain is an exact host comparison, www stripped on both sides.
func sameDomain(a, b *url.URL) bool {
	return normalizeHost(a.Hostname()) == normalizeHost(b.Hostname())
}

// sameSite compares registrable domains, so shop.example.com matches
// www.example.com. Hosts the public suffix list cannot resolve (IPs,
// single-label hosts) fall back to an exact comparison.
func sameSite(a, b *url.URL) bool {
	ra, err1 := publicsuffix.EffectiveTLDPlusOne(normalizeHost(a.Hostname()))
	rb, err2 := publicsuffix.EffectiveTLDPlusOne(normalizeHost(b.Hostname()))
	if err1 != nil || err2 != nil {
		return sameDomain(a, b)
	}
	return ra == rb
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
