// Package classify assigns a content type to a rendered document.
package classify

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/canopyhq/harvester/models"
)

// Indicator selectors are compiled once; classification runs on every fetch
// and on every crawled link.
var (
	productCardMatcher = cascadia.MustCompile(
		"[class*='product-card'], [class*='product-item'], [class*='product-tile'], " +
			"[class*='strain-card'], [class*='menu-item']")

	productLikeMatcher = cascadia.MustCompile("[class*='product']")

	gridMatcher = cascadia.MustCompile(
		"[class*='product-grid'], [class*='products-grid'], [class*='product-list'], " +
			"[class*='catalog'], [class*='collection-grid']")

	addToCartMatcher = cascadia.MustCompile(
		"[class*='add-to-cart'], [class*='addtocart'], [data-action*='cart'], " +
			"button[name='add']")

	priceClassMatcher = cascadia.MustCompile("[class*='price']")
)

var (
	domainVocabRe = regexp.MustCompile(
		`(?i)\b(thc|cbd|terpene|terpenes|cannabinoid|indica|sativa|dispensary|cannabis)\b`)

	currencyAmountRe = regexp.MustCompile(`[$€£]\s*\d+(?:[.,]\d{2})?`)
)

// Thresholds for the listing heuristics.
const (
	listingProductThreshold = 5
	listingCardThreshold    = 2
)

// Classify inspects the rendered markup and returns one content type.
//
// Indicator sets are evaluated in strict priority order and the first match
// wins: strain vocabulary, then generic product, then listing, then article,
// then generic. The order is load-bearing — a blog index satisfies both
// listing and article indicators and must resolve to listing — so the checks
// below must not be reordered.
func Classify(html string, doc *goquery.Document) models.ContentType {
	switch {
	case isStrainProduct(html):
		return models.ContentTypeStrain
	case isProduct(html, doc):
		return models.ContentTypeProduct
	case isListing(doc):
		return models.ContentTypeListing
	case isArticle(doc):
		return models.ContentTypeArticle
	default:
		return models.ContentTypeGeneric
	}
}

// isStrainProduct looks for cannabis-retail vocabulary anywhere in the
// document text or class names.
func isStrainProduct(html string) bool {
	return domainVocabRe.MatchString(html)
}

func isProduct(html string, doc *goquery.Document) bool {
	if hasJSONLDType(doc, "Product") {
		return true
	}

	if doc.Find(`meta[property='og:type'][content='product']`).Length() > 0 {
		return true
	}
	if doc.Find(`meta[property^='product:']`).Length() > 0 {
		return true
	}

	if doc.FindMatcher(addToCartMatcher).Length() > 0 {
		return true
	}
	if hasAddToCartButton(doc) {
		return true
	}

	if doc.FindMatcher(priceClassMatcher).Length() > 0 && currencyAmountRe.MatchString(html) {
		return true
	}

	return false
}

func isListing(doc *goquery.Document) bool {
	if hasJSONLDType(doc, "ItemList") || hasJSONLDType(doc, "CollectionPage") {
		return true
	}
	if doc.FindMatcher(gridMatcher).Length() > 0 {
		return true
	}
	if doc.FindMatcher(productLikeMatcher).Length() > listingProductThreshold {
		return true
	}
	if doc.FindMatcher(productCardMatcher).Length() > listingCardThreshold {
		return true
	}
	return false
}

func isArticle(doc *goquery.Document) bool {
	for _, t := range []string{"Article", "NewsArticle", "BlogPosting"} {
		if hasJSONLDType(doc, t) {
			return true
		}
	}
	if doc.Find(`meta[property='og:type'][content='article']`).Length() > 0 {
		return true
	}
	if doc.Find(`meta[property='article:published_time']`).Length() > 0 {
		return true
	}
	if doc.Find("article").Length() > 0 {
		return true
	}
	if doc.Find("time").Length() > 0 {
		return true
	}
	return false
}

// jsonldTypeRes caches one regexp per schema.org type we probe for.
var jsonldTypeRes = map[string]*regexp.Regexp{}

func init() {
	for _, t := range []string{"Product", "ItemList", "CollectionPage", "Article", "NewsArticle", "BlogPosting"} {
		jsonldTypeRes[t] = regexp.MustCompile(`"@type"\s*:\s*(\[[^\]]*)?"` + t + `"`)
	}
}

// hasJSONLDType reports whether any JSON-LD block declares the given @type.
// This is a textual check; full defensive parsing happens in the extractors.
func hasJSONLDType(doc *goquery.Document, typ string) bool {
	re, ok := jsonldTypeRes[typ]
	if !ok {
		return false
	}
	found := false
	doc.Find(`script[type='application/ld+json']`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if re.MatchString(s.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}

// hasAddToCartButton scans button text for cart phrasing.
func hasAddToCartButton(doc *goquery.Document) bool {
	found := false
	doc.Find("button, a[role='button']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if strings.Contains(text, "add to cart") || strings.Contains(text, "add to bag") {
			found = true
			return false
		}
		return true
	})
	return found
}
