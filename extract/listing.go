package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/canopyhq/harvester/models"
)

// maxGenericBody caps the plain-text excerpt stored for generic pages.
const maxGenericBody = 1500

// listingCardMatcher counts the repeated item units of a catalog page.
// Precompiled once; Match panics on bad selectors at init, not per request.
var listingCardMatcher = cascadia.MustCompile(
	".product-card, .product-item, .product-tile, [class*='product-card'], " +
		"[class*='ProductCard'], [data-testid*='product'], li.product, article.product",
)

// extractPage is the payload builder for listing and generic pages. Listing
// pages get an item count; generic pages get a capped text excerpt.
func extractPage(doc *goquery.Document, contentType models.ContentType) (*models.PageDetails, string) {
	d := &models.PageDetails{}

	if desc, ok := doc.Find(`meta[name='description']`).Attr("content"); ok {
		d.Meta.Description = strings.TrimSpace(desc)
	}
	if kw, ok := doc.Find(`meta[name='keywords']`).Attr("content"); ok {
		d.Meta.Keywords = strings.TrimSpace(kw)
	}

	switch contentType {
	case models.ContentTypeListing:
		d.ItemCount = doc.FindMatcher(listingCardMatcher).Length()
	default:
		d.Body = truncate(bodyText(doc), maxGenericBody)
	}

	return d, titleFromDoc(doc)
}

// truncate cuts at the last word boundary under the limit.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
