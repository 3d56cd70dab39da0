package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

var (
	productTitleSelectors = []string{
		"[itemprop='name']",
		"h1[class*='product']",
		".product-title",
		".product-name",
		"h1",
	}

	productImageSelectors = []string{
		"[itemprop='image']",
		".product-image img",
		".product-gallery img",
		"[class*='gallery'] img",
		"[class*='product'] img",
	}

	ratingOutOfRe  = regexp.MustCompile(`(\d(?:\.\d+)?)\s*(?:/|out of)\s*5`)
	reviewCountRe  = regexp.MustCompile(`\(?(\d[\d,]*)\)?\s*(?:reviews?|ratings?)`)
	variantNameRe  = regexp.MustCompile(`(?i)(size|color|colour|option|variant|weight)`)
)

// extractProduct builds the generic commerce payload. Tier order per field:
// JSON-LD Product node, then DOM selector cascades, then text regexes.
func (e *Extractor) extractProduct(html string, doc *goquery.Document) (*models.ProductDetails, string) {
	d := &models.ProductDetails{
		Images:   []string{},
		Variants: []models.VariantGroup{},
	}
	title := ""
	text := bodyText(doc)

	// ── Tier 1: structured data ─────────────────────────────────────
	if node := findJSONLD(doc, "Product"); node != nil {
		title = jsonString(node, "name")
		d.Description = jsonString(node, "description")
		d.Meta.Brand = jsonString(node, "brand")
		d.Meta.SKU = jsonString(node, "sku", "mpn")
		d.Meta.GTIN = jsonString(node, "gtin13", "gtin12", "gtin8", "gtin")
		d.Meta.Category = jsonString(node, "category")
		d.Images = append(d.Images, jsonStrings(node, "image")...)

		if offer := jsonOffer(node); offer != nil {
			d.Pricing.CurrentPrice = jsonFloat(offer, "price", "lowPrice")
			d.Pricing.Currency = jsonString(offer, "priceCurrency")
			d.Pricing.Availability = normalizeAvailability(jsonString(offer, "availability"))
		}

		if rating, ok := node["aggregateRating"].(map[string]any); ok {
			d.Reviews = &models.Reviews{
				Rating: jsonFloat(rating, "ratingValue"),
				Count:  jsonInt(rating, "reviewCount", "ratingCount"),
			}
		}
	}

	// ── Tier 2: DOM selector cascades ───────────────────────────────
	if title == "" {
		title = firstText(doc, productTitleSelectors)
	}
	if d.Pricing.CurrentPrice == nil {
		d.Pricing.CurrentPrice = domCurrentPrice(doc)
	}
	if d.Pricing.OriginalPrice == nil {
		d.Pricing.OriginalPrice = domOriginalPrice(doc, d.Pricing.CurrentPrice)
	}
	if len(d.Images) == 0 {
		d.Images = domImages(doc)
	}
	d.Variants = domVariants(doc)
	if d.Reviews == nil {
		d.Reviews = domReviews(doc, text)
	}
	if d.Meta.Brand == "" {
		d.Meta.Brand = firstText(doc, []string{"[itemprop='brand']", "[class*='brand']"})
	}
	if d.Pricing.Availability == "" {
		d.Pricing.Availability = availabilityFromText(text)
	}

	// ── Tier 3: text regex fallbacks ────────────────────────────────
	if d.Pricing.CurrentPrice == nil {
		d.Pricing.CurrentPrice = regexPrice(text)
	}
	if d.Pricing.Currency == "" && d.Pricing.CurrentPrice != nil {
		d.Pricing.Currency = currencyFromText(text)
	}

	// Derived, never scraped.
	if d.Pricing.CurrentPrice != nil && d.Pricing.OriginalPrice != nil {
		d.Pricing.Discount = DeriveDiscount(*d.Pricing.CurrentPrice, *d.Pricing.OriginalPrice)
	}

	if d.Description == "" {
		if desc, ok := doc.Find(`meta[name='description']`).Attr("content"); ok {
			d.Description = strings.TrimSpace(desc)
		}
	}

	return d, title
}

// firstText returns the first non-empty squeezed text across a cascade.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := squeeze(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func domImages(doc *goquery.Document) []string {
	images := []string{}
	seen := map[string]struct{}{}
	for _, sel := range productImageSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok || src == "" || strings.HasPrefix(src, "data:") {
				return
			}
			if _, dup := seen[src]; dup {
				return
			}
			seen[src] = struct{}{}
			images = append(images, src)
		})
		if len(images) > 0 {
			break
		}
	}
	return images
}

// domVariants collects option groups from select controls whose name hints
// at a product option (size, color, weight).
func domVariants(doc *goquery.Document) []models.VariantGroup {
	variants := []models.VariantGroup{}

	doc.Find("select").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			name, _ = s.Attr("id")
		}
		if !variantNameRe.MatchString(name) {
			return
		}

		options := []string{}
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			text := squeeze(o.Text())
			if text == "" || strings.HasPrefix(strings.ToLower(text), "select") {
				return
			}
			options = append(options, text)
		})
		if len(options) == 0 {
			return
		}

		variants = append(variants, models.VariantGroup{
			Name:    strings.ToLower(variantNameRe.FindString(name)),
			Options: options,
		})
	})

	return variants
}

func domReviews(doc *goquery.Document, text string) *models.Reviews {
	var rating *float64
	if content, ok := doc.Find("[itemprop='ratingValue']").Attr("content"); ok {
		rating = ExtractPrice(content)
	}
	if rating == nil {
		if t := doc.Find("[itemprop='ratingValue']").First().Text(); t != "" {
			rating = ExtractPrice(t)
		}
	}
	if rating == nil {
		if m := ratingOutOfRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 5 {
				rating = &v
			}
		}
	}

	var count *int
	if content, ok := doc.Find("[itemprop='reviewCount']").Attr("content"); ok {
		count = parseIntPtr(content)
	}
	if count == nil {
		if m := reviewCountRe.FindStringSubmatch(text); m != nil {
			count = parseIntPtr(m[1])
		}
	}

	if rating == nil && count == nil {
		return nil
	}
	return &models.Reviews{Rating: rating, Count: count}
}

// normalizeAvailability reduces schema.org availability URIs and free text
// to the two states downstream consumers use.
func normalizeAvailability(s string) string {
	s = strings.ToLower(s)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "outofstock") || strings.Contains(s, "soldout") || strings.Contains(s, "discontinued"):
		return "out_of_stock"
	case strings.Contains(s, "instock") || strings.Contains(s, "limitedavailability") || strings.Contains(s, "preorder"):
		return "in_stock"
	default:
		return ""
	}
}

func availabilityFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "out of stock") || strings.Contains(lower, "sold out"):
		return "out_of_stock"
	case strings.Contains(lower, "in stock") || strings.Contains(lower, "add to cart"):
		return "in_stock"
	default:
		return ""
	}
}

func parseIntPtr(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// jsonInt reads an integer that may arrive as a JSON number or string.
func jsonInt(node map[string]any, keys ...string) *int {
	if f := jsonFloat(node, keys...); f != nil {
		v := int(*f)
		return &v
	}
	return nil
}
