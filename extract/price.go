package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

// ounceToGrams is the weight-normalization constant. Preserved at two
// decimals for output compatibility with historical records.
const ounceToGrams = 28.35

var (
	numberRe   = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	currencyRe = regexp.MustCompile(`[$€£]\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)
	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	weightRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?|\d+\s*/\s*\d+)\s*(grams|gram|g|ounces|ounce|oz|mg)\b`)
)

// ExtractPrice parses a monetary amount out of arbitrary text: currency
// symbols and thousands separators are stripped, the first decimal number is
// returned. Returns nil when the text holds no number ("Contact us", "").
func ExtractPrice(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "").Replace(s)

	m := numberRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// ParsePercentage parses "23.4%" style text. Values above 100 are a parse
// artifact (e.g. a phone number caught by the regex) and are discarded, not
// clamped.
func ParsePercentage(s string) *float64 {
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v > 100 {
		return nil
	}
	return &v
}

// ConvertToGrams normalizes a weight expression to grams: gram-based units
// pass through, ounce-based units multiply by 28.35, milligrams divide by
// 1000. Unrecognized units return nil.
func ConvertToGrams(s string) *float64 {
	m := weightRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	value, ok := parseMaybeFraction(m[1])
	if !ok {
		return nil
	}

	var grams float64
	switch strings.ToLower(m[2]) {
	case "g", "gram", "grams":
		grams = value
	case "oz", "ounce", "ounces":
		grams = round2(value * ounceToGrams)
	case "mg":
		grams = value / 1000
	default:
		return nil
	}
	return &grams
}

// parseMaybeFraction parses "3.5" or "1/8".
func parseMaybeFraction(s string) (float64, bool) {
	s = strings.ReplaceAll(s, " ", "")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StockLevel buckets a raw quantity into the fixed breakpoints used across
// historical records: 3 and under is low, 10 and under is medium.
func StockLevel(quantity int) string {
	switch {
	case quantity <= 3:
		return "low"
	case quantity <= 10:
		return "medium"
	default:
		return "high"
	}
}

// DeriveDiscount computes the discount from current and original price.
// The discount is always derived, never scraped; it exists only when the
// original price is strictly greater than the current one.
func DeriveDiscount(current, original float64) *models.Discount {
	if original <= current || original <= 0 {
		return nil
	}
	return &models.Discount{
		Amount:     round2(original - current),
		Percentage: round2((original - current) / original * 100),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Selector cascades for pricing, most specific first. A current price is
// only accepted from an element whose class carries no struck-out marker.
var (
	currentPriceSelectors = []string{
		"[itemprop='price']",
		"[data-testid*='price']",
		".price--sale",
		".sale-price",
		".current-price",
		".product-price",
		"[class*='price']",
	}

	originalPriceSelectors = []string{
		"[class*='original']",
		"[class*='was-price']",
		"[class*='old-price']",
		"[class*='compare']",
		"[class*='regular']",
		"s",
		"del",
	}

	struckMarkers = []string{"original", "was", "old", "compare", "strike", "regular"}
)

// domCurrentPrice walks the current-price cascade and returns the first
// parseable price from an element not marked as a struck-out price.
func domCurrentPrice(doc *goquery.Document) *float64 {
	var price *float64
	for _, sel := range currentPriceSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			lower := strings.ToLower(class)
			for _, marker := range struckMarkers {
				if strings.Contains(lower, marker) {
					return true
				}
			}

			// Microdata carries the value in the content attribute.
			if content, ok := s.Attr("content"); ok {
				if p := ExtractPrice(content); p != nil {
					price = p
					return false
				}
			}
			if p := ExtractPrice(s.Text()); p != nil {
				price = p
				return false
			}
			return true
		})
		if price != nil {
			return price
		}
	}
	return nil
}

// domOriginalPrice returns a struck-out price, accepted only when it is
// numerically greater than the already-found current price.
func domOriginalPrice(doc *goquery.Document, current *float64) *float64 {
	if current == nil {
		return nil
	}
	var original *float64
	for _, sel := range originalPriceSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if p := ExtractPrice(s.Text()); p != nil && *p > *current {
				original = p
				return false
			}
			return true
		})
		if original != nil {
			return original
		}
	}
	return nil
}

// regexPrice is the last price tier: the first currency-prefixed amount
// anywhere in the document text.
func regexPrice(text string) *float64 {
	m := currencyRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return ExtractPrice(m[1])
}

// currencyFromText infers an ISO currency code from the first currency
// symbol in the text.
func currencyFromText(text string) string {
	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "$"):
		return "USD"
	default:
		return ""
	}
}
