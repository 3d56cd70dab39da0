package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

// Named-compound vocabularies. Each compound is matched independently
// against the document text; vocabulary order is the input order for the
// stable dominant-terpene sort.
var (
	minorCannabinoids = []string{"THCA", "CBDA", "CBG", "CBN", "CBC", "THCV", "CBGA"}

	terpeneVocabulary = []string{
		"myrcene", "limonene", "caryophyllene", "pinene", "linalool",
		"humulene", "terpinolene", "ocimene", "bisabolol",
	}

	effectVocabulary = []string{
		"relaxed", "sleepy", "happy", "euphoric", "uplifted", "creative",
		"focused", "energetic", "hungry", "talkative",
	}
)

// productForms maps keyword to canonical form, probed in order.
var productForms = []struct {
	keyword string
	form    string
}{
	{"pre-roll", "pre-roll"},
	{"preroll", "pre-roll"},
	{"flower", "flower"},
	{"gummies", "edible"},
	{"edible", "edible"},
	{"concentrate", "concentrate"},
	{"shatter", "concentrate"},
	{"wax", "concentrate"},
	{"rosin", "concentrate"},
	{"cartridge", "vape"},
	{"vape", "vape"},
	{"tincture", "tincture"},
	{"topical", "topical"},
}

// dispensaryNames maps known menu-platform hosts to display names.
// Unknown hosts fall back to the bare hostname.
var dispensaryNames = map[string]string{
	"dutchie.com":    "Dutchie",
	"weedmaps.com":   "Weedmaps",
	"leafly.com":     "Leafly",
	"iheartjane.com": "Jane",
	"eaze.com":       "Eaze",
	"allbud.com":     "AllBud",
}

var usStateCodes = map[string]struct{}{
	"al": {}, "ak": {}, "az": {}, "ar": {}, "ca": {}, "co": {}, "ct": {},
	"de": {}, "fl": {}, "ga": {}, "hi": {}, "id": {}, "il": {}, "in": {},
	"ia": {}, "ks": {}, "ky": {}, "la": {}, "me": {}, "md": {}, "ma": {},
	"mi": {}, "mn": {}, "ms": {}, "mo": {}, "mt": {}, "ne": {}, "nv": {},
	"nh": {}, "nj": {}, "nm": {}, "ny": {}, "nc": {}, "nd": {}, "oh": {},
	"ok": {}, "or": {}, "pa": {}, "ri": {}, "sc": {}, "sd": {}, "tn": {},
	"tx": {}, "ut": {}, "vt": {}, "va": {}, "wa": {}, "wv": {}, "wi": {},
	"wy": {},
}

var (
	strainTypeRe = regexp.MustCompile(`(?i)\b(hybrid|indica|sativa)\b`)
	aliasRe      = regexp.MustCompile(`(?i)(?:aka|also known as)[:\s]+([A-Za-z0-9' -]+(?:,\s*[A-Za-z0-9' -]+)*)`)
	quantityRe   = regexp.MustCompile(`(?i)(?:only\s+)?(\d+)\s+(?:left|remaining|in stock)`)
)

// extractStrain builds the cannabis-retail payload.
func (e *Extractor) extractStrain(html string, doc *goquery.Document, sourceURL string) (*models.StrainDetails, string) {
	text := bodyText(doc)
	if text == "" {
		text = html
	}
	now := time.Now().UTC()

	d := &models.StrainDetails{
		Cannabinoids: []models.CompoundReading{},
		Terpenes:     models.TerpeneProfile{Readings: []models.CompoundReading{}, Dominant: []string{}},
		Effects:      []string{},
		Dispensary:   dispensaryFromURL(sourceURL),
		Tracking: models.Tracking{
			FirstSeen: now,
			LastSeen:  now,
			SourceURL: sourceURL,
		},
	}

	// Name: structured data, then the commerce title cascade.
	title := ""
	if node := findJSONLD(doc, "Product"); node != nil {
		title = jsonString(node, "name")
	}
	if title == "" {
		title = firstText(doc, productTitleSelectors)
	}
	d.Strain.Name = title
	d.Strain.Type = detectStrainType(text)
	d.Strain.Aliases = detectAliases(doc)

	d.THC = parsePotency(text, "THC")
	d.CBD = parsePotency(text, "CBD")
	for _, compound := range minorCannabinoids {
		if reading := parseCompound(text, compound); reading != nil {
			d.Cannabinoids = append(d.Cannabinoids, *reading)
		}
	}

	for _, terpene := range terpeneVocabulary {
		if reading := parseCompound(text, terpene); reading != nil {
			d.Terpenes.Readings = append(d.Terpenes.Readings, *reading)
		}
	}
	d.Terpenes.Dominant = dominantTerpenes(d.Terpenes.Readings)

	d.Form = detectForm(text)
	d.PackageSize = detectPackageSize(text)

	price := domCurrentPrice(doc)
	if price == nil {
		price = regexPrice(text)
	}
	d.Pricing.Price = price
	if price != nil {
		d.Pricing.Currency = currencyFromText(text)
		if d.Pricing.Currency == "" {
			d.Pricing.Currency = "USD"
		}
		if d.PackageSize != nil && d.PackageSize.Grams != nil && *d.PackageSize.Grams > 0 {
			perGram := round2(*price / *d.PackageSize.Grams)
			d.Pricing.PricePerGram = &perGram
		}
	}

	if m := quantityRe.FindStringSubmatch(text); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			d.Quantity = &qty
			d.StockLevel = StockLevel(qty)
		}
	}
	d.Availability = availabilityFromText(text)

	for _, effect := range effectVocabulary {
		if containsWord(text, effect) {
			d.Effects = append(d.Effects, effect)
		}
	}

	return d, title
}

// parsePotency extracts the {percentage, mg, range} shape for one compound.
// A min-max window ("THC: 18-24%") takes precedence over a single reading.
func parsePotency(text, compound string) *models.Potency {
	rangeRe := regexp.MustCompile(
		`(?i)\b` + compound + `\b[^0-9%]{0,20}?(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)\s*%`)
	if m := rangeRe.FindStringSubmatch(text); m != nil {
		min, err1 := strconv.ParseFloat(m[1], 64)
		max, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && min <= max && max <= 100 {
			return &models.Potency{Range: &models.PotencyRange{Min: min, Max: max}}
		}
	}

	p := &models.Potency{}
	if reading := parseCompound(text, compound); reading != nil {
		v := reading.Percentage
		p.Percentage = &v
	}

	mgRe := regexp.MustCompile(`(?i)\b` + compound + `\b[^0-9%]{0,20}?(\d+(?:\.\d+)?)\s*mg\b`)
	if m := mgRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.MG = &v
		}
	}

	if p.Percentage == nil && p.MG == nil {
		return nil
	}
	return p
}

// parseCompound matches one named compound followed by a percentage.
// Percentages above 100 are discarded, not clamped.
func parseCompound(text, compound string) *models.CompoundReading {
	re := regexp.MustCompile(`(?i)\b` + compound + `\b[^0-9%]{0,20}?(\d+(?:\.\d+)?)\s*%`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v > 100 {
		return nil
	}
	return &models.CompoundReading{
		Name:       strings.ToLower(compound),
		Percentage: v,
	}
}

// dominantTerpenes returns the top-3 terpene names by percentage. The sort
// is stable so equal percentages keep vocabulary order, which keeps output
// deterministic across runs.
func dominantTerpenes(readings []models.CompoundReading) []string {
	sorted := make([]models.CompoundReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage > sorted[j].Percentage
	})

	dominant := []string{}
	for i, r := range sorted {
		if i == 3 {
			break
		}
		dominant = append(dominant, r.Name)
	}
	return dominant
}

func detectStrainType(text string) string {
	matches := strainTypeRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}

	var indica, sativa bool
	for _, m := range matches {
		switch strings.ToLower(m) {
		case "hybrid":
			return "hybrid"
		case "indica":
			indica = true
		case "sativa":
			sativa = true
		}
	}
	if indica && sativa {
		return "hybrid"
	}
	if indica {
		return "indica"
	}
	return "sativa"
}

// detectAliases scans leaf-ish elements individually so the alias run stops
// at the element boundary instead of bleeding into the next sentence of the
// squeezed body text.
func detectAliases(doc *goquery.Document) []string {
	var aliases []string
	doc.Find("p, li, span, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := aliasRe.FindStringSubmatch(squeeze(s.Text()))
		if m == nil {
			return true
		}
		for _, part := range strings.Split(m[1], ",") {
			if alias := strings.TrimSpace(part); alias != "" {
				aliases = append(aliases, alias)
			}
		}
		return false
	})
	return aliases
}

func detectForm(text string) string {
	lower := strings.ToLower(text)
	for _, pf := range productForms {
		if strings.Contains(lower, pf.keyword) {
			return pf.form
		}
	}
	return ""
}

func detectPackageSize(text string) *models.Weight {
	m := weightRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, ok := parseMaybeFraction(m[1])
	if !ok {
		return nil
	}
	return &models.Weight{
		Value: value,
		Unit:  strings.ToLower(m[2]),
		Grams: ConvertToGrams(m[0]),
	}
}

// dispensaryFromURL infers the source-site identity from the URL host via a
// fixed lookup table, falling back to the bare hostname, and reads state and
// city tokens from the path segments.
func dispensaryFromURL(sourceURL string) models.DispensaryInfo {
	info := models.DispensaryInfo{}

	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return info
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	info.Host = host
	info.Name = host
	for known, name := range dispensaryNames {
		if host == known || strings.HasSuffix(host, "."+known) {
			info.Name = name
			break
		}
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		seg = strings.ToLower(seg)
		if _, ok := usStateCodes[seg]; !ok {
			continue
		}
		info.State = strings.ToUpper(seg)
		if i+1 < len(segments) {
			info.City = titleize(segments[i+1])
		}
		break
	}

	return info
}

// titleize turns a "santa-rosa" path token into "Santa Rosa".
func titleize(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsWord(text, word string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}
