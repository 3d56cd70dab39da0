package extract

import (
	"bytes"
	"encoding/json"
	"testing"
)

const productJSONLDPage = `<html><head>
<script type="application/ld+json">
{
  "@type": "Product",
  "name": "Walnut Desk Organizer",
  "description": "Solid walnut, five compartments.",
  "brand": {"@type": "Brand", "name": "Oakline"},
  "sku": "WDO-5",
  "image": ["https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"],
  "offers": {"@type": "Offer", "price": "39.99", "priceCurrency": "USD", "availability": "https://schema.org/InStock"},
  "aggregateRating": {"ratingValue": 4.6, "reviewCount": 128}
}
</script>
</head><body><h1>Walnut Desk Organizer</h1></body></html>`

func TestExtractProduct_JSONLD(t *testing.T) {
	e := New()
	doc := mustParse(t, productJSONLDPage)

	d, title := e.extractProduct(productJSONLDPage, doc)

	if title != "Walnut Desk Organizer" {
		t.Errorf("title: got %q", title)
	}
	if d.Meta.Brand != "Oakline" {
		t.Errorf("brand: got %q", d.Meta.Brand)
	}
	if d.Meta.SKU != "WDO-5" {
		t.Errorf("sku: got %q", d.Meta.SKU)
	}
	if d.Pricing.CurrentPrice == nil || *d.Pricing.CurrentPrice != 39.99 {
		t.Errorf("price: got %v", deref(d.Pricing.CurrentPrice))
	}
	if d.Pricing.Currency != "USD" {
		t.Errorf("currency: got %q", d.Pricing.Currency)
	}
	if d.Pricing.Availability != "in_stock" {
		t.Errorf("availability: got %q", d.Pricing.Availability)
	}
	if len(d.Images) != 2 {
		t.Errorf("images: got %d, want 2", len(d.Images))
	}
	if d.Reviews == nil || d.Reviews.Rating == nil || *d.Reviews.Rating != 4.6 {
		t.Fatalf("reviews: got %+v", d.Reviews)
	}
	if d.Reviews.Count == nil || *d.Reviews.Count != 128 {
		t.Errorf("review count: got %v", d.Reviews.Count)
	}
}

func TestExtractProduct_DOMFallback(t *testing.T) {
	html := `<html><body>
		<h1 class="product-title">Ceramic Mug</h1>
		<span class="current-price">$18.50</span>
		<span class="was-price">$24.00</span>
		<select name="size">
			<option>Select a size</option>
			<option>Small</option>
			<option>Large</option>
		</select>
		<p>In stock and ready to ship.</p>
	</body></html>`
	e := New()
	doc := mustParse(t, html)

	d, title := e.extractProduct(html, doc)

	if title != "Ceramic Mug" {
		t.Errorf("title: got %q", title)
	}
	if d.Pricing.CurrentPrice == nil || *d.Pricing.CurrentPrice != 18.50 {
		t.Errorf("current price: got %v", deref(d.Pricing.CurrentPrice))
	}
	if d.Pricing.OriginalPrice == nil || *d.Pricing.OriginalPrice != 24.00 {
		t.Errorf("original price: got %v", deref(d.Pricing.OriginalPrice))
	}
	if d.Pricing.Discount == nil {
		t.Fatal("discount should be derived when original > current")
	}
	if d.Pricing.Discount.Amount != 5.50 {
		t.Errorf("discount amount: got %v", d.Pricing.Discount.Amount)
	}
	if d.Pricing.Availability != "in_stock" {
		t.Errorf("availability: got %q", d.Pricing.Availability)
	}

	if len(d.Variants) != 1 {
		t.Fatalf("variants: got %d, want 1", len(d.Variants))
	}
	if d.Variants[0].Name != "size" {
		t.Errorf("variant name: got %q", d.Variants[0].Name)
	}
	if len(d.Variants[0].Options) != 2 {
		t.Errorf("variant options: got %v, placeholder should be dropped", d.Variants[0].Options)
	}
}

func TestExtractProduct_RegexTier(t *testing.T) {
	html := `<html><body>
		<h1>Mystery Box</h1>
		<p>Get yours today for only $12.00 while supplies last.</p>
	</body></html>`
	e := New()

	d, _ := e.extractProduct(html, mustParse(t, html))

	if d.Pricing.CurrentPrice == nil || *d.Pricing.CurrentPrice != 12.00 {
		t.Errorf("regex tier price: got %v", deref(d.Pricing.CurrentPrice))
	}
	if d.Pricing.Currency != "USD" {
		t.Errorf("currency: got %q", d.Pricing.Currency)
	}
}

func TestExtractProduct_Deterministic(t *testing.T) {
	// Identical markup must extract identically on every run.
	e := New()

	first, t1 := e.extractProduct(productJSONLDPage, mustParse(t, productJSONLDPage))
	second, t2 := e.extractProduct(productJSONLDPage, mustParse(t, productJSONLDPage))

	if t1 != t2 {
		t.Errorf("titles differ: %q vs %q", t1, t2)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("payloads differ:\n%s\n%s", a, b)
	}
}

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://schema.org/InStock", "in_stock"},
		{"https://schema.org/OutOfStock", "out_of_stock"},
		{"InStock", "in_stock"},
		{"", ""},
		{"weird-value", ""},
	}
	for _, tt := range tests {
		if got := normalizeAvailability(tt.in); got != tt.want {
			t.Errorf("normalizeAvailability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
