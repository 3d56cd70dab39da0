package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractHeadings(t *testing.T) {
	html := `<html><body>
		<h1 id="top">Main Title</h1>
		<h2>Section   One</h2>
		<h3></h3>
		<h2 id="two">Section Two</h2>
	</body></html>`
	doc := mustParse(t, html)

	got := extractHeadings(doc)
	want := []models.Heading{
		{Level: 1, Text: "Main Title", ID: "top"},
		{Level: 2, Text: "Section One"},
		{Level: 2, Text: "Section Two", ID: "two"},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d headings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTitleFromDoc_Cascade(t *testing.T) {
	withOG := `<html><head>
		<meta property="og:title" content="OG Title">
		<title>Doc Title</title>
	</head><body><h1>H1 Title</h1></body></html>`
	if got := titleFromDoc(mustParse(t, withOG)); got != "OG Title" {
		t.Errorf("got %q, want OG Title", got)
	}

	withTitle := `<html><head><title>Doc Title</title></head><body><h1>H1 Title</h1></body></html>`
	if got := titleFromDoc(mustParse(t, withTitle)); got != "Doc Title" {
		t.Errorf("got %q, want Doc Title", got)
	}

	h1Only := `<html><body><h1>H1 Title</h1></body></html>`
	if got := titleFromDoc(mustParse(t, h1Only)); got != "H1 Title" {
		t.Errorf("got %q, want H1 Title", got)
	}
}

func TestExtract_PayloadMatchesContentType(t *testing.T) {
	e := New()
	html := `<html><head><title>Desk Lamp</title></head><body>
		<h1 class="product-title">Desk Lamp</h1>
		<span class="current-price">$45.00</span>
	</body></html>`
	doc := mustParse(t, html)

	rec := e.Extract(html, doc, models.ContentTypeProduct, "https://shop.example.com/p/1")

	if rec.ContentType != models.ContentTypeProduct {
		t.Errorf("content type: got %s", rec.ContentType)
	}
	if rec.Product == nil {
		t.Fatal("product payload missing")
	}
	if rec.Strain != nil || rec.Article != nil || rec.Page != nil {
		t.Error("only the product payload should be populated")
	}
	if rec.SourceURL != "https://shop.example.com/p/1" {
		t.Errorf("source url: got %s", rec.SourceURL)
	}
	if rec.ExtractedAt.IsZero() {
		t.Error("extracted_at not set")
	}
}

func TestExtract_GenericPayload(t *testing.T) {
	e := New()
	html := `<html><head>
		<title>About</title>
		<meta name="description" content="Who we are">
	</head><body><p>We make things out of other things.</p></body></html>`
	doc := mustParse(t, html)

	rec := e.Extract(html, doc, models.ContentTypeGeneric, "https://example.com/about")

	if rec.Page == nil {
		t.Fatal("page payload missing")
	}
	if rec.Page.Meta.Description != "Who we are" {
		t.Errorf("description: got %q", rec.Page.Meta.Description)
	}
	if !strings.Contains(rec.Page.Body, "We make things") {
		t.Errorf("body excerpt missing content: %q", rec.Page.Body)
	}
	if rec.Title != "About" {
		t.Errorf("title: got %q", rec.Title)
	}
}

func TestExtract_ListingItemCount(t *testing.T) {
	e := New()
	var sb strings.Builder
	sb.WriteString(`<html><head><title>Shop</title></head><body>`)
	for i := 0; i < 6; i++ {
		sb.WriteString(`<div class="product-card"><a href="/product/x">Item</a></div>`)
	}
	sb.WriteString(`</body></html>`)
	html := sb.String()

	rec := e.Extract(html, mustParse(t, html), models.ContentTypeListing, "https://example.com/shop")

	if rec.Page == nil {
		t.Fatal("page payload missing")
	}
	if rec.Page.ItemCount != 6 {
		t.Errorf("item count: got %d, want 6", rec.Page.ItemCount)
	}
}

func TestSqueeze(t *testing.T) {
	if got := squeeze("  a \n\t b   c "); got != "a b c" {
		t.Errorf("got %q", got)
	}
}
