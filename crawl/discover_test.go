package crawl

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestDiscoverLinks(t *testing.T) {
	html := `<html><body>
		<a href="/product/lamp">Lamp</a>
		<a href="/product/lamp">Lamp again</a>
		<a href="https://other.example.org/product/chair">Chair</a>
		<a href="/product/rug#reviews">Rug</a>
		<a href="/cart">Cart</a>
		<a href="/product/photo.jpg">Photo</a>
		<a href="mailto:sales@example.com" class="product-link">Mail</a>
		<a href="#top" class="product-link">Top</a>
	</body></html>`
	doc := parse(t, html)

	links := DiscoverLinks(doc, "https://shop.example.com/catalog")

	want := []string{
		"https://shop.example.com/product/lamp",
		"https://other.example.org/product/chair",
		"https://shop.example.com/product/rug",
	}
	if len(links) != len(want) {
		t.Fatalf("got %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d: got %s, want %s", i, links[i], want[i])
		}
	}
}

func TestDiscoverLinks_CardAnchors(t *testing.T) {
	html := `<html><body>
		<div class="product-card"><a href="/items/1">One</a></div>
		<div class="product-card"><a href="/items/2">Two</a></div>
	</body></html>`
	doc := parse(t, html)

	links := DiscoverLinks(doc, "https://shop.example.com/")
	if len(links) != 2 {
		t.Fatalf("got %v, want 2 card links", links)
	}
}

func TestDiscoverLinks_Bounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, `<a href="/product/%d">P%d</a>`, i, i)
	}
	sb.WriteString("</body></html>")
	doc := parse(t, sb.String())

	links := DiscoverLinks(doc, "https://shop.example.com/")
	if len(links) != 25 {
		t.Fatalf("discovery itself is unbounded: got %d, want 25", len(links))
	}
}

func TestSameDomain(t *testing.T) {
	a, _ := url.Parse("https://www.example.com/a")
	b, _ := url.Parse("https://example.com/b")
	c, _ := url.Parse("https://shop.example.com/c")

	if !sameDomain(a, b) {
		t.Error("www prefix should be ignored")
	}
	if sameDomain(a, c) {
		t.Error("subdomain is a different domain")
	}
}

func TestSameSite(t *testing.T) {
	a, _ := url.Parse("https://shop.example.com/a")
	b, _ := url.Parse("https://www.example.com/b")
	c, _ := url.Parse("https://example.org/c")

	if !sameSite(a, b) {
		t.Error("subdomains of one registrable domain are the same site")
	}
	if sameSite(a, c) {
		t.Error("different registrable domains are not the same site")
	}
}
