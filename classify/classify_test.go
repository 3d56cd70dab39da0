package classify

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestClassify_StrainVocabularyWins(t *testing.T) {
	// Carries product indicators too; strain vocabulary must take priority.
	html := `<html><body>
		<h1>Gorilla Glue #4</h1>
		<div class="product-price">$45.00</div>
		<button>Add to Cart</button>
		<p>THC: 24% | Indica dominant hybrid</p>
	</body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeStrain {
		t.Errorf("expected strain-product, got %s", got)
	}
}

func TestClassify_ProductByJSONLD(t *testing.T) {
	// The <article> wrapper satisfies the article indicators too; the
	// product check runs first and must win.
	html := `<html><head>
		<script type="application/ld+json">{"@type": "Product", "name": "Desk Lamp"}</script>
	</head><body><article><h1>Desk Lamp</h1></article></body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeProduct {
		t.Errorf("expected product, got %s", got)
	}
}

func TestClassify_ProductByCartButton(t *testing.T) {
	html := `<html><body>
		<h1>Desk Lamp</h1>
		<button>Add to cart</button>
	</body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeProduct {
		t.Errorf("expected product, got %s", got)
	}
}

func TestClassify_ListingByRepeatedCards(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<html><body>`)
	for i := 0; i < 8; i++ {
		sb.WriteString(`<div class="product-card"><a href="/product/x">Item</a></div>`)
	}
	sb.WriteString(`</body></html>`)
	html := sb.String()

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeListing {
		t.Errorf("expected listing, got %s", got)
	}
}

func TestClassify_ListingBeatsArticle(t *testing.T) {
	// A blog index has <article> tags and a grid; listing must win.
	html := `<html><body>
		<div class="product-grid">
			<article class="post"><time datetime="2024-01-01">Jan</time></article>
			<article class="post"><time datetime="2024-01-02">Feb</time></article>
		</div>
	</body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeListing {
		t.Errorf("expected listing, got %s", got)
	}
}

func TestClassify_ArticleByOGType(t *testing.T) {
	html := `<html><head>
		<meta property="og:type" content="article">
	</head><body><h1>How It Happened</h1><p>Long text here.</p></body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeArticle {
		t.Errorf("expected article, got %s", got)
	}
}

func TestClassify_GenericFallback(t *testing.T) {
	html := `<html><body><h1>About Us</h1><p>We make things.</p></body></html>`

	got := Classify(html, parse(t, html))
	if got != models.ContentTypeGeneric {
		t.Errorf("expected generic, got %s", got)
	}
}

func TestHasJSONLDType_ExactTypeOnly(t *testing.T) {
	// "NewsArticle" must not satisfy a probe for "Article".
	html := `<html><head>
		<script type="application/ld+json">{"@type": "NewsArticle"}</script>
	</head><body></body></html>`
	doc := parse(t, html)

	if hasJSONLDType(doc, "Article") {
		t.Error("NewsArticle matched the Article probe")
	}
	if !hasJSONLDType(doc, "NewsArticle") {
		t.Error("NewsArticle probe did not match")
	}
}

func TestHasJSONLDType_ArrayForm(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type": ["Thing", "Product"]}</script>
	</head><body></body></html>`

	if !hasJSONLDType(parse(t, html), "Product") {
		t.Error("array @type did not match Product")
	}
}
