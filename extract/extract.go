// Package extract turns classified markup into typed records using a
// strategy cascade: embedded structured data first, then prioritized DOM
// selectors, then full-text regex heuristics. Each tier is attempted only
// when the previous one produced no value for a field.
package extract

import (
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/models"
)

// Extractor dispatches classified markup to the matching sub-extractor.
// The markdown converter is created once and reused (goroutine-safe).
type Extractor struct {
	md *converter.Converter
}

// New initialises the Extractor.
func New() *Extractor {
	return &Extractor{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Extract builds a typed record from the rendered markup. It runs entirely
// on the serialized HTML and parsed document — never against the live
// browser — so it is testable without a browser process.
//
// Field-level extraction failures leave the field nil or empty; they never
// abort the record.
func (e *Extractor) Extract(html string, doc *goquery.Document, contentType models.ContentType, sourceURL string) *models.Record {
	rec := &models.Record{
		ContentType: contentType,
		Headers:     extractHeadings(doc),
		SourceURL:   sourceURL,
		ExtractedAt: time.Now().UTC(),
	}

	var title string
	switch contentType {
	case models.ContentTypeStrain:
		rec.Strain, title = e.extractStrain(html, doc, sourceURL)
	case models.ContentTypeProduct:
		rec.Product, title = e.extractProduct(html, doc)
	case models.ContentTypeArticle:
		rec.Article, title = e.extractArticle(html, sourceURL, doc)
		if rec.Article == nil {
			// Reader-mode reduction found nothing usable; fall back to
			// the generic extractor instead of returning an empty article.
			rec.Page, title = extractPage(doc, contentType)
		}
	default:
		rec.Page, title = extractPage(doc, contentType)
	}

	if title == "" {
		title = titleFromDoc(doc)
	}
	rec.Title = title

	return rec
}

// extractHeadings returns the h1-h6 outline in document order.
func extractHeadings(doc *goquery.Document) []models.Heading {
	headings := []models.Heading{}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) != 2 {
			return
		}
		level := int(name[1] - '0')
		if level < 1 || level > 6 {
			return
		}

		text := squeeze(s.Text())
		if text == "" {
			return
		}

		id, _ := s.Attr("id")
		headings = append(headings, models.Heading{Level: level, Text: text, ID: id})
	})

	return headings
}

// titleFromDoc is the shared title cascade: og:title, <title>, first h1.
func titleFromDoc(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property='og:title']`).Attr("content"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	if t := squeeze(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return squeeze(doc.Find("h1").First().Text())
}

// squeeze collapses all runs of whitespace to single spaces.
func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// bodyText returns the squeezed visible text of the document body,
// with script and style contents removed.
func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	return squeeze(body.Text())
}
