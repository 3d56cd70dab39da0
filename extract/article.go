package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/canopyhq/harvester/models"
)

// minArticleLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content and the caller falls back
// to the generic extractor.
const minArticleLength = 50

// wordsPerMinute drives the derived reading-time estimate.
const wordsPerMinute = 200

// extractArticle runs the Mozilla Readability algorithm on the rendered
// markup and converts the reduced content to Markdown. It returns nil when
// readability fails or yields too little text; the dispatcher then degrades
// to the generic extractor rather than emitting an empty article.
func (e *Extractor) extractArticle(html, sourceURL string, doc *goquery.Document) (*models.ArticleDetails, string) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL",
			"url", sourceURL, "error", err,
		)
		return nil, ""
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed",
			"url", sourceURL, "error", err,
		)
		return nil, ""
	}

	body := strings.TrimSpace(article.TextContent)
	if len(body) < minArticleLength {
		slog.Warn("readability: extracted content too short",
			"url", sourceURL, "length", len(body),
		)
		return nil, ""
	}

	markdown, err := e.md.ConvertString(article.Content, converter.WithDomain(sourceURL))
	if err != nil {
		// Markdown is a convenience rendition; the record stands without it.
		slog.Warn("markdown conversion failed", "url", sourceURL, "error", err)
		markdown = ""
	}

	d := &models.ArticleDetails{
		Content: models.ArticleContent{
			Body:     body,
			HTML:     article.Content,
			Markdown: strings.TrimSpace(markdown),
			Excerpt:  strings.TrimSpace(article.Excerpt),
		},
		Meta: models.ArticleMeta{
			Byline:             strings.TrimSpace(article.Byline),
			SiteName:           strings.TrimSpace(article.SiteName),
			Length:             len(body),
			ReadingTimeMinutes: readingTime(body),
			PublishedTime:      publishedTime(doc),
		},
	}

	return d, strings.TrimSpace(article.Title)
}

// readingTime estimates minutes at 200 wpm, never below 1.
func readingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// publishedTime reads the publication timestamp from Open Graph metadata or
// the first dated <time> element. The raw value is passed through when it is
// not RFC 3339; consumers handle the format variance.
func publishedTime(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property='article:published_time']`).Attr("content"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	if t, ok := doc.Find("time[datetime]").Attr("datetime"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}
