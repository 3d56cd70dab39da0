// Package interstitial finds and dismisses overlay UI (age gates, consent
// banners, newsletter prompts, modals) and answers native browser dialogs.
package interstitial

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// settleDelay absorbs animations and redirects after each dismissal click.
const settleDelay = 1500 * time.Millisecond

// Resolver dismisses interstitials on a live page.
type Resolver struct {
	settle time.Duration
}

// NewResolver creates a Resolver with the standard settle delay.
func NewResolver() *Resolver {
	return &Resolver{settle: settleDelay}
}

// Resolve walks the category catalog in priority order and clicks the first
// matching, visible element per category. It returns the number of
// interstitials dismissed.
//
// Each category is scanned against the live DOM, so elements revealed by an
// earlier dismissal are still found. A category with no match is skipped
// silently; only a page-level failure (context expired, page gone) aborts
// early, returning the partial count.
func (r *Resolver) Resolve(page *rod.Page) int {
	handled := 0

	for _, cat := range Catalog {
		clicked, err := r.resolveCategory(page, cat)
		if err != nil {
			slog.Warn("interstitial scan aborted",
				"category", cat.Name, "handled", handled, "error", err)
			return handled
		}
		if clicked {
			handled++
			slog.Debug("interstitial dismissed", "category", cat.Name)
		}
	}

	return handled
}

// resolveCategory clicks at most one element for the category: the first
// visible element whose text or selector matches a trigger keyword. This
// first-match-wins rule avoids double-clicking overlapping UI.
func (r *Resolver) resolveCategory(page *rod.Page, cat Category) (bool, error) {
	for _, selector := range cat.Selectors {
		if err := page.GetContext().Err(); err != nil {
			return false, err
		}

		elements, err := page.Elements(selector)
		if err != nil {
			// Malformed selector or transient DOM error; try the next one.
			continue
		}

		for _, el := range elements {
			visible, err := el.Visible()
			if err != nil || !visible {
				continue
			}

			text, err := el.Text()
			if err != nil {
				continue
			}
			if !matchesKeywords(text, selector, cat.Keywords) {
				continue
			}

			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				slog.Debug("interstitial click failed",
					"category", cat.Name, "selector", selector, "error", err)
				continue
			}

			// Let animations and possible redirects settle before the
			// next category is evaluated against the new DOM.
			r.sleep(page, r.settle)
			return true, nil
		}
	}

	return false, nil
}

// sleep waits for d or until the page context expires.
func (r *Resolver) sleep(page *rod.Page, d time.Duration) {
	select {
	case <-time.After(d):
	case <-page.GetContext().Done():
	}
}
