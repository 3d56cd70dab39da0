package interstitial

import "strings"

// Category describes one class of overlay UI and how to dismiss it.
type Category struct {
	// Name identifies the category in logs.
	Name string

	// Selectors are candidate CSS selectors, tried in order.
	Selectors []string

	// Keywords trigger a click when found in an element's visible text or
	// in the selector that matched it. Lowercase.
	Keywords []string
}

// Catalog is the ordered list of interstitial categories. The order is
// load-bearing: later categories assume earlier ones already cleared
// blocking overlays (an age gate typically sits above the cookie banner).
var Catalog = []Category{
	{
		Name: "age-verification",
		Selectors: []string{
			"[class*='age-gate'] button",
			"[class*='age-verification'] button",
			"[class*='agegate'] button",
			"[id*='age-gate'] button",
			"[data-testid*='age'] button",
			"[class*='age'] button",
			"button",
		},
		Keywords: []string{
			"yes", "i am 21", "i'm 21", "21+", "i am over", "enter",
			"confirm", "i agree", "verify",
		},
	},
	{
		Name: "cookie-consent",
		Selectors: []string{
			"#onetrust-accept-btn-handler",
			"[class*='cookie'] button",
			"[id*='cookie'] button",
			"[class*='consent'] button",
			"[aria-label*='cookie'] button",
		},
		Keywords: []string{
			"accept", "accept all", "allow", "allow all", "got it", "ok",
			"agree", "i understand",
		},
	},
	{
		Name: "gdpr-consent",
		Selectors: []string{
			"[class*='gdpr'] button",
			"[id*='gdpr'] button",
			"[class*='privacy-banner'] button",
			"[class*='cmp'] button",
		},
		Keywords: []string{
			"accept", "agree", "consent", "continue",
		},
	},
	{
		Name: "newsletter-dismiss",
		Selectors: []string{
			"[class*='newsletter'] button",
			"[class*='newsletter'] [class*='close']",
			"[class*='signup'] [class*='close']",
			"[class*='subscribe'] [class*='close']",
			"[class*='modal'] [aria-label='Close']",
		},
		Keywords: []string{
			"no thanks", "close", "dismiss", "not now", "maybe later", "×", "x",
		},
	},
	{
		Name: "location-deny",
		Selectors: []string{
			"[class*='location'] button",
			"[class*='geo'] button",
			"[class*='store-selector'] [class*='close']",
		},
		Keywords: []string{
			"not now", "no thanks", "deny", "close", "skip",
		},
	},
	{
		Name: "generic-modal-close",
		Selectors: []string{
			"[class*='modal'] [class*='close']",
			"[class*='popup'] [class*='close']",
			"[class*='overlay'] [class*='close']",
			"[class*='dialog'] [class*='close']",
			"[aria-label='Close']",
			"[aria-label='close']",
			"button[class*='close']",
		},
		Keywords: []string{
			"close", "dismiss", "×", "x", "no thanks", "skip",
		},
	},
}

// matchesKeywords reports whether an element's visible text or the selector
// that found it matches one of the category's trigger keywords. Text longer
// than a short button label is rejected outright so a paragraph that merely
// mentions "accept" is never clicked.
func matchesKeywords(text, selector string, keywords []string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if len(text) > 60 {
		return false
	}
	selector = strings.ToLower(selector)

	for _, kw := range keywords {
		if text == kw {
			return true
		}
		if text != "" && strings.Contains(text, kw) {
			return true
		}
		if strings.Contains(selector, kw) {
			return true
		}
	}
	return false
}
