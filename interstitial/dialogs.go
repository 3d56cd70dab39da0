package interstitial

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var (
	acceptPhrases = []string{
		"age", "21", "18", "older", "consent", "agree", "terms", "continue",
	}
	dismissPhrases = []string{
		"location", "notification", "notify", "subscribe", "geolocation",
	}
)

// acceptDialog decides how to answer a native dialog from its message:
// age/consent phrasing is accepted, location/notification phrasing is
// dismissed, everything else is accepted so the dialog never blocks the page.
func acceptDialog(message string) bool {
	m := strings.ToLower(message)
	for _, p := range dismissPhrases {
		if strings.Contains(m, p) {
			return false
		}
	}
	for _, p := range acceptPhrases {
		if strings.Contains(m, p) {
			return true
		}
	}
	return true
}

// ListenDialogs installs a native-dialog handler for the lifetime of the
// page. Each answered dialog increments handled. The event loop is bound to
// the page's context, so the subscription ends when the page is released —
// no handler leaks across pages.
func (r *Resolver) ListenDialogs(page *rod.Page, handled *atomic.Int32) {
	wait := page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		accept := acceptDialog(e.Message)
		err := proto.PageHandleJavaScriptDialog{
			Accept: accept,
		}.Call(page)
		if err != nil {
			slog.Debug("dialog answer failed", "error", err)
			return
		}
		handled.Add(1)
		slog.Debug("native dialog answered",
			"type", string(e.Type), "accepted", accept)
	})
	go wait()
}
