package session

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/canopyhq/harvester/models"
)

// Fixed desktop fingerprint applied to every page. Keeping one believable
// identity is less suspicious than rotating random ones mid-session.
const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"

	viewportWidth  = 1920
	viewportHeight = 1080

	timezoneID = "America/Los_Angeles"
	locale     = "en-US"

	// Downtown Los Angeles.
	geoLatitude  = 34.0522
	geoLongitude = -118.2437
	geoAccuracy  = 100
)

// extraHeaders mimics the header set a real Chrome sends on navigation.
var extraHeaders = map[string]string{
	"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9," +
		"image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           acceptLanguage,
	"Accept-Encoding":           "gzip, deflate, br",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

// patchJS removes automation-detectable properties before any site script
// runs. Best-effort camouflage, not a security boundary.
const patchJS = `;(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	delete Navigator.prototype.webdriver;

	Object.defineProperty(navigator, 'plugins', {
		get: () => [
			{ name: 'Chrome PDF Plugin' },
			{ name: 'Chrome PDF Viewer' },
			{ name: 'Native Client' },
		],
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en'],
	});

	window.chrome = window.chrome || { runtime: {} };

	const origQuery = window.navigator.permissions.query.bind(window.navigator.permissions);
	window.navigator.permissions.query = (parameters) =>
		parameters.name === 'notifications'
			? Promise.resolve({ state: Notification.permission })
			: origQuery(parameters);
})();`

// configurePage applies the fixed fingerprint to a fresh page: user agent,
// viewport, locale/timezone, request headers, geolocation, plus the stealth
// and patch scripts injected before navigation.
func configurePage(page *rod.Page) error {
	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      userAgent,
		AcceptLanguage: acceptLanguage,
		Platform:       "Win32",
	}).Call(page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to set user agent", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to set viewport", err)
	}

	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: timezoneID}).Call(page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to set timezone", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: locale}).Call(page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to set locale", err)
	}

	// Geolocation failures are tolerable; sites fall back to IP lookup.
	var (
		lat float64 = geoLatitude
		lng float64 = geoLongitude
		acc float64 = geoAccuracy
	)
	_ = proto.EmulationSetGeolocationOverride{
		Latitude:  &lat,
		Longitude: &lng,
		Accuracy:  &acc,
	}.Call(page)

	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(extraHeaders),
	}).Call(page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to set headers", err)
	}

	// Stealth first, then our own patches on top. Both must be installed
	// before navigation to take effect.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "stealth injection failed", err)
	}
	if _, err := page.EvalOnNewDocument(patchJS); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserLaunch, "fingerprint patch injection failed", err)
	}

	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
