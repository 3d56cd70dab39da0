package interstitial

import "testing"

func TestMatchesKeywords(t *testing.T) {
	ageKeywords := Catalog[0].Keywords

	tests := []struct {
		text     string
		selector string
		want     bool
	}{
		{"Yes, I am 21", "button", true},
		{"YES", "button", true},
		{"Enter Site", "button", true},
		{"No, take me back", "button", false},
		// Long prose mentioning a keyword must never be clicked.
		{"You must confirm that you are of legal age in your jurisdiction before entering this website", "button", false},
		// Empty text, keyword in the selector.
		{"", "[class*='age'] button .enter", true},
		{"", "button", false},
	}

	for _, tt := range tests {
		if got := matchesKeywords(tt.text, tt.selector, ageKeywords); got != tt.want {
			t.Errorf("matchesKeywords(%q, %q) = %v, want %v", tt.text, tt.selector, got, tt.want)
		}
	}
}

func TestCatalogOrder(t *testing.T) {
	// Age gates block everything else, so they must be resolved first;
	// the generic close is the net at the end.
	if Catalog[0].Name != "age-verification" {
		t.Errorf("first category: got %s", Catalog[0].Name)
	}
	if Catalog[len(Catalog)-1].Name != "generic-modal-close" {
		t.Errorf("last category: got %s", Catalog[len(Catalog)-1].Name)
	}
}

func TestAcceptDialog(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"Are you 21 years of age or older?", true},
		{"Do you agree to our terms?", true},
		{"Allow this site to access your location?", false},
		{"Enable notifications to stay up to date", false},
		{"Something unexpected happened", true},
	}

	for _, tt := range tests {
		if got := acceptDialog(tt.message); got != tt.want {
			t.Errorf("acceptDialog(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
