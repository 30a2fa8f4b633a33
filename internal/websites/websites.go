// Package websites maps normalized merchant names to their account-management
// pages, so subscription results can link straight to where a plan is
// cancelled or changed.
package websites

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// defaults covers the common recurring merchants. Keys are normalized
// merchant names as produced by the subscription detector: upper case, only
// letters, digits, '&', '+' and single spaces.
var defaults = map[string]string{
	"NETFLIX":         "https://www.netflix.com/youraccount",
	"NETFLIXCOM":      "https://www.netflix.com/youraccount",
	"SPOTIFY":         "https://www.spotify.com/account",
	"SPOTIFYCOM":      "https://www.spotify.com/account",
	"HULU":            "https://secure.hulu.com/account",
	"DISNEY+":         "https://www.disneyplus.com/account",
	"AMAZON PRIME":    "https://www.amazon.com/gp/primecentral",
	"AMZN PRIME":      "https://www.amazon.com/gp/primecentral",
	"APPLECOM":        "https://account.apple.com",
	"APPLECOMBILL":    "https://account.apple.com",
	"YOUTUBE PREMIUM": "https://www.youtube.com/paid_memberships",
	"HBO MAX":         "https://www.max.com/account",
	"MAX":             "https://www.max.com/account",
	"AUDIBLE":         "https://www.audible.com/account",
	"DROPBOX":         "https://www.dropbox.com/account/plan",
	"GITHUB":          "https://github.com/settings/billing",
	"ADOBE":           "https://account.adobe.com/plans",
	"MICROSOFT":       "https://account.microsoft.com/services",
	"GOOGLE STORAGE":  "https://one.google.com/settings",
	"GOOGLE ONE":      "https://one.google.com/settings",
	"ICLOUD":          "https://account.apple.com",
	"PLANET FITNESS":  "https://www.planetfitness.com/my-account",
	"PELOTON":         "https://www.onepeloton.com/membership",
	"NYTIMES":         "https://myaccount.nytimes.com/subscription",
	"WSJ":             "https://customercenter.wsj.com",
}

// Directory resolves merchants against the built-in table plus any overrides.
type Directory struct {
	sites map[string]string
}

// New returns a Directory with the built-in table.
func New() *Directory {
	return &Directory{sites: defaults}
}

// NewFromFile layers a JSON object of {"MERCHANT": "url"} overrides from path
// on top of the built-in table. Override keys are normalized to upper case.
func NewFromFile(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read merchant sites %s: %w", path, err)
	}
	var overrides map[string]string
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse merchant sites %s: %w", path, err)
	}

	sites := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		sites[k] = v
	}
	for k, v := range overrides {
		sites[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return &Directory{sites: sites}, nil
}

// Lookup returns the management URL for a normalized merchant name, or ""
// when none is known. Exact match first, then a prefix match so
// "NETFLIX 4KPLAN" still resolves.
func (d *Directory) Lookup(merchant string) string {
	if url, ok := d.sites[merchant]; ok {
		return url
	}
	for name, url := range d.sites {
		if strings.HasPrefix(merchant, name+" ") {
			return url
		}
	}
	return ""
}
