package catalog

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/emberhav/pricewatch/internal/utils"
)

// externalIDPattern matches the 10-character listing identifier in a
// product URL path. Example: /dp/B08N5WRWNW
var externalIDPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// shortHosts are listing-URL shorteners that must be expanded before
// the identifier can be extracted.
var shortHosts = []string{"a.co/", "amzn.eu/", "amzn.to/"}

// ExtractExternalID pulls the catalog identifier out of a listing URL.
func ExtractExternalID(rawURL string) (string, error) {
	m := externalIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no catalog identifier in url %q", rawURL)
	}
	return m[1], nil
}

// IsShortURL reports whether the URL points at a known shortener.
func IsShortURL(rawURL string) bool {
	for _, host := range shortHosts {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}

// ExpandShortURL follows redirects on a shortened listing URL and
// returns the final location. Non-short URLs pass through untouched.
func ExpandShortURL(ctx context.Context, rawURL string) (string, error) {
	if !IsShortURL(rawURL) {
		return rawURL, nil
	}

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create expand request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to expand short url: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String(), nil
	}
	return rawURL, nil
}
