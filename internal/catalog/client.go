package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/emberhav/pricewatch/internal/logger"
	"github.com/emberhav/pricewatch/internal/utils"
)

// Error taxonomy at the catalog boundary. Transient errors mean
// skip-and-retry-next-cycle; not-found means the item is unresolvable
// this cycle but is never deleted for it.
var (
	ErrNotFound  = errors.New("catalog: item not found")
	ErrTransient = errors.New("catalog: transient source error")
)

// statsWindow is the trailing window (days) the catalog aggregates its
// rolling average over.
const statsWindow = 90

// Client talks to the external catalog pricing API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	domain  int
	logger  logger.Logger
}

// NewClient creates a catalog client. baseURL carries no trailing slash.
func NewClient(baseURL, apiKey string, domain int, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		domain:  domain,
		logger:  log,
	}
}

// Fetch retrieves the current catalog record for one external id.
func (c *Client) Fetch(ctx context.Context, externalID string) (*Record, error) {
	records, err := c.FetchBatch(ctx, []string{externalID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, externalID)
	}
	return &records[0], nil
}

// FetchBatch retrieves records for several external ids in one call.
// Ids the catalog does not know are simply absent from the result.
func (c *Client) FetchBatch(ctx context.Context, externalIDs []string) ([]Record, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}

	params := c.baseParams()
	params.Set("asin", strings.Join(externalIDs, ","))
	params.Set("stats", strconv.Itoa(statsWindow))
	params.Set("rating", "1")

	var resp productResponse
	if err := c.get(ctx, "/product", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, resp.Error.Message)
	}

	records := make([]Record, 0, len(resp.Products))
	for _, p := range resp.Products {
		if p.ASIN == "" {
			continue
		}
		records = append(records, mapProduct(p))
	}
	return records, nil
}

// CategoryMatch is one category returned by a category search, with
// the ids of its current bestsellers.
type CategoryMatch struct {
	ID         string
	Name       string
	TopSellers []string
}

// SearchCategories looks up categories matching term and returns their
// bestseller ids.
func (c *Client) SearchCategories(ctx context.Context, term string) ([]CategoryMatch, error) {
	params := c.baseParams()
	params.Set("type", "category")
	params.Set("term", term)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, resp.Error.Message)
	}

	matches := make([]CategoryMatch, 0, len(resp.Categories))
	for id, cat := range resp.Categories {
		matches = append(matches, CategoryMatch{ID: id, Name: cat.Name, TopSellers: cat.TopSellers})
	}
	return matches, nil
}

// SearchProducts runs a free-text product search and returns matching
// external ids.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]string, error) {
	params := c.baseParams()
	params.Set("type", "product")
	params.Set("term", term)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransient, resp.Error.Message)
	}
	return resp.ASINList, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("domain", strconv.Itoa(c.domain))
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failures are retried next cycle.
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer utils.Close(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited", ErrTransient)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: catalog returned %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog returned unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
