package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
)

const (
	// DefaultEndpoint is the catalog API base URL. Overridable via
	// Settings.Endpoint for self-hosted gateways and tests.
	DefaultEndpoint = "https://catalog-api.keywatch.dev"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// requestRate is the proactive throttle (requests per second).
	// The catalog API allows one search per second per credential.
	requestRate = 1

	// HeaderToken carries the API token.
	HeaderToken = "X-Auth-Token"

	// HeaderSecret carries the API secret.
	HeaderSecret = "X-Auth-Secret"
)

// Ensure Client implements the interface.
var _ driven.SearchClient = (*Client)(nil)

// Client queries the catalog search API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	locale     string
	token      string
	secret     string
	limiter    *rate.Limiter
}

// NewClient creates a catalog client for the given settings and
// credentials. An empty Settings.Endpoint selects the default.
func NewClient(settings domain.Settings, token, secret string) *Client {
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		locale:     settings.Locale,
		token:      token,
		secret:     secret,
		limiter:    rate.NewLimiter(rate.Limit(requestRate), 1),
	}
}

// Search returns the current results for one keyword. An empty result
// set is valid, not an error.
func (c *Client) Search(ctx context.Context, keyword, mode string) ([]domain.SearchRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{}
	query.Set("keyword", keyword)
	query.Set("mode", mode)
	endpoint := fmt.Sprintf("%s/v1/%s/search?%s",
		c.endpoint, url.PathEscape(c.locale), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set(HeaderToken, c.token)
	req.Header.Set(HeaderSecret, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned status %d",
			domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w",
			domain.ErrUpstreamUnavailable, err)
	}

	records := make([]domain.SearchRecord, 0, len(body.Items))
	for _, item := range body.Items {
		records = append(records, item.toRecord())
	}
	return records, nil
}

// SearchPageURL returns the storefront results page for the keyword.
// Built with query-parameter encoding so keywords containing spaces or
// special characters stay valid.
func (c *Client) SearchPageURL(keyword, mode string) string {
	query := url.Values{}
	query.Set("keyword", keyword)
	query.Set("mode", mode)
	return fmt.Sprintf("%s/%s/search?%s",
		c.endpoint, url.PathEscape(c.locale), query.Encode())
}

// searchResponse is the catalog API wire format.
type searchResponse struct {
	Items []searchResult `json:"items"`
}

type searchResult struct {
	ASIN   string              `json:"asin"`
	Title  string              `json:"title"`
	URL    string              `json:"url"`
	Kind   string              `json:"kind"`
	Price  string              `json:"price"`
	Images map[string]string   `json:"images"`
	People map[string][]string `json:"people"`
}

// toRecord maps a wire result to the domain record, keeping only the
// known image sizes and contributor roles. Absent fields stay absent.
func (r searchResult) toRecord() domain.SearchRecord {
	record := domain.SearchRecord{
		ASIN:  r.ASIN,
		Title: r.Title,
		URL:   r.URL,
		Kind:  r.Kind,
		Price: r.Price,
	}

	for _, size := range domain.ImageSizes() {
		if url, ok := r.Images[string(size)]; ok && url != "" {
			if record.Images == nil {
				record.Images = make(map[domain.ImageSize]string)
			}
			record.Images[size] = url
		}
	}

	for _, role := range domain.Roles() {
		if names := r.People[string(role)]; len(names) > 0 {
			if record.People == nil {
				record.People = make(map[domain.Role][]string)
			}
			record.People[role] = names
		}
	}

	return record
}
