package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pichpich13/user-dashboard/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Open Food Facts instance
const DefaultBaseURL = "https://world.openfoodfacts.org"

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	requestTimeout time.Duration
	rateLimiter    *rate.Limiter
	debug          bool
}

// NewClient creates a new Open Food Facts API client.
// The client neither rate limits nor overrides the transport timeout until configured to.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "UserDashboard/1.0"
	}

	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Inf, 1),
	}
}

// SetDebug toggles per-request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetRequestTimeout bounds each lookup. Zero keeps the transport default.
func (c *Client) SetRequestTimeout(timeout time.Duration) {
	c.requestTimeout = timeout
}

// SetRateLimit caps lookups per second. A non-positive rps removes the cap.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if burst < 1 {
		burst = 1
	}
	if rps <= 0 {
		c.rateLimiter = rate.NewLimiter(rate.Inf, burst)
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrRequestFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRequestFailed, err)
	}

	return resp, nil
}

// GetProduct looks up one product by barcode.
// A non-200 answer or an unreadable body is ErrRequestFailed; status != 1 is ErrProductNotFound.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.OFFProduct, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrRequestFailed, err)
	}

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	if c.debug {
		log.Printf("[OFF] GET %s", reqURL)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[OFF] Request error for barcode %q: %v", barcode, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[OFF] API error for barcode %q - Status: %d, Body: %s", barcode, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrRequestFailed, resp.StatusCode)
	}

	var productResp domain.OFFProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		log.Printf("[OFF] JSON decode error for barcode %q: %v", barcode, err)
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrRequestFailed, err)
	}

	if productResp.Status != 1 {
		if c.debug {
			log.Printf("[OFF] Barcode %q not found (%s)", barcode, productResp.StatusVerbose)
		}
		return nil, domain.ErrProductNotFound
	}

	// Found but without a product object: every field reads as not available
	if productResp.Product == nil {
		return &domain.OFFProduct{Code: barcode}, nil
	}

	return productResp.Product, nil
}
