package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/stacklok/storefront-catalog/internal/httpclient"
)

const (
	// DefaultProductsPath locates the product array in a provider response
	DefaultProductsPath = "products"
	// DefaultCollectionsPath locates the collection array in a provider response
	DefaultCollectionsPath = "collections"
	// DefaultTokenHeader carries the provider access token
	DefaultTokenHeader = "X-Storefront-Access-Token"

	requestIDHeader = "X-Request-ID"
)

// ErrMalformedResponse is returned when a provider response does not have the expected shape.
var ErrMalformedResponse = errors.New("malformed provider response")

// APIProvider fetches the catalog from the upstream catalog service over HTTP.
type APIProvider struct {
	client          httpclient.Client
	endpoint        string
	token           string
	tokenHeader     string
	productsPath    string
	collectionsPath string
	maxRetries      uint
	initialBackoff  time.Duration
}

// APIProviderOption configures an APIProvider.
type APIProviderOption func(*APIProvider)

// WithAccessToken sends token in header on every request.
func WithAccessToken(header, token string) APIProviderOption {
	return func(p *APIProvider) {
		if header != "" {
			p.tokenHeader = header
		}
		p.token = token
	}
}

// WithResponsePaths overrides the gjson paths of the product and collection arrays.
// Empty values keep the defaults.
func WithResponsePaths(productsPath, collectionsPath string) APIProviderOption {
	return func(p *APIProvider) {
		if productsPath != "" {
			p.productsPath = productsPath
		}
		if collectionsPath != "" {
			p.collectionsPath = collectionsPath
		}
	}
}

// WithRetries sets how many times a transient failure is retried and the first backoff interval.
func WithRetries(maxRetries uint, initialBackoff time.Duration) APIProviderOption {
	return func(p *APIProvider) {
		p.maxRetries = maxRetries
		if initialBackoff > 0 {
			p.initialBackoff = initialBackoff
		}
	}
}

// NewAPIProvider creates a provider for the catalog service at endpoint.
func NewAPIProvider(client httpclient.Client, endpoint string, opts ...APIProviderOption) (*APIProvider, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid provider endpoint %q", endpoint)
	}

	p := &APIProvider{
		client:          client,
		endpoint:        strings.TrimRight(endpoint, "/"),
		tokenHeader:     DefaultTokenHeader,
		productsPath:    DefaultProductsPath,
		collectionsPath: DefaultCollectionsPath,
		maxRetries:      2,
		initialBackoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SearchProducts runs a search against the products endpoint, or the collection's
// products endpoint when the request is collection-scoped.
func (p *APIProvider) SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error) {
	target := p.endpoint + "/products"
	if req.Collection != "" {
		target = p.endpoint + "/collections/" + url.PathEscape(req.Collection) + "/products"
	}

	values := url.Values{}
	if req.Query != "" {
		values.Set("query", req.Query)
	}
	if req.SortKey != "" {
		values.Set("sortKey", string(req.SortKey))
	}
	values.Set("reverse", strconv.FormatBool(req.Reverse))
	target += "?" + values.Encode()

	body, err := p.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := decodeArray(body, p.productsPath, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCollections fetches every collection.
func (p *APIProvider) ListCollections(ctx context.Context) ([]Collection, error) {
	body, err := p.fetch(ctx, p.endpoint+"/collections")
	if err != nil {
		return nil, err
	}

	var collections []Collection
	if err := decodeArray(body, p.collectionsPath, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// GetSource returns the provider endpoint.
func (p *APIProvider) GetSource() string {
	return "api:" + p.endpoint
}

func (p *APIProvider) fetch(ctx context.Context, target string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialBackoff

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		requestID := uuid.NewString()
		data, err := p.client.Get(ctx, target,
			httpclient.WithHeader(requestIDHeader, requestID),
			httpclient.WithHeader(p.tokenHeader, p.token),
		)
		if err == nil {
			return data, nil
		}
		if !retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		slog.Warn("Catalog provider request failed, retrying",
			"url", target,
			"request_id", requestID,
			"attempt", attempt,
			"error", err)
		return nil, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.maxRetries+1))
	if err != nil {
		return nil, fmt.Errorf("catalog provider request failed after %d attempt(s): %w", attempt, err)
	}
	return body, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	// Transport failures carry no status code and are worth another attempt.
	return true
}

// decodeArray locates the array at path in body and unmarshals it into out.
func decodeArray(body []byte, path string, out any) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return fmt.Errorf("%w: path %q not found", ErrMalformedResponse, path)
	}
	if !result.IsArray() {
		return fmt.Errorf("%w: path %q is not an array", ErrMalformedResponse, path)
	}
	if err := json.Unmarshal([]byte(result.Raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
