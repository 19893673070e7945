// Package openbb resolves operation paths to calls against the OpenBB Platform REST API.
//
// Routes are explicit: a Client serves exactly the routes it was built with (DefaultRoutes
// unless WithRoutes says otherwise), and Resolve fails for anything else. Optionally the
// routes are checked against the API's OpenAPI document at startup (see CheckRoutes).
package openbb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skosovsky/bbtools"
)

const (
	defaultTimeout = 30 * time.Second
	// maxResponseBytes bounds one response body.
	maxResponseBytes = 32 << 20
	userAgent        = "bbtools/1.0"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	Route      string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("openbb %s: HTTP %d", e.Route, e.StatusCode)
	}
	return fmt.Sprintf("openbb %s: HTTP %d: %s", e.Route, e.StatusCode, e.Detail)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithToken sets a personal access token sent as "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithRoutes replaces DefaultRoutes. Routes are written without the /api/v1/ prefix,
// e.g. "equity/price/quote".
func WithRoutes(routes ...string) Option {
	return func(cl *Client) {
		cl.routes = routes
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// Client calls the OpenBB Platform API. It implements bbtools.Resolver.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	routes     []string
	table      map[string]bbtools.Operation
}

// NewClient creates a Client for the API served at baseURL (e.g. "http://127.0.0.1:6900").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		routes:     DefaultRoutes,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.table = make(map[string]bbtools.Operation, len(c.routes))
	for _, route := range c.routes {
		route = normalizeRoute(route)
		c.table[route] = c.operation(route)
	}
	return c
}

// Routes returns the routes this client serves, sorted.
func (c *Client) Routes() []string {
	routes := make([]string, 0, len(c.table))
	for route := range c.table {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// Resolve strips the /api/v1/ prefix from path and returns the operation for the remaining route.
// Unknown routes return an error wrapping bbtools.ErrUnknownOperation.
func (c *Client) Resolve(path string) (bbtools.Operation, error) {
	route := normalizeRoute(path)
	op, ok := c.table[route]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bbtools.ErrUnknownOperation, path)
	}
	return op, nil
}

func normalizeRoute(path string) string {
	route := strings.TrimPrefix(path, bbtools.APIPrefix)
	return strings.Trim(route, "/")
}

func (c *Client) operation(route string) bbtools.Operation {
	return func(ctx context.Context, params map[string]any) ([]json.RawMessage, error) {
		return c.call(ctx, route, params)
	}
}

func (c *Client) call(ctx context.Context, route string, params map[string]any) ([]json.RawMessage, error) {
	endpoint := c.baseURL + bbtools.APIPrefix + route
	if q := encodeQuery(params); q != "" {
		endpoint += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("openbb %s: %w", route, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.logger.DebugContext(ctx, "openbb request", "route", route, "params", params)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openbb %s: %w", route, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("openbb %s: read response: %w", route, err)
	}
	c.logger.DebugContext(ctx, "openbb response", "route", route, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Route: route, StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	return decodeResults(route, body)
}

// decodeResults extracts the items of the "results" member: an array yields its elements,
// an object yields itself, null or a missing member yields no items.
func decodeResults(route string, body []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("openbb %s: response is not valid JSON", route)
	}
	results := gjson.GetBytes(body, "results")
	switch {
	case !results.Exists() || results.Type == gjson.Null:
		return []json.RawMessage{}, nil
	case results.IsArray():
		arr := results.Array()
		items := make([]json.RawMessage, 0, len(arr))
		for _, item := range arr {
			items = append(items, json.RawMessage(item.Raw))
		}
		return items, nil
	default:
		return []json.RawMessage{json.RawMessage(results.Raw)}, nil
	}
}

// errorDetail pulls a readable message out of an error body ({"detail": "..."} or a
// validation error list), falling back to the raw body.
func errorDetail(body []byte) string {
	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		msgs := make([]string, 0, len(detail.Array()))
		for _, d := range detail.Array() {
			loc := d.Get("loc").Array()
			field := ""
			if len(loc) > 0 {
				field = loc[len(loc)-1].String() + ": "
			}
			msgs = append(msgs, field+d.Get("msg").String())
		}
		return strings.Join(msgs, "; ")
	case detail.Exists():
		return detail.Raw
	}
	return strings.TrimSpace(string(body))
}

// encodeQuery renders params as a query string with sorted keys. Lists become
// comma-separated values; nil values are skipped.
func encodeQuery(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		values.Set(k, formatValue(v))
	}
	return values.Encode()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprint(x)
	}
}

var _ bbtools.Resolver = (*Client)(nil)
