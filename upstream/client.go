package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// endpoints maps gateway operation names to API paths. Each operation is a
// pass-through GET with its params as query string.
var endpoints = map[string]string{
	"search_opinions":   "/api/rest/v4/search/",
	"get_opinion":       "/api/rest/v4/opinions/",
	"get_docket":        "/api/rest/v4/dockets/",
	"get_court":         "/api/rest/v4/courts/",
	"lookup_citation":   "/api/rest/v4/citation-lookup/",
	"get_oral_argument": "/api/rest/v4/audio/",
}

// Operations returns the supported operation names, sorted.
func Operations() []string {
	ops := make([]string, 0, len(endpoints))
	for op := range endpoints {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Config configures the upstream client.
type Config struct {
	// BaseURL is the data source root, e.g. "https://www.courtlistener.com".
	// Required.
	BaseURL string

	// Token is the credential for the upstream API, sent as
	// "Authorization: Token <token>". Optional; some endpoints allow
	// unauthenticated access at reduced quota.
	Token string

	// HTTPClient issues the requests. Defaults to a client with a 30s
	// timeout; the gateway normally supplies per-call deadlines via context.
	HTTPClient *http.Client

	// UserAgent is sent on every request. Defaults to "lexgate".
	UserAgent string
}

// Client issues pass-through requests to the data source.
type Client struct {
	baseURL   *url.URL
	token     string
	userAgent string
	http      *http.Client
}

func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("upstream: Config.BaseURL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream: invalid base URL: %w", err)
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.UserAgent == "" {
		config.UserAgent = "lexgate"
	}
	return &Client{
		baseURL:   base,
		token:     config.Token,
		userAgent: config.UserAgent,
		http:      config.HTTPClient,
	}, nil
}

// Call executes the named operation with the given parameters and returns
// the raw decoded response body.
func (c *Client) Call(ctx context.Context, operation string, params map[string]any) (json.RawMessage, error) {
	path, ok := endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
	}

	// Identifier lookups take the id as a path segment rather than a
	// query param.
	params = copyParams(params)
	if id, ok := params["id"]; ok && strings.HasSuffix(path, "/") && operation != "search_opinions" {
		path = path + fmt.Sprint(id) + "/"
		delete(params, "id")
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = encodeQuery(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &Error{Operation: operation, Message: "read body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Status:    resp.StatusCode,
			Message:   errorMessage(body, resp.StatusCode),
			Operation: operation,
		}
	}

	if !json.Valid(body) {
		return nil, &Error{
			Status:    resp.StatusCode,
			Message:   "invalid JSON in response body",
			Operation: operation,
		}
	}
	return json.RawMessage(body), nil
}

func (c *Client) transportError(ctx context.Context, operation string, err error) error {
	msg := err.Error()
	if ctxErr := ctx.Err(); ctxErr != nil {
		msg = ctxErr.Error()
	}
	return &Error{Operation: operation, Message: msg}
}

// errorMessage pulls the upstream's detail string out of an error body
// when present, falling back to the HTTP status text.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return http.StatusText(status)
}

func copyParams(params map[string]any) map[string]any {
	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return cp
}

func encodeQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}

// Healthy probes the upstream with a cheap request, for health checks.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.Call(ctx, "get_court", map[string]any{"page_size": 1})
	var ue *Error
	// A quota rejection still proves the upstream is reachable.
	if errors.As(err, &ue) && ue.Status == http.StatusTooManyRequests {
		return nil
	}
	return err
}
