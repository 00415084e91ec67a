package moltbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/retry"
)

// DefaultBaseURL is the canonical API base. The platform warns that
// redirects from non-www hosts can strip Authorization headers, so the www
// host is the only safe choice for authenticated calls.
const DefaultBaseURL = "https://www.moltbook.com/api/v1"

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status  int
	Method  string
	URL     string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moltbook API error %d for %s %s: %s", e.Status, e.Method, e.URL, e.Message)
}

// IsAuthFailure reports whether the error is a 401/403 from the platform.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	DryRun  bool
	Retry   retry.Config
	Logger  zerolog.Logger
}

// Client talks to the Moltbook API. We use a hand-built HTTP client instead
// of generated bindings because the deployed endpoints drift from the docs
// (see GetPostComments).
type Client struct {
	apiKey  string
	baseURL string
	dryRun  bool
	retry   retry.Config
	log     zerolog.Logger

	// authed refuses redirects so a bounced request can never leak the
	// Authorization header; public follows them.
	authed *http.Client
	public *http.Client
}

// NewClient builds a Client from Options, applying defaults.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if opts.Retry.Multiplier == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	c := &Client{
		apiKey:  opts.APIKey,
		baseURL: base,
		dryRun:  opts.DryRun,
		retry:   opts.Retry,
		log:     opts.Logger,
		authed: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		public: &http.Client{Timeout: timeout},
	}

	if c.apiKey != "" && !strings.HasPrefix(c.baseURL, "https://www.moltbook.com") {
		c.log.Warn().
			Str("base_url", c.baseURL).
			Msg("base URL should start with https://www.moltbook.com; redirects can strip Authorization headers")
	}
	return c
}

type requestSpec struct {
	method  string
	path    string
	query   url.Values
	body    any
	useAuth bool
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// request performs one API call and decodes the JSON object response.
func (c *Client) request(ctx context.Context, spec requestSpec) (map[string]any, error) {
	if spec.useAuth && c.apiKey == "" {
		return nil, fmt.Errorf("this moltbook operation requires an API key; set MOLTBOOK_API_KEY")
	}

	reqURL := c.baseURL + "/" + strings.TrimLeft(spec.path, "/")
	if len(spec.query) > 0 {
		reqURL += "?" + spec.query.Encode()
	}

	if c.dryRun && isWrite(spec.method) {
		c.log.Info().Str("method", spec.method).Str("url", reqURL).Msg("DRY_RUN - skipping write")
		return map[string]any{
			"success": true,
			"dry_run": true,
			"skipped": true,
			"method":  spec.method,
			"path":    spec.path,
		}, nil
	}

	do := func() (map[string]any, error) {
		var bodyReader io.Reader
		if spec.body != nil {
			raw, err := json.Marshal(spec.body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			bodyReader = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, spec.method, reqURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		client := c.public
		if spec.useAuth {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			client = c.authed
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if spec.useAuth && resp.StatusCode >= 300 && resp.StatusCode < 400 {
			return nil, fmt.Errorf(
				"moltbook API request redirected (likely non-www host); refusing to follow since redirects can strip Authorization headers: %s -> %s",
				reqURL, resp.Header.Get("Location"))
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		var data map[string]any
		_ = json.Unmarshal(raw, &data)

		if resp.StatusCode == http.StatusTooManyRequests {
			evt := c.log.Warn().Str("method", spec.method).Str("url", reqURL)
			if data != nil {
				if mins, ok := data["retry_after_minutes"]; ok {
					evt = evt.Interface("retry_after_minutes", mins)
				}
			}
			evt.Msg("rate limited (429)")
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := strings.TrimSpace(string(raw))
			if data != nil {
				if m := asString(data["error"]); m != "" {
					msg = m
				} else if m := asString(data["message"]); m != "" {
					msg = m
				}
			}
			return nil, &APIError{Status: resp.StatusCode, Method: spec.method, URL: reqURL, Message: msg}
		}

		if data == nil {
			return map[string]any{"success": true}, nil
		}
		return data, nil
	}

	// Only idempotent reads are retried; writes get exactly one attempt so a
	// flaky network can never double-post.
	if spec.method == http.MethodGet || spec.method == http.MethodHead {
		var out map[string]any
		res := retry.Do(ctx, c.retry, c.log, func() error {
			var err error
			out, err = do()
			return err
		})
		if !res.Success {
			return nil, res.LastError
		}
		return out, nil
	}
	return do()
}

// IsDryRun reports whether a write response was short-circuited by dry-run
// mode.
func IsDryRun(payload map[string]any) bool {
	v, _ := payload["dry_run"].(bool)
	return v
}

// GetMe returns the authenticated agent's identity.
func (c *Client) GetMe(ctx context.Context) (Agent, error) {
	payload, err := c.request(ctx, requestSpec{method: http.MethodGet, path: "/agents/me", useAuth: true})
	if err != nil {
		return Agent{}, err
	}
	agent := asMap(payload["agent"])
	return Agent{ID: asString(agent["id"]), Name: asString(agent["name"])}, nil
}

// GetProfile returns a public agent profile with recent posts.
func (c *Client) GetProfile(ctx context.Context, name string) (map[string]any, error) {
	q := url.Values{"name": {name}}
	return c.request(ctx, requestSpec{method: http.MethodGet, path: "/agents/profile", query: q})
}

// GetAgentStatus checks claim status.
func (c *Client) GetAgentStatus(ctx context.Context) (map[string]any, error) {
	return c.request(ctx, requestSpec{method: http.MethodGet, path: "/agents/status", useAuth: true})
}

// DMCheck polls for direct-message activity (heartbeat use).
func (c *Client) DMCheck(ctx context.Context) (DMStatus, error) {
	payload, err := c.request(ctx, requestSpec{method: http.MethodGet, path: "/agents/dm/check", useAuth: true})
	if err != nil {
		return DMStatus{}, err
	}
	has, _ := payload["has_activity"].(bool)
	return DMStatus{HasActivity: has, Summary: asString(payload["summary"])}, nil
}

// GetFeed returns the personalized feed.
func (c *Client) GetFeed(ctx context.Context, sort string, limit int) (map[string]any, error) {
	q := url.Values{"sort": {sort}, "limit": {fmt.Sprint(limit)}}
	return c.request(ctx, requestSpec{method: http.MethodGet, path: "/feed", query: q, useAuth: true})
}

// ListPosts lists posts globally or for one submolt. Readable without auth.
func (c *Client) ListPosts(ctx context.Context, sort string, limit int, submolt string) (map[string]any, error) {
	q := url.Values{"sort": {sort}, "limit": {fmt.Sprint(limit)}}
	if submolt != "" {
		q.Set("submolt", submolt)
	}
	return c.request(ctx, requestSpec{method: http.MethodGet, path: "/posts", query: q})
}

// GetPost fetches a single post. Readable without auth.
func (c *Client) GetPost(ctx context.Context, postID string) (map[string]any, error) {
	return c.request(ctx, requestSpec{method: http.MethodGet, path: "/posts/" + url.PathEscape(postID)})
}

// GetPostComments lists comments for a post.
//
// Deployment note: the documented GET /posts/{id}/comments endpoint returns
// 405 on current deployments; GET /posts/{id}?include=comments works.
func (c *Client) GetPostComments(ctx context.Context, postID, sort string, limit int) ([]Comment, error) {
	q := url.Values{
		"include": {"comments"},
		"sort":    {sort},
		"limit":   {fmt.Sprint(limit)},
	}
	payload, err := c.request(ctx, requestSpec{method: http.MethodGet, path: "/posts/" + url.PathEscape(postID), query: q})
	if err != nil {
		return nil, err
	}
	return ExtractComments(payload), nil
}

// CreatePost creates a post in the given submolt.
func (c *Client) CreatePost(ctx context.Context, submolt, title, content string) (map[string]any, error) {
	body := map[string]any{"submolt": submolt, "title": title}
	if content != "" {
		body["content"] = content
	}
	return c.request(ctx, requestSpec{method: http.MethodPost, path: "/posts", body: body, useAuth: true})
}

// CreateComment creates a comment on a post; a non-empty parentID makes it a
// reply to that comment.
func (c *Client) CreateComment(ctx context.Context, postID, content, parentID string) (map[string]any, error) {
	body := map[string]any{"content": content}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	path := "/posts/" + url.PathEscape(postID) + "/comments"
	return c.request(ctx, requestSpec{method: http.MethodPost, path: path, body: body, useAuth: true})
}

// CreateIdentityToken generates a temporary identity token (authenticated).
func (c *Client) CreateIdentityToken(ctx context.Context) (map[string]any, error) {
	return c.request(ctx, requestSpec{method: http.MethodPost, path: "/agents/me/identity-token", useAuth: true})
}

// VerifyIdentityToken verifies an identity token (no auth required).
func (c *Client) VerifyIdentityToken(ctx context.Context, token string) (map[string]any, error) {
	return c.request(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/agents/verify-identity",
		body:   map[string]any{"token": token},
	})
}

// TestConnection verifies the API key works.
func (c *Client) TestConnection(ctx context.Context) bool {
	if _, err := c.GetMe(ctx); err != nil {
		c.log.Error().Err(err).Msg("connection test failed")
		return false
	}
	return true
}
