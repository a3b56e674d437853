package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"golang.org/x/time/rate"
)

const maxBodySize = 8 << 20

// HTTPClient talks to one Mastodon instance on behalf of one account.
type HTTPClient struct {
	baseURL   *url.URL
	token     string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithRateLimit caps outgoing requests; r <= 0 disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(h *HTTPClient) {
		if r <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) { h.userAgent = ua }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient builds a client for instance, which may be a bare domain
// ("mastodon.social") or a base URL.
func NewHTTPClient(instance, token string, opts ...Option) (*HTTPClient, error) {
	base, err := InstanceURL(instance)
	if err != nil {
		return nil, err
	}
	c := &HTTPClient{
		baseURL:   base,
		token:     token,
		http:      &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(5), 10),
		userAgent: "tootcache",
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// InstanceURL normalizes a domain or URL to the instance base URL.
func InstanceURL(instance string) (*url.URL, error) {
	instance = strings.TrimSpace(instance)
	if instance == "" {
		return nil, errors.New("empty instance")
	}
	if !strings.Contains(instance, "://") {
		instance = "https://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return nil, fmt.Errorf("invalid instance %q: %w", instance, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid instance %q: no host", instance)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var inst models.Instance
	_, err := c.do(ctx, http.MethodGet, "/api/v1/instance", nil, nil, &inst)
	return err
}

func (c *HTTPClient) VerifyCredentials(ctx context.Context) (*models.Account, error) {
	var acc models.Account
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/accounts/verify_credentials", nil, nil, &acc); err != nil {
		return nil, err
	}
	if acc.ID == "" {
		return nil, fmt.Errorf("%w: account without id", ErrMalformedResponse)
	}
	return &acc, nil
}

func (c *HTTPClient) HomeTimeline(ctx context.Context, q models.PageQuery) (*models.Page[models.Status], error) {
	params := url.Values{}
	if q.MaxID != "" {
		params.Set("max_id", q.MaxID)
	}
	if q.SinceID != "" {
		params.Set("since_id", q.SinceID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return getPage[models.Status](ctx, c, "/api/v1/timelines/home", params)
}

func (c *HTTPClient) DomainBlocks(ctx context.Context, maxID string) (*models.Page[string], error) {
	return getPage[string](ctx, c, "/api/v1/domain_blocks", cursorParams(maxID))
}

func (c *HTTPClient) FollowedTags(ctx context.Context, maxID string) (*models.Page[models.Tag], error) {
	return getPage[models.Tag](ctx, c, "/api/v1/followed_tags", cursorParams(maxID))
}

func (c *HTTPClient) NotificationRequests(ctx context.Context, maxID string) (*models.Page[models.NotificationRequest], error) {
	return getPage[models.NotificationRequest](ctx, c, "/api/v1/notifications/requests", cursorParams(maxID))
}

func (c *HTTPClient) Favourite(ctx context.Context, statusID string, value bool) (*models.Status, error) {
	return c.statusAction(ctx, statusID, toggle(value, "favourite", "unfavourite"))
}

func (c *HTTPClient) Reblog(ctx context.Context, statusID string, value bool) (*models.Status, error) {
	return c.statusAction(ctx, statusID, toggle(value, "reblog", "unreblog"))
}

func (c *HTTPClient) Bookmark(ctx context.Context, statusID string, value bool) (*models.Status, error) {
	return c.statusAction(ctx, statusID, toggle(value, "bookmark", "unbookmark"))
}

func (c *HTTPClient) Vote(ctx context.Context, pollID string, choices []int) (*models.Poll, error) {
	var poll models.Poll
	body := map[string][]int{"choices": choices}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/polls/"+url.PathEscape(pollID)+"/votes", nil, body, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (c *HTTPClient) DeleteStatus(ctx context.Context, statusID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/statuses/"+url.PathEscape(statusID), nil, nil, nil)
	return err
}

func (c *HTTPClient) Unfollow(ctx context.Context, accountID string) error {
	return c.accountAction(ctx, accountID, "unfollow")
}

func (c *HTTPClient) Block(ctx context.Context, accountID string) error {
	return c.accountAction(ctx, accountID, "block")
}

func (c *HTTPClient) Mute(ctx context.Context, accountID string) error {
	return c.accountAction(ctx, accountID, "mute")
}

func (c *HTTPClient) statusAction(ctx context.Context, statusID, action string) (*models.Status, error) {
	var s models.Status
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/statuses/"+url.PathEscape(statusID)+"/"+action, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) accountAction(ctx context.Context, accountID, action string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(accountID)+"/"+action, nil, nil, nil)
	return err
}

func getPage[T any](ctx context.Context, c *HTTPClient, path string, params url.Values) (*models.Page[T], error) {
	items := []T{}
	header, err := c.do(ctx, http.MethodGet, path, params, nil, &items)
	if err != nil {
		return nil, err
	}
	next, prev := cursors(header.Get("Link"))
	return &models.Page[T]{Items: items, NextMaxID: next, PrevMinID: prev}, nil
}

func cursorParams(maxID string) url.Values {
	params := url.Values{}
	if maxID != "" {
		params.Set("max_id", maxID)
	}
	return params
}

func toggle(value bool, on, off string) string {
	if value {
		return on
	}
	return off
}

// do performs one request and decodes a JSON body into out when out is
// non-nil. Failures are mapped onto the package sentinels.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any, out any) (http.Header, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.mapTransportError(ctx, fmt.Errorf("failed to wait for rate limiter: %w", err))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := mapStatus(resp); err != nil {
		return nil, err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return resp.Header, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, path, err)
	}
	return resp.Header, nil
}

// mapTransportError keeps caller cancellation distinguishable from an
// unreachable server.
func (c *HTTPClient) mapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func mapStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, payload.Error)
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		return fmt.Errorf("%w: http %d", ErrUnavailable, code)
	default:
		return &HTTPError{StatusCode: code, Message: payload.Error}
	}
}
