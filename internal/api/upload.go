package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"zipcaster/internal/config"
	"zipcaster/internal/constants"

	"github.com/valyala/fasthttp"
)

const (
	recentBattlesPath = "/battles/api/recent/"
	uploadBattlePath  = "/battles/api/upload/"
)

// ErrRateLimited is returned when the remaining request budget is spent and
// the context ends before the window resets.
var ErrRateLimited = errors.New("upload rate limit exhausted")

// StatusError is a non-2xx answer from the upload target.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error: %d", e.Code)
	}
	return fmt.Sprintf("API error: %d: %s", e.Code, e.Body)
}

type UploadClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

type RecentBattlesResponse struct {
	BattleIDs []string `json:"battle_ids"`
}

func NewUploadClient(cfg *config.Config) *UploadClient {
	return &UploadClient{
		baseURL: strings.TrimRight(cfg.UploadURL, "/"),
		apiKey:  cfg.UploadAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.UploadMaxConnsPerHost,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     constants.UploadRateLimit,
			Remaining: constants.UploadRateLimit,
			Reset:     constants.UploadRateReset,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *UploadClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *UploadClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-Ratelimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// waitForRateLimit blocks until the window resets when no requests remain.
func (c *UploadClient) waitForRateLimit(ctx context.Context) error {
	info := c.GetRateLimitInfo()
	if info.Remaining > 0 {
		return nil
	}

	wait := time.Until(info.UpdatedAt.Add(time.Duration(info.Reset) * time.Second))
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrRateLimited, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RecentBattleIDs lists the battle ids the target already holds.
func (c *UploadClient) RecentBattleIDs(ctx context.Context) ([]string, error) {
	resp, err := doRequest[RecentBattlesResponse](ctx, c, fasthttp.MethodGet, c.baseURL+recentBattlesPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.BattleIDs, nil
}

// UploadBattle posts one battle body. It reports false without error when the
// target already has the battle.
func (c *UploadClient) UploadBattle(ctx context.Context, idempotencyKey string, body []byte) (bool, error) {
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	_, err := doRequest[json.RawMessage](ctx, c, fasthttp.MethodPost, c.baseURL+uploadBattlePath, body, headers)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == fasthttp.StatusConflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func doRequest[T any](ctx context.Context, client *UploadClient, method, url string, body []byte, headers map[string]string) (*T, error) {
	if err := client.waitForRateLimit(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+client.apiKey)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{Code: code, Body: string(resp.Body())}
	}

	var result T
	if len(resp.Body()) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
