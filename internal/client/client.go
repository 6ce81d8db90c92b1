// Package client talks to the reservation desk REST API on behalf of the
// staff tools.
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
	"strings"
	"time"

	"resortdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 10 * time.Second
	cachePrefix    = "desk:client:"
)

// APIError is a non-2xx answer from the server. Fields carries the
// per-field messages of a 422 response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a simple HTTP client for the desk API.
type Client struct {
	baseURL    string
	apiKey     string
	apiExtra   string
	token      string
	httpClient *http.Client
	retry      RetryPolicy

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a client for baseURL. A zero timeout means 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryPolicy,
	}
}

// UseAPIKey authenticates requests with the API key pair.
func (c *Client) UseAPIKey(key, extra string) {
	c.apiKey = key
	c.apiExtra = extra
}

// UseToken authenticates requests with a bearer token.
func (c *Client) UseToken(token string) {
	c.token = token
}

func (c *Client) UseRetry(policy RetryPolicy) {
	c.retry = policy
}

// UseRedisCache configures optional Redis caching for the dashboard counts.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// ListReservations fetches reservations, filtered server side when query is
// not empty.
func (c *Client) ListReservations(ctx context.Context, query string) ([]*models.Reservation, error) {
	path := "/event"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var list []*models.Reservation
	if err := c.doGet(ctx, path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := c.doGet(ctx, "/event/"+url.PathEscape(id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateReservation(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	var res models.Reservation
	if err := c.doJSON(ctx, http.MethodPost, "/event/add", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CheckAvailability(ctx context.Context, in models.ReservationInput) (models.AvailabilityResult, error) {
	var result models.AvailabilityResult
	if err := c.doJSON(ctx, http.MethodPost, "/event/checkAvailability", in, &result); err != nil {
		return models.AvailabilityResult{}, err
	}
	return result, nil
}

func (c *Client) UpdateReservation(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error) {
	var res models.Reservation
	if err := c.doJSON(ctx, http.MethodPut, "/event/update/"+url.PathEscape(id), in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteReservation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/event/delete/"+url.PathEscape(id), nil, nil)
}

// DownloadReport streams the server-rendered export into w.
func (c *Client) DownloadReport(ctx context.Context, query string, w io.Writer) error {
	path := "/event/report"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) EmployeeCount(ctx context.Context) (int, error) {
	var wrap struct {
		EmployeeCount int `json:"employeeCount"`
	}
	if err := c.cachedGet(ctx, "employee_count", "/employee/count", &wrap); err != nil {
		return 0, err
	}
	return wrap.EmployeeCount, nil
}

// AttendanceCount returns attendance for date (YYYY-MM-DD), today when empty.
func (c *Client) AttendanceCount(ctx context.Context, date string) (int, error) {
	path := "/attendance/count"
	key := "attendance_count:today"
	if date = strings.TrimSpace(date); date != "" {
		path += "?date=" + url.QueryEscape(date)
		key = "attendance_count:" + date
	}
	var wrap struct {
		AttendanceCount int `json:"attendanceCount"`
	}
	if err := c.cachedGet(ctx, key, path, &wrap); err != nil {
		return 0, err
	}
	return wrap.AttendanceCount, nil
}

func (c *Client) ReservationCount(ctx context.Context) (int, error) {
	var wrap struct {
		ReservationCount int `json:"reservationCount"`
	}
	if err := c.cachedGet(ctx, "reservation_count", "/event/count", &wrap); err != nil {
		return 0, err
	}
	return wrap.ReservationCount, nil
}

func (c *Client) cachedGet(ctx context.Context, key, path string, out any) error {
	if c.readCache(ctx, key, out) {
		return nil
	}
	if err := c.doGet(ctx, path, out); err != nil {
		return err
	}
	c.writeCache(ctx, key, out)
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cachePrefix+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cachePrefix+key, data, c.cacheTTL).Err()
}

// doGet retries transport failures and 5xx answers according to the retry
// policy. Writes are never retried.
func (c *Client) doGet(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.retry.wait(ctx, attempt); err != nil {
				return lastErr
			}
		}
		lastErr = c.doJSON(ctx, http.MethodGet, path, nil, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Fields = body.Errors
	}
	return apiErr
}

func (c *Client) addHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiExtra != "" {
		req.Header.Set("x-api-extra", c.apiExtra)
	}
}
