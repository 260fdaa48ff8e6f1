package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stocktr-api/internal/models"
)

// DefaultTimeout bounds every request made by Client
const DefaultTimeout = 10 * time.Second

// ErrNoToken is returned by authenticated calls when the store holds no token
var ErrNoToken = errors.New("not signed in")

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// AuthResult is the answer to signup and login
type AuthResult struct {
	Token string             `json:"token"`
	AUTH  bool               `json:"AUTH"`
	User  models.UserSummary `json:"user"`
}

// AuthStatus is the answer to isAUTH
type AuthStatus struct {
	AUTH     bool                `json:"AUTH"`
	UserData *models.UserSummary `json:"UserData,omitempty"`
}

// IconInfo describes an uploaded icon
type IconInfo struct {
	Message  string `json:"message"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// Client is a typed HTTP client for the stocktr API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It copies the underlying
// HTTP client so one passed via WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New creates a Client. A nil store keeps the token in memory.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the store the client reads its bearer token from
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Signup registers an account and stores the issued token
func (c *Client) Signup(ctx context.Context, username, name, email, password string) (*AuthResult, error) {
	body := map[string]string{
		"username": username,
		"name":     name,
		"email":    email,
		"password": password,
	}
	return c.authenticate(ctx, "/api/signup", body)
}

// Login signs in and stores the issued token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*AuthResult, error) {
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, path, false, body, &result); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(result.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &result, nil
}

// IsAuth asks the server who the stored token belongs to
func (c *Client) IsAuth(ctx context.Context) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.doJSON(ctx, http.MethodPost, "/api/isAUTH", false, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// UpdatePassword changes the signed-in user's password
func (c *Client) UpdatePassword(ctx context.Context, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/updatePassword", true, map[string]string{"newPassword": newPassword}, nil)
}

// Watchlist fetches the signed-in user's watchlist
func (c *Client) Watchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/api/Watchlist", true, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateWatchlist upserts items and returns the resulting watchlist
func (c *Client) UpdateWatchlist(ctx context.Context, items []models.WatchlistItem) ([]models.WatchlistEntry, error) {
	if items == nil {
		items = []models.WatchlistItem{}
	}
	var result struct {
		Data []models.WatchlistEntry `json:"data"`
	}
	body := map[string]interface{}{"watchlist": items}
	if err := c.doJSON(ctx, http.MethodPost, "/api/WatchlistUpdate", true, body, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// RemoveFromWatchlist deletes one symbol
func (c *Client) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/Watchlist/"+url.PathEscape(symbol), true, nil, nil)
}

// Stocks fetches the quote list
func (c *Client) Stocks(ctx context.Context) ([]models.Quote, error) {
	var quotes []models.Quote
	if err := c.doJSON(ctx, http.MethodGet, "/api/Stock", false, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// UpdateProfileIcon uploads an image as the profile icon
func (c *Client) UpdateProfileIcon(ctx context.Context, filename string, r io.Reader) (*IconInfo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("icon", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/updateProfileIcon", true, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var info IconInfo
	if err := c.do(req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ProfileIcon fetches the profile icon as a data URL
func (c *Client) ProfileIcon(ctx context.Context) (string, error) {
	var result struct {
		Icon string `json:"icon"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/getProfileIcon", true, nil, &result); err != nil {
		return "", err
	}
	return result.Icon, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, requireToken bool, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, requireToken, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, requireToken bool, body io.Reader) (*http.Request, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if requireToken && token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
			Field   string `json:"field"`
		}
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Message
			apiErr.Field = body.Field
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
