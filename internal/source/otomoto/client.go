package otomoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"otomoto_sync/internal/domain"
)

// tokenRefreshWindow is how long before expiry a cached token is considered
// stale and refreshed.
const tokenRefreshWindow = 5 * time.Minute

// ErrMissingCredentials is returned before any network I/O when the four
// credential values are not all configured.
var ErrMissingCredentials = errors.New("otomoto: api credentials are not configured")

// APIError carries the HTTP status and raw body of a failed API call for
// diagnostics.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("otomoto %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Email        string
	Password     string
	Timeout      time.Duration
}

// Client talks to the Otomoto open API. It caches the bearer token and
// refreshes it via the refresh credential shortly before expiry, falling back
// to a fresh password grant when the refresh fails.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
	logger     *slog.Logger

	mu        sync.Mutex
	token     string
	refresh   string
	expiresAt time.Time
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		logger:     logger.With("source", "otomoto"),
	}
}

// Authenticate returns a valid bearer token, reusing the cached one while it
// has more than tokenRefreshWindow left.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" || c.cfg.Email == "" || c.cfg.Password == "" {
		return "", ErrMissingCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.expiresAt) > tokenRefreshWindow {
		return c.token, nil
	}

	if c.refresh != "" {
		c.logger.Info("access token expiring, refreshing")
		form := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {c.refresh},
		}
		if err := c.requestToken(ctx, form); err == nil {
			return c.token, nil
		} else {
			c.logger.Warn("token refresh failed, requesting a new token", "error", err)
			c.token, c.refresh, c.expiresAt = "", "", time.Time{}
		}
	}

	c.logger.Info("requesting new access token")
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.cfg.Email},
		"password":   {c.cfg.Password},
	}
	if err := c.requestToken(ctx, form); err != nil {
		return "", err
	}
	return c.token, nil
}

// requestToken posts an oauth grant and updates the cached token state.
// Callers hold c.mu.
func (c *Client) requestToken(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: "oauth/token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload tokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return &APIError{Op: "oauth/token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	expiresIn := payload.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	c.token = payload.AccessToken
	if payload.RefreshToken != "" {
		c.refresh = payload.RefreshToken
	}
	c.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)

	c.logger.Info("obtained access token", "expires_at", c.expiresAt)
	return nil
}

// ListAdverts fetches one page of account adverts. An empty slice is the
// authoritative end-of-data signal, not an error.
func (c *Client) ListAdverts(ctx context.Context, page, limit int) ([]domain.Advert, error) {
	q := url.Values{
		"page":  {fmt.Sprint(page)},
		"limit": {fmt.Sprint(limit)},
	}
	body, err := c.doGet(ctx, "account/adverts?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope advertsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Results != nil {
		return toAdverts(envelope.Results), nil
	}

	var direct []advertPayload
	if err := json.Unmarshal(body, &direct); err != nil {
		return nil, fmt.Errorf("decode adverts page %d: %w", page, err)
	}
	return toAdverts(direct), nil
}

// GetAdvert fetches a single advert by its external id.
func (c *Client) GetAdvert(ctx context.Context, externalID string) (*domain.Advert, error) {
	if externalID == "" {
		return nil, fmt.Errorf("otomoto: advert id is required")
	}
	body, err := c.doGet(ctx, "account/adverts/"+url.PathEscape(externalID))
	if err != nil {
		return nil, err
	}

	var payload advertPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode advert %s: %w", externalID, err)
	}
	adv := payload.toDomain()
	if adv.ID == "" {
		return nil, &APIError{Op: "account/adverts/" + externalID, StatusCode: http.StatusOK, Body: string(body)}
	}
	return &adv, nil
}

// GetCategory fetches the display names and stable code of a remote category.
func (c *Client) GetCategory(ctx context.Context, categoryID int64) (*domain.CategoryInfo, error) {
	if categoryID == 0 {
		return nil, fmt.Errorf("otomoto: category id is required")
	}
	body, err := c.doGet(ctx, fmt.Sprintf("categories/%d", categoryID))
	if err != nil {
		return nil, err
	}

	var payload categoryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode category %d: %w", categoryID, err)
	}
	if payload.ID == 0 {
		return nil, &APIError{Op: fmt.Sprintf("categories/%d", categoryID), StatusCode: http.StatusOK, Body: string(body)}
	}
	return payload.toDomain(), nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.Email) // required by the API docs
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Op: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func toAdverts(payloads []advertPayload) []domain.Advert {
	adverts := make([]domain.Advert, 0, len(payloads))
	for _, p := range payloads {
		adverts = append(adverts, p.toDomain())
	}
	return adverts
}
