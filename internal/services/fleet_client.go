package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"signage/internal/models"
)

// FleetClient is the device-side HTTP client for the fleet API. It logs in
// with the device account, caches the bearer token, and exposes the two
// calls a screen session needs: playlist resolution and heartbeat delivery.
type FleetClient struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	tokenTTL   time.Duration

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewFleetClient(baseURL, email, password string) *FleetClient {
	return &FleetClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		password:   password,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokenTTL:   30 * time.Minute,
	}
}

func (c *FleetClient) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

func (c *FleetClient) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		c.tokenTTL = ttl
	}
}

func (c *FleetClient) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		t := c.token
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	tok, err := c.login(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = tok
	c.tokenExp = time.Now().Add(c.tokenTTL)
	c.mu.Unlock()

	return tok, nil
}

func (c *FleetClient) login(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return "", errors.New("fleet baseURL is required")
	}
	if strings.TrimSpace(c.email) == "" || strings.TrimSpace(c.password) == "" {
		return "", errors.New("fleet email/password are required")
	}

	payload := map[string]string{
		"email":    c.email,
		"password": c.password,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/login", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fleet login failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out models.LoginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("fleet login: invalid json: %w", err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", errors.New("fleet login response did not include token")
	}
	return out.AccessToken, nil
}

// Playlist fetches the resolved playlist for a screen. It satisfies the
// player's Source interface.
func (c *FleetClient) Playlist(ctx context.Context, screenID string) ([]models.MediaItem, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/screens/"+screenID+"/playlist", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
		return nil, fmt.Errorf("fleet playlist fetch unauthorized: body=%s", strings.TrimSpace(string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fleet playlist fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var playlist models.Playlist
	if err := json.Unmarshal(body, &playlist); err != nil {
		return nil, fmt.Errorf("fleet playlist fetch: invalid json: %w", err)
	}
	return playlist.Items, nil
}

// SendHeartbeat posts one liveness update for a screen. It satisfies the
// heartbeat Sender interface.
func (c *FleetClient) SendHeartbeat(ctx context.Context, screenID string, at time.Time) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	payload := map[string]string{"at": at.UTC().Format(time.RFC3339Nano)}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/screens/"+screenID+"/heartbeat", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
		return fmt.Errorf("fleet heartbeat unauthorized: body=%s", strings.TrimSpace(string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fleet heartbeat failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *FleetClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExp = time.Time{}
	c.mu.Unlock()
}
