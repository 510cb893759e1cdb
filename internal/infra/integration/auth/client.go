// Package auth talks to the hosted identity provider. The board only
// needs one thing from it: refreshing a stale session after a
// conflict-class write failure.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	mu           sync.Mutex
	refreshToken string
	accessToken  string
}

func NewClient(baseURL, apiKey, refreshToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		refreshToken: refreshToken,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh swaps the refresh token for a fresh session. Called at most
// once per failed move; the caller decides what to tell the user.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.refreshToken
	c.mu.Unlock()

	payload, err := json.Marshal(refreshRequest{RefreshToken: token})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	url := fmt.Sprintf("%s/auth/v1/token?grant_type=refresh_token", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("session refresh rejected (status %d): %s", resp.StatusCode, string(body))
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = out.AccessToken
	if out.RefreshToken != "" {
		c.refreshToken = out.RefreshToken
	}
	c.mu.Unlock()

	log.Printf("[auth] session refreshed")
	return nil
}

func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}
