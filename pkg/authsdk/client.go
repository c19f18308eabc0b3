package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// API route prefix.
const APIPrefix = "/api/v1"

// Client talks to one authmodes server and keeps its cookies.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a client with an empty cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// Register creates an account and signs in under creds.Mode.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthData, error) {
	return c.authenticate(ctx, "/register", creds)
}

// Login signs in under creds.Mode.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthData, error) {
	return c.authenticate(ctx, "/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*AuthData, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, APIPrefix+path, creds, nil)
	if err != nil {
		return nil, err
	}

	var data AuthData
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	if data.AccessToken != "" {
		c.setAccessToken(data.AccessToken)
	}
	return &data, nil
}

// Logout ends the mode's login and drops its cookie.
func (c *Client) Logout(ctx context.Context, mode string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, APIPrefix+"/logout", LogoutRequest{Mode: mode}, nil)
	if err != nil {
		return err
	}
	if err := decodeEnvelope(resp, nil); err != nil {
		return err
	}
	if mode == ModeHybrid {
		c.setAccessToken("")
	}
	return nil
}

// Refresh redeems the hybrid refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) (*AccessData, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, APIPrefix+"/refresh", nil, nil)
	if err != nil {
		return nil, err
	}

	var data AccessData
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	c.setAccessToken(data.AccessToken)
	return &data, nil
}

// Me returns the signed-in user for mode.
func (c *Client) Me(ctx context.Context, mode string) (*UserData, error) {
	path, err := modePath(mode, "/user", "/hybrid-user", "/session-user")
	if err != nil {
		return nil, err
	}
	resp, err := c.doJSON(ctx, http.MethodGet, APIPrefix+path, nil, c.authHeaders(mode))
	if err != nil {
		return nil, err
	}

	var data UserData
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Resources lists the demo resources visible under mode.
func (c *Client) Resources(ctx context.Context, mode string) ([]Resource, error) {
	path, err := modePath(mode, "/resources", "/hybrid-resources", "/session-resources")
	if err != nil {
		return nil, err
	}
	resp, err := c.doJSON(ctx, http.MethodGet, APIPrefix+path, nil, c.authHeaders(mode))
	if err != nil {
		return nil, err
	}

	var data []Resource
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// AccessToken is the latest hybrid access token, "" when signed out.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// SetAccessToken overrides the hybrid access token sent by Me and Resources.
func (c *Client) SetAccessToken(token string) { c.setAccessToken(token) }

// Cookie returns the value of a cookie the jar holds for the server.
func (c *Client) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) authHeaders(mode string) map[string]string {
	if mode != ModeHybrid {
		return nil
	}
	token := c.AccessToken()
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func modePath(mode, stateless, hybrid, session string) (string, error) {
	switch mode {
	case ModeStateless:
		return stateless, nil
	case ModeHybrid:
		return hybrid, nil
	case ModeSession:
		return session, nil
	default:
		return "", fmt.Errorf("authsdk: unknown mode %q", mode)
	}
}
