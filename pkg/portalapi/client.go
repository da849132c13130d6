package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "portal_session"

// Client calls the portal API on behalf of one session.
type Client struct {
	BaseURL      string
	SessionToken string
	HTTPClient   *http.Client
}

func NewClient(baseURL, sessionToken string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		SessionToken: sessionToken,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/livez", nil, &out)
}

func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/me", nil, &out)
}

// RefreshPermissions drops the cached permission set of this session and
// returns the reloaded view.
func (c *Client) RefreshPermissions(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/me/permissions/refresh", nil, &out)
}

func (c *Client) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	var out ListRolesResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/roles", nil, &out)
}

func (c *Client) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleInfo, error) {
	var out RoleInfo
	return &out, c.do(ctx, http.MethodPost, "/v1/roles", req, &out)
}

func (c *Client) DeleteRole(ctx context.Context, roleID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/roles/"+url.PathEscape(roleID), nil, nil)
}

func (c *Client) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (*InvitationInfo, error) {
	var out InvitationInfo
	return &out, c.do(ctx, http.MethodPost, "/v1/invitations", req, &out)
}

func (c *Client) ListInvitations(ctx context.Context) (*ListInvitationsResponse, error) {
	var out ListInvitationsResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/invitations", nil, &out)
}

func (c *Client) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*ProfileInfo, error) {
	var out ProfileInfo
	return &out, c.do(ctx, http.MethodPatch, "/v1/profiles/"+url.PathEscape(id), req, &out)
}

// do sends the request with the session cookie and decodes a 2xx body into
// out. Other statuses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.SessionToken})
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
