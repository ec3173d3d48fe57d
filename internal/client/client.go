// Package client is the remote backend: it implements the portal store and
// the account operations on top of the HTTP API. The server scopes every
// portal call to the bearer token, so the user id arguments of the store
// methods are not sent.
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

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/service"
)

// Client calls the job portal API at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for the API rooted at baseURL, including any base
// path. A nil httpClient uses a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer token sent with portal requests.
func (c *Client) SetToken(token string) { c.token = token }

type errorBody struct {
	Error string `json:"error"`
}

// do sends body as JSON and decodes a 2xx response into out. Error
// responses are mapped back onto the apperr kinds by status code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func statusError(code int, data []byte) error {
	var eb errorBody
	msg := http.StatusText(code)
	if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	switch code {
	case http.StatusBadRequest:
		return apperr.Validation(msg)
	case http.StatusConflict:
		return apperr.Conflict(msg)
	case http.StatusUnauthorized:
		return apperr.Auth(msg)
	case http.StatusNotFound:
		return apperr.NotFound(msg)
	}
	return fmt.Errorf("server error (%d): %s", code, msg)
}

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, name, email, password string) (uint64, error) {
	var out struct {
		UserID uint64 `json:"user_id"`
	}
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/register", in, &out); err != nil {
		return 0, err
	}
	return out.UserID, nil
}

// Login authenticates and remembers the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	var out struct {
		Token string            `json:"token"`
		User  model.UserSummary `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", in, &out); err != nil {
		return service.LoginResult{}, err
	}
	c.token = out.Token
	return service.LoginResult{Token: out.Token, User: out.User}, nil
}

func (c *Client) Create(ctx context.Context, _ uint64, category, link string) (uint64, error) {
	var out struct {
		PortalID uint64 `json:"portal_id"`
	}
	in := map[string]string{"category": category, "link": link}
	if err := c.do(ctx, http.MethodPost, "/portals", in, &out); err != nil {
		return 0, err
	}
	return out.PortalID, nil
}

func (c *Client) List(ctx context.Context, _ uint64) ([]model.Portal, error) {
	out := make([]model.Portal, 0)
	if err := c.do(ctx, http.MethodGet, "/portals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, _ uint64, id uint64) (model.Portal, error) {
	var out model.Portal
	if err := c.do(ctx, http.MethodGet, portalPath(id), nil, &out); err != nil {
		return model.Portal{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, _ uint64, id uint64, patch model.PortalPatch) error {
	in := struct {
		Category *string `json:"category,omitempty"`
		Link     *string `json:"link,omitempty"`
	}{patch.Category, patch.Link}
	return c.do(ctx, http.MethodPut, portalPath(id), in, nil)
}

func (c *Client) Delete(ctx context.Context, _ uint64, id uint64) error {
	return c.do(ctx, http.MethodDelete, portalPath(id), nil, nil)
}

func (c *Client) Categories(ctx context.Context, _ uint64) ([]string, error) {
	out := make([]string, 0)
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search asks the server to build a query over the caller's portals.
func (c *Client) Search(ctx context.Context, req service.SearchRequest) (service.SearchResult, error) {
	q := url.Values{}
	q.Set("keyword", req.Keyword)
	if req.Category != "" {
		q.Set("category", req.Category)
	}
	if req.DateRange != "" {
		q.Set("date_range", string(req.DateRange))
	}
	q.Set("exclude_hybrid", strconv.FormatBool(req.ExcludeHybrid))
	q.Set("exclude_onsite", strconv.FormatBool(req.ExcludeOnsite))

	var out service.SearchResult
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &out); err != nil {
		return service.SearchResult{}, err
	}
	return out, nil
}

// Healthy reports whether the API answers its health check.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("health check: " + resp.Status)
	}
	return nil
}

func portalPath(id uint64) string {
	return "/portals/" + strconv.FormatUint(id, 10)
}
