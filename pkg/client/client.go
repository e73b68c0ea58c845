// server/pkg/client/client.go

// Package client is a Go client for the CoffeeOS REST API. It injects the
// stored bearer token into every request and drops the session as soon as
// the server answers 401 or 403.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coffee-os-api-server/internal/models"

	"github.com/go-resty/resty/v2"
)

// ErrSessionExpired is returned when the server rejected the stored token.
// The session has already been cleared.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is the {status, message} body the API answers errors with.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Message)
}

type Client struct {
	http  *resty.Client
	store *SessionStore
	token string
}

// New builds a client for the API at baseURL (without the /api/v1 prefix).
// store may be nil for a client that never persists its token.
func New(baseURL string, store *SessionStore) (*Client, error) {
	c := &Client{store: store}
	if store != nil {
		sess, err := store.Load()
		if err != nil {
			return nil, err
		}
		if sess != nil {
			c.token = sess.Token
		}
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/api/v1").
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json").
		SetError(&APIError{})

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.token != "" {
			req.SetAuthToken(c.token)
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		switch resp.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			// A bad login is a 401 too, but there is no session to reset yet.
			if c.token == "" {
				return nil
			}
			if err := c.reset(); err != nil {
				return err
			}
			return ErrSessionExpired
		}
		return nil
	})
	return c, nil
}

// Token returns the bearer token in use, if any.
func (c *Client) Token() string { return c.token }

func (c *Client) reset() error {
	c.token = ""
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, query map[string]string) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	for k, v := range query {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Message != "" {
			apiErr.StatusCode = resp.StatusCode()
			return apiErr
		}
		return &APIError{StatusCode: resp.StatusCode(), Status: "error", Message: resp.Status()}
	}
	return nil
}

type LoginResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
	Token   string             `json:"token"`
}

// Login exchanges credentials for a token and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, nil); err != nil {
		return nil, err
	}
	c.token = out.Token
	if c.store != nil {
		if err := c.store.Save(&Session{Token: out.Token, User: out.User}); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// Logout revokes the token server side and forgets the session either way.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return c.reset()
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	if resetErr := c.reset(); resetErr != nil && err == nil {
		err = resetErr
	}
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ShopQuery mirrors the coffee shop list filters.
type ShopQuery struct {
	Vibe        string
	Q           string
	Near        *models.GeoPoint
	MaxDistance float64
}

func (q ShopQuery) params() map[string]string {
	p := map[string]string{"vibe": q.Vibe, "q": q.Q}
	if q.Near != nil && len(q.Near.Coordinates) == 2 {
		p["near"] = strconv.FormatFloat(q.Near.Coordinates[0], 'f', -1, 64) + "," +
			strconv.FormatFloat(q.Near.Coordinates[1], 'f', -1, 64)
	}
	if q.MaxDistance > 0 {
		p["maxDistance"] = strconv.FormatFloat(q.MaxDistance, 'f', -1, 64)
	}
	return p
}

func (c *Client) ListCoffeeShops(ctx context.Context, q ShopQuery) ([]models.CoffeeShop, error) {
	var out struct {
		CoffeeShops []models.CoffeeShop `json:"coffeeShops"`
	}
	if err := c.do(ctx, http.MethodGet, "/coffee-shops", nil, &out, q.params()); err != nil {
		return nil, err
	}
	return out.CoffeeShops, nil
}

// BeanQuery mirrors the bean list filters.
type BeanQuery struct {
	Process      string
	RoastLevel   string
	CoffeeShopID string
	Q            string
}

func (c *Client) ListBeans(ctx context.Context, q BeanQuery) ([]models.PopulatedBeanOrigin, error) {
	var out struct {
		Beans []models.PopulatedBeanOrigin `json:"beans"`
	}
	params := map[string]string{
		"process":      q.Process,
		"roastLevel":   q.RoastLevel,
		"coffeeShopId": q.CoffeeShopID,
		"q":            q.Q,
	}
	if err := c.do(ctx, http.MethodGet, "/beans", nil, &out, params); err != nil {
		return nil, err
	}
	return out.Beans, nil
}

func (c *Client) ListZones(ctx context.Context) ([]models.Zone, error) {
	var out struct {
		Zones []models.Zone `json:"zones"`
	}
	if err := c.do(ctx, http.MethodGet, "/zones", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Zones, nil
}
