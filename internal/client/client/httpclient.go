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

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/netx"
)

const apiPrefix = "/api/v1"

type errorBody struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

type identityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL, e.g.
// "http://127.0.0.1:8080". Every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// readError turns a non-2xx response into an error. The body is consumed.
func readError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = ErrUnavailable
	}

	if eb.Message == "" {
		eb.Message = http.StatusText(resp.StatusCode)
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: eb.Message, Details: eb.Errors}
	if sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, apiErr)
	}
	return apiErr
}

func decode(resp *http.Response, dst any) error {
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, r RegisterRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", "", r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusBadRequest {
		return readError(resp)
	}

	// Identity rejections are a bare array, body validation uses the
	// uniform error shape.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	var ids []identityError
	if json.Unmarshal(raw, &ids) == nil {
		details := make([]string, 0, len(ids))
		for _, e := range ids {
			details = append(details, e.Description)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: "Registration rejected.", Details: details}
	}
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	return &APIError{StatusCode: resp.StatusCode, Message: eb.Message, Details: eb.Errors}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// A failed login is indistinguishable on the wire from bad input.
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, readError(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var s models.Session
	if err := decode(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) ListRecipes(ctx context.Context, token string) ([]*models.Recipe, error) {
	resp, err := c.do(ctx, http.MethodGet, "/recipes", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}
	out := make([]*models.Recipe, 0)
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetRecipe(ctx context.Context, token, id string) (*models.Recipe, error) {
	resp, err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}
	var r models.Recipe
	if err := decode(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) CreateRecipe(ctx context.Context, token string, in models.RecipeInput) (*models.Recipe, error) {
	resp, err := c.do(ctx, http.MethodPost, "/recipes", token, in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, readError(resp)
	}
	var r models.Recipe
	if err := decode(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) UpdateRecipe(ctx context.Context, token, id string, in models.RecipeInput) error {
	return c.expectNoContent(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id), token, in)
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, token, id string) error {
	return c.expectNoContent(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), token, nil)
}

func (c *HTTPClient) expectNoContent(ctx context.Context, method, path, token string, body any) error {
	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return readError(resp)
	}
	return nil
}

func (c *HTTPClient) PresignImage(ctx context.Context, token, contentType string) (*models.ImageUpload, error) {
	body := map[string]string{"contentType": contentType}
	resp, err := c.do(ctx, http.MethodPost, "/recipes/images", token, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}
	var u models.ImageUpload
	if err := decode(resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadImage sends data straight to object storage. The bearer token is
// not attached: the presigned URL carries its own authorization.
func (c *HTTPClient) UploadImage(ctx context.Context, uploadURL, contentType string, data []byte) error {
	if err := netx.UploadToPresignedURL(ctx, c.http, uploadURL, contentType, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("image upload: %w", err)
	}
	return nil
}

// IsValidation reports whether err is a 400 rejection with details.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}
