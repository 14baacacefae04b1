// Package gateway is the single outbound path to the portal REST backend.
//
// It attaches session credentials and the anti-forgery token, turns non-2xx responses
// into *APIError, transport failures into *NetworkError, and notifies listeners of
// every 401. It never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderSessionCode   = "X-Session-Code"
	HeaderCSRF          = "X-CSRFToken"
	HeaderRequestID     = "X-Request-ID"

	CSRFCookieName = "csrftoken"
)

// Credentials are the session values attached to each request
type Credentials struct {
	Token       string
	SessionCode string
}

// CredentialSource supplies the current credentials; the session manager implements it
type CredentialSource interface {
	Credentials() Credentials
}

// UnauthorizedHook is called for every 401 response
type UnauthorizedHook func(apiErr *APIError)

// Client issues REST calls against the backend base URL (origin + /api)
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	requestID  func() string

	lock        sync.RWMutex
	credentials CredentialSource
	hooks       []UnauthorizedHook
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the transport client. A cookie jar is added when it has none.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithCredentials(source CredentialSource) ClientOption {
	return func(c *Client) {
		c.credentials = source
	}
}

// WithRequestIDs overrides the request id generator (primarily for testing)
func WithRequestIDs(next func() string) ClientOption {
	return func(c *Client) {
		c.requestID = next
	}
}

// New creates a client for baseURL, e.g. "https://portal.example.edu/api"
func New(baseURL string, options ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[gateway.New] invalid base URL")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("[gateway.New] base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
		requestID:  func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "[gateway.New] cookiejar")
		}
		// Copy so a shared client such as http.DefaultClient is not mutated
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetCredentials installs the credential source after construction; the session
// manager and the gateway reference each other.
func (c *Client) SetCredentials(source CredentialSource) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.credentials = source
}

// OnUnauthorized registers a hook run after any 401 response
func (c *Client) OnUnauthorized(hook UnauthorizedHook) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.hooks = append(c.hooks, hook)
}

// CSRFToken returns the anti-forgery cookie value for the backend, if one was set
func (c *Client) CSRFToken() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// Request describes one call. Path is relative to the base URL and starts with "/".
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Multipart *Multipart
}

// Multipart is a form upload with a single file part
type Multipart struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

// Do sends the request and returns the parsed body of a 2xx response
func (c *Client) Do(ctx context.Context, r Request) (Body, error) {
	body, contentType, err := encodeBody(r)
	if err != nil {
		return Body{}, err
	}

	target := c.resolve(r.Path, r.Query)
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return Body{}, errors.Wrap(err, "[Client.Do] NewRequest")
	}

	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.attachCredentials(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", r.Method).Str("path", r.Path).Str("request_id", requestID).Msg("request failed")
		return Body{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Body{}, &NetworkError{Err: err}
	}

	c.logger.Debug().
		Str("method", r.Method).
		Str("path", r.Path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Method:     r.Method,
			Path:       r.Path,
		}
		if apiErr.Unauthorized() {
			c.notifyUnauthorized(apiErr)
		}
		return Body{}, apiErr
	}
	return ParseBody(raw), nil
}

// Get decodes the response into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

// GetQuery is Get with query parameters
func (c *Client) GetQuery(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, JSON: in}, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, JSON: in}, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, JSON: in}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Multipart: form}, out)
}

func (c *Client) call(ctx context.Context, r Request, out any) error {
	body, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return body.Decode(out)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) attachCredentials(req *http.Request) {
	c.lock.RLock()
	source := c.credentials
	c.lock.RUnlock()

	if source != nil {
		creds := source.Credentials()
		if creds.Token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+creds.Token)
		}
		if creds.SessionCode != "" {
			req.Header.Set(HeaderSessionCode, creds.SessionCode)
		}
	}

	if isMutating(req.Method) {
		if csrf := c.CSRFToken(); csrf != "" {
			req.Header.Set(HeaderCSRF, csrf)
		}
	}
}

func (c *Client) notifyUnauthorized(apiErr *APIError) {
	c.lock.RLock()
	hooks := append([]UnauthorizedHook(nil), c.hooks...)
	c.lock.RUnlock()

	c.logger.Info().Str("method", apiErr.Method).Str("path", apiErr.Path).Msg("backend rejected session")
	for _, hook := range hooks {
		hook(apiErr)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func encodeBody(r Request) (io.Reader, string, error) {
	switch {
	case r.Multipart != nil:
		return encodeMultipart(r.Multipart)
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", errors.Wrap(err, "[gateway.encodeBody] Marshal")
		}
		return bytes.NewReader(data), "application/json", nil
	}
	return nil, "", nil
}

func encodeMultipart(form *Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	names := make([]string, 0, len(form.Fields))
	for name := range form.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writer.WriteField(name, form.Fields[name]); err != nil {
			return nil, "", errors.Wrap(err, "[gateway.encodeMultipart] WriteField")
		}
	}

	if form.File != nil {
		field := form.FileField
		if field == "" {
			field = "file"
		}
		part, err := writer.CreateFormFile(field, form.FileName)
		if err != nil {
			return nil, "", errors.Wrap(err, "[gateway.encodeMultipart] CreateFormFile")
		}
		if _, err := io.Copy(part, form.File); err != nil {
			return nil, "", errors.Wrap(err, "[gateway.encodeMultipart] copy file")
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "[gateway.encodeMultipart] Close")
	}
	return &buf, writer.FormDataContentType(), nil
}
