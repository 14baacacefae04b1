package gateway_test

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/gateway"
)

type staticCredentials gateway.Credentials

func (s staticCredentials) Credentials() gateway.Credentials {
	return gateway.Credentials(s)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, options ...gateway.ClientOption) (*gateway.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := gateway.New(srv.URL+"/api", options...)
	require.NoError(t, err)
	return c, srv
}

// jarWithCSRF returns an http.Client whose jar already holds the backend's csrftoken cookie
func jarWithCSRF(t *testing.T, origin, value string) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(origin)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: gateway.CSRFCookieName, Value: value, Path: "/"}})
	return &http.Client{Jar: jar}
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := gateway.New("/api")
	require.Error(t, err)
}

func TestAPIErrorFormat(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	err := c.Get(context.Background(), "/projects/", nil)
	require.Error(t, err)
	require.Equal(t, "API request failed with status 500: boom", err.Error())
	require.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	require.False(t, gateway.IsUnauthorized(err))
	require.False(t, gateway.IsNetwork(err))
}

func TestNetworkErrorFormat(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := gateway.New(base + "/api")
	require.NoError(t, err)

	err = c.Get(context.Background(), "/projects/", nil)
	require.Error(t, err)
	require.True(t, gateway.IsNetwork(err))
	require.True(t, strings.HasPrefix(err.Error(), "network error: "))
	require.Equal(t, 0, gateway.StatusCode(err))
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		wantCSRF bool
	}{
		{"get", http.MethodGet, false},
		{"post", http.MethodPost, true},
		{"put", http.MethodPut, true},
		{"patch", http.MethodPatch, true},
		{"delete", http.MethodDelete, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				require.Equal(t, "/api/things/", r.URL.Path)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			c, err := gateway.New(srv.URL+"/api",
				gateway.WithHTTPClient(jarWithCSRF(t, srv.URL, "csrf-1")),
				gateway.WithCredentials(staticCredentials{Token: "tok-1", SessionCode: "code-1"}),
				gateway.WithRequestIDs(func() string { return "req-1" }),
			)
			require.NoError(t, err)
			require.Equal(t, "csrf-1", c.CSRFToken())

			body, err := c.Do(context.Background(), gateway.Request{Method: tt.method, Path: "/things/"})
			require.NoError(t, err)
			require.Equal(t, gateway.BodyEmpty, body.Kind())

			require.Equal(t, "application/json", got.Get("Accept"))
			require.Equal(t, "req-1", got.Get(gateway.HeaderRequestID))
			require.Equal(t, "Bearer tok-1", got.Get(gateway.HeaderAuthorization))
			require.Equal(t, "code-1", got.Get(gateway.HeaderSessionCode))
			if tt.wantCSRF {
				require.Equal(t, "csrf-1", got.Get(gateway.HeaderCSRF))
			} else {
				require.Empty(t, got.Get(gateway.HeaderCSRF))
			}
		})
	}
}

func TestNoCredentialsNoHeaders(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	})

	require.NoError(t, c.Post(context.Background(), "/auth/login/", map[string]string{"username": "a"}, nil))
	require.Empty(t, got.Get(gateway.HeaderAuthorization))
	require.Empty(t, got.Get(gateway.HeaderSessionCode))
	require.Empty(t, got.Get(gateway.HeaderCSRF))
	require.Equal(t, "application/json", got.Get("Content-Type"))
	require.NotEmpty(t, got.Get(gateway.HeaderRequestID))
}

func TestBodyKinds(t *testing.T) {
	tests := []struct {
		name     string
		response string
		kind     gateway.BodyKind
		value    any
	}{
		{"empty", "", gateway.BodyEmpty, map[string]any{}},
		{"whitespace", "  \n", gateway.BodyEmpty, map[string]any{}},
		{"json object", `{"ok": true}`, gateway.BodyJSON, map[string]any{"ok": true}},
		{"json array", `[1, 2]`, gateway.BodyJSON, []any{float64(1), float64(2)}},
		{"text", "Logged out", gateway.BodyText, "Logged out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.response)
			})

			body, err := c.Do(context.Background(), gateway.Request{Method: http.MethodGet, Path: "/x/"})
			require.NoError(t, err)
			require.Equal(t, tt.kind, body.Kind())

			v, err := body.Value()
			require.NoError(t, err)
			require.Equal(t, tt.value, v)
		})
	}
}

func TestPutSendsJSON(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"title": "Robotics"}`, string(raw))
		}
		_, _ = io.WriteString(w, "saved")
	})
	require.Equal(t, srv.URL+"/api", c.BaseURL())

	var reply string
	require.NoError(t, c.Put(context.Background(), "/projects/3/", map[string]string{"title": "Robotics"}, &reply))
	require.Equal(t, "saved", reply)

	body, err := c.Do(context.Background(), gateway.Request{Method: http.MethodGet, Path: "/x/"})
	require.NoError(t, err)
	require.Equal(t, "saved", body.Text())
}

func TestDecodeTextIntoStruct(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	var out struct{ Name string }
	err := c.Get(context.Background(), "/x/", &out)
	require.ErrorIs(t, err, gateway.ErrNotJSON)

	var s string
	require.NoError(t, c.Get(context.Background(), "/x/", &s))
	require.Equal(t, "<html>oops</html>", s)
}

func TestBodyMessage(t *testing.T) {
	require.Equal(t, "bad", gateway.ParseBody([]byte(`{"detail": "bad"}`)).Message())
	require.Equal(t, "hi", gateway.ParseBody([]byte(`{"message": "hi", "error": "x"}`)).Message())
	require.Equal(t, "plain", gateway.ParseBody([]byte(`plain`)).Message())
}

func TestUnauthorizedHook(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/ok/" {
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "Invalid token."}`)
	})

	var calls atomic.Int32
	var lastPath atomic.Value
	c.OnUnauthorized(func(apiErr *gateway.APIError) {
		calls.Add(1)
		lastPath.Store(apiErr.Path)
	})

	require.NoError(t, c.Get(context.Background(), "/ok/", nil))
	require.Equal(t, int32(0), calls.Load())

	err := c.Get(context.Background(), "/clubs/", nil)
	require.True(t, gateway.IsUnauthorized(err))
	require.Contains(t, err.Error(), "401")
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, "/clubs/", lastPath.Load())

	err = c.Delete(context.Background(), "/documents/3/", nil)
	require.True(t, gateway.IsUnauthorized(err))
	require.Equal(t, int32(2), calls.Load())
}

func TestQueryParameters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "react", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `[]`)
	})

	var out []any
	require.NoError(t, c.GetQuery(context.Background(), "/projects/", url.Values{"search": {"react"}}, &out))
	require.Empty(t, out)
}

func TestPostMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		form, err := reader.ReadForm(1 << 20)
		require.NoError(t, err)
		require.Equal(t, []string{"Notes"}, form.Value["title"])
		require.Equal(t, []string{"CSE"}, form.Value["branch"])
		require.Len(t, form.File["file"], 1)
		require.Equal(t, "notes.pdf", form.File["file"][0].Filename)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 9}`)
	})

	var out struct {
		ID int `json:"id"`
	}
	err := c.PostMultipart(context.Background(), "/upload/", &gateway.Multipart{
		Fields:   map[string]string{"title": "Notes", "branch": "CSE"},
		FileName: "notes.pdf",
		File:     strings.NewReader("%PDF-1.4"),
	}, &out)
	require.NoError(t, err)
	require.Equal(t, 9, out.ID)
}

func TestDecodeList(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	items, err := gateway.DecodeList[item](gateway.ParseBody([]byte(`[{"id": "a"}, {"id": "b"}]`)))
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = gateway.DecodeList[item](gateway.ParseBody([]byte(`{"count": 1, "results": [{"id": "c"}]}`)))
	require.NoError(t, err)
	require.Equal(t, []item{{ID: "c"}}, items)

	items, err = gateway.DecodeList[item](gateway.ParseBody(nil))
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = gateway.DecodeList[item](gateway.ParseBody([]byte("Service Unavailable")))
	require.ErrorIs(t, err, gateway.ErrNotJSON)
}
