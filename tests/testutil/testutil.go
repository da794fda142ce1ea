// Package testutil holds helpers shared by the storefront's black-box tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Header names the storefront reads from clients
const (
	HeaderClientID      = "X-Client-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestClientID returns a client ID accepted by the client-ID middleware
func TestClientID(seed string) string {
	return NewTestUUID("client-" + seed).String()
}

// Client drives a gin engine in-process, remembering the client ID and
// bearer token between requests
type Client struct {
	t        *testing.T
	engine   http.Handler
	clientID string
	token    string
}

// NewClient creates a client for engine identified by clientID
func NewClient(t *testing.T, engine http.Handler, clientID string) *Client {
	t.Helper()
	return &Client{t: t, engine: engine, clientID: clientID}
}

// WithToken returns a copy of the client that sends token as a bearer token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Do sends a request with a JSON body when body is non-nil
func (c *Client) Do(method, path string, body any, headers ...map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, ToJSONReader(c.t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return c.Send(req, headers...)
}

// Send applies the client's identity headers to req and serves it
func (c *Client) Send(req *http.Request, headers ...map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()

	if c.clientID != "" {
		req.Header.Set(HeaderClientID, c.clientID)
	}
	if c.token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+c.token)
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}
