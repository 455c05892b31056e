package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Helper struct {
	handler http.Handler
}

func NewHelper(handler http.Handler) *Helper {
	return &Helper{handler: handler}
}

type Request struct {
	Path     string
	Method   string
	Body     any
	Headers  map[string]string
	Cookies  []*http.Cookie
	RemoteIP string
	Context  context.Context
}

type Response struct {
	*httptest.ResponseRecorder
	t *testing.T
}

func (h *Helper) Do(t *testing.T, req Request) *Response {
	t.Helper()

	var body io.Reader
	if req.Body != nil {
		jsonbytes, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(jsonbytes)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, body)
	if req.Context != nil {
		httpReq = httpReq.WithContext(req.Context)
	}
	if req.RemoteIP != "" {
		httpReq.RemoteAddr = req.RemoteIP + ":41234"
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httpReq)

	return &Response{ResponseRecorder: w, t: t}
}

func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()

	var resp map[string]any
	_ = json.Unmarshal(r.Body.Bytes(), &resp)
	message, ok := resp["message"].(string)
	if !ok {
		message = "no message in response"
	}

	assert.Equal(r.t, expected, r.Result().StatusCode, "unexpected status code, message: %s", message)
	return r
}

func (r *Response) AssertSuccess() *Response {
	r.t.Helper()
	r.AssertStatus(http.StatusOK)

	var resp map[string]any
	r.ParseJSON(&resp)
	assert.Equal(r.t, true, resp["success"], "expected success=true")

	return r
}

// AssertError checks the status and the machine readable error code.
func (r *Response) AssertError(expectedStatus int, expectedCode string) *Response {
	r.t.Helper()
	r.AssertStatus(expectedStatus)

	var resp map[string]any
	r.ParseJSON(&resp)
	assert.Equal(r.t, false, resp["success"], "expected success=false")
	assert.Equal(r.t, expectedCode, resp["code"], "unexpected error code")
	return r
}

func (r *Response) AssertMessage(expected string) *Response {
	r.t.Helper()

	var resp map[string]any
	r.ParseJSON(&resp)
	message, ok := resp["message"].(string)
	require.True(r.t, ok, "expected message to be a string")
	assert.Equal(r.t, expected, message, "unexpected message in response")

	return r
}

func (r *Response) ParseJSON(v any) *Response {
	r.t.Helper()

	err := json.Unmarshal(r.Body.Bytes(), v)
	require.NoError(r.t, err, "failed to parse JSON response: %s", r.Body.String())

	return r
}

func (r *Response) GetCookie(name string) *http.Cookie {
	r.t.Helper()

	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Fail(r.t, fmt.Sprintf("cookie %s not found", name))
	return nil
}

type RequestBuilder struct {
	req Request
}

func NewRequest(method, path string) *RequestBuilder {
	return &RequestBuilder{
		req: Request{
			Path:    path,
			Method:  method,
			Headers: make(map[string]string),
		},
	}
}

func (b *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	b.req.Context = ctx
	return b
}

func (b *RequestBuilder) WithJSON(body any) *RequestBuilder {
	b.req.Body = body
	return b
}

func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.req.Headers[key] = value
	return b
}

func (b *RequestBuilder) WithCookie(c *http.Cookie) *RequestBuilder {
	if c != nil {
		b.req.Cookies = append(b.req.Cookies, c)
	}
	return b
}

func (b *RequestBuilder) FromIP(ip string) *RequestBuilder {
	b.req.RemoteIP = ip
	return b
}

func (b *RequestBuilder) Build() Request {
	return b.req
}
