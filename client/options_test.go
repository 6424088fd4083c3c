package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestWithHTTPTimeout(t *testing.T) {
	c := &Client{http: &http.Client{}}
	require.NoError(t, WithHTTPTimeout(5*time.Second)(c))
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Error(t, WithHTTPTimeout(0)(c))
}

func TestWithBaseURL(t *testing.T) {
	c := &Client{}
	require.NoError(t, WithBaseURL("https://staging.example.com/api/v1/")(c))
	assert.Equal(t, "https://staging.example.com/api/v1", c.baseURL)

	for _, bad := range []string{"", "not a url", "/relative/path"} {
		err := WithBaseURL(bad)(c)
		assert.True(t, IsValidation(err), "%q: %v", bad, err)
	}

	_, err := New(testKey, WithBaseURL("::"))
	assert.True(t, IsValidation(err), "got %v", err)
	assert.ErrorIs(t, err, ErrMeshcapade)
}

func TestWithHTTPClientIsCopied(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	hc := &http.Client{Transport: rt}
	c, err := New(testKey, WithHTTPClient(hc), WithHTTPTimeout(2*time.Second))
	require.NoError(t, err)

	assert.NotSame(t, hc, c.http)
	assert.Zero(t, hc.Timeout)
	_, wrapped := hc.Transport.(*apiKeyTransport)
	assert.False(t, wrapped, "caller's transport must not be wrapped")
	assert.Error(t, WithHTTPClient(nil)(c))
}

func TestWithFsAndUserAgent(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := &Client{}
	require.NoError(t, WithFs(fs)(c))
	assert.Same(t, fs, c.fs)
	assert.Error(t, WithFs(nil)(c))

	require.NoError(t, WithUserAgent("avatar-pipeline/1.0")(c))
	assert.Equal(t, "avatar-pipeline/1.0", c.userAgent)
}

func TestWithDebugLogging(t *testing.T) {
	var called bool
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	c, err := New(testKey, WithBaseURL("http://example.com"), WithHTTPClient(&http.Client{Transport: rt}), WithDebugLogging(true))
	require.NoError(t, err)

	outer, ok := c.http.Transport.(*apiKeyTransport)
	require.True(t, ok)
	_, ok = outer.base.(*debugTransport)
	require.True(t, ok, "debug transport sits beneath the API-key wrapper")

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://example.com/avatars", strings.NewReader(`{"a":1}`))
	_, err = c.http.Do(req)
	require.NoError(t, err)
	assert.True(t, called, "base transport not invoked")
}

func TestNew_AutoEnableDebugViaEnv(t *testing.T) {
	t.Setenv("MESHCAPADE_DEBUG", "true")
	c, err := New(testKey)
	require.NoError(t, err)
	outer := c.http.Transport.(*apiKeyTransport)
	_, ok := outer.base.(*debugTransport)
	assert.True(t, ok, "expected debugTransport to be installed when MESHCAPADE_DEBUG=true")
}

func TestDebugTransport_ErrorPath(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	c, err := New(testKey, WithHTTPClient(&http.Client{Transport: rt}), WithDebugLogging(true))
	require.NoError(t, err)
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", http.NoBody)
	_, err = c.http.Do(req)
	assert.Error(t, err, "expected error from underlying transport")
}

func TestDumpRequest_RedactsAuthorization(t *testing.T) {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://example.com/avatars", strings.NewReader("body"))
	req.Header.Set("Authorization", "Bearer secret")
	dump, err := dumpRequest(req)
	require.NoError(t, err)
	assert.NotContains(t, string(dump), "secret")
	assert.Contains(t, string(dump), "[REDACTED]")
	assert.Contains(t, string(dump), "body")
}
