package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/afero"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
)

// Option configures a Client during construction in New.
//
// Options are applied before the authorization transport wrapper is installed,
// so transport-related options (like debug logging) will be placed underneath
// the API-key wrapper. Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithBaseURL points the client at another API root, for example a staging
// deployment. The URL must be absolute.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return sdkerrors.Invalidf("baseURL", "invalid base url %q", raw)
		}
		c.baseURL = strings.TrimRight(u.String(), "/")
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. The client is copied,
// so wrapping its transport does not affect the caller's instance. Apply it
// before WithHTTPTimeout or WithDebugLogging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request
// (including connection, TLS handshake, redirects, and reading the response).
// Model downloads can be large, so leave room for them. The value must be
// greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// The debug transport is installed beneath the API-key wrapper; logs are
// emitted before the request is forwarded to the next transport. The
// Authorization header is redacted in the dump.
// Do not enable this option in production environments as it increases
// verbosity and may include presigned URLs in logs.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); already {
				return nil
			}
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithFs sets the filesystem used to read images and write models.
// Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) error {
		if fs == nil {
			return fmt.Errorf("filesystem must not be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithUserAgent overrides the User-Agent sent to the API.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}
