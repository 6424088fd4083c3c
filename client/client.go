package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/meshcapade/meshcapade-go/client/internal/api"
	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
)

// DefaultBaseURL is the production Meshcapade API root.
const DefaultBaseURL = "https://api.meshcapade.com/api/v1"

const defaultUserAgent = "meshcapade-go"

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to the Meshcapade avatar API. It holds the credentials and
// transport for every call and is not modified after New returns, so one
// Client may be shared between goroutines.
type Client struct {
	baseURL   string
	apiKey    string // sent only to the API host
	userAgent string
	http      *http.Client
	rest      *resty.Client // shares http's transport; used for multipart and presigned uploads
	fs        afero.Fs

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client authenticated with apiKey. The base URL defaults
// to DefaultBaseURL and can be changed with WithBaseURL.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &sdkerrors.AuthenticationError{Message: "API key is required"}
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
		fs:        afero.NewOsFs(),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.wrapTransportWithAPIKey(); err != nil {
		return nil, err
	}
	c.rest = resty.NewWithClient(c.http)
	return c, nil
}

// wrapTransportWithAPIKey installs the outermost transport, which adds the
// credentials and tracing headers to requests bound for the API host.
func (c *Client) wrapTransportWithAPIKey() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return sdkerrors.NewValidationError("baseURL", err)
	}
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &apiKeyTransport{
		base:      baseTransport,
		apiKey:    c.apiKey,
		apiHost:   u.Host,
		userAgent: c.userAgent,
	}
	return nil
}

// apiKeyTransport adds Authorization, X-Request-ID and User-Agent headers to
// requests for apiHost. Presigned storage URLs live on other hosts and must
// not see the key.
type apiKeyTransport struct {
	base      http.RoundTripper
	apiKey    string
	apiHost   string
	userAgent string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if strings.EqualFold(req.URL.Host, t.apiHost) {
		// Clone the request to avoid modifying the original
		out = req.Clone(req.Context())
		out.Header.Set("Authorization", "Bearer "+t.apiKey)
		if out.Header.Get("X-Request-ID") == "" {
			out.Header.Set("X-Request-ID", uuid.NewString())
		}
		if t.userAgent != "" {
			out.Header.Set("User-Agent", t.userAgent)
		}
	}
	resp, err := t.base.RoundTrip(out)
	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	requestsTotal.WithLabelValues(req.Method, code).Inc()
	return resp, err
}

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// --------------------------------------------------------------------
// Avatar creation - delegated to internal/api
// --------------------------------------------------------------------

// CreateFromImages uploads one or more photos with optional metadata and
// returns the id of the new avatar. Processing continues on the server; use
// Download or GetAvatar to follow it.
func (c *Client) CreateFromImages(ctx context.Context, req CreateFromImagesRequest) (string, error) {
	return api.CreateFromImages(ctx, c.rest, c.fs, c.baseURL, req)
}

// CreateFromMeasurements creates an avatar from body measurements.
func (c *Client) CreateFromMeasurements(ctx context.Context, req CreateFromMeasurementsRequest) (string, error) {
	return api.CreateFromMeasurements(ctx, c.http, c.baseURL, req)
}

// CreatePredefined creates an avatar from a built-in measurement set.
func (c *Client) CreatePredefined(ctx context.Context) (string, error) {
	return api.CreatePredefined(ctx, c.http, c.baseURL)
}

// CreateEmptyAvatar registers an avatar without images. It is the first step
// of the staged image workflow: CreateEmptyAvatar, UploadImage per photo,
// then FitToImages.
func (c *Client) CreateEmptyAvatar(ctx context.Context, spec AvatarSpec) (string, error) {
	return api.CreateEmptyAvatar(ctx, c.http, c.baseURL, spec)
}

// UploadImage attaches a single photo to an existing avatar.
func (c *Client) UploadImage(ctx context.Context, avatarID, imagePath string) (*ImageUpload, error) {
	return api.UploadImage(ctx, c.http, c.rest, c.fs, c.baseURL, avatarID, imagePath)
}

// FitToImages starts processing of the photos uploaded with UploadImage.
func (c *Client) FitToImages(ctx context.Context, avatarID string, spec AvatarSpec) error {
	return api.FitToImages(ctx, c.http, c.baseURL, avatarID, spec)
}

// --------------------------------------------------------------------
// Avatar queries - delegated to internal/api
// --------------------------------------------------------------------

// GetAvatar retrieves an avatar by id.
func (c *Client) GetAvatar(ctx context.Context, avatarID string) (*Avatar, error) {
	return api.GetAvatar(ctx, c.http, c.baseURL, avatarID)
}

// ListAvatars returns one page of avatars. Both page and pageSize start at 1.
func (c *Client) ListAvatars(ctx context.Context, page, pageSize int) (*ListAvatarsResponse, error) {
	return api.ListAvatars(ctx, c.http, c.baseURL, page, pageSize)
}

// DeleteAvatar deletes an avatar. Backend returns 200 or 204 on success.
func (c *Client) DeleteAvatar(ctx context.Context, avatarID string) (*DeleteAck, error) {
	return api.DeleteAvatar(ctx, c.http, c.baseURL, avatarID)
}

// Download waits for the avatar to finish processing and saves its model to
// dest. Zero-valued opts poll every 5 seconds for up to 60 attempts.
func (c *Client) Download(ctx context.Context, avatarID, dest string, opts DownloadOptions) (string, error) {
	return api.Download(ctx, c.http, c.fs, c.baseURL, avatarID, dest, opts)
}
