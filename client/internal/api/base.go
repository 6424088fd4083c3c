package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
	"github.com/meshcapade/meshcapade-go/client/internal/types"
)

const avatarsEndpoint = "avatars"

// endpoint joins baseURL with escaped path segments.
func endpoint(baseURL string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// doJSON sends one request with an optional JSON body and decodes a 2xx
// response into out when out is non-nil. Non-2xx responses are classified
// into the SDK error taxonomy. It returns the response status code.
func doJSON(ctx context.Context, httpClient *http.Client, method, rawURL string, in, out any, op string) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, sdkerrors.NewValidationError("body", err)
		}
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	// Note: Authorization header will be added by transport layer

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return 0, sdkerrors.NewNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, sdkerrors.NewNetworkError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, sdkerrors.NewHTTPError(resp.StatusCode, data, op, rawURL)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, sdkerrors.NewDecodeError(op, resp.StatusCode, err)
		}
	}
	return resp.StatusCode, nil
}

// createdID extracts the avatar id from a create response.
func createdID(doc *types.Document, op string) (string, error) {
	if doc.Data.ID == "" {
		return "", &sdkerrors.APIError{Message: op + ": invalid API response: missing avatar id"}
	}
	return doc.Data.ID, nil
}

// resolveURL resolves ref against baseURL so relative asset links work.
func resolveURL(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
