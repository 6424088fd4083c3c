package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"
)

// debugTransport provides detailed HTTP request/response logging for debugging client issues.
//
// Purpose:
//   - Troubleshoot API communication problems (timeouts, malformed requests, unexpected responses)
//   - Inspect multipart uploads and the presigned storage PUTs
//   - Follow the status polls issued by Download
//
// When to use:
//   - Set MESHCAPADE_DEBUG=true or DEBUG=true environment variable
//   - During development when building new API integrations
//   - When investigating production issues (temporarily, with log level controls)
//
// Security considerations:
//   - The Authorization header is redacted, but bodies and presigned URLs are logged as-is
//   - Only enable in development/staging environments
//
// Example usage:
//
//	export MESHCAPADE_DEBUG=true
//	go run main.go  # Client will now log all HTTP traffic
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := dumpRequest(req); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	// Model files can be large; only dump bodies of API documents.
	withBody := resp.Header.Get("Content-Type") != "application/octet-stream"
	if respDump, err := httputil.DumpResponse(resp, withBody); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// dumpRequest dumps req with the Authorization header masked. DumpRequestOut
// drains and restores the body, so the clone shares it with req.
func dumpRequest(req *http.Request) ([]byte, error) {
	if req.Header.Get("Authorization") == "" {
		return httputil.DumpRequestOut(req, true)
	}
	masked := req.Clone(req.Context())
	masked.Header.Set("Authorization", "Bearer [REDACTED]")
	dump, err := httputil.DumpRequestOut(masked, true)
	req.Body = masked.Body
	return dump, err
}

// debugLoggingRequested checks if HTTP debug logging should be enabled.
//
// Activation methods:
//   - MESHCAPADE_DEBUG=true (client-specific debug flag)
//   - DEBUG=true (general debug flag, common in development workflows)
//
// Returns true if either environment variable is set to "true" (case-sensitive).
func debugLoggingRequested() bool {
	return os.Getenv("MESHCAPADE_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
