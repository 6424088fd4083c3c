package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// avatarDoc builds a single-avatar JSON:API document with optional mesh assets.
func avatarDoc(id, state string, assetURLs ...string) map[string]any {
	included := make([]map[string]any, 0, len(assetURLs))
	for i, u := range assetURLs {
		included = append(included, map[string]any{
			"id":         fmt.Sprintf("asset-%d", i),
			"type":       "asset",
			"attributes": map[string]any{"url": map[string]any{"path": u}},
		})
	}
	return map[string]any{
		"data": map[string]any{
			"id":         id,
			"type":       "avatar",
			"attributes": map[string]any{"name": "Emma", "state": state},
		},
		"included": included,
	}
}

func createdDoc(id string) map[string]any {
	return map[string]any{"data": map[string]any{"id": id, "type": "avatar"}}
}
