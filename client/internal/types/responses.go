package types

// ------------------------------
// Response Types
// ------------------------------

// Resource is a JSON:API resource object as returned by the avatar API.
type Resource struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Links      map[string]any `json:"links,omitempty"`
}

// Document wraps single-resource responses.
type Document struct {
	Data     Resource   `json:"data"`
	Included []Resource `json:"included,omitempty"`
}

// ListDocument wraps the collection endpoint response.
type ListDocument struct {
	Data     []Resource        `json:"data"`
	Included []Resource        `json:"included,omitempty"`
	Meta     Pagination        `json:"meta"`
	Links    map[string]string `json:"links,omitempty"`
}

// Pagination mirrors the list endpoint's meta object.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListAvatarsResponse is one page of avatars plus pagination metadata.
type ListAvatarsResponse struct {
	Avatars    []Avatar
	Pagination Pagination
	Links      map[string]string
}

// DeleteAck confirms an avatar deletion.
type DeleteAck struct {
	AvatarID   string
	StatusCode int
}

// ImageUpload describes one image pushed through the presigned upload flow.
type ImageUpload struct {
	AvatarID string
	ImageID  string
	File     string
}

// ImageSlot is the data object returned when requesting an upload URL.
type ImageSlot struct {
	Data struct {
		ID    string `json:"id"`
		Links struct {
			Upload string `json:"upload"`
		} `json:"links"`
	} `json:"data"`
}
