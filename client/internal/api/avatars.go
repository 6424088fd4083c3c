package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
	"github.com/meshcapade/meshcapade-go/client/internal/types"
)

// CreateFromMeasurements creates an avatar from body measurements and returns its id.
func CreateFromMeasurements(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateFromMeasurementsRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	return postCreateMeasurements(ctx, httpClient, baseURL, req, "create avatar from measurements")
}

// CreatePredefined creates an avatar from the built-in measurement set.
func CreatePredefined(ctx context.Context, httpClient *http.Client, baseURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return postCreateMeasurements(ctx, httpClient, baseURL, types.PredefinedMeasurementsRequest(), "create predefined avatar")
}

func postCreateMeasurements(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateFromMeasurementsRequest, op string) (string, error) {
	var doc types.Document
	if _, err := doJSON(ctx, httpClient, http.MethodPost, endpoint(baseURL, avatarsEndpoint, "create", "from-measurements"), req, &doc, op); err != nil {
		return "", err
	}
	return createdID(&doc, op)
}

// CreateEmptyAvatar registers an avatar entry without images. Images are then
// attached with UploadImage and processed with FitToImages.
func CreateEmptyAvatar(ctx context.Context, httpClient *http.Client, baseURL string, spec types.AvatarSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := spec.Validate(); err != nil {
		return "", err
	}
	var doc types.Document
	if _, err := doJSON(ctx, httpClient, http.MethodPost, endpoint(baseURL, avatarsEndpoint, "create", "from-images"), spec, &doc, "create empty avatar"); err != nil {
		return "", err
	}
	return createdID(&doc, "create empty avatar")
}

// FitToImages starts fitting an avatar to its uploaded images.
func FitToImages(ctx context.Context, httpClient *http.Client, baseURL, avatarID string, spec types.AvatarSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(avatarID, "avatarId"); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	_, err := doJSON(ctx, httpClient, http.MethodPost, endpoint(baseURL, avatarsEndpoint, avatarID, "fit-to-images"), spec, nil, "fit to images")
	return err
}

// GetAvatar retrieves an avatar by id.
func GetAvatar(ctx context.Context, httpClient *http.Client, baseURL, avatarID string) (*types.Avatar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(avatarID, "avatarId"); err != nil {
		return nil, err
	}
	return fetchAvatar(ctx, httpClient, endpoint(baseURL, avatarsEndpoint, avatarID), "get avatar")
}

// getAvatarWithMesh is the status query used by the download loop; it asks
// the server to include the exported mesh assets.
func getAvatarWithMesh(ctx context.Context, httpClient *http.Client, baseURL, avatarID string) (*types.Avatar, error) {
	q := url.Values{"include": {"exported_mesh"}}
	return fetchAvatar(ctx, httpClient, endpoint(baseURL, avatarsEndpoint, avatarID)+"?"+q.Encode(), "get avatar status")
}

func fetchAvatar(ctx context.Context, httpClient *http.Client, rawURL, op string) (*types.Avatar, error) {
	var doc types.Document
	status, err := doJSON(ctx, httpClient, http.MethodGet, rawURL, nil, &doc, op)
	if err != nil {
		return nil, err
	}
	avatar, err := types.AvatarFromResource(doc.Data, doc.Included)
	if err != nil {
		return nil, sdkerrors.NewDecodeError(op, status, err)
	}
	return &avatar, nil
}

// ListAvatars returns one page of the caller's avatars.
func ListAvatars(ctx context.Context, httpClient *http.Client, baseURL string, page, pageSize int) (*types.ListAvatarsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	q := url.Values{
		"include": {"exported_mesh"},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(pageSize)},
	}
	const op = "list avatars"
	var doc types.ListDocument
	status, err := doJSON(ctx, httpClient, http.MethodGet, endpoint(baseURL, avatarsEndpoint)+"?"+q.Encode(), nil, &doc, op)
	if err != nil {
		return nil, err
	}

	out := &types.ListAvatarsResponse{
		Avatars:    make([]types.Avatar, 0, len(doc.Data)),
		Pagination: doc.Meta,
		Links:      doc.Links,
	}
	for _, r := range doc.Data {
		a, err := types.AvatarFromResource(r, nil)
		if err != nil {
			return nil, sdkerrors.NewDecodeError(op, status, err)
		}
		out.Avatars = append(out.Avatars, a)
	}
	// Servers that omit meta still get sensible paging fields.
	if out.Pagination.Page == 0 {
		out.Pagination.Page = page
	}
	if out.Pagination.Limit == 0 {
		out.Pagination.Limit = pageSize
	}
	return out, nil
}

// DeleteAvatar removes an avatar. The backend answers 200 or 204 on success.
func DeleteAvatar(ctx context.Context, httpClient *http.Client, baseURL, avatarID string) (*types.DeleteAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(avatarID, "avatarId"); err != nil {
		return nil, err
	}
	status, err := doJSON(ctx, httpClient, http.MethodDelete, endpoint(baseURL, avatarsEndpoint, avatarID), nil, nil, "delete avatar")
	if err != nil {
		return nil, err
	}
	return &types.DeleteAck{AvatarID: avatarID, StatusCode: status}, nil
}
