package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
	"github.com/meshcapade/meshcapade-go/client/internal/types"
)

// CreateFromImages uploads the images and avatar metadata in one multipart
// POST and returns the new avatar id. Every path is checked before the
// request is built so a missing file never reaches the network.
func CreateFromImages(ctx context.Context, rc *resty.Client, fs afero.Fs, baseURL string, req types.CreateFromImagesRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.ImagePaths) == 0 {
		return "", sdkerrors.Invalidf("imagePaths", "at least one image path is required")
	}
	for _, p := range req.ImagePaths {
		if err := checkImagePath(fs, p); err != nil {
			return "", err
		}
	}
	if err := req.AvatarSpec.Validate(); err != nil {
		return "", err
	}

	const op = "create avatar from images"
	r := rc.R().SetContext(ctx).SetHeader("Accept", "application/json")
	for _, p := range req.ImagePaths {
		f, err := fs.Open(p)
		if err != nil {
			return "", sdkerrors.NewValidationError("imagePaths", err)
		}
		defer func() { _ = f.Close() }()
		r.SetFileReader("images", filepath.Base(p), f)
	}
	r.SetFormData(specFormData(req.AvatarSpec))

	resp, err := r.Post(endpoint(baseURL, avatarsEndpoint, "create", "from-images"))
	if err != nil {
		return "", sdkerrors.NewNetworkError(op, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", sdkerrors.NewHTTPError(resp.StatusCode(), resp.Body(), op, resp.Request.URL)
	}
	var doc types.Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return "", sdkerrors.NewDecodeError(op, resp.StatusCode(), err)
	}
	return createdID(&doc, op)
}

// UploadImage attaches one image to an existing avatar. It requests a
// presigned upload URL from the API and PUTs the raw bytes there; the
// presigned request carries no API credentials.
func UploadImage(ctx context.Context, httpClient *http.Client, rc *resty.Client, fs afero.Fs, baseURL, avatarID, imagePath string) (*types.ImageUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(avatarID, "avatarId"); err != nil {
		return nil, err
	}
	if err := checkImagePath(fs, imagePath); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, imagePath)
	if err != nil {
		return nil, sdkerrors.NewValidationError("imagePath", err)
	}

	var slot types.ImageSlot
	if _, err := doJSON(ctx, httpClient, http.MethodPost, endpoint(baseURL, avatarsEndpoint, avatarID, "images"), nil, &slot, "request image upload"); err != nil {
		return nil, err
	}
	if slot.Data.Links.Upload == "" {
		return nil, &sdkerrors.APIError{Message: "request image upload: invalid API response: missing upload link"}
	}

	const op = "upload image"
	resp, err := rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeFor(imagePath)).
		SetBody(data).
		Put(slot.Data.Links.Upload)
	if err != nil {
		return nil, sdkerrors.NewNetworkError(op, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, sdkerrors.NewHTTPError(resp.StatusCode(), resp.Body(), op, filepath.Base(imagePath))
	}
	return &types.ImageUpload{AvatarID: avatarID, ImageID: slot.Data.ID, File: filepath.Base(imagePath)}, nil
}

func checkImagePath(fs afero.Fs, p string) error {
	if strings.TrimSpace(p) == "" {
		return sdkerrors.Invalidf("imagePaths", "empty image path")
	}
	info, err := fs.Stat(p)
	if err != nil {
		return sdkerrors.Invalidf("imagePaths", "image file not found: %s", p)
	}
	if info.IsDir() {
		return sdkerrors.Invalidf("imagePaths", "image path is a directory: %s", p)
	}
	return nil
}

func specFormData(s types.AvatarSpec) map[string]string {
	form := map[string]string{}
	if s.Name != "" {
		form["avatarname"] = s.Name
	}
	if s.Height > 0 {
		form["height"] = strconv.Itoa(s.Height)
	}
	if s.Weight > 0 {
		form["weight"] = strconv.Itoa(s.Weight)
	}
	if s.Gender != "" {
		form["gender"] = string(s.Gender)
	}
	return form
}

// contentTypeFor guesses the upload content type from the file extension.
func contentTypeFor(p string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p))); ct != "" {
		return ct
	}
	return "image/jpeg"
}
