package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/meshcapade/meshcapade-go/client"
)

// AvatarHandler exposes avatar creation, inspection and download tools.
type AvatarHandler struct {
	client    *client.Client
	outputDir string
	download  client.DownloadOptions
}

// NewAvatarHandler returns a handler whose download tool writes models
// below outputDir using dl as the default poll settings.
func NewAvatarHandler(c *client.Client, outputDir string, dl client.DownloadOptions) *AvatarHandler {
	return &AvatarHandler{client: c, outputDir: outputDir, download: dl}
}

func (ah *AvatarHandler) RegisterTools(s *server.MCPServer) error {
	fromImages := mcp.NewTool("create_avatar_from_images",
		mcp.WithDescription("Create an avatar from one or more photos on the server's filesystem; returns avatarId"),
		mcp.WithArray("image_paths", mcp.Required(), mcp.Description("Photo file paths"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("name", mcp.Description("Optional avatar name")),
		mcp.WithNumber("height", mcp.Description("Optional height in cm")),
		mcp.WithNumber("weight", mcp.Description("Optional weight in kg")),
		mcp.WithString("gender", mcp.Description("Optional body model"), mcp.Enum("male", "female")),
	)
	fromMeasurements := mcp.NewTool("create_avatar_from_measurements",
		mcp.WithDescription("Create an avatar from body measurements; returns avatarId. Accepted names: "+strings.Join(client.MeasurementNames(), ", ")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Avatar name")),
		mcp.WithString("gender", mcp.Required(), mcp.Description("Body model"), mcp.Enum("male", "female")),
		mcp.WithObject("measurements", mcp.Required(), mcp.Description("Measurement name to positive value (cm, kg for Weight)")),
	)
	predefined := mcp.NewTool("create_predefined_avatar",
		mcp.WithDescription("Create an avatar from a built-in measurement set; returns avatarId"),
	)
	get := mcp.NewTool("get_avatar",
		mcp.WithDescription("Get an avatar's name, processing state and exported assets"),
		mcp.WithString("avatar_id", mcp.Required(), mcp.Description("Avatar ID")),
	)
	list := mcp.NewTool("list_avatars",
		mcp.WithDescription("List avatars one page at a time (returns id, name & state)"),
		mcp.WithNumber("page", mcp.Description("Page number starting at 1 (default 1)")),
		mcp.WithNumber("page_size", mcp.Description("Avatars per page (default 10)")),
	)
	del := mcp.NewTool("delete_avatar",
		mcp.WithDescription("Delete an avatar"),
		mcp.WithString("avatar_id", mcp.Required(), mcp.Description("Avatar ID")),
	)
	download := mcp.NewTool("download_avatar",
		mcp.WithDescription("Wait until an avatar is processed and save its model file; returns the saved path"),
		mcp.WithString("avatar_id", mcp.Required(), mcp.Description("Avatar ID")),
		mcp.WithString("filename", mcp.Description("File name inside the output directory (default <avatar_id>.obj)")),
		mcp.WithNumber("max_attempts", mcp.Description("Status checks before giving up")),
		mcp.WithNumber("poll_interval_seconds", mcp.Description("Seconds between status checks")),
	)

	s.AddTool(fromImages, ah.handleCreateFromImages)
	s.AddTool(fromMeasurements, ah.handleCreateFromMeasurements)
	s.AddTool(predefined, ah.handleCreatePredefined)
	s.AddTool(get, ah.handleGetAvatar)
	s.AddTool(list, ah.handleListAvatars)
	s.AddTool(del, ah.handleDeleteAvatar)
	s.AddTool(download, ah.handleDownloadAvatar)
	return nil
}

func (ah *AvatarHandler) handleCreateFromImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	paths := stringSliceArg(args, "image_paths")
	height, err := intArg(args, "height", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	weight, err := intArg(args, "weight", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := client.AvatarSpec{
		Name:   stringArg(args, "name"),
		Height: height,
		Weight: weight,
		Gender: client.Gender(stringArg(args, "gender")),
	}

	log.Debug().Strs("image_paths", paths).Str("name", spec.Name).Msg("create_avatar_from_images invoked")

	start := time.Now()
	id, err := ah.client.CreateFromImages(ctx, client.CreateFromImagesRequest{ImagePaths: paths, AvatarSpec: spec})
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("create_avatar_from_images failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create avatar: %v", err)), nil
	}
	return jsonResult(map[string]any{"avatarId": id})
}

func (ah *AvatarHandler) handleCreateFromMeasurements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	gender, _ := req.RequireString("gender")
	measurements := client.Measurements{}
	if raw, ok := req.GetArguments()["measurements"].(map[string]any); ok {
		for k, v := range raw {
			f, ok := toFloat(v)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("measurement %s must be a number", k)), nil
			}
			measurements[k] = f
		}
	}

	log.Debug().Str("name", name).Str("gender", gender).Int("measurements", len(measurements)).Msg("create_avatar_from_measurements invoked")

	start := time.Now()
	id, err := ah.client.CreateFromMeasurements(ctx, client.CreateFromMeasurementsRequest{
		Name:         name,
		Gender:       client.Gender(gender),
		Measurements: measurements,
	})
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("create_avatar_from_measurements failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create avatar: %v", err)), nil
	}
	return jsonResult(map[string]any{"avatarId": id})
}

func (ah *AvatarHandler) handleCreatePredefined(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := ah.client.CreatePredefined(ctx)
	if err != nil {
		log.Error().Err(err).Msg("create_predefined_avatar failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create avatar: %v", err)), nil
	}
	return jsonResult(map[string]any{"avatarId": id})
}

func (ah *AvatarHandler) handleGetAvatar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	avatarID, _ := req.RequireString("avatar_id")

	log.Debug().Str("avatar_id", avatarID).Msg("get_avatar invoked")

	a, err := ah.client.GetAvatar(ctx, avatarID)
	if err != nil {
		log.Error().Err(err).Str("avatar_id", avatarID).Msg("get_avatar failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get avatar: %v", err)), nil
	}

	assets := make([]string, len(a.Assets))
	for i, as := range a.Assets {
		assets[i] = as.URL
	}
	return jsonResult(map[string]any{
		"avatarId":   a.ID,
		"name":       a.Name,
		"state":      a.State,
		"attributes": a.Attributes,
		"assets":     assets,
	})
}

// handleListAvatars returns a minimal list of avatar identifiers, names and
// states plus the paging metadata.
func (ah *AvatarHandler) handleListAvatars(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	page, err := intArg(args, "page", 1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageSize, err := intArg(args, "page_size", 10)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	log.Debug().Int("page", page).Int("page_size", pageSize).Msg("list_avatars invoked")

	start := time.Now()
	resp, err := ah.client.ListAvatars(ctx, page, pageSize)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("list_avatars failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list avatars: %v", err)), nil
	}

	type lite struct {
		AvatarID string `json:"avatarId"`
		Name     string `json:"name"`
		State    string `json:"state"`
	}
	out := make([]lite, len(resp.Avatars))
	for i, a := range resp.Avatars {
		out[i] = lite{AvatarID: a.ID, Name: a.Name, State: a.State}
	}
	return jsonResult(map[string]any{
		"avatars":    out,
		"page":       resp.Pagination.Page,
		"pageSize":   resp.Pagination.Limit,
		"total":      resp.Pagination.Total,
		"totalPages": resp.Pagination.TotalPages,
	})
}

func (ah *AvatarHandler) handleDeleteAvatar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	avatarID, _ := req.RequireString("avatar_id")

	log.Debug().Str("avatar_id", avatarID).Msg("delete_avatar invoked")

	ack, err := ah.client.DeleteAvatar(ctx, avatarID)
	if err != nil {
		log.Error().Err(err).Str("avatar_id", avatarID).Msg("delete_avatar failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete avatar: %v", err)), nil
	}
	return jsonResult(map[string]any{"avatarId": ack.AvatarID, "deleted": true})
}

func (ah *AvatarHandler) handleDownloadAvatar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	avatarID, _ := req.RequireString("avatar_id")
	args := req.GetArguments()

	filename := stringArg(args, "filename")
	if filename == "" {
		filename = avatarID + ".obj"
	}
	// Only a base name is accepted so callers cannot escape outputDir.
	base := filepath.Base(filename)
	if base != filename || base == "." || base == ".." || base == string(filepath.Separator) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filename %q: must be a plain file name", filename)), nil
	}
	dest := filepath.Join(ah.outputDir, base)

	opts := ah.download
	if _, ok := args["max_attempts"]; ok {
		n, err := intArg(args, "max_attempts", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		// Zero would silently select the default.
		if n < 1 {
			return mcp.NewToolResultError("max_attempts must be >= 1"), nil
		}
		opts.MaxAttempts = n
	}
	if v, ok := args["poll_interval_seconds"]; ok {
		secs, isNum := toFloat(v)
		if !isNum {
			return mcp.NewToolResultError("poll_interval_seconds must be a number"), nil
		}
		// Negative values are left for the client to reject.
		opts.PollInterval = time.Duration(secs * float64(time.Second))
	}

	log.Debug().Str("avatar_id", avatarID).Str("dest", dest).Int("max_attempts", opts.MaxAttempts).Msg("download_avatar invoked")

	start := time.Now()
	path, err := ah.client.Download(ctx, avatarID, dest, opts)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("avatar_id", avatarID).Dur("elapsed", elapsed).Msg("download_avatar failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to download avatar: %v", err)), nil
	}
	return jsonResult(map[string]any{"avatarId": avatarID, "path": path})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg returns def when key is absent. A present value must be a whole
// number; range checks are left to the client.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), nil
}

// toFloat accepts JSON numbers (decoded as float64) and Go ints from
// in-process callers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringSliceArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
