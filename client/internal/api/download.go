package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
	"github.com/meshcapade/meshcapade-go/client/internal/types"
)

// errNotReady marks a poll attempt that saw no terminal state. It never
// escapes Download; exhausting attempts turns it into a TimeoutError.
var errNotReady = errors.New("avatar not ready")

// Download polls the avatar status until it is ready, then fetches the
// exported mesh and writes it to dest. It returns dest on success.
//
// Each attempt is one status query. Attempts are separated by a fixed
// opts.PollInterval and capped at opts.MaxAttempts. A failed processing state
// stops the loop with an APIError; status query failures stop it with their
// classified error. Nothing is written to dest unless the whole model was
// fetched.
//
// The model itself is fetched without httpClient's overall Timeout, which
// would otherwise cut off large meshes; ctx bounds that transfer instead.
func Download(ctx context.Context, httpClient *http.Client, fs afero.Fs, baseURL, avatarID, dest string, opts types.DownloadOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := types.ValidateIDPresent(avatarID, "avatarId"); err != nil {
		return "", err
	}
	if err := types.ValidateIDPresent(dest, "destination"); err != nil {
		return "", err
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}

	start := time.Now()
	attempts := 0
	var asset types.Asset

	poll := func() error {
		attempts++
		avatar, err := getAvatarWithMesh(ctx, httpClient, baseURL, avatarID)
		if err != nil {
			return backoff.Permanent(err)
		}
		statusPollsTotal.WithLabelValues(stateLabel(avatar.State)).Inc()
		log.Debug().
			Str("avatar_id", avatarID).
			Int("attempt", attempts).
			Int("max_attempts", opts.MaxAttempts).
			Str("state", avatar.State).
			Msg("polled avatar status")

		switch {
		case avatar.Failed():
			return backoff.Permanent(&sdkerrors.APIError{
				Message: fmt.Sprintf("avatar processing failed with state: %s", avatar.State),
				State:   avatar.State,
			})
		case avatar.Ready():
			picked, ok := pickAsset(avatar.Assets, dest)
			if !ok {
				// Export can lag behind the READY transition.
				log.Debug().Str("avatar_id", avatarID).Msg("avatar ready but no downloadable asset yet")
				return errNotReady
			}
			asset = picked
			return nil
		default:
			return errNotReady
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.PollInterval), uint64(opts.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(poll, policy); err != nil {
		if errors.Is(err, errNotReady) {
			downloadsTotal.WithLabelValues("timeout").Inc()
			return "", &sdkerrors.TimeoutError{AvatarID: avatarID, Attempts: attempts, Elapsed: time.Since(start)}
		}
		var apiErr *sdkerrors.APIError
		if errors.As(err, &apiErr) && apiErr.State != "" {
			downloadsTotal.WithLabelValues("failed").Inc()
		} else {
			downloadsTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}

	if err := fetchAsset(ctx, httpClient, fs, baseURL, asset, dest); err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	downloadsTotal.WithLabelValues("ok").Inc()
	log.Debug().Str("avatar_id", avatarID).Str("path", dest).Int("attempts", attempts).Msg("avatar downloaded")
	return dest, nil
}

// pickAsset prefers the asset whose extension matches dest and otherwise
// falls back to the first one.
func pickAsset(assets []types.Asset, dest string) (types.Asset, bool) {
	if len(assets) == 0 {
		return types.Asset{}, false
	}
	want := strings.ToLower(filepath.Ext(dest))
	for _, a := range assets {
		if want != "" && a.Ext() == want {
			return a, true
		}
	}
	return assets[0], true
}

// fetchAsset streams the asset into a temporary sibling of dest and renames
// it into place once complete.
func fetchAsset(ctx context.Context, httpClient *http.Client, fs afero.Fs, baseURL string, asset types.Asset, dest string) error {
	const op = "download avatar model"
	assetURL, err := resolveURL(baseURL, asset.URL)
	if err != nil {
		return &sdkerrors.APIError{Message: op + ": invalid asset url", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return err
	}
	// Same transport and headers, no per-request deadline.
	streaming := *httpClient
	streaming.Timeout = 0
	resp, err := streaming.Do(req)
	if err != nil {
		return sdkerrors.NewNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readLimited(resp)
		return sdkerrors.NewHTTPError(resp.StatusCode, body, op, asset.ID)
	}

	tmp := dest + ".part"
	if err := afero.WriteReader(fs, tmp, resp.Body); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("write avatar model: %w", err)
	}
	if err := fs.Rename(tmp, dest); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("write avatar model: %w", err)
	}
	return nil
}

func readLimited(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, 4096))
}

func stateLabel(state string) string {
	if state == "" {
		return "unknown"
	}
	return strings.ToLower(state)
}
