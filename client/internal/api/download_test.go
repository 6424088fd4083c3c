package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
	"github.com/meshcapade/meshcapade-go/client/internal/types"
)

const modelBytes = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

// pollServer serves /avatars/{id} with "PROCESSING" until readyAfter polls
// have been made, then with state final and a mesh asset served by the same
// server.
func pollServer(t *testing.T, readyAfter int32, final string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/avatars/a1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "exported_mesh", r.URL.Query().Get("include"))
		n := atomic.AddInt32(&polls, 1)
		if n < readyAfter {
			writeJSON(w, http.StatusOK, avatarDoc("a1", "PROCESSING"))
			return
		}
		writeJSON(w, http.StatusOK, avatarDoc("a1", final, srv.URL+"/files/a1.obj"))
	})
	mux.HandleFunc("/files/a1.obj", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(modelBytes))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func fastOpts(max int) types.DownloadOptions {
	return types.DownloadOptions{PollInterval: time.Millisecond, MaxAttempts: max}
}

func TestDownload_ReadyOnThirdPoll(t *testing.T) {
	t.Parallel()
	srv, polls := pollServer(t, 3, "READY")
	fs := afero.NewMemMapFs()

	path, err := Download(context.Background(), srv.Client(), fs, srv.URL, "a1", "out/a1.obj", fastOpts(3))
	require.NoError(t, err)
	assert.Equal(t, "out/a1.obj", path)
	assert.EqualValues(t, 3, atomic.LoadInt32(polls))

	got, err := afero.ReadFile(fs, "out/a1.obj")
	require.NoError(t, err)
	assert.Equal(t, modelBytes, string(got))
	exists, _ := afero.Exists(fs, "out/a1.obj.part")
	assert.False(t, exists)
}

func TestDownload_TimeoutWritesNothing(t *testing.T) {
	t.Parallel()
	srv, polls := pollServer(t, 3, "READY")
	fs := afero.NewMemMapFs()

	_, err := Download(context.Background(), srv.Client(), fs, srv.URL, "a1", "a1.obj", fastOpts(2))
	var te *sdkerrors.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "a1", te.AvatarID)
	assert.Equal(t, 2, te.Attempts)
	assert.EqualValues(t, 2, atomic.LoadInt32(polls))

	exists, _ := afero.Exists(fs, "a1.obj")
	assert.False(t, exists)
}

func TestDownload_FailedStateStopsImmediately(t *testing.T) {
	t.Parallel()
	for _, state := range []string{"FAILED", "ERROR", "failed"} {
		srv, polls := pollServer(t, 1, state)
		fs := afero.NewMemMapFs()

		_, err := Download(context.Background(), srv.Client(), fs, srv.URL, "a1", "a1.obj", fastOpts(5))
		var apiErr *sdkerrors.APIError
		require.ErrorAs(t, err, &apiErr, state)
		assert.Equal(t, state, apiErr.State)
		assert.Contains(t, apiErr.Error(), state)
		assert.EqualValues(t, 1, atomic.LoadInt32(polls))

		exists, _ := afero.Exists(fs, "a1.obj")
		assert.False(t, exists)
	}
}

func TestDownload_NotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), afero.NewMemMapFs(), srv.URL, "nope", "a.obj", fastOpts(5))
	assert.True(t, sdkerrors.IsNotFound(err), "got %v", err)
}

func TestDownload_ReadyWithoutAssetKeepsPolling(t *testing.T) {
	t.Parallel()
	var polls int32
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/avatars/a1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			writeJSON(w, http.StatusOK, avatarDoc("a1", "READY"))
			return
		}
		writeJSON(w, http.StatusOK, avatarDoc("a1", "READY", "/files/a1.obj"))
	})
	mux.HandleFunc("/files/a1.obj", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(modelBytes))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()
	fs := afero.NewMemMapFs()

	// A relative asset path resolves against the base URL.
	_, err := Download(context.Background(), srv.Client(), fs, srv.URL+"/", "a1", "a1.obj", fastOpts(3))
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&polls))
	got, _ := afero.ReadFile(fs, "a1.obj")
	assert.Equal(t, modelBytes, string(got))
}

func TestDownload_AssetFetchFailureLeavesNoFile(t *testing.T) {
	t.Parallel()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/avatars/a1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, avatarDoc("a1", "READY", srv.URL+"/files/a1.obj"))
	})
	mux.HandleFunc("/files/a1.obj", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()
	fs := afero.NewMemMapFs()

	_, err := Download(context.Background(), srv.Client(), fs, srv.URL, "a1", "a1.obj", fastOpts(1))
	assert.True(t, sdkerrors.IsAPI(err))
	exists, _ := afero.Exists(fs, "a1.obj")
	assert.False(t, exists)
}

func TestDownload_SlowModelOutlivesClientTimeout(t *testing.T) {
	t.Parallel()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/avatars/a1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, avatarDoc("a1", "READY", srv.URL+"/files/a1.obj"))
	})
	mux.HandleFunc("/files/a1.obj", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(modelBytes))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	hc := *srv.Client()
	hc.Timeout = 100 * time.Millisecond
	fs := afero.NewMemMapFs()

	_, err := Download(context.Background(), &hc, fs, srv.URL, "a1", "a1.obj", fastOpts(1))
	require.NoError(t, err)
	got, err := afero.ReadFile(fs, "a1.obj")
	require.NoError(t, err)
	assert.Equal(t, modelBytes, string(got))
	assert.Equal(t, 100*time.Millisecond, hc.Timeout)
}

func TestDownload_MistypedStatusBodyStopsWithAPIError(t *testing.T) {
	t.Parallel()
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"id": "a1", "attributes": map[string]any{"state": "READY", "height": "tall"}},
		})
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.Client(), afero.NewMemMapFs(), srv.URL, "a1", "a1.obj", fastOpts(5))
	assert.True(t, sdkerrors.IsAPI(err), "got %T: %v", err, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&polls))
}

func TestDownload_ContextCanceledWhileWaiting(t *testing.T) {
	t.Parallel()
	srv, _ := pollServer(t, 100, "READY")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	opts := types.DownloadOptions{PollInterval: time.Hour, MaxAttempts: 10}
	_, err := Download(ctx, srv.Client(), afero.NewMemMapFs(), srv.URL, "a1", "a1.obj", opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownload_InvalidArguments(t *testing.T) {
	t.Parallel()
	hc := &http.Client{Transport: &errRT{}}
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	_, err := Download(ctx, hc, fs, "http://example.com", "", "a.obj", types.DownloadOptions{})
	assert.True(t, sdkerrors.IsValidation(err))
	_, err = Download(ctx, hc, fs, "http://example.com", "a1", "", types.DownloadOptions{})
	assert.True(t, sdkerrors.IsValidation(err))
	_, err = Download(ctx, hc, fs, "http://example.com", "a1", "a.obj", types.DownloadOptions{MaxAttempts: -1})
	assert.True(t, sdkerrors.IsValidation(err))
	_, err = Download(ctx, hc, fs, "http://example.com", "a1", "a.obj", types.DownloadOptions{PollInterval: -time.Second})
	assert.True(t, sdkerrors.IsValidation(err))
}

func TestPickAsset(t *testing.T) {
	t.Parallel()
	assets := []types.Asset{
		{ID: "tex", URL: "https://cdn.example.com/a1/texture.png?sig=x"},
		{ID: "fbx", URL: "https://cdn.example.com/a1/model.FBX?sig=y"},
		{ID: "obj", URL: "https://cdn.example.com/a1/model.obj?sig=z"},
	}

	got, ok := pickAsset(assets, "out/model.obj")
	require.True(t, ok)
	assert.Equal(t, "obj", got.ID)

	got, _ = pickAsset(assets, "model.fbx")
	assert.Equal(t, "fbx", got.ID)

	got, _ = pickAsset(assets, "model.glb")
	assert.Equal(t, "tex", got.ID)

	_, ok = pickAsset(nil, "model.obj")
	assert.False(t, ok)
}
