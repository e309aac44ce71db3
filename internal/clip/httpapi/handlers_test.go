package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliplink/internal/clip/repository"
	"cliplink/internal/clip/service"
	"cliplink/internal/clip/token"
)

const testBaseURL = "http://localhost:8000"

// fakeStore keeps blobs in memory behind the same port the S3 adapter fills.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if f.failUpload {
		return "", io.ErrUnexpectedEOF
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.objects[key] = b
	f.mu.Unlock()
	return f.PublicURL(key), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	delete(f.objects, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type testEnv struct {
	server *httptest.Server
	repo   *repository.MemoryRepository
	store  *fakeStore
	tokens *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewMemoryRepository()
	store := newFakeStore()

	tokens, err := token.New("test-secret", "HS256", 15*time.Minute)
	require.NoError(t, err)

	svc, err := service.New(service.Config{
		Repo:    repo,
		Store:   store,
		Tokens:  tokens,
		BaseURL: testBaseURL,
		AllowedExtensions: map[string]struct{}{
			".mp4": {}, ".mkv": {}, ".webm": {},
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	h := New(svc, tokens, 10<<20, zerolog.Nop())
	server := httptest.NewServer(NewRouter(h))
	t.Cleanup(server.Close)

	return &testEnv{server: server, repo: repo, store: store, tokens: tokens}
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, fields map[string]string, filename string, bearer string) *http.Response {
	t.Helper()

	body, contentType := multipartUpload(t, fields, filename, []byte("fake video bytes"))
	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

var linkPattern = regexp.MustCompile(`^http://localhost:8000/watch/([A-Za-z0-9_-]{12})$`)

func TestEndToEnd_UploadAndWatch(t *testing.T) {
	env := newTestEnv(t)

	// Issue a token for alice.
	resp, err := http.PostForm(env.server.URL+"/auth/token", map[string][]string{
		"username": {"alice"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := decodeJSON[TokenResponse](t, resp)
	require.NotEmpty(t, tok.Token)
	assert.Equal(t, int(15*time.Minute/time.Second), tok.ExpiresIn)

	// Upload an mp4 under that token.
	resp = env.upload(t, map[string]string{
		"username": "alice",
		"duration": "12.5",
		"fps":      "60",
	}, "headshot.mp4", tok.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	up := decodeJSON[UploadResponse](t, resp)

	m := linkPattern.FindStringSubmatch(up.Link)
	require.NotNil(t, m, "link %q does not match the expected shape", up.Link)
	clipID := m[1]
	assert.Equal(t, clipID, up.ClipID)
	assert.Equal(t, "https://cdn.example.com/clips/alice/"+clipID+".mp4", up.StorageURL)

	// The blob actually landed.
	env.store.mu.Lock()
	_, stored := env.store.objects["clips/alice/"+clipID+".mp4"]
	env.store.mu.Unlock()
	assert.True(t, stored)

	// The watch page renders and mentions the owner.
	resp, err = http.Get(env.server.URL + "/watch/" + clipID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(page), "alice")
	assert.Contains(t, string(page), "og:video")

	// Metadata reflects the view.
	resp, err = http.Get(env.server.URL + "/api/clips/" + clipID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	clip := decodeJSON[ClipResponse](t, resp)
	assert.Equal(t, "alice", clip.Owner)
	assert.Equal(t, "headshot.mp4", clip.Filename)
	assert.Equal(t, int64(1), clip.Views)
	require.NotNil(t, clip.DurationSeconds)
	assert.Equal(t, 12.5, *clip.DurationSeconds)
	require.NotNil(t, clip.FPS)
	assert.Equal(t, 60, *clip.FPS)
	require.NotNil(t, clip.Settings)
}

func TestUpload_RejectsExtension(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, map[string]string{"username": "alice"}, "malware.exe", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Contains(t, body["error"], "file type")

	// Nothing was persisted anywhere.
	env.store.mu.Lock()
	assert.Empty(t, env.store.objects)
	env.store.mu.Unlock()

	resp, err := http.Get(env.server.URL + "/api/clips/AAAAAAAAAAAA")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpload_TokenIdentityMismatch(t *testing.T) {
	env := newTestEnv(t)

	bobToken, err := env.tokens.Issue("bob")
	require.NoError(t, err)

	resp := env.upload(t, map[string]string{"username": "alice"}, "clip.mp4", bobToken)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpload_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, map[string]string{"username": "alice"}, "clip.mp4", "garbage.token.here")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpload_NoTokenIsAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, map[string]string{"username": "alice"}, "clip.mp4", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUpload_MissingUsername(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, map[string]string{}, "clip.mp4", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpload_BadHints(t *testing.T) {
	env := newTestEnv(t)

	for _, fields := range []map[string]string{
		{"username": "alice", "duration": "very long"},
		{"username": "alice", "fps": "sixty"},
		{"username": "alice", "bitrate": "-1"},
	} {
		resp := env.upload(t, fields, "clip.mp4", "")
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("username", "alice"))
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpload_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failUpload = true

	resp := env.upload(t, map[string]string{"username": "alice"}, "clip.mp4", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWatchPage_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/watch/AAAAAAAAAAAA")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestGetClip_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/clips/AAAAAAAAAAAA")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "clip not found", body["error"])
}

func TestListOwnerClips(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"first.mp4", "second.mp4"} {
		resp := env.upload(t, map[string]string{"username": "alice"}, name, "")
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(env.server.URL + "/api/users/alice/clips?limit=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON[map[string][]ClipResponse](t, resp)
	assert.Len(t, body["clips"], 2)
}

func TestListOwnerClips_BadLimit(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/users/alice/clips?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON[map[string]any](t, resp)
	assert.Contains(t, body, "endpoints")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}
