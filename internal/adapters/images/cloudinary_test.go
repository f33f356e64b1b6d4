package images

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubevents/internal/domain"
)

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *cloudinaryStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewCloudinaryStore(CloudinaryConfig{
		CloudName:    "club",
		APIKey:       "key-1",
		APISecret:    "shh",
		UploadPreset: "event-images",
		BaseURL:      srv.URL,
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	c := store.(*cloudinaryStore)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestSignParams(t *testing.T) {
	params := map[string]string{
		"timestamp": "1315060510",
		"public_id": "sample_image",
		"eager":     "w_400,h_300,c_pad|w_260,h_200,c_crop",
		"file":      "ignored",
		"api_key":   "ignored",
		"folder":    "",
	}
	// Worked example from the Cloudinary signature documentation.
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", signParams(params, "abcd"))
}

func TestSignParams_order_independent(t *testing.T) {
	a := map[string]string{"b": "2", "a": "1", "c": "3"}
	b := map[string]string{"c": "3", "b": "2", "a": "1"}
	assert.Equal(t, signParams(a, "s"), signParams(b, "s"))
	assert.NotEqual(t, signParams(a, "s"), signParams(a, "t"))
}

func TestNewCloudinaryStore_requires_credentials(t *testing.T) {
	_, err := NewCloudinaryStore(CloudinaryConfig{CloudName: "club"})
	require.Error(t, err)
}

func TestCloudinaryStore_Upload(t *testing.T) {
	var gotFields map[string]string
	var gotFile []byte
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1_1/club/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  "event-images/spring-walk/spring-walk-img1",
			"secure_url": "https://res.cloudinary.com/club/image/upload/x.jpg",
		})
	})

	id, err := c.Upload(context.Background(), domain.ImageUpload{
		Name:        "spring-walk-img1",
		Folder:      "event-images/spring-walk",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "event-images/spring-walk/spring-walk-img1", id)
	assert.Equal(t, []byte("jpeg-bytes"), gotFile)
	assert.Equal(t, "key-1", gotFields["api_key"])
	assert.Equal(t, "1700000000", gotFields["timestamp"])
	assert.Equal(t, "spring-walk-img1", gotFields["public_id"])

	signed := map[string]string{}
	for k, v := range gotFields {
		signed[k] = v
	}
	assert.Equal(t, signParams(signed, "shh"), gotFields["signature"])
}

func TestCloudinaryStore_Upload_error_status(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	})
	_, err := c.Upload(context.Background(), domain.ImageUpload{Name: "x", Data: []byte("d")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Signature")
}

func TestCloudinaryStore_DeleteImages(t *testing.T) {
	var gotIDs []string
	var user, pass string
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1_1/club/resources/image/upload", r.URL.Path)
		gotIDs = r.URL.Query()["public_ids[]"]
		user, pass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{"deleted":{}}`))
	})

	require.NoError(t, c.DeleteImages(context.Background(), []string{"a/1", "a/2"}))
	assert.Equal(t, []string{"a/1", "a/2"}, gotIDs)
	assert.Equal(t, "key-1", user)
	assert.Equal(t, "shh", pass)

	require.NoError(t, c.DeleteImages(context.Background(), nil))
}

func TestCloudinaryStore_DeleteFolder(t *testing.T) {
	var gotPath string
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.DeleteFolder(context.Background(), "event-images/spring-walk")
	require.Error(t, err)
	assert.Equal(t, "/v1_1/club/folders/event-images/spring-walk", gotPath)
}

func TestNewImageStore_noop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewImageStore(context.Background(), Config{Provider: "bogus"}, logger)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), domain.ImageUpload{Name: "x"})
	require.ErrorIs(t, err, errNoopUpload)
	assert.NoError(t, store.DeleteImages(context.Background(), []string{"x"}))
	assert.NoError(t, store.DeleteFolder(context.Background(), "f"))
}
