package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name        string
		dir         string
		filename    string
		contentType string
		want        string
		err         error
	}{
		{"gallery", DirGallery, "sala.jpg", "image/jpeg", "images/gallery/1700000000123_sala.jpg", nil},
		{"spaces", DirTeam, "foto da dra.png", "image/png", "images/team/1700000000123_foto_da_dra.png", nil},
		{"path stripped", DirHero, "../../etc/capa.webp", "image/webp", "images/hero/1700000000123_capa.webp", nil},
		{"windows path", DirTestimonials, `C:\fotos\ana.jpg`, "image/jpeg", "images/testimonials/1700000000123_ana.jpg", nil},
		{"unknown dir", "images/other", "a.jpg", "image/jpeg", "", ErrDirNotAllowed},
		{"not an image", DirGallery, "a.pdf", "application/pdf", "", ErrNotImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ObjectKey(tt.dir, tt.filename, tt.contentType, now)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestManual(t *testing.T) {
	var u Uploader = Manual{}

	_, err := u.Upload(context.Background(), DirGallery, "a.jpg", strings.NewReader("x"), 1, "image/jpeg")
	assert.ErrorIs(t, err, ErrManualOnly)
	assert.Equal(t, "manual", u.Backend())
}

func TestGCS_PublicURL(t *testing.T) {
	g, err := NewGCS(context.Background(), "clinica-site", option.WithoutAuthentication())
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, "https://storage.googleapis.com/clinica-site/images/hero/1_capa.jpg", g.PublicURL("images/hero/1_capa.jpg"))

	_, err = g.Upload(context.Background(), "uploads", "a.jpg", strings.NewReader("x"), 1, "image/jpeg")
	assert.ErrorIs(t, err, ErrDirNotAllowed)
}

func TestMinIO_Upload(t *testing.T) {
	var mu sync.Mutex
	objects := map[string]string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		objects[r.URL.Path] = string(body)
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := strings.TrimPrefix(server.URL, "http://")
	m, err := NewMinIO(context.Background(), MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "site",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	m.now = func() time.Time { return time.UnixMilli(42) }

	url, err := m.Upload(context.Background(), DirGallery, "sala.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/site/images/gallery/42_sala.jpg", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, objects, "/site/images/gallery/42_sala.jpg")
}
