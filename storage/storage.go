// Package storage uploads images picked in the editor to an object store
// and returns their public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrManualOnly means no object store is configured; the editor must
	// ask the administrator for an image URL instead.
	ErrManualOnly    = errors.New("uploads disabled, paste an image URL")
	ErrDirNotAllowed = errors.New("upload directory not allowed")
	ErrNotImage      = errors.New("only image uploads are accepted")
)

// Upload directories, one per kind of image on the page.
const (
	DirGallery      = "images/gallery"
	DirHero         = "images/hero"
	DirTeam         = "images/team"
	DirTestimonials = "images/testimonials"
)

var allowedDirs = map[string]bool{
	DirGallery:      true,
	DirHero:         true,
	DirTeam:         true,
	DirTestimonials: true,
}

type Uploader interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, dir, filename string, r io.Reader, size int64, contentType string) (string, error)
	Backend() string
}

// ObjectKey validates the upload and names the object dir/<unixMillis>_<filename>.
func ObjectKey(dir, filename, contentType string, now time.Time) (string, error) {
	if !allowedDirs[dir] {
		return "", fmt.Errorf("%w: %q", ErrDirNotAllowed, dir)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("%s/%d_%s", dir, now.UnixMilli(), name), nil
}

// Manual never uploads.
type Manual struct{}

func (Manual) Upload(ctx context.Context, dir, filename string, r io.Reader, size int64, contentType string) (string, error) {
	return "", ErrManualOnly
}

func (Manual) Backend() string { return "manual" }
