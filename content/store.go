// Package content mirrors the remote site document into local state and
// pushes the administrator's edits back to it.
package content

import (
	"context"
	"errors"
	"strings"

	"odontologia/models"
)

var (
	ErrDocumentNotFound = errors.New("site document not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrAlreadyStarted   = errors.New("content sync already started")
)

// Update is a partial write of one field of the site document. Path is the
// field path, e.g. ["editableContent", "hero-title"] or ["dentists"].
type Update struct {
	Path  []string
	Value interface{}
}

func (u Update) String() string {
	return strings.Join(u.Path, ".")
}

// Snapshot is one observed state of the site document. Version grows with
// every write; zero means the store could not tell.
type Snapshot struct {
	Exists  bool
	Data    models.SiteData
	Version int64
}

// Store is a client of the document database holding the site document.
type Store interface {
	Get(ctx context.Context) (Snapshot, error)
	// Set and Update return the document version their write produced.
	Set(ctx context.Context, data models.SiteData) (int64, error)
	Update(ctx context.Context, updates []Update) (int64, error)
	// Listen delivers the current state and then every change until stop is
	// called or ctx is done. Callbacks run on a single goroutine, in order.
	Listen(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (stop func(), err error)
}
