package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"odontologia/models"
)

// DeletedMessage is shown in the undo toast after a deletion.
const DeletedMessage = "Item excluído."

// Collection edits one record list of the site document. Every write
// replaces the whole array.
type Collection[T models.Record] struct {
	field    string
	get      func(models.SiteData) []T
	set      func(*models.SiteData, []T)
	withID   func(T, int64) T
	setField func(*T, string, string) error
	decode   func([]byte) (T, error)
}

// ListEditor is the untyped view of a Collection used by the HTTP layer.
type ListEditor interface {
	Field() string
	AddJSON(ctx context.Context, s *Sync, raw []byte) (interface{}, error)
	UpdateField(ctx context.Context, s *Sync, id int64, field, value string) error
	Delete(ctx context.Context, s *Sync, id int64) (string, error)
}

var (
	Dentists = Collection[models.Dentist]{
		field:    "dentists",
		get:      func(d models.SiteData) []models.Dentist { return d.Dentists },
		set:      func(d *models.SiteData, items []models.Dentist) { d.Dentists = items },
		withID:   func(r models.Dentist, id int64) models.Dentist { r.ID = id; return r },
		setField: func(r *models.Dentist, f, v string) error { return r.SetField(f, v) },
		decode:   decodeJSON[models.Dentist],
	}
	Services = Collection[models.Service]{
		field:    "services",
		get:      func(d models.SiteData) []models.Service { return d.Services },
		set:      func(d *models.SiteData, items []models.Service) { d.Services = items },
		withID:   func(r models.Service, id int64) models.Service { r.ID = id; return r },
		setField: func(r *models.Service, f, v string) error { return r.SetField(f, v) },
		decode:   decodeJSON[models.Service],
	}
	Testimonials = Collection[models.Testimonial]{
		field:    "testimonials",
		get:      func(d models.SiteData) []models.Testimonial { return d.Testimonials },
		set:      func(d *models.SiteData, items []models.Testimonial) { d.Testimonials = items },
		withID:   func(r models.Testimonial, id int64) models.Testimonial { r.ID = id; return r },
		setField: func(r *models.Testimonial, f, v string) error { return r.SetField(f, v) },
		decode:   decodeTestimonial,
	}
	GalleryImages = Collection[models.GalleryImage]{
		field:    "galleryImages",
		get:      func(d models.SiteData) []models.GalleryImage { return d.GalleryImages },
		set:      func(d *models.SiteData, items []models.GalleryImage) { d.GalleryImages = items },
		withID:   func(r models.GalleryImage, id int64) models.GalleryImage { r.ID = id; return r },
		setField: func(r *models.GalleryImage, f, v string) error { return r.SetField(f, v) },
		decode:   decodeJSON[models.GalleryImage],
	}
)

// Collections maps the document field name of every record list to its editor.
var Collections = map[string]ListEditor{
	Dentists.field:      Dentists,
	Services.field:      Services,
	Testimonials.field:  Testimonials,
	GalleryImages.field: GalleryImages,
}

func (c Collection[T]) Field() string { return c.field }

// Items returns a copy of the current list.
func (c Collection[T]) Items(s *Sync) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), c.get(s.data)...)
}

// Add appends item under a fresh id and writes the whole list.
func (c Collection[T]) Add(ctx context.Context, s *Sync, item T) (T, error) {
	err := s.edit(ctx, c.field, func(d *models.SiteData) ([]Update, error) {
		items := c.get(*d)
		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.RecordID()
		}
		item = c.withID(item, NextID(s.now(), ids))
		updated := append(append(make([]T, 0, len(items)+1), items...), item)
		c.set(d, updated)
		return []Update{{Path: []string{c.field}, Value: updated}}, nil
	})
	return item, err
}

func (c Collection[T]) AddJSON(ctx context.Context, s *Sync, raw []byte) (interface{}, error) {
	item, err := c.decode(raw)
	if err != nil {
		return nil, err
	}
	return c.Add(ctx, s, item)
}

// UpdateField replaces one field of the record with the given id and writes
// the whole list.
func (c Collection[T]) UpdateField(ctx context.Context, s *Sync, id int64, field, value string) error {
	return s.edit(ctx, c.field, func(d *models.SiteData) ([]Update, error) {
		items := c.get(*d)
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, ErrRecordNotFound
		}
		updated := append([]T(nil), items...)
		if err := c.setField(&updated[idx], field, value); err != nil {
			return nil, err
		}
		c.set(d, updated)
		return []Update{{Path: []string{c.field}, Value: updated}}, nil
	})
}

// Delete removes the record with the given id, writes the shortened list and
// keeps what is needed to put it back in the undo slot. The slot holds a
// single deletion: a newer one replaces it.
func (c Collection[T]) Delete(ctx context.Context, s *Sync, id int64) (string, error) {
	var (
		remaining []T
		removed   T
		idx       int
		ok        bool
	)
	err := s.edit(ctx, c.field, func(d *models.SiteData) ([]Update, error) {
		remaining, removed, idx, ok = removeByID(c.get(*d), id)
		if !ok {
			return nil, ErrRecordNotFound
		}
		c.set(d, remaining)
		return []Update{{Path: []string{c.field}, Value: remaining}}, nil
	})
	if !ok {
		return "", err
	}

	s.setUndo(&pendingUndo{
		field:   c.field,
		message: DeletedMessage,
		expires: s.now().Add(s.UndoWindow),
		restore: func(ctx context.Context) error {
			return s.edit(ctx, c.field, func(d *models.SiteData) ([]Update, error) {
				restored := insertAt(remaining, idx, removed)
				c.set(d, restored)
				return []Update{{Path: []string{c.field}, Value: restored}}, nil
			})
		},
	})
	// a failed remote write still removed the record locally
	return DeletedMessage, err
}

type pendingUndo struct {
	field   string
	message string
	expires time.Time
	restore func(ctx context.Context) error
}

func (s *Sync) setUndo(u *pendingUndo) {
	s.undoMu.Lock()
	s.undo = u
	s.undoMu.Unlock()
}

// PendingUndo reports the message of the deletion that can still be undone.
func (s *Sync) PendingUndo() (string, bool) {
	s.undoMu.Lock()
	defer s.undoMu.Unlock()
	if s.undo == nil || s.now().After(s.undo.expires) {
		return "", false
	}
	return s.undo.message, true
}

// Undo puts the last deleted record back at its original index.
func (s *Sync) Undo(ctx context.Context) error {
	s.undoMu.Lock()
	u := s.undo
	s.undo = nil
	s.undoMu.Unlock()

	if u == nil || s.now().After(u.expires) {
		return ErrNothingToUndo
	}
	return u.restore(ctx)
}

// DismissUndo drops the pending deletion.
func (s *Sync) DismissUndo() {
	s.setUndo(nil)
}

func indexOf[T models.Record](items []T, id int64) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

func removeByID[T models.Record](items []T, id int64) (remaining []T, removed T, idx int, ok bool) {
	idx = indexOf(items, id)
	if idx < 0 {
		return items, removed, -1, false
	}
	remaining = make([]T, 0, len(items)-1)
	remaining = append(remaining, items[:idx]...)
	remaining = append(remaining, items[idx+1:]...)
	return remaining, items[idx], idx, true
}

func insertAt[T any](items []T, idx int, item T) []T {
	if idx < 0 {
		idx = 0
	}
	if idx > len(items) {
		idx = len(items)
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, item)
	return append(out, items[idx:]...)
}

// NextID derives a record id from the clock, bumped past any existing id.
func NextID(now time.Time, existing []int64) int64 {
	id := now.UnixMilli()
	for _, e := range existing {
		if e >= id {
			id = e + 1
		}
	}
	return id
}

func decodeJSON[T any](raw []byte) (T, error) {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return item, nil
}

// decodeTestimonial accepts the rating as a number or as free text and
// clamps it into [1,5].
func decodeTestimonial(raw []byte) (models.Testimonial, error) {
	var in struct {
		Quote  string      `json:"quote"`
		Author string      `json:"author"`
		Rating interface{} `json:"rating"`
		Avatar string      `json:"avatar"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.Testimonial{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	rating := ""
	if in.Rating != nil {
		rating = fmt.Sprint(in.Rating)
	}
	return models.Testimonial{
		Quote:  in.Quote,
		Author: in.Author,
		Rating: models.ClampRating(rating),
		Avatar: in.Avatar,
	}, nil
}
