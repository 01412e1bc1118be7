package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"odontologia/models"
)

// SQLStore keeps the site document as a single JSON row.
type SQLStore struct {
	db       *gorm.DB
	id       string
	notifier Notifier
}

func NewSQLStore(db *gorm.DB, notifier Notifier) *SQLStore {
	if notifier == nil {
		notifier = NewHub()
	}
	return &SQLStore{
		db:       db,
		id:       models.DocumentCollection + "/" + models.DocumentID,
		notifier: notifier,
	}
}

func (s *SQLStore) Get(ctx context.Context) (Snapshot, error) {
	var doc models.SiteDocument
	err := s.db.WithContext(ctx).Where("id = ?", s.id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load site document: %w", err)
	}

	var data models.SiteData
	if err := json.Unmarshal([]byte(doc.Data), &data); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode site document: %w", err)
	}
	return Snapshot{Exists: true, Data: data, Version: doc.Version}, nil
}

func (s *SQLStore) Set(ctx context.Context, data models.SiteData) (int64, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode site document: %w", err)
	}

	var version int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.SiteDocument
		if err := tx.Where("id = ?", s.id).First(&doc).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		doc.ID = s.id
		doc.Data = string(raw)
		doc.Version++
		version = doc.Version
		return tx.Save(&doc).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save site document: %w", err)
	}

	s.publish(ctx)
	return version, nil
}

func (s *SQLStore) Update(ctx context.Context, updates []Update) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.SiteDocument
		if err := tx.Where("id = ?", s.id).First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		fields := map[string]interface{}{}
		if err := json.Unmarshal([]byte(doc.Data), &fields); err != nil {
			return fmt.Errorf("failed to decode site document: %w", err)
		}
		for _, u := range updates {
			if err := setPath(fields, u.Path, u.Value); err != nil {
				return fmt.Errorf("failed to apply update %s: %w", u, err)
			}
		}

		raw, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to encode site document: %w", err)
		}
		doc.Data = string(raw)
		doc.Version++
		version = doc.Version
		return tx.Save(&doc).Error
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx)
	return version, nil
}

func (s *SQLStore) Listen(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	// subscribe before the first read so no change slips in between
	changes, err := s.notifier.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to document changes: %w", err)
	}

	go func() {
		deliver := func() bool {
			snap, err := s.Get(ctx)
			if ctx.Err() != nil {
				return false
			}
			if err != nil {
				onError(err)
				return true
			}
			onSnapshot(snap)
			return true
		}

		if !deliver() {
			return
		}
		for range changes {
			if !deliver() {
				return
			}
		}
	}()

	return cancel, nil
}

func (s *SQLStore) publish(ctx context.Context) {
	if err := s.notifier.Publish(ctx); err != nil {
		slog.Error("failed to publish document change", "error", err)
	}
}

// setPath writes value at path inside a decoded JSON object. The value is
// round-tripped through JSON so the stored shape matches what Get decodes.
func setPath(fields map[string]interface{}, path []string, value interface{}) error {
	if len(path) == 0 {
		return errors.New("empty field path")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	node := fields
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			node[key] = next
		}
		node = next
	}
	node[path[len(path)-1]] = generic
	return nil
}
