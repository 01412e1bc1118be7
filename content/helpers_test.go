package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"odontologia/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)

	db.AutoMigrate(&models.SiteDocument{})
	return db
}

func startTestSync(t *testing.T, store Store) *Sync {
	s := NewSync(store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		s.Close()
		cancel()
	})

	require.NoError(t, s.Start(ctx))
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, s.WaitReady(waitCtx))
	return s
}

func mustSet(t *testing.T, store Store, data models.SiteData) {
	_, err := store.Set(context.Background(), data)
	require.NoError(t, err)
}

func mustGet(t *testing.T, store Store) models.SiteData {
	snap, err := store.Get(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Exists)
	return snap.Data
}

func galleryOf(ids ...int64) []models.GalleryImage {
	images := make([]models.GalleryImage, len(ids))
	for i, id := range ids {
		images[i] = models.GalleryImage{ID: id, Src: "https://example.com/img.jpg", Caption: "legenda"}
	}
	return images
}

func galleryIDs(images []models.GalleryImage) []int64 {
	ids := make([]int64, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}

// failingStore accepts subscriptions but rejects every write.
type failingStore struct {
	data models.SiteData
}

var errWriteRejected = errors.New("write rejected")

func (f *failingStore) Get(ctx context.Context) (Snapshot, error) {
	return Snapshot{Exists: true, Data: f.data, Version: 1}, nil
}

func (f *failingStore) Set(ctx context.Context, data models.SiteData) (int64, error) {
	return 0, errWriteRejected
}

func (f *failingStore) Update(ctx context.Context, updates []Update) (int64, error) {
	return 0, errWriteRejected
}

func (f *failingStore) Listen(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	go onSnapshot(Snapshot{Exists: true, Data: f.data, Version: 1})
	return func() {}, nil
}

// gatedStore holds every Update until release is closed and lets the test
// push snapshots by hand.
type gatedStore struct {
	mu         sync.Mutex
	data       models.SiteData
	version    int64
	onSnapshot func(Snapshot)
	gets       int

	entered chan struct{}
	release chan struct{}
}

func newGatedStore(data models.SiteData) *gatedStore {
	return &gatedStore{
		data:    data,
		version: 1,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) snapshot() Snapshot {
	return Snapshot{Exists: true, Data: g.data.Clone(), Version: g.version}
}

func (g *gatedStore) Get(ctx context.Context) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gets++
	return g.snapshot(), nil
}

func (g *gatedStore) Set(ctx context.Context, data models.SiteData) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data = data
	g.version++
	return g.version, nil
}

func (g *gatedStore) Update(ctx context.Context, updates []Update) (int64, error) {
	g.entered <- struct{}{}
	<-g.release

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, u := range updates {
		if len(u.Path) == 1 && u.Path[0] == "theme" {
			g.data.Theme = models.Theme(u.Value.(string))
		}
	}
	g.version++
	return g.version, nil
}

func (g *gatedStore) Listen(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	g.mu.Lock()
	g.onSnapshot = onSnapshot
	first := g.snapshot()
	g.mu.Unlock()
	go onSnapshot(first)
	return func() {}, nil
}

// push delivers snap as if the listener had received it.
func (g *gatedStore) push(snap Snapshot) {
	g.mu.Lock()
	fn := g.onSnapshot
	g.mu.Unlock()
	fn(snap)
}

func (g *gatedStore) getCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gets
}
