package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hostelgrub/api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDoc() *store.Document {
	return store.NewDocument(
		[]store.MenuItem{{ID: "m1", Name: "Classic Masala Maggi", Category: "Maggi", Price: 45, InStock: true}},
		store.AdminAccount{ID: "admin-1", PinHash: "hash"},
		1001,
	)
}

func newFileStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "db.json")
	s := store.New(store.NewFileBackend(path))
	require.NoError(t, s.Init(context.Background(), seedDoc()))
	return s, path
}

func TestFileBackend_InitCreatesDocument(t *testing.T) {
	s, path := newFileStore(t)

	_, err := os.Stat(path)
	require.NoError(t, err)

	doc, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Menu, 1)
	assert.Equal(t, 1001, doc.Meta.NextOrderID)
	assert.NotNil(t, doc.Orders)
	assert.NotNil(t, doc.Sessions)
	assert.NotNil(t, doc.Students)
	require.Len(t, doc.Admins, 1)
	assert.Equal(t, "admin-1", doc.Admin().ID)
}

func TestFileBackend_InitDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	s, path := newFileStore(t)

	require.NoError(t, s.Update(ctx, func(d *store.Document) error {
		d.Meta.NextOrderID = 2000
		return nil
	}))

	again := store.New(store.NewFileBackend(path))
	require.NoError(t, again.Init(ctx, seedDoc()))

	doc, err := again.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2000, doc.Meta.NextOrderID)
}

func TestFileBackend_LoadBeforeInit(t *testing.T) {
	s := store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "missing.json")))

	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, store.ErrNotInitialized)
}

func TestFileBackend_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.New(store.NewFileBackend(path)).Snapshot(context.Background())
	assert.Error(t, err)
}

func TestStore_UpdatePersistsOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Update(ctx, func(d *store.Document) error {
		d.Orders = append(d.Orders, store.Order{
			ID:        1001,
			Status:    "pending",
			CreatedAt: created,
			Items:     []store.OrderLine{{ItemID: "m1", Name: "Classic Masala Maggi", Price: 45, Quantity: 2, LineTotal: 90}},
			Total:     90,
		})
		return nil
	}))

	doc, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, 90, doc.Orders[0].Total)
	assert.True(t, doc.Orders[0].CreatedAt.Equal(created))
	assert.Equal(t, 0, doc.FindOrder(1001))
	assert.Equal(t, -1, doc.FindOrder(7))
}

func TestStore_UpdateErrorDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	boom := errors.New("boom")

	err := s.Update(ctx, func(d *store.Document) error {
		d.Meta.NextOrderID = 9999
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1001, doc.Meta.NextOrderID)
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, func(d *store.Document) error {
				id := d.Meta.NextOrderID
				d.Meta.NextOrderID++
				d.Orders = append(d.Orders, store.Order{ID: id})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1001+writers, doc.Meta.NextOrderID)
	require.Len(t, doc.Orders, writers)

	seen := make(map[int]bool)
	for _, o := range doc.Orders {
		assert.False(t, seen[o.ID], "duplicate order id %d", o.ID)
		seen[o.ID] = true
	}
}

// txBackend records whether the store delegated to its own Update.
type txBackend struct {
	doc     *store.Document
	updates int
}

func (b *txBackend) Init(_ context.Context, seed *store.Document) error {
	if b.doc == nil {
		b.doc = seed
	}
	return nil
}
func (b *txBackend) Load(_ context.Context) (*store.Document, error) { return b.doc, nil }
func (b *txBackend) Save(_ context.Context, d *store.Document) error {
	panic("Save should not be called for a Transactor")
}
func (b *txBackend) Update(_ context.Context, fn func(*store.Document) error) error {
	b.updates++
	return fn(b.doc)
}

func TestStore_DelegatesToTransactor(t *testing.T) {
	ctx := context.Background()
	b := &txBackend{}
	s := store.New(b)
	require.NoError(t, s.Init(ctx, seedDoc()))

	require.NoError(t, s.Update(ctx, func(d *store.Document) error {
		d.Meta.NextOrderID++
		return nil
	}))

	assert.Equal(t, 1, b.updates)
	assert.Equal(t, 1002, b.doc.Meta.NextOrderID)
}

func TestDocument_StudentIndexAndLookups(t *testing.T) {
	d := seedDoc()
	d.Students = []store.Student{
		{ID: "stu-1", Email: "a@x.com"},
		{ID: "stu-2", Email: "b@x.com"},
	}
	d.Sessions = []store.Session{{Token: "t1", Role: "student", UserID: "stu-1"}}

	idx := d.StudentIndex()
	assert.Equal(t, 1, idx["b@x.com"])
	assert.Equal(t, "stu-2", d.FindStudentByID("stu-2").ID)
	assert.Nil(t, d.FindStudentByID("nope"))
	assert.NotNil(t, d.FindSession("t1", "student"))
	assert.Nil(t, d.FindSession("t1", "admin"))
}

func TestOpen_WithoutDatabaseURLUsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	backend, closeFn, err := store.Open(context.Background(), "", path)
	require.NoError(t, err)
	defer closeFn()

	fb, ok := backend.(*store.FileBackend)
	require.True(t, ok)
	assert.Equal(t, path, fb.Path())
}
