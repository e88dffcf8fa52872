package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/query"
	"computer-inventory-api/internal/store"
	"computer-inventory-api/internal/testutil"
)

type countingRecorder struct {
	upserts map[Outcome]int
	results []int
}

func (r *countingRecorder) ObserveUpsert(o Outcome) {
	if r.upserts == nil {
		r.upserts = map[Outcome]int{}
	}
	r.upserts[o]++
}

func (r *countingRecorder) ObserveSearch(n int) { r.results = append(r.results, n) }

func newService(t *testing.T) (*Service, *countingRecorder) {
	rec := &countingRecorder{}
	return NewService(testutil.NewSQLiteDB(t), WithRecorder(rec)), rec
}

func TestUpsertCreatesThenNoChanges(t *testing.T) {
	ctx := context.Background()
	svc, rec := newService(t)

	res, err := svc.Upsert(ctx, testutil.Entry(1))
	require.NoError(t, err)
	assert.Equal(t, Created, res.Outcome)
	assert.NotZero(t, res.Entry.ID)

	again, err := svc.Upsert(ctx, testutil.Entry(1))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, again.Outcome)
	assert.Equal(t, MsgNoChanges, again.Message())
	assert.Equal(t, res.Entry.ID, again.Entry.ID)
	assert.True(t, res.Entry.UpdatedAt.Equal(again.Entry.UpdatedAt), "record must not be touched")

	assert.Equal(t, 1, rec.upserts[Created])
	assert.Equal(t, 1, rec.upserts[Unchanged])
}

func TestUpsertUpdatesChangedField(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Upsert(ctx, testutil.Entry(9))
	require.NoError(t, err)

	next := testutil.Entry(9)
	next.Room = "C300"
	res, err := svc.Upsert(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, "`room` was updated from `B204` to `C300`.", res.Message())

	got, err := svc.Get(ctx, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "C300", got.Room)
}

func TestUpsertMessageListsFieldsInOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Upsert(ctx, testutil.Entry(3))
	require.NoError(t, err)

	next := testutil.Entry(3)
	next.Disk = 953.8
	next.Brand = "HP"
	res, err := svc.Upsert(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "`brand` was updated from `Dell` to `HP`.\n`disk` was updated from `476.9` to `953.8`.", res.Message())
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	e := apperr.As(err)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, MsgEntryNotFound, e.Message)
}

func seed(t *testing.T, svc *Service, n int) []*models.Entry {
	t.Helper()
	out := make([]*models.Entry, 0, n)
	for i := 0; i < n; i++ {
		e := testutil.Entry(int64(i + 1))
		e.Model = fmt.Sprintf("Model %02d", i)
		res, err := svc.Upsert(context.Background(), e)
		require.NoError(t, err)
		out = append(out, res.Entry)
	}
	return out
}

func TestSearchCursorOnly(t *testing.T) {
	svc, rec := newService(t)
	entries := seed(t, svc, 40)

	after := entries[4].ID
	page, err := svc.Search(context.Background(), query.Spec{After: after})
	require.NoError(t, err)
	require.Len(t, page, query.PageSize)
	for i, e := range page {
		assert.Greater(t, e.ID, after)
		if i > 0 {
			assert.Greater(t, e.ID, page[i-1].ID)
		}
	}
	assert.Equal(t, []int{query.PageSize}, rec.results)
}

func TestSearchEqualityFindsEveryEntry(t *testing.T) {
	svc, _ := newService(t)
	entries := seed(t, svc, 5)

	for _, e := range entries {
		for _, f := range models.Fields() {
			spec := query.Spec{Terms: []query.Term{{Field: f, Op: query.OpEq, Value: e.Value(f)}}}
			page, err := svc.Search(context.Background(), spec)
			require.NoError(t, err)
			ids := make([]int64, len(page))
			for i := range page {
				ids[i] = page[i].ID
			}
			assert.Contains(t, ids, e.ID, "field %s", f)
		}
	}
}

func TestSearchGreaterThan(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, 10)

	for v := int64(0); v <= 10; v++ {
		spec := query.Spec{Terms: []query.Term{{Field: models.FieldNumber, Op: query.OpGt, Value: v}}}
		page, err := svc.Search(context.Background(), spec)
		require.NoError(t, err)
		assert.Len(t, page, int(10-v))
		for _, e := range page {
			assert.Greater(t, e.Number, v)
		}
	}
}

func TestSearchTermsAreConjunctive(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, 10)

	spec, err := query.ParseSpec([]byte(`{"search":{"number":{"value":3,"operator":">="},"model":{"value":"Model 05","operator":"<="}}}`))
	require.NoError(t, err)
	page, err := svc.Search(context.Background(), spec)
	require.NoError(t, err)

	var numbers []int64
	for _, e := range page {
		numbers = append(numbers, e.Number)
	}
	assert.Equal(t, []int64{3, 4, 5, 6}, numbers)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) EntryByNumber(context.Context, int64) (*models.Entry, error) {
	return nil, f.err
}

func (f failingStore) SearchEntries(context.Context, query.Query) ([]models.Entry, error) {
	return nil, f.err
}

func TestStoreFailuresAreInternal(t *testing.T) {
	svc := NewService(failingStore{err: errors.New("disk I/O error")})

	_, err := svc.Upsert(context.Background(), testutil.Entry(1))
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))

	_, err = svc.Search(context.Background(), query.Spec{})
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}

type racingStore struct {
	Store
	winner *models.Entry
	calls  int
}

func (r *racingStore) EntryByNumber(context.Context, int64) (*models.Entry, error) {
	r.calls++
	if r.calls == 1 {
		return nil, store.ErrNotFound
	}
	w := *r.winner
	return &w, nil
}

func (r *racingStore) InsertEntry(context.Context, *models.Entry) error { return store.ErrConflict }

func (r *racingStore) UpdateEntry(_ context.Context, e *models.Entry) error {
	r.winner = e
	return nil
}

func TestUpsertFallsBackToUpdateOnConflict(t *testing.T) {
	winner := testutil.Entry(5)
	winner.ID = 77
	rs := &racingStore{winner: winner}
	svc := NewService(rs)

	next := testutil.Entry(5)
	next.RAM = 64
	res, err := svc.Upsert(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, int64(77), res.Entry.ID)
	assert.Equal(t, "`ram` was updated from `16` to `64`.", res.Message())
}
