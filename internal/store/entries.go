package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/query"
)

// entryWriteColumns lists the writable inventory columns in field order
var entryWriteColumns = func() []string {
	cols := make([]string, 0, len(models.Fields()))
	for _, f := range models.Fields() {
		cols = append(cols, f.Column())
	}
	return cols
}()

var selectEntry = "SELECT " + query.EntryColumns() + " FROM " + models.EntryTable

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

func entryArgs(e *models.Entry) []any {
	args := make([]any, 0, len(models.Fields())+2)
	for _, f := range models.Fields() {
		args = append(args, e.Value(f))
	}
	return args
}

// EntryByID returns the entry with the given id or ErrNotFound
func (db *DB) EntryByID(ctx context.Context, id int64) (*models.Entry, error) {
	return db.getEntry(ctx, selectEntry+" WHERE id = ?", id)
}

// EntryByNumber returns the entry carrying the given asset number or ErrNotFound
func (db *DB) EntryByNumber(ctx context.Context, number int64) (*models.Entry, error) {
	return db.getEntry(ctx, selectEntry+" WHERE number = ?", number)
}

func (db *DB) getEntry(ctx context.Context, q string, arg any) (*models.Entry, error) {
	q = db.Q(q)
	var e models.Entry
	err := db.GetContext(ctx, &e, q, arg)
	if isNoRows(err) {
		err = ErrNotFound
	}
	logQuery(q, []any{arg}, err)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertEntry stores a new entry and fills in its id and timestamps.
// ErrConflict is returned when another entry already holds the number.
func (db *DB) InsertEntry(ctx context.Context, e *models.Entry) error {
	ts := now()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(entryWriteColumns)+2), ", ")
	q := db.Q(fmt.Sprintf(`
		INSERT INTO %s (%s, created_at, updated_at)
		VALUES (%s)
		ON CONFLICT (number) DO NOTHING
		RETURNING id`, models.EntryTable, strings.Join(entryWriteColumns, ", "), placeholders))
	args := append(entryArgs(e), ts, ts)

	var id int64
	err := db.QueryRowxContext(ctx, q, args...).Scan(&id)
	if isNoRows(err) || isUniqueViolation(err) {
		err = ErrConflict
	}
	logQuery(q, args, err)
	if err != nil {
		return err
	}

	e.ID = id
	e.CreatedAt = ts
	e.UpdatedAt = ts
	return nil
}

// UpdateEntry overwrites every inventory field of the entry with id e.ID and
// refreshes its updated_at
func (db *DB) UpdateEntry(ctx context.Context, e *models.Entry) error {
	ts := now()
	sets := make([]string, 0, len(entryWriteColumns)+1)
	for _, c := range entryWriteColumns {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "updated_at = ?")
	q := db.Q(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", models.EntryTable, strings.Join(sets, ", ")))
	args := append(entryArgs(e), ts, e.ID)

	res, err := db.ExecContext(ctx, q, args...)
	if isUniqueViolation(err) {
		err = ErrConflict
	}
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil && n == 0 {
			err = ErrNotFound
		}
	}
	logQuery(q, args, err)
	if err != nil {
		return err
	}

	e.UpdatedAt = ts
	return nil
}

// SearchEntries runs a query built by the query package
func (db *DB) SearchEntries(ctx context.Context, q query.Query) ([]models.Entry, error) {
	sqlStr := db.Q(q.SQL)
	entries := []models.Entry{}
	err := db.SelectContext(ctx, &entries, sqlStr, q.Args...)
	logQuery(sqlStr, q.Args, err)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
