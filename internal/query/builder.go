package query

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"computer-inventory-api/internal/models"
)

// SortKey names a sortable column: the id, one of the timestamps or any
// inventory field.
type SortKey struct {
	name   string
	column string
}

func (k SortKey) String() string { return k.name }

// Column returns the storage column sorted on
func (k SortKey) Column() string { return k.column }

var (
	SortByID        = SortKey{name: "id", column: "id"}
	SortByCreatedAt = SortKey{name: "createdAt", column: "created_at"}
	SortByUpdatedAt = SortKey{name: "updatedAt", column: "updated_at"}
)

// allowedSort is the sort whitelist, in the order listed in error messages
var allowedSort = func() []SortKey {
	keys := []SortKey{SortByID, SortByCreatedAt, SortByUpdatedAt}
	for _, f := range models.Fields() {
		keys = append(keys, SortKey{name: f.String(), column: f.Column()})
	}
	return keys
}()

// SortKeyByName resolves a client-facing sort key
func SortKeyByName(name string) (SortKey, bool) {
	for _, k := range allowedSort {
		if k.name == name {
			return k, true
		}
	}
	return SortKey{}, false
}

func sortKeyNames() []string {
	names := make([]string, len(allowedSort))
	for i, k := range allowedSort {
		names[i] = k.name
	}
	return names
}

// entryColumns is the select list matching the db tags of models.Entry
var entryColumns = func() string {
	cols := []string{"id"}
	for _, f := range models.Fields() {
		cols = append(cols, f.Column())
	}
	cols = append(cols, "created_at", "updated_at")
	for i, c := range cols {
		cols[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(cols, ", ")
}()

// EntryColumns returns the quoted select list for inventory entries
func EntryColumns() string { return entryColumns }

// Query is a rendered statement with ? placeholders and its bound arguments
type Query struct {
	SQL  string
	Args []any
}

// Build renders spec as a SELECT over the inventory table.
// Identifiers only ever come from the whitelist; values are always bound.
func Build(spec Spec) Query {
	clauses := []string{pq.QuoteIdentifier("id") + " > ?"}
	args := []any{spec.After}

	for _, t := range spec.Terms {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", pq.QuoteIdentifier(t.Field.Column()), comparison(t.Op)))
		args = append(args, t.Value)
	}

	sqlStr := fmt.Sprintf("SELECT %s FROM %s WHERE %s", entryColumns, models.EntryTable, strings.Join(clauses, " AND "))
	sqlStr += buildOrderBy(spec.Sort)
	sqlStr += fmt.Sprintf(" LIMIT %d", PageSize)

	return Query{SQL: sqlStr, Args: args}
}

// comparisons maps each operator to its SQL comparison
var comparisons = map[Operator]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

func comparison(op Operator) string {
	if c, ok := comparisons[op]; ok {
		return c
	}
	// ParseSpec never produces other operators
	return "="
}

// buildOrderBy returns " ORDER BY ..." with id as the final tie-breaker
func buildOrderBy(s *Sort) string {
	id := pq.QuoteIdentifier("id")
	if s == nil {
		return " ORDER BY " + id + " ASC"
	}
	dir := Asc
	if s.Direction == Desc {
		dir = Desc
	}
	col := pq.QuoteIdentifier(s.Key.Column())
	if s.Key == SortByID {
		return " ORDER BY " + col + " " + string(dir)
	}
	return " ORDER BY " + col + " " + string(dir) + ", " + id + " ASC"
}
