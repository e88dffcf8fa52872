package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
)

func TestParseSpecEmpty(t *testing.T) {
	spec, err := ParseSpec([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, spec.Terms)
	assert.Nil(t, spec.Sort)
	assert.Equal(t, int64(0), spec.After)

	q := Build(spec)
	assert.Equal(t, []any{int64(0)}, q.Args)
	assert.True(t, strings.HasSuffix(q.SQL, `WHERE "id" > ? ORDER BY "id" ASC LIMIT 25`), q.SQL)
}

func TestParseSpecTermsInFieldOrder(t *testing.T) {
	spec, err := ParseSpec([]byte(`{
		"search": {
			"disk": {"value": 100.5, "operator": ">="},
			"room": {"value": "B204"},
			"ram": {"value": 8, "operator": ">"}
		},
		"after": 10
	}`))
	require.NoError(t, err)
	require.Len(t, spec.Terms, 3)
	assert.Equal(t, Term{Field: models.FieldRoom, Op: OpEq, Value: "B204"}, spec.Terms[0])
	assert.Equal(t, Term{Field: models.FieldRAM, Op: OpGt, Value: int64(8)}, spec.Terms[1])
	assert.Equal(t, Term{Field: models.FieldDisk, Op: OpGte, Value: 100.5}, spec.Terms[2])

	q := Build(spec)
	assert.Contains(t, q.SQL, `WHERE "id" > ? AND "room" = ? AND "ram" > ? AND "disk" >= ?`)
	assert.Equal(t, []any{int64(10), "B204", int64(8), 100.5}, q.Args)
}

func TestExplicitEqualsMatchesImplicit(t *testing.T) {
	implicit, err := ParseSpec([]byte(`{"search":{"brand":{"value":"Dell"}}}`))
	require.NoError(t, err)
	explicit, err := ParseSpec([]byte(`{"search":{"brand":{"value":"Dell","operator":"="}}}`))
	require.NoError(t, err)
	assert.Equal(t, Build(implicit), Build(explicit))
}

func TestBuildSort(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"sort":{"key":"clockSpeed","direction":"DESC"}}`))
	require.NoError(t, err)
	assert.Contains(t, Build(spec).SQL, `ORDER BY "clock_speed" DESC, "id" ASC LIMIT 25`)

	spec, err = ParseSpec([]byte(`{"sort":{"key":"id","direction":"DESC"}}`))
	require.NoError(t, err)
	assert.Contains(t, Build(spec).SQL, `ORDER BY "id" DESC LIMIT 25`)

	spec, err = ParseSpec([]byte(`{"sort":{"key":"createdAt"}}`))
	require.NoError(t, err)
	require.NotNil(t, spec.Sort)
	assert.Equal(t, Asc, spec.Sort.Direction)
	assert.Contains(t, Build(spec).SQL, `ORDER BY "created_at" ASC, "id" ASC`)
}

func TestBuildSelectsEntryColumns(t *testing.T) {
	q := Build(Spec{})
	assert.True(t, strings.HasPrefix(q.SQL, "SELECT "+EntryColumns()+" FROM inventory_entries"))
	assert.Contains(t, EntryColumns(), `"windows_version"`)
	assert.Contains(t, EntryColumns(), `"updated_at"`)
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		path    string
		message string
	}{
		{"not an object", `[]`, "", "value must be an object"},
		{"unknown root key", `{"limit":5}`, "limit", "limit is not allowed"},
		{"after not number", `{"after":"a"}`, "after", "after must be a number"},
		{"after fraction", `{"after":1.1}`, "after", "after must be an integer"},
		{"after zero", `{"after":0}`, "after", "after must be a positive number"},
		{"search not object", `{"search":1}`, "search", "search must be an object"},
		{"unknown field", `{"search":{"owner":{"value":"x"}}}`, "search.owner", "search.owner is not allowed"},
		{"term not object", `{"search":{"room":"x"}}`, "search.room", "search.room must be an object"},
		{"missing value", `{"search":{"room":{}}}`, "search.room.value", "search.room.value is required"},
		{"string value wrong type", `{"search":{"room":{"value":1}}}`, "search.room.value", "search.room.value must be a string"},
		{"string value too long", `{"search":{"serial":{"value":"` + strings.Repeat("s", 17) + `"}}}`, "search.serial.value",
			"search.serial.value length must be less than or equal to 16 characters long"},
		{"int value fraction", `{"search":{"ram":{"value":1.5}}}`, "search.ram.value", "search.ram.value must be an integer"},
		{"int value negative", `{"search":{"cpuCores":{"value":-2}}}`, "search.cpuCores.value", "search.cpuCores.value must be a positive number"},
		{"bad operator", `{"search":{"ram":{"value":1,"operator":"!="}}}`, "search.ram.operator",
			"search.ram.operator must be one of [=, >, >=, <, <=]"},
		{"operator not string", `{"search":{"ram":{"value":1,"operator":1}}}`, "search.ram.operator", "search.ram.operator must be a string"},
		{"extra term key", `{"search":{"ram":{"value":1,"not":true}}}`, "search.ram.not", "search.ram.not is not allowed"},
		{"sort missing key", `{"sort":{}}`, "sort.key", "sort.key is required"},
		{"sort unknown key", `{"sort":{"key":"password"}}`, "sort.key", "sort.key must be one of [" + strings.Join(sortKeyNames(), ", ") + "]"},
		{"sort bad direction", `{"sort":{"key":"id","direction":"UP"}}`, "sort.direction", "sort.direction must be one of [ASC, DESC]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.body))
			require.Error(t, err)
			e := apperr.As(err)
			require.Equal(t, apperr.KindValidation, e.Kind, err.Error())
			assert.Equal(t, tt.path, e.Path)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestSortKeyByName(t *testing.T) {
	k, ok := SortKeyByName("windowsBuild")
	require.True(t, ok)
	assert.Equal(t, "windows_build", k.Column())
	_, ok = SortKeyByName("windows_build")
	assert.False(t, ok)
}
