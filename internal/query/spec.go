// Package query turns client search requests for inventory entries into
// parameterised SQL.
//
// A request is first validated against the field whitelist (ParseSpec) and
// then rendered (Build). All filter terms are combined with AND together with
// the id cursor; results are capped at PageSize rows.
package query

import (
	"strings"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/validation"
)

// PageSize is the fixed number of entries returned per search
const PageSize = 25

// Operator is a comparison operator accepted in search terms
type Operator string

const (
	OpEq  Operator = "="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// operators lists the accepted operators in the order they are documented
var operators = []Operator{OpEq, OpGt, OpGte, OpLt, OpLte}

// Term is a single (field, operator, value) filter
type Term struct {
	Field models.Field
	Op    Operator
	Value any
}

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort orders the page by a whitelisted key
type Sort struct {
	Key       SortKey
	Direction Direction
}

// Spec is a validated search request
type Spec struct {
	Terms []Term
	Sort  *Sort
	// After restricts results to ids greater than it; 0 means no bound.
	After int64
}

// ParseSpec validates a raw search body of the form
//
//	{"search": {"<field>": {"value": v, "operator": "="}}, "sort": {"key": k, "direction": "ASC"}, "after": n}
//
// Every member is optional. Terms are returned in canonical field order.
func ParseSpec(body []byte) (Spec, error) {
	var spec Spec

	obj, err := validation.DecodeObject(body, "")
	if err != nil {
		return spec, err
	}
	if err := obj.Only("search", "sort", "after"); err != nil {
		return spec, err
	}

	if raw, ok := obj.Get("after"); ok {
		after, err := validation.DecodeID(raw, obj.Path("after"))
		if err != nil {
			return spec, err
		}
		spec.After = after
	}

	search, ok, err := obj.Object("search")
	if err != nil {
		return spec, err
	}
	if ok {
		if spec.Terms, err = parseTerms(search); err != nil {
			return spec, err
		}
	}

	sortObj, ok, err := obj.Object("sort")
	if err != nil {
		return spec, err
	}
	if ok {
		s, err := parseSort(sortObj)
		if err != nil {
			return spec, err
		}
		spec.Sort = &s
	}

	return spec, nil
}

func parseTerms(search *validation.Object) ([]Term, error) {
	for _, name := range search.Keys() {
		if _, ok := models.FieldByName(name); !ok {
			return nil, apperr.Validation(search.Path(name), search.Path(name)+" is not allowed")
		}
	}

	var terms []Term
	for _, f := range models.Fields() {
		termObj, ok, err := search.Object(f.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		term, err := parseTerm(f, termObj)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func parseTerm(f models.Field, obj *validation.Object) (Term, error) {
	term := Term{Field: f, Op: OpEq}

	path := obj.Path("value")
	raw, ok := obj.Get("value")
	if !ok {
		return term, apperr.Validation(path, path+" is required")
	}
	v, err := validation.DecodeValue(f, raw, path)
	if err != nil {
		return term, err
	}
	term.Value = v

	op, err := obj.String("operator")
	if err != nil {
		return term, err
	}
	if op != nil {
		term.Op, err = parseOperator(*op, obj.Path("operator"))
		if err != nil {
			return term, err
		}
	}

	if err := obj.Only("value", "operator"); err != nil {
		return term, err
	}
	return term, nil
}

func parseOperator(s, path string) (Operator, error) {
	for _, op := range operators {
		if Operator(s) == op {
			return op, nil
		}
	}
	names := make([]string, len(operators))
	for i, op := range operators {
		names[i] = string(op)
	}
	return "", apperr.Validation(path, path+" must be one of ["+strings.Join(names, ", ")+"]")
}

func parseSort(obj *validation.Object) (Sort, error) {
	s := Sort{Direction: Asc}

	path := obj.Path("key")
	key, err := obj.String("key")
	if err != nil {
		return s, err
	}
	if key == nil {
		return s, apperr.Validation(path, path+" is required")
	}
	k, ok := SortKeyByName(*key)
	if !ok {
		return s, apperr.Validation(path, path+" must be one of ["+strings.Join(sortKeyNames(), ", ")+"]")
	}
	s.Key = k

	dir, err := obj.String("direction")
	if err != nil {
		return s, err
	}
	if dir != nil {
		switch Direction(*dir) {
		case Asc:
			s.Direction = Asc
		case Desc:
			s.Direction = Desc
		default:
			path := obj.Path("direction")
			return s, apperr.Validation(path, path+" must be one of [ASC, DESC]")
		}
	}

	if err := obj.Only("key", "direction"); err != nil {
		return s, err
	}
	return s, nil
}
