package validation

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
)

// maxSafeInteger bounds integers that survive a float64 round trip
const maxSafeInteger = 1<<53 - 1

// stringRules holds the validator tag for each string field
var stringRules = func() map[models.Field]string {
	rules := make(map[models.Field]string)
	for _, f := range models.Fields() {
		if f.Kind() == models.KindString {
			rules[f] = fmt.Sprintf("min=1,max=%d", f.MaxLen())
		}
	}
	return rules
}()

// DecodeValue types a raw JSON value for field f and checks its constraint.
// The result is a string, int64 or float64 matching the field kind.
func DecodeValue(f models.Field, raw json.RawMessage, path string) (any, error) {
	if f.Kind() == models.KindString {
		var s string
		if !isString(raw) || json.Unmarshal(raw, &s) != nil {
			return nil, apperr.Validation(path, path+" must be a string")
		}
		return checkString(f, s, path)
	}
	if !isNumber(raw) {
		return nil, apperr.Validation(path, path+" must be a number")
	}
	return parseNumber(f.Kind(), string(bytes.TrimSpace(raw)), path)
}

// ParseText converts the textual form of a field value (as found in QR
// payloads and spreadsheets) and checks its constraint.
func ParseText(f models.Field, s, path string) (any, error) {
	if f.Kind() == models.KindString {
		return checkString(f, s, path)
	}
	return parseNumber(f.Kind(), strings.TrimSpace(s), path)
}

// ParseID parses a positive integer identifier such as a URL parameter
func ParseID(s, path string) (int64, error) {
	v, err := parseNumber(models.KindInteger, strings.TrimSpace(s), path)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// DecodeID is ParseID for a raw JSON value
func DecodeID(raw json.RawMessage, path string) (int64, error) {
	if !isNumber(raw) {
		return 0, apperr.Validation(path, path+" must be a number")
	}
	return ParseID(string(bytes.TrimSpace(raw)), path)
}

func checkString(f models.Field, s, path string) (any, error) {
	if err := ValidateVar(path, s, stringRules[f]); err != nil {
		return nil, err
	}
	return s, nil
}

func parseNumber(kind models.Kind, s, path string) (any, error) {
	switch kind {
	case models.KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			x, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, apperr.Validation(path, path+" must be a number")
			}
			if x != math.Trunc(x) || math.Abs(x) > maxSafeInteger {
				return nil, apperr.Validation(path, path+" must be an integer")
			}
			n = int64(x)
		}
		if err := ValidateVar(path, n, "gt=0"); err != nil {
			return nil, err
		}
		return n, nil
	case models.KindFloat:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, apperr.Validation(path, path+" must be a number")
		}
		if err := ValidateVar(path, x, "gt=0"); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, apperr.Internal(fmt.Errorf("parse number: unsupported kind %d", kind))
	}
}
