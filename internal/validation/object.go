package validation

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"

	"computer-inventory-api/internal/apperr"
)

// rootLabel names the request body itself in messages
const rootLabel = "value"

// Object is a decoded JSON object whose members have not been typed yet
type Object struct {
	path    string
	members map[string]json.RawMessage
}

// DecodeObject decodes data as a JSON object located at path ("" for the
// request body). An empty request body is treated as an empty object.
func DecodeObject(data []byte, path string) (*Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 && path == "" {
		return &Object{members: map[string]json.RawMessage{}}, nil
	}
	label := path
	if label == "" {
		label = rootLabel
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, apperr.Validation(path, label+" must be an object")
	}
	members := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, apperr.Validation(path, label+" must be an object")
	}
	return &Object{path: path, members: members}, nil
}

// Path returns the dotted path of member key
func (o *Object) Path(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

// Get returns the raw member. A JSON null counts as absent.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	raw, ok := o.members[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// Keys returns the member names in sorted order
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.members))
	for k := range o.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *Object) Len() int { return len(o.members) }

// Only rejects any member whose name is not listed
func (o *Object) Only(allowed ...string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	for _, k := range o.Keys() {
		if _, ok := set[k]; !ok {
			return apperr.Validation(o.Path(k), o.Path(k)+" is not allowed")
		}
	}
	return nil
}

// Object decodes member key as a nested object. ok is false when absent.
func (o *Object) Object(key string) (obj *Object, ok bool, err error) {
	raw, present := o.Get(key)
	if !present {
		return nil, false, nil
	}
	obj, err = DecodeObject(raw, o.Path(key))
	if err != nil {
		return nil, true, err
	}
	return obj, true, nil
}

// String decodes member key as a string. nil is returned when absent.
func (o *Object) String(key string) (*string, error) {
	raw, ok := o.Get(key)
	if !ok {
		return nil, nil
	}
	var s string
	if !isString(raw) || json.Unmarshal(raw, &s) != nil {
		return nil, apperr.Validation(o.Path(key), o.Path(key)+" must be a string")
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'))
}
