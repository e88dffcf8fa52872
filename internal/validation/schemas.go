package validation

import (
	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
)

var entryKeys = func() []string {
	keys := make([]string, 0, len(models.Fields()))
	for _, f := range models.Fields() {
		keys = append(keys, f.String())
	}
	return keys
}()

// DecodeEntry validates a create-or-update body carrying every inventory field
func DecodeEntry(body []byte) (*models.Entry, error) {
	obj, err := DecodeObject(body, "")
	if err != nil {
		return nil, err
	}
	entry := &models.Entry{}
	for _, f := range models.Fields() {
		path := obj.Path(f.String())
		raw, ok := obj.Get(f.String())
		if !ok {
			return nil, apperr.Validation(path, path+" is required")
		}
		v, err := DecodeValue(f, raw, path)
		if err != nil {
			return nil, err
		}
		if err := entry.SetValue(f, v); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	if err := obj.Only(entryKeys...); err != nil {
		return nil, err
	}
	return entry, nil
}

// DecodeEntryText validates the textual values of the listed fields, in
// order, into a partially filled entry. Missing or blank values are reported
// as required.
func DecodeEntryText(values map[models.Field]string, fields []models.Field) (*models.Entry, error) {
	entry := &models.Entry{}
	for _, f := range fields {
		path := f.String()
		text, ok := values[f]
		if !ok {
			return nil, apperr.Validation(path, path+" is required")
		}
		v, err := ParseText(f, text, path)
		if err != nil {
			return nil, err
		}
		if err := entry.SetValue(f, v); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return entry, nil
}

// DecodeRegister validates a registration body
func DecodeRegister(body []byte) (*models.RegisterRequest, error) {
	obj, err := DecodeObject(body, "")
	if err != nil {
		return nil, err
	}
	var req models.RegisterRequest
	if req.Username, err = obj.String("username"); err != nil {
		return nil, err
	}
	if req.Name, err = obj.String("name"); err != nil {
		return nil, err
	}
	if req.Password, err = obj.String("password"); err != nil {
		return nil, err
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	if err := obj.Only("username", "name", "password"); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeLogin validates a login body
func DecodeLogin(body []byte) (*models.LoginRequest, error) {
	obj, err := DecodeObject(body, "")
	if err != nil {
		return nil, err
	}
	var req models.LoginRequest
	if req.Username, err = obj.String("username"); err != nil {
		return nil, err
	}
	if req.Password, err = obj.String("password"); err != nil {
		return nil, err
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	if err := obj.Only("username", "password"); err != nil {
		return nil, err
	}
	return &req, nil
}
