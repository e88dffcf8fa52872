package models

import (
	"fmt"
	"strconv"
	"time"
)

// EntryTable is the table holding inventory entries
const EntryTable = "inventory_entries"

// Entry represents one tracked computer asset
type Entry struct {
	ID             int64     `json:"id" db:"id"`
	Room           string    `json:"room" db:"room"`
	Number         int64     `json:"number" db:"number"`
	Domain         string    `json:"domain" db:"domain"`
	Brand          string    `json:"brand" db:"brand"`
	Model          string    `json:"model" db:"model"`
	Serial         string    `json:"serial" db:"serial"`
	WindowsVersion string    `json:"windowsVersion" db:"windows_version"`
	WindowsBuild   string    `json:"windowsBuild" db:"windows_build"`
	WindowsRelease string    `json:"windowsRelease" db:"windows_release"`
	CPU            string    `json:"cpu" db:"cpu"`
	ClockSpeed     int64     `json:"clockSpeed" db:"clock_speed"`
	CPUCores       int64     `json:"cpuCores" db:"cpu_cores"`
	RAM            int64     `json:"ram" db:"ram"`
	Disk           float64   `json:"disk" db:"disk"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Value returns the value of f held by the entry.
// Strings come back as string, integer fields as int64 and disk as float64.
func (e *Entry) Value(f Field) any {
	switch f {
	case FieldRoom:
		return e.Room
	case FieldNumber:
		return e.Number
	case FieldDomain:
		return e.Domain
	case FieldBrand:
		return e.Brand
	case FieldModel:
		return e.Model
	case FieldSerial:
		return e.Serial
	case FieldWindowsVersion:
		return e.WindowsVersion
	case FieldWindowsBuild:
		return e.WindowsBuild
	case FieldWindowsRelease:
		return e.WindowsRelease
	case FieldCPU:
		return e.CPU
	case FieldClockSpeed:
		return e.ClockSpeed
	case FieldCPUCores:
		return e.CPUCores
	case FieldRAM:
		return e.RAM
	case FieldDisk:
		return e.Disk
	}
	return nil
}

// SetValue stores v into field f. v must have the Go type matching the
// field kind (see Value); anything else is reported as an error.
func (e *Entry) SetValue(f Field, v any) error {
	switch f.Kind() {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %s expects string, got %T", f, v)
		}
		switch f {
		case FieldRoom:
			e.Room = s
		case FieldDomain:
			e.Domain = s
		case FieldBrand:
			e.Brand = s
		case FieldModel:
			e.Model = s
		case FieldSerial:
			e.Serial = s
		case FieldWindowsVersion:
			e.WindowsVersion = s
		case FieldWindowsBuild:
			e.WindowsBuild = s
		case FieldWindowsRelease:
			e.WindowsRelease = s
		case FieldCPU:
			e.CPU = s
		}
	case KindInteger:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("field %s expects int64, got %T", f, v)
		}
		switch f {
		case FieldNumber:
			e.Number = n
		case FieldClockSpeed:
			e.ClockSpeed = n
		case FieldCPUCores:
			e.CPUCores = n
		case FieldRAM:
			e.RAM = n
		}
	case KindFloat:
		d, ok := v.(float64)
		if !ok {
			return fmt.Errorf("field %s expects float64, got %T", f, v)
		}
		e.Disk = d
	default:
		return fmt.Errorf("unknown field %d", f)
	}
	return nil
}

// Change describes one field whose value differs between two entries
type Change struct {
	Field Field
	Old   any
	New   any
}

func (c Change) String() string {
	return fmt.Sprintf("`%s` was updated from `%s` to `%s`.", c.Field, FormatValue(c.Old), FormatValue(c.New))
}

// Diff compares every inventory field of e against next, in the fixed
// field order, and returns the fields whose values differ.
func (e *Entry) Diff(next *Entry) []Change {
	var changes []Change
	for _, f := range Fields() {
		old, nv := e.Value(f), next.Value(f)
		if old != nv {
			changes = append(changes, Change{Field: f, Old: old, New: nv})
		}
	}
	return changes
}

// CopyFields overwrites the inventory fields of e with those of src,
// leaving identity and timestamps alone.
func (e *Entry) CopyFields(src *Entry) {
	for _, f := range Fields() {
		// SetValue cannot fail here: Value always yields the field's own type.
		_ = e.SetValue(f, src.Value(f))
	}
}

// FormatValue renders a field value the way it appears in change messages
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
