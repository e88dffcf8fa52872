package models

// Field enumerates the inventory attributes clients may write and search on.
// The declaration order is the canonical field order used for validation,
// diffing and query construction.
type Field uint8

const (
	FieldRoom Field = iota
	FieldNumber
	FieldDomain
	FieldBrand
	FieldModel
	FieldSerial
	FieldWindowsVersion
	FieldWindowsBuild
	FieldWindowsRelease
	FieldCPU
	FieldClockSpeed
	FieldCPUCores
	FieldRAM
	FieldDisk

	numFields
)

// Kind is the value type of a field
type Kind uint8

const (
	KindString Kind = iota
	// KindInteger fields hold positive integers
	KindInteger
	// KindFloat fields hold positive reals
	KindFloat
)

type fieldSpec struct {
	name   string
	column string
	kind   Kind
	maxLen int
}

var fieldSpecs = [numFields]fieldSpec{
	FieldRoom:           {name: "room", column: "room", kind: KindString, maxLen: 16},
	FieldNumber:         {name: "number", column: "number", kind: KindInteger},
	FieldDomain:         {name: "domain", column: "domain", kind: KindString, maxLen: 16},
	FieldBrand:          {name: "brand", column: "brand", kind: KindString, maxLen: 64},
	FieldModel:          {name: "model", column: "model", kind: KindString, maxLen: 64},
	FieldSerial:         {name: "serial", column: "serial", kind: KindString, maxLen: 16},
	FieldWindowsVersion: {name: "windowsVersion", column: "windows_version", kind: KindString, maxLen: 8},
	FieldWindowsBuild:   {name: "windowsBuild", column: "windows_build", kind: KindString, maxLen: 16},
	FieldWindowsRelease: {name: "windowsRelease", column: "windows_release", kind: KindString, maxLen: 16},
	FieldCPU:            {name: "cpu", column: "cpu", kind: KindString, maxLen: 64},
	FieldClockSpeed:     {name: "clockSpeed", column: "clock_speed", kind: KindInteger},
	FieldCPUCores:       {name: "cpuCores", column: "cpu_cores", kind: KindInteger},
	FieldRAM:            {name: "ram", column: "ram", kind: KindInteger},
	FieldDisk:           {name: "disk", column: "disk", kind: KindFloat},
}

var (
	allFields    []Field
	fieldsByName map[string]Field
)

func init() {
	allFields = make([]Field, 0, numFields)
	fieldsByName = make(map[string]Field, numFields)
	for f := Field(0); f < numFields; f++ {
		allFields = append(allFields, f)
		fieldsByName[fieldSpecs[f].name] = f
	}
}

// Fields returns every field in canonical order. The slice must not be modified.
func Fields() []Field { return allFields }

// FieldByName resolves a client-facing field name
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Valid reports whether f is one of the declared fields
func (f Field) Valid() bool { return f < numFields }

// String returns the client-facing (JSON) name
func (f Field) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return fieldSpecs[f].name
}

// Column returns the storage column name
func (f Field) Column() string { return fieldSpecs[f].column }

func (f Field) Kind() Kind { return fieldSpecs[f].kind }

// MaxLen is the maximum length of a string field, 0 for numeric fields
func (f Field) MaxLen() int { return fieldSpecs[f].maxLen }
