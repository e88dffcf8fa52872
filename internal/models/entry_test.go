package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *Entry {
	return &Entry{
		Room:           "B204",
		Number:         42,
		Domain:         "CORP",
		Brand:          "Dell",
		Model:          "OptiPlex 7090",
		Serial:         "8HX2KM3",
		WindowsVersion: "10",
		WindowsBuild:   "19045",
		WindowsRelease: "22H2",
		CPU:            "Intel Core i5-10500",
		ClockSpeed:     3100,
		CPUCores:       6,
		RAM:            16,
		Disk:           476.9,
	}
}

func TestFieldByName(t *testing.T) {
	for _, f := range Fields() {
		got, ok := FieldByName(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}

	_, ok := FieldByName("id")
	assert.False(t, ok)
	_, ok = FieldByName("Room")
	assert.False(t, ok, "lookup is case sensitive")
}

func TestFieldKinds(t *testing.T) {
	assert.Len(t, Fields(), 14)
	assert.Equal(t, KindFloat, FieldDisk.Kind())
	assert.Equal(t, KindInteger, FieldNumber.Kind())
	assert.Equal(t, 8, FieldWindowsVersion.MaxLen())
	assert.Equal(t, "windows_version", FieldWindowsVersion.Column())
	assert.Equal(t, "unknown", Field(200).String())
}

func TestSetValueRejectsWrongType(t *testing.T) {
	var e Entry
	assert.Error(t, e.SetValue(FieldRoom, int64(1)))
	assert.Error(t, e.SetValue(FieldNumber, "1"))
	assert.Error(t, e.SetValue(FieldDisk, int64(1)))
	require.NoError(t, e.SetValue(FieldDisk, 1.5))
	assert.Equal(t, 1.5, e.Disk)
}

func TestDiff(t *testing.T) {
	old := sampleEntry()
	next := sampleEntry()
	assert.Empty(t, old.Diff(next))

	next.Room = "C101"
	next.Disk = 953.8
	changes := old.Diff(next)
	require.Len(t, changes, 2)
	assert.Equal(t, "`room` was updated from `B204` to `C101`.", changes[0].String())
	assert.Equal(t, "`disk` was updated from `476.9` to `953.8`.", changes[1].String())
}

func TestCopyFields(t *testing.T) {
	dst := &Entry{ID: 7}
	dst.CopyFields(sampleEntry())
	assert.Equal(t, int64(7), dst.ID)
	assert.Empty(t, dst.Diff(sampleEntry()))
}

func TestRedacted(t *testing.T) {
	u := &User{ID: 1, Username: "abc", PasswordHash: "$2a$10$hash"}
	r := u.Redacted()
	assert.Empty(t, r.PasswordHash)
	assert.Equal(t, "abc", r.Username)
}
