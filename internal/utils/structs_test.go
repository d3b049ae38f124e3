package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Skipped  string `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	columns := StructTagValues(&taggedRow{})
	assert.Equal(t, []string{"id", "name"}, columns)
}

func TestStructToMap(t *testing.T) {
	row := taggedRow{ID: "abc", Name: "Adaeze", Skipped: "nope", Untagged: "nope", hidden: "nope"}

	m := StructToMap(row)
	require.Len(t, m, 2)
	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, "Adaeze", m["name"])
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "context"))

	base := errors.New("boom")
	wrapped := ErrorWrapOrNil(base, "failed to save")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "failed to save: boom", wrapped.Error())

	assert.Equal(t, base, ErrorWrapOrNil(base, ""))
}

func TestPrefixSliceOfStrings(t *testing.T) {
	columns := PrefixSliceOfStrings("dn", []string{"id", "status", "created_at"})
	assert.Equal(t, []string{"dn.id", "dn.status", "dn.created_at"}, columns)
}

func TestStringPtrOrNil(t *testing.T) {
	assert.Nil(t, StringPtrOrNil(""))

	p := StringPtrOrNil("hello")
	require.NotNil(t, p)
	assert.Equal(t, "hello", *p)
}
