package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternRoundTrip(t *testing.T) {
	tbl := NewTable()
	k1 := tbl.Make("foo")
	k2 := tbl.Make("foo")
	k3 := tbl.Make("bar")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, "foo", tbl.Text(k1))
	assert.Equal(t, "bar", tbl.Text(k3))
}

func TestSearchMiss(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, None, tbl.Search("nope"))
	tbl.Make("nope")
	assert.NotEqual(t, None, tbl.Search("nope"))
}

func TestTextOwnership(t *testing.T) {
	tbl := NewTable()
	buf := []byte("mutable")
	k := tbl.Make(string(buf))
	copy(buf, "XXXXXXX")
	assert.Equal(t, "mutable", tbl.Text(k))
}
