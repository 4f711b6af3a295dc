package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newKey(s string) *ObjString {
	return &ObjString{chars: s, hash: hashString(s)}
}

func TestTableSetGetDelete(t *testing.T) {
	var tbl Table

	foo := newKey("foo")
	isNew := tbl.Set(foo, Number(1))
	require.True(t, isNew)
	require.Equal(t, 1, tbl.Len())

	v, ok := tbl.Get(foo)
	require.True(t, ok)
	require.Equal(t, Number(1), v)

	isNew = tbl.Set(foo, Number(2))
	require.False(t, isNew, "overwriting an existing key reports false")
	v, ok = tbl.Get(foo)
	require.True(t, ok)
	require.Equal(t, Number(2), v)

	require.True(t, tbl.Delete(foo))
	_, ok = tbl.Get(foo)
	require.False(t, ok)
	require.Equal(t, 0, tbl.Len())
}

func TestTableGetMissing(t *testing.T) {
	var tbl Table
	_, ok := tbl.Get(newKey("missing"))
	require.False(t, ok)
}

func TestTableDeleteMissing(t *testing.T) {
	var tbl Table
	require.False(t, tbl.Delete(newKey("missing")))
}

// TestTableTombstoneProbing checks that deleting an entry does not break the
// probe sequence for a later-inserted key that collided with it ("a" and
// "i" both hash to slot 4 of the initial 8-slot table).
func TestTableTombstoneProbing(t *testing.T) {
	var tbl Table
	a, b := newKey("a"), newKey("i")
	tbl.Set(a, Number(1))
	tbl.Set(b, Number(2))

	require.True(t, tbl.Delete(a))
	v, ok := tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, Number(2), v)
}

func TestTableGrowsAndKeepsAllEntries(t *testing.T) {
	var tbl Table
	keys := make([]*ObjString, 0, 64)
	for i := 0; i < 64; i++ {
		k := newKey(fmt.Sprintf("key%d", i))
		keys = append(keys, k)
		tbl.Set(k, Number(float64(i)))
	}

	require.Equal(t, 64, tbl.Len())
	for i, k := range keys {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, Number(float64(i)), v)
	}
}

func TestTableFindStringByContent(t *testing.T) {
	var tbl Table
	foo := newKey("foo")
	tbl.Set(foo, Nil)

	found := tbl.findString("foo", hashString("foo"))
	require.Same(t, foo, found)

	require.Nil(t, tbl.findString("bar", hashString("bar")))
}

func TestTableAddAll(t *testing.T) {
	var src, dst Table
	a := newKey("a")
	src.Set(a, Number(1))
	src.Set(newKey("b"), Number(2))

	src.addAll(&dst)
	require.Equal(t, 2, dst.Len())
	v, ok := dst.Get(a)
	require.True(t, ok)
	require.Equal(t, Number(1), v)
}

func TestTableRemoveWhite(t *testing.T) {
	var tbl Table
	marked := newKey("marked")
	marked.marked = true
	unmarked := newKey("unmarked")

	tbl.Set(marked, Nil)
	tbl.Set(unmarked, Nil)

	tbl.removeWhite()

	_, ok := tbl.Get(marked)
	require.True(t, ok, "marked keys survive removeWhite")
	require.Nil(t, tbl.findString("unmarked", hashString("unmarked")))
}
