package machine

// tableMaxLoad is the load factor above which a Table grows. Capacity is
// doubled (from a floor of 8) whenever count/capacity would exceed this
// after an insertion.
const tableMaxLoad = 0.75

// entry is a single slot of a Table. A key of nil with a Nil value is an
// empty slot that has never been occupied; a key of nil with a True value is
// a tombstone left behind by Delete.
type entry struct {
	key   *ObjString
	value Value
}

// Table is an open-addressed hash table keyed by ObjString identity, used
// both for the VM's globals and for its string intern set. Probing is
// linear, starting at hash mod capacity. Deletions leave tombstones so that
// probe sequences that ran through a deleted slot are not broken.
type Table struct {
	count   int // occupied slots, including tombstones
	entries []entry
}

// Len reports the number of live (non-tombstone) entries. It is O(capacity);
// intended for tests and diagnostics, not hot paths.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.key != nil {
			n++
		}
	}
	return n
}

// Get returns the value associated with key, if present.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if the insertion
// would push the load factor above tableMaxLoad. It reports whether key was
// a new entry (as opposed to overwriting an existing one).
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow(growCapacity(len(t.entries)))
	}

	e := t.find(key)
	isNew := e.key == nil
	// A tombstone slot is already counted in t.count, so only bump it for a
	// truly empty slot.
	if isNew && e.value == Nil {
		t.count++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key from the table, leaving a tombstone in its place so
// later probe sequences through this slot keep working. It reports whether
// key was present.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = True // tombstone marker
	return true
}

// find returns the slot for key: either the slot already holding it, the
// first tombstone seen along its probe sequence (if key is absent), or the
// first empty slot (if no tombstone was seen).
func (t *Table) find(key *ObjString) *entry {
	capacity := uint32(len(t.entries))
	index := key.hash % capacity
	var tombstone *entry
	for {
		e := &t.entries[index]
		switch {
		case e.key == nil:
			if e.value == Nil {
				// truly empty: return the tombstone we saw, if any
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// tombstone
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) % capacity
	}
}

// findString looks up an interned string by its raw bytes and hash, rather
// than by ObjString identity, which is what lets the intern table answer
// "does an ObjString with these exact contents already exist?" before a new
// one is allocated.
func (t *Table) findString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		switch {
		case e.key == nil:
			if e.value == Nil {
				return nil // truly empty: not found
			}
			// tombstone: keep probing
		case e.key.hash == hash && e.key.chars == chars:
			return e.key
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) grow(capacity int) {
	grown := make([]entry, capacity)
	for i := range grown {
		grown[i].value = Nil
	}
	old := t.entries
	t.entries = grown
	t.count = 0 // recomputed below, tombstones are dropped on growth

	for _, e := range old {
		if e.key == nil {
			continue
		}
		dst := t.find(e.key)
		dst.key = e.key
		dst.value = e.value
		t.count++
	}
}

// growCapacity returns the next table capacity given the current one,
// doubling from a floor of 8.
func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// addAll copies every live entry of t into dst, used to merge the globals of
// one table into another (unused by the VM today, kept as a direct
// counterpart of clox's tableAddAll for completeness and tested directly).
func (t *Table) addAll(dst *Table) {
	for _, e := range t.entries {
		if e.key != nil {
			dst.Set(e.key, e.value)
		}
	}
}

// removeWhite deletes every entry whose key is not marked, used by the
// collector to drop intern-table references to strings that are about to be
// swept. Keys in the intern table are not GC roots, so a string reachable
// from nowhere else must not keep itself alive through this table.
func (t *Table) removeWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.marked {
			e.key = nil
			e.value = True
		}
	}
}

// mark marks every key and value held by the table as a GC root. Used for
// the globals table; the intern table is deliberately not marked this way,
// see removeWhite.
func (t *Table) mark(vm *VM) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			vm.markObject(e.key)
			vm.markValue(e.value)
		}
	}
}
