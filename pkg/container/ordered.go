// Package container implements the ordered and weak collections and the
// array operations with their ECMAScript edge cases.
package container

import (
	"weak"

	"github.com/nooga/tsrt/pkg/value"
)

// minCompact is the number of tombstones below which remove never compacts.
const minCompact = 8

// entry is one slot of an ordered table. Deleted slots stay in place as
// tombstones until they outnumber the live entries; compaction then moves
// every live cursor to the same logical position.
type entry struct {
	key, val value.Value
	deleted  bool
}

// ordered is an insertion-ordered hash table with SameValueZero keys.
type ordered struct {
	index   map[value.Value]int
	entries []entry
	size    int
	// epoch changes on clear; iterators from an older epoch restart at the
	// first entry added after the clear.
	epoch int
	// cursors is every cursor that may still read entries. Finished or
	// collected ones are pruned on compaction.
	cursors []weak.Pointer[cursor]
}

func (t *ordered) lookup(k value.Value) (int, bool) {
	i, ok := t.index[value.Normalize(k)]
	return i, ok
}

func (t *ordered) get(k value.Value) (value.Value, bool) {
	if i, ok := t.lookup(k); ok {
		return t.entries[i].val, true
	}
	return value.Undefined, false
}

func (t *ordered) set(k, v value.Value) {
	if i, ok := t.lookup(k); ok {
		t.entries[i].val = v
		return
	}
	if t.index == nil {
		t.index = make(map[value.Value]int)
	}
	nk := value.Normalize(k)
	t.index[nk] = len(t.entries)
	// -0 is stored as +0.
	t.entries = append(t.entries, entry{key: value.Denormalize(nk), val: v})
	t.size++
}

func (t *ordered) remove(k value.Value) bool {
	i, ok := t.lookup(k)
	if !ok {
		return false
	}
	delete(t.index, value.Normalize(k))
	t.entries[i] = entry{key: value.Undefined, val: value.Undefined, deleted: true}
	t.size--
	if dead := len(t.entries) - t.size; dead >= minCompact && dead > t.size {
		t.compact()
	}
	return true
}

// compact drops the tombstones, rebuilds the index and remaps cursor
// positions so that no cursor skips or repeats a live entry.
func (t *ordered) compact() {
	// before[i] is the number of live entries in entries[:i].
	before := make([]int, len(t.entries)+1)
	live := make([]entry, 0, t.size)
	for i, e := range t.entries {
		before[i] = len(live)
		if !e.deleted {
			t.index[value.Normalize(e.key)] = len(live)
			live = append(live, e)
		}
	}
	before[len(t.entries)] = len(live)
	t.entries = live

	kept := t.cursors[:0]
	for _, wp := range t.cursors {
		c := wp.Value()
		if c == nil || c.done {
			continue
		}
		if c.epoch == t.epoch {
			c.pos = before[c.pos]
		}
		kept = append(kept, wp)
	}
	clear(t.cursors[len(kept):])
	t.cursors = kept
}

func (t *ordered) clear() {
	t.index = nil
	t.entries = nil
	t.size = 0
	t.epoch++
}

// each calls fn for every live entry, including entries appended while
// iterating, and stops early when fn returns false or an error.
func (t *ordered) each(fn func(k, v value.Value) (bool, error)) error {
	it := t.cursor()
	for {
		e, ok := it.next()
		if !ok {
			return nil
		}
		cont, err := fn(e.key, e.val)
		if err != nil || !cont {
			return err
		}
	}
}

type cursor struct {
	t     *ordered
	pos   int
	epoch int
	done  bool
}

func (t *ordered) cursor() *cursor {
	c := &cursor{t: t, epoch: t.epoch}
	t.cursors = append(t.cursors, weak.Make(c))
	return c
}

func (c *cursor) next() (entry, bool) {
	if c.done {
		return entry{}, false
	}
	if c.epoch != c.t.epoch {
		c.pos, c.epoch = 0, c.t.epoch
	}
	for c.pos < len(c.t.entries) {
		e := c.t.entries[c.pos]
		c.pos++
		if !e.deleted {
			return e, true
		}
	}
	c.done = true
	return entry{}, false
}

// iterKind selects what a collection iterator produces.
type iterKind int

const (
	iterKeys iterKind = iota
	iterValues
	iterEntries
)

func (t *ordered) iterator(kind iterKind) value.Iterator {
	c := t.cursor()
	return value.IteratorFunc(func() (value.Value, bool, error) {
		e, ok := c.next()
		if !ok {
			return value.Undefined, false, nil
		}
		switch kind {
		case iterKeys:
			return e.key, true, nil
		case iterValues:
			return e.val, true, nil
		}
		return value.ArrayOf(e.key, e.val), true, nil
	})
}
