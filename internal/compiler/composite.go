package compiler

import (
	"encoding/binary"
	"fmt"
)

// setKey is the canonical structural key of a sorted state-id set.
type setKey string

func keyOf(members []int) setKey {
	buf := make([]byte, 0, len(members)*2)
	for _, m := range members {
		buf = binary.AppendUvarint(buf, uint64(m))
	}
	return setKey(buf)
}

// Composite is one allocated multi-member state set.
type Composite struct {
	ID      int
	Members []int
}

// CompositeTable maps canonical state sets to ids for one lex state. Ids of
// single-member sets are the member itself; larger sets reuse a member id
// when that is unambiguous and otherwise get a dummy id past the dense
// range. The mapping is append-only.
type CompositeTable struct {
	ctx    *BuildContext
	states []*NfaState

	gathered map[setKey]bool
	ids      map[setKey]int
	owner    map[int]setKey
	inSet    map[int]bool
	list     []Composite
}

func newCompositeTable(ctx *BuildContext, states []*NfaState) *CompositeTable {
	return &CompositeTable{
		ctx:      ctx,
		states:   states,
		gathered: make(map[setKey]bool),
		ids:      make(map[setKey]int),
		owner:    make(map[int]setKey),
		inSet:    make(map[int]bool),
	}
}

// Gather registers a set that will be resolved later and counts, once per
// distinct set, how many sets reference each member. Every set must be
// gathered before the first Resolve for label reuse to stay unambiguous.
func (t *CompositeTable) Gather(members []int) {
	if len(members) == 0 {
		return
	}
	key := keyOf(members)
	if t.gathered[key] {
		return
	}
	t.gathered[key] = true
	for _, m := range members {
		t.states[m].InNextOf++
	}
}

// Resolve returns the id for the sorted member set, allocating it on first
// use. Resolving the same set again returns the same id.
func (t *CompositeTable) Resolve(members []int) int {
	if len(members) == 0 {
		panic(internalf("composite state set has no members"))
	}
	key := keyOf(members)
	if id, ok := t.ids[key]; ok {
		return id
	}
	if !t.gathered[key] {
		t.Gather(members)
	}

	if len(members) == 1 {
		id := members[0]
		t.claim(id, key)
		return id
	}

	for _, m := range members {
		st := t.states[m]
		st.IsComposite = true
		st.CompositeStates = members
	}

	id := NoState
	for _, m := range members {
		if t.reusable(m) {
			id = m
			break
		}
	}
	if id == NoState {
		id = t.ctx.allocDummy()
	}
	t.claim(id, key)
	for _, m := range members {
		t.inSet[m] = true
	}
	t.list = append(t.list, Composite{ID: id, Members: members})
	t.ctx.logger.Log("composite state", "id", id, "members", fmt.Sprint(members))
	return id
}

// reusable reports whether member m can label a new composite: it appears
// in no other resolved set, belongs to no earlier composite and labels
// nothing yet.
func (t *CompositeTable) reusable(m int) bool {
	if t.states[m].InNextOf > 1 || t.inSet[m] {
		return false
	}
	_, owned := t.owner[m]
	return !owned
}

func (t *CompositeTable) claim(id int, key setKey) {
	if prev, ok := t.owner[id]; ok && prev != key {
		panic(internalf("state id %d assigned to two different state sets", id))
	}
	t.owner[id] = key
	t.ids[key] = id
}

// Lookup returns the id of an already resolved set.
func (t *CompositeTable) Lookup(members []int) (int, bool) {
	id, ok := t.ids[keyOf(members)]
	return id, ok
}

// Composites returns the multi-member sets in allocation order.
func (t *CompositeTable) Composites() []Composite {
	return t.list
}

// Members returns the member ids of composite id, or nil when id does not
// name a multi-member set.
func (t *CompositeTable) Members(id int) []int {
	for _, c := range t.list {
		if c.ID == id {
			return c.Members
		}
	}
	return nil
}

// Len returns the number of distinct resolved sets.
func (t *CompositeTable) Len() int {
	return len(t.ids)
}
