package compiler

import (
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// HighByteMove selects the interned low-byte vector used for characters
// whose high byte is High.
type HighByteMove struct {
	High   byte
	Vector int
}

// VectorCache interns 256-bit low-byte vectors and per-state high-byte
// move sequences. One cache is shared by every lex state of a build.
type VectorCache struct {
	vectors []Vector
	buckets map[uint64][]int

	methods   [][]HighByteMove
	methodIDs map[string]int
}

// NewVectorCache returns an empty cache.
func NewVectorCache() *VectorCache {
	return &VectorCache{
		buckets:   make(map[uint64][]int),
		methodIDs: make(map[string]int),
	}
}

func vectorHash(v *Vector) uint64 {
	var buf [VectorWords * 8]byte
	for i, w := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return xxhash.Sum64(buf[:])
}

// Intern returns the id of v, adding it on first sight.
func (c *VectorCache) Intern(v Vector) int {
	h := vectorHash(&v)
	for _, id := range c.buckets[h] {
		if c.vectors[id] == v {
			return id
		}
	}
	id := len(c.vectors)
	c.vectors = append(c.vectors, v)
	c.buckets[h] = append(c.buckets[h], id)
	return id
}

// internMethod returns the id of a high-byte move sequence. Empty
// sequences have no id.
func (c *VectorCache) internMethod(moves []HighByteMove) int {
	if len(moves) == 0 {
		return NoState
	}
	buf := make([]byte, 0, len(moves)*3)
	for _, m := range moves {
		buf = append(buf, m.High)
		buf = binary.AppendUvarint(buf, uint64(m.Vector))
	}
	key := string(buf)
	if id, ok := c.methodIDs[key]; ok {
		return id
	}
	id := len(c.methods)
	c.methods = append(c.methods, moves)
	c.methodIDs[key] = id
	return id
}

// Len returns the number of distinct vectors.
func (c *VectorCache) Len() int {
	return len(c.vectors)
}

// Vector returns the interned vector with the given id.
func (c *VectorCache) Vector(id int) Vector {
	return c.vectors[id]
}

// Vectors returns every interned vector in id order.
func (c *VectorCache) Vectors() []Vector {
	return c.vectors
}

// Methods returns every interned high-byte move sequence in id order.
func (c *VectorCache) Methods() [][]HighByteMove {
	return c.methods
}

// StateMoves are the partitioned character moves of one real state.
type StateMoves struct {
	ID       int
	ASCII    [2]uint64
	NonASCII []HighByteMove
	// Method is the interned id of NonASCII, or NoState.
	Method int
}

// CompositeMoves are the moves of a multi-member state set.
type CompositeMoves struct {
	ID      int
	Members []int
	// ASCII is the union of the members' ASCII words.
	ASCII [2]uint64
	// Partitions groups, per ASCII word, the members with moves in that
	// word so that members in one group have disjoint bits.
	Partitions [2][][]int
	// Methods lists the distinct non-ASCII method ids of the members.
	Methods []int
}

// partitionStates computes the move tables of every real state and every
// composite of one lex state.
func partitionStates(ctx *BuildContext, states []*NfaState, composites []Composite) ([]StateMoves, []CompositeMoves) {
	moves := make([]StateMoves, len(states))
	for i, s := range states {
		m := StateMoves{ID: s.ID, ASCII: s.ASCII, Method: NoState}
		if len(s.NonASCIIChars) > 0 || len(s.NonASCIIRanges) > 0 {
			order, vecs := highByteVectors(s.Chars)
			for _, hi := range order {
				m.NonASCII = append(m.NonASCII, HighByteMove{High: hi, Vector: ctx.vectors.Intern(*vecs[hi])})
			}
			m.Method = ctx.vectors.internMethod(m.NonASCII)
		}
		moves[i] = m
	}

	out := make([]CompositeMoves, 0, len(composites))
	for _, c := range composites {
		cm := CompositeMoves{ID: c.ID, Members: c.Members}
		seen := make(map[int]bool)
		for _, id := range c.Members {
			cm.ASCII[0] |= moves[id].ASCII[0]
			cm.ASCII[1] |= moves[id].ASCII[1]
			if mid := moves[id].Method; mid != NoState && !seen[mid] {
				seen[mid] = true
				cm.Methods = append(cm.Methods, mid)
			}
		}
		for word := range cm.Partitions {
			cm.Partitions[word] = partitionWord(moves, c.Members, word)
		}
		out = append(out, cm)
	}
	return moves, out
}

// partitionWord greedily groups members with a non-zero ASCII word so that
// no two members of a group share a bit. Members with more bits are placed
// first; each goes into the first group it does not intersect.
func partitionWord(moves []StateMoves, members []int, word int) [][]int {
	var order []int
	for _, id := range members {
		if moves[id].ASCII[word] != 0 {
			order = append(order, id)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bits.OnesCount64(moves[order[i]].ASCII[word]) > bits.OnesCount64(moves[order[j]].ASCII[word])
	})

	var groups [][]int
	var used []uint64
	for _, id := range order {
		w := moves[id].ASCII[word]
		placed := false
		for g := range groups {
			if used[g]&w == 0 {
				groups[g] = append(groups[g], id)
				used[g] |= w
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []int{id})
			used = append(used, w)
		}
	}
	return groups
}
