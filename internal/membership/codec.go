// Package membership encodes the id sets a content item targets
// (screens, departments, locations) to and from the text column they are
// stored in.
//
// The canonical form is a bracketed, ascending, comma separated list:
// "[3,7,12]". Decode also accepts the legacy and hand-edited shapes found in
// existing rows: bare lists ("3,7"), quoted elements ("[\"3\"]"), "null",
// and the "v1:" version tag.
package membership

import (
	"sort"
	"strconv"
	"strings"
)

// Version1 is the tag a future encoder may prefix. Decode strips it.
const Version1 = "v1:"

// Set is an unordered set of non-negative ids.
type Set map[int]struct{}

// NewSet builds a set from ids; duplicates collapse.
func NewSet(ids ...int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member. A nil set has no members.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Encode renders s in the canonical form. The empty set encodes as "[]".
func Encode(s Set) string {
	ids := s.Sorted()
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteByte(']')
	return b.String()
}

// Decode parses raw into a set. It never fails: elements that are not
// non-negative integers are dropped and counted in skipped so callers can
// log the corruption without hiding the rest of the set.
func Decode(raw string) (set Set, skipped int) {
	set = Set{}

	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, Version1))
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return set, 0
	}

	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		tok = strings.Trim(tok, `"'`)
		tok = strings.TrimSpace(tok)

		id, err := strconv.Atoi(tok)
		if err != nil || id < 0 {
			skipped++
			continue
		}
		set[id] = struct{}{}
	}
	return set, skipped
}
