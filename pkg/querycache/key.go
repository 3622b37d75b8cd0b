package querycache

import "strings"

// Key is a hierarchical cache key, e.g. {"users", "list", "<filter-hash>"} or
// {"users", "detail", "<id>"}. A shorter key is a prefix of (a group
// containing) every longer key sharing its leading parts.
type Key []string

func NewKey(parts ...string) Key { return Key(parts) }

func (k Key) String() string { return strings.Join(k, "/") }

// HasPrefix reports whether k lives under the given group prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

func splitKey(s string) []string { return strings.Split(s, "/") }

// Root returns the top-level group key, e.g. {"users"}.
func (k Key) Root() Key {
	if len(k) == 0 {
		return k
	}
	return k[:1]
}
