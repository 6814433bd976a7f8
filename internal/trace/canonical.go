package trace

import (
	"encoding/json"
	"sort"
)

// Canonical is an order-preserving mapping from "{nr}.{id}" to instruction.
//
// Insertion order is kept for display only. Equality is mapping equality:
// the same key set with the same value per key, regardless of order.
type Canonical struct {
	keys   []string
	values map[string]string
}

// NewCanonical returns an empty mapping.
func NewCanonical() *Canonical {
	return &Canonical{values: map[string]string{}}
}

// Set assigns value to key. A key seen before keeps its original position
// and takes the new value.
func (c *Canonical) Set(key, value string) {
	if c.values == nil {
		c.values = map[string]string{}
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the instruction stored for key.
func (c *Canonical) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (c *Canonical) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in first-insertion order.
func (c *Canonical) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Equal reports mapping equality.
func (c *Canonical) Equal(other *Canonical) bool {
	if c.Len() != other.Len() {
		return false
	}
	for _, k := range c.Keys() {
		ov, ok := other.Get(k)
		if !ok {
			return false
		}
		if v, _ := c.Get(k); v != ov {
			return false
		}
	}
	return true
}

// CanonicalJSON encodes the mapping with keys sorted, independent of
// insertion order.
func (c *Canonical) CanonicalJSON() ([]byte, error) {
	m := make(map[string]string, c.Len())
	for _, k := range c.Keys() {
		m[k], _ = c.Get(k)
	}
	// encoding/json writes map keys sorted.
	return json.Marshal(m)
}

// Hash returns the sha256 digest of CanonicalJSON. Equal mappings have equal
// hashes.
func (c *Canonical) Hash() (string, error) {
	b, err := c.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// SortedKeys returns the keys in lexicographic order.
func (c *Canonical) SortedKeys() []string {
	keys := c.Keys()
	sort.Strings(keys)
	return keys
}
