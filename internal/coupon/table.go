package coupon

import "fmt"

// MapTable implements Table using a map for O(1) lookups.
type MapTable struct {
	percents map[string]int
}

// NewMapTable creates an empty map-based table.
func NewMapTable(capacity int) *MapTable {
	return &MapTable{
		percents: make(map[string]int, capacity),
	}
}

// BuiltinTable returns the codes the storefront always accepts.
func BuiltinTable() *MapTable {
	t := NewMapTable(2)
	t.percents["BIHAR10"] = 10
	t.percents["CRAFT20"] = 20
	return t
}

func (t *MapTable) Lookup(code string) (int, bool) {
	pct, ok := t.percents[code]
	return pct, ok
}

func (t *MapTable) Size() int {
	return len(t.percents)
}

// Add stores a code. The code is normalised and percent must be within 0-100.
func (t *MapTable) Add(code string, percent int) error {
	code = Normalize(code)
	if code == "" {
		return fmt.Errorf("empty coupon code")
	}
	if percent < 0 || percent > 100 {
		return fmt.Errorf("discount percent %d out of range for %s", percent, code)
	}
	t.percents[code] = percent
	return nil
}

// Merge copies every entry of other into t, overriding existing codes.
func (t *MapTable) Merge(other Table) {
	src, ok := other.(*MapTable)
	if !ok {
		return
	}
	for code, pct := range src.percents {
		t.percents[code] = pct
	}
}
