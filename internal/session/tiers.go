package session

import "fmt"

// TierTable maps an accumulated like count to a tier image reference.
// The table is ordered: more likes select a later image, clamping at the
// last entry once the count exceeds the table length.
type TierTable []string

// NewTierTable builds a table of count images following the public asset
// naming scheme (images/image1.jpg, images/image2.jpg, ...).
// count must be at least 1.
func NewTierTable(count int) TierTable {
	if count < 1 {
		count = 1
	}
	t := make(TierTable, count)
	for i := range t {
		t[i] = fmt.Sprintf("images/image%d.jpg", i+1)
	}
	return t
}

// ForLikes returns the tier image for the given like total.
// The index min(likes-1, len-1) is clamped to [0, len-1], so it never
// indexes out of range however large the total grows.
func (t TierTable) ForLikes(likes int) string {
	idx := likes - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(t)-1 {
		idx = len(t) - 1
	}
	return t[idx]
}
