package catalog

import "github.com/snorcore/spinor/internal/hexfmt"

// PartId is an ordered sequence of up to 8 ID bytes plus a parallel mask.
// A probed ID matches a catalog ID iff (probed ^ catalog) & mask == 0 over
// the catalog's declared length.
type PartId struct {
	Bytes []byte
	Mask  []byte
}

// NewID builds a PartId that matches exactly (mask = 0xff for every byte
// supplied).
func NewID(bytes ...byte) PartId {
	mask := make([]byte, len(bytes))
	for i := range mask {
		mask[i] = 0xff
	}
	return PartId{Bytes: bytes, Mask: mask}
}

// NewIDMasked builds a PartId with an explicit per-byte mask, used for
// catalog entries that only pin a prefix (e.g. the first three ID bytes)
// or that want to ignore a die-density nibble.
func NewIDMasked(bytes, mask []byte) PartId {
	return PartId{Bytes: append([]byte(nil), bytes...), Mask: append([]byte(nil), mask...)}
}

// Len is the number of significant ID bytes (catalog-declared length).
func (p PartId) Len() int { return len(p.Bytes) }

// Matches reports whether probed matches p over p.Len() bytes.
func (p PartId) Matches(probed []byte) bool {
	if len(probed) < p.Len() {
		return false
	}
	for i, b := range p.Bytes {
		if (probed[i]^b)&p.Mask[i] != 0 {
			return false
		}
	}
	return true
}

// MaskStrictness counts the number of fully-pinned (0xff) bytes; used by
// the resolver to prefer the strictest-masked match among ambiguous
// catalog entries sharing a probed ID prefix.
func (p PartId) MaskStrictness() int {
	n := 0
	for _, m := range p.Mask {
		if m == 0xff {
			n++
		}
	}
	return n
}

// String renders the ID bytes as compact upper-case hex, MSB first.
func (p PartId) String() string {
	return hexfmt.ID(p.Bytes)
}
