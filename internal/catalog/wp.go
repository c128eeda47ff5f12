package catalog

import "github.com/snorcore/spinor/internal/vocab"

// WpRangeKind is the shape a block-protect encoding describes.
type WpRangeKind int

const (
	WpNone WpRangeKind = iota
	WpAll
	WpBpLower
	WpBpUpper
	WpBpCmpLower
	WpBpCmpUpper
	WpSpLower
	WpSpUpper
	WpRpLower
	WpRpUpper
	WpSpCmpLower
	WpSpCmpUpper
	WpSpCmpfLower
	WpSpCmpfUpper
	WpRpCmpLower
	WpRpCmpUpper
)

// WpRange maps one register-value pattern to a protection-extent
// description. MaskValue is the already-OR'd bit pattern (spec.md §9's
// cumulative-mask fallthrough, made explicit per part at table-authoring
// time rather than via a switch fallthrough) that the current register
// access must equal, restricted to WpInfo.BPMask, for this range to match.
type WpRange struct {
	Kind      WpRangeKind
	Shift     uint8
	MaskValue uint32
}

// RegisterAccessKind distinguishes how a register is reached.
type RegisterAccessKind int

const (
	RegNormal RegisterAccessKind = iota // plain opcode, no address phase
	RegMulti                           // concatenation of multiple single-byte accesses
)

// RegisterAccess describes how to read/write one logical register, which
// may be a concatenation of several physical byte-wide accesses (Multi).
type RegisterAccess struct {
	Kind        RegisterAccessKind
	Name        vocab.RegisterName
	OpcodeRead  byte
	OpcodeWrite byte
	DataBytes   uint8
	Parts       []RegisterAccess // for Kind == RegMulti, concatenated MSB-first
}

// RegisterIO is the narrow bus surface a register access needs; implemented
// by the operation engine (spinor package) and passed down so
// internal/catalog stays free of a Transport dependency.
type RegisterIO interface {
	ExecRegisterOp(access RegisterAccess, write bool, data []byte) error
}

// WpInfo is an ordered list of WpRange entries plus the register they are
// read from, and the mask of register bits that participate in BP lookup.
type WpInfo struct {
	Ranges  []WpRange
	Access  RegisterAccess
	BPMask  uint32
}

// Lookup finds the unique WpRange whose MaskValue equals regval & BPMask.
// Total per spec.md §3's invariant: every BP-bit combination the hardware
// can present maps to exactly one WpRange, or implicitly to WpNone.
func (w WpInfo) Lookup(regval uint32) WpRange {
	masked := regval & w.BPMask
	for _, r := range w.Ranges {
		if r.MaskValue == masked {
			return r
		}
	}
	return WpRange{Kind: WpNone}
}

// Resolve computes the protected (start, length) byte extent for range r
// on a die of the given size, per spec.md §4.7.
func Resolve(r WpRange, size uint64) (start, length uint64) {
	const baseUnit64K = 64 * 1024
	const baseUnit4K = 4 * 1024

	switch r.Kind {
	case WpNone:
		return 0, 0
	case WpAll:
		return 0, size
	case WpBpUpper:
		length = baseUnit64K << r.Shift
		return size - length, length
	case WpBpLower:
		return 0, baseUnit64K << r.Shift
	case WpBpCmpUpper:
		s, l := Resolve(WpRange{Kind: WpBpUpper, Shift: r.Shift}, size)
		return complementRange(s, l, size)
	case WpBpCmpLower:
		s, l := Resolve(WpRange{Kind: WpBpLower, Shift: r.Shift}, size)
		return complementRange(s, l, size)
	case WpRpUpper:
		length = size >> r.Shift
		return size - length, length
	case WpRpLower:
		return 0, size >> r.Shift
	case WpRpCmpUpper:
		s, l := Resolve(WpRange{Kind: WpRpUpper, Shift: r.Shift}, size)
		return complementRange(s, l, size)
	case WpRpCmpLower:
		s, l := Resolve(WpRange{Kind: WpRpLower, Shift: r.Shift}, size)
		return complementRange(s, l, size)
	case WpSpUpper:
		length = baseUnit4K << r.Shift
		return size - length, length
	case WpSpLower:
		return 0, baseUnit4K << r.Shift
	case WpSpCmpUpper:
		// "full minus small chunk" measured from the same end.
		length = baseUnit4K << r.Shift
		return 0, size - length
	case WpSpCmpLower:
		length = baseUnit4K << r.Shift
		return length, size - length
	case WpSpCmpfUpper:
		// "full minus small chunk" but measured from the opposite end.
		length = baseUnit4K << r.Shift
		return length, size - length
	case WpSpCmpfLower:
		length = baseUnit4K << r.Shift
		return 0, size - length
	default:
		return 0, 0
	}
}

func complementRange(start, length, size uint64) (uint64, uint64) {
	if length == 0 {
		return 0, 0
	}
	if start == 0 {
		// protected range was at the bottom; complement is everything above it
		return length, size - length
	}
	// protected range was at the top; complement is everything below it
	return 0, start
}
