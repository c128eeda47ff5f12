package catalog

// IoOpcode is the opcode and timing bound for one IoMode on one operation
// (read or page-program).
type IoOpcode struct {
	Opcode      byte
	DummyCycles uint8
	ModeCycles  uint8
}

// OpcodeTable maps IoMode -> IoOpcode for one operation at one address
// width (3-byte or 4-byte).
type OpcodeTable map[IoMode]IoOpcode

// EraseSector is one erase granularity a part supports: an opcode, the
// size it erases, and the maximum time that erase may take.
type EraseSector struct {
	Opcode     byte
	SizeBytes  uint32 // power of 2
	MaxTimeMS  uint32
}

// EraseRegion is a contiguous slice of the die sharing one set of legal
// erase granularities.
type EraseRegion struct {
	SizeBytes      uint64
	ErasesizeMask  uint8 // bitset of indices into EraseInfo.Sectors
	MinErasesize   uint32
	MaxErasesize   uint32
}

// EraseInfo is a part's full erase geometry at one address width: up to 8
// distinct sector types, and the ordered regions partitioning the die.
type EraseInfo struct {
	Sectors [8]EraseSector
	Regions []EraseRegion
}

// DefaultEraseTimeoutMS supplies a fallback per-sector-size erase timeout
// when a catalog entry (or an SFDP-derived EraseInfo) omits one, keyed by
// erase granularity. Grounded on original_source/flash/spi-nor/spi-nor.c's
// size-class fallback table.
func DefaultEraseTimeoutMS(sizeBytes uint32) uint32 {
	switch {
	case sizeBytes <= 4*1024:
		return 400
	case sizeBytes <= 32*1024:
		return 1600
	case sizeBytes <= 64*1024:
		return 2000
	default:
		return 30000
	}
}

// UniformEraseInfo builds a single-region EraseInfo for dies that erase
// uniformly at one sector size (the common case for small parts).
func UniformEraseInfo(die uint64, opcode byte, sectorSize uint32, maxTimeMS uint32) EraseInfo {
	if maxTimeMS == 0 {
		maxTimeMS = DefaultEraseTimeoutMS(sectorSize)
	}
	return EraseInfo{
		Sectors: [8]EraseSector{0: {Opcode: opcode, SizeBytes: sectorSize, MaxTimeMS: maxTimeMS}},
		Regions: []EraseRegion{{
			SizeBytes:     die,
			ErasesizeMask: 0x01,
			MinErasesize:  sectorSize,
			MaxErasesize:  sectorSize,
		}},
	}
}

// OtpLayout defines `Count` consecutive OTP regions each `Size` bytes, the
// first addressed by `StartIndex` (used both as the logical index and, for
// some SECR variants, as a base physical address).
type OtpLayout struct {
	StartIndex uint32
	Count      uint32
	Size       uint32
}

// Contains reports whether logical OTP region index i is valid in l.
func (l OtpLayout) Contains(i uint32) bool {
	return i >= l.StartIndex && i < l.StartIndex+l.Count
}
