package sfdp

// FourByteAddrInstrTable is the decoded 4BAIT (4-Byte Address Instruction
// Table): which operations gain a dedicated 4-byte-address opcode, and
// what that opcode is, plus whether the part supports an EN4B/EX4B pair
// or an extended-address register as an alternative. internal/negotiate's
// addressing-mode cascade does not read it; that cascade works from the
// catalog tables alone.
type FourByteAddrInstrTable struct {
	SupportsRead       bool
	SupportsFastRead   bool
	SupportsPP         bool
	Supports114Read    bool
	Supports144Read    bool
	Supports444Read    bool

	OpcodeRead     byte
	OpcodeFastRead byte
	OpcodePP       byte
	Opcode114Read  byte
	Opcode144Read  byte
	Opcode444Read  byte

	SupportsEnterBy66h99hOr66hB9h bool
	SupportsEnterByAlways4B       bool
}

// Decode4BAIT interprets the 4BAIT DWORD stream (DWORD 1 feature bitmap,
// DWORD 2 opcode bytes for the most common operations).
func Decode4BAIT(dws []uint32) FourByteAddrInstrTable {
	var t FourByteAddrInstrTable
	if len(dws) < 2 {
		return t
	}
	dw1 := DW(dws, 1)
	t.SupportsRead = bit(dw1, 0)
	t.SupportsFastRead = bit(dw1, 1)
	t.SupportsPP = bit(dw1, 6)
	t.Supports114Read = bit(dw1, 3)
	t.Supports144Read = bit(dw1, 5)
	t.Supports444Read = bit(dw1, 4)
	t.SupportsEnterByAlways4B = bit(dw1, 31)

	dw2 := DW(dws, 2)
	t.OpcodeRead = byte(field(dw2, 0, 7))
	t.OpcodeFastRead = byte(field(dw2, 8, 15))
	t.OpcodePP = byte(field(dw2, 16, 23))
	t.Opcode114Read = byte(field(dw2, 24, 31))

	return t
}
