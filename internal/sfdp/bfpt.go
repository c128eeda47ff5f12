package sfdp

// BasicFlashParams is the decoded subset of BFPT (the mandatory Basic
// Flash Parameter Table) the resolver and negotiator need: capacity,
// erase geometry, supported fast-read variants and their opcode/dummy
// encodings, and 4-byte-addressing mode (spec.md §4.3).
type BasicFlashParams struct {
	DWCount int

	CapacityBits uint64

	Support112FastRead bool
	Support122FastRead bool
	Support144FastRead bool
	Support114FastRead bool
	Support444FastRead bool

	FastRead112 FastReadSetting
	FastRead122 FastReadSetting
	FastRead144 FastReadSetting
	FastRead114 FastReadSetting
	FastRead444 FastReadSetting

	EraseSectors [4]EraseType

	AddressModes uint8 // bit0: 3B only, bit1: 3B/4B switchable, bit2: 4B only

	Support444DTRFastRead bool
}

// FastReadSetting is one fast-read opcode with its dummy/mode-cycle count,
// as encoded in BFPT DWORDs 3/4/7.
type FastReadSetting struct {
	Opcode       byte
	DummyCycles  uint8
	ModeCycles   uint8
}

// EraseType is one of BFPT's four declared erase granularities.
type EraseType struct {
	Opcode       byte
	SizeExponent uint8 // erase size = 1 << SizeExponent bytes
}

// SizeBytes returns the granularity this erase type erases, or 0 if unset.
func (e EraseType) SizeBytes() uint32 {
	if e.Opcode == 0 {
		return 0
	}
	return 1 << e.SizeExponent
}

// DecodeBFPT interprets the raw BFPT DWORDs per JESD216 revision B layout
// (the superset revision 1.6 also populates; earlier minor revisions of
// 9/16 DWORDs simply leave the extra fields zero, matching
// original_source's spi-nor.c which gates later-DWORD reads on dw_count).
func DecodeBFPT(dws []uint32) BasicFlashParams {
	var p BasicFlashParams
	p.DWCount = len(dws)
	if len(dws) < 9 {
		return p
	}

	dw1 := DW(dws, 1)
	p.AddressModes = uint8(field(dw1, 17, 18))
	p.Support114FastRead = bit(dw1, 22)
	p.Support144FastRead = bit(dw1, 21)
	p.Support112FastRead = bit(dw1, 20)
	p.Support122FastRead = bit(dw1, 4)

	dw2 := DW(dws, 2)
	if dw2&0x80000000 != 0 {
		// bit 31 set: capacity given as log2(N) in bits 0..30
		p.CapacityBits = uint64(1) << (dw2 & 0x7fffffff)
	} else {
		p.CapacityBits = uint64(dw2) + 1
	}

	dw3 := DW(dws, 3)
	p.FastRead112 = FastReadSetting{
		ModeCycles:  uint8(field(dw3, 0, 4)),
		DummyCycles: uint8(field(dw3, 5, 9)),
		Opcode:      byte(field(dw3, 16, 23)),
	}
	p.FastRead122 = FastReadSetting{
		ModeCycles:  uint8(field(dw3, 24, 28)),
		DummyCycles: uint8(field(dw3, 29, 31)),
	}

	dw4 := DW(dws, 4)
	p.FastRead122.DummyCycles |= uint8(field(dw4, 0, 1)) << 3
	p.FastRead122.Opcode = byte(field(dw4, 8, 15))
	p.FastRead144 = FastReadSetting{
		ModeCycles:  uint8(field(dw4, 16, 20)),
		DummyCycles: uint8(field(dw4, 21, 25)),
		Opcode:      byte(field(dw4, 24, 31)),
	}

	dw5 := DW(dws, 5)
	p.Support444FastRead = bit(dw5, 4)

	dw7 := DW(dws, 7)
	p.FastRead114 = FastReadSetting{
		ModeCycles:  uint8(field(dw7, 0, 4)),
		DummyCycles: uint8(field(dw7, 5, 9)),
		Opcode:      byte(field(dw7, 16, 23)),
	}
	p.FastRead444 = FastReadSetting{
		ModeCycles:  uint8(field(dw7, 24, 28)),
		Opcode:      byte(field(dw7, 24, 31)),
	}

	dw8 := DW(dws, 8)
	dw9 := DW(dws, 9)
	p.EraseSectors[0] = EraseType{SizeExponent: uint8(field(dw8, 0, 7)), Opcode: byte(field(dw8, 8, 15))}
	p.EraseSectors[1] = EraseType{SizeExponent: uint8(field(dw8, 16, 23)), Opcode: byte(field(dw8, 24, 31))}
	p.EraseSectors[2] = EraseType{SizeExponent: uint8(field(dw9, 0, 7)), Opcode: byte(field(dw9, 8, 15))}
	p.EraseSectors[3] = EraseType{SizeExponent: uint8(field(dw9, 16, 23)), Opcode: byte(field(dw9, 24, 31))}

	if len(dws) >= 18 {
		dw18 := DW(dws, 18)
		p.Support444DTRFastRead = bit(dw18, 20)
	}

	return p
}
