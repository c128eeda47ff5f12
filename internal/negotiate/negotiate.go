// Package negotiate implements the I/O negotiator (spec.md §4.5): picking
// the read and page-program opcode variant per address width, the
// addressing-mode strategy, the Quad-Enable procedure, and the soft-reset
// precedence — all pure decision logic over internal/catalog data plus a
// capability query back into the Transport.
package negotiate

import (
	"fmt"

	"github.com/snorcore/spinor/internal/catalog"
)

// CapabilityChecker lets the negotiator ask the Transport whether a fully
// constructed op is actually usable, per spec.md §4.5 ("queried by
// constructing the full op and asking the Transport").
type CapabilityChecker interface {
	SupportsOp(mode catalog.IoMode, opcode byte, dummyCycles int) bool
	SupportsQPIBulkRead() bool
	SupportsDPIBulkRead() bool
}

// Selection is the negotiated opcode/addressing plan for one address width.
type Selection struct {
	ReadMode    catalog.IoMode
	ReadOpcode  byte
	ReadNDummy  int // bytes, per spec.md's (ndummy+nmode)*addr_bw/8 formula
	PPMode      catalog.IoMode
	PPOpcode    byte
	CmdBusWidth int
}

// SelectOpcodes picks the read and PP variant for one address width (3 or
// 4), iterating part.ReadIOCaps/PPIOCaps widest-to-narrowest and keeping
// the first pair the Transport actually accepts.
func SelectOpcodes(part *catalog.Part, addrBytes int, allowed catalog.IoModeMask, cap CapabilityChecker) (Selection, error) {
	readTable := part.ReadOpcodesFor(addrBytes)
	ppTable := part.PPOpcodesFor(addrBytes)

	var sel Selection
	readFound, ppFound := false, false

	for _, mode := range catalog.WidestFirst() {
		if readFound {
			break
		}
		if !part.ReadIOCaps.Has(mode) || !allowed.Has(mode) {
			continue
		}
		op, ok := readTable[mode]
		if !ok {
			continue
		}
		dummyBits := (int(op.DummyCycles) + int(op.ModeCycles)) * int(mode.AddrBW())
		if dummyBits%8 != 0 {
			continue
		}
		if mode == catalog.IoMode444 && !part.Flags.Has(catalog.FlagFullQPIOpcodes) && !cap.SupportsQPIBulkRead() {
			continue
		}
		if !cap.SupportsOp(mode, op.Opcode, int(op.DummyCycles)) {
			continue
		}
		sel.ReadMode = mode
		sel.ReadOpcode = op.Opcode
		sel.ReadNDummy = dummyBits / 8
		readFound = true
	}

	for _, mode := range catalog.WidestFirst() {
		if ppFound {
			break
		}
		if !part.PPIOCaps.Has(mode) || !allowed.Has(mode) {
			continue
		}
		op, ok := ppTable[mode]
		if !ok {
			continue
		}
		if !cap.SupportsOp(mode, op.Opcode, int(op.DummyCycles)) {
			continue
		}
		sel.PPMode = mode
		sel.PPOpcode = op.Opcode
		ppFound = true
	}

	if !readFound || !ppFound {
		return Selection{}, fmt.Errorf("negotiate: no viable read/pp opcode pair at %d-byte addressing", addrBytes)
	}

	sel.CmdBusWidth = 1
	if sel.ReadMode == catalog.IoMode444 && sel.PPMode == catalog.IoMode444 && part.Flags.Has(catalog.FlagFullQPIOpcodes) {
		sel.CmdBusWidth = 4
	} else if sel.ReadMode == catalog.IoMode222 && sel.PPMode == catalog.IoMode222 && part.Flags.Has(catalog.FlagFullDPIOpcodes) {
		sel.CmdBusWidth = 2
	}

	return sel, nil
}

// AddressingStrategy names which of the four address-mode cascades
// (spec.md §4.5) was selected for a part whose size exceeds 16 MiB.
type AddressingStrategy int

const (
	AddrStrategyNone AddressingStrategy = iota
	AddrStrategyAlways4B
	AddrStrategy4BOpcode
	AddrStrategyModeSwitch // B7h / WREN+B7h / bank / NVCR
	AddrStrategyEAR        // extended-address register, 3B opcodes retained
)

// SelectAddressingStrategy implements the four-step cascade, returning the
// first strategy that yields a usable read+pp pair at 4-byte addressing.
// Erase geometry is checked only by the dedicated-4B-opcode step
// (HasAddrWidth4B); the other steps accept a part without looking at its
// erase tables. size is the part's total capacity in bytes.
func SelectAddressingStrategy(part *catalog.Part, size uint64, cap CapabilityChecker) (AddressingStrategy, error) {
	if size <= 16*1024*1024 {
		return AddrStrategyNone, nil
	}

	if part.A4BEnType == catalog.A4BEnAlways4B {
		if _, err := SelectOpcodes(part, 4, catalog.All111444, cap); err == nil {
			return AddrStrategyAlways4B, nil
		}
	}

	if part.A4BEnType == catalog.A4BEn4BOpcode && part.HasAddrWidth4B() {
		if _, err := SelectOpcodes(part, 4, catalog.All111444, cap); err == nil {
			return AddrStrategy4BOpcode, nil
		}
	}

	switch part.A4BEnType {
	case catalog.A4BEnB7h, catalog.A4BEnWrenB7h, catalog.A4BEnBank, catalog.A4BEnNVCR:
		if _, err := SelectOpcodes(part, 3, catalog.All111444, cap); err == nil {
			return AddrStrategyModeSwitch, nil
		}
	}

	if part.A4BEnType == catalog.A4BEnEAR {
		if _, err := SelectOpcodes(part, 3, catalog.All111444, cap); err == nil {
			return AddrStrategyEAR, nil
		}
	}

	return AddrStrategyNone, fmt.Errorf("negotiate: no viable 4-byte-addressing strategy for %q (%d bytes)", part.Model, size)
}

// QEProcedure is the concrete register write(s) a Quad-Enable strategy
// performs, expressed generically enough for the operation engine to
// execute without a further type switch on QEType.
type QEProcedure struct {
	Type catalog.QEType
}

// SelectQEProcedure returns the part's declared QE strategy, erroring only
// when it is the sentinel Unknown value (a catalog authoring defect).
func SelectQEProcedure(part *catalog.Part) (QEProcedure, error) {
	if part.QEType == catalog.QEUnknown {
		return QEProcedure{}, fmt.Errorf("negotiate: part %q declares QEUnknown", part.Model)
	}
	return QEProcedure{Type: part.QEType}, nil
}

// SelectSoftReset returns the single highest-precedence soft-reset
// strategy a part declares, or ok=false when chip_soft_reset is
// unsupported (spec.md §4.5).
func SelectSoftReset(part *catalog.Part) (catalog.SoftResetFlags, bool) {
	p := part.SoftReset.Precedence()
	return p, p != 0
}
