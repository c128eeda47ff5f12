package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/vocab"
)

// applyQELocked issues the part's Quad-Enable procedure (spec.md §4.5) once,
// during negotiation — before any quad-mode read/program is attempted. A
// part declaring QEDontCare needs no register write at all.
// negotiate.SelectOpcodes does not consult QEType, so a QEUnknown part
// negotiated into a quad IoMode fails here (SelectQEProcedure rejects it).
func (f *Flash) applyQELocked(ctx context.Context) error {
	if !f.usesQuadIO() {
		return nil
	}

	proc, err := negotiate.SelectQEProcedure(f.part)
	if err != nil {
		return wrapStatus(StatusFail, "quad-enable: %v", err)
	}
	bus := f.bus(ctx)

	switch proc.Type {
	case catalog.QEDontCare:
		return nil

	case catalog.QESR1Bit6:
		sr1, err := bus.ReadRegister(vocab.RegSR1)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read SR1: %v", err)
		}
		if sr1&uint32(vocab.SR1BitQE6) != 0 {
			return nil
		}
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		if err := bus.WriteRegister(vocab.RegSR1, sr1|uint32(vocab.SR1BitQE6)); err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: write SR1: %v", err)
		}
		return f.waitBusy(ctx, 0)

	case catalog.QESR2Bit1:
		sr1, err := bus.ReadRegister(vocab.RegSR1)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read SR1: %v", err)
		}
		sr2, err := bus.ReadRegister(vocab.RegSR2)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read SR2: %v", err)
		}
		if sr2&uint32(vocab.SR2BitQE1) != 0 {
			return nil
		}
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		// WRSR (01h) with two data bytes: SR1 rewritten unchanged, then CR.
		if err := bus.Exec(vocab.OpWRSR, nil, 0, []byte{byte(sr1), byte(sr2 | uint32(vocab.SR2BitQE1))}, true, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: write SR1+CR: %v", err)
		}
		return f.waitBusy(ctx, 0)

	case catalog.QESR2Bit1WrSR1:
		// RegSR1CR concatenates SR1 (high byte) then SR2 (low byte) — see
		// commanderAdapter.readViaAccess's RegMulti read order — so SR2's
		// QE bit needs no shift to land in the combined value.
		combined, err := bus.ReadRegister(vocab.RegSR1CR)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read SR1|CR: %v", err)
		}
		if combined&uint32(vocab.SR2BitQE1) != 0 {
			return nil
		}
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		if err := bus.WriteRegister(vocab.RegSR1CR, combined|uint32(vocab.SR2BitQE1)); err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: write SR1|CR: %v", err)
		}
		return f.waitBusy(ctx, 0)

	case catalog.QESR2Bit7:
		sr2, err := bus.ReadRegister(vocab.RegSR2)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read SR2: %v", err)
		}
		if sr2&uint32(vocab.CRBitQE7) != 0 {
			return nil
		}
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		if err := bus.WriteRegister(vocab.RegSR2, sr2|uint32(vocab.CRBitQE7)); err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: write SR2: %v", err)
		}
		return f.waitBusy(ctx, 0)

	case catalog.QENVCRBit4:
		nvcr, err := bus.ReadRegister(vocab.RegNVCR)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: read NVCR: %v", err)
		}
		if nvcr&uint32(vocab.NVCRBitQE4) != 0 {
			return nil
		}
		if err := bus.WriteRegister(vocab.RegNVCR, nvcr|uint32(vocab.NVCRBitQE4)); err != nil {
			return wrapStatus(StatusDeviceIoError, "quad-enable: write NVCR: %v", err)
		}
		return f.waitBusy(ctx, 0)

	default:
		return wrapStatus(StatusUnsupported, "quad-enable: unhandled QEType %d", proc.Type)
	}
}

// usesQuadIO reports whether either negotiated selection actually landed on
// a mode whose data phase runs 4-wide, so QE only gets asserted when it's
// load-bearing.
func (f *Flash) usesQuadIO() bool {
	sel := f.sel3B
	if f.addrBytes == 4 {
		sel = f.sel4B
	}
	return sel.ReadMode.IsQuad() || sel.PPMode.IsQuad()
}

// enterAddressingModeLocked asserts the addressing-mode strategy negotiate
// chose for parts above 16 MiB (spec.md §4.5). AddrStrategyNone and
// AddrStrategy4BOpcode need no chip-side action: the former never leaves
// 3-byte addressing, the latter reaches 4-byte addressing purely through
// dedicated opcodes already baked into sel4B.
func (f *Flash) enterAddressingModeLocked(ctx context.Context) error {
	bus := f.bus(ctx)

	switch f.addrStrat {
	case negotiate.AddrStrategyNone, negotiate.AddrStrategy4BOpcode:
		return nil

	case negotiate.AddrStrategyAlways4B:
		return nil

	case negotiate.AddrStrategyModeSwitch:
		switch f.part.A4BEnType {
		case catalog.A4BEnWrenB7h:
			if err := f.writeEnable(ctx); err != nil {
				return err
			}
			fallthrough
		case catalog.A4BEnB7h:
			if err := bus.Exec(vocab.OpEN4B, nil, 0, nil, false, catalog.IoMode111); err != nil {
				return wrapStatus(StatusDeviceIoError, "enter-4b: %v", err)
			}
		case catalog.A4BEnBank:
			if err := bus.WriteRegister(vocab.RegBR, 0); err != nil {
				return wrapStatus(StatusDeviceIoError, "enter-4b: write BR: %v", err)
			}
		case catalog.A4BEnNVCR:
			nvcr, err := bus.ReadRegister(vocab.RegNVCR)
			if err != nil {
				return wrapStatus(StatusDeviceIoError, "enter-4b: read NVCR: %v", err)
			}
			if err := bus.WriteRegister(vocab.RegNVCR, nvcr); err != nil {
				return wrapStatus(StatusDeviceIoError, "enter-4b: write NVCR: %v", err)
			}
		}
		f.addrBytes = 4
		return nil

	case negotiate.AddrStrategyEAR:
		f.curHighAddr = 0
		return bus.WriteRegister(vocab.RegEAR, 0)

	default:
		return wrapStatus(StatusUnsupported, "enter-addressing-mode: unhandled strategy %d", f.addrStrat)
	}
}
