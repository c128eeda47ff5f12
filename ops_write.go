package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/vocab"
)

// WriteAt programs data starting at addr, splitting at page boundaries
// (spec.md §4.6 "Page Program": WREN, PP opcode, wait-busy, repeat per
// page). Parts declaring FlagAAIWordProgram use the Auto-Address-Increment
// state machine instead (spec.md §8 worked scenario 6).
func (f *Flash) WriteAt(ctx context.Context, addr uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	if err := f.checkRange(addr, len(data)); err != nil {
		return err
	}
	if f.part.Flags.Has(catalog.FlagNoOp) {
		return wrapStatus(StatusUnsupported, "write_at: part declares no program support")
	}
	if f.part.Flags.Has(catalog.FlagAAIWordProgram) {
		return f.writeAAILocked(ctx, addr, data)
	}

	page := uint64(f.part.PageSizeBytes)
	if page == 0 {
		page = 256
	}

	for off := 0; off < len(data); {
		a := addr + uint64(off)
		// A page program never crosses a page boundary; the remainder of
		// this page is the largest chunk this iteration can cover.
		roomInPage := page - a%page
		n := uint64(len(data) - off)
		if n > roomInPage {
			n = roomInPage
		}
		if err := f.programChunkLocked(ctx, a, data[off:uint64(off)+n]); err != nil {
			return err
		}
		off += int(n)
	}
	return nil
}

func (f *Flash) programChunkLocked(ctx context.Context, addr uint64, chunk []byte) error {
	if f.addrStrat == negotiate.AddrStrategyEAR && f.addrBytes == 3 {
		if err := f.maybeSwitchEARBank(ctx, addr); err != nil {
			return err
		}
	}
	if err := f.writeEnable(ctx); err != nil {
		return err
	}
	sel := f.activeSelection()
	bus := f.bus(ctx)
	if err := bus.Exec(sel.PPOpcode, f.encodeAddr(addr), 0, chunk, true, sel.PPMode); err != nil {
		return wrapStatus(StatusDeviceIoError, "program: addr=%#x len=%d: %v", addr, len(chunk), err)
	}
	timeout := ppTimeout(f.part.MaxPPTimeUS)
	return f.waitBusy(ctx, timeout)
}

// writeAAILocked implements the SST Auto-Address-Increment word-program
// sequence (original_source/flash/spi-nor/spi-nor.c's spi_nor_aai_write):
// an odd start address gets a leading single-byte page program so the AAI
// loop always begins word-aligned; the bulk of the data programs two bytes
// per AAI-opcode transaction, the address phase present only on the first
// transaction since the device auto-increments from there; a trailing odd
// byte, if any, gets its own single-byte page program after AAI mode is
// closed out with WRDI (spec.md §8 worked scenario 6).
func (f *Flash) writeAAILocked(ctx context.Context, addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	bus := f.bus(ctx)
	sel := f.activeSelection()

	if addr%2 != 0 {
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		if err := bus.Exec(sel.PPOpcode, f.encodeAddr(addr), 0, data[0:1], true, sel.PPMode); err != nil {
			return wrapStatus(StatusDeviceIoError, "aai program: leading byte at %#x: %v", addr, err)
		}
		if err := f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS)); err != nil {
			return err
		}
		addr++
		data = data[1:]
	}

	if len(data) >= 2 {
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		first := true
		for len(data) >= 2 {
			var wordAddr []byte
			if first {
				wordAddr = f.encodeAddr(addr)
			}
			if err := bus.Exec(vocab.OpAAIWordProg, wordAddr, 0, data[0:2], true, sel.PPMode); err != nil {
				return wrapStatus(StatusDeviceIoError, "aai program: word at %#x: %v", addr, err)
			}
			if err := f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS)); err != nil {
				return err
			}
			addr += 2
			data = data[2:]
			first = false
		}
		if err := bus.Exec(vocab.OpWRDI, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "aai program: write disable: %v", err)
		}
		if err := f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS)); err != nil {
			return err
		}
	}

	if len(data) == 1 {
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		if err := bus.Exec(sel.PPOpcode, f.encodeAddr(addr), 0, data[0:1], true, sel.PPMode); err != nil {
			return wrapStatus(StatusDeviceIoError, "aai program: trailing byte at %#x: %v", addr, err)
		}
		if err := f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS)); err != nil {
			return err
		}
	}

	return nil
}
