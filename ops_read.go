package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/vocab"
)

// ReadAt reads length bytes starting at addr using the negotiated read
// opcode/mode, chunking to the Transport's MaxTransferSize (spec.md §4.6
// "Read").
func (f *Flash) ReadAt(ctx context.Context, addr uint64, length int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return nil, err
	}
	if err := f.checkRange(addr, length); err != nil {
		return nil, err
	}

	out := make([]byte, length)
	chunk := f.transport.MaxTransferSize()
	if chunk <= 0 {
		chunk = length
	}

	sel := f.activeSelection()
	bus := f.bus(ctx)

	for off := 0; off < length; {
		n := length - off
		if n > chunk {
			n = chunk
		}
		a := addr + uint64(off)
		if f.addrStrat == negotiate.AddrStrategyEAR && f.addrBytes == 3 {
			if err := f.maybeSwitchEARBank(ctx, a); err != nil {
				return nil, err
			}
		}
		dummyCycles := sel.ReadNDummy * 8 / int(sel.ReadMode.AddrBW())
		if err := bus.Exec(sel.ReadOpcode, f.encodeAddr(a), dummyCycles, out[off:off+n], false, sel.ReadMode); err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "read_at: addr=%#x len=%d: %v", a, n, err)
		}
		off += n
	}
	return out, nil
}

// encodeAddr renders addr as the currently-negotiated address width, honoring
// the EAR bank-switch strategy's bank register for the high bits.
func (f *Flash) encodeAddr(addr uint64) []byte {
	if f.addrBytes == 4 {
		return []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	}
	return []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// maybeSwitchEARBank keeps the extended-address register in sync with a
// 3-byte-addressed access that crosses a 16 MiB boundary, for parts using
// AddrStrategyEAR (spec.md §4.5).
func (f *Flash) maybeSwitchEARBank(ctx context.Context, addr uint64) error {
	high := byte(addr >> 24)
	if high == f.curHighAddr {
		return nil
	}
	if err := f.bus(ctx).WriteRegister(vocab.RegEAR, uint32(high)); err != nil {
		return wrapStatus(StatusDeviceIoError, "ear bank switch: %v", err)
	}
	f.curHighAddr = high
	return nil
}
