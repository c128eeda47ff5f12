package spinor

import (
	"context"
	"sort"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/vocab"
)

// Erase erases the byte range [addr, addr+length) by repeatedly calling
// EraseAt until the range is consumed (spec.md §4.6 "Erase (range)"). length
// == part size and addr == 0 triggers a whole-chip erase (OpCE) instead.
func (f *Flash) Erase(ctx context.Context, addr uint64, length uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	if err := f.checkRange(addr, int(length)); err != nil {
		return err
	}
	if f.part.Flags.Has(catalog.FlagNoOp) {
		return wrapStatus(StatusUnsupported, "erase: part declares no erase support")
	}
	if addr%4096 != 0 || length%4096 != 0 {
		return wrapStatus(StatusInvalidParameter, "erase: addr and length must be 4 KiB aligned")
	}

	if addr == 0 && length == f.part.SizeBytes {
		return f.eraseChipLocked(ctx)
	}

	end := addr + length
	for cur := addr; cur < end; {
		erased, err := f.eraseAtLocked(ctx, cur, end-cur)
		if err != nil {
			return err
		}
		if erased == 0 {
			return wrapStatus(StatusInvalidParameter, "erase: no progress erasing at %#x", cur)
		}
		cur += erased
	}
	return nil
}

// EraseAt erases a single sector covering addr, choosing the largest
// declared sector size that both divides the region-relative offset of addr
// and fits within maxLen (spec.md §4.6 "Erase at"). It returns the number of
// bytes actually erased, which callers should use to advance a cursor since
// it may be smaller than maxLen.
func (f *Flash) EraseAt(ctx context.Context, addr uint64, maxLen uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return 0, err
	}
	if f.part.Flags.Has(catalog.FlagNoOp) {
		return 0, wrapStatus(StatusUnsupported, "erase_at: part declares no erase support")
	}
	if err := f.checkRange(addr, 1); err != nil {
		return 0, err
	}
	if maxLen == 0 {
		return 0, wrapStatus(StatusInvalidParameter, "erase_at: maxlen must be > 0")
	}
	return f.eraseAtLocked(ctx, addr, maxLen)
}

// eraseAtLocked is the single-sector erase primitive shared by EraseAt and
// Erase's range loop; f.mu must already be held.
//
//  1. Find the EraseRegion containing addr.
//  2. Align erase_start/erase_end down to the region's min_erasesize,
//     clamping erase_end to the region's end.
//  3. Among the region's enabled EraseSector indices, pick the largest whose
//     size divides (erase_start - region_base) and fits in the aligned span.
//  4. Issue the sector's opcode (WREN first, wait-busy after).
//  5. Return the bytes actually erased.
func (f *Flash) eraseAtLocked(ctx context.Context, addr uint64, maxLen uint64) (uint64, error) {
	info := f.part.EraseInfoFor(f.addrBytes)
	if len(info.Regions) == 0 {
		return 0, wrapStatus(StatusUnsupported, "erase_at: part declares no erase geometry at %d-byte addressing", f.addrBytes)
	}

	region, base, ok := eraseRegionContaining(info, addr)
	if !ok {
		return 0, wrapStatus(StatusUnsupported, "erase_at: addr=%#x not inside any declared erase region", addr)
	}
	granule := uint64(region.MinErasesize)
	if granule == 0 {
		return 0, wrapStatus(StatusUnsupported, "erase_at: region at %#x declares no minimum erase size", base)
	}

	eraseStart := addr - addr%granule
	regionEnd := base + region.SizeBytes
	rawEnd := addr + maxLen
	if rawEnd > regionEnd {
		rawEnd = regionEnd
	}
	eraseEnd := rawEnd - rawEnd%granule
	if eraseEnd <= eraseStart {
		return 0, wrapStatus(StatusInvalidParameter, "erase_at: maxlen=%d too small for %d-byte region granularity at %#x", maxLen, granule, addr)
	}

	sector, ok := largestEnabledSector(info, region, eraseStart-base, eraseEnd-eraseStart)
	if !ok {
		return 0, wrapStatus(StatusInvalidParameter, "erase_at: no enabled sector size divides offset %#x within its region", eraseStart-base)
	}

	if err := f.eraseSectorLocked(ctx, eraseStart, sector); err != nil {
		return 0, err
	}

	erased := uint64(sector.SizeBytes)
	if span := eraseEnd - eraseStart; erased > span {
		erased = span
	}
	return erased, nil
}

// eraseRegionContaining finds the EraseRegion covering addr, returning its
// base address too since EraseRegion carries only a size, not a start
// offset — regions are implicitly contiguous in declaration order.
func eraseRegionContaining(info catalog.EraseInfo, addr uint64) (catalog.EraseRegion, uint64, bool) {
	var base uint64
	for _, r := range info.Regions {
		if addr >= base && addr < base+r.SizeBytes {
			return r, base, true
		}
		base += r.SizeBytes
	}
	return catalog.EraseRegion{}, 0, false
}

// largestEnabledSector picks the widest EraseSector enabled by region's
// ErasesizeMask whose size divides regionOffset and fits within span.
func largestEnabledSector(info catalog.EraseInfo, region catalog.EraseRegion, regionOffset, span uint64) (catalog.EraseSector, bool) {
	var candidates []catalog.EraseSector
	for i, s := range info.Sectors {
		if region.ErasesizeMask&(1<<uint(i)) == 0 {
			continue
		}
		if s.SizeBytes == 0 {
			continue
		}
		candidates = append(candidates, s)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].SizeBytes > candidates[j].SizeBytes })

	for _, s := range candidates {
		size := uint64(s.SizeBytes)
		if size == 0 || regionOffset%size != 0 {
			continue
		}
		if size > span {
			continue
		}
		return s, true
	}
	return catalog.EraseSector{}, false
}

func (f *Flash) eraseSectorLocked(ctx context.Context, addr uint64, sector catalog.EraseSector) error {
	if f.addrStrat == negotiate.AddrStrategyEAR && f.addrBytes == 3 {
		if err := f.maybeSwitchEARBank(ctx, addr); err != nil {
			return err
		}
	}
	if err := f.writeEnable(ctx); err != nil {
		return err
	}
	bus := f.bus(ctx)
	if err := bus.Exec(sector.Opcode, f.encodeAddr(addr), 0, nil, true, catalog.IoMode111); err != nil {
		return wrapStatus(StatusDeviceIoError, "erase: addr=%#x size=%d: %v", addr, sector.SizeBytes, err)
	}
	return f.waitBusy(ctx, eraseTimeout(sector.MaxTimeMS))
}

func (f *Flash) eraseChipLocked(ctx context.Context) error {
	if err := f.writeEnable(ctx); err != nil {
		return err
	}
	bus := f.bus(ctx)
	if err := bus.Exec(vocab.OpCE, nil, 0, nil, true, catalog.IoMode111); err != nil {
		return wrapStatus(StatusDeviceIoError, "chip erase: %v", err)
	}
	// Catalog parts don't carry a dedicated whole-chip timeout; the longest
	// declared sector erase time is the closest lower bound we have.
	var longest uint32
	for _, s := range f.part.EraseInfoFor(f.addrBytes).Sectors {
		if s.MaxTimeMS > longest {
			longest = s.MaxTimeMS
		}
	}
	return f.waitBusy(ctx, eraseTimeout(longest*8))
}
