package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/vocab"
)

// ReadUID reads the part's factory-programmed unique identifier, if it
// declares one (FlagUniqueID), through the dedicated 4Bh opcode only. UIDs
// stored at an SFDP offset or inside the SCUR security register are not
// read by this method.
func (f *Flash) ReadUID(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return nil, err
	}
	if !f.part.Flags.Has(catalog.FlagUniqueID) {
		return nil, wrapStatus(StatusUnsupported, "read_uid: part declares no unique ID")
	}

	const uidLen = 8
	bus := f.bus(ctx)
	data := make([]byte, uidLen)
	// Opcode 4Bh is preceded by 4 dummy bytes on every part grounded on in
	// the catalog (original_source/flash/spi-nor/spi-nor.c's read_uid).
	if err := bus.Exec(vocab.OpReadUID, []byte{0, 0, 0, 0}, 0, data, false, catalog.IoMode111); err != nil {
		return nil, wrapStatus(StatusDeviceIoError, "read_uid: %v", err)
	}
	return data, nil
}

// SelectDie switches the active die on a stacked-die part (spec.md §4.6's
// select_die), gated on NumDies so single-die parts reject a nonzero index.
func (f *Flash) SelectDie(ctx context.Context, die uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	if die >= f.part.NumDies {
		return wrapStatus(StatusInvalidParameter, "select_die: %d out of range [0, %d)", die, f.part.NumDies)
	}
	if f.part.NumDies <= 1 {
		if die == 0 {
			return nil
		}
		return wrapStatus(StatusUnsupported, "select_die: part declares a single die")
	}

	bus := f.bus(ctx)
	if err := bus.Exec(vocab.OpSelectDie, nil, 0, []byte{byte(die)}, true, catalog.IoMode111); err != nil {
		return wrapStatus(StatusDeviceIoError, "select_die: %v", err)
	}
	f.dieSelected = die
	return nil
}

// SetBusWidth narrows the allowed I/O mode mask after Probe and
// renegotiates, used when a caller wants to drop to a slower mode mid-
// session (e.g. diagnosing a flaky quad-mode link).
func (f *Flash) SetBusWidth(ctx context.Context, modes ...catalog.IoMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	f.allowedIOCaps = catalog.Mask(modes...)
	return f.negotiateLocked(ctx)
}

// Wake issues Release-Power-Down on the attached Transport without
// consulting any part flag; it needs no resolved part. Parts declaring
// FlagLegacyPowerDown need it before their first command after a cold boot
// (spec.md's power-down quirk, grounded on
// original_source/flash/spi-nor/vendor-sst.c).
func (f *Flash) Wake(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.transport == nil {
		return wrapStatus(StatusDeviceNotFound, "wake: not attached")
	}
	return f.bus(ctx).Exec(vocab.OpReleasePowerDown, nil, 0, nil, false, catalog.IoMode111)
}

// WriteProtectInfo reports the protected byte extent implied by the part's
// current block-protect register value (spec.md §4.7).
type WriteProtectInfo struct {
	Kind   catalog.WpRangeKind
	Start  uint64
	Length uint64
}

// WriteProtectStatus reads the part's WP register and resolves it to a
// protected extent.
func (f *Flash) WriteProtectStatus(ctx context.Context) (WriteProtectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return WriteProtectInfo{}, err
	}
	if len(f.part.WP.Ranges) == 0 {
		return WriteProtectInfo{}, wrapStatus(StatusUnsupported, "write_protect_status: part declares no WP encoding")
	}

	regval, err := f.bus(ctx).ReadRegister(f.part.WP.Access.Name)
	if err != nil {
		return WriteProtectInfo{}, wrapStatus(StatusDeviceIoError, "write_protect_status: %v", err)
	}
	r := f.part.WP.Lookup(regval)
	start, length := catalog.Resolve(r, f.part.SizeBytes)
	return WriteProtectInfo{Kind: r.Kind, Start: start, Length: length}, nil
}
