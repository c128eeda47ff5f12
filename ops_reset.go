package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/vocab"
)

// SoftReset issues the part's highest-precedence soft-reset strategy
// (spec.md §4.5's precedence chain: 66h/99h > F0h > drive-4-IO-ones variants),
// returning Unsupported if the part declares none.
func (f *Flash) SoftReset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	strategy, ok := negotiate.SelectSoftReset(f.part)
	if !ok {
		return wrapStatus(StatusUnsupported, "soft_reset: part declares no reset strategy")
	}

	bus := f.bus(ctx)
	switch strategy {
	case catalog.SoftReset66h99h:
		if err := bus.Exec(vocab.OpRSTEN, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "soft_reset: RSTEN: %v", err)
		}
		if err := bus.Exec(vocab.OpRST, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "soft_reset: RST: %v", err)
		}

	case catalog.SoftResetF0h:
		if err := bus.Exec(vocab.OpF0Reset, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "soft_reset: F0h: %v", err)
		}

	case catalog.SoftResetDrive4IOOnes8, catalog.SoftResetDrive4IOOnes8or10, catalog.SoftResetDrive4IOOnes16:
		clocks := driveOnesClockCount(strategy, f.addrBytes == 4)
		if err := bus.Exec(0xff, nil, clocks, nil, false, catalog.IoMode444); err != nil {
			return wrapStatus(StatusDeviceIoError, "soft_reset: drive-ones: %v", err)
		}

	default:
		return wrapStatus(StatusUnsupported, "soft_reset: unhandled strategy %d", strategy)
	}

	f.part = nil
	f.sfdpTable = nil
	return nil
}

func driveOnesClockCount(strategy catalog.SoftResetFlags, a4bModeActive bool) int {
	switch strategy {
	case catalog.SoftResetDrive4IOOnes8:
		return 8
	case catalog.SoftResetDrive4IOOnes8or10:
		if a4bModeActive {
			return 10
		}
		return 8
	case catalog.SoftResetDrive4IOOnes16:
		return 16
	default:
		return 8
	}
}
