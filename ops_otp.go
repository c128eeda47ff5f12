package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/vocab"
)

// otpAddress computes the address phase for one OTP access, honoring a
// part's OTPAddress override when it declares one (spec.md §4.6).
func (f *Flash) otpAddress(index, addr uint32) []byte {
	if f.part.Ops != nil && f.part.Ops.OTPAddress != nil {
		return f.part.Ops.OTPAddress(f.part.OTP, index, addr)
	}
	// SECR-family default: index<<12 | addr, rendered as a 3-byte address.
	a := index<<12 | addr
	return []byte{byte(a >> 16), byte(a >> 8), byte(a)}
}

func (f *Flash) checkOTPIndex(index uint32) error {
	if !f.part.OTP.Contains(index) {
		return wrapStatus(StatusInvalidParameter, "otp: region %d out of range [%d, %d)", index, f.part.OTP.StartIndex, f.part.OTP.StartIndex+f.part.OTP.Count)
	}
	return nil
}

// OTPRead reads length bytes at offset within OTP region index (spec.md
// §4.6's otp_read, dispatching on the part's declared OTPFamily).
func (f *Flash) OTPRead(ctx context.Context, index uint32, offset uint32, length int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return nil, err
	}
	if err := f.checkOTPIndex(index); err != nil {
		return nil, err
	}
	if offset+uint32(length) > f.part.OTP.Size {
		return nil, wrapStatus(StatusFlashAddressOutOfRange, "otp_read: offset=%d len=%d size=%d", offset, length, f.part.OTP.Size)
	}

	bus := f.bus(ctx)
	data := make([]byte, length)

	switch f.part.OTPFamily {
	case catalog.OtpFamilySECR:
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpReadOTP, addr, 8, data, false, catalog.IoMode111); err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "otp_read: %v", err)
		}
		return data, nil

	case catalog.OtpFamilyEON:
		// EON's address and lock-bit computation diverges per region type
		// (original_source/flash/spi-nor/vendor-eon.c's eon_otp_3_addr /
		// eon_otp_3_lock_bit); the part's OTPAddress/OTPLockBit overrides
		// carry that, the bus sequence itself matches the SECR family.
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpReadOTP, addr, 8, data, false, catalog.IoMode111); err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "otp_read: %v", err)
		}
		return data, nil

	case catalog.OtpFamilyPaged:
		// Splits the transfer on 256-byte page boundaries regardless of the
		// raw OTP block size (spec.md §4.6 "Paged variants").
		const pageSize = 256
		for off := 0; off < length; {
			pageOff := (offset + uint32(off)) % pageSize
			n := pageSize - int(pageOff)
			if n > length-off {
				n = length - off
			}
			addr := f.otpAddress(index, offset+uint32(off))
			if err := bus.Exec(vocab.OpReadOTP, addr, 8, data[off:off+n], false, catalog.IoMode111); err != nil {
				return nil, wrapStatus(StatusDeviceIoError, "otp_read: %v", err)
			}
			off += n
		}
		return data, nil

	case catalog.OtpFamilySCUR:
		if err := bus.Exec(vocab.OpENSO, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "otp_read: enter secured-OTP window: %v", err)
		}
		addr := f.otpAddress(index, offset)
		err := bus.Exec(vocab.OpRead, addr, 0, data, false, catalog.IoMode111)
		if exitErr := bus.Exec(vocab.OpEXSO, nil, 0, nil, false, catalog.IoMode111); exitErr != nil && err == nil {
			err = exitErr
		}
		if err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "otp_read: %v", err)
		}
		return data, nil

	case catalog.OtpFamilyAtmelRaw:
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpAtmelReadOTP, addr, 16, data, false, catalog.IoMode111); err != nil {
			return nil, wrapStatus(StatusDeviceIoError, "otp_read: %v", err)
		}
		return data, nil

	default:
		return nil, wrapStatus(StatusUnsupported, "otp_read: part declares no OTP family")
	}
}

// OTPWrite programs data at offset within OTP region index. OTP regions are
// one-time programmable at the bit level; the caller is responsible for not
// re-programming already-written bits (spec.md §4.6's documented caveat).
func (f *Flash) OTPWrite(ctx context.Context, index uint32, offset uint32, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	if err := f.checkOTPIndex(index); err != nil {
		return err
	}
	if offset+uint32(len(data)) > f.part.OTP.Size {
		return wrapStatus(StatusFlashAddressOutOfRange, "otp_write: offset=%d len=%d size=%d", offset, len(data), f.part.OTP.Size)
	}

	bus := f.bus(ctx)

	switch f.part.OTPFamily {
	case catalog.OtpFamilySECR:
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpProgOTP, addr, 0, data, true, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "otp_write: %v", err)
		}
		return f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS))

	case catalog.OtpFamilyEON:
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpProgOTP, addr, 0, data, true, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "otp_write: %v", err)
		}
		return f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS))

	case catalog.OtpFamilyPaged:
		const pageSize = 256
		for off := 0; off < len(data); {
			pageOff := (offset + uint32(off)) % pageSize
			n := pageSize - int(pageOff)
			if n > len(data)-off {
				n = len(data) - off
			}
			if err := f.writeEnable(ctx); err != nil {
				return err
			}
			addr := f.otpAddress(index, offset+uint32(off))
			if err := bus.Exec(vocab.OpProgOTP, addr, 0, data[off:off+n], true, catalog.IoMode111); err != nil {
				return wrapStatus(StatusDeviceIoError, "otp_write: %v", err)
			}
			if err := f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS)); err != nil {
				return err
			}
			off += n
		}
		return nil

	case catalog.OtpFamilySCUR:
		if err := bus.Exec(vocab.OpENSO, nil, 0, nil, false, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "otp_write: enter secured-OTP window: %v", err)
		}
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		addr := f.otpAddress(index, offset)
		err := bus.Exec(vocab.OpPP, addr, 0, data, true, catalog.IoMode111)
		if err == nil {
			err = f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS))
		}
		if exitErr := bus.Exec(vocab.OpEXSO, nil, 0, nil, false, catalog.IoMode111); exitErr != nil && err == nil {
			err = exitErr
		}
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "otp_write: %v", err)
		}
		return nil

	case catalog.OtpFamilyAtmelRaw:
		if err := f.writeEnable(ctx); err != nil {
			return err
		}
		addr := f.otpAddress(index, offset)
		if err := bus.Exec(vocab.OpAtmelProgOTP, addr, 0, data, true, catalog.IoMode111); err != nil {
			return wrapStatus(StatusDeviceIoError, "otp_write: %v", err)
		}
		return f.waitBusy(ctx, ppTimeout(f.part.MaxPPTimeUS))

	default:
		return wrapStatus(StatusUnsupported, "otp_write: part declares no OTP family")
	}
}

// OTPLock permanently locks OTP region index against further programming
// (spec.md §4.6's otp_lock — irreversible on real hardware).
func (f *Flash) OTPLock(ctx context.Context, index uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return err
	}
	if err := f.checkOTPIndex(index); err != nil {
		return err
	}
	if f.part.Ops == nil || f.part.Ops.OTPLockBit == nil {
		return wrapStatus(StatusUnsupported, "otp_lock: part declares no lock-bit mapping")
	}

	name, bit := f.part.Ops.OTPLockBit(index)
	bus := f.bus(ctx)
	cur, err := bus.ReadRegister(name)
	if err != nil {
		return wrapStatus(StatusDeviceIoError, "otp_lock: read %s: %v", name, err)
	}
	if err := f.writeEnable(ctx); err != nil {
		return err
	}
	if err := bus.WriteRegister(name, cur|(1<<bit)); err != nil {
		return wrapStatus(StatusDeviceIoError, "otp_lock: write %s: %v", name, err)
	}
	return f.waitBusy(ctx, 0)
}

// OTPLocked reports whether OTP region index has already been locked.
func (f *Flash) OTPLocked(ctx context.Context, index uint32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireResolved(); err != nil {
		return false, err
	}
	if err := f.checkOTPIndex(index); err != nil {
		return false, err
	}
	if f.part.Ops == nil || f.part.Ops.OTPLockBit == nil {
		return false, wrapStatus(StatusUnsupported, "otp_locked: part declares no lock-bit mapping")
	}

	name, bit := f.part.Ops.OTPLockBit(index)
	cur, err := f.bus(ctx).ReadRegister(name)
	if err != nil {
		return false, wrapStatus(StatusDeviceIoError, "otp_locked: read %s: %v", name, err)
	}
	return cur&(1<<bit) != 0, nil
}
