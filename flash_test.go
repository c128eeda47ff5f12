package spinor

import (
	"bytes"
	"context"
	"testing"

	"github.com/snorcore/spinor/internal/vocab"
)

// fakeTransport is a minimal in-memory Transport standing in for a real SPI
// host adapter: enough register/opcode behavior to drive a simulated part
// (W25Q128JV, GD25Q128C, MX25L25645G, AT25DF321A, EN25Q128, W25Q256JV,
// SST25VF040B) through Probe, reads, page and AAI programs, erases, and OTP
// access.
type fakeTransport struct {
	id       []byte
	mem      []byte
	otp      []byte
	sr1, sr2 byte
	wel      bool
	aaiAddr  uint32
	execLog  []byte
}

func newFakeTransport(id []byte, size int) *fakeTransport {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xff
	}
	otp := make([]byte, 4096)
	for i := range otp {
		otp[i] = 0xff
	}
	return &fakeTransport{id: id, mem: mem, otp: otp}
}

func (f *fakeTransport) Exec(ctx context.Context, op *Op) error {
	f.execLog = append(f.execLog, op.Opcode)
	switch op.Opcode {
	case vocab.OpReadID:
		copy(op.Data, f.id)
		return nil
	case vocab.OpReadSFDP:
		return errNoSFDP
	case vocab.OpWREN:
		f.wel = true
		return nil
	case vocab.OpWRDI:
		f.wel = false
		return nil
	case vocab.OpRDSR:
		if len(op.Data) > 0 {
			op.Data[0] = f.sr1
		}
		return nil
	case vocab.OpRDSR2:
		if len(op.Data) > 0 {
			op.Data[0] = f.sr2
		}
		return nil
	case vocab.OpWRSR:
		if len(op.Data) >= 1 {
			f.sr1 = op.Data[0]
		}
		if len(op.Data) >= 2 {
			f.sr2 = op.Data[1]
		}
		f.wel = false
		return nil
	case vocab.OpWRSR2:
		if len(op.Data) > 0 {
			f.sr2 = op.Data[0]
		}
		f.wel = false
		return nil
	case vocab.OpSE4K, vocab.Op4SE4K:
		addr := decodeAddr(op.Addr)
		for i := uint32(0); i < 4096; i++ {
			f.mem[addr+i] = 0xff
		}
		f.wel = false
		return nil
	case vocab.OpBE32K:
		addr := decodeAddr(op.Addr)
		for i := uint32(0); i < 32*1024; i++ {
			f.mem[addr+i] = 0xff
		}
		f.wel = false
		return nil
	case vocab.OpBE64K, vocab.Op4BE64K:
		addr := decodeAddr(op.Addr)
		for i := uint32(0); i < 64*1024; i++ {
			f.mem[addr+i] = 0xff
		}
		f.wel = false
		return nil
	case vocab.OpAAIWordProg:
		// Address phase present only on the first word of a run; the
		// device auto-increments internally on every later call.
		if op.Addr != nil {
			f.aaiAddr = decodeAddr(op.Addr)
		}
		copy(f.mem[f.aaiAddr:f.aaiAddr+uint32(len(op.Data))], op.Data)
		f.aaiAddr += uint32(len(op.Data))
		f.wel = false
		return nil
	case vocab.OpReadOTP, vocab.OpAtmelReadOTP:
		addr := decodeAddr(op.Addr) % uint32(len(f.otp))
		copy(op.Data, f.otp[addr:addr+uint32(len(op.Data))])
		return nil
	case vocab.OpProgOTP, vocab.OpAtmelProgOTP:
		addr := decodeAddr(op.Addr) % uint32(len(f.otp))
		copy(f.otp[addr:addr+uint32(len(op.Data))], op.Data)
		f.wel = false
		return nil
	default:
		// Every remaining opcode this test exercises is a bulk data phase:
		// an address-qualified read (op.Write == false) or program
		// (op.Write == true), regardless of which negotiated I/O-mode
		// opcode variant it is.
		if op.Addr == nil {
			return nil
		}
		addr := decodeAddr(op.Addr)
		if op.Write {
			copy(f.mem[addr:addr+uint32(len(op.Data))], op.Data)
			f.wel = false
		} else {
			copy(op.Data, f.mem[addr:addr+uint32(len(op.Data))])
		}
		return nil
	}
}

func (f *fakeTransport) SupportsOp(cmdBW, addrBW, dataBW int, dtr bool, opcode byte, dummyCycles int) bool {
	return !dtr && cmdBW <= 4 && dataBW <= 4
}

func (f *fakeTransport) SetSpeedHz(hz uint32) (uint32, error) { return hz, nil }
func (f *fakeTransport) MaxTransferSize() int                 { return 256 }

func decodeAddr(addr []byte) uint32 {
	var a uint32
	for _, b := range addr {
		a = a<<8 | uint32(b)
	}
	return a
}

type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

const errNoSFDP = sentinelErr("fake transport: SFDP not implemented")

func TestProbeResolvesW25Q128JV(t *testing.T) {
	tr := newFakeTransport([]byte{0xEF, 0x40, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "W25Q128JV" {
		t.Fatalf("resolved model = %q, want W25Q128JV", info.Model)
	}
	if info.Vendor != "Winbond" {
		t.Fatalf("resolved vendor = %q, want Winbond", info.Vendor)
	}
	if info.SizeBytes != 16*1024*1024 {
		t.Fatalf("resolved size = %d, want 16 MiB", info.SizeBytes)
	}
}

func TestReadAtAfterWriteAt(t *testing.T) {
	tr := newFakeTransport([]byte{0xEF, 0x40, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}

	payload := []byte("spi-nor-flash-round-trip")
	if err := fl.WriteAt(context.Background(), 0x1000, payload); err != nil {
		t.Fatalf("write_at: %v", err)
	}
	got, err := fl.ReadAt(context.Background(), 0x1000, len(payload))
	if err != nil {
		t.Fatalf("read_at: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %q, want %q", got, payload)
	}
}

func TestEraseAt4KSector(t *testing.T) {
	tr := newFakeTransport([]byte{0xEF, 0x40, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}

	if err := fl.WriteAt(context.Background(), 0x2000, []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("write_at: %v", err)
	}
	if err := fl.Erase(context.Background(), 0x2000, 4096); err != nil {
		t.Fatalf("erase: %v", err)
	}
	got, err := fl.ReadAt(context.Background(), 0x2000, 3)
	if err != nil {
		t.Fatalf("read_at: %v", err)
	}
	if !bytes.Equal(got, []byte{0xff, 0xff, 0xff}) {
		t.Fatalf("post-erase bytes = %v, want all 0xff", got)
	}
}

func TestReadAtRejectsOutOfRange(t *testing.T) {
	tr := newFakeTransport([]byte{0xEF, 0x40, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if _, err := fl.ReadAt(context.Background(), 16*1024*1024, 1); err == nil {
		t.Fatalf("expected an out-of-range error reading at the die boundary")
	}
}

func TestProbeGD25Q128CEnablesQEViaCombinedRegister(t *testing.T) {
	tr := newFakeTransport([]byte{0xC8, 0x40, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "GD25Q128C" {
		t.Fatalf("resolved model = %q, want GD25Q128C", info.Model)
	}
	if tr.sr2&0x02 == 0 {
		t.Fatalf("sr2 = %#x, want bit 1 (QE) set after the combined SR1|CR write", tr.sr2)
	}

	tr.sr1 = 0x0c // BP1|BP0 set, BP2 clear
	wp, err := fl.WriteProtectStatus(context.Background())
	if err != nil {
		t.Fatalf("write_protect_status: %v", err)
	}
	if wp.Length != 64*1024 {
		t.Fatalf("protected length = %d, want 64 KiB for SR1 BP bits 0x0c", wp.Length)
	}
	if wp.Start != 16*1024*1024-64*1024 {
		t.Fatalf("protected start = %#x, want top-of-die minus 64 KiB", wp.Start)
	}
}

func TestInfoBeforeProbeFails(t *testing.T) {
	fl := New()
	if _, err := fl.Info(); err == nil {
		t.Fatalf("expected StatusFlashNotProbed before Probe is called")
	}
}

// TestEraseMX25L25645GUses4BOpcode covers the dedicated-4B-opcode erase
// worked scenario: a part above 16 MiB with A4BEn4BOpcode never touches
// EAR/bank state, it just negotiates straight to 4-byte addressing and
// issues the 4B-only erase opcode (DCh here, via Op4BE64K).
func TestEraseMX25L25645GUses4BOpcode(t *testing.T) {
	tr := newFakeTransport([]byte{0xC2, 0x20, 0x19, 0, 0, 0, 0, 0}, 32*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "MX25L25645G" {
		t.Fatalf("resolved model = %q, want MX25L25645G", info.Model)
	}

	const addr = 0x01000000 // 16 MiB: past the 3-byte-addressable boundary
	if err := fl.WriteAt(context.Background(), addr, []byte{0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("write_at: %v", err)
	}
	if err := fl.Erase(context.Background(), addr, 64*1024); err != nil {
		t.Fatalf("erase: %v", err)
	}
	got, err := fl.ReadAt(context.Background(), addr, 3)
	if err != nil {
		t.Fatalf("read_at: %v", err)
	}
	if !bytes.Equal(got, []byte{0xff, 0xff, 0xff}) {
		t.Fatalf("post-erase bytes = %v, want all 0xff", got)
	}

	found := false
	for _, op := range tr.execLog {
		if op == vocab.Op4BE64K {
			found = true
		}
	}
	if !found {
		t.Fatalf("exec log %v never issued the 4-byte-address 64K erase opcode", tr.execLog)
	}
}

// TestOTPRoundTripAT25DF321A covers an AtmelRaw-family OTP read: AT25DF321A
// addresses its single flat OTP region directly via 77h/9Bh rather than the
// SECR index<<12 scheme.
func TestOTPRoundTripAT25DF321A(t *testing.T) {
	tr := newFakeTransport([]byte{0x1F, 0x47, 0x01, 0x00, 0, 0, 0, 0}, 4*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "AT25DF321A" {
		t.Fatalf("resolved model = %q, want AT25DF321A", info.Model)
	}

	payload := []byte("otp-round-trip")
	if err := fl.OTPWrite(context.Background(), 0, 4, payload); err != nil {
		t.Fatalf("otp_write: %v", err)
	}
	got, err := fl.OTPRead(context.Background(), 0, 4, len(payload))
	if err != nil {
		t.Fatalf("otp_read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("otp read back %q, want %q", got, payload)
	}
}

// TestOTPLockEN25Q128 covers EON's type-3 lock-bit mapping: each OTP region
// index locks a distinct SR1 bit rather than sharing one lock bit across the
// whole part.
func TestOTPLockEN25Q128(t *testing.T) {
	tr := newFakeTransport([]byte{0x1C, 0x30, 0x18, 0, 0, 0, 0, 0}, 16*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}

	locked, err := fl.OTPLocked(context.Background(), 1)
	if err != nil {
		t.Fatalf("otp_locked: %v", err)
	}
	if locked {
		t.Fatalf("region 1 reports locked before OTPLock was ever called")
	}
	if err := fl.OTPLock(context.Background(), 1); err != nil {
		t.Fatalf("otp_lock: %v", err)
	}
	locked, err = fl.OTPLocked(context.Background(), 1)
	if err != nil {
		t.Fatalf("otp_locked: %v", err)
	}
	if !locked {
		t.Fatalf("region 1 reports unlocked after OTPLock")
	}
	// Region 1's lock bit (SR1 bit 2, per eon3LockBit) must be distinct from
	// region 0's (bit 7): locking region 1 must not also report region 0 as
	// locked through a shared bit.
	lockedZero, err := fl.OTPLocked(context.Background(), 0)
	if err != nil {
		t.Fatalf("otp_locked: %v", err)
	}
	if lockedZero {
		t.Fatalf("region 0 reports locked after only region 1 was locked — lock bits aren't distinct per region")
	}
}

// TestReadWriteAcross16MiBBoundaryW25Q256JV covers W25Q256JV's B7h/E9h
// mode-switch strategy: EN4B must be issued once during negotiation, and an
// access past the 3-byte-addressable 16 MiB boundary must still round-trip.
func TestReadWriteAcross16MiBBoundaryW25Q256JV(t *testing.T) {
	tr := newFakeTransport([]byte{0xEF, 0x40, 0x19, 0, 0, 0, 0, 0}, 32*1024*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "W25Q256JV" {
		t.Fatalf("resolved model = %q, want W25Q256JV", info.Model)
	}

	found := false
	for _, op := range tr.execLog {
		if op == vocab.OpEN4B {
			found = true
		}
	}
	if !found {
		t.Fatalf("exec log %v never issued EN4B during negotiation", tr.execLog)
	}

	const addr = 0x01000010 // 16 MiB + 16: just past the boundary
	payload := []byte{0x11, 0x22, 0x33, 0x44}
	if err := fl.WriteAt(context.Background(), addr, payload); err != nil {
		t.Fatalf("write_at: %v", err)
	}
	got, err := fl.ReadAt(context.Background(), addr, len(payload))
	if err != nil {
		t.Fatalf("read_at: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %q, want %q", got, payload)
	}
}

// TestAAIWriteSST25VF040B covers the Auto-Address-Increment word-program
// state machine across all three branches: an odd start address (leading
// single-byte program), the bulk two-bytes-per-transaction AAI loop, and an
// odd-length tail (trailing single-byte program after WRDI).
func TestAAIWriteSST25VF040B(t *testing.T) {
	tr := newFakeTransport([]byte{0xBF, 0x25, 0x8D, 0, 0, 0, 0, 0}, 512*1024)
	fl := New()
	if err := fl.Attach(tr, false); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fl.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	info, err := fl.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Model != "SST25VF040B" {
		t.Fatalf("resolved model = %q, want SST25VF040B", info.Model)
	}

	const addr = 0x1001 // odd: forces the leading single-byte program
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06} // even length from an odd start: one byte is left after the words
	if err := fl.WriteAt(context.Background(), addr, payload); err != nil {
		t.Fatalf("write_at: %v", err)
	}
	got, err := fl.ReadAt(context.Background(), addr, len(payload))
	if err != nil {
		t.Fatalf("read_at: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %v, want %v", got, payload)
	}

	aaiUsed := false
	for _, op := range tr.execLog {
		if op == vocab.OpAAIWordProg {
			aaiUsed = true
		}
	}
	if !aaiUsed {
		t.Fatalf("exec log %v never issued the AAI word-program opcode", tr.execLog)
	}
}
