// Package spinor resolves and drives SPI-NOR flash parts over a
// host-supplied Transport: part identification (JEDEC ID + SFDP), I/O-mode
// negotiation, and the read/program/erase/OTP/UID operation engine.
package spinor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/logx"
	"github.com/snorcore/spinor/internal/negotiate"
	"github.com/snorcore/spinor/internal/resolve"
	"github.com/snorcore/spinor/internal/sfdp"
	"github.com/snorcore/spinor/internal/vocab"
	"github.com/snorcore/spinor/internal/xdebug"
)

// Debug mask bits for SetDebug, gating the bus-opcode trace commanderAdapter
// emits for every Exec/register access (spec.md §5's optional opcode trace).
const (
	DebugOpcodes xdebug.Mask = 1 << iota
	DebugRegisters
)

// defaultWaitBusyTimeout bounds an erase's wait-busy spin-poll when a part
// declares no max_erase_time_ms of its own (spec.md §5).
const defaultWaitBusyTimeout = 30 * time.Second

// Flash is a resolved, attached SPI-NOR device: the immutable catalog Part
// plus the runtime state accumulated during probing (SFDP, negotiated
// opcodes, current addressing mode) and a per-flash bus lock serializing
// every Transport call (spec.md §5 "per-flash mutex").
type Flash struct {
	mu sync.Mutex

	transport Transport
	threadSafe bool

	log   *slog.Logger
	debug *xdebug.Sink

	allowedIOCaps catalog.IoModeMask
	speedLimitHz  uint32

	part       *catalog.Part
	vendor     string
	vendorInit string
	sfdpTable  *sfdp.Table

	addrBytes   int
	sel3B       negotiate.Selection
	sel4B       negotiate.Selection
	addrStrat   negotiate.AddressingStrategy
	curHighAddr byte

	dieSelected uint32
}

// New creates an unattached Flash. Attach must be called before any probe
// or operation.
func New() *Flash {
	return &Flash{
		allowedIOCaps: catalog.All111444,
		speedLimitHz:  50_000_000,
		log:           logx.New(logx.Component("spinor", "flash"), nil),
		debug:         xdebug.NewSink(nil),
	}
}

// SetDebug points the bus-opcode trace at out, gated on mask (DebugOpcodes,
// DebugRegisters). A nil out (the default) makes tracing a no-op.
func (f *Flash) SetDebug(out io.Writer, mask xdebug.Mask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debug = xdebug.NewSink(out)
	f.debug.SetMask(mask)
}

// Attach binds t as the Transport this Flash drives. threadSafe (spec.md
// §5's "thread_safe at device open") is recorded but changes no behavior:
// every public method takes the Flash's own mutex whatever its value.
func (f *Flash) Attach(t Transport, threadSafe bool) error {
	if t == nil {
		return wrapStatus(StatusInvalidParameter, "attach: nil transport")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transport = t
	f.threadSafe = threadSafe
	return nil
}

// Detach releases the Transport reference; the Flash may be re-Attached.
func (f *Flash) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transport = nil
	f.part = nil
	f.sfdpTable = nil
}

// SetSpeedLimit records hz as the bus clock limit. Nothing reads the
// recorded value: negotiation and the operations never call
// Transport.SetSpeedHz.
func (f *Flash) SetSpeedLimit(hz uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedLimitHz = hz
}

// SetAllowedIOCaps restricts which IoMode variants the negotiator may
// select, intersected with the part's own declared capabilities.
func (f *Flash) SetAllowedIOCaps(modes ...catalog.IoMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allowedIOCaps = catalog.Mask(modes...)
}

// Probe runs the full identification algorithm (spec.md §4.4) and commits
// the result, negotiating opcodes and addressing mode but performing no
// chip-setup writes yet.
func (f *Flash) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeLocked(ctx)
}

func (f *Flash) probeLocked(ctx context.Context) error {
	if f.transport == nil {
		return wrapStatus(StatusDeviceNotFound, "probe: not attached")
	}

	cmd := f.bus(ctx)
	result, err := resolve.Resolve(cmd)
	if err != nil {
		return wrapStatus(StatusFlashPartNotRecognised, "probe: %v", err)
	}

	f.part = result.Part
	f.vendor = result.VendorDisplay
	f.vendorInit = result.VendorInit
	f.sfdpTable = result.SFDP

	return f.negotiateLocked(ctx)
}

func (f *Flash) negotiateLocked(ctx context.Context) error {
	cap := &capabilityAdapter{ctx: ctx, t: f.transport}

	sel3, err := negotiate.SelectOpcodes(f.part, 3, f.allowedIOCaps, cap)
	if err != nil {
		return wrapStatus(StatusFail, "negotiate: %v", err)
	}
	f.sel3B = sel3
	f.addrBytes = 3

	if f.part.SizeBytes > 16*1024*1024 {
		strat, err := negotiate.SelectAddressingStrategy(f.part, f.part.SizeBytes, cap)
		if err != nil {
			return wrapStatus(StatusFail, "negotiate: %v", err)
		}
		f.addrStrat = strat

		switch strat {
		case negotiate.AddrStrategyAlways4B, negotiate.AddrStrategy4BOpcode:
			sel4, err := negotiate.SelectOpcodes(f.part, 4, f.allowedIOCaps, cap)
			if err != nil {
				return wrapStatus(StatusFail, "negotiate: %v", err)
			}
			f.sel4B = sel4
			f.addrBytes = 4
		case negotiate.AddrStrategyModeSwitch:
			// Same opcodes as 3-byte addressing; a mode-switch write below
			// reinterprets their address phase as 4 bytes wide.
			f.sel4B = f.sel3B
		case negotiate.AddrStrategyEAR:
			// 3-byte opcodes are retained; the extended-address register
			// selects the active 16 MiB bank instead.
		}
	}

	if err := f.applyQELocked(ctx); err != nil {
		return err
	}
	if err := f.enterAddressingModeLocked(ctx); err != nil {
		return err
	}

	f.log = logx.New(logx.Component("spinor", "flash", f.part.Model), nil)
	return nil
}

// PartInit resolves against a specific named catalog part over the
// already-attached Transport, bypassing ID/SFDP probing entirely (spec.md's
// forced_init path for callers who already know the part), then negotiates
// exactly as Probe does.
func (f *Flash) PartInit(ctx context.Context, model string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transport == nil {
		return wrapStatus(StatusDeviceNotFound, "part_init: not attached")
	}
	m, ok := catalog.FindByName(model)
	if !ok {
		return wrapStatus(StatusFlashPartNotSpecified, "part_init: unknown model %q", model)
	}
	f.part = m.Part
	f.vendor = m.Part.DisplayVendor
	f.vendorInit = m.Vendor
	f.sfdpTable = nil
	return f.negotiateLocked(ctx)
}

// ProbeInit probes, and on a part mismatch against wantModel (if non-empty)
// returns FlashPartMismatch instead of silently accepting the probed part.
func (f *Flash) ProbeInit(ctx context.Context, wantModel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.probeLocked(ctx); err != nil {
		return err
	}
	if wantModel != "" && f.part.Model != wantModel {
		return wrapStatus(StatusFlashPartMismatch, "probe_init: resolved %q, wanted %q", f.part.Model, wantModel)
	}
	return nil
}

// FlashInfo reports the resolved part's identity and geometry (spec.md's
// info() call).
type FlashInfo struct {
	Vendor        string
	Model         string
	SizeBytes     uint64
	PageSizeBytes uint32
	ID            []byte
	HasSFDP       bool
	OTP           catalog.OtpLayout
}

// Info returns the current resolution's identity and geometry.
func (f *Flash) Info() (FlashInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.part == nil {
		return FlashInfo{}, wrapStatus(StatusFlashNotProbed, "info")
	}
	return FlashInfo{
		Vendor:        f.vendor,
		Model:         f.part.Model,
		SizeBytes:     f.part.SizeBytes,
		PageSizeBytes: f.part.PageSizeBytes,
		ID:            append([]byte(nil), f.part.ID.Bytes...),
		HasSFDP:       f.sfdpTable != nil,
		OTP:           f.part.OTP,
	}, nil
}

func (f *Flash) requireResolved() error {
	if f.part == nil {
		return wrapStatus(StatusFlashNotProbed, "operation requires a resolved part")
	}
	return nil
}

func (f *Flash) checkRange(addr uint64, length int) error {
	if length < 0 {
		return wrapStatus(StatusInvalidParameter, "negative length")
	}
	if addr+uint64(length) > f.part.SizeBytes {
		return wrapStatus(StatusFlashAddressOutOfRange, "addr=%#x len=%d size=%#x", addr, length, f.part.SizeBytes)
	}
	return nil
}

// activeSelection returns the negotiated read/pp opcode set for the
// current address width.
func (f *Flash) activeSelection() negotiate.Selection {
	if f.addrBytes == 4 {
		return f.sel4B
	}
	return f.sel3B
}

func (f *Flash) bus(ctx context.Context) *commanderAdapter {
	return &commanderAdapter{ctx: ctx, t: f.transport, f: f, debug: f.debug}
}

// waitBusy spin-polls RDSR until WIP clears or timeout elapses, per
// spec.md §5: "a spin-polling loop on RDSR with a deadline measured from a
// monotonic ... timer; it does not sleep" in the blocking sense — Go's
// scheduler still preempts between iterations, but there is no sleep call
// inserted deliberately.
func (f *Flash) waitBusy(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultWaitBusyTimeout
	}
	deadline := time.Now().Add(timeout)
	cmd := f.bus(ctx)
	for {
		sr, err := cmd.readRegister(vocab.RegSR1, vocab.OpRDSR, 1)
		if err != nil {
			return wrapStatus(StatusDeviceIoError, "wait_busy: %v", err)
		}
		if sr&uint32(vocab.SR1BitWIP) == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			// One final read past the deadline catches an operation that
			// completed just as time ran out.
			sr, err = cmd.readRegister(vocab.RegSR1, vocab.OpRDSR, 1)
			if err == nil && sr&uint32(vocab.SR1BitWIP) == 0 {
				return nil
			}
			return wrapStatus(StatusTimeout, "wait_busy: exceeded %v", timeout)
		}
	}
}

// ppTimeout converts a part's declared max page-program time (microseconds,
// 0 meaning "unspecified") to a wait-busy deadline, falling back to
// defaultWaitBusyTimeout when the part declares nothing.
func ppTimeout(maxPPTimeUS uint32) time.Duration {
	if maxPPTimeUS == 0 {
		return defaultWaitBusyTimeout
	}
	return time.Duration(maxPPTimeUS) * time.Microsecond
}

// eraseTimeout does the same for a sector's declared max erase time
// (milliseconds).
func eraseTimeout(maxTimeMS uint32) time.Duration {
	if maxTimeMS == 0 {
		return defaultWaitBusyTimeout
	}
	return time.Duration(maxTimeMS) * time.Millisecond
}

func (f *Flash) writeEnable(ctx context.Context) error {
	cmd := f.bus(ctx)
	if f.part.Ops != nil && f.part.Ops.DataWriteEnable != nil {
		return f.part.Ops.DataWriteEnable(cmd)
	}
	return cmd.Exec(vocab.OpWREN, nil, 0, nil, false, catalog.IoMode111)
}
