package spinor

import "context"

// Op describes one SPI transaction: an opcode, an optional address phase,
// an optional dummy phase, and an optional data phase. The same type
// serves probe commands, register accesses, and bulk read/program ops.
type Op struct {
	Opcode      byte
	Addr        []byte // nil when the opcode has no address phase
	DummyCycles int
	Data        []byte
	Write       bool // false: Data is filled by the transport (read); true: Data is sent
	CmdBusWidth int  // 1, 2, 4, or 8
	AddrBusWidth int
	DataBusWidth int
	DTR          bool
}

// Transport is the host-adapter abstraction every Flash is attached to. It
// knows nothing about SPI-NOR semantics; it only knows how to shuttle one
// Op and report what bus shapes it can actually drive.
type Transport interface {
	// Exec issues one Op synchronously, filling op.Data for a read or
	// consuming it for a write.
	Exec(ctx context.Context, op *Op) error

	// SupportsOp reports whether the transport can physically drive the
	// given opcode at the given bus widths/dummy count — e.g. a software
	// bit-bang transport might not support DTR or 8-8-8 at all.
	SupportsOp(cmdBW, addrBW, dataBW int, dtr bool, opcode byte, dummyCycles int) bool

	// SetSpeedHz requests a bus clock; returns the clock actually set.
	SetSpeedHz(hz uint32) (uint32, error)

	// MaxTransferSize bounds a single Exec's data phase; callers chunk
	// reads/programs to this size.
	MaxTransferSize() int
}
