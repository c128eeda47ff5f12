package catalog

import "github.com/snorcore/spinor/internal/vocab"

// Params is the mutable parameter set a part's fixups may adjust before or
// after SFDP merge — the catalog-side half of spec.md's ResolvedFlash, kept
// free of any Transport/bus dependency so internal/catalog never imports
// the root package (which depends on internal/catalog, not the reverse).
type Params struct {
	MaxPPTimeUS                                    uint32
	MaxEraseTimeMS                                 uint32
	MaxSpeedSPIMHz, MaxSpeedDualMHz, MaxSpeedQuadMHz uint32
}

// Reprober lets a part's pre-param-setup fixup redirect resolution to a
// different catalog entry (spec.md §4.4 step 5: "the fixup may call
// reprobe_part(model_name) which replaces Part and re-parses SFDP").
// Implemented by internal/resolve; bounded to MaxFixupDepth chained calls.
type Reprober interface {
	ReprobePart(model string) (*Part, bool)
	SFDPMinorVersion() (major, minor uint8, ok bool)
}

// FixupHooks are the optional per-part hooks spec.md §3 calls out under
// Part.fixups — a tagged pair of function values, the direct Go rendering
// of the source's spi_nor_fixup_hooks function-pointer struct (spec.md §9).
type FixupHooks struct {
	// PreParamSetup runs before SFDP/catalog merge. Returning a non-nil
	// *Part redirects resolution to it (a concrete model superseding a
	// meta entry, or a silicon-revision disambiguation); returning nil
	// keeps the current part.
	PreParamSetup func(r Reprober, current *Part) (*Part, error)

	// PostParamSetup runs once the PreParamSetup chain has settled,
	// adjusting the part's Params (page-program time and speeds) — e.g. the
	// SST-only forced max_pp_time_us override (spec.md §9).
	PostParamSetup func(p *Params)
}

// Bus is the narrow register/command surface the operation engine (spinor
// package) implements and passes down, so internal/catalog stays free of a
// Transport dependency.
type Bus interface {
	// Exec issues one opcode with an address/dummy/data phase at the
	// given IoMode; addr may be nil for opcodes with no address phase.
	Exec(opcode byte, addr []byte, dummyCycles int, data []byte, write bool, mode IoMode) error
	ReadRegister(name vocab.RegisterName) (uint32, error)
	WriteRegister(name vocab.RegisterName, value uint32) error
	CurrentAddrBytes() int
}

// OpsOverride lets a part or vendor replace a default operation-engine
// behavior. Every field is optional; nil means "use the generic engine
// behavior for this op".
type OpsOverride struct {
	// DataWriteEnable replaces the plain WREN issued before a data-
	// modifying command (spec.md §4.6 Page Program step 2 "WREN or
	// vendor hook") — used by parts whose write-enable also needs a
	// register write (e.g. SR-volatile-WREN-50h parts).
	DataWriteEnable func(b Bus) error

	// OTPAddress computes the address phase for an OTP access given the
	// logical region index and in-region offset — spec.md §4.6's
	// "otp_addr hook" for parts whose OTP addressing deviates from the
	// SECR-family default (index<<12 | addr).
	OTPAddress func(layout OtpLayout, index uint32, addr uint32) []byte

	// OTPLockBit computes which register + bit locks OTP region index.
	OTPLockBit func(index uint32) (name vocab.RegisterName, bit uint32)

	// QPIVendorEnter / QPIVendorExit implement qpi_en_type/qpi_dis_type
	// == Vendor.
	QPIVendorEnter func(b Bus) error
	QPIVendorExit  func(b Bus) error
}
