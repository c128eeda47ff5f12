package catalog

// Flags is the part-level capability/quirk bitset (spec.md §3's Part.flags).
type Flags uint32

const (
	FlagMeta Flags = 1 << iota // not a valid final match; fixups must redirect
	FlagNoSFDP
	FlagSect4K
	FlagSect32K
	FlagSect64K
	FlagSect256K
	FlagSRVolatile
	FlagSRNonVolatile
	FlagSRVolatileWREN50h
	FlagUniqueID
	FlagFullDPIOpcodes
	FlagFullQPIOpcodes
	FlagSFDP4BMode
	FlagGlobalBlockUnlock
	FlagAAIWordProgram
	FlagNoWREN
	FlagNoOp
	FlagPPDualInput
	// FlagLegacyPowerDown is an internal-only quirk (not named in spec.md's
	// public flag vocabulary): the part requires Release-Power-Down before
	// its first command, per original_source/flash/spi-nor/vendor-sst.c.
	FlagLegacyPowerDown
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// QEType selects the Quad-Enable procedure, per spec.md §4.5.
type QEType int

const (
	QEDontCare QEType = iota
	QESR1Bit6           // set SR1 bit 6 via WRSR
	QESR2Bit1           // set CR bit 1 via WRSR with SR1 preserved
	QESR2Bit1WrSR1      // set CR bit 1 via combined 2-byte WRSR
	QESR2Bit7           // set CR bit 7
	QENVCRBit4          // set NVCR bit 4 via extended volatile CR
	QEUnknown
)

// QPIEnType / QPIDisType select the QPI enter/exit procedure.
type QPIEnType int

const (
	QPIEnNone QPIEnType = iota
	QPIEn38h
	QPIEn800003h
	QPIEnVECRBit7Clr
	QPIEnVendor
)

type QPIDisType int

const (
	QPIDisNone QPIDisType = iota
	QPIDisFFh
	QPIDisF5h
	QPIDis800003h
	QPIDis66h99h
	QPIDisVendor
)

// A4BEnType / A4BDisType select the 4-byte-addressing enter/exit strategy.
type A4BEnType int

const (
	A4BEnNone A4BEnType = iota
	A4BEnAlways4B   // opcodes always expect 4 address bytes
	A4BEn4BOpcode   // dedicated 4B-address opcodes
	A4BEnB7h        // EN4B/EX4B opcode pair
	A4BEnWrenB7h    // WREN then EN4B/EX4B
	A4BEnBank       // bank register
	A4BEnNVCR       // NVCR-selected address mode
	A4BEnEAR        // extended-address register, 3B opcodes
)

type A4BDisType int

const (
	A4BDisNone A4BDisType = iota
	A4BDisEX4B
	A4BDisWrenEX4B
	A4BDisBank
	A4BDisNVCR
)

// A4BFlags carries extra per-part quirks for the addressing strategy.
type A4BFlags uint32

const (
	A4BFlagPersistsAcrossReset A4BFlags = 1 << iota
	A4BFlagNeedsWREN
)

// SoftResetFlags is a bitset; precedence order per spec.md §4.5:
// SoftReset66h99h > SoftResetF0h > SoftResetDrive4IOOnes{8,8or10,16}.
type SoftResetFlags uint32

const (
	SoftReset66h99h SoftResetFlags = 1 << iota
	SoftResetF0h
	SoftResetDrive4IOOnes8
	SoftResetDrive4IOOnes8or10 // 4B-mode-aware: 10 clocks if a4b_mode_active
	SoftResetDrive4IOOnes16
)

// OtpFamily selects which OTP access convention a part uses (spec.md
// §4.6's five families).
type OtpFamily int

const (
	OtpFamilyNone OtpFamily = iota
	OtpFamilySECR           // index<<12 | addr, default otp_addr
	OtpFamilySCUR           // ENSO/EXSO window, flat offsets inside it
	OtpFamilyEON            // vendor-specific region layouts 1..4
	OtpFamilyAtmelRaw       // 77h/9Bh flat linear address
	OtpFamilyPaged          // splits reads/writes on 256-byte page boundaries
)

// Precedence returns the single highest-precedence strategy declared in f,
// or 0 if none is set.
func (f SoftResetFlags) Precedence() SoftResetFlags {
	switch {
	case f&SoftReset66h99h != 0:
		return SoftReset66h99h
	case f&SoftResetF0h != 0:
		return SoftResetF0h
	case f&SoftResetDrive4IOOnes8 != 0:
		return SoftResetDrive4IOOnes8
	case f&SoftResetDrive4IOOnes8or10 != 0:
		return SoftResetDrive4IOOnes8or10
	case f&SoftResetDrive4IOOnes16 != 0:
		return SoftResetDrive4IOOnes16
	default:
		return 0
	}
}
