// Package catalog holds the static vocabulary of known SPI-NOR parts: IDs,
// capability flags, strategy selectors, erase geometry, write-protect
// encodings, and the optional per-part fixup/override hooks the operation
// engine consults during resolution. It never touches a Transport; every
// accessor here is pure data lookup.
package catalog

// Part is one catalog entry: the fixed, vendor-documented description of a
// die family, mirroring spec.md §3's Part record.
type Part struct {
	Model          string
	DisplayVendor  string
	ID             PartId
	SizeBytes      uint64
	NumDies        uint32
	PageSizeBytes  uint32

	Flags       Flags
	VendorFlags uint32

	QEType       QEType
	QPIEnType    QPIEnType
	QPIDisType   QPIDisType
	A4BEnType    A4BEnType
	A4BDisType   A4BDisType
	A4BFlags     A4BFlags
	SoftReset    SoftResetFlags

	MaxSpeedSPIMHz  uint32
	MaxSpeedDualMHz uint32
	MaxSpeedQuadMHz uint32
	MaxPPTimeUS     uint32

	ReadIOCaps IoModeMask
	PPIOCaps   IoModeMask

	ReadOpcodes3B OpcodeTable
	ReadOpcodes4B OpcodeTable
	PPOpcodes3B   OpcodeTable
	PPOpcodes4B   OpcodeTable

	EraseInfo3B EraseInfo
	EraseInfo4B EraseInfo

	OTP       OtpLayout
	OTPFamily OtpFamily
	WP        WpInfo
	Regs   []RegisterAccess

	// Alias names this entry resolves under in addition to Model (spec.md's
	// ext_part_read_alias path); typically a second-sourced part number.
	Alias []string

	Fixups *FixupHooks
	Ops    *OpsOverride
}

// HasAddrWidth4B reports whether p declares any 4-byte-address erase
// geometry, used by EraseInfoFor to decide whether the 4B table is usable.
func (p *Part) HasAddrWidth4B() bool {
	return len(p.EraseInfo4B.Regions) > 0
}

// EraseInfoFor implements spec.md §9's erase_info_4b fallback: prefer the
// 4B table when addrBytes == 4 and one is declared, else fall back to the
// 3B table, else return the zero value (caller must then refuse erase).
func (p *Part) EraseInfoFor(addrBytes int) EraseInfo {
	if addrBytes == 4 && p.HasAddrWidth4B() {
		return p.EraseInfo4B
	}
	return p.EraseInfo3B
}

// ReadOpcodesFor returns the opcode table for the given address width,
// falling back to the 3B table when no 4B-specific table is declared —
// parts using A4BEnAlways4B or A4BEnEAR keep their opcodes constant across
// address widths and only ever populate ReadOpcodes3B.
func (p *Part) ReadOpcodesFor(addrBytes int) OpcodeTable {
	if addrBytes == 4 && p.ReadOpcodes4B != nil {
		return p.ReadOpcodes4B
	}
	return p.ReadOpcodes3B
}

func (p *Part) PPOpcodesFor(addrBytes int) OpcodeTable {
	if addrBytes == 4 && p.PPOpcodes4B != nil {
		return p.PPOpcodes4B
	}
	return p.PPOpcodes3B
}

// PartOption configures a Part under construction; the functional-options
// pattern keeps NewPart's signature stable as catalog files grow optional
// fields without every vendor file having to name every one.
type PartOption func(*Part)

// NewPart builds a Part from its three mandatory fields (spec.md §3: model
// name, ID, capacity) plus any number of options, each vendor catalog file
// supplying only the options relevant to that family.
func NewPart(model string, id PartId, sizeBytes uint64, opts ...PartOption) Part {
	p := Part{
		Model:         model,
		ID:            id,
		SizeBytes:     sizeBytes,
		NumDies:       1,
		PageSizeBytes: 256,
		ReadIOCaps:    Mask(IoMode111),
		PPIOCaps:      Mask(IoMode111),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithVendor(name string) PartOption {
	return func(p *Part) { p.DisplayVendor = name }
}

func WithFlags(f Flags) PartOption {
	return func(p *Part) { p.Flags |= f }
}

func WithDies(n uint32) PartOption {
	return func(p *Part) { p.NumDies = n }
}

func WithPageSize(n uint32) PartOption {
	return func(p *Part) { p.PageSizeBytes = n }
}

func WithQE(t QEType) PartOption {
	return func(p *Part) { p.QEType = t }
}

func WithQPI(en QPIEnType, dis QPIDisType) PartOption {
	return func(p *Part) { p.QPIEnType, p.QPIDisType = en, dis }
}

func WithA4B(en A4BEnType, dis A4BDisType, flags A4BFlags) PartOption {
	return func(p *Part) { p.A4BEnType, p.A4BDisType, p.A4BFlags = en, dis, flags }
}

func WithSoftReset(f SoftResetFlags) PartOption {
	return func(p *Part) { p.SoftReset = f }
}

func WithSpeeds(spi, dual, quad uint32) PartOption {
	return func(p *Part) { p.MaxSpeedSPIMHz, p.MaxSpeedDualMHz, p.MaxSpeedQuadMHz = spi, dual, quad }
}

func WithMaxPPTimeUS(us uint32) PartOption {
	return func(p *Part) { p.MaxPPTimeUS = us }
}

func WithReadIOCaps(modes ...IoMode) PartOption {
	return func(p *Part) { p.ReadIOCaps = Mask(modes...) }
}

func WithPPIOCaps(modes ...IoMode) PartOption {
	return func(p *Part) { p.PPIOCaps = Mask(modes...) }
}

func WithReadOpcodes3B(t OpcodeTable) PartOption {
	return func(p *Part) { p.ReadOpcodes3B = t }
}

func WithReadOpcodes4B(t OpcodeTable) PartOption {
	return func(p *Part) { p.ReadOpcodes4B = t }
}

func WithPPOpcodes3B(t OpcodeTable) PartOption {
	return func(p *Part) { p.PPOpcodes3B = t }
}

func WithPPOpcodes4B(t OpcodeTable) PartOption {
	return func(p *Part) { p.PPOpcodes4B = t }
}

func WithEraseInfo3B(e EraseInfo) PartOption {
	return func(p *Part) { p.EraseInfo3B = e }
}

func WithEraseInfo4B(e EraseInfo) PartOption {
	return func(p *Part) { p.EraseInfo4B = e }
}

func WithOTP(l OtpLayout) PartOption {
	return func(p *Part) { p.OTP = l }
}

func WithOTPFamily(f OtpFamily) PartOption {
	return func(p *Part) { p.OTPFamily = f }
}

func WithWP(w WpInfo) PartOption {
	return func(p *Part) {
		p.WP = w
		p.Regs = append(p.Regs, w.Access)
	}
}

func WithRegisters(regs ...RegisterAccess) PartOption {
	return func(p *Part) { p.Regs = append(p.Regs, regs...) }
}

func WithAlias(names ...string) PartOption {
	return func(p *Part) { p.Alias = append(p.Alias, names...) }
}

func WithFixups(f FixupHooks) PartOption {
	return func(p *Part) { p.Fixups = &f }
}

func WithOps(o OpsOverride) PartOption {
	return func(p *Part) { p.Ops = &o }
}

// WithVendorFlags sets the vendor-specific quirk bitset (spec.md §3's
// vendor_flags) that per-vendor fixups switch on — e.g. EON's
// EON_F_OTP_TYPE_1..4 region-layout selector.
func WithVendorFlags(f uint32) PartOption {
	return func(p *Part) { p.VendorFlags = f }
}
