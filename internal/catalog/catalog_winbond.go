package catalog

import "github.com/snorcore/spinor/internal/vocab"

// Winbond entries are grounded on original_source/flash/spi-nor/vendor-
// winbond.c: JEDEC ID byte 0xEF, the W25Qxx family's SR2-bit1 Quad-Enable,
// and the "xV"/"xW" meta-model fixups that redirect to a concrete silicon
// revision based on SFDP BFPT minor version (spec.md §9's reprobe_part
// mechanism).
func init() {
	sr1Access := RegisterAccess{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1}

	RegisterVendor(&Vendor{
		Name:   "Winbond",
		IDByte: 0xEF,
		Parts: []Part{
			NewPart("W25Q16JV", NewID(0xEF, 0x40, 0x15), 2*1024*1024,
				WithVendor("Winbond"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1),
				WithA4B(A4BEnNone, A4BDisNone, 0),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode112, IoMode122, IoMode144, IoMode114),
				WithPPIOCaps(IoMode111, IoMode114),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode112: {Opcode: vocab.OpReadFastDO, DummyCycles: 8},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
					IoMode122: {Opcode: vocab.OpReadFastDI, DummyCycles: 4},
					IoMode144: {Opcode: vocab.OpReadFastQI, DummyCycles: 6},
				}),
				WithPPOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpPP},
					IoMode114: {Opcode: vocab.OpAAIWordProg},
				}),
				WithEraseInfo3B(UniformEraseInfo(2*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 1, Count: 3, Size: 0x100}),
				WithOTPFamily(OtpFamilySECR),
				WithWP(WpInfo{
					Access: sr1Access,
					BPMask: 0x1c,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x00},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x04},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x08},
						{Kind: WpBpUpper, Shift: 0, MaskValue: 0x0c},
						{Kind: WpAll, MaskValue: 0x1c},
					},
				}),
			),

			NewPart("W25Q128JV", NewID(0xEF, 0x40, 0x18), 16*1024*1024,
				WithVendor("Winbond"),
				WithDies(1),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1),
				WithA4B(A4BEnNone, A4BDisNone, 0),
				WithSoftReset(SoftReset66h99h),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode112, IoMode122, IoMode144, IoMode114, IoMode444),
				WithPPIOCaps(IoMode111, IoMode114),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode112: {Opcode: vocab.OpReadFastDO, DummyCycles: 8},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
					IoMode122: {Opcode: vocab.OpReadFastDI, DummyCycles: 4},
					IoMode144: {Opcode: vocab.OpReadFastQI, DummyCycles: 6},
					IoMode444: {Opcode: vocab.Op4ReadFastQI, DummyCycles: 6},
				}),
				WithPPOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpPP},
					IoMode114: {Opcode: vocab.Op4PP},
				}),
				WithEraseInfo3B(UniformEraseInfo(16*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 1, Count: 3, Size: 0x100}),
				WithOTPFamily(OtpFamilySECR),
				WithWP(WpInfo{
					Access: sr1Access,
					BPMask: 0x1c,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x00},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x04},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x08},
						{Kind: WpBpUpper, Shift: 0, MaskValue: 0x0c},
						{Kind: WpAll, MaskValue: 0x1c},
					},
				}),
			),

			// W25Q256JV uses the B7h/E9h EN4B/EX4B opcode pair to cross the
			// 16 MiB 3-byte-address boundary (spec.md §8 worked scenario).
			NewPart("W25Q256JV", NewID(0xEF, 0x40, 0x19), 32*1024*1024,
				WithVendor("Winbond"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile|FlagSFDP4BMode),
				WithQE(QESR2Bit1),
				WithA4B(A4BEnB7h, A4BDisEX4B, A4BFlagPersistsAcrossReset),
				WithSoftReset(SoftReset66h99h),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode112, IoMode122, IoMode144, IoMode114, IoMode444),
				WithPPIOCaps(IoMode111, IoMode114),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode112: {Opcode: vocab.OpReadFastDO, DummyCycles: 8},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
					IoMode122: {Opcode: vocab.OpReadFastDI, DummyCycles: 4},
					IoMode144: {Opcode: vocab.OpReadFastQI, DummyCycles: 6},
					IoMode444: {Opcode: vocab.Op4ReadFastQI, DummyCycles: 6},
				}),
				WithReadOpcodes4B(OpcodeTable{
					IoMode111: {Opcode: vocab.Op4READ},
					IoMode114: {Opcode: vocab.Op4ReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpPP},
					IoMode114: {Opcode: vocab.Op4PP},
				}),
				WithPPOpcodes4B(OpcodeTable{
					IoMode111: {Opcode: vocab.Op4PP},
				}),
				WithEraseInfo3B(UniformEraseInfo(32*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithEraseInfo4B(UniformEraseInfo(32*1024*1024, vocab.Op4SE4K, 4*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 1, Count: 3, Size: 0x100}),
				WithOTPFamily(OtpFamilySECR),
				WithWP(WpInfo{
					Access: sr1Access,
					BPMask: 0x1c,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x00},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x04},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x08},
						{Kind: WpBpUpper, Shift: 0, MaskValue: 0x0c},
						{Kind: WpAll, MaskValue: 0x1c},
					},
				}),
			),

			// W25Q16*V is a meta entry: silicon shipped under one JEDEC ID
			// actually spans several revisions (BV/FV/JV) distinguished only
			// by SFDP BFPT minor version, resolved via PreParamSetup.
			NewPart("W25Q16*V", NewIDMasked([]byte{0xEF, 0x40, 0x15}, []byte{0xff, 0x00, 0xff}), 2*1024*1024,
				WithVendor("Winbond"),
				WithFlags(FlagMeta),
				WithFixups(FixupHooks{
					PreParamSetup: func(r Reprober, current *Part) (*Part, error) {
						if major, minor, ok := r.SFDPMinorVersion(); ok && major == 1 {
							if minor >= 6 {
								if p, found := r.ReprobePart("W25Q16JV"); found {
									return p, nil
								}
							}
						}
						p, _ := r.ReprobePart("W25Q16JV")
						return p, nil
					},
				}),
			),
		},
	})
}
