package catalog

import "github.com/snorcore/spinor/internal/vocab"

// Macronix has no corresponding vendor-macronix.c in the retrieved sources
// (only atmel/eon/gigadevice/sst/winbond/xmc/xtx ship there); this table
// is grounded structurally on the shared SNOR_PART/SNOR_ID declaration
// pattern common to every sibling vendor file, with MX25L25645G's dedicated
// 4-byte-address opcode DCh taken directly from spec.md's worked scenario.
func init() {
	sr1Access := RegisterAccess{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1}

	RegisterVendor(&Vendor{
		Name:   "Macronix",
		IDByte: 0xC2,
		Parts: []Part{
			// Dedicated 4-byte-address opcodes (A4BEn4BOpcode): the 3B and
			// 4B opcode tables are both populated and selected purely by
			// addrBytes, with no EN4B/EX4B state to track (spec.md §8
			// worked scenario 2: erase(0x01000000, 64K) issues DCh/4
			// address bytes, never touching EAR).
			NewPart("MX25L25645G", NewID(0xC2, 0x20, 0x19), 32*1024*1024,
				WithVendor("Macronix"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR1Bit6),
				WithA4B(A4BEn4BOpcode, A4BDisNone, 0),
				WithSoftReset(SoftReset66h99h),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode112, IoMode122, IoMode144, IoMode114, IoMode444),
				WithPPIOCaps(IoMode111, IoMode114),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
				}),
				WithReadOpcodes4B(OpcodeTable{
					IoMode111: {Opcode: vocab.Op4READ},
					IoMode114: {Opcode: vocab.Op4ReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithPPOpcodes4B(OpcodeTable{IoMode111: {Opcode: vocab.Op4PP}}),
				WithEraseInfo3B(UniformEraseInfo(32*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithEraseInfo4B(UniformEraseInfo(32*1024*1024, vocab.Op4BE64K, 64*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 0, Count: 1, Size: 0x200}),
				WithOTPFamily(OtpFamilySECR),
				WithWP(WpInfo{
					Access: sr1Access,
					BPMask: 0x3c,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x00},
						{Kind: WpBpUpper, Shift: 3, MaskValue: 0x04},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x08},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x0c},
						{Kind: WpBpUpper, Shift: 0, MaskValue: 0x10},
						{Kind: WpAll, MaskValue: 0x3c},
					},
				}),
			),

			NewPart("MX25L12835F", NewID(0xC2, 0x20, 0x18), 16*1024*1024,
				WithVendor("Macronix"),
				WithFlags(FlagSect4K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR1Bit6),
				WithA4B(A4BEnNone, A4BDisNone, 0),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode114),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(16*1024*1024, vocab.OpSE4K, 4*1024, 0)),
			),
		},
	})
}
