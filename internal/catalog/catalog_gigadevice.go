package catalog

import "github.com/snorcore/spinor/internal/vocab"

// GigaDevice entries are grounded on original_source/flash/spi-nor/vendor-
// gigadevice.c: JEDEC ID byte 0xC8, and GD25Qxx's SR2-bit1 Quad-Enable
// reached via the combined 2-byte WRSR starting at opcode 01h (spec.md §8
// worked scenario 3).
func init() {
	sr1sr2 := RegisterAccess{
		Kind: RegMulti,
		Name: vocab.RegSR1CR,
		Parts: []RegisterAccess{
			{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1},
			{Kind: RegNormal, Name: vocab.RegSR2, OpcodeRead: vocab.OpRDSR2, OpcodeWrite: vocab.OpWRSR, DataBytes: 1},
		},
	}

	RegisterVendor(&Vendor{
		Name:   "GigaDevice",
		IDByte: 0xC8,
		Parts: []Part{
			NewPart("GD25Q128C", NewID(0xC8, 0x40, 0x18), 16*1024*1024,
				WithVendor("GigaDevice"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1WrSR1),
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
				// GigaDevice's SECR-style OTP always splits transfers on
				// 256-byte page boundaries regardless of region size
				// (original_source/flash/spi-nor/otp.c's
				// secr_otp_read_paged/secr_otp_write_paged).
				WithOTPFamily(OtpFamilyPaged),
				WithWP(WpInfo{
					// BP0-2 live in SR1 bits 2-4 (original_source/flash/spi-
					// nor/vendor-gigadevice.c); commanderAdapter.readViaAccess
					// concatenates this Multi access as sr1<<8|sr2, so the BP
					// field sits in the combined value's high byte.
					Access: sr1sr2,
					BPMask: 0x1c00,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x0000},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x0400},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x0800},
						{Kind: WpBpUpper, Shift: 0, MaskValue: 0x0c00},
						{Kind: WpAll, MaskValue: 0x1c00},
					},
				}),
			),

			NewPart("GD25Q64C", NewID(0xC8, 0x40, 0x17), 8*1024*1024,
				WithVendor("GigaDevice"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1WrSR1),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode114),
				WithPPIOCaps(IoMode111, IoMode114),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(8*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithRegisters(sr1sr2),
			),
		},
	})
}
