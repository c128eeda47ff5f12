package catalog

import "github.com/snorcore/spinor/internal/vocab"

// eon3Base/eon3LockBit are EON's "type 3" OTP region table: fixed offsets
// counted down from the top of the die, each locking a distinct status
// register bit (original_source/flash/spi-nor/vendor-eon.c's
// eon_otp_3_addr/eon_otp_3_lock_bit).
var (
	eon3Base    = [3]uint32{4 * 1024, 8 * 1024, 64 * 1024}
	eon3LockBit = [3]uint32{7, 2, 1}
)

// EON entries are grounded on original_source/flash/spi-nor/vendor-eon.c:
// JEDEC ID byte 0x1C, and the EON_F_OTP_TYPE_1..4 vendor flags rendered
// here as OtpFamilyEON (spec.md §4.6 "EON-style 1..4").
func init() {
	sr1Access := RegisterAccess{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1}

	RegisterVendor(&Vendor{
		Name:   "EON",
		IDByte: 0x1C,
		Parts: []Part{
			NewPart("EN25Q128", NewID(0x1C, 0x30, 0x18), 16*1024*1024,
				WithVendor("EON"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRVolatile),
				WithQE(QESR1Bit6),
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
					IoMode114: {Opcode: vocab.Op4PP},
				}),
				WithEraseInfo3B(UniformEraseInfo(16*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 0, Count: 3, Size: 0x200}),
				WithOTPFamily(OtpFamilyEON),
				// EON's "type 3" OTP regions sit at fixed offsets counted
				// down from the top of the die rather than SECR's
				// index<<12|addr scheme, and each region locks a different
				// status-register bit (original_source/flash/spi-
				// nor/vendor-eon.c's eon_otp_3_addr/eon_otp_3_lock_bit).
				WithOps(OpsOverride{
					OTPAddress: func(layout OtpLayout, index uint32, addr uint32) []byte {
						base := eon3Base[index%uint32(len(eon3Base))]
						a := 16*1024*1024 - base + addr
						return []byte{byte(a >> 16), byte(a >> 8), byte(a)}
					},
					OTPLockBit: func(index uint32) (vocab.RegisterName, uint32) {
						return vocab.RegSR1, eon3LockBit[index%uint32(len(eon3LockBit))]
					},
				}),
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

			NewPart("EN25QH16B", NewID(0x1C, 0x70, 0x15), 2*1024*1024,
				WithVendor("EON"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRVolatile),
				WithQE(QESR1Bit6),
				WithSpeeds(104, 104, 104),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode114),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(2*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				WithOTP(OtpLayout{StartIndex: 0, Count: 1, Size: 0x100}),
				WithOTPFamily(OtpFamilySECR),
			),
		},
	})
}
