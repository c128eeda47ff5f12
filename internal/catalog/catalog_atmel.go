package catalog

import "github.com/snorcore/spinor/internal/vocab"

// Atmel/Renesas entries are grounded on original_source/flash/spi-nor/
// vendor-atmel.c: JEDEC ID byte 0x1F, and the flat-linear-address
// 77h/9Bh OTP opcode pair (spec.md §4.6 "Atmel/Renesas raw", §8 worked
// scenario 4: otp_read(0,0,64) issues 77h with 3-byte address and 2
// dummy bytes).
func init() {
	sr1Access := RegisterAccess{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1}

	RegisterVendor(&Vendor{
		Name:   "Atmel",
		IDByte: 0x1F,
		Parts: []Part{
			NewPart("AT25DF321A", NewIDMasked([]byte{0x1F, 0x47, 0x01, 0x00}, []byte{0xff, 0xff, 0xff, 0x00}), 4*1024*1024,
				WithVendor("Atmel"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRVolatile),
				WithA4B(A4BEnNone, A4BDisNone, 0),
				WithSpeeds(70, 70, 0),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode112, IoMode122),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode112: {Opcode: vocab.OpReadFastDO, DummyCycles: 8},
					IoMode122: {Opcode: vocab.OpReadFastDI, DummyCycles: 4},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(4*1024*1024, vocab.OpSE4K, 4*1024, 0)),
				// Atmel's OTP is a single flat 128-byte region addressed by
				// opcode 77h/9Bh directly, not the SECR index<<12 scheme —
				// OTPAddress below overrides the default addressing.
				WithOTP(OtpLayout{StartIndex: 0, Count: 1, Size: 128}),
				WithOTPFamily(OtpFamilyAtmelRaw),
				WithOps(OpsOverride{
					OTPAddress: func(layout OtpLayout, index uint32, addr uint32) []byte {
						return []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
					},
				}),
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
		},
	})
}
