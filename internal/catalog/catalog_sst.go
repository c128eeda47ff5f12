package catalog

import "github.com/snorcore/spinor/internal/vocab"

// SST entries are grounded on original_source/flash/spi-nor/vendor-sst.c:
// JEDEC ID byte 0xBF and the SNOR_F_AAI_WRITE flag carried by every small
// SST25 part, rendered here as FlagAAIWordProgram (spec.md §4.6's
// Auto-Address-Increment state machine, spec.md §8 worked scenario 6).
// SST parts also force max_pp_time_us regardless of any SFDP-reported
// value, via PostParamSetup (spec.md §9's sst_post_param_setup decision).
func init() {
	sr1Access := RegisterAccess{Kind: RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1}
	sstDefaultFixups := &FixupHooks{
		PostParamSetup: func(p *Params) {
			p.MaxPPTimeUS = 10
		},
	}

	RegisterVendor(&Vendor{
		Name:          "SST",
		IDByte:        0xBF,
		DefaultFixups: sstDefaultFixups,
		Parts: []Part{
			NewPart("SST25VF040B", NewID(0xBF, 0x25, 0x8D), 512*1024,
				WithVendor("SST"),
				WithFlags(FlagSect4K|FlagSRVolatile|FlagAAIWordProgram),
				WithA4B(A4BEnNone, A4BDisNone, 0),
				WithSpeeds(80, 80, 0),
				WithMaxPPTimeUS(10),
				WithReadIOCaps(IoMode111),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
				}),
				WithPPOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpPP},
				}),
				WithEraseInfo3B(UniformEraseInfo(512*1024, vocab.OpSE4K, 4*1024, 25)),
				WithWP(WpInfo{
					Access: sr1Access,
					BPMask: 0x0c,
					Ranges: []WpRange{
						{Kind: WpNone, MaskValue: 0x00},
						{Kind: WpBpUpper, Shift: 2, MaskValue: 0x04},
						{Kind: WpBpUpper, Shift: 1, MaskValue: 0x08},
						{Kind: WpAll, MaskValue: 0x0c},
					},
				}),
			),

			NewPart("SST25VF020B", NewID(0xBF, 0x25, 0x8C), 256*1024,
				WithVendor("SST"),
				WithFlags(FlagSect4K|FlagSRVolatile|FlagAAIWordProgram),
				WithSpeeds(80, 80, 0),
				WithMaxPPTimeUS(10),
				WithReadIOCaps(IoMode111),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpRead}}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(256*1024, vocab.OpSE4K, 4*1024, 25)),
			),
		},
	})
}
