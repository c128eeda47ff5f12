package catalog

import "github.com/snorcore/spinor/internal/vocab"

// XTX entries are grounded on original_source/flash/spi-nor/vendor-xtx.c:
// JEDEC ID byte 0x0B.
func init() {
	RegisterVendor(&Vendor{
		Name:   "XTX",
		IDByte: 0x0B,
		Parts: []Part{
			NewPart("XT25F16B", NewID(0x0B, 0x40, 0x15), 2*1024*1024,
				WithVendor("XTX"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1),
				WithSpeeds(104, 104, 0),
				WithMaxPPTimeUS(3000),
				WithReadIOCaps(IoMode111, IoMode114),
				WithPPIOCaps(IoMode111),
				WithReadOpcodes3B(OpcodeTable{
					IoMode111: {Opcode: vocab.OpRead},
					IoMode114: {Opcode: vocab.OpReadFastQO, DummyCycles: 8},
				}),
				WithPPOpcodes3B(OpcodeTable{IoMode111: {Opcode: vocab.OpPP}}),
				WithEraseInfo3B(UniformEraseInfo(2*1024*1024, vocab.OpSE4K, 4*1024, 0)),
			),
		},
	})
}
