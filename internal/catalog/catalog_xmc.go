package catalog

import "github.com/snorcore/spinor/internal/vocab"

// XMC entries are grounded on original_source/flash/spi-nor/vendor-xmc.c:
// JEDEC ID byte 0x20.
func init() {
	RegisterVendor(&Vendor{
		Name:   "XMC",
		IDByte: 0x20,
		Parts: []Part{
			NewPart("XM25QH16C", NewID(0x20, 0x40, 0x15), 2*1024*1024,
				WithVendor("XMC"),
				WithFlags(FlagSect4K|FlagSect32K|FlagSect64K|FlagSRNonVolatile),
				WithQE(QESR2Bit1),
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
			),
		},
	})
}
