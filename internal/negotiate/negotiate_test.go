package negotiate

import (
	"testing"

	"github.com/snorcore/spinor/internal/catalog"
)

// fakeCapability accepts every op at every mode except ones explicitly
// listed in deny, letting tests pin down exactly which fallback path fires.
type fakeCapability struct {
	deny        map[catalog.IoMode]bool
	qpiBulk     bool
	dpiBulk     bool
}

func (f *fakeCapability) SupportsOp(mode catalog.IoMode, opcode byte, dummyCycles int) bool {
	return !f.deny[mode]
}
func (f *fakeCapability) SupportsQPIBulkRead() bool { return f.qpiBulk }
func (f *fakeCapability) SupportsDPIBulkRead() bool { return f.dpiBulk }

func testPart(t *testing.T) *catalog.Part {
	t.Helper()
	p := catalog.NewPart("TESTPART", catalog.NewID(0xAA, 0xBB, 0xCC), 16*1024*1024,
		catalog.WithReadIOCaps(catalog.IoMode111, catalog.IoMode114, catalog.IoMode444),
		catalog.WithPPIOCaps(catalog.IoMode111, catalog.IoMode114),
		catalog.WithReadOpcodes3B(catalog.OpcodeTable{
			catalog.IoMode111: {Opcode: 0x03},
			catalog.IoMode114: {Opcode: 0x6B, DummyCycles: 8},
			catalog.IoMode444: {Opcode: 0xEB, DummyCycles: 6},
		}),
		catalog.WithPPOpcodes3B(catalog.OpcodeTable{
			catalog.IoMode111: {Opcode: 0x02},
			catalog.IoMode114: {Opcode: 0x32},
		}),
	)
	return &p
}

func TestSelectOpcodesPicksWidestAvailable(t *testing.T) {
	part := testPart(t)
	cap := &fakeCapability{deny: map[catalog.IoMode]bool{}, qpiBulk: true}

	sel, err := SelectOpcodes(part, 3, catalog.All111444, cap)
	if err != nil {
		t.Fatalf("SelectOpcodes: %v", err)
	}
	if sel.ReadMode != catalog.IoMode444 {
		t.Fatalf("ReadMode = %v, want IoMode444 (widest declared)", sel.ReadMode)
	}
	if sel.ReadOpcode != 0xEB {
		t.Fatalf("ReadOpcode = %#x, want 0xEB", sel.ReadOpcode)
	}
}

func TestSelectOpcodesFallsBackWhenTransportRejectsWidest(t *testing.T) {
	part := testPart(t)
	cap := &fakeCapability{deny: map[catalog.IoMode]bool{catalog.IoMode444: true}}

	sel, err := SelectOpcodes(part, 3, catalog.All111444, cap)
	if err != nil {
		t.Fatalf("SelectOpcodes: %v", err)
	}
	if sel.ReadMode != catalog.IoMode114 {
		t.Fatalf("ReadMode = %v, want IoMode114 after denying 444", sel.ReadMode)
	}
}

func TestSelectOpcodesNoViablePair(t *testing.T) {
	part := testPart(t)
	cap := &fakeCapability{deny: map[catalog.IoMode]bool{
		catalog.IoMode444: true, catalog.IoMode114: true, catalog.IoMode111: true,
	}}
	if _, err := SelectOpcodes(part, 3, catalog.All111444, cap); err == nil {
		t.Fatalf("expected an error when every mode is denied")
	}
}

func TestSelectAddressingStrategySmallPartIsNone(t *testing.T) {
	part := testPart(t)
	part.SizeBytes = 8 * 1024 * 1024
	cap := &fakeCapability{}
	strat, err := SelectAddressingStrategy(part, part.SizeBytes, cap)
	if err != nil {
		t.Fatalf("SelectAddressingStrategy: %v", err)
	}
	if strat != AddrStrategyNone {
		t.Fatalf("strategy = %v, want AddrStrategyNone for a part <= 16 MiB", strat)
	}
}

func TestSelectQEProcedureRejectsUnknown(t *testing.T) {
	part := testPart(t)
	part.QEType = catalog.QEUnknown
	if _, err := SelectQEProcedure(part); err == nil {
		t.Fatalf("expected an error for QEUnknown")
	}
}

func TestSelectSoftResetPrecedence(t *testing.T) {
	part := testPart(t)
	part.SoftReset = catalog.SoftResetF0h | catalog.SoftResetDrive4IOOnes16
	strat, ok := SelectSoftReset(part)
	if !ok {
		t.Fatalf("expected a soft-reset strategy")
	}
	if strat != catalog.SoftResetF0h {
		t.Fatalf("strategy = %v, want SoftResetF0h (higher precedence than drive-ones)", strat)
	}
}
