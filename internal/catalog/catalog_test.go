package catalog

import "testing"

func TestFindByIDWinbondW25Q128JV(t *testing.T) {
	matches := FindByID([]byte{0xEF, 0x40, 0x18, 0x00, 0x00, 0x00, 0x00, 0x00})
	if len(matches) == 0 {
		t.Fatalf("expected at least one match for W25Q128JV's ID bytes")
	}
	if got := matches[0].Part.Model; got != "W25Q128JV" {
		t.Fatalf("best match = %q, want W25Q128JV", got)
	}
	if matches[0].Vendor != "Winbond" {
		t.Fatalf("vendor = %q, want Winbond", matches[0].Vendor)
	}
}

func TestFindByNameUnknown(t *testing.T) {
	if _, ok := FindByName("NOSUCHPART"); ok {
		t.Fatalf("expected no match for an unregistered model name")
	}
}

func TestFindByNameDirect(t *testing.T) {
	m, ok := FindByName("W25Q16JV")
	if !ok {
		t.Fatalf("expected W25Q16JV to resolve directly")
	}
	if m.Part.SizeBytes == 0 {
		t.Fatalf("resolved part has zero size")
	}
}

func TestEraseInfoForFallsBackTo3B(t *testing.T) {
	m, ok := FindByName("W25Q16JV")
	if !ok {
		t.Fatal("W25Q16JV not registered")
	}
	info := m.Part.EraseInfoFor(4)
	if len(info.Regions) == 0 {
		t.Fatalf("expected 3B erase info as a 4B fallback for a part with no 4B table")
	}
}

func TestEraseInfoForPrefers4BWhenDeclared(t *testing.T) {
	m, ok := FindByName("W25Q256JV")
	if !ok {
		t.Fatal("W25Q256JV not registered")
	}
	if !m.Part.HasAddrWidth4B() {
		t.Fatalf("W25Q256JV should declare a 4B erase table")
	}
	if got, want := m.Part.EraseInfoFor(4).Sectors[0].Opcode, m.Part.EraseInfo4B.Sectors[0].Opcode; got != want {
		t.Fatalf("EraseInfoFor(4) sector 0 opcode = %#x, want the 4B table's %#x", got, want)
	}
}

func TestWpResolveBpUpper(t *testing.T) {
	start, length := Resolve(WpRange{Kind: WpBpUpper, Shift: 0}, 16*1024*1024)
	if length != 64*1024 {
		t.Fatalf("length = %d, want 64 KiB", length)
	}
	if start != 16*1024*1024-64*1024 {
		t.Fatalf("start = %#x, want top-of-die minus one 64K sector", start)
	}
}

func TestWpResolveAll(t *testing.T) {
	start, length := Resolve(WpRange{Kind: WpAll}, 1024)
	if start != 0 || length != 1024 {
		t.Fatalf("WpAll should protect the whole die, got start=%d length=%d", start, length)
	}
}

func TestWpLookupUnknownPatternIsNone(t *testing.T) {
	info := WpInfo{
		Ranges: []WpRange{{Kind: WpBpLower, MaskValue: 0x04}},
		BPMask: 0x1c,
	}
	r := info.Lookup(0x18)
	if r.Kind != WpNone {
		t.Fatalf("expected an unmapped BP pattern to resolve to WpNone, got %d", r.Kind)
	}
}

func TestOtpLayoutContains(t *testing.T) {
	l := OtpLayout{StartIndex: 1, Count: 3, Size: 256}
	if l.Contains(0) {
		t.Fatalf("index below StartIndex should not be contained")
	}
	if !l.Contains(1) || !l.Contains(3) {
		t.Fatalf("StartIndex and the last valid index should be contained")
	}
	if l.Contains(4) {
		t.Fatalf("index past Count should not be contained")
	}
}
