// Package resolve implements the identification algorithm (spec.md §4.4):
// probing the JEDEC ID across a fixed bus-width ladder, reading and
// validating SFDP, matching against internal/catalog, and running a
// part's fixup chain to completion.
package resolve

import (
	"fmt"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/sfdp"
)

// MaxFixupDepth bounds the reprobe_part chain fixups may trigger, so a
// misbehaving or cyclic fixup chain cannot hang resolution (spec.md §9's
// decision: the source has no explicit bound; this is the Go-native one).
const MaxFixupDepth = 4

// Commander is the narrow bus surface the resolver needs: issue one SPI
// command at a given bus width and collect the response. The spinor
// package's Transport-backed implementation of this is what Resolve is
// called with; kept separate from catalog.Bus (the operation engine's
// wider post-resolution surface).
type Commander interface {
	// ReadID issues opcode at the given command bus width with dummyCycles
	// dummy cycles, reading length bytes of ID response.
	ReadID(opcode byte, dummyCycles int, busWidth int, length int) ([]byte, error)
	// ReadSFDP reads length bytes of the SFDP image starting at addr, at
	// the given command bus width.
	ReadSFDP(addr uint32, length int, busWidth int) ([]byte, error)
	// ExecSimple issues a single no-address, no-data opcode (used for
	// qpi_dis / dpi_dis canonicalization).
	ExecSimple(opcode byte, busWidth int) error
}

// Result is what Resolve returns on success.
type Result struct {
	VendorDisplay string
	VendorInit    string
	Part          *catalog.Part
	SFDP          *sfdp.Table
	IDBusWidth    int
}

// ErrNotRecognised is returned whenever JEDEC-ID matching fails; a valid
// SFDP image alone does not identify a part (spec.md §4.3's failure
// semantics).
var ErrNotRecognised = fmt.Errorf("resolve: part not recognised")

type ladderStep struct {
	opcode      byte
	dummyCycles int
	busWidth    int
}

// idLadder is the fixed retry order from spec.md §4.4 step 2.
var idLadder = []ladderStep{
	{0x9F, 0, 1}, // RDID, SPI
	{0xAF, 1, 4}, // RDID_MULTI, QPI, 1 dummy
	{0xAF, 0, 4}, // RDID_MULTI, QPI, 0 dummy
	{0x9F, 0, 4}, // RDID, QPI
	{0xAF, 0, 2}, // RDID_MULTI, DPI
	{0x9F, 0, 2}, // RDID, DPI
}

const (
	idDefaultLen = 3
	idMaxLen     = 8
)

type session struct {
	cmd   Commander
	depth int
}

// Resolve runs the full identification algorithm against cmd.
func Resolve(cmd Commander) (*Result, error) {
	s := &session{cmd: cmd}
	return s.resolve()
}

func (s *session) resolve() (*Result, error) {
	matched, busWidth, idErr := s.probeID()

	var table *sfdp.Table
	sfdpOK := false
	if busWidth != 0 {
		table, sfdpOK = s.probeSFDP(busWidth)
	} else {
		for _, bw := range []int{1, 4, 2} {
			if table, sfdpOK = s.probeSFDP(bw); sfdpOK {
				busWidth = bw
				break
			}
		}
	}

	if idErr != nil && !sfdpOK {
		return nil, ErrNotRecognised
	}
	if matched.Part == nil {
		return nil, ErrNotRecognised
	}

	vendorInit := matched.Vendor
	part := matched.Part

	part, err := s.runFixups(part, table)
	if err != nil {
		return nil, err
	}
	if part.Fixups != nil && part.Fixups.PostParamSetup != nil {
		params := catalog.Params{
			MaxPPTimeUS:     part.MaxPPTimeUS,
			MaxSpeedSPIMHz:  part.MaxSpeedSPIMHz,
			MaxSpeedDualMHz: part.MaxSpeedDualMHz,
			MaxSpeedQuadMHz: part.MaxSpeedQuadMHz,
		}
		part.Fixups.PostParamSetup(&params)
		cp := *part
		cp.MaxPPTimeUS = params.MaxPPTimeUS
		cp.MaxSpeedSPIMHz, cp.MaxSpeedDualMHz, cp.MaxSpeedQuadMHz = params.MaxSpeedSPIMHz, params.MaxSpeedDualMHz, params.MaxSpeedQuadMHz
		part = &cp
	}

	return &Result{
		VendorDisplay: part.DisplayVendor,
		VendorInit:    vendorInit,
		Part:          part,
		SFDP:          table,
		IDBusWidth:    busWidth,
	}, nil
}

func (s *session) probeID() (catalog.MatchedPart, int, error) {
	for _, step := range idLadder {
		id, err := s.cmd.ReadID(step.opcode, step.dummyCycles, step.busWidth, idMaxLen)
		if err != nil {
			continue
		}
		matches := catalog.FindByID(id)
		if len(matches) == 0 && len(id) > idDefaultLen {
			matches = catalog.FindByID(id[:idDefaultLen])
		}
		if len(matches) == 0 {
			continue
		}
		best := matches[0]
		if step.busWidth == 4 {
			_ = s.cmd.ExecSimple(qpiDisOpcodeFor(best.Part), 4)
		} else if step.busWidth == 2 {
			_ = s.cmd.ExecSimple(dpiDisOpcodeFor(best.Part), 2)
		}
		return best, step.busWidth, nil
	}
	return catalog.MatchedPart{}, 0, ErrNotRecognised
}

func qpiDisOpcodeFor(p *catalog.Part) byte {
	switch p.QPIDisType {
	case catalog.QPIDisF5h:
		return 0xF5
	default:
		return 0xFF
	}
}

func dpiDisOpcodeFor(p *catalog.Part) byte {
	return 0xFF
}

func (s *session) probeSFDP(busWidth int) (*sfdp.Table, bool) {
	raw, err := s.cmd.ReadSFDP(0, 512, busWidth)
	if err != nil {
		return nil, false
	}
	table, err := sfdp.Parse(raw)
	if err != nil {
		return nil, false
	}
	return table, true
}

func (s *session) runFixups(part *catalog.Part, table *sfdp.Table) (*catalog.Part, error) {
	current := part
	for current.Fixups != nil && current.Fixups.PreParamSetup != nil {
		if s.depth >= MaxFixupDepth {
			return nil, fmt.Errorf("resolve: fixup chain exceeded depth %d at %q", MaxFixupDepth, current.Model)
		}
		s.depth++
		r := &reproberImpl{session: s, table: table}
		next, err := current.Fixups.PreParamSetup(r, current)
		if err != nil {
			return nil, err
		}
		if next == nil || next.Model == current.Model {
			break
		}
		current = next
	}
	return current, nil
}

// reproberImpl implements catalog.Reprober against the in-progress
// resolution session.
type reproberImpl struct {
	session *session
	table   *sfdp.Table
}

func (r *reproberImpl) ReprobePart(model string) (*catalog.Part, bool) {
	m, ok := catalog.FindByName(model)
	if !ok {
		return nil, false
	}
	return m.Part, true
}

func (r *reproberImpl) SFDPMinorVersion() (major, minor uint8, ok bool) {
	if r.table == nil {
		return 0, 0, false
	}
	return r.table.Header.MajorVersion, r.table.Header.MinorVersion, true
}
