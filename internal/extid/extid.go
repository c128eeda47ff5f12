// Package extid loads the optional external part-table JSON file
// (spec.md §4.8): user-supplied vendors/parts that augment or shadow the
// built-in internal/catalog registry. Any structural or reference error
// rejects the whole file; the process then continues with built-ins only.
package extid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/vocab"
)

const schemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "io-opcodes": {"type": "object"},
    "erase-groups": {"type": "object"},
    "vendors": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["mfr-id", "name", "parts"],
        "properties": {
          "mfr-id": {"type": "integer", "minimum": 0, "maximum": 255},
          "name": {"type": "string"},
          "parts": {"type": "object"}
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("spi-nor-ids.schema.json", bytes.NewReader([]byte(schemaSource))); err != nil {
		panic("extid: embedded schema invalid: " + err.Error())
	}
	s, err := c.Compile("spi-nor-ids.schema.json")
	if err != nil {
		panic("extid: embedded schema invalid: " + err.Error())
	}
	return s
}

// document mirrors the top-level JSON shape (spec.md §4.8).
type document struct {
	IoOpcodes   map[string]map[string]opcodeEntry `json:"io-opcodes"`
	EraseGroups map[string][]eraseEntry           `json:"erase-groups"`
	WpGroups    map[string]wpEntry                `json:"wp-groups"`
	Vendors     map[string]vendorEntry            `json:"vendors"`
}

type opcodeEntry struct {
	Opcode      int `json:"opcode"`
	DummyCycles int `json:"dummy-cycles"`
	ModeCycles  int `json:"mode-cycles"`
}

type eraseEntry struct {
	Opcode         int    `json:"opcode"`
	Size           string `json:"size"`
	MaxEraseTimeMS int    `json:"max-erase-time-ms"`
}

type vendorEntry struct {
	MfrID int                    `json:"mfr-id"`
	Name  string                 `json:"name"`
	Parts map[string]partEntry   `json:"parts"`
}

type aliasEntry struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
}

type otpEntry struct {
	Size       int `json:"size"`
	StartIndex int `json:"start-index"`
	Count      int `json:"count"`
}

// wpRangeEntry mirrors catalog.WpRange; Kind is a name (see wpKindNames)
// and MaskValue a hex/decimal string (parsed by parseHexOrDec).
type wpRangeEntry struct {
	Kind      string `json:"kind"`
	Shift     uint8  `json:"shift"`
	MaskValue string `json:"mask-value"`
}

// wpEntry mirrors catalog.WpInfo. Register names one of the built-in
// single-byte register accesses (registerAccessNames); Registers, if set,
// names two or more to concatenate into a RegMulti access (MSB-first),
// mirroring the combined-register parts the built-in catalog declares.
type wpEntry struct {
	Register  string         `json:"register"`
	Registers []string       `json:"registers"`
	BPMask    string         `json:"bp-mask"`
	Ranges    []wpRangeEntry `json:"ranges"`
}

type partEntry struct {
	ID              []string        `json:"id"`
	Flags           []string        `json:"flags"`
	VendorFlags     uint32          `json:"vendor-flags"`
	SoftResetFlags  []string        `json:"soft-reset-flags"`
	QEType          string          `json:"qe-type"`
	QPIEnType       string          `json:"qpi-en-type"`
	QPIDisType      string          `json:"qpi-dis-type"`
	A4BEnType       string          `json:"4b-en-type"`
	A4BDisType      string          `json:"4b-dis-type"`
	A4BFlags        []string        `json:"4b-flags"`
	MaxSpeedSPIMHz  uint32          `json:"max-speed-spi-mhz"`
	MaxSpeedDualMHz uint32          `json:"max-speed-dual-mhz"`
	MaxSpeedQuadMHz uint32          `json:"max-speed-quad-mhz"`
	PageSize        uint32          `json:"page-size"`
	MaxPPTimeUS     uint32          `json:"max-pp-time-us"`
	Size            json.RawMessage `json:"size"`
	NumDies         uint32          `json:"num-dies"`
	ReadIOCaps      []string        `json:"read-io-caps"`
	PPIOCaps        []string        `json:"pp-io-caps"`
	ReadOpcodes3B   json.RawMessage `json:"read-opcodes-3b"`
	ReadOpcodes4B   json.RawMessage `json:"read-opcodes-4b"`
	PPOpcodes3B     json.RawMessage `json:"pp-opcodes-3b"`
	PPOpcodes4B     json.RawMessage `json:"pp-opcodes-4b"`
	EraseInfo3B     json.RawMessage `json:"erase-info-3b"`
	EraseInfo4B     json.RawMessage `json:"erase-info-4b"`
	OTP             *otpEntry       `json:"otp"`
	WP              json.RawMessage `json:"wp"`
	Alias           []aliasEntry    `json:"alias"`
}

// LoadError carries the vendor/part/field context spec.md §4.8 requires on
// every reported error.
type LoadError struct {
	Vendor, Part, Field string
	Err                 error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("extid: ")
	if e.Vendor != "" {
		fmt.Fprintf(&b, "vendor %q: ", e.Vendor)
	}
	if e.Part != "" {
		fmt.Fprintf(&b, "part %q: ", e.Part)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field %q: ", e.Field)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

// Load parses and validates raw as a spi-nor-ids JSON document, registers
// every vendor it declares via catalog.RegisterVendor, and returns the
// vendor names added. On any error, nothing is registered.
func Load(raw []byte) ([]string, error) {
	if err := compiledSchema.Validate(bytesToAny(raw)); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("schema validation: %w", err)}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("decode: %w", err)}
	}

	var vendors []*catalog.Vendor
	for vendorID, ve := range doc.Vendors {
		v, err := buildVendor(vendorID, ve, doc)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	var names []string
	for _, v := range vendors {
		catalog.RegisterVendor(v)
		names = append(names, v.Name)
	}
	return names, nil
}

func bytesToAny(raw []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func buildVendor(vendorID string, ve vendorEntry, doc document) (*catalog.Vendor, error) {
	v := &catalog.Vendor{Name: ve.Name, IDByte: byte(ve.MfrID)}

	for model, pe := range ve.Parts {
		collides := false
		catalog.ForEachPart(func(_ string, bp *catalog.Part) {
			if bp.Model == model {
				collides = true
			}
		})
		if collides {
			return nil, &LoadError{Vendor: ve.Name, Part: model, Err: fmt.Errorf("model already registered")}
		}
		p, err := buildPart(model, pe, doc)
		if err != nil {
			return nil, &LoadError{Vendor: ve.Name, Part: model, Err: err}
		}
		v.Parts = append(v.Parts, p)
	}
	return v, nil
}

func buildPart(model string, pe partEntry, doc document) (catalog.Part, error) {
	id, err := parseID(pe.ID)
	if err != nil {
		return catalog.Part{}, fmt.Errorf("id: %w", err)
	}
	size, err := parseSize(pe.Size)
	if err != nil {
		return catalog.Part{}, fmt.Errorf("size: %w", err)
	}

	opts := []catalog.PartOption{
		catalog.WithVendor(""),
		catalog.WithSpeeds(pe.MaxSpeedSPIMHz, pe.MaxSpeedDualMHz, pe.MaxSpeedQuadMHz),
		catalog.WithMaxPPTimeUS(pe.MaxPPTimeUS),
	}
	if pe.PageSize != 0 {
		opts = append(opts, catalog.WithPageSize(pe.PageSize))
	}
	if pe.NumDies != 0 {
		opts = append(opts, catalog.WithDies(pe.NumDies))
	}

	flags, err := parseFlags(pe.Flags)
	if err != nil {
		return catalog.Part{}, err
	}
	opts = append(opts, catalog.WithFlags(flags))

	qe, err := parseQEType(pe.QEType)
	if err != nil {
		return catalog.Part{}, err
	}
	opts = append(opts, catalog.WithQE(qe))

	if pe.VendorFlags != 0 {
		opts = append(opts, catalog.WithVendorFlags(pe.VendorFlags))
	}

	if len(pe.SoftResetFlags) > 0 {
		srf, err := parseSoftResetFlags(pe.SoftResetFlags)
		if err != nil {
			return catalog.Part{}, err
		}
		opts = append(opts, catalog.WithSoftReset(srf))
	}

	if pe.QPIEnType != "" || pe.QPIDisType != "" {
		en, err := parseQPIEnType(pe.QPIEnType)
		if err != nil {
			return catalog.Part{}, err
		}
		dis, err := parseQPIDisType(pe.QPIDisType)
		if err != nil {
			return catalog.Part{}, err
		}
		opts = append(opts, catalog.WithQPI(en, dis))
	}

	if pe.A4BEnType != "" || pe.A4BDisType != "" || len(pe.A4BFlags) > 0 {
		en, err := parseA4BEnType(pe.A4BEnType)
		if err != nil {
			return catalog.Part{}, err
		}
		dis, err := parseA4BDisType(pe.A4BDisType)
		if err != nil {
			return catalog.Part{}, err
		}
		flags, err := parseA4BFlags(pe.A4BFlags)
		if err != nil {
			return catalog.Part{}, err
		}
		opts = append(opts, catalog.WithA4B(en, dis, flags))
	}

	if len(pe.ReadOpcodes3B) > 0 {
		t, err := resolveOpcodeTable(pe.ReadOpcodes3B, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("read-opcodes-3b: %w", err)
		}
		opts = append(opts, catalog.WithReadOpcodes3B(t))
	}
	if len(pe.ReadOpcodes4B) > 0 {
		t, err := resolveOpcodeTable(pe.ReadOpcodes4B, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("read-opcodes-4b: %w", err)
		}
		opts = append(opts, catalog.WithReadOpcodes4B(t))
	}
	if len(pe.PPOpcodes3B) > 0 {
		t, err := resolveOpcodeTable(pe.PPOpcodes3B, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("pp-opcodes-3b: %w", err)
		}
		opts = append(opts, catalog.WithPPOpcodes3B(t))
	}
	if len(pe.PPOpcodes4B) > 0 {
		t, err := resolveOpcodeTable(pe.PPOpcodes4B, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("pp-opcodes-4b: %w", err)
		}
		opts = append(opts, catalog.WithPPOpcodes4B(t))
	}

	if len(pe.WP) > 0 {
		wp, err := resolveWP(pe.WP, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("wp: %w", err)
		}
		opts = append(opts, catalog.WithWP(wp))
	}

	if pe.OTP != nil {
		opts = append(opts, catalog.WithOTP(catalog.OtpLayout{
			StartIndex: uint32(pe.OTP.StartIndex),
			Count:      uint32(pe.OTP.Count),
			Size:       uint32(pe.OTP.Size),
		}))
	}

	for _, a := range pe.Alias {
		opts = append(opts, catalog.WithAlias(a.Model))
	}

	if len(pe.ReadIOCaps) > 0 {
		modes, err := parseModes(pe.ReadIOCaps)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("read-io-caps: %w", err)
		}
		opts = append(opts, catalog.WithReadIOCaps(modes...))
	}
	if len(pe.PPIOCaps) > 0 {
		modes, err := parseModes(pe.PPIOCaps)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("pp-io-caps: %w", err)
		}
		opts = append(opts, catalog.WithPPIOCaps(modes...))
	}

	if len(pe.EraseInfo3B) > 0 {
		ei, err := resolveEraseInfo(pe.EraseInfo3B, size, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("erase-info-3b: %w", err)
		}
		opts = append(opts, catalog.WithEraseInfo3B(ei))
	}
	if len(pe.EraseInfo4B) > 0 {
		ei, err := resolveEraseInfo(pe.EraseInfo4B, size, doc)
		if err != nil {
			return catalog.Part{}, fmt.Errorf("erase-info-4b: %w", err)
		}
		opts = append(opts, catalog.WithEraseInfo4B(ei))
	}

	return catalog.NewPart(model, id, size, opts...), nil
}

func parseID(hex []string) (catalog.PartId, error) {
	bytes := make([]byte, len(hex))
	for i, h := range hex {
		n, err := strconv.ParseUint(strings.TrimPrefix(h, "0x"), 16, 8)
		if err != nil {
			return catalog.PartId{}, fmt.Errorf("byte %d: %w", i, err)
		}
		bytes[i] = byte(n)
	}
	return catalog.NewID(bytes...), nil
}

func parseSize(raw json.RawMessage) (uint64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return uint64(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not an integer or suffixed string")
	}
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	base, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric prefix %q: %w", s, err)
	}
	return base * mult, nil
}

var flagNames = map[string]catalog.Flags{
	"meta":                  catalog.FlagMeta,
	"no-sfdp":               catalog.FlagNoSFDP,
	"4k-sector":             catalog.FlagSect4K,
	"32k-sector":            catalog.FlagSect32K,
	"64k-block":             catalog.FlagSect64K,
	"256k-block":            catalog.FlagSect256K,
	"non-volatile-sr":       catalog.FlagSRNonVolatile,
	"volatile-sr":           catalog.FlagSRVolatile,
	"volatile-sr-wren-50h":  catalog.FlagSRVolatileWREN50h,
	"unique-id":             catalog.FlagUniqueID,
	"full-dpi-opcodes":      catalog.FlagFullDPIOpcodes,
	"full-qpi-opcodes":      catalog.FlagFullQPIOpcodes,
	"sfdp-4b-mode":          catalog.FlagSFDP4BMode,
	"global-block-unlock":   catalog.FlagGlobalBlockUnlock,
	"aai-word-program":      catalog.FlagAAIWordProgram,
	"no-op":                 catalog.FlagNoOp,
}

func parseFlags(names []string) (catalog.Flags, error) {
	var f catalog.Flags
	for _, n := range names {
		bit, ok := flagNames[n]
		if !ok {
			return 0, fmt.Errorf("flags: unknown flag %q", n)
		}
		f |= bit
	}
	return f, nil
}

var qeTypeNames = map[string]catalog.QEType{
	"dont-care":      catalog.QEDontCare,
	"sr1-bit6":       catalog.QESR1Bit6,
	"sr2-bit1":       catalog.QESR2Bit1,
	"sr2-bit1-wr-sr1": catalog.QESR2Bit1WrSR1,
	"sr2-bit7":       catalog.QESR2Bit7,
	"nvcr-bit4":      catalog.QENVCRBit4,
}

func parseQEType(s string) (catalog.QEType, error) {
	if s == "" {
		return catalog.QEDontCare, nil
	}
	t, ok := qeTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("qe-type: unknown value %q", s)
	}
	return t, nil
}

var modeNames = map[string]catalog.IoMode{
	"1-1-1": catalog.IoMode111,
	"1-1-2": catalog.IoMode112,
	"1-2-2": catalog.IoMode122,
	"1-1-4": catalog.IoMode114,
	"1-4-4": catalog.IoMode144,
	"2-2-2": catalog.IoMode222,
	"4-4-4": catalog.IoMode444,
	"8-8-8": catalog.IoMode888,
}

func parseModes(names []string) ([]catalog.IoMode, error) {
	out := make([]catalog.IoMode, 0, len(names))
	for _, n := range names {
		m, ok := modeNames[n]
		if !ok {
			return nil, fmt.Errorf("unknown io-mode %q", n)
		}
		out = append(out, m)
	}
	return out, nil
}

var qpiEnTypeNames = map[string]catalog.QPIEnType{
	"none":       catalog.QPIEnNone,
	"38h":        catalog.QPIEn38h,
	"800003h":    catalog.QPIEn800003h,
	"vecr-bit7-clr": catalog.QPIEnVECRBit7Clr,
	"vendor":     catalog.QPIEnVendor,
}

func parseQPIEnType(s string) (catalog.QPIEnType, error) {
	if s == "" {
		return catalog.QPIEnNone, nil
	}
	t, ok := qpiEnTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("qpi-en-type: unknown value %q", s)
	}
	return t, nil
}

var qpiDisTypeNames = map[string]catalog.QPIDisType{
	"none":    catalog.QPIDisNone,
	"ffh":     catalog.QPIDisFFh,
	"f5h":     catalog.QPIDisF5h,
	"800003h": catalog.QPIDis800003h,
	"66h99h":  catalog.QPIDis66h99h,
	"vendor":  catalog.QPIDisVendor,
}

func parseQPIDisType(s string) (catalog.QPIDisType, error) {
	if s == "" {
		return catalog.QPIDisNone, nil
	}
	t, ok := qpiDisTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("qpi-dis-type: unknown value %q", s)
	}
	return t, nil
}

var a4bEnTypeNames = map[string]catalog.A4BEnType{
	"none":      catalog.A4BEnNone,
	"always-4b": catalog.A4BEnAlways4B,
	"4b-opcode": catalog.A4BEn4BOpcode,
	"b7h":       catalog.A4BEnB7h,
	"wren-b7h":  catalog.A4BEnWrenB7h,
	"bank":      catalog.A4BEnBank,
	"nvcr":      catalog.A4BEnNVCR,
	"ear":       catalog.A4BEnEAR,
}

func parseA4BEnType(s string) (catalog.A4BEnType, error) {
	if s == "" {
		return catalog.A4BEnNone, nil
	}
	t, ok := a4bEnTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("4b-en-type: unknown value %q", s)
	}
	return t, nil
}

var a4bDisTypeNames = map[string]catalog.A4BDisType{
	"none":      catalog.A4BDisNone,
	"ex4b":      catalog.A4BDisEX4B,
	"wren-ex4b": catalog.A4BDisWrenEX4B,
	"bank":      catalog.A4BDisBank,
	"nvcr":      catalog.A4BDisNVCR,
}

func parseA4BDisType(s string) (catalog.A4BDisType, error) {
	if s == "" {
		return catalog.A4BDisNone, nil
	}
	t, ok := a4bDisTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("4b-dis-type: unknown value %q", s)
	}
	return t, nil
}

var a4bFlagNames = map[string]catalog.A4BFlags{
	"persists-across-reset": catalog.A4BFlagPersistsAcrossReset,
	"needs-wren":            catalog.A4BFlagNeedsWREN,
}

func parseA4BFlags(names []string) (catalog.A4BFlags, error) {
	var f catalog.A4BFlags
	for _, n := range names {
		bit, ok := a4bFlagNames[n]
		if !ok {
			return 0, fmt.Errorf("4b-flags: unknown flag %q", n)
		}
		f |= bit
	}
	return f, nil
}

var softResetFlagNames = map[string]catalog.SoftResetFlags{
	"66h99h":               catalog.SoftReset66h99h,
	"f0h":                  catalog.SoftResetF0h,
	"drive-4io-ones-8":     catalog.SoftResetDrive4IOOnes8,
	"drive-4io-ones-8or10": catalog.SoftResetDrive4IOOnes8or10,
	"drive-4io-ones-16":    catalog.SoftResetDrive4IOOnes16,
}

func parseSoftResetFlags(names []string) (catalog.SoftResetFlags, error) {
	var f catalog.SoftResetFlags
	for _, n := range names {
		bit, ok := softResetFlagNames[n]
		if !ok {
			return 0, fmt.Errorf("soft-reset-flags: unknown flag %q", n)
		}
		f |= bit
	}
	return f, nil
}

// resolveOpcodeTable accepts either a string naming a top-level io-opcodes
// group, or an inline object of the same { "mode": {opcode, dummy-cycles,
// mode-cycles} } shape.
func resolveOpcodeTable(raw json.RawMessage, doc document) (catalog.OpcodeTable, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		group, ok := doc.IoOpcodes[name]
		if !ok {
			return nil, fmt.Errorf("unknown io-opcodes reference %q", name)
		}
		return opcodeTableFromGroup(group)
	}

	var inline map[string]opcodeEntry
	if err := json.Unmarshal(raw, &inline); err != nil {
		return nil, fmt.Errorf("neither a string reference nor an inline object: %w", err)
	}
	return opcodeTableFromGroup(inline)
}

func opcodeTableFromGroup(group map[string]opcodeEntry) (catalog.OpcodeTable, error) {
	t := make(catalog.OpcodeTable, len(group))
	for modeName, e := range group {
		mode, ok := modeNames[modeName]
		if !ok {
			return nil, fmt.Errorf("unknown io-mode %q", modeName)
		}
		t[mode] = catalog.IoOpcode{Opcode: byte(e.Opcode), DummyCycles: uint8(e.DummyCycles), ModeCycles: uint8(e.ModeCycles)}
	}
	return t, nil
}

var wpKindNames = map[string]catalog.WpRangeKind{
	"none":          catalog.WpNone,
	"all":           catalog.WpAll,
	"bp-lower":      catalog.WpBpLower,
	"bp-upper":      catalog.WpBpUpper,
	"bp-cmp-lower":  catalog.WpBpCmpLower,
	"bp-cmp-upper":  catalog.WpBpCmpUpper,
	"sp-lower":      catalog.WpSpLower,
	"sp-upper":      catalog.WpSpUpper,
	"rp-lower":      catalog.WpRpLower,
	"rp-upper":      catalog.WpRpUpper,
	"sp-cmp-lower":  catalog.WpSpCmpLower,
	"sp-cmp-upper":  catalog.WpSpCmpUpper,
	"sp-cmpf-lower": catalog.WpSpCmpfLower,
	"sp-cmpf-upper": catalog.WpSpCmpfUpper,
	"rp-cmp-lower":  catalog.WpRpCmpLower,
	"rp-cmp-upper":  catalog.WpRpCmpUpper,
}

// registerAccessNames covers the single-byte status/config registers every
// vendor in internal/catalog builds WP tables from; a combined access is
// built by naming two or more in wpEntry.Registers (MSB-first).
var registerAccessNames = map[string]catalog.RegisterAccess{
	"sr1": {Kind: catalog.RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1},
	"sr2": {Kind: catalog.RegNormal, Name: vocab.RegSR2, OpcodeRead: vocab.OpRDSR2, OpcodeWrite: vocab.OpWRSR, DataBytes: 1},
}

func resolveWPRegister(e wpEntry) (catalog.RegisterAccess, error) {
	if len(e.Registers) > 0 {
		parts := make([]catalog.RegisterAccess, 0, len(e.Registers))
		for _, name := range e.Registers {
			acc, ok := registerAccessNames[name]
			if !ok {
				return catalog.RegisterAccess{}, fmt.Errorf("unknown register %q", name)
			}
			parts = append(parts, acc)
		}
		return catalog.RegisterAccess{Kind: catalog.RegMulti, Parts: parts}, nil
	}
	acc, ok := registerAccessNames[e.Register]
	if !ok {
		return catalog.RegisterAccess{}, fmt.Errorf("unknown register %q", e.Register)
	}
	return acc, nil
}

// parseHexOrDec parses a mask literal in either "0x1c"-style hex or plain
// decimal, the two forms wp-mask/mask-value authors reach for.
func parseHexOrDec(s string) (uint64, error) {
	if rest := strings.TrimPrefix(s, "0x"); rest != s {
		return strconv.ParseUint(rest, 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

func wpInfoFromEntry(e wpEntry) (catalog.WpInfo, error) {
	access, err := resolveWPRegister(e)
	if err != nil {
		return catalog.WpInfo{}, err
	}
	bpMask, err := parseHexOrDec(e.BPMask)
	if err != nil {
		return catalog.WpInfo{}, fmt.Errorf("bp-mask: %w", err)
	}
	ranges := make([]catalog.WpRange, 0, len(e.Ranges))
	for i, r := range e.Ranges {
		kind, ok := wpKindNames[r.Kind]
		if !ok {
			return catalog.WpInfo{}, fmt.Errorf("range %d: unknown kind %q", i, r.Kind)
		}
		mv, err := parseHexOrDec(r.MaskValue)
		if err != nil {
			return catalog.WpInfo{}, fmt.Errorf("range %d: mask-value: %w", i, err)
		}
		ranges = append(ranges, catalog.WpRange{Kind: kind, Shift: r.Shift, MaskValue: uint32(mv)})
	}
	return catalog.WpInfo{Access: access, BPMask: uint32(bpMask), Ranges: ranges}, nil
}

// resolveWP accepts either a string naming a top-level wp-groups entry, or
// an inline wpEntry object.
func resolveWP(raw json.RawMessage, doc document) (catalog.WpInfo, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		group, ok := doc.WpGroups[name]
		if !ok {
			return catalog.WpInfo{}, fmt.Errorf("unknown wp-groups reference %q", name)
		}
		return wpInfoFromEntry(group)
	}

	var inline wpEntry
	if err := json.Unmarshal(raw, &inline); err != nil {
		return catalog.WpInfo{}, fmt.Errorf("neither a string reference nor an inline object: %w", err)
	}
	return wpInfoFromEntry(inline)
}

// resolveEraseInfo accepts either a string naming an erase-groups entry, or
// an inline array of {opcode, size, max-erase-time-ms}.
func resolveEraseInfo(raw json.RawMessage, dieSize uint64, doc document) (catalog.EraseInfo, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		group, ok := doc.EraseGroups[name]
		if !ok {
			return catalog.EraseInfo{}, fmt.Errorf("unknown erase-groups reference %q", name)
		}
		return eraseInfoFromGroup(group, dieSize)
	}

	var inline []eraseEntry
	if err := json.Unmarshal(raw, &inline); err != nil {
		return catalog.EraseInfo{}, fmt.Errorf("neither a string reference nor an inline array: %w", err)
	}
	return eraseInfoFromGroup(inline, dieSize)
}

func eraseInfoFromGroup(group []eraseEntry, dieSize uint64) (catalog.EraseInfo, error) {
	var ei catalog.EraseInfo
	var mask uint8
	for i, e := range group {
		if i >= len(ei.Sectors) {
			return catalog.EraseInfo{}, fmt.Errorf("too many sector types (max %d)", len(ei.Sectors))
		}
		size, err := parseSize(json.RawMessage(strconv.Quote(e.Size)))
		if err != nil {
			return catalog.EraseInfo{}, fmt.Errorf("sector %d size: %w", i, err)
		}
		maxMS := uint32(e.MaxEraseTimeMS)
		if maxMS == 0 {
			maxMS = catalog.DefaultEraseTimeoutMS(uint32(size))
		}
		ei.Sectors[i] = catalog.EraseSector{Opcode: byte(e.Opcode), SizeBytes: uint32(size), MaxTimeMS: maxMS}
		mask |= 1 << i
	}
	if len(group) > 0 {
		smallest, largest := ei.Sectors[0].SizeBytes, ei.Sectors[0].SizeBytes
		for _, s := range ei.Sectors {
			if s.SizeBytes != 0 && s.SizeBytes < smallest {
				smallest = s.SizeBytes
			}
			if s.SizeBytes > largest {
				largest = s.SizeBytes
			}
		}
		ei.Regions = []catalog.EraseRegion{{
			SizeBytes:     dieSize,
			ErasesizeMask: mask,
			MinErasesize:  smallest,
			MaxErasesize:  largest,
		}}
	}
	return ei, nil
}
