package catalog

import "sort"

// Vendor groups the parts of one manufacturer plus any vendor-wide default
// behavior a part may inherit when it doesn't declare its own (spec.md §3:
// "vendor-level Init/DefaultOps/DefaultFixups apply to every part of that
// vendor unless overridden per-part").
type Vendor struct {
	Name          string
	IDByte        byte // JEDEC manufacturer ID, first ID byte
	Parts         []Part
	DefaultOps    *OpsOverride
	DefaultFixups *FixupHooks
	// Init runs once at registry construction time, letting a vendor file
	// validate its own table (duplicate-ID detection etc.) before the part
	// becomes reachable through Find*.
	Init func() error
}

// registry is the process-wide catalog, built by each vendor file's init()
// calling RegisterVendor. Order of registration only affects iteration
// order in ForEachPart, never lookup results.
var registry []*Vendor

// RegisterVendor adds v to the catalog, running v.Init if set. Panics on
// Init failure: a malformed built-in catalog table is a programming error,
// not a runtime condition, and must fail at package-init time the way the
// teacher's device-registration panics on a duplicate device name.
func RegisterVendor(v *Vendor) {
	if v.Init != nil {
		if err := v.Init(); err != nil {
			panic("catalog: vendor " + v.Name + ": " + err.Error())
		}
	}
	registry = append(registry, v)
}

// effectivePart resolves a part's Ops/Fixups, falling back to its vendor's
// defaults when the part itself declares none.
func effectivePart(v *Vendor, p *Part) *Part {
	cp := *p
	if cp.Ops == nil {
		cp.Ops = v.DefaultOps
	}
	if cp.Fixups == nil {
		cp.Fixups = v.DefaultFixups
	}
	return &cp
}

// FindByID returns every catalog part whose ID mask matches probed, paired
// with its vendor, ordered by descending MaskStrictness so the resolver's
// caller can prefer the most specific match first (spec.md §4.4 step 2).
func FindByID(probed []byte) []MatchedPart {
	var out []MatchedPart
	for _, v := range registry {
		for i := range v.Parts {
			p := &v.Parts[i]
			if p.ID.Matches(probed) {
				out = append(out, MatchedPart{Vendor: v.Name, Part: effectivePart(v, p)})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Part.ID.MaskStrictness() > out[j].Part.ID.MaskStrictness()
	})
	return out
}

// MatchedPart pairs a resolved Part with the vendor name that produced it.
type MatchedPart struct {
	Vendor string
	Part   *Part
}

// FindByName looks up a part by exact model name or declared alias,
// case-sensitive (model numbers are not case-ambiguous in practice).
func FindByName(name string) (MatchedPart, bool) {
	for _, v := range registry {
		for i := range v.Parts {
			p := &v.Parts[i]
			if p.Model == name {
				return MatchedPart{Vendor: v.Name, Part: effectivePart(v, p)}, true
			}
			for _, a := range p.Alias {
				if a == name {
					return MatchedPart{Vendor: v.Name, Part: effectivePart(v, p)}, true
				}
			}
		}
	}
	return MatchedPart{}, false
}

// ForEachPart visits every registered part in vendor-registration order,
// vendor-internal table order within each vendor. Used by external-ID
// loading (internal/extid) to detect collisions against the built-in set.
func ForEachPart(fn func(vendor string, p *Part)) {
	for _, v := range registry {
		for i := range v.Parts {
			fn(v.Name, effectivePart(v, &v.Parts[i]))
		}
	}
}

// Vendors returns the registered vendor names, in registration order.
func Vendors() []string {
	out := make([]string, len(registry))
	for i, v := range registry {
		out[i] = v.Name
	}
	return out
}
