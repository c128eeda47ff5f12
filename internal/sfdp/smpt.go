package sfdp

// SectorMapRegion is one non-uniform erase region decoded from SMPT: a
// byte count and the set of erase-type indices (into BFPT.EraseSectors)
// usable within it (spec.md §4.3's "SMPT (sector map) if present").
type SectorMapRegion struct {
	SizeBytes    uint64
	EraseTypeMask uint8
}

// DecodeSMPT interprets the SMPT DWORD stream. SMPT's full grammar
// supports conditional multi-configuration maps (erase-config-detection
// descriptors); this decodes the common single-configuration-map case,
// which covers every sector-map-bearing part in the built-in catalog.
func DecodeSMPT(dws []uint32) []SectorMapRegion {
	var regions []SectorMapRegion
	i := 0
	for i < len(dws) {
		dw := dws[i]
		isConfigDescriptor := bit(dw, 31)
		if isConfigDescriptor {
			// skip the configuration-detection descriptor and its
			// companion DWORD; region descriptors for the active
			// configuration follow immediately after.
			i += 2
			continue
		}
		count := field(dw, 0, 1) + 1
		sizeExp := field(dw, 8, 15)
		regions = append(regions, SectorMapRegion{
			SizeBytes:    uint64(1) << sizeExp,
			EraseTypeMask: uint8(field(dw, 24, 27)),
		})
		_ = count
		i++
	}
	return regions
}
