package electrostatics

import "sort"

// Permittivity is the piecewise-constant coefficient field: entry r-1 holds
// the permittivity of region r. Regions no element carries may hold 0.
type Permittivity []float64

// At returns the permittivity of a region id
func (p Permittivity) At(region int) float64 { return p[region-1] }

// MaxRegion is the largest region id covered
func (p Permittivity) MaxRegion() int { return len(p) }

// ResolvePermittivity maps region ids to permittivities. regions are the ids
// present in the mesh; the result covers [1, max(regions)]. Explicit entries
// are placed first, then the default entry (RegionID 0) fills every region
// left unset. A region present in the mesh that is still unset is an
// UnresolvedRegionError.
func ResolvePermittivity(regions []int, materials []Material) (eps Permittivity, err error) {
	var R int
	for _, r := range regions {
		if r > R {
			R = r
		}
	}
	// Stable order so that errors do not depend on the table order
	mats := make([]Material, len(materials))
	copy(mats, materials)
	sort.SliceStable(mats, func(i, j int) bool {
		if mats[i].RegionID != mats[j].RegionID {
			return mats[i].RegionID < mats[j].RegionID
		}
		return mats[i].Name < mats[j].Name
	})

	var (
		def      *Material
		assigned = make(map[int]string)
	)
	eps = make(Permittivity, R)
	for i := range mats {
		mt := &mats[i]
		if !(mt.Permittivity > 0) {
			return nil, &InvalidMaterialError{Name: mt.Name, Reason: "permittivity must be strictly positive"}
		}
		if mt.IsDefault() {
			if def != nil {
				return nil, &InvalidMaterialError{Name: mt.Name,
					Reason: "only one material may omit the region id, " + def.Name + " already does"}
			}
			def = mt
			continue
		}
		if mt.RegionID < 1 || mt.RegionID > R {
			return nil, &ConfigRangeError{Kind: "material", Name: mt.Name, ID: mt.RegionID, Max: R}
		}
		if other, ok := assigned[mt.RegionID]; ok {
			return nil, &InvalidMaterialError{Name: mt.Name,
				Reason: "region already assigned by material " + other}
		}
		assigned[mt.RegionID] = mt.Name
		eps[mt.RegionID-1] = mt.Permittivity
	}
	if def != nil {
		for i := range eps {
			if eps[i] == 0 {
				eps[i] = def.Permittivity
			}
		}
	}
	var unresolved []int
	for _, r := range regions {
		if r >= 1 && eps[r-1] == 0 {
			unresolved = append(unresolved, r)
		}
	}
	if len(unresolved) != 0 {
		sort.Ints(unresolved)
		return nil, &UnresolvedRegionError{Regions: unresolved}
	}
	return
}
