package models

// Region is one entry of the Form 41 region code table.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RegionTable is an immutable bidirectional mapping between region codes and
// region names. The zero value matches nothing.
type RegionTable struct {
	regions []Region
	byCode  map[string]string
	byName  map[string]string
}

// NewRegionTable builds a table from the given regions. Later duplicates of a
// code or name are ignored.
func NewRegionTable(regions ...Region) RegionTable {
	t := RegionTable{
		regions: make([]Region, 0, len(regions)),
		byCode:  make(map[string]string, len(regions)),
		byName:  make(map[string]string, len(regions)),
	}
	for _, r := range regions {
		if _, dup := t.byCode[r.Code]; dup {
			continue
		}
		if _, dup := t.byName[r.Name]; dup {
			continue
		}
		t.regions = append(t.regions, r)
		t.byCode[r.Code] = r.Name
		t.byName[r.Name] = r.Code
	}
	return t
}

// DefaultRegions is the fixed region table used by the BTS traffic data.
var DefaultRegions = NewRegionTable(
	Region{Code: "A", Name: "Atlantic"},
	Region{Code: "L", Name: "Latin America"},
	Region{Code: "D", Name: "Domestic"},
	Region{Code: "I", Name: "International"},
	Region{Code: "P", Name: "Pacific"},
)

// Name returns the region name for a code.
func (t RegionTable) Name(code string) (string, bool) {
	name, ok := t.byCode[code]
	return name, ok
}

// Code returns the region code for a name.
func (t RegionTable) Code(name string) (string, bool) {
	code, ok := t.byName[name]
	return code, ok
}

// Resolve accepts either a code or a full name and returns the code.
func (t RegionTable) Resolve(codeOrName string) (string, bool) {
	if _, ok := t.byCode[codeOrName]; ok {
		return codeOrName, true
	}
	return t.Code(codeOrName)
}

// Regions returns the table entries in declaration order.
func (t RegionTable) Regions() []Region {
	out := make([]Region, len(t.regions))
	copy(out, t.regions)
	return out
}
