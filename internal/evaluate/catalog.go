package evaluate

import (
	"strings"

	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/model"
)

// Range sources recorded on catalog specs.
const (
	SourceData    = "data"
	SourceConfig  = "config"
	SourceProcess = "process"
)

// Catalog is the effective set of parameter ranges for a dataset.
type Catalog struct {
	specs  []model.ParameterSpec
	byName map[string]int
}

// BuildCatalog derives ranges from the process columns of rows, keeping the
// first row that defines each parameter, then adds configured defaults for
// parameters the data does not define.
func BuildCatalog(rows []model.Row, cols config.ProcessColumns, defaults []model.ParameterSpec) *Catalog {
	c := &Catalog{byName: make(map[string]int)}
	for _, r := range rows {
		spec, ok := ProcessSpec(r, cols)
		if !ok {
			continue
		}
		spec.Source = SourceData
		c.add(spec)
	}
	for _, d := range defaults {
		d.Source = SourceConfig
		c.add(d)
	}
	return c
}

func (c *Catalog) add(spec model.ParameterSpec) {
	if spec.Name == "" {
		return
	}
	if _, seen := c.byName[spec.Name]; seen {
		return
	}
	c.byName[spec.Name] = len(c.specs)
	c.specs = append(c.specs, spec)
}

// Specs returns the ranges in catalog order: data-derived first, then defaults.
func (c *Catalog) Specs() []model.ParameterSpec {
	out := make([]model.ParameterSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Len returns the number of parameters in the catalog.
func (c *Catalog) Len() int { return len(c.specs) }

// Lookup returns the range for name.
func (c *Catalog) Lookup(name string) (model.ParameterSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return model.ParameterSpec{}, false
	}
	return c.specs[i], true
}

// Select returns the ranges for names, in the given order, skipping names
// the catalog does not know.
func (c *Catalog) Select(names []string) []model.ParameterSpec {
	out := make([]model.ParameterSpec, 0, len(names))
	for _, n := range names {
		if s, ok := c.Lookup(n); ok {
			out = append(out, s)
		}
	}
	return out
}

// ProcessSpec returns the range a row declares for its own process
// parameter. ok is false when the row names no parameter or its bounds are
// not numeric.
func ProcessSpec(row model.Row, cols config.ProcessColumns) (model.ParameterSpec, bool) {
	if cols.NameColumn == "" {
		return model.ParameterSpec{}, false
	}
	name := strings.TrimSpace(row.Field(cols.NameColumn).Text())
	if name == "" {
		return model.ParameterSpec{}, false
	}
	lo, okMin := row.Field(cols.MinColumn).Float()
	hi, okMax := row.Field(cols.MaxColumn).Float()
	if !okMin || !okMax {
		return model.ParameterSpec{}, false
	}
	spec := model.ParameterSpec{Name: name, Min: lo, Max: hi, Source: SourceProcess}
	if cols.AverageColumn != "" {
		if avg, ok := row.Field(cols.AverageColumn).Float(); ok {
			spec.Average = &avg
		}
	}
	return spec, true
}
