// Package layout groups stored inventory lots into the warehouse location grid.
package layout

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/importer"
)

// UnassignedBucket collects lots whose location is not AISLE-RACK-LEVEL.
const UnassignedBucket = "unassigned"

var locationPattern = regexp.MustCompile(`^([A-Z0-9]+)-(\d{1,3})-(\d{1,3})$`)

type Location struct {
	Aisle string
	Rack  string
	Level string
}

// ParseLocation splits a code like "A-01-02". Case and surrounding spaces are ignored.
func ParseLocation(code string) (Location, bool) {
	m := locationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return Location{}, false
	}
	return Location{Aisle: m[1], Rack: m[2], Level: m[3]}, true
}

type Cell struct {
	Level string
	Qty   float64
	Lots  int
	Codes []string
}

type Rack struct {
	Code   string
	Levels []Cell
	Qty    float64
}

type Aisle struct {
	Code  string
	Racks []Rack
	Qty   float64
}

type Lot struct {
	Codigo    string
	Lote      string
	Ubicacion string
	Qty       float64
}

type Grid struct {
	Aisles     []Aisle
	Unassigned []Lot
	Total      float64
}

// BuildGrid groups inventory_lots rows into aisles, racks and levels.
func BuildGrid(rows []backend.Row) Grid {
	type cellKey struct{ aisle, rack, level string }
	cells := map[cellKey]*Cell{}
	var grid Grid

	for _, row := range rows {
		lot := Lot{
			Codigo:    importer.FormatValue(row["codigo"]),
			Lote:      importer.FormatValue(row["lote"]),
			Ubicacion: importer.FormatValue(row["ubicacion"]),
			Qty:       quantity(row["cantidad"]),
		}
		grid.Total += lot.Qty

		loc, ok := ParseLocation(lot.Ubicacion)
		if !ok {
			grid.Unassigned = append(grid.Unassigned, lot)
			continue
		}
		k := cellKey{loc.Aisle, loc.Rack, loc.Level}
		c, ok := cells[k]
		if !ok {
			c = &Cell{Level: loc.Level}
			cells[k] = c
		}
		c.Qty += lot.Qty
		c.Lots++
		if lot.Codigo != "" && !slices.Contains(c.Codes, lot.Codigo) {
			c.Codes = append(c.Codes, lot.Codigo)
		}
	}

	aisles := map[string]map[string][]Cell{}
	for k, c := range cells {
		if aisles[k.aisle] == nil {
			aisles[k.aisle] = map[string][]Cell{}
		}
		sort.Strings(c.Codes)
		aisles[k.aisle][k.rack] = append(aisles[k.aisle][k.rack], *c)
	}

	for _, aisleCode := range sortedKeys(aisles) {
		aisle := Aisle{Code: aisleCode}
		racks := aisles[aisleCode]
		for _, rackCode := range sortedKeys(racks) {
			levels := racks[rackCode]
			sort.Slice(levels, func(i, j int) bool { return lessCode(levels[i].Level, levels[j].Level) })
			rack := Rack{Code: rackCode, Levels: levels}
			for _, l := range levels {
				rack.Qty += l.Qty
			}
			aisle.Qty += rack.Qty
			aisle.Racks = append(aisle.Racks, rack)
		}
		grid.Aisles = append(grid.Aisles, aisle)
	}
	sort.SliceStable(grid.Unassigned, func(i, j int) bool { return grid.Unassigned[i].Ubicacion < grid.Unassigned[j].Ubicacion })
	return grid
}

func quantity(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case string:
		return importer.ParseNumber(x)
	default:
		return 0
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessCode(keys[i], keys[j]) })
	return keys
}

// lessCode orders numeric codes by value and everything else lexically.
func lessCode(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil && ai != bi {
		return ai < bi
	}
	return a < b
}
