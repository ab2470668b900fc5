// Package importer turns pasted or uploaded tabular text into typed rows,
// tags them against what the backend already holds and loads the new ones
// in batches.
package importer

import (
	"errors"
	"fmt"
)

// ColumnType selects the cell conversion applied to a column.
type ColumnType string

const (
	TypeText   ColumnType = "text"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
)

// ColumnSpec defines one output field.
type ColumnSpec struct {
	Key      string
	Label    string
	Required bool
	Type     ColumnType
}

// ImportTargetSpec describes one importable data category.
type ImportTargetSpec struct {
	ID            string
	Label         string
	Table         string
	UniqueKey     []string
	Columns       []ColumnSpec
	DefaultValues map[string]any
	SmartDedup    bool
	AppendOnly    bool
}

var ErrUnknownTarget = errors.New("unknown import target")

var targets = []ImportTargetSpec{
	{
		ID:        "sales_orders",
		Label:     "Notas de venta",
		Table:     "sales_order_lines",
		UniqueKey: []string{"nv", "codigo"},
		Columns: []ColumnSpec{
			{Key: "nv", Label: "N.Venta", Required: true, Type: TypeText},
			{Key: "cliente", Label: "Cliente", Type: TypeText},
			{Key: "codigo", Label: "Código", Required: true, Type: TypeText},
			{Key: "cantidad", Label: "Cantidad", Type: TypeNumber},
			{Key: "fecha_venta", Label: "Fecha venta", Type: TypeDate},
			{Key: "descripcion", Label: "Descripción", Type: TypeText},
		},
		SmartDedup: true,
	},
	{
		ID:        "inventory_lots",
		Label:     "Lotes de inventario",
		Table:     "inventory_lots",
		UniqueKey: []string{"codigo", "lote", "ubicacion"},
		Columns: []ColumnSpec{
			{Key: "codigo", Label: "Código", Required: true, Type: TypeText},
			{Key: "lote", Label: "Lote", Required: true, Type: TypeText},
			{Key: "ubicacion", Label: "Ubicación", Type: TypeText},
			{Key: "cantidad", Label: "Cantidad", Type: TypeNumber},
			{Key: "vencimiento", Label: "Vencimiento", Type: TypeDate},
		},
	},
	{
		ID:        "serials",
		Label:     "Series",
		Table:     "serials",
		UniqueKey: []string{"serie"},
		Columns: []ColumnSpec{
			{Key: "serie", Label: "Serie", Required: true, Type: TypeText},
			{Key: "codigo", Label: "Código", Type: TypeText},
			{Key: "nv", Label: "N.Venta", Type: TypeText},
			{Key: "fecha", Label: "Fecha", Type: TypeDate},
		},
		SmartDedup: true,
	},
	{
		ID:        "pallets",
		Label:     "Pallets",
		Table:     "pallet_records",
		UniqueKey: []string{"pallet"},
		Columns: []ColumnSpec{
			{Key: "pallet", Label: "Pallet", Required: true, Type: TypeText},
			{Key: "codigo", Label: "Código", Type: TypeText},
			{Key: "cantidad", Label: "Cantidad", Type: TypeNumber},
			{Key: "ubicacion", Label: "Ubicación", Type: TypeText},
			{Key: "fecha", Label: "Fecha", Type: TypeDate},
		},
	},
	{
		ID:        "warehouse_counts",
		Label:     "Conteos de bodega",
		Table:     "warehouse_counts",
		UniqueKey: []string{"ubicacion", "codigo", "fecha_conteo"},
		Columns: []ColumnSpec{
			{Key: "ubicacion", Label: "Ubicación", Required: true, Type: TypeText},
			{Key: "codigo", Label: "Código", Required: true, Type: TypeText},
			{Key: "cantidad", Label: "Cantidad", Type: TypeNumber},
			{Key: "fecha_conteo", Label: "Fecha conteo", Type: TypeDate},
		},
	},
	{
		ID:        "products",
		Label:     "Maestro de productos",
		Table:     "products",
		UniqueKey: []string{"codigo"},
		Columns: []ColumnSpec{
			{Key: "codigo", Label: "Código", Required: true, Type: TypeText},
			{Key: "descripcion", Label: "Descripción", Required: true, Type: TypeText},
			{Key: "unidad", Label: "Unidad", Type: TypeText},
			{Key: "peso", Label: "Peso", Type: TypeNumber},
		},
	},
	{
		ID:    "dispatch_log",
		Label: "Bitácora de despachos",
		Table: "dispatch_log",
		Columns: []ColumnSpec{
			{Key: "nv", Label: "N.Venta", Required: true, Type: TypeText},
			{Key: "guia", Label: "Guía", Required: true, Type: TypeText},
			{Key: "transportista", Label: "Transportista", Type: TypeText},
			{Key: "bultos", Label: "Bultos", Type: TypeNumber},
			{Key: "fecha", Label: "Fecha", Type: TypeDate},
		},
		DefaultValues: map[string]any{"origen": "import"},
		AppendOnly:    true,
	},
}

// Targets lists every import target in display order.
func Targets() []ImportTargetSpec {
	out := make([]ImportTargetSpec, len(targets))
	copy(out, targets)
	return out
}

// Lookup returns the target registered under id.
func Lookup(id string) (ImportTargetSpec, error) {
	for _, t := range targets {
		if t.ID == id {
			return t, nil
		}
	}
	return ImportTargetSpec{}, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
}

// LookupByTable returns the target that loads into table.
func LookupByTable(table string) (ImportTargetSpec, bool) {
	for _, t := range targets {
		if t.Table == table {
			return t, true
		}
	}
	return ImportTargetSpec{}, false
}

// ColumnKeys returns the column keys in order.
func (t ImportTargetSpec) ColumnKeys() []string {
	keys := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// CheckKey is the column the dedup checker queries: the first unique key component.
func (t ImportTargetSpec) CheckKey() string {
	if len(t.UniqueKey) == 0 {
		return ""
	}
	return t.UniqueKey[0]
}
