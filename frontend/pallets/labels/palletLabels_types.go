package labels

// PalletRecord is one imported pallet_records row with its product description.
type PalletRecord struct {
	ID          int64   `bun:"id"`
	Pallet      string  `bun:"pallet"`
	Codigo      string  `bun:"codigo"`
	Descripcion string  `bun:"descripcion"`
	Cantidad    float64 `bun:"cantidad"`
	Ubicacion   string  `bun:"ubicacion"`
	Fecha       string  `bun:"fecha"`
}
