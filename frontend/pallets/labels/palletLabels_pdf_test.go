package labels

import (
	"bytes"
	"testing"
	"time"
)

func TestRenderPalletLabelPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	pdf, err := renderPalletLabelPDF(PalletRecord{
		ID:          1,
		Pallet:      "PAL-0001",
		Codigo:      "SKU1",
		Descripcion: "Tornillo cabeza hexagonal",
		Cantidad:    48,
		Ubicacion:   "A-01-02",
		Fecha:       "2026-02-19",
	}, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderPalletLabelPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected pdf bytes")
	}
}

func TestRenderPalletLabelsPDF_GeneratesCombinedPDF(t *testing.T) {
	t.Parallel()

	pdf, err := renderPalletLabelsPDF([]PalletRecord{
		{ID: 10, Pallet: "PAL-0010", Cantidad: 3.5},
		{ID: 11, Pallet: "PAL-0011"},
	}, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderPalletLabelsPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("expected non-empty pdf bytes")
	}
}

func TestRenderPalletLabelsPDF_Errors(t *testing.T) {
	t.Parallel()

	if _, err := renderPalletLabelsPDF(nil, time.Now()); err == nil {
		t.Fatalf("expected error for empty label list")
	}
	if _, err := renderPalletLabelPDF(PalletRecord{ID: 3, Pallet: "  "}, time.Now()); err == nil {
		t.Fatalf("expected error for pallet without code")
	}
}

func TestFormatQty(t *testing.T) {
	if got := formatQty(48); got != "48" {
		t.Fatalf("expected 48, got %s", got)
	}
	if got := formatQty(3.5); got != "3.5" {
		t.Fatalf("expected 3.5, got %s", got)
	}
	if got := formatQty(-1); got != "0" {
		t.Fatalf("expected 0, got %s", got)
	}
}
