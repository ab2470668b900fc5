package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

func renderPalletLabelPDF(rec PalletRecord, printedAt time.Time) ([]byte, error) {
	return renderPalletLabelsPDF([]PalletRecord{rec}, printedAt)
}

func renderPalletLabelsPDF(records []PalletRecord, printedAt time.Time) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Pallet Labels", false)
	pdf.SetAutoPageBreak(false, 0)
	for i, rec := range records {
		if err := addPalletLabelPage(pdf, rec, printedAt, i); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func orDash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return s
}

func formatQty(q float64) string {
	if q < 0 {
		q = 0
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func addPalletLabelPage(pdf *gofpdf.Fpdf, rec PalletRecord, printedAt time.Time, pageIndex int) error {
	code := strings.TrimSpace(rec.Pallet)
	if code == "" {
		return fmt.Errorf("pallet %d has no code", rec.ID)
	}
	barcodePNG, err := renderCode128PNG(code, 1200, 220)
	if err != nil {
		return fmt.Errorf("encode barcode %q: %w", code, err)
	}
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	description := tr(orDash(rec.Descripcion))
	product := tr(orDash(rec.Codigo))
	location := tr(orDash(rec.Ubicacion))
	received := orDash(rec.Fecha)

	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	margin := 12.0
	x0 := margin
	y0 := margin
	w0 := pageW - (2 * margin)
	h0 := pageH - (2 * margin)

	pdf.SetLineWidth(0.35)
	pdf.Rect(x0, y0, w0, h0, "")

	rowTitle := 30.0
	rowProduct := 30.0
	rowLocation := 34.0
	rowBarcode := 54.0
	rowQty := h0 - rowTitle - rowProduct - rowLocation - rowBarcode

	leftW := w0 * 0.62
	rightW := w0 - leftW

	yTitle := y0
	yProduct := yTitle + rowTitle
	yLocation := yProduct + rowProduct
	yBarcode := yLocation + rowLocation
	yQty := yBarcode + rowBarcode

	pdf.Line(x0, yProduct, x0+w0, yProduct)
	pdf.Line(x0, yLocation, x0+w0, yLocation)
	pdf.Line(x0, yBarcode, x0+w0, yBarcode)
	pdf.Line(x0, yQty, x0+w0, yQty)
	pdf.Line(x0+leftW, yLocation, x0+leftW, yLocation+rowLocation)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(x0+w0-60, y0+2)
	pdf.CellFormat(58, 5, "Printed "+printedAt.Format("2006-01-02"), "", 0, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	titleFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 44, 18, "PALLET "+code, w0-8)
	pdf.SetFont("Helvetica", "B", titleFont)
	pdf.SetXY(x0+4, yTitle+6)
	pdf.CellFormat(w0-8, rowTitle-10, "PALLET "+code, "", 0, "C", false, 0, "")

	fieldLabelFont := 10.5
	pdf.SetFont("Helvetica", "B", fieldLabelFont)
	pdf.SetXY(x0+2.5, yProduct+2)
	pdf.CellFormat(w0-5, 5, "Producto:", "", 0, "L", false, 0, "")
	productText := product + "  " + description
	productFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 22, 10, productText, w0-8)
	pdf.SetFont("Helvetica", "B", productFont)
	pdf.SetXY(x0+4, yProduct+10)
	pdf.CellFormat(w0-8, rowProduct-14, productText, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", fieldLabelFont)
	pdf.SetXY(x0+2.5, yLocation+2)
	pdf.CellFormat(leftW-5, 5, "Ubicacion:", "", 0, "L", false, 0, "")
	pdf.SetXY(x0+leftW+2.5, yLocation+2)
	pdf.CellFormat(rightW-5, 5, "Fecha:", "", 0, "L", false, 0, "")

	locationFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 30, 16, location, leftW-10)
	pdf.SetFont("Helvetica", "B", locationFont)
	pdf.SetXY(x0+4, yLocation+10)
	pdf.CellFormat(leftW-8, rowLocation-12, location, "", 0, "L", false, 0, "")

	dateFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 30, 16, received, rightW-10)
	pdf.SetFont("Helvetica", "B", dateFont)
	pdf.SetXY(x0+leftW+4, yLocation+10)
	pdf.CellFormat(rightW-8, rowLocation-12, received, "", 0, "L", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "pallet-barcode-" + strconv.FormatInt(rec.ID, 10) + "-" + strconv.Itoa(pageIndex)
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	barcodeW := 200.0
	barcodeH := rowBarcode - 16
	pdf.ImageOptions(imageName, x0+(w0-barcodeW)/2, yBarcode+4, barcodeW, barcodeH, false, opt, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(x0+4, yBarcode+rowBarcode-10)
	pdf.CellFormat(w0-8, 6, code, "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", fieldLabelFont)
	pdf.SetXY(x0+2.5, yQty+2)
	pdf.CellFormat(w0-5, 5, "CANTIDAD", "", 0, "L", false, 0, "")
	qtyText := formatQty(rec.Cantidad)
	qtyFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 72, 24, qtyText, w0-10)
	pdf.SetFont("Helvetica", "B", qtyFont)
	pdf.SetXY(x0+4, yQty+6)
	pdf.CellFormat(w0-8, rowQty-8, qtyText, "", 0, "C", false, 0, "")
	return nil
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
