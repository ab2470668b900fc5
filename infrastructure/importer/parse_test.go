package importer

import (
	"testing"
)

func mustTarget(t *testing.T, id string) ImportTargetSpec {
	t.Helper()
	target, err := Lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	return target
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15/03/24", "2024-03-15"},
		{"15/03/2024", "2024-03-15"},
		{"5-3-2024", "2024-03-05"},
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T10:20:00Z", "2024-03-15"},
		{"2024-03-15T23:30:00-05:00", "2024-03-16"},
		{"2024/03/15", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"Mar 15, 2024", "2024-03-15"},
	}
	for _, tc := range cases {
		got := NormalizeDate(tc.in)
		if got == nil {
			t.Fatalf("NormalizeDate(%q) = nil, want %s", tc.in, tc.want)
		}
		if *got != tc.want {
			t.Fatalf("NormalizeDate(%q) = %s, want %s", tc.in, *got, tc.want)
		}
	}
}

func TestNormalizeDateRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "1/2/3", "abcdefgh", "31/04/2024", "30/02/2024", "32/01/2024", "15/13/2024", "not a date 12"} {
		if got := NormalizeDate(in); got != nil {
			t.Fatalf("NormalizeDate(%q) = %s, want nil", in, *got)
		}
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"5", 5},
		{"3,5", 3.5},
		{"$ 12,50", 12.5},
		{"-3", -3},
		{"1.234,5", 1.234},
		{".5", 0.5},
		{"abc", 0},
		{"", 0},
		{"--3", 0},
	}
	for _, tc := range cases {
		if got := ParseNumber(tc.in); got != tc.want {
			t.Fatalf("ParseNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDetectSeparator(t *testing.T) {
	if got := DetectSeparator("a\tb;c,d"); got != '\t' {
		t.Fatalf("expected tab, got %q", got)
	}
	if got := DetectSeparator("a;b,c"); got != ';' {
		t.Fatalf("expected semicolon, got %q", got)
	}
	if got := DetectSeparator("a b"); got != ',' {
		t.Fatalf("expected comma default, got %q", got)
	}
}

func TestSplitCellsQuoted(t *testing.T) {
	cells := SplitCells(`"a,b",c,"say ""hi"""`, ',')
	if len(cells) != 3 || cells[0] != "a,b" || cells[1] != "c" || cells[2] != `say "hi"` {
		t.Fatalf("unexpected cells: %#v", cells)
	}
}

func TestSplitCellsTabTrimsOnlySpaces(t *testing.T) {
	cells := SplitCells("a\t b \t", '\t')
	if len(cells) != 3 || cells[0] != "a" || cells[1] != "b" || cells[2] != "" {
		t.Fatalf("unexpected cells: %#v", cells)
	}
}

func TestIsHeaderRow(t *testing.T) {
	cols := mustTarget(t, "sales_orders").Columns
	if !IsHeaderRow([]string{"N.Venta"}, cols) {
		t.Fatalf("label should be recognised as header")
	}
	if !IsHeaderRow([]string{"n_venta", "whatever"}, cols) {
		t.Fatalf("punctuation variants of the label should match")
	}
	if !IsHeaderRow([]string{"", "CÓDIGO"}, cols) {
		t.Fatalf("accented upper case label should match")
	}
	if IsHeaderRow([]string{"1001", "ACME", "SKU1"}, cols) {
		t.Fatalf("data row must not be a header")
	}
	if IsHeaderRow([]string{"", "  "}, cols) {
		t.Fatalf("blank cells must not match")
	}
}

func TestKeepRow(t *testing.T) {
	cols := mustTarget(t, "sales_orders").Columns
	var nilDate *string
	if KeepRow(ParsedRow{"nv": "", "codigo": "", "cliente": "ACME", "cantidad": 0.0, "fecha_venta": nilDate}, cols) {
		t.Fatalf("row without required values must be dropped")
	}
	if !KeepRow(ParsedRow{"nv": "", "codigo": "SKU1"}, cols) {
		t.Fatalf("row with one required value must be kept")
	}

	optional := []ColumnSpec{{Key: "a", Type: TypeText}, {Key: "b", Type: TypeNumber}}
	if !KeepRow(ParsedRow{"a": "", "b": 2.0}, optional) {
		t.Fatalf("row with any value must be kept when nothing is required")
	}
	if KeepRow(ParsedRow{"a": "", "b": 0.0}, optional) {
		t.Fatalf("blank row must be dropped")
	}
}

func TestParseTextSkipsHeaderAndAlignsCells(t *testing.T) {
	text := "\ufeffNV\tCliente\tCodigo\tCantidad\r\n1001\tACME\tSKU1\t5\r\n\r\n1002\tBeta\tSKU2\t3,5\r\n"
	s := ParseText(text, mustTarget(t, "sales_orders"))

	if !s.HeaderSkipped {
		t.Fatalf("expected header to be skipped")
	}
	if s.Separator != '\t' {
		t.Fatalf("expected tab separator, got %q", s.Separator)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows))
	}
	first := s.Rows[0]
	if first.Line != 2 || first.Values["nv"] != "1001" || first.Values["codigo"] != "SKU1" || first.Values["cantidad"] != 5.0 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Status != StatusNew {
		t.Fatalf("parsed rows start as new, got %s", first.Status)
	}
	if d, ok := first.Values["fecha_venta"].(*string); !ok || d != nil {
		t.Fatalf("missing date cell should be a nil date, got %#v", first.Values["fecha_venta"])
	}
	if s.Rows[1].Values["cantidad"] != 3.5 || s.Rows[1].Line != 4 {
		t.Fatalf("unexpected second row: %+v", s.Rows[1])
	}
}

func TestParseTextWithoutHeaderKeepsFirstLine(t *testing.T) {
	s := ParseText("P1;Tornillo;UN;0,5\nP2;Tuerca", mustTarget(t, "products"))
	if s.HeaderSkipped {
		t.Fatalf("data line must not be taken as header")
	}
	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows))
	}
	if s.Rows[0].Values["peso"] != 0.5 {
		t.Fatalf("expected peso 0.5, got %#v", s.Rows[0].Values["peso"])
	}
	if s.Rows[1].Values["unidad"] != "" || s.Rows[1].Values["peso"] != 0.0 {
		t.Fatalf("missing trailing cells should be empty, got %+v", s.Rows[1].Values)
	}
}

func TestParseTextDropsRowsWithoutRequiredValues(t *testing.T) {
	s := ParseText("1001,ACME,SKU1\n,ACME,\n1003,,SKU3", mustTarget(t, "sales_orders"))
	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 kept rows, got %d", len(s.Rows))
	}
	if s.Rows[1].Line != 3 {
		t.Fatalf("expected original line number 3, got %d", s.Rows[1].Line)
	}
}

func TestNewSessionErrors(t *testing.T) {
	if _, err := NewSession("nope", "a,b", "paste"); err == nil {
		t.Fatalf("expected unknown target error")
	}
	if _, err := NewSession("products", "codigo,descripcion\n\n", "paste"); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	s, err := NewSession("products", "P1,Tornillo", "paste")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if s.ID == "" || len(s.InputHash) != 16 || s.SourceName != "paste" {
		t.Fatalf("session metadata not filled: %+v", s)
	}
	if s.InputHash != Fingerprint("P1,Tornillo") {
		t.Fatalf("fingerprint mismatch")
	}
}

func TestQuoteCSVRowRoundTrip(t *testing.T) {
	fields := []string{"1001", `Caja "grande"`, "a,b", ""}
	line := QuoteCSVRow(fields)
	if line != `"1001","Caja ""grande""","a,b",""` {
		t.Fatalf("unexpected line %s", line)
	}
	back := SplitCells(line, DetectSeparator(line))
	if len(back) != len(fields) {
		t.Fatalf("expected %d cells, got %#v", len(fields), back)
	}
	for i := range fields {
		if back[i] != fields[i] {
			t.Fatalf("cell %d: got %q want %q", i, back[i], fields[i])
		}
	}
}

func TestTemplateCSVIsRecognisedAsHeader(t *testing.T) {
	for _, target := range Targets() {
		s := ParseText(TemplateCSV(target), target)
		if !s.HeaderSkipped || len(s.Rows) != 0 {
			t.Fatalf("template for %s should parse as a bare header", target.ID)
		}
	}
}
