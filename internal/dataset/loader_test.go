package dataset_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/medcombo/internal/dataset"
)

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "diabetic.csv")
	content := "\ufeffencounter_id,metformin,insulin,readmitted\n" +
		"1,Up,Steady,NO\n" +
		"2,No,,>30\n" +
		"3,Steady,Down,<30\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := dataset.LoadFile(p, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if ds.Name() != "diabetic.csv" || ds.Len() != 3 {
		t.Fatalf("unexpected dataset %s with %d rows", ds.Name(), ds.Len())
	}
	if !ds.Has("encounter_id") {
		t.Fatalf("BOM not stripped: %v", ds.Columns())
	}
	if _, ok := ds.Value("insulin", 1); ok {
		t.Fatalf("expected missing insulin on row 1")
	}
	if ds.Outcome(2) != dataset.OutcomeDown {
		t.Fatalf("Outcome(2) = %v", ds.Outcome(2))
	}
}

func TestLoadFileTSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "d.tsv")
	if err := os.WriteFile(p, []byte("metformin\treadmitted\nUp\tNO\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := dataset.LoadFile(p, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if v, _ := ds.Value("metformin", 0); v != "Up" {
		t.Fatalf("metformin = %q", v)
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "d.parquet")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := dataset.LoadFile(p, dataset.DefaultOptions())
	if !errors.Is(err, dataset.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	ds, err := dataset.ReadCSV(strings.NewReader(""), "empty.csv", ',', dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.Len() != 0 || len(ds.Columns()) != 0 {
		t.Fatalf("expected empty dataset")
	}
}

func TestLoadFileXLSXSheetSelection(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "book.xlsx")
	if err := os.WriteFile(p, buildWorkbook(t), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	opt := dataset.DefaultOptions()
	opt.SheetName = "Encounters"
	ds, err := dataset.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("LoadFile by name: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows = %d, want 2", ds.Len())
	}
	if v, _ := ds.Value("metformin", 0); v != "Up" {
		t.Fatalf("metformin[0] = %q", v)
	}
	if _, ok := ds.Value("insulin", 1); ok {
		t.Fatalf("skipped cell should be missing")
	}
	if ds.Outcome(1) != dataset.OutcomeUp {
		t.Fatalf("Outcome(1) = %v", ds.Outcome(1))
	}

	opt.SheetName = "Nope"
	if _, err := dataset.LoadFile(p, opt); err == nil || !strings.Contains(err.Error(), "Encounters") {
		t.Fatalf("expected sheet-not-found error listing sheets, got %v", err)
	}

	opt = dataset.DefaultOptions()
	opt.SheetIndex = 2
	opt.OutcomeColumn = ""
	ds, err = dataset.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("LoadFile by index: %v", err)
	}
	if !ds.Has("note") || ds.Len() != 1 {
		t.Fatalf("unexpected second sheet: %v rows=%d", ds.Columns(), ds.Len())
	}
}

// buildWorkbook writes a two-sheet workbook using shared and inline strings.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Encounters" sheetId="1" r:id="rId1"/><sheet name="Notes" sheetId="2" r:id="rId2"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>metformin</t></si><si><t>insulin</t></si><si><t>readmitted</t></si><si><t>Up</t></si></sst>`,
		"xl/worksheets/sheet1.xml": fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2" t="s"><v>3</v></c><c r="B2" t="inlineStr"><is><t>Steady</t></is></c><c r="C2" t="inlineStr"><is><t>NO</t></is></c></row>
<row r="3"><c r="A3" t="inlineStr"><is><t>No</t></is></c><c r="C3" t="inlineStr"><is><t>%s</t></is></c></row>
</sheetData></worksheet>`, "&gt;30"),
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>hello</t></is></c></row>
</sheetData></worksheet>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
