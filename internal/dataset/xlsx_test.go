package dataset

import "testing"

func TestColumnNumber(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA10": 26, "ab7": 27} {
		got, ok := columnNumber(ref)
		if !ok || got != want {
			t.Fatalf("columnNumber(%q) = %d, %v; want %d", ref, got, ok, want)
		}
	}
	for _, ref := range []string{"", "12", "A-1"} {
		if _, ok := columnNumber(ref); ok {
			t.Fatalf("columnNumber(%q) should fail", ref)
		}
	}
}

func TestSheetRowsRichTextAndGaps(t *testing.T) {
	wb := &workbook{shared: []string{"metformin", "Steady"}}
	sheet := []byte(`<worksheet><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="C1" t="inlineStr"><is><r><t>read</t></r><r><t>mitted</t></r></is></c></row>
<row r="2"><c r="B2" t="s"><v>1</v></c><c r="C2" t="s"><v>9</v></c></row>
<row r="3"><c t="inlineStr"><is><t>Up</t></is></c><c><v>42</v></c></row>
</sheetData></worksheet>`)
	grid, err := wb.sheetRows(sheet)
	if err != nil {
		t.Fatalf("sheetRows: %v", err)
	}
	want := [][]string{
		{"metformin", "", "readmitted"},
		{"", "Steady", ""},
		{"Up", "42"},
	}
	if len(grid) != len(want) {
		t.Fatalf("rows = %d, want %d", len(grid), len(want))
	}
	for i := range want {
		if len(grid[i]) != len(want[i]) {
			t.Fatalf("row %d = %q, want %q", i, grid[i], want[i])
		}
		for j := range want[i] {
			if grid[i][j] != want[i][j] {
				t.Fatalf("row %d = %q, want %q", i, grid[i], want[i])
			}
		}
	}
}
