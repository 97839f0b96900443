package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ".xlsx")
}

func (xlsxLoader) Load(p string, opt Options) (*Dataset, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return ReadXLSX(b, filepath.Base(p), opt)
}

// ReadXLSX extracts the selected sheet of an .xlsx workbook into a Dataset.
// The first row is the header. opt.SheetName wins over opt.SheetIndex (1-based).
func ReadXLSX(b []byte, name string, opt Options) (*Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb, err := openWorkbook(zr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	target, err := wb.resolve(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sheetXML, err := readZipFile(zr, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if sheetXML == nil {
		return nil, fmt.Errorf("%s: worksheet %s missing", name, target)
	}

	grid, err := wb.sheetRows(sheetXML)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", name, target, err)
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return New(name, nil, nil, Options{MissingMarkers: opt.MissingMarkers})
	}
	return New(name, grid[0], grid[1:], opt)
}

// xlsxWorkbook mirrors xl/workbook.xml.
type xlsxWorkbook struct {
	Sheets []xlsxSheetRef `xml:"sheets>sheet"`
}

type xlsxSheetRef struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RelID   string `xml:"id,attr"` // r:id
}

// xlsxRelationships mirrors xl/_rels/workbook.xml.rels.
type xlsxRelationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// xlsxText is a shared-string item or an inline string: plain <t> or rich-text runs.
type xlsxText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (x xlsxText) String() string {
	if len(x.Runs) == 0 {
		return x.T
	}
	var sb strings.Builder
	sb.WriteString(x.T)
	for _, r := range x.Runs {
		sb.WriteString(r.T)
	}
	return sb.String()
}

type xlsxSST struct {
	Items []xlsxText `xml:"si"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref    string    `xml:"r,attr"`
	Type   string    `xml:"t,attr"`
	Value  string    `xml:"v"`
	Inline *xlsxText `xml:"is"`
}

type workbook struct {
	sheets []xlsxSheetRef
	rels   map[string]string // relationship id -> zip entry
	shared []string
}

func openWorkbook(zr *zip.Reader) (*workbook, error) {
	wb := &workbook{rels: map[string]string{}}

	var doc xlsxWorkbook
	if err := unmarshalZipXML(zr, "xl/workbook.xml", &doc); err != nil {
		return nil, err
	}
	wb.sheets = doc.Sheets

	var rels xlsxRelationships
	if err := unmarshalZipXML(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			wb.rels[r.ID] = zipPathFromTarget(r.Target)
		}
	}

	var sst xlsxSST
	if err := unmarshalZipXML(zr, "xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	wb.shared = make([]string, len(sst.Items))
	for i, it := range sst.Items {
		wb.shared[i] = it.String()
	}
	return wb, nil
}

// resolve returns the zip path of the requested worksheet. A name takes
// precedence; otherwise the 1-based sheetId is used.
func (wb *workbook) resolve(sheetName string, sheetIndex int) (string, error) {
	if sheetName != "" {
		names := make([]string, 0, len(wb.sheets))
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if target, ok := wb.rels[s.RelID]; ok {
					return target, nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", sheetName, strings.Join(names, ", "))
	}
	if sheetIndex <= 0 {
		sheetIndex = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID != sheetIndex {
			continue
		}
		if target, ok := wb.rels[s.RelID]; ok {
			return target, nil
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", sheetIndex)), nil
}

// sheetRows decodes every <row> of a worksheet into a dense grid. Cells the
// writer omitted come back as "".
func (wb *workbook) sheetRows(data []byte) ([][]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var grid [][]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return grid, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode worksheet: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row xlsxRow
		if err := dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(grid)+1, err)
		}
		grid = append(grid, wb.denseRow(row))
	}
}

func (wb *workbook) denseRow(row xlsxRow) []string {
	var out []string
	for _, c := range row.Cells {
		col, ok := columnNumber(c.Ref)
		if !ok {
			col = len(out)
		}
		for len(out) <= col {
			out = append(out, "")
		}
		out[col] = wb.cellText(c)
	}
	return out
}

func (wb *workbook) cellText(c xlsxCell) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(wb.shared) {
			return ""
		}
		return wb.shared[i]
	case "inlineStr":
		if c.Inline != nil {
			return c.Inline.String()
		}
	}
	return c.Value
}

// columnNumber converts the letters of a cell reference ("AB12") to a 0-based column.
func columnNumber(ref string) (int, bool) {
	letters := strings.TrimRightFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	if letters == "" {
		return 0, false
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1, true
}

// readZipFile returns nil, nil when the entry does not exist.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, nil
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

// unmarshalZipXML leaves v untouched when the part is absent.
func unmarshalZipXML(zr *zip.Reader, name string, v any) error {
	b, err := readZipFile(zr, name)
	if err != nil || b == nil {
		return err
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// zipPathFromTarget maps a relationship target, relative to xl/ or absolute, to a zip entry name.
func zipPathFromTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("xl", target)
}
