package danmaku

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet layout of an export. The first sheet has one column per video, header
// row = video id; shorter columns end in empty cells. The second sheet holds
// the exact-duplicate frequency table.
const (
	DanmakuSheet = "danmakus"
	CountSheet   = "danmakus_count"

	CountHeaderText  = "danmaku"
	CountHeaderCount = "Counts"
)

// ValidateExcelName accepts non-empty .xlsx file names.
func ValidateExcelName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidArgument)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return fmt.Errorf("%w: %q is not an .xlsx file", ErrInvalidArgument, filename)
	}
	return nil
}

// ExportExcel writes the store and its frequency table to filename. Nothing
// is written for an empty store. Characters XML 1.0 cannot carry, such as
// C0 control codes other than tab and newlines, are dropped from cell text,
// so such comments read back without them.
func (s *Store) ExportExcel(filename string) error {
	if err := ValidateExcelName(filename); err != nil {
		return err
	}
	table, err := s.Frequencies(nil)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DanmakuSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := s.writeDanmakuSheet(f); err != nil {
		return err
	}
	if _, err := f.NewSheet(CountSheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", CountSheet, err)
	}
	if err := writeCountSheet(f, table); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

func (s *Store) writeDanmakuSheet(f *excelize.File) error {
	sw, err := f.NewStreamWriter(DanmakuSheet)
	if err != nil {
		return fmt.Errorf("stream writer %s: %w", DanmakuSheet, err)
	}

	header := make([]interface{}, len(s.order))
	longest := 0
	for i, bvid := range s.order {
		header[i] = bvid
		longest = max(longest, len(s.danmakus[bvid]))
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r := 0; r < longest; r++ {
		row := make([]interface{}, len(s.order))
		for c, bvid := range s.order {
			if list := s.danmakus[bvid]; r < len(list) {
				row[c] = xmlSafe(list[r])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}
	return sw.Flush()
}

func writeCountSheet(f *excelize.File, table FrequencyTable) error {
	sw, err := f.NewStreamWriter(CountSheet)
	if err != nil {
		return fmt.Errorf("stream writer %s: %w", CountSheet, err)
	}
	if err := sw.SetRow("A1", []interface{}{CountHeaderText, CountHeaderCount}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, freq := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{xmlSafe(freq.Text), freq.Count}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return sw.Flush()
}

// xmlSafe drops invalid UTF-8 and runes outside the XML 1.0 Char
// production. excelize would otherwise store them as U+FFFD.
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r < 0x20, r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}

// ImportExcel replaces the store with the first sheet of a previous export.
// Trailing empty cells of each column are padding and are dropped.
func (s *Store) ImportExcel(filename string) error {
	if err := ValidateExcelName(filename); err != nil {
		return err
	}
	f, err := excelize.OpenFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: %s has no sheets", ErrInvalidArgument, filename)
	}
	cols, err := f.GetCols(sheets[0])
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	fresh := NewStore()
	for _, col := range cols {
		if len(col) == 0 || col[0] == "" {
			continue
		}
		values := col[1:]
		end := len(values)
		for end > 0 && values[end-1] == "" {
			end--
		}
		fresh.Set(col[0], values[:end])
	}
	s.Replace(fresh)
	return nil
}
