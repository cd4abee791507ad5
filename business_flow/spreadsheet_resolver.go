package businessflow

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// spreadsheet column roles resolved by header heuristics
const (
	colURL       = "url"
	colHotelID   = "hotel_id"
	colHotelName = "hotel_name"
	colImageID   = "image_id"
)

type columnPattern struct {
	value string
	exact bool
}

// Ordered matcher lists per role. Exact-name matches come first, substring
// matches last; the first header hit wins. Matching is case-insensitive.
var columnPatterns = map[string][]columnPattern{
	colURL: {
		{value: "image_url", exact: true},
		{value: "url", exact: true},
		{value: "link", exact: true},
		{value: "src", exact: true},
		{value: "link", exact: false},
		{value: "url", exact: false},
	},
	colHotelID: {
		{value: "hotel_id", exact: true},
		{value: "hotelid", exact: true},
		{value: "hotel", exact: true},
		{value: "hotel_id", exact: false},
	},
	colHotelName: {
		{value: "hotel_name", exact: true},
		{value: "hotelname", exact: true},
		{value: "name", exact: true},
		{value: "hotel name", exact: true},
	},
	colImageID: {
		{value: "image_id", exact: true},
		{value: "imageid", exact: true},
		{value: "id", exact: true},
		{value: "image_id", exact: false},
	},
}

// DecodeSpreadsheet reads an uploaded tabular file into header-keyed rows.
// XLSX workbooks are read with excelize (first sheet only); CSV falls back to
// encoding/csv. The first row is the required header row. Rows shorter than
// the header are padded with empty cells.
func DecodeSpreadsheet(filename string, r io.Reader) ([]string, []map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return decodeExcel(r)
	case ".csv", ".txt", "":
		return decodeCSV(r)
	default:
		return nil, nil, NewBusinessErrorf("UNSUPPORTED_SPREADSHEET", "unsupported spreadsheet extension %q", ErrUnsupportedSpreadsheet, filepath.Ext(filename))
	}
}

func decodeExcel(r io.Reader) ([]string, []map[string]string, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, NewBusinessError("EXCEL_READ_ERROR", "Failed to open workbook", err)
	}
	defer func() { _ = xl.Close() }()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptySpreadsheet
	}

	raw, err := xl.GetRows(sheets[0])
	if err != nil {
		return nil, nil, NewBusinessError("EXCEL_READ_ERROR", "Failed to read first sheet", err)
	}
	return tabularToRows(raw)
}

func decodeCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, nil, NewBusinessError("CSV_READ_ERROR", "Failed to read CSV content", err)
	}
	return tabularToRows(raw)
}

func tabularToRows(raw [][]string) ([]string, []map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil, ErrEmptySpreadsheet
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// ResolveImages infers which columns carry the image URL, hotel id, hotel name
// and image id, then converts the surviving rows into session images. Rows
// whose URL cell is empty are dropped silently; everything else is passthrough
// metadata, not validated.
func ResolveImages(headers []string, rows []map[string]string) ([]models.ImageItem, int, error) {
	if len(rows) == 0 {
		return nil, 0, ErrEmptySpreadsheet
	}

	urlCol := matchColumn(headers, columnPatterns[colURL])
	if urlCol == "" {
		urlCol = sniffURLColumn(headers, rows[0])
	}
	if urlCol == "" {
		return nil, 0, ErrNoURLColumn
	}

	hotelIDCol := matchColumn(headers, columnPatterns[colHotelID])
	hotelNameCol := matchColumn(headers, columnPatterns[colHotelName])
	imageIDCol := matchColumn(headers, columnPatterns[colImageID])

	items := make([]models.ImageItem, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		url := strings.TrimSpace(row[urlCol])
		if url == "" {
			skipped++
			continue
		}

		item := models.ImageItem{
			ID:       uuid.NewString(),
			URL:      url,
			Filename: FilenameFromURL(url),
			Tags:     []string{},
		}
		if item.Filename == "" {
			item.Filename = fmt.Sprintf("image-%d", i+1)
		}
		if v := strings.TrimSpace(row[hotelIDCol]); hotelIDCol != "" && v != "" {
			item.HotelID = utils.ToPtr(v)
		}
		if v := strings.TrimSpace(row[hotelNameCol]); hotelNameCol != "" && v != "" {
			item.HotelName = utils.ToPtr(v)
		}
		if v := strings.TrimSpace(row[imageIDCol]); imageIDCol != "" && v != "" {
			item.OriginalImageID = utils.ToPtr(v)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, skipped, ErrNoRowsExtracted
	}
	return items, skipped, nil
}

func matchColumn(headers []string, patterns []columnPattern) string {
	for _, p := range patterns {
		for _, h := range headers {
			lower := strings.ToLower(strings.TrimSpace(h))
			if p.exact && lower == p.value {
				return h
			}
			if !p.exact && strings.Contains(lower, p.value) {
				return h
			}
		}
	}
	return ""
}

// sniffURLColumn is the last-resort URL heuristic: adopt whichever column of
// the first data row holds a value starting with http.
func sniffURLColumn(headers []string, firstRow map[string]string) string {
	for _, h := range headers {
		if strings.HasPrefix(strings.TrimSpace(firstRow[h]), "http") {
			return h
		}
	}
	return ""
}

// FilenameFromURL extracts the last path segment of a URL with any query
// string or fragment stripped. Returns "" when nothing usable remains.
func FilenameFromURL(url string) string {
	s := strings.TrimSpace(url)
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}
