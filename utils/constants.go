package utils

// Upload constants
const (
	// MaxSpreadsheetSize is the maximum accepted spreadsheet upload size (16MB)
	MaxSpreadsheetSize = 16 * 1024 * 1024

	// MaxTagTextSize is the maximum accepted pasted tag definition text size (2MB)
	MaxTagTextSize = 2 * 1024 * 1024

	// MaxSessionFileSize is the maximum accepted session JSON import size (32MB)
	MaxSessionFileSize = 32 * 1024 * 1024
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Export constants
const (
	// ExportSheetName is the sheet name used for XLSX session exports
	ExportSheetName = "labels"

	// ExportJSONFilename is the download filename for JSON session exports
	ExportJSONFilename = "labeled-images.json"

	// ExportXLSXFilename is the download filename for XLSX session exports
	ExportXLSXFilename = "labeled-images.xlsx"
)
