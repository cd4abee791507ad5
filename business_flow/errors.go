// Package businessflow contains the core business logic and use cases for labeling workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Tag text parsing errors
	ErrMalformedTagText = errors.New("tag text is neither valid JSON nor a recoverable Python-style literal")
	ErrNoTagsFound      = errors.New("no tags found in tag text")

	// Spreadsheet resolution errors
	ErrEmptySpreadsheet       = errors.New("spreadsheet contains no data rows")
	ErrNoURLColumn            = errors.New("no image URL column could be located")
	ErrNoRowsExtracted        = errors.New("no rows with a usable image URL were extracted")
	ErrUnsupportedSpreadsheet = errors.New("unsupported spreadsheet format")

	// Session import errors
	ErrEmptyOrInvalidSessionJSON = errors.New("session file is not a non-empty JSON array")
	ErrNoValidImages             = errors.New("no valid images found in session file")

	// Session state errors
	ErrNoActiveSession = errors.New("no active labeling session")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsMalformedTagText(err error) bool {
	return errors.Is(err, ErrMalformedTagText)
}

func IsNoTagsFound(err error) bool {
	return errors.Is(err, ErrNoTagsFound)
}

func IsEmptySpreadsheet(err error) bool {
	return errors.Is(err, ErrEmptySpreadsheet)
}

func IsNoURLColumn(err error) bool {
	return errors.Is(err, ErrNoURLColumn)
}

func IsNoRowsExtracted(err error) bool {
	return errors.Is(err, ErrNoRowsExtracted)
}

func IsUnsupportedSpreadsheet(err error) bool {
	return errors.Is(err, ErrUnsupportedSpreadsheet)
}

func IsEmptyOrInvalidSessionJSON(err error) bool {
	return errors.Is(err, ErrEmptyOrInvalidSessionJSON)
}

func IsNoValidImages(err error) bool {
	return errors.Is(err, ErrNoValidImages)
}

func IsNoActiveSession(err error) bool {
	return errors.Is(err, ErrNoActiveSession)
}
