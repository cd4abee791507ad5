package dto

import "io"

// StartSessionRequest represents a manual session start: one spreadsheet upload
// plus the pasted tag definition text.
type StartSessionRequest struct {
	SpreadsheetName string    `json:"-"`
	Spreadsheet     io.Reader `json:"-"`
	TagText         string    `json:"-"`
}

// StartSessionResponse reports what a session start ingested.
type StartSessionResponse struct {
	SessionID   string `json:"session_id"`
	ImageCount  int    `json:"image_count"`
	TagCount    int    `json:"tag_count"`
	SkippedRows int    `json:"skipped_rows"`
	CreatedAt   string `json:"created_at"`
}

// ImportSessionRequest carries a previously exported session file (flat or legacy nested).
type ImportSessionRequest struct {
	Payload []byte `json:"-"`
}

// ImportSessionResponse reports the reconstructed session.
type ImportSessionResponse struct {
	SessionID  string `json:"session_id"`
	Format     string `json:"format"` // "flat" or "legacy"
	ImageCount int    `json:"image_count"`
	TagCount   int    `json:"tag_count"`
}

// PreviewTagTextRequest carries pasted tag definition text for parse-only preview.
type PreviewTagTextRequest struct {
	TagText string `json:"tag_text" validate:"required,min=1"`
}

// PreviewTagTextResponse returns the normalized definitions without touching session state.
type PreviewTagTextResponse struct {
	TagDefinitions []TagDefinitionDTO `json:"tag_definitions"`
}

// ToggleTagRequest toggles one tag on one image.
type ToggleTagRequest struct {
	ImageID string `json:"-"`
	Tag     string `json:"tag" validate:"required,min=1,max=255"`
}

// ToggleTagResponse returns the image after the toggle. Found is false when the
// image ID did not resolve; that case is a no-op, not an error.
type ToggleTagResponse struct {
	Found bool          `json:"found"`
	Image *ImageItemDTO `json:"image,omitempty"`
}

// GetSessionRequest carries the optional search filter for session reads.
type GetSessionRequest struct {
	Query string `json:"-"`
}

// TagDefinitionDTO mirrors one normalized tag definition.
type TagDefinitionDTO struct {
	Tag     string `json:"tag"`
	Title1  string `json:"title1"`
	Title2  string `json:"title2"`
	Content string `json:"content,omitempty"`
}

// ImageItemDTO mirrors one session image.
type ImageItemDTO struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Filename        string   `json:"filename"`
	Tags            []string `json:"tags"`
	HotelID         *string  `json:"hotel_id,omitempty"`
	HotelName       *string  `json:"hotel_name,omitempty"`
	OriginalImageID *string  `json:"original_image_id,omitempty"`
}

// TagCountDTO is one row of the per-tag summary.
type TagCountDTO struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SessionSummaryDTO aggregates counts for the summary view.
type SessionSummaryDTO struct {
	TotalImages    int           `json:"total_images"`
	TaggedImages   int           `json:"tagged_images"`
	UntaggedImages int           `json:"untagged_images"`
	TagCounts      []TagCountDTO `json:"tag_counts"`
}

// SessionSnapshotResponse is the full read model of the active session.
type SessionSnapshotResponse struct {
	SessionID      string             `json:"session_id"`
	Images         []ImageItemDTO     `json:"images"`
	TagDefinitions []TagDefinitionDTO `json:"tag_definitions"`
	Summary        SessionSummaryDTO  `json:"summary"`
}
