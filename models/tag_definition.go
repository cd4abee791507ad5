package models

// TagDefinition represents a named label with display metadata that images are annotated with
// Unique by Tag within a session; first occurrence wins when duplicates appear in parsed or imported input
// Title1/Title2 are human-readable category breadcrumbs, Content is annotator-facing descriptive text
type TagDefinition struct {
	Tag     string `json:"tag"`
	Title1  string `json:"title1"`
	Title2  string `json:"title2"`
	Content string `json:"content,omitempty"`
}

// TagDefinitionFilter represents filter criteria for tag definition lookups
type TagDefinitionFilter struct {
	Tag    *string
	Title1 *string
	Title2 *string
}
