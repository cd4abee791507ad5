package models

// Session represents the complete in-memory state of one labeling run
// Images are kept in ingestion order, TagDefinitions in parse/import order
// The image-to-tag relation is realized only through the tag string key; no
// foreign-key integrity is enforced between the two sequences
type Session struct {
	ID             string          `json:"id"`
	Images         []ImageItem     `json:"images"`
	TagDefinitions []TagDefinition `json:"tag_definitions"`
}

// FindImage returns a pointer to the image with the given ID, or nil when absent.
func (s *Session) FindImage(imageID string) *ImageItem {
	for idx := range s.Images {
		if s.Images[idx].ID == imageID {
			return &s.Images[idx]
		}
	}
	return nil
}

// FindDefinition returns the definition for a tag key, or nil when the tag is dangling.
func (s *Session) FindDefinition(tag string) *TagDefinition {
	for idx := range s.TagDefinitions {
		if s.TagDefinitions[idx].Tag == tag {
			return &s.TagDefinitions[idx]
		}
	}
	return nil
}

// Clone returns a deep copy of the session so readers never observe a half-applied mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{
		ID:             s.ID,
		Images:         make([]ImageItem, len(s.Images)),
		TagDefinitions: make([]TagDefinition, len(s.TagDefinitions)),
	}
	copy(out.TagDefinitions, s.TagDefinitions)
	for i, img := range s.Images {
		cp := img
		cp.Tags = append([]string(nil), img.Tags...)
		out.Images[i] = cp
	}
	return out
}
