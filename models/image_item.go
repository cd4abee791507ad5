package models

// ImageItem represents one image in the active labeling session
// ID is generated at ingestion (or restored from a prior export) and identifies the item for mutations
// URL is the natural key used to reconcile flattened import rows back into one entity
// Tags is an ordered set: insertion order equals selection order, no duplicate entries
// Tag values need not resolve to a TagDefinition; dangling references are tolerated
type ImageItem struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Filename        string   `json:"filename"`
	Tags            []string `json:"tags"`
	HotelID         *string  `json:"hotel_id,omitempty"`
	HotelName       *string  `json:"hotel_name,omitempty"`
	OriginalImageID *string  `json:"original_image_id,omitempty"`
}

// HasTag reports whether the image currently carries the given tag.
func (i *ImageItem) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ImageFilter represents filter criteria for image queries within a session
type ImageFilter struct {
	HotelID  *string
	Tag      *string
	Untagged *bool
}
