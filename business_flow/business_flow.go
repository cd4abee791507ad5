// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/Kushinada-Labeling/app/dto"
	"github.com/amirphl/Kushinada-Labeling/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for request logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToTagDefinitionDTO converts a tag definition model to its response shape
func ToTagDefinitionDTO(def models.TagDefinition) dto.TagDefinitionDTO {
	return dto.TagDefinitionDTO{
		Tag:     def.Tag,
		Title1:  def.Title1,
		Title2:  def.Title2,
		Content: def.Content,
	}
}

// ToImageItemDTO converts an image model to its response shape
func ToImageItemDTO(img models.ImageItem) dto.ImageItemDTO {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.ImageItemDTO{
		ID:              img.ID,
		URL:             img.URL,
		Filename:        img.Filename,
		Tags:            tags,
		HotelID:         img.HotelID,
		HotelName:       img.HotelName,
		OriginalImageID: img.OriginalImageID,
	}
}

// BuildSessionSummary aggregates per-tag image counts plus the untagged count.
// Counts follow tag definition order; tags carried by images but missing from the
// definition list are appended afterwards in first-seen order (dangling references
// still show up in the summary, they just have no breadcrumb metadata).
func BuildSessionSummary(session *models.Session) dto.SessionSummaryDTO {
	summary := dto.SessionSummaryDTO{TotalImages: len(session.Images)}

	counts := make(map[string]int)
	danglingOrder := make([]string, 0)
	for _, img := range session.Images {
		if len(img.Tags) > 0 {
			summary.TaggedImages++
		}
		for _, tag := range img.Tags {
			if _, seen := counts[tag]; !seen && session.FindDefinition(tag) == nil {
				danglingOrder = append(danglingOrder, tag)
			}
			counts[tag]++
		}
	}
	summary.UntaggedImages = summary.TotalImages - summary.TaggedImages

	for _, def := range session.TagDefinitions {
		summary.TagCounts = append(summary.TagCounts, dto.TagCountDTO{Tag: def.Tag, Count: counts[def.Tag]})
	}
	for _, tag := range danglingOrder {
		summary.TagCounts = append(summary.TagCounts, dto.TagCountDTO{Tag: tag, Count: counts[tag]})
	}
	return summary
}
