package businessflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/google/uuid"
)

// FlatRecord is one row of the flattened export: one record per (image, tag)
// pair, plus a single blank-tag record for untagged images so they survive the
// round trip. Key names and order are load-bearing; the import path detects
// the format by the "tag name" key.
type FlatRecord struct {
	HotelID  string `json:"hotel_id"`
	Title1   string `json:"title1"`
	Title2   string `json:"title2"`
	TagName  string `json:"tag name"`
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url"`
}

// SerializeFlat denormalizes the session into flat records. Tags with no
// matching definition export empty titles; dangling references degrade
// gracefully rather than erroring.
func SerializeFlat(images []models.ImageItem, tagDefs []models.TagDefinition) []FlatRecord {
	defsByTag := make(map[string]models.TagDefinition, len(tagDefs))
	for _, def := range tagDefs {
		if _, ok := defsByTag[def.Tag]; !ok {
			defsByTag[def.Tag] = def
		}
	}

	records := make([]FlatRecord, 0, len(images))
	for _, img := range images {
		base := FlatRecord{
			HotelID:  utils.Deref(img.HotelID),
			ImageID:  exportImageID(img),
			ImageURL: img.URL,
		}
		if len(img.Tags) == 0 {
			records = append(records, base)
			continue
		}
		for _, tag := range img.Tags {
			rec := base
			rec.TagName = tag
			if def, ok := defsByTag[tag]; ok {
				rec.Title1 = def.Title1
				rec.Title2 = def.Title2
			}
			records = append(records, rec)
		}
	}
	return records
}

// exportImageID prefers the source image id carried through the spreadsheet
// and falls back to the internal id, so re-imports keep a stable identity.
func exportImageID(img models.ImageItem) string {
	if img.OriginalImageID != nil && *img.OriginalImageID != "" {
		return *img.OriginalImageID
	}
	return img.ID
}

// Session file formats recognized on import
const (
	FormatFlat   = "flat"
	FormatLegacy = "legacy"
)

// DeserializeSession reconstructs the normalized model from an exported
// session file. The format is probed once on the first record: a "tag name"
// (or "tag_name") key marks the flat export; anything else is treated as the
// legacy nested shape with an embedded tags array per record.
func DeserializeSession(payload []byte) ([]models.ImageItem, []models.TagDefinition, string, error) {
	var records []map[string]any
	if err := json.Unmarshal(payload, &records); err != nil || len(records) == 0 {
		return nil, nil, "", ErrEmptyOrInvalidSessionJSON
	}

	if _, ok := records[0]["tag name"]; ok {
		images, defs, err := decodeFlatRecords(records)
		return images, defs, FormatFlat, err
	}
	if _, ok := records[0]["tag_name"]; ok {
		images, defs, err := decodeFlatRecords(records)
		return images, defs, FormatFlat, err
	}

	images, defs, err := decodeLegacyRecords(records)
	return images, defs, FormatLegacy, err
}

// decodeFlatRecords groups flat rows by image URL, the natural key: one image
// spans several records, one per tag. The first record for a URL initializes
// the image; later ones append distinct non-empty tag names in record order.
// Definitions are recovered opportunistically from the first record bearing
// each tag name.
func decodeFlatRecords(records []map[string]any) ([]models.ImageItem, []models.TagDefinition, error) {
	byURL := make(map[string]*models.ImageItem)
	urlOrder := make([]string, 0)
	defsByTag := make(map[string]bool)
	defs := make([]models.TagDefinition, 0)

	for i, rec := range records {
		url := strings.TrimSpace(anyToString(rec["image_url"]))
		if url == "" {
			continue
		}

		img, ok := byURL[url]
		if !ok {
			id := strings.TrimSpace(anyToString(rec["image_id"]))
			if id == "" {
				id = uuid.NewString()
			}
			filename := FilenameFromURL(url)
			if filename == "" {
				filename = fmt.Sprintf("image-%d", i+1)
			}
			img = &models.ImageItem{
				ID:       id,
				URL:      url,
				Filename: filename,
				Tags:     []string{},
			}
			if v := strings.TrimSpace(anyToString(rec["hotel_id"])); v != "" {
				img.HotelID = utils.ToPtr(v)
			}
			byURL[url] = img
			urlOrder = append(urlOrder, url)
		}

		tag := strings.TrimSpace(flatTagName(rec))
		if tag == "" {
			// Blank-tag placeholder row: keeps the image, contributes no label.
			continue
		}
		if !img.HasTag(tag) {
			img.Tags = append(img.Tags, tag)
		}
		if !defsByTag[tag] {
			defsByTag[tag] = true
			defs = append(defs, models.TagDefinition{
				Tag:    tag,
				Title1: anyToString(rec["title1"]),
				Title2: anyToString(rec["title2"]),
			})
		}
	}

	if len(urlOrder) == 0 {
		return nil, nil, ErrNoValidImages
	}
	images := make([]models.ImageItem, 0, len(urlOrder))
	for _, url := range urlOrder {
		images = append(images, *byURL[url])
	}
	return images, defs, nil
}

func flatTagName(rec map[string]any) string {
	if v, ok := rec["tag name"]; ok {
		return anyToString(v)
	}
	return anyToString(rec["tag_name"])
}

// decodeLegacyRecords handles the older nested shape: one record per image
// with an embedded tags collection holding plain strings, tag objects, or a
// mix of both. Object entries donate recovered definitions (first wins);
// string entries recover a definition with empty titles.
func decodeLegacyRecords(records []map[string]any) ([]models.ImageItem, []models.TagDefinition, error) {
	images := make([]models.ImageItem, 0, len(records))
	defsByTag := make(map[string]bool)
	defs := make([]models.TagDefinition, 0)

	for i, rec := range records {
		url := strings.TrimSpace(anyToString(rec["image_url"]))
		if url == "" {
			continue
		}

		id := strings.TrimSpace(anyToString(rec["image_id"]))
		if id == "" {
			id = uuid.NewString()
		}
		filename := FilenameFromURL(url)
		if filename == "" {
			filename = fmt.Sprintf("image-%d", i+1)
		}
		img := models.ImageItem{
			ID:       id,
			URL:      url,
			Filename: filename,
			Tags:     []string{},
		}
		if v := strings.TrimSpace(anyToString(rec["hotel_id"])); v != "" {
			img.HotelID = utils.ToPtr(v)
		}
		if v := strings.TrimSpace(anyToString(rec["hotel_name"])); v != "" {
			img.HotelName = utils.ToPtr(v)
		}

		rawTags, _ := rec["tags"].([]any)
		for _, entry := range rawTags {
			var tag string
			var def models.TagDefinition
			switch v := entry.(type) {
			case string:
				tag = v
				def = models.TagDefinition{Tag: v}
			case map[string]any:
				tag = stringField(v, "tag")
				def = models.TagDefinition{
					Tag:     tag,
					Title1:  stringField(v, "title1"),
					Title2:  stringField(v, "title2"),
					Content: stringField(v, "content"),
				}
			}
			if tag == "" {
				continue
			}
			if !img.HasTag(tag) {
				img.Tags = append(img.Tags, tag)
			}
			if !defsByTag[tag] {
				defsByTag[tag] = true
				defs = append(defs, def)
			}
		}

		images = append(images, img)
	}

	if len(images) == 0 {
		return nil, nil, ErrNoValidImages
	}
	return images, defs, nil
}

func anyToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers for ids come through as float64; keep integral form.
		return fmt.Sprintf("%.0f", s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
