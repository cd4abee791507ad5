package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeFlat(t *testing.T) {
	defs := []models.TagDefinition{
		{Tag: "pool", Title1: "Facilities", Title2: "Leisure"},
		{Tag: "lobby", Title1: "Building", Title2: "Inside"},
	}
	images := []models.ImageItem{
		{
			ID:              "internal-1",
			URL:             "http://x/a.jpg",
			Filename:        "a.jpg",
			Tags:            []string{"pool", "lobby"},
			HotelID:         utils.ToPtr("42"),
			OriginalImageID: utils.ToPtr("src-9"),
		},
		{
			ID:       "internal-2",
			URL:      "http://x/b.jpg",
			Filename: "b.jpg",
			Tags:     []string{},
			HotelID:  utils.ToPtr("42"),
		},
	}

	records := SerializeFlat(images, defs)
	require.Len(t, records, 3)

	assert.Equal(t, FlatRecord{
		HotelID: "42", Title1: "Facilities", Title2: "Leisure",
		TagName: "pool", ImageID: "src-9", ImageURL: "http://x/a.jpg",
	}, records[0])
	assert.Equal(t, "lobby", records[1].TagName)

	// Untagged image keeps one blank-tag placeholder row, internal id fallback.
	assert.Equal(t, FlatRecord{
		HotelID: "42", ImageID: "internal-2", ImageURL: "http://x/b.jpg",
	}, records[2])
}

func TestSerializeFlatDanglingTag(t *testing.T) {
	images := []models.ImageItem{
		{ID: "i1", URL: "http://x/a.jpg", Tags: []string{"ghost"}},
	}
	records := SerializeFlat(images, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "ghost", records[0].TagName)
	assert.Equal(t, "", records[0].Title1)
	assert.Equal(t, "", records[0].Title2)
}

func TestFlatRecordKeyNames(t *testing.T) {
	// The export keys are a wire contract; the import probe keys off "tag name".
	data, err := json.Marshal(FlatRecord{TagName: "pool"})
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	for _, key := range []string{"hotel_id", "title1", "title2", "tag name", "image_id", "image_url"} {
		assert.Contains(t, keys, key)
	}
}

func TestDeserializeSessionFlat(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		defs := []models.TagDefinition{
			{Tag: "pool", Title1: "Facilities", Title2: "Leisure"},
			{Tag: "lobby", Title1: "Building", Title2: "Inside"},
		}
		images := []models.ImageItem{
			{ID: "i1", URL: "http://x/a.jpg", Filename: "a.jpg", Tags: []string{"pool", "lobby"}, HotelID: utils.ToPtr("42")},
			{ID: "i2", URL: "http://x/b.jpg", Filename: "b.jpg", Tags: []string{}},
		}

		payload, err := json.Marshal(SerializeFlat(images, defs))
		require.NoError(t, err)

		gotImages, gotDefs, format, err := DeserializeSession(payload)
		require.NoError(t, err)
		assert.Equal(t, FormatFlat, format)

		require.Len(t, gotImages, 2)
		assert.Equal(t, "i1", gotImages[0].ID)
		assert.Equal(t, "http://x/a.jpg", gotImages[0].URL)
		assert.Equal(t, []string{"pool", "lobby"}, gotImages[0].Tags)
		require.NotNil(t, gotImages[0].HotelID)
		assert.Equal(t, "42", *gotImages[0].HotelID)

		assert.Equal(t, "i2", gotImages[1].ID)
		assert.Empty(t, gotImages[1].Tags)

		require.Len(t, gotDefs, 2)
		assert.Equal(t, "pool", gotDefs[0].Tag)
		assert.Equal(t, "Facilities", gotDefs[0].Title1)
		assert.Equal(t, "Leisure", gotDefs[0].Title2)
		assert.Equal(t, "lobby", gotDefs[1].Tag)
	})

	t.Run("FirstDefinitionWins", func(t *testing.T) {
		payload := []byte(`[
			{"hotel_id":"1","title1":"First","title2":"","tag name":"pool","image_id":"a","image_url":"http://x/a.jpg"},
			{"hotel_id":"1","title1":"Second","title2":"","tag name":"pool","image_id":"b","image_url":"http://x/b.jpg"}
		]`)
		_, defs, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "First", defs[0].Title1)
	})

	t.Run("DuplicateTagRowsIgnored", func(t *testing.T) {
		payload := []byte(`[
			{"tag name":"pool","image_id":"a","image_url":"http://x/a.jpg"},
			{"tag name":"pool","image_id":"a","image_url":"http://x/a.jpg"}
		]`)
		images, _, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, []string{"pool"}, images[0].Tags)
	})

	t.Run("TagNameUnderscoreVariant", func(t *testing.T) {
		payload := []byte(`[{"tag_name":"pool","image_id":"a","image_url":"http://x/a.jpg"}]`)
		images, _, format, err := DeserializeSession(payload)
		require.NoError(t, err)
		assert.Equal(t, FormatFlat, format)
		require.Len(t, images, 1)
		assert.Equal(t, []string{"pool"}, images[0].Tags)
	})

	t.Run("NumericIDsAccepted", func(t *testing.T) {
		payload := []byte(`[{"tag name":"pool","image_id":1234,"hotel_id":42,"image_url":"http://x/a.jpg"}]`)
		images, _, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		assert.Equal(t, "1234", images[0].ID)
		require.NotNil(t, images[0].HotelID)
		assert.Equal(t, "42", *images[0].HotelID)
	})

	t.Run("NoValidImages", func(t *testing.T) {
		payload := []byte(`[{"tag name":"pool","image_id":"a","image_url":""}]`)
		_, _, _, err := DeserializeSession(payload)
		assert.True(t, IsNoValidImages(err))
	})

	t.Run("MissingImageIDGenerated", func(t *testing.T) {
		payload := []byte(`[{"tag name":"","image_url":"http://x/a.jpg"}]`)
		images, defs, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.NotEmpty(t, images[0].ID)
		assert.Empty(t, images[0].Tags)
		assert.Empty(t, defs)
	})
}

func TestDeserializeSessionLegacy(t *testing.T) {
	t.Run("MixedTagEntries", func(t *testing.T) {
		payload := []byte(`[{"image_url": "http://x/a.jpg", "tags": ["A", {"tag": "B", "title1": "X"}]}]`)
		images, defs, format, err := DeserializeSession(payload)
		require.NoError(t, err)
		assert.Equal(t, FormatLegacy, format)

		require.Len(t, images, 1)
		assert.Equal(t, []string{"A", "B"}, images[0].Tags)

		require.Len(t, defs, 2)
		assert.Equal(t, "A", defs[0].Tag)
		assert.Equal(t, "", defs[0].Title1)
		assert.Equal(t, "B", defs[1].Tag)
		assert.Equal(t, "X", defs[1].Title1)
	})

	t.Run("MetadataPassthrough", func(t *testing.T) {
		payload := []byte(`[{"image_url": "http://x/a.jpg", "image_id": "i-7", "hotel_id": "42", "hotel_name": "Grand", "tags": []}]`)
		images, _, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "i-7", images[0].ID)
		require.NotNil(t, images[0].HotelName)
		assert.Equal(t, "Grand", *images[0].HotelName)
	})

	t.Run("RecordsWithoutURLFiltered", func(t *testing.T) {
		payload := []byte(`[{"tags": ["A"]}, {"image_url": "http://x/a.jpg", "tags": []}]`)
		images, _, _, err := DeserializeSession(payload)
		require.NoError(t, err)
		require.Len(t, images, 1)
	})

	t.Run("NoValidImages", func(t *testing.T) {
		payload := []byte(`[{"tags": ["A"]}, {"image_url": ""}]`)
		_, _, _, err := DeserializeSession(payload)
		assert.True(t, IsNoValidImages(err))
	})
}

func TestDeserializeSessionInvalid(t *testing.T) {
	for name, payload := range map[string][]byte{
		"NotJSON":     []byte("garbage"),
		"EmptyArray":  []byte("[]"),
		"Object":      []byte(`{"image_url": "http://x/a.jpg"}`),
		"EmptyString": []byte(""),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := DeserializeSession(payload)
			assert.True(t, IsEmptyOrInvalidSessionJSON(err))
		})
	}
}
