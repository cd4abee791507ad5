package businessflow

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/amirphl/Kushinada-Labeling/app/dto"
	"github.com/amirphl/Kushinada-Labeling/repository"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testTagText = `{"short_point": [
	{"tag": "pool", "title1": "Facilities", "title2": "Leisure"},
	{"tag": "lobby", "title1": "Building", "title2": "Inside"}
]}`

const testCSV = "image_url,hotel_id,hotel_name\n" +
	"http://cdn.example.com/a.jpg,42,Grand Izumo\n" +
	"http://cdn.example.com/b.jpg,42,Grand Izumo\n" +
	",42,Grand Izumo\n"

func newTestFlow() LabelingFlow {
	return NewLabelingFlow(repository.NewSessionRepository())
}

func startTestSession(t *testing.T, flow LabelingFlow) *dto.StartSessionResponse {
	t.Helper()
	resp, err := flow.StartSession(context.Background(), &dto.StartSessionRequest{
		SpreadsheetName: "images.csv",
		Spreadsheet:     strings.NewReader(testCSV),
		TagText:         testTagText,
	}, nil)
	require.NoError(t, err)
	return resp
}

func TestStartSession(t *testing.T) {
	flow := newTestFlow()

	resp := startTestSession(t, flow)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 2, resp.ImageCount)
	assert.Equal(t, 2, resp.TagCount)
	assert.Equal(t, 1, resp.SkippedRows)

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, snapshot.SessionID)
	require.Len(t, snapshot.Images, 2)
	assert.Equal(t, "a.jpg", snapshot.Images[0].Filename)
	require.Len(t, snapshot.TagDefinitions, 2)
	assert.Equal(t, 2, snapshot.Summary.TotalImages)
	assert.Equal(t, 0, snapshot.Summary.TaggedImages)
}

func TestStartSessionFailureKeepsPreviousSession(t *testing.T) {
	flow := newTestFlow()
	first := startTestSession(t, flow)

	_, err := flow.StartSession(context.Background(), &dto.StartSessionRequest{
		SpreadsheetName: "images.csv",
		Spreadsheet:     strings.NewReader(testCSV),
		TagText:         "not json at all",
	}, nil)
	assert.True(t, IsMalformedTagText(err))

	// Spreadsheet failures after a valid tag text must not commit either.
	_, err = flow.StartSession(context.Background(), &dto.StartSessionRequest{
		SpreadsheetName: "images.csv",
		Spreadsheet:     strings.NewReader("a\nplain text\n"),
		TagText:         testTagText,
	}, nil)
	assert.True(t, IsNoURLColumn(err))

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, snapshot.SessionID)
}

func TestLoadDemoSession(t *testing.T) {
	flow := newTestFlow()

	resp, err := flow.LoadDemoSession(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 18, resp.ImageCount)
	assert.Equal(t, 6, resp.TagCount)

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, snapshot.Images)
	assert.NotNil(t, snapshot.Images[0].HotelName)
}

func TestPreviewTagText(t *testing.T) {
	flow := newTestFlow()

	resp, err := flow.PreviewTagText(context.Background(), &dto.PreviewTagTextRequest{TagText: testTagText})
	require.NoError(t, err)
	require.Len(t, resp.TagDefinitions, 2)
	assert.Equal(t, "pool", resp.TagDefinitions[0].Tag)

	// Preview never touches the session.
	_, err = flow.GetSession(context.Background(), nil)
	assert.True(t, IsNoActiveSession(err))
}

func TestToggleTag(t *testing.T) {
	flow := newTestFlow()
	startTestSession(t, flow)

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	imageID := snapshot.Images[0].ID

	resp, err := flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: imageID, Tag: "pool"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Image)
	assert.Equal(t, []string{"pool"}, resp.Image.Tags)

	resp, err = flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: imageID, Tag: "pool"})
	require.NoError(t, err)
	assert.Empty(t, resp.Image.Tags)

	resp, err = flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: "nope", Tag: "pool"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Image)
}

func TestGetSessionQueryFilter(t *testing.T) {
	flow := newTestFlow()
	startTestSession(t, flow)

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	_, err = flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: snapshot.Images[0].ID, Tag: "pool"})
	require.NoError(t, err)

	filtered, err := flow.GetSession(context.Background(), &dto.GetSessionRequest{Query: "POOL"})
	require.NoError(t, err)
	require.Len(t, filtered.Images, 1)

	byFilename, err := flow.GetSession(context.Background(), &dto.GetSessionRequest{Query: "b.jpg"})
	require.NoError(t, err)
	require.Len(t, byFilename.Images, 1)
	assert.Equal(t, "b.jpg", byFilename.Images[0].Filename)

	// Summary stays session-wide even when the image list is filtered.
	assert.Equal(t, 2, filtered.Summary.TotalImages)
	assert.Equal(t, 1, filtered.Summary.TaggedImages)
}

func TestResetSession(t *testing.T) {
	flow := newTestFlow()
	startTestSession(t, flow)

	require.NoError(t, flow.ResetSession(context.Background()))

	_, err := flow.GetSession(context.Background(), nil)
	assert.True(t, IsNoActiveSession(err))
}

func TestExportImportRoundTrip(t *testing.T) {
	flow := newTestFlow()
	startTestSession(t, flow)

	snapshot, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	_, err = flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: snapshot.Images[0].ID, Tag: "pool"})
	require.NoError(t, err)
	_, err = flow.ToggleTag(context.Background(), &dto.ToggleTagRequest{ImageID: snapshot.Images[0].ID, Tag: "lobby"})
	require.NoError(t, err)

	records, err := flow.ExportFlat(context.Background())
	require.NoError(t, err)
	// Two tag rows for the first image, one blank row for the untagged one.
	require.Len(t, records, 3)

	payload, err := json.Marshal(records)
	require.NoError(t, err)

	imported, err := flow.ImportSession(context.Background(), &dto.ImportSessionRequest{Payload: payload}, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatFlat, imported.Format)
	assert.Equal(t, 2, imported.ImageCount)
	assert.Equal(t, 2, imported.TagCount)

	restored, err := flow.GetSession(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, restored.Images, 2)
	assert.Equal(t, []string{"pool", "lobby"}, restored.Images[0].Tags)
	assert.Empty(t, restored.Images[1].Tags)
}

func TestExportWithoutSession(t *testing.T) {
	flow := newTestFlow()

	_, err := flow.ExportFlat(context.Background())
	assert.True(t, IsNoActiveSession(err))

	_, _, err = flow.ExportXLSX(context.Background())
	assert.True(t, IsNoActiveSession(err))
}

func TestExportXLSX(t *testing.T) {
	flow := newTestFlow()
	startTestSession(t, flow)

	filename, data, err := flow.ExportXLSX(context.Background())
	require.NoError(t, err)
	assert.Equal(t, utils.ExportXLSXFilename, filename)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows(utils.ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + one row per untagged image
	assert.Equal(t, []string{"hotel_id", "title1", "title2", "tag name", "image_id", "image_url"}, rows[0])
	assert.Equal(t, "http://cdn.example.com/a.jpg", rows[1][5])
}
