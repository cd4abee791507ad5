package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/amirphl/Kushinada-Labeling/app/dto"
	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/amirphl/Kushinada-Labeling/repository"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// LabelingFlow provides the use cases of one labeling run: starting a session
// from upload, demo data or an imported session file, toggling tags, reading
// the session back, and exporting the flattened dataset.
//
// Every pipeline failure leaves the previously valid session untouched; the
// worst outcome is "nothing changed, user is told why".
type LabelingFlow interface {
	StartSession(ctx context.Context, req *dto.StartSessionRequest, metadata *ClientMetadata) (*dto.StartSessionResponse, error)
	ImportSession(ctx context.Context, req *dto.ImportSessionRequest, metadata *ClientMetadata) (*dto.ImportSessionResponse, error)
	LoadDemoSession(ctx context.Context, metadata *ClientMetadata) (*dto.StartSessionResponse, error)
	PreviewTagText(ctx context.Context, req *dto.PreviewTagTextRequest) (*dto.PreviewTagTextResponse, error)
	GetSession(ctx context.Context, req *dto.GetSessionRequest) (*dto.SessionSnapshotResponse, error)
	ToggleTag(ctx context.Context, req *dto.ToggleTagRequest) (*dto.ToggleTagResponse, error)
	ResetSession(ctx context.Context) error
	ExportFlat(ctx context.Context) ([]FlatRecord, error)
	ExportXLSX(ctx context.Context) (string, []byte, error)
}

type LabelingFlowImpl struct {
	sessionRepo repository.SessionRepository
}

func NewLabelingFlow(sessionRepo repository.SessionRepository) LabelingFlow {
	return &LabelingFlowImpl{sessionRepo: sessionRepo}
}

func (f *LabelingFlowImpl) StartSession(ctx context.Context, req *dto.StartSessionRequest, metadata *ClientMetadata) (*dto.StartSessionResponse, error) {
	if req == nil || req.Spreadsheet == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "spreadsheet file is required", nil)
	}
	if strings.TrimSpace(req.TagText) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "tag_text is required", nil)
	}

	tagDefs, err := ParseTagText(req.TagText)
	if err != nil {
		return nil, err
	}

	headers, rows, err := DecodeSpreadsheet(req.SpreadsheetName, req.Spreadsheet)
	if err != nil {
		return nil, err
	}

	images, skipped, err := ResolveImages(headers, rows)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:             uuid.NewString(),
		Images:         images,
		TagDefinitions: tagDefs,
	}
	if err := f.sessionRepo.Initialize(ctx, session); err != nil {
		return nil, NewBusinessError("SESSION_INIT_FAILED", "Failed to initialize session", err)
	}

	log.Printf("session %s started: %d images (%d rows skipped), %d tag definitions, ip=%s",
		session.ID, len(images), skipped, len(tagDefs), clientIP(metadata))

	return &dto.StartSessionResponse{
		SessionID:   session.ID,
		ImageCount:  len(images),
		TagCount:    len(tagDefs),
		SkippedRows: skipped,
		CreatedAt:   utils.UTCNowRFC3339(),
	}, nil
}

func (f *LabelingFlowImpl) ImportSession(ctx context.Context, req *dto.ImportSessionRequest, metadata *ClientMetadata) (*dto.ImportSessionResponse, error) {
	if req == nil || len(req.Payload) == 0 {
		return nil, ErrEmptyOrInvalidSessionJSON
	}

	images, tagDefs, format, err := DeserializeSession(req.Payload)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:             uuid.NewString(),
		Images:         images,
		TagDefinitions: tagDefs,
	}
	if err := f.sessionRepo.Initialize(ctx, session); err != nil {
		return nil, NewBusinessError("SESSION_INIT_FAILED", "Failed to initialize session", err)
	}

	log.Printf("session %s imported (%s format): %d images, %d tag definitions, ip=%s",
		session.ID, format, len(images), len(tagDefs), clientIP(metadata))

	return &dto.ImportSessionResponse{
		SessionID:  session.ID,
		Format:     format,
		ImageCount: len(images),
		TagCount:   len(tagDefs),
	}, nil
}

func (f *LabelingFlowImpl) LoadDemoSession(ctx context.Context, metadata *ClientMetadata) (*dto.StartSessionResponse, error) {
	session := NewDemoSession()
	if err := f.sessionRepo.Initialize(ctx, session); err != nil {
		return nil, NewBusinessError("SESSION_INIT_FAILED", "Failed to initialize session", err)
	}

	log.Printf("session %s started from demo data: %d images, ip=%s",
		session.ID, len(session.Images), clientIP(metadata))

	return &dto.StartSessionResponse{
		SessionID:  session.ID,
		ImageCount: len(session.Images),
		TagCount:   len(session.TagDefinitions),
		CreatedAt:  utils.UTCNowRFC3339(),
	}, nil
}

// PreviewTagText parses pasted tag text without committing anything; the UI
// calls this on every input change and keeps only the latest result.
func (f *LabelingFlowImpl) PreviewTagText(_ context.Context, req *dto.PreviewTagTextRequest) (*dto.PreviewTagTextResponse, error) {
	defs, err := ParseTagText(req.TagText)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TagDefinitionDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, ToTagDefinitionDTO(def))
	}
	return &dto.PreviewTagTextResponse{TagDefinitions: out}, nil
}

func (f *LabelingFlowImpl) GetSession(ctx context.Context, req *dto.GetSessionRequest) (*dto.SessionSnapshotResponse, error) {
	session, err := f.sessionRepo.Current(ctx)
	if err != nil {
		return nil, NewBusinessError("SESSION_READ_FAILED", "Failed to read session", err)
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	resp := &dto.SessionSnapshotResponse{
		SessionID:      session.ID,
		Images:         make([]dto.ImageItemDTO, 0, len(session.Images)),
		TagDefinitions: make([]dto.TagDefinitionDTO, 0, len(session.TagDefinitions)),
		Summary:        BuildSessionSummary(session),
	}

	query := ""
	if req != nil {
		query = strings.ToLower(strings.TrimSpace(req.Query))
	}
	for _, img := range session.Images {
		if query != "" && !imageMatchesQuery(&img, query) {
			continue
		}
		resp.Images = append(resp.Images, ToImageItemDTO(img))
	}
	for _, def := range session.TagDefinitions {
		resp.TagDefinitions = append(resp.TagDefinitions, ToTagDefinitionDTO(def))
	}
	return resp, nil
}

func (f *LabelingFlowImpl) ToggleTag(ctx context.Context, req *dto.ToggleTagRequest) (*dto.ToggleTagResponse, error) {
	if req == nil || strings.TrimSpace(req.Tag) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "tag is required", nil)
	}

	img, found, err := f.sessionRepo.ToggleTag(ctx, req.ImageID, req.Tag)
	if err != nil {
		return nil, NewBusinessError("TOGGLE_FAILED", "Failed to toggle tag", err)
	}
	if !found {
		return &dto.ToggleTagResponse{Found: false}, nil
	}

	imgDTO := ToImageItemDTO(*img)
	return &dto.ToggleTagResponse{Found: true, Image: &imgDTO}, nil
}

func (f *LabelingFlowImpl) ResetSession(ctx context.Context) error {
	return f.sessionRepo.Reset(ctx)
}

func (f *LabelingFlowImpl) ExportFlat(ctx context.Context) ([]FlatRecord, error) {
	session, err := f.sessionRepo.Current(ctx)
	if err != nil {
		return nil, NewBusinessError("SESSION_READ_FAILED", "Failed to read session", err)
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	return SerializeFlat(session.Images, session.TagDefinitions), nil
}

// ExportXLSX writes the same flat records into a one-sheet workbook for
// spreadsheet tooling.
func (f *LabelingFlowImpl) ExportXLSX(ctx context.Context) (string, []byte, error) {
	records, err := f.ExportFlat(ctx)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()
	xl.SetSheetName(xl.GetSheetName(0), utils.ExportSheetName)

	header := []string{"hotel_id", "title1", "title2", "tag name", "image_id", "image_url"}
	_ = xl.SetSheetRow(utils.ExportSheetName, "A1", &header)

	for ri, rec := range records {
		row := []string{rec.HotelID, rec.Title1, rec.Title2, rec.TagName, rec.ImageID, rec.ImageURL}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(utils.ExportSheetName, cellRef, &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return utils.ExportXLSXFilename, buf.Bytes(), nil
}

func imageMatchesQuery(img *models.ImageItem, query string) bool {
	if strings.Contains(strings.ToLower(img.Filename), query) {
		return true
	}
	if img.HotelName != nil && strings.Contains(strings.ToLower(*img.HotelName), query) {
		return true
	}
	for _, tag := range img.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func clientIP(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.IPAddress
}
