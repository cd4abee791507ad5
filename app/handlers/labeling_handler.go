package handlers

import (
	"context"
	"io"
	"time"

	"github.com/amirphl/Kushinada-Labeling/app/dto"
	"github.com/amirphl/Kushinada-Labeling/app/middleware"
	businessflow "github.com/amirphl/Kushinada-Labeling/business_flow"
	"github.com/amirphl/Kushinada-Labeling/config"
	"github.com/amirphl/Kushinada-Labeling/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LabelingHandlerInterface defines the contract for labeling session handlers.
type LabelingHandlerInterface interface {
	StartSession(c fiber.Ctx) error
	ImportSession(c fiber.Ctx) error
	LoadDemoSession(c fiber.Ctx) error
	PreviewTagText(c fiber.Ctx) error
	GetSession(c fiber.Ctx) error
	ToggleTag(c fiber.Ctx) error
	ResetSession(c fiber.Ctx) error
	ExportJSON(c fiber.Ctx) error
	ExportXLSX(c fiber.Ctx) error
}

// LabelingHandler handles labeling session HTTP requests.
type LabelingHandler struct {
	flow      businessflow.LabelingFlow
	cfg       *config.AppConfig
	validator *validator.Validate
}

// NewLabelingHandler creates a new labeling handler.
func NewLabelingHandler(flow businessflow.LabelingFlow, cfg *config.AppConfig) *LabelingHandler {
	return &LabelingHandler{
		flow:      flow,
		cfg:       cfg,
		validator: validator.New(),
	}
}

func (h *LabelingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LabelingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// StartSession starts a labeling session from a spreadsheet upload plus pasted tag text.
// Multipart fields: "spreadsheet" (file) and "tag_text" (string).
func (h *LabelingHandler) StartSession(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("spreadsheet")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "spreadsheet file is required", "INVALID_FILE", nil)
	}
	if fileHeader.Size > h.cfg.Upload.MaxSpreadsheetSize {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "spreadsheet too large", "FILE_TOO_LARGE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid spreadsheet file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	tagText := c.FormValue("tag_text")
	if len(tagText) > utils.MaxTagTextSize {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "tag text too large", "TAG_TEXT_TOO_LARGE", nil)
	}

	req := dto.StartSessionRequest{
		SpreadsheetName: fileHeader.Filename,
		Spreadsheet:     file,
		TagText:         tagText,
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.StartSession(h.createRequestContext(c, "/api/v1/sessions"), &req, metadata)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to start session", "START_SESSION_FAILED")
	}

	middleware.CountSessionStart("upload")
	return h.SuccessResponse(c, fiber.StatusCreated, "Session started", result)
}

// ImportSession restores a session from a previously exported JSON file (flat
// or legacy nested format).
func (h *LabelingHandler) ImportSession(c fiber.Ctx) error {
	payload := c.Body()
	if fileHeader, err := c.FormFile("session"); err == nil && fileHeader != nil {
		if fileHeader.Size > h.cfg.Upload.MaxSessionFileSize {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "session file too large", "FILE_TOO_LARGE", nil)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid session file", "INVALID_FILE", err.Error())
		}
		defer file.Close()
		payload, err = io.ReadAll(file)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid session file", "INVALID_FILE", err.Error())
		}
	}

	req := dto.ImportSessionRequest{Payload: payload}
	metadata := h.clientMetadata(c)
	result, err := h.flow.ImportSession(h.createRequestContext(c, "/api/v1/sessions/import"), &req, metadata)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to import session", "IMPORT_SESSION_FAILED")
	}

	middleware.CountSessionStart("import")
	return h.SuccessResponse(c, fiber.StatusCreated, "Session imported", result)
}

// LoadDemoSession starts a session from the built-in demo catalogue.
func (h *LabelingHandler) LoadDemoSession(c fiber.Ctx) error {
	metadata := h.clientMetadata(c)
	result, err := h.flow.LoadDemoSession(h.createRequestContext(c, "/api/v1/sessions/demo"), metadata)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to load demo session", "DEMO_SESSION_FAILED")
	}
	middleware.CountSessionStart("demo")
	return h.SuccessResponse(c, fiber.StatusCreated, "Demo session started", result)
}

// PreviewTagText parses pasted tag definition text without touching the session.
func (h *LabelingHandler) PreviewTagText(c fiber.Ctx) error {
	var req dto.PreviewTagTextRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.flow.PreviewTagText(h.createRequestContext(c, "/api/v1/tag-definitions/preview"), &req)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to parse tag text", "TAG_TEXT_PARSE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tag text parsed", result)
}

// GetSession returns the active session, optionally filtered by ?q= substring
// search over filename, hotel name and tags.
func (h *LabelingHandler) GetSession(c fiber.Ctx) error {
	req := dto.GetSessionRequest{Query: c.Query("q")}
	result, err := h.flow.GetSession(h.createRequestContext(c, "/api/v1/sessions/current"), &req)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to read session", "SESSION_READ_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Session retrieved", result)
}

// ToggleTag toggles one tag on one image. Unknown image ids are a no-op.
func (h *LabelingHandler) ToggleTag(c fiber.Ctx) error {
	imageID := c.Params("id")
	if imageID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "image id is required", "INVALID_IMAGE_ID", nil)
	}

	var req dto.ToggleTagRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	req.ImageID = imageID

	result, err := h.flow.ToggleTag(h.createRequestContext(c, "/api/v1/images/{id}/tags"), &req)
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to toggle tag", "TOGGLE_FAILED")
	}

	message := "Tag toggled"
	if !result.Found {
		message = "Image not found, nothing changed"
	}
	return h.SuccessResponse(c, fiber.StatusOK, message, result)
}

// ResetSession clears all session state. The confirmation prompt is the
// client's job; the API clears unconditionally.
func (h *LabelingHandler) ResetSession(c fiber.Ctx) error {
	if err := h.flow.ResetSession(h.createRequestContext(c, "/api/v1/sessions/current")); err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset session", "RESET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Session reset", nil)
}

// ExportJSON returns the flattened records as a bare JSON array. No response
// envelope here: the payload is the session file format and must round-trip
// through ImportSession unchanged.
func (h *LabelingHandler) ExportJSON(c fiber.Ctx) error {
	records, err := h.flow.ExportFlat(h.createRequestContext(c, "/api/v1/sessions/export"))
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to export session", "EXPORT_FAILED")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+utils.ExportJSONFilename+`"`)
	return c.JSON(records)
}

// ExportXLSX returns the same flat records as a one-sheet workbook.
func (h *LabelingHandler) ExportXLSX(c fiber.Ctx) error {
	filename, data, err := h.flow.ExportXLSX(h.createRequestContext(c, "/api/v1/sessions/export.xlsx"))
	if err != nil {
		return h.pipelineErrorResponse(c, err, "Failed to export session", "EXPORT_FAILED")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// pipelineErrorResponse maps the pipeline's sentinel errors onto user-facing
// envelope codes; anything unrecognized is a 500.
func (h *LabelingHandler) pipelineErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsMalformedTagText(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Tag text could not be parsed", "MALFORMED_TAG_TEXT", err.Error())
	case businessflow.IsNoTagsFound(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No tags found in tag text", "NO_TAGS_FOUND", err.Error())
	case businessflow.IsEmptySpreadsheet(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Spreadsheet contains no data rows", "EMPTY_SPREADSHEET", err.Error())
	case businessflow.IsNoURLColumn(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No image URL column found", "NO_URL_COLUMN", err.Error())
	case businessflow.IsNoRowsExtracted(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No usable rows in spreadsheet", "NO_ROWS_EXTRACTED", err.Error())
	case businessflow.IsUnsupportedSpreadsheet(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported spreadsheet format", "UNSUPPORTED_SPREADSHEET", err.Error())
	case businessflow.IsEmptyOrInvalidSessionJSON(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Session file is not a non-empty JSON array", "EMPTY_OR_INVALID_JSON", err.Error())
	case businessflow.IsNoValidImages(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No valid images in session file", "NO_VALID_IMAGES", err.Error())
	case businessflow.IsNoActiveSession(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "No active session", "NO_ACTIVE_SESSION", nil)
	}

	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "VALIDATION_ERROR", "INVALID_FILE", "CSV_READ_ERROR", "EXCEL_READ_ERROR", "UNSUPPORTED_SPREADSHEET":
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
		}
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *LabelingHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))
	return metadata
}

func (h *LabelingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LabelingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
