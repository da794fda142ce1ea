package handler

import (
	"errors"
	"net/http"

	prescriptionapp "github.com/emedico/backend/internal/application/prescription"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PrescriptionFormField is the multipart field carrying the image
const PrescriptionFormField = "file"

// PrescriptionHandler serves the session's prescription upload
type PrescriptionHandler struct {
	BaseHandler
	prescriptions *prescriptionapp.Service
}

// NewPrescriptionHandler creates a new PrescriptionHandler
func NewPrescriptionHandler(prescriptions *prescriptionapp.Service) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions}
}

// PrescriptionStateResponse is the upload view state; Upload is null
// when the session has none
type PrescriptionStateResponse struct {
	Upload *prescriptionapp.UploadState `json:"upload"`
}

// Upload handles POST /sessions/{id}/prescription: upload a prescription image.
// PNG, JPEG, GIF or WebP up to 5MB. A refused file clears the previous.
func (h *PrescriptionHandler) Upload(c *gin.Context) {
	header, err := c.FormFile(PrescriptionFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				"Request validation failed",
				getRequestID(c),
				[]dto.ValidationDetail{{Field: PrescriptionFormField, Message: "This field is required"}},
			))
			return
		}
		h.BadRequest(c, "Invalid multipart form")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	state, err := h.prescriptions.Upload(c.Request.Context(), prescriptionapp.UploadInput{
		SessionID:   sessionID(c),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PrescriptionStateResponse{Upload: state})
}

// Get handles GET /sessions/{id}/prescription: get the prescription upload state.
func (h *PrescriptionHandler) Get(c *gin.Context) {
	state, err := h.prescriptions.Get(c.Request.Context(), sessionID(c))
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PrescriptionStateResponse{Upload: state})
}

// Clear handles DELETE /sessions/{id}/prescription: remove the prescription upload.
func (h *PrescriptionHandler) Clear(c *gin.Context) {
	if err := h.prescriptions.Clear(c.Request.Context(), sessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
