package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"orthocode/internal/gateway"
	"orthocode/internal/service"
)

// CodingHandler handles code generation endpoints.
type CodingHandler struct {
	codingService service.CodingService
	maxBodyBytes  int64
}

// NewCodingHandler creates a new CodingHandler. maxBodyBytes <= 0 disables the body cap.
func NewCodingHandler(codingService service.CodingService, maxBodyBytes int64) *CodingHandler {
	return &CodingHandler{codingService: codingService, maxBodyBytes: maxBodyBytes}
}

// Generate handles POST /api/v1/generate-codes
// @Summary Suggest billing codes
// @Description Suggest CPT, ICD-10 and modifier codes for an orthopedic encounter
// @Tags coding
// @Accept json
// @Produce json
// @Param request body GenerateCodesRequest true "Clinical documentation and context"
// @Success 200 {object} domain.CodingResult "Coding suggestions"
// @Failure 400 {object} ErrorResponse "Missing, too short, or too long clinical input"
// @Failure 429 {object} ErrorResponse "Request window full"
// @Failure 500 {object} ErrorResponse "Service misconfigured or internal error"
// @Failure 502 {object} ErrorResponse "AI service failed or returned an unusable response"
// @Failure 503 {object} ErrorResponse "AI service rate limited"
// @Router /generate-codes [post]
func (h *CodingHandler) Generate(c *gin.Context) {
	c.Header("X-Prompt-Version", gateway.SystemPromptVersion)

	var body io.Reader = c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	result, err := h.codingService.Generate(c.Request.Context(), body)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
