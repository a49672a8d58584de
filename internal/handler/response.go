package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orthocode/internal/domain"
	"orthocode/internal/gateway"
)

const internalErrorMessage = "unexpected internal error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error        bool   `json:"error" example:"true"`
	ErrorCode    string `json:"error_code" example:"INPUT_TOO_SHORT"`
	ErrorMessage string `json:"error_message" example:"clinical input too short after trimming"`
	UserMessage  string `json:"user_message" example:"Please provide more detail about the clinical encounter."`
}

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeMissingInput, domain.CodeInputTooShort, domain.CodeInputTooLong:
		return http.StatusBadRequest
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case domain.CodeAIRateLimited:
		return http.StatusServiceUnavailable
	case domain.CodeAIError, domain.CodeAIEmptyResponse, domain.CodeAIParseError, domain.CodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the response body for a classified error. Internal
// diagnostics are replaced with a generic message.
func NewErrorResponse(ce *domain.CodingError) ErrorResponse {
	msg := ce.Message
	if ce.Code == domain.CodeInternalError {
		msg = internalErrorMessage
	}
	userMsg := ce.UserMessage
	if userMsg == "" {
		userMsg = domain.UserMessage(ce.Code)
	}
	return ErrorResponse{
		Error:        true,
		ErrorCode:    string(ce.Code),
		ErrorMessage: msg,
		UserMessage:  userMsg,
	}
}

// RespondError sends an error response with the status mapped from ce.Code.
func RespondError(c *gin.Context, ce *domain.CodingError) {
	c.JSON(StatusForCode(ce.Code), NewErrorResponse(ce))
}

// HandleError classifies err and sends the appropriate error response. An upstream
// rate limit forwards the provider's Retry-After hint.
func HandleError(c *gin.Context, err error) {
	ce := domain.AsCodingError(err)
	if ce.Code == domain.CodeAIRateLimited {
		if d, ok := gateway.RetryAfter(err); ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
		}
	}
	RespondError(c, ce)
}

// MethodNotAllowed answers a known path hit with an unregistered method. The
// diagnostic names the methods gin reported in the Allow header.
func MethodNotAllowed(c *gin.Context) {
	msg := "method not allowed"
	if allow := c.Writer.Header().Get("Allow"); allow != "" {
		msg = fmt.Sprintf("Only %s requests accepted", allow)
	}
	RespondError(c, domain.NewCodingError(domain.CodeMethodNotAllowed, msg))
}
