package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"orthocode/internal/domain"
	"orthocode/internal/gateway"
	"orthocode/internal/handler"
	"orthocode/internal/port"
	"orthocode/internal/ratelimit"
	"orthocode/internal/router"
	"orthocode/internal/service"
	"orthocode/mocks"
)

const okResponse = `{"primary_code":{"cpt_code":"27447","description":"Total knee arthroplasty","confidence":"high"},"icd10_codes":[{"code":"M17.11","description":"Primary OA, right knee","necessity":"Supports TKA"}],"modifiers":[{"code":"-RT","name":"Right side","apply":true,"reason":"Right knee"}],"rationale":"Severe OA after failed conservative care.","missing_information":[],"warnings":[],"clean_claim_ready":true}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(gw port.AIGateway) *gin.Engine {
	logger := zerolog.Nop()
	svc := service.NewCodingService(ratelimit.NewSlidingWindow(10, time.Minute), gw, logger, noop.NewTracerProvider().Tracer("test"))
	return router.Setup(logger, []string{"*"}, handler.NewCodingHandler(svc, 1<<20), handler.NewHealthHandler(gw != nil, nil))
}

func stubGateway(text string, err error) *mocks.MockAIGateway {
	gw := new(mocks.MockAIGateway)
	gw.On("Provider").Return("claude")
	if err != nil {
		gw.On("Complete", mock.Anything, mock.Anything).Return(nil, err)
	} else {
		gw.On("Complete", mock.Anything, mock.Anything).Return(&port.CompletionOutput{Text: text}, nil)
	}
	return gw
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Error)
	assert.NotEmpty(t, resp.UserMessage)
	return resp.ErrorCode
}

func TestRouter_GenerateCodes_Success(t *testing.T) {
	r := newEngine(stubGateway(okResponse, nil))

	for _, path := range []string{"/api/v1/generate-codes", "/functions/v1/generate-codes"} {
		w := post(r, path, `{"clinical_input":"Total knee arthroplasty, right knee, severe OA, failed conservative treatment","laterality":"Right"}`)

		assert.Equal(t, http.StatusOK, w.Code, path)
		var result domain.CodingResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "27447", result.PrimaryCode.CPTCode)
		assert.True(t, result.CleanClaimReady)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRouter_GenerateCodes_EmptyInput(t *testing.T) {
	gw := stubGateway(okResponse, nil)
	w := post(newEngine(gw), "/api/v1/generate-codes", `{"clinical_input":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_INPUT", errorCode(t, w))
	gw.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestRouter_GenerateCodes_TooLong(t *testing.T) {
	body := `{"clinical_input":"` + strings.Repeat("x", 16000) + `"}`
	w := post(newEngine(stubGateway(okResponse, nil)), "/api/v1/generate-codes", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INPUT_TOO_LONG", errorCode(t, w))
}

func TestRouter_GenerateCodes_BodyOverCap(t *testing.T) {
	body := `{"clinical_input":"` + strings.Repeat("x", 2<<20) + `"}`
	w := post(newEngine(stubGateway(okResponse, nil)), "/api/v1/generate-codes", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INPUT_TOO_LONG", errorCode(t, w))
}

func TestRouter_GenerateCodes_UpstreamRateLimited(t *testing.T) {
	gw := stubGateway("", gateway.NewAPIError("claude", http.StatusTooManyRequests, "rate_limit_error", "5"))
	w := post(newEngine(gw), "/api/v1/generate-codes", `{"clinical_input":"Right shoulder arthroscopy with rotator cuff repair"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI_RATE_LIMITED", errorCode(t, w))
}

func TestRouter_GenerateCodes_ProseResponse(t *testing.T) {
	w := post(newEngine(stubGateway("I am unable to code this encounter.", nil)), "/api/v1/generate-codes", `{"clinical_input":"Right shoulder arthroscopy with rotator cuff repair"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "AI_PARSE_ERROR", errorCode(t, w))
}

func TestRouter_GenerateCodes_NotConfigured(t *testing.T) {
	w := post(newEngine(nil), "/api/v1/generate-codes", `{"clinical_input":"Right shoulder arthroscopy with rotator cuff repair"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "CONFIG_ERROR", errorCode(t, w))
}

func TestRouter_GenerateCodes_EleventhRejected(t *testing.T) {
	gw := stubGateway(okResponse, nil)
	r := newEngine(gw)
	body := `{"clinical_input":"Left knee arthroscopy, partial medial meniscectomy"}`

	for i := 0; i < 10; i++ {
		w := post(r, "/api/v1/generate-codes", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
	w := post(r, "/api/v1/generate-codes", body)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, w))
	gw.AssertNumberOfCalls(t, "Complete", 10)
}

func TestRouter_Preflight(t *testing.T) {
	r := newEngine(stubGateway(okResponse, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/generate-codes", http.NoBody)
	req.Header.Set("Origin", "https://coder.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newEngine(stubGateway(okResponse, nil))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, "/api/v1/generate-codes", http.NoBody)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "METHOD_NOT_ALLOWED", errorCode(t, w))
	}
}

func TestRouter_MethodNotAllowed_HealthNamesGET(t *testing.T) {
	r := newEngine(stubGateway(okResponse, nil))

	w := post(r, "/healthz", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET", w.Header().Get("Allow"))
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Only GET requests accepted", resp.ErrorMessage)
}

func TestRouter_CodingRouteNamesPOST(t *testing.T) {
	r := newEngine(stubGateway(okResponse, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/generate-codes", http.NoBody)
	r.ServeHTTP(w, req)

	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Only POST requests accepted", resp.ErrorMessage)
}

func TestRouter_Health(t *testing.T) {
	r := newEngine(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
