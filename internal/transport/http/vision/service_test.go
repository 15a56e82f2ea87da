package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"aidpal-server-go/internal/domain/analysis"
	domainimage "aidpal-server-go/internal/domain/image"
	"aidpal-server-go/internal/domain/knowledge"
	"aidpal-server-go/internal/platform/config"
	"aidpal-server-go/internal/platform/logging"
	httptransport "aidpal-server-go/internal/transport/http"
)

const resultJSON = `{
	"woundType": "Scrape (Abrasion)",
	"severity": "Low",
	"description": "A shallow scrape.",
	"firstAidSteps": ["Rinse", "Cover"],
	"recommendation": "Monitor at home"
}`

type scriptedInvoker struct {
	responses []func() (string, error)
	calls     int
}

func (f *scriptedInvoker) Invoke(context.Context, analysis.InvokeRequest) (string, error) {
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("unexpected call %d", f.calls)
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp()
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestRouter(t *testing.T, invoker analysis.Invoker) *httptransport.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.New(logging.Config{Level: "error", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	cfg := config.Default()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("load knowledge base: %v", err)
	}

	orch, err := analysis.NewOrchestrator(analysis.Options{
		Models:    []string{"model-a", "model-b"},
		Knowledge: kb,
		Invoker:   invoker,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	validator := domainimage.NewSecurityValidator(&cfg.Security, logger)

	svc, err := NewService(cfg, logger, orch, validator)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	if err := svc.Register(context.Background(), router.API, router.Secured); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return router
}

func postJSON(t *testing.T, router *httptransport.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) httptransport.APIResponse {
	t.Helper()
	var envelope httptransport.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return envelope
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	invoker := &scriptedInvoker{responses: []func() (string, error){
		func() (string, error) { return resultJSON, nil },
	}}
	router := newTestRouter(t, invoker)

	w := postJSON(t, router, "/api/vision/analyze", AnalyzeRequest{
		Image:   pngDataURI(t),
		Context: "scraped my knee",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	envelope := decodeEnvelope(t, w)
	if !envelope.Success {
		t.Fatalf("expected success envelope: %+v", envelope)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var payload AnalyzeData
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if payload.Result.WoundType != "Scrape (Abrasion)" || payload.Result.Severity != analysis.SeverityLow {
		t.Errorf("unexpected result: %+v", payload.Result)
	}
}

func TestAnalyzeEndpointExhaustion(t *testing.T) {
	rateLimited := func() (string, error) {
		return "", &analysis.RemoteError{Status: http.StatusTooManyRequests, Err: fmt.Errorf("rate limited")}
	}
	invoker := &scriptedInvoker{responses: []func() (string, error){rateLimited, rateLimited}}
	router := newTestRouter(t, invoker)

	w := postJSON(t, router, "/api/vision/analyze", AnalyzeRequest{Image: pngDataURI(t)})

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	envelope := decodeEnvelope(t, w)
	if envelope.Message != analysis.MsgRateLimited {
		t.Errorf("message = %q, want the rate limit message", envelope.Message)
	}
}

func TestAnalyzeEndpointRejectsMissingImage(t *testing.T) {
	router := newTestRouter(t, &scriptedInvoker{})

	w := postJSON(t, router, "/api/vision/analyze", map[string]string{"context": "no image"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestAnalyzeEndpointRejectsForgedImage(t *testing.T) {
	router := newTestRouter(t, &scriptedInvoker{})

	// Declared as JPEG but the bytes carry no JPEG signature.
	forged := base64.StdEncoding.EncodeToString([]byte("this is not an image at all"))
	w := postJSON(t, router, "/api/vision/analyze", AnalyzeRequest{
		Image: "data:image/jpeg;base64," + forged,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t, &scriptedInvoker{})

	req := httptest.NewRequest(http.MethodGet, "/api/vision", nil)
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model-a") {
		t.Errorf("status body missing model list: %s", w.Body.String())
	}
}
