// Package vision exposes the wound analysis endpoints.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aidpal-server-go/internal/domain/analysis"
	"aidpal-server-go/internal/domain/eventbus"
	domainimage "aidpal-server-go/internal/domain/image"
	"aidpal-server-go/internal/platform/config"
	platformerrors "aidpal-server-go/internal/platform/errors"
	"aidpal-server-go/internal/platform/logging"
	httptransport "aidpal-server-go/internal/transport/http"
)

// Service is the HTTP transport for the analysis orchestrator.
type Service struct {
	logger       *logging.Logger
	config       *config.Config
	orchestrator *analysis.Orchestrator
	validator    *domainimage.SecurityValidator
}

// NewService builds the vision transport service.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	orchestrator *analysis.Orchestrator,
	validator *domainimage.SecurityValidator,
) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "config is required")
	}
	if orchestrator == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "orchestrator is required")
	}
	if validator == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "image validator is required")
	}
	return &Service{
		logger:       logger,
		config:       cfg,
		orchestrator: orchestrator,
		validator:    validator,
	}, nil
}

// Register mounts the vision routes. The status probe stays public; the
// analyze endpoint goes on the secured group when one exists.
func (s *Service) Register(_ context.Context, public, secured *gin.RouterGroup) error {
	public.GET("/vision", s.handleStatus)

	target := secured
	if target == nil {
		target = public
	}
	target.POST("/vision/analyze", s.handleAnalyze)

	s.logger.InfoTag("http", "vision routes registered")
	return nil
}

func (s *Service) handleStatus(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, StatusData{
		Status: "ok",
		Models: s.orchestrator.Models(),
	}, fmt.Sprintf("vision endpoint running with %d candidate models", len(s.orchestrator.Models())))
}

func (s *Service) handleAnalyze(c *gin.Context) {
	deviceID := httptransport.DeviceID(c)

	req, err := s.parseRequest(c)
	if err != nil {
		s.logger.WarnTag("vision", "bad analyze request: %v", err)
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	payload := domainimage.ParseDataURI(req.Image)
	if validation := s.validator.ValidateBase64(payload); !validation.IsValid {
		message := "image validation failed"
		if validation.Error != nil {
			message = validation.Error.Error()
		}
		s.logger.WarnTag("vision", "image rejected: %s (risk=%s)", message, validation.SecurityRisk)
		httptransport.RespondError(c, http.StatusBadRequest, message, nil)
		return
	}

	eventbus.PublishAsync(eventbus.EventAnalysisStarted, eventbus.AnalysisStartedData{
		DeviceID:  deviceID,
		Context:   req.Context,
		Timestamp: time.Now(),
	})

	result, err := s.orchestrator.Analyze(c.Request.Context(), analysis.Request{
		Image:   req.Image,
		Context: req.Context,
	})
	if err != nil {
		s.respondAnalysisError(c, deviceID, err)
		return
	}

	eventbus.PublishAsync(eventbus.EventAnalysisCompleted, eventbus.AnalysisCompletedData{
		DeviceID:  deviceID,
		Image:     req.Image,
		Context:   req.Context,
		WoundType: result.WoundType,
		Severity:  string(result.Severity),
		Result:    result,
		Timestamp: time.Now(),
	})

	httptransport.RespondSuccess(c, http.StatusOK, AnalyzeData{Result: result}, "analysis complete")
}

func (s *Service) respondAnalysisError(c *gin.Context, deviceID string, err error) {
	var analysisErr *analysis.Error
	if errors.As(err, &analysisErr) {
		s.logger.WarnTag("vision", "all candidates exhausted: %v", analysisErr.Cause)
		eventbus.PublishAsync(eventbus.EventAnalysisFailed, eventbus.AnalysisFailedData{
			DeviceID:  deviceID,
			Message:   analysisErr.Message,
			Timestamp: time.Now(),
		})
		httptransport.RespondError(c, http.StatusServiceUnavailable, analysisErr.Message, nil)
		return
	}

	if platformerrors.IsKind(err, platformerrors.KindAnalysis) {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.logger.ErrorTag("vision", "analyze failed: %v", err)
	httptransport.RespondError(c, http.StatusInternalServerError, "analysis failed", nil)
}

// parseRequest accepts either a JSON body or a multipart form with a "file"
// part and optional "context" field.
func (s *Service) parseRequest(c *gin.Context) (*AnalyzeRequest, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return s.parseMultipart(c)
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return &req, nil
}

func (s *Service) parseMultipart(c *gin.Context) (*AnalyzeRequest, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing image file: %w", err)
	}
	if max := s.config.Security.MaxFileSize; max > 0 && file.Size > max {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", max)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read uploaded image: %w", err)
	}

	format := domainimage.DetectFormat(raw)
	image := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(raw))

	return &AnalyzeRequest{
		Image:   image,
		Context: c.PostForm("context"),
	}, nil
}
