// Package webapi serves the management endpoints: token issuance, analysis
// history and system status.
package webapi

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"

	"aidpal-server-go/internal/domain/auth"
	"aidpal-server-go/internal/domain/history"
	"aidpal-server-go/internal/platform/config"
	platformerrors "aidpal-server-go/internal/platform/errors"
	"aidpal-server-go/internal/platform/logging"
	httptransport "aidpal-server-go/internal/transport/http"
)

// Service bundles the management endpoints.
type Service struct {
	logger    *logging.Logger
	config    *config.Config
	authToken *auth.AuthToken
	history   *history.Service
	startTime time.Time
}

// NewService builds the webapi transport service.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	authToken *auth.AuthToken,
	historySvc *history.Service,
) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "config is required")
	}
	if historySvc == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "history service is required")
	}
	return &Service{
		logger:    logger,
		config:    cfg,
		authToken: authToken,
		history:   historySvc,
		startTime: time.Now(),
	}, nil
}

// Register mounts the webapi routes. Token issuance stays public so devices
// can bootstrap; everything else prefers the secured group.
func (s *Service) Register(_ context.Context, public, secured *gin.RouterGroup) error {
	if s.authToken != nil {
		public.POST("/auth/token", s.handleIssueToken)
	}

	target := secured
	if target == nil {
		target = public
	}
	target.GET("/history", s.handleListHistory)
	target.GET("/history/:id", s.handleGetHistory)
	target.DELETE("/history/:id", s.handleDeleteHistory)
	target.GET("/system/status", s.handleSystemStatus)

	s.logger.InfoTag("http", "webapi routes registered")
	return nil
}

type issueTokenRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

func (s *Service) handleIssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "device_id is required", nil)
		return
	}

	token, err := s.authToken.GenerateToken(req.DeviceID)
	if err != nil {
		s.logger.ErrorTag("auth", "issue token: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "token issuance failed", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"token":     token,
		"device_id": req.DeviceID,
	}, "token issued")
}

func (s *Service) handleListHistory(c *gin.Context) {
	deviceID := httptransport.DeviceID(c)

	records, err := s.history.List(c.Request.Context(), deviceID)
	if err != nil {
		s.logger.ErrorTag("storage", "list history: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "history lookup failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, records, "")
}

func (s *Service) handleGetHistory(c *gin.Context) {
	record, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httptransport.RespondError(c, http.StatusNotFound, "record not found", nil)
			return
		}
		s.logger.ErrorTag("storage", "get history: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "history lookup failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, record, "")
}

func (s *Service) handleDeleteHistory(c *gin.Context) {
	if err := s.history.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httptransport.RespondError(c, http.StatusNotFound, "record not found", nil)
			return
		}
		s.logger.ErrorTag("storage", "delete history: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "history delete failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "record deleted")
}

// SystemStatus is the payload of the status endpoint.
type SystemStatus struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryUsedPct  float64 `json:"memory_used_percent"`
	MemoryUsedMB   uint64  `json:"memory_used_mb"`
	MemoryTotalMB  uint64  `json:"memory_total_mb"`
	HistoryRecords int64   `json:"history_records"`
}

func (s *Service) handleSystemStatus(c *gin.Context) {
	status := SystemStatus{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryUsedPct = vm.UsedPercent
		status.MemoryUsedMB = vm.Used / 1024 / 1024
		status.MemoryTotalMB = vm.Total / 1024 / 1024
	}
	if count, err := s.history.Count(c.Request.Context()); err == nil {
		status.HistoryRecords = count
	}

	httptransport.RespondSuccess(c, http.StatusOK, status, "")
}
