package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
	"github.com/legnamegusta-ctrl/apporgania/internal/service/dashboard"
	"github.com/legnamegusta-ctrl/apporgania/internal/service/report"
)

const dateParamLayout = "2006-01-02"

// DashboardHandler serves properties, activities, KPI blocks and report
// exports.
type DashboardHandler struct {
	svc        *dashboard.Service
	properties mongodb.PropertyRepository
	exporter   *report.Exporter
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(
	svc *dashboard.Service,
	properties mongodb.PropertyRepository,
	exporter *report.Exporter,
	timeout time.Duration,
	logger *zap.Logger,
) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		svc:        svc,
		properties: properties,
		exporter:   exporter,
		timeout:    timeout,
		logger:     logger,
	}
}

// ListProperties returns the caller's properties sorted by name.
func (h *DashboardHandler) ListProperties(c *gin.Context) {
	session := SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sessão inválida"})
		return
	}

	properties, err := h.svc.ListProperties(c.Request.Context(), session.UserID)
	if err != nil {
		h.fetchFailure(c, "list properties", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// ListActivities returns one page of a property's activities inside the date
// window, with optional search/status/type filters.
func (h *DashboardHandler) ListActivities(c *gin.Context) {
	property, ok := h.ownedProperty(c)
	if !ok {
		return
	}

	from, to, ok := dateWindow(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	activities, next, err := h.svc.ListActivities(c.Request.Context(), dashboard.ActivityQuery{
		PropertyID: property.ID,
		From:       from,
		To:         to,
		Limit:      limit,
		Cursor:     c.Query("cursor"),
		Search:     c.Query("q"),
		Status:     c.DefaultQuery("status", dashboard.FilterAll),
		Type:       c.DefaultQuery("type", dashboard.FilterAll),
	})
	if err != nil {
		h.fetchFailure(c, "list activities", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "nextCursor": next})
}

// GetActivity returns a single normalized activity.
func (h *DashboardHandler) GetActivity(c *gin.Context) {
	activity, err := h.svc.GetActivity(c.Request.Context(), c.Param("id"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Atividade não encontrada"})
		return
	}
	if err != nil {
		h.fetchFailure(c, "get activity", err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// GetKPIs returns the KPI block for a property and date window.
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	property, ok := h.ownedProperty(c)
	if !ok {
		return
	}

	from, to, ok := dateWindow(c)
	if !ok {
		return
	}

	kpis, err := h.svc.ComputeKPIs(c.Request.Context(), property.ID, from, to)
	if err != nil {
		h.fetchFailure(c, "compute kpis", err)
		return
	}

	c.JSON(http.StatusOK, kpis)
}

// GetDashboard returns activities and KPIs together. The two fetches run
// concurrently through a single-shot loader: both must succeed, or the whole
// response reports failure.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	property, ok := h.ownedProperty(c)
	if !ok {
		return
	}

	from, to, ok := dateWindow(c)
	if !ok {
		return
	}

	loader := dashboard.NewLoader(h.svc, h.timeout, h.logger.Named("loader"))
	<-loader.Load(c.Request.Context(), dashboard.LoadFilter{
		PropertyID: property.ID,
		From:       from,
		To:         to,
	})

	result := loader.Last()
	if result.State != dashboard.StateReady {
		h.fetchFailure(c, "load dashboard", result.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property":   property,
		"activities": result.Activities,
		"kpis":       result.KPIs,
	})
}

// ExportPDF renders and downloads the property report.
func (h *DashboardHandler) ExportPDF(c *gin.Context) {
	property, ok := h.ownedProperty(c)
	if !ok {
		return
	}

	from, to, ok := dateWindow(c)
	if !ok {
		return
	}

	activities, kpis, err := h.collectReportData(c, property.ID, from, to)
	if err != nil {
		h.fetchFailure(c, "collect report data", err)
		return
	}

	pdfBytes, err := h.exporter.BuildPDF(*property, kpis, activities, from, to)
	if err != nil {
		h.logger.Error("report generation failed", zap.String("property", property.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar relatório. Tente novamente em alguns instantes"})
		return
	}

	filename := fmt.Sprintf("relatorio-%s-%s.pdf", slugify(property.Name), time.Now().Format(dateParamLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ExportSheet appends the window's activities to the configured spreadsheet.
func (h *DashboardHandler) ExportSheet(c *gin.Context) {
	property, ok := h.ownedProperty(c)
	if !ok {
		return
	}

	from, to, ok := dateWindow(c)
	if !ok {
		return
	}

	activities, _, err := h.svc.ListActivities(c.Request.Context(), dashboard.ActivityQuery{
		PropertyID: property.ID,
		From:       from,
		To:         to,
	})
	if err != nil {
		h.fetchFailure(c, "list activities for export", err)
		return
	}

	if err := h.exporter.ExportToSheet(c.Request.Context(), *property, activities); err != nil {
		h.logger.Error("sheet export failed", zap.String("property", property.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Não foi possível exportar para a planilha"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"exported": len(activities)})
}

func (h *DashboardHandler) collectReportData(c *gin.Context, propertyID string, from, to time.Time) ([]models.Activity, models.KPIData, error) {
	activities, _, err := h.svc.ListActivities(c.Request.Context(), dashboard.ActivityQuery{
		PropertyID: propertyID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, models.KPIData{}, err
	}

	kpis, err := h.svc.ComputeKPIs(c.Request.Context(), propertyID, from, to)
	if err != nil {
		return nil, models.KPIData{}, err
	}

	return activities, kpis, nil
}

// ownedProperty loads the property in the path and enforces that the caller
// may see it. Admins and agronomists see everything.
func (h *DashboardHandler) ownedProperty(c *gin.Context) (*models.Property, bool) {
	session := SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sessão inválida"})
		return nil, false
	}

	property, err := h.properties.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Propriedade não encontrada"})
		return nil, false
	}
	if err != nil {
		h.fetchFailure(c, "get property", err)
		return nil, false
	}

	if session.Role != models.RoleAdmin && session.Role != models.RoleAgronomist && property.OwnerID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado a esta propriedade"})
		return nil, false
	}

	return property, true
}

// fetchFailure logs the cause and answers with the generic retry-prompting
// message; the underlying error never reaches the client.
func (h *DashboardHandler) fetchFailure(c *gin.Context, op string, err error) {
	h.logger.Error("dashboard fetch failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao carregar dados. Verifique sua conexão e tente novamente"})
}

// dateWindow parses the from/to query params, defaulting to the current
// month so far, matching the dashboard's initial view.
func dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'from' inválido, use AAAA-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro 'to' inválido, use AAAA-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		// Include the whole end day
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Intervalo de datas inválido"})
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(slug), "-")
}
