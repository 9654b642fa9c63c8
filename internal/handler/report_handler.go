package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/middleware"
	"github.com/noah-isme/campus-events-console/internal/models"
	"github.com/noah-isme/campus-events-console/internal/service"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type reportService interface {
	Overview(ctx context.Context) (models.ReportsOverview, bool, error)
	Export(ctx context.Context, format string) (*service.ReportFile, error)
}

// ReportHandler serves the reports screen and its download.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Overview godoc
// @Summary Registrations per event and top students
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/reports [get]
func (h *ReportHandler) Overview(c *gin.Context) {
	overview, hit, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the registrations report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /staff/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var query dto.ReportExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.NewValidationError("format", "invalid query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
