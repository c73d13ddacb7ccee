package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

func reportQuery(q dto.ReportQuery) service.ReportQuery {
	out := service.ReportQuery{ReportType: q.ReportType, StartDate: q.StartDate, EndDate: q.EndDate}
	if q.CompanyID != nil {
		id := uuid.MustParse(*q.CompanyID)
		out.CompanyID = &id
	}
	return out
}

// Data godoc
// @Summary Live financial aggregation (not persisted)
// @Tags financial-reports
// @Security BearerAuth
// @Produce json
// @Param companyId query string false "Company ID (SUPERADMIN)"
// @Param reportType query string true "DAILY | CUSTOM"
// @Param startDate query string true "YYYY-MM-DD or RFC3339"
// @Param endDate query string false "YYYY-MM-DD or RFC3339 (CUSTOM)"
// @Success 200 {object} dto.ReportResponse
// @Router /v1/financial-reports/data [get]
func (h *ReportsHandler) Data(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := h.svc.Data(c.Request.Context(), actor, reportQuery(q))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(report))
}

// Generate godoc
// @Summary Compute and persist a named financial report
// @Tags financial-reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GenerateReportRequest true "Report"
// @Success 201 {object} dto.ReportResponse
// @Router /v1/financial-reports/generate [post]
func (h *ReportsHandler) Generate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.GenerateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	report, err := h.svc.Generate(c.Request.Context(), actor, reportQuery(req.ReportQuery), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewReportResponse(report))
}

func (h *ReportsHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	reports, err := h.svc.List(c.Request.Context(), actor, companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, dto.NewReportResponse(&reports[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportsHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(report))
}
