package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CompaniesHandler struct{ svc service.CompanyService }

func NewCompaniesHandler(svc service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{svc: svc}
}

// Create godoc
// @Summary Create a company (SUPERADMIN)
// @Tags companies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateCompanyRequest true "Company"
// @Success 201 {object} dto.CompanyResponse
// @Router /v1/companies [post]
func (h *CompaniesHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	company, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCompanyResponse(company))
}

func (h *CompaniesHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companies, err := h.svc.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, dto.NewCompanyResponse(&companies[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CompaniesHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	company, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompanyResponse(company))
}

// UpdateBusinessHours godoc
// @Summary Replace the business-hours configuration of a company
// @Tags companies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param body body dto.BusinessHoursRequest true "Business hours"
// @Success 200 {object} dto.CompanyResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/companies/{id}/business-hours [put]
func (h *CompaniesHandler) UpdateBusinessHours(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.BusinessHoursRequest
	if !bindAndValidate(c, &req) {
		return
	}
	company, err := h.svc.UpdateBusinessHours(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompanyResponse(company))
}
