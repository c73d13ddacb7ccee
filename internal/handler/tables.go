package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type TablesHandler struct{ svc service.TableService }

func NewTablesHandler(svc service.TableService) *TablesHandler { return &TablesHandler{svc: svc} }

// Create godoc
// @Summary Create a billiard table
// @Tags tables
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateTableRequest true "Table"
// @Success 201 {object} dto.TableResponse
// @Router /v1/tables [post]
func (h *TablesHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateTableRequest
	if !bindAndValidate(c, &req) {
		return
	}
	table, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTableResponse(table))
}

func (h *TablesHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	tables, err := h.svc.List(c.Request.Context(), actor, companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TableResponse, 0, len(tables))
	for i := range tables {
		out = append(out, dto.NewTableResponse(&tables[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TablesHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	table, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTableResponse(table))
}

// Update godoc
// @Summary Edit a table; manual status changes are refused while it is OCCUPIED
// @Tags tables
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Table ID"
// @Param body body dto.UpdateTableRequest true "Fields to change"
// @Success 200 {object} dto.TableResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/tables/{id} [patch]
func (h *TablesHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTableRequest
	if !bindAndValidate(c, &req) {
		return
	}
	table, err := h.svc.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTableResponse(table))
}

func (h *TablesHandler) AddMaintenance(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MaintenanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.AddMaintenance(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMaintenanceResponse(m))
}

func (h *TablesHandler) ListMaintenance(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.svc.ListMaintenance(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.MaintenanceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewMaintenanceResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}
