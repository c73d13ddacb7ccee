package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpensesHandler struct{ svc service.ExpenseService }

func NewExpensesHandler(svc service.ExpenseService) *ExpensesHandler {
	return &ExpensesHandler{svc: svc}
}

// Create godoc
// @Summary Record an expense
// @Tags expenses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ExpenseRequest true "Expense"
// @Success 201 {object} dto.ExpenseResponse
// @Router /v1/expenses [post]
func (h *ExpensesHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewExpenseResponse(e))
}

func (h *ExpensesHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	from, ok := timeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return
	}
	filter := repository.ExpenseFilter{Category: c.Query("category"), From: from, To: to}
	rows, err := h.svc.List(c.Request.Context(), actor, companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ExpenseResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewExpenseResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpensesHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewExpenseResponse(e))
}

func (h *ExpensesHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
