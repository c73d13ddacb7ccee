package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/service"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StockSubscriber streams committed stock changes of one company.
type StockSubscriber interface {
	Subscribe(ctx context.Context, companyID uuid.UUID) (<-chan worker.StockEvent, error)
}

type InventoryHandler struct {
	svc    service.InventoryService
	events StockSubscriber
}

// NewInventoryHandler wires the inventory endpoints. events may be nil, in
// which case the SSE feed answers 503.
func NewInventoryHandler(svc service.InventoryService, events StockSubscriber) *InventoryHandler {
	return &InventoryHandler{svc: svc, events: events}
}

// ── Items ─────────────────────────────────────────────────────────────────────

// CreateItem godoc
// @Summary Create an inventory item; initialQuantity is booked as a PURCHASE
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.ItemResponse
// @Router /v1/inventory-items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewItemResponse(item))
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(item))
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(item))
}

// ListItems godoc
// @Summary List inventory items
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Param categoryId query string false "Category ID"
// @Param itemType query string false "SALE | INTERNAL_USE"
// @Param search query string false "Name or SKU fragment"
// @Param active query string false "true (default) | false | all"
// @Success 200 {array} dto.ItemResponse
// @Router /v1/inventory-items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	categoryID, ok := uuidQuery(c, "categoryId")
	if !ok {
		return
	}
	filter := repository.ItemFilter{
		CategoryID: categoryID,
		ItemType:   c.Query("itemType"),
		Search:     c.Query("search"),
		Active:     c.Query("active"),
	}
	items, err := h.svc.ListItems(c.Request.Context(), actor, companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemsResponse(items))
}

// Alerts lists items at or below their critical threshold.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	items, err := h.svc.LowStock(c.Request.Context(), actor, companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemsResponse(items))
}

// Ledger godoc
// @Summary Recompute the movement ledger of an item and compare it with its quantity
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dto.LedgerCheckResponse
// @Router /v1/inventory-items/{id}/ledger [get]
func (h *InventoryHandler) Ledger(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CheckLedger(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Stock movements ───────────────────────────────────────────────────────────

// RecordMovement godoc
// @Summary Record a stock movement
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.StockMovementRequest true "Movement"
// @Success 201 {object} dto.MovementResponse
// @Failure 409 {object} apierror.APIError "Insufficient stock"
// @Router /v1/stock-movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.StockMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.svc.RecordMovement(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMovementResponse(mov))
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	itemID, ok := uuidQuery(c, "itemId")
	if !ok {
		return
	}
	filter := repository.MovementFilter{
		ItemID: itemID,
		Type:   c.Query("type"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 50),
	}
	movs, total, err := h.svc.ListMovements(c.Request.Context(), actor, companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.MovementListResponse{
		Data:  make([]dto.MovementResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movs {
		resp.Data = append(resp.Data, dto.NewMovementResponse(&movs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ── Categories ────────────────────────────────────────────────────────────────

func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategoryResponse(cat))
}

func (h *InventoryHandler) ListCategories(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	cats, err := h.svc.ListCategories(c.Request.Context(), actor, companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, dto.NewCategoryResponse(&cats[i]))
	}
	c.JSON(http.StatusOK, out)
}

// ── Change feed ───────────────────────────────────────────────────────────────

// Events godoc
// @Summary Server-Sent Events feed of committed stock changes
// @Tags inventory
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {object} worker.StockEvent
// @Router /v1/inventory-items/events [get]
func (h *InventoryHandler) Events(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("stock change feed unavailable"))
		return
	}
	requested, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	companyID, err := actor.ScopeCompany(requested)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	ch, err := h.events.Subscribe(ctx, companyID)
	if err != nil {
		log.Warn().Err(err).Str("company_id", companyID.String()).Msg("stock feed: subscribe failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("stock change feed unavailable"))
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("stock", ev)
			return true
		}
	})
}
