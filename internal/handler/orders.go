package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// orderLines turns the wire cart into typed lines. A line is tracked when it
// carries isTrackedItem or a trackedItemId.
func orderLines(items []dto.OrderLineRequest) ([]service.OrderLine, error) {
	lines := make([]service.OrderLine, 0, len(items))
	for i, it := range items {
		var itemID uuid.UUID
		if it.ItemID != "" {
			itemID = uuid.MustParse(it.ItemID)
		}
		if it.IsTrackedItem || it.TrackedItemID != nil {
			line := service.TrackedLine{ItemID: itemID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
			if it.TrackedItemID != nil {
				line.TrackedItemID = uuid.MustParse(*it.TrackedItemID)
			}
			if line.TrackedItemID == uuid.Nil && itemID == uuid.Nil {
				return nil, apierror.Validationf("items[%d]: tracked line needs itemId or trackedItemId", i)
			}
			lines = append(lines, line)
			continue
		}
		if itemID == uuid.Nil {
			return nil, apierror.Validationf("items[%d]: itemId is required", i)
		}
		lines = append(lines, service.NewLine{ItemID: itemID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return lines, nil
}

// Create godoc
// @Summary Check out a cart (and optionally a session) into one POS order
// @Tags pos-orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateOrderRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError "Insufficient stock or tracked item already settled"
// @Failure 422 {object} apierror.APIError
// @Router /v1/pos-orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	lines, err := orderLines(req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	in := service.OrderInput{
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Lines:         lines,
	}
	if req.CompanyID != nil {
		id := uuid.MustParse(*req.CompanyID)
		in.CompanyID = &id
	}
	if req.TableSessionID != nil {
		id := uuid.MustParse(*req.TableSessionID)
		in.SessionID = &id
	}

	order, err := h.svc.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

func (h *OrdersHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// List godoc
// @Summary List POS orders
// @Tags pos-orders
// @Security BearerAuth
// @Produce json
// @Param from query string false "RFC3339, inclusive"
// @Param to query string false "RFC3339, exclusive"
// @Param tableSessionId query string false "Session ID"
// @Param paymentStatus query string false "PAID | UNPAID"
// @Success 200 {object} dto.OrderListResponse
// @Router /v1/pos-orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	sessionID, ok := uuidQuery(c, "tableSessionId")
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
	filter := repository.OrderFilter{
		SessionID:     sessionID,
		PaymentStatus: c.Query("paymentStatus"),
		From:          from,
		To:            to,
		Page:          intQuery(c, "page", 1),
		Limit:         intQuery(c, "limit", 50),
	}
	orders, total, err := h.svc.List(c.Request.Context(), actor, companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.OrderListResponse{
		Data:  make([]dto.OrderResponse, 0, len(orders)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range orders {
		resp.Data = append(resp.Data, dto.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePayment godoc
// @Summary Change payment method or status, the only edit an order allows
// @Tags pos-orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.UpdateOrderRequest true "Payment fields"
// @Success 200 {object} dto.OrderResponse
// @Router /v1/pos-orders/{id} [patch]
func (h *OrdersHandler) UpdatePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	order, err := h.svc.UpdatePayment(c.Request.Context(), actor, id, req.PaymentMethod, req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Delete godoc
// @Summary Void an order; stock of untracked lines is returned
// @Tags pos-orders
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 204
// @Router /v1/pos-orders/{id} [delete]
func (h *OrdersHandler) Delete(c *gin.Context) {
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
