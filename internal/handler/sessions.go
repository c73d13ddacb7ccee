package handler

import (
	"net/http"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Start godoc
// @Summary Start a table session (AVAILABLE → OCCUPIED)
// @Tags table-sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.StartSessionRequest true "Session"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/table-sessions [post]
func (h *SessionsHandler) Start(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.StartSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	in := service.StartSessionInput{TableID: uuid.MustParse(req.TableID), StartedAt: req.StartedAt}
	if req.StaffID != nil {
		staff := uuid.MustParse(*req.StaffID)
		in.StaffID = &staff
	}
	session, err := h.svc.Start(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session, nil))
}

// End godoc
// @Summary End a session and compute its rental cost
// @Tags table-sessions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/table-sessions/{id}/end [patch]
func (h *SessionsHandler) End(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	session, err := h.svc.End(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session, nil))
}

func (h *SessionsHandler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	session, err := h.svc.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session, nil))
}

// ── Read side ─────────────────────────────────────────────────────────────────

func (h *SessionsHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	session, running, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session, running))
}

// List godoc
// @Summary List sessions
// @Tags table-sessions
// @Security BearerAuth
// @Produce json
// @Param status query string false "ACTIVE | COMPLETED | CANCELLED"
// @Param tableId query string false "Table ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.SessionListResponse
// @Router /v1/table-sessions [get]
func (h *SessionsHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	companyID, ok := uuidQuery(c, "companyId")
	if !ok {
		return
	}
	tableID, ok := uuidQuery(c, "tableId")
	if !ok {
		return
	}
	filter := repository.SessionFilter{
		TableID: tableID,
		Status:  c.Query("status"),
		Page:    intQuery(c, "page", 1),
		Limit:   intQuery(c, "limit", 50),
	}
	sessions, total, err := h.svc.List(c.Request.Context(), actor, companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.SessionListResponse{Data: make([]dto.SessionResponse, 0, len(sessions)), Total: total}
	for i := range sessions {
		resp.Data = append(resp.Data, dto.NewSessionResponse(&sessions[i], nil))
	}
	c.JSON(http.StatusOK, resp)
}

// ── Tracked items ─────────────────────────────────────────────────────────────

// TrackItems godoc
// @Summary Record items consumed during an active session (deducted immediately)
// @Tags table-sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body dto.TrackItemsRequest true "Items"
// @Success 201 {array} dto.TrackedItemResponse
// @Failure 409 {object} apierror.APIError "Insufficient stock or session not ACTIVE"
// @Router /v1/table-sessions/{id}/tracked-items [post]
func (h *SessionsHandler) TrackItems(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.TrackItemsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	lines := make([]service.TrackLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.TrackLine{
			ItemID:    uuid.MustParse(it.ItemID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	items, err := h.svc.TrackItems(c.Request.Context(), actor, id, lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTrackedItemsResponse(items))
}

func (h *SessionsHandler) ListTracked(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListTracked(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTrackedItemsResponse(items))
}

// UpdateTracked godoc
// @Summary Change a tracked quantity; 0 removes the record and returns the stock
// @Tags table-sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param trackedItemId path string true "Tracked item ID"
// @Param body body dto.UpdateTrackedItemRequest true "New quantity"
// @Success 200 {object} dto.TrackedItemResponse
// @Success 204 "Removed"
// @Failure 409 {object} apierror.APIError
// @Router /v1/table-sessions/{id}/tracked-items/{trackedItemId} [patch]
func (h *SessionsHandler) UpdateTracked(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	trackedID, ok := uuidParam(c, "trackedItemId")
	if !ok {
		return
	}
	var req dto.UpdateTrackedItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.UpdateTrackedQuantity(c.Request.Context(), actor, id, trackedID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.NewTrackedItemResponse(item))
}

func (h *SessionsHandler) RemoveTracked(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	trackedID, ok := uuidParam(c, "trackedItemId")
	if !ok {
		return
	}
	if err := h.svc.RemoveTracked(c.Request.Context(), actor, id, trackedID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Availability godoc
// @Summary Cart availability for a session: onHand + already tracked
// @Tags table-sessions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} dto.AvailabilityResponse
// @Router /v1/table-sessions/{id}/availability [get]
func (h *SessionsHandler) Availability(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.svc.Availability(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
