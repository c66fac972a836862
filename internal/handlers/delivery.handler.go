package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/milkroute/delivery-gateway/internal/model"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

type DeliveryService interface {
	Create(ctx context.Context, req model.DeliveryCreateRequest) (*model.Delivery, error)
	Update(ctx context.Context, acting *model.User, id model.DeliveryID, req model.DeliveryUpdateRequest) (*model.Delivery, error)
	Worklist(ctx context.Context, acting *model.User, date model.Date, agent model.UserID) ([]model.DeliveryView, error)
	ListByCustomer(ctx context.Context, id model.CustomerID) ([]model.DeliveryView, error)
	ListAll(ctx context.Context) ([]model.DeliveryView, error)
}

type DeliveryHandler struct {
	svc DeliveryService
}

func NewDeliveryHandler(svc DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc}
}

func RegisterDeliveryRoutes(e *router.Group, h *DeliveryHandler, g *Guard) {
	e.POST("/deliveries", g.Authenticated(h.Create))
	e.PUT("/deliveries/{id}", g.Authenticated(h.Update))
	e.GET("/deliveries", g.Authenticated(h.List))
	e.GET("/deliveries/daily", g.Authenticated(h.Daily))
	e.GET("/deliveries/customer/{id}", g.Authenticated(h.ByCustomer))
}

func (h *DeliveryHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.DeliveryCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	// An agent records deliveries under their own identity no matter what
	// the payload claims.
	acting := identity(ctx)
	if acting.Role == model.RoleDeliveryAgent {
		req.AgentID = acting.ID
	}
	created, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *DeliveryHandler) Update(ctx *xhttp.RequestCtx) {
	var req model.DeliveryUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	updated, err := h.svc.Update(ctx, identity(ctx), model.DeliveryID(param(ctx, "id")), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, updated)
}

func (h *DeliveryHandler) List(ctx *xhttp.RequestCtx) {
	views, err := h.svc.ListAll(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, views)
}

// Daily serves the day's worklist. The date defaults to today; agents are
// pinned to their own entries by the service.
func (h *DeliveryHandler) Daily(ctx *xhttp.RequestCtx) {
	date := model.Today()
	if v := query(ctx, "date"); v != "" {
		parsed, err := model.ParseDate(v)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}
	views, err := h.svc.Worklist(ctx, identity(ctx), date, model.UserID(query(ctx, "agent_id")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, views)
}

func (h *DeliveryHandler) ByCustomer(ctx *xhttp.RequestCtx) {
	views, err := h.svc.ListByCustomer(ctx, model.CustomerID(param(ctx, "id")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, views)
}
