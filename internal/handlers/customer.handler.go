package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/milkroute/delivery-gateway/internal/model"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

type CustomerService interface {
	Create(ctx context.Context, acting *model.User, req model.CustomerUpsertRequest) (*model.Customer, error)
	Get(ctx context.Context, id model.CustomerID) (*model.Customer, error)
	GetByMobile(ctx context.Context, mobile string) (*model.Customer, error)
	List(ctx context.Context, acting *model.User) ([]*model.Customer, error)
	Update(ctx context.Context, acting *model.User, id model.CustomerID, req model.CustomerUpsertRequest) (*model.Customer, error)
	Delete(ctx context.Context, acting *model.User, id model.CustomerID) error
}

type CustomerHandler struct {
	svc CustomerService
}

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler, g *Guard) {
	e.POST("/customers", g.Authenticated(h.Create))
	e.GET("/customers", g.Authenticated(h.List))
	e.GET("/customers/{id}", g.Authenticated(h.Get))
	e.PUT("/customers/{id}", g.Authenticated(h.Update))
	e.DELETE("/customers/{id}", g.Authenticated(h.Delete))
}

func (h *CustomerHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.CustomerUpsertRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.svc.Create(ctx, identity(ctx), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

// List returns the roster, or a single customer when a mobile query is
// given. Mobile lookup is open to any authenticated identity so agents can
// find the household they are standing in front of.
func (h *CustomerHandler) List(ctx *xhttp.RequestCtx) {
	if mobile := query(ctx, "mobile"); mobile != "" {
		customer, err := h.svc.GetByMobile(ctx, mobile)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, customer)
		return
	}
	customers, err := h.svc.List(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, customers)
}

func (h *CustomerHandler) Get(ctx *xhttp.RequestCtx) {
	customer, err := h.svc.Get(ctx, model.CustomerID(param(ctx, "id")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, customer)
}

func (h *CustomerHandler) Update(ctx *xhttp.RequestCtx) {
	var req model.CustomerUpsertRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	updated, err := h.svc.Update(ctx, identity(ctx), model.CustomerID(param(ctx, "id")), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, updated)
}

func (h *CustomerHandler) Delete(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, identity(ctx), model.CustomerID(param(ctx, "id"))); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
