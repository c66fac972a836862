package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/milkroute/delivery-gateway/internal/model"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

type ReportService interface {
	Summary(ctx context.Context, acting *model.User, rng *model.DateRange) (model.DeliveryStats, error)
	CustomerReport(ctx context.Context, acting *model.User, id model.CustomerID, rng *model.DateRange) (*model.CustomerReport, error)
	AgentReport(ctx context.Context, acting *model.User, id model.UserID, rng *model.DateRange) (*model.AgentReport, error)
	DailyReport(ctx context.Context, acting *model.User, date model.Date) (*model.DailyReport, error)
}

type ReportHandler struct {
	svc ReportService
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler, g *Guard) {
	e.GET("/reports/summary", g.Authenticated(h.Summary))
	e.GET("/reports/customer/{id}", g.Authenticated(h.Customer))
	e.GET("/reports/agent/{id}", g.Authenticated(h.Agent))
	e.GET("/reports/daily/{date}", g.Authenticated(h.Daily))
}

// dateRange builds the optional inclusive range from start_date/end_date
// query params. Supplying only one bound is a client error.
func dateRange(ctx *xhttp.RequestCtx) (*model.DateRange, bool) {
	start := query(ctx, "start_date")
	end := query(ctx, "end_date")
	if start == "" && end == "" {
		return nil, true
	}
	if start == "" || end == "" {
		writeError(ctx, xhttp.StatusBadRequest, "start_date and end_date must be supplied together")
		return nil, false
	}
	from, err := model.ParseDate(start)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return nil, false
	}
	to, err := model.ParseDate(end)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return nil, false
	}
	return &model.DateRange{Start: from, End: to}, true
}

func (h *ReportHandler) Summary(ctx *xhttp.RequestCtx) {
	rng, ok := dateRange(ctx)
	if !ok {
		return
	}
	stats, err := h.svc.Summary(ctx, identity(ctx), rng)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}

func (h *ReportHandler) Customer(ctx *xhttp.RequestCtx) {
	rng, ok := dateRange(ctx)
	if !ok {
		return
	}
	report, err := h.svc.CustomerReport(ctx, identity(ctx), model.CustomerID(param(ctx, "id")), rng)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}

func (h *ReportHandler) Agent(ctx *xhttp.RequestCtx) {
	rng, ok := dateRange(ctx)
	if !ok {
		return
	}
	report, err := h.svc.AgentReport(ctx, identity(ctx), model.UserID(param(ctx, "id")), rng)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}

func (h *ReportHandler) Daily(ctx *xhttp.RequestCtx) {
	date, err := model.ParseDate(param(ctx, "date"))
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.DailyReport(ctx, identity(ctx), date)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}
