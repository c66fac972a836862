package handlers

import (
	"github.com/fasthttp/router"

	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

type HealthHandler struct {
	storeDriver string
}

func NewHealthHandler(storeDriver string) *HealthHandler {
	return &HealthHandler{storeDriver: storeDriver}
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.storeDriver,
	})
}
