package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/milkroute/delivery-gateway/internal/model"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (string, *model.User, error)
	BootstrapAdmin(ctx context.Context, password string) (*model.User, error)
	Register(ctx context.Context, acting *model.User, req model.UserCreateRequest) (*model.User, error)
	ListUsers(ctx context.Context, acting *model.User) ([]*model.User, error)
}

type AuthHandler struct {
	svc AuthService

	// bootstrapPassword is the credential handed to the very first admin,
	// taken from config so deployments can override the stock default.
	bootstrapPassword string
}

func NewAuthHandler(svc AuthService, bootstrapPassword string) *AuthHandler {
	return &AuthHandler{svc: svc, bootstrapPassword: bootstrapPassword}
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, g *Guard) {
	e.POST("/auth/login", h.Login)
	e.POST("/auth/init-admin", h.InitAdmin)
	e.POST("/auth/register", g.Authenticated(h.Register))
	e.GET("/auth/me", g.Authenticated(h.Me))
	e.GET("/auth/users", g.Authenticated(h.ListUsers))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	signed, user, err := h.svc.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loginResponse{Token: signed, User: user})
}

func (h *AuthHandler) InitAdmin(ctx *xhttp.RequestCtx) {
	admin, err := h.svc.BootstrapAdmin(ctx, h.bootstrapPassword)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, admin)
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req model.UserCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.svc.Register(ctx, identity(ctx), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *AuthHandler) Me(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, identity(ctx))
}

func (h *AuthHandler) ListUsers(ctx *xhttp.RequestCtx) {
	users, err := h.svc.ListUsers(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, users)
}
