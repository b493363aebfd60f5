package rest

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/present/rest/middleware"
	"github.com/totegamma/admindata/internal/present/rest/presenter"
	"github.com/totegamma/admindata/internal/usecase"
)

type Handler struct {
	types    *usecase.TypeUsecase
	entities *usecase.EntityUsecase
	auth     *middleware.AuthMiddleware
}

func NewHandler(
	types *usecase.TypeUsecase,
	entities *usecase.EntityUsecase,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		types:    types,
		entities: entities,
		auth:     auth,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api", h.auth.Identify)
	write := h.auth.RequireWriter

	api.GET("/health", h.handleHealth)

	api.GET(admindata.TypesPath, h.handleListTypes)
	api.POST(admindata.TypesPath, h.handleCreateType, write)
	api.GET(admindata.TypesPath+"/:id", h.handleGetType)
	api.PUT(admindata.TypesPath+"/:id", h.handleUpdateType, write)
	api.DELETE(admindata.TypesPath+"/:id", h.handleDeleteType, write)

	// the static reorder route wins over the :id parameter
	api.POST(admindata.ReorderPath, h.handleReorder, write)
	api.GET(admindata.EntitiesPath+"/:id", h.handleListEntities)
	api.POST(admindata.EntitiesPath+"/:id", h.handleCreateEntity, write)
	api.PUT(admindata.EntitiesPath+"/:id", h.handleUpdateEntity, write)
	api.DELETE(admindata.EntitiesPath+"/:id", h.handleDeleteEntity, write)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleListTypes(c echo.Context) error {
	ctx := c.Request().Context()

	types, err := h.types.List(ctx)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cached(c, types)
}

func (h *Handler) handleCreateType(c echo.Context) error {
	ctx := c.Request().Context()

	var config admindata.TypeConfig
	if err := (&echo.DefaultBinder{}).BindBody(c, &config); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	created, err := h.types.Create(ctx, config)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleGetType(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := h.types.Find(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cached(c, t)
}

func (h *Handler) handleUpdateType(c echo.Context) error {
	ctx := c.Request().Context()

	var patch admindata.TypePatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	updated, err := h.types.Update(ctx, c.Param("id"), patch)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDeleteType(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.types.Delete(ctx, c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Message(c, "type deleted")
}

func (h *Handler) handleListEntities(c echo.Context) error {
	ctx := c.Request().Context()
	typeID := c.Param("id")

	pageStr := c.QueryParam("page")
	limitStr := c.QueryParam("limit")
	if pageStr == "" && limitStr == "" {
		entities, err := h.entities.List(ctx, typeID)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.Cached(c, entities)
	}

	page := 0
	if pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid page parameter")
		}
		page = parsed
	}

	limit := 0
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = parsed
	}

	result, err := h.entities.ListPaginated(ctx, typeID, page, limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cached(c, result)
}

func (h *Handler) handleCreateEntity(c echo.Context) error {
	ctx := c.Request().Context()

	var values admindata.Values
	if err := (&echo.DefaultBinder{}).BindBody(c, &values); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	created, err := h.entities.Create(ctx, c.Param("id"), values)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleUpdateEntity(c echo.Context) error {
	ctx := c.Request().Context()

	var values admindata.Values
	if err := (&echo.DefaultBinder{}).BindBody(c, &values); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	updated, err := h.entities.Update(ctx, c.Param("id"), values)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDeleteEntity(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.entities.Delete(ctx, c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Message(c, "entity deleted")
}

func (h *Handler) handleReorder(c echo.Context) error {
	ctx := c.Request().Context()

	var req admindata.ReorderRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	if err := h.entities.Reorder(ctx, req.Updates); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Message(c, "entities reordered")
}
