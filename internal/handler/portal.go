package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/middleware"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/query"
	"github.com/iliyamo/job-portal-manager/internal/service"
)

var errPortalNotFound = apperr.NotFound("Portal not found")

// PortalHandler serves the authenticated portal endpoints. Every handler
// scopes its work to the user id placed in the context by JWTAuth.
type PortalHandler struct {
	Portals *service.PortalService
}

func NewPortalHandler(p *service.PortalService) *PortalHandler {
	return &PortalHandler{Portals: p}
}

type createPortalReq struct {
	Category string `json:"category"`
	Link     string `json:"link"`
}
type createPortalResp struct {
	Message  string `json:"message"`
	PortalID uint64 `json:"portal_id"`
}
type updatePortalReq struct {
	Category *string `json:"category"`
	Link     *string `json:"link"`
}
type messageResp struct {
	Message string `json:"message"`
}

// Create: POST /portals
func (h *PortalHandler) Create(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	var req createPortalReq
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	id, err := h.Portals.Create(ctx, uid, req.Category, req.Link)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createPortalResp{Message: "Portal created successfully", PortalID: id})
}

// List: GET /portals
func (h *PortalHandler) List(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	portals, err := h.Portals.List(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, portals)
}

// Get: GET /portals/:id
func (h *PortalHandler) Get(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := portalID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Portals.Get(ctx, uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update: PUT /portals/:id with any of {category, link}.
func (h *PortalHandler) Update(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := portalID(c)
	if err != nil {
		return err
	}
	var req updatePortalReq
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	patch := model.PortalPatch{Category: req.Category, Link: req.Link}
	if err := h.Portals.Update(ctx, uid, id, patch); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResp{Message: "Portal updated successfully"})
}

// Delete: DELETE /portals/:id
func (h *PortalHandler) Delete(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := portalID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Portals.Delete(ctx, uid, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResp{Message: "Portal deleted successfully"})
}

// Categories: GET /categories
func (h *PortalHandler) Categories(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cats, err := h.Portals.Categories(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// Search: GET /search?keyword=&category=&date_range=&exclude_hybrid=&exclude_onsite=
// returns the generated query and the search engine URL for it.
func (h *PortalHandler) Search(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	req := service.SearchRequest{
		Keyword:       c.QueryParam("keyword"),
		Category:      c.QueryParam("category"),
		DateRange:     query.ParseDateRange(c.QueryParam("date_range")),
		ExcludeHybrid: queryBool(c, "exclude_hybrid"),
		ExcludeOnsite: queryBool(c, "exclude_onsite"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Portals.Search(ctx, uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func callerID(c echo.Context) (uint64, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, apperr.Auth("Authorization token required")
	}
	return uid, nil
}

// portalID parses :id. Anything that is not a positive integer cannot name
// a portal, so it is reported as not found.
func portalID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errPortalNotFound
	}
	return id, nil
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}
