package routes

import (
	"net/http"
	"strconv"

	"viabus/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateRoute handles POST /api/v1/routes
func (c *Controller) CreateRoute(ctx *gin.Context) {
	var req CreateRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := c.service.Create(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Route created successfully", route, nil)
}

// GetRoute handles GET /api/v1/routes/:id
func (c *Controller) GetRoute(ctx *gin.Context) {
	routeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid route ID", nil, nil)
		return
	}

	route, err := c.service.Get(ctx.Request.Context(), routeID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Route retrieved successfully", route, nil)
}

// ListRoutes handles GET /api/v1/routes
func (c *Controller) ListRoutes(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	activeOnly := ctx.DefaultQuery("active", "true") == "true"

	routes, totalCount, err := c.service.List(ctx.Request.Context(), RouteListQuery{
		Page:       page,
		Limit:      limit,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((totalCount + int64(limit) - 1) / int64(limit))
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Routes retrieved successfully", RouteListResponse{
		Routes:     routes,
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil)
}

// SearchRoutes handles GET /api/v1/routes/search
func (c *Controller) SearchRoutes(ctx *gin.Context) {
	var query SearchRoutesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	results, err := c.service.Search(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Routes retrieved successfully", gin.H{
		"routes": results,
		"count":  len(results),
	}, nil)
}

// UpdateRoute handles PATCH /api/v1/routes/:id
func (c *Controller) UpdateRoute(ctx *gin.Context) {
	routeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid route ID", nil, nil)
		return
	}

	var req UpdateRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := c.service.Update(ctx.Request.Context(), routeID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Route updated successfully", route, nil)
}
