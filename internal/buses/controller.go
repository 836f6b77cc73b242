package buses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viabus/internal/shared/apperr"
	"viabus/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBus handles POST /buses
func (bc *Controller) CreateBus(c *gin.Context) {
	var req CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	bus, err := bc.service.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Bus registered successfully", bus, nil)
}

// GetBus handles GET /buses/:id
func (bc *Controller) GetBus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("invalid bus id"))
		return
	}

	bus, err := bc.service.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bus retrieved successfully", bus, nil)
}

// ListBuses handles GET /buses
func (bc *Controller) ListBuses(c *gin.Context) {
	buses, err := bc.service.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Buses retrieved successfully", buses, nil)
}
