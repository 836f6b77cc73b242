package tickets

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viabus/internal/shared/apperr"
	"viabus/internal/shared/utils/response"
	"viabus/internal/users"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// issuerFromContext reads who is acting from the auth middleware values.
// Anonymous requests act as customers.
func issuerFromContext(c *gin.Context) Issuer {
	issuer := Issuer{Role: users.RoleCustomer}
	if role, exists := c.Get("user_role"); exists {
		if r, ok := role.(string); ok && users.IsValidRole(r) {
			issuer.Role = users.Role(r)
		}
	}
	if id, exists := c.Get("user_id"); exists {
		if s, ok := id.(string); ok {
			if parsed, err := uuid.Parse(s); err == nil {
				issuer.UserID = &parsed
			}
		}
	}
	return issuer
}

// CreateTicket handles POST /tickets
func (tc *Controller) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticket, err := tc.service.Create(c.Request.Context(), req, issuerFromContext(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Ticket created successfully", ToTicketResponse(ticket), nil)
}

// GetTicket handles GET /tickets/:id
func (tc *Controller) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("invalid ticket id"))
		return
	}

	ticket, err := tc.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ToTicketResponse(ticket), nil)
}

// GetTicketByPNR handles GET /tickets/pnr/:pnr
func (tc *Controller) GetTicketByPNR(c *gin.Context) {
	pnr := c.Param("pnr")
	if pnr == "" {
		response.RespondError(c, apperr.Validation("pnr is required"))
		return
	}

	ticket, err := tc.service.GetByPNR(c.Request.Context(), pnr)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ToTicketResponse(ticket), nil)
}

// ConfirmTicket handles POST /tickets/:id/confirm
func (tc *Controller) ConfirmTicket(c *gin.Context) {
	tc.transition(c, tc.service.Confirm, "Ticket confirmed successfully")
}

// CancelTicket handles POST /tickets/:id/cancel
func (tc *Controller) CancelTicket(c *gin.Context) {
	tc.transition(c, tc.service.Cancel, "Ticket cancelled successfully")
}

// SuspendTicket handles POST /tickets/:id/suspend
func (tc *Controller) SuspendTicket(c *gin.Context) {
	tc.transition(c, tc.service.Suspend, "Ticket suspended successfully")
}

func (tc *Controller) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID, issuer Issuer) (*Ticket, error), message string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("invalid ticket id"))
		return
	}

	ticket, err := op(c.Request.Context(), id, issuerFromContext(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, message, ToTicketResponse(ticket), nil)
}

// GetAvailableSeats handles GET /routes/:id/seats
func (tc *Controller) GetAvailableSeats(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("invalid route id"))
		return
	}

	availability, err := tc.service.AvailableSeats(c.Request.Context(), routeID, c.Query("from_city"), c.Query("to_city"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Seat availability retrieved successfully", availability, nil)
}

// SearchTickets handles GET /tickets/search
func (tc *Controller) SearchTickets(c *gin.Context) {
	var query SearchTicketsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	tickets, err := tc.service.Search(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", ToTicketResponses(tickets), nil)
}

// GetMyTickets handles GET /tickets/my
func (tc *Controller) GetMyTickets(c *gin.Context) {
	issuer := issuerFromContext(c)
	if issuer.UserID == nil {
		response.RespondError(c, apperr.Forbidden("authentication required"))
		return
	}

	tickets, err := tc.service.GetUserTickets(c.Request.Context(), *issuer.UserID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", ToTicketResponses(tickets), nil)
}
