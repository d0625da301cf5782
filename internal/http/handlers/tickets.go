package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"
)

func ticketService(c *gin.Context) services.TicketService {
	return services.TicketService{
		Repo:        repositories.TicketRepository{},
		Suggestions: cache.SuggestionStore{Client: config.RDB},
		RequestID:   middleware.GetRequestID(c),
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_id", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// CreateTicket registers a PNR with its passengers for the current user.
func CreateTicket(c *gin.Context) {
	var ticket models.Ticket
	if !BindJSONOrError(c, &ticket) {
		return
	}

	created, err := ticketService(c).Create(c.Request.Context(), middleware.CurrentUserID(c), ticket)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ticket":             created,
		"togetherness_score": services.TogethernessScore(created),
	})
}

// ListTickets returns the current user's tickets.
func ListTickets(c *gin.Context) {
	tickets, err := ticketService(c).List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "total": len(tickets)})
}

// GetTicket returns one owned ticket with its togetherness score.
func GetTicket(c *gin.Context) {
	id, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	ticket, err := ticketService(c).Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":             ticket,
		"togetherness_score": services.TogethernessScore(ticket),
		"is_scattered":       ticket.IsScattered(),
	})
}

// DeleteTicket removes an owned ticket.
func DeleteTicket(c *gin.Context) {
	id, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	if err := ticketService(c).Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ticket deleted"})
}

// GetTicketETicketPDF streams the printable e-ticket (inline).
func GetTicketETicketPDF(c *gin.Context) {
	id, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}

	svc := services.DocsService{
		Tickets:   repositories.TicketRepository{},
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateETicket(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
