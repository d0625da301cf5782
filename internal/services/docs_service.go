package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/railways"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// DocsService renders printable e-tickets.
type DocsService struct {
	Tickets   repositories.TicketRepository
	RequestID string
	Loader    func(context.Context, int64) (models.Ticket, error)
}

// GenerateETicket renders the ticket with its passenger chart as a PDF.
func (s DocsService) GenerateETicket(ctx context.Context, userID, ticketID int64) ([]byte, string, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	if userID > 0 && ticket.UserID != userID {
		return nil, "", domain.NotFoundError{Resource: "ticket"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("ticket_id=%d", ticketID))
	return buildETicketPDF(ticket)
}

func (s DocsService) loadTicket(ctx context.Context, ticketID int64) (models.Ticket, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ticketID)
	}
	return s.Tickets.GetByID(ctx, ticketID)
}

func buildETicketPDF(t models.Ticket) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR           : %s", safe(t.PNR, "-")),
		fmt.Sprintf("Train         : %s %s", safe(t.TrainNumber, "-"), safe(t.TrainName, "")),
		fmt.Sprintf("Class / Quota : %s / %s", safe(string(t.ClassType), "-"), safe(t.Quota, "GN")),
		fmt.Sprintf("Journey       : %s (%s) -> %s (%s)",
			safe(t.BoardingStation.Name, "-"), safe(t.BoardingStation.Code, "-"),
			safe(t.DestinationStation.Name, "-"), safe(t.DestinationStation.Code, "-")),
		fmt.Sprintf("Travel Date   : %s", safe(t.TravelDate, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, p := range t.Passengers {
		seat := "not assigned"
		if p.HasSeat() {
			seat = fmt.Sprintf("%s / %d", p.Coach, p.SeatNumber)
			if p.BerthType != "" {
				seat += fmt.Sprintf(" (%s)", p.BerthType)
			}
		}
		pdf.Cell(0, 6, fmt.Sprintf("%d) %s  %d/%s  %s  [%s]",
			i+1, safe(p.Name, "-"), p.Age, safe(p.Gender, "-"), seat, safe(string(p.CurrentStatus), "-")))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "Note: carry a valid photo ID during the journey."
	if t.IsScattered() {
		score := TogethernessScore(t)
		note = fmt.Sprintf("Note: your group is split across %d coaches (togetherness %.0f/100). "+
			"Open the app to find seat exchange matches. Carry a valid photo ID during the journey.",
			len(t.Coaches()), score)
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", safe(t.PNR, "ticket"), safeFilenamePart(t.TrainNumber))
	return buf.Bytes(), filename, nil
}

// CoachChart renders the seat map of one coach class for the picker UI.
func (s DocsService) CoachChart(class models.ClassType) (railways.CoachLayout, error) {
	return railways.Layout(class)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(v string) string {
	v = strings.TrimSpace(v)
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-")
	return replacer.Replace(v)
}
