package services

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/cache"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/railways"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// TicketService owns the ticket lifecycle around the matcher: creation with
// seat geometry validation, listing, and removal.
type TicketService struct {
	Repo        repositories.TicketRepository
	Suggestions cache.SuggestionStore
	RequestID   string
}

// Create validates and stores a ticket for the user. Berth types are
// derived from the seat number when the caller leaves them empty, and
// rejected when they contradict the coach geometry.
func (s TicketService) Create(ctx context.Context, userID int64, ticket models.Ticket) (models.Ticket, error) {
	ticket.UserID = userID
	ticket.Status = models.TicketActive

	if err := normalizeTicket(&ticket); err != nil {
		return models.Ticket{}, err
	}

	existing, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return models.Ticket{}, err
	}
	for _, t := range existing {
		if t.Status == models.TicketActive && t.PNR == ticket.PNR {
			return models.Ticket{}, domain.ConflictError{Resource: "ticket", Msg: "PNR already registered"}
		}
	}

	if err := s.Repo.Insert(ctx, &ticket); err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "create",
		fmt.Sprintf("id=%d pnr=%s train=%s", ticket.ID, ticket.PNR, ticket.TrainNumber))
	return ticket, nil
}

// Get loads a ticket and checks ownership.
func (s TicketService) Get(ctx context.Context, userID, ticketID int64) (models.Ticket, error) {
	t, err := s.Repo.GetByID(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.UserID != userID {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, nil
}

// List returns all tickets of the user, newest first.
func (s TicketService) List(ctx context.Context, userID int64) ([]models.Ticket, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete removes an owned ticket and drops any cached match suggestions.
func (s TicketService) Delete(ctx context.Context, userID, ticketID int64) error {
	if err := s.Repo.DeleteOwned(ctx, ticketID, userID); err != nil {
		return err
	}
	if err := s.Suggestions.Invalidate(ctx, ticketID); err != nil {
		utils.LogError(s.RequestID, "ticket", "invalidate_suggestions", err)
	}
	utils.LogEvent(s.RequestID, "ticket", "delete", fmt.Sprintf("id=%d", ticketID))
	return nil
}

func normalizeTicket(t *models.Ticket) error {
	t.PNR = utils.TrimOrEmpty(t.PNR)
	t.TrainNumber = utils.TrimOrEmpty(t.TrainNumber)
	t.TrainName = utils.NormalizeSpace(t.TrainName)
	t.BoardingStation.Code = utils.NormalizeCode(t.BoardingStation.Code)
	t.DestinationStation.Code = utils.NormalizeCode(t.DestinationStation.Code)
	t.ClassType = models.ClassType(utils.NormalizeCode(string(t.ClassType)))

	if !railways.ValidPNR(t.PNR) {
		return domain.ValidationError{Field: "pnr", Msg: "must be 10 digits"}
	}
	if !railways.ValidTrainNumber(t.TrainNumber) {
		return domain.ValidationError{Field: "train_number", Msg: "must be 5 digits"}
	}
	if !railways.KnownClass(t.ClassType) {
		return domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("unknown class %q", t.ClassType)}
	}
	if t.BoardingStation.Code == "" || t.DestinationStation.Code == "" {
		return domain.ValidationError{Field: "stations", Msg: "boarding and destination are required"}
	}
	if t.BoardingStation.Code == t.DestinationStation.Code {
		return domain.ValidationError{Field: "stations", Msg: "boarding and destination must differ"}
	}
	if t.BoardingStation.Name == "" {
		t.BoardingStation.Name = railways.StationName(t.BoardingStation.Code)
	}
	if t.DestinationStation.Name == "" {
		t.DestinationStation.Name = railways.StationName(t.DestinationStation.Code)
	}

	date, err := utils.NormalizeTravelDate(t.TravelDate)
	if err != nil {
		return domain.ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	t.TravelDate = date

	if len(t.Passengers) == 0 {
		return domain.ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}
	for i := range t.Passengers {
		if err := normalizePassenger(&t.Passengers[i], t.ClassType); err != nil {
			return err
		}
	}
	return nil
}

func normalizePassenger(p *models.Passenger, class models.ClassType) error {
	p.Name = utils.NormalizeSpace(p.Name)
	p.Coach = utils.NormalizeCoach(p.Coach)
	p.BerthType = models.BerthType(utils.NormalizeCode(string(p.BerthType)))
	p.BookingStatus = models.BookingStatus(utils.NormalizeCode(string(p.BookingStatus)))
	p.CurrentStatus = models.BookingStatus(utils.NormalizeCode(string(p.CurrentStatus)))
	if p.CurrentStatus == "" {
		p.CurrentStatus = p.BookingStatus
	}

	if p.Name == "" {
		return domain.ValidationError{Field: "passenger.name", Msg: "is required"}
	}
	if p.BookingStatus == "" {
		return domain.ValidationError{Field: "passenger.booking_status", Msg: "is required"}
	}
	if !p.EffectiveStatus().HoldsSeat() {
		// The chart decides: a waitlisted passenger has no seat to
		// validate, even when the original booking was confirmed.
		p.Coach = ""
		p.SeatNumber = 0
		p.BerthType = ""
		return nil
	}
	if !p.HasSeat() {
		return domain.ValidationError{
			Field: "passenger.seat",
			Msg:   fmt.Sprintf("%s holds a %s booking but has no coach/seat", p.Name, p.BookingStatus),
		}
	}

	cfg, _ := railways.Config(class)
	if prefix := railways.CoachPrefix(class); prefix != "" && !strings.HasPrefix(p.Coach, prefix) {
		return domain.ValidationError{
			Field: "passenger.coach",
			Msg:   fmt.Sprintf("coach %s does not match class %s", p.Coach, class),
		}
	}

	if !cfg.Berthed {
		// Seating classes carry no berth type.
		p.BerthType = ""
		if p.SeatNumber < 1 || p.SeatNumber > cfg.BerthsPerCoach {
			return domain.ValidationError{
				Field: "passenger.seat_number",
				Msg:   fmt.Sprintf("seat %d outside 1-%d for class %s", p.SeatNumber, cfg.BerthsPerCoach, class),
			}
		}
		return nil
	}

	derived, err := railways.BerthForSeat(p.SeatNumber, class)
	if err != nil {
		return err
	}
	if p.BerthType == "" {
		p.BerthType = derived
	} else if p.BerthType != derived {
		return domain.ValidationError{
			Field: "passenger.berth_type",
			Msg:   fmt.Sprintf("seat %d in class %s is %s, not %s", p.SeatNumber, class, derived, p.BerthType),
		}
	}
	return nil
}

// TogethernessScore rates how gathered a ticket's group currently is,
// 100 for everyone in one bay down to 0 for a fully scattered group.
func TogethernessScore(t models.Ticket) float64 {
	seated := seatedPassengers(t.Passengers)
	if len(seated) <= 1 {
		return 100
	}

	coaches := map[string]struct{}{}
	bays := map[string]struct{}{}
	for _, p := range seated {
		coaches[p.Coach] = struct{}{}
		bays[fmt.Sprintf("%s#%d", p.Coach, railways.BayNumber(p.SeatNumber, t.ClassType))] = struct{}{}
	}

	score := 100.0
	score -= 30 * float64(len(coaches)-1)
	score -= 10 * float64(len(bays)-len(coaches))
	if score < 0 {
		score = 0
	}
	return score
}
