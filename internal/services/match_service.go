package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/metrics"
	"backend/internal/railways"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// Structural bonuses for one counterpart seat against the requester's
// group. Each category contributes at most once per seat and the total is
// capped, so rating can nudge an ordering but never outrank geometry.
const (
	bonusSameCoach   = 30.0
	bonusSameBay     = 20.0
	bonusAdjacent    = 15.0
	bonusBetterBerth = 10.0

	maxMatchScore = 100.0
)

// TicketFinder is the slice of the ticket repository the matcher needs.
type TicketFinder interface {
	GetByID(ctx context.Context, id int64) (models.Ticket, error)
	FindActiveByTrainAndDate(ctx context.Context, trainNumber, travelDate string, excludeUserID int64) ([]repositories.CandidateTicket, error)
}

// MatchService ranks exchange opportunities for a ticket whose passengers
// are scattered across coaches or bays.
type MatchService struct {
	Tickets   TicketFinder
	Ranker    AIRanker
	Cfg       config.MatchConfig
	RequestID string
}

// FindMatches scans active tickets on the same train and date and returns
// counterpart users ranked by how much an exchange would reunite the
// requester's group. When useAI is set and the AI stage is configured, the
// top results are re-ranked by the model; any AI failure degrades to the
// traditional ordering.
func (s MatchService) FindMatches(ctx context.Context, ticketID int64, useAI bool) (models.MatchResponse, error) {
	started := time.Now()
	defer func() { metrics.MatchDuration.Observe(time.Since(started).Seconds()) }()

	ticket, err := s.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return models.MatchResponse{}, err
	}
	if ticket.Status != models.TicketActive {
		return models.MatchResponse{}, domain.ValidationError{Field: "ticket", Msg: "ticket is not active"}
	}

	seated := seatedPassengers(ticket.Passengers)
	if len(seated) == 0 {
		return models.MatchResponse{}, domain.ValidationError{Field: "ticket", Msg: "ticket has no seated passengers"}
	}

	candidates, err := s.Tickets.FindActiveByTrainAndDate(ctx, ticket.TrainNumber, ticket.TravelDate, ticket.UserID)
	if err != nil {
		return models.MatchResponse{}, err
	}
	metrics.CandidatesScanned.Observe(float64(len(candidates)))

	matches := s.aggregate(ticket, seated, candidates)

	mode := "traditional"
	aiUsed := false
	if useAI && s.Cfg.AIEnabled {
		matches, aiUsed = s.Ranker.Rerank(ctx, ticket, matches)
		if aiUsed {
			mode = "ai"
		}
	}
	metrics.MatchRequestsTotal.WithLabelValues(mode).Inc()

	utils.LogEvent(s.RequestID, "match", "find_matches",
		fmt.Sprintf("ticket=%d candidates=%d matches=%d ai=%t", ticketID, len(candidates), len(matches), aiUsed))

	return models.MatchResponse{
		TicketID:     ticketID,
		Matches:      matches,
		TotalMatches: len(matches),
		AIEnhanced:   aiUsed,
	}, nil
}

// aggregate scores every candidate ticket and collapses them into one
// record per counterpart user, keeping that user's best-scoring ticket.
func (s MatchService) aggregate(ticket models.Ticket, seated []models.Passenger, candidates []repositories.CandidateTicket) []models.MatchRecord {
	byUser := map[int64]models.MatchRecord{}

	for _, cand := range candidates {
		if cand.UserID == ticket.UserID || cand.TicketID == ticket.ID {
			continue
		}
		if cand.ClassType != ticket.ClassType {
			continue
		}
		if !railways.SegmentsOverlap(ticket.TrainNumber,
			ticket.BoardingStation.Code, ticket.DestinationStation.Code,
			cand.BoardingCode, cand.DestinationCode) {
			continue
		}

		seats, benefits := s.scoreCandidate(ticket.ClassType, seated, cand.Passengers)
		if len(seats) == 0 {
			continue
		}

		best := seats[0].SeatScore
		score := best + cand.OwnerRating*s.Cfg.RatingWeight
		if score > maxMatchScore {
			score = maxMatchScore
		}

		rec := models.MatchRecord{
			UserID:             cand.UserID,
			UserName:           cand.OwnerName,
			UserRating:         cand.OwnerRating,
			TicketID:           cand.TicketID,
			MatchScore:         score,
			BenefitDescription: strings.Join(benefits, " • "),
			AvailableSeats:     seats,
		}

		if prev, ok := byUser[cand.UserID]; !ok || rec.MatchScore > prev.MatchScore {
			byUser[cand.UserID] = rec
		}
	}

	out := make([]models.MatchRecord, 0, len(byUser))
	for _, rec := range byUser {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		if out[i].UserRating != out[j].UserRating {
			return out[i].UserRating > out[j].UserRating
		}
		return out[i].UserID < out[j].UserID
	})

	if s.Cfg.MaxResults > 0 && len(out) > s.Cfg.MaxResults {
		out = out[:s.Cfg.MaxResults]
	}
	return out
}

// scoreCandidate scores each exchangeable counterpart seat against the
// requester's group. Seats with zero structural benefit are dropped; the
// returned list is sorted best first and benefits describe the best seat.
func (s MatchService) scoreCandidate(class models.ClassType, seated, candidateSeats []models.Passenger) ([]models.AvailableSeat, []string) {
	worstRank := worstBerthRank(seated)

	seats := []models.AvailableSeat{}
	var bestBenefits []string
	bestScore := -1.0

	for _, p := range seatedPassengers(candidateSeats) {
		score, benefits := scoreSeat(class, seated, p, worstRank)
		if score <= 0 {
			continue
		}
		seats = append(seats, models.AvailableSeat{
			PassengerID:   p.ID,
			PassengerName: p.Name,
			Coach:         p.Coach,
			SeatNumber:    p.SeatNumber,
			BerthType:     p.BerthType,
			SeatScore:     score,
		})
		if score > bestScore {
			bestScore = score
			bestBenefits = benefits
		}
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].SeatScore != seats[j].SeatScore {
			return seats[i].SeatScore > seats[j].SeatScore
		}
		return seats[i].PassengerID < seats[j].PassengerID
	})
	return seats, bestBenefits
}

// scoreSeat rates one counterpart seat against the requester's seated
// group. Within each category the best pairing counts once; categories
// then add up.
func scoreSeat(class models.ClassType, seated []models.Passenger, cand models.Passenger, worstRank int) (float64, []string) {
	var sameCoach, sameBay, adjacent bool

	for _, own := range seated {
		if !strings.EqualFold(own.Coach, cand.Coach) {
			continue
		}
		sameCoach = true
		if railways.SameBay(own.SeatNumber, cand.SeatNumber, class) {
			sameBay = true
		} else if abs(own.SeatNumber-cand.SeatNumber) == 1 {
			// Neighbouring seat numbers across a bay wall still put the
			// group within arm's reach.
			adjacent = true
		}
	}

	score := 0.0
	benefits := []string{}
	if sameCoach {
		score += bonusSameCoach
		benefits = append(benefits, "Same coach as your group")
	}
	if sameBay {
		score += bonusSameBay
		benefits = append(benefits, "Same bay as your group")
	}
	if adjacent {
		score += bonusAdjacent
		benefits = append(benefits, "Adjacent to your group")
	}
	// A better berth only sweetens a seat that already brings the group
	// closer; on its own it does not reunite anyone.
	if score > 0 && worstRank > 0 && railways.BerthRank(cand.BerthType) > worstRank {
		score += bonusBetterBerth
		benefits = append(benefits, "Better berth position")
	}
	if score > maxMatchScore {
		score = maxMatchScore
	}
	return score, benefits
}

// seatedPassengers filters to passengers who actually hold a seat the
// geometry can reason about. The chart status decides: a confirmed
// booking dropped to waitlist no longer guarantees its seat.
func seatedPassengers(passengers []models.Passenger) []models.Passenger {
	out := []models.Passenger{}
	for _, p := range passengers {
		if p.EffectiveStatus().HoldsSeat() && p.HasSeat() {
			out = append(out, p)
		}
	}
	return out
}

func worstBerthRank(seated []models.Passenger) int {
	worst := 0
	for _, p := range seated {
		r := railways.BerthRank(p.BerthType)
		if r == 0 {
			continue
		}
		if worst == 0 || r < worst {
			worst = r
		}
	}
	return worst
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
