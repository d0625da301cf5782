package services

import (
	"context"
	"testing"

	"backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
)

type fakeTicketFinder struct {
	tickets    map[int64]models.Ticket
	candidates []repositories.CandidateTicket
}

func (f fakeTicketFinder) GetByID(_ context.Context, id int64) (models.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, nil
}

func (f fakeTicketFinder) FindActiveByTrainAndDate(_ context.Context, _, _ string, _ int64) ([]repositories.CandidateTicket, error) {
	return f.candidates, nil
}

func seated(ticketID int64, coach string, seat int, berth models.BerthType) models.Passenger {
	return models.Passenger{
		ID: int64(seat), TicketID: ticketID, Name: "P", Age: 30, Gender: "M",
		Coach: coach, SeatNumber: seat, BerthType: berth,
		BookingStatus: models.StatusConfirmed, CurrentStatus: models.StatusConfirmed,
	}
}

func testConfig() config.MatchConfig {
	return config.MatchConfig{
		RatingWeight:      2.0,
		TraditionalWeight: 0.6,
		AIWeight:          0.4,
		AITopN:            5,
		BatchGroupSize:    3,
	}
}

// Scattered group on the Rajdhani: two passengers in B2 bay 6, one in B3.
func scatteredTicket() models.Ticket {
	return models.Ticket{
		ID: 1, UserID: 1, PNR: "4528176395",
		TrainNumber: "12301", TrainName: "HOWRAH RAJDHANI",
		TravelDate:         "2026-09-15",
		BoardingStation:    models.Station{Code: "NDLS", Name: "New Delhi"},
		DestinationStation: models.Station{Code: "HWH", Name: "Howrah Junction"},
		ClassType:          models.ClassThreeTierAC,
		Status:             models.TicketActive,
		Passengers: []models.Passenger{
			seated(1, "B2", 45, models.BerthMiddle),
			seated(1, "B2", 47, models.BerthSideLower),
			seated(1, "B3", 12, models.BerthLower),
		},
	}
}

func candidateSet() []repositories.CandidateTicket {
	return []repositories.CandidateTicket{
		{
			TicketID: 2, UserID: 2, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "Asha", OwnerRating: 4.0,
			Passengers: []models.Passenger{
				seated(2, "B2", 46, models.BerthUpper),
				seated(2, "B3", 11, models.BerthUpper),
				seated(2, "B3", 9, models.BerthLower),
			},
		},
		{
			TicketID: 3, UserID: 3, ClassType: models.ClassThreeTierAC,
			BoardingCode: "CNB", DestinationCode: "HWH",
			OwnerName: "Ravi", OwnerRating: 3.0,
			Passengers: []models.Passenger{
				seated(3, "B2", 44, models.BerthLower),
			},
		},
		{
			// requester's own ticket must never match
			TicketID: 1, UserID: 1, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			Passengers:   []models.Passenger{seated(1, "B2", 45, models.BerthMiddle)},
		},
		{
			// waitlisted counterpart has nothing to offer
			TicketID: 4, UserID: 4, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName:    "Waitlisted", OwnerRating: 5.0,
			Passengers: []models.Passenger{{
				ID: 99, TicketID: 4, Name: "W", BookingStatus: models.StatusWaitlisted,
			}},
		},
		{
			// different class never matches
			TicketID: 6, UserID: 6, ClassType: models.ClassSleeper,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName:    "OtherClass", OwnerRating: 5.0,
			Passengers:   []models.Passenger{seated(6, "S2", 45, models.BerthMiddle)},
		},
		{
			// far away seat, no structural benefit at all
			TicketID: 7, UserID: 7, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName:    "FarAway", OwnerRating: 5.0,
			Passengers:   []models.Passenger{seated(7, "B7", 1, models.BerthLower)},
		},
	}
}

func newTestMatchService(t models.Ticket, cands []repositories.CandidateTicket) MatchService {
	return MatchService{
		Tickets: fakeTicketFinder{
			tickets:    map[int64]models.Ticket{t.ID: t},
			candidates: cands,
		},
		Cfg:       testConfig(),
		RequestID: "test",
	}
}

func TestFindMatchesRajdhaniFixture(t *testing.T) {
	svc := newTestMatchService(scatteredTicket(), candidateSet())

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AIEnhanced {
		t.Fatal("AI must not run when disabled")
	}
	if resp.TotalMatches != 2 {
		t.Fatalf("want 2 matches, got %d: %+v", resp.TotalMatches, resp.Matches)
	}

	first, second := resp.Matches[0], resp.Matches[1]
	if first.UserID != 2 || second.UserID != 3 {
		t.Fatalf("wrong order: got users %d, %d", first.UserID, second.UserID)
	}

	// User 2's best seat is B3/9: same coach 30 + same bay 20 + lower
	// berth beats the requester's middle 10, plus rating 4.0 * 2.0.
	if first.MatchScore != 68 {
		t.Fatalf("user 2 score %v want 68", first.MatchScore)
	}
	// User 3 offers B2/44: 30 + 20 + 10, plus rating 3.0 * 2.0.
	if second.MatchScore != 66 {
		t.Fatalf("user 3 score %v want 66", second.MatchScore)
	}

	if len(first.AvailableSeats) != 3 {
		t.Fatalf("user 2 should offer 3 scored seats, got %d", len(first.AvailableSeats))
	}
	if first.AvailableSeats[0].SeatNumber != 9 {
		t.Fatalf("user 2 best seat should be 9, got %d", first.AvailableSeats[0].SeatNumber)
	}
	if first.BenefitDescription == "" {
		t.Fatal("benefit description must not be empty")
	}
}

func TestFindMatchesIsDeterministic(t *testing.T) {
	svc := newTestMatchService(scatteredTicket(), candidateSet())

	base, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.FindMatches(context.Background(), 1, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.Matches) != len(base.Matches) {
			t.Fatalf("run %d: match count changed", i)
		}
		for j := range base.Matches {
			if again.Matches[j].UserID != base.Matches[j].UserID ||
				again.Matches[j].MatchScore != base.Matches[j].MatchScore {
				t.Fatalf("run %d: ordering changed at %d", i, j)
			}
		}
	}
}

func TestFindMatchesTieBreaksByRatingThenUserID(t *testing.T) {
	ticket := scatteredTicket()
	cands := []repositories.CandidateTicket{
		{
			TicketID: 20, UserID: 20, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "Low", OwnerRating: 2.0,
			Passengers: []models.Passenger{seated(20, "B2", 41, models.BerthLower)},
		},
		{
			TicketID: 10, UserID: 10, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "High", OwnerRating: 2.0,
			Passengers: []models.Passenger{seated(10, "B2", 41, models.BerthLower)},
		},
	}
	svc := newTestMatchService(ticket, cands)

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("want 2 matches, got %d", len(resp.Matches))
	}
	if resp.Matches[0].UserID != 10 || resp.Matches[1].UserID != 20 {
		t.Fatalf("equal scores must order by user id: got %d, %d",
			resp.Matches[0].UserID, resp.Matches[1].UserID)
	}
}

func TestFindMatchesRatingCannotOutrankGeometry(t *testing.T) {
	ticket := scatteredTicket()
	cands := []repositories.CandidateTicket{
		{
			// same coach only, perfect rating
			TicketID: 30, UserID: 30, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "Popular", OwnerRating: 5.0,
			Passengers: []models.Passenger{seated(30, "B2", 33, models.BerthLower)},
		},
		{
			// same coach and same bay, no reviews yet
			TicketID: 31, UserID: 31, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "NewUser", OwnerRating: 0,
			Passengers: []models.Passenger{seated(31, "B2", 41, models.BerthLower)},
		},
	}
	svc := newTestMatchService(ticket, cands)

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Matches[0].UserID != 31 {
		t.Fatal("a same-bay offer must outrank a same-coach offer regardless of rating")
	}
}

func TestAdjacentSeatAcrossBayWall(t *testing.T) {
	ticket := scatteredTicket()
	ticket.Passengers = []models.Passenger{seated(1, "B2", 41, models.BerthLower)}

	cands := []repositories.CandidateTicket{{
		TicketID: 50, UserID: 50, ClassType: models.ClassThreeTierAC,
		BoardingCode: "NDLS", DestinationCode: "HWH",
		OwnerName: "NextDoor", OwnerRating: 0,
		// seat 40 sits in bay 5, one wall away from seat 41 in bay 6
		Passengers: []models.Passenger{seated(50, "B2", 40, models.BerthSideUpper)},
	}}
	svc := newTestMatchService(ticket, cands)

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalMatches != 1 {
		t.Fatalf("adjacent seat should match: %+v", resp.Matches)
	}
	// same coach 30 + adjacent 15, no bay share, side upper is no berth
	// improvement over a lower.
	if got := resp.Matches[0].MatchScore; got != 45 {
		t.Fatalf("adjacent score %v want 45", got)
	}
}

func TestFindMatchesFiltersDisjointJourneys(t *testing.T) {
	// Requester only rides the first leg of the Rajdhani.
	ticket := scatteredTicket()
	ticket.BoardingStation = models.Station{Code: "NDLS"}
	ticket.DestinationStation = models.Station{Code: "CNB"}

	cands := []repositories.CandidateTicket{
		{
			// boards after the requester alights
			TicketID: 40, UserID: 40, ClassType: models.ClassThreeTierAC,
			BoardingCode: "GAYA", DestinationCode: "HWH",
			OwnerName: "LateLeg", OwnerRating: 5.0,
			Passengers: []models.Passenger{seated(40, "B2", 44, models.BerthLower)},
		},
		{
			// shares the NDLS-CNB leg
			TicketID: 41, UserID: 41, ClassType: models.ClassThreeTierAC,
			BoardingCode: "NDLS", DestinationCode: "HWH",
			OwnerName: "FullRoute", OwnerRating: 1.0,
			Passengers: []models.Passenger{seated(41, "B2", 44, models.BerthLower)},
		},
	}
	svc := newTestMatchService(ticket, cands)

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalMatches != 1 || resp.Matches[0].UserID != 41 {
		t.Fatalf("only the overlapping journey should match: %+v", resp.Matches)
	}
}

func TestFindMatchesExcludesChartDroppedCandidates(t *testing.T) {
	cands := []repositories.CandidateTicket{{
		TicketID: 60, UserID: 60, ClassType: models.ClassThreeTierAC,
		BoardingCode: "NDLS", DestinationCode: "HWH",
		OwnerName: "Dropped", OwnerRating: 4.0,
		Passengers: []models.Passenger{{
			ID: 601, TicketID: 60, Name: "D", Age: 40, Gender: "M",
			Coach: "B2", SeatNumber: 46, BerthType: models.BerthUpper,
			// booked confirmed, but the chart moved to waitlist
			BookingStatus: models.StatusConfirmed,
			CurrentStatus: models.StatusWaitlisted,
		}},
	}}
	svc := newTestMatchService(scatteredTicket(), cands)

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalMatches != 0 {
		t.Fatalf("a chart-dropped seat must not be offered: %+v", resp.Matches)
	}
}

func TestFindMatchesRejectsInactiveAndSeatless(t *testing.T) {
	done := scatteredTicket()
	done.Status = models.TicketCompleted
	svc := newTestMatchService(done, nil)
	if _, err := svc.FindMatches(context.Background(), 1, false); !domain.IsValidation(err) {
		t.Fatalf("completed ticket should fail validation, got %v", err)
	}

	wl := scatteredTicket()
	for i := range wl.Passengers {
		wl.Passengers[i].BookingStatus = models.StatusWaitlisted
		wl.Passengers[i].Coach = ""
		wl.Passengers[i].SeatNumber = 0
	}
	svc = newTestMatchService(wl, nil)
	if _, err := svc.FindMatches(context.Background(), 1, false); !domain.IsValidation(err) {
		t.Fatalf("seatless ticket should fail validation, got %v", err)
	}

	svc = newTestMatchService(scatteredTicket(), nil)
	if _, err := svc.FindMatches(context.Background(), 404, false); !domain.IsNotFound(err) {
		t.Fatalf("missing ticket should be not found, got %v", err)
	}
}

func TestMaxResultsTrimsList(t *testing.T) {
	svc := newTestMatchService(scatteredTicket(), candidateSet())
	svc.Cfg.MaxResults = 1

	resp, err := svc.FindMatches(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalMatches != 1 || resp.Matches[0].UserID != 2 {
		t.Fatalf("trimming kept the wrong match: %+v", resp.Matches)
	}
}

func TestScoreSeatSameCoachStrictlyIncreasesScore(t *testing.T) {
	group := []models.Passenger{seated(1, "B2", 45, models.BerthMiddle)}
	worst := worstBerthRank(group)

	inCoach, _ := scoreSeat(models.ClassThreeTierAC, group, seated(2, "B2", 33, models.BerthUpper), worst)
	elsewhere, _ := scoreSeat(models.ClassThreeTierAC, group, seated(2, "B5", 33, models.BerthUpper), worst)
	if inCoach <= elsewhere {
		t.Fatalf("same coach must score strictly higher: %v vs %v", inCoach, elsewhere)
	}
}

func TestTogethernessScore(t *testing.T) {
	together := scatteredTicket()
	together.Passengers = []models.Passenger{
		seated(1, "B2", 41, models.BerthLower),
		seated(1, "B2", 42, models.BerthMiddle),
	}
	if got := TogethernessScore(together); got != 100 {
		t.Fatalf("same-bay group scored %v want 100", got)
	}

	scattered := scatteredTicket()
	// two coaches (-30) and no extra bays beyond one per coach (45 and 47
	// share B2 bay 6, 12 sits alone in B3 bay 2)
	if got := TogethernessScore(scattered); got != 70 {
		t.Fatalf("scattered group scored %v want 70", got)
	}

	solo := scatteredTicket()
	solo.Passengers = solo.Passengers[:1]
	if got := TogethernessScore(solo); got != 100 {
		t.Fatalf("solo passenger scored %v want 100", got)
	}
}
