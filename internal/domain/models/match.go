package models

// AvailableSeat is one exchangeable seat offered by a counterpart user.
type AvailableSeat struct {
	PassengerID   int64     `json:"passenger_id"`
	PassengerName string    `json:"passenger_name"`
	Coach         string    `json:"coach"`
	SeatNumber    int       `json:"seat_number"`
	BerthType     BerthType `json:"berth_type,omitempty"`
	SeatScore     float64   `json:"seat_score"`
}

// MatchRecord is one ranked exchange opportunity against a counterpart
// user. Computed on demand, never persisted by the matching core.
type MatchRecord struct {
	UserID             int64           `json:"user_id"`
	UserName           string          `json:"user_name"`
	UserRating         float64         `json:"user_rating"`
	TicketID           int64           `json:"ticket_id"`
	MatchScore         float64         `json:"match_score"`
	BenefitDescription string          `json:"benefit_description"`
	AvailableSeats     []AvailableSeat `json:"available_seats"`

	// AI enhancement fields, populated only when the re-ranking stage ran
	// and scored this record.
	TraditionalScore float64 `json:"traditional_score,omitempty"`
	AIScore          float64 `json:"ai_score,omitempty"`
	AIConfidence     float64 `json:"ai_confidence,omitempty"`
	AIReasoning      string  `json:"ai_reasoning,omitempty"`
	AIEnhanced       bool    `json:"ai_enhanced"`
}

// MatchResponse is the result of one findMatches call.
type MatchResponse struct {
	TicketID     int64         `json:"ticket_id"`
	Matches      []MatchRecord `json:"matches"`
	TotalMatches int           `json:"total_matches"`
	AIEnhanced   bool          `json:"ai_enhanced"`
}

// BatchTicketResult is the per-ticket entry of a batch run. Error is set
// when this ticket failed; sibling tickets are unaffected.
type BatchTicketResult struct {
	Matches      []MatchRecord `json:"matches"`
	TotalMatches int           `json:"total_matches"`
	AIEnhanced   bool          `json:"ai_enhanced"`
	Error        string        `json:"error,omitempty"`
}

// BatchMatchResponse maps each requested ticket id to its result.
type BatchMatchResponse struct {
	TicketsProcessed int                          `json:"tickets_processed"`
	AIEnhanced       bool                         `json:"ai_enhanced"`
	Results          map[string]BatchTicketResult `json:"results"`
}
