// Package railways holds Indian Railways reference data and the pure seat
// geometry helpers shared by match scoring and coach visualization. The
// berth mapping here must stay identical for both consumers.
package railways

import (
	"fmt"

	"backend/internal/domain"
	"backend/internal/domain/models"
)

// ClassConfig describes the physical layout of one coach class.
type ClassConfig struct {
	Name           string
	BerthsPerCoach int
	BaySize        int
	HasMiddle      bool
	// Berthed is false for seat-only classes (CC, EC, 2S) whose positions
	// have no berth orientation.
	Berthed bool
}

var classConfigs = map[models.ClassType]ClassConfig{
	models.ClassSleeper:       {Name: "Sleeper", BerthsPerCoach: 72, BaySize: 8, HasMiddle: true, Berthed: true},
	models.ClassThreeTierAC:   {Name: "Third AC", BerthsPerCoach: 64, BaySize: 8, HasMiddle: true, Berthed: true},
	models.ClassTwoTierAC:     {Name: "Second AC", BerthsPerCoach: 48, BaySize: 6, Berthed: true},
	models.ClassFirstAC:       {Name: "First AC", BerthsPerCoach: 24, BaySize: 4, Berthed: true},
	models.ClassChairCar:      {Name: "Chair Car", BerthsPerCoach: 78, BaySize: 5},
	models.ClassExecChair:     {Name: "Executive Chair", BerthsPerCoach: 56, BaySize: 4},
	models.ClassSecondSitting: {Name: "Second Sitting", BerthsPerCoach: 108, BaySize: 6},
}

// 8-berth bay: 1,4 lower / 2,5 middle / 3,6 upper / 7 side-lower / 8 side-upper.
var bayMap8 = map[int]models.BerthType{
	1: models.BerthLower, 2: models.BerthMiddle, 3: models.BerthUpper,
	4: models.BerthLower, 5: models.BerthMiddle, 6: models.BerthUpper,
	7: models.BerthSideLower, 8: models.BerthSideUpper,
}

// 6-berth bay (2A): no middle berth.
var bayMap6 = map[int]models.BerthType{
	1: models.BerthLower, 2: models.BerthUpper,
	3: models.BerthLower, 4: models.BerthUpper,
	5: models.BerthSideLower, 6: models.BerthSideUpper,
}

// 4-berth coupe (1A): lower/upper pairs only.
var bayMap4 = map[int]models.BerthType{
	1: models.BerthLower, 2: models.BerthUpper,
	3: models.BerthLower, 4: models.BerthUpper,
}

// Config returns the layout configuration for a class.
func Config(class models.ClassType) (ClassConfig, bool) {
	cfg, ok := classConfigs[class]
	return cfg, ok
}

// KnownClass reports whether the class type is part of the fixed enumeration.
func KnownClass(class models.ClassType) bool {
	_, ok := classConfigs[class]
	return ok
}

// BerthForSeat maps a seat number to its berth type. Seat numbers outside
// the coach's configured berth count are a validation error, never a
// silent lower-berth default.
func BerthForSeat(seat int, class models.ClassType) (models.BerthType, error) {
	cfg, ok := classConfigs[class]
	if !ok {
		return "", domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("unknown class %q", class)}
	}
	if !cfg.Berthed {
		return "", domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("%s coaches have no berths", class)}
	}
	if seat < 1 || seat > cfg.BerthsPerCoach {
		return "", domain.ValidationError{
			Field: "seat_number",
			Msg:   fmt.Sprintf("seat %d outside 1..%d for class %s", seat, cfg.BerthsPerCoach, class),
		}
	}

	pos := seat % cfg.BaySize
	if pos == 0 {
		pos = cfg.BaySize
	}

	switch cfg.BaySize {
	case 8:
		return bayMap8[pos], nil
	case 6:
		return bayMap6[pos], nil
	case 4:
		return bayMap4[pos], nil
	}
	return "", domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("no berth map for class %s", class)}
}

// BayNumber returns the 1-based bay a seat belongs to. Classes without a
// configuration fall back to the standard 8-seat bay.
func BayNumber(seat int, class models.ClassType) int {
	if seat < 1 {
		return 0
	}
	size := 8
	if cfg, ok := classConfigs[class]; ok {
		size = cfg.BaySize
	}
	return (seat-1)/size + 1
}

// SameBay reports whether two seats share a bay in the given class.
func SameBay(a, b int, class models.ClassType) bool {
	if a < 1 || b < 1 {
		return false
	}
	return BayNumber(a, class) == BayNumber(b, class)
}

// Berth preference order for scoring: lower > side-lower > middle >
// side-upper > upper. Zero means unknown.
var berthRank = map[models.BerthType]int{
	models.BerthLower:     5,
	models.BerthSideLower: 4,
	models.BerthMiddle:    3,
	models.BerthSideUpper: 2,
	models.BerthUpper:     1,
}

// BerthRank returns the desirability rank of a berth type, higher is better.
func BerthRank(b models.BerthType) int {
	return berthRank[b]
}

type Berth struct {
	Number   int              `json:"number"`
	Type     models.BerthType `json:"type"`
	Position string           `json:"position"`
}

type Bay struct {
	BayNumber int     `json:"bay_number"`
	Berths    []Berth `json:"berths"`
}

// CoachLayout is the full bay/berth map of one coach, for visualization.
type CoachLayout struct {
	ClassType   models.ClassType `json:"class_type"`
	ClassName   string           `json:"class_name"`
	TotalBerths int              `json:"total_berths"`
	BaySize     int              `json:"bay_size"`
	Bays        []Bay            `json:"bays"`
}

// Layout generates the complete coach layout for a berthed class.
func Layout(class models.ClassType) (CoachLayout, error) {
	cfg, ok := classConfigs[class]
	if !ok {
		return CoachLayout{}, domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("unknown class %q", class)}
	}
	if !cfg.Berthed {
		return CoachLayout{}, domain.ValidationError{Field: "class_type", Msg: fmt.Sprintf("%s coaches have no berth layout", class)}
	}

	layout := CoachLayout{
		ClassType:   class,
		ClassName:   cfg.Name,
		TotalBerths: cfg.BerthsPerCoach,
		BaySize:     cfg.BaySize,
	}

	totalBays := (cfg.BerthsPerCoach + cfg.BaySize - 1) / cfg.BaySize
	for bay := 1; bay <= totalBays; bay++ {
		b := Bay{BayNumber: bay}
		start := (bay-1)*cfg.BaySize + 1
		for seat := start; seat < start+cfg.BaySize && seat <= cfg.BerthsPerCoach; seat++ {
			berth, err := BerthForSeat(seat, class)
			if err != nil {
				return CoachLayout{}, err
			}
			position := "main"
			if berth == models.BerthSideLower || berth == models.BerthSideUpper {
				position = "side"
			}
			b.Berths = append(b.Berths, Berth{Number: seat, Type: berth, Position: position})
		}
		layout.Bays = append(layout.Bays, b)
	}
	return layout, nil
}
