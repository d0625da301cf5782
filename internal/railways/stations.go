package railways

import (
	"sort"
	"strings"

	"backend/internal/domain/models"
)

var stationNames = map[string]string{
	"NDLS": "New Delhi",
	"BCT":  "Mumbai Central",
	"CSMT": "Chhatrapati Shivaji Maharaj Terminus",
	"HWH":  "Howrah Junction",
	"SDAH": "Sealdah",
	"MAS":  "Chennai Central",
	"SBC":  "KSR Bengaluru",
	"SC":   "Secunderabad Junction",
	"ADI":  "Ahmedabad Junction",
	"PUNE": "Pune Junction",
	"JP":   "Jaipur Junction",
	"LKO":  "Lucknow Charbagh",
	"CNB":  "Kanpur Central",
	"PRYJ": "Prayagraj Junction",
	"BPL":  "Bhopal Junction",
	"NGP":  "Nagpur Junction",
	"GHY":  "Guwahati",
	"PNBE": "Patna Junction",
	"JAT":  "Jammu Tawi",
	"ASR":  "Amritsar Junction",
}

// Ordered halts for well-known trains, used by the journey-overlap filter.
// Trains absent from this table are treated leniently (see SegmentsOverlap).
var trainRoutes = map[string][]string{
	"12301": {"NDLS", "CNB", "PRYJ", "GAYA", "DHN", "HWH"},
	"12302": {"HWH", "DHN", "GAYA", "PRYJ", "CNB", "NDLS"},
	"12951": {"NDLS", "KOTA", "RTM", "BRC", "ST", "BCT"},
	"12952": {"BCT", "ST", "BRC", "RTM", "KOTA", "NDLS"},
	"12621": {"NDLS", "AGC", "JHS", "BPL", "NGP", "BPQ", "MAS"},
	"12622": {"MAS", "BPQ", "NGP", "BPL", "JHS", "AGC", "NDLS"},
	"12627": {"NDLS", "GWL", "JHS", "BPL", "NGP", "SC", "SBC"},
	"12628": {"SBC", "SC", "NGP", "BPL", "JHS", "GWL", "NDLS"},
	"12839": {"HWH", "KGP", "BBS", "VSKP", "BZA", "MAS"},
	"12840": {"MAS", "BZA", "VSKP", "BBS", "KGP", "HWH"},
}

// StationName resolves a station code, empty when unknown.
func StationName(code string) string {
	return stationNames[strings.ToUpper(strings.TrimSpace(code))]
}

// Stations lists every known station sorted by code.
func Stations() []models.Station {
	out := make([]models.Station, 0, len(stationNames))
	for code, name := range stationNames {
		out = append(out, models.Station{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// SegmentsOverlap reports whether two journey segments on a train share a
// portion of travel. When the route or a station is unknown the segments
// are treated as overlapping: excluding matches on missing reference data
// would hide real ones.
func SegmentsOverlap(trainNumber, fromA, toA, fromB, toB string) bool {
	route, ok := trainRoutes[strings.TrimSpace(trainNumber)]
	if !ok {
		return true
	}

	pos := func(code string) int {
		code = strings.ToUpper(strings.TrimSpace(code))
		for i, c := range route {
			if c == code {
				return i
			}
		}
		return -1
	}

	aStart, aEnd := pos(fromA), pos(toA)
	bStart, bEnd := pos(fromB), pos(toB)
	if aStart < 0 || aEnd < 0 || bStart < 0 || bEnd < 0 {
		return true
	}
	if aStart >= aEnd || bStart >= bEnd {
		// Segment runs against the route direction; reference data is off,
		// fall back to lenient.
		return true
	}

	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	return start < end
}

// ValidPNR checks the 10-digit PNR format.
func ValidPNR(pnr string) bool {
	pnr = strings.TrimSpace(pnr)
	if len(pnr) != 10 {
		return false
	}
	return allDigits(pnr)
}

// ValidTrainNumber checks the 5-digit train number format.
func ValidTrainNumber(trainNumber string) bool {
	trainNumber = strings.TrimSpace(trainNumber)
	if len(trainNumber) != 5 {
		return false
	}
	return allDigits(trainNumber)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var coachPrefixes = map[models.ClassType]string{
	models.ClassFirstAC:       "H",
	models.ClassTwoTierAC:     "A",
	models.ClassThreeTierAC:   "B",
	models.ClassSleeper:       "S",
	models.ClassChairCar:      "C",
	models.ClassExecChair:     "E",
	models.ClassSecondSitting: "D",
}

// CoachPrefix returns the coach letter used for a class, "S" when unknown.
func CoachPrefix(class models.ClassType) string {
	if p, ok := coachPrefixes[class]; ok {
		return p
	}
	return "S"
}
