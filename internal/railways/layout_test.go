package railways

import (
	"testing"

	"backend/internal/domain"
	"backend/internal/domain/models"
)

func TestBerthForSeatEightBerthBay(t *testing.T) {
	cases := []struct {
		seat int
		want models.BerthType
	}{
		{1, models.BerthLower},
		{2, models.BerthMiddle},
		{3, models.BerthUpper},
		{4, models.BerthLower},
		{5, models.BerthMiddle},
		{6, models.BerthUpper},
		{7, models.BerthSideLower},
		{8, models.BerthSideUpper},
		// second bay repeats the pattern
		{9, models.BerthLower},
		{15, models.BerthSideLower},
		{16, models.BerthSideUpper},
		{72, models.BerthSideUpper},
	}
	for _, tc := range cases {
		got, err := BerthForSeat(tc.seat, models.ClassSleeper)
		if err != nil {
			t.Fatalf("seat %d: unexpected error %v", tc.seat, err)
		}
		if got != tc.want {
			t.Fatalf("seat %d: got %s want %s", tc.seat, got, tc.want)
		}
	}
}

func TestBerthForSeatTwoTierHasNoMiddle(t *testing.T) {
	for seat := 1; seat <= 48; seat++ {
		got, err := BerthForSeat(seat, models.ClassTwoTierAC)
		if err != nil {
			t.Fatalf("seat %d: unexpected error %v", seat, err)
		}
		if got == models.BerthMiddle {
			t.Fatalf("seat %d: 2A must not produce a middle berth", seat)
		}
	}
	if got, _ := BerthForSeat(5, models.ClassTwoTierAC); got != models.BerthSideLower {
		t.Fatalf("2A seat 5: got %s want SL", got)
	}
	if got, _ := BerthForSeat(6, models.ClassTwoTierAC); got != models.BerthSideUpper {
		t.Fatalf("2A seat 6: got %s want SU", got)
	}
}

func TestBerthForSeatFirstACCoupe(t *testing.T) {
	wants := map[int]models.BerthType{
		1: models.BerthLower, 2: models.BerthUpper,
		3: models.BerthLower, 4: models.BerthUpper,
		5: models.BerthLower, 24: models.BerthUpper,
	}
	for seat, want := range wants {
		got, err := BerthForSeat(seat, models.ClassFirstAC)
		if err != nil {
			t.Fatalf("seat %d: unexpected error %v", seat, err)
		}
		if got != want {
			t.Fatalf("seat %d: got %s want %s", seat, got, want)
		}
	}
}

func TestBerthForSeatRejectsOutOfRange(t *testing.T) {
	for _, seat := range []int{0, -1, 73} {
		_, err := BerthForSeat(seat, models.ClassSleeper)
		if err == nil {
			t.Fatalf("seat %d: expected error", seat)
		}
		if !domain.IsValidation(err) {
			t.Fatalf("seat %d: expected validation error, got %v", seat, err)
		}
	}
	if _, err := BerthForSeat(65, models.ClassThreeTierAC); err == nil {
		t.Fatal("3A seat 65 should be rejected, coach has 64 berths")
	}
}

func TestBerthForSeatRejectsSeatingClasses(t *testing.T) {
	for _, class := range []models.ClassType{models.ClassChairCar, models.ClassExecChair, models.ClassSecondSitting} {
		if _, err := BerthForSeat(1, class); !domain.IsValidation(err) {
			t.Fatalf("class %s: expected validation error, got %v", class, err)
		}
	}
	if _, err := BerthForSeat(1, models.ClassType("XX")); !domain.IsValidation(err) {
		t.Fatalf("unknown class: expected validation error, got %v", err)
	}
}

func TestBayNumberAndSameBay(t *testing.T) {
	if got := BayNumber(1, models.ClassSleeper); got != 1 {
		t.Fatalf("seat 1: bay %d want 1", got)
	}
	if got := BayNumber(8, models.ClassSleeper); got != 1 {
		t.Fatalf("seat 8: bay %d want 1", got)
	}
	if got := BayNumber(9, models.ClassSleeper); got != 2 {
		t.Fatalf("seat 9: bay %d want 2", got)
	}
	if got := BayNumber(7, models.ClassTwoTierAC); got != 2 {
		t.Fatalf("2A seat 7: bay %d want 2", got)
	}
	if got := BayNumber(0, models.ClassSleeper); got != 0 {
		t.Fatalf("seat 0: bay %d want 0", got)
	}

	if !SameBay(45, 47, models.ClassThreeTierAC) {
		t.Fatal("3A seats 45 and 47 share bay 6")
	}
	if SameBay(48, 49, models.ClassThreeTierAC) {
		t.Fatal("3A seats 48 and 49 sit in different bays")
	}
	if SameBay(0, 1, models.ClassSleeper) {
		t.Fatal("invalid seat must never share a bay")
	}
}

func TestBerthRankOrdering(t *testing.T) {
	order := []models.BerthType{
		models.BerthLower, models.BerthSideLower, models.BerthMiddle,
		models.BerthSideUpper, models.BerthUpper,
	}
	for i := 0; i < len(order)-1; i++ {
		if BerthRank(order[i]) <= BerthRank(order[i+1]) {
			t.Fatalf("%s must rank above %s", order[i], order[i+1])
		}
	}
	if BerthRank("") != 0 {
		t.Fatal("unknown berth must rank zero")
	}
}

func TestLayoutCoversEveryBerth(t *testing.T) {
	layout, err := Layout(models.ClassThreeTierAC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if layout.TotalBerths != 64 || layout.BaySize != 8 {
		t.Fatalf("3A layout dimensions wrong: %+v", layout)
	}
	if len(layout.Bays) != 8 {
		t.Fatalf("3A should have 8 bays, got %d", len(layout.Bays))
	}
	seen := 0
	for _, bay := range layout.Bays {
		for _, b := range bay.Berths {
			seen++
			if b.Type == models.BerthSideLower || b.Type == models.BerthSideUpper {
				if b.Position != "side" {
					t.Fatalf("berth %d: side berth marked %q", b.Number, b.Position)
				}
			} else if b.Position != "main" {
				t.Fatalf("berth %d: main berth marked %q", b.Number, b.Position)
			}
		}
	}
	if seen != 64 {
		t.Fatalf("layout lists %d berths, want 64", seen)
	}

	if _, err := Layout(models.ClassChairCar); !domain.IsValidation(err) {
		t.Fatalf("CC layout should be a validation error, got %v", err)
	}
}
