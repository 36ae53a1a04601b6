package clock

import (
	"math"
	"testing"
)

func TestAdvance(t *testing.T) {
	cases := []struct {
		name     string
		start    Clock
		mins     float64
		want     Clock
		rollover bool
	}{
		{"within hour", New(8, 10), 5, New(8, 15), false},
		{"minute overflow", New(8, 58), 5, New(9, 3), false},
		{"exact hour boundary", New(8, 55), 5, New(9, 0), false},
		{"midnight rollover", New(23, 58), 5, New(0, 3), true},
		{"fractional minutes", New(10, 0), 2.5, New(10, 2.5), false},
		{"negative within hour", New(10, 30), -5, New(10, 25), false},
		{"negative borrows hour", New(10, 0), -2.5, New(9, 57.5), false},
		{"negative wraps through midnight", New(0, 2), -5, New(23, 57), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, rolled := tc.start.Advance(tc.mins)
			if !got.Equal(tc.want) {
				t.Errorf("Advance(%v) = %v, want %v", tc.mins, got, tc.want)
			}
			if rolled != tc.rollover {
				t.Errorf("Advance(%v) rollover = %v, want %v", tc.mins, rolled, tc.rollover)
			}
		})
	}
}

func TestTimeTo(t *testing.T) {
	cases := []struct {
		name string
		from Clock
		to   Clock
		want float64
	}{
		{"same time", New(10, 30), New(10, 30), 0},
		{"forward same hour", New(10, 15), New(10, 45), 30},
		{"forward across hours", New(9, 0), New(11, 30), 150},
		{"backwards wraps through midnight", New(16, 30), New(16, 15), 1425},
		{"just before midnight to just after", New(23, 55), New(0, 5), 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.from.TimeTo(tc.to)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("TimeTo = %v, want %v", got, tc.want)
			}
		})
	}
}

// Advancing by n and measuring back to the origin always sums to a full day.
func TestAdvanceTimeToRoundTrip(t *testing.T) {
	starts := []Clock{New(0, 0), New(4, 0), New(12, 30), New(23, 50)}
	steps := []float64{1, 5, 7.5, 59}
	for _, start := range starts {
		for _, n := range steps {
			later, _ := start.Advance(n)
			back := later.TimeTo(start)
			if math.Abs(back-(1440-n)) > 1e-9 {
				t.Errorf("start %v advance %v: TimeTo back = %v, want %v", start, n, back, 1440-n)
			}
		}
	}
}

func TestTimeToNeverNegative(t *testing.T) {
	for h := 0; h < 24; h += 3 {
		for h2 := 0; h2 < 24; h2 += 3 {
			from, to := New(h, 17), New(h2, 42)
			if d := from.TimeTo(to); d < 0 {
				t.Fatalf("TimeTo(%v, %v) = %v, negative", from, to, d)
			}
		}
	}
}
