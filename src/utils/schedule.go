package utils

import (
	"ctb/src/config"
	"ctb/src/types"
	"fmt"
	"math"
	"sort"
	"time"
)

// RequiredGap is the minimum spacing between two show starts in the same
// hall: the movie runtime plus the turnaround buffer.
func RequiredGap(runtime uint) time.Duration {
	if runtime == 0 {
		runtime = config.DEFAULT_RUNTIME_MINUTES
	}
	return time.Duration(runtime+config.SHOW_BUFFER_MINUTES) * time.Minute
}

// ExpandShowInstants turns {date, times[]} inputs into sorted concrete
// instants in server-local time. Instants in the past are rejected.
func ExpandShowInstants(inputs []types.ShowInput, now time.Time) ([]time.Time, error) {
	var instants []time.Time
	seen := make(map[int64]bool)
	for _, input := range inputs {
		date, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, input.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date [%s]", input.Date)
		}
		for _, t := range input.Times {
			tod, err := time.ParseInLocation(config.TIME_OF_DAY_PARSE_FORMAT, t, time.Local)
			if err != nil {
				return nil, fmt.Errorf("invalid time [%s]", t)
			}
			instant := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local)
			if instant.Before(now) {
				return nil, fmt.Errorf("show time [%s] is in the past", instant.Format(config.TIME_PARSE_FORMAT))
			}
			if seen[instant.Unix()] {
				continue
			}
			seen[instant.Unix()] = true
			instants = append(instants, instant)
		}
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })
	return instants, nil
}

// ConflictsWith reports whether two show starts in the same hall are closer
// than the required gap. The boundary is non-strict: exactly gap apart is a
// legal back-to-back schedule.
func ConflictsWith(existing, candidate time.Time, gap time.Duration) bool {
	d := candidate.Sub(existing)
	if d < 0 {
		d = -d
	}
	return d < gap
}

// FirstBatchConflict finds the first adjacent pair of sorted instants that
// violate the gap within a single submitted batch.
func FirstBatchConflict(instants []time.Time, gap time.Duration) (*time.Time, *time.Time) {
	for i := 1; i < len(instants); i++ {
		if ConflictsWith(instants[i-1], instants[i], gap) {
			return &instants[i-1], &instants[i]
		}
	}
	return nil, nil
}

// FindExistingConflict scans already-scheduled starts against every
// candidate and returns the first colliding pair.
func FindExistingConflict(existing []time.Time, candidates []time.Time, gap time.Duration) (*time.Time, *time.Time) {
	for _, c := range candidates {
		for _, e := range existing {
			if ConflictsWith(e, c, gap) {
				return &e, &c
			}
		}
	}
	return nil, nil
}

// BookingAmount is the price charged for a claim of n seats, frozen onto the
// booking row at creation time.
func BookingAmount(showPrice float64, seats int) float64 {
	return showPrice * float64(seats)
}

// UnitAmountCents is the per-seat share of a booking amount in integer cents
// for the payment provider. Rounded, not truncated: 10.01 is 1001 cents.
func UnitAmountCents(amount float64, seats int) int64 {
	return int64(math.Round(amount / float64(seats) * 100))
}
