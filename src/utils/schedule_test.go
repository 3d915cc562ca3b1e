package utils

import (
	"ctb/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequiredGap(t *testing.T) {
	assert.Equal(t, 150*time.Minute, RequiredGap(120))
	assert.Equal(t, 125*time.Minute, RequiredGap(95))
	// Unknown runtime falls back to the default.
	assert.Equal(t, 150*time.Minute, RequiredGap(0))
}

func TestConflictsWith(t *testing.T) {
	gap := RequiredGap(120)
	base := time.Date(2026, 10, 1, 18, 0, 0, 0, time.Local)

	assert.True(t, ConflictsWith(base, base.Add(105*time.Minute), gap), "19:45 is inside the 150-minute window of 18:00")
	assert.False(t, ConflictsWith(base, base.Add(150*time.Minute), gap), "exactly one gap apart is a legal back-to-back schedule")
	assert.True(t, ConflictsWith(base, base.Add(150*time.Minute-time.Second), gap), "one second inside the gap still conflicts")
	assert.False(t, ConflictsWith(base, base.Add(151*time.Minute), gap))

	// Order of arguments must not matter.
	assert.True(t, ConflictsWith(base.Add(105*time.Minute), base, gap))
}

func TestFirstBatchConflict(t *testing.T) {
	gap := RequiredGap(120)
	base := time.Date(2026, 10, 1, 18, 0, 0, 0, time.Local)

	a, b := FirstBatchConflict([]time.Time{base, base.Add(150 * time.Minute), base.Add(300 * time.Minute)}, gap)
	assert.Nil(t, a)
	assert.Nil(t, b)

	a, b = FirstBatchConflict([]time.Time{base, base.Add(105 * time.Minute)}, gap)
	if assert.NotNil(t, a) && assert.NotNil(t, b) {
		assert.Equal(t, base, *a)
		assert.Equal(t, base.Add(105*time.Minute), *b)
	}
}

func TestFindExistingConflict(t *testing.T) {
	gap := RequiredGap(120)
	existing := []time.Time{
		time.Date(2026, 10, 1, 18, 0, 0, 0, time.Local),
	}

	e, c := FindExistingConflict(existing, []time.Time{existing[0].Add(165 * time.Minute)}, gap)
	assert.Nil(t, e)
	assert.Nil(t, c)

	candidate := existing[0].Add(105 * time.Minute)
	e, c = FindExistingConflict(existing, []time.Time{candidate}, gap)
	if assert.NotNil(t, e) && assert.NotNil(t, c) {
		assert.Equal(t, existing[0], *e)
		assert.Equal(t, candidate, *c)
	}
}

func TestExpandShowInstants(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.Local)

	instants, err := ExpandShowInstants([]types.ShowInput{
		{Date: "2026-10-02", Times: []string{"20:30", "18:00", "18:00"}},
	}, now)
	assert.Nil(t, err)
	if assert.Len(t, instants, 2) {
		assert.Equal(t, time.Date(2026, 10, 2, 18, 0, 0, 0, time.Local), instants[0])
		assert.Equal(t, time.Date(2026, 10, 2, 20, 30, 0, 0, time.Local), instants[1])
	}

	_, err = ExpandShowInstants([]types.ShowInput{
		{Date: "2026-09-30", Times: []string{"18:00"}},
	}, now)
	assert.NotNil(t, err, "instants in the past must be rejected")

	_, err = ExpandShowInstants([]types.ShowInput{
		{Date: "not-a-date", Times: []string{"18:00"}},
	}, now)
	assert.NotNil(t, err)

	_, err = ExpandShowInstants([]types.ShowInput{
		{Date: "2026-10-02", Times: []string{"25:99"}},
	}, now)
	assert.NotNil(t, err)
}

func TestSeatTemplate(t *testing.T) {
	assert.Equal(t, 162, TotalSeats())
	assert.Len(t, SeatLayout(), 10)

	assert.True(t, ValidSeatID("A1"))
	assert.True(t, ValidSeatID("A9"))
	assert.False(t, ValidSeatID("A10"), "front rows only hold 9 seats")
	assert.True(t, ValidSeatID("C14"))
	assert.True(t, ValidSeatID("J18"))
	assert.False(t, ValidSeatID("J19"))
	assert.False(t, ValidSeatID("K1"), "row K is not part of the template")
	assert.False(t, ValidSeatID("A0"))
	assert.False(t, ValidSeatID(""))
	assert.False(t, ValidSeatID("AA"))

	// Aliases of a valid seat must not become separate ledger keys.
	assert.False(t, ValidSeatID("A01"))
	assert.False(t, ValidSeatID("A001"))
	assert.False(t, ValidSeatID("A+1"))

	assert.Equal(t, "C14", SeatID("C", 14))
}

func TestBookingAmount(t *testing.T) {
	assert.Equal(t, 36.0, BookingAmount(12, 3))
	assert.Equal(t, 12.0, BookingAmount(12, 1))
}

func TestUnitAmountCents(t *testing.T) {
	assert.Equal(t, int64(1200), UnitAmountCents(36, 3))
	assert.Equal(t, int64(1001), UnitAmountCents(10.01, 1))
	assert.Equal(t, int64(1001), UnitAmountCents(30.03, 3))
	assert.Equal(t, int64(1250), UnitAmountCents(12.5, 1))
}
