package utils

import (
	"fmt"
	"strconv"
)

// SeatRow is one row of the fixed hall template shared by every show.
type SeatRow struct {
	Row   string `json:"row"`
	Count int    `json:"count"`
	Zone  string `json:"zone"`
}

// Every hall uses the same 10-row layout: two short front rows and eight
// full-width rows, 162 seats total. Zones exist for display grouping only;
// a show has a single price.
var seatRows = []SeatRow{
	{Row: "A", Count: 9, Zone: "front"},
	{Row: "B", Count: 9, Zone: "front"},
	{Row: "C", Count: 18, Zone: "middle"},
	{Row: "D", Count: 18, Zone: "middle"},
	{Row: "E", Count: 18, Zone: "middle"},
	{Row: "F", Count: 18, Zone: "middle"},
	{Row: "G", Count: 18, Zone: "back"},
	{Row: "H", Count: 18, Zone: "back"},
	{Row: "I", Count: 18, Zone: "back"},
	{Row: "J", Count: 18, Zone: "back"},
}

func SeatLayout() []SeatRow {
	layout := make([]SeatRow, len(seatRows))
	copy(layout, seatRows)
	return layout
}

func TotalSeats() int {
	total := 0
	for _, r := range seatRows {
		total += r.Count
	}
	return total
}

// ValidSeatID reports whether id names a seat of the template, e.g. "C14".
// Only the canonical form counts: "A01" or "A+1" would be distinct ledger keys
// for the same physical seat as "A1".
func ValidSeatID(id string) bool {
	if len(id) < 2 {
		return false
	}
	row := id[:1]
	num, err := strconv.Atoi(id[1:])
	if err != nil || num < 1 {
		return false
	}
	if id != SeatID(row, num) {
		return false
	}
	for _, r := range seatRows {
		if r.Row == row {
			return num <= r.Count
		}
	}
	return false
}

// SeatID builds the canonical seat id for a row letter and a 1-based number.
func SeatID(row string, num int) string {
	return fmt.Sprintf("%s%d", row, num)
}
