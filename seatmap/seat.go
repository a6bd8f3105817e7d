package seatmap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var seatPattern = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

type Seat struct {
	Number    string `json:"seat_number"`
	ID        int64  `json:"id"`
	Available bool   `json:"is_available"`
}

type Position struct {
	Row string
	Col int
}

// ParseSeatNumber splits "C7" into row "C" and column 7.
func ParseSeatNumber(number string) (Position, bool) {
	match := seatPattern.FindStringSubmatch(number)
	if match == nil {
		return Position{}, false
	}
	col, err := strconv.Atoi(match[2])
	if err != nil {
		return Position{}, false
	}
	return Position{Row: match[1], Col: col}, true
}

// Placeholder is the label shown for a seat id no mapping knows about.
func Placeholder(id int64) string {
	return fmt.Sprintf("Seat-%d", id)
}

// Grid is the displayable layout of a studio. Seats whose number does not parse are left out.
type Grid struct {
	Rows  []string
	Cols  []int
	Seats map[Position]Seat
}

func Layout(seats []Seat) Grid {
	grid := Grid{Seats: map[Position]Seat{}}
	rows := map[string]struct{}{}
	cols := map[int]struct{}{}
	for _, seat := range seats {
		pos, ok := ParseSeatNumber(seat.Number)
		if !ok {
			continue
		}
		grid.Seats[pos] = seat
		rows[pos.Row] = struct{}{}
		cols[pos.Col] = struct{}{}
	}
	for row := range rows {
		grid.Rows = append(grid.Rows, row)
	}
	for col := range cols {
		grid.Cols = append(grid.Cols, col)
	}
	sort.Strings(grid.Rows)
	sort.Ints(grid.Cols)
	return grid
}

func (g Grid) At(row string, col int) (Seat, bool) {
	seat, ok := g.Seats[Position{Row: row, Col: col}]
	return seat, ok
}

// Mapping is one studio's seat-number to seat-id table.
type Mapping map[string]int64

func NewMapping(seats []Seat) Mapping {
	m := make(Mapping, len(seats))
	for _, seat := range seats {
		m[seat.Number] = seat.ID
	}
	return m
}

// IDs returns the ids of the resolvable numbers in input order. Unknown numbers are omitted.
func (m Mapping) IDs(numbers []string) []int64 {
	ids := make([]int64, 0, len(numbers))
	for _, number := range numbers {
		if id, ok := m[number]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Numbers reverse-maps ids to seat numbers, using Placeholder for unknown ids.
func (m Mapping) Numbers(ids []int64) []string {
	reverse := make(map[int64]string, len(m))
	for number, id := range m {
		reverse[id] = number
	}
	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if number, ok := reverse[id]; ok {
			numbers = append(numbers, number)
			continue
		}
		numbers = append(numbers, Placeholder(id))
	}
	return numbers
}

func (m Mapping) clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
