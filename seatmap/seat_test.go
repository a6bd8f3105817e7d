package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeatNumber(t *testing.T) {
	tests := []struct {
		input string
		want  Position
		ok    bool
	}{
		{input: "C7", want: Position{Row: "C", Col: 7}, ok: true},
		{input: "AA12", want: Position{Row: "AA", Col: 12}, ok: true},
		{input: "c7", ok: false},
		{input: "7C", ok: false},
		{input: "A", ok: false},
		{input: "A-1", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSeatNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	seats := []Seat{
		{Number: "B10", ID: 4, Available: true},
		{Number: "A2", ID: 2, Available: false},
		{Number: "A1", ID: 1, Available: true},
		{Number: "B1", ID: 3, Available: true},
		{Number: "balcony", ID: 99, Available: true},
	}

	grid := Layout(seats)
	assert.Equal(t, []string{"A", "B"}, grid.Rows)
	assert.Equal(t, []int{1, 2, 10}, grid.Cols)
	assert.Len(t, grid.Seats, 4)

	seat, ok := grid.At("A", 2)
	assert.True(t, ok)
	assert.False(t, seat.Available)

	_, ok = grid.At("A", 10)
	assert.False(t, ok)
}

func TestMappingRoundTrip(t *testing.T) {
	seats := []Seat{{Number: "A1", ID: 101}, {Number: "A2", ID: 102}, {Number: "C7", ID: 307}}
	m := NewMapping(seats)

	for _, seat := range seats {
		assert.Equal(t, []int64{seat.ID}, m.IDs([]string{seat.Number}))
		assert.Equal(t, []string{seat.Number}, m.Numbers([]int64{seat.ID}))
	}

	assert.Equal(t, []int64{307, 101}, m.IDs([]string{"C7", "Z9", "A1"}))
	assert.Equal(t, []string{"A2", "Seat-555"}, m.Numbers([]int64{102, 555}))
	assert.Equal(t, []string{"Seat-1"}, Mapping(nil).Numbers([]int64{1}))
}
