package calendar

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewCalendar(t *testing.T) {
	userID, clientID := uuid.New(), uuid.New()
	c := NewCalendar(userID, clientID, "Q3 launches", "")

	assert.Equal(t, userID, c.UserID())
	assert.Equal(t, clientID, c.ClientID())
	assert.Equal(t, "Q3 launches", c.Name())
	assert.False(t, c.CreatedAt().IsZero())
}

func TestValidateDenseOrder(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		positions []int
		want      bool
	}{
		{"valid permutation", 3, []int{0, 1, 2}, true},
		{"valid permutation out of order", 3, []int{2, 0, 1}, true},
		{"wrong length", 3, []int{0, 1}, false},
		{"duplicate position", 3, []int{0, 0, 2}, false},
		{"out of range", 3, []int{0, 1, 3}, false},
		{"negative", 3, []int{-1, 1, 2}, false},
		{"empty is dense for n=0", 0, []int{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDenseOrder(tt.n, tt.positions))
		})
	}
}

func TestKanbanColumnReorder(t *testing.T) {
	col := NewKanbanColumn(uuid.New(), "Draft", 0)
	col.Reorder(2)
	assert.Equal(t, 2, col.Order())
}
