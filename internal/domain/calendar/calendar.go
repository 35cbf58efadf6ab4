// Package calendar holds Calendar and KanbanColumn — thin tenant-scoped
// aggregates. Per spec §1 Non-goals, their CRUD surfaces are boilerplate;
// this package exists mainly to give the Content/Publication aggregates
// something to reference and to host the one real invariant (§3):
// kanban column order is a dense, non-decreasing sequence reordered
// atomically.
package calendar

import (
	"time"

	"github.com/google/uuid"
)

type Calendar struct {
	id          uuid.UUID
	userID      uuid.UUID
	clientID    uuid.UUID
	name        string
	description string
	createdAt   time.Time
}

func NewCalendar(userID, clientID uuid.UUID, name, description string) *Calendar {
	return &Calendar{
		id: uuid.New(), userID: userID, clientID: clientID,
		name: name, description: description, createdAt: time.Now().UTC(),
	}
}

func ReconstructCalendar(id, userID, clientID uuid.UUID, name, description string, createdAt time.Time) *Calendar {
	return &Calendar{id: id, userID: userID, clientID: clientID, name: name, description: description, createdAt: createdAt}
}

func (c *Calendar) ID() uuid.UUID        { return c.id }
func (c *Calendar) UserID() uuid.UUID    { return c.userID }
func (c *Calendar) ClientID() uuid.UUID  { return c.clientID }
func (c *Calendar) Name() string         { return c.name }
func (c *Calendar) Description() string  { return c.description }
func (c *Calendar) CreatedAt() time.Time { return c.createdAt }

type KanbanColumn struct {
	id            uuid.UUID
	calendarID    uuid.UUID
	name          string
	order         int
	mappedStatus  *string
	color         *string
}

func NewKanbanColumn(calendarID uuid.UUID, name string, order int) *KanbanColumn {
	return &KanbanColumn{id: uuid.New(), calendarID: calendarID, name: name, order: order}
}

func ReconstructKanbanColumn(id, calendarID uuid.UUID, name string, order int, mappedStatus, color *string) *KanbanColumn {
	return &KanbanColumn{id: id, calendarID: calendarID, name: name, order: order, mappedStatus: mappedStatus, color: color}
}

func (k *KanbanColumn) ID() uuid.UUID          { return k.id }
func (k *KanbanColumn) CalendarID() uuid.UUID  { return k.calendarID }
func (k *KanbanColumn) Name() string           { return k.name }
func (k *KanbanColumn) Order() int             { return k.order }
func (k *KanbanColumn) MappedStatus() *string  { return k.mappedStatus }
func (k *KanbanColumn) Color() *string         { return k.color }
func (k *KanbanColumn) Reorder(order int)      { k.order = order }

// ValidateDenseOrder validates that a proposed new ordering of column IDs is a dense,
// non-decreasing permutation (0..n-1) before the store applies it
// atomically — the one real invariant this aggregate enforces.
func ValidateDenseOrder(n int, positions []int) bool {
	if len(positions) != n {
		return false
	}
	seen := make([]bool, n)
	for _, p := range positions {
		if p < 0 || p >= n || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
