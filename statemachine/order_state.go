package statemachine

import (
	"fmt"
	"strings"

	"github.com/Kariqs/tableside-api/models"
)

// Transition is one allowed status change for kitchen staff.
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

var validTransitions = []Transition{
	{From: models.OrderPending, To: models.OrderAccepted},
	{From: models.OrderPending, To: models.OrderCancelled},
	{From: models.OrderAccepted, To: models.OrderPreparing},
	{From: models.OrderAccepted, To: models.OrderCancelled},
	{From: models.OrderPreparing, To: models.OrderCompleted},
	{From: models.OrderPreparing, To: models.OrderCancelled},
	// settled at the counter after the meal
	{From: models.OrderCompleted, To: models.OrderPaid},
}

var transitionSet = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns the statuses reachable from status in one step.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition returns nil when from -> to is an allowed move.
func CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown order status %q", to)
	}
	if transitionSet[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s -> %s, valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
