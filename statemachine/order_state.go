package statemachine

import (
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// Actor is the party requesting a transition
type Actor string

const (
	ActorRestaurant Actor = "restaurant"
	ActorCustomer   Actor = "customer"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// validTransitions is the authoritative state machine definition.
// delivered and cancelled have no outgoing edges.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusDelivered, Actor: ActorRestaurant},

	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorCustomer},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("cannot move order from %s to %s as %s; valid next states from %s: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
