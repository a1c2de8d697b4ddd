// Package orders enforces the order lifecycle: pending -> confirmed ->
// delivered, advanced one step at a time by the assigned seller or an
// admin, with notifications fanned out after each committed transition.
package orders

import (
	"github.com/homeplate/homeplate-golang/internal/models"
)

// next maps each status to the only status reachable from it. Delivered is
// terminal and deliberately absent.
var next = map[string]string{
	models.OrderPending:   models.OrderConfirmed,
	models.OrderConfirmed: models.OrderDelivered,
}

// ValidStatus reports whether s names a known order status.
func ValidStatus(s string) bool {
	switch s {
	case models.OrderPending, models.OrderConfirmed, models.OrderDelivered:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status directly
// to another. Skipping a step or moving backwards is never allowed.
func CanTransition(from, to string) bool {
	return next[from] == to
}
