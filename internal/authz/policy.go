// Package authz decides which staff role may perform which action. The
// decision is made once at the HTTP boundary; the order engine never checks
// roles itself.
package authz

import (
	"github.com/MikeMC777/pos-restaurante/internal/order"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
)

type Action string

const (
	OrderCreate  Action = "order:create"
	OrderRead    Action = "order:read"
	OrderUpdate  Action = "order:update"
	OrderItems   Action = "order:items"
	OrderKitchen Action = "order:kitchen"
	OrderCashier Action = "order:cashier"
	TableRead    Action = "table:read"
	TableOccupy  Action = "table:occupy"
	ProductRead  Action = "product:read"
)

// StatusAction is the action for moving an order into the given status.
func StatusAction(s order.Status) Action {
	return Action("order:status:" + string(s))
}

var everyone = []staff.Role{staff.RoleAdmin, staff.RoleWaiter, staff.RoleKitchen, staff.RoleCashier}

// Policy maps an action to the roles allowed to perform it.
type Policy map[Action]map[staff.Role]bool

func allow(roles ...staff.Role) map[staff.Role]bool {
	m := make(map[staff.Role]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

// Default is the restaurant's role table.
func Default() Policy {
	return Policy{
		OrderCreate:  allow(staff.RoleWaiter, staff.RoleAdmin),
		OrderRead:    allow(everyone...),
		OrderUpdate:  allow(staff.RoleWaiter, staff.RoleAdmin),
		OrderItems:   allow(staff.RoleWaiter, staff.RoleAdmin),
		OrderKitchen: allow(staff.RoleKitchen, staff.RoleAdmin),
		OrderCashier: allow(staff.RoleCashier, staff.RoleAdmin),
		TableRead:    allow(everyone...),
		TableOccupy:  allow(staff.RoleWaiter, staff.RoleAdmin),
		ProductRead:  allow(everyone...),

		StatusAction(order.StatusPending):   allow(everyone...),
		StatusAction(order.StatusCancelled): allow(everyone...),
		StatusAction(order.StatusPreparing): allow(staff.RoleKitchen, staff.RoleAdmin),
		StatusAction(order.StatusReady):     allow(staff.RoleKitchen, staff.RoleAdmin),
		StatusAction(order.StatusPaid):      allow(staff.RoleCashier, staff.RoleAdmin),
		StatusAction(order.StatusDelivered): allow(staff.RoleWaiter, staff.RoleAdmin),
	}
}

// Allows reports whether role may perform action. Unknown actions are denied.
func (p Policy) Allows(role staff.Role, action Action) bool {
	return p[action][role]
}
