package enum

// ── Roles and identity providers ──

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// ── Order state (no transition graph, any status may follow any other) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every allowed status in display order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

const (
	PaymentMethodCash = "cash"
	PaymentMethodUPI  = "upi"
)

// ── Websocket event types ──

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderDeleted       = "order.deleted"
)
