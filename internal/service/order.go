package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hostelgrub/api/internal/enum"
	"github.com/hostelgrub/api/internal/menu"
	"github.com/hostelgrub/api/internal/store"
	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 20

	MyOrdersLimit     = 20
	DefaultAdminLimit = 100
	MaxAdminLimit     = 300
)

// PlaceOrderRequest is the student-supplied order payload.
type PlaceOrderRequest struct {
	CustomerName  string
	RoomNumber    string
	Phone         string
	PaymentMethod string
	Notes         string
	Items         []PlaceOrderItem
}

// PlaceOrderItem is one requested line. Quantity 0 means the caller sent no
// usable integer.
type PlaceOrderItem struct {
	ItemID   string
	Quantity int
}

// SalesSummary aggregates the ledger for the admin dashboard. Revenue and the
// average exclude cancelled orders.
type SalesSummary struct {
	TotalOrders       int            `json:"totalOrders"`
	ByStatus          map[string]int `json:"byStatus"`
	Revenue           int            `json:"revenue"`
	AverageOrderValue string         `json:"averageOrderValue"`
}

// OrderService owns order validation, numbering, and status changes.
type OrderService struct {
	store  DocumentStore
	prefix string
	now    func() time.Time
}

// NewOrderService creates a new OrderService. prefix is prepended to the
// numeric id to build the display order number.
func NewOrderService(s DocumentStore, prefix string) *OrderService {
	return &OrderService{store: s, prefix: prefix, now: time.Now}
}

// PlaceOrder validates req against the current menu, allocates the next order
// id, and stores the order as pending. Nothing is written when validation
// fails.
func (s *OrderService) PlaceOrder(ctx context.Context, caller *Caller, req PlaceOrderRequest) (*store.Order, error) {
	if caller == nil || caller.Session.Role != enum.RoleStudent {
		return nil, Unauthorized("invalid student session")
	}

	var created store.Order
	err := s.store.Update(ctx, func(doc *store.Document) error {
		// The session may have been rotated or logged out since it was resolved.
		if doc.FindSession(caller.Session.Token, enum.RoleStudent) == nil {
			return Unauthorized("invalid or expired token")
		}
		student := doc.FindStudentByID(caller.Session.UserID)
		if student == nil {
			return Unauthorized("invalid student session")
		}

		customerName := strings.TrimSpace(req.CustomerName)
		roomNumber := strings.TrimSpace(req.RoomNumber)
		phone := strings.TrimSpace(req.Phone)
		if customerName == "" || roomNumber == "" || phone == "" {
			return Validation("name, room number, and phone are required")
		}

		paymentMethod := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
		if paymentMethod == "" {
			paymentMethod = enum.PaymentMethodCash
		}
		if paymentMethod != enum.PaymentMethodCash && paymentMethod != enum.PaymentMethodUPI {
			return Validation("payment method must be cash or upi")
		}

		if len(req.Items) == 0 {
			return Validation("at least one item is required")
		}

		lines, err := buildLines(menu.NewCatalog(doc.Menu), req.Items)
		if err != nil {
			return err
		}

		total := 0
		for _, l := range lines {
			total += l.LineTotal
		}

		id := doc.Meta.NextOrderID
		doc.Meta.NextOrderID++

		created = store.Order{
			ID:            id,
			OrderNumber:   fmt.Sprintf("%s%d", s.prefix, id),
			CustomerName:  customerName,
			RoomNumber:    roomNumber,
			Phone:         phone,
			StudentEmail:  student.Email,
			PaymentMethod: paymentMethod,
			Notes:         strings.TrimSpace(req.Notes),
			Status:        enum.OrderStatusPending,
			CreatedAt:     s.now().UTC(),
			Items:         lines,
			Total:         total,
		}
		doc.Orders = append(doc.Orders, created)
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("place order", err)
	}
	return &created, nil
}

// buildLines resolves each requested item and snapshots its name and price.
func buildLines(catalog *menu.Catalog, items []PlaceOrderItem) ([]store.OrderLine, error) {
	lines := make([]store.OrderLine, 0, len(items))
	for _, it := range items {
		item, ok := catalog.Lookup(it.ItemID)
		if !ok || it.Quantity < MinQuantity || it.Quantity > MaxQuantity {
			return nil, Validation("one or more items are invalid")
		}
		if !item.InStock {
			return nil, Validation(item.Name + " is currently out of stock")
		}
		lines = append(lines, store.OrderLine{
			ItemID:    item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  it.Quantity,
			LineTotal: item.Price * it.Quantity,
		})
	}
	return lines, nil
}

// ListMyOrders returns the caller's most recent orders, newest first.
func (s *OrderService) ListMyOrders(_ context.Context, caller *Caller) ([]store.Order, error) {
	if caller == nil || caller.Session.Role != enum.RoleStudent {
		return nil, Unauthorized("invalid student session")
	}
	student := caller.Doc.FindStudentByID(caller.Session.UserID)
	if student == nil {
		return nil, Unauthorized("invalid student session")
	}

	var mine []store.Order
	for _, o := range caller.Doc.Orders {
		if o.StudentEmail == student.Email {
			mine = append(mine, o)
		}
	}
	return newestFirst(mine, MyOrdersLimit), nil
}

// ListAllOrders returns every order newest first, truncated to limit after
// ClampLimit.
func (s *OrderService) ListAllOrders(_ context.Context, caller *Caller, limit int) ([]store.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return newestFirst(caller.Doc.Orders, ClampLimit(limit)), nil
}

// ClampLimit maps a requested admin list size into [1, MaxAdminLimit]; 0
// selects DefaultAdminLimit.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultAdminLimit
	}
	return max(1, min(MaxAdminLimit, limit))
}

// ParseLimit reads the limit query value. Absent, non-integer and out-of-range
// values yield 0, which ClampLimit turns into the default.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// UpdateStatus overwrites the status of an order. Any allowed status may
// follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *Caller, rawID, newStatus string) (*store.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	id, err := parseOrderID(rawID)
	if err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(newStatus))
	if !slices.Contains(enum.OrderStatuses, status) {
		return nil, Validation("status must be one of: " + strings.Join(enum.OrderStatuses, ", "))
	}

	var updated store.Order
	err = s.store.Update(ctx, func(doc *store.Document) error {
		i := doc.FindOrder(id)
		if i < 0 {
			return NotFound("order not found")
		}
		doc.Orders[i].Status = status
		updated = doc.Orders[i]
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("update order status", err)
	}
	return &updated, nil
}

// DeleteOrder removes an order regardless of its status. Its id is never
// handed out again.
func (s *OrderService) DeleteOrder(ctx context.Context, caller *Caller, rawID string) (*store.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	id, err := parseOrderID(rawID)
	if err != nil {
		return nil, err
	}

	var removed store.Order
	err = s.store.Update(ctx, func(doc *store.Document) error {
		i := doc.FindOrder(id)
		if i < 0 {
			return NotFound("order not found")
		}
		removed = doc.Orders[i]
		doc.Orders = slices.Delete(doc.Orders, i, i+1)
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("delete order", err)
	}
	return &removed, nil
}

// Summary aggregates the caller's snapshot of the ledger.
func (s *OrderService) Summary(_ context.Context, caller *Caller) (*SalesSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	sum := &SalesSummary{ByStatus: make(map[string]int, len(enum.OrderStatuses))}
	for _, st := range enum.OrderStatuses {
		sum.ByStatus[st] = 0
	}

	billable := 0
	for _, o := range caller.Doc.Orders {
		sum.TotalOrders++
		sum.ByStatus[o.Status]++
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		billable++
		sum.Revenue += o.Total
	}

	avg := decimal.Zero
	if billable > 0 {
		avg = decimal.NewFromInt(int64(sum.Revenue)).Div(decimal.NewFromInt(int64(billable)))
	}
	sum.AverageOrderValue = avg.StringFixed(2)
	return sum, nil
}

// --- Helpers ---

func requireAdmin(caller *Caller) error {
	if caller == nil || caller.Session.Role != enum.RoleAdmin {
		return Unauthorized("invalid or expired token")
	}
	return nil
}

func parseOrderID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, Validation("invalid order id")
	}
	return id, nil
}

// newestFirst sorts a copy of orders by creation time descending, breaking
// ties by higher id, and keeps at most limit entries.
func newestFirst(orders []store.Order, limit int) []store.Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b store.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []store.Order{}
	}
	return out
}
