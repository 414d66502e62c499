package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hostelgrub/api/internal/enum"
	"github.com/hostelgrub/api/internal/middleware"
	"github.com/hostelgrub/api/internal/service"
	"github.com/hostelgrub/api/internal/store"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, caller *service.Caller, req service.PlaceOrderRequest) (*store.Order, error)
	ListMyOrders(ctx context.Context, caller *service.Caller) ([]store.Order, error)
	ListAllOrders(ctx context.Context, caller *service.Caller, limit int) ([]store.Order, error)
	UpdateStatus(ctx context.Context, caller *service.Caller, orderID, status string) (*store.Order, error)
	DeleteOrder(ctx context.Context, caller *service.Caller, orderID string) (*store.Order, error)
	Summary(ctx context.Context, caller *service.Caller) (*service.SalesSummary, error)
}

// Publisher pushes order events to live subscribers.
// Satisfied by *ws.Hub.
type Publisher interface {
	PublishOrder(eventType, studentEmail string, order any)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	pub Publisher
}

// NewOrderHandler creates a new OrderHandler. pub may be nil.
func NewOrderHandler(svc OrderServicer, pub Publisher) *OrderHandler {
	return &OrderHandler{svc: svc, pub: pub}
}

// RegisterStudentRoutes registers endpoints that need a student session.
func (h *OrderHandler) RegisterStudentRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders/my", h.ListMine)
}

// RegisterAdminRoutes registers endpoints that need an admin session.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders/admin", h.ListAll)
	r.Get("/orders/admin/summary", h.Summary)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Delete("/orders/{id}", h.Delete)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName  string                   `json:"customerName"`
	RoomNumber    string                   `json:"roomNumber"`
	Phone         string                   `json:"phone"`
	PaymentMethod string                   `json:"paymentMethod"`
	Notes         string                   `json:"notes"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ItemID   string      `json:"itemId"`
	Quantity json.RawMessage `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderListResponse struct {
	Orders []store.Order `json:"orders"`
}

type orderMessageResponse struct {
	Message string       `json:"message"`
	Order   *store.Order `json:"order"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.PlaceOrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.PlaceOrderItem{ItemID: it.ItemID, Quantity: quantity(it.Quantity)}
	}

	order, err := h.svc.PlaceOrder(r.Context(), caller, service.PlaceOrderRequest{
		CustomerName:  req.CustomerName,
		RoomNumber:    req.RoomNumber,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         items,
	})
	if err != nil {
		writeError(w, "place order", err)
		return
	}

	h.publish(enum.EventOrderCreated, order)
	writeJSON(w, http.StatusCreated, orderMessageResponse{Message: "order placed", Order: order})
}

// ListMine handles GET /orders/my.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	orders, err := h.svc.ListMyOrders(r.Context(), caller)
	if err != nil {
		writeError(w, "list my orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders})
}

// ListAll handles GET /orders/admin?limit=N.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	limit := service.ParseLimit(r.URL.Query().Get("limit"))
	orders, err := h.svc.ListAllOrders(r.Context(), caller, limit)
	if err != nil {
		writeError(w, "list all orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders})
}

// Summary handles GET /orders/admin/summary.
func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	sum, err := h.svc.Summary(r.Context(), caller)
	if err != nil {
		writeError(w, "order summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, "update order status", err)
		return
	}

	h.publish(enum.EventOrderStatusUpdated, order)
	writeJSON(w, http.StatusOK, orderMessageResponse{Message: "status updated", Order: order})
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	order, err := h.svc.DeleteOrder(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "delete order", err)
		return
	}

	h.publish(enum.EventOrderDeleted, order)
	writeJSON(w, http.StatusOK, orderMessageResponse{Message: "order cleared", Order: order})
}

// --- Helpers ---

func (h *OrderHandler) publish(eventType string, order *store.Order) {
	if h.pub == nil {
		return
	}
	h.pub.PublishOrder(eventType, order.StudentEmail, order)
}

// quantity converts the wire value to an int. Anything that is not a bare
// JSON integer, quoted numbers included, becomes 0, which the service rejects.
func quantity(raw json.RawMessage) int {
	q, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0
	}
	return q
}
