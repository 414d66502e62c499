package store

import "time"

// Document is the single persisted structure holding every collection.
type Document struct {
	Menu     []MenuItem     `json:"menu"`
	Orders   []Order        `json:"orders"`
	Sessions []Session      `json:"sessions"`
	Students []Student      `json:"students"`
	Admins   []AdminAccount `json:"admins"`
	Meta     Meta           `json:"meta"`
}

type Meta struct {
	NextOrderID int `json:"nextOrderId"`
}

type MenuItem struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Price    int    `json:"price" yaml:"price"`
	InStock  bool   `json:"inStock" yaml:"inStock"`
}

type Student struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

type AdminAccount struct {
	ID      string `json:"id"`
	PinHash string `json:"pinHash"`
}

type Session struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID            int         `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	CustomerName  string      `json:"customerName"`
	RoomNumber    string      `json:"roomNumber"`
	Phone         string      `json:"phone"`
	StudentEmail  string      `json:"studentEmail"`
	PaymentMethod string      `json:"paymentMethod"`
	Notes         string      `json:"notes"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	Items         []OrderLine `json:"items"`
	Total         int         `json:"total"`
}

// OrderLine snapshots the item name and price at order time.
type OrderLine struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int    `json:"lineTotal"`
}

// normalize replaces nil collections with empty ones so they encode as [].
func (d *Document) normalize() {
	if d.Menu == nil {
		d.Menu = []MenuItem{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	if d.Students == nil {
		d.Students = []Student{}
	}
	if d.Admins == nil {
		d.Admins = []AdminAccount{}
	}
	for i := range d.Orders {
		if d.Orders[i].Items == nil {
			d.Orders[i].Items = []OrderLine{}
		}
	}
}

// NewDocument builds the bootstrap document.
func NewDocument(menu []MenuItem, admin AdminAccount, nextOrderID int) *Document {
	d := &Document{
		Menu:   append([]MenuItem(nil), menu...),
		Admins: []AdminAccount{admin},
		Meta:   Meta{NextOrderID: nextOrderID},
	}
	d.normalize()
	return d
}

// StudentIndex maps normalized email to the position of the student record.
func (d *Document) StudentIndex() map[string]int {
	idx := make(map[string]int, len(d.Students))
	for i, s := range d.Students {
		idx[s.Email] = i
	}
	return idx
}

// FindStudentByID returns the student with the given id, or nil.
func (d *Document) FindStudentByID(id string) *Student {
	for i := range d.Students {
		if d.Students[i].ID == id {
			return &d.Students[i]
		}
	}
	return nil
}

// FindSession returns the session matching both token and role, or nil.
func (d *Document) FindSession(token, role string) *Session {
	for i := range d.Sessions {
		if d.Sessions[i].Token == token && d.Sessions[i].Role == role {
			return &d.Sessions[i]
		}
	}
	return nil
}

// FindOrder returns the index of the order with the given id, or -1.
func (d *Document) FindOrder(id int) int {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

// Admin returns the singleton admin account, or nil when none exists.
func (d *Document) Admin() *AdminAccount {
	if len(d.Admins) == 0 {
		return nil
	}
	return &d.Admins[0]
}
