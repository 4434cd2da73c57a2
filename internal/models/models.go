package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order
type Order struct {
	ID              int64           `db:"id" json:"id"`
	Slug            string          `db:"slug" json:"slug"`
	Status          OrderStatus     `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	DeliveryDate    time.Time       `db:"delivery_date" json:"delivery_date"`
	DeliveryTime    string          `db:"delivery_time" json:"delivery_time"`
	DeliveryAddress string          `db:"delivery_address" json:"delivery_address"`
	Phone           string          `db:"phone" json:"phone"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	UserID          string          `db:"user_id" json:"user_id"`
	ProofOfPayment  string          `db:"proof_of_payment" json:"proof_of_payment"`
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// OrderItemWithProduct is an order item joined with its product
type OrderItemWithProduct struct {
	OrderItem
	Product Product `db:"product" json:"product"`
}

// ProductSize is the pack size of a product
type ProductSize string

const (
	ProductSize6  ProductSize = "6pcs"
	ProductSize12 ProductSize = "12pcs"
)

// Product represents a product in the catalog
type Product struct {
	ID         int64           `db:"id" json:"id"`
	Slug       string          `db:"slug" json:"slug"`
	Flavor     string          `db:"flavor" json:"flavor"`
	Size       ProductSize     `db:"size" json:"size"`
	Price      decimal.Decimal `db:"price" json:"price"`
	CategoryID int64           `db:"category_id" json:"category_id"`
	HeroImage  string          `db:"hero_image" json:"hero_image"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Category groups products
type Category struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ImageURL string `db:"image_url" json:"image_url"`
}

// CategoryWithProducts is a category with its products attached
type CategoryWithProducts struct {
	Category
	Products []Product `json:"products"`
}

// UserType is the account type of a user
type UserType string

const (
	UserTypeRegular UserType = "regular"
	UserTypeAdmin   UserType = "admin"
)

// User represents a registered account. CreatedAt is nil for rows without a signup time.
type User struct {
	ID        string     `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	Type      UserType   `db:"type" json:"type"`
	CreatedAt *time.Time `db:"created_at" json:"created_at"`
}

// Notification is a message delivered to a user's inbox
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OrderWithProducts is an order joined with its items, their products and the ordering user
type OrderWithProducts struct {
	Order
	UserEmail string                 `db:"user_email" json:"user_email"`
	Items     []OrderItemWithProduct `json:"order_items"`
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
