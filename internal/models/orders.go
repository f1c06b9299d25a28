package models

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// VAT rate applied to professional customer orders, in percent.
const VAT = 5.5

// BatchTarget tells which production day a delivery schedule is baked for.
type BatchTarget string

const (
	// SameDay means loaves are baked the morning of the delivery.
	SameDay BatchTarget = "SAME_DAY"
	// PreviousDay means loaves are baked the day before the delivery.
	PreviousDay BatchTarget = "PREVIOUS_DAY"
)

// Customer represents an account that can place orders.
type Customer struct {
	gorm.Model
	Username              string  `gorm:"unique_index" json:"username"`
	DisplayName           string  `gorm:"unique_index" json:"display_name"`
	Email                 string  `json:"email"`
	IsProfessional        bool    `json:"is_professional"`
	ProDiscountPercentage float64 `json:"pro_discount_percentage"`
	Address               string  `json:"address"`
	Notes                 string  `json:"notes"`
}

// TableName sets the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// WeeklyDelivery represents a recurring weekly delivery schedule for one
// customer, with the batching policy used to derive production days.
type WeeklyDelivery struct {
	gorm.Model
	CustomerID  uint         `json:"customer_id"`
	Customer    *Customer    `gorm:"foreignkey:CustomerID" json:"-"`
	Active      bool         `json:"active"`
	BatchTarget BatchTarget  `gorm:"type:varchar(20)" json:"batch_target"`
	DayOfWeek   time.Weekday `gorm:"type:integer" json:"day_of_week"`
	Notes       string       `json:"notes"`
}

// TableName sets the table name for WeeklyDelivery
func (WeeklyDelivery) TableName() string {
	return "weekly_deliveries"
}

func (w *WeeklyDelivery) String() string {
	customer := ""
	if w.Customer != nil {
		customer = w.Customer.DisplayName
	}
	return fmt.Sprintf("%s: %s", customer, w.DayOfWeek)
}

// DeliveryDate is a concrete calendar date of a weekly delivery schedule.
type DeliveryDate struct {
	gorm.Model
	WeeklyDeliveryID uint            `json:"weekly_delivery_id"`
	WeeklyDelivery   *WeeklyDelivery `gorm:"foreignkey:WeeklyDeliveryID" json:"-"`
	Date             time.Time       `gorm:"type:date" json:"date"`
	Active           bool            `json:"active"`
	Notes            string          `json:"notes"`
}

// TableName sets the table name for DeliveryDate
func (DeliveryDate) TableName() string {
	return "delivery_dates"
}

// BatchTarget returns the batching policy of the owning schedule, defaulting
// to same-day baking when the schedule is not loaded.
func (d *DeliveryDate) BatchTarget() BatchTarget {
	if d.WeeklyDelivery == nil || d.WeeklyDelivery.BatchTarget == "" {
		return SameDay
	}
	return d.WeeklyDelivery.BatchTarget
}

// Order represents a customer order bound to one delivery date. Orders are
// read-only input to the production engine.
type Order struct {
	gorm.Model
	CustomerID     uint          `json:"customer_id"`
	Customer       *Customer     `gorm:"foreignkey:CustomerID" json:"-"`
	DeliveryDateID uint          `json:"delivery_date_id"`
	DeliveryDate   *DeliveryDate `gorm:"foreignkey:DeliveryDateID" json:"delivery_date"`
	Validated      bool          `json:"validated"`
	Notes          string        `json:"notes"`
	Lines          []OrderLine   `gorm:"foreignkey:OrderID" json:"lines"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TotalPrice sums the order line prices, with the professional discount rule
// applied per line.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Price(o.Customer))
	}
	return total.Round(2)
}

// OrderLine is one product quantity inside an order.
type OrderLine struct {
	gorm.Model
	OrderID   uint     `json:"-"`
	ProductID uint     `json:"-"`
	Product   *Product `gorm:"foreignkey:ProductID" json:"product"`
	Quantity  int      `json:"quantity"`
}

// TableName sets the table name for OrderLine
func (OrderLine) TableName() string {
	return "order_lines"
}

// Price returns the line price for the given customer. Professional
// customers buy VAT-free with their negotiated discount.
func (l *OrderLine) Price(customer *Customer) decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	total := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if customer != nil && customer.IsProfessional {
		vat := total.Mul(decimal.NewFromFloat(VAT / 100))
		discount := decimal.NewFromFloat(1 - customer.ProDiscountPercentage/100)
		total = total.Sub(vat).Mul(discount)
	}
	return total.Round(2)
}

// Day truncates a timestamp to its calendar date in local time.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
