package models

import "time"

// Dataset is the raw record set handed to the KPI providers.
type Dataset struct {
	Customers []Customer `json:"customers"`
	Orders    []Order    `json:"orders"`
	Invoices  []Invoice  `json:"invoices"`
	Products  []Product  `json:"products"`
}

type Order struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	OrderDate  time.Time `json:"order_date"`
	Amount     float64   `json:"amount"`
}

type Invoice struct {
	InvoiceID     string     `json:"invoice_id"`
	CustomerID    string     `json:"customer_id"`
	InvoiceDate   time.Time  `json:"invoice_date"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Amount        float64    `json:"invoice_amount"`
	PaymentStatus string     `json:"payment_status"`
}

type Customer struct {
	CustomerID    string     `json:"customer_id"`
	Name          string     `json:"customer_name"`
	Segment       string     `json:"segment"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
	SignupDate    *time.Time `json:"signup_date,omitempty"`
	LifetimeValue float64    `json:"lifetime_value"`
}

type Product struct {
	ProductID        string  `json:"product_id"`
	Name             string  `json:"product_name"`
	StockLevel       float64 `json:"stock_level"`
	ReorderThreshold float64 `json:"reorder_threshold"`
}
