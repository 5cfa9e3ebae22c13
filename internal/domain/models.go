package domain

import "time"

// WalkInCustomerName is the display placeholder for sales without a
// customer record attached.
const WalkInCustomerName = "Khách lẻ"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Organization struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	TaxCode string `json:"tax_code"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ProfileUpdateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Page is the canonical list shape every read returns, regardless of
// whether the backend answered with a bare array or an envelope.
type Page[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListParams are the query parameters accepted by list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	PartyID string
}

// PartySnapshot is the counterparty contact block embedded into a
// document at creation time. It is copied once and never resynchronized
// from the live customer/supplier record, so historical documents stay
// stable.
type PartySnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxCode string `json:"tax_code,omitempty"`
}

type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID         string  `json:"id,omitempty"`
	SKU        string  `json:"sku" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	CategoryID string  `json:"category_id,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	CostPrice  int64   `json:"cost_price" validate:"min=0"`
	SalePrice  int64   `json:"sale_price" validate:"min=0"`
	Stock      int     `json:"stock"`
	VATRate    float64 `json:"vat_rate" validate:"min=0,max=1"`
	Active     bool    `json:"active"`
}

type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"omitempty,numeric,min=9,max=12"`
	Address string `json:"address,omitempty"`
	TaxCode string `json:"tax_code,omitempty"`
	Note    string `json:"note,omitempty"`
}

type Supplier struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"omitempty,numeric,min=9,max=12"`
	Address string `json:"address,omitempty"`
	TaxCode string `json:"tax_code,omitempty"`
	Note    string `json:"note,omitempty"`
}

type DocumentLine struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty" validate:"gt=0"`
	UnitPrice int64   `json:"unit_price" validate:"min=0"`
	VATRate   float64 `json:"vat_rate" validate:"min=0,max=1"`
}

// Invoice is a finalized sale document (hóa đơn). CustomerID is empty
// for walk-in sales; Customer is the copy-once snapshot.
type Invoice struct {
	ID         string         `json:"id,omitempty"`
	Code       string         `json:"code,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Customer   PartySnapshot  `json:"customer_snapshot"`
	Lines      []DocumentLine `json:"lines" validate:"required,min=1,dive"`
	Total      int64          `json:"total"`
	Paid       int64          `json:"paid"`
	Status     string         `json:"status"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Order is a pre-sale commitment (đơn hàng), convertible to an Invoice.
type Order struct {
	ID         string         `json:"id,omitempty"`
	Code       string         `json:"code,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Customer   PartySnapshot  `json:"customer_snapshot"`
	Lines      []DocumentLine `json:"lines" validate:"required,min=1,dive"`
	Total      int64          `json:"total"`
	Status     string         `json:"status"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Quote is a non-binding price proposal (báo giá), convertible to an Order.
type Quote struct {
	ID         string         `json:"id,omitempty"`
	Code       string         `json:"code,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Customer   PartySnapshot  `json:"customer_snapshot"`
	Lines      []DocumentLine `json:"lines" validate:"required,min=1,dive"`
	Total      int64          `json:"total"`
	ValidUntil *time.Time     `json:"valid_until,omitempty"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Purchase is a goods-receipt document from a supplier (phiếu nhập).
// Supplier is the copy-once snapshot.
type Purchase struct {
	ID         string         `json:"id,omitempty"`
	Code       string         `json:"code,omitempty"`
	SupplierID string         `json:"supplier_id" validate:"required"`
	Supplier   PartySnapshot  `json:"supplier_snapshot"`
	Lines      []DocumentLine `json:"lines" validate:"required,min=1,dive"`
	Total      int64          `json:"total"`
	Paid       int64          `json:"paid"`
	Status     string         `json:"status"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Delivery is shipment paperwork (phiếu giao hàng) tied to an Invoice.
type Delivery struct {
	ID        string     `json:"id,omitempty"`
	Code      string     `json:"code,omitempty"`
	InvoiceID string     `json:"invoice_id" validate:"required"`
	Receiver  string     `json:"receiver,omitempty"`
	Address   string     `json:"address,omitempty"`
	Status    string     `json:"status"`
	ShippedAt *time.Time `json:"shipped_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type InventoryCheckLine struct {
	ProductID  string `json:"product_id" validate:"required"`
	Name       string `json:"name"`
	BookQty    int    `json:"book_qty"`
	CountedQty int    `json:"counted_qty" validate:"min=0"`
	Diff       int    `json:"diff"`
}

// InventoryCheck is a stock reconciliation document (phiếu kiểm kho)
// comparing book stock to counted stock.
type InventoryCheck struct {
	ID        string               `json:"id,omitempty"`
	Code      string               `json:"code,omitempty"`
	Note      string               `json:"note,omitempty"`
	Lines     []InventoryCheckLine `json:"lines" validate:"required,min=1,dive"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// CashFlowTransaction is a receipt or payment voucher (phiếu thu/chi).
// Reference optionally ties the voucher to an invoice or purchase.
type CashFlowTransaction struct {
	ID        string    `json:"id,omitempty"`
	Code      string    `json:"code,omitempty"`
	Type      string    `json:"type" validate:"required,oneof=thu chi"`
	Amount    int64     `json:"amount" validate:"gt=0"`
	PartyID   string    `json:"party_id,omitempty"`
	PartyName string    `json:"party_name,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusIssued    = "issued"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

const (
	OrderStatusDraft     = "draft"
	OrderStatusConfirmed = "confirmed"
	OrderStatusConverted = "converted"
	OrderStatusCancelled = "cancelled"
)

const (
	QuoteStatusOpen      = "open"
	QuoteStatusConverted = "converted"
	QuoteStatusExpired   = "expired"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusShipped   = "shipped"
	DeliveryStatusDelivered = "delivered"
)

const (
	CashFlowTypeReceipt = "thu"
	CashFlowTypePayment = "chi"
)
