// Package views composes cached entities into read models for display.
// Aggregates (debt, remaining amounts, stock differences) are never
// stored; they are recomputed from the underlying lists, and cache
// invalidation keeps them current.
package views

import (
	"context"

	"github.com/shopspring/decimal"

	"banhangso/client/internal/domain"
	"banhangso/client/internal/service"
)

type Views struct {
	svc *service.Service
}

func New(svc *service.Service) *Views {
	return &Views{svc: svc}
}

// InvoiceDetail is the invoice page read model: the document, its
// display party block, the live customer record when one exists, and
// the payment vouchers referencing the invoice.
type InvoiceDetail struct {
	Invoice   domain.Invoice
	Party     domain.PartySnapshot
	WalkIn    bool
	Customer  *domain.Customer
	Payments  []domain.CashFlowTransaction
	Remaining int64
}

// InvoiceDetail joins invoice + customer + payment history. For a
// walk-in sale (empty CustomerID) no customer fetch is issued and the
// party block falls back to the embedded snapshot, defaulting to the
// walk-in placeholder. Display always uses the snapshot, never the live
// record; the live record is only attached for contact actions.
func (v *Views) InvoiceDetail(ctx context.Context, id string) (InvoiceDetail, error) {
	invoice, err := v.svc.Invoice(ctx, id)
	if err != nil {
		return InvoiceDetail{}, err
	}

	detail := InvoiceDetail{
		Invoice:   invoice,
		Party:     invoice.Customer,
		Remaining: RemainingAmount(invoice.Total, invoice.Paid),
	}

	if invoice.CustomerID == "" {
		detail.WalkIn = true
		if detail.Party.Name == "" {
			detail.Party.Name = domain.WalkInCustomerName
		}
		return detail, nil
	}

	customer, err := v.svc.Customer(ctx, invoice.CustomerID)
	if err != nil {
		return InvoiceDetail{}, err
	}
	detail.Customer = &customer

	vouchers, err := v.svc.CashFlowTransactions(ctx, domain.ListParams{PartyID: invoice.CustomerID})
	if err != nil {
		return InvoiceDetail{}, err
	}
	for _, voucher := range vouchers.Items {
		if voucher.Reference == invoice.ID {
			detail.Payments = append(detail.Payments, voucher)
		}
	}
	return detail, nil
}

// CustomerDebt sums the remaining amount of the customer's
// non-cancelled invoices.
func (v *Views) CustomerDebt(ctx context.Context, customerID string) (int64, error) {
	invoices, err := v.svc.Invoices(ctx, domain.ListParams{PartyID: customerID})
	if err != nil {
		return 0, err
	}
	debt := decimal.Zero
	for _, invoice := range invoices.Items {
		if invoice.Status == domain.InvoiceStatusCancelled {
			continue
		}
		debt = debt.Add(decimal.NewFromInt(RemainingAmount(invoice.Total, invoice.Paid)))
	}
	return debt.IntPart(), nil
}

// SupplierDebt sums the remaining amount of the supplier's purchases.
func (v *Views) SupplierDebt(ctx context.Context, supplierID string) (int64, error) {
	purchases, err := v.svc.Purchases(ctx, domain.ListParams{PartyID: supplierID})
	if err != nil {
		return 0, err
	}
	debt := decimal.Zero
	for _, purchase := range purchases.Items {
		debt = debt.Add(decimal.NewFromInt(RemainingAmount(purchase.Total, purchase.Paid)))
	}
	return debt.IntPart(), nil
}

// CashBalance computes cash on hand from receipt and payment vouchers.
func (v *Views) CashBalance(ctx context.Context) (int64, error) {
	vouchers, err := v.svc.CashFlowTransactions(ctx, domain.ListParams{})
	if err != nil {
		return 0, err
	}
	balance := decimal.Zero
	for _, voucher := range vouchers.Items {
		amount := decimal.NewFromInt(voucher.Amount)
		if voucher.Type == domain.CashFlowTypePayment {
			balance = balance.Sub(amount)
		} else {
			balance = balance.Add(amount)
		}
	}
	return balance.IntPart(), nil
}

// StockSummary aggregates the product list for the dashboard header.
type StockSummary struct {
	ProductCount int
	TotalUnits   int
	// StockValue is the on-hand quantity valued at cost price.
	StockValue int64
	OutOfStock int
}

// ProductStockSummary walks every product page and aggregates stock.
// Inactive products are excluded.
func (v *Views) ProductStockSummary(ctx context.Context) (StockSummary, error) {
	var summary StockSummary
	value := decimal.Zero
	for page := 1; ; page++ {
		result, err := v.svc.Products(ctx, domain.ListParams{Page: page, Limit: 100})
		if err != nil {
			return StockSummary{}, err
		}
		for _, product := range result.Items {
			if !product.Active {
				continue
			}
			summary.ProductCount++
			summary.TotalUnits += product.Stock
			if product.Stock <= 0 {
				summary.OutOfStock++
			}
			value = value.Add(decimal.NewFromInt(product.CostPrice).Mul(decimal.NewFromInt(int64(product.Stock))))
		}
		if page >= result.TotalPages {
			break
		}
	}
	summary.StockValue = value.IntPart()
	return summary, nil
}

// RemainingAmount is total minus paid, floored at zero (overpayment is
// change, not negative debt).
func RemainingAmount(total, paid int64) int64 {
	remaining := decimal.NewFromInt(total).Sub(decimal.NewFromInt(paid))
	if remaining.IsNegative() {
		return 0
	}
	return remaining.IntPart()
}

// DocumentTotals computes subtotal, VAT and grand total for a set of
// document lines. VAT is accumulated per line at that line's rate and
// rounded half-up to whole đồng once at the end.
func DocumentTotals(lines []domain.DocumentLine) (subtotal, vat, total int64) {
	sub := decimal.Zero
	tax := decimal.Zero
	for _, line := range lines {
		amount := decimal.NewFromInt(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Qty)))
		sub = sub.Add(amount)
		tax = tax.Add(amount.Mul(decimal.NewFromFloat(line.VATRate)))
	}
	tax = tax.Round(0)
	return sub.IntPart(), tax.IntPart(), sub.Add(tax).IntPart()
}

// LineDiff is one row of an inventory check comparison.
type LineDiff struct {
	ProductID   string
	Name        string
	BookQty     int
	CountedQty  int
	Diff        int
	ValueImpact int64
}

// InventoryCheckDiff recomputes the per-line stock difference and its
// value at the given unit costs (by product id). Lines with no recorded
// cost get a zero value impact.
func InventoryCheckDiff(check domain.InventoryCheck, costs map[string]int64) []LineDiff {
	diffs := make([]LineDiff, 0, len(check.Lines))
	for _, line := range check.Lines {
		diff := line.CountedQty - line.BookQty
		impact := decimal.NewFromInt(costs[line.ProductID]).Mul(decimal.NewFromInt(int64(diff)))
		diffs = append(diffs, LineDiff{
			ProductID:   line.ProductID,
			Name:        line.Name,
			BookQty:     line.BookQty,
			CountedQty:  line.CountedQty,
			Diff:        diff,
			ValueImpact: impact.IntPart(),
		})
	}
	return diffs
}
