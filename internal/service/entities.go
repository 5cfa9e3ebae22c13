package service

import (
	"context"

	"banhangso/client/internal/domain"
	"banhangso/client/internal/querycache"
)

func (s *Service) Products(ctx context.Context, p domain.ListParams) (domain.Page[domain.Product], error) {
	return list[domain.Product](ctx, s, querycache.EntityProducts, "/products", p)
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	return get[domain.Product](ctx, s, querycache.EntityProducts, "/products", id)
}

func (s *Service) SaveProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	return save(ctx, s, querycache.EntityProducts, "/products", product.ID, product, "Product")
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityProducts, "/products", id, "Product")
}

func (s *Service) Categories(ctx context.Context, p domain.ListParams) (domain.Page[domain.Category], error) {
	return list[domain.Category](ctx, s, querycache.EntityCategories, "/categories", p)
}

func (s *Service) SaveCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	return save(ctx, s, querycache.EntityCategories, "/categories", category.ID, category, "Category")
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityCategories, "/categories", id, "Category")
}

func (s *Service) Customers(ctx context.Context, p domain.ListParams) (domain.Page[domain.Customer], error) {
	return list[domain.Customer](ctx, s, querycache.EntityCustomers, "/customers", p)
}

func (s *Service) Customer(ctx context.Context, id string) (domain.Customer, error) {
	return get[domain.Customer](ctx, s, querycache.EntityCustomers, "/customers", id)
}

func (s *Service) SaveCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	return save(ctx, s, querycache.EntityCustomers, "/customers", customer.ID, customer, "Customer")
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityCustomers, "/customers", id, "Customer")
}

func (s *Service) Suppliers(ctx context.Context, p domain.ListParams) (domain.Page[domain.Supplier], error) {
	return list[domain.Supplier](ctx, s, querycache.EntitySuppliers, "/suppliers", p)
}

func (s *Service) Supplier(ctx context.Context, id string) (domain.Supplier, error) {
	return get[domain.Supplier](ctx, s, querycache.EntitySuppliers, "/suppliers", id)
}

func (s *Service) SaveSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	return save(ctx, s, querycache.EntitySuppliers, "/suppliers", supplier.ID, supplier, "Supplier")
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntitySuppliers, "/suppliers", id, "Supplier")
}

func (s *Service) Invoices(ctx context.Context, p domain.ListParams) (domain.Page[domain.Invoice], error) {
	return list[domain.Invoice](ctx, s, querycache.EntityInvoices, "/invoices", p)
}

func (s *Service) Invoice(ctx context.Context, id string) (domain.Invoice, error) {
	return get[domain.Invoice](ctx, s, querycache.EntityInvoices, "/invoices", id)
}

// SaveInvoice persists a sale document. A successful save invalidates
// products (stock), customers (debt) and cash flow alongside the
// invoice keys themselves; see querycache.Dependents.
func (s *Service) SaveInvoice(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	return save(ctx, s, querycache.EntityInvoices, "/invoices", invoice.ID, invoice, "Invoice")
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityInvoices, "/invoices", id, "Invoice")
}

func (s *Service) Orders(ctx context.Context, p domain.ListParams) (domain.Page[domain.Order], error) {
	return list[domain.Order](ctx, s, querycache.EntityOrders, "/orders", p)
}

func (s *Service) Order(ctx context.Context, id string) (domain.Order, error) {
	return get[domain.Order](ctx, s, querycache.EntityOrders, "/orders", id)
}

func (s *Service) SaveOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	return save(ctx, s, querycache.EntityOrders, "/orders", order.ID, order, "Order")
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityOrders, "/orders", id, "Order")
}

// ConvertOrderToInvoice finalizes an order into a sale document.
func (s *Service) ConvertOrderToInvoice(ctx context.Context, orderID string) (domain.Invoice, error) {
	return convert[domain.Invoice](ctx, s, querycache.EntityOrders, querycache.EntityInvoices, "/orders/"+orderID+"/convert")
}

func (s *Service) Quotes(ctx context.Context, p domain.ListParams) (domain.Page[domain.Quote], error) {
	return list[domain.Quote](ctx, s, querycache.EntityQuotes, "/quotes", p)
}

func (s *Service) Quote(ctx context.Context, id string) (domain.Quote, error) {
	return get[domain.Quote](ctx, s, querycache.EntityQuotes, "/quotes", id)
}

func (s *Service) SaveQuote(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	return save(ctx, s, querycache.EntityQuotes, "/quotes", quote.ID, quote, "Quote")
}

func (s *Service) DeleteQuote(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityQuotes, "/quotes", id, "Quote")
}

// ConvertQuoteToOrder turns an accepted quote into an order.
func (s *Service) ConvertQuoteToOrder(ctx context.Context, quoteID string) (domain.Order, error) {
	return convert[domain.Order](ctx, s, querycache.EntityQuotes, querycache.EntityOrders, "/quotes/"+quoteID+"/convert")
}

func (s *Service) Purchases(ctx context.Context, p domain.ListParams) (domain.Page[domain.Purchase], error) {
	return list[domain.Purchase](ctx, s, querycache.EntityPurchases, "/purchases", p)
}

func (s *Service) Purchase(ctx context.Context, id string) (domain.Purchase, error) {
	return get[domain.Purchase](ctx, s, querycache.EntityPurchases, "/purchases", id)
}

// SavePurchase persists a goods receipt; it invalidates products
// (stock) and suppliers (debt) on success.
func (s *Service) SavePurchase(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	return save(ctx, s, querycache.EntityPurchases, "/purchases", purchase.ID, purchase, "Purchase")
}

func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityPurchases, "/purchases", id, "Purchase")
}

func (s *Service) Deliveries(ctx context.Context, p domain.ListParams) (domain.Page[domain.Delivery], error) {
	return list[domain.Delivery](ctx, s, querycache.EntityDeliveries, "/deliveries", p)
}

func (s *Service) Delivery(ctx context.Context, id string) (domain.Delivery, error) {
	return get[domain.Delivery](ctx, s, querycache.EntityDeliveries, "/deliveries", id)
}

func (s *Service) SaveDelivery(ctx context.Context, delivery domain.Delivery) (domain.Delivery, error) {
	return save(ctx, s, querycache.EntityDeliveries, "/deliveries", delivery.ID, delivery, "Delivery")
}

func (s *Service) DeleteDelivery(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityDeliveries, "/deliveries", id, "Delivery")
}

func (s *Service) InventoryChecks(ctx context.Context, p domain.ListParams) (domain.Page[domain.InventoryCheck], error) {
	return list[domain.InventoryCheck](ctx, s, querycache.EntityInventoryChecks, "/inventory-checks", p)
}

func (s *Service) InventoryCheck(ctx context.Context, id string) (domain.InventoryCheck, error) {
	return get[domain.InventoryCheck](ctx, s, querycache.EntityInventoryChecks, "/inventory-checks", id)
}

// SaveInventoryCheck persists a stock reconciliation; it invalidates
// products (adjusted stock) and cash flow (shrinkage) on success.
func (s *Service) SaveInventoryCheck(ctx context.Context, check domain.InventoryCheck) (domain.InventoryCheck, error) {
	return save(ctx, s, querycache.EntityInventoryChecks, "/inventory-checks", check.ID, check, "Inventory check")
}

func (s *Service) DeleteInventoryCheck(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityInventoryChecks, "/inventory-checks", id, "Inventory check")
}

func (s *Service) CashFlowTransactions(ctx context.Context, p domain.ListParams) (domain.Page[domain.CashFlowTransaction], error) {
	return list[domain.CashFlowTransaction](ctx, s, querycache.EntityCashFlow, "/cashflow-transactions", p)
}

func (s *Service) CashFlowTransaction(ctx context.Context, id string) (domain.CashFlowTransaction, error) {
	return get[domain.CashFlowTransaction](ctx, s, querycache.EntityCashFlow, "/cashflow-transactions", id)
}

func (s *Service) SaveCashFlowTransaction(ctx context.Context, voucher domain.CashFlowTransaction) (domain.CashFlowTransaction, error) {
	return save(ctx, s, querycache.EntityCashFlow, "/cashflow-transactions", voucher.ID, voucher, "Voucher")
}

func (s *Service) DeleteCashFlowTransaction(ctx context.Context, id string) error {
	return del(ctx, s, querycache.EntityCashFlow, "/cashflow-transactions", id, "Voucher")
}
