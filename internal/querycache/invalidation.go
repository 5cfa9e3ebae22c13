package querycache

// Entity names are the first segment of every cache key. They mirror
// the backend resource paths.
const (
	EntityProducts        = "products"
	EntityCategories      = "categories"
	EntityCustomers       = "customers"
	EntitySuppliers       = "suppliers"
	EntityInvoices        = "invoices"
	EntityOrders          = "orders"
	EntityQuotes          = "quotes"
	EntityPurchases       = "purchases"
	EntityDeliveries      = "deliveries"
	EntityInventoryChecks = "inventory-checks"
	EntityCashFlow        = "cashflow-transactions"
)

// Dependents is the cross-entity invalidation graph in one place: after
// a mutation of the map key, every listed entity holds derived
// aggregates (stock, debt, cash balance) that must be refetched on next
// read.
//
//	invoices          -> product stock, customer debt, cash flow
//	purchases         -> product stock, supplier debt
//	inventory-checks  -> product stock, cash flow (shrinkage vouchers)
//	cashflow          -> customer debt, supplier debt
//	orders            -> reserved product stock
//	deliveries        -> invoice shipping status
//	categories        -> product category labels
func Dependents() map[string][]string {
	return map[string][]string{
		EntityInvoices:        {EntityProducts, EntityCustomers, EntityCashFlow},
		EntityPurchases:       {EntityProducts, EntitySuppliers},
		EntityInventoryChecks: {EntityProducts, EntityCashFlow},
		EntityCashFlow:        {EntityCustomers, EntitySuppliers},
		EntityOrders:          {EntityProducts},
		EntityDeliveries:      {EntityInvoices},
		EntityCategories:      {EntityProducts},
		EntityQuotes:          {},
		EntityProducts:        {},
		EntityCustomers:       {},
		EntitySuppliers:       {},
	}
}
