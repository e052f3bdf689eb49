// Package order provides the Order aggregate: a retailer's pending delivery with
// its SKU lines, destination, optional delivery window and priority.
//
// The package includes:
//   - Order: the aggregate root with its lifecycle
//   - SKULine: an immutable line item with quantity, unit weight and unit volume
//   - Status: Pending -> Planned -> Delivered
//   - Priority and TemperatureClass enumerations
//
// Key business rules:
//   - an order carries at least one SKU line
//   - quantities are positive, unit weight and volume are non-negative
//   - the SKU count of an order is the number of distinct SKU codes it carries
//   - only pending orders can be planned, only planned orders can be delivered
package order
