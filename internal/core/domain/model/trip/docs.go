// Package trip holds the inputs and outputs of SKU consolidation: the
// OptimizationParameters value threaded through every planning stage, the
// immutable TripGroup and the ComplianceReport that flags groups outside the
// SKU target range.
package trip
