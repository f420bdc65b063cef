// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns of tenant aggregates
//   - ordering.go: orders, items and item options
//   - dining.go: tables, sessions, guests, bill splits and item audit rows
//   - finance.go: registers, shifts, categories and the money ledger
//   - inventory.go: recipes, branch stock and the stock ledger
//   - loyalty.go: customers, programs and the points ledger
//   - catalog.go: read models of menu items and coupons owned by other services
//
// Money columns are numeric(12,2) and quantities numeric(12,3).
package models
