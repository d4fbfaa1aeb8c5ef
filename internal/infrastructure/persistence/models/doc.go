// Package models contains GORM persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns; ToDomain converts a row into its read model.
//
// Structure:
//   - catalog.go: products and categories
//   - deal.go: deals and deal usage records
//   - customer.go: customers, transactions and cart lines
package models
