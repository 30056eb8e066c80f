// Package models defines the core domain models for flatwise.
//
// # Models
//
//   - Flat: a shared household; aggregates users and items
//   - User: a flat member; owes and is owed money through ledger entries
//   - Item: a shared bill or asset that depreciates over time
//   - Transaction: a ledger entry between two users, tied to an item event
//
// # Design Principles
//
// 1. Relationships are ID strings, never pointers (no cycles between flats, users and items)
// 2. An empty ID means the entity has not been persisted yet
// 3. Monetary amounts are float64 in a single implicit currency
// 4. Dates without a time of day are time.Time values at UTC midnight (see Date)
package models
