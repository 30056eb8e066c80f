// Package settlement generates the ledger entries triggered by membership changes on shared
// items: a user buying into an item, a user being bought out of an item, and the flat-level
// move-in and move-out that apply those two primitives to every affected item.
//
// Sign convention:
//
//	event    creditor             debtor               amount per entry     entries
//	buy-in   each existing user   joining user         v/N − v/(N+1)        N
//	buy-out  leaving user         each remaining user  (v/N) / (N−1)        N−1
//
// where v is the item's depreciated value on the event date and N is the number of users
// sharing the item before the change.
//
// The engine only stages entries through a Ledger. Committing or rolling back is the
// caller's job, and so is persisting the membership changes the engine makes in memory.
package settlement
