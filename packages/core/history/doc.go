// Package history keeps the append-only record of executed requests.
//
// The ledger holds at most 100 entries; appending beyond that drops the
// oldest. Queries return entries newest first and never modify the ledger.
// There is no way to delete individual entries.
package history
