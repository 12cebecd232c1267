// Package catalog is the deduplicated, versioned reference catalog.
//
// Entries are keyed by (Source, ExternalID). Every committed mutation takes the
// next value of the single global version counter, stamps it onto the entry and
// appends exactly one ChangeLog row in the same transaction. Upserts that would
// not change any provided field are no-ops: no version bump, no audit row.
//
// # Writes
//
//	entry, created, err := store.Upsert(ctx, "Steam", "620", catalog.EntryFields{
//	    Name: catalog.Ptr("Portal 2"),
//	    Type: catalog.Ptr(catalog.TypeGame),
//	}, catalog.ChangedBy("import"))
//
// Writes are serialised inside the process and run in a transaction that locks
// the existing row. An insert that loses a duplicate-key race is retried and
// lands on the update path.
//
// # Installed records
//
// InstalledRecord rows are machine-local observations linked to an entry.
// They are not versioned and never exist without an entry.
//
// # HTTP
//
// The Feature exposes the catalog under /catalog: entry listing, upsert, delete,
// history, the change feed, stats and installed records.
package catalog
