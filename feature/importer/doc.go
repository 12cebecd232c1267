// Package importer loads exported software and game lists into the catalog.
//
// Both inputs are comma-separated files with a header row; columns are
// matched by name, case-insensitively, with common aliases (DisplayName,
// AppID, EstimatedSize...). Software rows default to the Registry source and
// the Application type; game rows default to the Steam source and the Game
// type. Rows with an install location also refresh the installed record.
//
// Every row is counted as imported, unchanged, skipped or failed. A failed
// row does not stop the file.
package importer
