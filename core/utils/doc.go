// Package utils provides small helpers shared across the catalog manager:
// loose type conversion for CSV and query values, and title normalization
// and similarity scoring used by the metadata providers.
package utils
