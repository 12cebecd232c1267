package importer

import (
	"strings"
	"time"

	"catalog-manager/core/utils"
)

// record is one CSV row addressed by header name.
type record struct {
	columns map[string]int
	fields  []string
}

// headerIndex maps normalized column names to positions. The first
// occurrence of a duplicated column wins.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if _, ok := columns[key]; !ok {
			columns[key] = i
		}
	}
	return columns
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// get returns the first non-empty value among the given column names.
func (r record) get(names ...string) string {
	for _, name := range names {
		i, ok := r.columns[name]
		if !ok || i >= len(r.fields) {
			continue
		}
		if v := strings.TrimSpace(r.fields[i]); v != "" {
			return v
		}
	}
	return ""
}

func (r record) getOr(fallback string, names ...string) string {
	if v := r.get(names...); v != "" {
		return v
	}
	return fallback
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
	"01/02/2006",
}

// parseDate accepts the common export layouts and unix seconds.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if secs := utils.ToInt64(s); secs > 0 {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	return nil
}

// parseSize reads a byte count. Values with a KB suffix are the registry's
// EstimatedSize unit.
func parseSize(s string) int64 {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "KB") {
		return utils.ToInt64(strings.TrimSpace(s[:len(s)-2])) * 1024
	}
	return utils.ToInt64(s)
}
