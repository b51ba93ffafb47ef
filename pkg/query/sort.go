package query

import "strings"

// SortField names a projected field and its direction.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses a comma-separated sort expression such as
// "title,-created_at". A leading "-" marks the field descending. Names in
// snake_case or camelCase map to the PascalCase projection fields, so
// "created_at" and "createdAt" both become "CreatedAt".
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	fields := make([]SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := fieldName(strings.TrimPrefix(part, "-"))
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: desc})
	}

	return fields
}

func fieldName(s string) string {
	var b strings.Builder
	for word := range strings.SplitSeq(s, "_") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]) + word[1:])
	}
	return b.String()
}
