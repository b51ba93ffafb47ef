package activities

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
)

var projection = query.NewProjectionMap("public", "activities", "a").
	Project("id", "Id").
	Project("user_id", "UserId").
	Project("activity_type", "ActivityType").
	Project("data", "Data").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanActivity(s repository.Scanner) (Activity, error) {
	var a Activity
	var data []byte
	if err := s.Scan(&a.ID, &a.UserID, &a.ActivityType, &data, &a.CreatedAt); err != nil {
		return a, err
	}

	a.Data = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &a.Data); err != nil {
			return a, fmt.Errorf("decode activity data: %w", err)
		}
	}
	return a, nil
}

// Filters contains optional criteria for filtering activity queries.
type Filters struct {
	UserID *string

	// ActivityTypes matches any of the listed types.
	ActivityTypes []string
}

// FiltersFromQuery extracts activity filters from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	for t := range strings.SplitSeq(values.Get("activity_type"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.ActivityTypes = append(f.ActivityTypes, t)
		}
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.UserID != nil {
		b.WhereEquals("UserId", *f.UserID)
	}
	types := make([]any, len(f.ActivityTypes))
	for i, t := range f.ActivityTypes {
		types[i] = t
	}
	return b.WhereIn("ActivityType", types)
}
