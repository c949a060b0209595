package tasks

import (
	"net/url"
	"sort"
)

const sortCreatedAt = "createdAt"

// Query narrows and orders a List call.
type Query struct {
	Completed       *bool
	SortByCreatedAt bool
}

// ParseQuery reads the completed and sort parameters. Any completed value
// other than "true" filters for incomplete tasks; an empty value is ignored.
// Unknown sort keys are ignored.
func ParseQuery(v url.Values) Query {
	var q Query
	if c := v.Get("completed"); c != "" {
		want := c == "true"
		q.Completed = &want
	}
	q.SortByCreatedAt = v.Get("sort") == sortCreatedAt
	return q
}

// apply filters and sorts ts in place. ts must be a private copy.
func (q Query) apply(ts []Task) []Task {
	if q.Completed != nil {
		kept := ts[:0]
		for _, t := range ts {
			if t.Completed == *q.Completed {
				kept = append(kept, t)
			}
		}
		ts = kept
	}
	if q.SortByCreatedAt {
		// missing createdAt is zero and lands first
		sort.SliceStable(ts, func(i, j int) bool {
			return ts[i].CreatedAt < ts[j].CreatedAt
		})
	}
	return ts
}
