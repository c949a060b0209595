package tasks

// Priority is the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority returns ErrInvalidPriority for anything other than low, medium or high.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Task is a single record in the collection. CreatedAt is milliseconds since
// the Unix epoch; seeded records may leave it (and Priority) unset.
type Task struct {
	ID          int64    `json:"id" yaml:"id" validate:"gt=0"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description" yaml:"description" validate:"required"`
	Completed   bool     `json:"completed" yaml:"completed"`
	Priority    Priority `json:"priority,omitempty" yaml:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	CreatedAt   int64    `json:"createdAt,omitempty" yaml:"createdAt,omitempty" validate:"gte=0"`
}

// NewTask carries the validated fields of a create request.
type NewTask struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
}

// Patch holds the fields present in an update request. Nil means "keep".
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}
