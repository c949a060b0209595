package tasks

import (
	"slices"
	"sync"
	"time"
)

type Repository interface {
	List(q Query) []Task
	Get(id int64) (Task, error)
	ByPriority(p Priority) []Task
	Create(nt NewTask) (Task, error)
	Update(id int64, patch Patch) (Task, error)
	Delete(id int64) error
}

// InMemoryRepo keeps the collection in insertion order behind a RWMutex.
// Every read hands out a copy, so callers never observe a later mutation.
type InMemoryRepo struct {
	mu    sync.RWMutex
	tasks []Task
	now   func() time.Time
}

func NewInMemoryRepo(seed ...Task) *InMemoryRepo {
	return &InMemoryRepo{
		tasks: slices.Clone(seed),
		now:   time.Now,
	}
}

// WithClock replaces the time source used for createdAt. Test hook.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *InMemoryRepo) List(q Query) []Task {
	r.mu.RLock()
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	r.mu.RUnlock()

	return q.apply(out)
}

func (r *InMemoryRepo) Get(id int64) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return r.tasks[i], nil
}

func (r *InMemoryRepo) ByPriority(p Priority) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0)
	for _, t := range r.tasks {
		if t.Priority == p {
			out = append(out, t)
		}
	}
	return out
}

// Create assigns the next id as one past the current maximum, so deleting
// the highest id lets it be handed out again.
func (r *InMemoryRepo) Create(nt NewTask) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nt.Priority == "" {
		nt.Priority = PriorityLow
	}
	t := Task{
		ID:          r.nextID(),
		Title:       nt.Title,
		Description: nt.Description,
		Completed:   nt.Completed,
		Priority:    nt.Priority,
		CreatedAt:   r.now().UnixMilli(),
	}
	r.tasks = append(r.tasks, t)
	taskMutationsTotal.WithLabelValues("create").Inc()
	return t, nil
}

func (r *InMemoryRepo) Update(id int64, patch Patch) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	r.tasks[i] = patch.apply(r.tasks[i])
	taskMutationsTotal.WithLabelValues("update").Inc()
	return r.tasks[i], nil
}

func (r *InMemoryRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	taskMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// caller holds r.mu
func (r *InMemoryRepo) indexOf(id int64) int {
	return slices.IndexFunc(r.tasks, func(t Task) bool { return t.ID == id })
}

// caller holds r.mu
func (r *InMemoryRepo) nextID() int64 {
	var maxID int64
	for _, t := range r.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}
