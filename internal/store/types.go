package store

import "time"

// TaskStatus is the kanban column of a task.
type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

// Valid reports whether s is one of the kanban columns.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskDoing, TaskDone:
		return true
	}
	return false
}

// Default colors applied when a record carries none.
const (
	DefaultPersonalColor = "#2563eb"
	DefaultProjectColor  = "#ef4444"
)

// Project is a shared workspace. The owner is always listed in Members.
type Project struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	OwnerID     string    `json:"owner"`
	Members     []string  `json:"members"`
	JoinCode    string    `json:"joinCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasAccess reports whether userID owns or belongs to the project.
func (p *Project) HasAccess(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	return p.IsMember(userID)
}

// IsMember reports whether userID is listed as a member.
func (p *Project) IsMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Task is a kanban card. Only tasks with a Deadline appear on calendars.
type Task struct {
	ID          string     `json:"_id"`
	ProjectID   string     `json:"project"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PersonalEvent belongs to a single user and never to a project.
type PersonalEvent struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectEvent is visible to every member of its project.
type ProjectEvent struct {
	ID          string    `json:"_id"`
	ProjectID   string    `json:"project"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Window bounds a calendar query. A nil bound is omitted from the query
// rather than replaced by a sentinel.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Vacuous reports whether both bounds are set and To precedes From.
func (w Window) Vacuous() bool {
	return w.From != nil && w.To != nil && w.To.Before(*w.From)
}

// overlap appends the half-open overlap test for [start_at, end_at).
func (w Window) overlap(where []string, args []interface{}) ([]string, []interface{}) {
	if w.To != nil {
		where = append(where, "start_at < ?")
		args = append(args, toMillis(*w.To))
	}
	if w.From != nil {
		where = append(where, "end_at > ?")
		args = append(args, toMillis(*w.From))
	}
	return where, args
}

// contains appends the inclusive containment test on column.
func (w Window) contains(column string, where []string, args []interface{}) ([]string, []interface{}) {
	if w.From != nil {
		where = append(where, column+" >= ?")
		args = append(args, toMillis(*w.From))
	}
	if w.To != nil {
		where = append(where, column+" <= ?")
		args = append(args, toMillis(*w.To))
	}
	return where, args
}
