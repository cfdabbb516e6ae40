package classroom

import (
	"errors"
	"time"

	"github.com/trezcool/darasa/core/user"
)

// TaskKind selects which derived task view to compute.
type TaskKind string

const (
	TaskToDo     TaskKind = "todo"
	TaskToReview TaskKind = "to-review"
)

var ErrInvalidTaskKind = errors.New("invalid task kind")

// TaskStatus is the student's three-state progress on a gradable item.
// It only ever moves forward (Assigned -> TurnedIn -> Graded) through
// submission and grading actions; there is no ungrade action.
type TaskStatus string

const (
	StatusAssigned TaskStatus = "Assigned"
	StatusTurnedIn TaskStatus = "TurnedIn"
	StatusGraded   TaskStatus = "Graded"
)

// Task is a derived, never-stored view computed from a
// (classroom, gradable item, user) triple.
type Task interface {
	TaskKind() TaskKind
}

// ToDoTask summarizes a student's outstanding work on one gradable item.
type ToDoTask struct {
	ClassroomID   string     `json:"classroom_id"`
	ClassroomName string     `json:"classroom_name"`
	ItemID        string     `json:"item_id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	EditedAt      time.Time  `json:"edited_at"`
	DueDate       *time.Time `json:"due_date"`
	Status        TaskStatus `json:"status"`
}

func (ToDoTask) TaskKind() TaskKind { return TaskToDo }

// ToReviewTask summarizes an owner's grading progress on one gradable item.
type ToReviewTask struct {
	ClassroomID   string     `json:"classroom_id"`
	ClassroomName string     `json:"classroom_name"`
	ItemID        string     `json:"item_id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	EditedAt      time.Time  `json:"edited_at"`
	DueDate       *time.Time `json:"due_date"`
	AssignedCount int        `json:"assigned_count"`
	TurnedInCount int        `json:"turned_in_count"`
	GradedCount   int        `json:"graded_count"`
}

func (ToReviewTask) TaskKind() TaskKind { return TaskToReview }

// ToDoTasks derives one ToDoTask per gradable item assigned to usr,
// in item creation order.
func (c *Classroom) ToDoTasks(usr user.User) []Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var tasks []Task
	for _, it := range c.items {
		if !it.kind.Gradable() || !it.VisibleTo(usr) {
			continue
		}
		tasks = append(tasks, ToDoTask{
			ClassroomID:   c.id,
			ClassroomName: c.name,
			ItemID:        it.id,
			Title:         it.title,
			CreatedAt:     it.createdAt,
			EditedAt:      it.editedAt,
			DueDate:       it.dueDate,
			Status:        it.statusFor(usr),
		})
	}
	return tasks
}

// statusFor computes the three-state status from usr's own submission.
func (it *Item) statusFor(usr user.User) TaskStatus {
	submission := it.SubmissionByOwner(usr)
	switch {
	case submission == nil:
		return StatusAssigned
	case submission.Graded():
		return StatusGraded
	default:
		return StatusTurnedIn
	}
}

// ToReviewTasks derives one ToReviewTask per gradable item. The audience
// is the explicit assignee list when present, the full roster otherwise;
// the three counts partition the audience as long as every submission
// owner is in the audience and owns at most one submission.
func (c *Classroom) ToReviewTasks() []Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var tasks []Task
	for _, it := range c.items {
		if !it.kind.Gradable() {
			continue
		}

		audience := len(it.assignedTo)
		if it.assignedTo == nil {
			audience = len(c.students)
		}
		var graded int
		for _, submission := range it.submissions {
			if submission.Graded() {
				graded++
			}
		}

		tasks = append(tasks, ToReviewTask{
			ClassroomID:   c.id,
			ClassroomName: c.name,
			ItemID:        it.id,
			Title:         it.title,
			CreatedAt:     it.createdAt,
			EditedAt:      it.editedAt,
			DueDate:       it.dueDate,
			AssignedCount: audience - len(it.submissions),
			TurnedInCount: len(it.submissions) - graded,
			GradedCount:   graded,
		})
	}
	return tasks
}
