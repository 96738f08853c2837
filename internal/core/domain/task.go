package domain

import "iter"

// Operation is the side effect a task performs on a unit.
type Operation uint8

const (
	// OpUnload removes a unit.
	OpUnload Operation = iota
	// OpLoad (re)loads a unit.
	OpLoad
)

// String returns the lowercase operation name.
func (op Operation) String() string {
	if op == OpLoad {
		return "load"
	}
	return "unload"
}

// Task is one scheduled operation on one unit. It is immutable once created.
type Task struct {
	Op   Operation
	Unit InternedString
}

// String renders the task as "op unit".
func (t Task) String() string {
	return t.Op.String() + " " + t.Unit.String()
}

// Unload builds an unload task.
func Unload(id InternedString) Task {
	return Task{Op: OpUnload, Unit: id}
}

// Load builds a load task.
func Load(id InternedString) Task {
	return Task{Op: OpLoad, Unit: id}
}

// TaskStatus represents the status of a task within a run.
type TaskStatus string

const (
	// TaskPending indicates the task is waiting to be executed.
	TaskPending TaskStatus = "Pending"
	// TaskRunning indicates the task is currently executing.
	TaskRunning TaskStatus = "Running"
	// TaskCompleted indicates the task has finished successfully.
	TaskCompleted TaskStatus = "Completed"
	// TaskFailed indicates the task execution failed.
	TaskFailed TaskStatus = "Failed"
	// TaskCancelled indicates the task was skipped because the run was cancelled.
	TaskCancelled TaskStatus = "Cancelled"
)

// Plan is a recursive fork-join node: Before tasks run in order, then all
// Forks run concurrently, then After tasks run in order.
type Plan struct {
	Before []Task
	Forks  []*Plan
	After  []Task
}

// Tasks yields every task of the plan, depth first, in Before, Forks, After order.
func (p *Plan) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		p.walk(yield)
	}
}

func (p *Plan) walk(yield func(Task) bool) bool {
	if p == nil {
		return true
	}
	for _, t := range p.Before {
		if !yield(t) {
			return false
		}
	}
	for _, f := range p.Forks {
		if !f.walk(yield) {
			return false
		}
	}
	for _, t := range p.After {
		if !yield(t) {
			return false
		}
	}
	return true
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int {
	n := 0
	for range p.Tasks() {
		n++
	}
	return n
}

// Empty reports whether the plan holds no task.
func (p *Plan) Empty() bool {
	return p.Len() == 0
}
