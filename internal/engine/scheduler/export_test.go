package scheduler

// SetRunID replaces the run id generator.
func (e *Executor) SetRunID(newID func() string) {
	e.newID = newID
}
