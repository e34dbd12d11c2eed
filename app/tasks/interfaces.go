package tasks

// TaskSchedulerInterface is the surface the HTTP layer and tasks use
// to queue background work.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
