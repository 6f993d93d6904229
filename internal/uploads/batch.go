// Package uploads fans a finished quiz's export artifacts out to the backend
// file store. Tasks run concurrently and independently: one failure never
// blocks or cancels the rest, and the batch reports per-task outcomes instead
// of collapsing them into a single error.
package uploads

import (
	"context"
	"sync"
)

// Task is one independent upload.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome is the settled result of one task.
type Outcome struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// Result holds every task's outcome, in task order.
type Result struct {
	Outcomes []Outcome `json:"outcomes"`
}

func (r Result) AllOK() bool {
	for _, o := range r.Outcomes {
		if !o.OK {
			return false
		}
	}
	return true
}

func (r Result) Failed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if !o.OK {
			names = append(names, o.Name)
		}
	}
	return names
}

// Run executes all tasks concurrently and returns once every one has settled,
// success or failure.
func Run(ctx context.Context, tasks []Task) Result {
	outcomes := make([]Outcome, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			o := Outcome{Name: t.Name, OK: true}
			if err := t.Run(ctx); err != nil {
				o.OK = false
				o.Err = err.Error()
			}
			outcomes[i] = o
		}(i, t)
	}
	wg.Wait()
	return Result{Outcomes: outcomes}
}
