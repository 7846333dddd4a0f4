package framework

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Job is a background task started by a module.
type Job struct {
	ID      int
	Name    string
	Module  string
	Options map[string]string
	Started time.Time

	stop func()
}

// Jobs is the table of running jobs. It is safe for concurrent use because
// jobs may end on their own goroutines.
type Jobs struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// Start registers a new job. The stop function, which may be nil, is called
// when the job is stopped.
func (js *Jobs) Start(name, module string, opts map[string]string, stop func()) *Job {
	js.mu.Lock()
	defer js.mu.Unlock()
	if js.jobs == nil {
		js.jobs = map[int]*Job{}
	}
	job := &Job{ID: js.nextID, Name: name, Module: module, Options: opts,
		Started: time.Now(), stop: stop}
	js.nextID++
	js.jobs[job.ID] = job
	return job
}

// Get returns the job with the given ID.
func (js *Jobs) Get(id int) (*Job, bool) {
	js.mu.Lock()
	defer js.mu.Unlock()
	job, ok := js.jobs[id]
	return job, ok
}

// Stop stops and removes the job with the given ID.
func (js *Jobs) Stop(id int) error {
	js.mu.Lock()
	job, ok := js.jobs[id]
	delete(js.jobs, id)
	js.mu.Unlock()
	if !ok {
		return fmt.Errorf("invalid job identifier: %d", id)
	}
	if job.stop != nil {
		job.stop()
	}
	return nil
}

// StopAll stops all jobs.
func (js *Jobs) StopAll() {
	for _, job := range js.List() {
		js.Stop(job.ID)
	}
}

// List returns the jobs ordered by ID.
func (js *Jobs) List() []*Job {
	js.mu.Lock()
	defer js.mu.Unlock()
	list := make([]*Job, 0, len(js.jobs))
	for _, job := range js.jobs {
		list = append(list, job)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Len returns the number of jobs.
func (js *Jobs) Len() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return len(js.jobs)
}
