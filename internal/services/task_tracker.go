package services

import (
	"context"
	"sync"
)

// TaskTracker keeps at most one in-flight upload per key. Starting a new task
// cancels the previous one, and only the newest generation may write its
// result.
//
// mu guards the task table only. Writes for one key are serialized by a
// per-key lock, so a slow write never holds up other keys.
type TaskTracker struct {
	mu      sync.Mutex
	nextGen uint64
	active  map[string]*trackedTask
	locks   map[string]*keyLock
}

type trackedTask struct {
	gen    uint64
	cancel context.CancelFunc
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewTaskTracker() *TaskTracker {
	return &TaskTracker{
		active: make(map[string]*trackedTask),
		locks:  make(map[string]*keyLock),
	}
}

// Begin cancels the task running under key, if any, and registers a new one.
// Generations are unique across keys and never reused.
func (t *TaskTracker) Begin(parent context.Context, key string) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.active[key]; ok {
		prev.cancel()
	}

	t.nextGen++
	ctx, cancel := context.WithCancel(parent)
	t.active[key] = &trackedTask{gen: t.nextGen, cancel: cancel}

	return ctx, t.nextGen
}

// Commit runs apply while gen is still the current task for key. It reports
// whether apply ran.
func (t *TaskTracker) Commit(key string, gen uint64, apply func() error) (bool, error) {
	unlock := t.lockKey(key)
	defer unlock()

	if !t.isCurrent(key, gen) {
		return false, nil
	}
	return true, apply()
}

// Finish is Commit followed by retiring the task when gen is current.
func (t *TaskTracker) Finish(key string, gen uint64, apply func() error) (bool, error) {
	unlock := t.lockKey(key)
	defer unlock()

	if !t.isCurrent(key, gen) {
		return false, nil
	}

	err := apply()

	t.mu.Lock()
	if task, ok := t.active[key]; ok && task.gen == gen {
		task.cancel()
		delete(t.active, key)
	}
	t.mu.Unlock()

	return true, err
}

// Cancel aborts whatever runs under key. It waits for a write already in
// progress for key, so nothing from the aborted task lands afterwards.
func (t *TaskTracker) Cancel(key string) {
	unlock := t.lockKey(key)
	defer unlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if task, ok := t.active[key]; ok {
		task.cancel()
		delete(t.active, key)
	}
}

// InFlight reports whether a task is registered under key.
func (t *TaskTracker) InFlight(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.active[key]
	return ok
}

func (t *TaskTracker) isCurrent(key string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.active[key]
	return ok && task.gen == gen
}

// lockKey takes the write lock for key and returns its release func. Lock
// entries are dropped once nobody holds or waits on them.
func (t *TaskTracker) lockKey(key string) func() {
	t.mu.Lock()
	kl, ok := t.locks[key]
	if !ok {
		kl = &keyLock{}
		t.locks[key] = kl
	}
	kl.refs++
	t.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()

		t.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(t.locks, key)
		}
		t.mu.Unlock()
	}
}
