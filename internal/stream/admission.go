package stream

import "sync"

// Admission bounds the number of transcoder processes running at once. It is
// constructed once during wiring and handed to the manager, so tests can use
// a fresh instance each.
type AdmissionCtx struct {
	mu    sync.Mutex
	count int
	limit int
}

func NewAdmission(limit int) *AdmissionCtx {
	return &AdmissionCtx{
		limit: limit,
	}
}

// TryAcquire reserves a slot if the ceiling has not been reached. A rejected
// acquire has no side effect; the caller decides retry policy.
func (a *AdmissionCtx) TryAcquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count >= a.limit {
		return false
	}

	a.count++
	return true
}

// Release frees a slot. Must be called exactly once per successful
// TryAcquire, regardless of how the process terminated.
func (a *AdmissionCtx) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count > 0 {
		a.count--
	}
}

func (a *AdmissionCtx) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.count
}
