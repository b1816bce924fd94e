package memory

import "sync"

// Operation names accepted by FailOn.
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpDelete   = "delete"
	OpLoadAll  = "load_all"
	OpSaveAll  = "save_all"
	OpGet      = "get"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpSearch   = "search"
	OpGetChunk = "get_chunk"
)

// faults holds injected errors keyed by operation.
type faults struct {
	mu   sync.Mutex
	errs map[string]error
}

// FailOn makes every later call to op return err. A nil err clears it.
func (f *faults) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// Reset clears every injected error.
func (f *faults) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = nil
}

func (f *faults) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[op]
}
