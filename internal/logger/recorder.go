package logger

import "sync"

// Entry is a single captured log call.
type Entry struct {
	Level   Level
	Message string
	Keyvals []any
}

// Value returns the value logged under key, if any.
func (e Entry) Value(key string) (any, bool) {
	for i := 0; i+1 < len(e.Keyvals); i += 2 {
		if k, ok := e.Keyvals[i].(string); ok && k == key {
			return e.Keyvals[i+1], true
		}
	}
	return nil, false
}

// Recorder is a Logger that keeps every entry in memory.
// It is meant as a substitute sink in tests.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  []any
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) record(level Level, msg string, keyvals []any) {
	kv := make([]any, 0, len(r.fields)+len(keyvals))
	kv = append(kv, r.fields...)
	kv = append(kv, keyvals...)
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Keyvals: kv})
}

func (r *Recorder) Debug(msg string, keyvals ...any)    { r.record(DebugLevel, msg, keyvals) }
func (r *Recorder) Info(msg string, keyvals ...any)     { r.record(InfoLevel, msg, keyvals) }
func (r *Recorder) Warn(msg string, keyvals ...any)     { r.record(WarnLevel, msg, keyvals) }
func (r *Recorder) Error(msg string, keyvals ...any)    { r.record(ErrorLevel, msg, keyvals) }
func (r *Recorder) Critical(msg string, keyvals ...any) { r.record(CriticalLevel, msg, keyvals) }

// With returns a Recorder sharing the same entry buffer.
func (r *Recorder) With(keyvals ...any) Logger {
	fields := append(append([]any{}, r.fields...), keyvals...)
	return &Recorder{mu: r.mu, entries: r.entries, fields: fields}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// ByLevel returns the entries recorded at level.
func (r *Recorder) ByLevel(level Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
