// Package memory provides in-memory implementations of the storage ports.
//
// The stores behave like their persistent counterparts and accept injected
// failures per operation, so callers can exercise partial-failure paths:
//
//	content := memory.NewContentStore()
//	content.FailOn(memory.OpDelete, errors.New("disk gone"))
package memory
