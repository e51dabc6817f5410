package testutil

import (
	"fmt"
	"sync"
)

// FixedOperationID returns a generator that always yields id.
// If id is empty, it yields "test-op-default".
func FixedOperationID(id string) func() string {
	if id == "" {
		id = "test-op-default"
	}
	return func() string { return id }
}

// SequentialOperationIDs yields "test-op-1", "test-op-2", ...
//
// Thread-safety: the returned generator is safe for concurrent use.
func SequentialOperationIDs() func() string {
	var mu sync.Mutex
	var seq int64
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("test-op-%d", seq)
	}
}
