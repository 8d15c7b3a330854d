package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with the stack trace.
// Must be called directly in a defer statement:
//
//	go func() {
//	    defer observability.RecoverPanic(logger, "health server")
//	    ...
//	}()
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logger.WithField("panic", fmt.Sprint(r)).
			WithField("stack", string(debug.Stack())).
			WithField("context", where).
			Error("PANIC recovered")
	}
}
