package bus

import (
	"fmt"
	"time"
)

func timeNow() time.Time {
	return time.Now().UTC()
}

func panicAsError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("handler panic: %w", err)
	}
	return fmt.Errorf("handler panic: %v", r)
}
