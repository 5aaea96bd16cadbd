package state

import (
	"time"

	"github.com/google/uuid"
)

// newLocalEnv creates a new LocalEnv instance with default values. Every run
// is tagged with time ordered identifier, so names derived from it sort by
// start time.
func newLocalEnv() *LocalEnv {
	env := &LocalEnv{start: time.Now()}
	if id, err := uuid.NewV7(); err == nil {
		env.RunID = id.String()
	} else {
		env.RunID = uuid.NewString()
	}
	return env
}
