package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugRunKey struct{}

// debugRunField names the field CDebugw adds to entries logged under a debug mode context.
const debugRunField = "debug_run"

// EnableDebugMode returns a context under which CDebugw always logs, tagging each entry with runID so the
// entries of one run can be picked out. An empty runID is replaced by a random one.
func EnableDebugMode(ctx context.Context, runID string) context.Context {
	if runID == "" {
		runID = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugRunKey{}, runID)
}

// DebugRunID returns the run id ctx was put in debug mode with, or "" outside debug mode.
func DebugRunID(ctx context.Context) string {
	runID, _ := ctx.Value(debugRunKey{}).(string)
	return runID
}
