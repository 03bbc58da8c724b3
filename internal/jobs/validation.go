package jobs

import (
	"context"
	"fmt"

	"github.com/graphshell/reviewbot/internal/core"
)

// validateRequest ensures a queued request carries everything a worker needs
// before it touches the network.
func validateRequest(ctx context.Context, req *core.ReviewRequest) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if req.Ref.Kind != core.KindPR && req.Ref.Kind != core.KindIssue {
		return fmt.Errorf("unknown target kind: %q", req.Ref.Kind)
	}
	if req.Ref.Number <= 0 {
		return fmt.Errorf("target number must be positive, got: %d", req.Ref.Number)
	}
	return nil
}
