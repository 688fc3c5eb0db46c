package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jovie-dev/ingest/store"
	"github.com/jovie-dev/ingest/store/model"
)

// ErrBadTransition means the profile was not in a state the requested
// transition is legal from.
var ErrBadTransition = errors.New("illegal ingestion status transition")

// allowedFrom encodes the per-profile state machine
// idle -> pending -> processing -> idle|failed. idle is both the initial
// and the terminal-success state; failed is terminal until re-triggered.
// processing -> pending is the requeue arrow: a released claim (shutdown
// mid-job) puts the profile back in line rather than in a terminal state.
var allowedFrom = map[string][]string{
	model.IngestionPending:    {model.IngestionIdle, model.IngestionFailed, model.IngestionProcessing},
	model.IngestionProcessing: {model.IngestionPending},
	model.IngestionIdle:       {model.IngestionProcessing},
	model.IngestionFailed:     {model.IngestionProcessing},
}

// transition moves a profile's ingestion status. Every status write in the
// pipeline flows through here; nothing else touches the field.
func (o *Orchestrator) transition(ctx context.Context, profileID uuid.UUID, to, errMsg string) error {
	from, ok := allowedFrom[to]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrBadTransition, to)
	}

	err := o.store.Profile().SetIngestionStatus(ctx, profileID, to, errMsg, from...)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: profile %s not in %v", ErrBadTransition, profileID, from)
		}
		return err
	}

	o.log.Debug("ingestion status changed", "profile", profileID, "to", to)
	return nil
}
