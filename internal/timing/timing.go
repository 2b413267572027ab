// Package timing records how long generation stages take and predicts the
// duration of queued jobs from that history.
package timing

import (
	"context"
	"time"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/util"
)

const (
	StageGenerate = "generate"
	StagePersist  = "persist"
)

// Stages lists every recorded stage in execution order.
var Stages = []string{StageGenerate, StagePersist}

// Store persists stage durations. *db.Queries implements it.
type Store interface {
	AddRunTime(ctx context.Context, arg db.AddRunTimeParams) error
	PredictRunTime(ctx context.Context, arg db.PredictRunTimeParams) (int64, error)
}

// AddRunTime stores the duration of one stage of a run over islands islands.
func AddRunTime(ctx context.Context, q Store, graphID string, islands int, d time.Duration, stage string) error {
	return q.AddRunTime(ctx, db.AddRunTimeParams{
		GraphID:    graphID,
		Islands:    int32(islands),
		DurationMs: d.Milliseconds(),
		StatType:   stage,
	})
}

// PredictRunTime sums the predicted durations of stages for a run over
// islands islands. Without history the prediction is zero.
func PredictRunTime(ctx context.Context, q Store, islands int, stages ...string) (time.Duration, error) {
	var total int64
	for _, stage := range stages {
		ms, err := q.PredictRunTime(ctx, db.PredictRunTimeParams{
			Islands:  float64(islands),
			StatType: stage,
		})
		if err != nil {
			return 0, err
		}
		total += ms
	}
	return time.Duration(total) * time.Millisecond, nil
}

// Remaining returns the stages a job in status still has to run.
func Remaining(status util.JobStatus) []string {
	switch status {
	case util.JobPending, util.JobGenerating:
		return Stages
	case util.JobPersisting:
		return Stages[1:]
	default:
		return nil
	}
}
