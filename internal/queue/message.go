package queue

import (
	"encoding/json"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/idisland/pkg/graph"
)

// GenerateJobMsg asks a worker to generate and persist one graph.
type GenerateJobMsg struct {
	GraphID           string  `json:"graph_id"`
	CorrelationID     string  `json:"correlation_id"`
	Seed              uint64  `json:"seed"`
	Islands           int     `json:"islands"`
	AnomalyPercentage float64 `json:"anomaly_percentage"`
	// AsOf is the reference date (yyyy-mm-dd) for ages and date ranges.
	AsOf          string `json:"as_of"`
	MinAge        int    `json:"min_age"`
	MaxAge        int    `json:"max_age"`
	MaxIdentities int    `json:"max_identities"`
}

// DeleteJobMsg asks a worker to remove every stored artifact of a graph.
type DeleteJobMsg struct {
	GraphID       string `json:"graph_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewCorrelationID returns a fresh id for tracing a job across services.
func NewCorrelationID() (string, error) {
	return gonanoid.New()
}

// RunParams converts the message into generator parameters.
func (m GenerateJobMsg) RunParams() (graph.RunParams, error) {
	if m.GraphID == "" {
		return graph.RunParams{}, fmt.Errorf("graph id is empty")
	}
	if m.Islands < 0 {
		return graph.RunParams{}, fmt.Errorf("island count must not be negative, got %d", m.Islands)
	}
	asOf, err := time.Parse(time.DateOnly, m.AsOf)
	if err != nil {
		return graph.RunParams{}, fmt.Errorf("invalid as_of %q: %w", m.AsOf, err)
	}
	return graph.RunParams{
		Seed:              m.Seed,
		Islands:           m.Islands,
		AnomalyPercentage: m.AnomalyPercentage,
		Generator: graph.NewGeneratorParams{
			AsOf:          asOf,
			MinAge:        m.MinAge,
			MaxAge:        m.MaxAge,
			MaxIdentities: m.MaxIdentities,
		},
	}, nil
}

func decode[T any](msg string) (T, error) {
	var data T
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return data, fmt.Errorf("failed to decode message: %w", err)
	}
	return data, nil
}
