package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/OFFIS-RIT/idisland/pkg/graph"
)

// Profile is a reusable set of generation parameters. Zero fields keep the
// generator defaults.
type Profile struct {
	Seed                uint64  `yaml:"seed"`
	Islands             int     `yaml:"islands"`
	AnomalyPercentage   float64 `yaml:"anomaly_percentage"`
	AsOf                string  `yaml:"as_of"`
	MinAge              int     `yaml:"min_age"`
	MaxAge              int     `yaml:"max_age"`
	MaxIdentities       int     `yaml:"max_identities"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

func loadProfile(path string) (Profile, error) {
	var p Profile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// overlay copies every flag the user set explicitly over the profile.
func (p *Profile) overlay(flags *pflag.FlagSet, set Profile) {
	if flags.Changed("seed") {
		p.Seed = set.Seed
	}
	if flags.Changed("islands") {
		p.Islands = set.Islands
	}
	if flags.Changed("anomaly-percentage") {
		p.AnomalyPercentage = set.AnomalyPercentage
	}
	if flags.Changed("as-of") {
		p.AsOf = set.AsOf
	}
	if flags.Changed("min-age") {
		p.MinAge = set.MinAge
	}
	if flags.Changed("max-age") {
		p.MaxAge = set.MaxAge
	}
	if flags.Changed("max-identities") {
		p.MaxIdentities = set.MaxIdentities
	}
	if flags.Changed("similarity-threshold") {
		p.SimilarityThreshold = set.SimilarityThreshold
	}
}

func (p Profile) runParams() (graph.RunParams, error) {
	var asOf time.Time
	if p.AsOf != "" {
		parsed, err := time.Parse(time.DateOnly, p.AsOf)
		if err != nil {
			return graph.RunParams{}, fmt.Errorf("invalid as_of %q: %w", p.AsOf, err)
		}
		asOf = parsed
	}
	return graph.RunParams{
		Seed:              p.Seed,
		Islands:           p.Islands,
		AnomalyPercentage: p.AnomalyPercentage,
		Generator: graph.NewGeneratorParams{
			AsOf:                asOf,
			MinAge:              p.MinAge,
			MaxAge:              p.MaxAge,
			MaxIdentities:       p.MaxIdentities,
			SimilarityThreshold: p.SimilarityThreshold,
		},
	}, nil
}
