package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/locale"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

var (
	ErrMalformedName     = errors.New("name needs at least a first and a last token")
	ErrInvalidPercentage = errors.New("anomaly percentage must be a non-negative number")
)

// variantTemplates builds the name variants of an island from the first and
// last token of the base name plus a second first name and a middle name.
var variantTemplates = []func(first, last, second, middle string) string{
	func(first, last, _, _ string) string { return first + " " + last },
	func(first, last, second, _ string) string { return first + " " + second + " " + last },
	func(first, last, second, middle string) string {
		return first + " " + second + " " + middle + " " + last
	},
	func(first, last, _, middle string) string { return first + " " + middle + " " + last },
}

// MaxVariants is the number of name templates and therefore the largest
// number of variants an island can hold next to its base identity.
var MaxVariants = len(variantTemplates)

// CreateIdentityIsland adds a base identity plus up to MaxVariants name
// variants of it to the graph. Every variant shares the base's date of birth,
// age and nationality and is linked from the base with IDENTITY_EQUIVALENCE.
//
// The island holds min(n, MaxVariants)+1 identities; n <= 0 yields an island
// with the base identity only. names supplies the locale-matched second first
// name and middle name used by the templates.
func (g *Generator) CreateIdentityIsland(
	src *random.Source,
	names locale.Sampler,
	baseName string,
	dateOfBirth string,
	nationality string,
	n int,
) (common.Island, error) {
	tokens := strings.Fields(baseName)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedName, baseName)
	}
	first, last := tokens[0], tokens[len(tokens)-1]

	base, err := g.newIdentity(src, baseName, dateOfBirth, nationality)
	if err != nil {
		return nil, fmt.Errorf("failed to create base identity: %w", err)
	}
	if err := g.graph.AddNode(base); err != nil {
		return nil, fmt.Errorf("failed to add base identity: %w", err)
	}

	second := names.FirstName()
	middle := names.LastName()

	k := max(min(n, MaxVariants), 0)
	templates := random.Sample(src, variantTemplates, k)

	island := make(common.Island, 0, k+1)
	island = append(island, base.ID)
	for _, tmpl := range templates {
		variant := common.Identity{
			ID:          src.UUID(),
			Name:        tmpl(first, last, second, middle),
			Age:         base.Age,
			DateOfBirth: base.DateOfBirth,
			Nationality: base.Nationality,
		}
		if err := g.graph.AddNode(variant); err != nil {
			return nil, fmt.Errorf("failed to add identity variant: %w", err)
		}
		if _, err := g.graph.AddEdge(base.ID, variant.ID, common.EdgeIdentityEquivalence); err != nil {
			return nil, fmt.Errorf("failed to link identity variant: %w", err)
		}
		island = append(island, variant.ID)
	}

	logger.Debug("[Generator] Created identity island", "base", base.ID, "size", len(island))
	return island, nil
}

// GenerateRandomIdentityIsland samples a country, a locale-matched base name,
// a date of birth and an island size, then builds the island with
// CreateIdentityIsland.
func (g *Generator) GenerateRandomIdentityIsland(src *random.Source) (common.Island, error) {
	fake := g.provider.Sampler(locale.Default, src)

	countryCode := fake.CountryCode()
	local := g.provider.Sampler(g.provider.LocaleFor(countryCode), src)

	baseName := local.FirstName() + " " + local.LastName()
	dateOfBirth := fake.DateOfBirth(g.minAge, g.maxAge)

	nationality, err := locale.Alpha2ToAlpha3(countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve nationality: %w", err)
	}

	n := src.IntRange(1, g.maxIdentities)
	return g.CreateIdentityIsland(src, local, baseName, dateOfBirth, nationality, n)
}
