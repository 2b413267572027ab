package graph

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

// DateOfBirthLayout is the day-first layout of identity birth dates.
const DateOfBirthLayout = "02/01/2006"

// AgeAt returns the age in whole 365-day years between a dd/mm/yyyy birth
// date and asOf.
func AgeAt(dateOfBirth string, asOf time.Time) (int, error) {
	dob, err := time.Parse(DateOfBirthLayout, dateOfBirth)
	if err != nil {
		return 0, fmt.Errorf("failed to parse date of birth %q: %w", dateOfBirth, err)
	}
	days := int(asOf.Sub(dob).Hours()) / 24
	if asOf.Before(dob) && asOf.Sub(dob)%(24*time.Hour) != 0 {
		days--
	}
	return floorDiv(days, 365), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// newIdentity builds a fresh identity record with a new id drawn from src.
func (g *Generator) newIdentity(src *random.Source, name, dateOfBirth, nationality string) (common.Identity, error) {
	age, err := AgeAt(dateOfBirth, g.asOf)
	if err != nil {
		return common.Identity{}, err
	}
	return common.Identity{
		ID:          src.UUID(),
		Name:        name,
		Age:         age,
		DateOfBirth: dateOfBirth,
		Nationality: nationality,
	}, nil
}
