package graph

import "github.com/OFFIS-RIT/idisland/pkg/common"

// DefaultSimilarityThreshold is the lowest name similarity accepted when
// searching for a mislink partner.
const DefaultSimilarityThreshold = 0.6

// Attribute selects how FindSimilarIdentity compares identities.
type Attribute string

const (
	AttributeName        Attribute = "name"
	AttributeDateOfBirth Attribute = "date_of_birth"
	AttributeNationality Attribute = "nationality"
)

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	switch a {
	case AttributeName, AttributeDateOfBirth, AttributeNationality:
		return true
	}
	return false
}

// FindSimilarIdentity searches candidates for an identity matching target.
//
// With AttributeName the candidate with the highest name similarity wins,
// provided the similarity is at least threshold and the candidate shares the
// date of birth or the nationality with target. Ties keep the earlier
// candidate and a zero similarity never matches.
//
// With AttributeDateOfBirth or AttributeNationality the first candidate
// sharing both the date of birth and the nationality with target wins;
// threshold is ignored.
func FindSimilarIdentity(
	candidates []common.Identity,
	target common.Identity,
	attr Attribute,
	threshold float64,
) (string, bool) {
	switch attr {
	case AttributeName:
		bestID := ""
		best := 0.0
		for _, candidate := range candidates {
			ratio := SimilarityRatio(target.Name, candidate.Name)
			if ratio < threshold || ratio <= best {
				continue
			}
			if candidate.DateOfBirth != target.DateOfBirth && candidate.Nationality != target.Nationality {
				continue
			}
			bestID, best = candidate.ID, ratio
		}
		return bestID, bestID != ""
	case AttributeDateOfBirth, AttributeNationality:
		for _, candidate := range candidates {
			if candidate.DateOfBirth == target.DateOfBirth && candidate.Nationality == target.Nationality {
				return candidate.ID, true
			}
		}
	}
	return "", false
}
