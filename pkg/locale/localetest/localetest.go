// Package localetest provides a locale.Provider with small fixed value pools
// for deterministic tests.
package localetest

import (
	"golang.org/x/text/language"

	"github.com/OFFIS-RIT/idisland/pkg/locale"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

const (
	DateOfBirth    = "15/06/1990"
	GenericDate    = "2020-03-01"
	DocumentNumber = "123-45-6789"
)

var (
	FirstNames = []string{"Anna", "Bruno", "Clara", "Dario"}
	LastNames  = []string{"Meyer", "Rossi", "Dupont", "Novak"}
	// Countries are sampled when Provider.Country is empty.
	Countries = []string{"FR", "DE", "IT", "JP", "BR"}
)

// Provider returns samplers whose first and last name pools are disjoint,
// so that generated name variants never collide.
type Provider struct {
	// Country fixes the sampled country code.
	Country string
}

func (p Provider) LocaleFor(countryCode string) language.Tag {
	return locale.LocaleFor(countryCode)
}

func (p Provider) Sampler(tag language.Tag, src *random.Source) locale.Sampler {
	return &sampler{tag: tag, src: src, country: p.Country}
}

type sampler struct {
	tag     language.Tag
	src     *random.Source
	country string
}

func (s *sampler) Locale() language.Tag { return s.tag }

func (s *sampler) FirstName() string { return random.Choice(s.src, FirstNames) }
func (s *sampler) LastName() string  { return random.Choice(s.src, LastNames) }

func (s *sampler) DateOfBirth(minAge, maxAge int) string { return DateOfBirth }
func (s *sampler) GenericDate() string                   { return GenericDate }
func (s *sampler) DocumentNumber() string                { return DocumentNumber }

func (s *sampler) CountryCode() string {
	if s.country != "" {
		return s.country
	}
	return random.Choice(s.src, Countries)
}
