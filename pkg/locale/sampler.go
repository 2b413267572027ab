package locale

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/language"

	"github.com/OFFIS-RIT/idisland/pkg/random"
)

const (
	dateOfBirthLayout = "02/01/2006"
	genericDateLayout = "2006-01-02"
)

// Sampler draws locale specific attribute values. All values come from the
// random source the sampler was created with.
type Sampler interface {
	Locale() language.Tag
	FirstName() string
	LastName() string
	// DateOfBirth returns a dd/mm/yyyy date for a person whose age in whole
	// years lies in [minAge, maxAge].
	DateOfBirth(minAge, maxAge int) string
	GenericDate() string
	DocumentNumber() string
	// CountryCode returns a uniformly sampled ISO 3166 alpha-2 code.
	CountryCode() string
}

// Provider maps countries to locales and hands out samplers bound to a
// random source.
type Provider interface {
	LocaleFor(countryCode string) language.Tag
	Sampler(tag language.Tag, src *random.Source) Sampler
}

// FakerProvider is the default Provider. It combines built-in locale name
// tables with gofakeit driven by the caller's random source.
type FakerProvider struct {
	asOf time.Time
}

// NewFakerProvider creates a provider that computes ages and date ranges
// relative to asOf. A zero asOf means today (UTC).
func NewFakerProvider(asOf time.Time) *FakerProvider {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return &FakerProvider{asOf: truncateDay(asOf)}
}

func (p *FakerProvider) LocaleFor(countryCode string) language.Tag {
	return LocaleFor(countryCode)
}

func (p *FakerProvider) Sampler(tag language.Tag, src *random.Source) Sampler {
	table, ok := namesFor(tag)
	return &fakerSampler{
		tag:      tag,
		src:      src,
		faker:    gofakeit.NewFaker(src, false),
		names:    table,
		hasNames: ok,
		asOf:     p.asOf,
	}
}

type fakerSampler struct {
	tag      language.Tag
	src      *random.Source
	faker    *gofakeit.Faker
	names    nameTable
	hasNames bool
	asOf     time.Time
}

func (s *fakerSampler) Locale() language.Tag {
	return s.tag
}

func (s *fakerSampler) FirstName() string {
	if s.hasNames {
		return random.Choice(s.src, s.names.first)
	}
	return s.faker.FirstName()
}

func (s *fakerSampler) LastName() string {
	if s.hasNames {
		return random.Choice(s.src, s.names.last)
	}
	return s.faker.LastName()
}

func (s *fakerSampler) DateOfBirth(minAge, maxAge int) string {
	if maxAge < minAge {
		minAge, maxAge = maxAge, minAge
	}
	latest := s.asOf.AddDate(-minAge, 0, 0)
	earliest := s.asOf.AddDate(-(maxAge + 1), 0, 1)
	return s.faker.DateRange(earliest, latest).Format(dateOfBirthLayout)
}

func (s *fakerSampler) GenericDate() string {
	return s.faker.DateRange(time.Unix(0, 0).UTC(), s.asOf).Format(genericDateLayout)
}

func (s *fakerSampler) DocumentNumber() string {
	ssn := s.faker.SSN()
	if len(ssn) == 9 {
		return ssn[:3] + "-" + ssn[3:5] + "-" + ssn[5:]
	}
	return ssn
}

func (s *fakerSampler) CountryCode() string {
	return s.faker.CountryAbr()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
