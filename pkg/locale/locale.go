// Package locale supplies locale-aware attribute sampling for synthetic
// identities: names, dates, document numbers and country codes.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var ErrUnknownCountry = errors.New("unknown country code")

// Default is the locale used for country codes without a dedicated locale
// and for attributes that are not locale specific.
var Default = language.AmericanEnglish

var countryLocales = map[string]language.Tag{
	"AL": language.MustParse("sq-AL"), "AM": language.MustParse("hy-AM"), "AR": language.MustParse("es-AR"),
	"AT": language.MustParse("de-AT"), "AZ": language.MustParse("az-AZ"), "BE": language.MustParse("fr-BE"),
	"BG": language.MustParse("bg-BG"), "BN": language.MustParse("bn-BD"), "BO": language.MustParse("es"),
	"BR": language.MustParse("pt-BR"), "CA": language.MustParse("fr-CA"), "CH": language.MustParse("de-CH"),
	"CL": language.MustParse("es-CL"), "CN": language.MustParse("zh-CN"), "CO": language.MustParse("es-CO"),
	"CR": language.MustParse("es"), "CS": language.MustParse("cs-CZ"), "CU": language.MustParse("es"),
	"DE": language.MustParse("de"), "DO": language.MustParse("es"), "EC": language.MustParse("es"),
	"EE": language.MustParse("et-EE"), "ES": language.MustParse("es-ES"), "FI": language.MustParse("fi-FI"),
	"FR": language.MustParse("fr-FR"), "GB": language.MustParse("en-GB"), "GE": language.MustParse("ka-GE"),
	"GR": language.MustParse("el-GR"), "GT": language.MustParse("es"), "HN": language.MustParse("es"),
	"HR": language.MustParse("hr-HR"), "HU": language.MustParse("hu-HU"), "ID": language.MustParse("id-ID"),
	"IE": language.MustParse("en-IE"), "IL": language.MustParse("he-IL"), "IN": language.MustParse("en-IN"),
	"IR": language.MustParse("fa-IR"), "IT": language.MustParse("it-IT"), "JP": language.MustParse("ja-JP"),
	"KR": language.MustParse("ko-KR"), "MX": language.MustParse("es-MX"), "NI": language.MustParse("es"),
	"NL": language.MustParse("nl-NL"), "NO": language.MustParse("no-NO"), "NZ": language.MustParse("en-NZ"),
	"PA": language.MustParse("es"), "PE": language.MustParse("es"), "PL": language.MustParse("pl-PL"),
	"PT": language.MustParse("pt-PT"), "PY": language.MustParse("es"), "RO": language.MustParse("ro-RO"),
	"RU": language.MustParse("ru-RU"), "SA": language.MustParse("ar-SA"), "SE": language.MustParse("sv-SE"),
	"SI": language.MustParse("sl-SI"), "SK": language.MustParse("sk-SK"), "SV": language.MustParse("es"),
	"TH": language.MustParse("th-TH"), "TR": language.MustParse("tr-TR"), "TW": language.MustParse("zh-TW"),
	"UA": language.MustParse("uk-UA"), "UY": language.MustParse("es"), "VE": language.MustParse("es"),
	"ZA": language.MustParse("zu-ZA"),
}

// LocaleFor maps an ISO 3166 alpha-2 country code to a locale tag. Unknown
// codes fall back to Default.
func LocaleFor(countryCode string) language.Tag {
	if tag, ok := countryLocales[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return tag
	}
	return Default
}

// Alpha2ToAlpha3 converts an ISO 3166 alpha-2 country code to its alpha-3
// form. Codes that are malformed, reserved or not assigned to a country
// yield ErrUnknownCountry.
func Alpha2ToAlpha3(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 || !isASCIIUpper(code) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnknownCountry, code, err)
	}
	if !region.IsCountry() || region.IsPrivateUse() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	alpha3 := region.ISO3()
	if len(alpha3) != 3 || alpha3 == "ZZZ" {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	return alpha3, nil
}

func isASCIIUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
