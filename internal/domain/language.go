package domain

import "strings"

type Language string

const (
	LangFR Language = "FR"
	LangEN Language = "EN"
	LangAR Language = "AR"
)

// BaseLanguage is the language product base fields are written in.
const BaseLanguage = LangFR

var languages = []Language{LangFR, LangEN, LangAR}

func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage normalizes a language code; only FR, EN and AR are accepted.
func ParseLanguage(s string) (Language, error) {
	code := Language(strings.ToUpper(strings.TrimSpace(s)))
	for _, l := range languages {
		if l == code {
			return l, nil
		}
	}
	return "", Invalid("language", "unsupported language "+strings.TrimSpace(s))
}
