package layout

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// dateLocales lists the supported short date layouts; the first entry is
// the fallback.
var dateLocales = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Russian, "02.01.2006"},
	{language.Polish, "2.01.2006"},
	{language.BrazilianPortuguese, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
	{language.Swedish, "2006-01-02"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLocales))
	for i, l := range dateLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// FormatDate renders t as a short numeric date in the closest supported
// locale.
func FormatDate(t time.Time, tag language.Tag) string {
	_, i, conf := dateMatcher.Match(tag)
	if conf == language.No {
		i = 0
	}
	return t.Format(dateLocales[i].layout)
}

// ParseLocale parses a BCP 47 tag such as "en-US". The empty string means
// the fallback locale.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return dateLocales[0].tag, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("layout: locale %q: %w", s, err)
	}
	return tag, nil
}
