package reservations

import (
	"time"

	"golang.org/x/text/language"
)

// Abbreviated weekday names indexed by time.Weekday. The Korean table
// matches the short day names stores registered through the Korean
// client write into their week-off text.
var (
	englishWeekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	koreanWeekdays  = [7]string{"일", "월", "화", "수", "목", "금", "토"}
)

var weekdayMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Korean,
})

// WeekdayNames renders abbreviated weekday names for one locale.
type WeekdayNames struct {
	tag   language.Tag
	names [7]string
}

// NewWeekdayNames picks the closest supported table for locale, a BCP 47
// tag such as "en", "en-US" or "ko-KR". Unknown locales fall back to English.
func NewWeekdayNames(locale string) WeekdayNames {
	requested, err := language.Parse(locale)
	if err != nil {
		return WeekdayNames{tag: language.English, names: englishWeekdays}
	}
	_, idx, confidence := weekdayMatcher.Match(requested)
	if confidence == language.No || idx == 0 {
		return WeekdayNames{tag: language.English, names: englishWeekdays}
	}
	return WeekdayNames{tag: language.Korean, names: koreanWeekdays}
}

// Short returns the abbreviated name of d.
func (w WeekdayNames) Short(d time.Weekday) string {
	names := w.names
	if names[0] == "" {
		names = englishWeekdays
	}
	return names[d]
}

// Tag reports the locale the names were chosen for.
func (w WeekdayNames) Tag() language.Tag {
	if w.tag == language.Und {
		return language.English
	}
	return w.tag
}
