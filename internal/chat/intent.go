// Package chat answers student questions, short-circuiting date, time and
// timetable questions before falling back to the language model.
package chat

import (
	"regexp"
	"strings"
)

// Intent is the route a message takes through the service.
type Intent string

const (
	// IntentDate answers with today's date.
	IntentDate Intent = "date"
	// IntentTime answers with the current time.
	IntentTime Intent = "time"
	// IntentTimetable answers with a day's timetable.
	IntentTimetable Intent = "timetable"
	// IntentDayOrder answers with a day's day order.
	IntentDayOrder Intent = "day_order"
	// IntentLLM delegates to the language model.
	IntentLLM Intent = "llm"
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

var timetableWords = map[string]struct{}{
	"timetable": {}, "timetables": {},
	"schedule": {}, "schedules": {},
	"class": {}, "classes": {},
	"period": {}, "periods": {},
}

type words []string

func splitWords(message string) words {
	return wordPattern.FindAllString(strings.ToLower(message), -1)
}

func (w words) has(word string) bool {
	for _, x := range w {
		if x == word {
			return true
		}
	}
	return false
}

func (w words) hasAny(set map[string]struct{}) bool {
	for _, x := range w {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}

// hasPhrase reports whether the words of phrase appear consecutively.
func (w words) hasPhrase(phrase ...string) bool {
	for i := 0; i+len(phrase) <= len(w); i++ {
		match := true
		for j, p := range phrase {
			if w[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Classify picks the intent for message. Checks run in priority order and
// compare whole words, so "timetable" never counts as "time".
func Classify(message string) Intent {
	w := splitWords(message)
	dayOrder := w.hasPhrase("day", "order")

	switch {
	case w.has("date") || (w.hasPhrase("what", "day") && !dayOrder):
		return IntentDate
	case w.has("time"):
		return IntentTime
	case w.hasAny(timetableWords):
		return IntentTimetable
	case dayOrder:
		return IntentDayOrder
	default:
		return IntentLLM
	}
}

// dayOffset resolves how many days ahead a message refers to.
func dayOffset(message string) int {
	w := splitWords(message)
	switch {
	case w.hasPhrase("day", "after"):
		return 2
	case w.has("tomorrow"):
		return 1
	default:
		return 0
	}
}
