package timetable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized extractions.
const DefaultCacheSize = 8

var markerPattern = regexp.MustCompile(`(?i)DAY\s*ORDER\s*(\d+)`)

type cacheKey struct {
	order int
	text  string
}

// Extractor pulls the schedule for a single day order out of corpus text.
// Results are memoized in a fixed-size LRU cache.
type Extractor struct {
	cache *lru.Cache[cacheKey, string]
}

// NewExtractor creates an Extractor whose cache holds at most size entries.
func NewExtractor(size int) (*Extractor, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("create timetable cache: %w", err)
	}
	return &Extractor{cache: c}, nil
}

// Lookup returns the text from the "DAY ORDER n" marker up to the next day
// order marker or the end of text. A not-found message is returned when the
// marker is absent.
func (e *Extractor) Lookup(order int, text string) string {
	key := cacheKey{order: order, text: text}
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	v := extract(order, text)
	e.cache.Add(key, v)
	return v
}

// Len reports how many extractions are cached.
func (e *Extractor) Len() int {
	return e.cache.Len()
}

func extract(order int, text string) string {
	markers := markerPattern.FindAllStringSubmatchIndex(text, -1)
	for i, m := range markers {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n != order {
			continue
		}
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		return strings.TrimSpace(text[m[0]:end])
	}
	return NotFoundMessage(order)
}

// NotFoundMessage is the user-facing reply when a day order has no schedule.
func NotFoundMessage(order int) string {
	return fmt.Sprintf("Timetable for Day Order %d not found.", order)
}
