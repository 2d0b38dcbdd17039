package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bookPattern   = regexp.MustCompile(`book|buy|purchase`)
	showPattern   = regexp.MustCompile(`(show|list|see).*events|^events$| events`)
	digitPattern  = regexp.MustCompile(`\b(\d+)\b`)
	wordPattern   = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	eventPattern  = regexp.MustCompile(`(?i)for\s+(.+)$`)
	trailingPunct = regexp.MustCompile(`[.?!]+$`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Fallback is the rule-based parser. It never fails; it may return an
// empty Event or a zero ticket count for odd input like "book 0 for x".
func Fallback(text string) Result {
	lower := strings.ToLower(text)

	res := Result{Intent: Greet, Tickets: 1}
	switch {
	case bookPattern.MatchString(lower):
		res.Intent = Book
	case showPattern.MatchString(lower):
		res.Intent = Show
	}

	if m := digitPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			res.Tickets = n
		}
	} else if m := wordPattern.FindStringSubmatch(lower); m != nil {
		res.Tickets = numberWords[m[1]]
	}

	if m := eventPattern.FindStringSubmatch(text); m != nil {
		res.Event = trailingPunct.ReplaceAllString(strings.TrimSpace(m[1]), "")
	}
	return res
}
