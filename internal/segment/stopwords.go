package segment

import (
	"bufio"
	_ "embed"
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
)

//go:embed stopwords.txt
var bundledStopWords string

// StopWords decides which tokens are dropped before counting: punctuation
// and symbols, numbers, lone latin letters, the bundled Chinese list, extra
// configured words and English function words.
type StopWords struct {
	words   map[string]struct{}
	english *stopwords.Stopwords
}

func NewStopWords(extra ...string) *StopWords {
	sw := &StopWords{
		words:   make(map[string]struct{}),
		english: stopwords.MustGet("en"),
	}
	scanner := bufio.NewScanner(strings.NewReader(bundledStopWords))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sw.Add(line)
	}
	for _, w := range extra {
		sw.Add(w)
	}
	return sw
}

func (sw *StopWords) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		sw.words[word] = struct{}{}
	}
}

func (sw *StopWords) IsStop(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return true
	}
	lower := strings.ToLower(token)
	if _, ok := sw.words[lower]; ok {
		return true
	}
	if isLoneLatinLetter(lower) || allRunes(lower, isPunctOrSpace) || allRunes(lower, unicode.IsNumber) {
		return true
	}
	return sw.english != nil && sw.english.Contains(lower)
}

func isPunctOrSpace(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
}

func isLoneLatinLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}
