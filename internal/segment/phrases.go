package segment

import (
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
)

// DefaultSlang are comment idioms that a general-purpose dictionary splits
// into meaningless pieces.
var DefaultSlang = []string{
	"哈哈哈哈", "哈哈哈", "前方高能", "awsl", "yyds", "泪目", "好家伙", "绝绝子", "破防了",
	"名场面", "爷青回", "爷青结", "妙啊", "下次一定", "一键三连", "三连", "空降", "打卡",
	"高能预警", "全体起立", "弹幕护体", "u1s1", "xswl", "nsdd",
}

// phraseMatcher finds dictionary phrases in text, leftmost-longest and
// non-overlapping. Matching is ASCII case-insensitive.
type phraseMatcher struct {
	ac      *ahocorasick.Automaton
	phrases []string
}

type span struct {
	start, end int
	phrase     string
}

func newPhraseMatcher(phrases []string) (*phraseMatcher, error) {
	seen := make(map[string]struct{}, len(phrases))
	var patterns []string
	for _, p := range phrases {
		p = asciiLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return &phraseMatcher{}, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &phraseMatcher{ac: automaton, phrases: patterns}, nil
}

// find returns the chosen phrase spans ordered by position. Byte offsets are
// valid for text since asciiLower keeps lengths.
func (m *phraseMatcher) find(text string) []span {
	if m == nil || m.ac == nil {
		return nil
	}
	matches := m.ac.FindAllOverlapping([]byte(asciiLower(text)))
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})

	var spans []span
	last := 0
	for _, mt := range matches {
		if mt.Start < last || mt.End <= mt.Start {
			continue
		}
		spans = append(spans, span{start: mt.Start, end: mt.End, phrase: m.phrases[mt.PatternID]})
		last = mt.End
	}
	return spans
}

func asciiLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
