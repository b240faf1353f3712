package danmaku

import (
	"fmt"
	"sort"
)

// Tokenizer splits a comment into countable words, dropping stop words.
type Tokenizer interface {
	Tokenize(text string) []string
}

type Frequency struct {
	Text  string `json:"danmaku"`
	Count int    `json:"count"`
}

// FrequencyTable is sorted by count descending; equal counts keep the order
// in which the texts were first seen.
type FrequencyTable []Frequency

// CountFrequencies counts exact duplicates in texts.
func CountFrequencies(texts []string) FrequencyTable {
	index := make(map[string]int, len(texts))
	table := make(FrequencyTable, 0)
	for _, text := range texts {
		if i, ok := index[text]; ok {
			table[i].Count++
			continue
		}
		index[text] = len(table)
		table = append(table, Frequency{Text: text, Count: 1})
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	return table
}

// TopK returns the first min(n, len(t)) entries. An empty table yields an
// empty result; n <= 0 is rejected.
func (t FrequencyTable) TopK(n int) ([]Frequency, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}
	n = min(n, len(t))
	return append([]Frequency{}, t[:n]...), nil
}

// Weights is the word -> count map consumed by the word cloud renderer.
func (t FrequencyTable) Weights() map[string]int {
	weights := make(map[string]int, len(t))
	for _, f := range t {
		weights[f.Text] = f.Count
	}
	return weights
}

// Flatten lists every comment, videos in store order and comments in fetch
// order.
func (s *Store) Flatten() ([]string, error) {
	if s.Size() == 0 {
		return nil, ErrEmptyDatabase
	}
	all := make([]string, 0, s.Total())
	for _, bvid := range s.order {
		all = append(all, s.danmakus[bvid]...)
	}
	return all, nil
}

// Frequencies counts whole comments when tok is nil and tokens otherwise.
func (s *Store) Frequencies(tok Tokenizer) (FrequencyTable, error) {
	all, err := s.Flatten()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return CountFrequencies(all), nil
	}
	tokens := make([]string, 0, len(all))
	for _, text := range all {
		tokens = append(tokens, tok.Tokenize(text)...)
	}
	return CountFrequencies(tokens), nil
}

// TopK is the n most frequent comments (or tokens when tok is set).
func (s *Store) TopK(n int, tok Tokenizer) ([]Frequency, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}
	table, err := s.Frequencies(tok)
	if err != nil {
		return nil, err
	}
	return table.TopK(n)
}
