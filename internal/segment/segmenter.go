// Package segment splits Chinese comment text into words for frequency
// counting. Configured slang phrases are kept whole, everything else goes
// through the gse dictionary segmenter, and stop words are dropped.
package segment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// Cutter is the dictionary segmentation step. *gse.Segmenter satisfies it.
type Cutter interface {
	Cut(str string, hmm ...bool) []string
}

type Options struct {
	// DictPath overrides the embedded gse dictionary when set.
	DictPath       string
	SlangWords     []string
	ExtraStopWords []string
}

// Segmenter implements danmaku.Tokenizer. It is safe for concurrent use.
type Segmenter struct {
	cutter  Cutter
	phrases *phraseMatcher
	stop    *StopWords
}

func New(opts Options) (*Segmenter, error) {
	var seg gse.Segmenter
	var err error
	if opts.DictPath != "" {
		err = seg.LoadDict(opts.DictPath)
	} else {
		err = seg.LoadDictEmbed()
	}
	if err != nil {
		return nil, fmt.Errorf("load segment dictionary: %w", err)
	}
	return NewWithCutter(&seg, opts)
}

// NewWithCutter builds a Segmenter around an already loaded cutter.
func NewWithCutter(cutter Cutter, opts Options) (*Segmenter, error) {
	slang := append(append([]string{}, DefaultSlang...), opts.SlangWords...)
	phrases, err := newPhraseMatcher(slang)
	if err != nil {
		return nil, fmt.Errorf("build slang matcher: %w", err)
	}
	return &Segmenter{
		cutter:  cutter,
		phrases: phrases,
		stop:    NewStopWords(opts.ExtraStopWords...),
	}, nil
}

func (s *Segmenter) Tokenize(text string) []string {
	var tokens []string
	emit := func(tok string) {
		tok = strings.TrimSpace(tok)
		if !s.stop.IsStop(tok) {
			tokens = append(tokens, tok)
		}
	}
	cut := func(part string) {
		if strings.TrimSpace(part) == "" {
			return
		}
		for _, tok := range s.cutter.Cut(part, true) {
			emit(tok)
		}
	}

	pos := 0
	for _, sp := range s.phrases.find(text) {
		cut(text[pos:sp.start])
		emit(sp.phrase)
		pos = sp.end
	}
	cut(text[pos:])
	return tokens
}

var (
	defaultOnce sync.Once
	defaultSeg  *Segmenter
	defaultErr  error
)

// Default returns a process-wide Segmenter with the embedded dictionary.
// Loading the dictionary is slow, so it happens once on first use.
func Default() (*Segmenter, error) {
	defaultOnce.Do(func() {
		defaultSeg, defaultErr = New(Options{})
	})
	return defaultSeg, defaultErr
}
