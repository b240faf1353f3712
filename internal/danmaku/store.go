// Package danmaku holds the in-memory comment collection keyed by video id,
// its frequency statistics and the spreadsheet export format.
package danmaku

import (
	"fmt"
)

// Store maps video ids to their comments. Ids keep their first insertion
// order. Lists are copied on the way in and out so callers never alias
// stored data.
//
// Store is not synchronized. Concurrent writers must target distinct ids and
// must not overlap with readers.
type Store struct {
	order    []string
	danmakus map[string][]string
}

func NewStore() *Store {
	return &Store{
		danmakus: make(map[string][]string),
	}
}

// Item is one video id with its comments.
type Item struct {
	Bvid     string
	Danmakus []string
}

// Append adds one comment, creating the entry if needed.
func (s *Store) Append(bvid, danmaku string) {
	if _, ok := s.danmakus[bvid]; !ok {
		s.order = append(s.order, bvid)
	}
	s.danmakus[bvid] = append(s.danmakus[bvid], danmaku)
}

// Set replaces the comments of bvid. A new id goes to the end of the order,
// an existing one keeps its position.
func (s *Store) Set(bvid string, danmakus []string) {
	if _, ok := s.danmakus[bvid]; !ok {
		s.order = append(s.order, bvid)
	}
	s.danmakus[bvid] = append(make([]string, 0, len(danmakus)), danmakus...)
}

func (s *Store) Get(bvid string) ([]string, error) {
	list, ok := s.danmakus[bvid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, bvid)
	}
	return append([]string(nil), list...), nil
}

func (s *Store) Has(bvid string) bool {
	_, ok := s.danmakus[bvid]
	return ok
}

// Count is the number of comments stored for bvid, zero when absent.
func (s *Store) Count(bvid string) int {
	return len(s.danmakus[bvid])
}

// Size is the number of distinct video ids.
func (s *Store) Size() int {
	return len(s.order)
}

func (s *Store) Bvids() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) Items() []Item {
	items := make([]Item, 0, len(s.order))
	for _, bvid := range s.order {
		items = append(items, Item{
			Bvid:     bvid,
			Danmakus: append([]string(nil), s.danmakus[bvid]...),
		})
	}
	return items
}

// Total is the number of comments across all videos.
func (s *Store) Total() int {
	total := 0
	for _, list := range s.danmakus {
		total += len(list)
	}
	return total
}

func (s *Store) Clear() {
	s.order = nil
	s.danmakus = make(map[string][]string)
}

// Replace swaps the contents of s for a copy of other's.
func (s *Store) Replace(other *Store) {
	if other == s {
		return
	}
	s.Clear()
	for _, item := range other.Items() {
		s.Set(item.Bvid, item.Danmakus)
	}
}
