package danmaku

import "fmt"

type Page struct {
	Data       []string
	PageSize   int
	PageCount  int
	TotalCount int
}

// Page slices the comments of bvid. size <= 0 means the whole list, size is
// capped at the list length, and a page past the end yields the last page.
// PageSize of the result is the length of Data.
func (s *Store) Page(bvid string, size, page int) (*Page, error) {
	list, ok := s.danmakus[bvid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, bvid)
	}
	if page <= 0 {
		return nil, fmt.Errorf("%w: page %d", ErrInvalidArgument, page)
	}

	total := len(list)
	if total == 0 {
		return &Page{Data: []string{}}, nil
	}
	if size <= 0 || size > total {
		size = total
	}
	pageCount := (total + size - 1) / size
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * size
	end := min(start+size, total)
	data := append([]string(nil), list[start:end]...)
	return &Page{
		Data:       data,
		PageSize:   len(data),
		PageCount:  pageCount,
		TotalCount: total,
	}, nil
}
