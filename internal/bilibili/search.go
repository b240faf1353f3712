package bilibili

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type SearchResult struct {
	Type   string `json:"type"`
	ID     int64  `json:"id"`
	Aid    int64  `json:"aid"`
	Bvid   string `json:"bvid"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type SearchPage struct {
	Page       int            `json:"page"`
	PageSize   int            `json:"pagesize"`
	NumResults int            `json:"numResults"`
	NumPages   int            `json:"numPages"`
	Result     []SearchResult `json:"result"`
}

// SearchVideos requests one page (1-based) of video results for keyword,
// ordered by the default overall ranking.
func (c *Client) SearchVideos(ctx context.Context, keyword string, page int, cred *Credential) (*SearchPage, error) {
	if keyword == "" || page < 1 {
		return nil, fmt.Errorf("invalid search keyword %q or page %d", keyword, page)
	}
	c.ensureBuvid3(ctx, cred)

	query := url.Values{
		"search_type": {"video"},
		"order":       {"totalrank"},
		"keyword":     {keyword},
		"page":        {strconv.Itoa(page)},
	}
	var sp SearchPage
	if err := c.getJSON(ctx, searchPath, query, cred, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}
