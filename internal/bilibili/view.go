package bilibili

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var bvidPattern = regexp.MustCompile(`^BV[0-9A-Za-z]{10}$`)

// ValidBvid reports whether bvid has the shape of a public video id.
func ValidBvid(bvid string) bool {
	return bvidPattern.MatchString(bvid)
}

type VideoPage struct {
	Cid      int64  `json:"cid"`
	Page     int    `json:"page"`
	Part     string `json:"part"`
	Duration int    `json:"duration"`
}

type VideoView struct {
	Bvid     string      `json:"bvid"`
	Aid      int64       `json:"aid"`
	Cid      int64       `json:"cid"`
	Title    string      `json:"title"`
	Duration int         `json:"duration"`
	Pages    []VideoPage `json:"pages"`
}

// PrimaryCid is the content id of the first part.
func (v *VideoView) PrimaryCid() int64 {
	if len(v.Pages) > 0 && v.Pages[0].Cid != 0 {
		return v.Pages[0].Cid
	}
	return v.Cid
}

// PrimaryDuration is the duration in seconds of the part PrimaryCid refers
// to, falling back to the whole video's duration.
func (v *VideoView) PrimaryDuration() int {
	if len(v.Pages) > 0 && v.Pages[0].Duration > 0 {
		return v.Pages[0].Duration
	}
	return v.Duration
}

// VideoView resolves a bvid to its content id and duration.
func (c *Client) VideoView(ctx context.Context, bvid string, cred *Credential) (*VideoView, error) {
	if !ValidBvid(bvid) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoId, bvid)
	}
	if c.cache != nil {
		if view, ok := c.cache.GetView(bvid); ok {
			return view, nil
		}
	}

	var view VideoView
	err := c.getJSON(ctx, viewPath, url.Values{"bvid": {bvid}}, cred, &view)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case -400:
				return nil, fmt.Errorf("%w: %s: %s", ErrInvalidVideoId, bvid, apiErr.Message)
			case -404, 62002, 62004, 62012:
				return nil, fmt.Errorf("%w: %s: %s", ErrVideoNotFound, bvid, apiErr.Message)
			}
		}
		return nil, err
	}
	if view.PrimaryCid() == 0 {
		return nil, fmt.Errorf("%w: %s has no content id", ErrVideoNotFound, bvid)
	}

	if c.cache != nil {
		c.cache.PutView(bvid, &view)
	}
	return &view, nil
}
