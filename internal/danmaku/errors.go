package danmaku

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyDatabase   = errors.New("empty database")
	ErrKeyNotFound     = errors.New("bvid does not exist")
)
