// Package cache keeps video metadata lookups in a badger store so repeated
// fetches of the same video skip the view endpoint.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"danmaku/internal/bilibili"
)

const viewKeyPrefix = "view:"

type ViewCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *logrus.Entry
}

// NewViewCache opens the cache in dir, or in memory when dir is empty.
// Entries expire after ttl; a zero ttl keeps them forever.
func NewViewCache(dir string, ttl time.Duration, logger *logrus.Entry) (*ViewCache, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &ViewCache{db: db, ttl: ttl, logger: logger}, nil
}

func (c *ViewCache) Close() error {
	return c.db.Close()
}

func viewKey(bvid string) []byte {
	return []byte(viewKeyPrefix + bvid)
}

func (c *ViewCache) GetView(bvid string) (*bilibili.VideoView, bool) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(viewKey(bvid))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.WithError(err).Warnf("read cached view %s", bvid)
		}
		return nil, false
	}

	var view bilibili.VideoView
	if err := json.Unmarshal(val, &view); err != nil {
		c.logger.WithError(err).Warnf("decode cached view %s", bvid)
		return nil, false
	}
	return &view, true
}

func (c *ViewCache) PutView(bvid string, view *bilibili.VideoView) {
	if view == nil {
		return
	}
	val, err := json.Marshal(view)
	if err != nil {
		c.logger.WithError(err).Warnf("encode view %s", bvid)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(viewKey(bvid), val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.WithError(err).Warnf("cache view %s", bvid)
	}
}

// Purge drops every cached view. The server calls it when the danmaku
// database is cleared.
func (c *ViewCache) Purge() error {
	return c.db.DropPrefix([]byte(viewKeyPrefix))
}
