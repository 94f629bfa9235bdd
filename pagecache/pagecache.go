// Package pagecache is a full-page response cache keyed by request path.
// Rendered pages are stored for a fixed TTL and replayed verbatim on a hit.
package pagecache

import (
	"bytes"
	"encoding/gob"
)

// Store holds rendered pages for a fixed TTL chosen at construction time.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	// Clear drops every cached page.
	Clear()
}

type cachedPage struct {
	Status      int
	ContentType string
	Body        []byte
}

func encodePage(page cachedPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePage(raw []byte) (page cachedPage, err error) {
	err = gob.NewDecoder(bytes.NewReader(raw)).Decode(&page)
	return
}
