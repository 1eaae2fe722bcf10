//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

type Getter interface {
	// Get returns ErrKeyNotFound if the given key doesn't exist.
	Get(key string) (data []byte, err error)
}
