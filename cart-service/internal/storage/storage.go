// Package storage is the durable key/value port behind the cart and the order
// snapshots. Values are opaque bytes; callers own the encoding.
package storage

import (
	"context"
	"errors"
)

// Keys written by the storefront.
const (
	CartKey      = "fitlyf_cart"
	LastOrderKey = "fitlyf_last_order"
	orderPrefix  = "fitlyf_order_"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

func OrderKey(orderID string) string {
	return orderPrefix + orderID
}

// Scoped prefixes every key with prefix, giving each session its own namespace
// in a shared backend.
func Scoped(s Storage, prefix string) Storage {
	return scoped{inner: s, prefix: prefix + ":"}
}

type scoped struct {
	inner  Storage
	prefix string
}

func (s scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
