package standard

import (
	"context"
	"errors"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
)

// InitStorageCache creates a named LRU cache in storage when executed,
// replacing any cache of the same name.
type InitStorageCache struct {
	actor.Base

	Cache string
	Size  int
}

func NewInitStorageCache() *InitStorageCache { return &InitStorageCache{Size: 100} }

func (i *InitStorageCache) Configure(o *options.Options) error {
	var err error
	if i.Cache, err = o.String("cache", ""); err != nil {
		return err
	}
	i.Size, err = o.Int("size", i.Size)
	return err
}

func (i *InitStorageCache) SetUp(context.Context) error {
	if i.Cache == "" {
		return errors.New("no cache name configured")
	}
	if i.Size <= 0 {
		return errors.New("cache size must be positive")
	}
	return nil
}

func (i *InitStorageCache) Execute(ctx context.Context) error {
	i.Logger(ctx).Debug("Creating storage cache.", "cache", i.Cache, "size", i.Size)
	return i.Env().Storage.AddCache(i.Cache, i.Size)
}
