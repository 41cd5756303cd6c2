package generate

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/piwi3910/TrayForge/internal/mesh"
)

// cachedMesh returns the mesh stored under key or builds and stores it.
// Cache failures never fail the build; they are logged and the mesh is
// rebuilt.
func cachedMesh(ctx context.Context, opts Options, key string, buildFn func() (*mesh.Mesh, error)) (*mesh.Mesh, bool, error) {
	if data, hit, err := opts.Cache.Get(ctx, key); err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
	} else if hit {
		var m mesh.Mesh
		if err := msgpack.Unmarshal(data, &m); err == nil {
			return &m, true, nil
		}
		opts.Logger.Warn("discarding unreadable cache entry", "key", key)
	}

	m, err := buildFn()
	if err != nil {
		return nil, false, err
	}
	if data, err := msgpack.Marshal(m); err == nil {
		if err := opts.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return m, false, nil
}
