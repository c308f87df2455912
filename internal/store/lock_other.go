//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package store

import "context"

// Lock is a no-op where flock is unavailable.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return func() {}, nil
}
