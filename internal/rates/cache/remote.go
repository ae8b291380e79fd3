package cache

import "context"

// Remote triggers a server-side refresh on the remote rate source.
type Remote interface {
	Refresh(ctx context.Context) error
}
