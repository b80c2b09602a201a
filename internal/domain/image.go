package domain

import "context"

// FileStore abstracts raw image byte storage. The initial implementation
// stores files on the local filesystem; this interface allows swapping to
// object storage later.
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}
