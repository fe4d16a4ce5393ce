package store

import "context"

// Store is the external key-value persistence the draft core runs against.
// Values are opaque JSON blobs replaced wholesale on every write; there is no
// partial update. The store may outlive any single server process, which is
// what makes deadline-based timer resumption work.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

func RoomKey(id string) string  { return "room:" + id }
func DraftKey(id string) string { return "draft:" + id }
