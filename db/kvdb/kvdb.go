package kvdb

// DB is an ordered key-value store. Keys are expected to sort in insertion
// order so that Entries can return the newest value first.
type DB interface {
	Set(key string, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	Entries() ([]Entry, error)
	Close() error
}
