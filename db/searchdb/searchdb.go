package searchdb

type DB interface {
	Index(documents []Document) error
	Delete(documentIDs []string) error
	Search(queryString string, limit int) ([]Result, error)
	DocCount() (uint64, error)
	Close() error
}
