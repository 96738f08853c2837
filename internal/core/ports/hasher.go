package ports

// ContentHasher digests source contents.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type ContentHasher interface {
	// Digest returns a content hash of the file at path.
	Digest(path string) (uint64, error)
}
