// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/reload/internal/core/domain"
)

// SourceEnumerator lists the sources currently present.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceEnumerator interface {
	// Enumerate returns every source found under dirs, mapped to its
	// modification time in UnixNano. Only files ending in one of extensions
	// are sources; an empty list accepts every file.
	Enumerate(ctx context.Context, dirs, extensions []string) (map[domain.InternedString]int64, error)
}

// SourceReader parses one source into its unit declarations.
type SourceReader interface {
	// Read returns the declarations of source. Any error marks the source broken.
	Read(ctx context.Context, source domain.InternedString) (map[domain.InternedString]domain.Declaration, error)
}
