// Package scanner detects which sources changed since the previous run and
// derives the units touched by those changes.
package scanner

import (
	"context"
	"slices"
	"time"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options tunes a single scan.
type Options struct {
	// Dirs are the directories handed to the enumerator.
	Dirs []string
	// Extensions restricts which files count as sources.
	Extensions []string
	// Since is the previous watermark. Zero forces every source to be re-read.
	Since int64
	// ExcludeReload holds units whose breakage never blocks a run.
	ExcludeReload domain.UnitSet
	// ContentCheck treats sources whose digest did not change as unchanged.
	ContentCheck bool
	// Parallelism bounds concurrent reads. Values below one mean one.
	Parallelism int
}

// Scanner compares the current sources against a previous scan state.
type Scanner struct {
	enumerator ports.SourceEnumerator
	reader     ports.SourceReader
	hasher     ports.ContentHasher
	logger     ports.Logger
	now        func() time.Time
}

// New creates a Scanner.
func New(
	enumerator ports.SourceEnumerator,
	reader ports.SourceReader,
	hasher ports.ContentHasher,
	logger ports.Logger,
) *Scanner {
	return &Scanner{
		enumerator: enumerator,
		reader:     reader,
		hasher:     hasher,
		logger:     logger,
		now:        time.Now,
	}
}

type readResult struct {
	id           domain.InternedString
	mtime        int64
	digest       uint64
	declarations map[domain.InternedString]domain.Declaration
	err          error
	unchanged    bool
}

// Scan enumerates and reads sources and returns the resulting change set.
// Read failures never abort the scan unless they hide an active unit; only
// context cancellation does otherwise.
func (s *Scanner) Scan(ctx context.Context, prev *domain.ScanState, opts Options) (*domain.ChangeSet, error) {
	if prev == nil {
		prev = domain.NewScanState()
	}

	// Captured before enumerating so that writes racing this scan are seen next time.
	now := s.now().UnixNano()

	current, err := s.enumerator.Enumerate(ctx, opts.Dirs, opts.Extensions)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to enumerate sources")
	}

	ids := make([]domain.InternedString, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, domain.InternedString.Compare)

	nextSources := make(map[domain.InternedString]domain.Source, len(current))
	var candidates []readResult

	for _, id := range ids {
		mtime := current[id]
		old, known := prev.Sources[id]
		if known && !old.Broken() && opts.Since != 0 && mtime <= opts.Since {
			nextSources[id] = old
			continue
		}
		candidates = append(candidates, readResult{id: id, mtime: mtime})
	}

	if err := s.readAll(ctx, prev, candidates, opts); err != nil {
		return nil, err
	}

	cs := &domain.ChangeSet{
		Previous:        prev,
		ToUnload:        make(domain.UnitSet),
		ToLoad:          make(domain.UnitSet),
		ModifiedSources: make(domain.UnitSet),
		BrokenUnits:     make(map[domain.InternedString]error),
		SourceErrors:    make(map[domain.InternedString]error),
	}

	watermark := max(prev.Watermark, now)

	for _, res := range candidates {
		old, known := prev.Sources[res.id]
		switch {
		case res.unchanged:
			old.LastModified = res.mtime
			nextSources[res.id] = old
		case res.err != nil:
			broken := domain.Source{
				ID:           res.id,
				LastModified: res.mtime,
				Digest:       old.Digest,
				Err:          res.err.Error(),
			}
			if known {
				broken.Declarations = old.Declarations
			}
			nextSources[res.id] = broken
			cs.SourceErrors[res.id] = res.err
		default:
			nextSources[res.id] = domain.Source{
				ID:           res.id,
				LastModified: res.mtime,
				Digest:       res.digest,
				Declarations: res.declarations,
			}
			cs.ModifiedSources.Add(res.id)
			watermark = max(watermark, res.mtime)
			if known {
				cs.ToUnload = cs.ToUnload.Union(old.Units())
			}
			cs.ToLoad = cs.ToLoad.Union(nextSources[res.id].Units())
		}
	}

	for id, old := range prev.Sources {
		if _, ok := current[id]; !ok {
			cs.ToUnload = cs.ToUnload.Union(old.Units())
		}
	}

	next := prev.Clone()
	next.Watermark = watermark
	next.Sources = nextSources
	next.Units = domain.MergeUnits(nextSources)
	next.Broken = make(map[domain.InternedString]string)
	cs.Next = next

	if err := s.classifyBroken(cs, opts.ExcludeReload); err != nil {
		return nil, err
	}

	return cs, nil
}

// readAll re-reads the candidate sources concurrently, filling each result in place.
func (s *Scanner) readAll(ctx context.Context, prev *domain.ScanState, candidates []readResult, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallelism, 1))

	for i := range candidates {
		res := &candidates[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			old, known := prev.Sources[res.id]
			if opts.ContentCheck && s.hasher != nil {
				digest, err := s.hasher.Digest(res.id.String())
				if err != nil {
					s.logger.Debug("content digest failed", "source", res.id.String(), "error", err)
				} else {
					res.digest = digest
					if known && !old.Broken() && old.Digest != 0 && old.Digest == digest {
						res.unchanged = true
						return nil
					}
				}
			}

			res.declarations, res.err = s.reader.Read(gctx, res.id)
			if res.err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	return g.Wait()
}

// classifyBroken records every unit of a broken source. A unit that is active
// and not excluded from reload turns the breakage into a hard failure.
func (s *Scanner) classifyBroken(cs *domain.ChangeSet, excludeReload domain.UnitSet) error {
	sources := make([]domain.InternedString, 0, len(cs.SourceErrors))
	for id := range cs.SourceErrors {
		sources = append(sources, id)
	}
	slices.SortFunc(sources, domain.InternedString.Compare)

	for _, sourceID := range sources {
		readErr := cs.SourceErrors[sourceID]
		for _, unitID := range cs.Next.Sources[sourceID].Units().Sorted() {
			cs.BrokenUnits[unitID] = readErr
			cs.Next.Broken[unitID] = readErr.Error()

			unit := cs.Next.Units[unitID]
			if !cs.Active(unitID) || unit.ExcludeFromReload || excludeReload.Has(unitID) {
				continue
			}

			err := zerr.Wrap(domain.ErrSourceParse, "active unit is declared by a broken source")
			err = zerr.With(err, "source", sourceID.String())
			err = zerr.With(err, "unit", unitID.String())
			return zerr.With(err, "reason", readErr.Error())
		}

		s.logger.Warn("deferring broken source", "source", sourceID.String(), "error", readErr.Error())
	}

	return nil
}
