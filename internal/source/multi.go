package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tasnim.dev/cloudspend/internal/spend"
)

// Multi fetches several sources concurrently and concatenates their rows in
// source order. Any failure fails the whole load.
type Multi struct {
	sources []*Source
}

func NewMulti(sources ...*Source) *Multi {
	return &Multi{sources: sources}
}

// Names lists the source names in order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name
	}
	return names
}

func (m *Multi) Fetch(ctx context.Context) ([]spend.Record, error) {
	if len(m.sources) == 1 {
		return m.sources[0].Fetch(ctx)
	}

	parts := make([][]spend.Record, len(m.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range m.sources {
		g.Go(func() error {
			records, err := s.Fetch(gctx)
			if err != nil {
				return err
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []spend.Record
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}
