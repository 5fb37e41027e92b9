package catalog

import (
	"context"
	"errors"
	"fmt"

	"digicards/internal/markup"
	"digicards/internal/source"
)

// ErrNoCollections is returned when the navigation page lists no usable collection.
var ErrNoCollections = errors.New("no collections found")

// Discover enumerates the collections listed on the navigation page at `link`, in page order.
// Any error returned here leaves nothing to ingest and should end the run.
func Discover(ctx context.Context, src source.Fetcher, link string) ([]Collection, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	page, err := src.Fetch(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("discover collections: %w", err)
	}
	if !page.OK() {
		return nil, fmt.Errorf(
			"discover collections: %w",
			&source.TransportError{Url: link, Status: page.Status},
		)
	}

	links, err := markup.ExtractCollectionList(page.Url, page.Body)
	if errors.Is(err, markup.ErrNoCollectionList) {
		return nil, fmt.Errorf("discover collections: %w: %w", ErrNoCollections, err)
	}
	if err != nil {
		return nil, fmt.Errorf("discover collections: %w", err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("discover collections: %w", ErrNoCollections)
	}

	collections := make([]Collection, len(links))
	for i, l := range links {
		collections[i] = Collection{
			Url:          l.Url,
			Name:         l.Name,
			Abbreviation: l.Abbreviation,
		}
	}
	return collections, nil
}
