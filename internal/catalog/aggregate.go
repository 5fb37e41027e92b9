package catalog

import (
	"context"
	"errors"
	"fmt"

	"digicards/internal/components/assert"
	"digicards/internal/components/telemetry"
	"digicards/internal/markup"
	"digicards/internal/source"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("digicards.catalog")

const (
	report_aggregator_build_collection = "aggregator.build-collection"
	report_aggregator_normalize        = "aggregator.normalize"
	report_aggregator_cards_written    = "aggregator.cards-written"
)

// CollectionReport is the outcome of aggregating one collection.
type CollectionReport struct {
	Collection Collection
	Written    int
	Duplicates int
	Failed     int
	// Empty is set when the collection page had no card list.
	Empty bool
	// Err is set when the collection page could not be used at all.
	Err error
}

// BuildReport sums up a snapshot build.
type BuildReport struct {
	Collections       []CollectionReport
	Written           int
	Duplicates        int
	Failed            int
	FailedCollections int
	EmptyCollections  int
}

func (r *BuildReport) add(c CollectionReport) {
	r.Collections = append(r.Collections, c)
	r.Written += c.Written
	r.Duplicates += c.Duplicates
	r.Failed += c.Failed
	if c.Err != nil {
		r.FailedCollections++
	}
	if c.Empty {
		r.EmptyCollections++
	}
}

// Aggregator builds snapshots by fetching, parsing and normalizing collection pages in order.
type Aggregator struct {
	source source.Fetcher
	tel    telemetry.API
}

func NewAggregator(src source.Fetcher, tel telemetry.API) Aggregator {
	assert.NotNil("src", src)
	assert.NotNil("tel", tel)
	return Aggregator{
		source: src,
		tel:    telemetry.NewScopedAPI("catalog", tel),
	}
}

// dedup keeps the first record seen for every card number.
type dedup struct {
	seen map[string]struct{}
}

func newDedup() dedup {
	return dedup{seen: map[string]struct{}{}}
}

func (d dedup) accept(cardNumber string) bool {
	if _, ok := d.seen[cardNumber]; ok {
		return false
	}
	d.seen[cardNumber] = struct{}{}
	return true
}

// Build aggregates every collection into a single snapshot. Failures of a single collection
// or card are reported and counted, the only error returned is the context's.
func (a Aggregator) Build(ctx context.Context, collections []Collection) (Snapshot, BuildReport, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.Build")
	defer span.End()

	var snapshot Snapshot
	var report BuildReport
	seen := newDedup()

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return snapshot, report, err
		}

		var collectionReport CollectionReport
		snapshot, collectionReport = a.buildCollection(ctx, collection, seen, snapshot)
		report.add(collectionReport)

		a.tel.ReportCount(report_aggregator_cards_written, int64(report.Written))
	}

	span.SetAttributes(
		attribute.Int("written", report.Written),
		attribute.Int("duplicates", report.Duplicates),
		attribute.Int("failed", report.Failed),
	)
	return snapshot, report, nil
}

func (a Aggregator) buildCollection(
	ctx context.Context,
	collection Collection,
	seen dedup,
	out Snapshot,
) (Snapshot, CollectionReport) {
	ctx, span := tracer.Start(ctx, "Aggregator.buildCollection")
	defer span.End()
	span.SetAttributes(
		attribute.String("abbreviation", collection.Abbreviation),
		attribute.String("url", collection.Url),
	)

	report := CollectionReport{Collection: collection}

	fail := func(err error) (Snapshot, CollectionReport) {
		a.tel.ReportBroken(
			report_aggregator_build_collection,
			err,
			collection.Abbreviation,
			collection.Url,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection failed")
		report.Err = err
		return out, report
	}

	page, err := a.source.Fetch(ctx, collection.Url)
	if err != nil {
		return fail(err)
	}
	if !page.OK() {
		return fail(&source.TransportError{Url: collection.Url, Status: page.Status})
	}

	blocks, err := markup.ExtractCardBlocks(page.Url, page.Body)
	if errors.Is(err, markup.ErrNoCardList) {
		a.tel.ReportWarning(
			report_aggregator_build_collection,
			err,
			collection.Abbreviation,
			collection.Url,
		)
		report.Empty = true
		return out, report
	}
	if err != nil {
		return fail(fmt.Errorf("extract cards: %w", err))
	}

	for i, block := range blocks {
		record, err := Normalize(block, collection)
		if err != nil {
			a.tel.ReportWarning(
				report_aggregator_normalize,
				err,
				collection.Abbreviation,
				i,
				blockLabel(block),
			)
			report.Failed++
			continue
		}
		if !seen.accept(record.CardNumber) {
			a.tel.ReportDebug("duplicate card dropped", record.CardNumber, collection.Abbreviation)
			report.Duplicates++
			continue
		}

		out = append(out, record)
		report.Written++
		a.tel.ReportDebug("card written", record.CardNumber)
	}

	span.SetAttributes(attribute.Int("written", report.Written))
	return out, report
}

// blockLabel identifies a block in reports as well as its (possibly broken) markup allows.
func blockLabel(block markup.RawCardBlock) string {
	if len(block.Head) > 0 && block.Head[0] != "" {
		return block.Head[0]
	}
	if block.ImageUrl != "" {
		return block.ImageUrl
	}
	return "<unknown>"
}
