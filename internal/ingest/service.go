// Package ingest runs the ingestion flows end to end: full scrape, fill, incremental update
// and asset materialization.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"digicards/internal/assets"
	"digicards/internal/catalog"
	"digicards/internal/components/assert"
	"digicards/internal/components/telemetry"
	"digicards/internal/snapshot"
	"digicards/internal/source"
	"digicards/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("digicards.ingest")

const (
	report_service_update  = "service.update"
	report_service_renamed = "service.renamed-collection"
)

// ErrNoSnapshot is returned when an operation needs the snapshot file but none was written.
var ErrNoSnapshot = errors.New("no snapshot file, run a scrape first")

type Options struct {
	// NavigationUrl is the page listing every collection, relative urls are resolved by the
	// source client.
	NavigationUrl string
	SnapshotPath  string
}

type Service struct {
	source     source.Fetcher
	aggregator catalog.Aggregator
	store      store.Store
	pipeline   *assets.Pipeline
	opts       Options
	tel        telemetry.API
}

func NewService(
	src source.Fetcher,
	st store.Store,
	pipeline *assets.Pipeline,
	opts Options,
	tel telemetry.API,
) Service {
	assert.NotNil("src", src)
	assert.NotNil("pipeline", pipeline)
	assert.NotNil("tel", tel)
	assert.NotEmpty("SnapshotPath", opts.SnapshotPath)

	if opts.NavigationUrl == "" {
		opts.NavigationUrl = source.DefaultBaseUrl
	}
	return Service{
		source:     src,
		aggregator: catalog.NewAggregator(src, tel),
		store:      st,
		pipeline:   pipeline,
		opts:       opts,
		tel:        telemetry.NewScopedAPI("ingest", tel),
	}
}

// Run identifies one invocation of an operation in reports and logs.
type Run struct {
	Id       string
	Started  time.Time
	Duration time.Duration
}

func (s Service) begin(ctx context.Context, operation string) (context.Context, trace.Span, Run, telemetry.API) {
	run := Run{Id: uuid.NewString(), Started: time.Now()}
	ctx, span := tracer.Start(ctx, operation)
	span.SetAttributes(attribute.String("run_id", run.Id))
	tel := telemetry.NewScopedAPI(fmt.Sprintf("%s %s", operation, run.Id[:8]), s.tel)
	tel.ReportDebug("run started", "run_id", run.Id)
	return ctx, span, run, tel
}

func (r *Run) finish() {
	r.Duration = time.Since(r.Started)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Discover lists the collections currently on the site.
func (s Service) Discover(ctx context.Context) ([]catalog.Collection, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	collections, err := catalog.Discover(ctx, s.source, s.opts.NavigationUrl)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	return collections, nil
}

// CollectionStatus is a discovered collection with what the catalog knows of it.
type CollectionStatus struct {
	Collection catalog.Collection
	Known      bool
	Cards      int64
}

// Collections lists the discovered collections and marks the ones already stored.
func (s Service) Collections(ctx context.Context) ([]CollectionStatus, error) {
	discovered, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountByCollection(ctx)
	if err != nil {
		return nil, err
	}
	stored := map[catalog.CollectionKey]int64{}
	for _, c := range counts {
		stored[c.Collection] = c.Cards
	}

	out := make([]CollectionStatus, len(discovered))
	for i, c := range discovered {
		cards, known := stored[c.Key()]
		out[i] = CollectionStatus{Collection: c, Known: known, Cards: cards}
	}
	return out, nil
}

type ScrapeReport struct {
	Run
	Collections int
	Build       catalog.BuildReport
	Snapshot    catalog.Snapshot
}

// Scrape builds a snapshot of every collection on the site and writes it to the snapshot file.
func (s Service) Scrape(ctx context.Context) (ScrapeReport, error) {
	ctx, span, run, _ := s.begin(ctx, "Scrape")
	defer span.End()

	report, err := s.scrape(ctx, run)
	report.finish()
	if err != nil {
		failSpan(span, err)
	}
	return report, err
}

func (s Service) scrape(ctx context.Context, run Run) (ScrapeReport, error) {
	report := ScrapeReport{Run: run}

	collections, err := catalog.Discover(ctx, s.source, s.opts.NavigationUrl)
	if err != nil {
		return report, err
	}
	report.Collections = len(collections)

	return s.build(ctx, report, collections)
}

func (s Service) build(ctx context.Context, report ScrapeReport, collections []catalog.Collection) (ScrapeReport, error) {
	snap, build, err := s.aggregator.Build(ctx, collections)
	report.Build = build
	if err != nil {
		return report, err
	}
	report.Snapshot = snap

	err = snapshot.WriteFile(s.opts.SnapshotPath, snap)
	if err != nil {
		return report, fmt.Errorf("write snapshot: %w", err)
	}
	return report, nil
}

type FillReport struct {
	Run
	store.FillReport
}

// Fill loads the snapshot file into the catalog.
func (s Service) Fill(ctx context.Context) (FillReport, error) {
	ctx, span, run, _ := s.begin(ctx, "Fill")
	defer span.End()

	report := FillReport{Run: run}
	snap, err := s.readSnapshot()
	if err == nil {
		report.FillReport, err = s.store.Fill(ctx, snap)
	}
	report.finish()
	if err != nil {
		failSpan(span, err)
	}
	return report, err
}

func (s Service) readSnapshot() (catalog.Snapshot, error) {
	snap, err := snapshot.ReadFile(s.opts.SnapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, s.opts.SnapshotPath)
	}
	return snap, err
}

type UpdateReport struct {
	Run
	Known   int
	Fresh   []catalog.Collection
	Renames []catalog.Rename
	Build   catalog.BuildReport
	Fill    store.FillReport
	// Snapshot holds the records of the fresh collections only.
	Snapshot catalog.Snapshot
}

// UpToDate is true when the site had no collection the catalog does not already have.
func (r UpdateReport) UpToDate() bool {
	return len(r.Fresh) == 0
}

// Update ingests the collections that appeared on the site since the last fill. Any stale
// snapshot file is removed first, a new one is only written if there is something to ingest.
func (s Service) Update(ctx context.Context) (UpdateReport, error) {
	ctx, span, run, tel := s.begin(ctx, "Update")
	defer span.End()

	report, err := s.update(ctx, run, tel)
	report.finish()
	if err != nil {
		tel.ReportBroken(report_service_update, err)
		failSpan(span, err)
	}
	return report, err
}

func (s Service) update(ctx context.Context, run Run, tel telemetry.API) (UpdateReport, error) {
	report := UpdateReport{Run: run}

	err := os.Remove(s.opts.SnapshotPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return report, fmt.Errorf("remove stale snapshot: %w", err)
	}

	known, err := s.store.ListKnownCollections(ctx)
	if err != nil {
		return report, err
	}
	report.Known = len(known)

	discovered, err := catalog.Discover(ctx, s.source, s.opts.NavigationUrl)
	if err != nil {
		return report, err
	}

	report.Fresh = catalog.SelectNew(known, discovered)
	if report.UpToDate() {
		tel.ReportDebug("no new collections")
		return report, nil
	}

	report.Renames = catalog.SuggestRenames(known, report.Fresh)
	for _, r := range report.Renames {
		tel.ReportWarning(
			report_service_renamed,
			"collection looks renamed, it will be ingested as a new one",
			r.Known.Name,
			r.Fresh.Name,
			r.Similarity,
		)
	}

	built, err := s.build(ctx, ScrapeReport{Run: run}, report.Fresh)
	report.Build = built.Build
	report.Snapshot = built.Snapshot
	if err != nil {
		return report, err
	}

	report.Fill, err = s.store.Fill(ctx, built.Snapshot)
	if err != nil {
		return report, err
	}
	return report, nil
}

type ImagesReport struct {
	Run
	assets.Report
}

// Images materializes the asset of every card in the snapshot file.
func (s Service) Images(ctx context.Context) (ImagesReport, error) {
	ctx, span, run, _ := s.begin(ctx, "Images")
	defer span.End()

	report := ImagesReport{Run: run}
	snap, err := s.readSnapshot()
	if err != nil {
		report.finish()
		failSpan(span, err)
		return report, err
	}

	report.Report = s.pipeline.Run(ctx, snap)
	report.finish()
	return report, nil
}

// Progress returns the progress of the running (or last) asset run.
func (s Service) Progress() assets.Progress {
	return s.pipeline.Progress()
}

type RunAllReport struct {
	Run
	Scrape ScrapeReport
	Fill   store.FillReport
	Images assets.Report
}

// RunAll scrapes every collection, fills the catalog and materializes every asset.
func (s Service) RunAll(ctx context.Context) (RunAllReport, error) {
	ctx, span, run, _ := s.begin(ctx, "RunAll")
	defer span.End()

	report := RunAllReport{Run: run}
	fail := func(err error) (RunAllReport, error) {
		report.finish()
		failSpan(span, err)
		return report, err
	}

	var err error
	report.Scrape, err = s.scrape(ctx, run)
	if err != nil {
		return fail(err)
	}
	report.Fill, err = s.store.Fill(ctx, report.Scrape.Snapshot)
	if err != nil {
		return fail(err)
	}
	report.Images = s.pipeline.Run(ctx, report.Scrape.Snapshot)

	report.finish()
	return report, nil
}
