// Package assets materializes card images as WebP files, one file per card number.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"digicards/internal/catalog"
	"digicards/internal/components/assert"
	"digicards/internal/components/telemetry"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("digicards.assets")
var meter = otel.Meter("digicards.assets")
var processedCounter, _ = meter.Int64Counter("assets.processed")

const (
	report_pipeline_process   = "pipeline.process"
	report_pipeline_completed = "pipeline.completed"
)

const DefaultWorkers = 10

// Extension is the extension of every materialized asset.
const Extension = ".webp"

// Fetcher is the part of the source client the pipeline needs.
type Fetcher interface {
	FetchBytes(ctx context.Context, link string) ([]byte, error)
}

type Options struct {
	// Dir is where assets are written, it is created if missing.
	Dir     string
	Workers int
}

// Progress is a point in time view of a run.
type Progress struct {
	// Total is the number of records given to the run.
	Total     int64
	Submitted int64
	Completed int64
	Succeeded int64
	Failed    int64
	Skipped   int64
	// NoImage counts records without an image url.
	NoImage int64
}

// Failure is a card whose asset could not be produced.
type Failure struct {
	CardNumber string
	Err        error
}

// Report is the outcome of a run.
type Report struct {
	Progress
	Failures []Failure
}

type Pipeline struct {
	fetcher Fetcher
	dir     string
	workers int
	tel     telemetry.API

	mutex    sync.Mutex
	progress Progress
	failures []Failure
}

func NewPipeline(fetcher Fetcher, opts Options, tel telemetry.API) (*Pipeline, error) {
	assert.NotNil("fetcher", fetcher)
	assert.NotNil("tel", tel)
	assert.NotEmpty("Dir", opts.Dir)

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	err := os.MkdirAll(opts.Dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}

	return &Pipeline{
		fetcher: fetcher,
		dir:     opts.Dir,
		workers: workers,
		tel:     telemetry.NewScopedAPI("assets", tel),
	}, nil
}

// FileName returns the file name of a card's asset. Characters that would escape the asset
// directory, and '%' itself, are written as %XX so two card numbers never share a file.
func FileName(cardNumber string) string {
	switch cardNumber {
	case "":
		return "%" + Extension
	case ".", "..":
		return strings.Repeat("%2E", len(cardNumber)) + Extension
	}

	var name strings.Builder
	for i := 0; i < len(cardNumber); i++ {
		c := cardNumber[i]
		switch c {
		case '/', '\\', ':', '%', 0:
			fmt.Fprintf(&name, "%%%02X", c)
		default:
			name.WriteByte(c)
		}
	}
	return name.String() + Extension
}

// Path returns where a card's asset lives.
func (p *Pipeline) Path(cardNumber string) string {
	return filepath.Join(p.dir, FileName(cardNumber))
}

// Progress returns the counters of the current (or last) run.
func (p *Pipeline) Progress() Progress {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.progress
}

func (p *Pipeline) update(fn func(progress *Progress)) Progress {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	fn(&p.progress)
	return p.progress
}

func (p *Pipeline) exists(cardNumber string) bool {
	_, err := os.Stat(p.Path(cardNumber))
	return err == nil
}

// Run materializes the asset of every record that does not have one yet. Cancelling `ctx`
// stops further submission, tasks already submitted still complete. Run must not be called
// concurrently on the same Pipeline.
func (p *Pipeline) Run(ctx context.Context, records []catalog.CardRecord) Report {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	p.mutex.Lock()
	p.progress = Progress{Total: int64(len(records))}
	p.failures = nil
	p.mutex.Unlock()

	pool := NewWorkerPool(ctx, p.workers, p.tel)
	pool.Start()

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		if !record.ImageUrl.Valid {
			p.update(func(progress *Progress) { progress.NoImage++ })
			continue
		}
		if p.exists(record.CardNumber) {
			p.update(func(progress *Progress) { progress.Skipped++ })
			processedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "skipped")))
			continue
		}

		cardNumber := record.CardNumber
		imageUrl := record.ImageUrl.V
		ok := pool.Submit(ctx, func(ctx context.Context) error {
			err := p.process(ctx, cardNumber, imageUrl)
			p.complete(ctx, cardNumber, err)
			return err
		})
		if !ok {
			break
		}
		p.update(func(progress *Progress) { progress.Submitted++ })
	}

	pool.Wait()

	p.mutex.Lock()
	report := Report{
		Progress: p.progress,
		Failures: append([]Failure(nil), p.failures...),
	}
	p.mutex.Unlock()

	span.SetAttributes(
		attribute.Int64("submitted", report.Submitted),
		attribute.Int64("failed", report.Failed),
		attribute.Int64("skipped", report.Skipped),
	)
	return report
}

func (p *Pipeline) complete(ctx context.Context, cardNumber string, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		p.tel.ReportBroken(report_pipeline_process, err, cardNumber)
	}

	progress := p.update(func(progress *Progress) {
		progress.Completed++
		if err != nil {
			progress.Failed++
			p.failures = append(p.failures, Failure{CardNumber: cardNumber, Err: err})
			return
		}
		progress.Succeeded++
	})

	processedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	p.tel.ReportCount(report_pipeline_completed, progress.Completed)
}

func sourceExtension(imageUrl string) string {
	p := imageUrl
	if parsed, err := url.Parse(imageUrl); err == nil {
		p = parsed.Path
	}
	ext := path.Ext(p)
	if ext == "" {
		return ".img"
	}
	return ext
}

// process produces the asset of a single card. The final file only ever appears complete.
func (p *Pipeline) process(ctx context.Context, cardNumber, imageUrl string) error {
	ctx, span := tracer.Start(ctx, "Pipeline.process")
	defer span.End()
	span.SetAttributes(attribute.String("card_number", cardNumber))

	err := p.transcode(ctx, cardNumber, imageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *Pipeline) transcode(ctx context.Context, cardNumber, imageUrl string) error {
	body, err := p.fetcher.FetchBytes(ctx, imageUrl)
	if err != nil {
		return err
	}

	final := p.Path(cardNumber)
	name := strings.TrimSuffix(filepath.Base(final), Extension)

	part := filepath.Join(p.dir, name+sourceExtension(imageUrl)+".part")
	err = os.WriteFile(part, body, 0644)
	if err != nil {
		return fmt.Errorf("write source image: %w", err)
	}
	defer os.Remove(part)

	img, err := imaging.Open(part)
	if err != nil {
		return fmt.Errorf("decode %s: %w", imageUrl, err)
	}
	normalized := imaging.Clone(img)

	tmp, err := os.CreateTemp(p.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = nativewebp.Encode(tmp, normalized, nil)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("encode webp: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), final)
}
