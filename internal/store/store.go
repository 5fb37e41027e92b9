// Package store persists card records into the relational catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"digicards/internal/catalog"
	"digicards/internal/components/assert"
	"digicards/internal/components/telemetry"
	"digicards/internal/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("digicards.store")

// ErrDuplicateKey is returned when a card number is already stored.
var ErrDuplicateKey = errors.New("duplicate card number")

const (
	report_store_insert_card = "store.insert-card"
	report_store_fill        = "store.fill"
)

// RunCache remembers the ids of dimension values and collections resolved during one run.
// A RunCache must not outlive the transaction its ids were resolved in.
type RunCache struct {
	dimensions  map[db.Dimension]map[string]int64
	collections map[catalog.CollectionKey]int64
}

func NewRunCache() *RunCache {
	dimensions := make(map[db.Dimension]map[string]int64, len(db.Dimensions))
	for _, d := range db.Dimensions {
		dimensions[d] = map[string]int64{}
	}
	return &RunCache{
		dimensions:  dimensions,
		collections: map[catalog.CollectionKey]int64{},
	}
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

func NewStore(database *sql.DB, tel telemetry.API) Store {
	assert.NotNil("database", database)
	assert.NotNil("tel", tel)
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

// ListKnownCollections returns every collection already present in the catalog.
func (s Store) ListKnownCollections(ctx context.Context) (catalog.CollectionSet, error) {
	rows, err := s.qry.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	known := catalog.NewCollectionSet()
	for _, r := range rows {
		known.Add(catalog.CollectionKey{Abbreviation: r.Abbreviation, Name: r.Name})
	}
	return known, nil
}

// CollectionCount is the number of stored cards of a collection.
type CollectionCount struct {
	Collection catalog.CollectionKey
	Cards      int64
}

func (s Store) CountByCollection(ctx context.Context) ([]CollectionCount, error) {
	rows, err := s.qry.CountCardsByCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	out := make([]CollectionCount, len(rows))
	for i, r := range rows {
		out[i] = CollectionCount{
			Collection: catalog.CollectionKey{Abbreviation: r.Abbreviation, Name: r.Name},
			Cards:      r.Cards,
		}
	}
	return out, nil
}

// LookupOrCreate returns the id of `name` in the given dimension table, inserting it if needed.
func (s Store) LookupOrCreate(ctx context.Context, run *RunCache, dimension db.Dimension, name string) (int64, error) {
	return lookupOrCreate(ctx, s.qry, run, dimension, name)
}

func lookupOrCreate(ctx context.Context, qry *db.Queries, run *RunCache, dimension db.Dimension, name string) (int64, error) {
	cache := run.dimensions[dimension]
	if id, ok := cache[name]; ok {
		return id, nil
	}

	err := qry.CreateDimensionValue(ctx, dimension, name)
	if err != nil {
		return 0, fmt.Errorf("create %s %q: %w", dimension, name, err)
	}
	id, err := qry.GetDimensionValueId(ctx, dimension, name)
	if err != nil {
		return 0, fmt.Errorf("get %s %q: %w", dimension, name, err)
	}

	cache[name] = id
	return id, nil
}

func lookupOrCreateOptional(ctx context.Context, qry *db.Queries, run *RunCache, dimension db.Dimension, value catalog.Text) (sql.NullInt64, error) {
	if !value.Valid {
		return sql.NullInt64{}, nil
	}
	id, err := lookupOrCreate(ctx, qry, run, dimension, value.V)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// LookupOrCreateCollection returns the id of a collection, inserting it if needed.
func (s Store) LookupOrCreateCollection(ctx context.Context, run *RunCache, key catalog.CollectionKey) (int64, error) {
	return lookupOrCreateCollection(ctx, s.qry, run, key)
}

func lookupOrCreateCollection(ctx context.Context, qry *db.Queries, run *RunCache, key catalog.CollectionKey) (int64, error) {
	if id, ok := run.collections[key]; ok {
		return id, nil
	}

	err := qry.CreateCollection(ctx, db.CreateCollectionParams{
		Abbreviation: key.Abbreviation,
		Name:         key.Name,
	})
	if err != nil {
		return 0, fmt.Errorf("create collection %s: %w", key.Abbreviation, err)
	}
	id, err := qry.GetCollectionId(ctx, db.GetCollectionIdParams{
		Abbreviation: key.Abbreviation,
		Name:         key.Name,
	})
	if err != nil {
		return 0, fmt.Errorf("get collection %s: %w", key.Abbreviation, err)
	}

	run.collections[key] = id
	return id, nil
}

func nullString(t catalog.Text) sql.NullString {
	return sql.NullString{String: t.V, Valid: t.Valid}
}

func nullInt(n catalog.Number) sql.NullInt64 {
	return sql.NullInt64{Int64: n.V, Valid: n.Valid}
}

// InsertCard stores a single record, ErrDuplicateKey is returned if its card number is taken.
func (s Store) InsertCard(ctx context.Context, run *RunCache, record catalog.CardRecord) (int64, error) {
	return insertCard(ctx, s.qry, run, record)
}

func insertCard(ctx context.Context, qry *db.Queries, run *RunCache, record catalog.CardRecord) (int64, error) {
	params := db.CreateCardParams{
		CardNumber:       record.CardNumber,
		Name:             record.Name,
		Dp:               nullInt(record.DP),
		ImageUrl:         nullString(record.ImageUrl),
		Cost:             nullInt(record.Cost),
		EvolutionCostOne: nullInt(record.EvolutionCostOne),
		EvolutionCostTwo: nullInt(record.EvolutionCostTwo),
		Effect:           nullString(record.Effect),
		EvolutionEffect:  nullString(record.EvolutionEffect),
		SecurityEffect:   nullString(record.SecurityEffect),
		IsAlternateArt:   record.IsAlternateArt,
		Level:            nullString(record.Level),
	}

	var err error
	if params.CardTypeID, err = lookupOrCreate(ctx, qry, run, db.DIMENSION_CARD_TYPE, record.CardType); err != nil {
		return 0, err
	}
	if params.RarityID, err = lookupOrCreate(ctx, qry, run, db.DIMENSION_RARITY, record.Rarity); err != nil {
		return 0, err
	}
	if params.ColorOneID, err = lookupOrCreate(ctx, qry, run, db.DIMENSION_COLOR, record.ColorOne); err != nil {
		return 0, err
	}
	if params.ColorTwoID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_COLOR, record.ColorTwo); err != nil {
		return 0, err
	}
	if params.ColorThreeID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_COLOR, record.ColorThree); err != nil {
		return 0, err
	}
	if params.StageID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_STAGE, record.Stage); err != nil {
		return 0, err
	}
	if params.AttributeID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_ATTRIBUTE, record.Attribute); err != nil {
		return 0, err
	}
	if params.TypeOneID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_TYPE, record.TypeOne); err != nil {
		return 0, err
	}
	if params.TypeTwoID, err = lookupOrCreateOptional(ctx, qry, run, db.DIMENSION_TYPE, record.TypeTwo); err != nil {
		return 0, err
	}
	if params.CollectionID, err = lookupOrCreateCollection(ctx, qry, run, record.Collection); err != nil {
		return 0, err
	}

	id, err := qry.CreateCard(ctx, params)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateKey, record.CardNumber)
	}
	if err != nil {
		return 0, fmt.Errorf("insert card %s: %w", record.CardNumber, err)
	}
	return id, nil
}

// FillReport is the outcome of Fill.
type FillReport struct {
	Inserted   int
	Duplicates int
}

// Fill inserts every record of a snapshot in a single transaction. Records whose card number
// is already stored are skipped, any other failure rolls the whole fill back.
func (s Store) Fill(ctx context.Context, snapshot catalog.Snapshot) (FillReport, error) {
	ctx, span := tracer.Start(ctx, "Store.Fill")
	defer span.End()

	fail := func(err error) (FillReport, error) {
		s.tel.ReportBroken(report_store_fill, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FillReport{}, err
	}

	tx, err := s.makeTx(ctx)
	if err != nil {
		return fail(err)
	}
	defer tx.Discard()

	var report FillReport
	run := NewRunCache()
	for _, record := range snapshot {
		_, err := insertCard(ctx, tx.Queries, run, record)
		if errors.Is(err, ErrDuplicateKey) {
			s.tel.ReportDebug("duplicate card skipped", record.CardNumber)
			report.Duplicates++
			continue
		}
		if err != nil {
			s.tel.ReportWarning(report_store_insert_card, err, record.CardNumber)
			return fail(err)
		}
		report.Inserted++
	}

	err = tx.Commit()
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(
		attribute.Int("inserted", report.Inserted),
		attribute.Int("duplicates", report.Duplicates),
	)
	return report, nil
}
