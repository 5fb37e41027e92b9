package store

import (
	"context"
	"testing"
	"time"

	"digicards/internal/catalog"
	"digicards/internal/components/telemetry"
	"digicards/internal/db"
	"digicards/internal/testutil"

	"github.com/stretchr/testify/require"
)

var (
	bt1 = catalog.CollectionKey{Abbreviation: "BT1", Name: "BOOSTER Release Special [BT1]"}
	bt2 = catalog.CollectionKey{Abbreviation: "BT2", Name: "BOOSTER Ultimate Power [BT2]"}
)

func record(number string, collection catalog.CollectionKey) catalog.CardRecord {
	return catalog.CardRecord{
		CardNumber:       number,
		Name:             "Agumon",
		CardType:         "Digimon",
		Rarity:           "C",
		ColorOne:         "Red",
		ColorTwo:         catalog.Present("Blue"),
		ImageUrl:         catalog.Present("https://world.digimoncard.com/images/cardlist/card/" + number + ".png"),
		Cost:             catalog.PresentNumber(3),
		Stage:            catalog.Present("Rookie"),
		Attribute:        catalog.Present("Vaccine"),
		TypeOne:          catalog.Present("Reptile"),
		EvolutionCostOne: catalog.PresentNumber(0),
		EvolutionEffect:  catalog.Present("[Your Turn] +1000 DP."),
		Collection:       collection,
		DP:               catalog.PresentNumber(2000),
		Level:            catalog.Present("Lv.3"),
	}
}

func option(number string, collection catalog.CollectionKey) catalog.CardRecord {
	return catalog.CardRecord{
		CardNumber:     number,
		Name:           "Gaia Force",
		CardType:       "Option",
		Rarity:         "R",
		ColorOne:       "Red",
		Cost:           catalog.PresentNumber(8),
		Effect:         catalog.Present("[Main] Delete 1 of your opponent's Digimon."),
		SecurityEffect: catalog.Present("[Security] Activate this card's [Main] effect."),
		Collection:     collection,
		IsAlternateArt: true,
	}
}

func setup(t testing.TB) (Store, *db.Queries, context.Context) {
	database := testutil.OpenDB(t, db.Schema)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)
	return NewStore(database, telemetry.NewRecorder()), db.New(database), ctx
}

func TestInsertCard(t *testing.T) {
	store, qry, ctx := setup(t)
	run := NewRunCache()

	id, err := store.InsertCard(ctx, run, record("BT1-010", bt1))
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.InsertCard(ctx, run, option("BT1-115_P1", bt1))
	if err != nil {
		t.Fatal(err)
	}

	card, err := qry.GetCard(ctx, "BT1-010")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, id, card.ID)
	require.Equal(t, int64(2000), card.Dp.Int64)
	require.True(t, card.ColorTwoID.Valid)
	require.False(t, card.ColorThreeID.Valid)
	require.False(t, card.TypeTwoID.Valid)
	require.Equal(t, "Lv.3", card.Level.String)
	require.False(t, card.IsAlternateArt)

	color, err := qry.GetDimensionValue(ctx, db.DIMENSION_COLOR, card.ColorTwoID.Int64)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Blue", color)

	alt, err := qry.GetCard(ctx, "BT1-115_P1")
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, alt.IsAlternateArt)
	require.False(t, alt.Dp.Valid)
	require.False(t, alt.StageID.Valid)
	require.False(t, alt.ImageUrl.Valid)
	require.Equal(t, card.CollectionID, alt.CollectionID)
	require.Equal(t, card.ColorOneID, alt.ColorOneID)

	colors, err := qry.CountDimensionValues(ctx, db.DIMENSION_COLOR)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(2), colors)
}

func TestInsertCardDuplicate(t *testing.T) {
	store, qry, ctx := setup(t)
	run := NewRunCache()

	_, err := store.InsertCard(ctx, run, record("BT1-010", bt1))
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.InsertCard(ctx, run, record("BT1-010", bt2))
	require.ErrorIs(t, err, ErrDuplicateKey)

	count, err := qry.CountCards(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(1), count)
}

func TestLookupOrCreate(t *testing.T) {
	store, qry, ctx := setup(t)

	first, err := store.LookupOrCreate(ctx, NewRunCache(), db.DIMENSION_STAGE, "Rookie")
	if err != nil {
		t.Fatal(err)
	}
	// a fresh cache has to find the stored value instead of inserting it again
	second, err := store.LookupOrCreate(ctx, NewRunCache(), db.DIMENSION_STAGE, "Rookie")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, first, second)

	other, err := store.LookupOrCreate(ctx, NewRunCache(), db.DIMENSION_TYPE, "Rookie")
	if err != nil {
		t.Fatal(err)
	}
	require.NotZero(t, other)

	count, err := qry.CountDimensionValues(ctx, db.DIMENSION_STAGE)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(1), count)

	a, err := store.LookupOrCreateCollection(ctx, NewRunCache(), bt1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.LookupOrCreateCollection(ctx, NewRunCache(), bt1)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, a, b)
}

func TestFill(t *testing.T) {
	store, _, ctx := setup(t)

	report, err := store.Fill(ctx, catalog.Snapshot{
		record("BT1-001", bt1),
		record("BT1-002", bt1),
		option("BT1-115_P1", bt1),
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, FillReport{Inserted: 3}, report)

	report, err = store.Fill(ctx, catalog.Snapshot{
		record("BT1-002", bt1),
		record("BT2-001", bt2),
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, FillReport{Inserted: 1, Duplicates: 1}, report)

	known, err := store.ListKnownCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, catalog.NewCollectionSet(bt1, bt2), known)

	counts, err := store.CountByCollection(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []CollectionCount{
		{Collection: bt1, Cards: 3},
		{Collection: bt2, Cards: 1},
	}, counts)
}

func TestFillRollsBack(t *testing.T) {
	database := testutil.OpenDB(t, db.Schema)
	_, err := database.Exec(`
		create trigger reject_card before insert on cards
		when new.card_number = 'BT1-003'
		begin
			select raise(abort, 'rejected');
		end;
	`)
	if err != nil {
		t.Fatal(err)
	}

	tel := telemetry.NewRecorder()
	store := NewStore(database, tel)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = store.Fill(ctx, catalog.Snapshot{
		record("BT1-001", bt1),
		record("BT1-002", bt1),
		record("BT1-003", bt1),
	})
	require.ErrorContains(t, err, "rejected")
	require.Len(t, tel.Reports(telemetry.KindBroken, "store.fill"), 1)

	count, err := db.New(database).CountCards(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Zero(t, count)

	known, err := store.ListKnownCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, known)
}
