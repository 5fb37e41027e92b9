package db

import (
	"context"
	"database/sql"
)

const createCollection = `-- name: CreateCollection :exec
insert into collections(abbreviation, name) values (?, ?)
on conflict (abbreviation, name) do nothing
`

type CreateCollectionParams struct {
	Abbreviation string
	Name         string
}

func (q *Queries) CreateCollection(ctx context.Context, arg CreateCollectionParams) error {
	_, err := q.db.ExecContext(ctx, createCollection, arg.Abbreviation, arg.Name)
	return err
}

const getCollectionId = `-- name: GetCollectionId :one
select id from collections
where abbreviation = ? and name = ?
`

type GetCollectionIdParams struct {
	Abbreviation string
	Name         string
}

func (q *Queries) GetCollectionId(ctx context.Context, arg GetCollectionIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getCollectionId, arg.Abbreviation, arg.Name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listCollections = `-- name: ListCollections :many
select id, abbreviation, name from collections
order by id
`

func (q *Queries) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := q.db.QueryContext(ctx, listCollections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Collection
	for rows.Next() {
		var i Collection
		if err := rows.Scan(&i.ID, &i.Abbreviation, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCardsByCollection = `-- name: CountCardsByCollection :many
select collections.abbreviation, collections.name, count(cards.id) as cards
from collections
left join cards on cards.collection_id = collections.id
group by collections.id
order by collections.id
`

type CountCardsByCollectionRow struct {
	Abbreviation string
	Name         string
	Cards        int64
}

func (q *Queries) CountCardsByCollection(ctx context.Context) ([]CountCardsByCollectionRow, error) {
	rows, err := q.db.QueryContext(ctx, countCardsByCollection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountCardsByCollectionRow
	for rows.Next() {
		var i CountCardsByCollectionRow
		if err := rows.Scan(&i.Abbreviation, &i.Name, &i.Cards); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCard = `-- name: CreateCard :one
insert into cards(
    card_number, name, dp, card_type_id, rarity_id,
    color_one_id, color_two_id, color_three_id, image_url, cost,
    stage_id, attribute_id, type_one_id, type_two_id,
    evolution_cost_one, evolution_cost_two, effect, evolution_effect, security_effect,
    collection_id, is_alternate_art, level
) values (
    ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?,
    ?, ?, ?, ?,
    ?, ?, ?, ?, ?,
    ?, ?, ?
)
on conflict (card_number) do nothing
returning id
`

type CreateCardParams struct {
	CardNumber       string
	Name             string
	Dp               sql.NullInt64
	CardTypeID       int64
	RarityID         int64
	ColorOneID       int64
	ColorTwoID       sql.NullInt64
	ColorThreeID     sql.NullInt64
	ImageUrl         sql.NullString
	Cost             sql.NullInt64
	StageID          sql.NullInt64
	AttributeID      sql.NullInt64
	TypeOneID        sql.NullInt64
	TypeTwoID        sql.NullInt64
	EvolutionCostOne sql.NullInt64
	EvolutionCostTwo sql.NullInt64
	Effect           sql.NullString
	EvolutionEffect  sql.NullString
	SecurityEffect   sql.NullString
	CollectionID     int64
	IsAlternateArt   bool
	Level            sql.NullString
}

// CreateCard returns sql.ErrNoRows when the card number is already taken.
func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createCard,
		arg.CardNumber,
		arg.Name,
		arg.Dp,
		arg.CardTypeID,
		arg.RarityID,
		arg.ColorOneID,
		arg.ColorTwoID,
		arg.ColorThreeID,
		arg.ImageUrl,
		arg.Cost,
		arg.StageID,
		arg.AttributeID,
		arg.TypeOneID,
		arg.TypeTwoID,
		arg.EvolutionCostOne,
		arg.EvolutionCostTwo,
		arg.Effect,
		arg.EvolutionEffect,
		arg.SecurityEffect,
		arg.CollectionID,
		arg.IsAlternateArt,
		arg.Level,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getCard = `-- name: GetCard :one
select id, card_number, name, dp, card_type_id, rarity_id, color_one_id, color_two_id, color_three_id, image_url, cost, stage_id, attribute_id, type_one_id, type_two_id, evolution_cost_one, evolution_cost_two, effect, evolution_effect, security_effect, collection_id, is_alternate_art, level from cards
where card_number = ?
`

func (q *Queries) GetCard(ctx context.Context, cardNumber string) (Card, error) {
	row := q.db.QueryRowContext(ctx, getCard, cardNumber)
	var i Card
	err := row.Scan(
		&i.ID,
		&i.CardNumber,
		&i.Name,
		&i.Dp,
		&i.CardTypeID,
		&i.RarityID,
		&i.ColorOneID,
		&i.ColorTwoID,
		&i.ColorThreeID,
		&i.ImageUrl,
		&i.Cost,
		&i.StageID,
		&i.AttributeID,
		&i.TypeOneID,
		&i.TypeTwoID,
		&i.EvolutionCostOne,
		&i.EvolutionCostTwo,
		&i.Effect,
		&i.EvolutionEffect,
		&i.SecurityEffect,
		&i.CollectionID,
		&i.IsAlternateArt,
		&i.Level,
	)
	return i, err
}

const countCards = `-- name: CountCards :one
select count(*) from cards
`

func (q *Queries) CountCards(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCards)
	var count int64
	err := row.Scan(&count)
	return count, err
}
