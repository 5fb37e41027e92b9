package db

import (
	"database/sql"
)

type Card struct {
	ID               int64
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

type Collection struct {
	ID           int64
	Abbreviation string
	Name         string
}
