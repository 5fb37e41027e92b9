package db

import (
	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Dimension is a lookup table holding the distinct values of one card attribute.
type Dimension int

const (
	DIMENSION_CARD_TYPE Dimension = iota
	DIMENSION_RARITY
	DIMENSION_COLOR
	DIMENSION_STAGE
	DIMENSION_ATTRIBUTE
	DIMENSION_TYPE
)

var dimensionTables = [...]string{
	DIMENSION_CARD_TYPE: "card_types",
	DIMENSION_RARITY:    "rarities",
	DIMENSION_COLOR:     "colors",
	DIMENSION_STAGE:     "stages",
	DIMENSION_ATTRIBUTE: "attributes",
	DIMENSION_TYPE:      "types",
}

// Dimensions lists every dimension in schema order.
var Dimensions = []Dimension{
	DIMENSION_CARD_TYPE,
	DIMENSION_RARITY,
	DIMENSION_COLOR,
	DIMENSION_STAGE,
	DIMENSION_ATTRIBUTE,
	DIMENSION_TYPE,
}

func (d Dimension) Table() string {
	return dimensionTables[d]
}

func (d Dimension) String() string {
	return dimensionTables[d]
}
