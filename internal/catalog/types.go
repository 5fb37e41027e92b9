package catalog

import "database/sql"

// Text is a text field that may be intentionally absent.
type Text = sql.Null[string]

// Number is an integer field that may be intentionally absent.
type Number = sql.Null[int64]

func Present(s string) Text {
	return Text{V: s, Valid: true}
}

func PresentNumber(n int64) Number {
	return Number{V: n, Valid: true}
}

var Absent = Text{}
var AbsentNumber = Number{}

// CollectionKey is the identity of a collection.
type CollectionKey struct {
	Abbreviation string
	Name         string
}

// Collection is one released card set.
type Collection struct {
	Url          string
	Name         string
	Abbreviation string
}

func (c Collection) Key() CollectionKey {
	return CollectionKey{Abbreviation: c.Abbreviation, Name: c.Name}
}

// CollectionSet is a set of collection identities, usually the ones already persisted.
type CollectionSet map[CollectionKey]struct{}

func NewCollectionSet(keys ...CollectionKey) CollectionSet {
	set := make(CollectionSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (s CollectionSet) Add(key CollectionKey) {
	s[key] = struct{}{}
}

func (s CollectionSet) Has(key CollectionKey) bool {
	_, ok := s[key]
	return ok
}

// CardRecord is the normalized representation of one physical card printing.
type CardRecord struct {
	CardNumber string
	Name       string
	CardType   string
	Rarity     string

	ColorOne   string
	ColorTwo   Text
	ColorThree Text

	ImageUrl Text

	Cost      Number
	Stage     Text
	Attribute Text
	TypeOne   Text
	TypeTwo   Text

	EvolutionCostOne Number
	EvolutionCostTwo Number

	Effect          Text
	EvolutionEffect Text
	SecurityEffect  Text

	Collection CollectionKey

	DP             Number
	IsAlternateArt bool
	Level          Text
}

// Snapshot is the ordered output of one ingestion run.
type Snapshot []CardRecord
