package catalog

import (
	"github.com/antzucaro/matchr"
)

// SelectNew returns the discovered collections that are not part of `known`, keeping the
// discovered order. An empty result means there is nothing to ingest.
func SelectNew(known CollectionSet, discovered []Collection) []Collection {
	var fresh []Collection
	for _, c := range discovered {
		if known.Has(c.Key()) {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}

// RenameThreshold is the minimum Jaro-Winkler similarity for a rename suggestion.
const RenameThreshold = 0.9

// Rename pairs a new collection with the known collection it most likely replaces.
type Rename struct {
	Known      CollectionKey
	Fresh      Collection
	Similarity float64
}

// SuggestRenames finds new collections whose name is close to a known one. The site sometimes
// retitles a set, which makes it look new to SelectNew.
func SuggestRenames(known CollectionSet, fresh []Collection) []Rename {
	var renames []Rename
	for _, c := range fresh {
		best := Rename{Fresh: c}
		for k := range known {
			similarity := matchr.JaroWinkler(k.Name, c.Name, false)
			if similarity > best.Similarity ||
				// keeps the result stable when two known names score the same
				(similarity == best.Similarity && lessKey(k, best.Known)) {
				best.Known = k
				best.Similarity = similarity
			}
		}
		if best.Similarity >= RenameThreshold {
			renames = append(renames, best)
		}
	}
	return renames
}

func lessKey(a, b CollectionKey) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Abbreviation < b.Abbreviation
}
