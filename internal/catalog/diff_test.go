package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSelectNew(t *testing.T) {
	bt1 := collectionAt("BT1", "BOOSTER Release Special [BT1]")
	bt2 := collectionAt("BT2", "BOOSTER Ultimate Power [BT2]")
	bt3 := collectionAt("BT3", "BOOSTER Union Impact [BT3]")
	promo := collectionAt("P", "Promotion Card")

	testCases := []struct {
		name       string
		known      CollectionSet
		discovered []Collection
		expect     []Collection
	}{
		{
			name:       "nothing known",
			known:      NewCollectionSet(),
			discovered: []Collection{bt1, bt2, promo},
			expect:     []Collection{bt1, bt2, promo},
		},
		{
			name:       "keeps discovered order",
			known:      NewCollectionSet(bt2.Key()),
			discovered: []Collection{bt3, bt2, bt1},
			expect:     []Collection{bt3, bt1},
		},
		{
			name:       "everything known",
			known:      NewCollectionSet(bt1.Key(), bt2.Key()),
			discovered: []Collection{bt1, bt2},
			expect:     nil,
		},
		{
			name: "identity is abbreviation and name",
			known: NewCollectionSet(CollectionKey{
				Abbreviation: "BT1",
				Name:         "BOOSTER New Evolution [BT1]",
			}),
			discovered: []Collection{bt1},
			expect:     []Collection{bt1},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.expect, SelectNew(test.known, test.discovered)); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestSuggestRenames(t *testing.T) {
	known := NewCollectionSet(
		CollectionKey{Abbreviation: "BT1", Name: "BOOSTER New Evolution [BT1]"},
		CollectionKey{Abbreviation: "ST1", Name: "STARTER DECK Gaia Red [ST1]"},
	)
	renamed := collectionAt("BT1", "BOOSTER New Evolution [BT-01]")
	unrelated := collectionAt("EX1", "THEME BOOSTER Classic Collection [EX1]")

	renames := SuggestRenames(known, []Collection{renamed, unrelated})
	require.Len(t, renames, 1)
	require.Equal(t, "BOOSTER New Evolution [BT1]", renames[0].Known.Name)
	require.Equal(t, renamed, renames[0].Fresh)
	require.GreaterOrEqual(t, renames[0].Similarity, RenameThreshold)

	require.Empty(t, SuggestRenames(NewCollectionSet(), []Collection{renamed}))
}
