package markup

import (
	"net/url"
	"testing"

	"digicards/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustParse(t testing.TB, link string) *url.URL {
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestAbbreviation(t *testing.T) {
	testCases := []struct {
		title  string
		expect string
	}{
		{title: "BOOSTER New Evolution [BT-01]", expect: "BT-01"},
		{title: "Something [BT-1]", expect: "BT-1"},
		{title: "THEME BOOSTER [EX-01] Classic Collection [extra]", expect: "EX-01"},
		{title: "Promotion Card", expect: PromoAbbreviation},
		{title: "Broken [", expect: PromoAbbreviation},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, Abbreviation(test.title), test.title)
	}
}

func TestExtractCollectionList(t *testing.T) {
	base := mustParse(t, "https://world.digimoncard.com/cardlist/")
	body := testutil.NavigationPage(
		testutil.NavLink{Href: "?search=true&category=522009", Title: "BOOSTER Dimensional Phase [BT-11]"},
		testutil.NavLink{Href: "?search=true&category=522001", Title: "BOOSTER New Evolution [BT-01]"},
		testutil.NavLink{Href: "?search=true&category=522100", Title: "Promotion Card"},
	)

	links, err := ExtractCollectionList(base, []byte(body))
	if err != nil {
		t.Fatal(err)
	}

	expected := []CollectionLink{
		{
			Url:          "https://world.digimoncard.com/cardlist/?search=true&category=522009",
			Name:         "BOOSTER Dimensional Phase [BT-11]",
			Abbreviation: "BT-11",
		},
		{
			Url:          "https://world.digimoncard.com/cardlist/?search=true&category=522001",
			Name:         "BOOSTER New Evolution [BT-01]",
			Abbreviation: "BT-01",
		},
		{
			Url:          "https://world.digimoncard.com/cardlist/?search=true&category=522100",
			Name:         "Promotion Card",
			Abbreviation: "P",
		},
	}
	if diff := cmp.Diff(expected, links); diff != "" {
		t.Fatalf("collection list mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCollectionListMissing(t *testing.T) {
	base := mustParse(t, "https://world.digimoncard.com/cardlist/")
	_, err := ExtractCollectionList(base, []byte(testutil.EmptyPage()))
	require.ErrorIs(t, err, ErrNoCollectionList)
}

func TestExtractCardBlocks(t *testing.T) {
	page := mustParse(t, "https://world.digimoncard.com/cardlist/?search=true&category=522001")

	alt := testutil.Digimon("BT1-001", "Yokomon")
	alt.CardType = "Digi-Egg"
	alt.Level = ""
	alt.Parallel = true
	alt.ImageSrc = "../images/cardlist/card/BT1-001_P1.png"

	normal := testutil.Digimon("BT1-002", "Agumon")
	noName := testutil.Digimon("BT1-003", "")
	noName.NoName = true
	noName.ImageSrc = ""

	blocks, err := ExtractCardBlocks(page, []byte(testutil.CollectionPage(alt, normal, noName)))
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, blocks, 3)

	require.True(t, blocks[0].Parallel)
	require.Equal(t, "https://world.digimoncard.com/images/cardlist/card/BT1-001_P1.png", blocks[0].ImageUrl)
	require.Equal(t, []string{"BT1-001", "C", "Digi-Egg"}, blocks[0].Head)

	expected := RawCardBlock{
		ImageUrl: "https://world.digimoncard.com/images/cardlist/card/BT1-002.png",
		Head:     []string{"BT1-002", "C", "Digimon", "Lv.3"},
		Name:     "Agumon",
		HasName:  true,
		Details: []string{
			"Red", "Rookie", "Vaccine", "Reptile", "2000", "3",
			"0 from Lv.2", "-", "-", "[Your Turn] This Digimon gets +1000 DP.", "-",
		},
	}
	if diff := cmp.Diff(expected, blocks[1]); diff != "" {
		t.Fatalf("card block mismatch (-want +got):\n%s", diff)
	}

	require.False(t, blocks[2].HasName)
	require.Empty(t, blocks[2].ImageUrl)
}

func TestExtractCardBlocksMissingList(t *testing.T) {
	page := mustParse(t, "https://world.digimoncard.com/cardlist/")
	_, err := ExtractCardBlocks(page, []byte(testutil.EmptyPage()))
	require.ErrorIs(t, err, ErrNoCardList)

	blocks, err := ExtractCardBlocks(page, []byte(testutil.CollectionPage()))
	require.NoError(t, err)
	require.Empty(t, blocks)
}
