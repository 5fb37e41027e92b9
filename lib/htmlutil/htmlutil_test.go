package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	testCases := []struct {
		in     string
		expect string
	}{
		{in: "  Agumon  ", expect: "Agumon"},
		{in: "\n\t Red\t Blue \n", expect: "Red Blue"},
		{in: "line one\n\n\n   line two", expect: "line one\nline two"},
		{in: "a b", expect: "a b"},
		{in: "", expect: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, CleanText(test.in), test.in)
	}
}

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<dd>[On Play] Gain 1 memory.<br>[Your Turn] +1000 DP.</dd>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "[On Play] Gain 1 memory.\n[Your Turn] +1000 DP.", Text(doc.Find("dd")))
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://world.digimoncard.com/cardlist/?search=true")
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		href   string
		expect string
	}{
		{href: "../images/cardlist/card/BT1-001.png", expect: "https://world.digimoncard.com/images/cardlist/card/BT1-001.png"},
		{href: "?search=true&category=522001", expect: "https://world.digimoncard.com/cardlist/?search=true&category=522001"},
		{href: "https://example.com/a.png", expect: "https://example.com/a.png"},
		{href: "   ", expect: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, Resolve(base, test.href), test.href)
	}
}
