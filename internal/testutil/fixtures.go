// Package testutil builds card list markup and images shaped like the live site, for tests.
package testutil

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"strings"
)

// Card describes one card list entry. Empty detail values are rendered as empty <dd> elements,
// use "-" for the site's placeholder.
type Card struct {
	Number    string
	Rarity    string
	CardType  string
	Level     string
	Parallel  bool
	Name      string
	NoName    bool
	ImageSrc  string
	Colors    string
	Stage     string
	Attribute string
	Types     string
	DP        string
	Cost      string
	EvoCost1  string
	EvoCost2  string
	Effect    string
	EvoEffect string
	Security  string
	// Details overrides the rendered <dd> values when not nil.
	Details []string
}

// Digimon returns a well-formed Digimon entry.
func Digimon(number, name string) Card {
	return Card{
		Number:    number,
		Rarity:    "C",
		CardType:  "Digimon",
		Level:     "Lv.3",
		Name:      name,
		ImageSrc:  fmt.Sprintf("../images/cardlist/card/%s.png", number),
		Colors:    "Red",
		Stage:     "Rookie",
		Attribute: "Vaccine",
		Types:     "Reptile",
		DP:        "2000",
		Cost:      "3",
		EvoCost1:  "0 from Lv.2",
		EvoCost2:  "-",
		Effect:    "-",
		EvoEffect: "[Your Turn] This Digimon gets +1000 DP.",
		Security:  "-",
	}
}

func (c Card) details() []string {
	if c.Details != nil {
		return c.Details
	}
	return []string{
		c.Colors, c.Stage, c.Attribute, c.Types, c.DP, c.Cost,
		c.EvoCost1, c.EvoCost2, c.Effect, c.EvoEffect, c.Security,
	}
}

var detailLabels = []string{
	"Color", "Form", "Attribute", "Type", "DP", "Play Cost",
	"Digivolve Cost 1", "Digivolve Cost 2", "Effect", "Inherited Effect", "Security Effect",
}

func (c Card) Html() string {
	var out strings.Builder
	out.WriteString(`<li class="image_lists_item data page-1">`)
	if c.ImageSrc != "" {
		fmt.Fprintf(&out, `<div class="card_img"><img src="%s" alt=""></div>`, html.EscapeString(c.ImageSrc))
	}
	out.WriteString(`<div class="popup"><div class="card_detail"><ul class="cardinfo_head">`)
	for _, v := range []string{c.Number, c.Rarity, c.CardType} {
		fmt.Fprintf(&out, `<li>%s</li>`, html.EscapeString(v))
	}
	if c.Level != "" {
		fmt.Fprintf(&out, `<li class="cardlv">%s</li>`, html.EscapeString(c.Level))
	}
	if c.Parallel {
		out.WriteString(`<li class="cardtype cardParallel">Parallel</li>`)
	}
	out.WriteString(`</ul>`)
	if !c.NoName {
		fmt.Fprintf(&out, `<div class="card_name">%s</div>`, html.EscapeString(c.Name))
	}
	out.WriteString(`<dl>`)
	for i, v := range c.details() {
		label := "Extra"
		if i < len(detailLabels) {
			label = detailLabels[i]
		}
		fmt.Fprintf(&out, "<dt>%s</dt><dd>\n  %s\n</dd>", label, html.EscapeString(v))
	}
	out.WriteString(`</dl></div></div></li>`)
	return out.String()
}

// CollectionPage renders a collection page containing the given cards.
func CollectionPage(cards ...Card) string {
	var out strings.Builder
	out.WriteString(`<html><body><div class="cardlist"><ul class="image_lists">`)
	for _, c := range cards {
		out.WriteString(c.Html())
	}
	out.WriteString(`</ul></div></body></html>`)
	return out.String()
}

// EmptyPage renders a page without the card list container.
func EmptyPage() string {
	return `<html><body><p>No cards found.</p></body></html>`
}

// NavLink is a navigation entry, Href is relative to the card list page.
type NavLink struct {
	Href  string
	Title string
}

// NavigationPage renders the card list landing page with its collection navigation.
func NavigationPage(links ...NavLink) string {
	var out strings.Builder
	out.WriteString(`<html><body><div id="snaviList"><ul>`)
	for _, l := range links {
		fmt.Fprintf(
			&out,
			`<li><a href="%s"><span class="title">%s</span><span class="date">2024.01.01</span></a></li>`,
			html.EscapeString(l.Href),
			html.EscapeString(l.Title),
		)
	}
	out.WriteString(`</ul></div></body></html>`)
	return out.String()
}

// PNG returns an encoded w*h image with a translucent gradient.
func PNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 200})
		}
	}
	var buff bytes.Buffer
	err := png.Encode(&buff, img)
	if err != nil {
		panic(err)
	}
	return buff.Bytes()
}
