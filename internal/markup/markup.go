// Package markup turns card list pages into raw, unvalidated field blocks.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"digicards/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PromoAbbreviation is used for collections without a bracketed set code in their title.
const PromoAbbreviation = "P"

var (
	ErrNoCollectionList = errors.New("collection navigation list not found")
	ErrNoCardList       = errors.New("card list container not found")
)

// CollectionLink is a collection as it appears in the site navigation.
type CollectionLink struct {
	Url          string
	Name         string
	Abbreviation string
}

var abbreviationRegex = regexp.MustCompile(`\[(.*?)\]`)

// Abbreviation returns the first bracketed token of a collection title, or PromoAbbreviation.
func Abbreviation(title string) string {
	groups := abbreviationRegex.FindStringSubmatch(title)
	if len(groups) < 2 {
		return PromoAbbreviation
	}
	return groups[1]
}

func parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

// ExtractCollectionList reads the navigation list of a card list page. Links are returned in
// page order with their href resolved against `base`. Links without a title are left out.
func ExtractCollectionList(base *url.URL, body []byte) ([]CollectionLink, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	nav := doc.Find("div#snaviList")
	if nav.Length() == 0 {
		return nil, ErrNoCollectionList
	}

	var links []CollectionLink
	nav.Find("a").Each(func(_ int, a *goquery.Selection) {
		title := a.Find("span.title").First()
		if title.Length() == 0 {
			return
		}
		name := htmlutil.Text(title)
		href := htmlutil.Resolve(base, a.AttrOr("href", ""))
		if name == "" || href == "" {
			return
		}
		links = append(links, CollectionLink{
			Url:          href,
			Name:         name,
			Abbreviation: Abbreviation(name),
		})
	})

	return links, nil
}

// RawCardBlock holds the text of a single card list entry, nothing in it is validated.
type RawCardBlock struct {
	// Parallel is set when the entry carries the alternate-art marker.
	Parallel bool
	// ImageUrl is the absolute url of the card image, empty if the entry has no image.
	ImageUrl string
	// Head holds the header items in order: card number, rarity, card type and, for some
	// cards, the level. The alternate-art marker is never part of it.
	Head []string
	Name string
	// HasName is false when the entry has no name element.
	HasName bool
	// Details holds every detail value in page order.
	Details []string
}

// ExtractCardBlocks reads every card entry of a collection page, `page` is used to resolve
// image urls.
func ExtractCardBlocks(page *url.URL, body []byte) ([]RawCardBlock, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	list := doc.Find("ul.image_lists")
	if list.Length() == 0 {
		return nil, ErrNoCardList
	}

	var blocks []RawCardBlock
	list.Find("li.image_lists_item.data").Each(func(_ int, item *goquery.Selection) {
		blocks = append(blocks, extractCardBlock(page, item))
	})
	return blocks, nil
}

func extractCardBlock(page *url.URL, item *goquery.Selection) RawCardBlock {
	block := RawCardBlock{
		Parallel: item.Find("li.cardtype.cardParallel").Length() > 0,
	}

	if src, ok := item.Find("img").First().Attr("src"); ok {
		block.ImageUrl = htmlutil.Resolve(page, src)
	}

	// the alternate-art marker can sit inside the header, it is not a header value
	item.Find("ul.cardinfo_head li").Not(".cardParallel").Each(func(_ int, li *goquery.Selection) {
		block.Head = append(block.Head, htmlutil.Text(li))
	})

	name := item.Find("div.card_name").First()
	if name.Length() > 0 {
		block.HasName = true
		block.Name = htmlutil.Text(name)
	}

	item.Find("dd").Each(func(_ int, dd *goquery.Selection) {
		block.Details = append(block.Details, htmlutil.Text(dd))
	})

	return block
}
