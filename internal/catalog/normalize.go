package catalog

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"digicards/internal/markup"
)

// Placeholder is what the site prints for a field that does not apply to a card.
const Placeholder = "-"

const digimonCardType = "Digimon"

const (
	headCardNumber = iota
	headRarity
	headCardType
	headLevel
)

const (
	detailColors = iota
	detailStage
	detailAttribute
	detailTypes
	detailDP
	detailCost
	detailEvolutionCostOne
	detailEvolutionCostTwo
	detailEffect
	detailEvolutionEffect
	detailSecurityEffect

	detailCount
)

// cardFields is a RawCardBlock after its structure has been validated.
type cardFields struct {
	cardNumber string
	rarity     string
	cardType   string
	level      string
	hasLevel   bool
	name       string

	colors          string
	stage           string
	attribute       string
	types           string
	dp              string
	cost            string
	evolutionCost1  string
	evolutionCost2  string
	effect          string
	evolutionEffect string
	securityEffect  string
}

func fieldsOf(block markup.RawCardBlock) (cardFields, error) {
	if len(block.Head) <= headCardType {
		return cardFields{}, &StructuralParseError{
			Field:  "head",
			Reason: "expected card number, rarity and card type",
		}
	}
	if !block.HasName {
		return cardFields{}, &StructuralParseError{
			Field:  "name",
			Reason: "name element not found",
		}
	}
	if len(block.Details) < detailCount {
		return cardFields{}, &StructuralParseError{
			Field:  "details",
			Reason: "expected " + strconv.Itoa(detailCount) + " detail values, got " + strconv.Itoa(len(block.Details)),
		}
	}

	f := cardFields{
		cardNumber: block.Head[headCardNumber],
		rarity:     block.Head[headRarity],
		cardType:   block.Head[headCardType],
		name:       block.Name,

		colors:          block.Details[detailColors],
		stage:           block.Details[detailStage],
		attribute:       block.Details[detailAttribute],
		types:           block.Details[detailTypes],
		dp:              block.Details[detailDP],
		cost:            block.Details[detailCost],
		evolutionCost1:  block.Details[detailEvolutionCostOne],
		evolutionCost2:  block.Details[detailEvolutionCostTwo],
		effect:          block.Details[detailEffect],
		evolutionEffect: block.Details[detailEvolutionEffect],
		securityEffect:  block.Details[detailSecurityEffect],
	}
	if len(block.Head) > headLevel {
		f.level = block.Head[headLevel]
		f.hasLevel = true
	}

	required := []struct {
		field string
		value *string
	}{
		{"card_number", &f.cardNumber},
		{"rarity", &f.rarity},
		{"card_type", &f.cardType},
		{"name", &f.name},
	}
	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			return cardFields{}, &StructuralParseError{
				Field:  r.field,
				Reason: "value is empty",
			}
		}
	}

	if strings.TrimSpace(f.colors) == "" {
		return cardFields{}, &StructuralParseError{
			Field:  "colors",
			Reason: "color list is empty",
		}
	}
	return f, nil
}

// Normalize converts a raw card list entry into a CardRecord.
//
// Returned errors are either a *StructuralParseError or a *NormalizationError, both of them
// mean this single card should be skipped.
func Normalize(block markup.RawCardBlock, collection Collection) (CardRecord, error) {
	f, err := fieldsOf(block)
	if err != nil {
		return CardRecord{}, err
	}

	record := CardRecord{
		Name:       f.name,
		CardType:   f.cardType,
		Rarity:     f.rarity,
		Collection: collection.Key(),
	}

	record.CardNumber, record.IsAlternateArt, err = identity(f.cardNumber, block)
	if err != nil {
		return CardRecord{}, err
	}
	if block.ImageUrl != "" {
		record.ImageUrl = Present(block.ImageUrl)
	}

	record.ColorOne, record.ColorTwo, record.ColorThree = ParseColors(f.colors)
	record.TypeOne, record.TypeTwo = ParseTypes(f.types)

	record.Stage = ParseText(f.stage)
	record.Attribute = ParseText(f.attribute)
	record.Effect = ParseText(f.effect)
	record.EvolutionEffect = ParseText(f.evolutionEffect)
	record.SecurityEffect = ParseText(f.securityEffect)

	if record.Cost, err = parseInteger("cost", f.cost); err != nil {
		return CardRecord{}, err
	}
	if record.DP, err = parseInteger("dp", f.dp); err != nil {
		return CardRecord{}, err
	}
	if record.EvolutionCostOne, err = ExtractNumber("evolution_cost_one", f.evolutionCost1); err != nil {
		return CardRecord{}, err
	}
	if record.EvolutionCostTwo, err = ExtractNumber("evolution_cost_two", f.evolutionCost2); err != nil {
		return CardRecord{}, err
	}

	if f.cardType == digimonCardType && f.hasLevel {
		record.Level = ParseText(f.level)
	}

	return record, nil
}

func identity(printed string, block markup.RawCardBlock) (string, bool, error) {
	if !block.Parallel {
		if printed == "" {
			return "", false, &StructuralParseError{
				Field:  "card_number",
				Reason: "printed card number is empty",
			}
		}
		return printed, false, nil
	}

	number := ImageIdentity(block.ImageUrl)
	if number == "" {
		return "", true, &StructuralParseError{
			Field:  "card_number",
			Reason: "alternate art entry has no usable image url",
		}
	}
	return number, true, nil
}

// ImageIdentity returns the file name of an image url without its extension, this is the
// identity of an alternate art printing.
func ImageIdentity(imageUrl string) string {
	if imageUrl == "" {
		return ""
	}
	p := imageUrl
	if parsed, err := url.Parse(imageUrl); err == nil {
		p = parsed.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

func isAbsent(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == Placeholder
}

// ParseText maps the placeholder and empty values to Absent.
func ParseText(raw string) Text {
	if isAbsent(raw) {
		return Absent
	}
	return Present(strings.TrimSpace(raw))
}

// ParseColors splits a whitespace separated color list, the list must not be empty.
func ParseColors(raw string) (one string, two, three Text) {
	colors := strings.Fields(raw)
	two, three = Absent, Absent
	if len(colors) > 0 {
		one = colors[0]
	}
	if len(colors) > 1 {
		two = Present(colors[1])
	}
	if len(colors) > 2 {
		three = Present(colors[2])
	}
	return one, two, three
}

// ParseTypes splits a "One/Two" type pair.
func ParseTypes(raw string) (one, two Text) {
	if isAbsent(raw) {
		return Absent, Absent
	}
	first, second, found := strings.Cut(strings.TrimSpace(raw), "/")
	if !found {
		return Present(first), Absent
	}
	return ParseText(first), ParseText(second)
}

var digitRun = regexp.MustCompile(`\d+`)

// ExtractNumber returns the first run of digits inside `raw`.
func ExtractNumber(field, raw string) (Number, error) {
	if isAbsent(raw) {
		return AbsentNumber, nil
	}
	match := digitRun.FindString(raw)
	if match == "" {
		return AbsentNumber, &NormalizationError{Field: field, Value: raw}
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return AbsentNumber, &NormalizationError{Field: field, Value: raw}
	}
	return PresentNumber(n), nil
}

func parseInteger(field, raw string) (Number, error) {
	if isAbsent(raw) {
		return AbsentNumber, nil
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return AbsentNumber, &NormalizationError{Field: field, Value: raw}
	}
	return PresentNumber(n), nil
}
