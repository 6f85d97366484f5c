package agent

import (
	"errors"
	"regexp"
	"sort"
	"strconv"

	"outfitapi/models"
	"outfitapi/tagutil"
	"outfitapi/wardrobe"
)

// markerPattern matches one item marker. Markers never nest, so scanning
// forward from the end of each match keeps matches non-overlapping.
var markerPattern = regexp.MustCompile(`\[ID:(\d+)\]`)

// garmentRank orders items the way people dress: outerwear first, then tops,
// bottoms, footwear, accessories. Unknown types sink to the end.
var garmentRank = map[string]int{
	"jacket": 1, "coat": 1, "blazer": 1, "outerwear": 1, "cardigan": 1,
	"shirt": 2, "t-shirt": 2, "top": 2, "blouse": 2, "sweater": 2, "dress": 2,
	"pants": 3, "jeans": 3, "trousers": 3, "shorts": 3, "skirt": 3, "bottom": 3,
	"shoes": 4, "sneakers": 4, "boots": 4, "sandals": 4, "heels": 4, "footwear": 4,
	"accessory": 5, "hat": 5, "belt": 5, "scarf": 5, "bag": 5, "watch": 5, "jewelry": 5,
}

const unknownRank = 99

// RankOf maps a garment type tag to its display rank.
func RankOf(garmentType string) int {
	if rank, ok := garmentRank[tagutil.Normalize(garmentType)]; ok {
		return rank
	}
	return unknownRank
}

// ItemResolver looks up a clothing item referenced by a marker.
type ItemResolver interface {
	GetItem(id uint) (*models.ClothingItem, error)
}

// Recommendation is the parsed form of an agent answer: the prose plus the
// referenced items in display order.
type Recommendation struct {
	Text  string                `json:"text"`
	Items []models.ClothingItem `json:"items"`
}

// ExtractIDs scans the answer for [ID:X] markers left to right and returns
// the ids in order of appearance, duplicates included.
func ExtractIDs(text string) []uint {
	var ids []uint
	offset := 0
	for offset < len(text) {
		match := markerPattern.FindStringSubmatchIndex(text[offset:])
		if match == nil {
			break
		}
		id, err := strconv.ParseUint(text[offset+match[2]:offset+match[3]], 10, 32)
		if err == nil {
			ids = append(ids, uint(id))
		}
		offset += match[1]
	}
	return ids
}

// Extract resolves the answer's markers and sorts the resolved items by
// garment rank. The sort is stable: items sharing a rank keep the order the
// model mentioned them in, and unresolved ids are dropped silently.
func Extract(text string, resolver ItemResolver) (*Recommendation, error) {
	var items []models.ClothingItem
	for _, id := range ExtractIDs(text) {
		item, err := resolver.GetItem(id)
		if errors.Is(err, wardrobe.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return RankOf(items[i].FirstTag("type")) < RankOf(items[j].FirstTag("type"))
	})
	return &Recommendation{Text: text, Items: items}, nil
}
