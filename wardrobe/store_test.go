package wardrobe

import (
	"fmt"
	"strings"
	"testing"

	"outfitapi/dbhelper"
	"outfitapi/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveItemWithTags(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	item, err := store.SaveItem("uploads/cloth_1.jpg", services.StrPointer("Blue shirt"), map[string][]string{
		"Type":     {"shirt"},
		"color":    {"blue", "white"},
		"occasion": {"casual"},
	})
	require.NoError(t, err)
	require.NotZero(t, item.ID)
	assert.Equal(t, "Blue shirt", *item.Name)

	tags := item.TagMap()
	// category casing is normalized on write
	assert.Equal(t, []string{"shirt"}, tags["type"])
	assert.Equal(t, []string{"blue", "white"}, tags["color"])
	assert.Equal(t, []string{"casual"}, tags["occasion"])
}

func TestSaveItemDuplicateImagePath(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	_, err := store.SaveItem("uploads/cloth_dup.jpg", nil, map[string][]string{"type": {"shirt"}})
	require.NoError(t, err)

	_, err = store.SaveItem("uploads/cloth_dup.jpg", nil, map[string][]string{"type": {"pants"}})
	assert.ErrorIs(t, err, ErrDuplicateImage)
}

func TestGetItemNotFound(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	_, err := store.GetItem(123456)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryFiltersAreANDed(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	blueShirt, err := store.SaveItem("uploads/cloth_bs.jpg", nil, map[string][]string{
		"type": {"shirt"}, "color": {"blue"},
	})
	require.NoError(t, err)
	_, err = store.SaveItem("uploads/cloth_rs.jpg", nil, map[string][]string{
		"type": {"shirt"}, "color": {"red"},
	})
	require.NoError(t, err)
	_, err = store.SaveItem("uploads/cloth_bp.jpg", nil, map[string][]string{
		"type": {"pants"}, "color": {"blue"},
	})
	require.NoError(t, err)

	items, err := store.Query(TagFilter{"type": "shirt", "color": "blue"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, blueShirt.ID, items[0].ID)

	all, err := store.Query(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestQueryNoMatches(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	_, err := store.SaveItem("uploads/cloth_q.jpg", nil, map[string][]string{"type": {"shirt"}})
	require.NoError(t, err)

	items, err := store.Query(TagFilter{"type": "kimono"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQueryByOccasionSubstringAndFallback(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	formal, err := store.SaveItem("uploads/cloth_f.jpg", nil, map[string][]string{
		"type": {"blazer"}, "occasion": {"semi-formal"},
	})
	require.NoError(t, err)
	_, err = store.SaveItem("uploads/cloth_c.jpg", nil, map[string][]string{
		"type": {"t-shirt"}, "occasion": {"casual"},
	})
	require.NoError(t, err)

	// substring match on the tag value
	items, err := store.QueryByOccasion("formal")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, formal.ID, items[0].ID)

	// no occasion matches: the whole wardrobe comes back
	items, err = store.QueryByOccasion("wedding")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSaveOutfitKeepsOrder(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	first, err := store.SaveItem("uploads/cloth_o1.jpg", nil, map[string][]string{"type": {"jacket"}})
	require.NoError(t, err)
	second, err := store.SaveItem("uploads/cloth_o2.jpg", nil, map[string][]string{"type": {"jeans"}})
	require.NoError(t, err)

	outfit, err := store.SaveOutfit("Weekend", []uint{second.ID, first.ID}, "casual")
	require.NoError(t, err)
	require.Len(t, outfit.Items, 2)
	assert.Equal(t, "casual", *outfit.Occasion)
	assert.Equal(t, 1, outfit.Items[0].ItemOrder)
	assert.Equal(t, second.ID, outfit.Items[0].ClothingItemID)
	assert.Equal(t, 2, outfit.Items[1].ItemOrder)
	assert.Equal(t, first.ID, outfit.Items[1].ClothingItemID)
}

func TestGetOutfitNotFound(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	_, err := store.GetOutfit(424242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItemReturnsImagePath(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	item, err := store.SaveItem("uploads/cloth_del.jpg", nil, map[string][]string{"type": {"hat"}})
	require.NoError(t, err)

	imagePath, err := store.DeleteItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/cloth_del.jpg", imagePath)

	_, err = store.GetItem(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.DeleteItem(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItemShrinksOutfits(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	jacket, err := store.SaveItem("uploads/cloth_sh1.jpg", nil, map[string][]string{"type": {"jacket"}})
	require.NoError(t, err)
	jeans, err := store.SaveItem("uploads/cloth_sh2.jpg", nil, map[string][]string{"type": {"jeans"}})
	require.NoError(t, err)

	outfit, err := store.SaveOutfit("Duo", []uint{jacket.ID, jeans.ID}, "casual")
	require.NoError(t, err)
	require.Len(t, outfit.Items, 2)

	_, err = store.DeleteItem(jacket.ID)
	require.NoError(t, err)

	// the outfit survives with the remaining member, no error
	got, err := store.GetOutfit(outfit.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, jeans.ID, got.Items[0].ClothingItemID)

	outfits, err := store.ListOutfits()
	require.NoError(t, err)
	require.Len(t, outfits, 1)
	require.Len(t, outfits[0].Items, 1)
	assert.Equal(t, jeans.ID, outfits[0].Items[0].ClothingItemID)
}

func TestRequestLogAppendOnly(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	require.NoError(t, store.LogRequest("what to wear?", "the coat [ID:1]"))
	require.NoError(t, store.LogRequest("failed run", ""))

	requests, err := store.ListRequests()
	require.NoError(t, err)
	require.Len(t, requests, 2)
	// newest first
	assert.Equal(t, "failed run", requests[0].Query)
	assert.Equal(t, "", requests[0].Response)
	assert.Equal(t, "what to wear?", requests[1].Query)
}

func TestSnapshotRendersItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	store := NewStore(db)

	item, err := store.SaveItem("uploads/cloth_snap.jpg", services.StrPointer("Snap"), map[string][]string{
		"type": {"shirt"},
	})
	require.NoError(t, err)

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.True(t, strings.Contains(snapshot, "uploads/cloth_snap.jpg"))
	assert.True(t, strings.Contains(snapshot, fmt.Sprintf(`"id":%d`, item.ID)))
}
