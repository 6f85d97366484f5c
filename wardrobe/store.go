package wardrobe

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"outfitapi/models"
	"outfitapi/tagutil"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced item or outfit does not exist.
	ErrNotFound = errors.New("wardrobe: not found")
	// ErrDuplicateImage means an item with the same image path already exists.
	ErrDuplicateImage = errors.New("wardrobe: image path already used")
)

// TagFilter maps a tag category to one required value. AND semantics across
// categories; the map shape itself rules out two filters on the same category.
type TagFilter map[string]string

// Store is the wardrobe database layer. The handle is injected at
// construction; the Store never opens or closes it.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveItem inserts a clothing item and all its tag rows in one transaction.
// Tag categories are normalized to lower case; value order inside a category
// is preserved. A reused image path fails with ErrDuplicateImage.
func (s *Store) SaveItem(imagePath string, name *string, tags map[string][]string) (*models.ClothingItem, error) {
	item := models.ClothingItem{
		ImagePath: imagePath,
		Name:      name,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		categories := make([]string, 0, len(tags))
		for category := range tags {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			for _, value := range tags[category] {
				tag := models.ClothingTag{
					ClothingItemID: item.ID,
					TagType:        tagutil.Normalize(category),
					TagValue:       value,
				}
				if err := tx.Create(&tag).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateImage, imagePath)
		}
		return nil, err
	}
	return s.GetItem(item.ID)
}

func (s *Store) GetItem(id uint) (*models.ClothingItem, error) {
	var item models.ClothingItem
	err := s.db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: clothing item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes the item row; tags and outfit memberships go with it via
// the cascade constraints. It returns the image path so the caller can do
// best-effort removal of the file itself.
func (s *Store) DeleteItem(id uint) (string, error) {
	item, err := s.GetItem(id)
	if err != nil {
		return "", err
	}
	if err := s.db.Delete(&models.ClothingItem{}, id).Error; err != nil {
		return "", err
	}
	return item.ImagePath, nil
}

// Query resolves tag filters to the matching item set, newest first. An empty
// filter returns the whole wardrobe. Each (category, value) pair is an exact
// match; pairs across categories combine with AND.
func (s *Store) Query(filters TagFilter) ([]models.ClothingItem, error) {
	query := s.db.Model(&models.ClothingItem{})
	for category, value := range filters {
		sub := s.db.Model(&models.ClothingTag{}).
			Select("clothing_item_id").
			Where("tag_type = ? AND tag_value = ?", tagutil.Normalize(category), value)
		query = query.Where("clothing_items.id IN (?)", sub)
	}
	var items []models.ClothingItem
	err := query.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("created_at DESC, id DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// QueryByOccasion matches occasion tags by case-sensitive substring. When
// nothing in the wardrobe carries a matching occasion tag, it degrades to the
// full unfiltered list instead of returning nothing.
func (s *Store) QueryByOccasion(occasion string) ([]models.ClothingItem, error) {
	sub := s.db.Model(&models.ClothingTag{}).
		Select("clothing_item_id").
		Where("tag_type = ? AND tag_value LIKE ?", "occasion", "%"+occasion+"%")
	var items []models.ClothingItem
	err := s.db.Model(&models.ClothingItem{}).
		Where("clothing_items.id IN (?)", sub).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.Query(nil)
	}
	return items, nil
}

// SaveOutfit stores an outfit with membership order equal to the position in
// clothingIDs, starting at 1. It does not pre-check that the ids exist.
func (s *Store) SaveOutfit(name string, clothingIDs []uint, occasion string) (*models.Outfit, error) {
	outfit := models.Outfit{Name: name}
	if occasion != "" {
		outfit.Occasion = &occasion
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&outfit).Error; err != nil {
			return err
		}
		for i, clothingID := range clothingIDs {
			member := models.OutfitItem{
				OutfitID:       outfit.ID,
				ClothingItemID: clothingID,
				ItemOrder:      i + 1,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOutfit(outfit.ID)
}

func (s *Store) outfitQuery() *gorm.DB {
	return s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order") }).
		Preload("Items.ClothingItem").
		Preload("Items.ClothingItem.Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// ListOutfits returns all outfits, newest first, members in stored order.
// Memberships whose item no longer resolves are silently dropped.
func (s *Store) ListOutfits() ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := s.outfitQuery().Order("created_at DESC, id DESC").Find(&outfits).Error
	if err != nil {
		return nil, err
	}
	for i := range outfits {
		outfits[i].Items = resolvedMembers(outfits[i].Items)
	}
	return outfits, nil
}

func (s *Store) GetOutfit(id uint) (*models.Outfit, error) {
	var outfit models.Outfit
	err := s.outfitQuery().First(&outfit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: outfit %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	outfit.Items = resolvedMembers(outfit.Items)
	return &outfit, nil
}

func resolvedMembers(members []models.OutfitItem) []models.OutfitItem {
	resolved := make([]models.OutfitItem, 0, len(members))
	for _, member := range members {
		if member.ClothingItem == nil || member.ClothingItem.ID == 0 {
			continue
		}
		resolved = append(resolved, member)
	}
	return resolved
}

// LogRequest appends one (query, answer) pair to the audit log.
func (s *Store) LogRequest(query string, response string) error {
	request := models.UserRequest{Query: query, Response: response}
	return s.db.Create(&request).Error
}

func (s *Store) ListRequests() ([]models.UserRequest, error) {
	var requests []models.UserRequest
	err := s.db.Order("created_at DESC, id DESC").Find(&requests).Error
	return requests, err
}

// ItemView is the compact rendering of an item shown to the agent and
// returned from tool calls.
type ItemView struct {
	ID        uint                `json:"id"`
	ImagePath string              `json:"image_path"`
	Name      *string             `json:"name"`
	Tags      map[string][]string `json:"tags"`
	CreatedAt string              `json:"created_at"`
}

// RenderItems serializes items for model consumption.
func RenderItems(items []models.ClothingItem) string {
	views := make([]ItemView, 0, len(items))
	for i := range items {
		item := &items[i]
		views = append(views, ItemView{
			ID:        item.ID,
			ImagePath: item.ImagePath,
			Name:      item.Name,
			Tags:      item.TagMap(),
			CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	rendered, err := json.Marshal(views)
	if err != nil {
		return "[]"
	}
	return string(rendered)
}

// Snapshot renders the whole wardrobe; it seeds the agent loop context.
func (s *Store) Snapshot() (string, error) {
	items, err := s.Query(nil)
	if err != nil {
		return "", err
	}
	return RenderItems(items), nil
}
