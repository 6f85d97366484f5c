package models

// ClothingItem is a single garment in the wardrobe. The image file behind
// ImagePath is owned by the configured file store; the path is unique per item.
type ClothingItem struct {
	JsonModel
	ImagePath string        `gorm:"uniqueIndex;not null" json:"image_path"`
	Name      *string       `json:"name"`
	Tags      []ClothingTag `gorm:"constraint:OnDelete:CASCADE;" json:"tags"`
}

// TagMap groups the tag rows by category, preserving row order inside each
// category (rows are loaded ordered by id).
func (c *ClothingItem) TagMap() map[string][]string {
	tags := map[string][]string{}
	for _, tag := range c.Tags {
		tags[tag.TagType] = append(tags[tag.TagType], tag.TagValue)
	}
	return tags
}

// FirstTag returns the first value stored for a category, or "".
func (c *ClothingItem) FirstTag(tagType string) string {
	for _, tag := range c.Tags {
		if tag.TagType == tagType {
			return tag.TagValue
		}
	}
	return ""
}

type ClothingTag struct {
	JsonModel
	ClothingItemID uint   `gorm:"index:idx_tags_item" json:"-"`
	TagType        string `gorm:"index:idx_tags_type_value;not null" json:"tag_type"`
	TagValue       string `gorm:"index:idx_tags_type_value;not null" json:"tag_value"`
}

// Outfit is a saved combination of clothing items. Membership rows keep the
// order supplied at save time, not the display order of garment categories.
type Outfit struct {
	JsonModel
	Name     string       `gorm:"not null" json:"name"`
	Occasion *string      `json:"occasion"`
	Items    []OutfitItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
}

type OutfitItem struct {
	JsonModel
	OutfitID       uint          `gorm:"index" json:"-"`
	ClothingItemID uint          `json:"clothing_item_id"`
	ClothingItem   *ClothingItem `gorm:"constraint:OnDelete:CASCADE;" json:"clothing_item"`
	// 1-based position inside the outfit, dense, assigned at save time
	ItemOrder int `gorm:"not null" json:"item_order"`
}

// UserRequest is the append-only audit record of one agent invocation.
// Rows are never updated or deleted by the application.
type UserRequest struct {
	JsonModel
	Query    string `gorm:"type:text;not null" json:"query"`
	Response string `gorm:"type:text" json:"response"`
}
