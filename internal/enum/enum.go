package enum

// Order lifecycle statuses (CHECK constrained in DB).
const (
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Catalog categories (CHECK constrained in DB).
const (
	ItemTypeMain  = "main"
	ItemTypeSide  = "side"
	ItemTypeOther = "other"
)

// Announcement banner styles, matching the bootstrap alert classes the
// web client renders.
const (
	AnnouncementStyleInfo    = "info"
	AnnouncementStyleWarning = "warning"
	AnnouncementStyleDanger  = "danger"
	AnnouncementStyleSuccess = "success"
)

// menuCategories is the category vocabulary per item type.
var menuCategories = map[string][]string{
	ItemTypeMain:  {"Vegetarian", "Non-Vegetarian", "Vegan"},
	ItemTypeSide:  {"Salad", "Bread", "Soup", "Snack"},
	ItemTypeOther: {"Beverage", "Dessert", "Extra"},
}

// MenuCategories returns the category choices for an item type.
func MenuCategories(itemType string) []string {
	return menuCategories[itemType]
}

// IsValidMenuCategory reports whether category belongs to the item
// type's vocabulary.
func IsValidMenuCategory(itemType, category string) bool {
	for _, c := range menuCategories[itemType] {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidItemType reports whether s names one of the three catalog categories.
func IsValidItemType(s string) bool {
	switch s {
	case ItemTypeMain, ItemTypeSide, ItemTypeOther:
		return true
	}
	return false
}

// IsValidOrderStatus reports whether s is a known order lifecycle status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPreparing, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidAnnouncementStyle reports whether s is a known banner style.
func IsValidAnnouncementStyle(s string) bool {
	switch s {
	case AnnouncementStyleInfo, AnnouncementStyleWarning,
		AnnouncementStyleDanger, AnnouncementStyleSuccess:
		return true
	}
	return false
}
