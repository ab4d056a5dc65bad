package domain

// Category enumerates the closed set of ticket categories offered on the
// ticket panel.
type Category string

const (
	CategoryBuyLimiteds  Category = "buy-limiteds"
	CategorySellLimiteds Category = "sell-limiteds"
	CategoryBuyDahood    Category = "buy-dahood"
	CategorySellDahood   Category = "sell-dahood"
	CategoryServices     Category = "services"
)

var categoryLabels = map[Category]string{
	CategoryBuyLimiteds:  "Buying Limiteds",
	CategorySellLimiteds: "Selling Limiteds",
	CategoryBuyDahood:    "Buying Dahood Skins",
	CategorySellDahood:   "Selling Dahood Skins",
	CategoryServices:     "Buying Services",
}

// Valid reports whether the category is part of the closed set.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable service name for the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Categories returns the full closed set in panel order.
func Categories() []Category {
	return []Category{
		CategoryBuyLimiteds,
		CategorySellLimiteds,
		CategoryBuyDahood,
		CategorySellDahood,
		CategoryServices,
	}
}
