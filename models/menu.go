package models

import "time"

// Menu form vocabularies.
var (
	MenuCategories = []string{"Signature Salads", "Wraps", "Warm Bowls", "Add-Ons", "Drinks", "Desserts"}
	DietaryTags    = []string{"vegan", "vegetarian", "gluten-friendly", "dairy-free", "nut-free", "keto", "paleo"}
	Allergens      = []string{"Milk", "Eggs", "Fish", "Shellfish", "Peanuts", "Tree nuts", "Soy", "Wheat", "Sesame"}
	MenuBadges     = []string{"new", "best_seller", "seasonal"}
)

// Availability tells whether a menu item is always offered or only within a window.
type Availability string

const (
	AvailabilityAlways   Availability = "always"
	AvailabilitySeasonal Availability = "seasonal"
)

// AddOnOption is an extra a customer can add to an item.
type AddOnOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// PriceVariant is a size with its own price.
type PriceVariant struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// MenuItemDetails are the merchandising fields shared by a menu item and the form that creates it.
type MenuItemDetails struct {
	Category          string         `json:"category,omitempty"`
	Slug              string         `json:"slug,omitempty"`
	ShortDescription  string         `json:"shortDescription,omitempty"`
	LongDescription   string         `json:"longDescription,omitempty"`
	BaseGreens        string         `json:"baseGreens,omitempty"`
	Toppings          []string       `json:"toppings,omitempty"`
	DressingDefault   string         `json:"dressingDefault,omitempty"`
	DressingOptions   []string       `json:"dressingOptions,omitempty"`
	AddOnOptions      []AddOnOption  `json:"addOnOptions,omitempty"`
	ServingSizeG      *int           `json:"servingSizeG,omitempty"`
	Calories          *int           `json:"calories,omitempty"`
	Protein           *float64       `json:"protein,omitempty"`
	Fat               *float64       `json:"fat,omitempty"`
	Carbs             *float64       `json:"carbs,omitempty"`
	Fiber             *float64       `json:"fiber,omitempty"`
	Sugar             *float64       `json:"sugar,omitempty"`
	Sodium            *float64       `json:"sodium,omitempty"`
	DietaryTags       []string       `json:"dietaryTags,omitempty"`
	Allergens         []string       `json:"allergens,omitempty"`
	PriceVariants     []PriceVariant `json:"priceVariants,omitempty"`
	TaxCategory       string         `json:"taxCategory,omitempty"`
	AvailabilityType  Availability   `json:"availabilityType,omitempty"`
	AvailabilityStart *time.Time     `json:"availabilityStart,omitempty"`
	AvailabilityEnd   *time.Time     `json:"availabilityEnd,omitempty"`
	ImageHero         string         `json:"imageHero,omitempty"`
	ImageThumb        string         `json:"imageThumb,omitempty"`
	AltText           string         `json:"altText,omitempty"`
	VideoURL          string         `json:"videoUrl,omitempty"`
	DisplayOrder      *int           `json:"displayOrder,omitempty"`
	Badges            []string       `json:"badges,omitempty"`
	CrossSellIDs      []string       `json:"crossSellIds,omitempty"`
	CarbonKg          *float64       `json:"carbonKg,omitempty"`
	Packaging         string         `json:"packaging,omitempty"`
	MetaTitle         string         `json:"metaTitle,omitempty"`
	MetaDescription   string         `json:"metaDescription,omitempty"`
}
