package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"foodDeliveryAdmin/models"
)

// ---------- JSON Schemas (inline) ----------

const schemaOrderItem = `{
  "type": "object",
  "required": ["name", "quantity", "price"],
  "properties": {
    "id": { "type": "string" },
    "name": { "type": "string" },
    "quantity": { "type": "integer", "minimum": 0 },
    "price": { "type": "number", "minimum": 0 },
    "ratings": { "type": "number" },
    "discount": { "type": ["number", "null"] },
    "description": { "type": "string" },
    "imageLink": { "type": "string" }
  }
}`

const schemaOrder = `{
  "type": "object",
  "required": ["id", "status"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "userId": { "type": "string" },
    "customerName": { "type": "string" },
    "restaurantId": { "type": "string" },
    "restaurantName": { "type": "string" },
    "status": { "enum": ["pending", "preparing", "on the way", "ready", "delivered", "collected", "ask-for-cancel"] },
    "total": { "type": "number" },
    "items": { "type": "array", "items": ` + schemaOrderItem + ` },
    "deliveryAddress": { "type": "string" },
    "paymentMethod": { "type": "string" },
    "orderTime": { "type": "string" },
    "deliveryTime": { "type": ["string", "null"] }
  }
}`

const schemaRestaurant = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string" },
    "cuisine": { "type": "string" },
    "rating": { "type": "number" },
    "address": { "type": "string" },
    "phoneNumber": { "type": "string" },
    "openingHours": { "type": "string" }
  }
}`

// menuDetailProperties are shared by stored menu items and the menu item form.
const menuDetailProperties = `
    "description": { "type": "string" },
    "price": { "type": "number", "minimum": 0 },
    "category": { "enum": ["Signature Salads", "Wraps", "Warm Bowls", "Add-Ons", "Drinks", "Desserts"] },
    "slug": { "type": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$" },
    "shortDescription": { "type": ["string", "null"], "maxLength": 140 },
    "longDescription": { "type": ["string", "null"] },
    "baseGreens": { "type": ["string", "null"] },
    "toppings": { "type": ["array", "null"], "items": { "type": "string" } },
    "dressingDefault": { "type": ["string", "null"] },
    "dressingOptions": { "type": ["array", "null"], "items": { "type": "string" } },
    "addOnOptions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "price"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "price": { "type": "number", "minimum": 0 }
        }
      }
    },
    "servingSizeG": { "type": ["integer", "null"], "minimum": 0 },
    "calories": { "type": ["integer", "null"], "minimum": 0 },
    "protein": { "type": ["number", "null"], "minimum": 0 },
    "fat": { "type": ["number", "null"], "minimum": 0 },
    "carbs": { "type": ["number", "null"], "minimum": 0 },
    "fiber": { "type": ["number", "null"], "minimum": 0 },
    "sugar": { "type": ["number", "null"], "minimum": 0 },
    "sodium": { "type": ["number", "null"], "minimum": 0 },
    "dietaryTags": { "type": ["array", "null"], "items": { "enum": ["vegan", "vegetarian", "gluten-friendly", "dairy-free", "nut-free", "keto", "paleo"] } },
    "allergens": { "type": ["array", "null"], "items": { "enum": ["Milk", "Eggs", "Fish", "Shellfish", "Peanuts", "Tree nuts", "Soy", "Wheat", "Sesame"] } },
    "priceVariants": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["size", "price"],
        "properties": {
          "size": { "type": "string", "minLength": 1 },
          "price": { "type": "number", "minimum": 0 }
        }
      }
    },
    "taxCategory": { "type": ["string", "null"] },
    "availabilityType": { "enum": ["always", "seasonal"] },
    "availabilityStart": { "type": ["string", "null"], "format": "date-time" },
    "availabilityEnd": { "type": ["string", "null"], "format": "date-time" },
    "imageHero": { "type": ["string", "null"], "format": "uri" },
    "imageThumb": { "type": ["string", "null"], "format": "uri" },
    "altText": { "type": ["string", "null"] },
    "videoUrl": { "type": ["string", "null"], "format": "uri" },
    "displayOrder": { "type": ["integer", "null"] },
    "badges": { "type": ["array", "null"], "items": { "enum": ["new", "best_seller", "seasonal"] } },
    "crossSellIds": { "type": ["array", "null"], "items": { "type": "string" } },
    "carbonKg": { "type": ["number", "null"], "minimum": 0 },
    "packaging": { "type": ["string", "null"] },
    "metaTitle": { "type": ["string", "null"], "maxLength": 60 },
    "metaDescription": { "type": ["string", "null"], "maxLength": 155 }`

const schemaMenuItem = `{
  "type": "object",
  "required": ["id", "name", "price"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string" },` + menuDetailProperties + `
  }
}`

const schemaMenuItemInput = `{
  "type": "object",
  "required": ["name", "category", "slug", "price"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },` + menuDetailProperties + `
  }
}`

const schemaAgent = `{
  "type": "object",
  "required": ["id", "name", "status"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string" },
    "status": { "enum": ["available", "on delivery", "offline"] },
    "completedDeliveries": { "type": "integer", "minimum": 0 },
    "phoneNumber": { "type": "string" },
    "email": { "type": "string" },
    "rating": { "type": "number" },
    "address": { "type": "string" },
    "joinDate": { "type": "string" },
    "currentOrder": {
      "type": ["object", "null"],
      "required": ["id"],
      "properties": { "id": { "type": "string" } }
    }
  }
}`

const schemaUser = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string" },
    "email": { "type": "string" },
    "mobile": { "type": "string" },
    "phoneNumber": { "type": "string" },
    "address": { "type": "string" },
    "registrationDate": { "type": "string" },
    "orderHistory": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": { "id": { "type": "string" }, "total": { "type": "number" } }
      }
    }
  }
}`

const schemaToken = `{
  "type": "object",
  "required": ["token"],
  "properties": {
    "token": { "type": "string", "minLength": 1 }
  }
}`

const schemaAck = `{
  "type": "object",
  "properties": {
    "message": { "type": "string" }
  }
}`

func arrayOf(item string) string {
	return `{ "type": "array", "items": ` + item + ` }`
}

// ---------- JSON schema loaders ----------
var (
	orderLoader          = gojsonschema.NewStringLoader(schemaOrder)
	orderListLoader      = gojsonschema.NewStringLoader(arrayOf(schemaOrder))
	restaurantLoader     = gojsonschema.NewStringLoader(schemaRestaurant)
	restaurantListLoader = gojsonschema.NewStringLoader(arrayOf(schemaRestaurant))
	menuItemLoader       = gojsonschema.NewStringLoader(schemaMenuItem)
	menuListLoader       = gojsonschema.NewStringLoader(arrayOf(schemaMenuItem))
	menuItemInputLoader  = gojsonschema.NewStringLoader(schemaMenuItemInput)
	agentLoader          = gojsonschema.NewStringLoader(schemaAgent)
	agentListLoader      = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["agents"],
  "properties": {
    "agents": ` + arrayOf(schemaAgent) + `,
    "message": { "type": "string" }
  }
}`)
	userLoader     = gojsonschema.NewStringLoader(schemaUser)
	userListLoader = gojsonschema.NewStringLoader(arrayOf(schemaUser))
	tokenLoader    = gojsonschema.NewStringLoader(schemaToken)
	ackLoader      = gojsonschema.NewStringLoader(schemaAck)
)

// validateJSONSchema checks body against the schema and joins every violation into one error.
func validateJSONSchema(schemaLoader gojsonschema.JSONLoader, body []byte) error {
	loader := gojsonschema.NewBytesLoader(body)
	result, err := gojsonschema.Validate(schemaLoader, loader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, e := range result.Errors() {
			sb.WriteString(e.String())
			sb.WriteString("; ")
		}
		return fmt.Errorf("response does not conform to schema: %s", sb.String())
	}
	return nil
}

// ValidateMenuItemInput checks a menu item form before it is sent: required fields, the
// category and tag vocabularies, slug shape, non-negative prices and nutrition, URL fields,
// text limits, and that a seasonal window does not end before it starts.
func ValidateMenuItemInput(in models.MenuItemInput) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name: Name is required")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode menu item: %w", err)
	}
	result, err := gojsonschema.Validate(menuItemInputLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	for _, e := range result.Errors() {
		if e.Field() == "name" && len(problems) > 0 {
			continue
		}
		problems = append(problems, e.Field()+": "+e.Description())
	}
	if in.AvailabilityStart != nil && in.AvailabilityEnd != nil && in.AvailabilityEnd.Before(*in.AvailabilityStart) {
		problems = append(problems, "availabilityEnd: must not be before availabilityStart")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
