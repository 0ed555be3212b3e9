package dashboard

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodDeliveryAdmin/models"
)

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, "edit_status")
	f.fb.JSON(http.MethodPatch, "/orders/o1", http.StatusOK, map[string]any{"id": "o1", "status": "delivered"})
	ctx, toasts := withToasts()

	require.NoError(t, f.ws.UpdateOrderStatus(ctx, "o1", models.OrderStatusDelivered))
	assert.Equal(t, 1, f.fb.Count(http.MethodGet, "/orders"))
	assert.Equal(t, "Order status updated", toasts.Drain()[0].Description)

	assert.ErrorIs(t, f.ws.UpdateOrderStatus(ctx, "o1", "lost"), ErrInvalidInput)
	assert.ErrorIs(t, f.ws.UpdateOrderStatus(ctx, "", models.OrderStatusReady), ErrInvalidInput)
}

func TestDeleteOrder_Failure(t *testing.T) {
	f := newFixture(t, "edit_delete_fail")
	f.fb.JSON(http.MethodDelete, "/orders/o1", http.StatusForbidden, map[string]any{"message": "not allowed"})
	ctx, toasts := withToasts()

	require.Error(t, f.ws.DeleteOrder(ctx, "o1"))
	assert.Equal(t, 0, f.fb.Count(http.MethodGet, "/orders"))
	got := toasts.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "not allowed", got[0].Description)
}

func TestRestaurantEdits(t *testing.T) {
	f := newFixture(t, "edit_restaurants")
	f.fb.JSON(http.MethodPost, "/restaurants", http.StatusCreated, map[string]any{"id": "r2", "name": "Pasta Bar"})
	f.fb.JSON(http.MethodPatch, "/restaurants/r2", http.StatusOK, map[string]any{"id": "r2", "name": "Pasta Bar", "cuisine": "Italian"})
	f.fb.JSON(http.MethodDelete, "/restaurants/r2", http.StatusOK, map[string]any{"message": "deleted"})
	f.fb.JSON(http.MethodGet, "/restaurants/r1/menu", http.StatusOK, []map[string]any{{"id": "m1", "name": "Dosa", "price": 5}})
	f.fb.JSON(http.MethodPost, "/restaurants/r1/menu", http.StatusCreated, map[string]any{"id": "m2", "name": "Idli", "price": 3})
	ctx := context.Background()
	require.NoError(t, f.ws.OpenModal(ModalAddRestaurant))

	require.NoError(t, f.ws.CreateRestaurant(ctx, models.RestaurantInput{Name: "Pasta Bar"}))
	assert.Equal(t, ModalNone, f.ws.Modal())
	require.NoError(t, f.ws.UpdateRestaurant(ctx, "r2", models.RestaurantInput{Cuisine: "Italian"}))
	require.NoError(t, f.ws.DeleteRestaurant(ctx, "r2"))
	assert.Equal(t, 3, f.fb.Count(http.MethodGet, "/restaurants"))

	assert.ErrorIs(t, f.ws.CreateRestaurant(ctx, models.RestaurantInput{}), ErrInvalidInput)

	menu, err := f.ws.AddMenuItem(ctx, "r1", validMenuItem())
	require.NoError(t, err)
	assert.Len(t, menu, 1)
	posted := f.fb.Calls()
	body := posted[len(posted)-2].Body
	assert.Equal(t, "always", body["availabilityType"])
	assert.Equal(t, "idli-plate", body["slug"])

	bad := validMenuItem()
	bad.Price = -1
	_, err = f.ws.AddMenuItem(ctx, "r1", bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func validMenuItem() models.MenuItemInput {
	return models.MenuItemInput{
		Name:  "Idli",
		Price: 3,
		MenuItemDetails: models.MenuItemDetails{
			Category: "Warm Bowls",
			Slug:     "idli-plate",
		},
	}
}

func TestAddMenuItem_FormLimits(t *testing.T) {
	f := newFixture(t, "edit_menu_limits")
	f.fb.JSON(http.MethodPost, "/restaurants/r1/menu", http.StatusCreated, map[string]any{"id": "m2", "name": "Idli", "price": 3})
	f.fb.JSON(http.MethodGet, "/restaurants/r1/menu", http.StatusOK, []map[string]any{})
	neg := -1.0
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	cases := map[string]struct {
		edit func(*models.MenuItemInput)
		want string
	}{
		"blank name":        {func(in *models.MenuItemInput) { in.Name = "  " }, "Name is required"},
		"missing category":  {func(in *models.MenuItemInput) { in.Category = "" }, "category is required"},
		"unknown category":  {func(in *models.MenuItemInput) { in.Category = "Pizza" }, "category"},
		"slug shape":        {func(in *models.MenuItemInput) { in.Slug = "Idli Plate" }, "slug"},
		"short description": {func(in *models.MenuItemInput) { in.ShortDescription = strings.Repeat("x", 141) }, "shortDescription"},
		"meta title":        {func(in *models.MenuItemInput) { in.MetaTitle = strings.Repeat("x", 61) }, "metaTitle"},
		"meta description":  {func(in *models.MenuItemInput) { in.MetaDescription = strings.Repeat("x", 156) }, "metaDescription"},
		"variant price": {func(in *models.MenuItemInput) {
			in.PriceVariants = []models.PriceVariant{{Size: "L", Price: -2}}
		}, "priceVariants"},
		"dietary tag":   {func(in *models.MenuItemInput) { in.DietaryTags = []string{"carnivore"} }, "dietaryTags"},
		"allergen":      {func(in *models.MenuItemInput) { in.Allergens = []string{"Gluten"} }, "allergens"},
		"badge":         {func(in *models.MenuItemInput) { in.Badges = []string{"hot"} }, "badges"},
		"availability":  {func(in *models.MenuItemInput) { in.AvailabilityType = "weekends" }, "availabilityType"},
		"nutrition":     {func(in *models.MenuItemInput) { in.Protein = &neg }, "protein"},
		"image url":     {func(in *models.MenuItemInput) { in.ImageHero = "not a url" }, "imageHero"},
		"window order": {func(in *models.MenuItemInput) {
			in.AvailabilityType = models.AvailabilitySeasonal
			in.AvailabilityStart, in.AvailabilityEnd = &start, &end
		}, "availabilityEnd"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, toasts := withToasts()
			in := validMenuItem()
			tc.edit(&in)
			_, err := f.ws.AddMenuItem(ctx, "r1", in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.want)
			got := toasts.Drain()
			require.Len(t, got, 1)
			assert.Equal(t, "Invalid Menu Item", got[0].Title)
		})
	}
	assert.Equal(t, 0, f.fb.Count(http.MethodPost, "/restaurants/r1/menu"))

	ctx := context.Background()
	ok := validMenuItem()
	ok.AvailabilityType = models.AvailabilitySeasonal
	later := start.AddDate(0, 2, 0)
	ok.AvailabilityStart, ok.AvailabilityEnd = &start, &later
	ok.PriceVariants = []models.PriceVariant{{Size: "Regular", Price: 3}, {Size: "Large", Price: 4.5}}
	ok.DietaryTags = []string{"vegan", "gluten-friendly"}
	ok.Allergens = []string{"Sesame"}
	ok.ImageHero = "https://cdn.example.com/idli.jpg"
	ok.MetaTitle = strings.Repeat("x", 60)
	_, err := f.ws.AddMenuItem(ctx, "r1", ok)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fb.Count(http.MethodPost, "/restaurants/r1/menu"))
}

func TestAgentEditsAndUser(t *testing.T) {
	f := newFixture(t, "edit_agents")
	f.fb.JSON(http.MethodPost, "/agents", http.StatusCreated, map[string]any{"id": "a2", "name": "Meena", "status": "offline"})
	f.fb.JSON(http.MethodPatch, "/agents/a2", http.StatusOK, map[string]any{"id": "a2", "name": "Meena", "status": "available"})
	f.fb.JSON(http.MethodDelete, "/agents/a2", http.StatusOK, map[string]any{})
	f.fb.JSON(http.MethodGet, "/users/u1", http.StatusOK, map[string]any{"id": "u1", "name": "Jane Doe", "orderHistory": []map[string]any{{"id": "o1", "total": 10}}})
	ctx := context.Background()

	require.NoError(t, f.ws.CreateAgent(ctx, models.AgentInput{Name: "Meena", Status: models.AgentStatusOffline}))
	require.NoError(t, f.ws.UpdateAgent(ctx, "a2", models.AgentInput{Status: models.AgentStatusAvailable}))
	require.NoError(t, f.ws.DeleteAgent(ctx, "a2"))
	assert.Equal(t, 3, f.fb.Count(http.MethodGet, "/agents"))
	assert.ErrorIs(t, f.ws.UpdateAgent(ctx, "a2", models.AgentInput{Status: "asleep"}), ErrInvalidInput)

	u, err := f.ws.User(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.OrderHistory, 1)
	_, err = f.ws.User(ctx, "missing")
	assert.Error(t, err)
}

func TestDetailFetches(t *testing.T) {
	f := newFixture(t, "edit_details")
	f.fb.JSON(http.MethodGet, "/orders/o1", http.StatusOK, map[string]any{
		"id": "o1", "customerName": "Jane Doe", "status": "ready", "total": 10,
		"items": []map[string]any{{"name": "Dosa", "quantity": 2, "price": 5}},
	})
	f.fb.JSON(http.MethodGet, "/restaurants/r1", http.StatusOK, map[string]any{"id": "r1", "name": "Spice Hub", "cuisine": "Indian"})
	f.fb.JSON(http.MethodGet, "/agents/a1", http.StatusOK, map[string]any{
		"id": "a1", "name": "Ravi", "status": "on delivery", "currentOrder": map[string]any{"id": "o1"},
	})
	ctx, toasts := withToasts()

	o, err := f.ws.Order(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 10.0, models.OrderTotal(o.Items))

	r, err := f.ws.Restaurant(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Indian", r.Cuisine)

	a, err := f.ws.Agent(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.CurrentOrder)
	assert.Equal(t, "o1", a.CurrentOrder.ID)
	assert.Empty(t, toasts.Drain())

	_, err = f.ws.Agent(ctx, "a9")
	require.Error(t, err)
	got := toasts.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Error", got[0].Title)

	_, err = f.ws.Order(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, f.fb.Count(http.MethodGet, "/orders/ "))
}
