package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

type recipeBody struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Text        string `json:"text"`
	CookingTime int    `json:"cooking_time"`
	IsFavorited bool   `json:"is_favorited"`
	InCart      bool   `json:"is_in_shopping_cart"`
	Author      struct {
		Username string `json:"username"`
	} `json:"author"`
	Tags []struct {
		Slug string `json:"slug"`
	} `json:"tags"`
	Ingredients []struct {
		Name   string `json:"name"`
		Amount int    `json:"amount"`
	} `json:"ingredients"`
}

func seedReferenceData(t *testing.T, db *gorm.DB) (tag *models.Tag, flour, sugar *models.Ingredient) {
	t.Helper()
	tag = &models.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"}
	require.NoError(t, db.Create(tag).Error)
	flour = &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(flour).Error)
	sugar = &models.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	require.NoError(t, db.Create(sugar).Error)
	return tag, flour, sugar
}

func createRecipeViaAPI(t *testing.T, router *gin.Engine, token string, name string, tag *models.Tag, lines ...gin.H) recipeBody {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         name,
		"text":         "Combine and cook.",
		"cooking_time": 30,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients":  lines,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var recipe recipeBody
	decodeBody(t, w, &recipe)
	return recipe
}

func TestRecipeCRUD(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, sugar := seedReferenceData(t, db)
	token, _ := registerUser(t, router, "chef")

	recipe := createRecipeViaAPI(t, router, token, "Shortbread", tag,
		gin.H{"id": flour.ID, "amount": 200},
		gin.H{"id": sugar.ID, "amount": 50},
	)
	assert.Equal(t, "Shortbread", recipe.Name)
	assert.Equal(t, "chef", recipe.Author.Username)
	require.Len(t, recipe.Tags, 1)
	assert.Len(t, recipe.Ingredients, 2)

	// anonymous read works
	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+recipe.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// update rewrites the ingredient set
	w = doJSON(t, router, http.MethodPut, "/api/v1/recipes/"+recipe.ID, token, gin.H{
		"name":         "Better Shortbread",
		"text":         "Combine gently, then cook.",
		"cooking_time": 45,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients":  []gin.H{{"id": sugar.ID, "amount": 75}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated recipeBody
	decodeBody(t, w, &updated)
	assert.Equal(t, "Better Shortbread", updated.Name)
	assert.Equal(t, 45, updated.CookingTime)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "sugar", updated.Ingredients[0].Name)
	assert.Equal(t, 75, updated.Ingredients[0].Amount)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+recipe.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+recipe.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeUpdateByNonAuthorForbidden(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, _ := seedReferenceData(t, db)
	authorToken, _ := registerUser(t, router, "author")
	intruderToken, _ := registerUser(t, router, "intruder")

	recipe := createRecipeViaAPI(t, router, authorToken, "Cake", tag, gin.H{"id": flour.ID, "amount": 300})

	w := doJSON(t, router, http.MethodPut, "/api/v1/recipes/"+recipe.ID, intruderToken, gin.H{
		"name":         "Stolen Cake",
		"text":         "Mine now.",
		"cooking_time": 5,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+recipe.ID, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecipeValidationErrors(t *testing.T) {
	router, db := setupRouter(t)
	_, flour, _ := seedReferenceData(t, db)
	token, _ := registerUser(t, router, "chef")

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "Broken",
		"text":         "No tags, zero amount.",
		"cooking_time": 0,
		"tags":         []uuid.UUID{},
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 0}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, w, &resp)
	assert.Contains(t, resp.Errors, "cooking_time")
	assert.Contains(t, resp.Errors, "tags")
	assert.Contains(t, resp.Errors, "amount")
	assert.Contains(t, resp.Errors["amount"], "flour")
}

func TestFavoriteAndCartEndpoints(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, _ := seedReferenceData(t, db)
	authorToken, _ := registerUser(t, router, "author")
	fanToken, _ := registerUser(t, router, "fan")

	recipe := createRecipeViaAPI(t, router, authorToken, "Cake", tag, gin.H{"id": flour.ID, "amount": 300})

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/"+recipe.ID+"/favorite", fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/"+recipe.ID+"/favorite", fanToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/"+recipe.ID+"/shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// flags show up on the detail view for the caller
	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+recipe.ID, fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail recipeBody
	decodeBody(t, w, &detail)
	assert.True(t, detail.IsFavorited)
	assert.True(t, detail.InCart)

	// and stay false for everybody else
	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+recipe.ID, authorToken, nil)
	decodeBody(t, w, &detail)
	assert.False(t, detail.IsFavorited)
	assert.False(t, detail.InCart)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+recipe.ID+"/favorite", fanToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+recipe.ID+"/favorite", fanToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeListFilters(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, _ := seedReferenceData(t, db)
	lunch := &models.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	require.NoError(t, db.Create(lunch).Error)

	aliceToken, aliceID := registerUser(t, router, "alice")
	bobToken, _ := registerUser(t, router, "bob")

	cake := createRecipeViaAPI(t, router, aliceToken, "Cake", tag, gin.H{"id": flour.ID, "amount": 300})
	createRecipeViaAPI(t, router, bobToken, "Soup", lunch, gin.H{"id": flour.ID, "amount": 10})

	var page struct {
		Count   int64        `json:"count"`
		Results []recipeBody `json:"results"`
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes?author="+aliceID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &page)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Cake", page.Results[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes?tags=lunch", "", nil)
	decodeBody(t, w, &page)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Soup", page.Results[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes?tags=lunch&tags=dinner", "", nil)
	decodeBody(t, w, &page)
	assert.EqualValues(t, 2, page.Count)

	// favorited filter is caller-scoped
	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes/"+cake.ID+"/favorite", bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes?is_favorited=true", bobToken, nil)
	decodeBody(t, w, &page)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Cake", page.Results[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes?is_favorited=true", aliceToken, nil)
	decodeBody(t, w, &page)
	assert.EqualValues(t, 0, page.Count)
}

func TestDownloadShoppingCart(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, sugar := seedReferenceData(t, db)
	authorToken, _ := registerUser(t, router, "author")
	shopperToken, _ := registerUser(t, router, "shopper")

	cake := createRecipeViaAPI(t, router, authorToken, "Cake", tag,
		gin.H{"id": flour.ID, "amount": 200},
		gin.H{"id": sugar.ID, "amount": 50},
	)
	bread := createRecipeViaAPI(t, router, authorToken, "Bread", tag,
		gin.H{"id": flour.ID, "amount": 100},
	)

	for _, id := range []string{cake.ID, bread.ID} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/"+id+"/shopping_cart", shopperToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/download_shopping_cart", shopperToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Ingredient list:\n\n1. flour (g) - 300\n2. sugar (g) - 50\n", w.Body.String())
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	router, _ := setupRouter(t)
	token, _ := registerUser(t, router, "shopper")

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ingredient list:\n\n", w.Body.String())
}

func TestTagAndIngredientEndpoints(t *testing.T) {
	router, db := setupRouter(t)
	tag, flour, _ := seedReferenceData(t, db)

	w := doJSON(t, router, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dinner")

	w = doJSON(t, router, http.MethodGet, "/api/v1/tags/"+tag.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/ingredients?name=fl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flour")

	// prefix match only
	w = doJSON(t, router, http.MethodGet, "/api/v1/ingredients?name=our", "", nil)
	assert.NotContains(t, w.Body.String(), "flour")

	w = doJSON(t, router, http.MethodGet, "/api/v1/ingredients/"+flour.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/ingredients/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
