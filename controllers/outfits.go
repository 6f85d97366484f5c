package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"outfitapi/agent"
	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/wardrobe"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type GenerateOutfitIn struct {
	Occasion    string `json:"occasion" validate:"required,max=100"`
	Preferences string `json:"preferences" validate:"omitempty,max=2000"`
}

// StylistQuery renders the request as the natural-language turn the agent
// sees; this exact text is what lands in the request log.
func (req GenerateOutfitIn) StylistQuery() string {
	query := fmt.Sprintf("Recommend an outfit for this occasion: %s.", req.Occasion)
	if req.Preferences != "" {
		query += " Preferences: " + req.Preferences
	}
	return query
}

type CreateOutfitIn struct {
	Name        string `json:"name" validate:"required,max=100"`
	ClothingIDs []uint `json:"clothing_ids" validate:"required,min=1"`
	Occasion    string `json:"occasion" validate:"omitempty,max=100"`
}

type OutfitItemResponse struct {
	ItemOrder int              `json:"item_order"`
	Clothing  ClothingResponse `json:"clothing"`
}

type OutfitResponse struct {
	ID        uint                 `json:"id"`
	Name      string               `json:"name"`
	Occasion  *string              `json:"occasion"`
	Items     []OutfitItemResponse `json:"items"`
	CreatedAt string               `json:"created_at"`
}

type OutfitsListResponse struct {
	Outfits []OutfitResponse `json:"outfits"`
}

type RecommendationResponse struct {
	Text  string             `json:"text"`
	Items []ClothingResponse `json:"items"`
}

type OutfitsController struct {
	Agent agent.StepClient
	LLM   services.LLMProvider
	Files services.FileStoreProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfit)
	g.POST("", controller.CreateOutfit)
	g.GET("", controller.ListOutfits)
	g.GET("/:outfitId", controller.GetOutfit)
}

func (controller *OutfitsController) clothesController() *ClothesController {
	return &ClothesController{LLM: controller.LLM, Files: controller.Files}
}

func (controller *OutfitsController) toResponse(c echo.Context, outfit *models.Outfit) OutfitResponse {
	clothes := controller.clothesController()
	response := OutfitResponse{
		ID:        outfit.ID,
		Name:      outfit.Name,
		Occasion:  outfit.Occasion,
		Items:     []OutfitItemResponse{},
		CreatedAt: outfit.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for i := range outfit.Items {
		member := &outfit.Items[i]
		response.Items = append(response.Items, OutfitItemResponse{
			ItemOrder: member.ItemOrder,
			Clothing:  clothes.toResponse(c, member.ClothingItem),
		})
	}
	return response
}

// GenerateOutfit runs the stylist agent over the wardrobe. Every request is
// logged, also when the agent fails, so the audit trail stays complete.
func (controller *OutfitsController) GenerateOutfit(c echo.Context) error {
	var req GenerateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	snapshot, err := store.Snapshot()
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load wardrobe"})
	}

	registry := agent.NewRegistry(store, controller.LLM, controller.Files)
	loop := agent.NewLoop(controller.Agent, registry)

	query := req.StylistQuery()
	answer, err := loop.Run(c.Request().Context(), snapshot, query)
	if err != nil {
		fmt.Println("Agent run failed:", err)
		sentry.CaptureException(err)
		// answer may hold a partial draft; the log keeps whatever survived
		if logErr := store.LogRequest(query, answer); logErr != nil {
			sentry.CaptureException(logErr)
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Stylist is unavailable right now, please try again"})
	}

	if err := store.LogRequest(query, answer); err != nil {
		sentry.CaptureException(err)
	}

	recommendation, err := agent.Extract(answer, store)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve recommended items"})
	}

	clothes := controller.clothesController()
	response := RecommendationResponse{Text: recommendation.Text, Items: []ClothingResponse{}}
	for i := range recommendation.Items {
		response.Items = append(response.Items, clothes.toResponse(c, &recommendation.Items[i]))
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *OutfitsController) CreateOutfit(c echo.Context) error {
	var req CreateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	for _, clothingID := range req.ClothingIDs {
		if _, err := store.GetItem(clothingID); errors.Is(err, wardrobe.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Clothing item %d does not exist", clothingID)})
		}
	}

	outfit, err := store.SaveOutfit(req.Name, req.ClothingIDs, req.Occasion)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfit"})
	}
	return c.JSON(http.StatusCreated, controller.toResponse(c, outfit))
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	outfits, err := store.ListOutfits()
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfits"})
	}
	response := OutfitsListResponse{Outfits: []OutfitResponse{}}
	for i := range outfits {
		response.Outfits = append(response.Outfits, controller.toResponse(c, &outfits[i]))
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *OutfitsController) GetOutfit(c echo.Context) error {
	outfitID, err := ParseUintParam(c.Param("outfitId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid outfit id"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	outfit, err := store.GetOutfit(outfitID)
	if errors.Is(err, wardrobe.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit"})
	}
	return c.JSON(http.StatusOK, controller.toResponse(c, outfit))
}
