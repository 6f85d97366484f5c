package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/tasks"
	"outfitapi/wardrobe"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Request structs for validation
type CreateClothingIn struct {
	ImagePath string              `json:"image_path" validate:"required,max=300"`
	Name      string              `json:"name" validate:"omitempty,max=100"`
	Tags      map[string][]string `json:"tags" validate:"required"`
}

// Response structs
type ClothingResponse struct {
	ID        uint                `json:"id"`
	Name      *string             `json:"name"`
	ImagePath string              `json:"image_path"`
	ImageURL  string              `json:"image_url,omitempty"`
	Tags      map[string][]string `json:"tags"`
	CreatedAt string              `json:"created_at"`
}

type ClothingUploadResponse struct {
	ImagePath string `json:"image_path"`
	Analysis  string `json:"analysis"`
}

type ClothesListResponse struct {
	Clothes []ClothingResponse `json:"clothes"`
}

type ClothesController struct {
	LLM   services.LLMProvider
	Files services.FileStoreProvider
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.POST("/upload", controller.UploadClothing)
	g.POST("", controller.CreateClothing)
	g.GET("", controller.ListClothes)
	g.GET("/:clothingId", controller.GetClothing)
	g.DELETE("/:clothingId", controller.DeleteClothing)
}

func (controller *ClothesController) toResponse(c echo.Context, item *models.ClothingItem) ClothingResponse {
	url, err := controller.Files.ReadURL(c.Request().Context(), item.ImagePath)
	if err != nil {
		fmt.Println("Error resolving image URL for", item.ImagePath, err)
		url = ""
	}
	return ClothingResponse{
		ID:        item.ID,
		Name:      item.Name,
		ImagePath: item.ImagePath,
		ImageURL:  url,
		Tags:      item.TagMap(),
		CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// UploadClothing stores the photo and runs the vision model over it. The
// item itself is not created yet; the client confirms with POST /api/clothes.
func (controller *ClothesController) UploadClothing(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.IsImagePath(fileHeader.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported image type, please upload a photo"})
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read uploaded file"})
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read uploaded file"})
	}

	imagePath, err := controller.Files.Save(fileHeader.Filename, content)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	localPath, err := controller.Files.Open(imagePath)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store image"})
	}
	analysis, err := controller.LLM.AnalyzeClothing(c.Request().Context(), localPath, services.Flash25)
	if err != nil {
		fmt.Println("Error analyzing clothing image:", imagePath, err)
		sentry.CaptureException(err)
		// the image is stored either way, the client can still tag manually
		return c.JSON(http.StatusOK, ClothingUploadResponse{ImagePath: imagePath})
	}

	return c.JSON(http.StatusOK, ClothingUploadResponse{
		ImagePath: imagePath,
		Analysis:  analysis.Response,
	})
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
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

	item, err := store.SaveItem(req.ImagePath, services.StrPointer(req.Name), req.Tags)
	if errors.Is(err, wardrobe.ErrDuplicateImage) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "This image is already used by another clothing item"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save clothing item"})
	}

	return c.JSON(http.StatusCreated, controller.toResponse(c, item))
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	filters := wardrobe.TagFilter{}
	for _, category := range []string{"type", "color", "category", "occasion", "style"} {
		if value := c.QueryParam(category); value != "" {
			filters[category] = value
		}
	}

	items, err := store.Query(filters)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothes"})
	}

	response := ClothesListResponse{Clothes: []ClothingResponse{}}
	for i := range items {
		response.Clothes = append(response.Clothes, controller.toResponse(c, &items[i]))
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *ClothesController) GetClothing(c echo.Context) error {
	clothingID, err := ParseUintParam(c.Param("clothingId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothing id"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	item, err := store.GetItem(clothingID)
	if errors.Is(err, wardrobe.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Clothing item not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothing item"})
	}
	return c.JSON(http.StatusOK, controller.toResponse(c, item))
}

// DeleteClothing removes the item and hands the image file to the cleanup
// worker. File removal is best effort: a broken queue never fails the delete.
func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	clothingID, err := ParseUintParam(c.Param("clothingId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothing id"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	imagePath, err := store.DeleteItem(clothingID)
	if errors.Is(err, wardrobe.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Clothing item not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete clothing item"})
	}

	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if ok && asynqClient != nil {
		task, err := tasks.NewImageCleanupTask(imagePath)
		if err == nil {
			_, err = asynqClient.Enqueue(task)
		}
		if err != nil {
			fmt.Println("Failed to enqueue image cleanup for", imagePath, err)
			sentry.CaptureException(err)
		}
	} else if err := controller.Files.Remove(imagePath); err != nil {
		fmt.Println("Failed to remove image", imagePath, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Clothing item deleted"})
}
