package controllers

import (
	"net/http"

	"outfitapi/agent"
	"outfitapi/services"

	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	llm services.LLMProvider,
	stepClient agent.StepClient,
	files services.FileStoreProvider,
	asynqClient *asynq.Client,
) *echo.Echo {

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// local uploads are served directly; S3-backed deployments return
	// presigned URLs instead and never hit this route
	if localStore, ok := files.(*services.LocalFileStore); ok {
		e.Static("/uploads", localStore.Dir)
	}

	clothesController := ClothesController{LLM: llm, Files: files}
	clothesGroup := e.Group("/api/clothes")
	clothesController.ClothingRoutes(clothesGroup)

	outfitsController := OutfitsController{Agent: stepClient, LLM: llm, Files: files}
	outfitsGroup := e.Group("/api/outfits")
	outfitsController.OutfitRoutes(outfitsGroup)

	requestsController := RequestsController{}
	requestsGroup := e.Group("/api/requests")
	requestsController.RequestRoutes(requestsGroup)

	return e
}
