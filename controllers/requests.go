package controllers

import (
	"net/http"

	"outfitapi/models"
	"outfitapi/wardrobe"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type UserRequestResponse struct {
	ID        uint   `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

type RequestsListResponse struct {
	Requests []UserRequestResponse `json:"requests"`
}

// RequestsController exposes the read side of the request log. There is no
// write surface here: rows only appear through the generate flow.
type RequestsController struct{}

func (controller *RequestsController) RequestRoutes(g *echo.Group) {
	g.GET("", controller.ListRequests)
}

func (controller *RequestsController) ListRequests(c echo.Context) error {
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	store := wardrobe.NewStore(db)

	requests, err := store.ListRequests()
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get requests"})
	}
	response := RequestsListResponse{Requests: []UserRequestResponse{}}
	for _, request := range requests {
		response.Requests = append(response.Requests, toRequestResponse(request))
	}
	return c.JSON(http.StatusOK, response)
}

func toRequestResponse(request models.UserRequest) UserRequestResponse {
	return UserRequestResponse{
		ID:        request.ID,
		Query:     request.Query,
		Response:  request.Response,
		CreatedAt: request.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
