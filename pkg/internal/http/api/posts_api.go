package api

import (
	"errors"

	"github.com/chirpfeed/chirp/pkg/internal/database"
	"github.com/chirpfeed/chirp/pkg/internal/http/exts"
	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/chirpfeed/chirp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func listPosts(c *fiber.Ctx) error {
	posts, err := services.ListRecentPosts(database.C, services.FeedPageSize)
	if err != nil {
		return serviceError(err)
	}

	items, err := services.EnrichPosts(c.UserContext(), posts)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(items)
}

func getPost(c *fiber.Ctx) error {
	id := c.Params("postId")

	post, err := services.GetPost(database.C, id)
	if err != nil {
		return serviceError(err)
	}

	items, err := services.EnrichPosts(c.UserContext(), []models.Post{post})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(items[0])
}

func createPost(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || len(userID) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var data struct {
		Content string `json:"content" validate:"required,min=1,max=255,emoji"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	post, err := services.CreatePost(c.UserContext(), userID, data.Content)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(post)
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		return fiber.NewError(fiber.StatusTooManyRequests, "Please try again in a minute!")
	case errors.Is(err, services.ErrAuthorMissing):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
