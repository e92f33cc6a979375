package api

import (
	"github.com/chirpfeed/chirp/pkg/internal/database"
	"github.com/chirpfeed/chirp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listUserPosts(c *fiber.Ctx) error {
	userID := c.Params("userId")

	posts, err := services.ListPostsByAuthor(database.C, userID, services.FeedPageSize)
	if err != nil {
		return serviceError(err)
	}

	items, err := services.EnrichPosts(c.UserContext(), posts)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(items)
}

func lookupUser(c *fiber.Ctx) error {
	username := c.Query("username")
	if len(username) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "username is required")
	}

	account, err := services.Accounts.GetUserByUsername(c.UserContext(), username)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return c.JSON(account)
}
