package api

import "github.com/gofiber/fiber/v2"

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL)
	{
		posts := api.Group("/posts")
		{
			posts.Get("/", listPosts)
			posts.Get("/:postId", getPost)
			posts.Post("/", createPost)
		}

		users := api.Group("/users")
		{
			users.Get("/lookup", lookupUser)
			users.Get("/:userId/posts", listUserPosts)
		}
	}
}
