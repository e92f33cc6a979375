package services

import (
	"context"
	"fmt"

	"github.com/chirpfeed/chirp/pkg/internal/database"
	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FeedPageSize caps every feed read. The same cap is handed to the
// identity provider during enrichment, so one page of posts can always
// be resolved in a single user lookup.
const FeedPageSize = 100

func ListRecentPosts(tx *gorm.DB, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > FeedPageSize {
		limit = FeedPageSize
	}

	var posts []models.Post
	if err := tx.
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("unable to list posts: %w", err)
	}

	return posts, nil
}

func ListPostsByAuthor(tx *gorm.DB, authorID string, limit int) ([]models.Post, error) {
	return ListRecentPosts(tx.Where("author_id = ?", authorID), limit)
}

func GetPost(tx *gorm.DB, id string) (models.Post, error) {
	var post models.Post
	if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
		return post, fmt.Errorf("unable to get post %s: %w", id, err)
	}
	return post, nil
}

// NewPost persists a post for an author that already passed validation
// and the rate limiter. The store assigns the id and timestamp.
func NewPost(authorID, content string) (models.Post, error) {
	post := models.Post{
		AuthorID: authorID,
		Content:  content,
	}

	if err := database.C.Create(&post).Error; err != nil {
		return post, fmt.Errorf("unable to create post: %w", err)
	}

	return post, nil
}

// CreatePost runs the write path for an authenticated author: rate check
// first, store write second. A rejected attempt leaves no trace in the
// store.
func CreatePost(ctx context.Context, authorID, content string) (models.Post, error) {
	decision, err := TryAcquire(ctx, authorID)
	if err != nil {
		return models.Post{}, fmt.Errorf("unable to check posting quota: %w", err)
	}
	if !decision.Allowed {
		log.Info().Str("author", authorID).Msg("Posting attempt rejected by rate limiter.")
		return models.Post{}, ErrRateLimited
	}

	return NewPost(authorID, content)
}
