package services

import (
	"context"
	"fmt"

	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/samber/lo"
)

// AccountSource is the read side of the identity provider.
// Satisfied by *identity.Client.
type AccountSource interface {
	GetUserList(ctx context.Context, ids []string, limit int) ([]models.Account, error)
	GetUserByUsername(ctx context.Context, username string) (models.Account, error)
}

// Accounts is wired to the identity client at boot.
var Accounts AccountSource

// EnrichPosts joins posts with their authors' identity records, one batch
// lookup for the whole slice. Output order matches input order.
//
// The join is strict: a post whose author cannot be resolved, or resolves
// to an account without a username, fails the whole call rather than
// being dropped. Every stored post is supposed to have a usable author.
func EnrichPosts(ctx context.Context, posts []models.Post) ([]models.EnrichedPost, error) {
	if len(posts) == 0 {
		return []models.EnrichedPost{}, nil
	}

	authorIDs := lo.Uniq(lo.Map(posts, func(post models.Post, _ int) string {
		return post.AuthorID
	}))

	users, err := Accounts.GetUserList(ctx, authorIDs, FeedPageSize)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch post authors: %w", err)
	}

	out := make([]models.EnrichedPost, 0, len(posts))
	for _, post := range posts {
		author, ok := lo.Find(users, func(user models.Account) bool {
			return user.ID == post.AuthorID
		})
		if !ok || author.Username == nil || len(*author.Username) == 0 {
			return nil, fmt.Errorf("%w: post %s, author %s", ErrAuthorMissing, post.ID, post.AuthorID)
		}

		out = append(out, models.EnrichedPost{
			Post: post,
			Author: models.Author{
				ID:       author.ID,
				Username: *author.Username,
				Avatar:   author.Avatar,
			},
		})
	}

	return out, nil
}
