package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccountSource struct {
	users []models.Account
	calls int
	ids   []string
}

func (v *stubAccountSource) GetUserList(_ context.Context, ids []string, _ int) ([]models.Account, error) {
	v.calls++
	v.ids = ids
	return v.users, nil
}

func (v *stubAccountSource) GetUserByUsername(_ context.Context, username string) (models.Account, error) {
	for _, user := range v.users {
		if user.Username != nil && *user.Username == username {
			return user, nil
		}
	}
	return models.Account{}, fmt.Errorf("no account with username %s", username)
}

func fakeAccount() models.Account {
	return models.Account{
		ID:       gofakeit.UUID(),
		Username: lo.ToPtr(gofakeit.Username()),
		Avatar:   gofakeit.URL(),
	}
}

func TestEnrichPostsJoinsAuthors(t *testing.T) {
	alice, bob := fakeAccount(), fakeAccount()
	source := &stubAccountSource{users: []models.Account{alice, bob}}
	Accounts = source

	posts := []models.Post{
		{ID: "p1", AuthorID: bob.ID, Content: "🎉"},
		{ID: "p2", AuthorID: alice.ID, Content: "😀"},
		{ID: "p3", AuthorID: bob.ID, Content: "🚀"},
	}

	items, err := EnrichPosts(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Output order mirrors input order.
	assert.Equal(t, "p1", items[0].Post.ID)
	assert.Equal(t, *bob.Username, items[0].Author.Username)
	assert.Equal(t, "p2", items[1].Post.ID)
	assert.Equal(t, *alice.Username, items[1].Author.Username)
	assert.Equal(t, "p3", items[2].Post.ID)

	// One batch lookup for the whole slice, distinct ids only.
	assert.Equal(t, 1, source.calls)
	assert.Len(t, source.ids, 2)
}

func TestEnrichPostsMissingAuthorFailsWhole(t *testing.T) {
	alice := fakeAccount()
	Accounts = &stubAccountSource{users: []models.Account{alice}}

	posts := []models.Post{
		{ID: "p1", AuthorID: alice.ID, Content: "🎉"},
		{ID: "p2", AuthorID: gofakeit.UUID(), Content: "😀"},
	}

	items, err := EnrichPosts(context.Background(), posts)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, ErrAuthorMissing)
}

func TestEnrichPostsNamelessAuthorFailsWhole(t *testing.T) {
	ghost := models.Account{ID: gofakeit.UUID(), Avatar: gofakeit.URL()}
	Accounts = &stubAccountSource{users: []models.Account{ghost}}

	_, err := EnrichPosts(context.Background(), []models.Post{
		{ID: "p1", AuthorID: ghost.ID, Content: "🎉"},
	})
	assert.ErrorIs(t, err, ErrAuthorMissing)
}

func TestEnrichPostsEmptyInput(t *testing.T) {
	source := &stubAccountSource{}
	Accounts = source

	items, err := EnrichPosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, source.calls)
}
