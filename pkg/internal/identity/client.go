package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultPageSize is the provider's page cap for batch user lookups.
// Asking for more distinct users than this silently truncates the result.
const DefaultPageSize = 100

// Client talks to the external identity provider's user API.
// The provider owns user records; we only ever read them.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewClient() *Client {
	return &Client{
		endpoint: strings.TrimSuffix(viper.GetString("identity.endpoint"), "/"),
		token:    viper.GetString("identity.token"),
		http:     http.DefaultClient,
	}
}

// GetUserList fetches the accounts matching the given user ids in one call.
// Duplicate ids are passed through as-is; the provider decides what to do
// with them. Ids with no matching account are simply absent from the result,
// which callers must treat as a possibility rather than an error.
func (v *Client) GetUserList(ctx context.Context, ids []string, limit int) ([]models.Account, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("user_id", id)
	}
	query.Set("limit", strconv.Itoa(limit))

	return v.fetchUsers(ctx, query)
}

// GetUserByUsername resolves a single account by its handle.
func (v *Client) GetUserByUsername(ctx context.Context, username string) (models.Account, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("limit", "1")

	users, err := v.fetchUsers(ctx, query)
	if err != nil {
		return models.Account{}, err
	}
	if len(users) == 0 {
		return models.Account{}, fmt.Errorf("no account with username %s", username)
	}
	return users[0], nil
}

func (v *Client) fetchUsers(ctx context.Context, query url.Values) ([]models.Account, error) {
	uri := fmt.Sprintf("%s/v1/users?%s", v.endpoint, query.Encode())
	log.Debug().Str("url", uri).Msg("Fetching users from identity provider...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+v.token)

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, body)
	}

	var users []models.Account
	if err := jsoniter.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to parse user list JSON: %v", err)
	}

	return users, nil
}
