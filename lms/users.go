package lms

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// NewUser describes an account created through the legacy create-user
// endpoint. Site, Department and Team are node names.
type NewUser struct {
	ContextNodeID int
	Site          string
	Department    string
	Team          string
	Username      string
	Firstname     string
	Lastname      string
	Email         string
	Password      string
	ExternalID    string
}

// GetUserByUsername finds an active user, comparing usernames without
// regard to case.
func (c *Client) GetUserByUsername(ctx context.Context, contextNodeID int, username string) (*UserInfo, error) {
	const op = "GetUserByUsername"
	spec := SimpleQuerySpec{
		ContextNodeID: optionalID(contextNodeID),
		NodeState:     NodeStateActive,
		SearchString:  username,
	}

	users, err := queryList[User](ctx, c, op, "/users", spec)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return userInfo(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

// CreateUser creates an account and returns it as read back by username.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (*UserInfo, error) {
	const op = "CreateUser"
	now := c.opts.now()

	query := url.Values{}
	query.Set("username", u.Username)
	query.Set("firstname", u.Firstname)
	query.Set("lastname", u.Lastname)
	query.Set("email", u.Email)
	query.Set("password", u.Password)
	query.Set("site", u.Site)
	query.Set("department", u.Department)
	query.Set("team", u.Team)
	query.Set("externalid", u.ExternalID)
	query.Set("phone", "n/a")
	query.Set("hiredate", fmt.Sprintf("%d-%d-%d", now.Month(), now.Day(), now.Year()))

	if _, err := c.dispatcher.Legacy(ctx, op, "/create-user", query, "Created User"); err != nil {
		return nil, err
	}

	c.logger.Info().Str("username", u.Username).Msg("Created user")
	return c.GetUserByUsername(ctx, u.ContextNodeID, u.Username)
}
