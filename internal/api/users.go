package api

import (
	"context"
	"fmt"
	"net/http"
)

// CurrentUser fetches the user the credential belongs to.
func CurrentUser() Request {
	return Request{Method: http.MethodGet, Path: "/v1/users/me", Credentials: CredentialsInclude}
}

// UserComics lists the comics owned by username.
func UserComics(username string) Request {
	return Request{
		Method:      http.MethodGet,
		Path:        "/v1/users/comics/" + seg(username),
		Credentials: CredentialsInclude,
	}
}

// UserPosts lists the posts of username.
func UserPosts(username string) Request {
	return Request{Method: http.MethodGet, Path: "/users/" + seg(username), Credentials: CredentialsBearer}
}

// Posts lists the front page posts.
func Posts() Request {
	return Request{Method: http.MethodGet, Path: "/posts"}
}

// PostByID fetches a single post of username.
func PostByID(username, postID string) Request {
	return Request{
		Method:      http.MethodGet,
		Path:        fmt.Sprintf("/posts/%s/%s", seg(username), seg(postID)),
		Credentials: CredentialsBearer,
	}
}

// Login exchanges an email and password for an access token.
func Login(email, password string) Request {
	return Request{
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   Credentials{Email: email, Password: password},
	}
}

// SendVerificationEmail asks the server to mail a verification link to the
// current user.
func SendVerificationEmail() Request {
	return Request{Method: http.MethodPost, Path: "/v1/users/email_verification", Credentials: CredentialsInclude}
}

// ConfirmEmail confirms a verification id from an email link.
func ConfirmEmail(verificationID string) Request {
	return Request{
		Method:      http.MethodPost,
		Path:        "/v1/users/confirm_email/" + seg(verificationID),
		Credentials: CredentialsInclude,
	}
}

// GetCurrentUser fetches the logged-in user.
func (c *Client) GetCurrentUser(ctx context.Context) (*UserBrief, error) {
	var user UserBrief
	if err := c.Do(ctx, CurrentUser(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserComics fetches the comics owned by username.
func (c *Client) GetUserComics(ctx context.Context, username string) ([]Comic, error) {
	var comics []Comic
	if err := c.Do(ctx, UserComics(username), &comics); err != nil {
		return nil, fmt.Errorf("fetching comics of %s: %w", username, err)
	}
	return comics, nil
}

// Login posts the credentials and returns the access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var tok Token
	if err := c.Do(ctx, Login(email, password), &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login response carried no access token")
	}
	return tok.AccessToken, nil
}
