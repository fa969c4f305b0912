package models

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// RegisterUser is the register endpoint payload and the credential set
// tests carry around for a provisioned user
type RegisterUser struct {
	Email                string `json:"email" validate:"required,email"`
	Username             string `json:"username" validate:"required,max=64"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

// RandomUser creates a random valid user whose password matches its confirmation
func RandomUser() *RegisterUser {
	return RandomUserWithPassword(fakePassword(12))
}

// RandomUserWithPassword creates a random valid user with the given password
func RandomUserWithPassword(password string) *RegisterUser {
	return &RegisterUser{
		Email:                "ui_" + uniqueToken() + "_" + gofakeit.Email(),
		Username:             "ui_" + gofakeit.Username() + "_" + gofakeit.LetterN(5),
		Password:             password,
		PasswordConfirmation: password,
	}
}

// MinimalUser returns the smallest user the register form accepts
func MinimalUser() *RegisterUser {
	const pwd = "Aa1PPPPP"
	return &RegisterUser{
		Email:                "a@a.aa",
		Username:             "u",
		Password:             pwd,
		PasswordConfirmation: pwd,
	}
}

// Login returns the login payload for the user
func (u *RegisterUser) Login() LoginUser {
	return LoginUser{Email: u.Email, Password: u.Password}
}

// LoginUser is the login endpoint payload
type LoginUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PublishPost is the publish endpoint payload. ID is filled from the API
// response once the post has been accepted
type PublishPost struct {
	ID      string `json:"-"`
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// RandomPost creates a post whose title is unique across concurrent runs,
// so "newest row with this title" never picks another test's post
func RandomPost() *PublishPost {
	return &PublishPost{
		Title:   strings.TrimSuffix(gofakeit.Sentence(5), ".") + " " + uniqueToken(),
		Content: gofakeit.Sentence(12) + " " + gofakeit.Sentence(10),
	}
}

// AddComment is the add-comment endpoint payload. ParentID turns it into a
// reply
type AddComment struct {
	Text     string  `json:"text" validate:"required,max=255"`
	ParentID *string `json:"parentId,omitempty"`
}

// RandomComment creates a random root comment text
func RandomComment() *AddComment {
	return &AddComment{Text: gofakeit.Sentence(5) + " " + uniqueToken()}
}

// ReplyComment is the text of a reply typed into the UI
type ReplyComment struct {
	Text string `json:"text" validate:"required,max=255"`
}

// RandomReply creates a random reply text
func RandomReply() *ReplyComment {
	return &ReplyComment{Text: gofakeit.Sentence(6) + " " + uniqueToken()}
}

func uniqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func fakePassword(length int) string {
	// the trailing symbol guarantees a special character regardless of the generator
	return "Aa1" + gofakeit.Password(true, true, true, false, false, length-3) + "@"
}
