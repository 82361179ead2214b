package entity

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past this many bytes and rejects it on hashing
	MaxPasswordLength = 72
)

// Admin is an operator account. Admins are created out-of-band (see cmd/adminctl),
// the API only reads them and changes passwords.
// Password holds a bcrypt hash; plaintext values are legacy records.
type Admin struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ChatId    int64              `json:"chat_id" bson:"chat_id"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at,omitempty"`
}

// Identity is the decoded bearer token payload.
type Identity struct {
	AdminId string `json:"id"`
	ChatId  int64  `json:"chat_id"`
}

type Credentials struct {
	ChatId   int64
	Password string
}

type LoginResult struct {
	Token   string
	AdminId string
}

// AdminProfile is the admin record enriched with Telegram data.
type AdminProfile struct {
	ChatId   int64   `json:"chat_id"`
	Name     string  `json:"name"`
	Username *string `json:"username"`
	ImgURL   *string `json:"imgUrl"`
}

type PasswordChange struct {
	CPassword string `json:"CPassword"`
	NPassword string `json:"NPassword"`
}

func (p *PasswordChange) Bind(_ *http.Request) error {
	return p.Validate()
}

func (p *PasswordChange) Validate() error {
	if p.CPassword == "" || p.NPassword == "" {
		return Invalid("All password fields are required")
	}
	return CheckPasswordLength(p.NPassword)
}

// CheckPasswordLength reports a password that is too short or too long to store.
func CheckPasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return Invalid("Password must be at most 72 bytes")
	}
	return nil
}
