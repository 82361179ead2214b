package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
	"tgadmin/lib/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UsersPageSize   = 20
	LatestUsersSize = 5
	// largest page whose skip still fits in int64
	MaxUsersPage = math.MaxInt64/UsersPageSize + 1
)

// User is a bot end-user. Records are written by the bot; fields this
// service does not know about are kept in Extra and returned as-is.
type User struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ChatId       int64              `json:"chat_id" bson:"chat_id"`
	Username     string             `json:"username" bson:"username"`
	RegisterDate time.Time          `json:"register_date" bson:"register_date"`
	Banned       bool               `json:"banned" bson:"banned"`
	Extra        bson.M             `json:"-" bson:",inline"`
}

// Document flattens the user into a single map, known fields taking precedence over Extra.
func (u *User) Document() map[string]interface{} {
	doc := make(map[string]interface{}, len(u.Extra)+5)
	for k, v := range u.Extra {
		doc[k] = v
	}
	doc["_id"] = u.Id
	doc["chat_id"] = u.ChatId
	doc["username"] = u.Username
	doc["register_date"] = u.RegisterDate
	doc["banned"] = u.Banned
	return doc
}

// UserRow is a user enriched with Telegram profile data and a relative registration time.
type UserRow struct {
	User    *User
	Profile Profile
	Time    string
}

func (r UserRow) MarshalJSON() ([]byte, error) {
	doc := r.User.Document()
	doc["name"] = r.Profile.Name
	if r.Profile.Username != nil {
		doc["username"] = *r.Profile.Username
	}
	doc["imgUrl"] = r.Profile.ImgURL
	doc["time"] = r.Time
	return json.Marshal(doc)
}

type UserQuery struct {
	Page  int64
	Query string
}

// Skip is the number of records before the requested page.
func (q UserQuery) Skip() int64 {
	switch {
	case q.Page < 1:
		return 0
	case q.Page > MaxUsersPage:
		return (MaxUsersPage - 1) * UsersPageSize
	}
	return (q.Page - 1) * UsersPageSize
}

type UserPage struct {
	Users []UserRow `json:"users"`
	Page  int64     `json:"page"`
	Pages int64     `json:"pages"`
	Total int64     `json:"total"`
}

// UserUpdate lists the fields an admin may change; any other field is rejected.
type UserUpdate struct {
	Username *string `json:"username,omitempty" bson:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Banned   *bool   `json:"banned,omitempty" bson:"banned,omitempty"`
}

func (u *UserUpdate) UnmarshalJSON(data []byte) error {
	type plain UserUpdate
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*u = UserUpdate(p)
	return nil
}

func (u *UserUpdate) Bind(_ *http.Request) error {
	if u.Username == nil && u.Banned == nil {
		return fmt.Errorf("no fields to update")
	}
	return validate.Struct(u)
}

type Dashboard struct {
	Total        int64  `json:"total"`
	Active       int64  `json:"active"`
	Banned       int64  `json:"banned"`
	SystemHealth string `json:"systemHealth"`
}
