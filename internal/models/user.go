package models

import (
	"fmt"
	"strconv"
	"time"
)

// User is a row of the users table
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UsersTable is the name of the users table
const UsersTable = "users"

// Fields returns the insertable columns of u
func (u *User) Fields() map[string]any {
	return map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"created_at": u.CreatedAt.Unix(),
	}
}

// UserFromRow converts a selected row into a User
func UserFromRow(row map[string]any) (*User, error) {
	id, err := toInt64(row["id"])
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	created, err := toInt64(row["created_at"])
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}

	return &User{
		ID:        id,
		Username:  toString(row["username"]),
		Email:     toString(row["email"]),
		CreatedAt: time.Unix(created, 0).UTC(),
	}, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
