package model

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credential holds the connection parameters for one user-owned destination
// database. Password is stored encrypted at rest; repositories return it
// decrypted for the worker's pool construction.
type Credential struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Name      string    `json:"name"       db:"name"`
	Host      string    `json:"host"       db:"host"`
	Port      int       `json:"port"       db:"port"`
	Database  string    `json:"database"   db:"database"`
	Username  string    `json:"username"   db:"username"`
	Password  string    `json:"-"          db:"password"`
	SSLMode   string    `json:"ssl_mode"   db:"ssl_mode"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DSN builds a postgres connection URL, using url.URL so special characters in
// credentials survive.
func (c *Credential) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// CreateCredentialRequest carries the fields required to store a destination credential.
type CreateCredentialRequest struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// Validate checks the request fields before encryption and persistence.
func (r *CreateCredentialRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Host) == "" {
		return errors.New("host is required")
	}
	if r.Port <= 0 || r.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if strings.TrimSpace(r.Database) == "" {
		return errors.New("database is required")
	}
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	switch r.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		return nil
	default:
		return errors.New("invalid ssl mode")
	}
}
