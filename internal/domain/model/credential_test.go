package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_DSN(t *testing.T) {
	cred := Credential{
		Host:     "db.example.com",
		Port:     5432,
		Database: "events",
		Username: "writer",
		Password: "p@ss/word#1",
		SSLMode:  "verify-full",
	}

	dsn := cred.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.example.com:5432")
	assert.Contains(t, dsn, "/events")
	assert.Contains(t, dsn, "sslmode=verify-full")
	// Special characters must be escaped, not passed through raw.
	assert.NotContains(t, dsn, "p@ss/word#1")
}

func TestCredential_DSN_DefaultSSLMode(t *testing.T) {
	cred := Credential{Host: "localhost", Port: 5432, Database: "d", Username: "u", Password: "p"}
	assert.Contains(t, cred.DSN(), "sslmode=require")
}

func TestCreateCredentialRequest_Validate(t *testing.T) {
	valid := CreateCredentialRequest{
		UserID:   "user-1",
		Name:     "prod",
		Host:     "db.example.com",
		Port:     5432,
		Database: "events",
		Username: "writer",
		Password: "secret",
		SSLMode:  "require",
	}

	t.Run("valid", func(t *testing.T) {
		req := valid
		require.NoError(t, req.Validate())
	})

	t.Run("empty ssl mode allowed", func(t *testing.T) {
		req := valid
		req.SSLMode = ""
		require.NoError(t, req.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		req := valid
		req.Port = 0
		require.Error(t, req.Validate())
		req.Port = 70000
		require.Error(t, req.Validate())
	})

	t.Run("bad ssl mode", func(t *testing.T) {
		req := valid
		req.SSLMode = "sometimes"
		require.Error(t, req.Validate())
	})

	t.Run("missing password", func(t *testing.T) {
		req := valid
		req.Password = ""
		require.Error(t, req.Validate())
	})
}
