package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCategory_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    JobCategory
		wantErr bool
	}{
		{name: "mint activity", input: "MINT_ACTIVITY", want: CategoryMintActivity},
		{name: "lowercase accepted", input: "mint_activity", want: CategoryMintActivity},
		{name: "whitespace trimmed", input: "  PROGRAM_INTERACTIONS ", want: CategoryProgramInteractions},
		{name: "unknown rejected", input: "NFT_SALES", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c JobCategory
			err := c.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestJob_MonitoredAddress(t *testing.T) {
	tests := []struct {
		name     string
		category JobCategory
		params   string
		want     string
		wantOK   bool
	}{
		{
			name:     "mint activity reads mintAddress",
			category: CategoryMintActivity,
			params:   `{"mintAddress":"So11111111111111111111111111111111111111112"}`,
			want:     "So11111111111111111111111111111111111111112",
			wantOK:   true,
		},
		{
			name:     "program interactions reads programId",
			category: CategoryProgramInteractions,
			params:   `{"programId":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}`,
			want:     "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			wantOK:   true,
		},
		{
			name:     "wrong key for category",
			category: CategoryMintActivity,
			params:   `{"programId":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}`,
			wantOK:   false,
		},
		{
			name:     "whitespace only address",
			category: CategoryMintActivity,
			params:   `{"mintAddress":"   "}`,
			wantOK:   false,
		},
		{
			name:     "non-string address",
			category: CategoryMintActivity,
			params:   `{"mintAddress":42}`,
			wantOK:   false,
		},
		{
			name:     "malformed params",
			category: CategoryMintActivity,
			params:   `{not json`,
			wantOK:   false,
		},
		{
			name:     "empty params",
			category: CategoryMintActivity,
			params:   "",
			wantOK:   false,
		},
		{
			name:     "unknown category",
			category: JobCategory("UNKNOWN"),
			params:   `{"mintAddress":"abc"}`,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Job{Category: tt.category, Params: json.RawMessage(tt.params)}
			got, ok := job.MonitoredAddress()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateJobRequest_Validate(t *testing.T) {
	valid := CreateJobRequest{
		UserID:       "user-1",
		Category:     CategoryMintActivity,
		Params:       json.RawMessage(`{"mintAddress":"abc"}`),
		CredentialID: "cred-1",
		TableName:    "mint_events",
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid
		require.NoError(t, req.Validate())
	})

	t.Run("missing user", func(t *testing.T) {
		req := valid
		req.UserID = " "
		require.Error(t, req.Validate())
	})

	t.Run("invalid category", func(t *testing.T) {
		req := valid
		req.Category = "BOGUS"
		require.Error(t, req.Validate())
	})

	t.Run("missing params", func(t *testing.T) {
		req := valid
		req.Params = nil
		require.Error(t, req.Validate())
	})

	t.Run("missing credential", func(t *testing.T) {
		req := valid
		req.CredentialID = ""
		require.Error(t, req.Validate())
	})

	t.Run("bad table name", func(t *testing.T) {
		req := valid
		req.TableName = ""
		require.Error(t, req.Validate())
	})
}

func TestValidateTableName(t *testing.T) {
	require.NoError(t, ValidateTableName("mint_events"))
	require.NoError(t, ValidateTableName("Events"))

	assert.Error(t, ValidateTableName(""))
	assert.Error(t, ValidateTableName("   "))
	assert.Error(t, ValidateTableName(strings.Repeat("x", 64)))
	assert.Error(t, ValidateTableName(`events"; DROP TABLE users; --`))
	assert.Error(t, ValidateTableName("events\x00"))
}
