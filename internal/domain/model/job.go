// Package model defines the core data types shared across the tailfin event pipeline.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobCategory selects which on-chain activity a job monitors and which
// destination table shape its events are transformed into.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobCategory string

// JobStatus represents the lifecycle state of a sink job.
type JobStatus string

const (
	// CategoryMintActivity monitors every transaction touching a token mint.
	CategoryMintActivity JobCategory = "MINT_ACTIVITY"
	// CategoryProgramInteractions monitors instruction-level interactions with a program.
	CategoryProgramInteractions JobCategory = "PROGRAM_INTERACTIONS"

	// JobStatusActive indicates the job participates in matching and delivery.
	JobStatusActive JobStatus = "active"
	// JobStatusPaused indicates the job is temporarily excluded from matching.
	JobStatusPaused JobStatus = "paused"
	// JobStatusError indicates the job was sticky-flagged by the worker and
	// stays halted until an operator clears it.
	JobStatusError JobStatus = "error"
	// JobStatusPending indicates the job has been created but not yet activated.
	JobStatusPending JobStatus = "pending"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobCategory to allow env/JSON parsing.
func (c *JobCategory) UnmarshalText(text []byte) error {
	v := JobCategory(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobCategory: %q", string(text))
	}
	*c = v
	return nil
}

// Valid returns true if the JobCategory is a known category.
func (c JobCategory) Valid() bool {
	return c == CategoryMintActivity || c == CategoryProgramInteractions
}

// ParamKey returns the category-specific params key holding the monitored address.
// Adding a category means extending this switch alongside TransformEvent; the
// zero return keeps unknown categories out of matching instead of panicking.
func (c JobCategory) ParamKey() string {
	switch c {
	case CategoryMintActivity:
		return "mintAddress"
	case CategoryProgramInteractions:
		return "programId"
	default:
		return ""
	}
}

// Valid returns true if the JobStatus is a known status.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusPaused || s == JobStatusError || s == JobStatusPending
}

// Job represents one user-owned event sink: a monitored address, a destination
// credential, and the table events are written into.
type Job struct {
	ID           string          `json:"id"                      db:"id"`
	UserID       string          `json:"user_id"                 db:"user_id"`
	Category     JobCategory     `json:"category"                db:"category"`
	Params       json.RawMessage `json:"params"                  db:"params"`
	CredentialID string          `json:"credential_id"           db:"credential_id"`
	TableName    string          `json:"table_name"              db:"table_name"`
	Status       JobStatus       `json:"status"                  db:"status"`
	LastEventAt  *time.Time      `json:"last_event_at,omitempty" db:"last_event_at"`
	LastError    *string         `json:"last_error,omitempty"    db:"last_error"`
	CreatedAt    time.Time       `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"              db:"updated_at"`
}

// MonitoredAddress derives the single on-chain address this job watches from
// its category params. It is a pure function and never fails: a missing or
// malformed params document yields ok=false, which excludes the job from
// matching (callers log the exclusion).
func (j *Job) MonitoredAddress() (string, bool) {
	key := j.Category.ParamKey()
	if key == "" || len(j.Params) == 0 {
		return "", false
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return "", false
	}

	raw, ok := params[key]
	if !ok {
		return "", false
	}

	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", false
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", false
	}
	return addr, true
}

// CreateJobRequest carries the fields required to create a sink job.
type CreateJobRequest struct {
	UserID       string          `json:"user_id"`
	Category     JobCategory     `json:"category"`
	Params       json.RawMessage `json:"params"`
	CredentialID string          `json:"credential_id"`
	TableName    string          `json:"table_name"`
}

// Validate checks the request for structural problems before any subscription
// edit is attempted.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if !r.Category.Valid() {
		return fmt.Errorf("invalid job category: %q", r.Category)
	}
	if len(r.Params) == 0 {
		return errors.New("params are required")
	}
	if strings.TrimSpace(r.CredentialID) == "" {
		return errors.New("credential id is required")
	}
	return ValidateTableName(r.TableName)
}

// MonitoredAddress derives the address from the request params, mirroring
// Job.MonitoredAddress for the not-yet-persisted case.
func (r *CreateJobRequest) MonitoredAddress() (string, bool) {
	j := Job{Category: r.Category, Params: r.Params}
	return j.MonitoredAddress()
}

// ValidateTableName rejects table names that cannot be used as a SQL
// identifier in the destination database. Quoting at write time handles case
// and reserved words; this guards length and emptiness only.
func ValidateTableName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("table name is required")
	}
	if len(name) > 63 {
		return errors.New("table name exceeds 63 characters")
	}
	if strings.ContainsAny(name, "\"\x00") {
		return errors.New("table name contains invalid characters")
	}
	return nil
}
