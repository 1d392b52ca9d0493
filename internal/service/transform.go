package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
)

// DestinationRow is one row bound for a job's destination table. Inserts are
// conflict-tolerant so a redelivered or requeued event never duplicates data.
type DestinationRow interface {
	InsertSQL(table string) (string, []any)
}

// MintActivityRow is the per-transaction record for a monitored mint, unique
// on signature. Detail columns carry JSON so destination consumers keep the
// full structure without this service committing to their schema.
type MintActivityRow struct {
	Signature        string
	Slot             int64
	OccurredAt       time.Time
	EventType        string
	Source           string
	Mint             string
	Fee              int64
	FeePayer         string
	Succeeded        bool
	InvolvedAccounts []string
	TokenTransfers   string
	NFTEvent         string
	Instructions     string
	LogMessages      string
	RawPayload       json.RawMessage
}

func (r *MintActivityRow) InsertSQL(table string) (string, []any) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (signature, slot, occurred_at, event_type, source, mint,
			fee, fee_payer, succeeded, involved_accounts, token_transfers,
			nft_event, instructions, log_messages, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING`,
		pgx.Identifier{table}.Sanitize())
	return sql, []any{
		r.Signature, r.Slot, r.OccurredAt, r.EventType, r.Source, r.Mint,
		r.Fee, r.FeePayer, r.Succeeded, strings.Join(r.InvolvedAccounts, ","),
		r.TokenTransfers, r.NFTEvent, r.Instructions, r.LogMessages,
		string(r.RawPayload),
	}
}

// ProgramInteractionRow records one instruction invoking a monitored program,
// unique on (signature, instruction index, inner index).
type ProgramInteractionRow struct {
	Signature        string
	Slot             int64
	OccurredAt       time.Time
	EventType        string
	Source           string
	ProgramID        string
	InstructionIndex int
	InnerIndex       int // -1 for top-level instructions
	InstructionData  string
	Accounts         []string
	Fee              int64
	FeePayer         string
	Succeeded        bool
	Signers          []string
	RawPayload       json.RawMessage
}

func (r *ProgramInteractionRow) InsertSQL(table string) (string, []any) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (signature, slot, occurred_at, event_type, source, program_id,
			instruction_index, inner_index, instruction_data, accounts, fee,
			fee_payer, succeeded, signers, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING`,
		pgx.Identifier{table}.Sanitize())
	return sql, []any{
		r.Signature, r.Slot, r.OccurredAt, r.EventType, r.Source, r.ProgramID,
		r.InstructionIndex, r.InnerIndex, r.InstructionData,
		strings.Join(r.Accounts, ","), r.Fee, r.FeePayer, r.Succeeded,
		strings.Join(r.Signers, ","), string(r.RawPayload),
	}
}

// TransformEvent turns a queued payload into destination rows for the owning
// job. An event can legitimately yield zero rows: the subscription watches
// whole transactions, and not every transaction touching an address moves
// the monitored mint or invokes the monitored program.
func TransformEvent(job *model.Job, payload json.RawMessage) ([]DestinationRow, error) {
	addr, ok := job.MonitoredAddress()
	if !ok {
		return nil, fmt.Errorf("job %s has no monitored address", job.ID)
	}

	var event model.EnhancedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	switch job.Category {
	case model.CategoryMintActivity:
		return mintActivityRows(addr, &event, payload), nil
	case model.CategoryProgramInteractions:
		return programInteractionRows(addr, &event, payload), nil
	default:
		return nil, fmt.Errorf("unknown job category %q", job.Category)
	}
}

func mintActivityRows(mint string, event *model.EnhancedEvent, payload json.RawMessage) []DestinationRow {
	var transfers []model.TokenTransfer
	for _, t := range event.TokenTransfers {
		if t.Mint == mint {
			transfers = append(transfers, t)
		}
	}

	var nft *model.NFTEvent
	if e := event.Events.NFT; e != nil {
		for _, n := range e.NFTs {
			if n.Mint == mint {
				nft = e
				break
			}
		}
	}

	// Mint and burn flows carry a balance change but no transfer leg.
	balanceTouched := false
	for _, a := range event.AccountData {
		for _, c := range a.TokenBalanceChanges {
			if c.Mint == mint {
				balanceTouched = true
			}
		}
	}

	// The transaction involved the mint's address without actually moving the
	// token. Not an error, just nothing to record.
	if len(transfers) == 0 && nft == nil && !balanceTouched {
		return nil
	}

	row := &MintActivityRow{
		Signature:        event.Signature,
		Slot:             event.Slot,
		OccurredAt:       time.Unix(event.Timestamp, 0).UTC(),
		EventType:        event.Type,
		Source:           event.Source,
		Mint:             mint,
		Fee:              event.Fee,
		FeePayer:         event.FeePayer,
		Succeeded:        event.Succeeded(),
		InvolvedAccounts: sortedAccounts(event),
		TokenTransfers:   marshalDetail(transfers),
		NFTEvent:         marshalDetail(nft),
		Instructions:     marshalDetail(event.Instructions),
		LogMessages:      marshalDetail(event.LogMessages),
		RawPayload:       payload,
	}
	return []DestinationRow{row}
}

func programInteractionRows(programID string, event *model.EnhancedEvent, payload json.RawMessage) []DestinationRow {
	occurredAt := time.Unix(event.Timestamp, 0).UTC()
	succeeded := event.Succeeded()
	signers := []string{event.FeePayer}

	var rows []DestinationRow
	for i, ins := range event.Instructions {
		if ins.ProgramID == programID {
			rows = append(rows, &ProgramInteractionRow{
				Signature:        event.Signature,
				Slot:             event.Slot,
				OccurredAt:       occurredAt,
				EventType:        event.Type,
				Source:           event.Source,
				ProgramID:        ins.ProgramID,
				InstructionIndex: i,
				InnerIndex:       -1,
				InstructionData:  ins.Data,
				Accounts:         ins.Accounts,
				Fee:              event.Fee,
				FeePayer:         event.FeePayer,
				Succeeded:        succeeded,
				Signers:          signers,
				RawPayload:       payload,
			})
		}
		for j, inner := range ins.InnerInstructions {
			if inner.ProgramID != programID {
				continue
			}
			rows = append(rows, &ProgramInteractionRow{
				Signature:        event.Signature,
				Slot:             event.Slot,
				OccurredAt:       occurredAt,
				EventType:        event.Type,
				Source:           event.Source,
				ProgramID:        inner.ProgramID,
				InstructionIndex: i,
				InnerIndex:       j,
				InstructionData:  inner.Data,
				Accounts:         inner.Accounts,
				Fee:              event.Fee,
				FeePayer:         event.FeePayer,
				Succeeded:        succeeded,
				Signers:          signers,
				RawPayload:       payload,
			})
		}
	}
	return rows
}

func sortedAccounts(event *model.EnhancedEvent) []string {
	set := event.InvolvedAccounts()
	accounts := make([]string, 0, len(set))
	for a := range set {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts
}

// marshalDetail renders a detail substructure as JSON text. A nil detail
// becomes SQL-friendly "null" rather than an empty string.
func marshalDetail(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
