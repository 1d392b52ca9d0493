package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// EnhancedEvent is the decoded shape of one upstream "enhanced" transaction
// event. The sender's payloads vary by transaction type and source; every
// substructure here is optional and absence never constitutes an error.
type EnhancedEvent struct {
	Signature        string           `json:"signature"`
	Timestamp        int64            `json:"timestamp"`
	Slot             int64            `json:"slot"`
	Type             string           `json:"type"`
	Source           string           `json:"source"`
	Description      string           `json:"description"`
	Fee              int64            `json:"fee"`
	FeePayer         string           `json:"feePayer"`
	TransactionError json.RawMessage  `json:"transactionError,omitempty"`
	NativeTransfers  []NativeTransfer `json:"nativeTransfers,omitempty"`
	TokenTransfers   []TokenTransfer  `json:"tokenTransfers,omitempty"`
	AccountData      []AccountData    `json:"accountData,omitempty"`
	Instructions     []Instruction    `json:"instructions,omitempty"`
	Events           EventDetails     `json:"events,omitempty"`
	LogMessages      []string         `json:"logMessages,omitempty"`

	// Account carries the single address attached by rule-based sources
	// (address-activity subscriptions) that do not emit transfer detail.
	Account string `json:"account,omitempty"`
}

// NativeTransfer is a lamport movement between two accounts.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// TokenTransfer is an SPL token movement, including the mint it concerns.
type TokenTransfer struct {
	FromUserAccount  string  `json:"fromUserAccount"`
	ToUserAccount    string  `json:"toUserAccount"`
	FromTokenAccount string  `json:"fromTokenAccount"`
	ToTokenAccount   string  `json:"toTokenAccount"`
	Mint             string  `json:"mint"`
	TokenAmount      float64 `json:"tokenAmount"`
	TokenStandard    string  `json:"tokenStandard,omitempty"`
}

// AccountData is the per-account balance-change record the sender attaches to
// enhanced events.
type AccountData struct {
	Account             string               `json:"account"`
	NativeBalanceChange int64                `json:"nativeBalanceChange"`
	TokenBalanceChanges []TokenBalanceChange `json:"tokenBalanceChanges,omitempty"`
}

// TokenBalanceChange records a token account's balance delta within AccountData.
type TokenBalanceChange struct {
	UserAccount    string         `json:"userAccount"`
	TokenAccount   string         `json:"tokenAccount"`
	Mint           string         `json:"mint"`
	RawTokenAmount RawTokenAmount `json:"rawTokenAmount"`
}

// RawTokenAmount is the sender's unscaled amount representation.
type RawTokenAmount struct {
	TokenAmount string `json:"tokenAmount"`
	Decimals    int    `json:"decimals"`
}

// Amount scales the raw integer amount by its decimals. Unparseable amounts
// yield zero.
func (r RawTokenAmount) Amount() float64 {
	raw, err := strconv.ParseFloat(r.TokenAmount, 64)
	if err != nil {
		return 0
	}
	return raw / math.Pow10(r.Decimals)
}

// Instruction is one top-level instruction with its nested inner instructions.
type Instruction struct {
	ProgramID         string             `json:"programId"`
	Accounts          []string           `json:"accounts,omitempty"`
	Data              string             `json:"data,omitempty"`
	InnerInstructions []InnerInstruction `json:"innerInstructions,omitempty"`
}

// InnerInstruction is one CPI-invoked instruction under a top-level instruction.
type InnerInstruction struct {
	ProgramID string   `json:"programId"`
	Accounts  []string `json:"accounts,omitempty"`
	Data      string   `json:"data,omitempty"`
}

// EventDetails groups the typed sub-events the sender decodes for known protocols.
type EventDetails struct {
	NFT *NFTEvent `json:"nft,omitempty"`
}

// NFTEvent is the decoded NFT marketplace event carried under events.nft.
type NFTEvent struct {
	Type   string     `json:"type,omitempty"`
	Buyer  string     `json:"buyer,omitempty"`
	Seller string     `json:"seller,omitempty"`
	Amount int64      `json:"amount,omitempty"`
	NFTs   []NFTToken `json:"nfts,omitempty"`
}

// NFTToken identifies one NFT (by mint) inside an NFT event.
type NFTToken struct {
	Mint          string `json:"mint"`
	TokenStandard string `json:"tokenStandard,omitempty"`
}

// Succeeded reports whether the transaction executed without error.
func (e *EnhancedEvent) Succeeded() bool {
	t := strings.TrimSpace(string(e.TransactionError))
	return t == "" || t == "null"
}

// InvolvedAccounts collects every on-chain identifier appearing in the typed
// substructures of the event. Callers union this with the loose-shape
// extraction performed by the gateway's account extractor.
func (e *EnhancedEvent) InvolvedAccounts() map[string]struct{} {
	set := make(map[string]struct{})
	add := func(addrs ...string) {
		for _, a := range addrs {
			if a != "" {
				set[a] = struct{}{}
			}
		}
	}

	add(e.FeePayer, e.Account)
	for _, t := range e.TokenTransfers {
		add(t.FromUserAccount, t.ToUserAccount, t.FromTokenAccount, t.ToTokenAccount, t.Mint)
	}
	for _, t := range e.NativeTransfers {
		add(t.FromUserAccount, t.ToUserAccount)
	}
	for _, a := range e.AccountData {
		add(a.Account)
		for _, c := range a.TokenBalanceChanges {
			add(c.UserAccount, c.TokenAccount, c.Mint)
		}
	}
	for _, ins := range e.Instructions {
		add(ins.ProgramID)
		add(ins.Accounts...)
		for _, inner := range ins.InnerInstructions {
			add(inner.ProgramID)
			add(inner.Accounts...)
		}
	}
	if nft := e.Events.NFT; nft != nil {
		add(nft.Buyer, nft.Seller)
		for _, n := range nft.NFTs {
			add(n.Mint)
		}
	}

	return set
}
