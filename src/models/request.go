package models

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// MProviderConfig selects the language-generation provider for one turn.
// APIKey is an opaque credential: it is passed through, never parsed and never logged.
type MProviderConfig struct {
	Provider string `json:"llm_provider"`
	Model    string `json:"llm_model"`
	APIKey   string `json:"-"`
}

// HasCredential reports whether a generation call may be attempted.
func (p MProviderConfig) HasCredential() bool {
	return p.APIKey != ""
}

func (p MProviderConfig) String() string {
	key := "none"
	if p.APIKey != "" {
		key = "redacted"
	}
	return fmt.Sprintf("%s/%s (key: %s)", p.Provider, p.Model, key)
}

// MarshalLogObject keeps the credential out of structured logs.
func (p MProviderConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("provider", p.Provider)
	enc.AddString("model", p.Model)
	enc.AddBool("has_key", p.APIKey != "")
	return nil
}

// -----------------------------------------------------------------------------

type MHolding struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares,omitempty"`
	Value  float64 `json:"value"`
}

type MPortfolio struct {
	Holdings []MHolding `json:"holdings"`
}

// -----------------------------------------------------------------------------

// MChatTurn is one message sent to a language-generation service.
type MChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// -----------------------------------------------------------------------------

// MTurnRequest is what a host hands to the orchestrator for one user turn.
type MTurnRequest struct {
	UserInput string
	SessionID string
	Provider  MProviderConfig
	Portfolio *MPortfolio
	Tickers   []string
	History   string
}

// -----------------------------------------------------------------------------

// MRequestContext is the read-only record every responder sees during a turn.
// It is built once by the orchestrator and never mutated afterwards.
type MRequestContext struct {
	userInput string
	sessionID string
	provider  MProviderConfig
	portfolio *MPortfolio
	tickers   []string
	history   string
}

func NewRequestContext(req MTurnRequest) *MRequestContext {
	rc := &MRequestContext{
		userInput: req.UserInput,
		sessionID: req.SessionID,
		provider:  req.Provider,
		history:   req.History,
	}
	if len(req.Tickers) > 0 {
		rc.tickers = append([]string(nil), req.Tickers...)
	}
	if req.Portfolio != nil {
		p := MPortfolio{Holdings: append([]MHolding(nil), req.Portfolio.Holdings...)}
		rc.portfolio = &p
	}
	return rc
}

func (rc *MRequestContext) UserInput() string         { return rc.userInput }
func (rc *MRequestContext) SessionID() string         { return rc.sessionID }
func (rc *MRequestContext) Provider() MProviderConfig { return rc.provider }
func (rc *MRequestContext) History() string           { return rc.history }

// Portfolio returns a copy of the snapshot, or nil when none was supplied.
func (rc *MRequestContext) Portfolio() *MPortfolio {
	if rc.portfolio == nil {
		return nil
	}
	p := MPortfolio{Holdings: append([]MHolding(nil), rc.portfolio.Holdings...)}
	return &p
}

// Tickers returns a copy of the pre-extracted ticker list.
func (rc *MRequestContext) Tickers() []string {
	return append([]string(nil), rc.tickers...)
}
