package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"finnie/src/analysis"
	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/utils"

	"golang.org/x/sync/errgroup"
)

var (
	errNoCredential = errors.New("no api key in request")
	errNoModel      = errors.New("no language model factory")
	errNoMarket     = errors.New("no market data service")
	errEmptyReply   = errors.New("empty generation")
)

const defaultCallTimeout = 20 * time.Second

// Toolkit holds the collaborators a responder may call. Every field except
// Logger may be nil; a nil collaborator behaves as unavailable.
type Toolkit struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	LLM       interfaces.ILanguageModelFactory
	Market    interfaces.IMarketData
	Knowledge interfaces.IKnowledgeBase
	Analysis  *analysis.AnalysisFacade
	Scheduler *utils.MarketScheduler
}

// -----------------------------------------------------------------------------

func (tk *Toolkit) callTimeout() time.Duration {
	if tk.Config != nil && tk.Config.Orchestrator.CallTimeoutSeconds > 0 {
		return time.Duration(tk.Config.Orchestrator.CallTimeoutSeconds) * time.Second
	}
	return defaultCallTimeout
}

func (tk *Toolkit) historyLimit() int {
	if tk.Config != nil && tk.Config.Orchestrator.HistoryLimit > 0 {
		return tk.Config.Orchestrator.HistoryLimit
	}
	return 2000
}

func (tk *Toolkit) concurrency() int {
	if tk.Config != nil && tk.Config.Network.ConcurrentRequests > 0 {
		return tk.Config.Network.ConcurrentRequests
	}
	return 4
}

func (tk *Toolkit) watchlist() []string {
	if tk.Config != nil && len(tk.Config.MarketData.Watchlist) > 0 {
		return tk.Config.MarketData.Watchlist
	}
	return utils.DefaultWatchlist
}

func (tk *Toolkit) facade() *analysis.AnalysisFacade {
	if tk.Analysis == nil {
		return analysis.NewAnalysisFacade(tk.Config, tk.Logger)
	}
	return tk.Analysis
}

// -----------------------------------------------------------------------------

// generate sends the user input to the provider selected in the request
// context. The system prompt is extended with knowledge context and recent
// history when present. Every failure comes back as an UnavailableError.
func (tk *Toolkit) generate(ctx context.Context, rc *models.MRequestContext, systemPrompt, extra string) (string, error) {
	provider := rc.Provider()
	if !provider.HasCredential() {
		return "", helpers.Unavailable("language model", errNoCredential)
	}
	if tk.LLM == nil {
		return "", helpers.Unavailable("language model", errNoModel)
	}

	model, err := tk.LLM.For(provider)
	if err != nil {
		return "", helpers.Unavailable("language model", err)
	}

	prompt := systemPrompt
	if extra != "" {
		prompt += "\n\n" + extra
	}
	if history := truncateRunes(rc.History(), tk.historyLimit()); history != "" {
		prompt += "\n\n" + history
	}

	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()

	text, err := model.Generate(ctx, []models.MChatTurn{{Role: "user", Content: rc.UserInput()}}, prompt)
	if err != nil {
		return "", helpers.Unavailable("language model", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", helpers.Unavailable("language model", errEmptyReply)
	}
	return text, nil
}

// -----------------------------------------------------------------------------

func (tk *Toolkit) quote(ctx context.Context, ticker string) (*models.MQuote, error) {
	if tk.Market == nil {
		return nil, helpers.Unavailable("market data", errNoMarket)
	}
	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()
	return tk.Market.GetQuote(ctx, ticker)
}

func (tk *Toolkit) history(ctx context.Context, ticker, period string) (*models.MHistory, error) {
	if tk.Market == nil {
		return nil, helpers.Unavailable("market data", errNoMarket)
	}
	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()
	return tk.Market.GetHistory(ctx, ticker, period)
}

// -----------------------------------------------------------------------------

// conceptContext and companyContext return "" on a miss; knowledge is optional.
func (tk *Toolkit) conceptContext(ctx context.Context, name string) string {
	if tk.Knowledge == nil || name == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()
	text, _ := tk.Knowledge.LookupConcept(ctx, name)
	return text
}

func (tk *Toolkit) companyContext(ctx context.Context, tickers []string) string {
	if tk.Knowledge == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()

	parts := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if text, ok := tk.Knowledge.LookupCompany(ctx, t); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// -----------------------------------------------------------------------------

// each runs fn for every index with bounded concurrency. fn writes its own
// slot, so results keep input order.
func (tk *Toolkit) each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tk.concurrency())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// -----------------------------------------------------------------------------

// tickersFor prefers tickers the host already resolved.
func tickersFor(rc *models.MRequestContext) []string {
	if t := rc.Tickers(); len(t) > 0 {
		return t
	}
	return utils.ExtractTickers(rc.UserInput())
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
