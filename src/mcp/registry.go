package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finnie/src/analysis"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
)

// Handler executes one tool call. A result holding an "error" key is
// reported as unsuccessful without being treated as a failure.
type Handler func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// ServerInfo is the agent card published next to the tool list.
var ServerInfo = map[string]interface{}{
	"name":        "finnie-tools",
	"version":     "1.0.0",
	"description": "Financial data, chart and analysis tools",
	"capabilities": map[string]bool{
		"tools":     true,
		"resources": false,
		"prompts":   false,
	},
}

// -----------------------------------------------------------------------------
// ToolRegistry
// -----------------------------------------------------------------------------

type ToolRegistry struct {
	Logger *logger.Logger
	Now    func() time.Time

	mu       sync.RWMutex
	order    []string
	tools    map[string]models.MToolDefinition
	handlers map[string]Handler
}

func NewToolRegistry(log *logger.Logger) *ToolRegistry {
	return &ToolRegistry{
		Logger:   log,
		Now:      time.Now,
		tools:    make(map[string]models.MToolDefinition),
		handlers: make(map[string]Handler),
	}
}

// -----------------------------------------------------------------------------

// Register adds a tool, replacing any earlier one with the same name.
func (r *ToolRegistry) Register(def models.MToolDefinition, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = def
	r.handlers[def.Name] = h
}

// ListTools returns the definitions in registration order.
func (r *ToolRegistry) ListTools() []models.MToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.MToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *ToolRegistry) Tool(name string) (models.MToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

func (r *ToolRegistry) Has(name string) bool {
	_, ok := r.Tool(name)
	return ok
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// -----------------------------------------------------------------------------

// Call runs a tool and wraps the outcome in the call envelope. It never
// returns an error: an unknown tool, a failing handler or a panic all come
// back as an unsuccessful result.
func (r *ToolRegistry) Call(ctx context.Context, name string, args map[string]interface{}) (res models.MToolResult) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return models.MToolResult{
			Error:     fmt.Sprintf("Unknown tool: %s", name),
			Available: r.Names(),
		}
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("Tool %s panicked: %v", name, p)
			res = r.failure(name, fmt.Errorf("tool panicked: %v", p))
		}
	}()

	start := r.Now()
	result, err := h(ctx, args)
	if err != nil {
		r.Logger.Warning("Tool %s failed: %v", name, err)
		return r.failure(name, err)
	}
	r.Logger.Debug("Tool %s finished in %v", name, r.Now().Sub(start))

	_, failed := result["error"]
	return models.MToolResult{
		Tool:      name,
		Result:    result,
		Success:   !failed,
		Timestamp: r.timestamp(),
	}
}

func (r *ToolRegistry) failure(name string, err error) models.MToolResult {
	return models.MToolResult{
		Tool:      name,
		Error:     err.Error(),
		Success:   false,
		Timestamp: r.timestamp(),
	}
}

func (r *ToolRegistry) timestamp() string {
	return r.Now().UTC().Format(time.RFC3339)
}

// -----------------------------------------------------------------------------

// NewDefaultRegistry registers the finance and chart tools over one
// market-data service.
func NewDefaultRegistry(market interfaces.IMarketData, facade *analysis.AnalysisFacade, log *logger.Logger) *ToolRegistry {
	r := NewToolRegistry(log)
	finance := &FinanceTools{Market: market, Analysis: facade}
	finance.Register(r)
	(&ChartTools{Finance: finance}).Register(r)

	log.Info("Registered %d tools", r.Count())
	return r
}
