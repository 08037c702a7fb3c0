package orchestration

import (
	"context"
	"strings"
	"time"

	"finnie/src/agents"
	"finnie/src/compliance"
	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/synthesis"
)

// RoleCount is the number of roles a turn can involve: six responders plus
// the compliance and synthesis stages.
const RoleCount = 8

// Orchestrator runs one user turn end to end: classify, route, dispatch,
// annotate and synthesize.
type Orchestrator struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Dispatcher *Dispatcher
	Errors     *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------

// NewOrchestrator wires the responder table to the collaborators in tk.
func NewOrchestrator(cfg *models.MConfig, tk *agents.Toolkit, log *logger.Logger) *Orchestrator {
	errs := helpers.NewErrorHandler(log.Named("Errors"))
	if tk.Logger == nil {
		tk.Logger = log.Named("Agents")
	}
	if tk.Config == nil {
		tk.Config = cfg
	}

	parallel := cfg != nil && cfg.Orchestrator.ParallelDispatch
	return &Orchestrator{
		Config:     cfg,
		Logger:     log,
		Dispatcher: NewDispatcher(agents.Registry(), tk, parallel, log.Named("Dispatcher"), errs),
		Errors:     errs,
	}
}

// -----------------------------------------------------------------------------

// RunTurn is the single entry point for hosts. The only errors it returns
// are contract violations; collaborator trouble degrades to fallback text.
func (o *Orchestrator) RunTurn(ctx context.Context, req models.MTurnRequest) (*models.MTurnResult, error) {
	start := time.Now()

	// 1. Validate and freeze the request
	if strings.TrimSpace(req.UserInput) == "" {
		return nil, helpers.ContractViolation("empty user input")
	}
	rc := models.NewRequestContext(req)

	// 2. Classify and route
	intent, confidence := Classify(rc.UserInput())
	roles := SelectRoles(intent)
	o.Logger.Info("Session %s: intent %s (%.2f), roles %v, provider %s",
		rc.SessionID(), intent, confidence, roles, rc.Provider())

	// 3. Responders
	outputs, err := o.Dispatcher.Dispatch(ctx, roles, rc)
	if err != nil {
		o.Logger.Error("Dispatch failed for session %s: %v", rc.SessionID(), err)
		return nil, err
	}
	blankSupportingClarifications(outputs)

	// 4. Compliance and synthesis
	guardian, disclaimers := compliance.Run(rc.UserInput())
	scribe, final := synthesis.Run(outputs, disclaimers)

	pkg := &models.MFinalPackage{
		FinalText:      final,
		PrimaryRole:    primaryRole(outputs),
		Visualizations: []models.MVisualization{},
		Disclaimers:    disclaimers,
	}
	for _, out := range outputs {
		pkg.Visualizations = append(pkg.Visualizations, out.Visualizations...)
	}

	o.Logger.Debug("Session %s answered in %v", rc.SessionID(), time.Since(start))

	return &models.MTurnResult{
		Package:    pkg,
		Intent:     intent,
		Confidence: confidence,
		Roles:      roles,
		Outputs:    append(outputs, guardian, scribe),
	}, nil
}

// -----------------------------------------------------------------------------

// blankSupportingClarifications empties a later responder's request for more
// detail so it does not dilute the primary answer. The role stays in place.
func blankSupportingClarifications(outputs []models.MResponderOutput) {
	for i := 1; i < len(outputs); i++ {
		if outputs[i].Clarification {
			outputs[i].Text = ""
			outputs[i].Visualizations = nil
		}
	}
}

func primaryRole(outputs []models.MResponderOutput) *models.Role {
	for _, out := range outputs {
		if out.Text != "" && !out.Role.IsStage() {
			role := out.Role
			return &role
		}
	}
	return nil
}
