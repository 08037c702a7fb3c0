package orchestration

import (
	"context"
	"fmt"

	"finnie/src/agents"
	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"

	"golang.org/x/sync/errgroup"
)

// Dispatcher invokes the responders for a role list and never lets one
// failure end the turn: an unavailable collaborator or a panic turns into that
// role's fallback output.
type Dispatcher struct {
	Table    map[models.Role]agents.Entry
	Toolkit  *agents.Toolkit
	Parallel bool
	Logger   *logger.Logger
	Errors   *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------

func NewDispatcher(table map[models.Role]agents.Entry, tk *agents.Toolkit, parallel bool, log *logger.Logger, errs *helpers.ErrorHandler) *Dispatcher {
	return &Dispatcher{
		Table:    table,
		Toolkit:  tk,
		Parallel: parallel,
		Logger:   log,
		Errors:   errs,
	}
}

// -----------------------------------------------------------------------------

// Dispatch runs the responder roles of the list and returns their outputs in
// list order. Stage roles are skipped; the orchestrator runs them. A role with
// no registered responder is a contract violation and nothing is invoked.
func (d *Dispatcher) Dispatch(ctx context.Context, roles []models.Role, rc *models.MRequestContext) ([]models.MResponderOutput, error) {
	if rc == nil {
		return nil, helpers.ContractViolation("dispatch without a request context")
	}

	// 1. Resolve every role before calling anything
	entries := make([]agents.Entry, 0, len(roles))
	for _, role := range roles {
		if role.IsStage() {
			continue
		}
		e, ok := d.Table[role]
		if !ok {
			return nil, helpers.ContractViolation("no responder registered for role %q", role)
		}
		entries = append(entries, e)
	}

	outputs := make([]models.MResponderOutput, len(entries))

	// 2. Sequential by default
	if !d.Parallel || len(entries) < 2 {
		for i, e := range entries {
			out, err := d.invoke(ctx, e, rc)
			if err != nil {
				return nil, err
			}
			outputs[i] = out
		}
		return outputs, nil
	}

	// 3. Concurrent; each goroutine owns one slot so order is by role
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		g.Go(func() error {
			out, err := d.invoke(gctx, e, rc)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// -----------------------------------------------------------------------------

func (d *Dispatcher) invoke(ctx context.Context, e agents.Entry, rc *models.MRequestContext) (out models.MResponderOutput, err error) {
	operation := "responder." + string(e.Role)

	defer func() {
		if p := recover(); p != nil {
			d.Errors.Handle(fmt.Errorf("panic: %v", p), operation)
			out, err = d.fallback(e, rc), nil
		}
	}()

	out, err = e.Respond(ctx, rc, d.Toolkit)
	if err != nil {
		d.Errors.Handle(err, operation)
		if helpers.IsContractViolation(err) {
			return models.MResponderOutput{}, err
		}
		return d.fallback(e, rc), nil
	}

	out.Role = e.Role
	return out, nil
}

func (d *Dispatcher) fallback(e agents.Entry, rc *models.MRequestContext) models.MResponderOutput {
	out := e.Fallback(rc)
	out.Role = e.Role
	out.Fallback = true
	d.Logger.Debug("Using fallback for %s", e.Role)
	return out
}
