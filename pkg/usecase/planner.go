package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/domain/types"
	"github.com/secmon-lab/augur/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type synthesizeFunc func(ctx context.Context, task string) *model.Reasoning

// GeneratePlan synthesizes validated code for task from the top matching
// rule, the generic skeleton or the generator.
func (uc *UseCases) GeneratePlan(ctx context.Context, task string) (*model.Plan, error) {
	return uc.generatePlan(ctx, task, uc.engine.ProcessWithReasoning)
}

// GenerateCombinedPlan is GeneratePlan with every matching rule rendered
// into one program.
func (uc *UseCases) GenerateCombinedPlan(ctx context.Context, task string) (*model.Plan, error) {
	return uc.generatePlan(ctx, task, uc.engine.ProcessCombined)
}

func (uc *UseCases) generatePlan(ctx context.Context, task string, synthesize synthesizeFunc) (*model.Plan, error) {
	logger := logging.From(ctx)

	var (
		records    []*model.EpisodicRecord
		contextErr error
		reasoning  *model.Reasoning
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		got, err := uc.memory.RetrieveContext(egCtx, task, uc.contextLimit)
		if err != nil {
			logger.Warn("failed to retrieve context", "error", err.Error(), "task", task)
			contextErr = err
			return nil
		}
		records = got
		return nil
	})
	eg.Go(func() error {
		reasoning = synthesize(egCtx, task)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to prepare plan", goerr.V(model.TaskKey, task))
	}

	plan := &model.Plan{
		Task:          task,
		Justification: reasoning.Justification,
		Tags:          reasoning.Tags(),
		Context:       records,
	}

	wrapFailure := func(err error, msg string) error {
		opts := []goerr.Option{goerr.V(model.TaskKey, task)}
		if contextErr != nil {
			opts = append(opts, goerr.V(ContextErrorKey, contextErr.Error()))
		}
		return model.Classify(model.ErrSynthesisFailure, err, msg, opts...)
	}

	if reasoning.Matched() {
		code, err := ValidateCode(reasoning.Code)
		if err == nil {
			plan.Code = code
			plan.Source = types.PlanSourcePattern
			return plan, nil
		}
		if uc.generator == nil {
			return nil, wrapFailure(err, "matched rule produced invalid code")
		}
		logger.Info("matched rule produced invalid code, falling back to generator",
			"rule_id", reasoning.Matches[0].RuleID,
			"error", err.Error(),
		)
	} else if uc.generator == nil {
		code, err := ValidateCode(reasoning.Code)
		if err != nil {
			return nil, wrapFailure(err, "generic skeleton is invalid")
		}
		plan.Code = code
		plan.Source = types.PlanSourceGeneric
		return plan, nil
	}

	prompt, err := BuildPrompt(uc.systemPrompt, task, records, uc.engine.ContextVars())
	if err != nil {
		return nil, wrapFailure(err, "failed to build prompt")
	}

	output, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, wrapFailure(err, "generator failed")
	}

	code, err := ValidateCode(output)
	if err != nil {
		repaired := repairCode(output)
		logger.Debug("repairing generator output", "error", err.Error(), "length", len(output))

		code, err = ValidateCode(repaired)
		if err != nil {
			return nil, wrapFailure(err, fmt.Sprintf("generator output is invalid after repair (%d bytes)", len(output)))
		}
	}

	plan.Code = code
	plan.Source = types.PlanSourceGenerative
	return plan, nil
}
