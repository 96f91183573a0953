package usecase

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/utils/logging"
)

// RunTask plans task, executes the plan and records the execution. A failed
// execution is still recorded, with "error: <message>" as its result.
func (uc *UseCases) RunTask(ctx context.Context, task string) (*model.Execution, error) {
	if uc.executor == nil {
		return nil, goerr.Wrap(ErrExecutorNotConfigured, "cannot run task", goerr.V(model.TaskKey, task))
	}

	plan, err := uc.GeneratePlan(ctx, task)
	if err != nil {
		return nil, err
	}

	tags := append(slices.Clone(plan.Tags), "source:"+plan.Source.String())

	result, execErr := uc.executor.Execute(ctx, plan.Code)
	if execErr != nil {
		result = "error: " + execErr.Error()
	}

	id, err := uc.memory.StoreExecution(ctx, task, plan.Code, result, tags, DefaultImportance)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record execution", goerr.V(model.TaskKey, task))
	}

	logging.From(ctx).Info("Task executed",
		"record_id", id,
		"source", plan.Source,
		"failed", execErr != nil,
	)

	if execErr != nil {
		return nil, goerr.Wrap(execErr, "failed to execute plan",
			goerr.V(model.TaskKey, task),
			goerr.V(model.RecordIDKey, id),
		)
	}

	return &model.Execution{Plan: plan, Result: result, RecordID: id}, nil
}
