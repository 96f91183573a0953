package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/cli/config"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/service/embedding"
	"github.com/secmon-lab/augur/pkg/service/llm"
	"github.com/secmon-lab/augur/pkg/service/memory"
	"github.com/secmon-lab/augur/pkg/service/pattern"
	"github.com/secmon-lab/augur/pkg/service/reasoning"
	"github.com/secmon-lab/augur/pkg/service/synth"
	"github.com/secmon-lab/augur/pkg/usecase"
	"github.com/secmon-lab/augur/pkg/utils/logging"
	"github.com/secmon-lab/augur/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// runtimeConfig gathers the flags shared by every data command
type runtimeConfig struct {
	app      config.App
	storage  config.Storage
	gemini   config.Gemini
	executor config.Executor
}

func (r *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, r.app.Flags()...)
	flags = append(flags, r.storage.Flags()...)
	flags = append(flags, r.gemini.Flags()...)
	flags = append(flags, r.executor.Flags()...)
	return flags
}

// runtime is the wired application for one command invocation
type runtime struct {
	config  *config.AppConfig
	memory  *memory.Service
	engine  *reasoning.Engine
	synth   *synth.Synthesizer
	usecase *usecase.UseCases
	closer  io.Closer
}

func (r *runtime) Close(ctx context.Context) {
	safe.Close(ctx, r.closer)
}

func (r *runtimeConfig) build(ctx context.Context) (*runtime, error) {
	logger := logging.From(ctx)

	appCfg, err := r.app.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	store, closer, err := r.storage.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize storage")
	}

	var (
		encoder   interfaces.Encoder = embedding.NewHashEncoder()
		ucOptions                    = []usecase.Option{
			usecase.WithContextLimit(appCfg.Memory.ContextLimit),
			usecase.WithSystemPrompt(appCfg.Planner.SystemPrompt),
		}
	)

	llmClient, err := r.gemini.Configure(ctx)
	if err != nil {
		safe.Close(ctx, closer)
		return nil, goerr.Wrap(err, "failed to initialize Gemini")
	}
	if llmClient != nil {
		client, err := llm.New(llmClient)
		if err != nil {
			safe.Close(ctx, closer)
			return nil, goerr.Wrap(err, "failed to initialize LLM client")
		}
		encoder = client
		ucOptions = append(ucOptions, usecase.WithGenerator(client))
		logger.Info("Generative planning enabled", "gemini", &r.gemini)
	} else {
		logger.Debug("Gemini not configured, using hash encoder without generator")
	}

	runner, err := r.executor.Configure()
	if err != nil {
		safe.Close(ctx, closer)
		return nil, goerr.Wrap(err, "failed to initialize executor")
	}
	if runner != nil {
		ucOptions = append(ucOptions, usecase.WithExecutor(runner))
	}

	svc, err := memory.New(ctx, store, encoder,
		memory.WithMaxVectors(appCfg.Memory.MaxVectors),
		memory.WithMaxFacts(appCfg.Memory.MaxFacts),
	)
	if err != nil {
		safe.Close(ctx, closer)
		return nil, goerr.Wrap(err, "failed to initialize memory service")
	}

	synthesizer := appCfg.Synthesizer()
	rules, err := appCfg.Rules(synthesizer)
	if err != nil {
		safe.Close(ctx, closer)
		return nil, goerr.Wrap(err, "failed to resolve pattern rules")
	}
	catalog, err := pattern.New(rules...)
	if err != nil {
		safe.Close(ctx, closer)
		return nil, goerr.Wrap(err, "failed to build pattern catalog")
	}
	engine := reasoning.New(catalog,
		reasoning.WithMaxHistory(appCfg.Reasoning.MaxHistory),
		reasoning.WithSynthesizer(synthesizer),
	)

	logger.Debug("Runtime ready",
		"config", appCfg,
		"storage", &r.storage,
		"encoder_dimension", encoder.Dimension(),
	)

	return &runtime{
		config:  appCfg,
		memory:  svc,
		engine:  engine,
		synth:   synthesizer,
		usecase: usecase.New(svc, engine, ucOptions...),
		closer:  closer,
	}, nil
}
