package executor

import (
	"bytes"
	"context"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/domain/types"
	"github.com/secmon-lab/augur/pkg/utils/logging"
)

var (
	ErrCapabilityDenied = goerr.New("capability denied")
	ErrEmptyCommand     = goerr.New("interpreter command is empty")
)

const DefaultTimeout = 30 * time.Second

// Command runs code through an external interpreter, passing the program on
// stdin and returning its stdout. Code that uses a capability outside the
// allowed set is rejected before the interpreter starts.
type Command struct {
	argv    []string
	allowed []types.Capability
	symbols *model.SymbolTable
	timeout time.Duration
}

var _ interfaces.Executor = &Command{}

type Option func(*Command)

// WithAllowed restricts the capabilities code may use. All capabilities are
// allowed by default.
func WithAllowed(caps ...types.Capability) Option {
	return func(c *Command) {
		c.allowed = slices.Clone(caps)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSymbols replaces the symbol table used to detect capabilities
func WithSymbols(t *model.SymbolTable) Option {
	return func(c *Command) {
		c.symbols = t
	}
}

func New(argv []string, opts ...Option) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, goerr.Wrap(ErrEmptyCommand, "failed to create executor")
	}

	c := &Command{
		argv:    slices.Clone(argv),
		allowed: types.AllCapabilities(),
		symbols: model.DefaultSymbols(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check returns an error wrapping ErrCapabilityDenied if code uses a
// capability that is not allowed
func (c *Command) Check(code string) error {
	for _, capability := range c.symbols.Capabilities(code) {
		if !slices.Contains(c.allowed, capability) {
			return goerr.Wrap(ErrCapabilityDenied, "code uses a capability that is not allowed",
				goerr.V("capability", capability),
				goerr.V("allowed", c.allowed),
			)
		}
	}
	return nil
}

func (c *Command) Execute(ctx context.Context, code string) (string, error) {
	if err := c.Check(code); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...) // #nosec G204
	cmd.Stdin = strings.NewReader(code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		return "", goerr.Wrap(err, "interpreter failed",
			goerr.V("command", c.argv[0]),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}

	logging.From(ctx).Debug("Executed code",
		"command", c.argv[0],
		"duration", time.Since(started),
		"output_bytes", stdout.Len(),
	)
	return strings.TrimRight(stdout.String(), "\n"), nil
}
