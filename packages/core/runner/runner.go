package runner

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sethetter/reqq/packages/builtin"
	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/parser"
	"github.com/sethetter/reqq/packages/core/reqfile"
	"github.com/sethetter/reqq/packages/http"
	"github.com/sethetter/reqq/packages/logging"
)

type Config struct {
	Timeout        time.Duration
	FollowRedirect bool
	MaxRedirects   int
	ValidateSSL    bool
	Proxy          string
	DefaultHeaders map[string]string
	Functions      *builtin.Registry
	LookupEnv      env.LookupFunc
	Logger         *log.Logger
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        http.DefaultTimeout,
		FollowRedirect: true,
		MaxRedirects:   http.DefaultMaxRedirects,
		ValidateSSL:    true,
	}
}

// Runner owns one HTTP client and reuses it for every execution.
type Runner struct {
	client *http.Client
	config *Config
	logger *log.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Runner{
		client: http.NewClient(clientOpts...),
		config: cfg,
		logger: logger,
	}
}

// Prepared is a request that has been rendered and parsed but not sent.
type Prepared struct {
	File      *reqfile.File
	Variables env.Variables
	Parsed    *parser.Request
	Request   *http.Request
}

type Result struct {
	*Prepared
	Response *http.Response
	Duration time.Duration
}

func (r *Runner) resolverOptions() []env.ResolverOption {
	var opts []env.ResolverOption
	if r.config.Functions != nil {
		opts = append(opts, env.WithFunctions(r.config.Functions))
	}
	if r.config.LookupEnv != nil {
		opts = append(opts, env.WithLookupEnv(r.config.LookupEnv))
	}
	return opts
}

// Prepare runs every stage except sending. envCfg may be nil.
func (r *Runner) Prepare(file *reqfile.File, envCfg *env.Config, extra env.Variables) (*Prepared, error) {
	r.logger.Debug("loading", "request", file.Path())
	if err := file.Load(); err != nil {
		return nil, &StageError{Stage: StageLoad, File: file.Path(), Err: err}
	}

	vars, err := env.Merge(envCfg, extra)
	if err != nil {
		path := ""
		if envCfg != nil {
			path = envCfg.Path()
		}
		return nil, &StageError{Stage: StageVariables, File: path, Err: err}
	}
	r.logger.Debug("variables merged", "count", len(vars))

	parsed, err := file.Parse(vars, r.resolverOptions()...)
	if err != nil {
		stage := StageParse
		if errors.Is(err, env.ErrTemplate) {
			stage = StageRender
		}
		return nil, &StageError{Stage: stage, File: file.Path(), Err: err}
	}
	r.logger.Debug("parsed", "method", parsed.Method, "url", parsed.URL.String(), "headers", len(parsed.Headers))

	req, err := http.BuildRequest(parsed)
	if err != nil {
		return nil, &StageError{Stage: StageParse, File: file.Path(), Err: err}
	}

	return &Prepared{
		File:      file,
		Variables: vars,
		Parsed:    parsed,
		Request:   req,
	}, nil
}

// Execute prepares file and sends it with the shared client.
func (r *Runner) Execute(ctx context.Context, file *reqfile.File, envCfg *env.Config, extra env.Variables) (*Result, error) {
	prepared, err := r.Prepare(file, envCfg, extra)
	if err != nil {
		return nil, err
	}
	return r.Send(ctx, prepared)
}

// Send transmits an already prepared request.
func (r *Runner) Send(ctx context.Context, prepared *Prepared) (*Result, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	r.logger.Debug("sending", "method", prepared.Request.Method, "url", prepared.Request.URL.String())
	start := time.Now()
	resp, err := r.client.Do(ctx, prepared.Request)
	duration := time.Since(start)
	if err != nil {
		return nil, &StageError{Stage: StageSend, File: prepared.File.Path(), Err: err}
	}
	r.logger.Debug("received", "status", resp.StatusCode, "duration", duration)

	return &Result{
		Prepared: prepared,
		Response: resp,
		Duration: duration,
	}, nil
}

// Client returns the shared HTTP client.
func (r *Runner) Client() *http.Client {
	return r.client
}
