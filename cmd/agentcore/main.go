// Command agentcore runs the session-scoped agent runtime: a Skill
// Registry, LLM Client, PTC Generator, Sandbox Adapter, Session Manager,
// and HTTP front door, per spec.md.
//
// Usage:
//
//	agentcore serve --config config.yaml
//	agentcore run "summarize the open issues" --config config.yaml
//	agentcore version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/agentcore/pkg/agentcore"
	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/corehandler"
	"github.com/kadirpekel/agentcore/pkg/llm"
	"github.com/kadirpekel/agentcore/pkg/logger"
	"github.com/kadirpekel/agentcore/pkg/ptc"
	"github.com/kadirpekel/agentcore/pkg/sandbox"
	"github.com/kadirpekel/agentcore/pkg/server"
	"github.com/kadirpekel/agentcore/pkg/skill"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP server."`
	Run     RunCmd     `cmd:"" help:"Execute a single task and print the result as JSON."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple, verbose, or json)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("agentcore %s\n", version)
	return nil
}

// runtime bundles the components wired from config, shared by ServeCmd
// and RunCmd so both commands build the same stack.
type runtime struct {
	cfg     *config.Config
	manager *agentcore.Manager
	handler *corehandler.Handler
	sbx     *sandbox.Adapter
	log     *slog.Logger
}

func buildRuntime(cli *CLI) (*runtime, error) {
	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.Init(level, os.Stderr, cli.LogFormat)
	log := logger.GetLogger()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	registry := skill.New(cfg.SkillsDir, log)
	llmClient, err := llm.NewFromConfig(cfg.Agent.LLM)
	if err != nil {
		return nil, fmt.Errorf("building llm client: %w", err)
	}
	generator := ptc.New(llmClient, registry, log)

	sbx := sandbox.New(sandbox.Config{
		InterpreterPath: cfg.Sandbox.InterpreterPath,
		Workspace:       cfg.Sandbox.Workspace,
		ModulePath:      cfg.Sandbox.ModulePath,
		ModuleDir:       cfg.Sandbox.ModuleDir,
		KillGrace:       cfg.Sandbox.KillGrace,
		StdoutCapBytes:  cfg.Agent.Constraints.StdoutCapByte,
		StderrCapBytes:  cfg.Agent.Constraints.StderrCapByte,
	}, log)

	factory := func(sessionID string) *agentcore.Agent {
		return agentcore.New(sessionID, cfg.Agent, generator, sbx, log)
	}
	manager := agentcore.NewManager(cfg.Manager, factory, log)
	handler := corehandler.New(manager, log)

	return &runtime{cfg: cfg, manager: manager, handler: handler, sbx: sbx, log: log}, nil
}

// RunCmd executes a single task against a fresh session and prints the
// result as JSON, without starting the HTTP server.
type RunCmd struct {
	Task      string `arg:"" help:"Task description for the agent to synthesize and run."`
	SessionID string `help:"Reuse an existing session id instead of minting a new one."`
}

func (c *RunCmd) Run(cli *CLI) error {
	rt, err := buildRuntime(cli)
	if err != nil {
		return err
	}

	resp := rt.handler.Execute(context.Background(), corehandler.ExecuteRequest{
		Task:      c.Task,
		SessionID: c.SessionID,
	})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), rt.cfg.Manager.ShutdownGrace)
	defer shutdownCancel()
	if err := rt.manager.Shutdown(shutdownCtx); err != nil {
		rt.log.Warn("manager shutdown error", "error", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))

	if !resp.Success {
		return fmt.Errorf("task failed: %s", resp.Error.Message)
	}
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Addr string `help:"Address to listen on." default:":8080"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	rt, err := buildRuntime(cli)
	if err != nil {
		return err
	}
	cfg, manager, handler, sbx, log := rt.cfg, rt.manager, rt.handler, rt.sbx, rt.log

	if c.Addr != "" && c.Addr != ":8080" {
		cfg.Server.Addr = c.Addr
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	srv := server.New(cfg.Server.Addr, handler, sbx, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Warn("manager shutdown error", "error", err)
	}

	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentcore"),
		kong.Description("Session-scoped agent runtime: PTC synthesis over a sandboxed skill registry."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
