// Package gateway assembles chat sessions from configuration and drives the
// plain terminal front ends.
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"tasktalk/internal/chat"
	"tasktalk/internal/config"
	"tasktalk/internal/llm"
	"tasktalk/internal/log"
	"tasktalk/internal/skills"
	"tasktalk/internal/tasks"

	"github.com/joho/godotenv"
)

// turnTimeout bounds one full turn, function call rounds included.
const turnTimeout = 5 * time.Minute

// Gateway builds sessions. The exported fields are flag overrides set by the
// command layer; zero values mean "not set".
type Gateway struct {
	ConfigPath string

	Provider      string
	Model         string
	BaseURL       string
	MaxToolRounds int
}

func New(configPath string) *Gateway {
	return &Gateway{ConfigPath: configPath}
}

// Session bundles everything one running conversation needs.
type Session struct {
	Service *chat.Service
	Store   *tasks.Store
	Config  config.Config
}

// LoadConfig resolves the effective configuration: defaults, then config
// file, then environment, then flag overrides. A missing config file is not
// an error.
func (g *Gateway) LoadConfig() (config.Config, error) {
	// Pick up .env before reading anything from the environment.
	_ = godotenv.Load()

	path := g.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv()

	if g.Provider != "" {
		cfg.Provider = g.Provider
	}
	if g.Model != "" {
		cfg.Model = g.Model
	}
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.MaxToolRounds > 0 {
		cfg.MaxToolRounds = g.MaxToolRounds
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel(cfg.Provider)
	}
	return cfg, nil
}

// Init builds the adapter, the task store, the function catalog, and the chat
// service from the effective configuration.
func (g *Gateway) Init(ctx context.Context) (*Session, error) {
	cfg, err := g.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Adapters read API keys from the environment, so export a key that only
	// exists in the config file.
	if cfg.APIKey != "" {
		if env := config.APIKeyEnv(cfg.Provider); env != "" && os.Getenv(env) == "" {
			os.Setenv(env, cfg.APIKey)
		}
	}

	adapter, err := llm.NewAdapter(llm.Provider(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("initialize %s adapter: %w", cfg.Provider, err)
	}

	store := tasks.NewStore()
	mgr := skills.NewManager()
	mgr.Register(&tasks.AddTaskSkill{Store: store})
	mgr.Register(&tasks.CompletedTasksSkill{Store: store})
	mgr.Register(&tasks.ActiveTasksSkill{Store: store})
	mgr.Register(&tasks.UpdateTaskSkill{Store: store})

	service := chat.NewService(adapter,
		chat.WithSkills(mgr),
		chat.WithSystemPrompt(cfg.SystemPrompt),
		chat.WithMaxToolRounds(cfg.MaxToolRounds),
		chat.WithMaxHistoryTurns(cfg.MaxHistoryTurns),
	)

	log.Debug(ctx, "session ready", "provider", cfg.Provider, "model", cfg.Model)
	return &Session{Service: service, Store: store, Config: cfg}, nil
}

// Execute runs a single turn and prints the reply.
func (g *Gateway) Execute(ctx context.Context, input string) error {
	sess, err := g.Init(ctx)
	if err != nil {
		return err
	}

	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	reply, err := sess.Service.Send(turnCtx, input)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

// Run starts the plain stdin chat loop.
func (g *Gateway) Run(ctx context.Context) error {
	sess, err := g.Init(ctx)
	if err != nil {
		return err
	}
	service := sess.Service

	fmt.Println("tasktalk chat")
	fmt.Printf("model=%s, provider=%s, url=%s\n", sess.Config.Model, sess.Config.Provider, valueOrDefault(sess.Config.BaseURL, "default"))
	fmt.Println("Type /exit to quit, /clear to reset context, /tasks to list tasks.")

	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		<-ctx.Done()
		os.Stdin.Close() // Force read error to break loop
	}()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch input {
		case "/exit", "exit", "quit":
			return nil
		case "/clear":
			service.Clear()
			fmt.Println("context cleared")
			continue
		case "/tasks":
			printTasks(sess.Store.Tasks())
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		reply, err := service.Send(turnCtx, input)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

func printTasks(ts []tasks.Task) {
	if len(ts) == 0 {
		fmt.Println("no tasks yet")
		return
	}
	for _, t := range ts {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %d. %s", mark, t.ID, t.Name)
		if t.Description != nil && *t.Description != "" {
			line += " - " + *t.Description
		}
		fmt.Println(line)
	}
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
