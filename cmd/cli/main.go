// Command cli runs the currency chat in the terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/amirasaad/fxchat/infra/initializer"
	"github.com/amirasaad/fxchat/pkg/app"
	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const exitCommand = "salir"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(config.GetEnv("ENV_FILE", ".env"))
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	// Keep the conversation readable unless a level was asked for.
	if !config.IsEnvSet("LOG_LEVEL") {
		cfg.Log.Level = int(log.ErrorLevel)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, deps, cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer a.Stop() //nolint: errcheck

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	r := newRenderer(os.Stdout)
	r.subscribe(deps.EventBus)
	a.Start(ctx)

	r.messages(a.Bot.Greeting())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		if interactive {
			r.prompt(a.Bot.UserName())
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.EqualFold(strings.TrimSpace(line), exitCommand) {
				return nil
			}
			r.messages(a.Bot.Handle(ctx, line))
		}
	}
}
