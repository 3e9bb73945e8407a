package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jaskcalc/internal/calc"
	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/database"
	"github.com/jask/jaskcalc/internal/service"
	"github.com/jask/jaskcalc/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $JASKCALC_CONFIG or ~/.config/jaskcalc/config.toml)")
	script := flag.String("e", "", `evaluate keystrokes and print the display, e.g. -e "12+3*2="`)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tag, err := calc.ParseLocale(cfg.UI.Locale)
	if err != nil {
		log.Fatalf("config: ui.locale: %v", err)
	}
	formatter := calc.NewFormatter(tag)

	if *script != "" {
		if err := evaluate(os.Stdout, formatter, *script); err != nil {
			log.Fatalf("evaluate: %v", err)
		}
		return
	}

	// bubbletea owns the terminal, so logs either go to a file or nowhere.
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "jaskcalc")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	keys := tui.NewKeyRegistry()
	if err := keys.ApplyKeybindingConfig(cfg.Keys); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("config: %v", err)
	}

	var services tui.Services
	db, err := database.OpenMemory()
	if err != nil {
		log.Printf("tape disabled: %v", err)
	} else {
		defer db.Close()
		services.Tape = service.NewTapeService(db)
	}

	ctx := context.Background()
	app := tui.New(ctx, cfg, config.Path(*cfgPath), formatter, keys, services)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// evaluate feeds script through a fresh engine and prints the final display.
func evaluate(w io.Writer, f calc.Formatter, script string) error {
	e := calc.New(f)
	calc.Feed(e, script)
	sink := &calc.LineSink{W: w}
	e.Refresh(sink)
	return sink.Err()
}
