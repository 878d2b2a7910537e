// Command versefinder looks up Bible passages from a bible-api.com
// compatible service, either in an interactive terminal screen or once
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"versefinder/internal/bibleapi"
	"versefinder/internal/config"
	"versefinder/internal/logging"
	"versefinder/internal/model"
	"versefinder/internal/repository"
	"versefinder/internal/tui"
	"versefinder/internal/viewstate"
)

const version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	BaseURL string        `name:"base-url" env:"VERSEFINDER_BASE_URL" default:"https://bible-api.com/" help:"Verse service root URL."`
	Timeout time.Duration `env:"VERSEFINDER_TIMEOUT" default:"10s" help:"Per-request timeout."`
	LogFile string        `name:"log-file" env:"VERSEFINDER_LOG_FILE" help:"Append logs to this file."`
	Debug   bool          `env:"VERSEFINDER_DEBUG" help:"Log at debug level."`

	Browse  BrowseCmd  `cmd:"" default:"1" help:"Open the interactive verse browser."`
	Lookup  LookupCmd  `cmd:"" help:"Print a passage and exit."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

func (c *CLI) config() config.Config {
	return config.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		LogFile: c.LogFile,
		Debug:   c.Debug,
	}
}

// newRepository validates cfg and wires the fetch client behind a repository.
func newRepository(cfg config.Config) (*repository.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := bibleapi.NewClient(cfg.BaseURL,
		bibleapi.WithTimeout(cfg.Timeout),
		bibleapi.WithUserAgent("versefinder/"+version),
	)
	if err != nil {
		return nil, err
	}
	return repository.New(client), nil
}

// BrowseCmd runs the terminal UI.
type BrowseCmd struct{}

func (b *BrowseCmd) Run(cli *CLI) error {
	cfg := cli.config()
	logger, closeLog, err := logging.Setup(cfg.LogFile, cfg.Debug, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}

	holder := viewstate.New(context.Background(), repo, viewstate.WithLogger(logger))
	defer holder.Close()

	logger.Info("starting browser", "base_url", cfg.BaseURL)
	p := tea.NewProgram(tui.New(holder), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// LookupCmd prints one passage to stdout.
type LookupCmd struct {
	Passage []string `arg:"" help:"Passage reference, e.g. john 3:16."`
	JSON    bool     `name:"json" help:"Print the record as JSON."`
}

func (l *LookupCmd) Run(cli *CLI) error {
	cfg := cli.config()
	logger, closeLog, err := logging.Setup(cfg.LogFile, cfg.Debug, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}

	passage := strings.TrimSpace(strings.Join(l.Passage, " "))
	if passage == "" {
		return errors.New("passage must not be blank")
	}

	rec, err := repo.GetVerse(context.Background(), passage)
	if err != nil {
		logger.Debug("failed to fetch verse", "passage", passage, "error", err)
		return errors.New(viewstate.Describe(err))
	}
	return writeRecord(os.Stdout, rec, l.JSON)
}

// writeRecord prints rec as indented JSON or as plain text mirroring the
// browser layout.
func writeRecord(w io.Writer, rec *model.VerseRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	var b strings.Builder
	b.WriteString(rec.Reference + "\n")
	for _, v := range rec.Verses {
		fmt.Fprintf(&b, "\n%s\n%s\n", v.Heading(), strings.TrimSpace(v.Text))
	}
	if len(rec.Verses) == 0 && rec.Text != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(rec.Text))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("versefinder %s\n", version)
	return nil
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("versefinder"),
		kong.Description("Look up Bible passages from the terminal."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
