// Package cli implements the thunderdoc command line.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/longlodw/thunderdoc"
	"github.com/longlodw/thunderdoc/config"
	"github.com/longlodw/thunderdoc/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Collection string
	Props      []string
	FullText   []string
	LogLevel   string
}

// NewRootCommand creates the root command for the thunderdoc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "thunderdoc",
		Short: "Query a thunderdoc document store",
		Long: `Query, search and page through documents in a bolt-backed thunderdoc store.

Indexes are created on demand from the fields each selector filters and sorts on.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default thunderdoc.yaml in . or ./config)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "bolt file, overrides store.path")
	cmd.PersistentFlags().StringVarP(&opts.Collection, "collection", "c", "docs", "collection (model) name")
	cmd.PersistentFlags().StringSliceVar(&opts.Props, "props", nil, "declared properties as name[:kind], kind one of string|number|bool|date|any")
	cmd.PersistentFlags().StringSliceVar(&opts.FullText, "fulltext", nil, "properties joined into the full-text field")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level, overrides log.level")

	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewIndexesCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// session is an open model plus the store file behind it.
type session struct {
	model  *thunderdoc.Model
	db     *store.DB
	logger zerolog.Logger
}

func (s *session) Close() error {
	return s.db.Close()
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.DBPath != "" {
		cfg.Store.Path = o.DBPath
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	level, err := cfg.Log.ZerologLevel()
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	schema, err := o.schema()
	if err != nil {
		return nil, err
	}
	m, db, err := thunderdoc.OpenModel(cfg, schema, time.Now(), thunderdoc.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Store.Path, err)
	}
	return &session{model: m, db: db, logger: logger}, nil
}

func (o *RootOptions) schema() (thunderdoc.Schema, error) {
	schema := thunderdoc.Schema{
		Name:     o.Collection,
		Props:    make(map[string]thunderdoc.Kind, len(o.Props)),
		FullText: o.FullText,
	}
	for _, p := range o.Props {
		name, kindName, _ := strings.Cut(p, ":")
		kind, err := parseKind(kindName)
		if err != nil {
			return schema, fmt.Errorf("property %s: %w", name, err)
		}
		schema.Props[name] = kind
	}
	// Full-text properties are implicitly declared.
	for _, p := range o.FullText {
		if _, ok := schema.Props[p]; !ok {
			schema.Props[p] = thunderdoc.KindString
		}
	}
	return schema, nil
}

func parseKind(name string) (thunderdoc.Kind, error) {
	switch strings.ToLower(name) {
	case "", "any":
		return thunderdoc.KindAny, nil
	case "string":
		return thunderdoc.KindString, nil
	case "number":
		return thunderdoc.KindNumber, nil
	case "bool":
		return thunderdoc.KindBool, nil
	case "date":
		return thunderdoc.KindDate, nil
	}
	return thunderdoc.KindAny, fmt.Errorf("unknown kind %q", name)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
