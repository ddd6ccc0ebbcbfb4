package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/longlodw/thunderdoc"
)

// queryFlags are shared by query, search and explain.
type queryFlags struct {
	selector string
	sort     string
	fields   []string
	skip     int
	limit    int
	rows     int
	page     int
}

func (f *queryFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVarP(&f.selector, "selector", "s", "", `selector as JSON, e.g. '{"kind":"30"}'`)
	cmd.Flags().StringVar(&f.sort, "sort", "", `sort as JSON, e.g. '["name",{"age":"desc"}]'`)
	cmd.Flags().StringSliceVarP(&f.fields, "fields", "f", nil, "fields to return")
	cmd.Flags().IntVar(&f.skip, "skip", 0, "results to skip")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum results")
	if paged {
		cmd.Flags().IntVar(&f.rows, "rows", 0, "page size; enables paging")
		cmd.Flags().IntVar(&f.page, "page", 1, "page number when paging")
	}
}

func (f *queryFlags) params() (thunderdoc.QueryParams, error) {
	var params thunderdoc.QueryParams
	if f.selector != "" {
		var sel map[string]any
		if err := json.Unmarshal([]byte(f.selector), &sel); err != nil {
			return params, fmt.Errorf("parse --selector: %w", err)
		}
		params.Selector = sel
	}
	if f.sort != "" {
		if err := json.Unmarshal([]byte(f.sort), &params.Sort); err != nil {
			return params, fmt.Errorf("parse --sort: %w", err)
		}
	}
	params.Fields = f.fields
	params.Skip = f.skip
	params.Limit = f.limit
	return params, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load [file]",
		Short: "Save JSON documents read from a file or stdin",
		Long: `Save a stream of JSON objects. Objects carrying an _id are upserted,
the rest get a fresh time-ordered id.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			dec := json.NewDecoder(in)
			n := 0
			for {
				var doc map[string]any
				err := dec.Decode(&doc)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("document %d: %w", n+1, err)
				}
				if _, err := s.model.Upsert(doc); err != nil {
					return fmt.Errorf("document %d: %w", n+1, err)
				}
				n++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d documents\n", n)
			return nil
		},
	}
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a selector query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if flags.rows != 0 {
				page, err := s.model.PagedQuery(thunderdoc.PagedParams{QueryParams: params, Rows: flags.rows, Page: flags.page})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), page)
			}
			docs, err := s.model.Query(params)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "search <keywords>",
		Short: "Search the full-text field, optionally narrowed by a selector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			search := thunderdoc.SearchParams{QueryParams: params, Keywords: args[0]}
			if flags.rows != 0 {
				page, err := s.model.PagedSearch(thunderdoc.PagedSearchParams{SearchParams: search, Rows: flags.rows, Page: flags.page})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), page)
			}
			docs, err := s.model.Search(search)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the index and key ranges a query would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			exp, err := s.model.Explain(params)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), exp)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// NewIndexesCommand creates the indexes command.
func NewIndexesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "List the secondary indexes of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.model.IndexNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprint(cmd.OutOrStdout(), s.db.Stats().String())
			return nil
		},
	}
}
