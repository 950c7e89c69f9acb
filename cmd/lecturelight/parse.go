package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Output formats for parse
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newParseCmd() *cobra.Command {
	var (
		format string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "parse <note>",
		Short: "Print the deck parsed from a note",
		Long: `Parse a note into slides, teleprompter notes and timer settings and print
the result. Vault embeds are resolved against the vault root.

Example:
  lecturelight parse Lectures/Optics.md
  lecturelight parse Optics.md --format yaml
  lecturelight parse Optics.md --query '.slides[].label'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatJSON && format != formatYAML {
				return fmt.Errorf("unknown format %q (must be json or yaml)", format)
			}

			ws, err := openWorkspace(cmd, args[0], ports.ConfigOverrides{})
			if err != nil {
				return err
			}

			deck, err := ws.decks.Load(cmd.Context(), ws.notePath)
			if err != nil {
				return err
			}

			if query == "" {
				return writeValue(cmd.OutOrStdout(), deck, format)
			}

			results, err := runQuery(query, deck)
			if err != nil {
				return err
			}
			for _, v := range results {
				if err := writeValue(cmd.OutOrStdout(), v, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the deck")

	return cmd
}

// runQuery evaluates a jq expression against the JSON form of v
func runQuery(expr string, v interface{}) ([]interface{}, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}

	// gojq only walks plain maps and slices
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding deck: %w", err)
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("decoding deck: %w", err)
	}

	var results []interface{}
	iter := q.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := result.(error); ok {
			return nil, fmt.Errorf("running query: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

func writeValue(w io.Writer, v interface{}, format string) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
