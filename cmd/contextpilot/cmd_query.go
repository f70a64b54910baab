package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"contextpilot/internal/config"
	"contextpilot/internal/indexer"
	"contextpilot/internal/provenance"
	"contextpilot/internal/query"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

var (
	queryKind string
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <file> <start> <end>",
	Short: "Query provenance for a line range",
	Long: `query returns authors, co-edited files, raw history records, or
descriptions (commit subjects) touching the given line range, consulting
the shard store first and falling back to an on-demand reindex for lines
that post-date the last indexing run.`,
	Args: cobra.ExactArgs(3),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryKind, "kind", "files", "one of files|authors|descriptions|raw")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "emit JSON instead of a comma-separated list")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	file := args[0]
	if !filepath.IsAbs(file) {
		file = filepath.Join(ws.RepoRoot, file)
	}
	start, end, err := parseRange(args[1], args[2])
	if err != nil {
		return err
	}

	cfg, err := config.Load(ws.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	shards, err := shardstore.Open(ws.DBRoot, cfg.MaxLinesPerShard)
	if err != nil {
		return fmt.Errorf("open shard store: %w", err)
	}
	provider := vcs.NewGitProvider(ws.RepoRoot)
	api := query.New(shards, indexer.New(provider), cfg.OutputCountThreshold)

	switch queryKind {
	case "files":
		out, err := api.CoEditedFiles(ctx, file, start, end)
		if err != nil {
			return err
		}
		return emitList(out)
	case "authors":
		out, err := api.Authors(ctx, file, start, end)
		if err != nil {
			return err
		}
		return emitList(out)
	case "raw", "descriptions":
		records, err := api.History(ctx, file, start, end)
		if err != nil {
			return err
		}
		if queryKind == "descriptions" {
			return emitDescriptions(ctx, provider, records)
		}
		return emitRecords(records)
	default:
		return fmt.Errorf("unknown --kind %q: must be one of files|authors|descriptions|raw", queryKind)
	}
}

func parseRange(startArg, endArg string) (int, int, error) {
	var start, end int
	if _, err := fmt.Sscanf(startArg, "%d", &start); err != nil {
		return 0, 0, fmt.Errorf("invalid start line %q", startArg)
	}
	if _, err := fmt.Sscanf(endArg, "%d", &end); err != nil {
		return 0, 0, fmt.Errorf("invalid end line %q", endArg)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid line range [%d,%d]", start, end)
	}
	return start, end, nil
}

func emitList(items []string) error {
	if queryJSON {
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(strings.Join(items, ","))
	return nil
}

func emitRecords(records []provenance.FileRecord) error {
	if queryJSON {
		data, err := json.Marshal(records)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	for _, r := range records {
		fmt.Printf("%d\t%s\t%s\n", r.LineNumber, strings.Join(r.Revisions, ","), strings.Join(r.AuthorNames, ","))
	}
	return nil
}

// emitDescriptions resolves one commit subject per distinct revision
// appearing across records and prints them, de-duplicated, in
// first-seen order.
func emitDescriptions(ctx context.Context, provider vcs.HistoryProvider, records []provenance.FileRecord) error {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, rev := range r.Revisions {
			if _, ok := seen[rev]; ok {
				continue
			}
			seen[rev] = struct{}{}
			meta, err := provider.Metadata(ctx, rev)
			if err != nil {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", rev, meta.Subject))
		}
	}
	return emitList(out)
}
</content>
