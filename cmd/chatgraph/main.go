// Package main provides the chatgraph CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chatgraph"
	"chatgraph/graph"
)

// Version is the current chatgraph CLI version
var Version = "0.5.0"

var rootCmd = &cobra.Command{
	Use:   "chatgraph",
	Short: "Chatgraph - relationship graphs from personal message archives",
	Long: `Chatgraph reads exported chat archives (SMS backups, WhatsApp
transcripts, mbox mailboxes, JSON dumps), measures who you talk to and
how much, asks a locally hosted language model what you talk about, and
writes a D3-ready graph of contacts and topics.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var (
	configPath string
	verbose    bool
)

var (
	buildOut             string
	buildMode            string
	buildSelfName        string
	buildGlobal          bool
	buildSkipTopics      bool
	buildTopics          int
	buildMinTopicMsgs    int
	exportOut            string
	exportFormat         string
	exportGraphPath      string
	synonymsLimit        int
)

var buildCmd = &cobra.Command{
	Use:   "build <input>...",
	Short: "Build a relationship graph from chat export files",
	Long: `Build a relationship graph from one or more chat export files.

Inputs are files or glob patterns, routed to an importer by extension:

  chatgraph build sms-backup.xml
  chatgraph build "exports/**/*.json" -o graph.json
  chatgraph build chat.txt --self-name Dana --mode legacy
  chatgraph build inbox.mbox --skip-topics

Topic extraction talks to the model named in the config (a local
Ollama instance unless configured otherwise). When the model is
unreachable the graph is still written, with contacts only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

var exportCmd = &cobra.Command{
	Use:   "export <input>...",
	Short: "Export parsed messages to csv, jsonl, sqlite, xlsx, or parquet",
	Long: `Export parsed messages, and optionally graph-derived tables, to an
external format.

The format is inferred from the --out extension when --format is not
given. csv writes a directory with one file per table, so it always
needs an explicit --format.

  chatgraph export sms-backup.xml -o messages.sqlite
  chatgraph export "exports/**/*.json" -o dump.jsonl
  chatgraph export chat.txt --graph graph.json --format csv -o tables

Pass --graph to join the contact and topic tables from a previously
built graph artifact; without it only messages are exported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var synonymsCmd = &cobra.Command{
	Use:   "synonyms <graph.json>",
	Short: "Suggest topic label pairs that look like unmerged synonyms",
	Long: `Suggest topic label pairs that look like unmerged synonyms.

The topic labels of an existing graph artifact are embedded with the
configured embedding model; pairs that land close together but are not
already collapsed by the synonym table are printed with their cosine
similarity, best first. Use the output to decide whether the synonym
table deserves a new entry.

  chatgraph synonyms graph.json
  chatgraph synonyms graph.json -n 25`,
	Args: cobra.ExactArgs(1),
	RunE: runSynonyms,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported import and export formats",
	RunE:  runFormats,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress detail to stderr")

	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "graph.json", "Output path for the graph artifact")
	buildCmd.Flags().StringVar(&buildMode, "mode", "", "Topic mode: legacy or unlimited (default from config)")
	buildCmd.Flags().StringVar(&buildSelfName, "self-name", "", "Display name for the graph owner")
	buildCmd.Flags().BoolVar(&buildGlobal, "global", false, "Extract one shared topic list instead of per-contact topics")
	buildCmd.Flags().BoolVar(&buildSkipTopics, "skip-topics", false, "Skip topic extraction (contacts only)")
	buildCmd.Flags().IntVar(&buildTopics, "topics", 0, "Topics to request per contact in legacy mode (0 = config default)")
	buildCmd.Flags().IntVar(&buildMinTopicMsgs, "min-topic-messages", 0, "Messages a topic needs to survive in unlimited mode (0 = config default)")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (default inferred from --out extension)")
	exportCmd.Flags().StringVar(&exportGraphPath, "graph", "", "Graph artifact to join contact and topic tables from")
	exportCmd.MarkFlagRequired("out")

	synonymsCmd.Flags().IntVarP(&synonymsLimit, "limit", "n", 10, "Maximum number of suggestions")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(synonymsCmd)
	rootCmd.AddCommand(formatsCmd)
}

func main() {
	// A .env file may hold CHATGRAPH_* overrides and API keys.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// loadConfig layers the config file over defaults and applies
// environment overrides.
func loadConfig() (chatgraph.Config, error) {
	cfg := chatgraph.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = chatgraph.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

func newAnalyzer() (chatgraph.Analyzer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return chatgraph.New(cfg)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if buildMode != "" {
		cfg.Mode = buildMode
	}
	if buildSelfName != "" {
		cfg.SelfName = buildSelfName
	}

	a, err := chatgraph.New(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	messages, err := a.LoadMessages(ctx, args...)
	if err != nil {
		return err
	}

	var opts []chatgraph.BuildOption
	if buildGlobal {
		opts = append(opts, chatgraph.WithGlobalTopics())
	}
	if buildSkipTopics {
		opts = append(opts, chatgraph.WithSkipTopics())
	}
	if buildTopics > 0 {
		opts = append(opts, chatgraph.WithTopicsRequested(buildTopics))
	}
	if buildMinTopicMsgs > 0 {
		opts = append(opts, chatgraph.WithMinTopicMessages(buildMinTopicMsgs))
	}

	g, err := a.BuildGraph(ctx, messages, opts...)
	if err != nil {
		return err
	}
	if err := a.WriteGraph(g, buildOut); err != nil {
		return err
	}

	var contacts int
	for _, n := range g.Nodes {
		if n.Group == graph.GroupContact {
			contacts++
		}
	}
	fmt.Printf("Wrote %s: %d contacts, %d topics from %d messages\n",
		buildOut, contacts, g.TopicCount(), len(messages))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format := exportFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(exportOut), ".")
	}
	if format == "" {
		return fmt.Errorf("cannot infer format from %q, pass --format", exportOut)
	}

	a, err := newAnalyzer()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	messages, err := a.LoadMessages(ctx, args...)
	if err != nil {
		return err
	}

	var g *graph.Graph
	if exportGraphPath != "" {
		if g, err = graph.ReadFile(exportGraphPath); err != nil {
			return err
		}
	}

	if err := a.Export(ctx, messages, g, format, exportOut); err != nil {
		return err
	}
	fmt.Printf("Exported %d messages to %s\n", len(messages), exportOut)
	return nil
}

func runSynonyms(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer()
	if err != nil {
		return err
	}
	g, err := graph.ReadFile(args[0])
	if err != nil {
		return err
	}

	suggestions, err := a.SuggestSynonyms(cmd.Context(), g, synonymsLimit)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("No synonym candidates found.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("%.3f  %s ~ %s\n", s.Similarity, s.Label, s.Candidate)
	}
	return nil
}

func runFormats(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer()
	if err != nil {
		return err
	}
	fmt.Printf("import: %s\n", strings.Join(a.ImportFormats(), ", "))
	fmt.Printf("export: %s\n", strings.Join(a.ExportFormats(), ", "))
	return nil
}
