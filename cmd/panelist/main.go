package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienxp03/panelist/internal/config"
	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/export"
	"github.com/alienxp03/panelist/internal/metrics"
	"github.com/alienxp03/panelist/internal/persona"
	"github.com/alienxp03/panelist/internal/session"
	"github.com/alienxp03/panelist/internal/storage"
)

var (
	dbPath    string
	cfgPath   string
	appConfig *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "panelist",
	Short: "AI-powered focus group and interview simulator",
	Long: `panelist runs simulated market research sessions driven by AI personas.

Describe a product or campaign, pick a panel of personas, and watch them
react, discuss over several rounds, and produce sentiment metrics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config
		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.panelist/panelist.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.panelist/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func getStorage() (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = appConfig.DefaultDBPath()
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func getPersonas(store storage.Storage) *persona.Registry {
	return getPersonasForConfig(appConfig, store)
}

func newCoordinator(store storage.Storage, providerName, model string) (*session.Coordinator, *persona.Registry, error) {
	name := providerName
	if name == "" {
		name = appConfig.Defaults.Provider
	}
	if model == "" {
		model = appConfig.Defaults.Model
	}

	gen, err := appConfig.CreateGenerator(name, model)
	if err != nil {
		return nil, nil, err
	}

	personas := getPersonas(store)
	opts := []session.Option{}
	if store != nil {
		opts = append(opts, session.WithStorage(store))
	}
	return session.New(personas, gen, opts...), personas, nil
}

// ============================================================================
// RUN COMMAND
// ============================================================================

var (
	typeFlag         string
	participantsFlag string
	roundsFlag       int
	goalsFlag        string
	providerFlag     string
	modelFlag        string
)

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Run a focus group session",
	Long: `Run a simulated session on the given topic and print the discussion
as it unfolds.

Examples:
  panelist run "A subscription box for artisanal coffee"
  panelist run "New banking app" -p tech-enthusiast,skeptical-buyer,data-analyst
  panelist run "Loyalty program revamp" --rounds 2 --goals "pricing,retention"
  panelist run "Checkout redesign" --type interview -p skeptical-buyer`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&typeFlag, "type", "focus_group", "Session type (focus_group or interview)")
	runCmd.Flags().StringVarP(&participantsFlag, "participants", "p", "tech-enthusiast,price-sensitive,skeptical-buyer", "Comma-separated persona IDs")
	runCmd.Flags().IntVarP(&roundsFlag, "rounds", "r", 0, "Discussion rounds (default from config)")
	runCmd.Flags().StringVarP(&goalsFlag, "goals", "g", "", "Comma-separated session goals")
	runCmd.Flags().StringVar(&providerFlag, "provider", "", "Generation provider (default from config)")
	runCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model override")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func runSession(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")

	store, err := getStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	coordinator, _, err := newCoordinator(store, providerFlag, modelFlag)
	if err != nil {
		return err
	}

	rounds := roundsFlag
	if rounds == 0 {
		rounds = appConfig.Defaults.Rounds
	}

	spec := core.SessionSpec{
		Type:           core.SessionType(typeFlag),
		Topic:          topic,
		Goals:          splitList(goalsFlag),
		ParticipantIDs: splitList(participantsFlag),
		Rounds:         rounds,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nInterrupted. Finalizing session...")
		cancel()
	}()

	phase, err := coordinator.Start(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	fmt.Printf("\n🗣️  Session: %s\n", topic)
	fmt.Printf("   Type: %s | Participants: %d | Rounds: %d\n", spec.Type, len(spec.ParticipantIDs), spec.Rounds)
	fmt.Printf("   ID: %s\n\n", phase.SessionID)
	fmt.Println(strings.Repeat("─", 60))

	printPhase(phase)

	for !phase.Done {
		phase, err = coordinator.Advance(ctx, phase.SessionID)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("session failed: %w", err)
		}
		printPhase(phase)
	}

	result, err := coordinator.End(context.Background(), phase.SessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	printResult(result)
	return nil
}

func printPhase(phase *core.PhaseResult) {
	switch phase.Phase {
	case "initial_reaction":
		fmt.Println("\n💡 Initial Reactions")
	case "discussion":
		fmt.Printf("\n🔄 Round %d\n", phase.Round)
	case "synthesis":
		fmt.Println("\n🏁 Synthesis")
	}
	fmt.Println(strings.Repeat("─", 60))

	for _, msg := range phase.Messages {
		marker := sentimentMarker(msg.Sentiment)
		name := msg.PersonaName
		if msg.Avatar != "" {
			name = msg.Avatar + " " + name
		}
		fmt.Printf("\n%s %s (%.2f)\n", marker, name, msg.SentimentScore)
		fmt.Println(msg.Content)
		if msg.Fallback {
			fmt.Println("(no response, substituted)")
		}
	}

	if phase.Summary != "" {
		fmt.Println()
		fmt.Println(phase.Summary)
	}
}

func sentimentMarker(label core.SentimentLabel) string {
	switch label {
	case core.SentimentPositive:
		return "🟢"
	case core.SentimentNegative:
		return "🔴"
	default:
		return "⚪"
	}
}

func printResult(result *core.SessionResult) {
	m := result.Metrics

	fmt.Printf("\n%s\n", strings.Repeat("═", 60))
	fmt.Println("📊 SESSION METRICS")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("Status: %s | Messages: %d | Duration: %.0fs\n",
		result.Status, m.TotalMessages, result.DurationSeconds)
	fmt.Printf("Sentiment: %d🟢 %d⚪ %d🔴 | Average: %+.2f | Shift: %+.2f\n",
		m.Distribution.Positive, m.Distribution.Neutral, m.Distribution.Negative,
		m.AverageSentiment, m.SentimentShift)
	fmt.Printf("NPS: %.1f/10 | CSAT: %.1f/5\n", m.NPS, m.CSAT)

	if len(m.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, insight := range m.Insights {
			fmt.Printf("  • %s\n", insight)
		}
	}
	if len(m.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range m.Recommendations {
			fmt.Printf("  • %s\n", rec)
		}
	}

	fmt.Printf("\nSaved as: %s\n", result.SessionID)
}

// ============================================================================
// ASK COMMAND
// ============================================================================

var askPersonaFlag string

var askCmd = &cobra.Command{
	Use:   "ask [topic]",
	Short: "Quick one-persona interview without discussion rounds",
	Long: `Ask a single persona for its reaction to a topic.

Examples:
  panelist ask "Would you pay for ad-free podcasts?"
  panelist ask "Dark-mode-only app" --persona skeptical-buyer`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		coordinator, _, err := newCoordinator(store, providerFlag, modelFlag)
		if err != nil {
			return err
		}

		spec := core.SessionSpec{
			Type:           core.TypeInterview,
			Topic:          topic,
			ParticipantIDs: []string{askPersonaFlag},
			Rounds:         0,
		}

		result, err := coordinator.Run(cmd.Context(), spec)
		if err != nil {
			return err
		}

		for _, msg := range result.Transcript {
			fmt.Printf("\n%s %s (%s, %.2f)\n\n", msg.Avatar, msg.PersonaName, msg.Sentiment, msg.SentimentScore)
			fmt.Println(msg.Content)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askPersonaFlag, "persona", "tech-enthusiast", "Persona ID to ask")
}

// ============================================================================
// LIST COMMAND
// ============================================================================

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.ListSessions(50, 0)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found. Start one with: panelist run \"Your topic\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tTYPE\tSTATUS\tMESSAGES\tCREATED")

		for _, s := range sessions {
			shortID := s.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			shortTopic := s.Topic
			if len(shortTopic) > 35 {
				shortTopic = shortTopic[:32] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				shortID,
				shortTopic,
				s.Type,
				s.Status,
				s.MessageCount,
				s.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

// findSessionByPrefix resolves a (possibly shortened) session id.
func findSessionByPrefix(store storage.Storage, prefix string) (string, error) {
	sessions, err := store.ListSessions(1000, 0)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matching: %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous session id: %s (%d matches)", prefix, len(matches))
	}
}

// ============================================================================
// SHOW COMMAND
// ============================================================================

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show session details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findSessionByPrefix(store, args[0])
		if err != nil {
			return err
		}

		sess, err := store.GetSession(id)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session not found: %s", id)
		}

		msgs, err := store.GetMessages(id)
		if err != nil {
			return err
		}

		fmt.Printf("\n🗣️  Session: %s\n", sess.Topic)
		fmt.Printf("   ID: %s\n", sess.ID)
		fmt.Printf("   Type: %s | Status: %s\n", sess.Type, sess.Status)
		fmt.Printf("   Participants: %s\n", strings.Join(sess.ParticipantIDs, ", "))
		fmt.Printf("   Created: %s\n", sess.CreatedAt.Format(time.RFC3339))
		fmt.Println()

		if len(msgs) > 0 {
			fmt.Println(strings.Repeat("─", 60))
			lastRound := -1
			for _, msg := range msgs {
				if msg.Round != lastRound {
					if msg.Round == 0 {
						fmt.Println("\n💡 Initial Reactions")
					} else {
						fmt.Printf("\n🔄 Round %d\n", msg.Round)
					}
					lastRound = msg.Round
				}
				fmt.Printf("\n%s %s (%.2f)\n", sentimentMarker(msg.Sentiment), msg.PersonaName, msg.SentimentScore)
				fmt.Println(msg.Content)
			}
		}

		if sess.Summary != "" {
			fmt.Printf("\n%s\n🏁 SUMMARY\n%s\n", strings.Repeat("═", 60), strings.Repeat("═", 60))
			fmt.Println(sess.Summary)
		}

		if sess.Metrics != nil {
			m := sess.Metrics
			fmt.Printf("\nNPS: %.1f/10 | CSAT: %.1f/5 | Average sentiment: %+.2f\n",
				m.NPS, m.CSAT, m.AverageSentiment)
		}

		return nil
	},
}

// ============================================================================
// DELETE COMMAND
// ============================================================================

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findSessionByPrefix(store, args[0])
		if err != nil {
			return err
		}

		if err := store.DeleteSession(id); err != nil {
			return err
		}

		fmt.Printf("Deleted session: %s\n", id)
		return nil
	},
}

// ============================================================================
// EXPORT COMMAND
// ============================================================================

var exportCmd = &cobra.Command{
	Use:   "export [id] [format]",
	Short: "Export a session to file",
	Long: `Export a session to markdown, PDF, or JSON.

Examples:
  panelist export abc123 markdown
  panelist export abc123 pdf
  panelist export abc123 json -o session.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findSessionByPrefix(store, args[0])
		if err != nil {
			return err
		}

		sess, err := store.GetSession(id)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session not found: %s", id)
		}

		msgs, err := store.GetMessages(id)
		if err != nil {
			return err
		}
		transcript := make([]core.Message, len(msgs))
		for i, m := range msgs {
			transcript[i] = *m
		}

		result := &core.SessionResult{
			SessionID: sess.ID,
			Spec: core.SessionSpec{
				ID:             sess.ID,
				Type:           sess.Type,
				Topic:          sess.Topic,
				Goals:          sess.Goals,
				ParticipantIDs: sess.ParticipantIDs,
				Rounds:         sess.Rounds,
			},
			Status:     sess.Status,
			Transcript: transcript,
			Summary:    sess.Summary,
			StartTime:  sess.CreatedAt,
			EndTime:    sess.UpdatedAt,
		}
		if sess.CompletedAt != nil {
			result.EndTime = *sess.CompletedAt
		}
		result.DurationSeconds = result.EndTime.Sub(result.StartTime).Seconds()
		if sess.Metrics != nil {
			result.Metrics = *sess.Metrics
		} else {
			result.Metrics = metrics.Compute(transcript)
		}

		format := export.Format(strings.ToLower(args[1]))
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = export.GenerateFilename(result, exporter.FileExtension())
		}

		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := exporter.Export(result, file); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		fmt.Printf("Exported to: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}

// ============================================================================
// PERSONAS COMMAND
// ============================================================================

var personasCmd = &cobra.Command{
	Use:     "persona",
	Short:   "Manage personas",
	Aliases: []string{"personas"},
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Println("\nBuilt-in Personas:")
		fmt.Println(strings.Repeat("─", 60))
		for _, p := range persona.DefaultProfiles() {
			fmt.Printf("\n%s %s (%s) [builtin]\n", p.Avatar, p.DisplayName, p.ID)
			fmt.Printf("  %s | bias %+.1f\n", p.Role, p.SentimentBias)
		}

		customs, err := store.ListPersonas()
		if err != nil {
			return err
		}
		if len(customs) > 0 {
			fmt.Println("\nCustom Personas:")
			fmt.Println(strings.Repeat("─", 60))
			for _, p := range customs {
				fmt.Printf("\n%s %s (%s)\n", p.Avatar, p.DisplayName, p.ID)
				fmt.Printf("  %s | bias %+.1f\n", p.Role, p.SentimentBias)
			}
		}

		return nil
	},
}

var personaShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show persona details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		registry := getPersonas(store)
		p, err := registry.Get(args[0])
		if err != nil {
			return err
		}

		origin := ""
		if p.Builtin {
			origin = " [builtin]"
		}
		fmt.Printf("\n%s %s (%s)%s\n", p.Avatar, p.DisplayName, p.ID, origin)
		fmt.Printf("Role: %s\n", p.Role)
		if p.Goal != "" {
			fmt.Printf("Goal: %s\n", p.Goal)
		}
		if p.Backstory != "" {
			fmt.Printf("Backstory: %s\n", p.Backstory)
		}
		fmt.Printf("Sentiment bias: %+.1f | Engagement: %.1f | Controversy tolerance: %.1f\n",
			p.SentimentBias, p.EngagementLevel, p.ControversyTolerance)
		return nil
	},
}

var personaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a custom persona",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		goal, _ := cmd.Flags().GetString("goal")
		backstory, _ := cmd.Flags().GetString("backstory")
		avatar, _ := cmd.Flags().GetString("avatar")
		bias, _ := cmd.Flags().GetFloat64("bias")
		engagement, _ := cmd.Flags().GetFloat64("engagement")
		controversy, _ := cmd.Flags().GetFloat64("controversy")

		if id == "" || name == "" || role == "" {
			return fmt.Errorf("--id, --name, and --role are required")
		}

		// Check for conflict with builtin
		builtins := persona.NewRegistry()
		if builtins.Has(id) {
			return fmt.Errorf("cannot use ID '%s': conflicts with builtin persona", id)
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		p := &core.PersonaProfile{
			ID:                   id,
			DisplayName:          name,
			Avatar:               avatar,
			Role:                 role,
			Goal:                 goal,
			Backstory:            backstory,
			SentimentBias:        bias,
			EngagementLevel:      engagement,
			ControversyTolerance: controversy,
		}
		if err := store.SavePersona(p); err != nil {
			return err
		}

		fmt.Printf("Created persona: %s (%s)\n", name, id)
		return nil
	},
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a custom persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		builtins := persona.NewRegistry()
		if builtins.Has(id) {
			return fmt.Errorf("cannot delete builtin persona: %s", id)
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeletePersona(id); err != nil {
			return err
		}

		fmt.Printf("Deleted persona: %s\n", id)
		return nil
	},
}

func init() {
	personaCreateCmd.Flags().String("id", "", "Persona ID (required)")
	personaCreateCmd.Flags().String("name", "", "Display name (required)")
	personaCreateCmd.Flags().String("role", "", "Role description (required)")
	personaCreateCmd.Flags().String("goal", "", "What the persona wants")
	personaCreateCmd.Flags().String("backstory", "", "Background shaping its views")
	personaCreateCmd.Flags().String("avatar", "👤", "Avatar emoji")
	personaCreateCmd.Flags().Float64("bias", 0, "Sentiment bias (-1.0 to 1.0)")
	personaCreateCmd.Flags().Float64("engagement", 0.5, "Engagement level (0.0 to 1.0)")
	personaCreateCmd.Flags().Float64("controversy", 0.5, "Controversy tolerance (0.0 to 1.0)")

	personasCmd.AddCommand(personaListCmd)
	personasCmd.AddCommand(personaShowCmd)
	personasCmd.AddCommand(personaCreateCmd)
	personasCmd.AddCommand(personaDeleteCmd)
}

// ============================================================================
// PROVIDERS COMMAND
// ============================================================================

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available AI providers",
	Run: func(cmd *cobra.Command, args []string) {
		registry := appConfig.CreateRegistry()

		fmt.Println("\nAvailable Providers:")
		fmt.Println(strings.Repeat("─", 50))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY\tSTATUS")

		for _, g := range registry.List() {
			status := "❌ Not installed"
			if g.Available() {
				status = "✅ Available"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name(), g.DisplayName(), status)
		}
		w.Flush()
	},
}

// ============================================================================
// CONFIG COMMAND
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}

		cfg := config.Default()
		if err := cfg.SaveTo(path); err != nil {
			return err
		}

		fmt.Printf("Wrote config: %s\n", path)
		return nil
	},
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an annotated example config",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.GenerateExample())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configExampleCmd)
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var servePortFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePortFlag
		if port == 0 {
			port = appConfig.Server.Port
		}
		return runServer(appConfig, dbPath, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Server port (default from config)")
}
