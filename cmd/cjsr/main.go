// Package main provides the CLI entrypoint for cjsr.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/m4dpr0f/cjsr-sub002/internal/config"
	"github.com/m4dpr0f/cjsr-sub002/internal/faction"
	"github.com/m4dpr0f/cjsr-sub002/internal/lobby"
	"github.com/m4dpr0f/cjsr-sub002/internal/model"
	"github.com/m4dpr0f/cjsr-sub002/internal/prompt"
	"github.com/m4dpr0f/cjsr-sub002/internal/race"
	"github.com/m4dpr0f/cjsr-sub002/internal/stats"
	"github.com/m4dpr0f/cjsr-sub002/internal/store"
	"github.com/m4dpr0f/cjsr-sub002/internal/tui"
)

const (
	defaultTier       = "hatchling"
	defaultOpponents  = 3
	defaultCountdown  = 3
	defaultGrace      = 10
	defaultLobbyAddr  = "localhost:8080"
	defaultPlotWindow = 10
	campaignBonusStep = 4
)

var (
	raceTier       string
	raceOpponents  int
	raceCountdown  int
	raceGrace      int
	racePromptFile string

	campaignRace int

	hostAddr string

	joinAddr string
	joinRoom string
	joinName string

	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cjsr",
		Short:         "Terminal typing races",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRaceCmd,
	}

	rootCmd.Flags().StringVar(&raceTier, "tier", defaultTier, "opponent tier")
	rootCmd.Flags().IntVar(&raceOpponents, "opponents", defaultOpponents, "number of simulated opponents")
	rootCmd.Flags().IntVar(&raceCountdown, "countdown", defaultCountdown, "countdown seconds before the race starts")
	rootCmd.Flags().IntVar(&raceGrace, "grace", defaultGrace, "grace seconds after the first finisher")
	rootCmd.Flags().StringVar(&racePromptFile, "prompt-file", "", "file with one prompt per line")

	rootCmd.AddCommand(newCampaignCmd())
	rootCmd.AddCommand(newHostCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runRaceCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveRaceConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Mode = "practice"

	picker, err := openPicker(cfg.PromptFile)
	if err != nil {
		return err
	}
	return runLocalRace(cfg, picker.Pick(), 0)
}

func newCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Race through the campaign prompts",
		Args:  cobra.NoArgs,
		RunE:  runCampaignCmd,
	}
	cmd.Flags().IntVar(&campaignRace, "race", 1, fmt.Sprintf("campaign race number (1-%d)", prompt.CampaignLength()))
	cmd.Flags().StringVar(&raceTier, "tier", defaultTier, "opponent tier")
	cmd.Flags().IntVar(&raceOpponents, "opponents", defaultOpponents, "number of simulated opponents")
	cmd.Flags().IntVar(&raceCountdown, "countdown", defaultCountdown, "countdown seconds before the race starts")
	cmd.Flags().IntVar(&raceGrace, "grace", defaultGrace, "grace seconds after the first finisher")
	return cmd
}

func runCampaignCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveRaceConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Mode = "campaign"
	cfg.RaceIndex = campaignRace - 1

	text, err := prompt.Campaign(cfg.RaceIndex)
	if err != nil {
		return err
	}
	// Later campaign races pay out more on top of the base reward.
	return runLocalRace(cfg, text, cfg.RaceIndex*campaignBonusStep)
}

// runLocalRace assembles a session around the human plus simulated opponents
// and hands it to the TUI, persisting the outcome to the local store.
func runLocalRace(cfg model.Config, text string, raceBonus int) error {
	if err := validateRaceConfig(cfg); err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	specs := []race.Spec{{Name: "you", Human: true}}
	specs = append(specs, faction.Opponents(cfg.Tier, cfg.Opponents, rnd)...)

	session, err := race.NewSession(text, specs, race.Options{
		Countdown: time.Duration(cfg.Countdown) * time.Second,
		Grace:     time.Duration(cfg.GraceSec) * time.Second,
		RaceBonus: raceBonus,
	})
	if err != nil {
		return fmt.Errorf("failed to start race: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewModel(cfg, st, session)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a lobby for networked races",
		Args:  cobra.NoArgs,
		RunE:  runHostCmd,
	}
	cmd.Flags().StringVar(&hostAddr, "addr", defaultLobbyAddr, "listen address")
	cmd.Flags().StringVar(&racePromptFile, "prompt-file", "", "file with one prompt per line")
	return cmd
}

func runHostCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &hostAddr, fileCfg.Lobby.Addr)
	applyStringConfig(cmd, "prompt-file", &racePromptFile, fileCfg.Race.PromptFile)

	picker, err := openPicker(racePromptFile)
	if err != nil {
		return err
	}
	server := lobby.NewServer(picker)
	return server.ListenAndServe(hostAddr)
}

func newJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a hosted race",
		Args:  cobra.NoArgs,
		RunE:  runJoinCmd,
	}
	cmd.Flags().StringVar(&joinAddr, "addr", defaultLobbyAddr, "lobby address")
	cmd.Flags().StringVar(&joinRoom, "room", "main", "room to join")
	cmd.Flags().StringVar(&joinName, "name", "", "display name")
	return cmd
}

func runJoinCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &joinAddr, fileCfg.Lobby.Addr)
	applyStringConfig(cmd, "name", &joinName, fileCfg.Lobby.Name)
	if strings.TrimSpace(joinName) == "" {
		return fmt.Errorf("--name is required (or set lobby.name in the config)")
	}

	client, err := lobby.Dial(joinAddr, joinRoom, joinName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logErrf("failed to close connection: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewNetModel(client, st, joinName)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show race stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (practice, campaign, online)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N races")
	cmd.Flags().IntVar(&statsWindow, "window", defaultPlotWindow, "moving average window for the WPM plot")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	races, err := st.ListRaces(context.Background(), model.Filter{
		Mode:  statsMode,
		Since: sinceTime,
		Last:  statsLast,
	})
	if err != nil {
		return fmt.Errorf("failed to load races: %w", err)
	}
	if len(races) == 0 {
		fmt.Println("No races recorded yet. Run: cjsr")
		return nil
	}

	summary := stats.Summarize(races)
	if err := stats.RenderSummary(os.Stdout, summary); err != nil {
		return err
	}
	fmt.Println()
	if err := stats.RenderHistory(os.Stdout, races); err != nil {
		return err
	}
	fmt.Println()
	series := stats.WPMSeries(races)
	if err := stats.RenderWPMPlot(os.Stdout, series, statsWindow, stats.TerminalWidth(), 0); err != nil {
		return err
	}
	fmt.Printf("wpm trend: %s\n", stats.Sparkline(series))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// resolveRaceConfig merges the config file under CLI flags; a flag the user
// set always wins over the file value.
func resolveRaceConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "tier", &raceTier, fileCfg.Race.Tier)
	applyIntConfig(cmd, "opponents", &raceOpponents, fileCfg.Race.Opponents)
	applyIntConfig(cmd, "countdown", &raceCountdown, fileCfg.Race.Countdown)
	applyIntConfig(cmd, "grace", &raceGrace, fileCfg.Race.Grace)
	if cmd.Flags().Lookup("prompt-file") != nil {
		applyStringConfig(cmd, "prompt-file", &racePromptFile, fileCfg.Race.PromptFile)
	}

	return model.Config{
		Tier:       raceTier,
		Opponents:  raceOpponents,
		Countdown:  raceCountdown,
		GraceSec:   raceGrace,
		PromptFile: racePromptFile,
	}, nil
}

func validateRaceConfig(cfg model.Config) error {
	if cfg.Opponents < 0 {
		return fmt.Errorf("--opponents must be >= 0")
	}
	if cfg.Countdown <= 0 {
		return fmt.Errorf("--countdown must be > 0")
	}
	if cfg.GraceSec <= 0 {
		return fmt.Errorf("--grace must be > 0")
	}
	if _, ok := faction.ProfileFor(cfg.Tier); !ok {
		names := make([]string, 0)
		for _, tier := range faction.Tiers() {
			names = append(names, tier.Name)
		}
		return fmt.Errorf("unknown tier %q (available: %s)", cfg.Tier, strings.Join(names, ", "))
	}
	return nil
}

// openPicker loads prompts from the given file, the default prompt file, or
// the builtin set, in that order.
func openPicker(path string) (*prompt.Picker, error) {
	if path != "" {
		prompts, err := prompt.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
		return prompt.NewPicker(prompts), nil
	}
	defaultPath := config.DefaultPromptPath()
	if _, err := os.Stat(defaultPath); err == nil {
		prompts, err := prompt.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
		return prompt.NewPicker(prompts), nil
	}
	return prompt.NewPicker(nil), nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cjsr configuration
# Uncomment a value to enable it. CLI flags override config values.

[race]
# tier = %q          # Opponent tier
# opponents = %d           # Number of simulated opponents
# countdown = %d           # Countdown seconds before the race starts
# grace = %d              # Grace seconds after the first finisher
# prompt-file = ""        # File with one prompt per line

[lobby]
# addr = %q  # Lobby address for host/join
# name = ""               # Display name for joined races
`,
		defaultTier,
		defaultOpponents,
		defaultCountdown,
		defaultGrace,
		defaultLobbyAddr,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
