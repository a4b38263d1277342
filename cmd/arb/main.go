package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	cl "openarbitrage/internal/cli"
	"openarbitrage/internal/config"
	"openarbitrage/internal/game"
	"openarbitrage/internal/journal"
	"openarbitrage/internal/market"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "arb",
		Short:        "Open Arbitrage: buy low, travel, sell high, pay off the loan",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.Home, "home", cfg.Home, "directory for save games and the command journal")

	root.AddCommand(
		newPlayCmd(&cfg),
		newReplayCmd(&cfg),
		newDumpStateCmd(&cfg),
		newSimulateCmd(),
		newSavesCmd(&cfg),
		newRemoteCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rulesFlags struct {
	travelCost  float64
	winNetWorth float64
	maxDays     int
}

func (f *rulesFlags) register(cmd *cobra.Command) {
	defaults := game.DefaultRules()
	cmd.Flags().Float64Var(&f.travelCost, "travel-cost", defaults.TravelCost, "cash charged per trip")
	cmd.Flags().Float64Var(&f.winNetWorth, "win-net-worth", defaults.WinNetWorth, "net worth needed to win")
	cmd.Flags().IntVar(&f.maxDays, "max-days", defaults.MaxDays, "days before the game is scored (0 = no limit)")
}

func (f *rulesFlags) rules() game.Rules {
	r := game.DefaultRules()
	r.TravelCost = f.travelCost
	r.WinNetWorth = f.winNetWorth
	r.MaxDays = f.maxDays
	return r
}

// resolveSeed prefers --seed, then ARB_SEED, then a fresh random seed.
func resolveSeed(cmd *cobra.Command, flagSeed int64, cfg *config.CLIConfig) (int64, error) {
	if cmd.Flags().Changed("seed") {
		return flagSeed, nil
	}
	if cfg.Seed != nil {
		return *cfg.Seed, nil
	}
	return game.NewSeed()
}

func newPlayCmd(cfg *config.CLIConfig) *cobra.Command {
	var (
		seed     int64
		saveName string
		loadName string
		rf       rulesFlags
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an interactive game in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			saves := cl.NewSaves(cfg.Home)
			store := journal.NewStore(cfg.Home)

			var state *game.State
			if loadName != "" {
				loaded, err := saves.Load(loadName)
				if err != nil {
					return err
				}
				state = loaded
				if saveName == "" {
					saveName = loadName
				}
				// A restored game re-seeds its generator, so its commands cannot be replayed from the seed.
				store = nil
				printWarn(fmt.Sprintf("Loaded %q on day %d. The command journal is off for resumed games.", loadName, state.Day))
			} else {
				s, err := resolveSeed(cmd, seed, cfg)
				if err != nil {
					return err
				}
				rules := rf.rules()
				state = game.NewState(s, rules)
				if err := store.Start(s, rules); err != nil {
					return fmt.Errorf("start journal: %w", err)
				}
			}

			p := newPlayer(os.Stdin, os.Stdout, state)
			p.journal = store
			if saveName != "" {
				p.saves = saves
				p.saveName = saveName
			}
			accent.Println("Welcome to Open Arbitrage!")
			printInfo(fmt.Sprintf("Seed %d", state.Seed))
			return p.run()
		},
	}
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (default: ARB_SEED or random)")
	cmd.Flags().StringVar(&saveName, "save", "", "save the game under this name after every command")
	cmd.Flags().StringVar(&loadName, "load", "", "resume a saved game")
	rf.register(cmd)
	return cmd
}

func newReplayCmd(cfg *config.CLIConfig) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild the last played game from its seed and command journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewStore(cfg.Home).Load()
			if err != nil {
				return err
			}
			state, err := journal.Replay(j)
			if err != nil {
				return err
			}
			if asJSON {
				return printStateJSON(state)
			}
			renderState(os.Stdout, state)
			printSuccess(fmt.Sprintf("Replayed %d commands from seed %d.", len(j.Commands), j.Seed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rebuilt state as JSON")
	return cmd
}

func newDumpStateCmd(cfg *config.CLIConfig) *cobra.Command {
	var (
		seed int64
		rf   rulesFlags
	)
	cmd := &cobra.Command{
		Use:   "dump-state",
		Short: "Print a fresh game state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSeed(cmd, seed, cfg)
			if err != nil {
				return err
			}
			return printStateJSON(game.NewState(s, rf.rules()))
		},
	}
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (default: ARB_SEED or random)")
	rf.register(cmd)
	return cmd
}

func printStateJSON(state *game.State) error {
	raw, err := json.MarshalIndent(state.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func newSimulateCmd() *cobra.Command {
	var (
		iterations int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the geometric Brownian motion price model and summarise each item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations <= 0 {
				return fmt.Errorf("iterations must be positive")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			start := market.CloneItems(game.DefaultItems)
			history := market.Simulate(iterations, market.CloneItems(start), rand.New(rand.NewSource(seed)))
			renderSimulation(os.Stdout, start, history)
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "number of steps")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed")
	return cmd
}

func newSavesCmd(cfg *config.CLIConfig) *cobra.Command {
	saves := &cobra.Command{
		Use:   "saves",
		Short: "Manage saved games",
	}
	saves.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := cl.NewSaves(cfg.Home).List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No saved games.")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	})
	saves.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.NewSaves(cfg.Home).Delete(args[0]); err != nil {
				return err
			}
			printSuccess("Deleted " + args[0] + ".")
			return nil
		},
	})
	return saves
}

func newRemoteCmd(apiBase *string) *cobra.Command {
	remote := &cobra.Command{
		Use:   "remote",
		Short: "Drive a session hosted by arb-api",
	}
	remote.PersistentFlags().StringVar(apiBase, "api", *apiBase, "arb-api base URL")

	remote.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Show the hosted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := cl.NewClient(*apiBase).State(ctx)
			if err != nil {
				return err
			}
			renderView(os.Stdout, view)
			return nil
		},
	})

	var (
		seed int64
		rf   rulesFlags
	)
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Start a new hosted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts cl.ResetOptions
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			if cmd.Flags().Changed("travel-cost") {
				opts.TravelCost = &rf.travelCost
			}
			if cmd.Flags().Changed("win-net-worth") {
				opts.WinNetWorth = &rf.winNetWorth
			}
			if cmd.Flags().Changed("max-days") {
				opts.MaxDays = &rf.maxDays
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := cl.NewClient(*apiBase).Reset(ctx, opts)
			if err != nil {
				return err
			}
			renderView(os.Stdout, view)
			printSuccess("New session " + view.SessionID)
			return nil
		},
	}
	reset.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (default: random)")
	rf.register(reset)
	remote.AddCommand(reset)

	remote.AddCommand(&cobra.Command{
		Use:     "cmd TYPE [key=value ...]",
		Short:   "Send one command, e.g. `arb remote cmd buy item_name=a quantity=2`",
		Args:    cobra.MinimumNArgs(1),
		Example: "  arb remote cmd travel destination_index=2\n  arb remote cmd advance_day days=3",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := parseKeyValues(args[1:])
			if err != nil {
				return err
			}
			command, err := game.ParseCommand(args[0], kv)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			res, err := cl.NewClient(*apiBase).Command(ctx, command)
			if err != nil {
				return err
			}
			renderView(os.Stdout, res.View)
			if len(res.Events) > 0 {
				renderEvents(os.Stdout, "New Events", res.Events)
			}
			return nil
		},
	})
	return remote
}

func parseKeyValues(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
