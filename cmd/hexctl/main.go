// Command hexctl drives a hexwar server from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/client"
	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/service"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

const usage = `usage: hexctl [-url URL] [-session FILE] [-debug] <command> [flags]

commands:
  login            -name NAME
  scenario-create  -file FILE | -cols N -rows N [-name NAME]
  scenarios
  game-create      -scenario ID [-name NAME]
  games            [-filter my|open]
  join             -game ID
  state            -game ID [-json]
  click            -game ID -hex C,R
  select           -game ID -unit ID
  end-phase        -game ID
  range            -game ID -unit ID
  concede          -game ID
  watch            -game ID
`

// session is the login state kept between invocations.
type session struct {
	URL    string `json:"url"`
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hexctl.json"
	}
	return filepath.Join(dir, "hexctl", "session.json")
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &session{}, nil
	}
	if err != nil {
		return nil, err
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	return &s, nil
}

func saveSession(path string, s *session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func main() {
	serverURL := flag.String("url", envOr("HEXCTL_URL", "http://localhost:8009"), "server base URL")
	sessionPath := flag.String("session", defaultSessionPath(), "session file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := loadSession(*sessionPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load session")
	}
	c := client.NewClient(*serverURL)
	if sess.URL == *serverURL {
		c.SetToken(sess.Token)
	}

	app := &app{c: c, out: os.Stdout, sess: sess, sessionPath: *sessionPath, url: *serverURL}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "error (%d): %s\n", apiErr.Status, apiErr.Message)
			os.Exit(1)
		}
		log.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("Command failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type app struct {
	c           *client.Client
	out         io.Writer
	sess        *session
	sessionPath string
	url         string
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	name := fs.String("name", "", "name")
	gameID := fs.String("game", "", "game id")
	scenarioID := fs.String("scenario", "", "scenario id")
	unitID := fs.String("unit", "", "unit id")
	hex := fs.String("hex", "", "hex as column,row")
	file := fs.String("file", "", "scenario JSON file")
	cols := fs.Int("cols", 0, "map columns")
	rows := fs.Int("rows", 0, "map rows")
	filter := fs.String("filter", service.FilterMy, "game filter")
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	need := func(v *string, flagName string) error {
		if *v == "" {
			return fmt.Errorf("%s requires -%s", cmd, flagName)
		}
		return nil
	}

	switch cmd {
	case "login":
		if err := need(name, "name"); err != nil {
			return err
		}
		if err := a.c.Login(ctx, *name); err != nil {
			return err
		}
		*a.sess = session{URL: a.url, UserID: a.c.UserID(), Token: a.c.Token()}
		if err := saveSession(a.sessionPath, a.sess); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "logged in as %s\n", a.c.UserID())
		return nil

	case "scenario-create":
		in, err := scenarioInput(*file, *cols, *rows, *name)
		if err != nil {
			return err
		}
		sc, err := a.c.CreateScenario(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "scenario %s (%dx%d, %d units)\n", sc.ID, sc.Columns, sc.Rows, len(sc.Units))
		return nil

	case "scenarios":
		list, err := a.c.ListScenarios(ctx)
		if err != nil {
			return err
		}
		for _, sc := range list {
			fmt.Fprintf(a.out, "%s  %-24s %dx%d  by %s\n", sc.ID, sc.Name, sc.Columns, sc.Rows, sc.CreatorID)
		}
		return nil

	case "game-create":
		if err := need(scenarioID, "scenario"); err != nil {
			return err
		}
		g, err := a.c.CreateGame(ctx, *scenarioID, *name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "game %s created, waiting for an opponent\n", g.ID)
		return nil

	case "games":
		games, err := a.c.ListGames(ctx, *filter)
		if err != nil {
			return err
		}
		for _, g := range games {
			fmt.Fprintf(a.out, "%s  %-24s %-8s %s vs %s\n", g.ID, g.Name, g.Status, g.Player1ID, orDash(g.Player2ID))
		}
		return nil
	}

	// Everything below acts on one game.
	if err := need(gameID, "game"); err != nil {
		return err
	}
	var (
		g   *model.Game
		err error
	)
	switch cmd {
	case "join":
		g, err = a.c.JoinGame(ctx, *gameID)
	case "state":
		g, err = a.c.GetGame(ctx, *gameID)
	case "click":
		if err := need(hex, "hex"); err != nil {
			return err
		}
		coord, perr := hexwar.ParseCoord(*hex)
		if perr != nil {
			return perr
		}
		g, err = a.c.Click(ctx, *gameID, coord)
	case "select":
		if err := need(unitID, "unit"); err != nil {
			return err
		}
		g, err = a.c.SelectUnit(ctx, *gameID, *unitID)
	case "end-phase":
		g, err = a.c.EndPhase(ctx, *gameID)
	case "concede":
		g, err = a.c.ConcedeGame(ctx, *gameID)
	case "range":
		if err := need(unitID, "unit"); err != nil {
			return err
		}
		rng, rerr := a.c.Range(ctx, *gameID, *unitID)
		if rerr != nil {
			return rerr
		}
		printRange(a.out, rng)
		return nil
	case "watch":
		return a.watch(ctx, *gameID)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}
	printGame(a.out, g)
	return nil
}

func (a *app) watch(ctx context.Context, gameID string) error {
	if err := a.c.ConnectWS(ctx); err != nil {
		return err
	}
	defer a.c.CloseWS()
	if err := a.c.Subscribe(gameID); err != nil {
		return err
	}
	log.Info().Str("gameId", gameID).Msg("Watching, Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-a.c.Events():
			if !ok {
				return errors.New("connection closed")
			}
			switch {
			case ev.Type == service.EventGameStateUpdate && ev.GameState != nil:
				fmt.Fprintf(a.out, "[%s] %s\n", ev.Timestamp.Format("15:04:05"), ev.Action)
				printState(a.out, ev.GameState)
			case ev.GameID == gameID:
				fmt.Fprintf(a.out, "[%s] %s %s\n", ev.Timestamp.Format("15:04:05"), ev.Type, ev.Data)
			}
		}
	}
}

// scenarioInput reads a scenario file, or builds an empty all-clear map.
func scenarioInput(file string, cols, rows int, name string) (service.ScenarioInput, error) {
	var in service.ScenarioInput
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return in, err
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse %s: %w", file, err)
		}
	} else {
		if cols <= 0 || rows <= 0 {
			return in, errors.New("scenario-create requires -file or -cols and -rows")
		}
		in.Scenario = *hexwar.NewScenario(cols, rows)
	}
	if name != "" {
		in.Name = name
	}
	return in, nil
}

func printGame(w io.Writer, g *model.Game) {
	fmt.Fprintf(w, "game %s %q  %s  v%d\n", g.ID, g.Name, g.Status, g.Version)
	fmt.Fprintf(w, "  player 1: %s  player 2: %s\n", g.Player1ID, orDash(g.Player2ID))
	if g.Winner != hexwar.NoPlayer {
		fmt.Fprintf(w, "  winner: player %d\n", g.Winner)
	}
	if g.State != nil {
		printState(w, g.State)
	}
}

func printState(w io.Writer, gs *hexwar.GameState) {
	fmt.Fprintf(w, "  turn %d, player %d, %s/%s\n", gs.TurnNumber, gs.ActivePlayer, gs.Step.Phase(), gs.Step.Action())
	if gs.SelectedUnitID != "" {
		fmt.Fprintf(w, "  selected: %s\n", gs.SelectedUnitID)
	}
	for _, u := range gs.Units {
		fmt.Fprintf(w, "  %-10s p%d %-9s %d-%d at %-6s %s\n", u.ID, u.Player, u.Arm, u.CombatStrength, u.MovementAllowance, u.Coord(), u.Status)
	}
}

func printRange(w io.Writer, r hexwar.Range) {
	coords := r.Coords()
	sort.SliceStable(coords, func(i, j int) bool { return r[coords[i]] < r[coords[j]] })
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, fmt.Sprintf("%s=%d", c, r[c]))
	}
	fmt.Fprintf(w, "%d hexes: %s\n", len(coords), strings.Join(parts, " "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
