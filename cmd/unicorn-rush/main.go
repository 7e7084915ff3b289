// Command unicorn-rush runs the game client's session core with a minimal
// line-oriented front end. The session layer is the product; this front end
// only issues commands and prints snapshot changes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/client"
	"github.com/virtualwest/unicorn-rush/internal/directory"
	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/internal/store"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

type config struct {
	server    string
	wsServer  string
	storePath string
	verbose   bool
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "unicorn-rush.db"
	}
	return filepath.Join(home, ".unicorn-rush", "session.db")
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UNICORN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "unicorn-rush",
		Short:         "Unicorn Rush game client.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.wsServer == "" {
				cfg.wsServer = strings.NewReplacer("http://", "ws://", "https://", "wss://").
					Replace(cfg.server)
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&cfg.server, "server", "s", "http://localhost:8000", "game server base URL (env: UNICORN_SERVER)")
	fs.StringVar(&cfg.wsServer, "ws-server", "", "websocket base URL, derived from --server when empty (env: UNICORN_WS_SERVER)")
	fs.StringVar(&cfg.storePath, "store", defaultStorePath(), "path to the persisted session database (env: UNICORN_STORE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "debug logging (env: UNICORN_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	log := zap.NewNop()
	if cfg.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.storePath), 0o755); err != nil {
		log.Warn("cannot create store directory", zap.Error(err))
	}
	st, err := store.Open(cfg.storePath, log)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer st.Close()

	dir := directory.New(cfg.server, log)
	core := client.New(client.Config{WSBase: cfg.wsServer}, st, dir, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go core.Run(ctx)
	go printUpdates(ctx, core)

	return repl(ctx, core)
}

// printUpdates renders each snapshot change as one status line.
func printUpdates(ctx context.Context, core *client.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-core.Updates():
			fmt.Printf("[%s|%s] room=%s round=%d", snap.Phase, snap.Conn, snap.RoomID, snap.Round)
			if snap.Notice != "" {
				fmt.Printf("  %s", snap.Notice)
			}
			fmt.Println()
			if snap.Event != nil && snap.Phase == session.PhasePlaying {
				fmt.Printf("  event: %s: %s\n", snap.Event.Title, snap.Event.Description)
				for key, option := range snap.Event.DecisionOptions {
					fmt.Printf("    [%s] %s\n", key, option)
				}
			}
		}
	}
}

func repl(ctx context.Context, core *client.Client) error {
	fmt.Println("commands: begin | name <n> | join [room] | idea <text> | role <id> | act <option> | start | restart | reconnect | exit | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
		case "begin":
			core.Inbox() <- client.EnterWelcome{}
		case "name":
			core.Inbox() <- client.SetName{Name: rest}
		case "join":
			core.Inbox() <- client.JoinRoom{RoomID: rest}
		case "idea":
			core.Inbox() <- client.SubmitIdea{Idea: rest}
		case "role":
			core.Inbox() <- client.SelectRole{Role: rest}
		case "act":
			core.Inbox() <- client.SubmitAction{Action: protocol.PlayerAction{Action: rest}}
		case "start":
			core.Inbox() <- client.StartGame{}
		case "restart":
			core.Inbox() <- client.RestartGame{}
		case "reconnect":
			core.Inbox() <- client.Reconnect{}
		case "exit":
			core.Inbox() <- client.Exit{}
		case "quit":
			core.Inbox() <- client.Shutdown{}
			return nil
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
	return scanner.Err()
}

func main() {
	_ = godotenv.Load()
	cfg := &config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
