// Command devserver runs the stub game server: the room directory HTTP
// endpoints and the websocket game protocol, with canned round content.
package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/devserver"
)

type config struct {
	bind    string
	port    int
	verbose bool
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UNICORN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "devserver",
		Short:         "Stub Unicorn Rush game server for local play and testing.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: UNICORN_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8000, "port to listen on (env: UNICORN_PORT)")
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

func serve(ctx context.Context, cfg *config) error {
	log, err := buildLogger(cfg.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := devserver.NewRegistry(ctx, log)
	addr := fmt.Sprintf("%s:%d", cfg.bind, cfg.port)
	log.Info("devserver listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, devserver.Routes(reg, log))
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	_ = godotenv.Load()
	cfg := &config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
