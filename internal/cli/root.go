package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

type Config struct {
	Server string `env:"WLCTL_SERVER" envDefault:"http://localhost:8080"`
	Secret string `env:"GATE_SECRET"`
	Output string `env:"WLCTL_OUTPUT" envDefault:"text"`
}

type app struct {
	cfg    Config
	client *Client
	out    io.Writer
}

// NewRootCmd arma wlctl escribiendo en out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	if err := env.Parse(&a.cfg); err != nil {
		fmt.Fprintln(os.Stderr, "wlctl: env:", err)
	}

	root := &cobra.Command{
		Use:   "wlctl",
		Short: "Administra la whitelist del bot por su API HTTP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Output != "text" && a.cfg.Output != "json" {
				return fmt.Errorf("unknown output format %q", a.cfg.Output)
			}
			a.client = NewClient(a.cfg.Server, a.cfg.Secret)
			return nil
		},
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfg.Server, "server", a.cfg.Server, "Bot API URL (env: WLCTL_SERVER)")
	root.PersistentFlags().StringVar(&a.cfg.Secret, "secret", a.cfg.Secret, "Shared gate secret (env: GATE_SECRET)")
	root.PersistentFlags().StringVarP(&a.cfg.Output, "output", "o", a.cfg.Output, "Output format: text, json")

	root.AddCommand(a.newCheckCmd(), a.newAddCmd(), a.newRemoveCmd(), a.newListCmd(), a.newReloadCmd(), a.newHealthCmd())
	return root
}

func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) json() bool { return a.cfg.Output == "json" }
