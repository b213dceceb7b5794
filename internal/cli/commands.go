package cli

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/7Lumine/whitelistbot/internal/adapters/httpgate"
	"github.com/7Lumine/whitelistbot/internal/domain"
)

var errNotAllowed = errors.New("not whitelisted")

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <identity>",
		Short: "Consulta si una identidad puede entrar (exit 1 si no)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res httpgate.CheckResponse
			if _, err := a.client.Do(cmd.Context(), http.MethodGet, "/api/v1/whitelist/"+url.PathEscape(args[0]), nil, &res); err != nil {
				return err
			}
			if a.json() {
				if err := a.printJSON(res); err != nil {
					return err
				}
			} else if res.Allowed {
				fmt.Fprintf(a.out, "%s: allowed\n", res.Identity)
			} else {
				fmt.Fprintf(a.out, "%s: not whitelisted\n", res.Identity)
			}
			if !res.Allowed {
				return errNotAllowed
			}
			return nil
		},
	}
}

func (a *app) newAddCmd() *cobra.Command {
	var (
		alternate bool
		account   string
	)
	cmd := &cobra.Command{
		Use:   "add <identity>",
		Short: "Agrega una identidad (prefijo alternativo con --alternate)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := httpgate.AddRequest{Identity: args[0], Namespace: domain.Primary.String(), AccountID: account}
			if alternate {
				req.Namespace = domain.Alternate.String()
			}
			var res httpgate.AddResponse
			if _, err := a.client.Do(cmd.Context(), http.MethodPost, "/api/v1/whitelist", req, &res); err != nil {
				return err
			}
			if a.json() {
				if err := a.printJSON(res); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(a.out, res.Result)
			}
			code, err := domain.ParseResult(res.Result)
			if err != nil {
				return err
			}
			if !code.OK() {
				return fmt.Errorf("add %s: %s", args[0], res.Result)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&alternate, "alternate", false, "Alternate (Bedrock) namespace")
	cmd.Flags().StringVar(&account, "account", "", "Linked account id")
	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identity>",
		Short: "Quita una identidad (forma guardada, con prefijo si es alternativa)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.Do(cmd.Context(), http.MethodDelete, "/api/v1/whitelist/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "removed %s\n", args[0])
			return nil
		},
	}
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista la whitelist completa",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res httpgate.ListResponse
			if _, err := a.client.Do(cmd.Context(), http.MethodGet, "/api/v1/whitelist", nil, &res); err != nil {
				return err
			}
			if a.json() {
				return a.printJSON(res)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "IDENTITY\tNAMESPACE\tACCOUNT\tREGISTERED")
			for _, e := range res.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Identity, e.Namespace, dash(e.AccountID), dash(e.RegisteredAt))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d players\n", res.Count)
			return nil
		},
	}
}

func (a *app) newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Relee whitelist y textos desde el store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res httpgate.ReloadResponse
			if _, err := a.client.Do(cmd.Context(), http.MethodPost, "/api/v1/reload", nil, &res); err != nil {
				return err
			}
			if a.json() {
				return a.printJSON(res)
			}
			fmt.Fprintf(a.out, "reloaded, %d players\n", res.Count)
			return nil
		},
	}
}

func (a *app) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Chequea que el bot responda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res map[string]any
			if _, err := a.client.Do(cmd.Context(), http.MethodGet, "/api/v1/health", nil, &res); err != nil {
				return err
			}
			if a.json() {
				return a.printJSON(res)
			}
			fmt.Fprintf(a.out, "%v (%v players)\n", res["status"], res["players"])
			return nil
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
