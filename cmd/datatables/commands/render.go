package commands

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/satishbabariya/datatables-go/internal/transport/httpapi"
	"github.com/satishbabariya/datatables-go/internal/ui"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(opts *rootOptions) *cobra.Command {
	var (
		query  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <table>",
		Short: "Render one page of a configured table",
		Long: `Render one page of a configured table. The request is given as a query
string in the table protocol, for example:

    datatables render orders --query 'draw=1&start=0&length=10&search[value]=ada'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseQuery(query)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, c, err := opts.container(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			tbl, err := c.Tables().Table(args[0])
			if err != nil {
				return err
			}
			resp, err := tbl.Render(ctx, req)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case "table":
				ui.PrintInfo("draw %d: %d of %d records", resp.Draw, resp.RecordsFiltered, resp.RecordsTotal)
				return ui.PrintRows(resp.Data)
			default:
				return fmt.Errorf("unknown format: %s", format)
			}
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "request query string")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or table")

	return cmd
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(opts *rootOptions) *cobra.Command {
	var (
		query    string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "sql <table>",
		Short: "Print the SQL a render would run",
		Long:  "Print the page, total count and filtered count statements for a request without executing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseQuery(query)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, c, err := opts.container(ctx, false)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			tbl, err := c.Tables().Table(args[0])
			if err != nil {
				return err
			}
			resp, err := tbl.Explain(req)
			if err != nil {
				return err
			}

			if markdown {
				return ui.PrintQueries(resp.Queries)
			}
			ui.PrintSQL("data", resp.Queries.Data)
			ui.PrintSQL("count_all", resp.Queries.CountAll)
			ui.PrintSQL("count_filtered", resp.Queries.CountFiltered)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "request query string")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the statements as markdown")

	return cmd
}

func parseQuery(raw string) (domain.ClientRequest, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return domain.ClientRequest{}, fmt.Errorf("invalid --query: %w", err)
	}
	return httpapi.ParseRequest(values), nil
}
