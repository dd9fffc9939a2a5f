package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/form"
	"github.com/pyama86/opsboard/domain/listing"
	"github.com/pyama86/opsboard/domain/repository"
	"github.com/pyama86/opsboard/handler"
	"github.com/pyama86/opsboard/presentation/tables"
)

var (
	tabName      string
	searchTerm   string
	sortField    string
	sortOrder    string
	departmentID int64
	projectID    int64
	setFields    []string
)

var incidentsCmd = &cobra.Command{
	Use:     "incidents",
	Aliases: []string{"incident", "inc"},
	Short:   "List and create incidents",
}

var incidentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents of a tab with search and sort applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tab, err := entity.ParseTab(tabName)
		if err != nil {
			return err
		}
		order, err := listing.ParseOrder(sortOrder)
		if err != nil {
			return err
		}
		sd := listing.SortDirective{Field: sortField, Order: order}

		app, err := handler.Handle(ctx, configPath)
		if err != nil {
			return err
		}

		// 部署とプロジェクトで絞る場合は専用の一覧 API を使う
		if cmd.Flags().Changed("department") {
			if tab != entity.TabProject {
				return errors.New("--department and --project require --tab project")
			}
			token, ok := app.Sessions.CurrentToken()
			if !ok {
				return repository.ErrNoSession
			}
			items, err := app.API.ProjectIncidentsFor(ctx, token, departmentID, projectID)
			if err != nil {
				return err
			}
			if sd.Field != "" && !slices.Contains(listing.SortOptions(tab), sd.Field) {
				return fmt.Errorf("cannot sort %s incidents by %q", tab, sd.Field)
			}
			rows := listing.Display(items, searchTerm, sd, listing.ProjectFields)
			fmt.Fprintln(cmd.OutOrStdout(), tables.Render(tables.Headers(tab), tables.ProjectRows(rows)))
			return nil
		}

		c := app.Console
		if err := c.SelectTab(tab); err != nil {
			return err
		}
		c.SetSearch(searchTerm)
		if err := c.SetSort(sd); err != nil {
			return err
		}
		if err := c.Refresh(ctx); err != nil {
			if errors.Is(err, repository.ErrNoSession) {
				return err
			}
			// 片方だけの失敗なら表示中のタブは取れている可能性がある
			snap := c.Snapshot()
			if (tab == entity.TabOperational && snap.OperationalErr != nil) || (tab == entity.TabProject && snap.ProjectErr != nil) {
				return err
			}
		}

		var rows [][]string
		if tab == entity.TabProject {
			rows = tables.ProjectRows(c.ProjectRows())
		} else {
			rows = tables.OperationalRows(c.OperationalRows())
		}
		fmt.Fprintln(cmd.OutOrStdout(), tables.Render(tables.Headers(tab), rows))
		return nil
	},
}

var incidentsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an incident from field=value pairs",
	Example: "  opsboard incidents create --tab operational --set title='DNS down' --set severity=HIGH --set operationId=12",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tab, err := entity.ParseTab(tabName)
		if err != nil {
			return err
		}
		app, err := handler.Handle(ctx, configPath)
		if err != nil {
			return err
		}

		c := app.Console
		if err := c.SelectTab(tab); err != nil {
			return err
		}
		c.OpenCreate()
		for _, kv := range setFields {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: want field=value", kv)
			}
			if err := c.SetField(strings.TrimSpace(name), value); err != nil {
				return err
			}
		}
		if c.Draft().IsEmpty() {
			return errors.New("nothing to create: pass at least one --set field=value")
		}
		if err := c.Submit(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s incident.\n", tab)
		return nil
	},
}

var incidentsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the fields accepted by create",
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := entity.ParseTab(tabName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tables.RenderSchema(form.SchemaFor(tab)))
		return nil
	},
}

func init() {
	incidentsCmd.PersistentFlags().StringVar(&tabName, "tab", "operational", "incident tab (operational or project)")

	incidentsListCmd.Flags().StringVar(&searchTerm, "search", "", "case-insensitive search term")
	incidentsListCmd.Flags().StringVar(&sortField, "sort", "", "sort field (severity, category, incidentDate)")
	incidentsListCmd.Flags().StringVar(&sortOrder, "order", "asc", "sort order (asc or desc)")
	incidentsListCmd.Flags().Int64Var(&departmentID, "department", 0, "department id (project tab only)")
	incidentsListCmd.Flags().Int64Var(&projectID, "project", 0, "project id (project tab only)")
	incidentsListCmd.MarkFlagsRequiredTogether("department", "project")

	incidentsCreateCmd.Flags().StringArrayVar(&setFields, "set", nil, "field=value, repeatable")

	incidentsCmd.AddCommand(incidentsListCmd, incidentsCreateCmd, incidentsSchemaCmd)
	rootCmd.AddCommand(incidentsCmd)
}
