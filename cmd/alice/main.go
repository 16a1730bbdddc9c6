package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alice/internal/config"
	"alice/internal/db"
	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/mcpserver"
	"alice/internal/migrate"
	"alice/internal/repo"
	httpserver "alice/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "alice",
	Short: "Alice CLI",
	Long: `Alice is a local task tracker for projects, epics, tasks, decisions,
and a priority plan. It keeps everything in a SQLite database under the
workspace's .alice directory.

- 'alice serve' exposes the tracker over HTTP.
- 'alice mcp' runs the MCP stdio adapter for AI assistants, which talks
  to a running 'alice serve' backend and addresses projects by name.
- The project/task/plan subcommands operate on the database directly.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ALICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(planCmd())
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Listen = addr
			}
			if cmd.Flags().Changed("base-path") {
				cfg.Server.BasePath = basePath
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			handler, err := httpserver.New(httpserver.Config{Engine: e, BasePath: cfg.Server.BasePath})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Listen, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Alice API on http://%s (OpenAPI at /openapi.json)\n", cfg.Server.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8605", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/", "API base path")
	return cmd
}

func mcpCmd() *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP stdio adapter",
		Long:  "Runs the MCP adapter over stdio, forwarding tool calls to a running Alice HTTP backend. Start 'alice serve' first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpserver.New(backend)
			return server.ServeStdio(s)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "http://127.0.0.1:8605", "Alice HTTP backend URL")
	return cmd
}

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectShowCmd())
	return prj
}

func projectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListProjects(ctx, 0, 0)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Description", "Created"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.ID, p.Name, p.Description, p.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func projectCreateCmd() *cobra.Command {
	var name, desc, path string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.CreateProject(ctx, name, desc, path)
				if err != nil {
					return err
				}
				return printJSONOrIndent(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "unique project name")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().StringVar(&path, "path", "", "project codebase path")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func projectShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a project by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProjectByName(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrIndent(p)
			})
		},
	}
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskAddCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var project, status, assignee string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProjectByName(ctx, project)
				if err != nil {
					return err
				}
				tasks, err := e.ListTasks(ctx, repo.TaskFilters{
					ProjectID: p.ID,
					Status:    status,
					Assignee:  assignee,
				}, false)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Assignee", "Epic"})
				for _, t := range tasks {
					epic := ""
					if t.EpicID != nil {
						epic = fmt.Sprint(*t.EpicID)
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Assignee, epic})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee filter")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func taskAddCmd() *cobra.Command {
	var project, title, desc, status, assignee string
	var epicID int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProjectByName(ctx, project)
				if err != nil {
					return err
				}
				opts := engine.TaskCreateOptions{
					ProjectID:   p.ID,
					Title:       title,
					Description: desc,
					Status:      status,
					Assignee:    assignee,
				}
				if cmd.Flags().Changed("epic") {
					opts.EpicID = &epicID
				}
				t, err := e.CreateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrIndent(t)
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee")
	cmd.Flags().Int64Var(&epicID, "epic", 0, "epic id")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func planCmd() *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Inspect the priority plan"}
	plan.AddCommand(planShowCmd())
	plan.AddCommand(planNextCmd())
	return plan
}

func planShowCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the priority plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProjectByName(ctx, project)
				if err != nil {
					return err
				}
				items, err := e.GetPlan(ctx, p.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Pos", "Task", "Title", "Status", "Rationale"})
				for _, item := range items {
					tw.AppendRow(table.Row{item.Position, item.Task.ID, item.Task.Title, item.Task.Status, item.Rationale})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func planNextCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next actionable planned task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProjectByName(ctx, project)
				if err != nil {
					return err
				}
				t, err := e.NextTask(ctx, p.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(t)
				}
				printTaskSummary(t)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func printJSONOrIndent(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTaskSummary(t domain.Task) {
	fmt.Printf("#%d %s [%s]\n", t.ID, t.Title, t.Status)
	if t.Assignee != "" {
		fmt.Printf("assignee: %s\n", t.Assignee)
	}
	if t.Description != "" {
		fmt.Println(t.Description)
	}
}
