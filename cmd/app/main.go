package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vellum/internal"
	"github.com/starford/vellum/internal/annotation"
	"github.com/starford/vellum/internal/apiclient"
	"github.com/starford/vellum/internal/creator"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/store"
	pkgconfig "github.com/starford/vellum/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// clientStore builds an API client and a store for the file named on the
// command line.
func clientStore(cmd *cli.Command) (*apiclient.Client, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cc := cfg.Client
	if v := cmd.String("base-url"); v != "" {
		cc.BaseURL = v
	}
	if v := cmd.String("token"); v != "" {
		cc.Token = v
	}

	opts := []apiclient.Option{apiclient.WithToken(cc.Token)}
	if cc.UserID != "" {
		opts = append(opts, apiclient.WithUser(models.User{ID: cc.UserID, Name: cc.UserName}))
	}
	client := apiclient.New(cc.BaseURL, opts...)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	st := store.New(store.Options{
		FileID:               cmd.String("file"),
		FileVersionID:        cmd.String("version"),
		IsCurrentFileVersion: true,
	}, logger)
	return client, st, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listAnnotations(ctx context.Context, cmd *cli.Command) error {
	client, st, err := clientStore(cmd)
	if err != nil {
		return err
	}
	defer client.Destroy()

	if err := st.FetchAnnotations(ctx, client); err != nil {
		return err
	}
	annotations := annotation.GetAnnotations(st.State().Annotations)
	if page := cmd.Int("page"); page > 0 {
		annotations = annotation.GetAnnotationsForLocation(st.State().Annotations, models.Page(int(page)))
	}
	return printJSON(annotations)
}

func createAnnotation(ctx context.Context, cmd *cli.Command) error {
	client, st, err := clientStore(cmd)
	if err != nil {
		return err
	}
	defer client.Destroy()

	kind := cmd.String("type")
	if kind != models.TypePoint && kind != models.TypeRegion {
		return fmt.Errorf("unsupported type %q (point or region)", kind)
	}
	item := &creator.Item{
		Location: models.Page(int(cmd.Int("page"))),
		Shape: geometry.Shape{
			X:      cmd.Float("x"),
			Y:      cmd.Float("y"),
			Width:  cmd.Float("width"),
			Height: cmd.Float("height"),
		},
		TargetType: kind,
	}
	if kind == models.TypePoint {
		item.Shape.Width, item.Shape.Height = 0, 0
	}
	st.Dispatch(creator.SetStaged{Item: item})
	st.Dispatch(creator.SetMessage{Message: cmd.String("message")})

	s := st.State()
	payload := creator.GetCreatorStaged(s.Creator).Payload(s.Options.FileVersionID, creator.GetCreatorMessage(s.Creator))
	created, err := st.CreateAnnotation(ctx, client, payload)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	clientFlags := []cli.Flag{
		&cli.StringFlag{Name: "file", Usage: "File ID", Required: true},
		&cli.StringFlag{Name: "version", Usage: "File version ID", Required: true},
		&cli.StringFlag{Name: "base-url", Usage: "API base URL (overrides client.base_url)", Sources: cli.EnvVars("VELLUM_BASE_URL")},
		&cli.StringFlag{Name: "token", Usage: "Bearer token (overrides client.token)", Sources: cli.EnvVars("VELLUM_TOKEN")},
	}

	cmd := &cli.Command{
		Name:   "vellum",
		Usage:  "Document annotation service with SQLite storage, inbox imports, and an MCP server",
		Flags:  []cli.Flag{configFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and inbox watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve annotation tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:  "annotations",
				Usage: "List or create annotations through the HTTP API",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "Print every annotation of a file version",
						Flags: append([]cli.Flag{
							&cli.IntFlag{Name: "page", Usage: "Only annotations on this page"},
						}, clientFlags...),
						Action: listAnnotations,
					},
					{
						Name:  "create",
						Usage: "Create a point or region annotation",
						Flags: append([]cli.Flag{
							&cli.StringFlag{Name: "type", Value: models.TypePoint, Usage: "point or region"},
							&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
							&cli.FloatFlag{Name: "x", Usage: "Left edge, percent of page width"},
							&cli.FloatFlag{Name: "y", Usage: "Top edge, percent of page height"},
							&cli.FloatFlag{Name: "width", Usage: "Region width, percent"},
							&cli.FloatFlag{Name: "height", Usage: "Region height, percent"},
							&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Comment text"},
						}, clientFlags...),
						Action: createAnnotation,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
