package cli

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/config"
	"github.com/dmitrijs2005/recipekeeper/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/recipekeeper/internal/client/services"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand. Unset
// flags fall back to the config file and then to defaults.
type globalFlags struct {
	configFile string
	server     string
	timeout    time.Duration
	sessionDB  string
}

// env is what a command needs to do its work. It lives for one command run.
type env struct {
	cfg     *config.Config
	auth    services.AuthService
	recipes services.RecipeService
	in      *bufio.Reader
}

// NewRootCmd creates the root command for the recipectl CLI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "recipectl",
		Short: "recipectl - command-line client for the recipe catalog",
		Long: `recipectl registers accounts, logs in and manages recipes on a
recipe catalog server. The session token is cached locally after login.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file path")
	pf.StringVar(&flags.server, "server", "", "server base URL, e.g. http://127.0.0.1:8080")
	pf.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout")
	pf.StringVar(&flags.sessionDB, "session-db", "", "path of the local session cache")

	cmd.AddCommand(newRegisterCmd(flags))
	cmd.AddCommand(newLoginCmd(flags))
	cmd.AddCommand(newLogoutCmd(flags))
	cmd.AddCommand(newWhoamiCmd(flags))
	cmd.AddCommand(newRecipesCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// resolve merges defaults, the config file and explicitly set flags.
func (f *globalFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configFile)
	if err != nil {
		return nil, err
	}
	pf := cmd.Flags()
	if pf.Changed("server") {
		cfg.ServerURL = f.server
	}
	if pf.Changed("timeout") {
		cfg.RequestTimeout = f.timeout
	}
	if pf.Changed("session-db") {
		cfg.SessionDB = f.sessionDB
	}
	return cfg, nil
}

// run builds the services for one command invocation and releases the
// session cache when fn returns.
func (f *globalFlags) run(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}

	api, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := client.InitDatabase(ctx, cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("session cache: %w", err)
	}
	defer db.Close()

	auth := services.NewAuthService(api, sessions.NewSQLiteRepository(db), cfg.ServerURL)
	e := &env{
		cfg:     cfg,
		auth:    auth,
		recipes: services.NewRecipeService(api, auth),
		in:      bufio.NewReader(cmd.InOrStdin()),
	}
	return fn(ctx, e)
}
