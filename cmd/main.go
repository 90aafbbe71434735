package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ochronus/goputiokit/internal/app"
	"github.com/ochronus/goputiokit/internal/config"
	"github.com/ochronus/goputiokit/internal/fakeapi"
	"github.com/ochronus/goputiokit/internal/poll"
	"github.com/ochronus/goputiokit/internal/utils"
	"github.com/ochronus/goputiokit/pkg/putio"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// cli carries state shared by every command.
type cli struct {
	configPath string
	out        io.Writer
	// containerOpts are appended when building the container, tests inject a transport here.
	containerOpts []app.Option
	// pollConfig overrides polling for get-token and mp4 convert --wait.
	pollConfig *poll.Config
}

func main() {
	c := &cli{out: os.Stdout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	defaultConfigPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultConfigPath = "./config.toml"
	}

	rootCmd := &cobra.Command{
		Use:           "goputiokit",
		Short:         "put.io command line client",
		Long:          "Command line client for the put.io v2 API: browse and manage files, convert videos to MP4, list subtitles and share with friends.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", defaultConfigPath, "Path to config file")
	rootCmd.SetOut(c.out)

	getTokenCmd := &cobra.Command{
		Use:   "get-token",
		Short: "Generate a put.io API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(false)
			if err != nil {
				return err
			}
			defer container.Close()
			_, err = utils.GetToken(cmd.Context(), container.Client, container.Config.Putio.AppID, c.out, c.polling(poll.DefaultInterval))
			return err
		},
	}

	generateConfigCmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate config",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(false)
			if err != nil {
				return err
			}
			defer container.Close()
			token, err := utils.GetToken(cmd.Context(), container.Client, container.Config.Putio.AppID, c.out, c.polling(poll.DefaultInterval))
			if err != nil {
				return err
			}
			return utils.GenerateConfig(c.configPath, token, c.out)
		},
	}

	serveFakeCmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Run a local fake put.io API with demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(false)
			if err != nil {
				return err
			}
			defer container.Close()

			store := fakeapi.NewStore()
			store.SeedDemo()
			fake := container.Config.Fake
			server := fakeapi.NewServer(fakeapi.Config{
				BindAddress: fake.BindAddress,
				Port:        fake.Port,
				Token:       fake.Token,
				Username:    "demo",
				AutoLink:    true,
			}, store, container.Logger)
			return server.StartWithContext(cmd.Context())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "goputiokit version %s\n", version)
		},
	}

	rootCmd.AddCommand(newFilesCmd(c))
	rootCmd.AddCommand(newMP4Cmd(c))
	rootCmd.AddCommand(newSubtitlesCmd(c))
	rootCmd.AddCommand(newWhoamiCmd(c))
	rootCmd.AddCommand(getTokenCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(serveFakeCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// container loads and validates the configuration and builds the container.
// Commands that talk to the API on behalf of a user pass needToken.
func (c *cli) container(needToken bool) (*app.Container, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if needToken {
		if err := cfg.RequireToken(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	opts := append([]app.Option{app.WithTokenValidation(false)}, c.containerOpts...)
	container, err := app.NewContainer(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	return container, nil
}

// client is a shortcut for commands that only need an authenticated client.
func (c *cli) client() (*putio.Client, func(), error) {
	container, err := c.container(true)
	if err != nil {
		return nil, nil, err
	}
	return container.Client, func() { container.Close() }, nil
}

func (c *cli) polling(interval time.Duration) poll.Config {
	if c.pollConfig != nil {
		return *c.pollConfig
	}
	return poll.Config{Interval: interval}
}
