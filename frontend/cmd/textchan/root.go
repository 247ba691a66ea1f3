package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/textchan-dev/textchan/frontend/internal/apiclient"
	"github.com/textchan-dev/textchan/frontend/internal/identity"
	"github.com/textchan-dev/textchan/frontend/internal/render"
	"github.com/textchan-dev/textchan/shared/logger"
)

const defaultServer = "http://localhost:3000"

var (
	serverURL    string
	userFile     string
	verbose      bool
	client       *apiclient.APIClient
	out          *render.Renderer
	resolvedUser string
)

var rootCmd = &cobra.Command{
	Use:   "textchan",
	Short: "Terminal client for the weekend-only anonymous forum",
	Long: `textchan talks to a Textchan server.

Posting is open on Saturday and Sunday (UTC). Reading works any day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitializeWriter(cmd.ErrOrStderr(), level, false)

		if serverURL == "" {
			serverURL = os.Getenv("TEXTCHAN_SERVER")
		}
		if serverURL == "" {
			serverURL = defaultServer
		}
		client = apiclient.New(serverURL)
		out = render.New(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default $TEXTCHAN_SERVER or "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&userFile, "user-file", "", "file holding your user id (default $XDG_CONFIG_HOME/textchan/user_id)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// userId loads the persistent id once per process.
func userId() string {
	if resolvedUser != "" {
		return resolvedUser
	}
	path := userFile
	if path == "" {
		if p, err := identity.DefaultPath(); err == nil {
			path = p
		} else {
			logger.Log.Warn("no config directory", "error", err)
		}
	}
	resolvedUser = identity.Load(path)
	return resolvedUser
}
