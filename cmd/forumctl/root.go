package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/dashboard"
	"github.com/noah-isme/forum-inscriptions-api/pkg/client"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

type options struct {
	apiURL      string
	sessionPath string
	timeout     time.Duration
	verbose     bool
	out         io.Writer
}

// app is what every subcommand works with once flags are parsed.
type app struct {
	opts     *options
	client   *client.Client
	sessions *client.FileSession
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:          "forumctl",
		Short:        "Register for the Forum Contractuels and manage registrations",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	apiURL := os.Getenv("FORUM_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	defaultSession, _ := client.DefaultSessionPath()

	root.PersistentFlags().StringVar(&opts.apiURL, "api", apiURL, "API base URL including the version prefix")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session", defaultSession, "file holding the admin session")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newListCmd(opts),
		newSetStatusCmd(opts),
		newDeleteCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func newApp(opts *options) (*app, error) {
	logr := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logr = l
	}

	sessions := client.NewFileSession(opts.sessionPath)
	c := client.New(opts.apiURL)
	if marker, ok := sessions.Load(); ok {
		c.SetToken(marker)
	}
	return &app{
		opts:     opts,
		client:   c,
		sessions: sessions,
		catalog:  catalog.Default(),
		logger:   logr,
	}, nil
}

func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	if a.opts.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.opts.timeout)
}

func (a *app) dashboard() *dashboard.Controller {
	return dashboard.NewController(a.client, a.client, a.sessions, dashboard.Options{
		Catalog: a.catalog,
		Logger:  a.logger,
	})
}
