package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veleda/skald/internal/app"
	"github.com/veleda/skald/internal/atlas"
	"github.com/veleda/skald/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "skald: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "skald",
		Short: "Browse FanFiction.net story metadata from an Atlas archive",
		Long: `skald looks up, searches, and browses FanFiction.net story metadata
served by an Atlas archive instance.

Run "skald init" once to store the archive address and credentials,
then look up stories by id or URL, search the archive, or browse it
interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetLevel(logrus.WarnLevel)
			if opts.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStoryCmd(opts),
		newSearchCmd(opts),
		newBrowseCmd(opts),
		newIDsCmd(opts),
		newInitCmd(opts),
	)

	return root
}

func newApp(opts *rootOptions) (*app.App, error) {
	return app.New(app.Options{ConfigPath: opts.configPath})
}

func newStoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "story <id-or-url>...",
		Short: "Look up stories by id or FanFiction.net URL",
		Long: `Fetch and print the metadata card for one or more stories.

A reference can be a bare story id or any FanFiction.net story URL:

  skald story 15234567
  skald story https://www.fanfiction.net/s/15234567/3/A-Magical-Marvel`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			return a.LookupStories(cmd.Context(), args)
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var search app.SearchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the archive and print matching stories",
		Long: `Run a single metadata query against the archive and print one line
per matching story:

  skald search --title "magical" --fandom "Harry Potter" --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			return a.SearchStories(cmd.Context(), search)
		},
	}

	cmd.Flags().StringVarP(&search.Title, "title", "t", "", "title substring (case-insensitive)")
	cmd.Flags().StringVarP(&search.Description, "description", "d", "", "description substring (case-insensitive)")
	cmd.Flags().StringVarP(&search.Fandom, "fandom", "f", "", "fandom substring (case-insensitive)")
	cmd.Flags().Int64Var(&search.AuthorID, "author", 0, "author id")
	cmd.Flags().Int64Var(&search.MinFicID, "min-id", 0, "lowest story id to include")
	cmd.Flags().Int64Var(&search.MinUpdateID, "min-update-id", 0, "lowest update id to include")
	cmd.Flags().IntVarP(&search.Limit, "limit", "n", 0, "maximum results (server default when omitted)")

	return cmd
}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var filter atlas.MetadataQuery
	var pageEvery int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the archive in an interactive terminal UI",
		Long: `Open the interactive browser. Stories stream in page by page while
you navigate; optional flags narrow the query server-side:

  skald browse
  skald browse --fandom "Naruto" --min-id 8000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(app.Options{ConfigPath: opts.configPath, PageEvery: pageEvery})
			if err != nil {
				return err
			}

			// The alternate screen belongs to the UI. Logs go to a file
			// with --verbose, otherwise nowhere.
			if opts.verbose {
				f, err := tea.LogToFile("skald-debug.log", "skald")
				if err != nil {
					return fmt.Errorf("open debug log: %w", err)
				}
				defer f.Close()
				logrus.SetOutput(f)
			} else {
				logrus.SetOutput(io.Discard)
			}

			return a.Browse(cmd.Context(), filter)
		},
	}

	cmd.Flags().StringVarP(&filter.TitleLike, "title", "t", "", "title substring (case-insensitive)")
	cmd.Flags().StringVarP(&filter.DescriptionLike, "description", "d", "", "description substring (case-insensitive)")
	cmd.Flags().StringVarP(&filter.FandomsLike, "fandom", "f", "", "fandom substring (case-insensitive)")
	cmd.Flags().Int64Var(&filter.AuthorID, "author", 0, "author id")
	cmd.Flags().Int64Var(&filter.MinFicID, "min-id", 0, "start paging from this story id")
	cmd.Flags().Int64Var(&filter.MinUpdateID, "min-update-id", 0, "lowest update id to include")
	cmd.Flags().IntVar(&pageEvery, "page-every", 0, "seconds between page fetches (default 2)")

	return cmd
}

func newIDsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Print the highest story and update ids in the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			return a.ShowMaxIDs(cmd.Context())
		},
	}
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Store the archive address and credentials",
		Long: `Prompt for the Atlas address, username, and password, verify them
against the archive, and write them to the config file. The password
is read without echo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())

			baseURL, err := promptLine(reader, "Atlas URL (blank for "+atlas.DefaultBaseURL+"): ")
			if err != nil {
				return err
			}
			username, err := promptLine(reader, "Username: ")
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			return a.SaveCredentials(cmd.Context(), baseURL, username, password)
		},
	}
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}
