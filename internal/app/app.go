package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veleda/skald/internal/atlas"
	"github.com/veleda/skald/internal/config"
	"github.com/veleda/skald/internal/prefs"
	"github.com/veleda/skald/internal/state"
	"github.com/veleda/skald/internal/ui"
)

// Options configure the skald application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/skald/prefs.toml
	PageEvery  int    // seconds between browse page fetches; zero uses default
}

// requestTimeout bounds each Atlas request end to end.
const requestTimeout = 30 * time.Second

// App wires configuration, the Atlas client, and the output stream behind
// the CLI commands.
type App struct {
	opts   Options
	cfg    config.Config
	client *atlas.Client
	out    io.Writer
}

// New loads configuration and initializes the Atlas client.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("init atlas client: %w", err)
	}

	return &App{opts: opts, cfg: cfg, client: client, out: os.Stdout}, nil
}

func newClient(cfg config.Config) (*atlas.Client, error) {
	return atlas.NewClient(atlas.Options{
		BaseURL: cfg.BaseURL,
		Credentials: atlas.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		HTTPClient: &http.Client{Timeout: requestTimeout},
	})
}

// theme returns the user's persisted theme, so CLI cards and the TUI agree.
func (a *App) theme() ui.Theme {
	return ui.GetTheme(prefs.Load(a.opts.PrefsPath).Theme)
}

// LookupStories resolves each reference to a story id, fetches the metadata
// for all of them concurrently, and prints one card per story in argument
// order. Cards for fetched stories are printed even when other fetches fail.
func (a *App) LookupStories(ctx context.Context, references []string) error {
	ids := make([]int64, len(references))
	extractErrs := make([]error, len(references))
	for i, ref := range references {
		ids[i], extractErrs[i] = atlas.ExtractFicID(ref)
	}
	if err := errors.Join(extractErrs...); err != nil {
		return err
	}

	stories := make([]*atlas.StoryMetadata, len(ids))
	fetchErrs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			stories[i], fetchErrs[i] = a.client.FetchStoryMetadata(ctx, id)
		}(i, id)
	}
	wg.Wait()

	theme := a.theme()
	printed := 0
	for _, story := range stories {
		if story == nil {
			continue
		}
		if printed > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintln(a.out, ui.RenderStoryCard(*story, theme))
		printed++
	}

	return errors.Join(fetchErrs...)
}

// SearchOptions mirror the bulk metadata filters exposed by the search
// command.
type SearchOptions struct {
	Title       string
	Description string
	Fandom      string
	AuthorID    int64
	MinFicID    int64
	MinUpdateID int64
	Limit       int
}

// SearchStories runs a single bulk metadata query and prints one line per
// result.
func (a *App) SearchStories(ctx context.Context, opts SearchOptions) error {
	stories, err := a.client.FetchBulkMetadata(ctx, atlas.MetadataQuery{
		TitleLike:       opts.Title,
		DescriptionLike: opts.Description,
		FandomsLike:     opts.Fandom,
		AuthorID:        opts.AuthorID,
		MinFicID:        opts.MinFicID,
		MinUpdateID:     opts.MinUpdateID,
		Limit:           opts.Limit,
	})
	if err != nil {
		return err
	}

	if len(stories) == 0 {
		fmt.Fprintln(a.out, "no stories matched")
		return nil
	}

	theme := a.theme()
	for _, story := range stories {
		fmt.Fprintln(a.out, ui.RenderStoryLine(story, theme))
	}
	fmt.Fprintf(a.out, "\n%s stories\n", ui.FormatCount(len(stories)))
	return nil
}

// ShowMaxIDs reports the highest story and update ids known to Atlas. The
// two endpoints are independent, so they are fetched concurrently.
func (a *App) ShowMaxIDs(ctx context.Context) error {
	var (
		wg        sync.WaitGroup
		storyID   int64
		updateID  int64
		storyErr  error
		updateErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		storyID, storyErr = a.client.FetchMaxStoryID(ctx)
	}()
	go func() {
		defer wg.Done()
		updateID, updateErr = a.client.FetchMaxUpdateID(ctx)
	}()
	wg.Wait()

	if err := errors.Join(storyErr, updateErr); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "max story id:  %d\n", storyID)
	fmt.Fprintf(a.out, "max update id: %d\n", updateID)
	return nil
}

// SaveCredentials persists the base URL and credential pair, probing the API
// first. Definitively rejected credentials are not saved; an unreachable API
// only logs a warning so credentials can be staged while offline.
func (a *App) SaveCredentials(ctx context.Context, baseURL, username, password string) error {
	a.cfg.BaseURL = strings.TrimSpace(baseURL)
	a.cfg.Username = strings.TrimSpace(username)
	a.cfg.Password = password

	client, err := newClient(a.cfg)
	if err != nil {
		return fmt.Errorf("init atlas client: %w", err)
	}

	if _, err := client.FetchMaxStoryID(ctx); err != nil {
		var authErr *atlas.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("verify credentials: %w", err)
		}
		logrus.WithError(err).Warn("could not verify credentials against atlas")
	}
	a.client = client

	if err := config.Save(a.opts.ConfigPath, a.cfg); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "credentials saved")
	return nil
}

// Browse starts the background pager and runs the TUI until the context is
// cancelled or the user quits.
func (a *App) Browse(ctx context.Context, filter atlas.MetadataQuery) error {
	store := &state.Store{}

	interval := defaultPageInterval
	if a.opts.PageEvery > 0 {
		interval = time.Duration(a.opts.PageEvery) * time.Second
	}

	StartPager(ctx, store, a.client, filter, interval)

	userPrefs := prefs.Load(a.opts.PrefsPath)

	return ui.Run(ui.Options{
		Context:     ctx,
		Store:       store,
		PageTick:    interval,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   a.opts.PrefsPath,
		FilterLabel: filterLabel(filter),
	})
}

// filterLabel summarizes the active browse filters for the UI header.
func filterLabel(query atlas.MetadataQuery) string {
	var parts []string
	if query.TitleLike != "" {
		parts = append(parts, "title~"+query.TitleLike)
	}
	if query.DescriptionLike != "" {
		parts = append(parts, "description~"+query.DescriptionLike)
	}
	if query.FandomsLike != "" {
		parts = append(parts, "fandom~"+query.FandomsLike)
	}
	if query.AuthorID > 0 {
		parts = append(parts, fmt.Sprintf("author=%d", query.AuthorID))
	}
	if query.MinFicID > 0 {
		parts = append(parts, fmt.Sprintf("id>=%d", query.MinFicID))
	}
	if query.MinUpdateID > 0 {
		parts = append(parts, fmt.Sprintf("update>=%d", query.MinUpdateID))
	}
	if len(parts) == 0 {
		return "all stories"
	}
	return strings.Join(parts, " ")
}
