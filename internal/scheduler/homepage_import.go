package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/domain"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/sources/homepage"
)

// Importer adds forms to a bookmark collection, skipping known URLs.
type Importer interface {
	Import(ctx context.Context, forms []domain.BookmarkForm) (added, skipped int, err error)
}

// ImportResult summarises one homepage import.
type ImportResult struct {
	Read    int
	Added   int
	Skipped int
}

// HomepageImporter pulls Homepage bookmarks and services into the library,
// once or periodically.
type HomepageImporter struct {
	loader        *homepage.Loader
	target        Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewHomepageImporter creates an importer. Either file path may be empty;
// manualTrigger may be nil.
func NewHomepageImporter(
	bookmarksFile string,
	servicesFile string,
	target Importer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *HomepageImporter {
	return &HomepageImporter{
		loader:        homepage.NewLoader(bookmarksFile, servicesFile),
		target:        target,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once, then again every interval and on each manual trigger.
// An interval <= 0 only imports once.
func (hi *HomepageImporter) Start(ctx context.Context) error {
	// Load immediately on start
	if _, err := hi.Import(ctx); err != nil {
		return fmt.Errorf("initial homepage import failed: %w", err)
	}
	if hi.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(hi.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hi.importLogged(ctx)
			case <-hi.manualTrigger:
				hi.logger.Info("manual homepage import triggered")
				hi.importLogged(ctx)
			case <-hi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (hi *HomepageImporter) Stop() {
	close(hi.stopCh)
}

func (hi *HomepageImporter) importLogged(ctx context.Context) {
	if _, err := hi.Import(ctx); err != nil {
		hi.logger.Error("failed to import homepage entries", logger.Error(err))
	}
}

// Import reads the configured files and adds the new entries.
func (hi *HomepageImporter) Import(ctx context.Context) (ImportResult, error) {
	var forms []domain.BookmarkForm

	if hi.loader.BookmarksPath() != "" {
		config, err := hi.loader.LoadBookmarks()
		if err != nil {
			return ImportResult{}, err
		}
		mapped, err := homepage.MapBookmarks(config)
		if err != nil && !errors.Is(err, homepage.ErrNoBookmarks) {
			return ImportResult{}, err
		}
		forms = append(forms, mapped...)
	}

	if hi.loader.ServicesPath() != "" {
		config, err := hi.loader.LoadServices()
		if err != nil {
			return ImportResult{}, err
		}
		mapped, err := homepage.MapServices(config)
		if err != nil && !errors.Is(err, homepage.ErrNoServices) {
			return ImportResult{}, err
		}
		forms = append(forms, mapped...)
	}

	if len(forms) == 0 {
		return ImportResult{}, errors.New("nothing to import from homepage")
	}

	added, skipped, err := hi.target.Import(ctx, forms)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to store homepage entries: %w", err)
	}

	res := ImportResult{Read: len(forms), Added: added, Skipped: skipped}
	hi.logger.Info("homepage import done",
		logger.Int("read", res.Read),
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped))
	return res, nil
}
