package extension

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/logger"
)

type Icon string

const (
	IconDefault    Icon = "default"
	IconBookmarked Icon = "bookmarked"
)

// Toolbar titles.
const (
	TitleDefault = "Arvai"
	TitleConnect = "Connect to Arvai"
	TitleSaved   = "Saved to Arvai"
	TitleAdd     = "Add to Arvai"
)

// Painter applies an icon and a title to a tab's toolbar button.
type Painter interface {
	Paint(ctx context.Context, tabID int, icon Icon, title string) error
}

// StatusChecker answers whether a URL is bookmarked.
type StatusChecker interface {
	CheckStatus(ctx context.Context, pageURL string) StatusResult
}

// Badge is what a tab's toolbar button currently shows.
type Badge struct {
	TabID     int       `json:"tabId"`
	Icon      Icon      `json:"icon"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IconSync keeps toolbar buttons in line with bookmark status.
type IconSync struct {
	painter Painter
	status  StatusChecker
	logger  logger.Logger
}

func NewIconSync(painter Painter, status StatusChecker, log logger.Logger) *IconSync {
	return &IconSync{painter: painter, status: status, logger: log}
}

// Resolve picks the icon and title for url without painting.
func (s *IconSync) Resolve(ctx context.Context, pageURL string) (Icon, string) {
	if !isWebPage(pageURL) {
		return IconDefault, TitleDefault
	}

	st := s.status.CheckStatus(ctx, pageURL)
	switch {
	case !st.Connected:
		return IconDefault, TitleConnect
	case st.Bookmarked:
		return IconBookmarked, TitleSaved
	default:
		return IconDefault, TitleAdd
	}
}

// Update repaints one tab. Painting failures are logged and dropped.
func (s *IconSync) Update(ctx context.Context, tabID int, pageURL string) {
	icon, title := s.Resolve(ctx, pageURL)
	if err := s.painter.Paint(ctx, tabID, icon, title); err != nil {
		s.logger.Debug("failed to paint toolbar icon",
			logger.Int("tab", tabID),
			logger.String("icon", string(icon)),
			logger.Error(err))
	}
}

// TabUpdated only reacts once the page finished loading.
func (s *IconSync) TabUpdated(ctx context.Context, tabID int, pageURL, status string) {
	if status != "complete" || pageURL == "" {
		return
	}
	s.Update(ctx, tabID, pageURL)
}

func (s *IconSync) TabActivated(ctx context.Context, tabID int, pageURL string) {
	if pageURL == "" {
		return
	}
	s.Update(ctx, tabID, pageURL)
}

func isWebPage(pageURL string) bool {
	return strings.HasPrefix(pageURL, "http://") || strings.HasPrefix(pageURL, "https://")
}

// BadgeBoard is an in-process Painter: it remembers the last badge of every
// tab so the CLI can show it.
type BadgeBoard struct {
	mu     sync.RWMutex
	badges map[int]Badge
	logger logger.Logger
	now    func() time.Time
}

func NewBadgeBoard(log logger.Logger) *BadgeBoard {
	return &BadgeBoard{
		badges: make(map[int]Badge),
		logger: log,
		now:    time.Now,
	}
}

func (b *BadgeBoard) Paint(_ context.Context, tabID int, icon Icon, title string) error {
	b.mu.Lock()
	b.badges[tabID] = Badge{
		TabID:     tabID,
		Icon:      icon,
		Title:     title,
		UpdatedAt: b.now(),
	}
	b.mu.Unlock()

	b.logger.Debug("badge painted",
		logger.Int("tab", tabID),
		logger.String("icon", string(icon)),
		logger.String("title", title))
	return nil
}

func (b *BadgeBoard) Badge(tabID int) (Badge, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	badge, ok := b.badges[tabID]
	return badge, ok
}

// Badges lists every known tab, ordered by tab id.
func (b *BadgeBoard) Badges() []Badge {
	b.mu.RLock()
	out := make([]Badge, 0, len(b.badges))
	for _, badge := range b.badges {
		out = append(out, badge)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TabID < out[j].TabID })
	return out
}
