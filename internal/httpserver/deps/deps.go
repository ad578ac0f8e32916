package deps

import (
	"database/sql"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	AppName      string
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to reach admin endpoints (/infra, /api/keys)
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	CORSOrigins  []string         // "*" allows every origin

	KeyRateLimit  int           // POST /api/keys burst per client
	KeyRateWindow time.Duration // time to refill the burst

	DB        *sql.DB
	Bookmarks *storage.BookmarkRepo
	APIKeys   *storage.APIKeyRepo
}

// Now returns TimeNow() or the wall clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
