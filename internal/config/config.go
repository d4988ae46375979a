package config

import (
	"io/fs"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Natal/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Natal"
	AppID          = "com.github.tartampluch.go-natal"
	CommandName    = "go-natal"
	KeyringService = "com.github.tartampluch.go-natal"
	LogFileName    = "app.log"
)

// UIDNamespace seeds the deterministic UUIDv5 event identifiers.
var UIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tartampluch/go-natal"))

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// FilePermPublic represents -rw-r--r--, used for generated calendar files.
	FilePermPublic fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig     = "config"
	FlagDebug      = "debug"
	FlagDate       = "date"
	FlagTime       = "time"
	FlagFormat     = "format"
	FlagConvention = "convention"
	FlagSource     = "source"
	FlagPath       = "path"
	FlagURL        = "url"
	FlagUser       = "user"
	FlagOut        = "out"
	FlagPort       = "port"
	FlagBind       = "bind"

	FlagDescConfig     = "config file (default .go-natal.yaml in the working or home directory)"
	FlagDescDebug      = "Enable debug logging"
	FlagDescDate       = "Birth date (YYYY-MM-DD)"
	FlagDescTime       = "Birth time (HH:MM, 24h), optional"
	FlagDescFormat     = "Output format: json, yaml or text"
	FlagDescConvention = "Pasaran convention: jdn or legacy"
	FlagDescSource     = "Contact source: local or web"
	FlagDescPath       = "Path to a local .vcf file"
	FlagDescURL        = "CardDAV/WebDAV URL of the address book"
	FlagDescUser       = "HTTP Basic Auth user (password is read from the OS keyring)"
	FlagDescOut        = "Write the calendar to this file instead of stdout"
	FlagDescPort       = "HTTP port to listen on"
	FlagDescBind       = "Address to bind the HTTP server to"

	CmdShort        = "Natal profiles from birth dates: weton, zodiac, shio, numerology and moon phase"
	CmdProfileShort = "Compute the natal profile of a birth date"
	CmdCalShort     = "Generate the birthday and wetonan calendar from a vCard source"
	CmdServeShort   = "Serve the profile API and the calendar feed"
	CmdVersionShort = "Show application version"

	MsgVersionOutput = "%s version %s (%s/%s)\n"

	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"

	ConfigFileName = ".go-natal"
	ConfigFileType = "yaml"
	EnvPrefix      = "GONATAL"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper) & Defaults
// -----------------------------------------------------------------------------

const (
	KeyServerPort       = "server_port"
	KeyBindAddr         = "bind_addr"
	KeySourceMode       = "source_mode"
	KeyLocalPath        = "local_path"
	KeyWebURL           = "web_url"
	KeyWebUser          = "web_user"
	KeyRefreshInterval  = "refresh_interval_min"
	KeyWatchLocal       = "watch_local"
	KeyReminderEnabled  = "reminder_enabled"
	KeyReminderValue    = "reminder_value"
	KeyReminderUnit     = "reminder_unit"
	KeyReminderDir      = "reminder_direction"
	KeyWetonHorizonDays = "weton_horizon_days"
	KeyConvention       = "pasaran_convention"
	KeyLogLevel         = "log_level"
	KeyRateLimitPerMin  = "rate_limit_per_min"
	KeyRateLimitBurst   = "rate_limit_burst"
)

const (
	SourceModeWeb          = "web"
	SourceModeLocal        = "local"
	DefaultPort            = "18080"
	DefaultBindAddr        = "127.0.0.1"
	DefaultRefreshMin      = 60
	DefaultLeapYear        = 2000 // Leap year fallback for dates like --02-29
	DefaultReminderValue   = 1
	DefaultWetonHorizon    = 105 // three 35-day cycles
	DefaultConvention      = "jdn"
	DefaultLogLevel        = "info"
	DefaultRateLimitPerMin = 120
	DefaultRateLimitBurst  = 30
	WetonCycleDays         = 35
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// Reminder Units & Directions
const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Translation Keys (Indonesian lexicon)
// -----------------------------------------------------------------------------

const (
	TKeyEvtBirthday      = "event_birthday"       // Requires Name
	TKeyEvtBirthdayAge   = "event_birthday_age"   // Requires Name, Age
	TKeyEvtBirthdayBirth = "event_birthday_birth" // Requires Name (For age 0)
	TKeyEvtWetonan       = "event_wetonan"        // Requires Name, Weton
	TKeyProfileLine      = "profile_line"         // Requires Weton, Neptu, Zodiac, Shio, LifePath, Element, Planet, Moon
	TKeyAscendantLine    = "ascendant_line"       // Requires Ascendant
	TKeyAscendantUnknown = "ascendant_unknown"
	TKeyLblWeton         = "lbl_weton"
	TKeyLblNeptu         = "lbl_neptu"
	TKeyLblZodiac        = "lbl_zodiac"
	TKeyLblShio          = "lbl_shio"
	TKeyLblLifePath      = "lbl_life_path"
	TKeyLblElement       = "lbl_element"
	TKeyLblPlanet        = "lbl_planet"
	TKeyLblAscendant     = "lbl_ascendant"
	TKeyLblMoon          = "lbl_moon"
	TKeyGreetMorning     = "greeting_morning"
	TKeyGreetMidday      = "greeting_midday"
	TKeyGreetAfternoon   = "greeting_afternoon"
	TKeyGreetEvening     = "greeting_evening"

	LexiconDir    = "locales"
	LexiconPrefix = "active."
	LexiconExt    = ".json"
	LexiconLang   = "id"
)

// Greeting hour boundaries (local wall clock, start inclusive).
const (
	GreetMiddayHour    = 11
	GreetAfternoonHour = 15
	GreetEveningHour   = 18
	GreetMorningHour   = 4
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Natal//Engine//ID"
	ICalCalName   = "Ulang Tahun & Wetonan"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gonatal"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	CategoryBirthday = "BIRTHDAY"
	CategoryWetonan  = "WETONAN"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatDashHM    = "2006-01-02T15:04"
	DateFormatBasicHM   = "20060102T1504"
	DateFormatBasicHMS  = "20060102T150405Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatHashInput  = "%s|%s"
	FormatUID        = "%s-%d@%s"
	FormatUIDWetonan = "%s-w%s@%s"
	UIDDateCompact   = "20060102"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout          = 30 * time.Second
	ShutdownTimeout      = 5 * time.Second
	ServerReadTimeout    = 10 * time.Second
	ServerWriteTimeout   = 30 * time.Second
	ServerIdleTimeout    = 60 * time.Second
	RateLimitCleanup     = 5 * time.Minute
	RetryAfterSeconds    = "10"
	AllowedMethods       = "GET, HEAD"
	MaxHTTPResponseSize  = 256 * 1024 * 1024 // 256MB
	SchemeHTTP           = "http"
	SchemeHTTPS          = "https"
	WatchDebounce        = 500 * time.Millisecond
	TriggerStartup       = "startup"
	TriggerTicker        = "ticker"
	TriggerManual        = "manual"
	TriggerWatch         = "watch"
	RouteRoot            = "/"
	RouteCalendar        = "/calendar.ics"
	RouteNatal           = "/api/natal"
	RouteContacts        = "/api/contacts"
	RouteSync            = "/api/sync"
	RouteHealth          = "/healthz"
	RouteMetrics         = "/metrics"
	RouteAPIPrefix       = "/api"
	QueryDate            = "date"
	QueryTime            = "time"
	QueryConvention      = "convention"
	HealthStatusOK       = "ok"
	RateLimitRetryMinSec = 1
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// API Error Codes & Categories
// -----------------------------------------------------------------------------

const (
	ErrCodeInvalidDate       = "INVALID_DATE"
	ErrCodeInvalidTime       = "INVALID_TIME"
	ErrCodeInvalidConvention = "INVALID_CONVENTION"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"

	ErrCategoryValidation = "validation"
	ErrCategorySystem     = "system"

	ActionFixDate       = "Gunakan format tanggal YYYY-MM-DD yang valid."
	ActionFixTime       = "Gunakan format jam HH:MM (24 jam) atau kosongkan."
	ActionFixConvention = "Gunakan konvensi jdn atau legacy."
	ActionRetryLater    = "Tunggu sebentar lalu coba lagi."

	APIMsgRateLimited       = "Terlalu banyak permintaan."
	APIMsgInternal          = "Terjadi kesalahan internal."
	APIMsgInvalidDate       = "Tanggal lahir tidak valid."
	APIMsgInvalidTime       = "Jam lahir tidak valid."
	APIMsgInvalidConvention = "Konvensi pasaran tidak dikenal."

	SyncStatusAccepted = "accepted"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrReminderUnit    = "unsupported reminder unit"
	ErrReminderDir     = "unsupported reminder direction"
	ErrConvention      = "unsupported pasaran convention"
	ErrRefreshInterval = "refresh interval must not be negative"
	ErrWetonHorizon    = "weton horizon must not be negative"
	ErrConfigRead      = "failed to read config file"
	ErrConfigDecode    = "failed to decode settings"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrEncodeResp      = "failed to encode response"
	ErrLexiconAccess   = "failed to access embedded lexicon"
	ErrLexiconLoad     = "failed to load lexicon file"
	ErrLexiconEmpty    = "no lexicon file could be loaded"
	ErrLexiconNotInit  = "lexicon not initialized"
	ErrWatcherCreate   = "failed to create file watcher"
	ErrWatcherAdd      = "failed to watch local source"
	ErrProfile         = "failed to compute natal profile"
	ErrOutputFormat    = "unsupported output format"
	ErrWriteOutput     = "failed to write output"
	ErrSyncFailed      = "synchronization failed"
	ErrPanicRecovered  = "panic recovered"
	ErrRequestBuild    = "failed to build request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "unexpected HTTP status"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Ulang tahun: %s"
	FallbackSummaryAge   = "Ulang tahun: %s (%d)"
	FallbackSummaryBirth = "Kelahiran: %s"
	FallbackWetonan      = "Wetonan: %s (%s)"
	FallbackProfileLine  = "Weton %s (neptu %d), %s, shio %s, angka %d, %s, %s, %s"
	FallbackName         = "Tanpa Nama"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFinished  = "Sync finished"
	MsgSyncReq       = "Sync requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgWatchStart    = "Watching local source for changes"
	MsgWatchEvent    = "Local source changed"
	MsgWatchError    = "File watcher error"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgContactsSet   = "Contact list updated"
	MsgLexiconSkip   = "Skipping non-lexicon file"
	MsgLexiconBad    = "Skipping malformed lexicon filename"
	MsgLexiconLoaded = "Lexicon loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgCelebration   = "Celebration found today"
	MsgProfileServed = "Natal profile computed"
	MsgHTTPRequest   = "http_request"
	MsgCalWritten    = "Calendar written"
	MsgFetchStart    = "Downloading address book"
	MsgFetchStatus   = "Address book server returned error status"
	MsgFetchOpen     = "Address book stream opened"
	MsgRateLimited   = "Rate limit exceeded"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyMode       = "mode"
	LogKeyInterval   = "interval"
	LogKeyUser       = "user"
	LogKeyTotal      = "total_cards"
	LogKeyFound      = "birthdays_found"
	LogKeyToday      = "celebrations_today"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyManual     = "manual"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyCount      = "count"
	LogKeyName       = "name"
	LogKeyDOB        = "date_of_birth"
	LogKeyKind       = "kind"
	LogKeyDuration   = "duration_ms"
	LogKeyMethod     = "method"
	LogKeyPath       = "path"
	LogKeyClient     = "client"
	LogKeyPanic      = "panic"
	LogKeyStack      = "stack"
	LogKeyConvention = "convention"
	LogKeyEvent      = "event"
	LogKeyTrigger    = "trigger"
	LogKeyLength     = "content_length"
	LogKeyProfiles   = "profiles"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompLexicon = "lexicon"
	CompCLI     = "cli"
	CompHTTP    = "http"
)

// Event kinds carried in logs and metrics labels.
const (
	KindBirthday = "birthday"
	KindWetonan  = "wetonan"
)
