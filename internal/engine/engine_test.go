package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/natal"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFormatter records the localized text requested by the generator.
type MockFormatter struct {
	mock.Mock
}

func (m *MockFormatter) BirthdaySummary(name string, age int, yearKnown bool) string {
	return m.Called(name, age, yearKnown).String(0)
}

func (m *MockFormatter) WetonanSummary(name string, w natal.Weton) string {
	return m.Called(name, w).String(0)
}

func (m *MockFormatter) ProfileDescription(p natal.NatalProfile) string {
	return m.Called(p).String(0)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// webGenerator returns a generator whose fetcher serves content.
func webGenerator(t *testing.T, now time.Time, content string) *engine.Generator {
	t.Helper()
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil)
	t.Cleanup(func() { f.AssertExpectations(t) })
	return &engine.Generator{Clock: MockClock{CurrentTime: now}, Fetcher: f}
}

func webConfig() engine.SyncConfig {
	return engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}
}

func card(name, bday string) string {
	return "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:" + name + "\r\nBDAY:" + bday + "\r\nEND:VCARD\r\n"
}

// -----------------------------------------------------------------------------
// Source acquisition
// -----------------------------------------------------------------------------

func TestRunSync_Local_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(card("Budi Santoso", "2000-01-01")), 0o600))

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
	}

	icsData, contacts, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count, "Should identify one birthday today")

	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.Equal(t, "Budi Santoso", c.Name)
	assert.Equal(t, 25, c.AgeNext)
	assert.True(t, c.YearKnown)
	assert.Empty(t, c.BirthTime)
	require.NotNil(t, c.Profile)
	assert.Equal(t, "Sabtu", c.Profile.Weton.DayName)
	assert.Equal(t, "Legi", c.Profile.Weton.Pasaran)
	assert.Equal(t, 14, c.Profile.Weton.Neptu)
	assert.Equal(t, "Capricorn", c.Profile.Zodiac)
	assert.Nil(t, c.Profile.Ascendant)

	ics := string(icsData)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "X-WR-CALNAME:"+config.ICalCalName)
	assert.Contains(t, ics, "SUMMARY:Ulang tahun: Budi Santoso (25)")
	assert.Contains(t, ics, "CATEGORIES:BIRTHDAY")
	assert.Contains(t, ics, "DESCRIPTION:Weton Sabtu Legi (neptu 14)")
}

func TestRunSync_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *engine.Generator
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"Local path empty", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Web URL empty", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"Fetcher missing", &engine.Generator{}, webConfig(), config.ErrFetcherMissing},
		{"Unknown mode", &engine.Generator{}, engine.SyncConfig{Mode: "ftp"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.gen.Clock = MockClock{CurrentTime: time.Now()}
			_, _, _, err := tt.gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	f := new(MockFetcher)
	expectedErr := errors.New("network unreachable")
	f.On("Fetch", mock.Anything, "http://bad-url.com", "sari", "rahasia").Return(nil, expectedErr)

	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}, Fetcher: f}

	icsData, contacts, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "http://bad-url.com",
		WebUser: "sari",
		WebPass: "rahasia",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, icsData)
	assert.Nil(t, contacts)
	assert.Equal(t, 0, count)
	f.AssertExpectations(t)
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "empty.vcf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	_, _, _, err := gen.RunSync(ctx, engine.SyncConfig{Mode: config.SourceModeLocal, LocalPath: path})

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err, "cancellation is returned unwrapped")
}

// -----------------------------------------------------------------------------
// Birthday events
// -----------------------------------------------------------------------------

func TestRunSync_Web_LeapYear_EdgeCase(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), card("Leap Baby", "2000-02-29"))

	_, contacts, count, err := gen.RunSync(context.Background(), webConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, count, "Leapling celebrates on March 1st in a common year")
	require.Len(t, contacts, 1)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), contacts[0].NextOccurrence)
}

func TestRunSync_ContactListNextOccurrence(t *testing.T) {
	content := card("Past Birthday", "1990-01-01") + card("Future Birthday", "1990-12-31") + card("Today Birthday", "1990-06-01")
	gen := webGenerator(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), content)

	_, contacts, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)
	require.Len(t, contacts, 3)

	byName := make(map[string]engine.ContactEntry)
	for _, c := range contacts {
		byName[c.Name] = c
	}

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), byName["Past Birthday"].NextOccurrence)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), byName["Future Birthday"].NextOccurrence)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), byName["Today Birthday"].NextOccurrence)

	engine.SortByNextOccurrence(contacts)
	assert.Equal(t, "Today Birthday", contacts[0].Name)
	assert.Equal(t, "Future Birthday", contacts[1].Name)
	assert.Equal(t, "Past Birthday", contacts[2].Name)
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), card("Alarm Test", "1990-01-01"))
	cfg := webConfig()
	cfg.ReminderTrigger = "-PT1H"

	icsData, _, _, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	ics := string(icsData)
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-PT1H")
	assert.NotContains(t, ics, "TRIGGER;VALUE=TEXT")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestRunSync_GeneratesYearRange(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Range Test", "1990-12-31"))

	icsData, _, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)

	ics := string(icsData)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20261231")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"), "wetonan are off with a zero horizon")
}

func TestRunSync_BabyBornThisYear(t *testing.T) {
	f := new(MockFormatter)
	f.On("BirthdaySummary", "Bayi", 0, true).Return("Lahir: Bayi").Once()
	f.On("BirthdaySummary", "Bayi", 1, true).Return("Bayi 1 tahun").Once()
	f.On("ProfileDescription", mock.AnythingOfType("natal.NatalProfile")).Return("profil")

	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Bayi", "2025-05-01"))
	gen.Formatter = f

	icsData, _, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)

	ics := string(icsData)
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:20240501", "no event before birth")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250501")
	assert.Contains(t, ics, "SUMMARY:Lahir: Bayi")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260501")
	assert.Contains(t, ics, "SUMMARY:Bayi 1 tahun")
	assert.Contains(t, ics, "DESCRIPTION:profil")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
	f.AssertExpectations(t)
}

func TestRunSync_FutureBirth(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Future Baby", "2027-01-01"))

	icsData, _, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(icsData), "no events yields the stub calendar")
}

func TestRunSync_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name        string
		bdayValue   string
		expectEvt   bool
		wantProfile bool
		wantTime    string
	}{
		{"ISO8601 Standard", "1990-10-25", true, true, ""},
		{"Basic Format", "19901025", true, true, ""},
		{"RFC3339", "1990-10-25T00:00:00Z", true, true, "00:00"},
		{"Date and minutes", "1990-10-25T14:45", true, true, "14:45"},
		{"Basic with time", "19901025T144500Z", true, true, "14:45"},
		{"Truncated (Month-Day)", "--10-25", true, false, ""},
		{"Truncated Basic", "--1025", true, false, ""},
		{"Garbage Data", "not-a-date", false, false, ""},
		{"Empty Date", "", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Test", tt.bdayValue))

			ics, contacts, _, err := gen.RunSync(context.Background(), webConfig())
			require.NoError(t, err)

			if !tt.expectEvt {
				assert.NotContains(t, string(ics), "BEGIN:VEVENT", "Invalid date should be skipped silently")
				assert.Empty(t, contacts)
				return
			}

			assert.Contains(t, string(ics), "BEGIN:VEVENT")
			require.Len(t, contacts, 1)
			assert.Equal(t, tt.wantProfile, contacts[0].Profile != nil)
			assert.Equal(t, tt.wantTime, contacts[0].BirthTime)
			if !tt.wantProfile {
				assert.NotContains(t, string(ics), "DESCRIPTION:", "no profile without a birth year")
			}
		})
	}
}

func TestRunSync_NameFallback(t *testing.T) {
	content := "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Wijaya;Dewi;;;\r\nBDAY:1990-10-25\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nBDAY:1991-10-25\r\nEND:VCARD\r\n"
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), content)

	_, contacts, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Wijaya;Dewi;;;", contacts[0].Name)
	assert.Equal(t, config.FallbackName, contacts[1].Name)
}

// -----------------------------------------------------------------------------
// Natal profile, wetonan and UIDs
// -----------------------------------------------------------------------------

func TestRunSync_BirthTimeGivesAscendant(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Sari", "2000-01-01T08:00:00Z"))

	_, contacts, _, err := gen.RunSync(context.Background(), webConfig())
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	c := contacts[0]
	assert.Equal(t, "08:00", c.BirthTime)
	require.NotNil(t, c.Profile)
	require.NotNil(t, c.Profile.Ascendant)
	assert.Equal(t, "Aquarius", *c.Profile.Ascendant)
}

func TestRunSync_LegacyConvention(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("Merdeka", "1945-08-17"))
	cfg := webConfig()
	cfg.Convention = natal.ConventionLegacy

	_, contacts, _, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.NotNil(t, contacts[0].Profile)
	assert.Equal(t, "Kliwon", contacts[0].Profile.Weton.Pasaran)
	assert.Equal(t, 14, contacts[0].Profile.Weton.Neptu)
}

func TestRunSync_WetonanEvents(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), card("Budi", "2000-01-01"))
	cfg := webConfig()
	cfg.WetonHorizonDays = config.DefaultWetonHorizon

	icsData, contacts, count, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the birthday only; no wetonan falls on 2025-01-01")

	ics := string(icsData)
	assert.Equal(t, 4, strings.Count(ics, "CATEGORIES:WETONAN"))
	assert.Equal(t, 3, strings.Count(ics, "CATEGORIES:BIRTHDAY"))
	for _, day := range []string{"20241130", "20250104", "20250208", "20250315"} {
		assert.Contains(t, ics, "DTSTART;VALUE=DATE:"+day)
	}
	assert.Contains(t, ics, "SUMMARY:Wetonan: Budi (Sabtu Legi)")

	require.Len(t, contacts, 1)
	require.NotNil(t, contacts[0].NextWetonan)
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), *contacts[0].NextWetonan)
}

func TestRunSync_WetonanToday(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC), card("Budi", "2000-01-01"))
	cfg := webConfig()
	cfg.WetonHorizonDays = config.DefaultWetonHorizon

	icsData, contacts, count, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 5, strings.Count(string(icsData), "CATEGORIES:WETONAN"), "window end is inclusive")
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), *contacts[0].NextWetonan)
}

var uidPattern = regexp.MustCompile(`UID:([0-9a-f-]{36})-(\d{4}|w\d{8})@` + config.ICalDomain)

func TestRunSync_UIDsAreStableUUIDs(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cfg := webConfig()
	cfg.WetonHorizonDays = config.DefaultWetonHorizon

	run := func() ([]byte, []engine.ContactEntry) {
		gen := webGenerator(t, now, card("Budi", "2000-01-01"))
		ics, contacts, _, err := gen.RunSync(context.Background(), cfg)
		require.NoError(t, err)
		return ics, contacts
	}

	first, contacts := run()
	second, _ := run()

	uidLines := func(ics []byte) []string {
		var out []string
		for _, line := range strings.Split(string(ics), "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}
	assert.Equal(t, uidLines(first), uidLines(second), "UIDs are deterministic across syncs")

	matches := uidPattern.FindAllStringSubmatch(string(first), -1)
	require.Len(t, matches, 7)
	for _, m := range matches {
		id, err := uuid.Parse(m[1])
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(5), id.Version())
		assert.Equal(t, contacts[0].UID, m[1])
	}
}
