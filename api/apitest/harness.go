// Package apitest wires the full route tree onto in-memory stores for handler
// tests.
package apitest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"assistante-suite/api"
	"assistante-suite/config"
	appAPIHelper "assistante-suite/utils/api"
	"assistante-suite/utils/contentstore"
	"assistante-suite/utils/database"
	"assistante-suite/utils/database/memory"
	"assistante-suite/utils/jsonform"
	"assistante-suite/utils/markdown"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminEmail    = "admin@example.fr"
	AdminPassword = "correct horse battery staple"
)

// Now is the fixed clock of every harness: Sunday 9 June 2024, 20:00 in Paris.
var Now = time.Date(2024, 6, 9, 18, 0, 0, 0, time.UTC)

type Mail struct {
	To      []string
	Subject string
	Body    string
}

type RecordingMailer struct {
	mu   sync.Mutex
	Sent []Mail
	Err  error
}

func (m *RecordingMailer) Send(to []string, subject, body string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *RecordingMailer) Last() Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Mail{}
	}
	return m.Sent[len(m.Sent)-1]
}

// CountingLimiter allows limit hits per key and ignores the window.
type CountingLimiter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (l *CountingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits = make(map[string]int)
	}
	l.hits[key]++
	return l.hits[key] <= limit, nil
}

// MemoryCache stores JSON the way the Redis cache does, without expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *MemoryCache) GetCache(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, sonic.Unmarshal(data, out)
}

func (m *MemoryCache) SetCache(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = data
	return nil
}

func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type ChallengeFunc func(ctx context.Context, token, remoteIP string) error

func (f ChallengeFunc) Verify(ctx context.Context, token, remoteIP string) error {
	return f(ctx, token, remoteIP)
}

type Harness struct {
	App          *fiber.App
	Helper       *appAPIHelper.RouterHelpers
	Pages        *contentstore.MemoryStore
	EditorStates *jsonform.MemoryStateRepository
	Blog         *memory.BlogRepository
	Newsletter   *memory.NewsletterRepository
	Appointments *memory.AppointmentRepository
	Mailer       *RecordingMailer
	Limiter      *CountingLimiter
	Cache        *MemoryCache
}

func TestConfig(t testing.TB) config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return config.Config{
		Admin: config.AdminConfig{
			Email:            AdminEmail,
			PasswordHash:     string(hash),
			SessionSignToken: "test-sign-key",
			SessionTTLHours:  12,
		},
		Content: config.ContentConfig{Driver: "memory", CacheTTLSeconds: 60},
		SMTP:    config.SMTPConfig{DisplayName: "Assistante"},
		Editor: config.EditorConfig{
			Locale:          "en",
			HistoryLimit:    10,
			SessionTTLHours: 12,
		},
		Appointments: config.AppointmentsConfig{
			SlotMinutes: 60,
			DaysAhead:   30,
			Timezone:    "Europe/Paris",
			NotifyEmail: "agenda@example.fr",
			OpeningHours: map[string]config.OpeningHours{
				"monday":  {Start: "09:00", End: "12:00"},
				"tuesday": {Start: "14:00", End: "17:00"},
			},
		},
		Newsletter: config.NewsletterConfig{
			ConfirmURL:            "https://example.fr/newsletter/confirm",
			UnsubscribeURL:        "https://example.fr/newsletter/unsubscribe",
			SubscribeLimitPerHour: 3,
		},
	}
}

// New builds a harness. Options run on the helper before routes are
// registered.
func New(t testing.TB, opts ...func(*appAPIHelper.RouterHelpers)) *Harness {
	t.Helper()
	cfg := TestConfig(t)
	h := &Harness{
		App:          fiber.New(appAPIHelper.FiberConfig(1)),
		Pages:        contentstore.NewMemoryStore(),
		EditorStates: jsonform.NewMemoryStateRepository(),
		Blog:         memory.NewBlogRepository(),
		Newsletter:   memory.NewNewsletterRepository(),
		Appointments: memory.NewAppointmentRepository(),
		Mailer:       &RecordingMailer{},
		Limiter:      &CountingLimiter{},
		Cache:        &MemoryCache{},
	}
	h.Helper = &appAPIHelper.RouterHelpers{
		Router:         h.App,
		Config:         cfg,
		DBManager:      database.NewDBManager(nil, nil, nil, h.Pages, h.EditorStates),
		Blog:           h.Blog,
		Newsletter:     h.Newsletter,
		Appointments:   h.Appointments,
		Cache:          h.Cache,
		RateLimiter:    h.Limiter,
		Mailer:         h.Mailer,
		Markdown:       markdown.NewRenderer(),
		SessionHandler: appAPIHelper.NewSessionHandler(appAPIHelper.NewMemorySessionStore(), cfg.Admin.SessionSignToken, time.Duration(cfg.Admin.SessionTTLHours)*time.Hour),
		Now:            func() time.Time { return Now },
	}
	for _, opt := range opts {
		opt(h.Helper)
	}
	api.RegisterRoutes(h.Helper)
	return h
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode reads the GenericResponse envelope and returns its updatedData.
func Decode[T any](t testing.TB, r *Response) (appAPIHelper.GenericResponse[T], *T) {
	t.Helper()
	var out appAPIHelper.GenericResponse[T]
	require.NoError(t, sonic.Unmarshal(r.Body, &out), string(r.Body))
	return out, out.UpdatedData
}

// Do sends body as JSON unless it is nil or already a string.
func (h *Harness) Do(t testing.TB, method, path string, body any, token string) *Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := sonic.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.App.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// Login signs the configured admin in and returns the bearer token.
func (h *Harness) Login(t testing.TB) string {
	t.Helper()
	resp := h.Do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    AdminEmail,
		"password": AdminPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	_, data := Decode[struct {
		Token string `json:"token"`
	}](t, resp)
	require.NotNil(t, data)
	return data.Token
}

// SeedPage stores a page at revision 1.
func (h *Harness) SeedPage(t testing.TB, id, content string) {
	t.Helper()
	_, err := h.Pages.CreatePage(context.Background(), contentstore.StoredDocument{ID: id, Title: id, Content: []byte(content)})
	require.NoError(t, err)
}

// DoWithHeaders sends a bodyless request with extra headers.
func (h *Harness) DoWithHeaders(t testing.TB, method, path string, headers map[string]string) *Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.App.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}
