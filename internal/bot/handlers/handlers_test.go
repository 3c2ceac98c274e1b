package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/database"
	"github.com/nsmelov/tgbots/internal/extractor"
	"github.com/nsmelov/tgbots/internal/menu"
	"github.com/nsmelov/tgbots/internal/weather"
)

// fakeStore is an in-memory database.Store.
type fakeStore struct {
	sessions map[int64]string
	getErr   error
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) SaveSession(_ context.Context, userID int64, url string) error {
	if f.sessions == nil {
		f.sessions = make(map[int64]string)
	}
	f.sessions[userID] = url
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, userID int64) (*database.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	url, ok := f.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &database.Session{UserID: userID, URL: url, UpdatedAt: time.Now()}, nil
}

func (f *fakeStore) DeleteExpiredSessions(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

// fakeExtractor counts every call so tests can assert the backend was
// never contacted, and returns the configured download outcome.
type fakeExtractor struct {
	inspectCalls  int
	downloadCalls int
	cleanupCalls  int

	downloadResult *extractor.Result
	downloadErr    error
}

func (f *fakeExtractor) Inspect(context.Context, string) (*extractor.MediaInfo, error) {
	f.inspectCalls++
	return &extractor.MediaInfo{}, nil
}

func (f *fakeExtractor) Download(context.Context, extractor.Request) (*extractor.Result, error) {
	f.downloadCalls++
	return f.downloadResult, f.downloadErr
}

func (f *fakeExtractor) Cleanup(string) { f.cleanupCalls++ }

// fakeWeatherClient counts lookups.
type fakeWeatherClient struct {
	calls int
}

func (f *fakeWeatherClient) Current(context.Context, string) (*weather.Report, error) {
	f.calls++
	return nil, errors.New("not implemented")
}

// fakeNarrative returns a fixed forecast or a fixed error.
type fakeNarrative struct {
	text string
	err  error
}

func (f *fakeNarrative) Forecast(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func testDeps(t *testing.T, store database.Store, ext extractor.Client) HandlerDeps {
	t.Helper()

	cfg := &config.Config{Messages: config.DefaultMessages}
	return HandlerDeps{
		Logger:    slog.Default(),
		Config:    cfg,
		Store:     store,
		Extractor: ext,
	}
}

// newTestBot builds a bot instance backed by a stub API server that
// accepts every method call.
func newTestBot(t *testing.T) *tgbot.Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "answerCallbackQuery") {
			fmt.Fprint(w, `{"ok":true,"result":true}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1}}}`)
	}))
	t.Cleanup(srv.Close)

	b, err := tgbot.New("test-token", tgbot.WithServerURL(srv.URL), tgbot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("creating bot against stub server: %v", err)
	}
	return b
}

func callbackUpdate(data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb1",
			From: models.User{ID: 42},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 7, Chat: models.Chat{ID: 1}},
			},
		},
	}
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   7,
			From: &models.User{ID: 42},
			Chat: models.Chat{ID: 1},
			Text: text,
		},
	}
}

func TestLinkHandlerIgnoresCommands(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com/kept"}}
	ext := &fakeExtractor{}
	h := linkHandler{testDeps(t, store, ext)}

	// The guard returns before the bot API is touched.
	h.Handle(context.Background(), nil, textUpdate("/help"))

	if got := store.sessions[42]; got != "https://example.com/kept" {
		t.Errorf("session URL = %q, command text replaced the pending URL", got)
	}
	if ext.inspectCalls != 0 {
		t.Errorf("extraction backend was contacted %d times for a command message", ext.inspectCalls)
	}
}

func TestWeatherHandlerIgnoresCommands(t *testing.T) {
	t.Parallel()

	wc := &fakeWeatherClient{}
	deps := testDeps(t, &fakeStore{}, &fakeExtractor{})
	deps.Weather = wc
	h := weatherHandler{deps}

	h.Handle(context.Background(), nil, textUpdate("/help"))

	if wc.calls != 0 {
		t.Errorf("weather provider was queried %d times for a command message", wc.calls)
	}
}

func TestDownloadHandlerCleansUpWhenDownloadFails(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com/watch?v=abc"}}
	ext := &fakeExtractor{downloadErr: errors.New("extraction failed")}
	h := downloadHandler{testDeps(t, store, ext)}

	h.Handle(context.Background(), newTestBot(t), callbackUpdate("v:137"))

	if ext.downloadCalls != 1 {
		t.Fatalf("downloadCalls = %d, want 1", ext.downloadCalls)
	}
	if ext.cleanupCalls != 1 {
		t.Errorf("cleanupCalls = %d, want 1 after a failed download", ext.cleanupCalls)
	}
}

func TestDownloadHandlerCleansUpWhenSendFails(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com/watch?v=abc"}}
	ext := &fakeExtractor{
		downloadResult: &extractor.Result{
			Path: filepath.Join(t.TempDir(), "gone.mp4"), // never created, so sending fails
			Kind: menu.KindVideo,
		},
	}
	h := downloadHandler{testDeps(t, store, ext)}

	h.Handle(context.Background(), newTestBot(t), callbackUpdate("v:137"))

	if ext.cleanupCalls != 1 {
		t.Errorf("cleanupCalls = %d, want 1 after a failed send", ext.cleanupCalls)
	}
}

func TestDownloadHandlerCleansUpAfterSuccess(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dl_42_x.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		t.Fatalf("writing media file: %v", err)
	}

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com/watch?v=abc"}}
	ext := &fakeExtractor{
		downloadResult: &extractor.Result{Path: path, Kind: menu.KindAudio},
	}
	h := downloadHandler{testDeps(t, store, ext)}

	h.Handle(context.Background(), newTestBot(t), callbackUpdate("a:140"))

	if ext.cleanupCalls != 1 {
		t.Errorf("cleanupCalls = %d, want 1 after a delivered download", ext.cleanupCalls)
	}
}

func TestPrepareDownloadMissingSession(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{}
	deps := testDeps(t, &fakeStore{}, ext)
	h := downloadHandler{deps}

	req, failMsg := h.prepareDownload(context.Background(), 42, "v:137")
	if req != nil {
		t.Fatalf("prepareDownload returned request %+v for a user without a session", req)
	}
	if failMsg != config.DefaultMessages.MissingSession {
		t.Errorf("failure message = %q, want the missing-session message", failMsg)
	}
	if ext.inspectCalls != 0 || ext.downloadCalls != 0 {
		t.Errorf("extraction backend was contacted (%d inspects, %d downloads), want none",
			ext.inspectCalls, ext.downloadCalls)
	}
}

func TestPrepareDownloadStoreFailure(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{}
	deps := testDeps(t, &fakeStore{getErr: errors.New("db locked")}, ext)
	h := downloadHandler{deps}

	req, failMsg := h.prepareDownload(context.Background(), 42, "v:137")
	if req != nil {
		t.Fatalf("prepareDownload returned request %+v despite store failure", req)
	}
	if failMsg != config.DefaultMessages.MissingSession {
		t.Errorf("failure message = %q, want the missing-session message", failMsg)
	}
	if ext.downloadCalls != 0 {
		t.Errorf("extraction backend was contacted, want none")
	}
}

func TestPrepareDownloadResolvesSession(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com/watch?v=abc"}}
	h := downloadHandler{testDeps(t, store, &fakeExtractor{})}

	req, failMsg := h.prepareDownload(context.Background(), 42, "v:244:r")
	if req == nil {
		t.Fatalf("prepareDownload failed: %q", failMsg)
	}
	if req.URL != "https://example.com/watch?v=abc" {
		t.Errorf("URL = %q, want the stored session URL", req.URL)
	}
	want := menu.Choice{Kind: menu.KindVideo, FormatID: "244", Remux: true}
	if req.Choice != want {
		t.Errorf("Choice = %+v, want %+v", req.Choice, want)
	}
	if !strings.HasPrefix(req.OutputBase, "dl_42_") {
		t.Errorf("OutputBase = %q, want a dl_42_ prefix", req.OutputBase)
	}
}

func TestPrepareDownloadMalformedToken(t *testing.T) {
	t.Parallel()

	store := &fakeStore{sessions: map[int64]string{42: "https://example.com"}}
	h := downloadHandler{testDeps(t, store, &fakeExtractor{})}

	req, failMsg := h.prepareDownload(context.Background(), 42, "garbage")
	if req != nil {
		t.Fatalf("prepareDownload returned request %+v for a malformed token", req)
	}
	if failMsg == "" {
		t.Error("no failure message for a malformed token")
	}
}

func sampleReport() *weather.Report {
	return &weather.Report{
		CityName:    "London",
		TempC:       12.34,
		FeelsLikeC:  10.81,
		Description: "light rain",
		RawJSON:     []byte(`{"name":"London"}`),
	}
}

func TestBuildReplyUsesNarrative(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, &fakeStore{}, &fakeExtractor{})
	deps.Narrative = &fakeNarrative{text: "Grab an umbrella, it's drizzling all afternoon."}
	h := weatherHandler{deps}

	got := h.buildReply(context.Background(), sampleReport())
	want := "London 🌦\n\nGrab an umbrella, it's drizzling all afternoon."
	if got != want {
		t.Errorf("buildReply = %q, want %q", got, want)
	}
}

func TestBuildReplyFallsBackOnNarrativeError(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, &fakeStore{}, &fakeExtractor{})
	deps.Narrative = &fakeNarrative{err: errors.New("quota exceeded")}
	h := weatherHandler{deps}

	got := h.buildReply(context.Background(), sampleReport())
	want := "London (standard report) 🌦\n\nNow: 12.3°C (feels like 10.8°C)\nSky: Light rain"
	if got != want {
		t.Errorf("buildReply = %q, want %q", got, want)
	}
}

func TestBuildReplyWithoutNarrativeClient(t *testing.T) {
	t.Parallel()

	h := weatherHandler{testDeps(t, &fakeStore{}, &fakeExtractor{})}

	got := h.buildReply(context.Background(), sampleReport())
	if !strings.Contains(got, "(standard report)") {
		t.Errorf("buildReply = %q, want the standard report", got)
	}
	if strings.Contains(got, "umbrella") {
		t.Errorf("buildReply = %q contains narrative text with no narrative client", got)
	}
}
