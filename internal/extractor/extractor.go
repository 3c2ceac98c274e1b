// Package extractor wraps the yt-dlp command line tool. It queries
// available formats without downloading (Inspect) and performs the
// actual download with optional post-processing (Download), returning
// the resolved path of the file yt-dlp actually wrote.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/menu"
)

// Client defines the extraction backend operations used by the handlers.
type Client interface {
	// Inspect fetches variant metadata for a URL without downloading.
	Inspect(ctx context.Context, url string) (*MediaInfo, error)

	// Download fetches and post-processes the chosen variant, returning
	// the resolved local file path.
	Download(ctx context.Context, req Request) (*Result, error)

	// Cleanup removes, best effort, every artifact written for the given
	// filename base. Errors are logged and swallowed.
	Cleanup(base string)
}

// MediaInfo is the result of an info-only extraction.
type MediaInfo struct {
	Title    string
	Variants []menu.FormatVariant
}

// Request describes one download: the original URL, the user's menu
// choice, and the unique filename base the artifact must be written
// under.
type Request struct {
	URL        string
	Choice     menu.Choice
	OutputBase string
}

// Result is a finished download. The file at Path is owned by the
// caller until it is removed.
type Result struct {
	Path string
	Kind menu.Kind
}

// NewOutputBase synthesizes a per-request filename base. The ULID embeds
// a timestamp and randomness, so two requests never collide even when
// they arrive from the same user in the same second.
func NewOutputBase(userID int64) string {
	return fmt.Sprintf("dl_%d_%s", userID, ulid.Make())
}

type ytdlpClient struct {
	binPath      string
	dir          string
	audioBitrate string
	infoTimeout  time.Duration
	fetchTimeout time.Duration
	log          *slog.Logger
}

// NewClient creates a yt-dlp backed extraction client.
func NewClient(cfg config.DownloaderConfig, log *slog.Logger) Client {
	if log == nil {
		log = slog.Default()
	}
	return &ytdlpClient{
		binPath:      cfg.YTDLPPath,
		dir:          cfg.DownloadDir,
		audioBitrate: cfg.AudioBitrate,
		infoTimeout:  cfg.InfoTimeout,
		fetchTimeout: cfg.FetchTimeout,
		log:          log.With("component", "extractor"),
	}
}

// baseArgs are applied to every yt-dlp invocation: quiet logging,
// relaxed certificate validation, and IPv4 only.
func (c *ytdlpClient) baseArgs() []string {
	return []string{
		"--quiet",
		"--no-warnings",
		"--no-check-certificates",
		"--force-ipv4",
		"--no-playlist",
	}
}

func (c *ytdlpClient) Inspect(ctx context.Context, url string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.infoTimeout)
	defer cancel()

	args := append(c.baseArgs(), "--dump-single-json", url)
	cmd := exec.CommandContext(ctx, c.binPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.log.DebugContext(ctx, "Running yt-dlp info query", "url", url)
	output, err := cmd.Output()
	if err != nil {
		c.log.ErrorContext(ctx, "yt-dlp info query failed", "url", url, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("yt-dlp info query failed: %s: %w", stderrExcerpt(&stderr), err)
	}

	info, err := parseMediaInfo(output)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to parse yt-dlp info JSON", "url", url, "error", err)
		return nil, err
	}

	c.log.DebugContext(ctx, "yt-dlp info query succeeded", "url", url, "title", info.Title, "variant_count", len(info.Variants))
	return info, nil
}

func (c *ytdlpClient) Download(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	outputTemplate := filepath.Join(c.dir, req.OutputBase+".%(ext)s")

	args := append(c.baseArgs(), "--format", req.Choice.FormatID, "--output", outputTemplate)
	switch {
	case req.Choice.Kind == menu.KindAudio:
		args = append(args, "--extract-audio", "--audio-format", "mp3", "--audio-quality", c.audioBitrate)
	case req.Choice.Remux:
		args = append(args, "--remux-video", menu.PreferredContainer)
	}
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx, c.binPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.log.InfoContext(ctx, "Starting yt-dlp download", "url", req.URL, "format_id", req.Choice.FormatID, "kind", req.Choice.Kind, "base", req.OutputBase)
	if err := cmd.Run(); err != nil {
		c.log.ErrorContext(ctx, "yt-dlp download failed", "url", req.URL, "format_id", req.Choice.FormatID, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("yt-dlp download failed: %s: %w", stderrExcerpt(&stderr), err)
	}

	path, err := c.resolveOutputPath(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Downloaded file not found", "url", req.URL, "base", req.OutputBase, "error", err)
		return nil, err
	}

	c.log.InfoContext(ctx, "yt-dlp download finished", "url", req.URL, "path", path)
	return &Result{Path: path, Kind: req.Choice.Kind}, nil
}

// alternateExtensions are tried, in order, when the expected extension
// is not on disk. yt-dlp keeps the source extension when merging or
// post-processing is skipped.
var alternateExtensions = []string{"mp4", "mkv", "webm", "mp3", "m4a", "opus", "ogg"}

// resolveOutputPath locates the file yt-dlp wrote for the request. The
// declared extension of the choice is checked first, then known
// alternates, then anything matching the unique base.
func (c *ytdlpClient) resolveOutputPath(req Request) (string, error) {
	expected := menu.PreferredContainer
	if req.Choice.Kind == menu.KindAudio {
		expected = "mp3"
	}

	candidate := filepath.Join(c.dir, req.OutputBase+"."+expected)
	if fileExists(candidate) {
		return candidate, nil
	}

	for _, ext := range alternateExtensions {
		candidate = filepath.Join(c.dir, req.OutputBase+"."+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, req.OutputBase+".*"))
	if err == nil && len(matches) > 0 {
		return matches[0], nil
	}

	return "", fmt.Errorf("yt-dlp reported success but no output file matches base %q", req.OutputBase)
}

func (c *ytdlpClient) Cleanup(base string) {
	matches, err := filepath.Glob(filepath.Join(c.dir, base+".*"))
	if err != nil {
		c.log.Error("Artifact cleanup glob failed", "base", base, "error", err)
		return
	}

	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.log.Error("Failed to remove download artifact", "path", path, "error", err)
		} else {
			c.log.Debug("Removed download artifact", "path", path)
		}
	}
}

// parseMediaInfo maps the --dump-single-json payload into the variant
// model the menu builder consumes. yt-dlp reports "none" for the absent
// codec of single-stream formats.
func parseMediaInfo(data []byte) (*MediaInfo, error) {
	var raw struct {
		Title   string `json:"title"`
		Formats []struct {
			FormatID string   `json:"format_id"`
			Ext      string   `json:"ext"`
			Vcodec   string   `json:"vcodec"`
			Acodec   string   `json:"acodec"`
			Height   *int     `json:"height"`
			Filesize *float64 `json:"filesize"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp info output: %w", err)
	}

	info := &MediaInfo{Title: raw.Title}
	for _, f := range raw.Formats {
		variant := menu.FormatVariant{
			FormatID:  f.FormatID,
			Container: f.Ext,
			HasVideo:  f.Vcodec != "" && f.Vcodec != "none",
			HasAudio:  f.Acodec != "" && f.Acodec != "none",
		}
		if f.Height != nil {
			variant.Height = *f.Height
		}
		if f.Filesize != nil {
			variant.SizeBytes = int64(*f.Filesize)
		}
		info.Variants = append(info.Variants, variant)
	}
	return info, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// stderrExcerpt returns the last non-empty stderr line, which is where
// yt-dlp puts its "ERROR:" summary.
func stderrExcerpt(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}
