// Package menu builds the inline-keyboard format menu offered after a
// link is submitted, and encodes the chosen entry into the callback
// token exchanged with Telegram.
package menu

import (
	"fmt"
	"strings"
)

// UploadLimit is the Telegram Bot API attachment size ceiling.
const UploadLimit int64 = 50 * 1024 * 1024

// PreferredContainer is the video container offered without remuxing.
const PreferredContainer = "mp4"

// FormatVariant describes one encoding variant reported by the
// extraction backend. Height and SizeBytes are zero when unknown.
type FormatVariant struct {
	FormatID  string
	Container string
	HasVideo  bool
	HasAudio  bool
	Height    int
	SizeBytes int64
}

// Entry is one selectable menu option: a rendered label plus the choice
// that the callback token carries back.
type Entry struct {
	Label  string
	Choice Choice
}

// NoFormatsError reports that no variant satisfied the size ceiling.
type NoFormatsError struct {
	Title string
}

func (e *NoFormatsError) Error() string {
	return fmt.Sprintf("no downloadable formats under the size limit for %q", e.Title)
}

// Build maps the extraction backend's variants into an ordered list of
// menu entries, applying the selection rules in priority order:
//
//  1. Every audio+video variant in the preferred container with a known
//     size below limit gets an entry.
//  2. If rule 1 matched nothing, every audio+video variant with a known
//     size below limit gets an entry flagged for remuxing into the
//     preferred container.
//  3. The first audio-only variant with a known size below limit gets
//     one audio entry.
//
// Entries keep the insertion order of variants; no sorting by quality
// or size is performed. Variants with an empty format id, or one
// containing the token separator ':', are discarded so every entry
// round-trips through the callback token. An empty result yields a
// NoFormatsError.
func Build(variants []FormatVariant, limit int64, title string) ([]Entry, error) {
	var entries []Entry

	usable := make([]FormatVariant, 0, len(variants))
	for _, v := range variants {
		if v.FormatID == "" || strings.Contains(v.FormatID, ":") {
			continue
		}
		usable = append(usable, v)
	}
	variants = usable

	for _, v := range variants {
		if v.HasVideo && v.HasAudio && v.Container == PreferredContainer && fitsLimit(v, limit) {
			entries = append(entries, Entry{
				Label:  videoLabel(v),
				Choice: Choice{Kind: KindVideo, FormatID: v.FormatID},
			})
		}
	}

	// Relaxed pass: any container, but the result must be remuxed.
	if len(entries) == 0 {
		for _, v := range variants {
			if v.HasVideo && v.HasAudio && fitsLimit(v, limit) {
				entries = append(entries, Entry{
					Label:  videoLabel(v),
					Choice: Choice{Kind: KindVideo, FormatID: v.FormatID, Remux: true},
				})
			}
		}
	}

	for _, v := range variants {
		if v.HasAudio && !v.HasVideo {
			if fitsLimit(v, limit) {
				entries = append(entries, Entry{
					Label:  fmt.Sprintf("🎵 MP3 (%.1f MB)", mb(v.SizeBytes)),
					Choice: Choice{Kind: KindAudio, FormatID: v.FormatID},
				})
			}
			break
		}
	}

	if len(entries) == 0 {
		return nil, &NoFormatsError{Title: title}
	}
	return entries, nil
}

func fitsLimit(v FormatVariant, limit int64) bool {
	return v.SizeBytes > 0 && v.SizeBytes < limit
}

func videoLabel(v FormatVariant) string {
	return fmt.Sprintf("📹 %dp %s (%.1f MB)", v.Height, v.Container, mb(v.SizeBytes))
}

func mb(bytes int64) float64 {
	return float64(bytes) / 1024 / 1024
}
