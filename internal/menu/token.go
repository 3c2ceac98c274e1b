package menu

import (
	"fmt"
	"strings"
)

// Kind says whether a choice downloads the video stream or an
// audio-only extraction.
type Kind string

const (
	KindVideo Kind = "v"
	KindAudio Kind = "a"
)

// remuxMarker suffixes tokens for choices that need the downloaded
// container normalized to the preferred one.
const remuxMarker = ":r"

// Choice is the decoded form of a callback token: what to download and
// how to post-process it.
type Choice struct {
	Kind     Kind
	FormatID string
	Remux    bool
}

// Token encodes the choice into the callback payload wire format
// "{v|a}:{format_id}", suffixed with ":r" when remuxing is required.
// ':' is reserved as the separator: for format ids without it (Build
// never emits others), ParseToken(c.Token()) yields a Choice equal
// to c.
func (c Choice) Token() string {
	token := string(c.Kind) + ":" + c.FormatID
	if c.Remux {
		token += remuxMarker
	}
	return token
}

// ParseToken decodes a callback payload produced by Token.
func ParseToken(token string) (Choice, error) {
	kindPart, rest, ok := strings.Cut(token, ":")
	if !ok {
		return Choice{}, fmt.Errorf("malformed callback token %q", token)
	}

	var kind Kind
	switch Kind(kindPart) {
	case KindVideo, KindAudio:
		kind = Kind(kindPart)
	default:
		return Choice{}, fmt.Errorf("unknown choice kind %q in callback token", kindPart)
	}

	formatID, remux := strings.CutSuffix(rest, remuxMarker)
	if formatID == "" {
		return Choice{}, fmt.Errorf("empty format id in callback token %q", token)
	}

	return Choice{Kind: kind, FormatID: formatID, Remux: remux}, nil
}
