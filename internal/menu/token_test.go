package menu

import "testing"

func TestChoiceTokenRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []Kind{KindVideo, KindAudio}
	formatIDs := []string{"18", "137", "hls-1080", "bestaudio", "sb0"}

	for _, kind := range kinds {
		for _, formatID := range formatIDs {
			for _, remux := range []bool{false, true} {
				choice := Choice{Kind: kind, FormatID: formatID, Remux: remux}

				got, err := ParseToken(choice.Token())
				if err != nil {
					t.Fatalf("ParseToken(%q) returned error: %v", choice.Token(), err)
				}
				if got != choice {
					t.Errorf("round trip of %+v via %q yielded %+v", choice, choice.Token(), got)
				}
			}
		}
	}
}

func TestTokenWireFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		choice Choice
		want   string
	}{
		{Choice{Kind: KindVideo, FormatID: "137"}, "v:137"},
		{Choice{Kind: KindVideo, FormatID: "244", Remux: true}, "v:244:r"},
		{Choice{Kind: KindAudio, FormatID: "140"}, "a:140"},
	}

	for _, tc := range tests {
		if got := tc.choice.Token(); got != tc.want {
			t.Errorf("Token(%+v) = %q, want %q", tc.choice, got, tc.want)
		}
	}
}

func TestParseTokenInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "v137"},
		{"unknown kind", "x:137"},
		{"empty format id", "v:"},
		{"marker only", "a::r"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseToken(tc.token); err == nil {
				t.Errorf("ParseToken(%q) succeeded, want error", tc.token)
			}
		})
	}
}
