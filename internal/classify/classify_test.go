package classify

import (
	"testing"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

func TestClassifyStream(t *testing.T) {
	kind := Classify("【LIVE】Star Echo Refrain acoustic session", record.SourceYouTube)
	if kind != record.KindStream {
		t.Errorf("expected stream, got %s", kind)
	}
}

func TestClassifyJapaneseStream(t *testing.T) {
	kind := Classify("【歌枠】夜の観測ログ", record.SourceYouTube)
	if kind != record.KindStream {
		t.Errorf("expected stream for unspaced Japanese title, got %s", kind)
	}
}

func TestClassifyNovel(t *testing.T) {
	kind := Classify("静寂の深淵 第三章", record.SourceManual)
	if kind != record.KindNovel {
		t.Errorf("expected novel, got %s", kind)
	}
}

func TestClassifyMultiWordKeyword(t *testing.T) {
	kind := Classify("VOID PATTERN (Official Music Video)", record.SourcePixiv)
	if kind != record.KindVideo {
		t.Errorf("expected video, got %s", kind)
	}
}

func TestClassifyDefaultsBySource(t *testing.T) {
	tests := []struct {
		source record.Source
		want   record.Kind
	}{
		{record.SourceYouTube, record.KindVideo},
		{record.SourceKakuyomu, record.KindNovel},
		{record.SourcePixiv, record.KindPost},
		{record.SourceManual, record.KindNote},
		{record.Source("unknown"), record.KindPost},
	}
	for _, tt := range tests {
		if got := Classify("Untitled", tt.source); got != tt.want {
			t.Errorf("Classify(Untitled, %s) = %s, want %s", tt.source, got, tt.want)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	if kind := Classify("", record.SourceYouTube); kind != record.KindVideo {
		t.Errorf("expected source default for empty title, got %s", kind)
	}
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		input string
		want  record.Kind
		err   bool
	}{
		{"video", record.KindVideo, false},
		{"STREAM", record.KindStream, false},
		{" novel ", record.KindNovel, false},
		{"podcast", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveKind(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ResolveKind(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveKind(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveKind(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
