package classify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// AllKinds returns all valid kinds in canonical order. Earlier kinds win ties.
func AllKinds() []record.Kind {
	return []record.Kind{record.KindStream, record.KindNovel, record.KindNote, record.KindVideo, record.KindPost}
}

var kindKeywords = map[record.Kind][]string{
	record.KindStream: {
		"live", "livestream", "stream", "streaming", "premiere", "karaoke",
		"配信", "生放送", "ライブ", "歌枠", "雑談",
	},
	record.KindNovel: {
		"novel", "chapter", "story", "serial",
		"小説", "短編", "長編", "連載", "章",
	},
	record.KindNote: {
		"note", "notes", "memo", "diary", "announcement",
		"手記", "日記", "お知らせ", "告知",
	},
	record.KindVideo: {
		"mv", "music video", "cover", "shorts", "trailer",
		"歌ってみた", "オリジナル曲", "映像",
	},
}

var sourceDefaults = map[record.Source]record.Kind{
	record.SourceYouTube:  record.KindVideo,
	record.SourceKakuyomu: record.KindNovel,
	record.SourcePixiv:    record.KindPost,
	record.SourceManual:   record.KindNote,
}

// Default returns the kind assumed for a source when a title carries no hint.
func Default(source record.Source) record.Kind {
	if k, ok := sourceDefaults[source]; ok {
		return k
	}
	return record.KindPost
}

// Classify infers a kind from a title. Whole-token matches score 2,
// substring matches (needed for unspaced Japanese titles) score 1.
// Falls back to the source default.
func Classify(title string, source record.Source) record.Kind {
	tokens := tokenize(title)
	lower := strings.ToLower(title)

	var best record.Kind
	bestScore := 0
	for _, kind := range AllKinds() {
		score := 0
		for _, kw := range kindKeywords[kind] {
			matched := false
			if !strings.Contains(kw, " ") {
				for _, t := range tokens {
					if t == kw {
						score += 2
						matched = true
					}
				}
			}
			if !matched && !isASCII(kw) && strings.Contains(lower, kw) {
				score++
			} else if !matched && strings.Contains(kw, " ") && strings.Contains(lower, kw) {
				score += 2
			}
		}
		if score > bestScore {
			bestScore = score
			best = kind
		}
	}

	if bestScore == 0 {
		return Default(source)
	}
	return best
}

// ResolveKind maps a CLI value to a Kind.
func ResolveKind(value string) (record.Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, k := range AllKinds() {
		if string(k) == value {
			return k, nil
		}
	}
	valid := make([]string, 0, len(AllKinds()))
	for _, k := range AllKinds() {
		valid = append(valid, string(k))
	}
	return "", fmt.Errorf("unknown kind %q (valid: %s)", value, strings.Join(valid, ", "))
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// tokenize splits on anything that is not a letter or digit, so bracketed
// tags like 【LIVE】 yield their inner word.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
