package pipeline

import (
	"encoding/json"
	"math"
	"unicode/utf8"
)

// Input field names of a content record. Everything else on the record is
// opaque pass-through payload.
const (
	fieldID       = "id"
	fieldText     = "ft"
	fieldLanguage = "lg"
)

// Output field names added by scoring. A record that could not be scored
// carries none of them.
const (
	fieldScorePrefix   = "ocrqa_"
	fieldPrimaryScore  = "ocrqa"
	fieldSubtokenCount = "subtokens"
	fieldCharRatio     = "subtoken_char_ratio"
	fieldTimestamp     = "ts"
	fieldGitVersion    = "git_version"
	fieldUnknownFreq   = "unk_freq"
)

// record is one parsed input line plus the fields the pipeline reads.
type record struct {
	obj      map[string]any
	id       string
	text     string
	declared string
	hasText  bool
}

func parseRecord(line []byte) (*record, error) {
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return nil, err
	}
	r := &record{obj: obj}
	r.id, _ = obj[fieldID].(string)
	r.text, r.hasText = obj[fieldText].(string)
	r.declared, _ = obj[fieldLanguage].(string)
	return r, nil
}

// marshal serializes the (possibly annotated) record. Map marshaling sorts
// keys, so identical runs produce byte-identical output.
func (r *record) marshal() ([]byte, error) {
	return json.Marshal(r.obj)
}

func (r *record) setScore(method string, value float64) {
	r.obj[fieldScorePrefix+method] = roundScore(value)
}

func (r *record) setPrimary(value float64) {
	r.obj[fieldPrimaryScore] = roundScore(value)
}

// roundScore fixes score precision so output is stable across platforms.
func roundScore(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// charRatio is the number of subtokens per character of original text, a
// fragmentation signal: heavily corrupted OCR shatters text into many short
// tokens.
func charRatio(subtokenCount int, text string) float64 {
	chars := utf8.RuneCountInString(text)
	if chars == 0 {
		return 0
	}
	return math.Round(float64(subtokenCount)/float64(chars)*1e3) / 1e3
}

// unknownFreq counts occurrences of each unknown subtoken, attached to the
// output record in verbose mode.
func unknownFreq(seq []string, contains func(string) bool) map[string]int {
	out := make(map[string]int)
	for _, tok := range seq {
		if !contains(tok) {
			out[tok]++
		}
	}
	return out
}
