package dict

import (
	"strings"

	"go.uber.org/zap"
)

// Discard classification for a sentence.
const (
	DiscardNone     = 0
	DiscardSentence = 1
	DiscardStory    = 2
)

type discardPhrase struct {
	text     string // uppercased, leading space anchors a word start
	story    bool   // '+' prefix: discard the whole story
	boundary bool   // trailing '_': match must end at space or punctuation
}

// DiscardList holds the discard phrases checked against raw sentence text.
type DiscardList struct {
	phrases []discardPhrase
}

// LoadDiscards reads a discard phrase file: one phrase per line, '+' prefix
// for story-level discards, trailing '_' for a word-boundary requirement.
func LoadDiscards(path string, log *zap.SugaredLogger) (*DiscardList, error) {
	log = nopLogger(log)
	f, err := openDict(path, "discard")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Infow("reading discard list", "path", path)

	t := &DiscardList{}
	r := newLineReader(f)
	line, ok := r.next()
	for ok {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		targ := strings.TrimSpace(line)
		if targ != "" {
			p := discardPhrase{}
			if strings.HasPrefix(targ, "+") {
				p.story = true
				targ = strings.TrimSpace(targ[1:])
			}
			if strings.HasSuffix(targ, "_") {
				p.boundary = true
				targ = targ[:len(targ)-1]
			}
			p.text = " " + strings.ToUpper(targ)
			t.phrases = append(t.phrases, p)
		}
		line, ok = r.next()
	}
	return t, nil
}

// Len returns the number of compiled discard phrases.
func (t *DiscardList) Len() int {
	if t == nil {
		return 0
	}
	return len(t.phrases)
}

// Check classifies text against the discard list. Story-level phrases take
// precedence: a sentence matching both a plain and a '+' phrase is a story
// discard. Returns the classification and the matched phrase.
func (t *DiscardList) Check(text string) (int, string) {
	if t == nil {
		return DiscardNone, ""
	}
	sent := " " + strings.ToUpper(text)
	for _, p := range t.phrases {
		if p.story && p.matches(sent) {
			return DiscardStory, strings.TrimSpace(p.text)
		}
	}
	for _, p := range t.phrases {
		if !p.story && p.matches(sent) {
			return DiscardSentence, strings.TrimSpace(p.text)
		}
	}
	return DiscardNone, ""
}

func (p discardPhrase) matches(sent string) bool {
	loc := strings.Index(sent, p.text)
	if loc < 0 {
		return false
	}
	if !p.boundary {
		return true
	}
	end := loc + len(p.text)
	if end >= len(sent) {
		return true // end of sentence counts as a boundary
	}
	return strings.IndexByte(" .!?", sent[end]) >= 0
}
