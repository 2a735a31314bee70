package dict

import (
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var errBadMarker = errors.New("substitution marker incorrectly defined")

// AgentPattern is one agent phrase keyed on its first word. The code is a
// fixed-width block attached to the actor code; Append codes (written
// [~XXX]) follow the actor code, prefix codes (written [XXX~]) precede it.
type AgentPattern struct {
	Code      string
	Append    bool
	Connector byte
	Words     []nounPart
}

// AgentTable maps a phrase's first word to its candidate patterns, sorted
// longest first.
type AgentTable struct {
	Patterns map[string][]AgentPattern
}

// LoadAgents compiles an agent dictionary file. Every entry requires a
// code; {PLURAL} overrides the automatic plural, and !MARKER! substitution
// sets expand a line into one entry per member.
func LoadAgents(path string, log *zap.SugaredLogger) (*AgentTable, error) {
	log = nopLogger(log)
	f, err := openDict(path, "agent")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Infow("reading agent dictionary", "path", path)

	t := &AgentTable{Patterns: make(map[string][]AgentPattern)}
	subdict := make(map[string][]string)

	r := newLineReader(f)
	line, ok := r.next()
	for ok {
		if strings.Contains(line, "!") && strings.Contains(line, "=") {
			// substitution set definition: !NAME! = a, b, c
			name, members, err := parseMarkerDef(line)
			if err != nil {
				log.Warnw("substitution marker skipped", "line", r.lineno, "err", err)
			} else {
				subdict[name] = members
			}
			line, ok = r.next()
			continue
		}
		if !strings.Contains(line, "[") {
			log.Warnw("agent line skipped: codes are required for agents", "line", r.lineno)
			line, ok = r.next()
			continue
		}

		phrase, rawcode := splitBracketCode(line)
		if phrase == "" {
			log.Warnw("agent line skipped: empty phrase", "line", r.lineno)
			line, ok = r.next()
			continue
		}
		code, appends := normalizeAgentCode(rawcode)
		switch {
		case strings.Contains(phrase, "!"):
			name, pre, post, err := splitMarkerUse(phrase)
			if err != nil {
				log.Warnw("substitution marker syntax incorrect", "line", r.lineno, "err", err)
				break
			}
			members, found := subdict[name]
			if !found {
				log.Warnw("substitution marker missing", "marker", name, "line", r.lineno)
				break
			}
			for _, member := range members {
				t.store(pre+member+post, code, appends)
			}
		case strings.Contains(phrase, "{"):
			end := strings.IndexByte(phrase, '}')
			if end < 0 {
				log.Warnw("agent line skipped: missing '}'", "line", r.lineno)
				break
			}
			base := strings.TrimSpace(phrase[:strings.IndexByte(phrase, '{')])
			plural := strings.TrimSpace(phrase[strings.IndexByte(phrase, '{')+1 : end])
			if base == "" {
				log.Warnw("agent line skipped: empty phrase", "line", r.lineno)
				break
			}
			t.store(base, code, appends)
			if plural != "" {
				t.store(plural, code, appends)
			}
		default:
			t.store(phrase, code, appends)
			t.store(NounPlural(phrase), code, appends)
		}
		line, ok = r.next()
	}

	for key := range t.Patterns {
		pats := t.Patterns[key]
		sort.SliceStable(pats, func(i, j int) bool {
			return len(pats[i].Words) > len(pats[j].Words)
		})
	}
	return t, nil
}

func (t *AgentTable) store(phrase, code string, appends bool) {
	parts := splitNounPhrase(phrase)
	key := parts[0].word
	t.Patterns[key] = append(t.Patterns[key], AgentPattern{
		Code:      code,
		Append:    appends,
		Connector: parts[0].connector,
		Words:     parts[1:],
	})
}

// normalizeAgentCode strips the '~' attachment marker from a raw agent
// code: a leading '~' means the block is appended after the actor code, a
// trailing '~' means it is prefixed.
func normalizeAgentCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "~") {
		return raw[1:], true
	}
	return strings.TrimSuffix(raw, "~"), false
}

func parseMarkerDef(line string) (string, []string, error) {
	start := strings.IndexByte(line, '!')
	end := strings.IndexByte(line[start+1:], '!')
	eq := strings.IndexByte(line, '=')
	if end < 0 || eq < 0 {
		return "", nil, errBadMarker
	}
	name := line[start+1 : start+1+end]
	var members []string
	for _, item := range strings.Split(line[eq+1:], ",") {
		members = append(members, strings.TrimSpace(item))
	}
	return name, members, nil
}

func splitMarkerUse(phrase string) (name, pre, post string, err error) {
	start := strings.IndexByte(phrase, '!')
	end := strings.IndexByte(phrase[start+1:], '!')
	if end < 0 {
		return "", "", "", errBadMarker
	}
	return phrase[start+1 : start+1+end], phrase[:start], phrase[start+2+end:], nil
}

// AllMatches collects the codes of every agent pattern matching anywhere in
// frag, in scan order. Each position contributes at most the first (longest)
// matching pattern.
func (t *AgentTable) AllMatches(frag []string) []AgentPattern {
	var matches []AgentPattern
	for kword := range frag {
		pats, ok := t.Patterns[frag[kword]]
		if !ok {
			continue
		}
		for _, pat := range pats {
			if matchNounPattern(pat.Connector, pat.Words, frag[kword:]) {
				matches = append(matches, pat)
				break
			}
		}
	}
	return matches
}
