package dict

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/statecraft/tricode/internal/model"
)

// Date-restriction rule kinds, in the order they are written in the
// dictionary: a restricted rule matches the sentence date, an Always rule
// is the fallback default.
const (
	ruleBefore = iota
	ruleAfter
	ruleInterval
	ruleAlways
)

// CodeRule is one code variant for an actor, optionally bounded by ordinal
// dates. Interval bounds are inclusive.
type CodeRule struct {
	Kind       int
	Start, End int
	Code       string
}

// CodeSet is the full set of code variants for one actor, plus the root
// phrase for root annotation.
type CodeSet struct {
	Rules []CodeRule
	Root  string
}

// ActorPattern is one actor phrase keyed on its first word. Words holds the
// remaining words; Connector is the connector following the key word.
type ActorPattern struct {
	CodeIndex int
	Connector byte
	Words     []nounPart
}

// ActorTable maps a phrase's first word to its candidate patterns, sorted
// longest first so the most specific phrase wins.
type ActorTable struct {
	Patterns map[string][]ActorPattern
	Codes    []CodeSet
}

// LoadActors compiles one or more actor dictionary files into a single
// table. Synonym phrases ('+' lines) share the code set of the preceding
// primary phrase; tab-indented lines add date-restricted variants.
func LoadActors(paths []string, log *zap.SugaredLogger) (*ActorTable, error) {
	log = nopLogger(log)
	t := &ActorTable{Patterns: make(map[string][]ActorPattern)}
	for _, path := range paths {
		if err := t.loadFile(path, log); err != nil {
			return nil, err
		}
	}
	for key := range t.Patterns {
		pats := t.Patterns[key]
		sort.SliceStable(pats, func(i, j int) bool {
			return len(pats[i].Words) > len(pats[j].Words)
		})
	}
	return t, nil
}

func (t *ActorTable) loadFile(path string, log *zap.SugaredLogger) error {
	f, err := openDict(path, "actor")
	if err != nil {
		return err
	}
	defer f.Close()
	log.Infow("reading actor dictionary", "path", path)

	r := newLineReader(f)
	var currules []CodeRule
	root := ""
	codeindex := len(t.Codes)

	flush := func() {
		if len(currules) > 0 {
			t.Codes = append(t.Codes, CodeSet{Rules: currules, Root: root})
			codeindex = len(t.Codes)
			currules = nil
		}
	}

	line, ok := r.next()
	for ok {
		if strings.Contains(line, "---STOP---") {
			break
		}
		if line[0] == '\t' || line[0] == ' ' {
			rule, err := parseDateRestriction(line)
			if err != nil {
				log.Warnw("date restriction skipped", "line", r.lineno, "err", err)
			} else {
				currules = append(currules, rule)
			}
			line, ok = r.next()
			continue
		}

		var actor string
		if line[0] == '+' { // synonym of the preceding primary phrase
			actor = strings.TrimSpace(strings.SplitN(line[1:], ";", 2)[0])
		} else { // primary phrase, optionally with a default code
			flush()
			phrase, code := splitBracketCode(strings.SplitN(line, ";", 2)[0])
			if code != "" {
				currules = append(currules, CodeRule{Kind: ruleAlways, Code: strings.TrimSpace(code)})
			}
			actor = phrase
			root = phrase
		}
		if actor != "" {
			parts := splitNounPhrase(actor)
			key := parts[0].word
			t.Patterns[key] = append(t.Patterns[key], ActorPattern{
				CodeIndex: codeindex,
				Connector: parts[0].connector,
				Words:     parts[1:],
			})
		}
		line, ok = r.next()
	}
	flush()
	return nil
}

// parseDateRestriction reads a "[CODE <date]", "[CODE >date]" or
// "[CODE date-date]" restriction line.
func parseDateRestriction(line string) (CodeRule, error) {
	brack := strings.IndexByte(line, '[')
	if brack < 0 {
		return CodeRule{}, ErrBadDate
	}
	body := strings.TrimSpace(line[brack+1:])
	code, rest, found := strings.Cut(body, " ")
	if !found { // no restriction: replaces the default code
		return CodeRule{Kind: ruleAlways, Code: strings.TrimRight(code, "]")}, nil
	}
	rest = strings.TrimSpace(rest)

	switch {
	case strings.HasPrefix(rest, "<") || strings.HasPrefix(rest, ">"):
		ord, err := OrdinalDate(digitRun(rest[1:]))
		if err != nil {
			return CodeRule{}, err
		}
		kind := ruleBefore
		if rest[0] == '>' {
			kind = ruleAfter
		}
		return CodeRule{Kind: kind, Start: ord, Code: code}, nil
	case strings.Contains(rest, "-"):
		first, second, _ := strings.Cut(rest, "-")
		ord1, err := OrdinalDate(digitRun(first))
		if err != nil {
			return CodeRule{}, err
		}
		ord2, err := OrdinalDate(digitRun(second))
		if err != nil {
			return CodeRule{}, err
		}
		if ord2 < ord1 {
			return CodeRule{}, ErrBadDate
		}
		return CodeRule{Kind: ruleInterval, Start: ord1, End: ord2, Code: code}, nil
	default:
		return CodeRule{Kind: ruleAlways, Code: strings.TrimRight(code, "]")}, nil
	}
}

// digitRun extracts the leading run of digits from s.
func digitRun(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// Resolve returns the code for the actor code set at index, resolving date
// restrictions against the sentence's ordinal date: the first matching
// restricted rule wins, then the first unconditional rule, then the null
// code. The root phrase is returned alongside.
func (t *ActorTable) Resolve(index, orddate int) (code, root string) {
	if index < 0 || index >= len(t.Codes) {
		return model.NullCode, ""
	}
	set := t.Codes[index]
	for _, rule := range set.Rules {
		switch rule.Kind {
		case ruleBefore:
			if orddate <= rule.Start {
				return rule.Code, set.Root
			}
		case ruleAfter:
			if orddate >= rule.Start {
				return rule.Code, set.Root
			}
		case ruleInterval:
			if orddate >= rule.Start && orddate <= rule.End {
				return rule.Code, set.Root
			}
		}
	}
	// a bare continuation code replaces the default, so the last one wins
	code = model.NullCode
	for _, rule := range set.Rules {
		if rule.Kind == ruleAlways {
			code = rule.Code
		}
	}
	return code, set.Root
}

// FirstMatch scans frag left to right for the first actor pattern match,
// longest pattern first at each position. It returns the code-set index of
// the match, or found=false.
func (t *ActorTable) FirstMatch(frag []string) (int, bool) {
	for kword := range frag {
		pats, ok := t.Patterns[frag[kword]]
		if !ok {
			continue
		}
		for _, pat := range pats {
			if matchNounPattern(pat.Connector, pat.Words, frag[kword:]) {
				return pat.CodeIndex, true
			}
		}
	}
	return 0, false
}
