package dict

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/statecraft/tricode/internal/model"
)

// Verb pattern atoms and connectors. A pattern is stored as a flat slice
// alternating connectors and atoms, connector first, so element 0 is the
// connector preceding the first atom and atoms sit at odd indices. Upper
// patterns are stored reversed since the upper context sequence is walked
// outward from the verb.
//
// Atoms are literal words, synset references (leading '&'), or the
// single-character controls:
//
//	$  mark the enclosing entity as source
//	+  mark the enclosing entity as target
//	^  skip to the end of the enclosing entity
//	%  mark the enclosing compound as both source and target

// VerbPattern is one (upper, lower, code) triple, tried in file order.
type VerbPattern struct {
	Upper []string
	Lower []string
	Code  string
}

// MultiWord is a multi-word verb continuation: the contiguous words that
// must appear adjacent to the key verb, and the primary entry the match
// redirects to.
type MultiWord struct {
	Code    string
	Primary string
	After   bool // words follow the verb; otherwise they precede it
	Words   []string
}

// VerbEntry is either a primary entry carrying patterns, or a redirect from
// an inflected or synonym form to its primary.
type VerbEntry struct {
	Primary  bool
	Code     string
	Redirect string // primary key, for redirect entries
	Multis   []MultiWord
	Patterns []VerbPattern
}

// VerbTable maps normalized verb head-words to entries, plus the named
// synonym sets usable inside patterns.
type VerbTable struct {
	Entries map[string]*VerbEntry
	Synsets map[string][]string
}

// LoadVerbs compiles a verb dictionary file.
func LoadVerbs(path string, log *zap.SugaredLogger) (*VerbTable, error) {
	log = nopLogger(log)
	f, err := openDict(path, "verb")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &VerbTable{
		Entries: make(map[string]*VerbEntry),
		Synsets: make(map[string][]string),
	}
	log.Infow("reading verb dictionary", "path", path)

	r := newLineReader(f)
	primarycode := model.NullCode
	theverb := ""
	newblock := false

	line, ok := r.next()
	for ok {
		verb, code := splitBracketCode(line)

		switch {
		case verb == "": // bracketed code with no phrase
			log.Warnw("verb line skipped: empty phrase", "line", r.lineno)
			line, ok = r.next()

		case strings.HasPrefix(verb, "---"): // start of a new block
			if code != "" {
				primarycode = code
			} else {
				primarycode = model.NullCode
			}
			newblock = true
			line, ok = r.next()

		case verb[0] == '-': // pattern line
			if strings.Contains(verb, "{") {
				line, ok = r.next() // legacy construction, not processed
				continue
			}
			pat, err := t.compilePattern(verb, code)
			if err != nil {
				log.Warnw("pattern skipped", "line", r.lineno, "err", err)
			} else if theverb != "" {
				t.Entries[theverb].Patterns = append(t.Entries[theverb].Patterns, pat)
			}
			line, ok = r.next()

		case verb[0] == '&': // synset block
			line, ok = t.readSynset(verb, r)

		default: // verb head line
			curcode := code
			if curcode == "" {
				curcode = primarycode
			}
			if newblock {
				theverb = rootWord(verb)
				t.Entries[theverb] = &VerbEntry{Primary: true, Code: curcode}
				newblock = false
			}
			if strings.Contains(verb, "_") {
				t.storeMultiWordVerb(verb, curcode, theverb)
			} else if strings.Contains(verb, "{") {
				t.storeIrregularForms(verb, curcode, theverb)
			} else {
				t.storeRegularForms(verb, curcode, theverb)
			}
			line, ok = r.next()
		}
	}
	return t, nil
}

// splitBracketCode separates "PHRASE [CODE]" into its parts; code is empty
// when no brackets are present.
func splitBracketCode(line string) (string, string) {
	if idx := strings.IndexByte(line, '['); idx >= 0 {
		phrase := strings.TrimSpace(line[:idx])
		rest := line[idx+1:]
		if end := strings.IndexByte(rest, ']'); end >= 0 {
			return phrase, rest[:end]
		}
		return phrase, ""
	}
	return strings.TrimSpace(line), ""
}

// rootWord strips an irregular-forms block from a verb head line.
func rootWord(verb string) string {
	if idx := strings.IndexByte(verb, '{'); idx >= 0 {
		return strings.TrimSpace(verb[:idx])
	}
	return verb
}

// makePhraseList converts pattern text into the alternating atom/connector
// form, atom first: ["A", "_", "B", " "]. The trailing connector closes the
// final atom.
func (t *VerbTable) makePhraseList(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	var list []string
	start := 0
	for start < len(text) {
		sp := strings.IndexByte(text[start:], ' ')
		un := strings.IndexByte(text[start:], '_')
		if sp < 0 {
			sp = len(text) - start
		}
		if un < 0 {
			un = len(text) - start
		}
		if un < sp {
			list = append(list, text[start:start+un], "_")
			start += un + 1
		} else {
			list = append(list, text[start:start+sp], " ")
			start += sp + 1
		}
	}
	for ka := 0; ka < len(list); ka += 2 {
		if strings.HasPrefix(list[ka], "&") {
			if _, found := t.Synsets[list[ka]]; !found {
				return nil, fmt.Errorf("synset %s has not been defined", list[ka])
			}
		}
	}
	return list, nil
}

// compilePattern parses a "- upper * lower [code]" pattern line into a
// VerbPattern. The upper half is reversed for outward matching and both
// halves are normalized to connector-first layout.
func (t *VerbTable) compilePattern(verb, code string) (VerbPattern, error) {
	// "_ " is ambiguous between connectors; resolve it to " "
	verb = strings.ReplaceAll(verb, "_ ", " ")
	star := strings.IndexByte(verb, '*')
	if star < 0 {
		return VerbPattern{}, fmt.Errorf("pattern has no * verb marker")
	}
	upper, err := t.makePhraseList(strings.TrimLeft(verb[1:star], " "))
	if err != nil {
		return VerbPattern{}, err
	}
	reverse(upper)

	var lower []string
	lowphrase := strings.TrimRight(verb[star+1:], " ")
	if len(lowphrase) > 0 {
		lower = []string{string(verb[star+1])} // leading connector
		loclist, err := t.makePhraseList(lowphrase[1:])
		if err != nil {
			return VerbPattern{}, err
		}
		if len(loclist) > 0 {
			lower = append(lower, loclist[:len(loclist)-1]...)
		}
	}
	return VerbPattern{Upper: upper, Lower: lower, Code: code}, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// readSynset reads an "&NAME" block followed by its "+MEMBER" lines. A
// trailing '_' on the set name or a member suppresses automatic plurals.
func (t *VerbTable) readSynset(verb string, r *lineReader) (string, bool) {
	noplural := false
	name := verb
	if strings.HasSuffix(name, "_") {
		noplural = true
		name = name[:len(name)-1]
	}
	t.Synsets[name] = []string{}
	line, ok := r.next()
	for ok && line[0] == '+' {
		word := strings.TrimSpace(line[1:])
		skipPlural := noplural || strings.HasSuffix(word, "_")
		word = strings.ReplaceAll(strings.TrimSuffix(word, "_"), "_", " ")
		t.Synsets[name] = append(t.Synsets[name], word)
		if !skipPlural {
			t.Synsets[name] = append(t.Synsets[name], NounPlural(word))
		}
		line, ok = r.next()
	}
	return line, ok
}

// storeMultiWordVerb stores the continuations of a multi-word verb under the
// word marked with '+', which is the form the parser will tag as the verb.
// Optional irregular forms in {...} are stored as additional continuations.
func (t *VerbTable) storeMultiWordVerb(verb, code, theverb string) {
	var forms []string
	if idx := strings.IndexByte(verb, '{'); idx >= 0 {
		end := strings.IndexByte(verb, '}')
		if end > idx {
			forms = strings.Fields(verb[idx+1 : end])
		}
		forms = append(forms, strings.TrimSpace(verb[:idx]))
	} else {
		forms = []string{verb}
	}
	for _, phrase := range forms {
		if !strings.Contains(phrase, "+") {
			continue // not in correct form
		}
		words := strings.Split(phrase, "_")
		var multi MultiWord
		var targ string
		if strings.HasPrefix(words[0], "+") {
			targ = words[0][1:]
			multi = MultiWord{Code: code, Primary: theverb, After: true, Words: words[1:]}
		} else {
			last := words[len(words)-1]
			targ = strings.TrimPrefix(last, "+")
			rest := make([]string, 0, len(words)-1)
			for ka := len(words) - 2; ka >= 0; ka-- {
				rest = append(rest, words[ka])
			}
			multi = MultiWord{Code: code, Primary: theverb, After: false, Words: rest}
		}
		entry, found := t.Entries[targ]
		if !found {
			entry = &VerbEntry{Primary: true, Code: model.NullCode}
			t.Entries[targ] = entry
		}
		// newest continuation takes priority
		entry.Multis = append([]MultiWord{multi}, entry.Multis...)
	}
}

// storeIrregularForms stores the explicit inflections listed in {...} as
// redirects to the block's primary entry, plus the root itself when it is a
// synonym rather than the block head.
func (t *VerbTable) storeIrregularForms(verb, code, theverb string) {
	idx := strings.IndexByte(verb, '{')
	end := strings.IndexByte(verb, '}')
	if end < idx {
		return
	}
	root := strings.TrimSpace(verb[:idx])
	if root != theverb {
		t.addRedirect(root, code, theverb)
	}
	for _, form := range strings.Fields(verb[idx+1 : end]) {
		t.addRedirect(form, code, theverb)
	}
}

// storeRegularForms derives and stores the regular inflections of a verb as
// redirects to the block's primary entry.
func (t *VerbTable) storeRegularForms(verb, code, theverb string) {
	if verb != theverb {
		t.addRedirect(verb, code, theverb)
	}
	for _, form := range VerbForms(verb) {
		t.addRedirect(form, code, theverb)
	}
}

func (t *VerbTable) addRedirect(form, code, theverb string) {
	if _, exists := t.Entries[form]; exists {
		return // first definition wins
	}
	t.Entries[form] = &VerbEntry{Primary: false, Code: code, Redirect: theverb}
}

// Members returns the literal alternatives of a named synset.
func (t *VerbTable) Members(name string) ([]string, bool) {
	members, found := t.Synsets[name]
	return members, found
}
