package dict

import (
	"strings"

	"go.uber.org/zap"

	"github.com/statecraft/tricode/internal/model"
)

type issueEntry struct {
	text      string // padded with spaces for whole-word matching
	codeIndex int
}

// IssueList maps issue phrases to codes. Indices 0 and 1 are reserved for
// the sentence- and story-level ignore markers ('~', '~~'): any ignore
// phrase found in a sentence cancels issue coding for it.
type IssueList struct {
	entries []issueEntry
	codes   []string
}

// LoadIssues reads an issue phrase file. Entries carry a bracketed code and
// support the expansion shorthands N: (noun plural), V: (regular verb
// forms) and + (space/hyphen variants).
func LoadIssues(path string, log *zap.SugaredLogger) (*IssueList, error) {
	log = nopLogger(log)
	f, err := openDict(path, "issues")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Infow("reading issue list", "path", path)

	t := &IssueList{codes: []string{"~", "~~"}}
	r := newLineReader(f)
	line, ok := r.next()
	for ok {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		var target string
		var codeindex int
		switch {
		case strings.HasPrefix(line, "~~"):
			target = strings.ToUpper(strings.TrimSpace(line[2:]))
			codeindex = 1
		case strings.HasPrefix(line, "~"):
			target = strings.ToUpper(strings.TrimSpace(line[1:]))
			codeindex = 0
		default:
			phrase, code := splitBracketCode(line)
			if code == "" {
				line, ok = r.next()
				continue
			}
			codeindex = t.codeIndex(code)
			target = strings.ToUpper(phrase)
		}
		for _, form := range expandIssueForms(target) {
			t.entries = append(t.entries, issueEntry{
				text:      " " + form + " ",
				codeIndex: codeindex,
			})
		}
		line, ok = r.next()
	}
	return t, nil
}

func (t *IssueList) codeIndex(code string) int {
	for i, c := range t.codes {
		if c == code {
			return i
		}
	}
	t.codes = append(t.codes, code)
	return len(t.codes) - 1
}

// expandIssueForms iteratively applies the +, N: and V: shorthands until no
// expansion remains.
func expandIssueForms(target string) []string {
	forms := []string{target}
	changed := true
	for changed {
		changed = false
		for ka := 0; ka < len(forms); ka++ {
			if strings.Contains(forms[ka], "+") {
				s := forms[ka]
				forms[ka] = strings.Replace(s, "+", " ", 1)
				forms = insertAt(forms, ka+1, strings.Replace(s, "+", "-", 1))
				changed = true
			}
			if strings.Contains(forms[ka], "N:") {
				pre, post, _ := strings.Cut(forms[ka], "N:")
				forms[ka] = pre + post
				noun, rest, _ := strings.Cut(post, " ")
				forms = insertAt(forms, ka+1, strings.TrimSpace(pre+NounPlural(noun)+" "+rest))
				changed = true
			}
			if strings.Contains(forms[ka], "V:") {
				pre, post, _ := strings.Cut(forms[ka], "V:")
				forms[ka] = pre + post
				root, rest, _ := strings.Cut(post, " ")
				at := ka + 1
				for _, vf := range VerbForms(root) {
					forms = insertAt(forms, at, strings.TrimSpace(pre+vf+" "+rest))
					at++
				}
				changed = true
			}
		}
	}
	return forms
}

func insertAt(s []string, i int, v string) []string {
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Len returns the number of compiled issue phrase forms.
func (t *IssueList) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Find returns the issue codes found in text with their occurrence counts.
// Any ignore phrase cancels issue coding and returns nil.
func (t *IssueList) Find(text string) []model.Issue {
	if t == nil {
		return nil
	}
	sent := " " + strings.ToUpper(text) + " "
	var issues []model.Issue
	for _, entry := range t.entries {
		if !strings.Contains(sent, entry.text) {
			continue
		}
		code := t.codes[entry.codeIndex]
		if strings.HasPrefix(code, "~") {
			return nil
		}
		found := false
		for i := range issues {
			if issues[i].Code == code {
				issues[i].Count++
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, model.Issue{Code: code, Count: 1})
		}
	}
	return issues
}
