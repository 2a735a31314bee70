package tree

import (
	"errors"
	"strconv"
	"strings"

	"github.com/statecraft/tricode/internal/model"
)

var errUnclosedCompound = errors.New("unclosed compound inside noun phrase")

// normalizer holds the per-sentence transformation state. The bracketed
// parse is rewritten in place as a string until the final conversion to
// tokens; the string form is the natural fit for the span surgery below.
type normalizer struct {
	treestr  string
	fullline strings.Builder
	npindex  int
	vpindex  int
	ncindex  int
}

// Normalize converts a bracketed Penn-Treebank parse string into a
// balanced token sequence. Failures are *model.SkipSentence values with
// stable tags.
func Normalize(parse string) (Seq, error) {
	ts := canonicalize(parse)
	if strings.Count(ts, "(") != strings.Count(ts, ")") {
		return nil, model.Skip(model.TagBadInputParse, "parse input was not balanced")
	}

	n := &normalizer{treestr: ts, npindex: 1, vpindex: 1, ncindex: 1}
	if err := n.markCompounds(); err != nil {
		return nil, err
	}
	if err := n.convert(); err != nil {
		return nil, err
	}

	seq := n.tokenize()
	if len(seq) < Start {
		return nil, model.Skip(model.TagBadFinalParse, "sequence too short")
	}
	if isDateline(seq) {
		return nil, model.Skip(model.TagDateline, "dateline pattern found")
	}
	if err := seq.CheckBalance(); err != nil {
		return nil, model.Skip(model.TagBadFinalParse, err.Error())
	}
	return seq, nil
}

// canonicalize uppercases the parse, isolates close brackets as their own
// fields, and collapses whitespace. A literal '~' would collide with close
// marker notation downstream.
func canonicalize(parse string) string {
	parse = strings.ToUpper(parse)
	parse = strings.ReplaceAll(parse, "~", "-TILDA-")
	parse = strings.ReplaceAll(parse, ")", " ) ")
	return strings.Join(strings.Fields(parse), " ") + " "
}

// forwardBounds returns the bounds [ka, kb) of the phrase beginning at the
// open bracket at ka, including the final space.
func (n *normalizer) forwardBounds(ka int) (int, int, error) {
	kb := ka + 1
	nparen := 1
	for nparen > 0 {
		if kb >= len(n.treestr) {
			return 0, 0, model.Skip(model.TagForwardBounds, "upper bound error")
		}
		switch n.treestr[kb] {
		case '(':
			nparen++
		case ')':
			nparen--
		}
		kb++
	}
	return ka, kb, nil
}

// enclosingBounds returns the bounds of the phrase enclosing position ka.
func (n *normalizer) enclosingBounds(ka int) (int, int, error) {
	kstart := ka - 1
	nparen := 0
	for nparen <= 0 {
		if kstart < 0 {
			return 0, 0, model.Skip(model.TagEnclosingBounds, "lower bound error")
		}
		switch n.treestr[kstart] {
		case '(':
			nparen++
		case ')':
			nparen--
		}
		kstart--
	}
	kstart++
	_, kb, err := n.forwardBounds(kstart)
	return kstart, kb, err
}

// markCompounds finds the innermost phrase enclosing each coordination and
// marks it: NP becomes NEC when the phrase holds at least three noun heads
// and no verb or clause phrase; coordinated verb/clause phrases get CC
// relabeled CCP, which needs no further special handling.
func (n *normalizer) markCompounds() error {
	ka := n.indexFrom("(CC", 0)
	for ka >= 0 {
		lo, hi, err := n.enclosingBounds(ka)
		if err != nil {
			return err
		}
		span := n.treestr[lo:hi]
		switch {
		case strings.Contains(span, "(VP") || strings.Contains(span, "(S"):
			n.treestr = n.treestr[:ka+3] + "P" + n.treestr[ka+3:]
		case strings.Count(span, "(CC") > 1:
			// nested compounds: don't go there
			n.treestr = n.treestr[:ka+3] + "P" + n.treestr[ka+3:]
		case strings.HasPrefix(n.treestr[lo:], "(NP"):
			if strings.Count(n.treestr[lo:hi], "(N") >= 3 {
				n.treestr = n.treestr[:lo+2] + "EC" + n.treestr[lo+3:]
			}
		}
		ka = n.indexFrom("(CC", ka+3)
	}
	return nil
}

func (n *normalizer) indexFrom(sub string, from int) int {
	if from >= len(n.treestr) {
		return -1
	}
	idx := strings.Index(n.treestr[from:], sub)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// convert runs the left-to-right scan that rewrites noun phrases as entity
// spans and assigns occurrence indices to the phrase labels that repeat.
func (n *normalizer) convert() error {
	ka := 0
	for ka < len(n.treestr) {
		switch {
		case strings.HasPrefix(n.treestr[ka:], "(NP "):
			next, err := n.convertNounPhrase(ka)
			if err != nil {
				return err
			}
			ka = next

		case strings.HasPrefix(n.treestr[ka:], "(NEC "):
			n.fullline.WriteString("(NEC" + strconv.Itoa(n.ncindex) + " ")
			n.ncindex++
			next, err := n.resolveCompounds(ka)
			if err != nil {
				return err
			}
			ka = next

		case strings.HasPrefix(n.treestr[ka:], "(VP "):
			n.fullline.WriteString("(VP" + strconv.Itoa(n.vpindex) + " ")
			n.vpindex++
			ka += 4

		default:
			n.fullline.WriteByte(n.treestr[ka])
			ka++
		}
	}
	return nil
}

// convertNounPhrase handles one (NP span: subordinate clauses inside it are
// flattened first, then the phrase is converted to an NE span when it has
// one of the three supported shapes (simple, possessive, single-level
// prepositional). Anything else keeps its (NP label with a fresh index and
// is left for later passes.
func (n *normalizer) convertNounPhrase(ka int) (int, error) {
	_, hi, err := n.forwardBounds(ka)
	if err != nil {
		return 0, err
	}
	for {
		ksb := n.indexFrom("(SBAR ", ka)
		if ksb < 0 || ksb >= hi {
			break
		}
		if err := n.reduceSubordinate(ksb); err != nil {
			return 0, err
		}
		if _, hi, err = n.forwardBounds(ka); err != nil {
			return 0, err
		}
	}

	inner := n.treestr[ka+3 : hi]
	var nephrase string
	switch {
	case strings.Contains(inner, "(POS"):
		nephrase, err = n.splitPossessive(ka, hi)
	case strings.Contains(inner, "(PP"):
		nephrase, err = n.flattenPreposition(n.indexFrom("(PP", ka+3), hi)
	case !strings.Contains(inner, "(NP") && !strings.Contains(inner, "(NEC"):
		nephrase = n.treestr[ka:hi]
	}
	if err != nil {
		return 0, err
	}

	if nephrase == "" {
		// unsupported shape: synthetic numbered placeholder
		n.fullline.WriteString("(NP" + strconv.Itoa(n.npindex) + " ")
		n.npindex++
		return ka + 4, nil
	}

	nplist, err := extractEntity(nephrase)
	if err != nil {
		return 0, model.Skip(model.TagEntityExtract, err.Error())
	}
	if nplist == nil {
		return 0, model.Skip(model.TagEmptyNounList, "empty noun phrase list")
	}
	for _, item := range nplist {
		n.fullline.WriteString(item + " ")
	}
	return hi + 1, nil
}

// splitPossessive splits an (NP around its possessive marker and recombines
// possessor and possessed into one flat entity phrase.
func (n *normalizer) splitPossessive(ka, hi int) (string, error) {
	kb := n.indexFrom("(POS", ka+4)
	if kb < 0 || kb >= hi {
		return "", nil
	}
	_, posend, err := n.forwardBounds(kb)
	if err != nil {
		return "", err
	}
	return n.treestr[ka+4:kb] + " " + n.treestr[posend:hi], nil
}

// flattenPreposition handles the restricted (NP (NP ...) (PP ...) (NP|NEC ...))
// shape, merging both noun phrases and the preposition into one flat
// entity. Any second-level preposition bails out to the placeholder path.
func (n *normalizer) flattenPreposition(kpp, _ int) (string, error) {
	lo, hi, err := n.enclosingBounds(kpp)
	if err != nil {
		return "", err
	}
	var nepph string
	var headEnd int
	switch {
	case strings.HasPrefix(n.treestr[lo:], "(NP (NP"):
		_, npend, err := n.forwardBounds(lo + 4)
		if err != nil {
			return "", err
		}
		nepph = "(NP " + n.treestr[lo+8:npend-2]
		headEnd = npend
	case strings.HasPrefix(n.treestr[lo:], "(NP (NEC"):
		_, npend, err := n.forwardBounds(lo + 4)
		if err != nil {
			return "", err
		}
		nepph = "(NP (NEC " + n.treestr[lo+9:npend] + " "
		headEnd = npend
	default:
		return "", nil // not what we are expecting, so bail
	}

	kin := n.indexFrom("(IN ", headEnd)
	if kin < 0 || kin >= hi {
		return "", nil
	}
	_, inend, err := n.forwardBounds(kin)
	if err != nil {
		return "", err
	}
	nepph += n.treestr[kin:inend] + " "

	kb := -1
	for _, target := range []string{"(NP ", "(NEC "} {
		idx := n.indexFrom(target, inend)
		if idx >= 0 && idx < hi && (kb < 0 || idx < kb) {
			kb = idx
		}
	}
	if kb < 0 {
		return "", nil
	}
	_, objend, err := n.forwardBounds(kb)
	if err != nil {
		return "", err
	}
	if strings.Contains(n.treestr[kb:objend], "(PP") {
		return "", nil // another level of preposition
	}
	if strings.HasPrefix(n.treestr[kb:], "(NEC") {
		nepph += n.treestr[kb:objend] + " "
	} else {
		nepph += n.treestr[kb+4 : objend-2]
	}
	if ksbr := n.indexFrom("(SBR", objend); ksbr >= 0 && ksbr < hi {
		_, sbrend, err := n.forwardBounds(ksbr)
		if err != nil {
			return "", err
		}
		nepph += n.treestr[ksbr:sbrend] + " "
	}
	return nepph + ")", nil
}

// reduceSubordinate collapses an (SBAR to a flat word fragment relabeled
// SBR so later clause logic ignores its internal structure.
func (n *normalizer) reduceSubordinate(kstart int) error {
	lo, hi, err := n.enclosingBounds(kstart + 5)
	if err != nil {
		return err
	}
	var frag []string
	for _, field := range strings.Fields(n.treestr[lo:hi]) {
		if field[0] != '(' && field != ")" {
			frag = append(frag, field)
		}
	}
	n.treestr = n.treestr[:lo] + "(SBR " + strings.Join(frag, " ") + n.treestr[hi-2:]
	return nil
}

// resolveCompounds expands the members of an (NEC span into individual
// entity spans, duplicating any leading adjectives onto every head.
// Nested compounds inside a member are copied with their markup and
// re-expanded during entity resolution.
func (n *normalizer) resolveCompounds(ka int) (int, error) {
	_, hi, err := n.forwardBounds(ka)
	if err != nil {
		return 0, err
	}
	ka += 4

	var adjlist []string
	for ka < hi && !strings.HasPrefix(n.treestr[ka:], "(NP") &&
		!strings.HasPrefix(n.treestr[ka:], "(NN") {
		if strings.HasPrefix(n.treestr[ka:], "(JJ") {
			_, jjend, err := n.forwardBounds(ka)
			if err != nil {
				return 0, err
			}
			for _, field := range strings.Fields(n.treestr[ka:jjend]) {
				if field[0] != '(' && field != ")" {
					adjlist = append(adjlist, field)
				}
			}
		}
		ka++
	}

	for ka < hi {
		if strings.HasPrefix(n.treestr[ka:], "(NP") || strings.HasPrefix(n.treestr[ka:], "(NN") {
			_, npend, err := n.forwardBounds(ka)
			if err != nil {
				return 0, err
			}
			var nplist []string
			if strings.HasPrefix(n.treestr[ka:], "(NN") {
				fields := strings.Fields(n.treestr[ka:npend])
				nplist = []string{"(NE", model.NullCode}
				nplist = append(nplist, adjlist...)
				if len(fields) > 1 {
					nplist = append(nplist, fields[1])
				}
				nplist = append(nplist, ")")
			} else {
				nplist, err = extractEntity(n.treestr[ka:npend])
				if err != nil {
					return 0, model.Skip(model.TagCompoundResolve, err.Error())
				}
			}
			for _, item := range nplist {
				n.fullline.WriteString(item + " ")
			}
			ka = npend
		}
		ka++
	}
	n.fullline.WriteString(") ")
	return hi + 1, nil
}

// extractEntity converts a noun phrase string to the flat NE form: words
// are copied without markup, nested (NEC subtrees are copied with markup
// for later compound expansion.
func extractEntity(phrase string) ([]string, error) {
	seg := strings.Fields(phrase)
	nplist := []string{"(NE", model.NullCode}
	ka := 0
	for ka < len(seg) {
		switch {
		case seg[ka] == "(NEC":
			nplist = append(nplist, seg[ka])
			ka++
			nparen := 1
			for nparen > 0 {
				if ka >= len(seg) {
					return nil, errUnclosedCompound
				}
				if seg[ka][0] == '(' {
					nparen++
				} else if seg[ka] == ")" {
					nparen--
				}
				nplist = append(nplist, seg[ka])
				ka++
			}
		case seg[ka][0] != '(' && seg[ka] != ")":
			nplist = append(nplist, seg[ka])
			ka++
		default:
			ka++
		}
	}
	nplist = append(nplist, ")")
	return nplist, nil
}

// tokenize splits the converted text into tokens, rewriting close brackets
// into label-specific close markers by unwinding a stack of open labels.
func (n *normalizer) tokenize() Seq {
	fields := strings.Fields(n.fullline.String())
	seq := make(Seq, 0, len(fields))
	var stack []Token
	prevNE := false
	for _, field := range fields {
		switch {
		case field == ")":
			if len(stack) == 0 {
				seq = append(seq, word(field))
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			seq = append(seq, closeTok(top.Label, top.Index))
		case field[0] == '(':
			t := parseOpen(field[1:])
			stack = append(stack, t)
			seq = append(seq, t)
			prevNE = t.Label == "NE"
			continue
		default:
			if prevNE {
				seq = append(seq, code(field))
			} else {
				seq = append(seq, word(field))
			}
		}
		prevNE = false
	}
	return seq
}

// parseOpen splits a label like NP2 or NEC1 into label and occurrence index.
func parseOpen(s string) Token {
	end := len(s)
	for end > 0 && s[end-1] >= '0' && s[end-1] <= '9' {
		end--
	}
	idx := 0
	if end < len(s) {
		idx, _ = strconv.Atoi(s[end:])
	}
	return open(s[:end], idx)
}

// isDateline reports the known dateline-header pattern: the first three
// opens are ROOT, NE, NEC.
func isDateline(seq Seq) bool {
	var labels []string
	for _, t := range seq {
		if t.Kind == Open {
			labels = append(labels, t.Label)
			if len(labels) == 3 {
				break
			}
		}
	}
	return len(labels) == 3 && labels[0] == "ROOT" && labels[1] == "NE" && labels[2] == "NEC"
}
