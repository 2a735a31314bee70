package match

import (
	"strings"

	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

// patternMatch attempts to match one pattern half against a context
// sequence. Patterns are stored connector-first with atoms at odd indices;
// a '_' connector demands adjacency, ' ' allows intervening words. Entity
// markers in the sequence are consumed transparently while tracking whether
// the scan is inside an entity or compound, which scopes the source and
// target assignment atoms.
func (m *Matcher) patternMatch(pat []string, aseq Sequence, isUpper bool, mt *candidate) (bool, error) {
	if len(pat) == 0 {
		return true, nil // nothing to evaluate
	}
	if len(aseq) == 0 {
		return false, nil // nothing to match against
	}

	insideNE := false
	inNEC := false
	kpatword := 1
	kseq := 0

	// lastPat advances to the next pattern atom; true at pattern end means
	// the whole pattern matched. lastSeq advances the sequence; true means
	// the sequence ran out first.
	lastPat := func() bool {
		kpatword += 2
		return kpatword >= len(pat)
	}
	lastSeq := func() bool {
		kseq++
		return kseq >= len(aseq)
	}
	// noSkip reports whether a mismatch is fatal: with a '_' connector it
	// is, with ' ' the scan slides forward instead.
	noSkip := func() bool {
		if pat[kpatword-1] == " " {
			return lastSeq()
		}
		return true
	}

	for kpatword < len(pat) {
		if len(pat[kpatword]) == 0 {
			if lastPat() {
				return false, nil
			}
			continue
		}
		cur := aseq[kseq].Tok

		switch {
		case cur.Label == "NEC" && (cur.Kind == tree.Open || cur.Kind == tree.Close):
			if lastSeq() {
				return false, nil
			}
			inNEC = !inNEC

		case cur.Label == "NE" && (cur.Kind == tree.Open || cur.Kind == tree.Close):
			if lastSeq() {
				return false, nil
			}
			insideNE = !insideNE

		case len(pat[kpatword]) == 1: // assignment atoms
			if !insideNE && !inNEC {
				if pat[kpatword-1] == " " {
					if lastSeq() {
						return false, nil
					}
					continue
				}
				return false, nil
			}
			if insideNE {
				switch pat[kpatword] {
				case "$":
					ne, err := findNE(aseq, kseq, isUpper)
					if err != nil {
						return false, err
					}
					mt.source = Loc{Pos: ne, Upper: isUpper}
				case "+":
					ne, err := findNE(aseq, kseq, isUpper)
					if err != nil {
						return false, err
					}
					mt.target = Loc{Pos: ne, Upper: isUpper}
				case "^": // skip to the end of the entity
					for !isNEClose(aseq[kseq].Tok) {
						if isUpper {
							kseq--
						} else {
							kseq++
						}
						if kseq < 0 || kseq >= len(aseq) {
							return false, model.Skip(model.TagSequenceBounds,
								"entity end not found in skip atom")
						}
					}
					insideNE = isUpper
				}
			} else if pat[kpatword] == "%" { // compound as both source and target
				ka := kseq
				for !aseq[ka].Tok.IsOpen("NEC") {
					if isUpper {
						ka++
					} else {
						ka--
					}
					if ka < 0 || ka >= len(aseq) {
						return false, nil
					}
				}
				mt.source = Loc{Pos: ka, Upper: isUpper}
				mt.target = Loc{Pos: ka, Upper: isUpper}
			}
			if lastPat() {
				return true, nil
			}
			if lastSeq() {
				return false, nil
			}

		case pat[kpatword][0] == '&': // synset reference
			if m.synMatch(pat[kpatword], aseq, &kseq, isUpper) {
				if lastPat() {
					return true, nil
				}
				if lastSeq() {
					return false, nil
				}
			} else if noSkip() {
				return false, nil
			}

		case !wordEq(aseq[kseq], pat[kpatword]):
			if noSkip() {
				return false, nil
			}

		default: // literal word matched
			if lastPat() {
				return true, nil
			}
			if lastSeq() {
				return false, nil
			}
		}
	}
	return true, nil
}

// synMatch tests the sequence position against a named synset, including
// multi-word members. Multi-word members are matched in reverse in the
// upper sequence since it is stored verb-outward. On a multi-word match the
// sequence position advances to the last matched word.
func (m *Matcher) synMatch(name string, aseq Sequence, kseq *int, isUpper bool) bool {
	members, found := m.verbs.Members(name)
	if !found {
		return false
	}
	for _, w := range members {
		if !strings.Contains(w, " ") && wordEq(aseq[*kseq], w) {
			return true
		}
	}
	for _, w := range members {
		if !strings.Contains(w, " ") {
			continue
		}
		wordlist := strings.Fields(w)
		if isUpper {
			ka := len(wordlist) - 1
			off := 0
			for ka >= 0 && *kseq+off < len(aseq) && wordEq(aseq[*kseq+off], wordlist[ka]) {
				ka--
				off++
			}
			if ka < 0 {
				*kseq += len(wordlist) - 1
				return true
			}
		} else {
			ka := 0
			for ka < len(wordlist) && *kseq+ka < len(aseq) && wordEq(aseq[*kseq+ka], wordlist[ka]) {
				ka++
			}
			if ka == len(wordlist) {
				*kseq += len(wordlist) - 1
				return true
			}
		}
	}
	return false
}

// findNE locates the open marker of the entity enclosing aseq[kseq].
func findNE(aseq Sequence, kseq int, isUpper bool) (int, error) {
	ka := kseq
	for !isNEOpen(aseq[ka].Tok) {
		if isUpper {
			ka++
			if ka >= len(aseq) {
				return 0, model.Skip(model.TagSequenceBounds, "entity start not found")
			}
		} else {
			ka--
			if ka < 0 {
				return 0, model.Skip(model.TagSequenceBounds, "entity start not found")
			}
		}
	}
	return ka, nil
}

// isNEOpen matches both entity and compound open markers.
func isNEOpen(t tree.Token) bool {
	return t.Kind == tree.Open && strings.HasPrefix(t.Label, "NE")
}

// isNEClose matches both entity and compound close markers.
func isNEClose(t tree.Token) bool {
	return t.Kind == tree.Close && strings.HasPrefix(t.Label, "NE")
}

func wordEq(it Item, w string) bool {
	return it.Tok.Kind == tree.Word && it.Tok.Text == w
}
