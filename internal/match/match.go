// Package match runs the verb pattern engine over a coded token sequence.
// For every verb phrase whose head verb is in the dictionary it builds two
// context sequences, the upper one walking back from the verb toward the
// sentence start and the lower one covering the rest of the verb phrase,
// tries the verb's patterns against them, and resolves the source and
// target entities of each matched event.
package match

import (
	"strings"

	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

// Loc addresses one entity inside a context sequence.
type Loc struct {
	Pos   int
	Upper bool
}

var noLoc = Loc{Pos: -1, Upper: true}

// Item is one element of a context sequence: a word, or an entity or
// compound marker. Entity open markers carry the resolved code and their
// position in the sentence sequence.
type Item struct {
	Tok  tree.Token
	Pos  int
	Code string
}

// Sequence is a verb context sequence. The upper sequence is stored in
// reverse, nearest word first, since patterns match outward from the verb.
type Sequence []Item

// Actor is one resolved participant of an event.
type Actor struct {
	Code string
	Root string // root actor phrase, when configured
	Text string // matched entity text, when configured
}

// Match is one coded event pattern match. Source and Target each hold one
// actor, or several when the entity was a compound.
type Match struct {
	Source  []Actor
	Target  []Actor
	Code    string
	Passive bool
}

// candidate carries the per-verb matching state.
type candidate struct {
	upper, lower Sequence
	source       Loc
	target       Loc
}

// Matcher is the verb pattern engine. It is read-only after construction
// and safe for concurrent use.
type Matcher struct {
	verbs  *dict.VerbTable
	coding model.CodingConfig
	output model.OutputConfig
}

func New(verbs *dict.VerbTable, coding model.CodingConfig, output model.OutputConfig) *Matcher {
	return &Matcher{verbs: verbs, coding: coding, output: output}
}

// FindEvents scans the sentence for verb phrases and returns a Match for
// every verb pattern that produced a source and a target. roots maps code
// slot positions to root actor phrases for annotation.
func (m *Matcher) FindEvents(seq tree.Seq, roots map[int]string) ([]Match, error) {
	var matches []Match

	kitem := tree.Start
	for kitem < len(seq)-2 {
		if !seq[kitem].IsOpen("VP") || !seq[kitem+1].OpensVerb() {
			kitem++
			continue
		}
		vpstart := kitem
		vp := seq[vpstart]

		pv, ok := checkPassive(seq, kitem)
		if !ok {
			// malformed verb phrase: skip this verb, not the sentence
			kitem++
			continue
		}
		passive := pv > 0
		if passive {
			kitem = pv - 2 // kitem+2 is now the passive verb word
		}
		if seq[kitem+2].Kind != tree.Word {
			kitem++
			continue
		}
		entry := m.verbs.Entries[seq[kitem+2].Text]
		if entry == nil {
			kitem++
			continue
		}

		mt, code, err := m.checkVerb(seq, entry, kitem+2, vp)
		if err != nil {
			return nil, err
		}
		if mt == nil {
			kitem++
			continue
		}

		if event, err := m.resolveEvent(mt, code, passive, roots); err != nil {
			return nil, err
		} else if event != nil {
			matches = append(matches, *event)
		}

		// resume the scan past the end of this verb phrase
		for kitem < len(seq) && !seq[kitem].Closes(vp) {
			kitem++
		}
		kitem++
	}
	return matches, nil
}

// checkVerb resolves the dictionary entry for the verb at verbloc, builds
// the context sequences and tries the patterns. It returns a nil candidate
// when nothing matched.
func (m *Matcher) checkVerb(seq tree.Seq, entry *dict.VerbEntry, verbloc int, vp tree.Token) (*candidate, string, error) {
	var patterns []dict.VerbPattern
	var upper, lower Sequence
	var verbcode string
	var err error
	built := false

	if entry.Primary {
		for _, multi := range entry.Multis {
			upper, lower, built, err = m.multiSequences(seq, multi, verbloc, vp)
			if err != nil {
				return nil, "", err
			}
			if built {
				verbcode = multi.Code
				if primary := m.verbs.Entries[multi.Primary]; primary != nil {
					patterns = primary.Patterns
				}
				break
			}
		}
		if !built {
			patterns = entry.Patterns
			verbcode = entry.Code
		}
	} else {
		if primary := m.verbs.Entries[entry.Redirect]; primary != nil {
			patterns = primary.Patterns
		}
		verbcode = entry.Code
	}
	if !built {
		upper = upperSeq(seq, verbloc-1)
		lower, err = lowerSeq(seq, verbloc+1, vp)
		if err != nil {
			return nil, "", err
		}
	}

	mt := &candidate{upper: upper, lower: lower, source: noLoc, target: noLoc}
	hasmatch := false
	eventcode := ""
	for _, pat := range patterns {
		mt.source = noLoc
		mt.target = noLoc
		upok, err := m.patternMatch(pat.Upper, mt.upper, true, mt)
		if err != nil {
			return nil, "", err
		}
		if !upok {
			continue
		}
		lowok, err := m.patternMatch(pat.Lower, mt.lower, false, mt)
		if err != nil {
			return nil, "", err
		}
		if lowok {
			eventcode = pat.Code
			hasmatch = true
			break
		}
	}

	if hasmatch && eventcode == model.NullCode {
		hasmatch = false
	}
	if !hasmatch && verbcode != model.NullCode && verbcode != "" {
		// no pattern matched but the verb itself carries a code; locations
		// assigned during pattern matching are kept
		eventcode = verbcode
		hasmatch = true
	}
	if !hasmatch {
		return nil, "", nil
	}
	return mt, eventcode, nil
}

// resolveEvent fills in source and target by the default rules when no
// pattern token assigned them, and extracts the actor codes.
func (m *Matcher) resolveEvent(mt *candidate, code string, passive bool, roots map[int]string) (*Match, error) {
	if mt.source.Pos < 0 {
		mt.source = findSource(mt.upper)
	}
	if mt.source.Pos < 0 {
		return nil, nil
	}
	src, err := m.locCodes(mt, mt.source, roots)
	if err != nil {
		return nil, err
	}
	if mt.target.Pos < 0 {
		srccode := ""
		if len(src) == 1 {
			srccode = src[0].Code
		}
		mt.target = findTarget(mt, srccode)
	}
	if mt.target.Pos < 0 {
		return nil, nil
	}
	tar, err := m.locCodes(mt, mt.target, roots)
	if err != nil {
		return nil, err
	}
	return &Match{Source: src, Target: tar, Code: code, Passive: passive}, nil
}

// upperSeq builds the context sequence before the verb, in reverse order.
// It stops at a comma clause boundary or the sentence start. Entity code
// slots are folded into their entity item.
func upperSeq(seq tree.Seq, kword int) Sequence {
	var out Sequence
	for kword >= tree.Start {
		t := seq[kword]
		switch {
		case t.IsClose(","):
			return out
		case t.IsOpen("NE"):
			if len(out) > 0 && out[len(out)-1].Tok.Kind == tree.Code {
				out = out[:len(out)-1]
			}
			out = append(out, Item{Tok: t, Pos: kword, Code: seq[kword+1].Text})
		case t.Label == "NEC" || t.IsClose("NE"):
			out = append(out, Item{Tok: t})
		case t.Kind == tree.Word || t.Kind == tree.Code:
			out = append(out, Item{Tok: t})
		}
		kword--
	}
	return out
}

// lowerSeq builds the context sequence after the verb, bounded by the end
// of the verb phrase.
func lowerSeq(seq tree.Seq, kword int, vp tree.Token) (Sequence, error) {
	var out Sequence
	for {
		if kword >= len(seq) {
			return nil, model.Skip(model.TagSequenceBounds, "verb phrase end not found")
		}
		t := seq[kword]
		if t.Closes(vp) {
			return out, nil
		}
		switch {
		case t.IsOpen("NE"):
			out = append(out, Item{Tok: t, Pos: kword, Code: seq[kword+1].Text})
			kword++ // skip the code slot
		case t.Label == "NEC" || t.IsClose("NE"):
			out = append(out, Item{Tok: t})
		case t.Kind == tree.Word:
			out = append(out, Item{Tok: t})
		}
		kword++
	}
}

// multiSequences verifies that the continuation words of a multi-word verb
// sit adjacent to the verb and builds the context sequences around the full
// expression. built is false when the continuation does not match.
func (m *Matcher) multiSequences(seq tree.Seq, multi dict.MultiWord, verbloc int, vp tree.Token) (upper, lower Sequence, built bool, err error) {
	ka := 0
	if multi.After {
		kword := verbloc + 1
		for ka < len(multi.Words) {
			if kword >= len(seq) {
				return nil, nil, false, nil
			}
			t := seq[kword]
			if t.Kind == tree.Word || t.Kind == tree.Code {
				if t.Text != multi.Words[ka] {
					return nil, nil, false, nil
				}
				ka++
			}
			kword++
		}
		lower, err = lowerSeq(seq, kword, vp)
		if err != nil {
			return nil, nil, false, err
		}
		return upperSeq(seq, verbloc-1), lower, true, nil
	}

	kword := verbloc - 1
	for ka < len(multi.Words) {
		if kword < 0 {
			return nil, nil, false, nil
		}
		t := seq[kword]
		if t.Kind == tree.Word || t.Kind == tree.Code {
			if t.Text != multi.Words[ka] {
				return nil, nil, false, nil
			}
			ka++
		}
		kword--
	}
	lower, err = lowerSeq(seq, verbloc+1, vp)
	if err != nil {
		return nil, nil, false, err
	}
	return upperSeq(seq, kword), lower, true, nil
}

// checkPassive reports whether the verb phrase opening at kitem is in the
// passive voice: a past participle followed by BY, with a form of to-be as
// auxiliary. The returned position puts the participle at pv-1; ok is false
// when the phrase is malformed.
func checkPassive(seq tree.Seq, kitem int) (pv int, ok bool) {
	cpend := seq.FindClose(kitem)
	if cpend < 0 {
		return 0, false
	}
	ppvloc := -1
	for ka := kitem + 3; ka < cpend; ka++ {
		if seq[ka].IsClose("VBN") {
			ppvloc = ka
			break
		}
	}
	if ppvloc < 0 {
		return 0, true
	}
	hasBy := false
	for ka := ppvloc + 3; ka < cpend; ka++ {
		if seq[ka].Kind == tree.Word && seq[ka].Text == "BY" {
			hasBy = true
			break
		}
	}
	if !hasBy {
		return 0, true
	}
	for ka := ppvloc - 3; ka > kitem; ka-- {
		if seq[ka].Kind == tree.Close && strings.HasPrefix(seq[ka].Label, "VB") &&
			isAuxiliary(seq[ka-1]) {
			return ppvloc - 1, true
		}
	}
	return 0, true
}

func isAuxiliary(t tree.Token) bool {
	if t.Kind != tree.Word {
		return false
	}
	switch t.Text {
	case "WAS", "IS", "BEEN":
		return true
	}
	return false
}

// findSource assigns the default source: the first compound or coded entity
// before the verb in sentence order, falling back to the first uncoded one.
// The upper sequence is reversed, so sentence order means walking it from
// the end.
func findSource(upper Sequence) Loc {
	for kseq := len(upper) - 1; kseq >= 0; kseq-- {
		if upper[kseq].Tok.IsOpen("NEC") {
			return Loc{Pos: kseq, Upper: true}
		}
		if upper[kseq].Tok.IsOpen("NE") && !strings.HasPrefix(upper[kseq].Code, model.NullCode) {
			return Loc{Pos: kseq, Upper: true}
		}
	}
	for kseq := len(upper) - 1; kseq >= 0; kseq-- {
		if upper[kseq].Tok.IsOpen("NE") {
			return Loc{Pos: kseq, Upper: true}
		}
	}
	return noLoc
}

// findTarget assigns the default target, in priority order: the first coded
// entity after the verb whose code does not extend the source code, then
// the first uncoded entity after the verb, then the same two rules before
// the verb. srccode is empty when the source is a compound, which makes
// every coded entity eligible.
func findTarget(mt *candidate, srccode string) Loc {
	differs := func(code string) bool {
		return srccode == "" || !strings.HasPrefix(code, srccode)
	}
	for kseq, it := range mt.lower {
		if it.Tok.IsOpen("NE") && !strings.HasPrefix(it.Code, model.NullCode) && differs(it.Code) {
			return Loc{Pos: kseq, Upper: false}
		}
	}
	for kseq, it := range mt.lower {
		if it.Tok.IsOpen("NE") && strings.HasPrefix(it.Code, model.NullCode) {
			return Loc{Pos: kseq, Upper: false}
		}
	}
	for kseq, it := range mt.upper {
		if it.Tok.IsOpen("NE") && !strings.HasPrefix(it.Code, model.NullCode) && differs(it.Code) {
			return Loc{Pos: kseq, Upper: true}
		}
	}
	for kseq, it := range mt.upper {
		if it.Tok.IsOpen("NE") && strings.HasPrefix(it.Code, model.NullCode) {
			if mt.source.Upper && kseq == mt.source.Pos {
				continue // must be a different entity than the source
			}
			return Loc{Pos: kseq, Upper: true}
		}
	}
	return noLoc
}

// locCodes extracts the actor codes at loc: the single entity's code, or
// the codes of every member when loc addresses a compound. Uncoded entities
// may become quoted new-actor phrases when new_actor_length permits.
func (m *Matcher) locCodes(mt *candidate, loc Loc, roots map[int]string) ([]Actor, error) {
	aseq := mt.lower
	if loc.Upper {
		aseq = mt.upper
	}
	if loc.Pos < 0 || loc.Pos >= len(aseq) {
		return nil, model.Skip(model.TagSequenceBounds, "entity location out of range")
	}

	var actors []Actor
	add := func(k int) {
		if actor, ok := m.makeActor(aseq, k, loc.Upper, roots); ok {
			actors = append(actors, actor)
		}
	}

	if aseq[loc.Pos].Tok.IsOpen("NEC") {
		if loc.Upper { // reversed storage: members precede the open marker
			for ka := loc.Pos - 1; ; ka-- {
				if ka < 0 {
					return nil, model.Skip(model.TagSequenceBounds, "compound end not found")
				}
				if aseq[ka].Tok.IsClose("NEC") {
					break
				}
				if aseq[ka].Tok.IsOpen("NE") {
					add(ka)
				}
			}
		} else {
			for ka := loc.Pos + 1; ; ka++ {
				if ka >= len(aseq) {
					return nil, model.Skip(model.TagSequenceBounds, "compound end not found")
				}
				if aseq[ka].Tok.IsClose("NEC") {
					break
				}
				if aseq[ka].Tok.IsOpen("NE") {
					add(ka)
				}
			}
		}
	} else {
		add(loc.Pos)
	}

	if len(actors) == 0 { // all compound members may have null codes
		actors = []Actor{{Code: model.NullCode}}
	}
	return actors, nil
}

// makeActor builds the Actor for the entity at aseq[k]. ok is false when
// the entity is uncoded and new actor extraction is off.
func (m *Matcher) makeActor(aseq Sequence, k int, isUpper bool, roots map[int]string) (Actor, bool) {
	it := aseq[k]
	if it.Code != model.NullCode {
		actor := Actor{Code: it.Code}
		if m.output.WriteActorRoot {
			actor.Root = roots[it.Pos+1]
		}
		if m.output.WriteActorText {
			actor.Text = neText(aseq, k, isUpper)
		}
		return actor, true
	}
	if m.coding.NewActorLength == 0 {
		return Actor{}, false
	}
	phrase := neText(aseq, k, isUpper)
	actor := Actor{Code: model.NullCode}
	if strings.Count(phrase, " ") < m.coding.NewActorLength {
		actor.Code = `"` + phrase + `"`
	}
	if m.output.WriteActorRoot {
		actor.Root = model.NullCode
	}
	if m.output.WriteActorText {
		actor.Text = phrase
	}
	return actor, true
}

// neText returns the words of the entity whose open marker sits at aseq[k].
func neText(aseq Sequence, k int, isUpper bool) string {
	var words []string
	if isUpper {
		for ka := k - 1; ka >= 0 && aseq[ka].Tok.Kind == tree.Word; ka-- {
			words = append(words, aseq[ka].Tok.Text)
		}
	} else {
		for ka := k + 1; ka < len(aseq) && aseq[ka].Tok.Kind == tree.Word; ka++ {
			words = append(words, aseq[ka].Tok.Text)
		}
	}
	return strings.Join(words, " ")
}
