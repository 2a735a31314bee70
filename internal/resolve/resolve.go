// Package resolve assigns actor codes to the entity spans of a token
// sequence. Each NE span gets the code of the first matching actor in its
// phrase, composited with the codes of every matching agent; compound NEC
// spans are expanded into individual NE spans first so each member is coded
// on its own.
package resolve

import (
	"strings"
	"time"

	"github.com/statecraft/tricode/internal/cache"
	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

// expansion depth guard; compounds nest two levels in practice
const maxExpansions = 16

// Resolver codes entity phrases against the actor and agent dictionaries.
// Phrase lookups are memoized since news stories repeat the same entities
// sentence after sentence.
type Resolver struct {
	actors *dict.ActorTable
	agents *dict.AgentTable
	memo   *cache.PhraseCache
}

func New(tables *dict.Tables) *Resolver {
	return &Resolver{
		actors: tables.Actors,
		agents: tables.Agents,
		memo:   cache.NewPhraseCache(time.Hour, 2*time.Hour),
	}
}

// Assign walks the sequence, expands compound entities and writes composite
// codes into the code slot of every NE span that matches the dictionaries.
// The returned map carries the root actor phrase per code slot position.
func (r *Resolver) Assign(seq tree.Seq, orddate int) (tree.Seq, map[int]string, error) {
	roots := make(map[int]string)
	expansions := 0

	kitem := tree.Start
	for kitem < len(seq) {
		if !seq[kitem].IsOpen("NE") {
			kitem++
			continue
		}
		kstart := kitem
		kend := seq.FindClose(kstart)
		if kend < 0 {
			return nil, nil, model.Skip(model.TagSequenceBounds, "unclosed NE span")
		}

		if containsOpen(seq[kstart+1:kend], "NEC") {
			if expansions++; expansions > maxExpansions {
				return nil, nil, model.Skip(model.TagCompoundResolve, "compound expansion did not converge")
			}
			var err error
			seq, err = r.expandCompound(seq, kstart, kend)
			if err != nil {
				return nil, nil, err
			}
			// reprocess the elements following the expansion
			continue
		}

		var words []string
		for _, tok := range seq[kstart+2 : kend] {
			if tok.Kind == tree.Word {
				words = append(words, tok.Text)
			}
		}
		if pc := r.checkPhrase(words, orddate); pc.Found {
			seq[kstart+1].Text = pc.Code
			if pc.Root != "" {
				roots[kstart+1] = pc.Root
			}
		}
		kitem = kend + 1
	}
	return seq, roots, nil
}

// expandCompound replaces the NE span holding a compound with a bare NEC
// span whose members are individual NE spans. The words before and after
// the compound are duplicated onto every member. Members that themselves
// hold a nested compound are expanded in place.
func (r *Resolver) expandCompound(seq tree.Seq, kstart, kend int) (tree.Seq, error) {
	ncstart := indexOpen(seq, "NEC", kstart, kend)
	if ncstart < 0 {
		return nil, model.Skip(model.TagCompoundResolve, "compound marker not found")
	}
	ncend := seq.FindClose(ncstart)
	if ncend < 0 || ncend > kend {
		return nil, model.Skip(model.TagCompoundResolve, "unclosed compound span")
	}

	prelist := seq[kstart+2 : ncstart]
	postlist := seq[ncend+1 : kend]

	newlist := tree.Seq{seq[ncstart]}
	members, err := expandMembers(seq, ncstart, ncend, prelist, postlist)
	if err != nil {
		return nil, err
	}
	newlist = append(newlist, members...)
	newlist = append(newlist, closeFor(seq[ncstart]))

	out := make(tree.Seq, 0, len(seq)+len(newlist))
	out = append(out, seq[:kstart]...)
	out = append(out, newlist...)
	tail := kstart + len(newlist)
	out = append(out, seq[kend+1:]...)

	// expand nested compounds inside the new members
	ka := kstart + 1
	for ka < tail {
		if !out[ka].IsOpen("NE") {
			ka++
			continue
		}
		neend := out.FindClose(ka)
		if neend < 0 {
			return nil, model.Skip(model.TagCompoundResolve, "unclosed member span")
		}
		if containsOpen(out[ka+1:neend], "NEC") {
			before := len(out)
			out, err = r.expandElement(out, ka, neend)
			if err != nil {
				return nil, err
			}
			tail += len(out) - before
		} else {
			ka = neend + 1
		}
	}
	return out, nil
}

// expandElement expands one NE member of an already established NEC: the
// member is replaced inline by the expansion of its nested compound, with
// no additional NEC wrapper.
func (r *Resolver) expandElement(seq tree.Seq, kstart, kend int) (tree.Seq, error) {
	ncstart := indexOpen(seq, "NEC", kstart, kend)
	if ncstart < 0 {
		return nil, model.Skip(model.TagCompoundResolve, "nested compound marker not found")
	}
	ncend := seq.FindClose(ncstart)
	if ncend < 0 || ncend > kend {
		return nil, model.Skip(model.TagCompoundResolve, "unclosed nested compound span")
	}

	newlist, err := expandMembers(seq, ncstart, ncend, seq[kstart+2:ncstart], seq[ncend+1:kend])
	if err != nil {
		return nil, err
	}

	out := make(tree.Seq, 0, len(seq)+len(newlist))
	out = append(out, seq[:kstart]...)
	out = append(out, newlist...)
	return append(out, seq[kend+1:]...), nil
}

// expandMembers builds an NE span per noun member of the compound,
// duplicating prelist and postlist onto each.
func expandMembers(seq tree.Seq, ncstart, ncend int, prelist, postlist tree.Seq) (tree.Seq, error) {
	var newlist tree.Seq
	ka := ncstart + 1
	for ka < ncend {
		t := seq[ka]
		if t.Kind == tree.Open && strings.HasPrefix(t.Label, "N") {
			member := tree.Seq{tree.Token{Kind: tree.Open, Label: "NE"},
				tree.Token{Kind: tree.Code, Text: model.NullCode}}
			member = append(member, prelist...)
			ka++
			for ka < ncend && !seq[ka].Closes(t) {
				member = append(member, seq[ka])
				ka++
			}
			if ka >= ncend {
				return nil, model.Skip(model.TagCompoundResolve, "unclosed compound member")
			}
			member = append(member, postlist...)
			member = append(member, tree.Token{Kind: tree.Close, Label: "NE"})
			newlist = append(newlist, member...)
		}
		ka++
	}
	if newlist == nil {
		return nil, model.Skip(model.TagCompoundResolve, "compound with no members")
	}
	return newlist, nil
}

// checkPhrase codes one entity phrase: the first actor match anchors the
// code, then every distinct agent code is composited on in scan order.
// Composites are compared in three character blocks, the dictionary code
// convention, and a duplicate block ends agent collection.
func (r *Resolver) checkPhrase(words []string, orddate int) cache.Entry {
	if len(words) == 0 {
		return cache.Entry{}
	}
	key := cache.Key(words, orddate)
	if hit, ok := r.memo.Get(key); ok {
		return hit
	}
	pc := r.codePhrase(words, orddate)
	r.memo.Set(key, pc)
	return pc
}

func (r *Resolver) codePhrase(words []string, orddate int) cache.Entry {
	var actorcode, actorroot string
	if idx, found := r.actors.FirstMatch(words); found {
		actorcode, actorroot = r.actors.Resolve(idx, orddate)
	}

	agents := r.agents.AllMatches(words)
	if len(agents) == 0 {
		if actorcode == "" {
			return cache.Entry{}
		}
		return cache.Entry{Code: actorcode, Root: actorroot, Found: true}
	}
	if actorcode == "" {
		actorcode = model.NullCode // unassigned agent
	}

	for _, agent := range agents {
		if hasCodeBlock(actorcode, agent.Code) {
			break
		}
		if agent.Append {
			actorcode += agent.Code
		} else {
			actorcode = agent.Code + actorcode
		}
	}
	return cache.Entry{Code: actorcode, Root: actorroot, Found: true}
}

// hasCodeBlock reports whether code already contains agc aligned on a
// three character block boundary.
func hasCodeBlock(code, agc string) bool {
	for ka := 0; ka+len(agc) <= len(code); ka += 3 {
		if code[ka:ka+len(agc)] == agc {
			return true
		}
	}
	return false
}

func containsOpen(seq tree.Seq, label string) bool {
	for _, t := range seq {
		if t.IsOpen(label) {
			return true
		}
	}
	return false
}

func indexOpen(seq tree.Seq, label string, from, to int) int {
	for ka := from; ka < to && ka < len(seq); ka++ {
		if seq[ka].IsOpen(label) {
			return ka
		}
	}
	return -1
}

func closeFor(t tree.Token) tree.Token {
	return tree.Token{Kind: tree.Close, Label: t.Label, Index: t.Index}
}
