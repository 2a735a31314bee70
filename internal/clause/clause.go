// Package clause removes comma-delimited clauses from a token sequence
// before event extraction. Subordinate clauses set off by commas rarely
// carry the event and frequently confuse source and target assignment, so
// short ones are cut out wholesale.
package clause

import (
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

// Filter applies comma clause elimination with configured word-count
// thresholds. Order matters: initial once, terminal once, then internal
// iterated left to right. A zero Max disables a pass.
type Filter struct {
	cfg model.ClauseConfig
}

func New(cfg model.ClauseConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply returns the sequence with qualifying comma clauses removed. When a
// deletion leaves the tree unbalanced the sentence cannot be coded and a
// tagged skip is returned.
func (f *Filter) Apply(seq tree.Seq) (tree.Seq, error) {
	if nextComma(seq, 0) < 0 {
		return seq, nil
	}

	if f.cfg.InitialMax != 0 {
		kb := nextComma(seq, 0)
		count := seq.CountWords(tree.Start, kb)
		if count >= f.cfg.InitialMin && count <= f.cfg.InitialMax {
			// leave the comma in place so an internal pass can catch it
			seq = deletePhrases(seq, tree.Start, kb)
		}
	}

	if f.cfg.TerminalMax != 0 {
		kend := findEnd(seq)
		if ka := prevComma(seq, kend-1); ka >= 0 {
			count := seq.CountWords(ka, len(seq))
			if count >= f.cfg.TerminalMin && count <= f.cfg.TerminalMax {
				seq = deletePhrases(seq, ka+3, kend)
			}
		}
	}

	if f.cfg.InternalMax != 0 {
		ka := nextComma(seq, 0)
		for ka >= 0 {
			kb := nextComma(seq, ka+1)
			if kb < 0 {
				break
			}
			count := seq.CountWords(ka+2, kb)
			if count >= f.cfg.InternalMin && count <= f.cfg.InternalMax {
				before := len(seq)
				// leave the second comma in place
				seq = deletePhrases(seq, ka, kb)
				kb -= before - len(seq)
			}
			ka = kb
		}
	}

	seq = trimDangling(seq)

	if err := seq.CheckBalance(); err != nil {
		return nil, model.Skip(model.TagBadClauseParse, err.Error())
	}
	return seq, nil
}

// trimDangling removes a leading or trailing comma triple left behind once
// the clause around it is gone.
func trimDangling(seq tree.Seq) tree.Seq {
	if ka := nextComma(seq, 0); ka >= 0 && seq.CountWords(tree.Start, ka) == 0 {
		seq = cut(seq, ka, ka+3)
	}
	kend := findEnd(seq)
	if ka := prevComma(seq, kend-1); ka >= 0 && seq.CountWords(ka+1, kend) == 0 {
		seq = cut(seq, ka, ka+3)
	}
	return seq
}

// deletePhrases removes every complete phrase between loclow and lochigh,
// leaving unmatched markup in place. The scan runs in reverse so that a
// close marker is always seen before its open.
func deletePhrases(seq tree.Seq, loclow, lochigh int) tree.Seq {
	var stack []tree.Token
	ka := lochigh - 1
	for ka >= loclow {
		t := seq[ka]
		switch {
		case t.Kind == tree.Close:
			stack = append(stack, t)
		case len(stack) > 0 && t.Kind == tree.Open && stack[len(stack)-1].Closes(t):
			end := ka + 1
			for end < len(seq) && !seq[end].Closes(t) {
				end++
			}
			if end < len(seq) {
				seq = cut(seq, ka, end+1)
				stack = stack[:len(stack)-1]
			}
		}
		ka--
	}
	return seq
}

func cut(seq tree.Seq, lo, hi int) tree.Seq {
	out := make(tree.Seq, 0, len(seq)-(hi-lo))
	out = append(out, seq[:lo]...)
	return append(out, seq[hi:]...)
}

// nextComma returns the index of the first comma open at or after from.
func nextComma(seq tree.Seq, from int) int {
	for ka := from; ka < len(seq); ka++ {
		if seq[ka].IsOpen(",") {
			return ka
		}
	}
	return -1
}

// prevComma returns the index of the last comma open at or before from.
func prevComma(seq tree.Seq, from int) int {
	for ka := from; ka >= tree.Start; ka-- {
		if ka < len(seq) && seq[ka].IsOpen(",") {
			return ka
		}
	}
	return -1
}

// findEnd returns the position just before the sentence-final punctuation
// phrase, skipping the run of close markers at the end of the sequence.
func findEnd(seq tree.Seq) int {
	ka := len(seq) - 1
	for ka >= tree.Start && seq[ka].Kind == tree.Close {
		ka--
	}
	return ka - 1
}
