// Package tree converts one sentence's bracketed constituency parse into
// the flat, indexed token sequence the coder operates on. Noun phrases are
// collapsed into entity (NE/NEC) spans, subordinate clauses are flattened,
// and close brackets are rewritten into label-matched close markers.
package tree

import (
	"fmt"
	"strings"
)

// Kind discriminates the token variants of a sequence.
type Kind uint8

const (
	Word  Kind = iota // a literal word
	Open              // phrase open marker, e.g. (NP2 (VBD (NE
	Close             // matching close marker, e.g. ~NP2 ~VBD ~NE
	Code              // the resolved-code slot following an NE open
)

// Token is one element of the flat sequence. Open and Close markers carry
// a syntactic label plus a disambiguating occurrence index for labels that
// can repeat as siblings (NP, VP, NEC). Code tokens hold the resolved
// actor code for the entity span they open.
type Token struct {
	Kind  Kind
	Label string
	Index int
	Text  string
}

func word(text string) Token  { return Token{Kind: Word, Text: text} }
func code(text string) Token  { return Token{Kind: Code, Text: text} }
func open(label string, index int) Token  { return Token{Kind: Open, Label: label, Index: index} }
func closeTok(label string, index int) Token { return Token{Kind: Close, Label: label, Index: index} }

// IsOpen reports whether the token opens a phrase with the given label.
func (t Token) IsOpen(label string) bool {
	return t.Kind == Open && t.Label == label
}

// IsClose reports whether the token closes a phrase with the given label.
func (t Token) IsClose(label string) bool {
	return t.Kind == Close && t.Label == label
}

// Closes reports whether the token is the close marker matching o.
func (t Token) Closes(o Token) bool {
	return t.Kind == Close && t.Label == o.Label && t.Index == o.Index
}

// OpensVerb reports whether the token opens any verb tag (VB, VBD, VBN...).
func (t Token) OpensVerb() bool {
	return t.Kind == Open && strings.HasPrefix(t.Label, "VB")
}

func (t Token) String() string {
	switch t.Kind {
	case Open:
		if t.Index > 0 {
			return fmt.Sprintf("(%s%d", t.Label, t.Index)
		}
		return "(" + t.Label
	case Close:
		if t.Index > 0 {
			return fmt.Sprintf("~%s%d", t.Label, t.Index)
		}
		return "~" + t.Label
	default:
		return t.Text
	}
}

// Seq is the token sequence for one sentence. Index 0 and 1 are the
// (ROOT (S opens; coding starts at Start.
type Seq []Token

// Start is the first token position considered during coding, skipping the
// (ROOT (S prefix.
const Start = 2

func (s Seq) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// FindClose returns the position of the close marker matching the open
// token at from, or -1 if the sequence is unbalanced there.
func (s Seq) FindClose(from int) int {
	o := s[from]
	for ka := from + 1; ka < len(s); ka++ {
		if s[ka].Closes(o) {
			return ka
		}
	}
	return -1
}

// CheckBalance verifies that every open marker has exactly one matching
// close marker with well-formed nesting.
func (s Seq) CheckBalance() error {
	var stack []Token
	for _, t := range s {
		switch t.Kind {
		case Open:
			stack = append(stack, t)
		case Close:
			if len(stack) == 0 || !t.Closes(stack[len(stack)-1]) {
				return fmt.Errorf("unbalanced sequence at %s", t.String())
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%d unclosed phrases at end of sequence", len(stack))
	}
	return nil
}

// CountWords counts the literal words between lo and hi-1, skipping entity
// code slots and markup.
func (s Seq) CountWords(lo, hi int) int {
	count := 0
	ka := lo
	for ka < hi && ka < len(s) {
		if s[ka].Kind == Open && s[ka].Label == "NE" {
			ka += 2 // skip the code slot
			continue
		}
		if s[ka].Kind == Word && len(s[ka].Text) > 0 && isAlpha(s[ka].Text[0]) {
			count++
		}
		ka++
	}
	return count
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
