package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

func parseSeq(t *testing.T, parse string) tree.Seq {
	t.Helper()
	seq, err := tree.Normalize(parse)
	require.NoError(t, err)
	return seq
}

func sentenceWords(seq tree.Seq) []string {
	var words []string
	for _, tok := range seq {
		if tok.Kind == tree.Word && tok.Text[0] >= 'A' && tok.Text[0] <= 'Z' {
			words = append(words, tok.Text)
		}
	}
	return words
}

func TestApplyNoCommas(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(model.DefaultConfig().Clauses).Apply(seq)
	require.NoError(t, err)
	assert.Equal(t, seq, out)
}

// internalOnly disables the terminal pass, which would otherwise also fire
// on the short tails of these sentences.
func internalOnly() model.ClauseConfig {
	cfg := model.DefaultConfig().Clauses
	cfg.TerminalMax = 0
	return cfg
}

func TestApplyInternalClause(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (, ,) (PP (IN UNDER) (NP (NN PRESSURE))) (, ,) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(internalOnly()).Apply(seq)
	require.NoError(t, err)
	require.NoError(t, out.CheckBalance())
	assert.Equal(t, []string{"GERMANY", "ATTACKED", "FRANCE"}, sentenceWords(out))
}

func TestApplyInternalClauseTooShort(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (, ,) (ADVP (RB HOWEVER)) (, ,) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(internalOnly()).Apply(seq)
	require.NoError(t, err)
	assert.Equal(t, []string{"GERMANY", "HOWEVER", "ATTACKED", "FRANCE"}, sentenceWords(out))
}

func TestApplyTerminalDeletesTail(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (, ,) (PP (IN UNDER) (NP (NN PRESSURE))) (, ,) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(model.DefaultConfig().Clauses).Apply(seq)
	require.NoError(t, err)
	require.NoError(t, out.CheckBalance())
	// the last comma also starts a short terminal clause, which is removed
	assert.NotContains(t, sentenceWords(out), "ATTACKED")
}

func TestApplyTerminalClause(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (, ,) (PP (VBG ACCORDING) (TO TO) (NP (NNS OFFICIALS))) (. .)))`)
	out, err := New(model.DefaultConfig().Clauses).Apply(seq)
	require.NoError(t, err)
	require.NoError(t, out.CheckBalance())
	assert.Equal(t, []string{"GERMANY", "ATTACKED", "FRANCE"}, sentenceWords(out))
}

func TestApplyInitialClauseOffByDefault(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (ADVP (RB RECENTLY)) (, ,) (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(model.DefaultConfig().Clauses).Apply(seq)
	require.NoError(t, err)
	assert.Contains(t, sentenceWords(out), "RECENTLY")
}

func TestApplyInitialClause(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (ADVP (RB RECENTLY)) (, ,) (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	cfg := model.ClauseConfig{InitialMin: 1, InitialMax: 8}
	out, err := New(cfg).Apply(seq)
	require.NoError(t, err)
	require.NoError(t, out.CheckBalance())
	assert.Equal(t, []string{"GERMANY", "ATTACKED", "FRANCE"}, sentenceWords(out))
}

func TestApplyPassesDisabled(t *testing.T) {
	seq := parseSeq(t, `(ROOT (S (NP (NNP GERMANY)) (, ,) (PP (IN UNDER) (NP (NN PRESSURE))) (, ,) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, err := New(model.ClauseConfig{}).Apply(seq)
	require.NoError(t, err)
	assert.Contains(t, sentenceWords(out), "PRESSURE")
}
