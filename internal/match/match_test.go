package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/resolve"
	"github.com/statecraft/tricode/internal/tree"
)

const testActors = `GERMANY [DEU]
+GERMAN
AUSTRIA [AUT]
FRANCE [FRA]
+FRENCH
`

const testAgents = `POLICE [~COP]
`

const testVerbs = `&CURRENCY_
+DOLLARS
+EUROS

--- ATTACK [122] ---
ATTACK
+CRACK_DOWN [112]
- * NEAR + [---]

--- MEET [040] ---
MEET {MET MEETING}
- * WITH + [043]

--- CONSULT [040:040] ---
CONSULT {CONSULTED CONSULTING}

--- DEMAND [102] ---
DEMAND
- * &CURRENCY [103]
`

type harness struct {
	tables  *dict.Tables
	resolve *resolve.Resolver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	tables, err := dict.Load(model.DictConfig{
		VerbFile:   write("verbs.txt", testVerbs),
		ActorFiles: []string{write("actors.txt", testActors)},
		AgentFile:  write("agents.txt", testAgents),
	}, nil)
	require.NoError(t, err)
	return &harness{tables: tables, resolve: resolve.New(tables)}
}

func (h *harness) findEvents(t *testing.T, parse string, coding model.CodingConfig) []Match {
	t.Helper()
	seq, err := tree.Normalize(parse)
	require.NoError(t, err)
	date, err := dict.OrdinalDate("19950101")
	require.NoError(t, err)
	seq, roots, err := h.resolve.Assign(seq, date)
	require.NoError(t, err)
	matches, err := New(h.tables.Verbs, coding, model.OutputConfig{}).FindEvents(seq, roots)
	require.NoError(t, err)
	return matches
}

func singleCodes(t *testing.T, mt Match) (src, tar string) {
	t.Helper()
	require.Len(t, mt.Source, 1)
	require.Len(t, mt.Target, 1)
	return mt.Source[0].Code, mt.Target[0].Code
}

func TestFindEventsVerbCode(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	src, tar := singleCodes(t, matches[0])
	assert.Equal(t, "DEU", src)
	assert.Equal(t, "FRA", tar)
	assert.Equal(t, "122", matches[0].Code)
	assert.False(t, matches[0].Passive)
}

func TestFindEventsUnknownVerb(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD PONDERED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{})
	assert.Empty(t, matches)
}

func TestFindEventsPatternCode(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD MET) (PP (IN WITH) (NP (NNP FRANCE)))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	src, tar := singleCodes(t, matches[0])
	assert.Equal(t, "DEU", src)
	assert.Equal(t, "FRA", tar)
	// the WITH pattern refines the primary verb code
	assert.Equal(t, "043", matches[0].Code)
}

func TestFindEventsSynsetPattern(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD DEMANDED) (NP (NNS DOLLARS))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	assert.Equal(t, "103", matches[0].Code)
	assert.Equal(t, "DEU", matches[0].Source[0].Code)
	assert.Equal(t, model.NullCode, matches[0].Target[0].Code)
}

func TestFindEventsNullPatternKeepsLocations(t *testing.T) {
	h := newHarness(t)
	// the NEAR pattern carries the null code, so coding falls back to the
	// verb default, keeping the target the pattern assigned
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE)) (PP (IN NEAR) (NP (NNP AUSTRIA)))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	src, tar := singleCodes(t, matches[0])
	assert.Equal(t, "DEU", src)
	assert.Equal(t, "AUT", tar)
	assert.Equal(t, "122", matches[0].Code)
}

func TestFindEventsMultiWordVerb(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBP CRACK) (PRT (RP DOWN)) (PP (IN ON) (NP (NNP FRANCE)))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	src, tar := singleCodes(t, matches[0])
	assert.Equal(t, "DEU", src)
	assert.Equal(t, "FRA", tar)
	assert.Equal(t, "112", matches[0].Code)
}

func TestFindEventsPassive(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP FRANCE)) (VP (VBD WAS) (VP (VBN ATTACKED) (PP (IN BY) (NP (NNP GERMANY))))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	require.True(t, matches[0].Passive)
	// locations follow the text; the swap happens during assembly
	assert.Equal(t, "FRA", matches[0].Source[0].Code)
	assert.Equal(t, "DEU", matches[0].Target[0].Code)
	assert.Equal(t, "122", matches[0].Code)
}

func TestFindEventsCompoundSource(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY) (CC AND) (NNP AUSTRIA)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	var srcs []string
	for _, a := range matches[0].Source {
		srcs = append(srcs, a.Code)
	}
	assert.Equal(t, []string{"DEU", "AUT"}, srcs)
	assert.Equal(t, "FRA", matches[0].Target[0].Code)
}

func TestFindEventsTargetMustDifferFromSource(t *testing.T) {
	h := newHarness(t)
	// DEUCOP extends DEU, so it cannot serve as the target of DEU
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (JJ GERMAN) (NN POLICE))) (. .)))`,
		model.CodingConfig{})
	assert.Empty(t, matches)

	matches = h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (JJ FRENCH) (NN POLICE))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	assert.Equal(t, "FRACOP", matches[0].Target[0].Code)
}

func TestFindEventsUncodedSourceFallback(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP ATLANTIS)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	assert.Equal(t, model.NullCode, matches[0].Source[0].Code)
}

func TestFindEventsNewActorExtraction(t *testing.T) {
	h := newHarness(t)
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP ATLANTIS)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{NewActorLength: 4})
	require.Len(t, matches, 1)
	assert.Equal(t, `"ATLANTIS"`, matches[0].Source[0].Code)
}

func TestCheckPassiveRequiresAuxiliaryAndBy(t *testing.T) {
	h := newHarness(t)
	// no BY phrase: plain past tense with an auxiliary-free VBN is not passive
	matches := h.findEvents(t,
		`(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`,
		model.CodingConfig{})
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Passive)
}
