package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/tree"
)

const testActors = `GERMANY [DEU]
+GERMAN
AUSTRIA [AUT]
FRANCE [FRA]
RUSSIA
	[RUS >911225]
	[USR <911225]
`

const testAgents = `POLICE [~COP]
MINISTER [~GOV]
PARLIAMENTARY_OPPOSITION_GROUP [~OOP]
OPPOSITION_GROUP [~OPP]
`

func writeDict(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	actors, err := dict.LoadActors([]string{writeDict(t, dir, "actors.txt", testActors)}, nil)
	require.NoError(t, err)
	agents, err := dict.LoadAgents(writeDict(t, dir, "agents.txt", testAgents), nil)
	require.NoError(t, err)
	return New(&dict.Tables{Actors: actors, Agents: agents})
}

func normalized(t *testing.T, parse string) tree.Seq {
	t.Helper()
	seq, err := tree.Normalize(parse)
	require.NoError(t, err)
	return seq
}

// codes collects the text of every entity code slot in order
func codes(seq tree.Seq) []string {
	var out []string
	for i, tok := range seq {
		if tok.IsOpen("NE") {
			out = append(out, seq[i+1].Text)
		}
	}
	return out
}

func mustDate(t *testing.T, s string) int {
	t.Helper()
	ord, err := dict.OrdinalDate(s)
	require.NoError(t, err)
	return ord
}

func TestAssignSimpleActors(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (NNP GERMANY)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DEU", "FRA"}, codes(out))
}

func TestAssignUnknownActorKeepsNullCode(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (NNP ATLANTIS)) (VP (VBD SANK)) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{model.NullCode}, codes(out))
}

func TestAssignActorWithAgent(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (JJ GERMAN) (NN POLICE)) (VP (VBD CHARGED)) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DEUCOP"}, codes(out))
}

func TestAssignAgentWithoutActor(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (DT THE) (NN POLICE)) (VP (VBD CHARGED)) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"---COP"}, codes(out))
}

func TestAssignDateRestrictedCodes(t *testing.T) {
	r := testResolver(t)
	parse := `(ROOT (S (NP (NNP RUSSIA)) (VP (VBD PROTESTED)) (. .)))`

	out, _, err := r.Assign(normalized(t, parse), mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RUS"}, codes(out))

	out, _, err = r.Assign(normalized(t, parse), mustDate(t, "19890101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"USR"}, codes(out))
}

func TestAssignRootAnnotation(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (NNP GERMANY)) (VP (VBD PROTESTED)) (. .)))`)
	out, roots, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	for i, tok := range out {
		if tok.IsOpen("NE") {
			assert.Equal(t, "GERMANY", roots[i+1])
		}
	}
}

func TestAssignExpandsCompound(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (NNP GERMANY) (CC AND) (NNP AUSTRIA)) (VP (VBD ATTACKED) (NP (NNP FRANCE))) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DEU", "AUT", "FRA"}, codes(out))
	require.NoError(t, out.CheckBalance())
}

func TestAssignCompoundSharesAgent(t *testing.T) {
	r := testResolver(t)
	// "GERMAN AND AUSTRIAN POLICE" style sharing comes from the compound
	// members each receiving the surrounding words
	seq := normalized(t, `(ROOT (S (NP (NNP GERMANY) (CC AND) (NNP AUSTRIA)) (VP (VBD MOVED)) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DEU", "AUT"}, codes(out))
}

func TestAssignAgentAggregation(t *testing.T) {
	r := testResolver(t)
	seq := normalized(t, `(ROOT (S (NP (JJ PARLIAMENTARY) (NN OPPOSITION) (NN GROUP)) (VP (VBD MARCHED)) (. .)))`)
	out, _, err := r.Assign(seq, mustDate(t, "19950101"))
	require.NoError(t, err)
	// both the long and the short agent phrase match with distinct codes
	assert.Equal(t, []string{"---OOPOPP"}, codes(out))
}

func TestMemoizedLookups(t *testing.T) {
	r := testResolver(t)
	date := mustDate(t, "19950101")
	first := r.checkPhrase([]string{"GERMANY"}, date)
	second := r.checkPhrase([]string{"GERMANY"}, date)
	assert.Equal(t, first, second)
	assert.Equal(t, "DEU", first.Code)
}
