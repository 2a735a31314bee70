package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statecraft/tricode/internal/match"
	"github.com/statecraft/tricode/internal/model"
)

func actors(codes ...string) []match.Actor {
	out := make([]match.Actor, len(codes))
	for i, c := range codes {
		out[i] = match.Actor{Code: c}
	}
	return out
}

func triples(events []model.Event) [][3]string {
	var out [][3]string
	for _, ev := range events {
		out = append(out, [3]string{ev.Source, ev.Target, ev.Code})
	}
	return out
}

func TestEventsSingle(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU"), Target: actors("FRA"), Code: "122"},
	})
	assert.Equal(t, [][3]string{{"DEU", "FRA", "122"}}, triples(events))
}

func TestEventsCompoundFanOut(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU", "AUT"), Target: actors("FRA", "GBR"), Code: "122"},
	})
	assert.Equal(t, [][3]string{
		{"DEU", "FRA", "122"},
		{"DEU", "GBR", "122"},
		{"AUT", "FRA", "122"},
		{"AUT", "GBR", "122"},
	}, triples(events))
}

func TestEventsSkipsSelfReference(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU", "FRA"), Target: actors("FRA"), Code: "122"},
	})
	assert.Equal(t, [][3]string{{"DEU", "FRA", "122"}}, triples(events))
}

func TestEventsSlashExpansion(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU"), Target: actors("FRA/GBR"), Code: "040"},
	})
	assert.Equal(t, [][3]string{
		{"DEU", "FRA", "040"},
		{"DEU", "GBR", "040"},
	}, triples(events))
}

func TestEventsSlashExpansionKeepsAnnotations(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{{
		Source: actors("DEU"),
		Target: []match.Actor{{Code: "FRA/GBR", Root: "ALLIES", Text: "THE ALLIES"}},
		Code:   "040",
	}})
	assert.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, "ALLIES", ev.TargetRoot)
		assert.Equal(t, "THE ALLIES", ev.TargetText)
	}
}

func TestEventsSymmetric(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU"), Target: actors("FRA"), Code: "040:041"},
	})
	assert.Equal(t, [][3]string{
		{"DEU", "FRA", "040"},
		{"FRA", "DEU", "041"},
	}, triples(events))
}

func TestEventsSymmetricNullSideMirrorsCoded(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU", "AUT"), Target: actors(model.NullCode), Code: "040:040"},
	})
	// the uncoded target is replaced by the source list on both sides
	assert.Equal(t, [][3]string{
		{"DEU", "AUT", "040"},
		{"AUT", "DEU", "040"},
	}, triples(events))
}

func TestEventsPassiveSwaps(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("FRA"), Target: actors("DEU", "AUT"), Code: "122", Passive: true},
	})
	assert.Equal(t, [][3]string{
		{"DEU", "FRA", "122"},
		{"AUT", "FRA", "122"},
	}, triples(events))
}

func TestEventsRequireDyad(t *testing.T) {
	a := New(model.CodingConfig{RequireDyad: true})
	events := a.Events([]match.Match{
		{Source: actors(model.NullCode), Target: actors("FRA"), Code: "122"},
		{Source: actors("DEU"), Target: actors("FRA"), Code: "122"},
	})
	assert.Equal(t, [][3]string{{"DEU", "FRA", "122"}}, triples(events))
}

func TestEventsRequireDyadKeepsNewActors(t *testing.T) {
	a := New(model.CodingConfig{RequireDyad: true})
	events := a.Events([]match.Match{
		{Source: actors(`"REBELS"`), Target: actors("FRA"), Code: "122"},
	})
	assert.Equal(t, [][3]string{{`"REBELS"`, "FRA", "122"}}, triples(events))
}

func TestEventsDeduplicates(t *testing.T) {
	a := New(model.CodingConfig{})
	events := a.Events([]match.Match{
		{Source: actors("DEU"), Target: actors("FRA"), Code: "122"},
		{Source: actors("DEU"), Target: actors("FRA"), Code: "122"},
		{Source: actors("DEU"), Target: actors("FRA"), Code: "040"},
	})
	assert.Equal(t, [][3]string{
		{"DEU", "FRA", "122"},
		{"DEU", "FRA", "040"},
	}, triples(events))
}

func TestEventsEmpty(t *testing.T) {
	a := New(model.CodingConfig{})
	assert.Empty(t, a.Events(nil))
}
