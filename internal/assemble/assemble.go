// Package assemble turns verb pattern matches into the final event triples
// for a sentence: compound and slash-delimited codes fan out into one event
// per actor pair, symmetric codes emit the reciprocal pair, passive voice
// swaps the participants, and the combined list is filtered and
// deduplicated.
package assemble

import (
	"strings"

	"github.com/statecraft/tricode/internal/match"
	"github.com/statecraft/tricode/internal/model"
)

type Assembler struct {
	coding model.CodingConfig
}

func New(coding model.CodingConfig) *Assembler {
	return &Assembler{coding: coding}
}

// Events builds the sentence's event list from its pattern matches.
func (a *Assembler) Events(matches []match.Match) []model.Event {
	var events []model.Event
	for _, mt := range matches {
		events = append(events, a.matchEvents(mt)...)
	}
	if a.coding.RequireDyad {
		events = dropNullDyads(events)
	}
	return dedupe(events)
}

func (a *Assembler) matchEvents(mt match.Match) []model.Event {
	src := expandSlashCodes(mt.Source)
	tar := expandSlashCodes(mt.Target)
	if len(src) == 0 || len(tar) == 0 {
		return nil
	}

	if fwd, rev, symmetric := strings.Cut(mt.Code, ":"); symmetric {
		// a null side of a symmetric event mirrors the coded side
		if tar[0].Code == model.NullCode {
			tar = src
		} else if src[0].Code == model.NullCode {
			src = tar
		}
		events := crossEvents(src, tar, fwd, mt.Passive)
		return append(events, crossEvents(tar, src, rev, mt.Passive)...)
	}
	return crossEvents(src, tar, mt.Code, mt.Passive)
}

// crossEvents pairs every source actor with every target actor, skipping
// self-references. Passive voice swaps each pair.
func crossEvents(src, tar []match.Actor, code string, passive bool) []model.Event {
	var events []model.Event
	for _, s := range src {
		for _, t := range tar {
			if s.Code == t.Code {
				continue
			}
			if passive {
				s, t = t, s
			}
			events = append(events, model.Event{
				Source:     s.Code,
				Target:     t.Code,
				Code:       code,
				SourceRoot: s.Root,
				TargetRoot: t.Root,
				SourceText: s.Text,
				TargetText: t.Text,
			})
			if passive {
				s, t = t, s // restore for the next pairing
			}
		}
	}
	return events
}

// expandSlashCodes fans out composite XXX/YYY codes into one actor per
// part, preserving order.
func expandSlashCodes(actors []match.Actor) []match.Actor {
	var out []match.Actor
	for _, actor := range actors {
		if !strings.Contains(actor.Code, "/") {
			out = append(out, actor)
			continue
		}
		for _, part := range strings.Split(actor.Code, "/") {
			expanded := actor
			expanded.Code = part
			out = append(out, expanded)
		}
	}
	return out
}

// dropNullDyads removes events with an unresolved side.
func dropNullDyads(events []model.Event) []model.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.Source != model.NullCode && ev.Target != model.NullCode {
			out = append(out, ev)
		}
	}
	return out
}

// dedupe removes exact duplicates, keeping first occurrences in order.
func dedupe(events []model.Event) []model.Event {
	var out []model.Event
	for _, ev := range events {
		dup := false
		for _, kept := range out {
			if ev == kept {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, ev)
		}
	}
	return out
}
