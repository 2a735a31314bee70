package dict

import "strings"

// NounPlural derives the regular plural of a noun or noun phrase: trailing
// Y becomes IES, trailing S becomes ES, anything else takes S. Irregular
// plurals bypass this via the {PLURAL} override in the dictionary.
func NounPlural(s string) string {
	switch {
	case strings.HasSuffix(s, "Y"):
		return s[:len(s)-1] + "IES"
	case strings.HasSuffix(s, "S"):
		return s + "ES"
	default:
		return s + "S"
	}
}

// VerbForms derives the regular inflections of a verb root: third-person
// singular, past tense, and present participle. Roots ending in E take D
// and drop the E before ING. Irregular verbs bypass this via {...} lists.
func VerbForms(root string) []string {
	forms := []string{root + "S"}
	if strings.HasSuffix(root, "E") {
		forms = append(forms, root+"D", root[:len(root)-1]+"ING")
	} else {
		forms = append(forms, root+"ED", root+"ING")
	}
	return forms
}

// nounPart is one word of a noun phrase pattern together with the connector
// that binds it to the next word: '_' requires adjacency, ' ' allows gaps.
type nounPart struct {
	word      string
	connector byte
}

// splitNounPhrase breaks an actor or agent phrase on ' ' and '_' into its
// word/connector sequence. The connector attached to each word governs the
// transition to the following word.
func splitNounPhrase(phrase string) []nounPart {
	var parts []nounPart
	start := 0
	for start < len(phrase) {
		sp := strings.IndexByte(phrase[start:], ' ')
		un := strings.IndexByte(phrase[start:], '_')
		if sp < 0 {
			sp = len(phrase) - start
		}
		if un < 0 {
			un = len(phrase) - start
		}
		if un < sp {
			parts = append(parts, nounPart{phrase[start : start+un], '_'})
			start += un + 1
		} else {
			parts = append(parts, nounPart{phrase[start : start+sp], ' '})
			start += sp + 1
		}
	}
	return parts
}

// matchNounPattern tests whether the pattern continues to match frag, whose
// first word already matched the table key. connector is the connector
// following the key word. A '_' connector demands the next pattern word be
// immediately adjacent; a ' ' connector allows intervening words.
func matchNounPattern(connector byte, words []nounPart, frag []string) bool {
	if len(words) == 0 {
		return true // the key word alone is a sufficient match
	}
	kfrag := 1
	kpat := 0
	if kfrag >= len(frag) {
		return false
	}
	for kpat < len(words) {
		if frag[kfrag] == words[kpat].word {
			connector = words[kpat].connector
			kfrag++
			kpat++
			if kpat >= len(words) {
				return true
			}
		} else {
			if connector == '_' {
				return false
			}
			kfrag++
		}
		if kfrag >= len(frag) {
			return false
		}
	}
	return true
}
