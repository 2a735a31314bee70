package model

import "fmt"

// Stable failure tags for sentence-scoped coding errors. These identify the
// irregular parse patterns tracked by validation runs.
const (
	TagBadInputParse   = "bad_input_parse"   // unbalanced bracket input
	TagBadFinalParse   = "bad_final_parse"   // token sequence unbalanced after normalization
	TagEmptyNounList   = "empty_nplist"      // noun phrase conversion produced nothing
	TagForwardBounds   = "get_forward_bounds"
	TagEnclosingBounds = "get_enclosing_bounds"
	TagCompoundResolve = "resolve_compounds"
	TagEntityExtract   = "get_ne_error"
	TagDateline        = "dateline"
	TagSequenceBounds  = "sequence_bounds" // walked past sentence start/end during coding
	TagBadClauseParse  = "bad_clause_parse"
)

// SkipSentence is the sentence-scoped failure result: the sentence is dropped
// with a warning and the batch continues. Tag is stable across runs so that
// validation records can assert on it.
type SkipSentence struct {
	Tag    string
	Detail string
}

func (e *SkipSentence) Error() string {
	if e.Detail == "" {
		return "sentence skipped: " + e.Tag
	}
	return fmt.Sprintf("sentence skipped: %s: %s", e.Tag, e.Detail)
}

// Skip builds a SkipSentence failure with a stable tag
func Skip(tag, detail string) *SkipSentence {
	return &SkipSentence{Tag: tag, Detail: detail}
}

func Skipf(tag, format string, a ...interface{}) *SkipSentence {
	return &SkipSentence{Tag: tag, Detail: fmt.Sprintf(format, a...)}
}
