package model

// NullCode marks an unresolved actor or a pattern with no event code.
const NullCode = "---"

// Event is one coded triple for a sentence
type Event struct {
	Source string `json:"source"` // source actor code
	Target string `json:"target"` // target actor code
	Code   string `json:"code"`   // event code

	SourceRoot string `json:"source_root,omitempty"` // root actor phrase, if configured
	TargetRoot string `json:"target_root,omitempty"`
	SourceText string `json:"source_text,omitempty"` // matched entity text, if configured
	TargetText string `json:"target_text,omitempty"`
}

// Issue is an issue code with its occurrence count in a sentence
type Issue struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Sentence is one input sentence with its metadata and parse
type Sentence struct {
	ID    string `yaml:"id" json:"id"`
	Text  string `yaml:"text" json:"text"`
	Parse string `yaml:"parse" json:"parse"` // bracketed constituency tree
}

// Story is a group of sentences sharing a date and source
type Story struct {
	ID        string     `yaml:"id" json:"id"`
	Date      string     `yaml:"date" json:"date"` // YYYYMMDD or YYMMDD
	Source    string     `yaml:"source" json:"source"`
	Sentences []Sentence `yaml:"sentences" json:"sentences"`
}

// SentenceResult holds the coding outcome for one sentence
type SentenceResult struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Events []Event `json:"events,omitempty"`
	Issues []Issue `json:"issues,omitempty"`
	Skip   string  `json:"skip,omitempty"` // failure tag if the sentence was skipped
}

// Summary reports batch coding counts
type Summary struct {
	Stories       int `json:"stories"`
	Sentences     int `json:"sentences"`
	Events        int `json:"events"`
	DiscardSent   int `json:"discards_sentence"`
	DiscardStory  int `json:"discards_story"`
	EmptySentence int `json:"sentences_without_events"`
}
