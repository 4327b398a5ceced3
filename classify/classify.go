// Package classify routes incoming messages by keyword. The single keyword
// table here is shared by the conversation store and the response pipeline.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/relay"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Table holds the keyword families used for routing. Keywords are matched
// case-insensitively. Keywords that begin and end with an ASCII letter or
// digit only match on word boundaries, so "sometimes" does not trigger
// "time"; all other keywords match as substrings.
type Table struct {
	Context  []string // asks about an earlier turn
	Summary  []string // asks for a recap of the conversation
	Tool     []string // needs a registered function
	Search   []string // needs live information
	First    []string // context intent: the earliest question
	Previous []string // context intent: the question before this one
}

// DefaultTable returns the English and Bengali keyword table, including
// common Bengali transliterations.
func DefaultTable() Table {
	return Table{
		Context: []string{
			"what did i ask", "what was my question", "what did i say",
			"first question", "last question", "previous question",
			"asked earlier", "asked before", "my previous",
			"আগে কি", "প্রথম প্রশ্ন", "আগের প্রশ্ন", "কি জিজ্ঞেস", "কি প্রশ্ন",
			"er aage", "prothom", "jiggesh", "jiggsh",
		},
		Summary: []string{
			"summarize", "summarise", "summary", "sum up", "recap",
			"our conversation", "our chat", "what did we talk", "what have we talked",
			"what did we discuss", "what have we discussed",
			"সামারি", "সারসংক্ষেপ", "আলোচনা", "কথাবার্তা",
		},
		Tool: []string{
			"time", "date", "weather", "temperature", "forecast",
			"সময়", "তারিখ", "আবহাওয়া", "তাপমাত্রা",
		},
		Search: []string{
			"latest", "recent", "current", "today", "now", "news", "update",
			"who is", "what is", "tell me about", "information about", "search", "look up",
			"সর্বশেষ", "সাম্প্রতিক", "বর্তমান", "আজ", "এখন", "সংবাদ", "তথ্য",
		},
		First:    []string{"first", "প্রথম", "prothom"},
		Previous: []string{"last", "previous", "earlier", "আগের", "aage"},
	}
}

// Classifier decides the route for a message.
type Classifier struct {
	table  Table
	tools  bool
	search bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTools enables or disables the tool route. Disabled tool keywords fall
// through to the search and plain routes.
func WithTools(enabled bool) Option {
	return func(c *Classifier) { c.tools = enabled }
}

// WithSearch enables or disables the search route.
func WithSearch(enabled bool) Option {
	return func(c *Classifier) { c.search = enabled }
}

// New returns a Classifier over table. Both generation routes are enabled
// unless an option turns them off.
func New(table Table, opts ...Option) *Classifier {
	c := &Classifier{table: foldTable(table), tools: true, search: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns a Classifier over DefaultTable.
func Default(opts ...Option) *Classifier {
	return New(DefaultTable(), opts...)
}

// Classify returns the route for msg. Summary queries win over context
// queries, both win over tool queries, and tool queries win over search
// queries.
func (c *Classifier) Classify(msg string) relay.Decision {
	s := fold(msg)
	switch {
	case matchAny(s, c.table.Summary):
		return relay.Decision{Route: relay.RouteSummary}
	case matchAny(s, c.table.Context):
		return relay.Decision{Route: relay.RouteContext, Intent: c.intent(s)}
	case c.tools && matchAny(s, c.table.Tool):
		return relay.Decision{Route: relay.RouteTool}
	case c.search && matchAny(s, c.table.Search):
		return relay.Decision{Route: relay.RouteSearch}
	default:
		return relay.Decision{Route: relay.RoutePlain}
	}
}

// Intent returns which earlier question a context query refers to.
func (c *Classifier) Intent(msg string) relay.Intent {
	return c.intent(fold(msg))
}

func (c *Classifier) intent(s string) relay.Intent {
	switch {
	case matchAny(s, c.table.First):
		return relay.IntentFirst
	case matchAny(s, c.table.Previous):
		return relay.IntentPrevious
	default:
		return relay.IntentNone
	}
}

func foldTable(t Table) Table {
	return Table{
		Context:  foldAll(t.Context),
		Summary:  foldAll(t.Summary),
		Tool:     foldAll(t.Tool),
		Search:   foldAll(t.Search),
		First:    foldAll(t.First),
		Previous: foldAll(t.Previous),
	}
}

func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = fold(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// fold normalizes s for matching. Bengali letters such as য় have both a
// precomposed and a decomposed spelling, so both sides go through NFC first.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(apostrophes.Replace(s)))
}

func matchAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if contains(s, k) {
			return true
		}
	}
	return false
}

func contains(s, keyword string) bool {
	if !bounded(keyword) {
		return strings.Contains(s, keyword)
	}
	for offset := 0; offset <= len(s)-len(keyword); {
		i := strings.Index(s[offset:], keyword)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(keyword)
		if isBoundary(s[:start], false) && isBoundary(s[end:], true) {
			return true
		}
		offset = start + 1
	}
	return false
}

func bounded(keyword string) bool {
	first, _ := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)
	return isASCIIWord(first) && isASCIIWord(last)
}

func isASCIIWord(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// isBoundary reports whether the rune adjacent to a match, taken from the
// start of rest when after is set and from its end otherwise, ends a word.
func isBoundary(rest string, after bool) bool {
	if rest == "" {
		return true
	}
	var r rune
	if after {
		r, _ = utf8.DecodeRuneInString(rest)
	} else {
		r, _ = utf8.DecodeLastRuneInString(rest)
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}
