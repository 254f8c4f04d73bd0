package outline

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/unicode/norm"
)

var (
	// A line starts in Root; once the leading numeral is consumed the lexer
	// switches to Label and swallows the rest of the line as one token.
	outlineLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Number", Pattern: `\d+(?:\.\d+)*`, Action: lexer.Push("Label")},
		},
		"Label": {
			{Name: "Text", Pattern: `[^\n]+`, Action: nil},
		},
	})

	lineParser = participle.MustBuild[entry](
		participle.Lexer(outlineLexer),
	)
)

// entry is the grammar of a single trimmed outline line.
type entry struct {
	Number string `parser:"@Number"`
	Label  Label  `parser:"@Text?"`
}

// Label trims surrounding whitespace on capture.
type Label string

// Capture implements participle.Capture.
func (l *Label) Capture(values []string) error {
	*l = Label(strings.TrimSpace(strings.Join(values, "")))
	return nil
}

// Item is one parsed outline entry.
type Item struct {
	Number string `json:"number"`
	Label  string `json:"label"`
	Level  int    `json:"level"`
}

// IsMain reports whether the item is a top-level entry.
func (it Item) IsMain() bool { return it.Level == 0 }

func (it Item) String() string {
	if it.Label == "" {
		return it.Number
	}
	return it.Number + " " + it.Label
}

// Skipped records a non-empty line that did not start with a numeral.
type Skipped struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Policy decides what happens to lines that fail to parse.
type Policy int

const (
	// PolicySilent drops malformed lines without a trace.
	PolicySilent Policy = iota
	// PolicyCollect drops malformed lines but reports them in Result.Skipped.
	PolicyCollect
)

func (p Policy) String() string {
	switch p {
	case PolicySilent:
		return "silent"
	case PolicyCollect:
		return "collect"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "silent":
		return PolicySilent, nil
	case "collect", "report":
		return PolicyCollect, nil
	default:
		return PolicySilent, fmt.Errorf("unknown malformed line policy %q", s)
	}
}

// Result holds parsed items in input order and, under PolicyCollect, the
// lines that were dropped.
type Result struct {
	Items   []Item
	Skipped []Skipped
}

// Parse splits text into lines and parses every non-blank one. It never fails:
// lines without a leading numeral are dropped according to policy.
func Parse(text string, policy Policy) *Result {
	res := &Result{Items: []Item{}}

	for i, raw := range strings.Split(norm.NFC.String(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		item, ok := ParseLine(line)
		if !ok {
			if policy == PolicyCollect {
				res.Skipped = append(res.Skipped, Skipped{Line: i + 1, Text: line})
			}
			continue
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// ParseItems is Parse with PolicySilent, returning only items.
func ParseItems(text string) []Item {
	return Parse(text, PolicySilent).Items
}

// ParseLine parses one already trimmed line.
func ParseLine(line string) (Item, bool) {
	e, err := lineParser.ParseString("", line)
	if err != nil {
		return Item{}, false
	}
	return Item{
		Number: e.Number,
		Label:  string(e.Label),
		Level:  strings.Count(e.Number, "."),
	}, true
}

// Counts returns the number of main and sub entries.
func Counts(items []Item) (main, sub int) {
	for _, it := range items {
		if it.IsMain() {
			main++
		} else {
			sub++
		}
	}
	return main, sub
}
