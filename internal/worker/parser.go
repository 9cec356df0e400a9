package worker

import (
	"regexp"
	"strings"
)

// Parser extracts a subject name from raw trigger text. Two grammars are
// accepted: a "$SYMBOL" token anywhere in the mention, and the free-text
// "a Whop for my X" form. The symbol grammar wins when both match, so
// "a Whop for my $DOGE" parses to "DOGE".
type Parser struct {
	handle        string
	symbolPattern *regexp.Regexp
	phrasePattern *regexp.Regexp
}

func NewParser(handle string) *Parser {
	return &Parser{
		handle:        handle,
		symbolPattern: regexp.MustCompile(`\$([A-Za-z0-9]+)`),
		phrasePattern: regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(handle) + `\s+a Whop for my (.+)`),
	}
}

// Parse returns the extracted subject name. The second return is false when
// the text is not a provisioning request; that is a skip, not an error.
func (p *Parser) Parse(rawText string) (string, bool) {
	mention := "@" + strings.ToLower(p.handle)
	if !strings.Contains(strings.ToLower(rawText), mention) {
		return "", false
	}

	if m := p.symbolPattern.FindStringSubmatch(rawText); m != nil {
		return m[1], true
	}

	if m := p.phrasePattern.FindStringSubmatch(rawText); m != nil {
		subject := strings.TrimSpace(m[1])
		if subject != "" {
			return subject, true
		}
	}

	return "", false
}
