package expense

import (
	"regexp"
	"strings"
	"time"
)

const (
	commandPrefix = "/"
	typeSeparator = "->"
)

var (
	amountPattern     = regexp.MustCompile(`\d+[.,]?\d*`)
	individualPattern = regexp.MustCompile(`(?i)individual|pessoal|solo`)
	sharedPattern     = regexp.MustCompile(`(?i)compart|shared`)
)

// Draft is a parsed chat message. ID, date and source are filled in by
// Expense when the draft is accepted.
type Draft struct {
	Description string
	Category    string
	Amount      float64
	Type        Type
}

// Expense completes the draft into a telegram sourced record.
func (d Draft) Expense(id string, now time.Time) *Expense {
	return &Expense{
		ID:          id,
		Description: d.Description,
		Category:    d.Category,
		Amount:      d.Amount,
		Type:        d.Type,
		Date:        FormatDate(now),
		Source:      SourceTelegram,
	}
}

// ParseResult is either a matched draft or NoMatch.
type ParseResult struct {
	Draft   Draft
	Matched bool
}

var NoMatch = ParseResult{}

func matched(d Draft) ParseResult {
	return ParseResult{Draft: d, Matched: true}
}

// ParseMessage reads "<amount> <description> -> <type>" from free chat text.
// The amount is the first numeric run of the text before the arrow; the
// optional clause after the arrow selects shared or individual.
func ParseMessage(text string) ParseResult {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" || strings.HasPrefix(cleaned, commandPrefix) {
		return NoMatch
	}

	parts := strings.SplitN(cleaned, typeSeparator, 2)
	clause := strings.TrimSpace(parts[0])
	hint := ""
	if len(parts) > 1 {
		hint = strings.TrimSpace(parts[1])
	}

	loc := amountPattern.FindStringIndex(clause)
	if loc == nil {
		return NoMatch
	}

	amount, err := NormalizeAmount(clause[loc[0]:loc[1]])
	if err != nil {
		return NoMatch
	}

	description := strings.TrimSpace(clause[:loc[0]] + clause[loc[1]:])
	if description == "" {
		description = DefaultBotDescription
	}

	return matched(Draft{
		Description: description,
		Category:    CategoryBot,
		Amount:      amount,
		Type:        ClassifyType(hint),
	})
}

// ClassifyType maps a free text hint to an expense type. Anything that is
// not recognisably individual is shared.
func ClassifyType(hint string) Type {
	switch {
	case individualPattern.MatchString(hint):
		return TypeIndividual
	case sharedPattern.MatchString(hint):
		return TypeShared
	default:
		return TypeShared
	}
}

// IsCommand reports whether text is a bot command rather than an expense.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), commandPrefix)
}
