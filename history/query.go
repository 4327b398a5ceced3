package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/relay"
	"go.uber.org/zap"
)

// summaryPreview is how much transcript the local summary fallback quotes.
const summaryPreview = 200

type phrases struct {
	first, previous, asked string // take the quoted question
	onlyOne, none          string
	summary                string // takes a transcript excerpt
}

var replies = map[relay.Language]phrases{
	relay.LanguageEnglish: {
		first:    "Your first question was: %q",
		previous: "Your previous question was: %q",
		asked:    "You asked: %q",
		onlyOne:  "This is your first message in our conversation.",
		none:     "I don't have any previous questions in our conversation.",
		summary:  "Our conversation summary: %s...",
	},
	relay.LanguageBengali: {
		first:    "আপনার প্রথম প্রশ্ন ছিল: %q",
		previous: "আপনার আগের প্রশ্ন ছিল: %q",
		asked:    "আপনি জিজ্ঞেস করেছিলেন: %q",
		onlyOne:  "এটি আমাদের কথোপকথনে আপনার প্রথম বার্তা।",
		none:     "আমাদের কথোপকথনে আগের কোনো প্রশ্ন নেই।",
		summary:  "আমাদের কথোপকথনের মূল বিষয়গুলি: %s...",
	},
}

func (s *Store) phrases(msg string) phrases {
	if p, ok := replies[s.detector.Detect(msg)]; ok {
		return p
	}
	return replies[relay.LanguageEnglish]
}

// HandleContextQuery answers msg from the window when it asks about an
// earlier question or for a summary. It reports false when msg is not such
// a query, or when a summary is requested of an empty conversation. msg is
// expected to be recorded already as the newest user turn.
func (s *Store) HandleContextQuery(ctx context.Context, msg string) (string, bool) {
	d := s.classifier.Classify(msg)
	switch d.Route {
	case relay.RouteContext:
		return s.previousQuestion(msg, d.Intent), true
	case relay.RouteSummary:
		return s.summaryAnswer(ctx, msg)
	default:
		return "", false
	}
}

func (s *Store) previousQuestion(msg string, intent relay.Intent) string {
	p := s.phrases(msg)

	s.mu.Lock()
	var users []string
	for _, t := range s.turns {
		if t.Role == relay.RoleUser {
			users = append(users, t.Content)
		}
	}
	s.mu.Unlock()

	switch {
	case len(users) == 0:
		return p.none
	case len(users) == 1:
		return p.onlyOne
	case intent == relay.IntentFirst:
		return fmt.Sprintf(p.first, users[0])
	case intent == relay.IntentPrevious:
		return fmt.Sprintf(p.previous, users[len(users)-2])
	default:
		return fmt.Sprintf(p.asked, users[len(users)-2])
	}
}

func (s *Store) summaryAnswer(ctx context.Context, msg string) (string, bool) {
	s.mu.Lock()
	turns := withoutCurrent(s.turns, msg)
	if len(turns) > s.summaryTurns {
		turns = turns[len(turns)-s.summaryTurns:]
	}
	transcript := render(turns)
	s.mu.Unlock()

	if transcript == "" {
		return "", false
	}

	resp, err := s.gen.Generate(ctx, relay.GenerateRequest{
		Prompt: fmt.Sprintf("Briefly summarize this conversation for the user, in the language of their request %q:\n\n%s", msg, transcript),
		Mode:   relay.ModePlain,
	})
	if err == nil {
		if summary := strings.TrimSpace(resp.Text); summary != "" {
			return summary, true
		}
		err = relay.ErrEmptyResponse
	}

	s.logger.Warn("summary query answered locally", zap.Error(err))
	excerpt := []rune(strings.Join(strings.Fields(transcript), " "))
	if len(excerpt) > summaryPreview {
		excerpt = excerpt[:summaryPreview]
	}
	return fmt.Sprintf(s.phrases(msg).summary, string(excerpt)), true
}
