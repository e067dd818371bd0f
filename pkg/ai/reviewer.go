package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultCallTimeout = 30 * time.Second

const reviewerSystemPrompt = "You are a helpful customer service AI."

// Reviewer produces the three AI-generated fields of a review record using
// fixed prompt templates. Generation failures never propagate: each call
// recovers into a placeholder string so a submission can complete with
// degraded content.
type Reviewer struct {
	gen     TextGenerator
	timeout time.Duration
}

// NewReviewer binds a generator with a bounded per-call timeout.
// A non-positive timeout falls back to the default.
func NewReviewer(gen TextGenerator, timeout time.Duration) *Reviewer {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Reviewer{gen: gen, timeout: timeout}
}

// ResponseFor generates a short empathetic reply to the customer. The tone
// tiers live in the prompt; the model's output is trusted verbatim.
func (r *Reviewer) ResponseFor(ctx context.Context, rating int, reviewText string) string {
	userPrompt := fmt.Sprintf(`A customer left the following review:

Rating: %d/5
Review: %s

Generate a professional, empathetic response acknowledging their feedback.
Keep it concise (2-3 sentences). Match the tone:
- 5 stars: Thank them and ask them to share
- 1-2 stars: Apologize and offer solutions
- 3-4 stars: Thank them and suggest improvements

Response:`, rating, reviewText)

	text, err := r.generate(ctx, userPrompt)
	if err != nil {
		return fmt.Sprintf("Error generating response: %s", err)
	}
	return text
}

// SummaryFor generates a one-sentence sentiment and topic summary.
func (r *Reviewer) SummaryFor(ctx context.Context, reviewText string, rating int) string {
	userPrompt := fmt.Sprintf(`Summarize this customer review in ONE sentence. Focus on sentiment and topic:

Review: %s
Rating: %d/5

Summary:`, reviewText, rating)

	text, err := r.generate(ctx, userPrompt)
	if err != nil {
		return "Unable to generate summary"
	}
	return text
}

// ActionFor recommends one follow-up action. The label set is advisory
// prompt text; the model may answer outside it.
func (r *Reviewer) ActionFor(ctx context.Context, reviewText string, rating int, summary string) string {
	userPrompt := fmt.Sprintf(`Based on this customer review, suggest ONE action:

Review: %s
Rating: %d/5
Summary: %s

Choose from:
- Reply and offer compensation
- Share positive feedback on social media
- Investigate issue further
- No action needed
- Follow up with customer

Recommended Action:`, reviewText, rating, summary)

	text, err := r.generate(ctx, userPrompt)
	if err != nil {
		return "Unable to generate action"
	}
	return text
}

func (r *Reviewer) generate(ctx context.Context, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	text, err := r.gen.GenerateText(ctx, reviewerSystemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
