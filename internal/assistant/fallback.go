// internal/assistant/fallback.go

package assistant

import (
	"strings"
)

type topic struct {
	keywords []string
	reply    string
}

// Checked in order; the first topic with a keyword in the message wins.
var topics = []topic{
	{
		keywords: []string{"cleaning", "schedule", "chore"},
		reply: `Here is a simple way to share the cleaning:

**Weekly rotation**
- Week 1: kitchen and common areas
- Week 2: bathroom and trash
- Week 3: living room and vacuuming
- Week 4: deep clean

**Every day**
- Wash your own dishes right away
- Wipe the counters after cooking
- Keep personal things in your room

Want me to adapt this to your household?`,
	},
	{
		keywords: []string{"conflict", "problem", "issue", "fight"},
		reply: `Disagreements between roommates usually go better in three steps:

**1. Cool down first**
Talk once you are calm and keep to the specific issue.

**2. Speak for yourself**
Use "I feel..." statements, listen to their side and ask questions.

**3. Agree on something concrete**
Look for a compromise and write down the new expectation.

What is the situation you are dealing with?`,
	},
	{
		keywords: []string{"expense", "money", "split", "bill"},
		reply: `A fair way to split shared costs:

**Rent and utilities**
- Split rent equally or by room size
- Share utility bills equally
- Track everything in a shared app

**Groceries**
- Keep a shared fund for common items
- Take turns doing the shared shopping

Settle up once a month and keep every cost visible. Want help setting up tracking?`,
	},
}

const defaultReply = `I can help with most parts of shared living:

- Cleaning schedules
- Resolving conflicts
- House rules
- Shared expenses
- Guests, noise and quiet hours

What would you like to work on?`

// FallbackReply answers from canned advice chosen by keyword.
func FallbackReply(message string) string {
	msg := strings.ToLower(message)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(msg, kw) {
				return t.reply
			}
		}
	}
	return defaultReply
}
