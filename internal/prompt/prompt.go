package prompt

import _ "embed"

var (
	//go:embed review.md
	review string
	//go:embed digest_format.md
	digestFormat string
)

// ReviewPrompt is the system prompt for the year-in-review agent.
var ReviewPrompt = review + "\n" + digestFormat

// DefaultQuestion is asked when the user does not supply one.
const DefaultQuestion = "Draft my year-in-review: group my work into themes, highlight the most impactful items, and list them with their references."
