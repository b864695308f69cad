package sections

import (
	"strings"
	"unicode"
)

// actionVerbs is the fixed list of strong verbs that open an achievement line.
var actionVerbs = toSet(
	"accelerated", "achieved", "acquired", "adapted", "administered", "advised", "analyzed", "architected",
	"automated", "built", "championed", "coached", "collaborated", "completed", "conceived", "consolidated",
	"coordinated", "created", "cut", "decreased", "defined", "delivered", "deployed", "designed",
	"developed", "directed", "drove", "eliminated", "enabled", "engineered", "enhanced", "established",
	"evaluated", "executed", "expanded", "facilitated", "founded", "generated", "grew", "guided",
	"headed", "identified", "implemented", "improved", "increased", "initiated", "innovated", "integrated",
	"introduced", "launched", "led", "maintained", "managed", "mentored", "migrated", "modernized",
	"negotiated", "optimized", "orchestrated", "organized", "oversaw", "owned", "pioneered", "planned",
	"produced", "programmed", "published", "raised", "rebuilt", "redesigned", "reduced", "refactored",
	"resolved", "restructured", "revamped", "saved", "scaled", "secured", "shipped", "simplified",
	"spearheaded", "streamlined", "strengthened", "supervised", "taught", "tested", "trained", "transformed",
	"tripled", "doubled", "upgraded", "won", "wrote",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// StartsWithActionVerb reports whether the first word of line is a strong
// action verb.
func StartsWithActionVerb(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	word := strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	_, ok := actionVerbs[word]
	return ok
}
