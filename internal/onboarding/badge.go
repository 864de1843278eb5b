package onboarding

import "strings"

// Badge is one of the six fixed archetypes assigned at the end of
// discovery. Catalog data, not user data.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var badgeCatalog = map[string]Badge{
	"dreamer": {
		ID:          "dreamer",
		Name:        "The Dreamer",
		Description: "You see possibilities where others see obstacles. Your imagination is your superpower.",
		Icon:        "🌙",
	},
	"healer": {
		ID:          "healer",
		Name:        "The Healer",
		Description: "You carry deep empathy and help others find peace. Your presence is medicine.",
		Icon:        "🌸",
	},
	"warrior": {
		ID:          "warrior",
		Name:        "The Warrior",
		Description: "You face challenges with courage and inspire others to be brave. Your strength is quiet but powerful.",
		Icon:        "⚡",
	},
	"muse": {
		ID:          "muse",
		Name:        "The Muse",
		Description: "You inspire creativity and beauty in the world. Your soul speaks in colors and melodies.",
		Icon:        "✨",
	},
	"sage": {
		ID:          "sage",
		Name:        "The Sage",
		Description: "You seek wisdom and understanding. Your questions lead to profound discoveries.",
		Icon:        "🔮",
	},
	"guardian": {
		ID:          "guardian",
		Name:        "The Guardian",
		Description: "You protect and nurture what matters most. Your love creates safe spaces for growth.",
		Icon:        "🛡️",
	},
}

// badgeRules is evaluated in order, first match wins. Order is part of
// the contract: a corpus matching several groups gets the earliest one.
var badgeRules = []struct {
	badgeID  string
	keywords []string
}{
	{"dreamer", []string{"dream", "hope", "imagine"}},
	{"healer", []string{"heal", "peace", "calm"}},
	{"warrior", []string{"strong", "brave", "fight"}},
	{"muse", []string{"create", "art", "beauty"}},
	{"sage", []string{"learn", "understand", "wisdom"}},
}

// Classify maps the three discovery answers to a badge. The answers are
// joined with single spaces, lowercased, and matched by substring against
// the rule table; anything that matches nothing is a guardian. Pure and
// total: every input produces exactly one badge.
func Classify(answers [3]string) Badge {
	corpus := strings.ToLower(strings.Join(answers[:], " "))
	for _, rule := range badgeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(corpus, kw) {
				return badgeCatalog[rule.badgeID]
			}
		}
	}
	return badgeCatalog["guardian"]
}

// BadgeByID looks up a catalog entry.
func BadgeByID(id string) (Badge, bool) {
	b, ok := badgeCatalog[id]
	return b, ok
}

// Badges returns the full catalog in classifier priority order, guardian last.
func Badges() []Badge {
	out := make([]Badge, 0, len(badgeCatalog))
	for _, rule := range badgeRules {
		out = append(out, badgeCatalog[rule.badgeID])
	}
	out = append(out, badgeCatalog["guardian"])
	return out
}
