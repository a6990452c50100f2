package retrieval

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

var greetings = []string{
	"hi", "hello", "hey", "howdy", "greetings", "good morning", "good afternoon", "good evening",
	"sup", "wassup", "yo", "hiya",
}

var conversational = []string{
	"how are you", "how's it going", "what's up", "how do you do",
	"nice to meet you", "pleased to meet you",
	"thanks", "thank you", "thx", "cheers",
	"bye", "goodbye", "see you", "later", "farewell",
}

var projectKeywords = []string{
	// project terms
	"project", "projects", "portfolio", "work on", "worked on", "work", "working on",

	// creation and development
	"built", "build", "building", "created", "create", "creating", "developed", "develop", "developing",
	"made", "make", "making", "designed", "design", "designing", "implemented", "implement", "implementing",
	"coded", "code", "coding", "programmed", "program", "programming",

	// technology and tools
	"tech stack", "technology", "technologies", "tool", "tools", "framework", "frameworks",
	"library", "libraries", "software", "application", "app", "system", "platform",

	// project types
	"bot", "agent", "agents", "multi-agent", "agentic", "ai system", "chatbot",
	"web app", "website", "api", "backend", "frontend",

	// competitions and events
	"hackathon", "hackathons", "competition", "competitions", "demo", "presentation",
	"won", "award", "awards", "prize", "winner", "winning", "place", "1st", "first place",

	// named projects and stack
	"wordle", "pacer", "tracer", "markus", "observability", "git", "python",
	"langchain", "langgraph", "ollama", "selenium", "google adk",
}

var personalKeywords = []string{
	// birth and age
	"born", "birth", "birthday", "birthdate", "birth date", "date of birth", "dob",
	"age", "old", "how old", "when was he", "when were you",

	// location and origin
	"from", "where", "where is", "where was", "where does", "where did",
	"live", "lives", "lived", "living", "location", "based", "resides", "residing",
	"nationality", "citizen", "country", "city", "town", "trinidad", "london",

	// education
	"education", "educated", "studied", "study", "studying", "studies",
	"university", "universities", "uni", "college", "school", "schools",
	"degree", "degrees", "graduated", "graduate", "graduation", "graduating",
	"major", "majored", "minor", "attended", "attend", "attending", "go to", "went to",
	"ucl", "imperial", "undergraduate", "postgraduate", "masters", "master's", "msc", "bsc",
	"bachelor", "phd", "student", "academic", "course", "courses", "class", "undergrad", "postgrad",

	// background
	"background", "history", "story", "upbringing", "childhood", "grew up",
	"raised", "early life", "youth", "young",

	// family
	"family", "families", "parent", "parents", "sibling", "siblings",
	"brother", "sister", "mother", "father", "mom", "dad", "relative", "relatives",

	// interests and hobbies
	"interest", "interests", "interested", "hobby", "hobbies", "passion", "passionate",
	"like", "likes", "enjoy", "enjoys", "love", "loves", "favorite", "favourite",
	"prefer", "prefers", "fan of", "into", "keen on",

	// career
	"worked at", "work at", "working at", "works at", "employed", "employment",
	"job", "jobs", "career", "career path", "experience", "role", "position",
	"company", "companies", "employer", "accenture", "consulting", "consultant",
}

var (
	projectPatterns  = compileWholeWords(projectKeywords)
	personalPatterns = compileWholeWords(personalKeywords)
)

func compileWholeWords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return out
}

// IsGreeting reports whether the query is small talk that needs no retrieval.
func IsGreeting(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	if slices.Contains(greetings, q) {
		return true
	}

	for _, g := range greetings {
		if strings.HasPrefix(q, g+" ") || strings.HasPrefix(q, g+"!") {
			return true
		}
	}

	for _, c := range conversational {
		if strings.Contains(q, c) {
			return true
		}
	}

	return false
}

// ClassifyIntent tags a non-greeting query by keyword. Project keywords win over personal ones.
func ClassifyIntent(query string) core.Intent {
	q := strings.ToLower(query)

	if matchesAny(q, projectPatterns) {
		return core.IntentProject
	}
	if matchesAny(q, personalPatterns) {
		return core.IntentPersonal
	}
	return core.IntentGeneral
}

// Classify runs the greeting check and then keyword intent classification.
func Classify(query string) core.Intent {
	if IsGreeting(query) {
		return core.IntentGreeting
	}
	return ClassifyIntent(query)
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
