package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// IntentKind enumerates every reply strategy. The engine resolves exactly
// one kind per message; precedence lives in the ordered matcher table, not
// in scattered early returns.
type IntentKind string

const (
	IntentGreeting       IntentKind = "greeting"
	IntentRepeatQuestion IntentKind = "repeat_question"
	IntentExplain        IntentKind = "explain"
	IntentHint           IntentKind = "hint"
	IntentSampleAnswer   IntentKind = "sample_answer"
	IntentScoreRequest   IntentKind = "score_request"
	IntentLanguageSwitch IntentKind = "language_switch"
	IntentQAPack         IntentKind = "qa_pack"
	IntentDirectQuestion IntentKind = "direct_question"
	IntentNarrative      IntentKind = "narrative"
)

// Intent is the classified shape of one inbound message. Count and
// Categories are only meaningful for IntentQAPack.
type Intent struct {
	Kind       IntentKind
	Count      int
	Categories []string
}

const (
	defaultPackCount = 3
	maxPackCount     = 6
)

var (
	countRe         = regexp.MustCompile(`\b(\d{1,2})\s+(?:\w+\s+)?questions?\b`)
	interrogatives  = []string{"what", "why", "how", "when", "where", "which", "who", "can", "could", "would", "should", "is", "are", "do", "does", "did", "explain", "tell"}
	questionNouns   = []string{"question", "questions", "quiz", "problems"}
	provideVerbs    = []string{"give", "ask", "provide", "send", "share", "practice", "generate", "list", "show", "want", "need"}
	stuckPhrases    = []string{"don't know", "dont know", "not sure", "no idea", "skip", "stuck", "help me start"}
	greetingWords   = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "greetings"}
	scoreWords      = []string{"score", "rating", "rate me", "how did i do", "marks", "grade"}
	sampleWords     = []string{"sample answer", "model answer", "ideal answer", "example answer", "perfect answer", "best answer"}
	hintWords       = []string{"hint", "starter", "how do i start", "where do i start", "give me a clue"}
	explainWords    = []string{"explain the question", "clarify", "what does this question mean", "rephrase", "elaborate on the question", "i don't understand the question", "dont understand the question"}
	repeatWords     = []string{"repeat the question", "say that again", "repeat that", "what was the question", "read the question again"}
	languageWords   = []string{"in hindi", "in spanish", "in french", "switch language", "another language", "speak in", "answer in hindi"}
	improvementWord = []string{"improve", "improvement", "tip", "tips", "feedback", "better", "advice"}
	followupWords   = []string{"next question", "follow up", "follow-up", "followup", "another question", "move on"}
	jobFitWords     = []string{"job fit", "job description", "fit for the job", "fit the role", "match the jd", "jd match"}
)

// matcher gates one intent kind on mode and a message predicate.
type matcher struct {
	kind  IntentKind
	modes []string // nil means both modes
	match func(lower string) bool
}

// matchers is the precedence order. QA-pack sits ahead of direct-question
// so "give me 3 technical questions" never reads as a question to answer.
var matchers = []matcher{
	{IntentGreeting, nil, isGreeting},
	{IntentRepeatQuestion, []string{domain.ModeLiveInterviewer}, containsAny(repeatWords)},
	{IntentExplain, []string{domain.ModeLiveInterviewer}, containsAny(explainWords)},
	{IntentHint, nil, containsAny(hintWords)},
	{IntentSampleAnswer, []string{domain.ModeLiveInterviewer}, containsAny(sampleWords)},
	{IntentScoreRequest, nil, containsAny(scoreWords)},
	{IntentLanguageSwitch, []string{domain.ModeLiveInterviewer}, containsAny(languageWords)},
	{IntentQAPack, nil, isQAPackRequest},
	{IntentDirectQuestion, []string{domain.ModeLiveInterviewer}, isDirectQuestion},
}

// Classify resolves the message to exactly one intent for the given mode.
// It is network-free and deterministic.
func Classify(mode, message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, m := range matchers {
		if m.modes != nil && !modeIn(mode, m.modes) {
			continue
		}
		if !m.match(lower) {
			continue
		}
		it := Intent{Kind: m.kind}
		if m.kind == IntentQAPack {
			it.Count = inferCount(lower)
			it.Categories = inferCategories(lower)
		}
		return it
	}
	return Intent{Kind: IntentNarrative}
}

func modeIn(mode string, modes []string) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

// containsAny matches multi-word phrases as substrings and single words on
// token boundaries, so "rating" never fires inside "migrating".
func containsAny(phrases []string) func(string) bool {
	return func(lower string) bool {
		var tokens map[string]struct{}
		for _, p := range phrases {
			if strings.ContainsAny(p, " -") {
				if strings.Contains(lower, p) {
					return true
				}
				continue
			}
			if tokens == nil {
				tokens = textx.TokenSet(lower, 1)
			}
			if _, ok := tokens[p]; ok {
				return true
			}
		}
		return false
	}
}

// isGreeting only fires on short messages so "hi, let me tell you about my
// project..." still reads as a narrative answer.
func isGreeting(lower string) bool {
	if textx.WordCount(lower) > 4 {
		return false
	}
	for _, g := range greetingWords {
		if lower == g || strings.HasPrefix(lower, g+" ") || strings.HasPrefix(lower, g+",") || strings.HasPrefix(lower, g+"!") {
			return true
		}
	}
	return false
}

// isQAPackRequest needs a question-like noun co-occurring with a
// provide/ask verb.
func isQAPackRequest(lower string) bool {
	var noun, verb bool
	for _, n := range questionNouns {
		if strings.Contains(lower, n) {
			noun = true
			break
		}
	}
	for _, v := range provideVerbs {
		if strings.Contains(lower, v) {
			verb = true
			break
		}
	}
	return noun && verb
}

// isDirectQuestion detects a question addressed to the interviewer rather
// than a narrative answer that merely contains one.
func isDirectQuestion(lower string) bool {
	if textx.WordCount(lower) > 40 {
		return false
	}
	if strings.Contains(lower, "?") {
		return true
	}
	first := ""
	if toks := textx.Tokenize(lower); len(toks) > 0 {
		first = toks[0]
	}
	for _, w := range interrogatives {
		if first == w {
			return true
		}
	}
	return false
}

// inferCount extracts a "<N> question(s)" count clamped to [1,maxPackCount].
func inferCount(lower string) int {
	m := countRe.FindStringSubmatch(lower)
	if m == nil {
		return defaultPackCount
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultPackCount
	}
	if n < 1 {
		return 1
	}
	if n > maxPackCount {
		return maxPackCount
	}
	return n
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{domain.CategoryHR, []string{"hr", "human resources", "salary", "culture"}},
	{domain.CategoryCoding, []string{"coding", "code", "programming", "algorithm", "dsa", "leetcode"}},
	{domain.CategoryTechnical, []string{"technical", "tech", "system design", "architecture"}},
	{domain.CategoryBehavioral, []string{"behavioral", "behavioural", "situational", "star"}},
}

// inferCategories maps keyword hits to categories; empty means "use the
// session's own category".
func inferCategories(lower string) []string {
	var out []string
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				out = append(out, ck.category)
				break
			}
		}
	}
	return out
}
