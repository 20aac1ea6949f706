package dialogue

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// Role labels prefixed to every reply.
func rolePrefix(mode string) string {
	if mode == domain.ModeJudge {
		return "Judge:"
	}
	return "Interviewer:"
}

func welcomeLine(mode string) string {
	if mode == domain.ModeJudge {
		return "Hello. I'm your judge for this session. Answer the current question and I'll score it."
	}
	return "Hello! Great to have you here. Take your time with the current question, and ask me anything along the way."
}

func greetingOpener(mode string) string {
	if mode == domain.ModeJudge {
		return "Hello. Let's continue. Your current question is waiting for an answer."
	}
	return "Hi! Ready when you are. Shall we continue with the current question?"
}

// explanationFor rephrases the current question using its category framing.
func explanationFor(q domain.QuestionRecord) string {
	switch q.Category {
	case domain.CategoryTechnical:
		return fmt.Sprintf("The question is asking you to demonstrate technical understanding: %q. Explain the concept, how it works in practice, and where you've applied it.", q.Prompt)
	case domain.CategoryCoding:
		return fmt.Sprintf("This is a coding question: %q. Talk through your approach first, then the algorithm or data structure you'd use, and its complexity.", q.Prompt)
	case domain.CategoryBehavioral:
		return fmt.Sprintf("This is a behavioral question: %q. Describe a real situation using STAR: the Situation, your Task, the Action you took, and the Result.", q.Prompt)
	default:
		return fmt.Sprintf("In plain terms, the question %q wants to learn about you and how you'd fit the role. Be specific and honest.", q.Prompt)
	}
}

// starterFor returns a category-specific opening line the candidate can use.
func starterFor(q domain.QuestionRecord) string {
	switch q.Category {
	case domain.CategoryTechnical:
		return "Try starting with: \"In my last project, the core of this was...\" and then name the specific technology and decision you made."
	case domain.CategoryCoding:
		return "Try starting with: \"My first approach would be...\" then state the data structure, then refine toward the optimal solution out loud."
	case domain.CategoryBehavioral:
		return "Try starting with: \"A situation that comes to mind is...\" then cover your task, the action you personally took, and the measurable result."
	default:
		return "Try starting with one sentence about who you are professionally, then connect it directly to what this role needs."
	}
}

// starMiniTemplate is the supportive structure shown when the candidate is stuck.
const starMiniTemplate = "No problem, let's structure it. Use STAR: Situation (one line of context), Task (what you had to achieve), Action (what YOU did), Result (a number or concrete outcome)."

// sampleAnswerFor builds a deterministic model answer from the question's
// own prompt and tags. Used when no provider is reachable.
func sampleAnswerFor(q domain.QuestionRecord) string {
	topic := q.Prompt
	if len(q.Tags) > 0 {
		topic = strings.Join(q.Tags, ", ")
	}
	switch q.Category {
	case domain.CategoryTechnical:
		return fmt.Sprintf("A strong answer names the core concepts (%s), explains how they interact, gives one real example from a project, and closes with a trade-off you weighed.", topic)
	case domain.CategoryCoding:
		return fmt.Sprintf("A strong answer states the brute-force approach, improves it using the right structure (%s), walks the code aloud, and ends with time and space complexity.", topic)
	case domain.CategoryBehavioral:
		return fmt.Sprintf("A strong answer follows STAR around %s: one line of situation, your exact responsibility, the specific action you drove, and a quantified result.", topic)
	default:
		return fmt.Sprintf("A strong answer is two or three sentences tying your background to %s, with one concrete achievement and why it makes you a fit.", topic)
	}
}

// topicAnswers are deterministic fallbacks for common direct questions so
// the engine stays useful with zero providers.
var topicAnswers = []struct {
	keywords []string
	answer   string
}{
	{[]string{"rest", "graphql"}, "REST exposes fixed resource endpoints where the server shapes each response, while GraphQL exposes one endpoint where the client declares exactly the fields it needs. REST is simpler to cache; GraphQL avoids over- and under-fetching."},
	{[]string{"jwt"}, "A JWT is a signed token with three parts: header, payload and signature. The server verifies the signature instead of keeping session state, which makes it a good fit for stateless APIs. Keep them short-lived and never store secrets in the payload."},
	{[]string{"microservice"}, "Microservices split a system into independently deployable services, each owning its data. You gain independent scaling and releases, and pay for it with network failures, distributed transactions and operational overhead. Start with a modular monolith unless the team is large."},
	{[]string{"sql", "nosql"}, "SQL databases give you a fixed schema, joins and strong transactional guarantees. NoSQL stores trade some of that for flexible schemas and horizontal scaling. Choose by access pattern, not fashion."},
	{[]string{"docker", "container"}, "A container packages an application with its dependencies and runs it isolated on a shared kernel. It's lighter than a VM because there is no guest OS, which makes builds reproducible and deploys fast."},
	{[]string{"star", "method"}, "STAR stands for Situation, Task, Action, Result. One line of context, what you had to achieve, what you personally did, and a measurable outcome. It keeps behavioral answers concrete."},
}

// topicAnswerFor returns a canned answer when the message hits a known topic.
func topicAnswerFor(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, t := range topicAnswers {
		hit := true
		for _, k := range t.keywords {
			if !strings.Contains(lower, k) {
				hit = false
				break
			}
		}
		if hit {
			return t.answer, true
		}
	}
	return "", false
}

// formatQAPack renders sampled questions with one sample answer each as a
// "Q1:/A1:" transcript block.
func formatQAPack(questions []domain.QuestionRecord, answers []string) string {
	var b strings.Builder
	b.WriteString("Here is a practice set for you:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "\nQ%d: %s\nA%d: %s\n", i+1, q.Prompt, i+1, answers[i])
	}
	b.WriteString("\nWork through these aloud, then we can score your answers.")
	return b.String()
}

// First-person action verbs used by the STAR completeness check.
var actionVerbs = map[string]struct{}{
	"built": {}, "led": {}, "designed": {}, "created": {}, "implemented": {},
	"developed": {}, "owned": {}, "managed": {}, "delivered": {}, "wrote": {},
	"improved": {}, "reduced": {}, "increased": {}, "fixed": {}, "launched": {},
	"migrated": {}, "automated": {}, "optimized": {}, "debugged": {}, "shipped": {},
}

var digitOrPercent = func(s string) bool {
	return strings.ContainsAny(s, "0123456789") || strings.Contains(s, "percent")
}

// starCompleteness inspects a narrative answer and returns the single most
// useful structural note.
func starCompleteness(message string) string {
	toks := textx.Tokenize(message)
	if len(toks) < 12 {
		return "That's too short to score well. Expand it with STAR: a line of situation, your task, the action you took, and the result."
	}
	hasI := false
	hasAction := false
	for _, t := range toks {
		if t == "i" || t == "my" || t == "we" {
			hasI = true
		}
		if _, ok := actionVerbs[t]; ok {
			hasAction = true
		}
	}
	if !hasI || !hasAction {
		return "Your ownership is unclear. Say what YOU did using first-person action verbs, like \"I built\" or \"I led\"."
	}
	if !digitOrPercent(message) {
		return "Good structure. Now add a metric: quantify the result with a number, a percentage, or a time saved."
	}
	return "Solid answer. Tighten it by cutting filler and leading with the result, then the how."
}
