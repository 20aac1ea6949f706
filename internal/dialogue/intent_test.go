package dialogue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/dialogue"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

func TestClassify_QAPackBeatsDirectQuestionInLiveMode(t *testing.T) {
	t.Parallel()
	it := dialogue.Classify(domain.ModeLiveInterviewer, "Can you give me 3 technical questions")
	assert.Equal(t, dialogue.IntentQAPack, it.Kind)
	assert.Equal(t, 3, it.Count)
	assert.Equal(t, []string{domain.CategoryTechnical}, it.Categories)
}

func TestClassify_CountInference(t *testing.T) {
	t.Parallel()
	it := dialogue.Classify(domain.ModeJudge, "give me 5 coding questions")
	assert.Equal(t, dialogue.IntentQAPack, it.Kind)
	assert.Equal(t, 5, it.Count)
	assert.Equal(t, []string{domain.CategoryCoding}, it.Categories)

	it = dialogue.Classify(domain.ModeJudge, "please ask me some questions")
	assert.Equal(t, dialogue.IntentQAPack, it.Kind)
	assert.Equal(t, 3, it.Count, "no explicit number defaults to 3")
	assert.Empty(t, it.Categories, "no category keywords means session category")
}

func TestClassify_CountClampedToSix(t *testing.T) {
	t.Parallel()
	it := dialogue.Classify(domain.ModeJudge, "send me 20 behavioral questions")
	assert.Equal(t, dialogue.IntentQAPack, it.Kind)
	assert.Equal(t, 6, it.Count)
	assert.Equal(t, []string{domain.CategoryBehavioral}, it.Categories)
}

func TestClassify_GreetingOnlyWhenShort(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialogue.IntentGreeting, dialogue.Classify(domain.ModeJudge, "hello").Kind)
	assert.Equal(t, dialogue.IntentGreeting, dialogue.Classify(domain.ModeLiveInterviewer, "hi there!").Kind)

	long := dialogue.Classify(domain.ModeJudge, "hello, let me tell you about the project I led last year at my previous company")
	assert.Equal(t, dialogue.IntentNarrative, long.Kind)
}

func TestClassify_LiveOnlyIntentsIgnoredInJudgeMode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialogue.IntentRepeatQuestion, dialogue.Classify(domain.ModeLiveInterviewer, "could you repeat the question please").Kind)
	assert.NotEqual(t, dialogue.IntentRepeatQuestion, dialogue.Classify(domain.ModeJudge, "could you repeat the question please").Kind)

	assert.Equal(t, dialogue.IntentSampleAnswer, dialogue.Classify(domain.ModeLiveInterviewer, "show me a model answer for this").Kind)
	assert.NotEqual(t, dialogue.IntentSampleAnswer, dialogue.Classify(domain.ModeJudge, "show me a model answer for this").Kind)
}

func TestClassify_BothModeIntents(t *testing.T) {
	t.Parallel()
	for _, mode := range []string{domain.ModeJudge, domain.ModeLiveInterviewer} {
		assert.Equal(t, dialogue.IntentScoreRequest, dialogue.Classify(mode, "what is my score so far").Kind, mode)
		assert.Equal(t, dialogue.IntentHint, dialogue.Classify(mode, "can I get a hint").Kind, mode)
	}
}

func TestClassify_DirectQuestionLiveOnly(t *testing.T) {
	t.Parallel()
	msg := "what is the difference between REST and GraphQL?"
	assert.Equal(t, dialogue.IntentDirectQuestion, dialogue.Classify(domain.ModeLiveInterviewer, msg).Kind)
	assert.Equal(t, dialogue.IntentNarrative, dialogue.Classify(domain.ModeJudge, msg).Kind)
}

func TestClassify_NarrativeAnswerWithEmbeddedQuestionMark(t *testing.T) {
	t.Parallel()
	long := "In my last role I led a migration project for our billing system and worked with " +
		"three teams across two quarters to move everything without downtime, which taught me " +
		"a lot about planning, communication, stakeholder management and incremental rollouts, " +
		"so would I do it again? absolutely, because the results were worth the effort overall"
	assert.Equal(t, dialogue.IntentNarrative, dialogue.Classify(domain.ModeLiveInterviewer, long).Kind)
}

func TestClassify_KeywordsMatchOnTokenBoundaries(t *testing.T) {
	t.Parallel()
	for _, msg := range []string{
		"My proudest achievement was migrating our payments system", // "rating" inside "migrating"
		"I was integrating the billing service with three vendors",
		"We upgraded the cluster across multiple regions last year", // "grade" / "tip"
	} {
		assert.Equal(t, dialogue.IntentNarrative, dialogue.Classify(domain.ModeJudge, msg).Kind, msg)
	}

	// Real single-word keywords still fire as whole tokens.
	assert.Equal(t, dialogue.IntentScoreRequest, dialogue.Classify(domain.ModeJudge, "what rating did that answer get").Kind)
	assert.Equal(t, dialogue.IntentHint, dialogue.Classify(domain.ModeJudge, "I could use a hint here").Kind)
}

func TestClassify_LanguageSwitch(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialogue.IntentLanguageSwitch, dialogue.Classify(domain.ModeLiveInterviewer, "can we continue in hindi").Kind)
}
