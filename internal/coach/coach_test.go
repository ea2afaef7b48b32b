package coach

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/talkie/internal/llm"
	"github.com/abhisek/talkie/internal/mode"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "plain",
			text: "CORRECT: I went to the park.\nPRAISE: Great job!\nQUESTION: What did you see?",
			want: map[string]string{"CORRECT": "I went to the park.", "PRAISE": "Great job!", "QUESTION": "What did you see?"},
		},
		{
			name: "markdown and mixed case",
			text: "Sure!\n- **Correct:** I like apples.\n* __praise__: Nice!\n  Question: Do you like pears?",
			want: map[string]string{"CORRECT": "I like apples.", "PRAISE": "Nice!", "QUESTION": "Do you like pears?"},
		},
		{
			name: "continuation lines",
			text: "CORRECT: I have a dog\nand a cat.\n\nPRAISE: Lovely!",
			want: map[string]string{"CORRECT": "I have a dog and a cat.", "PRAISE": "Lovely!", "QUESTION": ""},
		},
		{
			name: "missing and unknown labels",
			text: "NOTE: ignore me\nQUESTION: Why?",
			want: map[string]string{"CORRECT": "", "PRAISE": "", "QUESTION": "Why?"},
		},
		{
			name: "first value wins",
			text: "PRAISE: One\nPRAISE: Two",
			want: map[string]string{"CORRECT": "", "PRAISE": "One", "QUESTION": ""},
		},
		{
			name: "empty",
			text: "",
			want: map[string]string{"CORRECT": "", "PRAISE": "", "QUESTION": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFields(tt.text, FieldCorrect, FieldPraise, FieldQuestion))
		})
	}
}

func TestCompose(t *testing.T) {
	assert.Equal(t, "I went home. Well done! Where is home?", Compose("I went home", "Well done!", "Where is home?"))
	assert.Equal(t, "Is it red? Nice!", Compose("Is it red?", "Nice!", ""))
	assert.Equal(t, "What next?", Compose("", "", "What next?"))
	assert.Empty(t, Compose(" ", "", ""))
}

func TestReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("CORRECT: I went to the zoo\nPRAISE: Super!\nQUESTION: Which animal did you like?"))
	c := New(mock, nil)

	r, err := c.Reply(context.Background(), "Child: hello", "i goed to zoo")
	require.NoError(t, err)
	assert.Equal(t, "I went to the zoo", r.Correct)
	assert.Equal(t, "I went to the zoo. Super! Which animal did you like?", r.Text)
	assert.False(t, r.Fallback)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.Messages[0].Content, "Child: hello")
	assert.Contains(t, call.Messages[0].Content, `"i goed to zoo"`)
}

func TestReplyFallsBack(t *testing.T) {
	for name, c := range map[string]*Coach{
		"no provider":     New(nil, nil),
		"provider failed": New(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}), nil),
	} {
		t.Run(name, func(t *testing.T) {
			r, err := c.Reply(context.Background(), "", "I like cake")
			require.NoError(t, err)
			assert.True(t, r.Fallback)
			assert.Equal(t, "I like cake. Good try! Can you tell me more?", r.Text)
		})
	}
}

func TestReplyUnformatted(t *testing.T) {
	c := New(llm.NewMockProvider(llm.TextResponse("That is lovely.\n  Tell me more!")), nil)
	r, err := c.Reply(context.Background(), "", "I have a kite")
	require.NoError(t, err)
	assert.Equal(t, "That is lovely. Tell me more!", r.Text)
}

func TestReplyEmptyInput(t *testing.T) {
	_, err := New(nil, nil).Reply(context.Background(), "", "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = New(nil, nil).Roleplay(context.Background(), "Shop", "Hi!", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRoleplay(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("CORRECT: I would like an apple, please.\nPRAISE: Very polite!\nQUESTION: How many apples?"))
	r, err := New(mock, nil).Roleplay(context.Background(), "At the fruit shop", "What would you like?", "apple")
	require.NoError(t, err)
	assert.Equal(t, "I would like an apple, please. Very polite! How many apples?", r.Text)

	call, _ := mock.LastCall()
	assert.Contains(t, call.Messages[0].Content, "At the fruit shop")
	assert.Contains(t, call.Messages[0].Content, "What would you like?")
}

func TestDefine(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("MEANING: Not afraid of danger.\nEXAMPLE: The brave girl climbed the tree."))
	m, err := New(mock, nil).Define(context.Background(), " brave ")
	require.NoError(t, err)
	assert.Equal(t, Meaning{Word: "brave", Meaning: "Not afraid of danger.", Example: "The brave girl climbed the tree."}, m)

	_, err = New(nil, nil).Define(context.Background(), "brave")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New(llm.NewMockProvider(llm.TextResponse("no idea")), nil).Define(context.Background(), "brave")
	assert.ErrorIs(t, err, ErrUnavailable)

	failing := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	_, err = New(failing, nil).Define(context.Background(), "brave")
	assert.ErrorIs(t, err, ErrUnavailable)
	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl))
}

func TestSentence(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("SENTENCE: My cat sleeps on the warm mat."))
	s, err := New(mock, nil).Sentence(context.Background(), mode.Medium)
	require.NoError(t, err)
	assert.Equal(t, "My cat sleeps on the warm mat.", s)

	call, _ := mock.LastCall()
	assert.Contains(t, call.Messages[0].Content, "8 to 11 words")

	_, err = New(nil, nil).Sentence(context.Background(), mode.Easy)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPurposeLabels(t *testing.T) {
	var purposes []string
	p := purposeRecorder{record: func(s string) { purposes = append(purposes, s) }}
	c := New(p, nil)

	_, _ = c.Reply(context.Background(), "", "hi")
	_, _ = c.Roleplay(context.Background(), "", "", "hi")
	_, _ = c.Define(context.Background(), "hi")
	_, _ = c.Sentence(context.Background(), mode.Easy)
	assert.Equal(t, []string{llm.PurposeCoach, llm.PurposeRoleplay, llm.PurposeMeaning, llm.PurposeSentence}, purposes)
}

type purposeRecorder struct {
	record func(string)
}

func (p purposeRecorder) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.record(llm.PurposeFrom(ctx))
	return nil, &llm.ErrProviderUnavailable{}
}

func (purposeRecorder) ModelID() string { return "recorder" }
