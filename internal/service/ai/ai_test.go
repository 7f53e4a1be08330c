package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/portfolio-chat/backend/internal/config"
	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
)

type mockChatClient struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (m *mockChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.got = req
	return m.resp, m.err
}

type fakeChatModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestDisabledCompleter(t *testing.T) {
	var c Completer = Disabled{}

	assert.False(t, c.Available())
	_, err := c.Complete(context.Background(), "system", "hi")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAICompleteSendsFixedParameters(t *testing.T) {
	client := &mockChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "From the model"}}},
	}}
	cfg := config.OpenAIConfig{Model: "gpt-3.5-turbo", MaxTokens: 300, Temperature: 0.7}
	c := NewOpenAI(client, cfg, zaptest.NewLogger(t))

	out, err := c.Complete(context.Background(), "be nice", "what is your favourite tool?")
	require.NoError(t, err)
	assert.Equal(t, "From the model", out)

	assert.Equal(t, "gpt-3.5-turbo", client.got.Model)
	assert.Equal(t, 300, client.got.MaxTokens)
	assert.InDelta(t, 0.7, client.got.Temperature, 1e-6)
	require.Len(t, client.got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.got.Messages[0].Role)
	assert.Equal(t, "be nice", client.got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, client.got.Messages[1].Role)
	assert.Equal(t, "what is your favourite tool?", client.got.Messages[1].Content)
}

func TestOpenAICompleteErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	failing := NewOpenAI(&mockChatClient{err: errors.New("boom")}, config.OpenAIConfig{}, logger)
	_, err := failing.Complete(context.Background(), "", "x")
	require.Error(t, err)

	empty := NewOpenAI(&mockChatClient{}, config.OpenAIConfig{}, logger)
	_, err = empty.Complete(context.Background(), "", "x")
	require.Error(t, err)
}

func TestArkCompleteRunsChain(t *testing.T) {
	fake := &fakeChatModel{reply: "chain reply"}
	c, err := NewArk(context.Background(), fake, zaptest.NewLogger(t))
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "system prompt", "user question")
	require.NoError(t, err)
	assert.Equal(t, "chain reply", out)

	require.Len(t, fake.input, 2)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, "system prompt", fake.input[0].Content)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, "user question", fake.input[1].Content)
}

func TestArkCompletePropagatesModelError(t *testing.T) {
	c, err := NewArk(context.Background(), &fakeChatModel{err: errors.New("quota")}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AIConfig
		want string
	}{
		{"nothing configured", config.AIConfig{Provider: config.ProviderAuto}, config.ProviderNone},
		{"openai preferred", config.AIConfig{
			Provider: config.ProviderAuto,
			OpenAI:   config.OpenAIConfig{APIKey: "k"},
			Gemini:   config.GeminiConfig{APIKey: "g"},
		}, config.ProviderOpenAI},
		{"gemini before ark", config.AIConfig{
			Gemini: config.GeminiConfig{APIKey: "g"},
			Ark:    config.ArkConfig{APIKey: "a", Model: "m"},
		}, config.ProviderGemini},
		{"ark last", config.AIConfig{Ark: config.ArkConfig{APIKey: "a", Model: "m"}}, config.ProviderArk},
		{"explicit wins", config.AIConfig{Provider: config.ProviderNone, OpenAI: config.OpenAIConfig{APIKey: "k"}}, config.ProviderNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveProvider(tc.cfg))
		})
	}
}

func TestNewDegradesToDisabled(t *testing.T) {
	logger := zaptest.NewLogger(t)

	c := New(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI}, logger)
	assert.False(t, c.Available())
	assert.Equal(t, "none", c.Name())

	c = New(context.Background(), config.AIConfig{Provider: config.ProviderAuto}, logger)
	assert.False(t, c.Available())
}

func TestNewSelectsOpenAI(t *testing.T) {
	cfg := config.AIConfig{
		Provider: config.ProviderAuto,
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-3.5-turbo"},
	}

	c := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.True(t, c.Available())
	assert.Equal(t, config.ProviderOpenAI, c.Name())
}

func TestBuildSystemPromptEmbedsEveryPair(t *testing.T) {
	owner := profile.Seed()
	entries := knowledge.Seed()

	got := BuildSystemPrompt(owner, entries)

	assert.True(t, strings.HasPrefix(got, "You are "+owner.Name+", a "+owner.Role+"."))
	assert.Contains(t, got, owner.DeclineReply)
	for _, entry := range entries {
		assert.Contains(t, got, "Q: "+entry.Question+"\nA: "+entry.Answer+"\n\n")
	}
}
