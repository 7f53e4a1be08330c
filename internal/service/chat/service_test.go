package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	model "github.com/portfolio-chat/backend/internal/model/chat"
	chat "github.com/portfolio-chat/backend/internal/service/chat"
)

type echoResponder struct{}

func (echoResponder) Respond(_ context.Context, msg string) string { return "echo: " + msg }

// gatedResponder 在 release 关闭前阻塞回复，started 通知回复已开始。
type gatedResponder struct {
	started chan struct{}
	release chan struct{}
}

func (g gatedResponder) Respond(_ context.Context, msg string) string {
	close(g.started)
	<-g.release
	return "late: " + msg
}

func texts(messages []model.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func newConversation(t *testing.T, store *chat.MemoryStore) string {
	t.Helper()
	id, _ := store.GetOrCreate(context.Background(), "")
	return id
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	first, messages := store.GetOrCreate(ctx, "")
	_, err := uuid.Parse(first)
	require.NoError(t, err, "expected generated uuid, got %q", first)
	assert.Empty(t, messages)

	second, _ := store.GetOrCreate(ctx, "")
	assert.NotEqual(t, first, second)

	unknown, _ := store.GetOrCreate(ctx, "client-chosen")
	assert.NotContains(t, []string{"client-chosen", first, second}, unknown)

	_, err = store.Append(ctx, first, model.Message{Text: "kept"})
	require.NoError(t, err)

	existing, messages := store.GetOrCreate(ctx, first)
	assert.Equal(t, first, existing)
	assert.Len(t, messages, 1)
	assert.Equal(t, 3, store.Len(ctx))
}

func TestMemoryStoreTrimsOldestBeyondCap(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()
	id := newConversation(t, store)

	var want []string
	for i := 0; i < chat.MaxMessages+1; i++ {
		text := fmt.Sprintf("m%02d", i)
		_, err := store.Append(ctx, id, model.Message{Text: text})
		require.NoError(t, err)
		want = append(want, text)
	}

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(want[1:], texts(got)); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()
	id := newConversation(t, store)

	appended, err := store.Append(ctx, id, model.Message{Text: "original"})
	require.NoError(t, err)
	appended[0].Text = "mutated"

	got, _ := store.Get(ctx, id)
	got[0].Text = "mutated again"

	again, _ := store.Get(ctx, id)
	if diff := cmp.Diff([]string{"original"}, texts(again)); diff != "" {
		t.Fatalf("stored history aliased (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	_, err := chat.NewMemoryStore().Get(context.Background(), "missing")

	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestMemoryStoreAppendDoesNotRecreate(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Append(ctx, "never-created", model.Message{Text: "hi"})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)

	id := newConversation(t, store)
	store.Delete(ctx, id)
	_, err = store.Append(ctx, id, model.Message{Text: "hi"})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
	assert.Zero(t, store.Len(ctx))
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()
	id := newConversation(t, store)

	_, err := store.Append(ctx, id, model.Message{Text: "hi"})
	require.NoError(t, err)
	store.Delete(ctx, id)
	store.Delete(ctx, id)
	store.Delete(ctx, "never-existed")

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestMemoryStoreConcurrentAppendsKeepPairs(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()
	id := newConversation(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Append(ctx, id,
				model.Message{Text: fmt.Sprintf("q%d", i), Sender: model.SenderUser},
				model.Message{Text: fmt.Sprintf("a%d", i), Sender: model.SenderAI},
			)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, chat.MaxMessages)
	for i := 0; i < len(got); i += 2 {
		require.Equal(t, model.SenderUser, got[i].Sender, "pair at %d interleaved", i)
		require.Equal(t, model.SenderAI, got[i+1].Sender, "pair at %d interleaved", i)
		require.Equal(t, got[i].Text[1:], got[i+1].Text[1:], "pair at %d mismatched", i)
	}
}

func TestServiceSend(t *testing.T) {
	svc := chat.NewService(chat.NewMemoryStore(), echoResponder{}, zaptest.NewLogger(t))
	ctx := context.Background()

	turn, err := svc.Send(ctx, "", "hello")
	require.NoError(t, err)
	require.NotEmpty(t, turn.ConversationID)
	require.Len(t, turn.Messages, 2)

	user, reply := turn.Messages[0], turn.Messages[1]
	assert.Equal(t, model.SenderUser, user.Sender)
	assert.Equal(t, "hello", user.Text)
	assert.Equal(t, model.SenderAI, reply.Sender)
	assert.Equal(t, "echo: hello", reply.Text)
	assert.NotEqual(t, user.ID, reply.ID)
	if diff := cmp.Diff(reply, turn.LastMessage); diff != "" {
		t.Fatalf("lastMessage mismatch (-want +got):\n%s", diff)
	}

	next, err := svc.Send(ctx, turn.ConversationID, "again")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"hello", "echo: hello", "again", "echo: again"}, texts(next.Messages)); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
}

func TestServiceHistoryAndClear(t *testing.T) {
	svc := chat.NewService(chat.NewMemoryStore(), echoResponder{}, zaptest.NewLogger(t))
	ctx := context.Background()

	turn, err := svc.Send(ctx, "", "hi")
	require.NoError(t, err)
	id := turn.ConversationID

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(turn.Messages, history); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	svc.Clear(ctx, id)
	svc.Clear(ctx, id)
	_, err = svc.History(ctx, id)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
	assert.Zero(t, svc.Conversations(ctx))
}

func TestServiceClearDuringTurnWins(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()
	svc := chat.NewService(store, echoResponder{}, zaptest.NewLogger(t))

	first, err := svc.Send(ctx, "", "hi")
	require.NoError(t, err)
	id := first.ConversationID

	gate := gatedResponder{started: make(chan struct{}), release: make(chan struct{})}
	gated := chat.NewService(store, gate, zaptest.NewLogger(t))

	type result struct {
		turn chat.Turn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		turn, err := gated.Send(ctx, id, "slow")
		done <- result{turn, err}
	}()

	<-gate.started
	gated.Clear(ctx, id)
	close(gate.release)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, id, res.turn.ConversationID)
	assert.Equal(t, "late: slow", res.turn.LastMessage.Text)
	if diff := cmp.Diff([]string{"hi", "echo: hi", "slow", "late: slow"}, texts(res.turn.Messages)); diff != "" {
		t.Fatalf("unexpected turn messages (-want +got):\n%s", diff)
	}

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
	assert.Zero(t, store.Len(ctx))
}

func TestServiceSendRespectsCancelledContext(t *testing.T) {
	store := chat.NewMemoryStore()
	svc := chat.NewService(store, echoResponder{}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Send(ctx, "x", "hi")
	require.Error(t, err)
	assert.Zero(t, store.Len(context.Background()), "cancelled turn must not create a conversation")
}
