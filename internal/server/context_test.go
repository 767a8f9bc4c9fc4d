package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxtasks/internal/gmail"
	"github.com/teemow/inboxtasks/internal/pipeline"
	"github.com/teemow/inboxtasks/internal/tasks"
)

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	return `{"no_task": true}`, nil
}

func newTestContext(t *testing.T, completer fakeCompleter) *ServerContext {
	t.Helper()

	sc, err := NewServerContext(context.Background(), tasks.NewMemoryStore(), pipeline.NewMemoryLog(), completer, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContextRequiresStoreAndLog(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil, pipeline.NewMemoryLog(), nil, nil)
	assert.Error(t, err)

	_, err = NewServerContext(context.Background(), tasks.NewMemoryStore(), nil, nil, nil)
	assert.Error(t, err)
}

func TestServerContextAccessors(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})

	assert.NotNil(t, sc.Store())
	assert.NotNil(t, sc.ExecutionLog())
	assert.NotNil(t, sc.Metrics(), "metrics must default to a no-op recorder")
	assert.Equal(t, pipeline.StateIdle, sc.PipelineState())
}

func TestServerContextShutdown(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	// Shutdown is idempotent.
	require.NoError(t, sc.Shutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Error("server context must be cancelled after shutdown")
	}
}

func TestGmailClientForAccountUsesCachedClient(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})

	client := &gmail.Client{}
	sc.SetGmailClientForAccount("work", client)

	assert.Same(t, client, sc.GmailClientForAccount("work"))
}

func TestGmailClientForAccountWithoutToken(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})

	assert.Nil(t, sc.GmailClientForAccount("account-without-any-token"))
}

func TestPipelineForAccountWithoutLLM(t *testing.T) {
	sc, err := NewServerContext(context.Background(), tasks.NewMemoryStore(), pipeline.NewMemoryLog(), nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	_, err = sc.PipelineForAccount("work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestPipelineForAccountWithoutToken(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})

	_, err := sc.PipelineForAccount("account-without-any-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account-without-any-token")
}

func TestPipelineForAccountIsCached(t *testing.T) {
	sc := newTestContext(t, fakeCompleter{})
	sc.SetGmailClientForAccount("work", &gmail.Client{})

	first, err := sc.PipelineForAccount("work")
	require.NoError(t, err)
	second, err := sc.PipelineForAccount("work")
	require.NoError(t, err)

	assert.Same(t, first, second, "pipelines must be cached per account")
}
