package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T, files map[string]string) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".repochat", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.NoDirExists(t, dir)
}

func TestPromptStore_SeedsDirectoryOnFirstLoad(t *testing.T) {
	store, dir := newTestPromptStore(t, nil)

	_, err := store.Load(driven.PromptRepoQA)
	require.NoError(t, err)

	for _, f := range []string{"repo_qa.txt", "direct_chat.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	data, err := os.ReadFile(filepath.Join(dir, "direct_chat.txt"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDirectChatPrompt, string(data))
}

func TestPromptStore_SeedKeepsExistingFiles(t *testing.T) {
	custom := "Context:\n{context}\nQ: {question}"
	store, dir := newTestPromptStore(t, map[string]string{"repo_qa.txt": custom})

	_, err := store.Load(driven.PromptDirectChat)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "repo_qa.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		content string
		prompt  string
		want    string
	}{
		{"override", "Q: {question}\nA:", driven.PromptDirectChat, "Q: {question}\nA:"},
		{"trimmed", "\n\n  Q: {question}  \n", driven.PromptDirectChat, "Q: {question}"},
		{"empty override", "   ", driven.PromptDirectChat, domain.DefaultDirectChatPrompt},
		{"missing question", "Context: {context}", driven.PromptRepoQA, domain.DefaultRepoQAPrompt},
		{"missing context", "Q: {question}", driven.PromptRepoQA, domain.DefaultRepoQAPrompt},
		{"complete repo template", "{context}\n---\n{question}", driven.PromptRepoQA, "{context}\n---\n{question}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestPromptStore(t, map[string]string{tt.prompt + ".txt": tt.content})

			got, err := store.Load(tt.prompt)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptStore_Load_DeletedFileUsesBuiltIn(t *testing.T) {
	store, dir := newTestPromptStore(t, nil)
	_, err := store.Load(driven.PromptRepoQA)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "repo_qa.txt")))
	store.Reload()

	got, err := store.Load(driven.PromptRepoQA)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRepoQAPrompt, got)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t, map[string]string{"custom.txt": "anything goes"})

	got, err := store.Load("custom")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", got)

	_, err = store.Load("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptStore_Load_UnwritableDirFallsBack(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	got, err := store.Load(driven.PromptDirectChat)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDirectChatPrompt, got)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t, map[string]string{"direct_chat.txt": "v1 {question}"})

	first, err := store.Load(driven.PromptDirectChat)
	require.NoError(t, err)
	assert.Equal(t, "v1 {question}", first)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "direct_chat.txt"), []byte("v2 {question}"), 0600))

	cached, err := store.Load(driven.PromptDirectChat)
	require.NoError(t, err)
	assert.Equal(t, "v1 {question}", cached, "edits are not seen until Reload")

	store.Reload()
	fresh, err := store.Load(driven.PromptDirectChat)
	require.NoError(t, err)
	assert.Equal(t, "v2 {question}", fresh)
}

func TestPromptStore_ConcurrentLoads(t *testing.T) {
	store, _ := newTestPromptStore(t, nil)

	const n = 50
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptRepoQA)
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	for _, p := range results {
		assert.Equal(t, domain.DefaultRepoQAPrompt, p)
	}
}
