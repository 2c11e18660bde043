package services

import (
	"context"
	"errors"
	"iter"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedder returns a fixed vector per text, or a vector keyed by text.
type mockEmbedder struct {
	model   string
	dims    int
	vectors map[string][]float32
	err     error
	pingErr error

	embedCalls atomic.Int32
	pings      atomic.Int32
	batchCalls atomic.Int32
	batchSizes []int
	mu         sync.Mutex
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{model: "mock-embed", dims: dims, vectors: make(map[string][]float32)}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(len(text)%7+1) / float32(i+1)
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	m.pings.Add(1)
	return m.pingErr
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return m.model }
func (m *mockEmbedder) Close() error      { return nil }

// mockLLM records prompts and returns a canned response.
type mockLLM struct {
	response string
	err      error

	mu       sync.Mutex
	prompts  []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	hold     chan struct{}
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if m.hold != nil {
		<-m.hold
	}

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockIndexStore keeps indexes in a map.
type mockIndexStore struct {
	mu      sync.Mutex
	indexes map[string]*domain.Index
	saveErr error
	loadErr map[string]error
	saves   int
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{indexes: make(map[string]*domain.Index), loadErr: make(map[string]error)}
}

func (m *mockIndexStore) Save(_ context.Context, idx *domain.Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.indexes[idx.Name] = idx
	return nil
}

func (m *mockIndexStore) Load(_ context.Context, name string) (*domain.Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadErr[name]; err != nil {
		return nil, err
	}
	idx, ok := m.indexes[name]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}
	return idx, nil
}

func (m *mockIndexStore) List(_ context.Context) ([]domain.IndexInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.IndexInfo
	for _, idx := range m.indexes {
		out = append(out, domain.IndexInfo{
			Name: idx.Name, Model: idx.Model, Dimensions: idx.Dimensions,
			Chunks: idx.Len(), CreatedAt: idx.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockIndexStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, name)
	return nil
}

// mockRetriever returns a fixed ranking.
type mockRetriever struct {
	name    string
	results []domain.RetrievedChunk
	err     error
	started chan<- struct{}
	release <-chan struct{}
}

func (m *mockRetriever) Name() string { return m.name }

func (m *mockRetriever) Retrieve(ctx context.Context, _ []float32) ([]domain.RetrievedChunk, error) {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// rankedChunks builds a ranking of chunks for repo from the given sources.
func rankedChunks(repo string, sources ...string) []domain.RetrievedChunk {
	out := make([]domain.RetrievedChunk, len(sources))
	for i, src := range sources {
		out[i] = domain.RetrievedChunk{
			Chunk: domain.Chunk{
				ID:       repo + ":" + src,
				Content:  "content of " + src,
				Metadata: map[string]string{domain.MetaSource: src, domain.MetaRepository: repo},
			},
			Repository: repo,
			Rank:       i + 1,
		}
	}
	return out
}

// recordingSink records replies and optionally fails.
type recordingSink struct {
	mu      sync.Mutex
	replies []domain.Reply
	err     error
}

func (s *recordingSink) Send(_ context.Context, reply domain.Reply) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, reply)
	return nil
}

func (s *recordingSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replies))
	for i, r := range s.replies {
		out[i] = r.Text
	}
	return out
}

// mockLoader yields fixed documents or an error.
type mockLoader struct {
	category domain.Category
	docs     []domain.Document
	err      error
	after    []domain.Document // yielded after err
}

func (m *mockLoader) Category() domain.Category { return m.category }

func (m *mockLoader) Load(_ context.Context) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		for _, d := range m.docs {
			if !yield(d, nil) {
				return
			}
		}
		if m.err != nil && !yield(domain.Document{}, m.err) {
			return
		}
		for _, d := range m.after {
			if !yield(d, nil) {
				return
			}
		}
	}
}

// mockLoaderFactory serves mock loaders in category order.
type mockLoaderFactory struct {
	loaders map[domain.Category]*mockLoader
	failing map[domain.Category]error
}

func (f *mockLoaderFactory) Loader(c domain.Category) (driven.DocumentLoader, error) {
	if err := f.failing[c]; err != nil {
		return nil, err
	}
	l, ok := f.loaders[c]
	if !ok {
		return nil, domain.ErrUnsupportedCategory
	}
	return l, nil
}

func (f *mockLoaderFactory) Categories() []domain.Category {
	var out []domain.Category
	for _, c := range domain.AllCategories() {
		if _, ok := f.loaders[c]; ok {
			out = append(out, c)
		} else if _, ok := f.failing[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// factoryFor returns a LoaderFactoryFunc that serves factories by root path.
func factoryFor(byRoot map[string]*mockLoaderFactory) driven.LoaderFactoryFunc {
	return func(root string) (driven.LoaderFactory, error) {
		f, ok := byRoot[root]
		if !ok {
			return nil, errors.New("no such root: " + root)
		}
		return f, nil
	}
}

// lineSplitter chunks a document by line.
type lineSplitter struct{}

func (lineSplitter) Split(doc domain.Document) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for i, line := range strings.Split(doc.Content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, domain.Chunk{
			ID:       doc.Source() + "#" + line,
			Content:  line,
			Position: i,
			Metadata: domain.CopyMetadata(doc.Metadata),
		})
	}
	return out, nil
}

// mockPromptStore returns templates from a map.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockSessionStore keeps sessions in a map.
type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.SessionState
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.SessionState)}
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionStore) Put(_ context.Context, s *domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// mockMetrics counts observations.
type mockMetrics struct {
	mu         sync.Mutex
	builds     []domain.BuildReport
	messages   []domain.ReplyKind
	retrievals []int
}

func (m *mockMetrics) ObserveBuild(r domain.BuildReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, r)
}

func (m *mockMetrics) ObserveMessage(_ domain.ChatProfile, kind domain.ReplyKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, kind)
}

func (m *mockMetrics) ObserveRetrieval(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrievals = append(m.retrievals, n)
}
