package reviews

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/enrich"
	"grantreview-backend/internal/llm"
)

const sampleApplication = `{
	"id": "app-1",
	"name": "Acme Application",
	"content": "Company/Project Name: Acme Protocol\nGitHub Repository: acme/protocol\nProblem/Solution: Slow settlement on chain.\n\nWebsite: https://acme.example",
	"meta_data": {"user_id": "user-1", "chat_id": "chat-9", "application_date": "2026-08-15"},
	"document_type": "application"
}`

type fakeLLM struct {
	mu     sync.Mutex
	inputs []llm.ReviewInput
	text   string
	err    error
}

func (f *fakeLLM) Review(_ context.Context, input llm.ReviewInput) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeLLM) lastInput(t *testing.T) llm.ReviewInput {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.inputs, "reviewer was never invoked")
	return f.inputs[len(f.inputs)-1]
}

type fakeRepo struct {
	addUser   string
	addApp    *application.Record
	addText   string
	addCalls  int
	addErr    error
	history   []Record
	getErr    error
	getLatest Record
	latestErr error
}

func (f *fakeRepo) AddReview(_ context.Context, userID string, app *application.Record, reviewText string) (string, error) {
	f.addCalls++
	f.addUser = userID
	f.addApp = app
	f.addText = reviewText
	if f.addErr != nil {
		return "", f.addErr
	}
	return "hash", nil
}

func (f *fakeRepo) GetReviews(context.Context, string) ([]Record, error) {
	return f.history, f.getErr
}

func (f *fakeRepo) GetLatestReview(context.Context, string) (Record, error) {
	return f.getLatest, f.latestErr
}

type fakeAdapter struct {
	name    string
	result  enrich.Result
	queries []string
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Enrich(_ context.Context, query string) enrich.Result {
	f.queries = append(f.queries, query)
	res := f.result
	res.Adapter = f.name
	return res
}

type replyRecorder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *replyRecorder) send(_ context.Context, text string) error {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	return r.err
}

func newTestService(client *fakeLLM, repo *fakeRepo) (*Service, *fakeAdapter, *fakeAdapter) {
	github := &fakeAdapter{name: "github_commit_activity", result: enrich.Result{OK: true, Summary: "42 commits"}}
	research := &fakeAdapter{name: "market_research", result: enrich.Result{OK: true, Summary: "sparse field"}}
	return &Service{Repo: repo, LLM: client, GitHub: github, Research: research}, github, research
}

func TestReviewNewApplicationPersistsBeforeReply(t *testing.T) {
	client := &fakeLLM{text: "Score: 82/100"}
	repo := &fakeRepo{}
	svc, github, research := newTestService(client, repo)
	reply := &replyRecorder{}

	message := "\U0001F4DD " + NewApplicationMarker + "\n\n" + sampleApplication
	out, err := svc.Review(context.Background(), message, "user-1", "grant_review_user-1_chat-9", reply.send)
	require.NoError(t, err)
	assert.Equal(t, "Score: 82/100", out)

	require.Equal(t, 1, repo.addCalls)
	assert.Equal(t, "user-1", repo.addUser)
	require.NotNil(t, repo.addApp)
	assert.Equal(t, "app-1", repo.addApp.ID)
	assert.Equal(t, "Score: 82/100", repo.addText)

	require.Len(t, reply.texts, 1)
	assert.Equal(t, "Score: 82/100", reply.texts[0])

	// Both adapters ran with queries derived from the extracted sections.
	require.Len(t, github.queries, 1)
	assert.Equal(t, "acme/protocol", github.queries[0])
	require.Len(t, research.queries, 1)
	assert.Contains(t, research.queries[0], "Acme Protocol")

	input := client.lastInput(t)
	assert.Equal(t, "grant_review_user-1_chat-9", input.SessionID)
	assert.Contains(t, input.Context, "42 commits")
	assert.Contains(t, input.Context, "sparse field")
	assert.Len(t, input.Tools, 2)
}

func TestReviewReviewerFailureSendsApologyAndSkipsLedger(t *testing.T) {
	client := &fakeLLM{err: errors.New("model timeout")}
	repo := &fakeRepo{}
	svc, _, _ := newTestService(client, repo)
	reply := &replyRecorder{}

	message := NewApplicationMarker + "\n\n" + sampleApplication
	_, err := svc.Review(context.Background(), message, "user-1", "s", reply.send)
	require.Error(t, err)

	assert.Zero(t, repo.addCalls, "failed review must not reach the ledger")
	require.Len(t, reply.texts, 1)
	assert.Equal(t, apologyReply, reply.texts[0])
}

func TestReviewLedgerFailureReportsErrorNotReviewText(t *testing.T) {
	client := &fakeLLM{text: "review text"}
	repo := &fakeRepo{addErr: ErrLedgerUnavailable}
	svc, _, _ := newTestService(client, repo)
	reply := &replyRecorder{}

	message := NewApplicationMarker + "\n\n" + sampleApplication
	out, err := svc.Review(context.Background(), message, "user-1", "s", reply.send)
	require.ErrorIs(t, err, ErrLedgerUnavailable)
	assert.Empty(t, out)

	// A reply is never sent for a review that failed to persist.
	require.Len(t, reply.texts, 1)
	assert.Equal(t, ledgerReply, reply.texts[0])
}

func TestReviewReplyFailureIsNotPropagated(t *testing.T) {
	client := &fakeLLM{text: "review text"}
	repo := &fakeRepo{}
	svc, _, _ := newTestService(client, repo)
	reply := &replyRecorder{err: errors.New("webhook down")}

	message := NewApplicationMarker + "\n\n" + sampleApplication
	_, err := svc.Review(context.Background(), message, "user-1", "s", reply.send)
	require.NoError(t, err, "delivery failure must not fail the flow")
	assert.Equal(t, 1, repo.addCalls)
}

func TestReviewUnparsablePayloadStillConsultsReviewer(t *testing.T) {
	client := &fakeLLM{text: "please resubmit"}
	repo := &fakeRepo{}
	svc, github, _ := newTestService(client, repo)
	reply := &replyRecorder{}

	message := NewApplicationMarker + "\n\n{not json"
	out, err := svc.Review(context.Background(), message, "user-1", "s", reply.send)
	require.NoError(t, err)
	assert.Equal(t, "please resubmit", out)

	input := client.lastInput(t)
	assert.Contains(t, input.Context, "could not be parsed")
	assert.Empty(t, github.queries, "adapters must not run without sections")

	// The outcome is still recorded, with no application attached.
	require.Equal(t, 1, repo.addCalls)
	assert.Nil(t, repo.addApp)
}

func TestReviewFollowUpUsesHistoryWithoutWriting(t *testing.T) {
	client := &fakeLLM{text: "the score was 82"}
	repo := &fakeRepo{history: []Record{{Content: "Score: 82/100"}}}
	svc, _, _ := newTestService(client, repo)
	reply := &replyRecorder{}

	out, err := svc.Review(context.Background(), "What score did I get?", "user-1", "s", reply.send)
	require.NoError(t, err)
	assert.Equal(t, "the score was 82", out)

	assert.Zero(t, repo.addCalls, "follow-up must not write to the ledger")
	input := client.lastInput(t)
	assert.Contains(t, input.Context, "Score: 82/100")
	assert.Contains(t, input.Context, "What score did I get?")
}

func TestReviewFollowUpLedgerFaultAbortsFlow(t *testing.T) {
	client := &fakeLLM{text: "unused"}
	repo := &fakeRepo{getErr: ErrLedgerUnavailable}
	svc, _, _ := newTestService(client, repo)
	reply := &replyRecorder{}

	out, err := svc.Review(context.Background(), "What score did I get?", "user-1", "s", reply.send)
	require.ErrorIs(t, err, ErrLedgerUnavailable)
	assert.Empty(t, out)

	// The reviewer must never be consulted with a context claiming the
	// user has no history when the history could not be read.
	client.mu.Lock()
	assert.Empty(t, client.inputs)
	client.mu.Unlock()

	require.Len(t, reply.texts, 1)
	assert.Equal(t, historyReply, reply.texts[0])
}
