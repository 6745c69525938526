package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
)

type fakeModel struct {
	topics    []string
	topicsErr error
	contentFn func(title string) (BlogContent, error)
}

func (f *fakeModel) GenerateTopics(ctx context.Context) ([]string, error) {
	return f.topics, f.topicsErr
}

func (f *fakeModel) GenerateStructuredContent(ctx context.Context, title string) (BlogContent, error) {
	if f.contentFn != nil {
		return f.contentFn(title)
	}
	return contentFor(title), nil
}

func contentFor(title string) BlogContent {
	return BlogContent{
		Title: title,
		Content: []ContentUnit{
			{Type: UnitHeading, HeadingType: "h1", Text: title},
			{Type: UnitParagraph, Text: "Body for " + title + "."},
		},
		Summary:     "Summary for " + title + ".",
		ImagePrompt: "Illustration for " + title + ".",
	}
}

type fakeWorkspace struct {
	mu        sync.Mutex
	nextID    int
	created   []string
	blocks    map[string][]RichBlock
	statuses  map[string][]Status
	snapshots map[string]RecordSnapshot
	createErr map[string]error
	appendErr map[string]error
	statusErr map[string]error
	getErr    error
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{
		blocks:    make(map[string][]RichBlock),
		statuses:  make(map[string][]Status),
		snapshots: make(map[string]RecordSnapshot),
	}
}

func (f *fakeWorkspace) CreateRecord(ctx context.Context, title string, status Status) (RecordRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[title]; err != nil {
		return RecordRef{}, err
	}
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.created = append(f.created, title)
	f.statuses[id] = append(f.statuses[id], status)
	return RecordRef{ID: id, Title: title}, nil
}

func (f *fakeWorkspace) AppendBlocks(ctx context.Context, recordID string, blocks []RichBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.appendErr[recordID]; err != nil {
		return err
	}
	f.blocks[recordID] = append(f.blocks[recordID], blocks...)
	return nil
}

func (f *fakeWorkspace) UpdateStatus(ctx context.Context, recordID string, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statusErr[recordID]; err != nil {
		return err
	}
	f.statuses[recordID] = append(f.statuses[recordID], status)
	return nil
}

func (f *fakeWorkspace) GetRecord(ctx context.Context, recordID string) (RecordSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return RecordSnapshot{}, f.getErr
	}
	return f.snapshots[recordID], nil
}

func (f *fakeWorkspace) lastStatus(recordID string) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.statuses[recordID]
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1]
}

type fakeImages struct {
	url string
	err error

	mu      sync.Mutex
	prompts []string
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakePublisher struct {
	resp json.RawMessage
	err  error

	mu    sync.Mutex
	posts []BlogPost
}

func (f *fakePublisher) Publish(ctx context.Context, post BlogPost) (json.RawMessage, error) {
	f.mu.Lock()
	f.posts = append(f.posts, post)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestAgent(t *testing.T, model ContentModel, ws Workspace, images ImageGenerator, pub BlogPublisher) *Agent {
	t.Helper()
	agent, err := NewAgent(model, ws, images, pub, false, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}
	return agent
}

func TestNewAgent_RequiresCollaborators(t *testing.T) {
	model := &fakeModel{}
	ws := newFakeWorkspace()
	images := &fakeImages{}
	pub := &fakePublisher{}

	if _, err := NewAgent(nil, ws, images, pub, false, nil); err == nil {
		t.Error("expected error for nil model")
	}
	if _, err := NewAgent(model, nil, images, pub, false, nil); err == nil {
		t.Error("expected error for nil workspace")
	}
	if _, err := NewAgent(model, ws, nil, pub, false, nil); err == nil {
		t.Error("expected error for nil image generator")
	}
	if _, err := NewAgent(model, ws, images, nil, false, nil); err == nil {
		t.Error("expected error for nil publisher")
	}
}

func TestAgent_GenerateBatch_AllSucceed(t *testing.T) {
	model := &fakeModel{topics: []string{"Topic A", "Topic B", "Topic C"}}
	ws := newFakeWorkspace()
	images := &fakeImages{url: "https://cdn.example.com/img.png"}
	agent := newTestAgent(t, model, ws, images, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	for i, topic := range model.topics {
		res := results[i]
		if res.Title != topic {
			t.Errorf("results[%d].Title = %q, want %q (order must match topics)", i, res.Title, topic)
		}
		if !res.Succeeded() {
			t.Errorf("results[%d] failed: %v", i, res.Err)
			continue
		}
		if got := ws.lastStatus(res.RecordID); got != StatusDraft {
			t.Errorf("record %s status = %q, want %q", res.RecordID, got, StatusDraft)
		}
		blocks := ws.blocks[res.RecordID]
		if len(blocks) == 0 {
			t.Errorf("record %s has no blocks", res.RecordID)
			continue
		}
		last := blocks[len(blocks)-1]
		if last.Type != BlockImage || last.URL != images.url {
			t.Errorf("record %s last block = %+v, want the image block", res.RecordID, last)
		}
	}
}

func TestAgent_GenerateBatch_TopicsErrorPropagates(t *testing.T) {
	model := &fakeModel{topicsErr: errors.New("model offline")}
	ws := newFakeWorkspace()
	agent := newTestAgent(t, model, ws, &fakeImages{}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err == nil {
		t.Fatal("expected an error when topic generation fails")
	}
	var cerr *CollaboratorError
	if !errors.As(err, &cerr) || cerr.Op != "generate topics" {
		t.Errorf("error = %v, want a *CollaboratorError for generate topics", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
	if len(ws.created) != 0 {
		t.Errorf("created %d records, want 0", len(ws.created))
	}
}

func TestAgent_GenerateBatch_SkipsBlankTopics(t *testing.T) {
	model := &fakeModel{topics: []string{"Real Topic", "   ", "", "Another One"}}
	ws := newFakeWorkspace()
	agent := newTestAgent(t, model, ws, &fakeImages{url: "https://img"}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Real Topic" || results[1].Title != "Another One" {
		t.Errorf("result titles = %q, %q", results[0].Title, results[1].Title)
	}
}

func TestAgent_GenerateBatch_EmptyTopics(t *testing.T) {
	model := &fakeModel{topics: nil}
	ws := newFakeWorkspace()
	agent := newTestAgent(t, model, ws, &fakeImages{}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if len(ws.created) != 0 {
		t.Errorf("created %d records, want 0", len(ws.created))
	}
}

func TestAgent_GenerateBatch_CreateFailureDoesNotAbortBatch(t *testing.T) {
	model := &fakeModel{topics: []string{"A", "B", "C"}}
	ws := newFakeWorkspace()
	ws.createErr = map[string]error{"B": errors.New("database full")}
	agent := newTestAgent(t, model, ws, &fakeImages{url: "https://img"}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if !results[0].Succeeded() || !results[2].Succeeded() {
		t.Errorf("siblings of the failed topic should succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Succeeded() {
		t.Fatal("results[1] should carry the create failure")
	}
	if results[1].Title != "B" || results[1].RecordID != "" {
		t.Errorf("failed result = %+v, want title B and no record id", results[1])
	}
	var cerr *CollaboratorError
	if !errors.As(results[1].Err, &cerr) || cerr.Op != "create record" {
		t.Errorf("results[1].Err = %v, want a create record *CollaboratorError", results[1].Err)
	}
}

func TestAgent_GenerateBatch_ContentFailureLeavesRecordInBacklog(t *testing.T) {
	model := &fakeModel{
		topics: []string{"A", "B", "C"},
		contentFn: func(title string) (BlogContent, error) {
			if title == "B" {
				return BlogContent{}, errors.New("model refused")
			}
			return contentFor(title), nil
		},
	}
	ws := newFakeWorkspace()
	agent := newTestAgent(t, model, ws, &fakeImages{url: "https://img"}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	failed := results[1]
	if failed.Succeeded() {
		t.Fatal("results[1] should fail")
	}
	var cerr *CollaboratorError
	if !errors.As(failed.Err, &cerr) || cerr.Op != "generate content" {
		t.Errorf("failed.Err = %v, want a generate content *CollaboratorError", failed.Err)
	}
	if len(ws.blocks[failed.RecordID]) != 0 {
		t.Errorf("failed record has %d blocks, want 0", len(ws.blocks[failed.RecordID]))
	}
	if got := ws.lastStatus(failed.RecordID); got != StatusBacklog {
		t.Errorf("failed record status = %q, want %q", got, StatusBacklog)
	}
	if !results[0].Succeeded() || !results[2].Succeeded() {
		t.Error("siblings of the failed topic should still be drafted")
	}
}

func TestAgent_GenerateBatch_ParseErrorKeptAsIs(t *testing.T) {
	model := &fakeModel{
		topics: []string{"A"},
		contentFn: func(string) (BlogContent, error) {
			return BlogContent{}, &ParseError{Cause: errors.New("bad json")}
		},
	}
	ws := newFakeWorkspace()
	agent := newTestAgent(t, model, ws, &fakeImages{}, &fakePublisher{})

	results, err := agent.GenerateBatch(context.Background())
	if err != nil {
		t.Fatalf("GenerateBatch() error = %v", err)
	}
	var perr *ParseError
	if !errors.As(results[0].Err, &perr) {
		t.Errorf("results[0].Err = %v (%T), want a *ParseError", results[0].Err, results[0].Err)
	}
}

func TestAgent_GenerateOne_ImageFailureContinuesWithoutImage(t *testing.T) {
	ws := newFakeWorkspace()
	images := &fakeImages{err: errors.New("image service down")}
	agent := newTestAgent(t, &fakeModel{}, ws, images, &fakePublisher{})

	ref, err := ws.CreateRecord(context.Background(), "Topic", StatusBacklog)
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	result := agent.GenerateOne(context.Background(), ref.ID, ref.Title)
	if !result.Succeeded() {
		t.Fatalf("GenerateOne() failed: %v", result.Err)
	}
	for i, block := range ws.blocks[ref.ID] {
		if block.Type == BlockImage {
			t.Errorf("block[%d] is an image block, want none after image failure", i)
		}
	}
	if got := ws.lastStatus(ref.ID); got != StatusDraft {
		t.Errorf("status = %q, want %q", got, StatusDraft)
	}
}

func TestAgent_GenerateOne_AppendFailure(t *testing.T) {
	ws := newFakeWorkspace()
	agent := newTestAgent(t, &fakeModel{}, ws, &fakeImages{url: "https://img"}, &fakePublisher{})

	ref, err := ws.CreateRecord(context.Background(), "Topic", StatusBacklog)
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	ws.appendErr = map[string]error{ref.ID: errors.New("blocks rejected")}

	result := agent.GenerateOne(context.Background(), ref.ID, ref.Title)
	if result.Succeeded() {
		t.Fatal("expected a failure when appending blocks fails")
	}
	var cerr *CollaboratorError
	if !errors.As(result.Err, &cerr) || cerr.Op != "append blocks" {
		t.Errorf("result.Err = %v, want an append blocks *CollaboratorError", result.Err)
	}
	if got := ws.lastStatus(ref.ID); got != StatusBacklog {
		t.Errorf("status = %q, want %q (record left behind)", got, StatusBacklog)
	}
}

func TestAgent_PublishBlog_Success(t *testing.T) {
	ws := newFakeWorkspace()
	ws.snapshots["rec-9"] = RecordSnapshot{
		Title:     "Shipping It",
		Content:   "# Shipping It\n\nIt shipped.",
		ImageData: "https://cdn.example.com/ship.png",
		Status:    StatusDraft,
	}
	pub := &fakePublisher{resp: json.RawMessage(`{"id": 42, "slug": "shipping-it"}`)}
	agent := newTestAgent(t, &fakeModel{}, ws, &fakeImages{}, pub)

	resp, err := agent.PublishBlog(context.Background(), "rec-9")
	if err != nil {
		t.Fatalf("PublishBlog() error = %v", err)
	}
	if string(resp) != `{"id": 42, "slug": "shipping-it"}` {
		t.Errorf("response = %s, want the publisher body verbatim", resp)
	}

	if len(pub.posts) != 1 {
		t.Fatalf("publisher called %d times, want 1", len(pub.posts))
	}
	post := pub.posts[0]
	if post.Title != "Shipping It" || post.Content == "" || post.ImageData != "https://cdn.example.com/ship.png" {
		t.Errorf("published post = %+v", post)
	}
	if got := ws.lastStatus("rec-9"); got != StatusPublished {
		t.Errorf("status = %q, want %q", got, StatusPublished)
	}
}

func TestAgent_PublishBlog_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		snapshot  RecordSnapshot
		wantField string
	}{
		{"missing title", RecordSnapshot{Content: "body"}, "title"},
		{"missing content", RecordSnapshot{Title: "T"}, "content"},
		{"blank content", RecordSnapshot{Title: "T", Content: "   "}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newFakeWorkspace()
			ws.snapshots["rec-1"] = tt.snapshot
			pub := &fakePublisher{resp: json.RawMessage(`{}`)}
			agent := newTestAgent(t, &fakeModel{}, ws, &fakeImages{}, pub)

			_, err := agent.PublishBlog(context.Background(), "rec-1")
			if err == nil {
				t.Fatal("expected an error")
			}
			var merr *MissingFieldError
			if !errors.As(err, &merr) {
				t.Fatalf("error = %v (%T), want *MissingFieldError", err, err)
			}
			if merr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", merr.Field, tt.wantField)
			}
			if len(pub.posts) != 0 {
				t.Error("publisher must not be called for an incomplete record")
			}
			if got := ws.lastStatus("rec-1"); got != "" {
				t.Errorf("status was updated to %q, want no update", got)
			}
		})
	}
}

func TestAgent_PublishBlog_GetRecordError(t *testing.T) {
	ws := newFakeWorkspace()
	ws.getErr = errors.New("page gone")
	agent := newTestAgent(t, &fakeModel{}, ws, &fakeImages{}, &fakePublisher{})

	_, err := agent.PublishBlog(context.Background(), "rec-1")
	var cerr *CollaboratorError
	if !errors.As(err, &cerr) || cerr.Op != "get record" {
		t.Errorf("error = %v, want a get record *CollaboratorError", err)
	}
}

func TestAgent_PublishBlog_PublisherErrorSkipsStatusUpdate(t *testing.T) {
	ws := newFakeWorkspace()
	ws.snapshots["rec-1"] = RecordSnapshot{Title: "T", Content: "body"}
	pub := &fakePublisher{err: errors.New("api rejected the post")}
	agent := newTestAgent(t, &fakeModel{}, ws, &fakeImages{}, pub)

	_, err := agent.PublishBlog(context.Background(), "rec-1")
	var cerr *CollaboratorError
	if !errors.As(err, &cerr) || cerr.Op != "publish blog" {
		t.Errorf("error = %v, want a publish blog *CollaboratorError", err)
	}
	if got := ws.lastStatus("rec-1"); got == StatusPublished {
		t.Error("record must not be marked Published when the publisher fails")
	}
}
