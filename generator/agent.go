package generator

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
)

// ContentModel is the language-model collaborator.
type ContentModel interface {
	GenerateTopics(ctx context.Context) ([]string, error)
	GenerateStructuredContent(ctx context.Context, title string) (BlogContent, error)
}

// Workspace is the record-tracking collaborator. Records live entirely on the
// backend; the agent never keeps a local copy across calls.
type Workspace interface {
	CreateRecord(ctx context.Context, title string, status Status) (RecordRef, error)
	AppendBlocks(ctx context.Context, recordID string, blocks []RichBlock) error
	UpdateStatus(ctx context.Context, recordID string, status Status) error
	GetRecord(ctx context.Context, recordID string) (RecordSnapshot, error)
}

// ImageGenerator produces an illustrative image for a prompt. Implementations
// may return an empty URL instead of an error when generation fails.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// BlogPublisher pushes a finished post to the external blog API and returns
// its response body verbatim.
type BlogPublisher interface {
	Publish(ctx context.Context, post BlogPost) (json.RawMessage, error)
}

// Agent drives the content pipeline against the injected collaborators.
type Agent struct {
	model     ContentModel
	workspace Workspace
	images    ImageGenerator
	publisher BlogPublisher
	verbose   bool
	logger    *log.Logger
}

func NewAgent(model ContentModel, workspace Workspace, images ImageGenerator, publisher BlogPublisher, verbose bool, logger *log.Logger) (*Agent, error) {
	if model == nil {
		return nil, errors.New("content model is required")
	}
	if workspace == nil {
		return nil, errors.New("workspace client is required")
	}
	if images == nil {
		return nil, errors.New("image generator is required")
	}
	if publisher == nil {
		return nil, errors.New("blog publisher is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{
		model:     model,
		workspace: workspace,
		images:    images,
		publisher: publisher,
		verbose:   verbose,
		logger:    logger,
	}, nil
}

func (a *Agent) infof(format string, args ...interface{}) {
	if !a.verbose {
		return
	}
	a.logger.Printf("[INFO] "+format, args...)
}

// GenerateBatch asks the model for topics, creates one record per non-blank
// topic, and runs the per-record pipelines concurrently. Results come back in
// topic order; one topic's failure never aborts its siblings. An error is
// returned only when topic generation itself fails, before any record exists.
func (a *Agent) GenerateBatch(ctx context.Context) ([]GenerationResult, error) {
	topics, err := a.model.GenerateTopics(ctx)
	if err != nil {
		return nil, &CollaboratorError{Op: "generate topics", Err: err}
	}
	a.infof("Model proposed %d topics", len(topics))

	// Records are created sequentially so result order matches topic order
	// and the workspace never sees concurrent creates on one database.
	type job struct {
		idx      int
		recordID string
		title    string
	}
	var results []GenerationResult
	var jobs []job
	for _, topic := range topics {
		title := strings.TrimSpace(topic)
		if title == "" {
			continue
		}
		ref, err := a.workspace.CreateRecord(ctx, title, StatusBacklog)
		if err != nil {
			a.logger.Printf("create record for %q failed: %v", title, err)
			results = append(results, GenerationResult{Title: title, Err: &CollaboratorError{Op: "create record", Err: err}})
			continue
		}
		a.infof("Created record %s for topic %q", ref.ID, title)
		results = append(results, GenerationResult{RecordID: ref.ID, Title: title})
		jobs = append(jobs, job{idx: len(results) - 1, recordID: ref.ID, title: title})
	}

	var wg sync.WaitGroup
	for _, j := range jobs {
		j := j // per-iteration copy; the goroutine must not share the loop variable under pre-1.22 semantics
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[j.idx] = a.GenerateOne(ctx, j.recordID, j.title)
		}()
	}
	wg.Wait()

	return results, nil
}

// GenerateOne runs the pipeline for one created record: structured content,
// an illustrative image (best effort), block rendering, block persistence,
// then the Draft status. Every failure folds into the returned result. The
// record itself is left behind on failure; a record stuck at Backlog is how an
// incomplete pipeline shows up in the workspace.
func (a *Agent) GenerateOne(ctx context.Context, recordID, title string) GenerationResult {
	result := GenerationResult{RecordID: recordID, Title: title}

	content, err := a.model.GenerateStructuredContent(ctx, title)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			result.Err = err
		} else {
			result.Err = &CollaboratorError{Op: "generate content", Err: err}
		}
		a.logger.Printf("record %s: content generation failed: %v", recordID, err)
		return result
	}

	imageURL, err := a.images.GenerateImage(ctx, content.ImagePrompt)
	if err != nil {
		// Image failure degrades the post to text-only, never fails the topic.
		a.logger.Printf("record %s: image generation failed, continuing without image: %v", recordID, err)
		imageURL = ""
	}

	blocks := BlocksFromContent(content, imageURL)
	if err := a.workspace.AppendBlocks(ctx, recordID, blocks); err != nil {
		result.Err = &CollaboratorError{Op: "append blocks", Err: err}
		a.logger.Printf("record %s: appending blocks failed: %v", recordID, err)
		return result
	}

	if err := a.workspace.UpdateStatus(ctx, recordID, StatusDraft); err != nil {
		result.Err = &CollaboratorError{Op: "update status", Err: err}
		a.logger.Printf("record %s: status update failed: %v", recordID, err)
		return result
	}

	a.infof("Record %s drafted with %d blocks", recordID, len(blocks))
	return result
}

// PublishBlog reads a finished record, forwards it to the blog API, and marks
// the record Published. The publisher's response body is returned verbatim.
// A record missing its title or content fails before the publisher is called.
func (a *Agent) PublishBlog(ctx context.Context, recordID string) (json.RawMessage, error) {
	snap, err := a.workspace.GetRecord(ctx, recordID)
	if err != nil {
		return nil, &CollaboratorError{Op: "get record", Err: err}
	}
	if strings.TrimSpace(snap.Title) == "" {
		return nil, &MissingFieldError{Field: "title"}
	}
	if strings.TrimSpace(snap.Content) == "" {
		return nil, &MissingFieldError{Field: "content"}
	}

	resp, err := a.publisher.Publish(ctx, BlogPost{
		Title:     snap.Title,
		Content:   snap.Content,
		ImageData: snap.ImageData,
	})
	if err != nil {
		return nil, &CollaboratorError{Op: "publish blog", Err: err}
	}

	if err := a.workspace.UpdateStatus(ctx, recordID, StatusPublished); err != nil {
		return nil, &CollaboratorError{Op: "update status", Err: err}
	}

	a.infof("Record %s published", recordID)
	return resp, nil
}
