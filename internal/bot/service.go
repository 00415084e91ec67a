// Package bot orchestrates the reply workflow: fetching comments,
// generating replies, enforcing uniqueness and posting results.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/drafts"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/moltbook"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/reply"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/state"
)

// Service runs reply passes over the agent's posts.
type Service struct {
	client       *moltbook.Client
	store        *state.Store
	gen          *reply.Generator
	drafts       *drafts.Writer
	limiter      *rate.Limiter
	log          zerolog.Logger
	maxPerRun    int
	draftOnly    bool
	commentSort  string
	commentLimit int

	// reauth, when set, is called once per run after an auth failure to
	// obtain a fresh client before the send is retried.
	reauth func() (*moltbook.Client, error)
}

// Config holds the reply service configuration.
type Config struct {
	MaxPerRun    int
	PacePerMin   float64
	DraftOnly    bool   // write drafts, never send
	CommentSort  string // sort order when fetching comments
	CommentLimit int    // page size when fetching comments
	Reauth       func() (*moltbook.Client, error)
}

// NewService creates a reply service.
func NewService(client *moltbook.Client, store *state.Store, gen *reply.Generator,
	draftWriter *drafts.Writer, cfg Config, log zerolog.Logger) *Service {
	maxPerRun := cfg.MaxPerRun
	if maxPerRun <= 0 {
		maxPerRun = 5
	}
	pace := cfg.PacePerMin
	if pace <= 0 {
		pace = 2.0
	}
	sort := cfg.CommentSort
	if sort == "" {
		sort = "new"
	}
	limit := cfg.CommentLimit
	if limit <= 0 {
		limit = 100
	}
	return &Service{
		client:       client,
		store:        store,
		gen:          gen,
		drafts:       draftWriter,
		limiter:      rate.NewLimiter(rate.Limit(pace/60.0), 1),
		log:          log,
		maxPerRun:    maxPerRun,
		draftOnly:    cfg.DraftOnly,
		commentSort:  sort,
		commentLimit: limit,
		reauth:       cfg.Reauth,
	}
}

// RunRequest selects which posts a reply pass covers.
type RunRequest struct {
	PostID string // reply on this post only
	All    bool   // reply across all of the agent's posts
}

// ReplyReport describes what happened to one comment during a run.
type ReplyReport struct {
	PostID    string
	CommentID string
	Author    string
	Text      string
	Status    reply.Status
	Outcome   reply.Outcome
	DraftPath string
}

// RunResult summarizes a reply pass.
type RunResult struct {
	RunID      string
	Considered int
	Skipped    int
	Replies    []ReplyReport
	Duration   time.Duration
}

// Sent counts the replies that actually reached the platform.
func (r *RunResult) Sent() int {
	n := 0
	for _, rep := range r.Replies {
		if rep.Outcome == reply.OutcomeSent {
			n++
		}
	}
	return n
}

// budgetUsed counts replies that consumed the per-run budget. Exhausted
// comments cost nothing: no draft was written and nothing was sent.
func (r *RunResult) budgetUsed() int {
	n := 0
	for _, rep := range r.Replies {
		if rep.Outcome != reply.OutcomeExhausted {
			n++
		}
	}
	return n
}

// Run executes one reply pass. It never replies twice to the same
// comment and stops after the configured per-run budget.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{RunID: uuid.NewString()}

	agent, err := s.resolveAgent(ctx)
	if err != nil {
		return nil, err
	}

	postIDs, err := s.selectPosts(ctx, req, agent)
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		s.log.Info().Str("run_id", result.RunID).Msg("no posts to scan")
		result.Duration = time.Since(start)
		return result, nil
	}

	dedup, err := s.store.LoadDedupState()
	if err != nil {
		return nil, fmt.Errorf("failed to load dedup state: %w", err)
	}

	for _, postID := range postIDs {
		if result.budgetUsed() >= s.maxPerRun {
			break
		}
		if err := s.runPost(ctx, postID, agent, dedup, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	s.log.Info().
		Str("run_id", result.RunID).
		Int("considered", result.Considered).
		Int("skipped", result.Skipped).
		Int("sent", result.Sent()).
		Dur("duration", result.Duration).
		Msg("reply run finished")
	return result, nil
}

// resolveAgent returns the bot's platform identity, cached in the state
// store after the first lookup.
func (s *Service) resolveAgent(ctx context.Context) (moltbook.Agent, error) {
	if id, name, err := s.store.Agent(); err == nil && id != "" {
		return moltbook.Agent{ID: id, Name: name}, nil
	}

	agent, err := s.client.GetMe(ctx)
	if err != nil {
		return moltbook.Agent{}, fmt.Errorf("failed to resolve own identity: %w", err)
	}
	if err := s.store.SetAgent(agent.ID, agent.Name); err != nil {
		s.log.Warn().Err(err).Msg("could not cache agent identity")
	}
	return agent, nil
}

func (s *Service) selectPosts(ctx context.Context, req RunRequest, agent moltbook.Agent) ([]string, error) {
	if req.PostID != "" {
		return []string{req.PostID}, nil
	}

	profile, err := s.client.GetProfile(ctx, agent.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch own profile: %w", err)
	}
	posts := moltbook.ExtractProfilePosts(profile)

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	if !req.All && len(ids) > 1 {
		ids = ids[:1]
	}
	return ids, nil
}

func (s *Service) runPost(ctx context.Context, postID string, agent moltbook.Agent,
	dedup *reply.DedupState, result *RunResult) error {
	comments, err := s.client.GetPostComments(ctx, postID, s.commentSort, s.commentLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch comments for post %s: %w", postID, err)
	}

	responded := moltbook.InferRespondedTo(comments, agent.ID)
	recorded, err := s.store.RespondedComments(postID)
	if err != nil {
		return fmt.Errorf("failed to load responded comments: %w", err)
	}
	for id := range recorded {
		responded[id] = struct{}{}
	}

	for _, c := range comments {
		if result.budgetUsed() >= s.maxPerRun {
			return nil
		}
		result.Considered++

		if s.skipComment(c, agent, responded) {
			result.Skipped++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		report, err := s.replyTo(ctx, postID, c, dedup, result.RunID)
		if err != nil {
			return err
		}
		result.Replies = append(result.Replies, report)
	}
	return nil
}

// skipComment filters out comments that must never receive a reply: the
// bot's own, nested replies, and anything already answered.
func (s *Service) skipComment(c moltbook.Comment, agent moltbook.Agent, responded map[string]struct{}) bool {
	if c.ID == "" {
		return true
	}
	if c.Author.ID != "" && c.Author.ID == agent.ID {
		return true
	}
	if agent.Name != "" && strings.EqualFold(c.Author.Name, agent.Name) {
		return true
	}
	if c.ParentID != "" {
		return true
	}
	if _, ok := responded[c.ID]; ok {
		return true
	}
	return false
}

func (s *Service) replyTo(ctx context.Context, postID string, c moltbook.Comment,
	dedup *reply.DedupState, runID string) (ReplyReport, error) {
	report := ReplyReport{PostID: postID, CommentID: c.ID, Author: c.Author.Name}

	commentCtx := reply.NewCommentContext(postID, c.ID, c.Author.Name, c.Content, c.CreatedAt)
	authorKey := reply.AuthorKey(c.Author.ID, c.Author.Name)

	candidate := s.gen.Generate(commentCtx)
	text, hash, status := reply.EnsureUnique(candidate, dedup, postID, authorKey, c.ID)
	report.Status = status

	if status == reply.StatusExhausted {
		report.Outcome = reply.OutcomeExhausted
		s.log.Warn().
			Str("post_id", postID).
			Str("comment_id", c.ID).
			Msg("could not produce a unique reply, leaving comment for a later run")
		return report, nil
	}

	draftPath, err := s.drafts.Save(postID, c.ID, text)
	if err != nil {
		return report, fmt.Errorf("failed to save draft: %w", err)
	}
	report.Text = text
	report.DraftPath = draftPath
	report.Outcome = reply.OutcomeDraftedOnly

	if s.draftOnly {
		s.log.Info().
			Str("post_id", postID).
			Str("comment_id", c.ID).
			Str("draft", draftPath).
			Msg("draft only, reply not sent")
		return report, nil
	}

	payload, err := s.send(ctx, postID, c.ID, text)
	if err != nil {
		return report, err
	}

	if moltbook.IsDryRun(payload) {
		report.Outcome = reply.OutcomeDryRunOnly
		s.log.Info().
			Str("post_id", postID).
			Str("comment_id", c.ID).
			Str("draft", draftPath).
			Msg("dry run, reply drafted but not sent")
		return report, nil
	}

	report.Outcome = reply.OutcomeSent
	rec := state.ReplyRecord{
		ID:        uuid.NewString(),
		RunID:     runID,
		PostID:    postID,
		CommentID: c.ID,
		AuthorKey: authorKey,
		Hash:      hash,
		Status:    status,
		Outcome:   reply.OutcomeSent,
		DraftPath: draftPath,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.RecordReply(rec); err != nil {
		return report, fmt.Errorf("reply sent but state update failed: %w", err)
	}

	s.log.Info().
		Str("post_id", postID).
		Str("comment_id", c.ID).
		Str("status", string(status)).
		Msg("reply sent")
	return report, nil
}

// send posts the reply, allowing one re-authentication attempt when the
// key has gone stale. Writes are never retried blindly; a second
// failure aborts the run.
func (s *Service) send(ctx context.Context, postID, commentID, text string) (map[string]any, error) {
	payload, err := s.client.CreateComment(ctx, postID, text, commentID)
	if err == nil {
		return payload, nil
	}
	if !moltbook.IsAuthFailure(err) || s.reauth == nil {
		return nil, fmt.Errorf("failed to send reply: %w", err)
	}

	s.log.Warn().Err(err).Msg("auth failure on send, refreshing credentials")
	fresh, rerr := s.reauth()
	if rerr != nil {
		return nil, fmt.Errorf("failed to refresh credentials: %w", rerr)
	}
	s.client = fresh

	payload, err = s.client.CreateComment(ctx, postID, text, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to send reply after re-auth: %w", err)
	}
	return payload, nil
}
