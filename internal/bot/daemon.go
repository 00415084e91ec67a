package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/moltbook"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/project"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/state"
)

const (
	kvLastHead   = "daemon.last_head"
	kvLastScan   = "daemon.last_scan"
	kvLastPostAt = "daemon.last_post_at"

	// maxPostContent bounds rendered post bodies; the platform rejects
	// oversized content with an opaque 400.
	maxPostContent = 4000

	deltaMaxCommits = 10
	deltaMaxFiles   = 20
)

// Daemon drives the periodic loop: heartbeat, reply pass, and project
// update posts when the tracked repository changed.
type Daemon struct {
	service   *Service
	reader    *project.Reader
	store     *state.Store
	log       zerolog.Logger
	submolt   string
	interval  time.Duration
	cooldown  time.Duration
	forcePost bool
}

// DaemonConfig holds the daemon loop configuration.
type DaemonConfig struct {
	Submolt      string
	Interval     time.Duration
	PostCooldown time.Duration
	ForcePost    bool // publish update posts even inside the cooldown window
}

// NewDaemon creates the loop around an existing reply service. reader
// may be nil when no project directory is configured; update posts are
// skipped in that case.
func NewDaemon(service *Service, reader *project.Reader, store *state.Store,
	cfg DaemonConfig, log zerolog.Logger) *Daemon {
	interval := cfg.Interval
	if interval < time.Minute {
		interval = 15 * time.Minute
	}
	cooldown := cfg.PostCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	return &Daemon{
		service:   service,
		reader:    reader,
		store:     store,
		log:       log,
		submolt:   cfg.Submolt,
		interval:  interval,
		cooldown:  cooldown,
		forcePost: cfg.ForcePost,
	}
}

// Run loops until the context is cancelled. An error inside a tick is
// logged and the loop continues; only context cancellation stops it.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info().Dur("interval", d.interval).Msg("daemon started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	if err := d.Tick(ctx); err != nil {
		d.log.Error().Err(err).Msg("tick failed")
	}
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("daemon stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				d.log.Error().Err(err).Msg("tick failed")
			}
		}
	}
}

// Tick performs one full pass: heartbeat, reply run, project update.
func (d *Daemon) Tick(ctx context.Context) error {
	d.heartbeat(ctx)

	if _, err := d.service.Run(ctx, RunRequest{All: true}); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.log.Error().Err(err).Msg("reply pass failed")
	}

	if d.reader != nil {
		if err := d.maybePostUpdate(ctx); err != nil {
			d.log.Error().Err(err).Msg("project update post failed")
		}
	}
	return ctx.Err()
}

// heartbeat polls account status and DM activity. Failures are logged
// and ignored; the heartbeat never blocks the rest of the tick.
func (d *Daemon) heartbeat(ctx context.Context) {
	if _, err := d.service.client.GetAgentStatus(ctx); err != nil {
		d.log.Warn().Err(err).Msg("status check failed")
	}

	dm, err := d.service.client.DMCheck(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("dm check failed")
		return
	}
	if dm.HasActivity {
		d.log.Info().Str("summary", dm.Summary).Msg("dm activity waiting, a human should take a look")
	}
}

// maybePostUpdate publishes a short post describing recent project
// changes, observing the post cooldown. First runs only record a
// baseline.
func (d *Daemon) maybePostUpdate(ctx context.Context) error {
	lastHead, _ := d.store.GetKV(kvLastHead)
	lastScan := d.lastScanTime()

	delta := d.reader.ComputeDelta(lastHead, lastScan, deltaMaxCommits, deltaMaxFiles)

	if err := d.rememberDelta(delta); err != nil {
		return err
	}
	if delta.InitialBaseline {
		d.log.Info().Str("mode", delta.Mode).Msg("recorded project baseline")
		return nil
	}
	if !delta.HasChanges {
		return nil
	}
	if !d.forcePost && !d.cooldownExpired() {
		d.log.Debug().Msg("changes detected but post cooldown active")
		return nil
	}

	title, content := RenderUpdatePost(d.reader.Name(), delta)
	payload, err := d.service.client.CreatePost(ctx, d.submolt, title, content)
	if err != nil {
		return fmt.Errorf("failed to publish update post: %w", err)
	}
	if moltbook.IsDryRun(payload) {
		d.log.Info().Str("title", title).Msg("dry run, update post not published")
		return nil
	}

	if err := d.store.SetKV(kvLastPostAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		d.log.Warn().Err(err).Msg("could not record post time")
	}
	d.log.Info().Str("title", title).Msg("published project update")
	return nil
}

func (d *Daemon) lastScanTime() time.Time {
	raw, err := d.store.GetKV(kvLastScan)
	if err != nil || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d *Daemon) rememberDelta(delta project.Delta) error {
	if delta.Head != "" {
		if err := d.store.SetKV(kvLastHead, delta.Head); err != nil {
			return fmt.Errorf("failed to record git head: %w", err)
		}
	}
	if err := d.store.SetKV(kvLastScan, delta.ScanTime.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record scan time: %w", err)
	}
	return nil
}

func (d *Daemon) cooldownExpired() bool {
	raw, err := d.store.GetKV(kvLastPostAt)
	if err != nil || raw == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	return time.Since(last) >= d.cooldown
}

// RenderUpdatePost turns a project delta into a post title and body.
func RenderUpdatePost(projectName string, delta project.Delta) (title, content string) {
	title = fmt.Sprintf("%s progress update", projectName)

	var b strings.Builder
	fmt.Fprintf(&b, "Quick update on %s.\n\n", projectName)

	if len(delta.Commits) > 0 {
		b.WriteString("Recent commits:\n")
		for _, c := range delta.Commits {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	if len(delta.ChangedFiles) > 0 {
		b.WriteString("Files touched:\n")
		for _, f := range delta.ChangedFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	if len(delta.Commits) == 0 && len(delta.ChangedFiles) == 0 {
		b.WriteString("Still heads down on it. More soon.\n")
	}

	return title, Truncate(b.String(), maxPostContent)
}

// RenderStatusPost builds a manual status post from the project summary.
func RenderStatusPost(reader *project.Reader) (title, content string) {
	title = fmt.Sprintf("%s status", reader.Name())
	return title, Truncate(reader.Summary(), maxPostContent)
}

// Truncate shortens s to at most max bytes, marking the cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const marker = "\n[truncated]"
	if max <= len(marker) {
		return s[:max]
	}
	return s[:max-len(marker)] + marker
}
