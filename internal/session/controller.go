package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/handler"
	"workbook-loader/internal/linker"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/store"
)

// DefaultChunkSize is the number of resources submitted per Save call.
const DefaultChunkSize = 5

// ErrNoSelectionPending is returned by SelectExisting and SelectParent when
// the session is not waiting for that choice.
var ErrNoSelectionPending = errors.New("no selection pending")

// Controller runs one save session at a time.
type Controller struct {
	store      store.Store
	backend    api.Backend
	registry   *handler.Registry
	logger     *slog.Logger
	chunkSize  int
	yield      time.Duration
	appendData bool

	mu        sync.Mutex
	state     State
	resources []resource.Draft
	linker    *linker.Linker
	// inFlight is set while a chunk is linked and saved outside the lock.
	inFlight bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithChunkSize sets the number of resources per Save call.
func WithChunkSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithYield sets a delay between chunks.
func WithYield(d time.Duration) Option {
	return func(c *Controller) {
		c.yield = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithRegistry sets the per-type handlers.
func WithRegistry(r *handler.Registry) Option {
	return func(c *Controller) {
		c.registry = r
	}
}

// WithAppendData makes started sessions update same-name existing records
// instead of creating duplicates.
func WithAppendData(on bool) Option {
	return func(c *Controller) {
		c.appendData = on
	}
}

// New returns a controller persisting to st and saving to backend.
func New(st store.Store, backend api.Backend, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		backend:   backend,
		registry:  handler.Default(),
		logger:    slog.Default(),
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns a copy of the session state. The column map is shared with
// the running session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Selection != nil {
		sel := *s.Selection
		s.Selection = &sel
	}

	return s
}

// Start begins a new session over resources and runs it until it pauses,
// finishes or fails.
func (c *Controller) Start(ctx context.Context, resources []resource.Draft, group, typ, apiBaseURL string,
	cm columnmap.ColumnMap,
) error {
	c.mu.Lock()

	if err := c.state.Status.transition(Saving); err != nil {
		c.mu.Unlock()
		return err
	}

	if cm == nil {
		cm = columnmap.ColumnMap{}
	}

	c.state = State{
		Total:      len(resources),
		Status:     Saving,
		Type:       typ,
		Group:      group,
		APIBaseURL: apiBaseURL,
		SourceSet:  uuid.NewString(),
		AppendData: c.appendData,
		ColumnMap:  cm,
		Selection:  &handler.Selection{},
	}
	c.resources = resources
	c.linker = c.newLinker()

	sourceSet := c.state.SourceSet
	err := c.persist(ctx, true)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	c.logger.Info("save session started", "type", typ, "total", len(resources), "sourceSet", sourceSet)

	return c.run(ctx)
}

// Resume continues a paused session from its persisted progress.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()

	if c.state.Status != Paused {
		err := fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.state.Status, Saving)
		c.mu.Unlock()

		return err
	}

	c.state.Status = Saving
	if c.linker == nil {
		c.linker = c.newLinker()
	}

	typ, progress := c.state.Type, c.state.Progress
	err := c.persist(ctx, false)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	c.logger.Info("save session resumed", "type", typ, "progress", progress)

	return c.run(ctx)
}

// Pause stops the session after the chunk in flight.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.Status.transition(Paused); err != nil {
		return err
	}

	c.state.Status = Paused

	return c.persistIdle(context.Background())
}

// Cancel abandons an active session and deletes it from storage.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.Status.transition(Canceled); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, ResourcesKey(c.state.Type)); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, MetadataKey); err != nil {
		return err
	}

	c.state = State{Status: Canceled, Type: c.state.Type}
	c.resources = nil

	return nil
}

// Acknowledge clears a finished or failed session from storage.
func (c *Controller) Acknowledge(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.Status.transition(Ready); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, ResourcesKey(c.state.Type)); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, MetadataKey); err != nil {
		return err
	}

	c.state = State{}
	c.resources = nil
	c.linker = nil

	return nil
}

// Restore reloads a persisted session. A session still marked SAVING
// belonged to a process that died and is restored as PAUSED.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Get(ctx, MetadataKey)
	if errors.Is(err, store.ErrNotFound) {
		c.state = State{}
		return nil
	}

	if err != nil {
		return err
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("failed to decode session state: %w", err)
	}

	var resources []resource.Draft

	if st.Type != "" {
		raw, err := c.store.Get(ctx, ResourcesKey(st.Type))
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &resources); err != nil {
				return fmt.Errorf("failed to decode session resources: %w", err)
			}
		}
	}

	if st.Selection == nil {
		st.Selection = &handler.Selection{}
	}

	c.state = st
	c.resources = resources
	c.linker = c.newLinker()

	if st.Status == Saving {
		c.state.Status = Paused
		c.logger.Warn("interrupted save session restored as paused", "type", st.Type, "progress", st.Progress)

		return c.persist(ctx, false)
	}

	return nil
}

// SelectExisting picks the existing record the paused resource updates.
func (c *Controller) SelectExisting(d resource.Draft) error {
	return c.choose(func(s *handler.Selection) bool {
		s.Existing = d
		return len(s.ExistingCandidates) > 0
	})
}

// SelectParent picks the parent of the paused resource.
func (c *Controller) SelectParent(d resource.Draft) error {
	return c.choose(func(s *handler.Selection) bool {
		s.Parent = d
		return len(s.ParentCandidates) > 0
	})
}

// choose applies a user choice to the selection of a paused session. apply
// reports whether the choice was awaited; if not it is discarded.
func (c *Controller) choose(apply func(*handler.Selection) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != Paused || c.state.Selection == nil {
		return ErrNoSelectionPending
	}

	sel := *c.state.Selection
	if !apply(&sel) {
		return ErrNoSelectionPending
	}

	c.state.Selection = &sel

	return c.persistIdle(context.Background())
}

func (c *Controller) newLinker() *linker.Linker {
	return linker.New(c.backend, linker.NewCache(), linker.WithLogger(c.logger))
}

// run submits chunks while the session is SAVING.
func (c *Controller) run(ctx context.Context) error {
	for {
		done, err := c.step(ctx)
		if err != nil || done {
			return err
		}

		if err := c.wait(ctx); err != nil {
			return err
		}
	}
}

// step processes one chunk. It reports whether the loop should stop. The
// lock is released while the chunk is linked and saved, so Pause and Cancel
// take effect once the chunk in flight returns.
func (c *Controller) step(ctx context.Context) (bool, error) {
	c.mu.Lock()

	if c.state.Status != Saving {
		c.mu.Unlock()
		return true, nil
	}

	st := c.state
	start := st.Progress
	total := len(c.resources)

	if start >= total {
		defer c.mu.Unlock()
		return true, c.finish(ctx)
	}

	end := min(start+c.chunkSize, total)
	chunk := c.resources[start:end]
	lk := c.linker
	c.inFlight = true

	c.mu.Unlock()

	pause, err := c.prepare(ctx, st, lk, chunk)
	if err == nil && !pause {
		err = c.save(ctx, st, start, chunk)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false

	if c.state.SourceSet != st.SourceSet || c.state.Status == Canceled {
		return true, nil
	}

	switch {
	case err != nil:
		return true, c.fail(ctx, start, err)
	case pause:
		c.state.Status = Paused
		c.logger.Info("save session waiting for a selection", "type", st.Type, "progress", start)

		return true, c.persist(ctx, true)
	}

	c.state.Progress = end

	c.logger.Info("chunk saved", "type", st.Type, "chunk", start/c.chunkSize, "progress", end, "total", total)

	return c.state.Status != Saving, c.persist(ctx, false)
}

// prepare runs the type handler over every resource of a chunk. It reports
// whether a handler asked to pause.
func (c *Controller) prepare(ctx context.Context, st State, lk *linker.Linker, chunk []resource.Draft) (bool, error) {
	h := c.registry.For(st.Type)

	for _, r := range chunk {
		res, err := h.ProcessResource(ctx, &handler.SaveContext{
			Resource:   r,
			Group:      st.Group,
			APIBaseURL: st.APIBaseURL,
			Backend:    c.backend,
			ColumnMap:  st.ColumnMap,
			AppendData: st.AppendData,
			SourceSet:  st.SourceSet,
			Link:       lk.Link,
			Selection:  st.Selection,
		})
		if err != nil {
			return false, err
		}

		if res.ShouldPause {
			return true, nil
		}
	}

	return false, nil
}

// save submits a chunk as one Save call.
func (c *Controller) save(ctx context.Context, st State, start int, chunk []resource.Draft) error {
	ops := make([]api.SaveOperation, 0, len(chunk))
	for _, r := range chunk {
		ops = append(ops, api.SaveOperation{Resource: r, Type: st.Type})
	}

	_, err := c.backend.Save(ctx, ops, api.SaveOptions{
		APIBaseURL:     st.APIBaseURL,
		IdempotencyKey: ChunkKey(st.SourceSet, start),
	})

	return err
}

func (c *Controller) finish(ctx context.Context) error {
	c.state.Status = Finished
	c.state.Progress = len(c.resources)
	c.resources = nil

	if err := c.store.Delete(ctx, ResourcesKey(c.state.Type)); err != nil {
		return err
	}

	c.logger.Info("save session finished", "type", c.state.Type, "total", c.state.Total)

	return c.persist(ctx, false)
}

func (c *Controller) fail(ctx context.Context, start int, cause error) error {
	if ctx.Err() != nil {
		return c.interrupt(ctx)
	}

	c.state.Status = Failed
	c.state.Error = cause.Error()

	c.logger.Error("save session failed", "type", c.state.Type, "progress", start, "err", cause)

	if err := c.persist(context.WithoutCancel(ctx), true); err != nil {
		return errors.Join(cause, err)
	}

	return fmt.Errorf("failed to save resources from index %d: %w", start, cause)
}

// wait yields between chunks.
func (c *Controller) wait(ctx context.Context) error {
	if c.yield > 0 {
		t := time.NewTimer(c.yield)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}

	if ctx.Err() == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.interrupt(ctx)
}

// interrupt pauses a session whose context was canceled, so it can be
// resumed later. Callers hold c.mu.
func (c *Controller) interrupt(ctx context.Context) error {
	if c.state.Status != Saving {
		return ctx.Err()
	}

	c.state.Status = Paused
	c.logger.Warn("save session interrupted", "type", c.state.Type, "progress", c.state.Progress)

	if err := c.persist(context.WithoutCancel(ctx), true); err != nil {
		return errors.Join(ctx.Err(), err)
	}

	return ctx.Err()
}

// persistIdle persists the state unless a chunk is in flight, in which case
// the loop persists it once the chunk returns. Callers hold c.mu.
func (c *Controller) persistIdle(ctx context.Context) error {
	if c.inFlight {
		return nil
	}

	return c.persist(ctx, false)
}

// persist writes the state and, when withResources is set, the pending
// resources. Callers hold c.mu.
func (c *Controller) persist(ctx context.Context, withResources bool) error {
	if withResources && c.state.Type != "" {
		b, err := json.Marshal(c.resources)
		if err != nil {
			return fmt.Errorf("failed to encode session resources: %w", err)
		}

		if err := c.store.Put(ctx, ResourcesKey(c.state.Type), b); err != nil {
			return err
		}
	}

	b, err := json.Marshal(c.state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	return c.store.Put(ctx, MetadataKey, b)
}
