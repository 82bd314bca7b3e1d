package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"equipment-console/internal/domain"
	"equipment-console/internal/ports"
)

const DefaultPermissionConcurrency = 8

// UserPermissions is the editor view of one user.
type UserPermissions struct {
	User domain.User `json:"user"`
	// Current is the raw list of names the server reports.
	Current []string `json:"current"`
	// Selected holds catalog ids, as checked in the editor.
	Selected []int `json:"selected"`
	// Unmanaged lists held names the catalog does not know. They are never revoked.
	Unmanaged []string `json:"unmanaged"`
}

type PermissionFailure struct {
	Permission string `json:"permission"`
	Action     string `json:"action"`
	Error      string `json:"error"`
}

type ReconcileResult struct {
	UserID   int64               `json:"user_id"`
	NoOp     bool                `json:"no_op"`
	Granted  []string            `json:"granted"`
	Revoked  []string            `json:"revoked"`
	Failures []PermissionFailure `json:"failures,omitempty"`
}

type userState struct {
	user     domain.User
	current  []string
	selected []int
}

// PermissionEditor tracks a desired permission selection per user and
// reconciles it with the server.
type PermissionEditor struct {
	users   ports.UserPermissionGateway
	catalog domain.Catalog
	logger  ports.Logger
	limit   int

	mu    sync.Mutex
	state map[int64]*userState
}

func NewPermissionEditor(users ports.UserPermissionGateway, catalog domain.Catalog, logger ports.Logger, concurrency int) *PermissionEditor {
	if concurrency <= 0 {
		concurrency = DefaultPermissionConcurrency
	}
	return &PermissionEditor{
		users:   users,
		catalog: catalog,
		logger:  logger,
		limit:   concurrency,
		state:   map[int64]*userState{},
	}
}

func (s *PermissionEditor) Catalog() domain.Catalog { return s.catalog }

// Load fetches every user and resets each selection to what the server holds.
func (s *PermissionEditor) Load(ctx context.Context) ([]UserPermissions, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[int64]*userState, users.Len())
	out := make([]UserPermissions, 0, users.Len())
	for _, u := range users.Items {
		st := s.newState(u)
		s.state[u.ID] = st
		out = append(out, s.view(st))
	}
	return out, nil
}

func (s *PermissionEditor) Get(userID int64) (UserPermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[userID]
	if !ok {
		return UserPermissions{}, domain.ErrNotFound
	}
	return s.view(st), nil
}

// Toggle flips one catalog permission in the user's selection.
func (s *PermissionEditor) Toggle(userID int64, permissionID int) ([]int, error) {
	if _, ok := s.catalog.ByID(permissionID); !ok {
		return nil, fmt.Errorf("permission %d: %w", permissionID, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if i := slices.Index(st.selected, permissionID); i >= 0 {
		st.selected = slices.Delete(st.selected, i, i+1)
	} else {
		st.selected = append(st.selected, permissionID)
	}
	return slices.Clone(st.selected), nil
}

// SetSelection replaces the user's selection. Every id must be in the catalog.
// A user not tracked yet is looked up on the server first.
func (s *PermissionEditor) SetSelection(ctx context.Context, userID int64, ids []int) error {
	for _, id := range ids {
		if _, ok := s.catalog.ByID(id); !ok {
			return fmt.Errorf("permission %d: %w", id, domain.ErrInvalidInput)
		}
	}
	if err := s.track(ctx, userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[userID]
	if !ok {
		return domain.ErrNotFound
	}
	st.selected = s.catalog.IDsForNames(s.catalog.NamesForIDs(ids))
	return nil
}

// track fetches the user list once when userID has no state. Users already
// tracked keep their pending selection.
func (s *PermissionEditor) track(ctx context.Context, userID int64) error {
	s.mu.Lock()
	_, ok := s.state[userID]
	s.mu.Unlock()
	if ok {
		return nil
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users.Items {
		if _, seen := s.state[u.ID]; !seen {
			s.state[u.ID] = s.newState(u)
		}
	}
	if _, ok := s.state[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// Save applies the minimal grant and revoke calls for one user. An empty
// diff makes no call at all. Calls run concurrently and all of them settle;
// on any failure the selection is kept so the same save can be retried.
func (s *PermissionEditor) Save(ctx context.Context, userID int64) (ReconcileResult, error) {
	s.mu.Lock()
	st, ok := s.state[userID]
	if !ok {
		s.mu.Unlock()
		return ReconcileResult{}, domain.ErrNotFound
	}
	current := slices.Clone(st.current)
	selected := s.catalog.NamesForIDs(st.selected)
	s.mu.Unlock()

	result := ReconcileResult{UserID: userID, Granted: []string{}, Revoked: []string{}}
	diff := s.catalog.Diff(current, selected)
	if diff.Empty() {
		result.NoOp = true
		return result, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	settle := func(action, name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failures = append(result.Failures, PermissionFailure{Permission: name, Action: action, Error: err.Error()})
			errs = append(errs, fmt.Errorf("%s %q: %w", action, name, err))
			return
		}
		if action == "grant" {
			result.Granted = append(result.Granted, name)
		} else {
			result.Revoked = append(result.Revoked, name)
		}
	}

	var g errgroup.Group
	g.SetLimit(s.limit)
	for _, name := range diff.Grant {
		g.Go(func() error {
			settle("grant", name, s.users.AssignPermission(ctx, userID, name))
			return nil
		})
	}
	for _, name := range diff.Revoke {
		g.Go(func() error {
			settle("revoke", name, s.users.RemovePermission(ctx, userID, name))
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		s.logger.Error(ctx, "permission save failed",
			"user_id", userID,
			"failed", len(errs),
			"granted", len(result.Granted),
			"revoked", len(result.Revoked),
		)
		return result, errors.Join(errs...)
	}

	s.logger.Info(ctx, "permissions saved", "user_id", userID, "granted", len(result.Granted), "revoked", len(result.Revoked))
	s.refresh(ctx, userID, diff)
	return result, nil
}

// refresh re-reads the users so the next diff starts from the server's view.
// Pending selections of other users are kept.
func (s *PermissionEditor) refresh(ctx context.Context, userID int64, applied domain.PermissionDiff) {
	users, err := s.users.List(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn(ctx, "user refresh after save failed", "user_id", userID, "error", err)
		if st, ok := s.state[userID]; ok {
			st.current = applyDiff(st.current, applied)
			st.selected = s.catalog.IDsForNames(st.current)
		}
		return
	}
	for _, u := range users.Items {
		prev, ok := s.state[u.ID]
		next := s.newState(u)
		if ok && u.ID != userID {
			next.selected = prev.selected
		}
		s.state[u.ID] = next
	}
}

func (s *PermissionEditor) newState(u domain.User) *userState {
	current := u.PermissionNames()
	return &userState{user: u, current: current, selected: s.catalog.IDsForNames(current)}
}

func (s *PermissionEditor) view(st *userState) UserPermissions {
	unmanaged := []string{}
	for _, n := range st.current {
		if !s.catalog.Knows(n) {
			unmanaged = append(unmanaged, n)
		}
	}
	return UserPermissions{
		User:      st.user,
		Current:   slices.Clone(st.current),
		Selected:  slices.Clone(st.selected),
		Unmanaged: unmanaged,
	}
}

func applyDiff(current []string, d domain.PermissionDiff) []string {
	out := make([]string, 0, len(current)+len(d.Grant))
	for _, n := range current {
		if !slices.Contains(d.Revoke, n) {
			out = append(out, n)
		}
	}
	return append(out, d.Grant...)
}
