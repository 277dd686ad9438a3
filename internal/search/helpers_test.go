package search

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/store"
	"github.com/packtrace/packtrace/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// spyStore counts calls per method and injects failures.
type spyStore struct {
	*store.Store

	mu         sync.Mutex
	calls      map[string]int
	fail       map[string]error
	failLevels map[model.Level]error
	// block makes the named method wait for its context to end.
	block map[string]bool
}

func newSpy(s *store.Store) *spyStore {
	return &spyStore{
		Store:      s,
		calls:      map[string]int{},
		fail:       map[string]error{},
		failLevels: map[model.Level]error{},
		block:      map[string]bool{},
	}
}

func (s *spyStore) hit(ctx context.Context, name string) error {
	s.mu.Lock()
	s.calls[name]++
	err, block := s.fail[name], s.block[name]
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *spyStore) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spyStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

func (s *spyStore) ExistsPrefix(ctx context.Context, level model.Level, prefix string) (bool, error) {
	if err := s.hit(ctx, "ExistsPrefix"); err != nil {
		return false, err
	}
	s.mu.Lock()
	err := s.failLevels[level]
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	return s.Store.ExistsPrefix(ctx, level, prefix)
}

func (s *spyStore) CountUnits(ctx context.Context, q store.Select) (int, error) {
	if err := s.hit(ctx, "CountUnits"); err != nil {
		return 0, err
	}
	return s.Store.CountUnits(ctx, q)
}

func (s *spyStore) UnitKeys(ctx context.Context, q store.Select) ([]int64, error) {
	if err := s.hit(ctx, "UnitKeys"); err != nil {
		return nil, err
	}
	return s.Store.UnitKeys(ctx, q)
}

func (s *spyStore) UnitsByID(ctx context.Context, ids []int64) ([]model.Unit, error) {
	if err := s.hit(ctx, "UnitsByID"); err != nil {
		return nil, err
	}
	return s.Store.UnitsByID(ctx, ids)
}

func (s *spyStore) BoxesByID(ctx context.Context, ids []int64) ([]model.Box, error) {
	if err := s.hit(ctx, "BoxesByID"); err != nil {
		return nil, err
	}
	return s.Store.BoxesByID(ctx, ids)
}

func (s *spyStore) PalletsByID(ctx context.Context, ids []int64) ([]model.Pallet, error) {
	if err := s.hit(ctx, "PalletsByID"); err != nil {
		return nil, err
	}
	return s.Store.PalletsByID(ctx, ids)
}

func (s *spyStore) AttachmentsByID(ctx context.Context, ids []int64) ([]model.Attachment, error) {
	if err := s.hit(ctx, "AttachmentsByID"); err != nil {
		return nil, err
	}
	return s.Store.AttachmentsByID(ctx, ids)
}

func (s *spyStore) Attachment2sByID(ctx context.Context, ids []int64) ([]model.Attachment2, error) {
	if err := s.hit(ctx, "Attachment2sByID"); err != nil {
		return nil, err
	}
	return s.Store.Attachment2sByID(ctx, ids)
}

func (s *spyStore) SelectBoxes(ctx context.Context, q store.Select) ([]model.Box, error) {
	if err := s.hit(ctx, "SelectBoxes"); err != nil {
		return nil, err
	}
	return s.Store.SelectBoxes(ctx, q)
}

func (s *spyStore) SelectPallets(ctx context.Context, q store.Select) ([]model.Pallet, error) {
	if err := s.hit(ctx, "SelectPallets"); err != nil {
		return nil, err
	}
	return s.Store.SelectPallets(ctx, q)
}

func (s *spyStore) CountUnitsByBox(ctx context.Context, ids []int64) (map[int64]int, error) {
	if err := s.hit(ctx, "CountUnitsByBox"); err != nil {
		return nil, err
	}
	return s.Store.CountUnitsByBox(ctx, ids)
}

func (s *spyStore) CountBoxesByPallet(ctx context.Context, ids []int64) (map[int64]int, error) {
	if err := s.hit(ctx, "CountBoxesByPallet"); err != nil {
		return nil, err
	}
	return s.Store.CountBoxesByPallet(ctx, ids)
}

// plant returns an engine over the shared test hierarchy and its spy.
func plant(t *testing.T) (*Engine, *spyStore, *testutil.TestHierarchy) {
	t.Helper()
	h := testutil.NewTestHierarchy(t).WithYAML(testutil.Plant).Build()
	spy := newSpy(h.Store)
	return New(spy, Options{}), spy, h
}

func engineFor(t *testing.T, yaml string) (*Engine, *testutil.TestHierarchy) {
	t.Helper()
	h := testutil.NewTestHierarchy(t).WithYAML(yaml).Build()
	return New(h.Store, Options{}), h
}

func serials(rows []model.UnitRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Serial
	}
	return out
}

// listAll concatenates every page of req.
func listAll(t *testing.T, e *Engine, req Request, size int) ([]model.UnitRow, int) {
	t.Helper()
	var all []model.UnitRow
	total := -1
	for page := 1; ; page++ {
		res, err := e.List(context.Background(), req, page, size)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if total == -1 {
			total = res.Total
		}
		if len(res.Rows) == 0 {
			return all, total
		}
		all = append(all, res.Rows...)
	}
}
