package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

// mockDetailResource implements gateway.Resource[domain.PaymentDetail].
// Only Update and Delete matter for the optimistic protocol tests.
type mockDetailResource struct {
	mu          sync.Mutex
	updateGate  chan struct{} // when non-nil, Update blocks until closed
	deleteGate  chan struct{}
	updateCalls int

	updateResult *domain.PaymentDetail
	updateErr    error
	deleteErr    error
}

func (m *mockDetailResource) List(context.Context) ([]domain.PaymentDetail, error) {
	return nil, nil
}

func (m *mockDetailResource) Get(context.Context, int64) (domain.PaymentDetail, error) {
	return domain.PaymentDetail{}, nil
}

func (m *mockDetailResource) Create(_ context.Context, d domain.PaymentDetail) (domain.PaymentDetail, error) {
	return d, nil
}

func (m *mockDetailResource) Update(_ context.Context, _ int64, d domain.PaymentDetail) (domain.PaymentDetail, error) {
	m.mu.Lock()
	m.updateCalls++
	gate := m.updateGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if m.updateErr != nil {
		return domain.PaymentDetail{}, m.updateErr
	}
	if m.updateResult != nil {
		return *m.updateResult, nil
	}
	return d, nil
}

func (m *mockDetailResource) Delete(context.Context, int64) error {
	m.mu.Lock()
	gate := m.deleteGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.deleteErr
}

func details() []domain.PaymentDetail {
	return []domain.PaymentDetail{
		{ID: 1, PaymentID: 1, UserID: 7, CardNumber: "4111"},
		{ID: 2, PaymentID: 1, UserID: 7, CardNumber: "4222"},
		{ID: 3, PaymentID: 2, UserID: 7, CardNumber: "4333"},
	}
}

func TestUpdateOptimistic_Confirmed(t *testing.T) {
	res := &mockDetailResource{
		updateResult: &domain.PaymentDetail{ID: 2, PaymentID: 1, UserID: 7, CardNumber: "4999", City: "server"},
	}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	seedStore(t, s, details())

	m, err := s.UpdateOptimistic(context.Background(), domain.PaymentDetail{ID: 2, CardNumber: "4999"})
	require.NoError(t, err)

	assert.Equal(t, MutationConfirmed, m.Status)
	assert.True(t, m.Status.IsTerminal())

	data := s.Data().Get()
	require.Len(t, data, 3)
	assert.Equal(t, "server", data[1].City, "server representation adopted")
	assert.Nil(t, s.Err().Get())
}

func TestUpdateOptimistic_FailureRestoresPreImage(t *testing.T) {
	res := &mockDetailResource{updateErr: errors.New("500 from server")}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	pre := details()
	seedStore(t, s, pre)

	m, err := s.UpdateOptimistic(context.Background(), domain.PaymentDetail{ID: 2, CardNumber: "4999"})
	require.Error(t, err)

	assert.Equal(t, MutationRolledBack, m.Status)
	assert.ErrorIs(t, err, ErrUpdateReverted)
	assert.Equal(t, pre, s.Data().Get(), "collection element-wise equal to its pre-mutation state")
	require.Error(t, s.Err().Get())
	assert.ErrorIs(t, s.Err().Get(), ErrUpdateReverted)
}

func TestUpdateOptimistic_MissingRecord(t *testing.T) {
	res := &mockDetailResource{}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	seedStore(t, s, details())

	m, err := s.UpdateOptimistic(context.Background(), domain.PaymentDetail{ID: 99})
	assert.ErrorIs(t, err, ErrRecordMissing)
	assert.Equal(t, MutationRolledBack, m.Status)
	assert.Zero(t, res.updateCalls, "no remote call without a local record")
}

func TestDeleteOptimistic_Confirmed(t *testing.T) {
	res := &mockDetailResource{}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	seedStore(t, s, details())

	m, err := s.DeleteOptimistic(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, MutationConfirmed, m.Status)
	data := s.Data().Get()
	require.Len(t, data, 2)
	assert.Equal(t, int64(1), data[0].ID)
	assert.Equal(t, int64(3), data[1].ID)
}

func TestDeleteOptimistic_FailureRestoresOriginalPosition(t *testing.T) {
	res := &mockDetailResource{deleteErr: errors.New("500 from server")}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	pre := details()
	seedStore(t, s, pre)

	m, err := s.DeleteOptimistic(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, MutationRolledBack, m.Status)
	assert.ErrorIs(t, err, ErrDeleteReverted)
	assert.Equal(t, pre, s.Data().Get(), "record restored at its prior index")
	assert.ErrorIs(t, s.Err().Get(), ErrDeleteReverted)
}

func TestDeleteOptimistic_PublishesBeforeNetworkResolves(t *testing.T) {
	gate := make(chan struct{})
	res := &mockDetailResource{deleteGate: gate}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	seedStore(t, s, details())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.DeleteOptimistic(context.Background(), 2)
		assert.NoError(t, err)
	}()

	// The optimistic removal is visible while the remote call hangs.
	require.Eventually(t, func() bool {
		return len(s.Data().Get()) == 2
	}, time.Second, 5*time.Millisecond)

	close(gate)
	<-done
}

// overlapResource fails the first update after a gate and succeeds on any
// later one, to interleave two optimistic mutations on one collection.
type overlapResource struct {
	mockDetailResource
	firstStarted chan struct{}
	firstGate    chan struct{}
	calls        int
	callsMu      sync.Mutex
}

func (r *overlapResource) Update(_ context.Context, _ int64, d domain.PaymentDetail) (domain.PaymentDetail, error) {
	r.callsMu.Lock()
	r.calls++
	first := r.calls == 1
	r.callsMu.Unlock()

	if first {
		close(r.firstStarted)
		<-r.firstGate
		return domain.PaymentDetail{}, errors.New("500 from server")
	}
	return d, nil
}

func TestUpdateOptimistic_StaleRollbackIsAbandoned(t *testing.T) {
	res := &overlapResource{
		firstStarted: make(chan struct{}),
		firstGate:    make(chan struct{}),
	}
	s := New[domain.PaymentDetail](res, zap.NewNop())
	seedStore(t, s, details())

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.UpdateOptimistic(context.Background(), domain.PaymentDetail{ID: 2, CardNumber: "first"})
		firstDone <- err
	}()
	<-res.firstStarted

	// A second mutation on the same record lands while the first one is
	// still in flight.
	_, err := s.UpdateOptimistic(context.Background(), domain.PaymentDetail{ID: 2, CardNumber: "second"})
	require.NoError(t, err)

	close(res.firstGate)
	err = <-firstDone
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRollbackSuperseded)
	assert.ErrorIs(t, err, ErrUpdateReverted)

	// The newer edit survives instead of being wiped by the stale snapshot.
	data := s.Data().Get()
	require.Len(t, data, 3)
	assert.Equal(t, "second", data[1].CardNumber)
}
