package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/annotation"
	"github.com/starford/vellum/internal/creator"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
)

type fakeAPI struct {
	mu        sync.Mutex
	created   []models.NewAnnotation
	createErr error
	entries   []models.Annotation
	deleted   []string
	collabs   []models.Collaborator
	block     bool
	destroyed int
}

func (f *fakeAPI) CreateAnnotation(_ context.Context, _, _ string, p models.NewAnnotation) (*models.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	return &models.Annotation{ID: "new-1", Type: p.Type, Target: p.Target, Description: p.Description}, nil
}

func (f *fakeAPI) GetAnnotations(_ context.Context, _, _ string, limit int, _ bool) (*models.AnnotationPage, error) {
	return &models.AnnotationPage{Entries: f.entries, Limit: limit}, nil
}

func (f *fakeAPI) DeleteAnnotation(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) GetFileCollaborators(ctx context.Context, _ string, _ models.CollaboratorsOptions) ([]models.Collaborator, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.collabs, nil
}

func (f *fakeAPI) Destroy() {
	f.mu.Lock()
	f.destroyed++
	f.mu.Unlock()
}

func testStore() *Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Options{FileID: "f1", FileVersionID: "v1", IsCurrentFileVersion: true}, logger)
}

func stagedRegion() *creator.Item {
	return &creator.Item{
		Location:   models.Page(1),
		Shape:      geometry.Shape{X: 10, Y: 10, Width: 100, Height: 100},
		TargetType: models.TypeRegion,
	}
}

func TestCreateAnnotationSuccess(t *testing.T) {
	s := testStore()
	api := &fakeAPI{}

	var seen []creator.Status
	unsubscribe := s.Subscribe(func(st RootState) { seen = append(seen, st.Creator.Status) })
	defer unsubscribe()

	s.Dispatch(creator.SetStaged{Item: stagedRegion()})
	s.Dispatch(creator.SetMessage{Message: "hi"})
	payload := s.State().Creator.Staged.Payload("", "hi")

	created, err := s.CreateAnnotation(context.Background(), api, payload)
	if err != nil {
		t.Fatalf("CreateAnnotation: %v", err)
	}
	if api.created[0].FileVersion.ID != "v1" {
		t.Errorf("file version defaulted to %q", api.created[0].FileVersion.ID)
	}

	st := s.State()
	if st.Creator.Status != creator.StatusInit || st.Creator.Staged != nil {
		t.Errorf("creator = %+v", st.Creator)
	}
	if _, ok := annotation.GetAnnotation(st.Annotations, created.ID); !ok {
		t.Error("created annotation not in store")
	}
	want := []creator.Status{creator.StatusInit, creator.StatusInit, creator.StatusPending, creator.StatusInit}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("status sequence (-want +got):\n%s", diff)
	}
}

func TestCreateAnnotationRejected(t *testing.T) {
	s := testStore()
	apiErr := &models.APIError{Type: "error", Code: "bad_request", Message: "nope", Status: 400}
	api := &fakeAPI{createErr: apiErr}

	s.Dispatch(creator.SetStaged{Item: stagedRegion()})
	_, err := s.CreateAnnotation(context.Background(), api, s.State().Creator.Staged.Payload("v1", ""))
	if !errors.Is(err, apiErr) {
		t.Fatalf("err = %v, want wrapped APIError", err)
	}

	st := s.State().Creator
	if st.Status != creator.StatusRejected {
		t.Errorf("status = %q", st.Status)
	}
	if diff := cmp.Diff(&models.ErrorInfo{Name: "bad_request", Message: "nope"}, st.Error); diff != "" {
		t.Errorf("error (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stagedRegion(), st.Staged); diff != "" {
		t.Errorf("staged lost (-want +got):\n%s", diff)
	}
}

func TestFetchAndDeleteAnnotations(t *testing.T) {
	s := testStore()
	api := &fakeAPI{entries: []models.Annotation{
		{ID: "a", Target: models.Target{Location: models.Page(1)}},
		{ID: "b", Target: models.Target{Location: models.Page(2)}},
	}}
	if err := s.FetchAnnotations(context.Background(), api); err != nil {
		t.Fatalf("FetchAnnotations: %v", err)
	}
	// A repeated fetch must not duplicate ids.
	if err := s.FetchAnnotations(context.Background(), api); err != nil {
		t.Fatalf("FetchAnnotations: %v", err)
	}
	st := s.State().Annotations
	if diff := cmp.Diff([]string{"a", "b"}, st.AllIDs); diff != "" {
		t.Errorf("AllIDs (-want +got):\n%s", diff)
	}

	if err := s.DeleteAnnotation(context.Background(), api, "a"); err != nil {
		t.Fatalf("DeleteAnnotation: %v", err)
	}
	if got := annotation.GetAnnotations(s.State().Annotations); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("annotations = %+v", got)
	}
}

func TestFetchCollaboratorsCancelDestroysClient(t *testing.T) {
	s := testStore()
	api := &fakeAPI{block: true}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.FetchCollaborators(ctx, func() CollaboratorsAPI { return api }) }()
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if api.destroyed != 1 {
		t.Errorf("Destroy called %d times, want 1", api.destroyed)
	}
	if got := s.State().Users.Collaborators; got == nil || len(got) != 0 {
		t.Errorf("collaborators = %#v, want empty", got)
	}
}

func TestFetchCollaborators(t *testing.T) {
	s := testStore()
	api := &fakeAPI{collabs: []models.Collaborator{{ID: "u1", Name: "Ada", Type: models.CollaboratorUser}}}
	if err := s.FetchCollaborators(context.Background(), func() CollaboratorsAPI { return api }); err != nil {
		t.Fatalf("FetchCollaborators: %v", err)
	}
	if len(s.State().Users.Collaborators) != 1 || api.destroyed != 1 {
		t.Errorf("state = %+v destroyed=%d", s.State().Users, api.destroyed)
	}
}

func TestConcurrentDispatchNotifiesInOrder(t *testing.T) {
	s := testStore()
	var (
		mu   sync.Mutex
		seen []int
	)
	s.Subscribe(func(st RootState) {
		mu.Lock()
		seen = append(seen, st.Creator.Cursor)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(creator.SetCursor{Cursor: i})
		}()
	}
	wg.Wait()

	if len(seen) != 50 {
		t.Fatalf("notifications = %d, want 50", len(seen))
	}
	if last := seen[len(seen)-1]; last != s.State().Creator.Cursor {
		t.Errorf("last notified cursor %d, state cursor %d", last, s.State().Creator.Cursor)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := testStore()
	calls := 0
	unsubscribe := s.Subscribe(func(RootState) { calls++ })
	s.Dispatch(creator.SetCursor{Cursor: 1})
	unsubscribe()
	unsubscribe()
	s.Dispatch(creator.SetCursor{Cursor: 2})
	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestConcurrentReadersSeeWholeDispatches(t *testing.T) {
	s := testStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				st := s.State().Annotations
				if len(st.AllIDs) != len(st.ByID) {
					t.Errorf("torn read: %d ids, %d entries", len(st.AllIDs), len(st.ByID))
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		id := string(rune('a' + i%26))
		s.Dispatch(annotation.SetActiveAnnotationID{ID: id})
		s.Dispatch(fetchedOne(id, i))
	}
	close(stop)
	wg.Wait()
}

func fetchedOne(id string, n int) action.FetchAnnotationsFulfilled {
	return action.FetchAnnotationsFulfilled{Page: models.AnnotationPage{
		Entries: []models.Annotation{{ID: id, Description: &models.Description{Message: string(rune('0' + n%10))}}},
	}}
}
