package playlist

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"signage/internal/interfaces"
	"signage/internal/models"
)

type fakeStore struct {
	screens   map[string]*models.Screen
	campaigns []*models.Campaign
	creatives map[string]*models.Creative
	approvals map[string]*models.Approval // keyed screenID+"/"+creativeID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		screens:   map[string]*models.Screen{},
		creatives: map[string]*models.Creative{},
		approvals: map[string]*models.Approval{},
	}
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*models.Screen, error) {
	if s, ok := f.screens[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}
func (f *fakeStore) Create(ctx context.Context, s *models.Screen) error          { return nil }
func (f *fakeStore) Update(ctx context.Context, id string, s *models.Screen) error { return nil }
func (f *fakeStore) Delete(ctx context.Context, id string) error                 { return nil }
func (f *fakeStore) List(ctx context.Context, filter interfaces.ScreenFilter) ([]*models.Screen, error) {
	return nil, nil
}
func (f *fakeStore) RecordHeartbeat(ctx context.Context, id string, at time.Time) error { return nil }

type fakeCampaigns struct{ store *fakeStore }

func (f fakeCampaigns) List(ctx context.Context, filter interfaces.CampaignFilter) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range f.store.campaigns {
		if filter.Status != "" && string(c.Status) != filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
func (f fakeCampaigns) Create(ctx context.Context, c *models.Campaign) error { return nil }
func (f fakeCampaigns) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	return nil, sql.ErrNoRows
}
func (f fakeCampaigns) Update(ctx context.Context, id string, c *models.Campaign) error { return nil }
func (f fakeCampaigns) Delete(ctx context.Context, id string) error                     { return nil }

type fakeCreatives struct{ store *fakeStore }

func (f fakeCreatives) GetByID(ctx context.Context, id string) (*models.Creative, error) {
	if c, ok := f.store.creatives[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}
func (f fakeCreatives) Create(ctx context.Context, c *models.Creative) error { return nil }
func (f fakeCreatives) ListByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Creative, error) {
	return nil, nil
}
func (f fakeCreatives) Update(ctx context.Context, id string, req *models.UpdateCreativeRequest) error {
	return nil
}
func (f fakeCreatives) Delete(ctx context.Context, id string) error { return nil }

type fakeApprovals struct{ store *fakeStore }

func (f fakeApprovals) GetForPair(ctx context.Context, screenID, creativeID string) (*models.Approval, error) {
	if a, ok := f.store.approvals[screenID+"/"+creativeID]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}
func (f fakeApprovals) Propose(ctx context.Context, screenID, creativeID string) (*models.Approval, error) {
	return nil, nil
}
func (f fakeApprovals) GetByID(ctx context.Context, id string) (*models.Approval, error) {
	return nil, sql.ErrNoRows
}
func (f fakeApprovals) ListByOwner(ctx context.Context, ownerID string) ([]*models.ApprovalWithContext, error) {
	return nil, nil
}
func (f fakeApprovals) Decide(ctx context.Context, id string, status models.ApprovalStatus, decidedAt time.Time) (*models.Approval, error) {
	return nil, nil
}

func newResolver(store *fakeStore, now time.Time, opts ...Option) *Resolver {
	opts = append(opts, WithClock(func() time.Time { return now }))
	return NewResolver(store, fakeCampaigns{store}, fakeCreatives{store}, fakeApprovals{store}, opts...)
}

func addCampaign(store *fakeStore, id, creativeID string, createdAt time.Time, screenTypes, cities []string) {
	store.campaigns = append(store.campaigns, &models.Campaign{
		ID:                id,
		Name:              "campaign " + id,
		Status:            models.CampaignStatusActive,
		CreativeID:        creativeID,
		StartDate:         createdAt.Add(-24 * time.Hour),
		EndDate:           createdAt.Add(30 * 24 * time.Hour),
		TargetScreenTypes: screenTypes,
		TargetCities:      cities,
		CreatedAt:         createdAt,
	})
}

func TestResolveMatchesTargetingAndApproval(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{
		ID:         "screen-1",
		ScreenType: models.ScreenTypeMall,
		City:       "Austin",
	}
	store.creatives["creative-x"] = &models.Creative{
		ID:   "creative-x",
		Type: models.CreativeTypeImage,
		URL:  "https://cdn.example.com/x.jpg",
	}
	addCampaign(store, "camp-1", "creative-x", now.Add(-48*time.Hour), []string{"mall"}, []string{"Austin"})
	store.approvals["screen-1/creative-x"] = &models.Approval{
		ID: "appr-1", ScreenID: "screen-1", CreativeID: "creative-x",
		Status: models.ApprovalStatusApproved,
	}

	r := newResolver(store, now)
	pl, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Items) != 1 || pl.Items[0].ID != "creative-x" {
		t.Fatalf("expected [creative-x], got %+v", pl.Items)
	}

	// Rejecting the approval empties the playlist.
	store.approvals["screen-1/creative-x"].Status = models.ApprovalStatusRejected
	pl, err = r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve after rejection: %v", err)
	}
	if len(pl.Items) != 0 {
		t.Fatalf("expected empty playlist after rejection, got %+v", pl.Items)
	}
}

func TestResolveSkipsNonMatchingTargeting(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{
		ID:         "screen-1",
		ScreenType: models.ScreenTypeGym,
		City:       "Austin",
	}
	store.creatives["creative-x"] = &models.Creative{ID: "creative-x", Type: models.CreativeTypeImage}
	store.approvals["screen-1/creative-x"] = &models.Approval{
		Status: models.ApprovalStatusApproved,
	}

	// Wrong screen type.
	addCampaign(store, "camp-1", "creative-x", now.Add(-time.Hour), []string{"mall"}, nil)

	r := newResolver(store, now)
	pl, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Items) != 0 {
		t.Fatalf("expected no items for mistargeted campaign, got %+v", pl.Items)
	}

	// Empty targeting sets are wildcards.
	store.campaigns = nil
	addCampaign(store, "camp-2", "creative-x", now.Add(-time.Hour), nil, nil)
	pl, _ = r.Resolve(context.Background(), "screen-1")
	if len(pl.Items) != 1 {
		t.Fatalf("expected wildcard campaign to match, got %+v", pl.Items)
	}
}

func TestResolveExcludesOutOfDateRange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{ID: "screen-1", ScreenType: models.ScreenTypeMall, City: "Austin"}
	store.creatives["creative-x"] = &models.Creative{ID: "creative-x", Type: models.CreativeTypeImage}
	store.approvals["screen-1/creative-x"] = &models.Approval{Status: models.ApprovalStatusApproved}

	store.campaigns = append(store.campaigns, &models.Campaign{
		ID:         "camp-expired",
		Status:     models.CampaignStatusActive,
		CreativeID: "creative-x",
		StartDate:  now.Add(-48 * time.Hour),
		EndDate:    now.Add(-24 * time.Hour),
		CreatedAt:  now.Add(-72 * time.Hour),
	})

	r := newResolver(store, now)
	pl, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Items) != 0 {
		t.Fatalf("expected expired campaign excluded, got %+v", pl.Items)
	}
}

func TestResolveOrderIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{ID: "screen-1", ScreenType: models.ScreenTypeMall, City: "Austin"}

	base := now.Add(-72 * time.Hour)
	for _, id := range []string{"creative-c", "creative-a", "creative-b"} {
		store.creatives[id] = &models.Creative{ID: id, Type: models.CreativeTypeImage}
		store.approvals["screen-1/"+id] = &models.Approval{Status: models.ApprovalStatusApproved}
	}
	// creative-b's campaign is oldest; the other two share a creation time
	// so creative id breaks the tie.
	addCampaign(store, "camp-b", "creative-b", base, nil, nil)
	addCampaign(store, "camp-c", "creative-c", base.Add(time.Hour), nil, nil)
	addCampaign(store, "camp-a", "creative-a", base.Add(time.Hour), nil, nil)

	r := newResolver(store, now)
	first, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{"creative-b", "creative-a", "creative-c"}
	if len(first.Items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), first.Items)
	}
	for i, id := range want {
		if first.Items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, first.Items[i].ID)
		}
	}

	// Identical state resolves identically.
	second, _ := r.Resolve(context.Background(), "screen-1")
	for i := range first.Items {
		if first.Items[i] != second.Items[i] {
			t.Fatalf("resolution not idempotent at %d: %+v vs %+v", i, first.Items[i], second.Items[i])
		}
	}
}

func TestResolveDeduplicatesCreatives(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{ID: "screen-1", ScreenType: models.ScreenTypeMall, City: "Austin"}
	store.creatives["creative-x"] = &models.Creative{ID: "creative-x", Type: models.CreativeTypeImage}
	store.approvals["screen-1/creative-x"] = &models.Approval{Status: models.ApprovalStatusApproved}

	addCampaign(store, "camp-1", "creative-x", now.Add(-48*time.Hour), nil, nil)
	addCampaign(store, "camp-2", "creative-x", now.Add(-24*time.Hour), nil, nil)

	r := newResolver(store, now)
	pl, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Items) != 1 {
		t.Fatalf("expected creative deduplicated, got %+v", pl.Items)
	}
}

func TestResolveDurations(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.screens["screen-1"] = &models.Screen{ID: "screen-1", ScreenType: models.ScreenTypeMall, City: "Austin"}
	store.creatives["img"] = &models.Creative{ID: "img", Type: models.CreativeTypeImage}
	store.creatives["vid"] = &models.Creative{ID: "vid", Type: models.CreativeTypeVideo, DurationSeconds: 30}
	store.approvals["screen-1/img"] = &models.Approval{Status: models.ApprovalStatusApproved}
	store.approvals["screen-1/vid"] = &models.Approval{Status: models.ApprovalStatusApproved}
	addCampaign(store, "camp-1", "img", now.Add(-2*time.Hour), nil, nil)
	addCampaign(store, "camp-2", "vid", now.Add(-time.Hour), nil, nil)

	r := newResolver(store, now, WithImageDuration(7*time.Second))
	pl, err := r.Resolve(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", pl.Items)
	}
	if pl.Items[0].Duration != 7*time.Second {
		t.Fatalf("image should use configured duration, got %v", pl.Items[0].Duration)
	}
	if pl.Items[1].Duration != 30*time.Second {
		t.Fatalf("video should use intrinsic duration, got %v", pl.Items[1].Duration)
	}
}
