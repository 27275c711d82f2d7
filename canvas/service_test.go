package canvas

import (
	"context"
	"sync"
	"testing"
	"time"

	"canvas-earth/core"
	"canvas-earth/stores/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []core.ChangeEvent
}

func (c *capturePublisher) Publish(event core.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturePublisher) all() []core.ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.ChangeEvent, len(c.events))
	copy(out, c.events)
	return out
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newTestService() (*Service, *capturePublisher) {
	store := memory.NewStore()
	events := &capturePublisher{}
	return NewService(store, store, nil, events), events
}

func createParams() CreateParams {
	return CreateParams{
		ObjectType: core.ObjectTypeImage,
		ContentURL: "https://example.com/cat.png",
		PositionX:  floatPtr(0),
		PositionY:  floatPtr(0),
		Width:      floatPtr(100),
		Height:     floatPtr(100),
	}
}

func TestCreateThenGetReturnsIdenticalSnapshot(t *testing.T) {
	service, events := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, core.ObjectTypeImage, created.ObjectType)
	assert.Equal(t, 0, created.ZIndex)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, core.EventCreate, published[0].Type)
	assert.Equal(t, created, published[0].Object)
}

func TestCreateRejectsInvalidGeometry(t *testing.T) {
	service, events := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"missing positionX", func(p *CreateParams) { p.PositionX = nil }},
		{"missing width", func(p *CreateParams) { p.Width = nil }},
		{"zero width", func(p *CreateParams) { p.Width = floatPtr(0) }},
		{"negative height", func(p *CreateParams) { p.Height = floatPtr(-5) }},
		{"position out of bounds", func(p *CreateParams) { p.PositionX = floatPtr(1_000_001) }},
		{"negative zIndex", func(p *CreateParams) { p.ZIndex = intPtr(-1) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := createParams()
			tc.mutate(&p)
			_, err := service.Create(ctx, p)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
		})
	}

	// Failed mutations never publish.
	assert.Empty(t, events.all())
}

func TestCreateRejectsInvalidTextStyle(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	p := createParams()
	p.ObjectType = core.ObjectTypeText
	p.FontSize = 4
	_, err := service.Create(ctx, p)
	assert.True(t, core.IsValidation(err))

	p = createParams()
	p.FontWeight = "heavy"
	_, err = service.Create(ctx, p)
	assert.True(t, core.IsValidation(err))

	p = createParams()
	p.TextColor = "red"
	_, err = service.Create(ctx, p)
	assert.True(t, core.IsValidation(err))
}

func TestCreateResolvesOwnerSilently(t *testing.T) {
	store := memory.NewStore()
	events := &capturePublisher{}
	service := NewService(store, store, nil, events)
	ctx := context.Background()

	// Unknown owner: object is created without one, no error.
	p := createParams()
	p.OwnerID = "nobody"
	created, err := service.Create(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, created.OwnerID)

	// Known owner sticks.
	user, err := store.SaveUser(ctx, &core.User{Login: "ada"})
	require.NoError(t, err)
	p = createParams()
	p.OwnerID = user.ID
	created, err = service.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.OwnerID)
}

func TestCreatedAtMonotonicallyNonDecreasing(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	var previous time.Time
	for i := 0; i < 50; i++ {
		created, err := service.Create(ctx, createParams())
		require.NoError(t, err)
		assert.False(t, created.CreatedAt.Before(previous))
		previous = created.CreatedAt
	}
}

func TestPartialUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	service, events := newTestService()
	ctx := context.Background()

	p := createParams()
	p.ZIndex = intPtr(3)
	created, err := service.Create(ctx, p)
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, core.ObjectPatch{Width: floatPtr(50)})
	require.NoError(t, err)

	assert.Equal(t, 50.0, updated.Width)
	assert.Equal(t, created.Height, updated.Height)
	assert.Equal(t, created.PositionX, updated.PositionX)
	assert.Equal(t, created.PositionY, updated.PositionY)
	assert.Equal(t, created.ZIndex, updated.ZIndex)
	assert.Equal(t, created.ContentURL, updated.ContentURL)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	published := events.all()
	require.Len(t, published, 2)
	assert.Equal(t, core.EventUpdate, published[1].Type)
	assert.Equal(t, updated, published[1].Object)
}

func TestUpdateValidatesProvidedFieldsOnly(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, core.ObjectPatch{Width: floatPtr(-1)})
	assert.True(t, core.IsValidation(err))

	// A patch not touching width never re-checks it.
	_, err = service.Update(ctx, created.ID, core.ObjectPatch{PositionX: floatPtr(999)})
	assert.NoError(t, err)
}

func TestUpdateMissingObjectIsNotFound(t *testing.T) {
	service, events := newTestService()

	_, err := service.Update(context.Background(), "missing", core.ObjectPatch{Width: floatPtr(10)})
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Empty(t, events.all())
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	service, events := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	assert.True(t, core.IsNotFound(err))

	assert.True(t, core.IsNotFound(service.Delete(ctx, created.ID)))

	published := events.all()
	require.Len(t, published, 2)
	assert.Equal(t, core.EventDelete, published[1].Type)
	assert.Equal(t, created.ID, published[1].ObjectID)
	assert.Nil(t, published[1].Object)
}

func TestUpdateThenDeleteEventOrder(t *testing.T) {
	service, events := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, core.ObjectPatch{PositionX: floatPtr(999)})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	assert.True(t, core.IsNotFound(err))

	published := events.all()
	require.Len(t, published, 3)
	assert.Equal(t, core.EventCreate, published[0].Type)
	assert.Equal(t, core.EventUpdate, published[1].Type)
	assert.Equal(t, 999.0, published[1].Object.PositionX)
	assert.Equal(t, core.EventDelete, published[2].Type)
}

func TestConcurrentUpdatesToSameObjectDoNotInterleave(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			patch := core.ObjectPatch{
				PositionX: floatPtr(float64(i)),
				PositionY: floatPtr(float64(i)),
			}
			_, err := service.Update(ctx, created.ID, patch)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Last write wins per whole request: both coordinates come from the
	// same patch, never a mix of two.
	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, got.PositionX, got.PositionY)
}
