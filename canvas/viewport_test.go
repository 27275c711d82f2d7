package canvas

import (
	"context"
	"testing"

	"canvas-earth/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, service *Service, x, y, w, h float64, zIndex int) *core.CanvasObject {
	t.Helper()
	object, err := service.Create(context.Background(), CreateParams{
		ObjectType: core.ObjectTypeImage,
		PositionX:  floatPtr(x),
		PositionY:  floatPtr(y),
		Width:      floatPtr(w),
		Height:     floatPtr(h),
		ZIndex:     intPtr(zIndex),
	})
	require.NoError(t, err)
	return object
}

func ids(objects []*core.CanvasObject) []string {
	out := make([]string, len(objects))
	for i, o := range objects {
		out[i] = o.ID
	}
	return out
}

func TestViewportNoBoundsReturnsEverything(t *testing.T) {
	service, _ := newTestService()

	a := mustCreate(t, service, 0, 0, 10, 10, 0)
	b := mustCreate(t, service, 5000, 5000, 10, 10, 0)

	visible, err := service.Viewport(context.Background(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids(visible))
}

func TestViewportOverlapIsInclusiveAtEdges(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	// Box [0,100]x[0,100].
	object := mustCreate(t, service, 0, 0, 100, 100, 0)

	// Query rectangle touching the right edge exactly.
	visible, err := service.Viewport(ctx, &core.Bounds{MinX: 100, MinY: 0, MaxX: 200, MaxY: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{object.ID}, ids(visible))

	// Touching the bottom edge.
	visible, err = service.Viewport(ctx, &core.Bounds{MinX: 0, MinY: 100, MaxX: 100, MaxY: 200})
	require.NoError(t, err)
	assert.Equal(t, []string{object.ID}, ids(visible))

	// Strictly outside by the smallest margin that matters.
	visible, err = service.Viewport(ctx, &core.Bounds{MinX: 100.5, MinY: 0, MaxX: 200, MaxY: 100})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestViewportSpecScenario(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first := mustCreate(t, service, 0, 0, 100, 100, 0)
	second := mustCreate(t, service, 50, 50, 100, 100, 1)

	visible, err := service.Viewport(ctx, &core.Bounds{MinX: 40, MinY: 40, MaxX: 60, MaxY: 60})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, ids(visible))

	visible, err = service.Viewport(ctx, &core.Bounds{MinX: 200, MinY: 200, MaxX: 300, MaxY: 300})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestViewportOrderingIgnoresInsertionOrder(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	// Insert high zIndex first to prove ordering is not insertion order.
	top := mustCreate(t, service, 0, 0, 10, 10, 5)
	bottom := mustCreate(t, service, 0, 0, 10, 10, 0)
	middleOld := mustCreate(t, service, 0, 0, 10, 10, 2)
	middleNew := mustCreate(t, service, 0, 0, 10, 10, 2)

	visible, err := service.Viewport(ctx, nil)
	require.NoError(t, err)

	// zIndex ascending; equal zIndex in creation order.
	assert.Equal(t, []string{bottom.ID, middleOld.ID, middleNew.ID, top.ID}, ids(visible))
}

func TestViewportReflectsLatestCommittedState(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	object := mustCreate(t, service, 0, 0, 10, 10, 0)

	// Move it out of the queried region; the query must see the move.
	_, err := service.Update(ctx, object.ID, core.ObjectPatch{PositionX: floatPtr(500)})
	require.NoError(t, err)

	visible, err := service.Viewport(ctx, &core.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})
	require.NoError(t, err)
	assert.Empty(t, visible)
}
