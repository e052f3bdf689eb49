package s3

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutObject struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutObject) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func testRoute(t *testing.T) *route.Route {
	t.Helper()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	window, err := kernel.NewTimeWindow(start, start.Add(time.Hour))
	require.NoError(t, err)

	line, err := order.NewSKULine("SKU-MILK-1L", 12, 1.05, 0.001, order.TemperatureRefrigerated, false)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.MustNewLocation(-1.28, 36.82), []order.SKULine{line}, &window, order.PriorityHigh)
	require.NoError(t, err)
	w, err := route.NewWaypointFromOrder(o)
	require.NoError(t, err)

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), kernel.MustNewLocation(-1.3, 36.8),
		time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), []route.Waypoint{w})
	require.NoError(t, err)
	return r
}

func TestNewManifestExporter_RequiresBucket(t *testing.T) {
	_, err := NewManifestExporter(&fakePutObject{}, "", "manifests")
	require.ErrorIs(t, err, ErrBucketIsRequired)

	_, err = NewManifestExporter(nil, "plans", "manifests")
	require.Error(t, err)
}

func TestManifestExporter_Export(t *testing.T) {
	client := &fakePutObject{}
	exporter, err := NewManifestExporter(client, "plans", "manifests")
	require.NoError(t, err)
	r := testRoute(t)

	location, err := exporter.Export(t.Context(), r)
	require.NoError(t, err)

	key := "manifests/" + r.ID().String() + "/v1.json"
	assert.Equal(t, "s3://plans/"+key, location)
	assert.Equal(t, "plans", aws.ToString(client.input.Bucket))
	assert.Equal(t, key, aws.ToString(client.input.Key))
	assert.Equal(t, "application/json", aws.ToString(client.input.ContentType))

	var got manifest
	require.NoError(t, json.Unmarshal(client.body, &got))
	assert.Equal(t, r.ID().String(), got.RouteID)
	assert.Equal(t, int64(1), got.Version)
	require.Len(t, got.Stops, 1)
	stop := got.Stops[0]
	assert.Equal(t, 1, stop.Sequence)
	assert.Equal(t, "scheduled", stop.Status)
	assert.Equal(t, []string{"refrigerated"}, stop.Temperature)
	require.NotNil(t, stop.WindowStart)
	assert.True(t, stop.WindowStart.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 3.14, stop.LegKm, 0.05)
	assert.InDelta(t, 45, stop.HeadingDeg, 0.5)
}

func TestNewManifest_LegsFollowVisitingOrder(t *testing.T) {
	line, err := order.NewSKULine("SKU-RICE-5KG", 2, 5, 0.01, order.TemperatureAmbient, false)
	require.NoError(t, err)

	var waypoints []route.Waypoint
	for _, loc := range []kernel.Location{kernel.MustNewLocation(0, 1), kernel.MustNewLocation(1, 1)} {
		o, err := order.NewOrder(kernel.NewUUID(), loc, []order.SKULine{line}, nil, order.PriorityNormal)
		require.NoError(t, err)
		w, err := route.NewWaypointFromOrder(o)
		require.NoError(t, err)
		waypoints = append(waypoints, w)
	}
	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), kernel.MustNewLocation(0, 0),
		time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), waypoints)
	require.NoError(t, err)

	m, err := newManifest(r)
	require.NoError(t, err)
	require.Len(t, m.Stops, 2)

	assert.InDelta(t, 111.19, m.Stops[0].LegKm, 0.01)
	assert.InDelta(t, 90, m.Stops[0].HeadingDeg, 1e-6)
	assert.InDelta(t, 111.19, m.Stops[1].LegKm, 0.01)
	assert.InDelta(t, 0, m.Stops[1].HeadingDeg, 1e-6)
}

func TestManifestExporter_Export_UploadFailure(t *testing.T) {
	exporter, err := NewManifestExporter(&fakePutObject{err: errors.New("access denied")}, "plans", "")
	require.NoError(t, err)

	_, err = exporter.Export(t.Context(), testRoute(t))
	require.ErrorContains(t, err, "access denied")
}

func TestManifestExporter_Key_WithoutPrefix(t *testing.T) {
	exporter, err := NewManifestExporter(&fakePutObject{}, "plans", "")
	require.NoError(t, err)
	r := testRoute(t)

	assert.Equal(t, r.ID().String()+"/v1.json", exporter.Key(r))
}
