// Package s3 stores route manifests in an S3 compatible bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"tripplanner/internal/core/domain/model/route"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrBucketIsRequired = errors.New("bucket is required")

// putObjectAPI is the part of *s3.Client the exporter needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type manifestStop struct {
	Sequence         int        `json:"sequence"`
	OrderID          string     `json:"order_id"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	Fragile          bool       `json:"fragile"`
	Temperature      []string   `json:"temperature_classes"`
	WeightKg         float64    `json:"weight_kg"`
	VolumeM3         float64    `json:"volume_m3"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	WindowStart      *time.Time `json:"window_start,omitempty"`
	WindowEnd        *time.Time `json:"window_end,omitempty"`
	LegKm            float64    `json:"leg_km"`
	HeadingDeg       float64    `json:"heading_deg"`
}

type manifest struct {
	RouteID                string         `json:"route_id"`
	TripGroupID            string         `json:"trip_group_id"`
	Version                int64          `json:"version"`
	DepartAt               time.Time      `json:"depart_at"`
	OriginLatitude         float64        `json:"origin_latitude"`
	OriginLongitude        float64        `json:"origin_longitude"`
	TotalDistanceKm        float64        `json:"total_distance_km"`
	EstimatedDurationHours float64        `json:"estimated_duration_hours"`
	WeightKg               float64        `json:"weight_kg"`
	VolumeM3               float64        `json:"volume_m3"`
	ConstraintsSatisfied   bool           `json:"constraints_satisfied"`
	Stops                  []manifestStop `json:"stops"`
}

// ManifestExporter writes one JSON manifest per route version under
// <prefix>/<route id>/v<version>.json.
type ManifestExporter struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewManifestExporter builds an exporter on an existing client.
func NewManifestExporter(client putObjectAPI, bucket, prefix string) (*ManifestExporter, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, ErrBucketIsRequired
	}
	return &ManifestExporter{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewClient loads the default AWS configuration for region. A non-empty endpoint
// switches to path-style addressing for S3 compatible stores such as MinIO.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Export uploads the manifest of r and returns its s3:// location.
func (e *ManifestExporter) Export(ctx context.Context, r *route.Route) (string, error) {
	if r == nil {
		return "", errors.New("route is nil")
	}

	m, err := newManifest(r)
	if err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}

	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	key := e.Key(r)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload manifest to S3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", e.bucket, key), nil
}

// Key is the object key of the manifest of r.
func (e *ManifestExporter) Key(r *route.Route) string {
	return path.Join(e.prefix, r.ID().String(), fmt.Sprintf("v%d.json", r.Version()))
}

// newManifest lists the stops in visiting order. Each stop carries the leg
// distance and compass heading from the previous stop, or from the origin for
// the first one.
func newManifest(r *route.Route) (manifest, error) {
	waypoints := r.Waypoints()
	stops := make([]manifestStop, 0, len(waypoints))
	prev := r.Origin()
	for _, w := range waypoints {
		legKm, err := prev.DistanceKm(w.Location())
		if err != nil {
			return manifest{}, err
		}
		heading, err := prev.BearingTo(w.Location())
		if err != nil {
			return manifest{}, err
		}
		prev = w.Location()

		classes := w.TemperatureClasses()
		temps := make([]string, 0, len(classes))
		for _, c := range classes {
			temps = append(temps, c.String())
		}

		stop := manifestStop{
			Sequence:         w.Sequence(),
			OrderID:          w.OrderID().String(),
			Latitude:         w.Location().Lat(),
			Longitude:        w.Location().Lon(),
			Status:           w.Status().String(),
			Priority:         w.Priority().String(),
			Fragile:          w.Fragile(),
			Temperature:      temps,
			WeightKg:         w.WeightKg(),
			VolumeM3:         w.VolumeM3(),
			EstimatedArrival: w.EstimatedArrival(),
			LegKm:            legKm,
			HeadingDeg:       heading,
		}
		if window := w.Window(); window != nil {
			start, end := window.Start(), window.End()
			stop.WindowStart, stop.WindowEnd = &start, &end
		}
		stops = append(stops, stop)
	}

	return manifest{
		RouteID:                r.ID().String(),
		TripGroupID:            r.TripGroupID().String(),
		Version:                r.Version(),
		DepartAt:               r.DepartAt(),
		OriginLatitude:         r.Origin().Lat(),
		OriginLongitude:        r.Origin().Lon(),
		TotalDistanceKm:        r.TotalDistanceKm(),
		EstimatedDurationHours: r.EstimatedDurationHours(),
		WeightKg:               r.WeightKg(),
		VolumeM3:               r.VolumeM3(),
		ConstraintsSatisfied:   r.ConstraintsSatisfied(),
		Stops:                  stops,
	}, nil
}
