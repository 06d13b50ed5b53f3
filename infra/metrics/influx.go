package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/velosched/velosched/core/metrics"
	"github.com/velosched/velosched/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMaterializeRun writes the pass summary as a line protocol event.
func (s *InfluxSink) RecordMaterializeRun(run coremetrics.MaterializeRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("materialize_run").
		AddTag("component", "planner").
		AddField("created", run.Created).
		AddField("pruned", run.Pruned).
		AddField("failed", run.Failed).
		SetTime(run.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPartition writes a partition computation.
func (s *InfluxSink) RecordPartition(res coremetrics.PartitionResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("partition_event").
		AddTag("date", string(res.Date)).
		AddTag("infeasible", strconv.FormatBool(res.Infeasible)).
		AddTag("component", "planner").
		AddField("groups", res.GroupCount).
		AddField("riders", res.Riders).
		AddField("coaches", res.Coaches).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLifecycle writes a lifecycle transition.
func (s *InfluxSink) RecordLifecycle(ch coremetrics.LifecycleChange) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("lifecycle_transition").
		AddTag("practice_id", ch.PracticeID).
		AddTag("date", string(ch.Date)).
		AddTag("transition", ch.Transition).
		AddTag("component", "planner").
		AddField("count", 1).
		SetTime(ch.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
