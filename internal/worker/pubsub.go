package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality/gurugram"
)

// JobMessage is the payload published to the worker's job subscription.
type JobMessage struct {
	JobType string `json:"job_type"`

	// Areas restricts a warm_readings job to the named areas.
	// Empty means all configured targets.
	Areas []string `json:"areas,omitempty"`
}

// jobFunc runs one job. A returned error nacks the message for redelivery.
type jobFunc func(ctx context.Context, msg JobMessage) error

// JobConsumer pulls job messages from a Pub/Sub subscription and runs the
// matching warm job. Messages that can never succeed, a payload that does
// not decode or a job type nothing handles, are acked so they do not
// circle back forever. Only failures worth retrying nack.
type JobConsumer struct {
	client *pubsub.Client
	sub    *pubsub.Subscriber
	jobs   map[string]jobFunc
	warm   *WarmJob
	log    zerolog.Logger
}

// ConsumerConfig holds configuration for the job consumer.
type ConsumerConfig struct {
	ProjectID    string
	Subscription string
	WarmJob      *WarmJob
	Logger       zerolog.Logger

	// MaxOutstanding bounds concurrently processed messages. Zero means 10.
	MaxOutstanding int
}

// NewJobConsumer connects to Pub/Sub and builds the job table.
func NewJobConsumer(ctx context.Context, cfg ConsumerConfig) (*JobConsumer, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	outstanding := cfg.MaxOutstanding
	if outstanding <= 0 {
		outstanding = 10
	}

	sub := client.Subscriber(cfg.Subscription)
	sub.ReceiveSettings.MaxOutstandingMessages = outstanding
	sub.ReceiveSettings.MaxExtension = 10 * time.Minute

	c := &JobConsumer{
		client: client,
		sub:    sub,
		warm:   cfg.WarmJob,
		log:    cfg.Logger.With().Str("subscription", cfg.Subscription).Logger(),
	}
	c.jobs = map[string]jobFunc{
		"warm_readings": c.warmReadings,
		"refresh_all":   c.refreshAll,
		"health_check":  c.healthCheck,
	}
	return c, nil
}

// Start consumes messages until ctx is cancelled.
func (c *JobConsumer) Start(ctx context.Context) error {
	c.log.Info().Msg("job consumer started")
	return c.sub.Receive(ctx, c.receive)
}

// Close releases the Pub/Sub client.
func (c *JobConsumer) Close() error {
	return c.client.Close()
}

func (c *JobConsumer) receive(ctx context.Context, msg *pubsub.Message) {
	log := c.log.With().Str("message_id", msg.ID).Logger()

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		log.Error().Err(err).Msg("dropping undecodable job message")
		msg.Ack()
		return
	}

	run, ok := c.jobs[job.JobType]
	if !ok {
		log.Warn().Str("job_type", job.JobType).Msg("dropping job of unknown type")
		msg.Ack()
		return
	}

	start := time.Now()
	if err := run(ctx, job); err != nil {
		log.Error().Err(err).Str("job_type", job.JobType).Msg("job failed, nacking for redelivery")
		msg.Nack()
		return
	}

	log.Info().
		Str("job_type", job.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed")
	msg.Ack()
}

func (c *JobConsumer) warmReadings(ctx context.Context, msg JobMessage) error {
	job := c.warm
	if len(msg.Areas) > 0 {
		job = c.scoped(msg.Areas)
	}

	c.log.Info().Strs("areas", msg.Areas).Msg("warming readings")
	return checkWarmResult(job.Run(ctx))
}

func (c *JobConsumer) refreshAll(ctx context.Context, _ JobMessage) error {
	result := c.warm.Run(ctx)

	// The city weather panel warms too. Weather alone failing does not
	// fail the job.
	if err := c.warm.WarmCity(ctx); err != nil {
		c.log.Warn().Err(err).Msg("city weather warm failed")
	}

	c.log.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("failed", result.Failed).
		Msg("full refresh completed")

	return checkWarmResult(result)
}

func (c *JobConsumer) healthCheck(ctx context.Context, _ JobMessage) error {
	// Probe a single city-center fetch to verify provider connectivity.
	probe := NewWarmJob(WarmJobConfig{
		Config: WarmConfig{
			Targets: []WarmTarget{
				{Name: "health-check", Lat: gurugram.CityLat, Lon: gurugram.CityLon},
			},
			Concurrency:   1,
			Timeout:       10 * time.Second,
			WarmPollution: true,
		},
		Logger:    c.log,
		Pollution: c.warm.pollution,
	})

	if result := probe.Run(ctx); result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}
	return nil
}

// scoped builds a warm job restricted to the named areas, sharing this
// consumer's sources and metrics.
func (c *JobConsumer) scoped(areas []string) *WarmJob {
	wanted := make(map[string]bool, len(areas))
	for _, a := range areas {
		wanted[a] = true
	}

	cfg := c.warm.config
	cfg.Targets = nil
	for _, t := range c.warm.config.Targets {
		if wanted[t.Name] {
			cfg.Targets = append(cfg.Targets, t)
		}
	}

	return &WarmJob{
		config:    cfg,
		logger:    c.log,
		pollution: c.warm.pollution,
		weather:   c.warm.weather,
		metrics:   c.warm.metrics,
	}
}

// checkWarmResult tolerates partial failure. The job only counts as
// failed when failures outnumber successes.
func checkWarmResult(r *WarmResult) error {
	if r.Failed > r.Warmed {
		return fmt.Errorf("too many warm failures: %d/%d", r.Failed, r.TotalTargets)
	}
	return nil
}
