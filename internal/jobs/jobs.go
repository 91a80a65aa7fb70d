package jobs

import (
	"context"
	"fmt"
	"time"

	"depositdesk/internal/db"
	"depositdesk/internal/model"
	"depositdesk/internal/pubsub"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type JobServer struct {
	server *asynq.Server
	client *asynq.Client
	db     *db.Pool
	bus    *pubsub.Bus
	log    *zap.Logger
}

func NewJobServer(redisAddr string, dbPool *db.Pool, bus *pubsub.Bus, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server: server,
		client: client,
		db:     dbPool,
		bus:    bus,
		log:    log,
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc("claim:deadline_remind", js.handleDeadlineReminder)
	mux.HandleFunc("claim:inspection_complete", js.handleInspectionComplete)

	return js.server.Start(mux)
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// Job handlers

func (js *JobServer) handleDeadlineReminder(ctx context.Context, t *asynq.Task) error {
	caseID := string(t.Payload())

	cs, err := js.db.Queries.GetCaseByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to get claim case: %w", err)
	}
	items, err := js.db.Queries.GetItemsByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to get claim items: %w", err)
	}

	// Only remind while something still awaits a tenant response
	awaiting := 0
	for _, it := range items {
		if it.AwaitingResponse() {
			awaiting++
		}
	}
	if awaiting == 0 {
		return nil
	}

	event := map[string]interface{}{
		"type":    "claim.deadline_approaching",
		"caseId":  caseID,
		"pending": awaiting,
	}
	if cs.ResponseDeadline != nil {
		event["deadlineAt"] = cs.ResponseDeadline.Format(time.RFC3339)
	}
	_ = js.bus.PublishCase(caseID, event)

	js.log.Info("Deadline reminder sent", zap.String("case_id", caseID), zap.Int("pending", awaiting))
	return nil
}

func (js *JobServer) handleInspectionComplete(ctx context.Context, t *asynq.Task) error {
	caseID := string(t.Payload())

	cs, err := js.db.Queries.GetCaseByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to get claim case: %w", err)
	}

	// Inspection window still open, someone rescheduled it
	if cs.InspectionEndsAt != nil && cs.InspectionEndsAt.After(time.Now()) {
		return nil
	}

	// Claims become visible to the tenant once inspection ends
	if err := js.db.Queries.UpdateCaseItemsStatus(ctx, caseID,
		string(model.StatusSubmitted), string(model.StatusTenantNotified)); err != nil {
		return fmt.Errorf("failed to notify tenant of claims: %w", err)
	}

	_ = js.bus.PublishCase(caseID, map[string]interface{}{
		"type":   "claim.inspection_complete",
		"caseId": caseID,
	})

	js.log.Info("Inspection period completed", zap.String("case_id", caseID))
	return nil
}

// Schedule jobs

func ScheduleDeadlineReminder(client *asynq.Client, caseID string, deadlineAt time.Time) error {
	// Remind 24 hours before the response deadline
	remindAt := deadlineAt.Add(-24 * time.Hour)
	if remindAt.Before(time.Now()) {
		return nil // Already past reminder time
	}

	task := asynq.NewTask("claim:deadline_remind", []byte(caseID))
	_, err := client.Enqueue(task, asynq.ProcessIn(time.Until(remindAt)))
	return err
}

func ScheduleInspectionComplete(client *asynq.Client, caseID string, endsAt time.Time) error {
	task := asynq.NewTask("claim:inspection_complete", []byte(caseID))
	_, err := client.Enqueue(task, asynq.ProcessIn(time.Until(endsAt)))
	return err
}
