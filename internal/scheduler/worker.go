package scheduler

import (
	"context"
	"fmt"
	"time"

	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	leadsrepo "pipeline_board_backend/internal/leads/repository"
	"pipeline_board_backend/platform/config"
	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds how many organizations are evaluated in parallel.
const sweepConcurrency = 4

// reminderQuietHours is the contact silence after which a warning-stage lead
// earns a follow-up reminder.
const reminderQuietHours = 12

// timeNow is swapped in tests.
var timeNow = time.Now

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	enqueuer *Client
	leads    *leadsrepo.Repository
	calc     *timeline.Calculator
	bus      events.Bus
	log      *logger.Logger
}

// WorkerConfig combines the settings the sweep worker consumes.
type WorkerConfig interface {
	config.SchedulerConfig
	config.PhoneConfig
}

func NewWorker(cfg WorkerConfig, client *crmclient.Client, calc *timeline.Calculator, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	enqueuer, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		enqueuer: enqueuer,
		leads:    leadsrepo.New(client, cfg.GetPhoneRegion()),
		calc:     calc,
		bus:      bus,
		log:      log,
	}

	mux.HandleFunc(TaskSLASweep, w.handleSLASweep)
	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
	_ = w.enqueuer.Close()
}

func contactedRecently(tl timeline.Result) bool {
	return tl.LastContactHoursAgo != nil && *tl.LastContactHoursAgo <= reminderQuietHours
}

// handleSLASweep evaluates leads against the SLA table and publishes a breach
// event per overdue lead, followed by an external refresh so boards pick up
// the new urgency.
func (w *Worker) handleSLASweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSLASweepPayload(task)
	if err != nil {
		return err
	}

	var orgIDs []uuid.UUID
	if payload.OrganizationID != "" {
		orgID, err := uuid.Parse(payload.OrganizationID)
		if err != nil {
			return err
		}
		orgIDs = []uuid.UUID{orgID}
	} else {
		orgIDs, err = w.leads.ListOrganizationIDs(ctx)
		if err != nil {
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(sweepConcurrency)
	for _, orgID := range orgIDs {
		orgID := orgID
		group.Go(func() error {
			return w.sweepOrganization(groupCtx, orgID)
		})
	}
	return group.Wait()
}

func (w *Worker) sweepOrganization(ctx context.Context, orgID uuid.UUID) error {
	items, err := w.leads.List(ctx, orgID)
	if err != nil {
		return err
	}

	breaches := 0
	now := timeNow()
	for _, lead := range items {
		tl := w.calc.Compute(lead.CreatedAt, lead.Source, lead.LastContactDate, now)

		if tl.Status == timeline.StatusWarning && !contactedRecently(tl) {
			// A quiet lead close to its deadline gets a reminder at the
			// deadline itself. The task id dedupes across sweeps.
			err := w.enqueuer.ScheduleFollowUpReminder(ctx, FollowUpReminderPayload{
				LeadID:         lead.ID.String(),
				OrganizationID: orgID.String(),
			}, tl.DeadlineDate)
			if err != nil {
				w.log.Error("failed to schedule follow-up reminder", "orgId", orgID, "leadId", lead.ID, "error", err)
			}
			continue
		}

		if tl.Status != timeline.StatusOverdue && tl.Status != timeline.StatusCritical {
			continue
		}
		breaches++
		w.bus.Publish(ctx, events.LeadSLABreached{
			BaseEvent:      events.NewBaseEvent(),
			OrganizationID: orgID,
			LeadID:         lead.ID,
			TimelineStatus: string(tl.Status),
			UrgencyLevel:   tl.UrgencyLevel,
		})
	}

	if breaches > 0 {
		w.log.Info("sla sweep found breaches", "orgId", orgID, "count", breaches)
		w.bus.Publish(ctx, events.BoardRefreshRequested{
			BaseEvent:      events.NewBaseEvent(),
			OrganizationID: orgID,
			Origin:         events.RefreshOriginExternal,
			Reason:         "sla_sweep",
		})
	}
	return nil
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	w.log.Info("follow-up reminder due", "orgId", orgID, "leadId", leadID)
	w.bus.Publish(ctx, events.BoardRefreshRequested{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: orgID,
		Origin:         events.RefreshOriginExternal,
		Reason:         "followup_reminder",
	})
	return nil
}
