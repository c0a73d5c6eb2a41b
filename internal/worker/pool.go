package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"liveclass-backend/internal/persist"
	"liveclass-backend/internal/repository"
)

// Pool drains the persistence queues into postgres. Failures are
// logged and the job is dropped; the write-through contract is best
// effort, so there is no retry or dead-letter handling.
type Pool struct {
	redis       *redis.Client
	pubsub      *redis.Client
	repo        *repository.AttendanceRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient, pubsubClient *redis.Client, repo *repository.AttendanceRepo, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		pubsub:      pubsubClient,
		repo:        repo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		persist.QueueAttendance,
		persist.QueueClassEvents,
		persist.QueueChatArchive,
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d persistence workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job persist.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		if err := p.process(ctx, &job); err != nil {
			log.Printf("Worker %d: job %s (%s) failed: %v", id, job.ID, job.Type, err)
		}
	}
}

func (p *Pool) process(ctx context.Context, job *persist.Job) error {
	switch job.Type {
	case persist.JobAttendance:
		var payload persist.AttendancePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad attendance payload: %w", err)
		}
		if err := p.repo.RecordAttendance(ctx, job.CourseID, payload.UserID, payload.Role, payload.JoinedAt); err != nil {
			return err
		}
		p.publish(ctx, job.CourseID, "attendance-recorded", payload.UserID)
		return nil

	case persist.JobClassEnded:
		var payload persist.ClassEndedPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad class-ended payload: %w", err)
		}
		if err := p.repo.MarkClassEnded(ctx, job.CourseID, payload.EndedAt); err != nil {
			return err
		}
		p.publish(ctx, job.CourseID, "class-ended", "")
		return nil

	case persist.JobChatArchive:
		var payload persist.ChatArchivePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad chat-archive payload: %w", err)
		}
		return p.repo.ArchiveChatMessage(ctx, job.CourseID, payload.Message)

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// publish pushes a notice onto the per-class pub/sub channel for
// out-of-process consumers (dashboards, notification service).
func (p *Pool) publish(ctx context.Context, courseID, event, userID string) {
	notice, err := json.Marshal(map[string]string{
		"event":  event,
		"userId": userID,
		"course": courseID,
	})
	if err != nil {
		return
	}
	if err := p.pubsub.Publish(ctx, "class_updates:"+courseID, notice).Err(); err != nil {
		log.Printf("Failed to publish %s notice for class %s: %v", event, courseID, err)
	}
}
