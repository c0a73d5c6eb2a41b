package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"liveclass-backend/internal/models"
)

const (
	QueueAttendance  = "queue:attendance"
	QueueClassEvents = "queue:class-events"
	QueueChatArchive = "queue:chat-archive"
)

const (
	JobAttendance  = "attendance"
	JobClassEnded  = "class-ended"
	JobChatArchive = "chat-archive"
)

// Job is one write-through unit pushed onto redis and drained by the
// worker pool. The real-time path only ever enqueues; the slow postgres
// write happens on the other side of the queue.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	CourseID   string          `json:"course_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type AttendancePayload struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type ClassEndedPayload struct {
	EndedAt time.Time `json:"ended_at"`
}

type ChatArchivePayload struct {
	Message models.ChatMessage `json:"message"`
}

// Queue implements live.DurableStore by enqueueing jobs instead of
// writing postgres inline, so a slow durable store never blocks
// message delivery.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func (q *Queue) RecordAttendance(ctx context.Context, courseID, userID, role string, joinedAt time.Time) error {
	return q.enqueue(ctx, QueueAttendance, JobAttendance, courseID, AttendancePayload{
		UserID:   userID,
		Role:     role,
		JoinedAt: joinedAt,
	})
}

func (q *Queue) MarkClassEnded(ctx context.Context, courseID string, endedAt time.Time) error {
	return q.enqueue(ctx, QueueClassEvents, JobClassEnded, courseID, ClassEndedPayload{EndedAt: endedAt})
}

func (q *Queue) ArchiveChatMessage(ctx context.Context, courseID string, msg models.ChatMessage) error {
	return q.enqueue(ctx, QueueChatArchive, JobChatArchive, courseID, ChatArchivePayload{Message: msg})
}

func (q *Queue) enqueue(ctx context.Context, queue, jobType, courseID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", jobType, err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		CourseID:   courseID,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal %s job: %w", jobType, err)
	}

	if err := q.redis.LPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	return nil
}
