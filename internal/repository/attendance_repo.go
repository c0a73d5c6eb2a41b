package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"liveclass-backend/internal/models"
)

// AttendanceRepo is the postgres side of the durable write-through:
// attendance rows, class end markers, and the chat archive kept for
// analytics. Callers treat every write as best effort.
type AttendanceRepo struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{pool: pool}
}

func (r *AttendanceRepo) RecordAttendance(ctx context.Context, courseID, userID, role string, joinedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO class_attendance (course_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, courseID, userID, role, joinedAt)
	return err
}

func (r *AttendanceRepo) MarkClassEnded(ctx context.Context, courseID string, endedAt time.Time) error {
	// The scheduled class row may not exist yet if the class was started
	// ad hoc; upsert so the end marker is never lost.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO live_classes (course_id, started_at, ended_at)
		VALUES ($1, NOW(), $2)
		ON CONFLICT (course_id)
		DO UPDATE SET ended_at = EXCLUDED.ended_at
	`, courseID, endedAt)
	return err
}

func (r *AttendanceRepo) ArchiveChatMessage(ctx context.Context, courseID string, msg models.ChatMessage) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO class_chat_messages (id, course_id, sender_id, sender_name, text, kind, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, msg.ID, courseID, msg.SenderID, msg.SenderName, msg.Text, msg.Kind, msg.Timestamp)
	return err
}
