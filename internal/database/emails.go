package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"purchase-tracking/internal/email"
)

// Processing statuses for stored emails
const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProcessedEmail represents a stored inbound email and its parse outcome
type ProcessedEmail struct {
	ID           int       `json:"id"`
	MessageID    string    `json:"message_id"`
	ThreadID     string    `json:"thread_id,omitempty"`
	Sender       string    `json:"sender"`
	Subject      string    `json:"subject"`
	Date         time.Time `json:"date"`
	BodyText     string    `json:"body_text,omitempty"`
	BodyHTML     string    `json:"body_html,omitempty"`
	Status       string    `json:"status"`
	ParseResult  string    `json:"parse_result,omitempty"` // JSON encoded
	ErrorMessage string    `json:"error_message,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Result decodes the stored parse result
func (p *ProcessedEmail) Result() (*email.ParseResult, error) {
	if p.ParseResult == "" {
		return nil, nil
	}
	result := &email.ParseResult{}
	if err := json.Unmarshal([]byte(p.ParseResult), result); err != nil {
		return nil, fmt.Errorf("failed to decode parse result: %w", err)
	}
	return result, nil
}

// EmailStore handles database operations for processed emails
type EmailStore struct {
	db *sql.DB
}

// NewEmailStore creates a new email store
func NewEmailStore(db *sql.DB) *EmailStore {
	return &EmailStore{db: db}
}

// Save inserts a processed email with its parse result. The message ID
// is unique; saving the same message twice updates the stored outcome.
func (s *EmailStore) Save(msg *email.InboundEmail, result *email.ParseResult, status, errorMessage string) (*ProcessedEmail, error) {
	var encoded string
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode parse result: %w", err)
		}
		encoded = string(data)
	}

	now := time.Now().UTC()
	query := `INSERT INTO processed_emails
		(message_id, thread_id, sender, subject, date, body_text, body_html, status, parse_result, error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			status = excluded.status,
			parse_result = excluded.parse_result,
			error_message = excluded.error_message,
			processed_at = excluded.processed_at`

	if _, err := s.db.Exec(query, msg.ID, msg.ThreadID, msg.From, msg.Subject, msg.Date,
		msg.BodyText, msg.BodyHTML, status, encoded, errorMessage, now); err != nil {
		return nil, fmt.Errorf("failed to save email: %w", err)
	}

	return s.GetByMessageID(msg.ID)
}

// GetByMessageID retrieves a processed email by provider message ID
func (s *EmailStore) GetByMessageID(messageID string) (*ProcessedEmail, error) {
	query := `SELECT id, message_id, thread_id, sender, subject, date, body_text, body_html,
		status, parse_result, error_message, processed_at, created_at
		FROM processed_emails WHERE message_id = ?`
	return s.scanOne(s.db.QueryRow(query, messageID))
}

// GetByID retrieves a processed email by row ID
func (s *EmailStore) GetByID(id int) (*ProcessedEmail, error) {
	query := `SELECT id, message_id, thread_id, sender, subject, date, body_text, body_html,
		status, parse_result, error_message, processed_at, created_at
		FROM processed_emails WHERE id = ?`
	return s.scanOne(s.db.QueryRow(query, id))
}

// IsProcessed reports whether a message ID has already been handled
func (s *EmailStore) IsProcessed(messageID string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM processed_emails WHERE message_id = ?`, messageID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check processed state: %w", err)
	}
	return count > 0, nil
}

// List returns recent processed emails, newest first
func (s *EmailStore) List(limit int) ([]ProcessedEmail, error) {
	if limit < 1 {
		limit = 50
	}
	query := `SELECT id, message_id, thread_id, sender, subject, date, body_text, body_html,
		status, parse_result, error_message, processed_at, created_at
		FROM processed_emails ORDER BY date DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	emails := []ProcessedEmail{}
	for rows.Next() {
		var entry ProcessedEmail
		var threadID, bodyText, bodyHTML, parseResult, errorMessage sql.NullString
		if err := rows.Scan(&entry.ID, &entry.MessageID, &threadID, &entry.Sender, &entry.Subject,
			&entry.Date, &bodyText, &bodyHTML, &entry.Status, &parseResult, &errorMessage,
			&entry.ProcessedAt, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		entry.ThreadID = threadID.String
		entry.BodyText = bodyText.String
		entry.BodyHTML = bodyHTML.String
		entry.ParseResult = parseResult.String
		entry.ErrorMessage = errorMessage.String
		emails = append(emails, entry)
	}
	return emails, rows.Err()
}

// DeleteOlderThan removes stored emails past the retention window and
// returns how many were deleted.
func (s *EmailStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM processed_emails WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old emails: %w", err)
	}
	return result.RowsAffected()
}

func (s *EmailStore) scanOne(row *sql.Row) (*ProcessedEmail, error) {
	var entry ProcessedEmail
	var threadID, bodyText, bodyHTML, parseResult, errorMessage sql.NullString
	err := row.Scan(&entry.ID, &entry.MessageID, &threadID, &entry.Sender, &entry.Subject,
		&entry.Date, &bodyText, &bodyHTML, &entry.Status, &parseResult, &errorMessage,
		&entry.ProcessedAt, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("email not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan email: %w", err)
	}
	entry.ThreadID = threadID.String
	entry.BodyText = bodyText.String
	entry.BodyHTML = bodyHTML.String
	entry.ParseResult = parseResult.String
	entry.ErrorMessage = errorMessage.String
	return &entry, nil
}
