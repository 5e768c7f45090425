package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-tracking/internal/config"
	"purchase-tracking/internal/database"
	"purchase-tracking/internal/email"
	"purchase-tracking/internal/parser"
)

// fakeEmailClient serves canned messages for processor tests
type fakeEmailClient struct {
	emails    []email.InboundEmail
	lastQuery string
}

func (f *fakeEmailClient) Search(query string) ([]email.InboundEmail, error) {
	f.lastQuery = query
	return f.emails, nil
}

func (f *fakeEmailClient) GetMessage(id string) (*email.InboundEmail, error) {
	for i := range f.emails {
		if f.emails[i].ID == id {
			return &f.emails[i], nil
		}
	}
	return nil, nil
}

func (f *fakeEmailClient) HealthCheck() error { return nil }
func (f *fakeEmailClient) Close() error       { return nil }

func newTestProcessor(t *testing.T, client *fakeEmailClient, cfg config.ProcessingConfig) (*EmailProcessor, *database.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	emailParser := parser.NewEmailParser(parser.NewPatternTable(), nil, nil)
	search := config.SearchConfig{Query: "from:orders@asos.com", MaxResults: 100}

	return NewEmailProcessor(client, db.Emails, emailParser, search, cfg, nil), db
}

func purchaseEmail(id string) email.InboundEmail {
	return email.InboundEmail{
		ID:       id,
		From:     "orders@asos.com",
		Subject:  "Your order is on its way",
		Date:     time.Date(2026, time.January, 22, 9, 0, 0, 0, time.UTC),
		BodyText: "Order #A1B2C3D4\nItems: Midi Floral Dress",
	}
}

func TestProcessOnceStoresResults(t *testing.T) {
	client := &fakeEmailClient{emails: []email.InboundEmail{purchaseEmail("msg-1"), purchaseEmail("msg-2")}}
	processor, db := newTestProcessor(t, client, config.ProcessingConfig{MaxEmailsPerRun: 50})

	stats, err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)

	stored, err := db.Emails.GetByMessageID("msg-1")
	require.NoError(t, err)
	assert.Equal(t, database.StatusProcessed, stored.Status)

	result, err := stored.Result()
	require.NoError(t, err)
	assert.Equal(t, "ASOS", result.RetailerName)
}

func TestProcessOnceSkipsAlreadyProcessed(t *testing.T) {
	client := &fakeEmailClient{emails: []email.InboundEmail{purchaseEmail("msg-1")}}
	processor, _ := newTestProcessor(t, client, config.ProcessingConfig{MaxEmailsPerRun: 50})

	stats, err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	stats, err = processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestProcessOnceHonorsPerRunLimit(t *testing.T) {
	client := &fakeEmailClient{}
	for i := 0; i < 5; i++ {
		client.emails = append(client.emails, purchaseEmail("msg-"+string(rune('a'+i))))
	}
	processor, _ := newTestProcessor(t, client, config.ProcessingConfig{MaxEmailsPerRun: 3})

	stats, err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Found)
	assert.Equal(t, 3, stats.Processed)
}

func TestProcessOnceDryRunStoresNothing(t *testing.T) {
	client := &fakeEmailClient{emails: []email.InboundEmail{purchaseEmail("msg-1")}}
	processor, db := newTestProcessor(t, client, config.ProcessingConfig{MaxEmailsPerRun: 50, DryRun: true})

	stats, err := processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	done, err := db.Emails.IsProcessed("msg-1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestBuildQuery(t *testing.T) {
	client := &fakeEmailClient{}
	processor, _ := newTestProcessor(t, client, config.ProcessingConfig{MaxEmailsPerRun: 50})
	processor.search = config.SearchConfig{Query: "subject:order", AfterDays: 7, UnreadOnly: true}

	query := processor.buildQuery()
	assert.Contains(t, query, "subject:order")
	assert.Contains(t, query, "after:")
	assert.Contains(t, query, "is:unread")

	processor.search = config.SearchConfig{}
	assert.Contains(t, processor.buildQuery(), "subject:order OR subject:shipped")
}
