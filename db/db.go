package db

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/tapchord/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// maxBatch is DynamoDB's BatchGetItem key limit.
const maxBatch = 100

// maxAttempts bounds how often keys DynamoDB left unprocessed are resent.
const maxAttempts = 4

// Store looks up optional score metadata keyed by score name (PK).
type Store struct {
	client  dynamodbiface.DynamoDBAPI
	table   string
	backoff time.Duration
	logger  *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithBackoff sets the first wait before unprocessed keys are resent. Each
// further attempt doubles it.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		s.backoff = d
	}
}

func NewStore(endpoint, table string, opts ...Option) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewStoreWithClient(dynamodb.New(sess), table, opts...), nil
}

func NewStoreWithClient(client dynamodbiface.DynamoDBAPI, table string, opts ...Option) *Store {
	s := &Store{
		client:  client,
		table:   table,
		backoff: 50 * time.Millisecond,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetScoreMetadatas fetches metadata for up to maxBatch names. Names with no
// item are absent from the result. Keys DynamoDB leaves unprocessed are
// resent with exponential backoff; an error is returned if some remain.
func (s *Store) GetScoreMetadatas(ctx context.Context, names []string) (map[string]model.ScoreMetadata, error) {
	if len(names) > maxBatch {
		return nil, errors.Errorf("at most %d names per lookup, got %d", maxBatch, len(names))
	}

	res := make(map[string]model.ScoreMetadata)
	if len(names) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, name := range names {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(name)},
		})
	}

	request := map[string]*dynamodb.KeysAndAttributes{
		s.table: {Keys: keys},
	}
	wait := s.backoff
	for attempt := 1; ; attempt++ {
		out, err := s.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return nil, errors.Wrap(err, "error from DynamoDB")
		}

		for _, item := range out.Responses[s.table] {
			pk, meta := s.parseMetadata(item)
			if pk != "" {
				res[pk] = meta
			}
		}

		pending := out.UnprocessedKeys[s.table]
		if pending == nil || len(pending.Keys) == 0 {
			return res, nil
		}
		if attempt == maxAttempts {
			return nil, errors.Errorf("%d keys still unprocessed after %d attempts", len(pending.Keys), attempt)
		}
		s.logger.Debug("retrying unprocessed keys", zap.Int("keys", len(pending.Keys)), zap.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "waiting to retry unprocessed keys")
		case <-time.After(wait):
		}
		wait *= 2
		request = map[string]*dynamodb.KeysAndAttributes{s.table: pending}
	}
}

func (s *Store) parseMetadata(item map[string]*dynamodb.AttributeValue) (string, model.ScoreMetadata) {
	var m model.ScoreMetadata
	pk := str(item, "PK")
	if v, ok := item["Year"]; ok && v.N != nil {
		year, err := strconv.ParseUint(*v.N, 10, 32)
		if err != nil {
			s.logger.Warn("ignoring malformed year", zap.String("pk", pk), zap.String("year", *v.N), zap.Error(err))
		} else {
			m.Year = uint(year)
		}
	}
	m.Title = str(item, "Title")
	m.Composer = str(item, "Composer")
	return pk, m
}

func str(item map[string]*dynamodb.AttributeValue, name string) string {
	if v, ok := item[name]; ok && v.S != nil {
		return *v.S
	}
	return ""
}
