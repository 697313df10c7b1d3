package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	repoimpl "mediconnect/internal/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.MedicalDocument{},
		&entity.Appointment{},
		&entity.Consultation{},
		&entity.CommunityPost{},
		&entity.CommunityComment{},
		&entity.Message{},
		&entity.Notification{},
		&entity.Product{},
		&entity.AuditLog{},
	))

	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newAuditService(log *logrus.Logger) service.AuditService {
	return service.NewAuditService(log, repoimpl.NewAuditLogRepository())
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// memTokenStore is an in-memory TokenStore.
type memTokenStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{keys: map[string]bool{}}
}

func (s *memTokenStore) Store(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return nil
}

func (s *memTokenStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memTokenStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.keys, k)
	}
	return nil
}

// DeleteMatching supports the trailing "*" patterns used for token revocation.
func (s *memTokenStore) DeleteMatching(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			delete(s.keys, k)
		}
	}
	return nil
}

// stubProfileRepo wraps the real repository and lets a test fail single calls.
type stubProfileRepo struct {
	repository.ProfileRepository
	findErr   error
	insertErr error
	inserts   int
}

func (r *stubProfileRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.ProfileRepository.FindByID(ctx, db, id)
}

func (r *stubProfileRepo) InsertIfAbsent(ctx context.Context, db *gorm.DB, profile *entity.Profile) (bool, error) {
	r.inserts++
	if r.insertErr != nil {
		return false, r.insertErr
	}
	return r.ProfileRepository.InsertIfAbsent(ctx, db, profile)
}

// stubBlobStore records calls and can fail each operation. Like the real
// store it refuses to work on a cancelled context.
type stubBlobStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	puts        int
	removes     int
	putErr      error
	removeErr   error
	afterRemove func()
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: map[string][]byte{}}
}

func (s *stubBlobStore) Put(ctx context.Context, bucket, key string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[bucket+"/"+key] = data
	return key, nil
}

func (s *stubBlobStore) Open(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+path]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *stubBlobStore) Remove(ctx context.Context, bucket, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, bucket+"/"+path)
	if s.afterRemove != nil {
		s.afterRemove()
	}
	return nil
}

// stubDocumentRepo wraps the real repository and counts inserts.
type stubDocumentRepo struct {
	repository.MedicalDocumentRepository
	creates      int
	createErr    error
	beforeCreate func()
}

func (r *stubDocumentRepo) Create(ctx context.Context, db *gorm.DB, doc *entity.MedicalDocument) error {
	r.creates++
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	if r.createErr != nil {
		return r.createErr
	}
	return r.MedicalDocumentRepository.Create(ctx, db, doc)
}

// recordingPublisher collects published change events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tables := make([]string, len(p.events))
	for i, e := range p.events {
		tables[i] = e.Table
	}
	return tables
}

var errBackend = errors.New("backend unavailable")
