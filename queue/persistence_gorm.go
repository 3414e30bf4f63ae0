package queue

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mutationRecord is the gorm model backing Mutation.
type mutationRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	Method     string `gorm:"size:10"`
	URL        string
	Payload    []byte
	Status     string `gorm:"size:16;index"`
	Attempts   int
	EnqueuedAt time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (mutationRecord) TableName() string { return "queued_mutations" }

func (r *mutationRecord) toMutation() *Mutation {
	return &Mutation{
		ID:         r.ID,
		Method:     r.Method,
		URL:        r.URL,
		Payload:    r.Payload,
		Status:     Status(r.Status),
		Attempts:   r.Attempts,
		EnqueuedAt: r.EnqueuedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toRecord(m *Mutation) *mutationRecord {
	return &mutationRecord{
		ID:         m.ID,
		Method:     m.Method,
		URL:        m.URL,
		Payload:    m.Payload,
		Status:     string(m.Status),
		Attempts:   m.Attempts,
		EnqueuedAt: m.EnqueuedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// GormPersistence stores mutations in a sqlite database so the queue
// survives agent restarts.
type GormPersistence struct {
	db *gorm.DB
}

// NewGormPersistence wraps an existing gorm DB and migrates the schema.
func NewGormPersistence(db *gorm.DB) (*GormPersistence, error) {
	if err := db.AutoMigrate(&mutationRecord{}); err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	return &GormPersistence{db: db}, nil
}

// NewSQLitePersistence opens (or creates) the sqlite database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLitePersistence(path string) (*GormPersistence, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	return NewGormPersistence(db)
}

// Save upserts the mutation.
func (p *GormPersistence) Save(ctx context.Context, m *Mutation) error {
	if err := p.db.WithContext(ctx).Save(toRecord(m)).Error; err != nil {
		return ErrPersistence.Wrap(err)
	}
	return nil
}

// Get returns a mutation by id.
func (p *GormPersistence) Get(ctx context.Context, id string) (*Mutation, error) {
	var rec mutationRecord
	err := p.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrPersistence.Wrap(err)
	}
	return rec.toMutation(), nil
}

// Delete removes a mutation by id.
func (p *GormPersistence) Delete(ctx context.Context, id string) error {
	if err := p.db.WithContext(ctx).Delete(&mutationRecord{}, "id = ?", id).Error; err != nil {
		return ErrPersistence.Wrap(err)
	}
	return nil
}

// List returns all mutations in FIFO order.
func (p *GormPersistence) List(ctx context.Context) ([]*Mutation, error) {
	var recs []mutationRecord
	err := p.db.WithContext(ctx).Order("enqueued_at asc, id asc").Find(&recs).Error
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	out := make([]*Mutation, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toMutation())
	}
	return out, nil
}

// Clear removes every mutation.
func (p *GormPersistence) Clear(ctx context.Context) error {
	if err := p.db.WithContext(ctx).Where("1 = 1").Delete(&mutationRecord{}).Error; err != nil {
		return ErrPersistence.Wrap(err)
	}
	return nil
}

// Close closes the underlying sql connection.
func (p *GormPersistence) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
