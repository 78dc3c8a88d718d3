// Package archive stores finished meeting documents.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/notes"
)

// Repository persists notes documents.
type Repository interface {
	Save(ctx context.Context, doc *notes.Document) error
}

// Meeting is one archived run.
type Meeting struct {
	ID           string    `gorm:"primaryKey"`
	Date         string    `gorm:"column:date;index"`
	Title        string    `gorm:"column:title"`
	MeetingType  string    `gorm:"column:meeting_type"`
	Attendees    string    `gorm:"column:attendees"`
	SegmentCount int       `gorm:"column:segment_count"`
	NotesJSON    string    `gorm:"column:notes_json"`
	DocumentJSON string    `gorm:"column:document_json"`
	GeneratedAt  time.Time `gorm:"column:generated_at"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (*Meeting) TableName() string { return "meetings" }

// SegmentRow is one merged segment of an archived meeting.
type SegmentRow struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	MeetingID string  `gorm:"column:meeting_id;index"`
	Position  int     `gorm:"column:position"`
	Speaker   string  `gorm:"column:speaker;index"`
	Start     float64 `gorm:"column:start_s"`
	End       float64 `gorm:"column:end_s"`
	Text      string  `gorm:"column:text"`
}

func (*SegmentRow) TableName() string { return "segments" }

var _ Repository = (*SQLite)(nil)

// SQLite is a Repository backed by a local SQLite file.
type SQLite struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// Open opens (creating if needed) the archive at path and migrates its schema.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Meeting{}, &SegmentRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	return &SQLite{db: db, logger: logging.NewLogger("archive").WithField("path", path)}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores doc, replacing an earlier save of the same run.
func (s *SQLite) Save(ctx context.Context, doc *notes.Document) error {
	notesJSON, err := json.Marshal(doc.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	meeting := Meeting{
		ID:           doc.RunID,
		Date:         doc.Notes.Date,
		Title:        doc.Notes.Title,
		MeetingType:  doc.Notes.MeetingType,
		Attendees:    strings.Join(doc.Notes.Attendees, ","),
		SegmentCount: len(doc.Segments),
		NotesJSON:    string(notesJSON),
		DocumentJSON: string(docJSON),
		GeneratedAt:  doc.GeneratedAt,
	}

	rows := make([]SegmentRow, len(doc.Segments))
	for i := range doc.Segments {
		if err := copier.Copy(&rows[i], &doc.Segments[i]); err != nil {
			return fmt.Errorf("failed to convert segment %d: %w", i, err)
		}
		rows[i].MeetingID = doc.RunID
		rows[i].Position = i
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&meeting).Error; err != nil {
			return err
		}
		if err := tx.Where("meeting_id = ?", doc.RunID).Delete(&SegmentRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save meeting %s: %w", doc.RunID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":   doc.RunID,
		"segments": len(rows),
	}).Info("Archived meeting")
	return nil
}

// Recent returns up to limit meetings, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Meeting, error) {
	var out []Meeting
	err := s.db.WithContext(ctx).
		Order("date DESC").Order("generated_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return out, nil
}

// Segments returns the archived segments of one meeting in merged order.
func (s *SQLite) Segments(ctx context.Context, meetingID string) ([]SegmentRow, error) {
	var out []SegmentRow
	err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns segments whose text contains query, across all meetings.
// LIKE wildcards in query match literally.
func (s *SQLite) Search(ctx context.Context, query string, limit int) ([]SegmentRow, error) {
	var out []SegmentRow
	err := s.db.WithContext(ctx).
		Where(`text LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(query)+"%").
		Order("meeting_id").Order("position ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search segments: %w", err)
	}
	return out, nil
}
