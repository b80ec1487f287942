package bench

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

// Report is the outcome of one tree in one trial.
type Report struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;size:32"`
	Workload   string `gorm:"size:64"`
	Pattern    string `gorm:"size:16"`
	Trial      int
	Tree       string `gorm:"size:16"`
	Ops        int64
	Inserted   int64
	Removed    int64
	FinalSize  int64
	Height     int
	ElapsedNs  int64
	RSSBytes   uint64
	Mismatches int64
	CreatedAt  time.Time
}

func (Report) TableName() string {
	return "bench_reports"
}

// ReportStore keeps the bench history in sqlite.
type ReportStore struct {
	db *gorm.DB
}

// OpenReportStore opens the sqlite dsn, e.g. "xtree.db" or
// "file:xtree?mode=memory&cache=shared".
func OpenReportStore(dsn string, logger xlog.XLogger) (*ReportStore, error) {
	cfg := &gorm.Config{}
	if logger != nil {
		cfg.Logger = xlog.NewGormXLogger(logger,
			xlog.WithGormXLoggerIgnoreRecord404Err(),
		)
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] open report store")
	}
	return NewReportStore(db)
}

func NewReportStore(db *gorm.DB) (*ReportStore, error) {
	if err := db.AutoMigrate(&Report{}); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] migrate report store")
	}
	return &ReportStore{db: db}, nil
}

// Save fills the IDs of the saved reports.
func (s *ReportStore) Save(ctx context.Context, reports []Report) error {
	if len(reports) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&reports, 100).Error; err != nil {
		return infra.WrapErrorStackWithMessage(err, "[bench] save reports")
	}
	return nil
}

// List returns the reports of runID, or all reports if runID is empty,
// in insertion order.
func (s *ReportStore) List(ctx context.Context, runID string) ([]Report, error) {
	tx := s.db.WithContext(ctx).Order("id")
	if len(runID) > 0 {
		tx = tx.Where("run_id = ?", runID)
	}
	var reports []Report
	if err := tx.Find(&reports).Error; err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] list reports")
	}
	return reports, nil
}

func (s *ReportStore) Runs(ctx context.Context) ([]string, error) {
	var runs []string
	err := s.db.WithContext(ctx).
		Model(&Report{}).
		Distinct("run_id").
		Order("run_id").
		Pluck("run_id", &runs).Error
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] list runs")
	}
	return runs, nil
}

func (s *ReportStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
