package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
)

// Table names for survey tracking.
const (
	surveyRunsTable = "roadsurvey_runs"
	imagesTable     = "roadsurvey_images"
	estimatesTable  = "roadsurvey_estimates"
)

// trackingTables lists the tracking tables in creation order.
var trackingTables = []string{surveyRunsTable, imagesTable, estimatesTable}

// AnalysisStoreImpl records survey runs, per-image outcomes and estimates.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize survey tracking: %w", err)
	}

	if err := createTrackingTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tracking tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createTrackingTables creates the tracking tables if they are missing.
func createTrackingTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range trackingTables {
		if _, err := db.Exec(getCreateTrackingQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes are the per-backend spellings used by the tracking DDL.
type columnTypes struct {
	id, bigint, integer, real, text, key, timestamp string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{"BIGINT AUTO_INCREMENT PRIMARY KEY", "BIGINT", "INT", "DOUBLE", "TEXT", "VARCHAR(512)", "DATETIME(6)"}
	case schema.PostgreSQLBackend:
		return columnTypes{"BIGSERIAL PRIMARY KEY", "BIGINT", "INT", "DOUBLE PRECISION", "TEXT", "TEXT", "TIMESTAMPTZ"}
	default: // SQLite
		return columnTypes{"INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER", "INTEGER", "REAL", "TEXT", "TEXT", "TEXT"}
	}
}

// getCreateTrackingQuery returns the CREATE TABLE query for a tracking table.
func getCreateTrackingQuery(table string, backend schema.DatabaseBackend) string {
	c := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case surveyRunsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				survey_id %s,
				run_uuid %s NOT NULL,
				area_name %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_images %s NOT NULL DEFAULT 0,
				damaged_images %s,
				total_cost %s,
				overall_status %s,
				config_params %s
			);
		`, quoted, c.id, c.key, c.text, c.timestamp, c.timestamp, c.integer, c.integer, c.integer, c.real, c.text, c.text)

	case imagesTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				survey_id %s NOT NULL,
				image_path %s NOT NULL,
				status %s NOT NULL,
				damage_count %s NOT NULL,
				total_cost %s NOT NULL,
				latitude %s,
				longitude %s,
				error_text %s,
				recorded_at %s NOT NULL,
				PRIMARY KEY (survey_id, image_path)
			);
		`, quoted, c.bigint, c.key, c.text, c.integer, c.real, c.real, c.real, c.text, c.timestamp)

	default: // estimates
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				survey_id %s NOT NULL,
				image_path %s NOT NULL,
				damage_type %s NOT NULL,
				severity %s NOT NULL,
				confidence %s NOT NULL,
				area_sqm %s NOT NULL,
				repair_cost %s NOT NULL,
				repair_time_hours %s NOT NULL,
				repair_days %s NOT NULL,
				priority_level %s NOT NULL,
				crew_size %s NOT NULL
			);
		`, quoted, c.bigint, c.key, c.text, c.text, c.real, c.real, c.real, c.real, c.integer, c.integer, c.integer)
	}
}

func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginSurvey creates a new survey run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginSurvey(runUUID, areaName string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	insert := builderFor(as.backend).
		Insert(as.table(surveyRunsTable)).
		Columns("run_uuid", "area_name", "start_time", "total_images", "config_params").
		Values(runUUID, areaName, formatTime(startTime, as.backend), 0, string(configJSON))

	var surveyID int64
	if as.backend == schema.PostgreSQLBackend {
		query, args, err := insert.Suffix("RETURNING survey_id").ToSql()
		if err != nil {
			return 0, err
		}
		if err := as.db.QueryRow(query, args...).Scan(&surveyID); err != nil {
			return 0, fmt.Errorf("failed to insert survey run: %w", err)
		}
		return surveyID, nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, err
	}
	result, err := as.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert survey run: %w", err)
	}
	return result.LastInsertId()
}

// EndSurvey stores the completion data of a survey run.
func (as *AnalysisStoreImpl) EndSurvey(surveyID int64, endTime time.Time, summary schema.SurveySummary, report *schema.AreaReport) error {
	if as.db == nil {
		return nil
	}

	query, args, err := builderFor(as.backend).
		Select("start_time").
		From(as.table(surveyRunsTable)).
		Where(sq.Eq{"survey_id": surveyID}).
		ToSql()
	if err != nil {
		return err
	}
	var start timeScanner
	if err := as.db.QueryRow(query, args...).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for survey %d: %w", surveyID, err)
	}

	update := builderFor(as.backend).
		Update(as.table(surveyRunsTable)).
		Set("end_time", formatTime(endTime, as.backend)).
		Set("run_duration_ms", endTime.Sub(start.Time).Milliseconds()).
		Set("total_images", summary.TotalImages).
		Set("damaged_images", summary.DamagedImages).
		Where(sq.Eq{"survey_id": surveyID})
	if report != nil {
		update = update.
			Set("total_cost", report.SummaryStatistics.TotalRepairCost).
			Set("overall_status", string(report.OverallCondition))
	}

	query, args, err = update.ToSql()
	if err != nil {
		return err
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update survey run: %w", err)
	}
	return nil
}

// RecordImage stores one image outcome and its estimates in a single transaction.
func (as *AnalysisStoreImpl) RecordImage(surveyID int64, result schema.ImageResult) error {
	if as.db == nil {
		return nil
	}

	var lat, lon *float64
	if result.Location != nil {
		lat, lon = &result.Location.Latitude, &result.Location.Longitude
	}
	var errText *string
	if result.Error != "" {
		errText = &result.Error
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	b := builderFor(as.backend)
	imageInsert := b.Insert(as.table(imagesTable)).
		Columns("survey_id", "image_path", "status", "damage_count", "total_cost", "latitude", "longitude", "error_text", "recorded_at").
		Values(surveyID, result.Path, string(result.Status), len(result.Estimates), result.TotalRepairCost, lat, lon, errText, formatTime(time.Now(), as.backend))
	if _, err := imageInsert.RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to insert image %q: %w", result.Path, err)
	}

	if len(result.Estimates) > 0 {
		estInsert := b.Insert(as.table(estimatesTable)).
			Columns("survey_id", "image_path", "damage_type", "severity", "confidence", "area_sqm",
				"repair_cost", "repair_time_hours", "repair_days", "priority_level", "crew_size")
		for _, est := range result.Estimates {
			estInsert = estInsert.Values(surveyID, result.Path, string(est.DamageType), string(est.Severity), est.Confidence, est.AreaSqm,
				est.RepairCost, est.RepairTimeHours, est.RepairDays, est.Priority.Level, est.CrewSize.Total)
		}
		if _, err := estInsert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to insert estimates for %q: %w", result.Path, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	for _, table := range trackingTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[surveyRunsTable])
	status.TotalImagesSurveyed = int(status.TableSizes[imagesTable])
	status.TotalEstimates = int(status.TableSizes[estimatesTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	b := builderFor(as.backend)
	lastQuery, _, err := b.Select("survey_id", "start_time").From(as.table(surveyRunsTable)).OrderBy("survey_id DESC").Limit(1).ToSql()
	if err != nil {
		return status, err
	}
	var last timeScanner
	if err := as.db.QueryRow(lastQuery).Scan(&status.LastRunID, &last); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	status.LastRunTime = last.Time

	oldestQuery, _, err := b.Select("start_time").From(as.table(surveyRunsTable)).OrderBy("survey_id ASC").Limit(1).ToSql()
	if err != nil {
		return status, err
	}
	var oldest timeScanner
	if err := as.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = oldest.Time

	return status, nil
}

// GetAllSurveyRuns retrieves all survey runs ordered by ID.
func (as *AnalysisStoreImpl) GetAllSurveyRuns() ([]schema.SurveyRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query, _, err := builderFor(as.backend).
		Select("survey_id", "run_uuid", "area_name", "start_time", "end_time", "run_duration_ms",
			"total_images", "damaged_images", "total_cost", "overall_status", "config_params").
		From(as.table(surveyRunsTable)).
		OrderBy("survey_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query survey runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SurveyRunRecord
	for rows.Next() {
		var record schema.SurveyRunRecord
		var start, end timeScanner
		if err := rows.Scan(&record.SurveyID, &record.RunUUID, &record.AreaName, &start, &end, &record.RunDurationMs,
			&record.TotalImages, &record.DamagedImages, &record.TotalCost, &record.OverallStatus, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan survey run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating survey runs: %w", err)
	}
	return results, nil
}

// GetAllImages retrieves all recorded images ordered by survey and path.
func (as *AnalysisStoreImpl) GetAllImages() ([]schema.ImageRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query, _, err := builderFor(as.backend).
		Select("survey_id", "image_path", "status", "damage_count", "total_cost", "latitude", "longitude", "error_text", "recorded_at").
		From(as.table(imagesTable)).
		OrderBy("survey_id", "image_path").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ImageRecord
	for rows.Next() {
		var record schema.ImageRecord
		var recorded timeScanner
		if err := rows.Scan(&record.SurveyID, &record.ImagePath, &record.Status, &record.DamageCount, &record.TotalCost,
			&record.Latitude, &record.Longitude, &record.ErrorText, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		record.RecordedAt = recorded.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return results, nil
}

// GetAllEstimates retrieves all recorded estimates ordered by survey and path.
func (as *AnalysisStoreImpl) GetAllEstimates() ([]schema.EstimateRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query, _, err := builderFor(as.backend).
		Select("survey_id", "image_path", "damage_type", "severity", "confidence", "area_sqm",
			"repair_cost", "repair_time_hours", "repair_days", "priority_level", "crew_size").
		From(as.table(estimatesTable)).
		OrderBy("survey_id", "image_path").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.EstimateRecord
	for rows.Next() {
		var r schema.EstimateRecord
		if err := rows.Scan(&r.SurveyID, &r.ImagePath, &r.DamageType, &r.Severity, &r.Confidence, &r.AreaSqm,
			&r.RepairCost, &r.RepairTimeHours, &r.RepairDays, &r.PriorityLevel, &r.CrewSize); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estimates: %w", err)
	}
	return results, nil
}
