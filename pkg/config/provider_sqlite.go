package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/powerstats/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const defaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrator returns a migrator for the embedded config schema
func (s *SQLiteProvider) Migrator(logger *zap.SugaredLogger) *migrate.Migrator {
	provider := migrate.NewFSProvider(migrationFS, "migrations", "schema_migrations")
	return migrate.NewMigrator(s.db, provider, logger)
}

// InitSchema applies the embedded schema migrations
func (s *SQLiteProvider) InitSchema() error {
	if err := s.Migrator(nil).MigrateUp(); err != nil {
		return fmt.Errorf("failed to initialize config schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	dataset, err := s.GetDataset()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset config: %w", err)
	}
	config.Dataset = *dataset

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	ApplyDefaults(config)
	return config, nil
}

// GetDataset returns the dataset configuration from the database
func (s *SQLiteProvider) GetDataset() (*DatasetData, error) {
	query := `
		SELECT path, url, timezone, last_update_file, reload_interval
		FROM dataset_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
	`

	var path, url, timezone, lastUpdateFile, reloadInterval sql.NullString
	err := s.db.QueryRow(query, defaultConfigName).Scan(&path, &url, &timezone, &lastUpdateFile, &reloadInterval)
	if errors.Is(err, sql.ErrNoRows) {
		return &DatasetData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset config: %w", err)
	}

	return &DatasetData{
		Path:           path.String,
		URL:            url.String,
		Timezone:       timezone.String,
		LastUpdateFile: lastUpdateFile.String,
		ReloadInterval: reloadInterval.String,
	}, nil
}

// GetControllers returns the enabled controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type,
		       rest_listen_addr, rest_port, rest_cert, rest_key, rest_enable_cors,
		       reload_interval
		FROM controller_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?) AND enabled = 1
		ORDER BY id
	`

	rows, err := s.db.Query(query, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query controller configs: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controllerType string
		var restListenAddr, restCert, restKey, reloadInterval sql.NullString
		var restPort sql.NullInt64
		var restEnableCORS sql.NullBool

		err := rows.Scan(
			&controllerType,
			&restListenAddr, &restPort, &restCert, &restKey, &restEnableCORS,
			&reloadInterval,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller config row: %w", err)
		}

		controller := ControllerData{Type: controllerType}
		switch controllerType {
		case ControllerREST:
			controller.RESTServer = &RESTServerData{
				ListenAddr:  restListenAddr.String,
				HTTPPort:    int(restPort.Int64),
				TLSCertPath: restCert.String,
				TLSKeyPath:  restKey.String,
				EnableCORS:  restEnableCORS.Bool,
			}
		case ControllerReloader:
			controller.Reloader = &ReloaderData{Interval: reloadInterval.String}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx, defaultConfigName)
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	if err := s.insertDataset(tx, configID, &configData.Dataset); err != nil {
		return fmt.Errorf("failed to insert dataset config: %w", err)
	}

	for _, controller := range configData.Controllers {
		if err := s.insertController(tx, configID, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO configs (name) VALUES (?)`, name); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`UPDATE configs SET updated_at = datetime('now') WHERE name = ?`, name); err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM dataset_configs WHERE config_id = ?",
		"DELETE FROM controller_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertDataset(tx *sql.Tx, configID int64, dataset *DatasetData) error {
	query := `
		INSERT INTO dataset_configs (
			config_id, path, url, timezone, last_update_file, reload_interval
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, configID,
		nullString(dataset.Path), nullString(dataset.URL), nullString(dataset.Timezone),
		nullString(dataset.LastUpdateFile), nullString(dataset.ReloadInterval),
	)
	return err
}

func (s *SQLiteProvider) insertController(tx *sql.Tx, configID int64, controller *ControllerData) error {
	query := `
		INSERT INTO controller_configs (
			config_id, controller_type, enabled,
			rest_listen_addr, rest_port, rest_cert, rest_key, rest_enable_cors,
			reload_interval
		) VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?)
	`

	var restListenAddr, restCert, restKey, reloadInterval sql.NullString
	var restPort sql.NullInt64
	var restEnableCORS sql.NullBool

	if controller.RESTServer != nil {
		restListenAddr = nullString(controller.RESTServer.ListenAddr)
		restPort = sql.NullInt64{Int64: int64(controller.RESTServer.HTTPPort), Valid: controller.RESTServer.HTTPPort != 0}
		restCert = nullString(controller.RESTServer.TLSCertPath)
		restKey = nullString(controller.RESTServer.TLSKeyPath)
		restEnableCORS = sql.NullBool{Bool: controller.RESTServer.EnableCORS, Valid: true}
	}

	if controller.Reloader != nil {
		reloadInterval = nullString(controller.Reloader.Interval)
	}

	_, err := tx.Exec(query, configID, controller.Type,
		restListenAddr, restPort, restCert, restKey, restEnableCORS,
		reloadInterval,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
