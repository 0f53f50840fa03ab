package storage

import (
	"database/sql"
)

// RegisterSQLiteMigrations registers all migrations with the runner.
// Migrations are additive-only: later versions create new collections or
// columns without touching data already persisted by earlier versions.
func RegisterSQLiteMigrations(runner *MigrationRunner) {
	runner.Register(Migration{
		Version:     "1.0.0",
		Name:        "initial_schema",
		Description: "Base schema: analyses, actors, rules, alerts, integrations",
		Up: func(tx *sql.Tx) error {
			schema := `
			CREATE TABLE IF NOT EXISTS analyses (
				id TEXT PRIMARY KEY,
				ioc TEXT NOT NULL,
				type TEXT NOT NULL CHECK(type IN ('IP','Domain','Hash','URL')),
				risk_score INTEGER NOT NULL DEFAULT 0 CHECK(risk_score >= 0 AND risk_score <= 100),
				verdict TEXT NOT NULL DEFAULT 'SAFE' CHECK(verdict IN ('CRITICAL','HIGH','MEDIUM','LOW','SAFE')),
				description TEXT DEFAULT '',
				mitigation_steps TEXT DEFAULT '[]',
				technical_details TEXT DEFAULT '{}',
				threat_actors TEXT DEFAULT '[]',
				threat_actor_details TEXT DEFAULT '[]',
				malware_families TEXT DEFAULT '[]',
				geolocation TEXT DEFAULT '',
				external_intel TEXT DEFAULT '[]',
				timestamp DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);
			CREATE INDEX IF NOT EXISTS idx_analyses_ioc ON analyses(ioc);

			CREATE TABLE IF NOT EXISTS actors (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				aliases TEXT DEFAULT '[]',
				origin TEXT DEFAULT '',
				motivation TEXT DEFAULT '',
				description TEXT DEFAULT '',
				targets TEXT DEFAULT '[]',
				tools TEXT DEFAULT '[]',
				first_seen TEXT DEFAULT '',
				active INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX IF NOT EXISTS idx_actors_name ON actors(name);

			CREATE TABLE IF NOT EXISTS rules (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				severity TEXT NOT NULL DEFAULT 'MEDIUM' CHECK(severity IN ('CRITICAL','HIGH','MEDIUM','LOW')),
				enabled INTEGER NOT NULL DEFAULT 1,
				logic TEXT NOT NULL DEFAULT 'AND',
				groups TEXT DEFAULT '[]',
				conditions TEXT DEFAULT '[]',
				created DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_rules_enabled ON rules(enabled);

			CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				rule_id TEXT NOT NULL,
				rule_name TEXT NOT NULL,
				severity TEXT NOT NULL,
				ioc TEXT NOT NULL,
				analysis_id TEXT DEFAULT '',
				timestamp DATETIME NOT NULL,
				status TEXT NOT NULL DEFAULT 'NEW' CHECK(status IN ('NEW','ACKNOWLEDGED','RESOLVED')),
				details TEXT DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);
			CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
			CREATE INDEX IF NOT EXISTS idx_alerts_rule_id ON alerts(rule_id);

			CREATE TABLE IF NOT EXISTS integrations (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				category TEXT NOT NULL,
				description TEXT DEFAULT '',
				enabled INTEGER NOT NULL DEFAULT 0,
				icon_name TEXT DEFAULT '',
				fields TEXT DEFAULT '[]',
				status TEXT NOT NULL DEFAULT 'unknown',
				last_sync TEXT DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_integrations_category ON integrations(category);
			`
			_, err := tx.Exec(schema)
			return err
		},
	})

	// Reports arrived after the base schema; creating the collection
	// mid-life must not disturb sibling collections' data.
	runner.Register(Migration{
		Version:     "1.1.0",
		Name:        "add_reports",
		Description: "Add reports collection for the reporting center",
		Up: func(tx *sql.Tx) error {
			schema := `
			CREATE TABLE IF NOT EXISTS reports (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				type TEXT DEFAULT '',
				generated_at DATETIME NOT NULL,
				status TEXT NOT NULL DEFAULT 'GENERATING' CHECK(status IN ('GENERATING','READY')),
				summary TEXT DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
			`
			_, err := tx.Exec(schema)
			return err
		},
	})

	runner.Register(Migration{
		Version:     "1.2.0",
		Name:        "add_rule_action_channels",
		Description: "Add action_channels column to rules",
		Up: func(tx *sql.Tx) error {
			return addColumnIfNotExists(tx, "rules", "action_channels", "TEXT DEFAULT '[]'")
		},
	})

	runner.Register(Migration{
		Version:     "1.3.0",
		Name:        "add_alerts_analysis_index",
		Description: "Index alerts by analysis back-reference for dashboard lookups",
		Up: func(tx *sql.Tx) error {
			return createIndexIfNotExists(tx, "idx_alerts_analysis_id", "alerts", "analysis_id")
		},
	})
}
