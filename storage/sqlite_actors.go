package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"argus/core"

	"go.uber.org/zap"
)

// SQLiteActorStorage persists the threat-actor knowledgebase
type SQLiteActorStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteActorStorage creates a new actor storage instance
func NewSQLiteActorStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteActorStorage {
	return &SQLiteActorStorage{sqlite: sqlite, logger: logger}
}

// SaveActor upserts an actor profile by ID
func (s *SQLiteActorStorage) SaveActor(ctx context.Context, actor *core.ThreatActor) error {
	aliases, err := marshalColumn(actor.Aliases)
	if err != nil {
		return err
	}
	targets, err := marshalColumn(actor.Targets)
	if err != nil {
		return err
	}
	tools, err := marshalColumn(actor.Tools)
	if err != nil {
		return err
	}

	_, err = s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO actors (id, name, aliases, origin, motivation, description, targets, tools, first_seen, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			aliases = excluded.aliases,
			origin = excluded.origin,
			motivation = excluded.motivation,
			description = excluded.description,
			targets = excluded.targets,
			tools = excluded.tools,
			first_seen = excluded.first_seen,
			active = excluded.active`,
		actor.ID, actor.Name, aliases, actor.Origin, actor.Motivation,
		actor.Description, targets, tools, actor.FirstSeen, boolToInt(actor.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to save actor: %w", err)
	}
	return nil
}

// GetActors returns every actor profile ordered by name
func (s *SQLiteActorStorage) GetActors(ctx context.Context) ([]core.ThreatActor, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, `
		SELECT id, name, aliases, origin, motivation, description, targets, tools, first_seen, active
		FROM actors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}
	defer rows.Close()

	var actors []core.ThreatActor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, *actor)
	}
	return actors, rows.Err()
}

// GetActor retrieves one actor by ID
func (s *SQLiteActorStorage) GetActor(ctx context.Context, id string) (*core.ThreatActor, error) {
	row := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, name, aliases, origin, motivation, description, targets, tools, first_seen, active
		FROM actors WHERE id = ?`, id)

	actor, err := scanActor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return actor, nil
}

// DeleteActor hard-deletes an actor profile
func (s *SQLiteActorStorage) DeleteActor(ctx context.Context, id string) error {
	_, err := s.sqlite.DB.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	return nil
}

func scanActor(row scanner) (*core.ThreatActor, error) {
	var actor core.ThreatActor
	var aliases, targets, tools string
	var active int

	err := row.Scan(&actor.ID, &actor.Name, &aliases, &actor.Origin,
		&actor.Motivation, &actor.Description, &targets, &tools,
		&actor.FirstSeen, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan actor: %w", err)
	}

	actor.Active = active != 0
	if err := unmarshalColumn(aliases, &actor.Aliases); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(targets, &actor.Targets); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(tools, &actor.Tools); err != nil {
		return nil, err
	}
	return &actor, nil
}
