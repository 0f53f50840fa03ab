package service

import (
	"context"
	"strings"

	"argus/core"
	"argus/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActorService manages the threat actor knowledgebase and resolves actor
// names mentioned in classifications to full profiles.
type ActorService struct {
	actors storage.ActorStorageInterface
	logger *zap.SugaredLogger
}

// NewActorService creates the knowledgebase manager
func NewActorService(actors storage.ActorStorageInterface, logger *zap.SugaredLogger) *ActorService {
	if actors == nil {
		panic("actor storage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &ActorService{actors: actors, logger: logger}
}

// SeedKnowledgebase inserts the built-in actor profiles for entries not
// already present.
func (s *ActorService) SeedKnowledgebase(ctx context.Context) error {
	existing, err := s.actors.GetActors(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		known[strings.ToLower(a.Name)] = struct{}{}
	}
	for _, actor := range defaultActors() {
		if _, ok := known[strings.ToLower(actor.Name)]; ok {
			continue
		}
		actor.ID = uuid.New().String()
		if err := s.actors.SaveActor(ctx, &actor); err != nil {
			return err
		}
	}
	return nil
}

// GetActors returns all knowledgebase profiles
func (s *ActorService) GetActors(ctx context.Context) ([]core.ThreatActor, error) {
	return s.actors.GetActors(ctx)
}

// GetActor returns one profile by ID
func (s *ActorService) GetActor(ctx context.Context, id string) (*core.ThreatActor, error) {
	return s.actors.GetActor(ctx, id)
}

// SaveActor persists a profile, assigning an ID to new entries
func (s *ActorService) SaveActor(ctx context.Context, actor *core.ThreatActor) error {
	if actor.Name == "" {
		return &core.ValidationError{Field: "name", Message: "actor name is required"}
	}
	if actor.ID == "" {
		actor.ID = uuid.New().String()
	}
	return s.actors.SaveActor(ctx, actor)
}

// DeleteActor removes a profile
func (s *ActorService) DeleteActor(ctx context.Context, id string) error {
	return s.actors.DeleteActor(ctx, id)
}

// ProfilesFor matches actor names against the knowledgebase by name or
// alias, case-insensitively. Names with no profile are silently skipped.
func (s *ActorService) ProfilesFor(ctx context.Context, names []string) []core.ThreatActor {
	if len(names) == 0 {
		return nil
	}
	all, err := s.actors.GetActors(ctx)
	if err != nil {
		s.logger.Errorw("Failed to load actor knowledgebase", "error", err)
		return nil
	}

	var matched []core.ThreatActor
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, actor := range all {
			if actorMatches(&actor, lower) {
				matched = append(matched, actor)
				break
			}
		}
	}
	return matched
}

func actorMatches(actor *core.ThreatActor, lowerName string) bool {
	if strings.ToLower(actor.Name) == lowerName {
		return true
	}
	for _, alias := range actor.Aliases {
		if strings.ToLower(alias) == lowerName {
			return true
		}
	}
	return false
}

// defaultActors is the seeded knowledgebase of well-documented groups
func defaultActors() []core.ThreatActor {
	return []core.ThreatActor{
		{
			Name:        "APT28",
			Aliases:     []string{"Fancy Bear", "Sofacy", "STRONTIUM"},
			Origin:      "Russia",
			Motivation:  "Espionage",
			Description: "GRU-attributed group targeting government, military and media organizations since at least 2007.",
			Targets:     []string{"Government", "Defense", "Media"},
			Tools:       []string{"X-Agent", "Zebrocy", "Mimikatz"},
			FirstSeen:   "2007",
			Active:      true,
		},
		{
			Name:        "APT29",
			Aliases:     []string{"Cozy Bear", "The Dukes", "NOBELIUM"},
			Origin:      "Russia",
			Motivation:  "Espionage",
			Description: "SVR-attributed group known for supply chain compromises and long-dwell intrusions.",
			Targets:     []string{"Government", "Think Tanks", "Technology"},
			Tools:       []string{"SUNBURST", "WellMess", "MiniDuke"},
			FirstSeen:   "2008",
			Active:      true,
		},
		{
			Name:        "Lazarus Group",
			Aliases:     []string{"HIDDEN COBRA", "Guardians of Peace"},
			Origin:      "North Korea",
			Motivation:  "Financial gain, Espionage",
			Description: "State-sponsored group behind large cryptocurrency heists and destructive attacks.",
			Targets:     []string{"Financial", "Cryptocurrency", "Defense"},
			Tools:       []string{"AppleJeus", "MATA", "Manuscrypt"},
			FirstSeen:   "2009",
			Active:      true,
		},
		{
			Name:        "FIN7",
			Aliases:     []string{"Carbanak Group", "Navigator Group"},
			Origin:      "Eastern Europe",
			Motivation:  "Financial gain",
			Description: "Financially motivated group targeting retail and hospitality payment systems.",
			Targets:     []string{"Retail", "Hospitality", "Finance"},
			Tools:       []string{"Carbanak", "GRIFFON", "Loadout"},
			FirstSeen:   "2013",
			Active:      true,
		},
		{
			Name:        "Scattered Spider",
			Aliases:     []string{"UNC3944", "Octo Tempest"},
			Origin:      "US/UK",
			Motivation:  "Financial gain",
			Description: "Social engineering focused group known for help desk impersonation and SIM swapping.",
			Targets:     []string{"Telecom", "Gaming", "Cloud Services"},
			Tools:       []string{"ALPHV", "AnyDesk", "Mimikatz"},
			FirstSeen:   "2022",
			Active:      true,
		},
	}
}
