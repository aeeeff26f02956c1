package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/mcoot/chainreaction/internal/dependencies/clock"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/rules"
	"github.com/mcoot/chainreaction/internal/storage"
)

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Service manages named board presets
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new preset service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "preset-service")),
	}
}

// Validate checks a preset's name, size and cells
func Validate(p *model.Preset) error {
	if !namePattern.MatchString(p.Name) {
		return fmt.Errorf("%w: name %q must match %s", model.ErrInvalidPreset, p.Name, namePattern)
	}
	seen := make(map[model.Position]bool, len(p.Cells))
	for _, c := range p.Cells {
		pos := model.Position{Row: c.Row, Col: c.Col}
		if seen[pos] {
			return fmt.Errorf("%w: cell %s listed twice", model.ErrInvalidPreset, pos)
		}
		seen[pos] = true
		if int(c.Owner) > len(model.Palette) {
			return fmt.Errorf("%w: cell %s owner %d exceeds %d players", model.ErrInvalidPreset, pos, c.Owner, len(model.Palette))
		}
		if p.Size >= model.MinBoardSize && p.Size <= model.MaxBoardSize && c.Value > 0 {
			if mass := rules.CriticalMass(pos, p.Size); c.Value >= mass {
				return fmt.Errorf("%w: cell %s holds %d tokens, critical mass is %d", model.ErrInvalidPreset, pos, c.Value, mass)
			}
		}
	}
	_, err := p.ToBoard()
	return err
}

// Save validates and stores a preset, replacing any preset with the same name
func (s *Service) Save(ctx context.Context, p *model.Preset) error {
	if err := Validate(p); err != nil {
		return err
	}
	p.UpdatedAt = s.clock.Now()
	if err := s.storage.SavePreset(ctx, p); err != nil {
		return err
	}
	s.logger.Info("preset saved",
		slog.String("preset", p.Name),
		slog.Int("size", p.Size),
		slog.Int("cells", len(p.Cells)),
	)
	return nil
}

// Get returns a preset by name
func (s *Service) Get(ctx context.Context, name string) (*model.Preset, error) {
	return s.storage.GetPreset(ctx, name)
}

// List returns all presets ordered by name
func (s *Service) List(ctx context.Context) ([]*model.Preset, error) {
	return s.storage.ListPresets(ctx)
}

// Delete removes a preset
func (s *Service) Delete(ctx context.Context, name string) error {
	if _, err := s.storage.GetPreset(ctx, name); err != nil {
		return err
	}
	return s.storage.DeletePreset(ctx, name)
}

// Board builds the starting board for a game with maxPlayers seats
func (s *Service) Board(ctx context.Context, name string, maxPlayers int) (*model.Board, error) {
	p, err := s.storage.GetPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Cells {
		if int(c.Owner) > maxPlayers {
			return nil, fmt.Errorf("%w: preset %q uses player %d but the game has %d seats",
				model.ErrInvalidPreset, name, c.Owner, maxPlayers)
		}
	}
	return p.ToBoard()
}

// LoadDir stores every *.json preset file in dir. A file without a name
// takes its base name. It returns the number of presets loaded.
func (s *Service) LoadDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}

	loaded := 0
	var errs []error
	for _, path := range paths {
		p, err := readFile(path)
		if err == nil {
			err = s.Save(ctx, p)
		}
		if err != nil {
			s.logger.Warn("preset file skipped",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

func readFile(path string) (*model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p model.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidPreset, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &p, nil
}

// Schema returns the JSON schema for preset files
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(model.Preset))
	schema.Title = "Chain Reaction Board Preset"
	schema.Description = "A named starting board. Cells not listed start empty."
	return schema
}

// Interface for dependency injection
type ServiceInterface interface {
	Save(ctx context.Context, p *model.Preset) error
	Get(ctx context.Context, name string) (*model.Preset, error)
	List(ctx context.Context) ([]*model.Preset, error)
	Delete(ctx context.Context, name string) error
	Board(ctx context.Context, name string, maxPlayers int) (*model.Board, error)
	LoadDir(ctx context.Context, dir string) (int, error)
}

var _ ServiceInterface = (*Service)(nil)
