package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store persists the aggregate portfolio document. Load reports false when
// nothing usable is stored.
type Store interface {
	Load(ctx context.Context) (*Data, bool)
	Save(ctx context.Context, d *Data) error
}

// Portfolio is the application state: the three collections, the store they
// are mirrored into and the listeners told about changes.
type Portfolio struct {
	mu    sync.RWMutex
	store Store
	log   *zap.Logger

	skills       *Collection[Skill]
	achievements *Collection[Achievement]
	experience   *Collection[Experience]

	lmu       sync.Mutex
	listeners []func(Kind)
}

type options struct {
	logger          *zap.Logger
	resetExperience bool
	defaults        *Data
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResetExperience controls the startup patch that discards stored
// experience entries. It is on by default.
func WithResetExperience(on bool) Option {
	return func(o *options) { o.resetExperience = on }
}

// WithDefaults replaces the built-in content used when nothing is stored.
func WithDefaults(d Data) Option {
	return func(o *options) { o.defaults = &d }
}

// Open loads the stored portfolio (or the defaults), applies the startup
// patches and saves once if any of them changed the data.
func Open(ctx context.Context, st Store, opts ...Option) (*Portfolio, error) {
	o := options{logger: zap.NewNop(), resetExperience: true}
	for _, opt := range opts {
		opt(&o)
	}

	defaults := o.defaults
	if defaults == nil {
		d, err := Defaults()
		if err != nil {
			return nil, err
		}
		defaults = &d
	}

	p := &Portfolio{store: st, log: o.logger.Named("portfolio")}
	p.skills = newCollection[Skill](KindSkills, p)
	p.achievements = newCollection[Achievement](KindAchievements, p)
	p.experience = newCollection[Experience](KindExperience, p)

	data := defaults.Clone()
	saved, loaded := st.Load(ctx)
	if loaded {
		if saved.Skills != nil {
			data.Skills = saved.Skills
		}
		if saved.Achievements != nil {
			data.Achievements = saved.Achievements
		}
		data.Experience = saved.Experience
		data = data.Clone()
		p.log.Debug("loaded stored portfolio",
			zap.Int("skills", len(data.Skills)),
			zap.Int("achievements", len(data.Achievements)))
	}

	// The experience reset only concerns stored data; fresh defaults already
	// carry the bootstrap entry.
	applied := ApplyPatches(&data, Patches(o.resetExperience && loaded))
	renumbered := repairIDs(data.Skills) + repairIDs(data.Achievements) + repairIDs(data.Experience)
	if renumbered > 0 {
		p.log.Warn("renumbered entries with invalid or duplicate ids", zap.Int("entries", renumbered))
	}
	p.load(data)

	if len(applied) > 0 || renumbered > 0 {
		if len(applied) > 0 {
			p.log.Info("applied startup patches", zap.Strings("patches", applied))
		}
		p.mu.Lock()
		err := p.persistLocked(ctx)
		p.mu.Unlock()
		if err != nil {
			p.log.Warn("saving patched portfolio", zap.Error(err))
		}
	}
	return p, nil
}

func (p *Portfolio) Skills() *Collection[Skill]             { return p.skills }
func (p *Portfolio) Achievements() *Collection[Achievement] { return p.achievements }
func (p *Portfolio) Experience() *Collection[Experience]    { return p.experience }

// Snapshot returns a deep copy of the whole portfolio.
func (p *Portfolio) Snapshot() Data {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// Replace swaps in d wholesale, persists it and notifies every kind. A
// document with a non-positive or duplicate id is refused with ErrInvalidID
// and nothing changes.
func (p *Portfolio) Replace(ctx context.Context, d Data) error {
	if err := errors.Join(
		checkIDs(KindSkills, d.Skills),
		checkIDs(KindAchievements, d.Achievements),
		checkIDs(KindExperience, d.Experience),
	); err != nil {
		return fmt.Errorf("replace portfolio: %w", err)
	}
	p.load(d.Clone())
	p.mu.Lock()
	err := p.persistLocked(ctx)
	p.mu.Unlock()
	for _, k := range Kinds {
		p.notify(k)
	}
	if err != nil {
		return fmt.Errorf("replace portfolio: %w", err)
	}
	return nil
}

// OnChange registers fn to run after every successful mutation of a
// collection. Listeners run outside the state lock.
func (p *Portfolio) OnChange(fn func(Kind)) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Portfolio) load(d Data) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skills.reset(d.Skills)
	p.achievements.reset(d.Achievements)
	p.experience.reset(d.Experience)
}

func (p *Portfolio) snapshotLocked() Data {
	return Data{
		Skills:       p.skills.items,
		Achievements: p.achievements.items,
		Experience:   p.experience.items,
	}.Clone()
}

func (p *Portfolio) persistLocked(ctx context.Context) error {
	d := p.snapshotLocked()
	if err := p.store.Save(ctx, &d); err != nil {
		p.log.Error("persisting portfolio", zap.Error(err))
		return err
	}
	return nil
}

func (p *Portfolio) notify(k Kind) {
	p.lmu.Lock()
	ls := append([]func(Kind){}, p.listeners...)
	p.lmu.Unlock()
	for _, fn := range ls {
		fn(k)
	}
}
