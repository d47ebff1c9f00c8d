package guild

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProcessSiphons grants production XP for every siphon whose tick is due at
// now. The next tick is scheduled relative to now; missed intervals are not
// back-paid.
func (r *Registry) ProcessSiphons(ctx context.Context, now time.Time) {
	r.processXPOutposts(ctx, now, OutpostSiphon, r.cfg.Siphon)
}

// ProcessBarracks grants production XP for every barracks whose tick is due.
func (r *Registry) ProcessBarracks(ctx context.Context, now time.Time) {
	r.processXPOutposts(ctx, now, OutpostBarracks, r.cfg.Barracks)
}

func (r *Registry) processXPOutposts(ctx context.Context, now time.Time, kind OutpostKind, settings OutpostSettings) {
	for _, g := range r.Guilds() {
		o, ok := g.Outpost(kind)
		if !ok || now.Before(o.NextTick) {
			continue
		}
		leveledUp := g.AddXP(settings.ProductionXP)
		g.UpdateOutpostNextTick(kind, now.Add(settings.Interval))
		r.persistXP(ctx, g)
		logPersist("save outposts", r.store.SaveOutposts(ctx, g))
		slog.Debug("outpost produced xp",
			"guild", g.Name(), "kind", kind, "xp", settings.ProductionXP, "leveled_up", leveledUp)
	}
}

// ProcessSilos handles every silo whose tick is due at now. The tick always
// advances, whether or not the production roll succeeds. On a successful
// roll each configured resource yields a uniform quantity from its range;
// the basket is deposited into the guild bank and overflow is dropped with
// a warning.
func (r *Registry) ProcessSilos(ctx context.Context, now time.Time) {
	for _, g := range r.Guilds() {
		o, ok := g.Outpost(OutpostSilo)
		if !ok || now.Before(o.NextTick) {
			continue
		}
		g.UpdateOutpostNextTick(OutpostSilo, now.Add(r.cfg.Silo.Interval))
		logPersist("save outposts", r.store.SaveOutposts(ctx, g))

		if rand.Intn(100) >= r.cfg.Silo.ChancePercent {
			continue
		}
		basket := rollSiloBasket(r.cfg.Silo.Resources)
		if len(basket) == 0 {
			continue
		}
		deposited, overflow := g.DepositItems(basket)
		for _, lost := range overflow {
			slog.Warn("silo production dropped, bank full",
				"guild", g.Name(), "kind", lost.Kind, "count", lost.Count)
		}
		if len(deposited) == 0 {
			continue
		}
		logPersist("save bank", r.store.SaveBank(ctx, g))
		slog.Info("silo produced resources", "guild", g.Name(), "items", deposited)
	}
}

// rollSiloBasket draws one stack per configured resource, quantity uniform
// in [Min, Max].
func rollSiloBasket(resources []ResourceRange) []ItemStack {
	var basket []ItemStack
	for _, res := range resources {
		if res.Kind == "" || res.Min <= 0 || res.Max < res.Min {
			continue
		}
		count := res.Min
		if res.Max > res.Min {
			count += rand.Intn(res.Max - res.Min + 1)
		}
		basket = append(basket, ItemStack{Kind: res.Kind, Count: count})
	}
	return basket
}

// ProcessUpkeep bills every guild holding territory: claims × per-chunk
// rate, all-or-nothing. A guild that cannot pay loses every claim it holds.
// Guilds with no claims are skipped.
func (r *Registry) ProcessUpkeep(ctx context.Context) {
	for _, g := range r.Guilds() {
		claims := g.ClaimCount()
		if claims == 0 {
			continue
		}
		cost := int64(claims) * r.cfg.UpkeepXPPerChunk
		if g.PayXP(cost) {
			r.persistXP(ctx, g)
			slog.Debug("upkeep paid", "guild", g.Name(), "claims", claims, "cost_xp", cost)
			continue
		}
		released := r.releaseAllClaims(ctx, g)
		slog.Info("upkeep unpaid, territory released",
			"guild", g.Name(), "cost_xp", cost, "released", released)
	}
}

// releaseAllClaims drops every claim the guild holds from both the guild and
// the global ownership index. Returns the number of released chunks.
func (r *Registry) releaseAllClaims(ctx context.Context, g *Guild) int {
	r.mu.Lock()
	chunks := g.Claims()
	for _, chunk := range chunks {
		delete(r.chunkOwners, chunk)
	}
	g.ClearClaims()
	r.mu.Unlock()

	for _, chunk := range chunks {
		logPersist("delete claim", r.store.DeleteClaim(ctx, chunk))
	}
	return len(chunks)
}

// Sweeper drives the periodic production and billing passes. Outpost checks
// share one cadence; upkeep runs on its own, much longer cycle.
type Sweeper struct {
	reg            *Registry
	checkInterval  time.Duration
	upkeepInterval time.Duration
}

// NewSweeper creates a sweeper. checkInterval is how often due outpost ticks
// are looked for; upkeepInterval is the billing cycle length.
func NewSweeper(reg *Registry, checkInterval, upkeepInterval time.Duration) *Sweeper {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Sweeper{reg: reg, checkInterval: checkInterval, upkeepInterval: upkeepInterval}
}

// Run blocks until ctx is canceled, driving all four periodic passes.
func (s *Sweeper) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.tickLoop(ctx, s.checkInterval, s.reg.ProcessSiphons)
	})
	g.Go(func() error {
		return s.tickLoop(ctx, s.checkInterval, s.reg.ProcessBarracks)
	})
	g.Go(func() error {
		return s.tickLoop(ctx, s.checkInterval, s.reg.ProcessSilos)
	})
	g.Go(func() error {
		return s.tickLoop(ctx, s.upkeepInterval, func(ctx context.Context, _ time.Time) {
			s.reg.ProcessUpkeep(ctx)
		})
	})
	return g.Wait()
}

func (s *Sweeper) tickLoop(ctx context.Context, interval time.Duration, pass func(context.Context, time.Time)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			pass(ctx, now)
		}
	}
}
