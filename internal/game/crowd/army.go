package crowd

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// DefaultActiveCount is how many instances are active after NewArmy.
const DefaultActiveCount = 1000

var (
	// ErrPartOutOfRange is returned when a layout names a mesh part the
	// army has no drawer for.
	ErrPartOutOfRange = errors.New("part index out of range")
	// ErrNoSkinning is returned when an army is built without skinning data.
	ErrNoSkinning = errors.New("army needs skinning data")
	// ErrNoRand is returned when an army is built without a random source.
	ErrNoRand = errors.New("army needs a random source")
)

// PartDrawer draws every instance of one mesh part in a single call.
// *instancing.PartRenderer satisfies it.
type PartDrawer interface {
	Draw(transforms []math.Mat4, frames []int32, view, projection math.Mat4) error
}

// Options tune an Army. Zero fields take their defaults.
type Options struct {
	Layout *Layout
	Policy *Policy
	// ActiveCount nil means DefaultActiveCount. Point at 0 to start empty.
	ActiveCount    *int
	BoundingRadius float32
	// CullWorkers above 1 splits culling across goroutines.
	CullWorkers int
}

// partBatch is the instance array handed to one part's drawer.
type partBatch struct {
	transforms []math.Mat4
	frames     []int32
	count      int
}

// Army owns every instance and the per-part arrays the visible ones are
// scattered into. It is driven from one goroutine: Update, then Draw.
type Army struct {
	skin   *skinning.Data
	parts  []PartDrawer
	policy Policy
	rng    Rand

	instances   []*Instance
	active      int
	visible     int
	cullWorkers int

	batches []partBatch
}

// NewArmy spawns one instance per position.
func NewArmy(skin *skinning.Data, parts []PartDrawer, positions []math.Vec3, rng Rand, opts Options) (*Army, error) {
	if skin == nil {
		return nil, ErrNoSkinning
	}
	if rng == nil {
		return nil, ErrNoRand
	}

	layout := DefaultLayout
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	for slot, candidates := range layout {
		for _, p := range candidates {
			if p < 0 || p >= len(parts) {
				return nil, fmt.Errorf("%w: slot %d uses part %d, army has %d parts", ErrPartOutOfRange, slot, p, len(parts))
			}
		}
	}

	policy := DefaultPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	radius := opts.BoundingRadius
	if radius <= 0 {
		radius = DefaultBoundingRadius
	}
	active := DefaultActiveCount
	if opts.ActiveCount != nil {
		active = *opts.ActiveCount
	}

	a := &Army{
		skin:        skin,
		parts:       parts,
		policy:      policy,
		rng:         rng,
		instances:   make([]*Instance, len(positions)),
		cullWorkers: max(opts.CullWorkers, 1),
		batches:     make([]partBatch, len(parts)),
	}
	for i, pos := range positions {
		a.instances[i] = NewInstance(pos, layout, radius, rng)
	}
	a.SetActiveCount(active)

	logger.Info("army spawned",
		zap.Int("instances", len(a.instances)),
		zap.Int("active", a.active),
		zap.Int("parts", len(parts)),
		zap.Int("cull_workers", a.cullWorkers))

	return a, nil
}

// Update advances every active instance that was visible in the last Draw.
// Instances nobody saw stay frozen until they come back into view.
func (a *Army) Update(elapsed float32, target math.Vec3) {
	for _, in := range a.instances[:a.active] {
		if in.visible {
			in.Update(elapsed, target, a.skin, a.policy, a.rng)
		}
	}
}

// Draw culls the active instances against the view frustum, scatters the
// visible ones into their parts' arrays and draws every non-empty part.
// A part that fails to draw does not stop the others; all failures are
// returned joined.
func (a *Army) Draw(view, projection math.Mat4) error {
	frustum := math.NewFrustum(projection.Mul(view))
	a.cull(&frustum)

	// Count and reserve a slot per instance part.
	for p := range a.batches {
		a.batches[p].count = 0
	}
	a.visible = 0
	for _, in := range a.instances[:a.active] {
		if !in.visible {
			continue
		}
		a.visible++
		for s, p := range in.parts {
			in.slots[s] = a.batches[p].count
			a.batches[p].count++
		}
	}

	for p := range a.batches {
		a.batches[p].resize()
	}

	for _, in := range a.instances[:a.active] {
		if !in.visible {
			continue
		}
		frame := in.AnimationFrame()
		for s, p := range in.parts {
			b := &a.batches[p]
			b.transforms[in.slots[s]] = in.transform
			b.frames[in.slots[s]] = frame
		}
	}

	var errs []error
	for p, b := range a.batches {
		if b.count == 0 {
			continue
		}
		if err := a.parts[p].Draw(b.transforms, b.frames, view, projection); err != nil {
			logger.Warn("part draw failed", zap.Int("part", p), zap.Int("instances", b.count), zap.Error(err))
			errs = append(errs, fmt.Errorf("part %d: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func (a *Army) cull(frustum *math.Frustum) {
	active := a.instances[:a.active]
	workers := min(a.cullWorkers, len(active))
	if workers <= 1 {
		cullRange(frustum, active)
		return
	}

	chunk := (len(active) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(active); start += chunk {
		end := min(start+chunk, len(active))
		wg.Add(1)
		go func(instances []*Instance) {
			defer wg.Done()
			cullRange(frustum, instances)
		}(active[start:end])
	}
	wg.Wait()
}

func cullRange(frustum *math.Frustum, instances []*Instance) {
	for _, in := range instances {
		in.visible = frustum.IntersectsSphere(in.bounds)
	}
}

// resize fits the arrays to count, keeping capacity between frames.
func (b *partBatch) resize() {
	if cap(b.transforms) < b.count {
		b.transforms = make([]math.Mat4, b.count)
		b.frames = make([]int32, b.count)
		return
	}
	b.transforms = b.transforms[:b.count]
	b.frames = b.frames[:b.count]
}

// SetActiveCount sets how many instances take part, clamped to
// [0, Total()], and returns the applied value.
func (a *Army) SetActiveCount(n int) int {
	n = math.Clamp(n, 0, len(a.instances))
	// Dropped instances are no longer drawn, so they are not visible either.
	if n < a.active {
		for _, in := range a.instances[n:a.active] {
			in.visible = false
		}
	}
	a.active = n
	return a.active
}

// Step adds (direction > 0) or removes (direction < 0) about one percent of
// the active instances, at least one.
func (a *Army) Step(direction int) int {
	step := max(a.active/100, 1)
	switch {
	case direction > 0:
		return a.SetActiveCount(a.active + step)
	case direction < 0:
		return a.SetActiveCount(a.active - step)
	}
	return a.active
}

// ActiveCount returns how many instances take part.
func (a *Army) ActiveCount() int { return a.active }

// VisibleCount returns how many instances passed culling in the last Draw.
func (a *Army) VisibleCount() int { return a.visible }

// Total returns how many instances were spawned.
func (a *Army) Total() int { return len(a.instances) }

// Instances returns every spawned instance, active first.
func (a *Army) Instances() []*Instance { return a.instances }

// Batch returns the arrays last handed to part p.
func (a *Army) Batch(p int) ([]math.Mat4, []int32) {
	return a.batches[p].transforms, a.batches[p].frames
}
