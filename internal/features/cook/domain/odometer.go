package domain

// Odometer is a mixed-radix counter over the sweep dimensions. From least to
// most significant: loras[last] … loras[0], prompt strength, guidance scale,
// inference steps, sampler.
type Odometer struct {
	bounds Bounds
}

// NewOdometer validates bounds and returns an odometer over them.
func NewOdometer(bounds Bounds) (*Odometer, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Odometer{bounds: bounds}, nil
}

// Start returns the all-start state with one lora entry per active slot.
func (o *Odometer) Start(activeLoras int) State {
	sampler, _, _ := o.bounds.Sampler.ints()
	steps, _, _ := o.bounds.InferenceSteps.ints()
	s := State{
		Sampler:        sampler,
		InferenceSteps: steps,
		GuidanceScale:  round1(o.bounds.GuidanceScale.Start),
		PromptStrength: round1(o.bounds.PromptStrength.Start),
	}
	return o.Fit(s, activeLoras)
}

// Fit resizes the lora vector to the active slot count. Kept slots keep
// their value and new slots are seeded with the lora start.
func (o *Odometer) Fit(s State, activeLoras int) State {
	if activeLoras < 0 {
		activeLoras = 0
	}
	out := s.Clone()
	loras := make([]float64, activeLoras)
	for i := range loras {
		if i < len(s.Loras) {
			loras[i] = s.Loras[i]
		} else {
			loras[i] = round1(o.bounds.Loras.Start)
		}
	}
	out.Loras = loras
	return out
}

// Step advances s by one. Dimensions that are not live are skipped: the
// lora vector beyond the active count, and prompt strength when the form
// does not show it. When the carry runs past the sampler the whole state
// resets to start and cycleComplete is true.
func (o *Odometer) Step(s State, live Live) (next State, cycleComplete bool) {
	b := o.bounds
	next = o.Fit(s, live.ActiveLoras)
	n := len(next.Loras)

	bumpGuidance := func() { next.GuidanceScale = round1(next.GuidanceScale + b.GuidanceScale.Step) }
	bumpBelowLoras := func() {
		if live.PromptStrengthVisible {
			next.PromptStrength = round1(next.PromptStrength + b.PromptStrength.Step)
		} else {
			bumpGuidance()
		}
	}

	if n > 0 {
		next.Loras[n-1] = round1(next.Loras[n-1] + b.Loras.Step)
	} else {
		bumpBelowLoras()
	}

	for i := n - 1; i > 0; i-- {
		if next.Loras[i] > b.Loras.Stop {
			next.Loras[i] = round1(b.Loras.Start)
			next.Loras[i-1] = round1(next.Loras[i-1] + b.Loras.Step)
		}
	}
	if n > 0 && next.Loras[0] > b.Loras.Stop {
		next.Loras[0] = round1(b.Loras.Start)
		bumpBelowLoras()
	}

	if live.PromptStrengthVisible && next.PromptStrength > b.PromptStrength.Stop {
		next.PromptStrength = round1(b.PromptStrength.Start)
		bumpGuidance()
	}

	if next.GuidanceScale > b.GuidanceScale.Stop {
		next.GuidanceScale = round1(b.GuidanceScale.Start)
		_, _, step := b.InferenceSteps.ints()
		next.InferenceSteps += step
	}

	if start, stop, _ := b.InferenceSteps.ints(); next.InferenceSteps > stop {
		next.InferenceSteps = start
		_, _, step := b.Sampler.ints()
		next.Sampler += step
	}

	if _, stop, _ := b.Sampler.ints(); next.Sampler > stop {
		return o.Start(live.ActiveLoras), true
	}
	return next, false
}

// Plan lists every point of one full cycle for a fixed live form, starting
// at the all-start state. It stops early after limit points when limit > 0.
func (o *Odometer) Plan(live Live, limit int) []State {
	var points []State
	s := o.Start(live.ActiveLoras)
	for {
		points = append(points, s)
		if limit > 0 && len(points) >= limit {
			return points
		}
		next, done := o.Step(s, live)
		if done {
			return points
		}
		s = next
	}
}
