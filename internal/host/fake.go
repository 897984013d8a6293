package host

import "sync"

// FakeHost is an in-memory Source and Notifier for tests. Emit methods
// deliver events synchronously to live consumers.
type FakeHost struct {
	mu     sync.Mutex
	nextID int

	bikeConsumers    map[int]func([]Bike)
	profileConsumers map[int]func(RideProfile)
	stateConsumers   map[int]func(RideState)
	descentConsumers map[int]func(DescentSample)
	actionConsumers  map[int]func(string)

	// Dispatched contains all alerts sent through the notifier.
	Dispatched []RideAlert

	// DispatchError, if set, will be returned by Dispatch.
	DispatchError error
}

// NewFakeHost creates a FakeHost for testing.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		bikeConsumers:    make(map[int]func([]Bike)),
		profileConsumers: make(map[int]func(RideProfile)),
		stateConsumers:   make(map[int]func(RideState)),
		descentConsumers: make(map[int]func(DescentSample)),
		actionConsumers:  make(map[int]func(string)),
	}
}

type fakeSubscription struct {
	cancel func()
	once   sync.Once
}

func (s *fakeSubscription) Cancel() {
	s.once.Do(s.cancel)
}

func (f *FakeHost) register() int {
	f.nextID++
	return f.nextID
}

// ConsumeBikes registers a bike roster consumer.
func (f *FakeHost) ConsumeBikes(fn func([]Bike)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register()
	f.bikeConsumers[id] = fn
	return &fakeSubscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.bikeConsumers, id)
	}}, nil
}

// ConsumeProfile registers a profile consumer.
func (f *FakeHost) ConsumeProfile(fn func(RideProfile)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register()
	f.profileConsumers[id] = fn
	return &fakeSubscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.profileConsumers, id)
	}}, nil
}

// ConsumeRideState registers a ride-state consumer.
func (f *FakeHost) ConsumeRideState(fn func(RideState)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register()
	f.stateConsumers[id] = fn
	return &fakeSubscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.stateConsumers, id)
	}}, nil
}

// ConsumeDescent registers a descent stream consumer.
func (f *FakeHost) ConsumeDescent(fn func(DescentSample)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register()
	f.descentConsumers[id] = fn
	return &fakeSubscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.descentConsumers, id)
	}}, nil
}

// ConsumeActions registers a host action consumer.
func (f *FakeHost) ConsumeActions(fn func(string)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register()
	f.actionConsumers[id] = fn
	return &fakeSubscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.actionConsumers, id)
	}}, nil
}

// Dispatch records the alert.
func (f *FakeHost) Dispatch(alert RideAlert) error {
	if f.DispatchError != nil {
		return f.DispatchError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dispatched = append(f.Dispatched, alert)
	return nil
}

func (f *FakeHost) snapshot() (bikes []func([]Bike), profiles []func(RideProfile), states []func(RideState), descents []func(DescentSample), actions []func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fn := range f.bikeConsumers {
		bikes = append(bikes, fn)
	}
	for _, fn := range f.profileConsumers {
		profiles = append(profiles, fn)
	}
	for _, fn := range f.stateConsumers {
		states = append(states, fn)
	}
	for _, fn := range f.descentConsumers {
		descents = append(descents, fn)
	}
	for _, fn := range f.actionConsumers {
		actions = append(actions, fn)
	}
	return
}

// EmitBikes delivers a bike roster update.
func (f *FakeHost) EmitBikes(bikes []Bike) {
	fns, _, _, _, _ := f.snapshot()
	for _, fn := range fns {
		fn(bikes)
	}
}

// EmitProfile delivers an active profile change.
func (f *FakeHost) EmitProfile(profile RideProfile) {
	_, fns, _, _, _ := f.snapshot()
	for _, fn := range fns {
		fn(profile)
	}
}

// EmitRideState delivers a ride-state transition.
func (f *FakeHost) EmitRideState(state RideState) {
	_, _, fns, _, _ := f.snapshot()
	for _, fn := range fns {
		fn(state)
	}
}

// EmitDescent delivers a descent stream sample.
func (f *FakeHost) EmitDescent(sample DescentSample) {
	_, _, _, fns, _ := f.snapshot()
	for _, fn := range fns {
		fn(sample)
	}
}

// EmitAction delivers a rider-triggered host action.
func (f *FakeHost) EmitAction(actionID string) {
	_, _, _, _, fns := f.snapshot()
	for _, fn := range fns {
		fn(actionID)
	}
}

// DescentConsumerCount reports how many descent consumers are live.
func (f *FakeHost) DescentConsumerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.descentConsumers)
}

// Reset clears recorded alerts.
func (f *FakeHost) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dispatched = nil
	f.DispatchError = nil
}
