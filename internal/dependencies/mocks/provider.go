package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/crimeguessr/internal/model"
)

type providerResult struct {
	location *model.Location
	err      error
}

// StubProvider hands out scripted locations. When the script runs out it
// reports the location as unavailable.
type StubProvider struct {
	mu          sync.Mutex
	results     []providerResult
	calls       int
	unavailable bool

	// Entered, when set, receives a value as each NextLocation call begins
	Entered chan struct{}
	// Gate, when set, blocks each NextLocation call until a value is received
	Gate chan struct{}
}

// NewStubProvider creates a StubProvider with the given locations queued
func NewStubProvider(locations ...*model.Location) *StubProvider {
	p := &StubProvider{}
	p.Queue(locations...)
	return p
}

// Queue appends locations to the script
func (p *StubProvider) Queue(locations ...*model.Location) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, loc := range locations {
		p.results = append(p.results, providerResult{location: loc})
	}
}

// QueueError appends a failing draw to the script
func (p *StubProvider) QueueError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, providerResult{err: err})
}

// SetAvailable toggles whether the data source reports itself usable
func (p *StubProvider) SetAvailable(available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unavailable = !available
}

// Available reports ErrDataSourceUnavailable after SetAvailable(false)
func (p *StubProvider) Available(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return model.ErrDataSourceUnavailable
	}
	return nil
}

// NextLocation returns the next scripted result
func (p *StubProvider) NextLocation(ctx context.Context) (*model.Location, error) {
	if p.Entered != nil {
		p.Entered <- struct{}{}
	}
	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return nil, model.ErrLocationUnavailable
	}
	next := p.results[0]
	p.results = p.results[1:]
	return next.location, next.err
}

// Calls returns how many draws have been made
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Loc builds a location with a fixed imagery URL for tests
func Loc(lat, lon float64) *model.Location {
	return &model.Location{
		Coordinate: model.Coordinate{Latitude: lat, Longitude: lon},
		Enrichment: model.Enrichment{StreetViewURL: "https://example.test/sv"},
	}
}
