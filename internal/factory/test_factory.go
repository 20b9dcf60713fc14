package factory

import (
	"context"
	"strings"
	"time"

	"github.com/mcoot/crimeguessr/internal/dependencies/mocks"
	"github.com/mcoot/crimeguessr/internal/services/scoring"
	"github.com/mcoot/crimeguessr/internal/storage/memory"
	"github.com/mcoot/crimeguessr/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Events     *mocks.RecordingNotifier
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Outbound events are captured in Events rather than sent to connections.
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	events := mocks.NewRecordingNotifier()
	store := memory.New(mockRandom, 0)

	app := newWithDependencies(store, mockClock, mockRandom, events, settings{
		streetViewAPIKey: "test-key",
		curve:            scoring.LinearCurve{},
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Events:     events,
	}
}

// TestLocationsCSV is a small dataset of Manhattan and Brooklyn incidents
const TestLocationsCSV = `CMPLNT_NUM,BORO_NM,OFNS_DESC,Latitude,Longitude
100000001,MANHATTAN,ROBBERY,40.7128,-74.0060
100000002,BROOKLYN,BURGLARY,40.6782,-73.9442
100000003,MANHATTAN,DANGEROUS DRUGS,40.7831,-73.9712
100000004,QUEENS,HARRASSMENT 2,40.7282,-73.7949
`

// LoadTestLocations fills the location pool with TestLocationsCSV
func (t *TestApp) LoadTestLocations() error {
	_, err := t.LocationService.Import(context.Background(), strings.NewReader(TestLocationsCSV))
	return err
}
