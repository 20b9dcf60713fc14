package location

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crimeguessr/internal/dependencies/mocks"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/storage/memory"
	"github.com/mcoot/crimeguessr/internal/testutil"
)

const sampleCSV = `CMPLNT_NUM,BORO_NM,OFNS_DESC,Latitude,Longitude
1,MANHATTAN,PETIT LARCENY,40.7128,-74.0060
2,BROOKLYN,FELONY ASSAULT,40.6782,-73.9442
3,QUEENS,DANGEROUS DRUGS,,
4,BRONX,ROBBERY,0,0
5,STATEN ISLAND,CRIMINAL TRESPASS,not-a-number,-74.15
6,BRONX,OFFENSES AGAINST PUBLIC ORDER,40.8448,-73.8648
`

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.storage = memory.New(s.random, 0)
	s.service = New(s.storage, Config{StreetViewAPIKey: "test-key"}, testutil.NopLogger())
	s.ctx = context.Background()
}

// Import tests

func (s *ServiceSuite) TestImportSkipsUnusableRows() {
	stats, err := s.service.Import(s.ctx, strings.NewReader(sampleCSV))
	s.Require().NoError(err)
	s.Equal(ImportStats{Loaded: 3, Skipped: 3}, stats)

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *ServiceSuite) TestImportRequiresCoordinateColumns() {
	_, err := s.service.Import(s.ctx, strings.NewReader("a,b\n1,2\n"))
	s.ErrorIs(err, ErrMissingCoordinateColumns)
}

func (s *ServiceSuite) TestImportWithoutUsableRowsKeepsPool() {
	_, err := s.service.Import(s.ctx, strings.NewReader(sampleCSV))
	s.Require().NoError(err)

	stats, err := s.service.Import(s.ctx, strings.NewReader("Latitude,Longitude\n0,0\nx,y\n"))
	s.ErrorIs(err, ErrEmptyDataset)
	s.Equal(2, stats.Skipped)

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *ServiceSuite) TestImportEmptyInput() {
	_, err := s.service.Import(s.ctx, strings.NewReader(""))
	s.ErrorIs(err, ErrMissingCoordinateColumns)
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "locations.csv")
	s.Require().NoError(os.WriteFile(path, []byte(sampleCSV), 0o600))

	stats, err := s.service.LoadFromFile(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(3, stats.Loaded)
}

func (s *ServiceSuite) TestLoadFromMissingFile() {
	_, err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "nope.csv"))
	s.Error(err)
	s.ErrorIs(s.service.Available(s.ctx), model.ErrDataSourceUnavailable)
}

// Provider tests

func (s *ServiceSuite) TestUnavailableWhenPoolEmpty() {
	s.ErrorIs(s.service.Available(s.ctx), model.ErrDataSourceUnavailable)

	loc, err := s.service.NextLocation(s.ctx)
	s.Nil(loc)
	s.ErrorIs(err, model.ErrLocationUnavailable)
}

func (s *ServiceSuite) TestNextLocationIsEnriched() {
	_, err := s.service.Import(s.ctx, strings.NewReader(sampleCSV))
	s.Require().NoError(err)
	s.Require().NoError(s.service.Available(s.ctx))

	s.random.QueueIntn(0)
	loc, err := s.service.NextLocation(s.ctx)
	s.Require().NoError(err)

	s.Equal(40.7128, loc.Latitude)
	s.Equal(-74.006, loc.Longitude)
	s.Equal("PETIT LARCENY", loc.Enrichment.Offense)
	s.Equal(model.CategoryProperty, loc.Enrichment.Category)
	s.Equal("MANHATTAN", loc.Enrichment.Borough)
	s.Equal("https://maps.googleapis.com/maps/api/streetview?size=600x400&location=40.7128,-74.006&key=test-key",
		loc.Enrichment.StreetViewURL)
}

func (s *ServiceSuite) TestNextLocationWithoutKeyHasNoImagery() {
	service := New(s.storage, Config{}, testutil.NopLogger())
	s.Require().NoError(s.storage.SaveLocations(s.ctx, []model.LocationRecord{{Latitude: 40.7, Longitude: -74}}))

	loc, err := service.NextLocation(s.ctx)
	s.Require().NoError(err)
	s.Empty(loc.Enrichment.StreetViewURL)
}

// Categorize tests

func (s *ServiceSuite) TestCategorize() {
	cases := map[string]model.CrimeCategory{
		"FELONY ASSAULT":                 model.CategoryViolent,
		"ROBBERY":                        model.CategoryViolent,
		"HARRASSMENT 2":                  model.CategoryViolent,
		"DANGEROUS DRUGS":                model.CategoryDrug,
		"PETIT LARCENY":                  model.CategoryProperty,
		"GRAND LARCENY OF MOTOR VEHICLE": model.CategoryProperty,
		"criminal mischief & related of": model.CategoryProperty,
		"OFFENSES AGAINST PUBLIC ORDER":  model.CategoryPublicOrder,
		"INTOXICATED & IMPAIRED DRIVING": model.CategoryPublicOrder,
		"MISCELLANEOUS PENAL LAW":        model.CategoryOther,
		"":                               "",
	}
	for offense, want := range cases {
		s.Equal(want, Categorize(offense), offense)
	}
}

// StreetViewURL tests

func (s *ServiceSuite) TestStreetViewURLEscapesKey() {
	s.Equal("https://maps.googleapis.com/maps/api/streetview?size=600x400&location=40.5,-73.25&key=a%2Bb",
		StreetViewURL("a+b", 40.5, -73.25))
}
