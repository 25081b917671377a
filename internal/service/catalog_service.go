package service

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

// SubjectCatalog lists the subjects offered per class.
type SubjectCatalog interface {
	SubjectsFor(class models.ClassLevel) ([]string, bool)
}

// LocationLookup resolves a 6-digit PIN code to a region.
type LocationLookup interface {
	Lookup(pin string) (models.Location, bool)
}

var defaultSubjects = map[models.ClassLevel][]string{
	models.ClassLevel9:  {"English", "Mathematics", "Science", "Social Science", "Hindi"},
	models.ClassLevel10: {"English", "Mathematics", "Science", "Social Science", "Hindi/Sanskrit"},
	models.ClassLevel11: {"Physics", "Chemistry", "Mathematics", "Biology", "English", "Computer Science"},
	models.ClassLevel12: {"Physics", "Chemistry", "Mathematics", "Biology", "English", "Computer Science"},
}

var defaultLocations = map[string]models.Location{
	"110001": {State: "Delhi", City: "New Delhi"},
	"400001": {State: "Maharashtra", City: "Mumbai"},
	"560001": {State: "Karnataka", City: "Bengaluru"},
	"700001": {State: "West Bengal", City: "Kolkata"},
	"600001": {State: "Tamil Nadu", City: "Chennai"},
}

// catalogFile is the YAML layout accepted by LoadCatalogFile.
type catalogFile struct {
	Subjects map[string][]string        `yaml:"subjects"`
	PinCodes map[string]models.Location `yaml:"pincodes"`
}

// CatalogService serves the built-in subject and PIN tables, optionally
// extended from a YAML file.
type CatalogService struct {
	subjects  map[models.ClassLevel][]string
	locations map[string]models.Location
}

// NewCatalogService returns a catalog backed by the built-in tables.
func NewCatalogService() *CatalogService {
	s := &CatalogService{
		subjects:  make(map[models.ClassLevel][]string, len(defaultSubjects)),
		locations: make(map[string]models.Location, len(defaultLocations)),
	}
	for class, list := range defaultSubjects {
		s.subjects[class] = append([]string(nil), list...)
	}
	for pin, loc := range defaultLocations {
		s.locations[pin] = loc
	}
	return s
}

// LoadCatalogFile builds a catalog from the built-in tables overlaid with the
// entries of path. An empty path returns the built-in catalog.
func LoadCatalogFile(path string, logger *zap.Logger) (*CatalogService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := NewCatalogService()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	for key, list := range file.Subjects {
		class := models.ClassLevel(key)
		if !class.IsValid() {
			logger.Warn("catalog: ignoring unknown class", zap.String("class", key))
			continue
		}
		s.subjects[class] = append([]string(nil), list...)
	}
	for pin, loc := range file.PinCodes {
		if !pinCodePattern.MatchString(pin) {
			logger.Warn("catalog: ignoring malformed pin code", zap.String("pin", pin))
			continue
		}
		s.locations[pin] = loc
	}
	logger.Info("catalog loaded", zap.String("path", path), zap.Int("classes", len(s.subjects)), zap.Int("pincodes", len(s.locations)))
	return s, nil
}

// SubjectsFor returns a copy of the subjects for class.
func (s *CatalogService) SubjectsFor(class models.ClassLevel) ([]string, bool) {
	list, ok := s.subjects[class]
	if !ok {
		return nil, false
	}
	return append([]string(nil), list...), true
}

// Lookup resolves pin when it is a known 6-digit code.
func (s *CatalogService) Lookup(pin string) (models.Location, bool) {
	if !pinCodePattern.MatchString(pin) {
		return models.Location{}, false
	}
	loc, ok := s.locations[pin]
	return loc, ok
}

// PrefillLocation fills state and city of patch from lookup when patch sets a
// known PIN code. Values present in patch itself are never replaced.
func PrefillLocation(patch models.EnrollmentRecord, lookup LocationLookup) models.EnrollmentRecord {
	if lookup == nil || patch.PinCode == nil {
		return patch
	}
	loc, ok := lookup.Lookup(*patch.PinCode)
	if !ok {
		return patch
	}
	out := patch.Clone()
	if out.State == nil {
		out.State = models.Ptr(loc.State)
	}
	if out.City == nil {
		out.City = models.Ptr(loc.City)
	}
	return out
}
