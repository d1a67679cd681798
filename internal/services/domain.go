package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/complaintdesk/portal/internal/models"
)

const FallbackDomain = "college"

var ErrUnknownDomain = errors.New("unknown domain")

// DomainProfile only changes display copy; business rules are the same for every domain.
type DomainProfile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
	Theme       DomainTheme  `json:"theme"`
	Labels      DomainLabels `json:"labels"`
}

type DomainTheme struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

type DomainLabels struct {
	Institution    string   `json:"institution"`
	SubmitterRoles []string `json:"submitter_roles"`
	Categories     []string `json:"categories"`
	Departments    []string `json:"departments"`
}

var builtinDomains = []DomainProfile{
	{
		ID:          "college",
		Name:        "College",
		Icon:        "🎓",
		Description: "Campus facilities, hostels, academics and student services",
		Theme:       DomainTheme{Primary: "#2563eb", Accent: "#93c5fd"},
		Labels: DomainLabels{
			Institution:    "College",
			SubmitterRoles: []string{models.DefaultUserType, "Faculty/Staff", "Parent", "Visitor"},
			Categories:     []string{"Academics", "Hostel", "Infrastructure", "IT", "Mess", "Transport", "Other"},
			Departments:    []string{"Administration", "Exam Cell", "Hostel Office", "IT Services", "Maintenance"},
		},
	},
	{
		ID:          "healthcare",
		Name:        "Healthcare",
		Icon:        "🏥",
		Description: "Hospital wards, patient care, billing and hygiene",
		Theme:       DomainTheme{Primary: "#059669", Accent: "#6ee7b7"},
		Labels: DomainLabels{
			Institution:    "Hospital",
			SubmitterRoles: []string{"Patient", "Attendant", "Staff", "Visitor"},
			Categories:     []string{"Patient Care", "Billing", "Hygiene", "Facilities", "Pharmacy", "Other"},
			Departments:    []string{"Administration", "Nursing", "Housekeeping", "Accounts", "Pharmacy"},
		},
	},
	{
		ID:          "business",
		Name:        "Business",
		Icon:        "🏢",
		Description: "Workplace facilities, HR, IT support and customer service",
		Theme:       DomainTheme{Primary: "#7c3aed", Accent: "#c4b5fd"},
		Labels: DomainLabels{
			Institution:    "Company",
			SubmitterRoles: []string{"Employee", "Manager", "Customer", "Vendor"},
			Categories:     []string{"Facilities", "HR", "IT", "Customer Service", "Finance", "Other"},
			Departments:    []string{"Administration", "Human Resources", "IT Support", "Finance", "Operations"},
		},
	},
}

type DomainService struct {
	configs  *SystemConfigService
	fallback string
}

// NewDomainService falls back to fallback (or "college") when no stored default exists.
func NewDomainService(configs *SystemConfigService, fallback string) *DomainService {
	if _, ok := lookupDomain(fallback); !ok {
		fallback = FallbackDomain
	}
	return &DomainService{configs: configs, fallback: fallback}
}

func (s *DomainService) List() []DomainProfile {
	out := make([]DomainProfile, len(builtinDomains))
	copy(out, builtinDomains)
	return out
}

func (s *DomainService) Get(id string) (DomainProfile, error) {
	d, ok := lookupDomain(id)
	if !ok {
		return DomainProfile{}, fmt.Errorf("%w: %q", ErrUnknownDomain, id)
	}
	return d, nil
}

// Default returns the stored default domain id, or the configured fallback.
func (s *DomainService) Default() string {
	if s.configs != nil {
		if id := s.configs.GetWithDefault(models.ConfigDefaultDomain, ""); id != "" {
			if d, ok := lookupDomain(id); ok {
				return d.ID
			}
		}
	}
	return s.fallback
}

// Resolve picks the selected domain when valid, the default otherwise.
func (s *DomainService) Resolve(selected string) DomainProfile {
	if d, ok := lookupDomain(selected); ok {
		return d
	}
	d, _ := lookupDomain(s.Default())
	return d
}

func (s *DomainService) SetDefault(id string) (DomainProfile, error) {
	d, err := s.Get(id)
	if err != nil {
		return DomainProfile{}, err
	}
	if s.configs == nil {
		return DomainProfile{}, errors.New("system config store not initialized")
	}
	if err := s.configs.Set(models.ConfigDefaultDomain, d.ID); err != nil {
		return DomainProfile{}, err
	}
	return d, nil
}

func lookupDomain(id string) (DomainProfile, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, d := range builtinDomains {
		if d.ID == id {
			return d, true
		}
	}
	return DomainProfile{}, false
}
