package models

import "time"

// Role distinguishes the two sides of the marketplace that can be matched.
type Role string

const (
	RoleTalent  Role = "talent"
	RoleCompany Role = "company"
)

// ValidRoles is the closed set of roles a matching vector may carry.
var ValidRoles = map[Role]struct{}{
	RoleTalent:  {},
	RoleCompany: {},
}

// Opposite returns the other side of the marketplace.
func (r Role) Opposite() Role {
	if r == RoleTalent {
		return RoleCompany
	}

	return RoleTalent
}

// EntityKind addresses a vector row from the outside: a talent profile
// (keyed by user id) or a job posting (keyed by job posting id).
type EntityKind string

const (
	KindTalent EntityKind = "talent"
	KindJob    EntityKind = "job"
)

// Role maps an entity kind to the role its vector rows carry.
func (k EntityKind) Role() Role {
	if k == KindJob {
		return RoleCompany
	}

	return RoleTalent
}

// Opposite returns the candidate kind for a reference of this kind.
func (k EntityKind) Opposite() EntityKind {
	if k == KindJob {
		return KindTalent
	}

	return KindJob
}

// ParseEntityKind validates a kind received from a caller.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(s) {
	case KindTalent, KindJob:
		return EntityKind(s), true
	}

	return "", false
}

// Facet is one of the six fixed semantic scoring categories.
type Facet string

const (
	FacetRoles   Facet = "roles"
	FacetSkills  Facet = "skills"
	FacetGrowth  Facet = "growth"
	FacetCareer  Facet = "career"
	FacetVision  Facet = "vision"
	FacetCulture Facet = "culture"
)

// Facets is the closed, ordered facet set. Callers exchanging weight maps or
// facet payloads must use exactly these keys, in this order.
var Facets = []Facet{
	FacetRoles,
	FacetSkills,
	FacetGrowth,
	FacetCareer,
	FacetVision,
	FacetCulture,
}

// IsFacet reports whether name is one of the six known facets.
func IsFacet(name string) bool {
	switch Facet(name) {
	case FacetRoles, FacetSkills, FacetGrowth, FacetCareer, FacetVision, FacetCulture:
		return true
	}

	return false
}

// MatchingVector is one entity's embedding row: up to six optional unit vectors,
// one per facet. A nil entry in Vectors means "no signal for this facet" and is
// excluded from scoring, never scored as dissimilar.
//
// Talent rows are unique per user (JobPostingID is nil); company rows are scoped
// to a job posting and unique per (user, job posting).
type MatchingVector struct {
	ID           int64               `json:"id"`
	UserID       int64               `json:"user_id"`
	Role         Role                `json:"role"`
	JobPostingID *int64              `json:"job_posting_id,omitempty"`
	Model        string              `json:"model"`
	Dim          int                 `json:"dim"`
	Vectors      map[Facet][]float32 `json:"-"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// EntityID returns the external id the row is addressed by: the user id for
// talent rows, the job posting id for company rows.
func (v *MatchingVector) EntityID() int64 {
	if v.Role == RoleCompany && v.JobPostingID != nil {
		return *v.JobPostingID
	}

	return v.UserID
}

// MissingFacets returns the facets without a stored vector, in canonical order.
func (v *MatchingVector) MissingFacets() []Facet {
	var missing []Facet

	for _, facet := range Facets {
		if v.Vectors[facet] == nil {
			missing = append(missing, facet)
		}
	}

	return missing
}

// HasAnyFacet reports whether at least one facet vector is stored.
func (v *MatchingVector) HasAnyFacet() bool {
	for _, facet := range Facets {
		if v.Vectors[facet] != nil {
			return true
		}
	}

	return false
}

// MatchResult is one materialized talent/job-posting match row, uniquely keyed
// by (TalentVectorID, CompanyVectorID) so recomputation is an idempotent upsert.
// FacetScores holds 0-100 scores for the facets that were actually scored.
type MatchResult struct {
	ID              int64             `json:"id"`
	TalentVectorID  int64             `json:"talent_vector_id"`
	CompanyVectorID int64             `json:"company_vector_id"`
	TalentUserID    int64             `json:"talent_user_id"`
	CompanyUserID   int64             `json:"company_user_id"`
	JobPostingID    int64             `json:"job_posting_id"`
	FacetScores     map[Facet]float64 `json:"facet_scores"`
	TotalScore      float64           `json:"total_score"`
	CalculatedAt    time.Time         `json:"calculated_at"`
}
