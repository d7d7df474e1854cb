package handler

import (
	"time"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// --- Catalogue request bodies ---

type localityRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Province string `json:"province" validate:"required,max=120"`
	Country  string `json:"country"  validate:"required,max=120"`
}

func (r localityRequest) toEntity() *domain.Locality {
	return &domain.Locality{Name: r.Name, Province: r.Province, Country: r.Country}
}

type contestRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	LocalityID  string `json:"locality_id" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

func (r contestRequest) toEntity() *domain.Contest {
	return &domain.Contest{Name: r.Name, LocalityID: r.LocalityID, Description: r.Description}
}

type editionRequest struct {
	ContestID string     `json:"contest_id" validate:"required"`
	Year      int        `json:"year"       validate:"required,gte=1800,lte=2100"`
	Venue     string     `json:"venue"      validate:"max=200"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (r editionRequest) toEntity() *domain.Edition {
	return &domain.Edition{
		ContestID: r.ContestID,
		Year:      r.Year,
		Venue:     r.Venue,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

type groupRequest struct {
	Name        string `json:"name"         validate:"required,max=200"`
	Category    string `json:"category"     validate:"required,oneof=comparsa chirigota coro cuarteto"`
	LocalityID  string `json:"locality_id"  validate:"required"`
	FoundedYear int    `json:"founded_year" validate:"omitempty,gte=1800,lte=2100"`
}

func (r groupRequest) toEntity() *domain.Group {
	return &domain.Group{Name: r.Name, Category: r.Category, LocalityID: r.LocalityID, FoundedYear: r.FoundedYear}
}

type personRequest struct {
	FullName   string `json:"full_name"   validate:"required,max=200"`
	Nickname   string `json:"nickname"    validate:"max=100"`
	BirthYear  int    `json:"birth_year"  validate:"omitempty,gte=1850,lte=2100"`
	LocalityID string `json:"locality_id"`
}

func (r personRequest) toEntity() *domain.Person {
	return &domain.Person{FullName: r.FullName, Nickname: r.Nickname, BirthYear: r.BirthYear, LocalityID: r.LocalityID}
}

type membershipRequest struct {
	GroupID   string `json:"group_id"   validate:"required"`
	PersonID  string `json:"person_id"  validate:"required"`
	EditionID string `json:"edition_id" validate:"required"`
	Role      string `json:"role"       validate:"required,max=60"`
}

func (r membershipRequest) toEntity() *domain.Membership {
	return &domain.Membership{GroupID: r.GroupID, PersonID: r.PersonID, EditionID: r.EditionID, Role: r.Role}
}

// commentRequest has no author field: the author is the caller.
type commentRequest struct {
	GroupID   string `json:"group_id"   validate:"required"`
	EditionID string `json:"edition_id"`
	Body      string `json:"body"       validate:"required,max=4000"`
}

func (r commentRequest) toEntity() *domain.Comment {
	return &domain.Comment{GroupID: r.GroupID, EditionID: r.EditionID, Body: r.Body}
}

type imageRequest struct {
	GroupID   string `json:"group_id"   validate:"required"`
	EditionID string `json:"edition_id"`
	URL       string `json:"url"        validate:"required,url"`
	Caption   string `json:"caption"    validate:"max=300"`
}

func (r imageRequest) toEntity() *domain.Image {
	return &domain.Image{GroupID: r.GroupID, EditionID: r.EditionID, URL: r.URL, Caption: r.Caption}
}

type videoRequest struct {
	GroupID   string `json:"group_id"   validate:"required"`
	EditionID string `json:"edition_id"`
	URL       string `json:"url"        validate:"required,url"`
	Title     string `json:"title"      validate:"required,max=200"`
	Phase     string `json:"phase"      validate:"omitempty,oneof=preliminar cuartos semifinal final"`
}

func (r videoRequest) toEntity() *domain.Video {
	return &domain.Video{GroupID: r.GroupID, EditionID: r.EditionID, URL: r.URL, Title: r.Title, Phase: r.Phase}
}

type prizeRequest struct {
	EditionID string `json:"edition_id" validate:"required"`
	GroupID   string `json:"group_id"   validate:"required"`
	Category  string `json:"category"   validate:"required,oneof=comparsa chirigota coro cuarteto"`
	Position  int    `json:"position"   validate:"required,gte=1,lte=10"`
}

func (r prizeRequest) toEntity() *domain.Prize {
	return &domain.Prize{EditionID: r.EditionID, GroupID: r.GroupID, Category: r.Category, Position: r.Position}
}
