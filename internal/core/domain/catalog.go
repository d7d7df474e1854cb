package domain

import "time"

// Collection names of the catalogue entities. They double as URL segments.
const (
	KindLocalities  = "localities"
	KindContests    = "contests"
	KindEditions    = "editions"
	KindGroups      = "groups"
	KindPersons     = "persons"
	KindMemberships = "memberships"
	KindComments    = "comments"
	KindImages      = "images"
	KindVideos      = "videos"
	KindPrizes      = "prizes"
)

// Entity is implemented by every catalogue record.
type Entity interface {
	GetID() string
	SetID(id string)
	Stamp(createdAt, updatedAt time.Time)
	Created() time.Time
}

// Record holds the identity and timestamps shared by catalogue entities.
type Record struct {
	ID        string    `json:"id"         bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Record) GetID() string      { return r.ID }
func (r *Record) SetID(id string)    { r.ID = id }
func (r *Record) Created() time.Time { return r.CreatedAt }

func (r *Record) Stamp(createdAt, updatedAt time.Time) {
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt
}

// Locality is a town or city that hosts contests or is home to groups.
type Locality struct {
	Record   `bson:",inline"`
	Name     string `json:"name"     bson:"name"`
	Province string `json:"province" bson:"province"`
	Country  string `json:"country"  bson:"country"`
}

// Contest is a recurring competition held in a locality.
type Contest struct {
	Record      `bson:",inline"`
	Name        string `json:"name"        bson:"name"`
	LocalityID  string `json:"locality_id" bson:"locality_id"`
	Description string `json:"description" bson:"description,omitempty"`
}

// Edition is one yearly occurrence of a contest.
type Edition struct {
	Record    `bson:",inline"`
	ContestID string     `json:"contest_id"           bson:"contest_id"`
	Year      int        `json:"year"                 bson:"year"`
	Venue     string     `json:"venue,omitempty"      bson:"venue,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"   bson:"end_date,omitempty"`
}

// Group categories recognised by the contests.
const (
	CategoryComparsa  = "comparsa"
	CategoryChirigota = "chirigota"
	CategoryCoro      = "coro"
	CategoryCuarteto  = "cuarteto"
)

// Group is a performing group.
type Group struct {
	Record      `bson:",inline"`
	Name        string `json:"name"                   bson:"name"`
	Category    string `json:"category"               bson:"category"`
	LocalityID  string `json:"locality_id"            bson:"locality_id"`
	FoundedYear int    `json:"founded_year,omitempty" bson:"founded_year,omitempty"`
}

// Person is an author, director or performer.
type Person struct {
	Record     `bson:",inline"`
	FullName   string `json:"full_name"             bson:"full_name"`
	Nickname   string `json:"nickname,omitempty"    bson:"nickname,omitempty"`
	BirthYear  int    `json:"birth_year,omitempty"  bson:"birth_year,omitempty"`
	LocalityID string `json:"locality_id,omitempty" bson:"locality_id,omitempty"`
}

// Membership links a person to a group for a given edition.
type Membership struct {
	Record    `bson:",inline"`
	GroupID   string `json:"group_id"   bson:"group_id"`
	PersonID  string `json:"person_id"  bson:"person_id"`
	EditionID string `json:"edition_id" bson:"edition_id"`
	Role      string `json:"role"       bson:"role"`
}

// Comment is a free-text note about a group, written by an authenticated user.
type Comment struct {
	Record    `bson:",inline"`
	GroupID   string `json:"group_id"             bson:"group_id"`
	EditionID string `json:"edition_id,omitempty" bson:"edition_id,omitempty"`
	Author    string `json:"author"               bson:"author"`
	Body      string `json:"body"                 bson:"body"`
}

// Image references an externally stored picture.
type Image struct {
	Record    `bson:",inline"`
	GroupID   string `json:"group_id"             bson:"group_id"`
	EditionID string `json:"edition_id,omitempty" bson:"edition_id,omitempty"`
	URL       string `json:"url"                  bson:"url"`
	Caption   string `json:"caption,omitempty"    bson:"caption,omitempty"`
}

// Video references an externally hosted recording of a performance.
type Video struct {
	Record    `bson:",inline"`
	GroupID   string `json:"group_id"             bson:"group_id"`
	EditionID string `json:"edition_id,omitempty" bson:"edition_id,omitempty"`
	URL       string `json:"url"                  bson:"url"`
	Title     string `json:"title"                bson:"title"`
	Phase     string `json:"phase,omitempty"      bson:"phase,omitempty"`
}

// Prize is an award obtained by a group in an edition.
type Prize struct {
	Record    `bson:",inline"`
	EditionID string `json:"edition_id" bson:"edition_id"`
	GroupID   string `json:"group_id"   bson:"group_id"`
	Category  string `json:"category"   bson:"category"`
	Position  int    `json:"position"   bson:"position"`
}
