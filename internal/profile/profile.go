// Package profile defines the profile document and the mutation helpers
// for its experience and education sequences.
package profile

import (
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// SocialLinks is the nested set of optional social network URLs.
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is a single work history entry.
// ID is generated when the entry is added and is used for targeted removal.
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// Education is a single education history entry.
type Education struct {
	ID           string `json:"id"`
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}

// Profile is the per-user profile document. There is at most one
// profile per user, keyed by UserID.
//
// Experience and Education are ordered most-recently-added first.
type Profile struct {
	UserID         string          `json:"user_id"`
	Company        string          `json:"company,omitempty"`
	Website        string          `json:"website,omitempty"`
	Location       string          `json:"location,omitempty"`
	Status         string          `json:"status"`
	Bio            string          `json:"bio,omitempty"`
	GithubUsername string          `json:"githubusername,omitempty"`
	Skills         []string        `json:"skills"`
	Social         SocialLinks     `json:"social"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	User           user.PublicInfo `json:"user"`
}

// AddExperience assigns a fresh unique identifier to the entry and
// prepends it, so the newest entry is always first.
func (p *Profile) AddExperience(entry Experience) {
	entry.ID = uuid.New().String()
	p.Experience = append([]Experience{entry}, p.Experience...)
}

// AddEducation assigns a fresh unique identifier to the entry and
// prepends it, so the newest entry is always first.
func (p *Profile) AddEducation(entry Education) {
	entry.ID = uuid.New().String()
	p.Education = append([]Education{entry}, p.Education...)
}

// RemoveExperience removes the entry with the given identifier keeping
// the relative order of the remainder. An unknown identifier leaves the
// sequence untouched.
func (p *Profile) RemoveExperience(entryID string) {
	for i, entry := range p.Experience {
		if entry.ID == entryID {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)

			return
		}
	}
}

// RemoveEducation removes the entry with the given identifier keeping
// the relative order of the remainder. An unknown identifier leaves the
// sequence untouched.
func (p *Profile) RemoveEducation(entryID string) {
	for i, entry := range p.Education {
		if entry.ID == entryID {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)

			return
		}
	}
}
